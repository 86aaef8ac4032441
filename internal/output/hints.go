package output

import (
	"fmt"
	"strings"
)

// CommandHints maps command names to related commands users might want to run next
var CommandHints = map[string][]string{
	"login":         {"whoami", "cart show", "home"},
	"logout":        {"login"},
	"register":      {"login"},
	"products list": {"products show <id>"},
	"products show": {"cart add <product> <variant>", "wishlist toggle <product>"},
	"cart add":      {"cart show", "checkout pay <order>"},
	"cart show":     {"cart update <item> <qty>", "cart remove <item>"},
	"wishlist list": {"wishlist move <product>"},
	"orders list":   {"orders show <id>", "orders track <id>"},
	"orders show":   {"orders track <id>", "orders cancel <id>"},
	"checkout pay":  {"checkout verify", "orders show <id>"},
	"blogs list":    {"blogs show <slug>"},
}

// PrintHints prints "See also" hints for a command. No-op in quiet mode or if command has no hints.
func (p *Printer) PrintHints(command string) {
	if p.quiet {
		return
	}
	hints, ok := CommandHints[command]
	if !ok || len(hints) == 0 {
		return
	}

	cmds := make([]string, len(hints))
	for i, h := range hints {
		cmds[i] = "shopctl " + h
	}
	fmt.Fprintf(p.out, "\nSee also: %s\n", strings.Join(cmds, ", "))
}
