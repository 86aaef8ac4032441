package cmd

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/swadbest/shopctl/internal/output"
	"github.com/swadbest/shopctl/internal/shop"
)

func TestRootCmd_Help(t *testing.T) {
	setupCmdTest(t)

	res := runCmd(t, "", "--help")
	if res.err != nil {
		t.Fatalf("root --help failed: %v", res.err)
	}
	if !strings.Contains(res.stdout, "shopctl") {
		t.Errorf("expected help output to contain 'shopctl', got:\n%s", res.stdout)
	}
}

func TestRootCmd_UnknownCommand(t *testing.T) {
	setupCmdTest(t)

	res := runCmd(t, "", "nonexistent-command")
	if res.err == nil {
		t.Fatal("expected error for unknown command, got nil")
	}
}

func TestRootCmd_SubcommandsList(t *testing.T) {
	setupCmdTest(t)

	res := runCmd(t, "", "--help")
	if res.err != nil {
		t.Fatalf("root --help failed: %v", res.err)
	}

	for _, cmd := range []string{
		"login", "logout", "register", "password", "whoami", "products", "cart", "wishlist",
		"orders", "checkout", "blogs", "shipments", "home", "config", "version",
	} {
		if !strings.Contains(res.stdout, cmd) {
			t.Errorf("expected help output to list %q command, got:\n%s", cmd, res.stdout)
		}
	}
}

func TestRootCmd_BadFlagIsUsageError(t *testing.T) {
	setupCmdTest(t)

	res := runCmd(t, "", "products", "list", "--no-such-flag")
	if got := res.exitCode(); got != output.ExitUsageError {
		t.Errorf("exit code = %d, want %d (err %v)", got, output.ExitUsageError, res.err)
	}
}

func TestRootCmd_InvalidConfigIsConfigError(t *testing.T) {
	setupCmdTest(t)
	t.Setenv("SHOPCTL_API_BASE_URL", "not a url")

	res := runCmd(t, "", "products", "list")
	if got := res.exitCode(); got != output.ExitConfigError {
		t.Errorf("exit code = %d, want %d (err %v)", got, output.ExitConfigError, res.err)
	}
}

func TestHandleError(t *testing.T) {
	setupCmdTest(t)

	buf := new(bytes.Buffer)
	if got := handleError(nil, buf); got != output.ExitSuccess || buf.Len() != 0 {
		t.Errorf("nil error: code %d, output %q", got, buf.String())
	}

	got := handleError(shop.ErrLoginRequired, buf)
	if got != output.ExitAuthError {
		t.Errorf("exit code = %d, want %d", got, output.ExitAuthError)
	}
	assertContains(t, buf.String(), "[ERROR] you are not logged in", "shopctl login")

	buf.Reset()
	if got := handleError(errors.New("boom"), buf); got != output.ExitGeneral {
		t.Errorf("exit code = %d, want %d", got, output.ExitGeneral)
	}
}
