// Package main is the entry point for shopctl CLI
package main

import (
	"os"

	"github.com/swadbest/shopctl/cmd"
)

// version, commit and buildTime are set at build time via ldflags
var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
)

func main() {
	cmd.SetVersion(version)
	cmd.SetBuildInfo(commit, buildTime)
	os.Exit(cmd.Execute())
}
