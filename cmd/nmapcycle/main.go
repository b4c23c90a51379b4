// Command nmapcycle runs nmap scan modes against a target in a loop.
package main

import "github.com/anstrom/nmapcycle/cmd/cli"

// Build information, set by ldflags.
var (
	version   = "dev"
	commit    = "none"
	buildTime = "unknown"
)

func main() {
	cli.SetVersion(version, commit, buildTime)
	cli.Execute()
}
