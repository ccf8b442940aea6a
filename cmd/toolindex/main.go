// Package main provides the entry point for the toolindex CLI.
package main

import "github.com/agentstation/toolindex/cmd/toolindex/cmd"

// Version information populated by goreleaser.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	cmd.Execute(version, commit, date)
}
