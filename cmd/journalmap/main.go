// Package main provides the entry point for the journalmap CLI tool.
package main

import (
	"github.com/journalmap/journalmap/cmd/journalmap/cmd"
)

// Version information populated by goreleaser.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	cmd.Execute(version, commit, date)
}
