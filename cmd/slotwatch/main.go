// Package main is the entry point for the slotwatch CLI.
package main

import (
	"os"

	"github.com/jmylchreest/slotwatch/cmd/slotwatch/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
