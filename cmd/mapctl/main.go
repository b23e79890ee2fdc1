package main

import (
	"os"

	"github.com/samirrijal/mapbridge/cmd/mapctl/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
