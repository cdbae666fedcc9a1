package main

import (
	"os"

	"ragbench/cmd/ragbench/commands"
)

func main() {
	root := commands.NewRootCommand()
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
