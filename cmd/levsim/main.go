package main

import (
	"os"

	"levsim/cmd/levsim/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
