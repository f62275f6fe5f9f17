package main

import (
	"os"

	"cookoff-scoreboard/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
