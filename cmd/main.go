package main

import (
	"os"

	"github.com/jjonescz/roslyn-test-updater/internal/cli"
)

// main bootstraps the snapshot-update CLI.
func main() {
	os.Exit(cli.Execute())
}
