package main

import (
	"os"

	"github.com/ariel-frischer/rulesync/internal/cli"
	"github.com/ariel-frischer/rulesync/internal/cli/shared"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(shared.ExitCode(err))
	}
}
