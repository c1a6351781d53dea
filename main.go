package main

import (
	"os"

	"github.com/chipp-ai/dispatch/cli"
)

func main() {
	cmd := cli.RootCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
