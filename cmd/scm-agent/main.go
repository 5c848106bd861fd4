// Package main provides the SCM assistant CLI entrypoint.
package main

import (
	"os"

	"github.com/supplyhub/scm-assistant/cmd/scm-agent/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
