// Package main provides the entry point for the hyperseek CLI.
package main

import (
	"os"

	"github.com/hyperseek/hyperseek/cmd/hyperseek/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
