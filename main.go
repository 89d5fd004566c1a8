// Copyright (c) 2025 ToeiRei
// ConfVault - configuration and credential vault
// This source code is licensed under the MIT license found in the LICENSE file.

// Command-line entrypoint for ConfVault.
//
// Usage:
//
//	go run . [flags]
//	./confvault [flags]
//
// This launches the ConfVault CLI. See --help for options.
package main

import (
	"log"
	"os"

	"github.com/toeirei/confvault/ui/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		log.Printf("ConfVault CLI error: %v", err)
		os.Exit(1)
	}
}
