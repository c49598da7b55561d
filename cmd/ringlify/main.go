// Package main is the entry point for the ringlify CLI.
package main

import "github.com/ringlify/ringlify-cli/internal/cli"

func main() {
	cli.Execute()
}
