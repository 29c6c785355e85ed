// Package main is the entry point for the querygate CLI binary.
package main

import (
	"os"

	cli "querygate/pkg/cli"
)

func main() {
	os.Exit(cli.Execute())
}
