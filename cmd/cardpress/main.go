// Package main is the entry point for the cardpress application.
package main

import (
	"os"

	"github.com/cardpress/cardpress/cmd/cardpress/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
