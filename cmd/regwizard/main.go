// Package main is the entry point for the regwizard command line.
package main

import (
	"os"

	"github.com/goliatone/go-regwizard/cmd/regwizard/app"
)

func main() {
	if err := app.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
