package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra/doc"

	"github.com/arthur-debert/template-ci/internal/cli"
	"github.com/arthur-debert/template-ci/internal/version"
)

func main() {
	rootCmd := cli.NewRootCmd()

	header := &doc.GenManHeader{
		Title:   "CARGO-TEMPLATE-CI",
		Section: "1",
		Source:  "cargo-template-ci " + version.Version,
		Manual:  "cargo-template-ci manual",
	}

	err := doc.GenMan(rootCmd, header, os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating man page: %v\n", err)
		os.Exit(1)
	}
}
