package main

import (
	"fmt"
	"os"

	"github.com/arthur-debert/template-ci/internal/cli"
	"github.com/arthur-debert/template-ci/pkg/ui"
)

func main() {
	rootCmd := cli.NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		errorStyle := ui.GetStyle("Error")
		_, _ = fmt.Fprintln(os.Stderr, errorStyle.Render(fmt.Sprintf("Error: %v", err)))
		os.Exit(1)
	}
}
