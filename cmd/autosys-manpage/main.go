package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra/doc"

	"github.com/arthur-debert/autosys/internal/cli"
	"github.com/arthur-debert/autosys/internal/version"
)

func main() {
	rootCmd := cli.NewRootCmd(&cli.App{SetupLogging: func(int) {}})

	header := &doc.GenManHeader{
		Title:   "AUTOSYS",
		Section: "1",
		Source:  "autosys " + version.Version,
		Manual:  "autosys manual",
	}

	dir := "."
	if len(os.Args) > 1 {
		dir = os.Args[1]
	}
	if err := doc.GenManTree(rootCmd, header, dir); err != nil {
		fmt.Fprintf(os.Stderr, "Error generating man pages: %v\n", err)
		os.Exit(1)
	}
}
