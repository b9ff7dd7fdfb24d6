// Package main is the entry point for the sqlmodel CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/syssam/sqlmodel/cmd/sqlmodel/commands"
)

// Version information (set by build)
var Version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	rootCmd := &cobra.Command{
		Use:           "sqlmodel",
		Short:         "Compile and run model queries",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	opts := commands.NewOptions(rootCmd)
	rootCmd.AddCommand(commands.NewCompileCommand(opts))
	rootCmd.AddCommand(commands.NewFindCommand(opts))
	rootCmd.AddCommand(commands.NewCountCommand(opts))
	return rootCmd.Execute()
}
