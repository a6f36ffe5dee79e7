package main

import (
	"os"

	"github.com/aretw0/occlusion/internal/cli"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <experiment>",
	Short: "Check every trial of an experiment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return cli.Validate(args[0], logger, os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
