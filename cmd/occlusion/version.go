package main

import (
	"fmt"
	"os"

	"github.com/aretw0/occlusion"
	"github.com/aretw0/occlusion/internal/cli"
	"github.com/aretw0/occlusion/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of occlusion",
	Run: func(cmd *cobra.Command, args []string) {
		if cli.IsTerminal(os.Stdout) {
			tui.PrintBanner(os.Stdout, occlusion.Version)
			return
		}
		fmt.Printf("occlusion version %s\n", occlusion.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
