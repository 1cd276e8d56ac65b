package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jdelaire/ares/adapters/telegram_notifier"
)

// Version is set via ldflags at build time.
var Version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version of ares",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "ares %s (telegram-bot-api %s)\n", Version, telegram_notifier.LibraryVersion())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
