package main

import (
	"github.com/spf13/cobra"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "ares",
	Short: "Ares Peacemaker, a Telegram bot for player stats and match predictions",
	Long: `Ares receives Telegram updates through a webhook, runs the command in
each message (/start, /version, /refratio, /predict, /stats, /help) and
replies in the originating chat.

It runs as an AWS Lambda function behind API Gateway (ares lambda), as a
plain HTTP server (ares serve) or, for local development, by long polling
(ares poll).`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "YAML config file path")
}
