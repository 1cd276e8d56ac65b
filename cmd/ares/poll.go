package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jdelaire/ares/adapters/telegram_receiver"
)

var pollCmd = &cobra.Command{
	Use:   "poll",
	Short: "Receive updates by long polling instead of a webhook",
	Long: `Delete any registered webhook and long-poll Telegram for updates.
Useful during development when no public https URL is available.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if err := a.notifier.DeleteWebhook(ctx); err != nil {
			return err
		}
		return telegram_receiver.New(a.bot, a.dispatcher.Handle, a.logger).Start(ctx)
	},
}

func init() {
	rootCmd.AddCommand(pollCmd)
}
