package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jdelaire/ares/adapters/httpserver"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the webhook over HTTP",
	Long: `Serve the webhook at /{stage}/ and registration at /{stage}/set_webhook,
plus /healthz and /metrics. Put it behind a TLS-terminating proxy; Telegram
only delivers to https URLs.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		addr := a.cfg.ListenAddr
		if serveAddr != "" {
			addr = serveAddr
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		srv := httpserver.New(httpserver.Config{Addr: addr, Stage: a.cfg.Stage}, a.webhook, a.registry, a.logger)
		return srv.ListenAndServe(ctx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides listen_addr)")
	rootCmd.AddCommand(serveCmd)
}
