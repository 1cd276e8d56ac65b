package main

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/jdelaire/ares/core"
)

var (
	webhookHost  string
	webhookStage string
)

var setWebhookCmd = &cobra.Command{
	Use:   "set-webhook",
	Short: "Register https://{host}/{stage}/ as the bot's webhook",
	RunE: func(cmd *cobra.Command, args []string) error {
		if webhookHost == "" {
			return fmt.Errorf("--host is required")
		}
		a, err := newApp()
		if err != nil {
			return err
		}
		stage := webhookStage
		if stage == "" {
			stage = a.cfg.Stage
		}

		resp := a.webhook.Register(cmd.Context(), core.Event{Host: webhookHost, Stage: stage})
		fmt.Fprintf(cmd.OutOrStdout(), "%d %s\n", resp.StatusCode, resp.Body)
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("webhook registration failed for %s", core.WebhookURL(webhookHost, stage))
		}
		return nil
	},
}

func init() {
	setWebhookCmd.Flags().StringVar(&webhookHost, "host", "", "public host name serving the webhook")
	setWebhookCmd.Flags().StringVar(&webhookStage, "stage", "", "deployment stage path segment (default from config)")
	rootCmd.AddCommand(setWebhookCmd)
}
