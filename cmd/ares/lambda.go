package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jdelaire/ares/adapters/apigw"
)

var lambdaHandler string

var lambdaCmd = &cobra.Command{
	Use:   "lambda",
	Short: "Run as an AWS Lambda function behind API Gateway",
	Long: `Run as a Lambda function. --handler selects the operation:

  webhook      handle Telegram updates (POST with a JSON body)
  set_webhook  register https://{Host}/{stage}/ with Telegram`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var pick func(a *app) apigw.Handler
		switch lambdaHandler {
		case "webhook":
			pick = func(a *app) apigw.Handler { return apigw.WebhookHandler(a.webhook) }
		case "set_webhook":
			pick = func(a *app) apigw.Handler { return apigw.SetWebhookHandler(a.webhook) }
		default:
			return fmt.Errorf("unknown handler %q: must be webhook or set_webhook", lambdaHandler)
		}

		a, err := newApp()
		if err != nil {
			return err
		}
		apigw.Start(pick(a))
		return nil
	},
}

func init() {
	lambdaCmd.Flags().StringVar(&lambdaHandler, "handler", "webhook", "operation to serve: webhook or set_webhook")
	rootCmd.AddCommand(lambdaCmd)
}
