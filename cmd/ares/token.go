package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jdelaire/ares/internal/config"
	"github.com/jdelaire/ares/internal/keychain"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Manage the bot token stored in the system keychain",
}

var tokenSetCmd = &cobra.Command{
	Use:   "set [token]",
	Short: "Store the bot token in the system keychain",
	Long: `Store the bot token under keychain_account. With no argument the
token is read from standard input. TELEGRAM_TOKEN still takes precedence.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		if cfg.KeychainAccount == "" {
			return fmt.Errorf("keychain_account is empty")
		}

		var token string
		if len(args) == 1 {
			token = args[0]
		} else {
			line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if err != nil && line == "" {
				return fmt.Errorf("read token: %w", err)
			}
			token = line
		}
		token = strings.TrimSpace(token)
		if token == "" {
			return config.ErrMissingToken
		}

		if err := keychain.Set(cfg.KeychainAccount, token); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "token stored for account %q\n", cfg.KeychainAccount)
		return nil
	},
}

func init() {
	tokenCmd.AddCommand(tokenSetCmd)
	rootCmd.AddCommand(tokenCmd)
}
