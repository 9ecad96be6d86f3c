package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AlefLorenzo/DeliveryFoods/internal/auth"
	"github.com/AlefLorenzo/DeliveryFoods/internal/models"
)

var tokenCmd = &cobra.Command{
	Use:   "token <user-id> <role>",
	Short: "Issue an access token for local testing",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		tokens, err := auth.NewTokenService(cfg.Auth)
		if err != nil {
			return err
		}
		token, err := tokens.Issue(args[0], models.Role(args[1]))
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(tokenCmd)
}
