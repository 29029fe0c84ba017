package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"sectionpulse/api/config"
	"sectionpulse/api/models"
	"sectionpulse/api/utils"
)

func newTokenCmd() *cobra.Command {
	var subject string
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a dashboard read token signed with JWT_SECRET_KEY",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			issuer, err := utils.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
			if err != nil {
				return err
			}
			token, expiresAt, err := issuer.GenerateJWT(subject)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), models.TokenResponse{Token: token, ExpiresAt: expiresAt})
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "dashboard", "token subject")
	return cmd
}

func newHashKeyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-key KEY",
		Short: "Print the bcrypt hash to use as ANALYTICS_API_KEY_HASH",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := utils.HashAPIKey(args[0])
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), hash)
			return err
		},
	}
}
