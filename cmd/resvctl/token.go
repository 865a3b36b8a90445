package main

import (
	"fmt"

	"reservation-engine/cmd/bootstrap"
	"reservation-engine/internal/pkg/config"

	"github.com/spf13/cobra"
)

func newTokenCmd() *cobra.Command {
	var requester string

	c := &cobra.Command{
		Use:   "token",
		Short: "Issue an access token for a requester",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			svc, err := bootstrap.NewJWTService(cfg)
			if err != nil {
				return err
			}
			token, err := svc.GenerateToken(requester)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	c.Flags().StringVar(&requester, "requester", "", "requester id the token is issued for")
	_ = c.MarkFlagRequired("requester")
	return c
}
