package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/phrazzld/tutorgen/internal/auth"
)

func tokenCmd(e *env) *cobra.Command {
	var subject string

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Sign a bearer token for the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if e.cfg.Auth.JWTSecret == "" {
				return errors.New("auth.jwt_secret is not configured")
			}
			tokens, err := auth.NewTokens(e.cfg.Auth.JWTSecret, e.cfg.Auth.TokenLifetime())
			if err != nil {
				return err
			}
			token, err := tokens.Issue(cmd.Context(), subject)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
			return err
		},
	}

	cmd.Flags().StringVar(&subject, "subject", "", "token subject, such as a user or service name")
	_ = cmd.MarkFlagRequired("subject")
	return cmd
}
