package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/prn-tf/sentinel/internal/pkg/crypto"
)

func newKeygenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "keygen",
		Short: "Generate a random signing key",
		Long: `Generate a random 32-byte HMAC signing key, hex encoded.
Use it as auth.signing_key or SENTINEL_AUTH_SIGNING_KEY.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			key, err := crypto.GenerateSigningKey()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), key)
			return nil
		},
	}
}
