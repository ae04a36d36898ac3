package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/prn-tf/sentinel/internal/auth"
	"github.com/prn-tf/sentinel/internal/server"
)

func newTokenCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Inspect bearer tokens",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "inspect <token>",
		Short: "Validate a token against the configured key and print its claims",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTokenInspect(cmd, opts, args)
		},
	})
	return cmd
}

func runTokenInspect(cmd *cobra.Command, opts *rootOptions, args []string) error {
	cfg, _, err := opts.loadConfig(cmd)
	if err != nil {
		return err
	}

	tokenCfg, err := server.TokenConfig(cfg.Auth)
	if err != nil {
		return err
	}
	validator, err := auth.NewJWTValidator(tokenCfg)
	if err != nil {
		return err
	}

	claims, err := validator.Validate(args[0])
	if err != nil {
		return fmt.Errorf("token rejected: %w", err)
	}

	out, err := json.MarshalIndent(claims, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}
