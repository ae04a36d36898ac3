package main

import (
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/prn-tf/sentinel/internal/domain"
	"github.com/prn-tf/sentinel/internal/repository"
	"github.com/prn-tf/sentinel/internal/server"
	"github.com/prn-tf/sentinel/internal/service"
)

func newUserCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage users",
	}
	cmd.AddCommand(newUserCreateCmd(opts))
	cmd.AddCommand(newUserListCmd(opts))
	return cmd
}

func newUserCreateCmd(opts *rootOptions) *cobra.Command {
	var username, email, password string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a user with the registration rules of the API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := opts.loadConfig(cmd)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			store, err := server.OpenStore(ctx, cfg.Database, logger)
			if err != nil {
				return err
			}
			defer store.Close()

			locker, err := server.NewLocker(ctx, cfg.Redis, logger)
			if err != nil {
				return err
			}
			defer locker.Close()

			users := server.NewUserStore(cfg, store, locker, logger)
			user := domain.NewUser(username, email)
			if err := users.CreateUser(ctx, user, password); err != nil {
				var verr *service.ValidationError
				if errors.As(err, &verr) {
					for _, ie := range verr.Errors {
						fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", ie.Code, ie.Description)
					}
				}
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "created user %s (%s)\n", user.Username, user.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "username (required)")
	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&password, "password", "", "password (required)")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

func newUserListCmd(opts *rootOptions) *cobra.Command {
	var limit, offset int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List users",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := opts.loadConfig(cmd)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			store, err := server.OpenStore(ctx, cfg.Database, logger)
			if err != nil {
				return err
			}
			defer store.Close()

			users := server.NewUserStore(cfg, store, nil, logger)
			result, err := users.ListUsers(ctx, service.ListUsersInput{Limit: limit, Offset: offset})
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tUSERNAME\tEMAIL\tCREATED")
			for _, u := range result.Users {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", u.ID, u.Username, u.Email, u.CreatedAt.Format(time.RFC3339))
			}
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d of %d users\n", len(result.Users), result.TotalCount)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", repository.DefaultListLimit, "maximum number of users")
	cmd.Flags().IntVar(&offset, "offset", 0, "number of users to skip")

	return cmd
}
