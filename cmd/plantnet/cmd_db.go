package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/plantnet/plantnet/app/models"
	"github.com/plantnet/plantnet/app/repositories"
	"github.com/plantnet/plantnet/config"
	"github.com/plantnet/plantnet/database/seeders"
	"github.com/plantnet/plantnet/internal/server"
)

// withStore loads config, opens the configured store and closes it after fn.
func withStore(ctx context.Context, fn func(*repositories.Store) error) error {
	if err := config.Load(); err != nil {
		return err
	}
	store, err := server.OpenStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close(context.Background())
	return fn(store)
}

// plantnet seed
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert demo users and plants",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd.Context(), func(store *repositories.Store) error {
			fmt.Fprintln(cmd.OutOrStdout(), "Running seeders…")
			return seeders.RunAll(cmd.Context(), store, cmd.OutOrStdout())
		})
	},
}

// plantnet user:promote <email> <role>
var userPromoteCmd = &cobra.Command{
	Use:   "user:promote <email> <role>",
	Short: "Set a user's role directly (bootstraps the first admin)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		email, role := args[0], models.Role(args[1])
		if !role.Valid() {
			return fmt.Errorf("role must be one of customer, seller, admin; got %q", args[1])
		}
		return withStore(cmd.Context(), func(store *repositories.Store) error {
			res, err := store.Users.SetRole(cmd.Context(), email, role, models.StatusVerified)
			if err != nil {
				return err
			}
			if res.MatchedCount == 0 {
				return fmt.Errorf("no user with email %q; sign in once first", email)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", email, role)
			return nil
		})
	},
}
