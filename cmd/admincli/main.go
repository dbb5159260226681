// Command admincli provisions admin users from the command line. There is no
// self-service signup; the first account always comes from here.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/cmozaiq-saas/mvp-booster/internal/config"
	"github.com/cmozaiq-saas/mvp-booster/internal/database"
	"github.com/cmozaiq-saas/mvp-booster/internal/repository"
	"github.com/cmozaiq-saas/mvp-booster/internal/service"
	"github.com/cmozaiq-saas/mvp-booster/internal/session"
)

func main() {
	log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()

	rootCmd := &cobra.Command{
		Use:           "admincli",
		Short:         "Administrative provisioning for the admin panel",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.AddCommand(newCreateCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newCreateCmd() *cobra.Command {
	var email, name, password string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an admin user",
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				password = os.Getenv("ADMIN_PASSWORD")
			}
			if password == "" {
				return fmt.Errorf("password required: pass --password or set ADMIN_PASSWORD")
			}

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}

			db, err := database.Connect(&cfg.DB)
			if err != nil {
				return fmt.Errorf("connect database: %w", err)
			}
			defer db.Close()

			// A fresh account has no sessions to revoke, so the user service
			// can run against a throwaway in-memory store here.
			userSvc := service.NewAdminUserService(
				repository.NewAdminUserRepository(db),
				session.NewMemoryStore(),
			)

			user, err := userSvc.Create(context.Background(), &service.CreateAdminUserRequest{
				Email:    email,
				Name:     name,
				Password: password,
			})
			if err != nil {
				return err
			}

			fmt.Printf("created admin user %d (%s)\n", user.ID, user.Email)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "email address (required)")
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&password, "password", "", "password (or set ADMIN_PASSWORD)")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}
