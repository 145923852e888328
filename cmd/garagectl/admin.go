package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"

	"github.com/iliyamo/garage-api/internal/model"
	"github.com/iliyamo/garage-api/internal/repository"
	"github.com/iliyamo/garage-api/internal/utils"
)

var (
	adminUsername string
	adminPassword string
)

var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create an administrator account",
	Long: `Create an administrator account directly in the database.  This is how
the first admin is bootstrapped, since registering an admin over HTTP
requires an existing admin token.

The password may be given with --password or the GARAGE_ADMIN_PASSWORD
environment variable.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		password := adminPassword
		if password == "" {
			password = os.Getenv("GARAGE_ADMIN_PASSWORD")
		}

		env, err := openEnv()
		if err != nil {
			return err
		}
		defer env.Close()

		u, err := createAdmin(cmd.Context(), env.db, adminUsername, password, env.cfg.BcryptCost)
		if err != nil {
			return err
		}
		admins, err := repository.NewUserRepo(env.db).CountAdmins(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to count admins: %w", err)
		}
		env.log.Infow("admin created", "user_id", u.ID, "username", u.Username, "admins", admins)
		fmt.Fprintf(cmd.OutOrStdout(), "created admin %q (id %d), %d admin account(s) in total\n", u.Username, u.ID, admins)
		return nil
	},
}

func init() {
	createAdminCmd.Flags().StringVar(&adminUsername, "username", "", "admin username (3-20 characters)")
	createAdminCmd.Flags().StringVar(&adminPassword, "password", "", "admin password")
	_ = createAdminCmd.MarkFlagRequired("username")
	rootCmd.AddCommand(createAdminCmd)
}

// createAdmin applies the registration rules and stores an admin account.
func createAdmin(ctx context.Context, db *sqlx.DB, username, password string, cost int) (model.User, error) {
	if err := utils.ValidatePassword(password); err != nil {
		return model.User{}, err
	}
	if err := utils.ValidateUsername(username); err != nil {
		return model.User{}, err
	}
	u, err := repository.NewUserRepo(db).Create(ctx, username, password, model.RoleAdmin, cost)
	if errors.Is(err, repository.ErrDuplicate) {
		return model.User{}, fmt.Errorf("username %q already exists", username)
	}
	if err != nil {
		return model.User{}, fmt.Errorf("failed to create admin: %w", err)
	}
	return u, nil
}
