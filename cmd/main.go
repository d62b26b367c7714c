package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"clinic-scheduler/cmd/bootstrap"
	"clinic-scheduler/internal/delivery/dto"
	"clinic-scheduler/internal/domain/entity"
	"clinic-scheduler/internal/infrastructure/database"
	"clinic-scheduler/internal/usecase"
	"clinic-scheduler/pkg/jwt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "clinic-scheduler",
		Short: "Clinic appointment scheduling API",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(waitlistCmd())
	rootCmd.AddCommand(tokenCmd())

	if err := rootCmd.Execute(); err != nil {
		logrus.Errorf("%v", err)
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := bootstrap.New()
			if err != nil {
				return fmt.Errorf("failed to initialize application: %w", err)
			}
			return app.Run()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(func(m *database.Migrator) error {
				return m.Up()
			})
		},
	}

	downCmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			steps, _ := cmd.Flags().GetInt("steps")
			return withMigrator(func(m *database.Migrator) error {
				return m.Down(steps)
			})
		},
	}
	downCmd.Flags().Int("steps", 1, "Number of migrations to roll back")

	cmd.AddCommand(upCmd, downCmd)
	return cmd
}

func withMigrator(fn func(m *database.Migrator) error) error {
	cfg, log, err := bootstrap.LoadEnvironment()
	if err != nil {
		return err
	}

	m, err := database.NewMigrator(cfg.DB, log)
	if err != nil {
		return err
	}
	defer m.Close()

	return fn(m)
}

func waitlistCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "waitlist",
		Short: "Waitlist maintenance",
	}

	expireCmd := &cobra.Command{
		Use:   "expire",
		Short: "Expire waitlist entries whose preferred date has passed",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := bootstrap.New()
			if err != nil {
				return fmt.Errorf("failed to initialize application: %w", err)
			}
			defer app.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
			defer cancel()

			expired, err := app.Waitlist.ExpireStale(ctx)
			if err != nil {
				return err
			}
			app.Log.Infof("Waitlist entries expired: count=%d", expired)
			return nil
		},
	}

	cmd.AddCommand(expireCmd)
	return cmd
}

func tokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Manage API access tokens",
	}

	issueCmd := &cobra.Command{
		Use:   "issue",
		Short: "Issue an access token for a clinic user",
		RunE: func(cmd *cobra.Command, args []string) error {
			rawUserID, _ := cmd.Flags().GetString("user")
			email, _ := cmd.Flags().GetString("email")
			roleName, _ := cmd.Flags().GetString("role")

			userID, err := uuid.Parse(rawUserID)
			if err != nil {
				return fmt.Errorf("invalid user id %q: %w", rawUserID, err)
			}
			roleID, ok := entity.RoleNames[roleName]
			if !ok {
				return fmt.Errorf("unknown role %q", roleName)
			}

			cfg, log, err := bootstrap.LoadEnvironment()
			if err != nil {
				return err
			}
			log.SetOutput(cmd.ErrOrStderr())

			sessions := usecase.NewSessionUsecase(log, jwt.NewJWTService(cfg.JWT), bootstrap.NewTokenStore(nil))
			token, err := sessions.IssueToken(cmd.Context(), &dto.IssueTokenRequest{
				UserID: userID,
				Email:  email,
				RoleID: roleID,
			})
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(token)
		},
	}
	issueCmd.Flags().String("user", "", "User ID (UUID)")
	issueCmd.Flags().String("email", "", "User email")
	issueCmd.Flags().String("role", "staff", "Role name (admin, doctor, staff, patient)")
	_ = issueCmd.MarkFlagRequired("user")

	cmd.AddCommand(issueCmd)
	return cmd
}
