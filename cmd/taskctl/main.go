package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"auratask/internal/db"
	"auratask/internal/model"
	"auratask/internal/repository"
)

// taskctl consolidates the offline maintenance jobs: applying the schema
// migration list, sweeping expired session rows, and seeding demo data.
// Nothing here runs as part of request handling.

var dsn string

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "taskctl",
		Short: "Maintenance tooling for the Aura Task API",
		Long: `taskctl runs the offline maintenance jobs for the task API:
schema migrations, expired-session sweeps, and demo data seeding.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&dsn, "dsn", os.Getenv("MYSQL_DSN"), "MySQL DSN (defaults to MYSQL_DSN)")

	rootCmd.AddCommand(newMigrateCommand())
	rootCmd.AddCommand(newSweepSessionsCommand())
	rootCmd.AddCommand(newSeedCommand())

	return rootCmd
}

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the schema migration list in order",
		RunE: func(cmd *cobra.Command, args []string) error {
			gormDB, err := db.NewMySQL(dsn)
			if err != nil {
				return err
			}
			if err := db.Migrate(gormDB); err != nil {
				return err
			}
			cmd.Println("migrations applied")
			return nil
		},
	}
}

func newSweepSessionsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep-sessions",
		Short: "Delete expired session rows",
		Long: `Sessions are never invalidated during request handling; this sweep is
the only thing that removes expired rows.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			gormDB, err := db.NewMySQL(dsn)
			if err != nil {
				return err
			}
			sessions := repository.NewSessionRepository(gormDB)
			deleted, err := sessions.DeleteExpired(context.Background(), time.Now())
			if err != nil {
				return err
			}
			cmd.Printf("deleted %d expired sessions\n", deleted)
			return nil
		},
	}
}

func newSeedCommand() *cobra.Command {
	var (
		email    string
		password string
		name     string
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create a demo user with a few tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			gormDB, err := db.NewMySQL(dsn)
			if err != nil {
				return err
			}
			if err := db.Migrate(gormDB); err != nil {
				return err
			}

			ctx := context.Background()
			users := repository.NewUserRepository(gormDB)
			tasks := repository.NewTaskRepository(gormDB)

			if existing, err := users.FindByEmail(ctx, email); err == nil && existing != nil {
				cmd.Printf("user %s already exists, skipping\n", email)
				return nil
			}

			hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
			if err != nil {
				return err
			}
			user := &model.User{Email: email, PasswordHash: string(hashed), Name: name}
			if err := users.Create(ctx, user); err != nil {
				return err
			}

			due := time.Now().Add(48 * time.Hour)
			seedTasks := []model.Task{
				{UserID: user.ID, Title: "Review project plan", Priority: model.PriorityHigh, DueDate: &due},
				{UserID: user.ID, Title: "Write weekly report", Priority: model.PriorityMedium},
				{UserID: user.ID, Title: "Clean up backlog", Priority: model.PriorityLow, Completed: true},
			}
			for i := range seedTasks {
				if err := tasks.Create(ctx, &seedTasks[i]); err != nil {
					return err
				}
			}

			cmd.Printf("seeded user %s with %d tasks\n", email, len(seedTasks))
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "demo@example.com", "email for the demo user")
	cmd.Flags().StringVar(&password, "password", "password123", "password for the demo user")
	cmd.Flags().StringVar(&name, "name", "Demo User", "display name for the demo user")

	return cmd
}
