package main

import (
	"github.com/spf13/cobra"

	"github.com/jurisio/casebrain/internal/infrastructure/database/postgres"
)

func newMigrateCmd(load configLoader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage database schema migrations",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				cfg, err := load()
				if err != nil {
					return err
				}
				if err := postgres.RunMigrations(cfg.Database.URL(), cfg.MigrationsPath); err != nil {
					return err
				}
				cmd.Println("migrations applied")
				return nil
			},
		},
	)

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back the most recent migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			if err := postgres.RollbackMigration(cfg.Database.URL(), cfg.MigrationsPath, steps); err != nil {
				return err
			}
			cmd.Printf("rolled back %d migration(s)\n", steps)
			return nil
		},
	}
	down.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back")
	cmd.AddCommand(down)

	cmd.AddCommand(
		&cobra.Command{
			Use:   "status",
			Short: "Show the current migration version",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				cfg, err := load()
				if err != nil {
					return err
				}
				version, dirty, err := postgres.MigrationStatus(cfg.Database.URL(), cfg.MigrationsPath)
				if err != nil {
					return err
				}
				if dirty {
					cmd.Printf("version %d (dirty)\n", version)
				} else {
					cmd.Printf("version %d\n", version)
				}
				return nil
			},
		},
	)

	return cmd
}
