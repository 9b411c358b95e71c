package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/R3E-Network/library_service/internal/app/runtime"
	"github.com/R3E-Network/library_service/internal/config"
	"github.com/R3E-Network/library_service/internal/platform/migrations"
)

func newMigrateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}
	cmd.AddCommand(
		migrateAction("up", "Apply all pending migrations", func(m *migrations.Migrator, cmd *cobra.Command) error {
			return m.Up()
		}),
		migrateAction("down", "Roll back the most recent migration", func(m *migrations.Migrator, cmd *cobra.Command) error {
			return m.Down()
		}),
		migrateAction("version", "Print the applied schema version", func(m *migrations.Migrator, cmd *cobra.Command) error {
			version, dirty, ok, err := m.Version()
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "no migrations applied")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "version %d (dirty=%v)\n", version, dirty)
			return nil
		}),
	)
	return cmd
}

func migrateAction(use, short string, run func(*migrations.Migrator, *cobra.Command) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Decode()
			if err != nil {
				return err
			}
			log := runtime.NewLogger(cfg)
			defer log.Close()

			db, err := runtime.OpenDatabase(cmd.Context(), cfg.Database, log)
			if err != nil {
				return err
			}
			defer db.Close()

			m, err := migrations.New(cmd.Context(), db.DB)
			if err != nil {
				return err
			}
			defer m.Close()

			if err := run(m, cmd); err != nil {
				return fmt.Errorf("migrate %s: %w", use, err)
			}
			log.WithField("action", use).Info("migration command finished")
			return nil
		},
	}
}
