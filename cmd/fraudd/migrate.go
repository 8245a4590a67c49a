package main

import (
	"fmt"
	"io/fs"

	"github.com/spf13/cobra"

	pgrepo "github.com/bibbank/frauddetect/internal/infrastructure/postgres"
	pg "github.com/bibbank/frauddetect/pkg/postgres"
)

func newMigrateCmd(a *app) *cobra.Command {
	var source string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
		Long:  "Apply or roll back schema migrations. The embedded migrations are used unless --source names a migrate source URL such as file://migrations.",
	}
	cmd.PersistentFlags().StringVar(&source, "source", "", "migration source URL (default: embedded)")

	// An explicit source URL replaces the embedded migrations.
	embedded := func() (fs.FS, string) {
		if source != "" {
			return nil, ""
		}
		return pgrepo.Migrations, pgrepo.MigrationsDir
	}

	run := func(direction pg.Direction) func(*cobra.Command, []string) error {
		return func(_ *cobra.Command, _ []string) error {
			fsys, dir := embedded()
			if err := pg.Migrate(a.cfg.Database.URL, source, fsys, dir, direction); err != nil {
				return err
			}
			a.logger.Info("migrations applied", "direction", direction.String())
			return nil
		}
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			RunE:  run(pg.Up),
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back all migrations",
			RunE:  run(pg.Down),
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the current schema version",
			RunE: func(cmd *cobra.Command, _ []string) error {
				fsys, dir := embedded()
				version, dirty, err := pg.MigrationVersion(a.cfg.Database.URL, source, fsys, dir)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "version=%d dirty=%t\n", version, dirty)
				return err
			},
		},
	)
	return cmd
}
