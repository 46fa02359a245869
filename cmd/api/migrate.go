package main

import (
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/spf13/cobra"

	"github.com/pkordes/tripplanner/internal/config"
	"github.com/pkordes/tripplanner/migrations"
)

var migrateStatus bool

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations and exit",
	Long: `Apply every pending goose migration to DATABASE_URL and exit.
The server applies them on startup as well; this command is for deploy
pipelines that migrate before rolling out new instances.

Examples:
  api migrate            # apply pending migrations
  api migrate --status   # list migrations and whether each is applied`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("open pool: %w", err)
		}
		defer pool.Close()
		db := stdlib.OpenDBFromPool(pool)
		defer db.Close()

		out := cmd.OutOrStdout()
		if migrateStatus {
			statuses, err := migrations.Status(ctx, db)
			if err != nil {
				return err
			}
			for _, s := range statuses {
				fmt.Fprintf(out, "%05d  %-8s  %s\n", s.Version, s.State, s.Path)
			}
			return nil
		}

		n, err := migrations.Up(ctx, db)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "applied %d migration(s)\n", n)
		return nil
	},
}

func init() {
	migrateCmd.Flags().BoolVar(&migrateStatus, "status", false, "list migrations instead of applying them")
}
