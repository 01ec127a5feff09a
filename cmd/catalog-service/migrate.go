package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/prudhivi99/guitar-store/internal/config"
	"github.com/prudhivi99/guitar-store/internal/db"
)

var migrateCmd = &cobra.Command{
	Use:       "migrate [up|down|status]",
	Short:     "Apply, roll back or inspect database migrations",
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"up", "down", "status"},
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		database, err := db.NewPostgresDB(ctx, cfg.DB)
		if err != nil {
			return err
		}
		defer database.Close()

		switch args[0] {
		case "up":
			return database.MigrateUp(ctx)
		case "down":
			return database.MigrateDown(ctx)
		case "status":
			return database.MigrateStatus(ctx)
		}
		return fmt.Errorf("unknown migrate command %q", args[0])
	},
}
