package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"go-trades-backend/config"
	"go-trades-backend/internal/migrate"
	"go-trades-backend/pkg/database"
	"go-trades-backend/pkg/logger"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "migrate",
		Short: "Manage database migrations",
		Long: `Manage the SQL migrations embedded in the trades backend.

Available subcommands:
  up      - Apply all pending migrations
  status  - Show which migrations have been applied`,
		SilenceUsage: true,
	}
	root.AddCommand(newUpCmd(), newStatusCmd())
	return root
}

func newUpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withPool(cmd.Context(), func(ctx context.Context, pool *pgxpool.Pool) error {
				if err := migrate.Run(ctx, pool); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Migrations applied")
				return nil
			})
		},
	}
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withPool(cmd.Context(), func(ctx context.Context, pool *pgxpool.Pool) error {
				statuses, err := migrate.List(ctx, pool)
				if err != nil {
					return err
				}
				return printStatus(cmd.OutOrStdout(), statuses)
			})
		},
	}
}

func printStatus(out io.Writer, statuses []migrate.Status) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "VERSION\tAPPLIED AT")
	for _, s := range statuses {
		applied := "pending"
		if s.AppliedAt != nil {
			applied = s.AppliedAt.UTC().Format("2006-01-02 15:04:05")
		}
		fmt.Fprintf(w, "%s\t%s\n", s.Version, applied)
	}
	return w.Flush()
}

func withPool(ctx context.Context, fn func(context.Context, *pgxpool.Pool) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	logger.Init(cfg.LogLevel)

	poolCfg := database.DefaultPoolConfig()
	poolCfg.SimpleProtocol = cfg.DBSimpleProtocol
	poolCfg.MinConns = 0
	pool, err := database.NewPostgresConnection(ctx, cfg.DBUrl, poolCfg)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()
	return fn(ctx, pool)
}
