package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/Noah170803/eventio/internal/config"
	"github.com/Noah170803/eventio/internal/domain/users"
	"github.com/Noah170803/eventio/internal/metrics"
	"github.com/Noah170803/eventio/internal/storage"
	"github.com/spf13/cobra"
)

func newSessionsCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "Session maintenance",
	}

	purge := &cobra.Command{
		Use:   "purge",
		Short: "Delete expired sessions",
		Long: `Delete every session whose expiry has passed. The server never does this
on its own; run it from cron or a scheduler.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return fmt.Errorf("config error: %w", err)
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
			defer cancel()

			deleted, err := purgeSessions(ctx, cfg)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "purged %d expired sessions\n", deleted)
			return nil
		},
	}

	cmd.AddCommand(purge)
	return cmd
}

func purgeSessions(ctx context.Context, cfg config.Config) (int64, error) {
	logger := config.NewLogger(cfg.Logging)

	repo, err := storage.Open(ctx, cfg.Database.URL, storage.Options{
		MaxConnections: 1,
		AutoMigrate:    cfg.Database.AutoMigrate,
	}, logger)
	if err != nil {
		return 0, fmt.Errorf("database: %w", err)
	}
	defer func() { _ = repo.Close() }()

	deleted, err := users.NewService(repo.Users(), logger).PurgeExpiredSessions(ctx)
	if err != nil {
		return 0, err
	}
	metrics.SessionsPurged.Add(float64(deleted))
	return deleted, nil
}
