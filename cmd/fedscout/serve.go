package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	httpapi "github.com/fedscout/fedscout/internal/interfaces/http"
	"github.com/fedscout/fedscout/internal/persistence/postgres"
	"github.com/fedscout/fedscout/internal/pricing"
	"github.com/fedscout/fedscout/internal/proposal"
	"github.com/fedscout/fedscout/internal/supplychain"
)

func serveCmd(ctx context.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			db, err := openDB(cfg.Database)
			if err != nil {
				return err
			}
			defer db.Close()

			scoringSvc, err := buildScoringService(cfg, db)
			if err != nil {
				return err
			}
			ingestionSvc := buildIngestionService(cfg, db)

			timeout := cfg.Database.QueryTimeout
			metrics := httpapi.NewMetricsRegistry()
			handlers := httpapi.NewHandlers(
				scoringSvc,
				ingestionSvc,
				supplychain.NewVerifier(),
				pricing.NewService(),
				proposal.NewGenerator(),
				postgres.NewOrganizationRepo(db, timeout),
				postgres.NewOpportunityRepo(db, timeout),
				metrics,
				log.Logger,
			)
			server := httpapi.NewServer(cfg.Server, handlers, metrics, log.Logger)

			errCh := make(chan error, 1)
			go func() { errCh <- server.Start() }()

			select {
			case <-ctx.Done():
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
				defer cancel()
				return server.Shutdown(shutdownCtx)
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			}
		},
	}
}
