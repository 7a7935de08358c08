package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/fedscout/fedscout/internal/application"
	"github.com/fedscout/fedscout/internal/cache"
	"github.com/fedscout/fedscout/internal/config"
	"github.com/fedscout/fedscout/internal/ingest"
	"github.com/fedscout/fedscout/internal/persistence/postgres"
	"github.com/fedscout/fedscout/internal/risk"
	"github.com/fedscout/fedscout/internal/scoring"
	"github.com/fedscout/fedscout/internal/winprob"
)

var configPath string

// Execute runs the CLI.
func Execute(ctx context.Context) error {
	root := &cobra.Command{
		Use:   "fedscout",
		Short: "Procurement opportunity matching and decision support",
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to config YAML")

	root.AddCommand(serveCmd(ctx))
	root.AddCommand(ingestCmd(ctx))
	root.AddCommand(scoreCmd(ctx))
	return root.ExecuteContext(ctx)
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	applyLogging(cfg.Logging)
	return cfg, nil
}

func applyLogging(lc config.LoggingConfig) {
	level, err := zerolog.ParseLevel(strings.ToLower(lc.Level))
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
}

func openDB(cfg config.DatabaseConfig) (*sqlx.DB, error) {
	db, err := sqlx.Open("postgres", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("database unreachable: %w", err)
	}
	return db, nil
}

func buildScoreCache(cfg config.RedisConfig) cache.ScoreCache {
	if cfg.URL == "" {
		log.Info().Msg("no redis configured, using in-process score cache")
		return cache.NewMemoryScoreCache(4096, cfg.CacheTTL)
	}
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		log.Warn().Err(err).Msg("invalid redis URL, using in-process score cache")
		return cache.NewMemoryScoreCache(4096, cfg.CacheTTL)
	}
	return cache.NewRedisScoreCache(redis.NewClient(opts), cfg.CacheTTL)
}

func buildScorer(cfg config.ScoringConfig) (*scoring.Scorer, *winprob.Model, error) {
	relWeights := cfg.RelevanceWeights
	if len(relWeights) == 0 {
		relWeights = scoring.DefaultWeights()
	}
	scorer, err := scoring.NewScorer(relWeights)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid relevance weights: %w", err)
	}

	winWeights := cfg.WinWeights
	if len(winWeights) == 0 {
		winWeights = winprob.DefaultWeights()
	}
	model, err := winprob.NewModel(winWeights)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid win probability weights: %w", err)
	}
	return scorer, model, nil
}

func buildScoringService(cfg *config.Config, db *sqlx.DB) (*application.ScoringService, error) {
	scorer, model, err := buildScorer(cfg.Scoring)
	if err != nil {
		return nil, err
	}
	timeout := cfg.Database.QueryTimeout
	return application.NewScoringService(
		postgres.NewOrganizationRepo(db, timeout),
		postgres.NewOpportunityRepo(db, timeout),
		postgres.NewScoreRepo(db, timeout),
		buildScoreCache(cfg.Redis),
		scorer,
		risk.NewAssessor(),
		model,
		log.Logger,
	), nil
}

func buildIngestionService(cfg *config.Config, db *sqlx.DB) *application.IngestionService {
	timeout := cfg.Database.QueryTimeout
	opps := postgres.NewOpportunityRepo(db, timeout)
	logs := postgres.NewIngestionLogRepo(db, timeout)
	client := ingest.NewSAMClient(cfg.Feed.SAMAPIKey, log.Logger)
	runner := ingest.NewService(client, opps, logs, log.Logger)
	return application.NewIngestionService(runner, logs, log.Logger)
}
