package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/viper"

	"github.com/curationd/taxora/internal/config"
	"github.com/curationd/taxora/internal/engine"
	"github.com/curationd/taxora/internal/hitl"
	"github.com/curationd/taxora/internal/inference"
	"github.com/curationd/taxora/internal/rules"
	"github.com/curationd/taxora/internal/semantic"
	"github.com/curationd/taxora/internal/storage"
)

// initStorage opens the SQLite database and applies migrations.
func initStorage(ctx context.Context) (*storage.SQLiteStorage, error) {
	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		dbPath = config.DefaultDatabasePath()
	} else {
		dbPath = config.ExpandPath(dbPath)
	}

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// buildRuleEngine loads either the configured custom rule file or the defaults.
func buildRuleEngine() (*rules.Engine, error) {
	rulesFile := viper.GetString("rules.file")
	if rulesFile == "" {
		return rules.NewEngine(nil)
	}

	ruleset, err := rules.LoadFromFile(config.ExpandPath(rulesFile))
	if err != nil {
		return nil, err
	}

	slog.Info("Loaded custom rules", "file", rulesFile, "count", len(ruleset))
	return rules.NewEngine(ruleset)
}

// buildOrchestrator wires the full pipeline from viper configuration.
func buildOrchestrator(store *storage.SQLiteStorage) (*engine.Orchestrator, *inference.Stage, error) {
	ruleEngine, err := buildRuleEngine()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build rule engine: %w", err)
	}

	providerCfg := inference.ProviderConfig{
		Provider:    viper.GetString("inference.provider"),
		APIKey:      viper.GetString("inference.api_key"),
		Model:       viper.GetString("inference.model"),
		Temperature: viper.GetFloat64("inference.temperature"),
		MaxTokens:   viper.GetInt("inference.max_tokens"),
		Timeout:     viper.GetDuration("inference.timeout"),
	}
	if providerCfg.Provider == "" {
		providerCfg.Provider = "openai"
	}

	stageCfg := inference.StageConfig{
		CacheTTL:    viper.GetDuration("inference.cache_ttl"),
		RateLimit:   viper.GetInt("inference.rate_limit"),
		CallTimeout: providerCfg.Timeout,
		MaxRetries:  viper.GetInt("inference.max_retries"),
		RetryDelay:  viper.GetDuration("inference.retry_delay"),
	}
	if stageCfg.CallTimeout == 0 {
		stageCfg.CallTimeout = 30 * time.Second
	}

	ranker := semantic.NewRanker(viper.GetInt("semantic.top_k"))

	stage := buildInferenceStage(providerCfg, stageCfg, ranker)

	queue := hitl.NewQueue(store, slog.Default())

	engineCfg := engine.Config{
		TaxonomyVersion: viper.GetString("taxonomy.version"),
		BatchWorkers:    viper.GetInt("classification.batch_workers"),
	}

	orch := engine.New(ruleEngine, stage, store, store, queue, engineCfg, slog.Default())
	return orch, stage, nil
}

// buildInferenceStage constructs the inference stage, degrading to pure
// semantic fallback when inference is disabled or no credentials are set.
func buildInferenceStage(providerCfg inference.ProviderConfig, stageCfg inference.StageConfig, ranker *semantic.Ranker) *inference.Stage {
	disabled := viper.GetBool("inference.disabled")

	if disabled || providerCfg.APIKey == "" {
		if !disabled {
			slog.Warn("no inference API key configured, running with semantic fallback only")
		}
		return inference.NewStage(nil, nil, ranker, stageCfg, slog.Default())
	}

	provider, err := inference.NewProvider(providerCfg)
	if err != nil {
		slog.Warn("failed to build inference provider, running with semantic fallback only", "error", err)
		provider = nil
	}

	embedder, err := inference.NewEmbedder(inference.ProviderConfig{
		Provider: viper.GetString("embedding.provider"),
		APIKey:   providerCfg.APIKey,
		Model:    viper.GetString("embedding.model"),
		Timeout:  providerCfg.Timeout,
	})
	if err != nil {
		slog.Warn("failed to build embedding provider, fallback will use the uncategorized result", "error", err)
		embedder = nil
	}

	return inference.NewStage(provider, embedder, ranker, stageCfg, slog.Default())
}
