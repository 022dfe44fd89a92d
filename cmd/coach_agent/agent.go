package main

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/sprouthq/recording-pipeline/internal/config"
	"github.com/sprouthq/recording-pipeline/internal/db"
	"github.com/sprouthq/recording-pipeline/internal/llm"
	"github.com/sprouthq/recording-pipeline/internal/notify"
	"github.com/sprouthq/recording-pipeline/internal/pipeline"
	"github.com/sprouthq/recording-pipeline/internal/storage"
	"github.com/sprouthq/recording-pipeline/internal/transcribe"
)

// loadConfig merges the optional config file with the environment and
// validates the result.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := &config.Config{}
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	cfg.FromEnv()
	if v, _ := cmd.Flags().GetBool("verbose"); v {
		cfg.Verbose = true
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// agent bundles the wired collaborators behind the CLI commands.
type agent struct {
	cfg   *config.Config
	db    *db.DB
	store *storage.FileStore
	orch  *pipeline.Orchestrator
	llm   llm.Client
	log   *logrus.Logger
}

// newAgent connects every collaborator from the validated config.
func newAgent(ctx context.Context, cfg *config.Config) (*agent, error) {
	log := logrus.New()
	if cfg.Verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	storageDir := cfg.StorageDir
	if storageDir == "" {
		storageDir = "data/audio"
	}
	store, err := storage.NewFileStore(storageDir)
	if err != nil {
		database.Close()
		return nil, err
	}

	client, err := llm.NewClient(ctx, nil, cfg.GeminiAPIKey)
	if err != nil {
		database.Close()
		return nil, err
	}

	stt := transcribe.NewClient(cfg.TranscribeURL, cfg.TranscribeKey, cfg.Timeout())

	var notifier notify.Notifier
	if cfg.NotifyURL != "" {
		notifier = notify.NewWebhookNotifier(cfg.NotifyURL, cfg.Timeout())
	}

	retry := pipeline.DefaultRetryPolicy()
	if cfg.MaxAttempts > 0 {
		retry.MaxAttempts = cfg.MaxAttempts
	}

	orch := pipeline.New(database, store, stt, client, notifier, retry, log)

	return &agent{
		cfg:   cfg,
		db:    database,
		store: store,
		orch:  orch,
		llm:   client,
		log:   log,
	}, nil
}

// Close releases the agent's connections.
func (a *agent) Close() {
	if a.llm != nil {
		_ = a.llm.Close()
	}
	if a.db != nil {
		a.db.Close()
	}
}

func requireAgent(cmd *cobra.Command) (*agent, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	a, err := newAgent(cmd.Context(), cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize agent: %w", err)
	}
	return a, nil
}
