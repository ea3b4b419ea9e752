// Package common provides shared dependency wiring for command
// implementations.
package common

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/viper"

	"github.com/jonesrussell/legisync/internal/config"
	"github.com/jonesrussell/legisync/internal/ledger"
	"github.com/jonesrussell/legisync/internal/legiscan"
	"github.com/jonesrussell/legisync/internal/logger"
	"github.com/jonesrussell/legisync/internal/storage"
	"github.com/jonesrussell/legisync/internal/summary"
)

// ErrLoggerRequired is returned when Deps.Logger is nil.
var ErrLoggerRequired = errors.New("logger is required")

// Deps holds common dependencies for all commands. Use this instead of
// context.Value for type-safe dependency injection.
type Deps struct {
	Config    *config.Config
	Logger    logger.Interface
	DB        *sqlx.DB
	Ledger    *ledger.Ledger
	File      *storage.FileStore
	Object    *storage.ObjectStore
	Client    *legiscan.Client
	Summaries *summary.Store
}

// Build assembles the shared dependencies. apiEnabled participates in
// configuration validation: a run that will call the upstream API must
// carry a credential.
func Build(ctx context.Context, apiEnabled bool) (*Deps, error) {
	cfg := config.Load(viper.GetViper())
	if err := cfg.Validate(apiEnabled); err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}

	log, err := logger.New(cfg.Logger)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	db, err := ledger.Open(cfg.LedgerPath)
	if err != nil {
		return nil, err
	}

	file, err := storage.NewFileStore(cfg.DataDir, log)
	if err != nil {
		db.Close()
		return nil, err
	}

	object, err := storage.NewObjectStore(ctx, cfg.Minio, log)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("configuration error: %w", err)
	}

	summaries, err := summary.NewStore(db, cfg.Elasticsearch, log)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("configuration error: %w", err)
	}

	return &Deps{
		Config:    cfg,
		Logger:    log,
		DB:        db,
		Ledger:    ledger.New(db),
		File:      file,
		Object:    object,
		Client:    legiscan.NewClient(cfg.APIBaseURL, cfg.APIKey, http.DefaultClient, log),
		Summaries: summaries,
	}, nil
}

// Close releases held resources.
func (d *Deps) Close() error {
	if d.DB != nil {
		return d.DB.Close()
	}
	return nil
}

// Validate ensures all required dependencies are present.
func (d *Deps) Validate() error {
	if d.Logger == nil {
		return ErrLoggerRequired
	}
	return nil
}
