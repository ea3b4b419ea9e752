// Package config assembles the pipeline configuration from Viper:
// upstream API credentials, storage locations and per-subsystem configs.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"

	esconfig "github.com/jonesrussell/legisync/internal/config/elasticsearch"
	minioconfig "github.com/jonesrussell/legisync/internal/config/minio"
	"github.com/jonesrussell/legisync/internal/logger"
)

const (
	// DefaultFrequencyDays is the dataset listing refresh window.
	DefaultFrequencyDays = 7
	// DefaultRetainedListings is the number of historical listings kept.
	DefaultRetainedListings = 5
	// DefaultAPIBudget bounds per-run external-API document fallbacks.
	DefaultAPIBudget = 10
	// DefaultSessionLimit bounds sessions processed per run.
	DefaultSessionLimit = 2
)

// ErrMissingAPIKey is a fatal configuration error: upstream calls were
// requested without a credential.
var ErrMissingAPIKey = errors.New("legiscan api key is required when --api is set")

// Config is the assembled pipeline configuration.
type Config struct {
	// APIKey authenticates against the upstream bulk-data API.
	APIKey string
	// APIBaseURL overrides the upstream endpoint (tests).
	APIBaseURL string
	// DataDir is the root of the FILE backend tree.
	DataDir string
	// LedgerPath is the SQLite database holding ledger and summaries.
	LedgerPath string
	// FrequencyDays is the listing refresh window in days.
	FrequencyDays int
	// RetainedListings is the listing retention count.
	RetainedListings int
	// APIBudget is the per-run document fallback budget.
	APIBudget int
	// SessionLimit bounds sessions processed per run.
	SessionLimit int

	Logger        *logger.Config
	Minio         *minioconfig.Config
	Elasticsearch *esconfig.Config
}

// Load assembles configuration from Viper.
func Load(v *viper.Viper) *Config {
	cfg := &Config{
		APIKey:           v.GetString("legiscan.api_key"),
		APIBaseURL:       v.GetString("legiscan.base_url"),
		DataDir:          v.GetString("storage.data_dir"),
		LedgerPath:       v.GetString("storage.ledger_path"),
		FrequencyDays:    v.GetInt("legiscan.frequency_days"),
		RetainedListings: v.GetInt("legiscan.retained_listings"),
		APIBudget:        v.GetInt("legiscan.api_budget"),
		SessionLimit:     v.GetInt("legiscan.session_limit"),
		Logger: &logger.Config{
			Level:       v.GetString("logger.level"),
			Encoding:    v.GetString("logger.encoding"),
			Development: v.GetBool("logger.development"),
		},
		Minio:         minioconfig.LoadFromViper(v),
		Elasticsearch: esconfig.LoadFromViper(v),
	}

	if cfg.DataDir == "" {
		cfg.DataDir = "data"
	}
	if cfg.LedgerPath == "" {
		cfg.LedgerPath = "legisync.db"
	}
	if cfg.FrequencyDays <= 0 {
		cfg.FrequencyDays = DefaultFrequencyDays
	}
	if cfg.RetainedListings <= 0 {
		cfg.RetainedListings = DefaultRetainedListings
	}
	if cfg.APIBudget <= 0 {
		cfg.APIBudget = DefaultAPIBudget
	}
	if cfg.SessionLimit <= 0 {
		cfg.SessionLimit = DefaultSessionLimit
	}
	return cfg
}

// Frequency returns the listing refresh window as a duration.
func (c *Config) Frequency() time.Duration {
	return time.Duration(c.FrequencyDays) * 24 * time.Hour
}

// Validate checks the configuration, with apiEnabled indicating whether
// this run will call the upstream API.
func (c *Config) Validate(apiEnabled bool) error {
	if apiEnabled && c.APIKey == "" {
		return ErrMissingAPIKey
	}
	if err := c.Minio.Validate(); err != nil {
		return fmt.Errorf("minio config: %w", err)
	}
	if err := c.Elasticsearch.Validate(); err != nil {
		return fmt.Errorf("elasticsearch config: %w", err)
	}
	return nil
}
