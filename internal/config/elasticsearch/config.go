// Package elasticsearch provides configuration for the optional summary
// search index.
package elasticsearch

import (
	"errors"

	"github.com/spf13/viper"
)

// Config holds Elasticsearch configuration for summary indexing.
type Config struct {
	// Enabled toggles summary indexing on/off.
	Enabled bool `yaml:"enabled"`
	// Addresses are the cluster endpoints.
	Addresses []string `yaml:"addresses"`
	// Index receives one document per bill summary.
	Index string `yaml:"index"`
	// Username and Password are optional basic-auth credentials.
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	// APIKey is an optional API key, used instead of basic auth.
	APIKey string `yaml:"api_key"`
}

// ErrMissingAddresses is returned when indexing is enabled without
// cluster endpoints.
var ErrMissingAddresses = errors.New("elasticsearch addresses are required")

// NewConfig returns a new configuration with default values.
func NewConfig() *Config {
	return &Config{
		Enabled:   false,
		Addresses: []string{"http://127.0.0.1:9200"},
		Index:     "bill-summaries",
	}
}

// LoadFromViper loads Elasticsearch configuration from Viper.
func LoadFromViper(v *viper.Viper) *Config {
	cfg := NewConfig()

	if v.IsSet("elasticsearch.enabled") {
		cfg.Enabled = v.GetBool("elasticsearch.enabled")
	}
	if v.IsSet("elasticsearch.addresses") {
		cfg.Addresses = v.GetStringSlice("elasticsearch.addresses")
	}
	if v.IsSet("elasticsearch.index") {
		cfg.Index = v.GetString("elasticsearch.index")
	}
	if v.IsSet("elasticsearch.username") {
		cfg.Username = v.GetString("elasticsearch.username")
	}
	if v.IsSet("elasticsearch.password") {
		cfg.Password = v.GetString("elasticsearch.password")
	}
	if v.IsSet("elasticsearch.api_key") {
		cfg.APIKey = v.GetString("elasticsearch.api_key")
	}

	return cfg
}

// Validate checks the configuration for use.
func (c *Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if len(c.Addresses) == 0 {
		return ErrMissingAddresses
	}
	return nil
}
