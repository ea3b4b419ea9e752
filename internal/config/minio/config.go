// Package minio provides MinIO configuration for the object storage backend.
package minio

import (
	"errors"

	"github.com/spf13/viper"
)

// Config represents MinIO configuration for the object storage backend.
type Config struct {
	// Enabled toggles the object backend on/off.
	Enabled bool `yaml:"enabled"`
	// Endpoint is the MinIO server address (e.g., "minio:9000").
	Endpoint string `yaml:"endpoint"`
	// AccessKey for MinIO authentication.
	AccessKey string `yaml:"access_key"`
	// SecretKey for MinIO authentication.
	SecretKey string `yaml:"secret_key"`
	// UseSSL enables HTTPS for MinIO connections.
	UseSSL bool `yaml:"use_ssl"`
	// Bucket holds all pipeline items.
	Bucket string `yaml:"bucket"`
	// CreateBucket makes the bucket at startup when missing.
	CreateBucket bool `yaml:"create_bucket"`
}

// ErrMissingCredentials is returned when the backend is enabled without
// an access key pair.
var ErrMissingCredentials = errors.New("minio access_key and secret_key are required")

// NewConfig returns a new MinIO configuration with default values.
func NewConfig() *Config {
	return &Config{
		Enabled:      false,
		Endpoint:     "localhost:9000",
		UseSSL:       false,
		Bucket:       "legisync",
		CreateBucket: true,
	}
}

// LoadFromViper loads MinIO configuration from Viper.
func LoadFromViper(v *viper.Viper) *Config {
	cfg := NewConfig()

	if v.IsSet("minio.enabled") {
		cfg.Enabled = v.GetBool("minio.enabled")
	}
	if v.IsSet("minio.endpoint") {
		cfg.Endpoint = v.GetString("minio.endpoint")
	}
	if v.IsSet("minio.access_key") {
		cfg.AccessKey = v.GetString("minio.access_key")
	}
	if v.IsSet("minio.secret_key") {
		cfg.SecretKey = v.GetString("minio.secret_key")
	}
	if v.IsSet("minio.use_ssl") {
		cfg.UseSSL = v.GetBool("minio.use_ssl")
	}
	if v.IsSet("minio.bucket") {
		cfg.Bucket = v.GetString("minio.bucket")
	}
	if v.IsSet("minio.create_bucket") {
		cfg.CreateBucket = v.GetBool("minio.create_bucket")
	}

	return cfg
}

// Validate checks the configuration for use.
func (c *Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.AccessKey == "" || c.SecretKey == "" {
		return ErrMissingCredentials
	}
	return nil
}
