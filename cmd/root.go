// Package cmd implements the command-line interface for legisync.
// It provides the root command and subcommands for dataset fetching,
// text extraction and backend synchronization.
package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	cmdextract "github.com/jonesrussell/legisync/cmd/extract"
	cmdfetch "github.com/jonesrussell/legisync/cmd/fetch"
	cmdstatus "github.com/jonesrussell/legisync/cmd/status"
	cmdsync "github.com/jonesrussell/legisync/cmd/sync"
	"github.com/jonesrussell/legisync/internal/config"
)

var (
	// cfgFile holds the path to the configuration file.
	cfgFile string

	// Debug enables debug mode for all commands.
	Debug bool

	// rootCmd represents the root command for the legisync CLI.
	rootCmd = &cobra.Command{
		Use:   "legisync",
		Short: "Mirror and normalize legislative filings",
		Long: `legisync mirrors legislative filings from a bulk-data API across two
storage backends and converts raw PDF/HTML filings into normalized,
sentence-segmented plain text.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
)

// Execute runs the root command.
func Execute() error {
	// Load .env early so environment variables are available.
	_ = godotenv.Load()

	_ = rootCmd.ParseFlags(os.Args[1:])

	if err := initConfig(); err != nil {
		return fmt.Errorf("failed to initialize configuration: %w", err)
	}

	return rootCmd.ExecuteContext(context.Background())
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"",
		"config file (default is ./config.yaml)",
	)
	rootCmd.PersistentFlags().BoolVar(&Debug, "debug", false, "enable debug mode")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("legisync version %s\n", "1.0.0")
		},
	})

	rootCmd.AddCommand(cmdfetch.Command())
	rootCmd.AddCommand(cmdextract.Command())
	rootCmd.AddCommand(cmdsync.Command())
	rootCmd.AddCommand(cmdstatus.Command())
}

// initConfig reads in the config file and environment variables.
func initConfig() error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("./config")
	}

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults()

	// The config file is optional; environment variables and defaults
	// cover the rest.
	if err := viper.ReadInConfig(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: config file not found: %v (using defaults and environment variables)\n", err)
	}

	if err := bindEnvVars(); err != nil {
		return err
	}

	if Debug || viper.GetBool("app.debug") {
		viper.Set("logger.level", "debug")
		viper.Set("logger.development", true)
		Debug = true
	}

	return nil
}

// bindEnvVars maps well-known environment variables to config keys.
func bindEnvVars() error {
	if err := viper.BindEnv("legiscan.api_key", "LEGISCAN_API_KEY"); err != nil {
		return fmt.Errorf("failed to bind LEGISCAN_API_KEY: %w", err)
	}
	if err := viper.BindEnv("logger.level", "LOG_LEVEL"); err != nil {
		return fmt.Errorf("failed to bind LOG_LEVEL: %w", err)
	}
	if err := viper.BindEnv("minio.access_key", "MINIO_ACCESS_KEY"); err != nil {
		return fmt.Errorf("failed to bind MINIO_ACCESS_KEY: %w", err)
	}
	if err := viper.BindEnv("minio.secret_key", "MINIO_SECRET_KEY"); err != nil {
		return fmt.Errorf("failed to bind MINIO_SECRET_KEY: %w", err)
	}
	if err := viper.BindEnv("elasticsearch.addresses", "ELASTICSEARCH_HOSTS", "ELASTICSEARCH_ADDRESSES"); err != nil {
		return fmt.Errorf("failed to bind Elasticsearch addresses: %w", err)
	}
	return nil
}

// setDefaults sets default configuration values.
func setDefaults() {
	viper.SetDefault("app", map[string]any{
		"name":  "legisync",
		"debug": false,
	})

	viper.SetDefault("logger", map[string]any{
		"level":       "info",
		"encoding":    "console",
		"development": false,
	})

	viper.SetDefault("storage", map[string]any{
		"data_dir":    "data",
		"ledger_path": "legisync.db",
	})

	viper.SetDefault("legiscan", map[string]any{
		"base_url":          "",
		"frequency_days":    config.DefaultFrequencyDays,
		"retained_listings": config.DefaultRetainedListings,
		"api_budget":        config.DefaultAPIBudget,
		"session_limit":     config.DefaultSessionLimit,
	})
}
