package config

import (
	"os"
	"path/filepath"

	"github.com/cloudops/cloud-console-tool/internal/logger"
	"github.com/cloudops/cloud-console-tool/internal/models"

	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Config represents the application configuration
type Config struct {
	Accounts    []models.Account              `yaml:"accounts" mapstructure:"accounts"`
	Credentials map[string]models.Credentials `yaml:"credentials" mapstructure:"credentials"`
	Cache       CacheConfig                   `yaml:"cache" mapstructure:"cache"`
	Provider    ProviderConfig                `yaml:"provider" mapstructure:"provider"`
	Approval    ApprovalConfig                `yaml:"approval" mapstructure:"approval"`
	Output      OutputConfig                  `yaml:"output" mapstructure:"output"`
}

// CacheConfig represents cache configuration
type CacheConfig struct {
	Directory    string `yaml:"directory" mapstructure:"directory"`
	InventoryTTL int    `yaml:"inventory_ttl" mapstructure:"inventory_ttl"`
	StacksTTL    int    `yaml:"stacks_ttl" mapstructure:"stacks_ttl"`
	DatabasesTTL int    `yaml:"databases_ttl" mapstructure:"databases_ttl"`
	BucketsTTL   int    `yaml:"buckets_ttl" mapstructure:"buckets_ttl"`
}

// ProviderConfig selects the CI/CD deployment data source
type ProviderConfig struct {
	Name     string `yaml:"name" mapstructure:"name"` // codepipeline or demo
	APIToken string `yaml:"api_token" mapstructure:"api_token"`
	Account  string `yaml:"account" mapstructure:"account"`   // account id hosting the pipeline
	Region   string `yaml:"region" mapstructure:"region"`     // region hosting the pipeline
	Pipeline string `yaml:"pipeline" mapstructure:"pipeline"` // pipeline name for the live provider
}

// ApprovalConfig is the per-environment approval policy table.
// Environments listed here require approval by default; the trigger
// operation may still override per call.
type ApprovalConfig struct {
	RequiredEnvironments []string `yaml:"required_environments" mapstructure:"required_environments"`
}

// RequiredFor reports whether the environment requires approval by default
func (a ApprovalConfig) RequiredFor(environment string) bool {
	for _, env := range a.RequiredEnvironments {
		if env == environment {
			return true
		}
	}
	return false
}

// OutputConfig represents output configuration
type OutputConfig struct {
	Format string `yaml:"format" mapstructure:"format"` // table, json, csv
	Color  bool   `yaml:"color" mapstructure:"color"`
}

// LoadConfig loads configuration from file and environment
func LoadConfig() (*Config, error) {
	// Set default values (these will be used if not specified in config file)
	viper.SetDefault("cache.directory", getDefaultCacheDir())
	viper.SetDefault("cache.inventory_ttl", 300)
	viper.SetDefault("cache.stacks_ttl", 300)
	viper.SetDefault("cache.databases_ttl", 600)
	viper.SetDefault("cache.buckets_ttl", 900)
	viper.SetDefault("provider.name", "demo")
	viper.SetDefault("provider.region", "")
	viper.SetDefault("approval.required_environments", []string{"production"})
	viper.SetDefault("output.format", "table")
	viper.SetDefault("output.color", true)

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	// Manual override for TTL values if viper.Unmarshal didn't work properly
	if config.Cache.InventoryTTL == 0 {
		config.Cache.InventoryTTL = viper.GetInt("cache.inventory_ttl")
	}
	if config.Cache.StacksTTL == 0 {
		config.Cache.StacksTTL = viper.GetInt("cache.stacks_ttl")
	}
	if config.Cache.DatabasesTTL == 0 {
		config.Cache.DatabasesTTL = viper.GetInt("cache.databases_ttl")
	}
	if config.Cache.BucketsTTL == 0 {
		config.Cache.BucketsTTL = viper.GetInt("cache.buckets_ttl")
	}

	if len(config.Approval.RequiredEnvironments) == 0 {
		config.Approval.RequiredEnvironments = viper.GetStringSlice("approval.required_environments")
	}

	// Provider tokens come from the environment when not in the file
	if config.Provider.APIToken == "" {
		config.Provider.APIToken = os.Getenv("CLOUD_CONSOLE_PROVIDER_TOKEN")
	}

	// Expand tilde in cache directory path
	config.Cache.Directory = expandPath(config.Cache.Directory)

	logger.GetLogger().Debug("Configuration loaded",
		zap.String("cache_directory", config.Cache.Directory),
		zap.Int("accounts", len(config.Accounts)),
		zap.String("provider", config.Provider.Name),
		zap.Strings("approval_required", config.Approval.RequiredEnvironments))

	return &config, nil
}

// FindAccount returns the configured account with the given id or name
func (c *Config) FindAccount(idOrName string) (models.Account, bool) {
	for _, a := range c.Accounts {
		if a.ID == idOrName || a.Name == idOrName {
			return a, true
		}
	}
	return models.Account{}, false
}

// getDefaultCacheDir returns the default cache directory
func getDefaultCacheDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".cloud-console/cache"
	}
	return filepath.Join(homeDir, ".cloud-console", "cache")
}

// expandPath expands tilde (~) in file paths
func expandPath(path string) string {
	if len(path) == 0 || path[0] != '~' {
		return path
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return path
	}

	if len(path) == 1 {
		return homeDir
	}

	if path[1] == '/' {
		return filepath.Join(homeDir, path[2:])
	}

	return path
}
