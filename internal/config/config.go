package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the application configuration loaded from files and environment variables.
type Config struct {
	AppName  string `mapstructure:"app_name"`
	Env      string `mapstructure:"app_env"`
	LogLevel string `mapstructure:"log_level"`

	UnzerPrivateKey     string        `mapstructure:"unzer_private_key"`
	UnzerBaseURL        string        `mapstructure:"unzer_base_url"`
	UnzerVerbose        bool          `mapstructure:"unzer_verbose"`
	UnzerTimeoutSeconds int64         `mapstructure:"unzer_timeout_seconds"`
	UnzerTimeout        time.Duration `mapstructure:"-"`

	RelayListenAddr        string        `mapstructure:"relay_listen_addr"`
	RelayPublicURL         string        `mapstructure:"relay_public_url"`
	RelayEventsRaw         string        `mapstructure:"relay_events"`
	RelayEvents            []string      `mapstructure:"-"`
	RelayShutdownSeconds   int64         `mapstructure:"relay_shutdown_seconds"`
	RelayShutdownTimeout   time.Duration `mapstructure:"-"`
	PublishersFile         string        `mapstructure:"publishers_file"`
	StorageType            string        `mapstructure:"storage_type"`
	BBoltPath              string        `mapstructure:"bbolt_path"`
	StorageTTLSeconds      int64         `mapstructure:"storage_ttl_seconds"`
	StorageCleanupSeconds  int64         `mapstructure:"storage_cleanup_interval_seconds"`
	StorageClaimSeconds    int64         `mapstructure:"storage_claim_timeout_seconds"`
	StorageTTL             time.Duration `mapstructure:"-"`
	StorageCleanupInterval time.Duration `mapstructure:"-"`
	StorageClaimTimeout    time.Duration `mapstructure:"-"`
}

// Load reads configuration from environment variables and config files.
func Load() (*Config, error) {
	_ = godotenv.Load("configs/.env")

	v := viper.New()

	v.SetDefault("app_name", "unzer-simple")
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("unzer_private_key", "")
	v.SetDefault("unzer_base_url", "https://api.unzer.com")
	v.SetDefault("unzer_verbose", false)
	v.SetDefault("unzer_timeout_seconds", 0) // no timeout
	v.SetDefault("relay_listen_addr", ":8080")
	v.SetDefault("relay_public_url", "")
	v.SetDefault("relay_events", "")
	v.SetDefault("relay_shutdown_seconds", 10)
	v.SetDefault("publishers_file", "./configs/publishers.yaml")
	v.SetDefault("storage_type", "bbolt")
	v.SetDefault("bbolt_path", "./data/notifications.db")
	v.SetDefault("storage_ttl_seconds", int64((7*24*time.Hour)/time.Second))
	v.SetDefault("storage_cleanup_interval_seconds", int64((12*time.Hour)/time.Second))
	v.SetDefault("storage_claim_timeout_seconds", 120)

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (cfg *Config) normalize() error {
	cfg.UnzerPrivateKey = strings.TrimSpace(cfg.UnzerPrivateKey)
	cfg.UnzerBaseURL = strings.TrimRight(strings.TrimSpace(cfg.UnzerBaseURL), "/")

	if cfg.UnzerTimeoutSeconds < 0 {
		return fmt.Errorf("invalid unzer_timeout_seconds (must be zero or positive seconds)")
	}
	cfg.UnzerTimeout = time.Duration(cfg.UnzerTimeoutSeconds) * time.Second

	if cfg.RelayShutdownSeconds <= 0 {
		return fmt.Errorf("invalid relay_shutdown_seconds (must be positive seconds)")
	}
	cfg.RelayShutdownTimeout = time.Duration(cfg.RelayShutdownSeconds) * time.Second
	cfg.RelayPublicURL = strings.TrimSpace(cfg.RelayPublicURL)
	cfg.RelayEvents = splitList(cfg.RelayEventsRaw)

	if cfg.StorageTTLSeconds <= 0 {
		return fmt.Errorf("invalid storage_ttl_seconds (must be positive seconds)")
	}
	if cfg.StorageCleanupSeconds <= 0 {
		return fmt.Errorf("invalid storage_cleanup_interval_seconds (must be positive seconds)")
	}
	cfg.StorageTTL = time.Duration(cfg.StorageTTLSeconds) * time.Second
	cfg.StorageCleanupInterval = time.Duration(cfg.StorageCleanupSeconds) * time.Second
	if cfg.StorageClaimSeconds <= 0 {
		return fmt.Errorf("invalid storage_claim_timeout_seconds (must be positive seconds)")
	}
	cfg.StorageClaimTimeout = time.Duration(cfg.StorageClaimSeconds) * time.Second

	return nil
}

// RequirePrivateKey fails when no private key is configured.
func (cfg *Config) RequirePrivateKey() error {
	if cfg == nil || cfg.UnzerPrivateKey == "" {
		return fmt.Errorf("unzer_private_key is required")
	}
	return nil
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	seen := make(map[string]struct{}, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}
