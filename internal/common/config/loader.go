// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

func Load() (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")

	// Enable ENV override like RATES_BASE_HOURLY_RATE
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	v.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = v.MergeInConfig() // ignore error if not found

	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// LoadFromFile loads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// loadEnvFile loads .env from the working directory or the module root, so
// the binary behaves the same from the repo root and from cmd/ subdirs.
func loadEnvFile() {
	candidates := []string{".env", "../.env", "../../.env"}
	if root := findProjectRoot(); root != "" {
		candidates = append(candidates, filepath.Join(root, ".env"))
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// findProjectRoot walks up from the working directory looking for go.mod.
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}

// expandEnvVars resolves ${VAR} placeholders in string values.
func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		if strVal, ok := v.Get(key).(string); ok {
			if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
				expanded := os.ExpandEnv(strVal)
				if expanded != strVal && expanded != "" {
					v.Set(key, expanded)
				}
			}
		}
	}
}

// applyDefaults sets default values for optional configuration fields. The
// defaults alone are a complete working setup: static rate tables, no
// backing services, no notifications.
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "renoquote"
	}
	if cfg.App.Version == "" {
		cfg.App.Version = "1.0.0"
	}
	if cfg.App.Environment == "" {
		cfg.App.Environment = "development"
	}

	// Pricing defaults
	if cfg.Pricing.DefaultMarginPct == 0 {
		cfg.Pricing.DefaultMarginPct = 0.12
	}
	if cfg.Pricing.MinMarginPct == 0 {
		cfg.Pricing.MinMarginPct = 0.05
	}
	if cfg.Pricing.DefaultVATRate == 0 {
		cfg.Pricing.DefaultVATRate = 0.20
	}

	// Static rate tables
	if cfg.Rates.BaseHourlyRate == 0 {
		cfg.Rates.BaseHourlyRate = 40.0
	}
	if len(cfg.Rates.MaterialBaseCosts) == 0 {
		cfg.Rates.MaterialBaseCosts = map[string]float64{
			"tiles_ceramic_m2": 25.0,
			"paint_litre":      15.0,
			"plumbing_parts":   150.0,
			"toilet_standard":  120.0,
			"vanity_basic":     180.0,
			"disposal_fee":     80.0,
		}
	}
	if len(cfg.Rates.CityMultipliers) == 0 {
		cfg.Rates.CityMultipliers = map[string]float64{
			"marseille": 1.0,
			"paris":     1.25,
			"lyon":      1.10,
		}
	}

	// Rate backend defaults
	if cfg.Rates.Postgres.Timeout == 0 {
		cfg.Rates.Postgres.Timeout = 3000
	}
	if cfg.Rates.RedisCache.TTL == 0 {
		cfg.Rates.RedisCache.TTL = 300000
	}
	if cfg.Rates.RedisCache.KeyPrefix == "" {
		cfg.Rates.RedisCache.KeyPrefix = "renoquote:rates:"
	}
	if cfg.Rates.Elasticsearch.Index == "" {
		cfg.Rates.Elasticsearch.Index = "material-catalog"
	}
	if cfg.Rates.Elasticsearch.Timeout == 0 {
		cfg.Rates.Elasticsearch.Timeout = 3000
	}

	// Database defaults
	if cfg.Database.Postgres.Port == 0 {
		cfg.Database.Postgres.Port = 5432
	}
	if cfg.Database.Postgres.MaxConnections == 0 {
		cfg.Database.Postgres.MaxConnections = 25
	}
	if cfg.Database.Postgres.MaxIdle == 0 {
		cfg.Database.Postgres.MaxIdle = 5
	}
	if cfg.Database.Postgres.SSLMode == "" {
		cfg.Database.Postgres.SSLMode = "disable"
	}
	if cfg.Database.Elasticsearch.URL == "" && len(cfg.Database.Elasticsearch.Addresses) > 0 {
		cfg.Database.Elasticsearch.URL = cfg.Database.Elasticsearch.Addresses[0]
	}

	// Notify defaults
	if cfg.Notify.AWS.Region == "" {
		cfg.Notify.AWS.Region = "eu-west-1"
	}
	if cfg.Notify.Webhook.Timeout == 0 {
		cfg.Notify.Webhook.Timeout = 10000
	}
	if cfg.Notify.Webhook.MaxRetries == 0 {
		cfg.Notify.Webhook.MaxRetries = 2
	}

	// Logging defaults
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "console"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}
}

// validateConfig validates critical configuration fields. Backing services
// are validated only when the feature that needs them is enabled.
func validateConfig(cfg *Config) error {
	if cfg.Pricing.DefaultMarginPct < 0 || cfg.Pricing.DefaultMarginPct > 1 {
		return fmt.Errorf("pricing.default_margin_pct must be in [0,1]")
	}
	if cfg.Pricing.MinMarginPct < 0 || cfg.Pricing.MinMarginPct > 1 {
		return fmt.Errorf("pricing.min_margin_pct must be in [0,1]")
	}
	if cfg.Pricing.DefaultVATRate < 0 || cfg.Pricing.DefaultVATRate > 1 {
		return fmt.Errorf("pricing.default_vat_rate must be in [0,1]")
	}
	for name, rate := range cfg.Rates.VATOverrides {
		if rate < 0 || rate > 1 {
			return fmt.Errorf("rates.vat_overrides[%s] must be in [0,1]", name)
		}
	}
	if cfg.Rates.BaseHourlyRate <= 0 {
		return fmt.Errorf("rates.base_hourly_rate must be positive")
	}

	if cfg.Rates.Postgres.Enabled {
		if cfg.Database.Postgres.Host == "" {
			return fmt.Errorf("database.postgres.host is required when rates.postgres is enabled")
		}
		if cfg.Database.Postgres.Database == "" {
			return fmt.Errorf("database.postgres.database is required when rates.postgres is enabled")
		}
		if cfg.Database.Postgres.User == "" {
			return fmt.Errorf("database.postgres.user is required when rates.postgres is enabled")
		}
	}
	if cfg.Rates.RedisCache.Enabled && cfg.Database.Redis.Address == "" {
		return fmt.Errorf("database.redis.address is required when rates.redis_cache is enabled")
	}
	if cfg.Rates.Elasticsearch.Enabled && cfg.Database.Elasticsearch.GetURL() == "" {
		return fmt.Errorf("database.elasticsearch.addresses or url is required when rates.elasticsearch is enabled")
	}

	if cfg.Notify.Enabled {
		if cfg.Notify.Email.Enabled {
			if cfg.Notify.Email.FromEmail == "" {
				return fmt.Errorf("notify.email.from_email is required when notify.email is enabled")
			}
			if len(cfg.Notify.Email.ToEmails) == 0 {
				return fmt.Errorf("notify.email.to_emails is required when notify.email is enabled")
			}
		}
		if cfg.Notify.SNS.Enabled && cfg.Notify.SNS.TopicARN == "" {
			return fmt.Errorf("notify.sns.topic_arn is required when notify.sns is enabled")
		}
		if cfg.Notify.Webhook.Enabled && cfg.Notify.Webhook.URL == "" {
			return fmt.Errorf("notify.webhook.url is required when notify.webhook is enabled")
		}
	}

	return nil
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}
