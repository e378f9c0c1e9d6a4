// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Pricing  PricingConfig  `mapstructure:"pricing"`
	Rates    RatesConfig    `mapstructure:"rates"`
	Database DatabaseConfig `mapstructure:"database"`
	Notify   NotifyConfig   `mapstructure:"notify"`
	Output   OutputConfig   `mapstructure:"output"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// --- Core App Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

// PricingConfig holds margin and VAT constants. The margin floor guards
// against a future default below the contractual minimum.
type PricingConfig struct {
	DefaultMarginPct float64 `mapstructure:"default_margin_pct"`
	MinMarginPct     float64 `mapstructure:"min_margin_pct"`
	DefaultVATRate   float64 `mapstructure:"default_vat_rate"`
}

// RatesConfig holds the static rate tables plus the optional service-backed
// provider toggles. City keys are matched case-insensitively.
type RatesConfig struct {
	BaseHourlyRate    float64            `mapstructure:"base_hourly_rate"`
	MaterialBaseCosts map[string]float64 `mapstructure:"material_base_costs"`
	CityMultipliers   map[string]float64 `mapstructure:"city_multipliers"`
	VATOverrides      map[string]float64 `mapstructure:"vat_overrides"`

	Postgres      RatesPostgresConfig `mapstructure:"postgres"`
	RedisCache    RatesRedisConfig    `mapstructure:"redis_cache"`
	Elasticsearch RatesElasticConfig  `mapstructure:"elasticsearch"`
}

type RatesPostgresConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Timeout int  `mapstructure:"timeout"` // milliseconds
}

type RatesRedisConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	TTL       int    `mapstructure:"ttl"` // milliseconds
	KeyPrefix string `mapstructure:"key_prefix"`
}

type RatesElasticConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Index   string `mapstructure:"index"`
	Timeout int    `mapstructure:"timeout"` // milliseconds
}

// --- Backing Services ---
type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Redis         RedisConfig         `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type ElasticsearchConfig struct {
	Addresses []string `mapstructure:"addresses"`
	Username  string   `mapstructure:"username"`
	Password  string   `mapstructure:"password"`
	URL       string   `mapstructure:"url"` // Single URL for backwards compatibility
}

// GetURL returns the first address or the URL field
func (e ElasticsearchConfig) GetURL() string {
	if e.URL != "" {
		return e.URL
	}
	if len(e.Addresses) > 0 {
		return e.Addresses[0]
	}
	return ""
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// --- Reviewer Notification ---

// NotifyConfig controls the review alert sent for suspicious quotes.
type NotifyConfig struct {
	Enabled     bool `mapstructure:"enabled"`
	AlwaysAlert bool `mapstructure:"always_alert"` // alert on every quote, not only suspicious ones

	Email struct {
		Enabled   bool     `mapstructure:"enabled"`
		FromEmail string   `mapstructure:"from_email"`
		ToEmails  []string `mapstructure:"to_emails"`
	} `mapstructure:"email"`

	SNS struct {
		Enabled  bool   `mapstructure:"enabled"`
		TopicARN string `mapstructure:"topic_arn"`
	} `mapstructure:"sns"`

	Webhook struct {
		Enabled    bool   `mapstructure:"enabled"`
		URL        string `mapstructure:"url"`
		Timeout    int    `mapstructure:"timeout"` // milliseconds
		MaxRetries int    `mapstructure:"max_retries"`
	} `mapstructure:"webhook"`

	AWS struct {
		Region string `mapstructure:"region"`
	} `mapstructure:"aws"`
}

// OutputConfig controls quote serialization. Zero values give the defaults:
// indented JSON, schema-validated before write.
type OutputConfig struct {
	Compact        bool `mapstructure:"compact"`
	SkipValidation bool `mapstructure:"skip_validation"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
