// internal/pipeline/finalize/config.go
package finalize

type Config struct {
	DefaultMarginPct float64
	MinMarginPct     float64
}

func LoadConfig() *Config {
	return &Config{
		DefaultMarginPct: 0.12,
		MinMarginPct:     0.05,
	}
}
