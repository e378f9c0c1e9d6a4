// internal/pipeline/aggregate/config.go
package aggregate

type Config struct{}

func LoadConfig() *Config {
	return &Config{}
}
