// internal/pipeline/estimate/config.go
package estimate

type Config struct{}

func LoadConfig() *Config {
	return &Config{}
}
