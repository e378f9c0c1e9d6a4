// internal/pipeline/interpret/config.go
package interpret

type Config struct {
	KnownCities []string
}

func LoadConfig() *Config {
	return &Config{
		KnownCities: []string{"marseille", "paris", "lyon"},
	}
}
