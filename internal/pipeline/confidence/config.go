// internal/pipeline/confidence/config.go
package confidence

type Config struct {
	TaskNameWeight    float64
	AreaWeight        float64
	CityKnownWeight   float64
	CityUnknownWeight float64
	BaselineWeight    float64
}

func LoadConfig() *Config {
	return &Config{
		TaskNameWeight:    0.4,
		AreaWeight:        0.2,
		CityKnownWeight:   0.2,
		CityUnknownWeight: 0.1,
		BaselineWeight:    0.2,
	}
}
