package exporthiringreport

import "time"

type Config struct {
	Timeout   time.Duration
	OutputDir string
}

func LoadConfig() *Config {
	return &Config{
		Timeout:   60 * time.Second,
		OutputDir: "",
	}
}
