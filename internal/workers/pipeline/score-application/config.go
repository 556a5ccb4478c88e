package scoreapplication

import "time"

type Config struct {
	Timeout time.Duration

	// ShortlistThreshold is the minimum match score that advances an
	// application to shortlisted automatically. Zero disables auto-advance.
	ShortlistThreshold int
}

func LoadConfig() *Config {
	return &Config{
		Timeout:            60 * time.Second,
		ShortlistThreshold: 70,
	}
}
