package config

import "time"

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		DataDir:         defaultDataDir(),
		Port:            7317,
		AllowAllOrigins: false,
		Temperature:     0.7,
		ModelTimeout:    120 * time.Second,
		StorageTimeout:  15 * time.Second,
		MaxAnswerTokens: 2048,
		LogLevel:        "info",
	}
}
