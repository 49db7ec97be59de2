package config

import (
	"encoding/json"
	"os"
	"time"
)

// Create new config instance with usable local-development defaults.
func NewConfig() *Config {
	return &Config{
		Server: ServerConfig{Port: 8080},
		Auth: AuthConfig{
			SessionTTL: 86400,
		},
		Probe: ProbeConfig{
			Timeout:      10,
			MaxBodyMB:    25,
			CacheTTL:     3600,
			AllowPrivate: true,
		},
		Thumbs: ThumbWorkerConfig{
			Stream:       "picc:thumbs",
			Group:        "thumb-workers",
			Workers:      4,
			MaxAttempts:  5,
			MaxLen:       10000,
			BackoffBase:  2 * time.Second,
			BlockTimeout: 5 * time.Second,
			Consumer:     "picc-api",
			MaxEdge:      512,
		},
	}
}

// Load configuration file in json format
func (c *Config) Read(file string) error {
	data, err := os.ReadFile(file)
	if err == nil {
		_ = json.Unmarshal(data, c)
	}
	return err
}
