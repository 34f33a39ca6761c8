// Package config loads the service configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	// Gemini
	APIKey  string `env:"GEMINI_API_KEY,required"`
	BaseURL string `env:"GEMINI_BASE_URL"`

	// Per-operation model defaults
	EditModel  string `env:"EDIT_MODEL" envDefault:"gemini-2.5-flash-image-preview"`
	ImageModel string `env:"IMAGE_MODEL" envDefault:"imagen-4.0-generate-001"`
	VideoModel string `env:"VIDEO_MODEL" envDefault:"veo-3.0-generate-preview"`

	// Video polling
	PollInterval time.Duration `env:"VIDEO_POLL_INTERVAL" envDefault:"10s"`
	PollTimeout  time.Duration `env:"VIDEO_POLL_TIMEOUT" envDefault:"10m"`

	// Server
	ListenAddr  string `env:"LISTEN_ADDR" envDefault:":8080"`
	MaxBodySize int64  `env:"MAX_BODY_SIZE" envDefault:"33554432"`

	// Preferences
	PrefsFile string `env:"PREFS_FILE"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}
