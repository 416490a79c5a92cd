package config

import (
	"github.com/caarlos0/env/v11"
)

// Config holds the process configuration, parsed from the environment.
type Config struct {
	HTTPPort    string `env:"HTTP_PORT" envDefault:"8080"`
	DatabaseURL string `env:"DATABASE_URL,required"`

	// JackpotContributionBasisPoints is the share of every stake fed into
	// the jackpot pool; 100 basis points = 1%.
	JackpotContributionBasisPoints int64 `env:"JACKPOT_CONTRIBUTION_BP" envDefault:"100"`
}

// New parses the configuration from the environment.
func New() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
