package config

import (
	"fmt"

	"github.com/caarlos0/env/v10"
)

// Load parses environment variables into cfg, which must be a pointer to a
// struct annotated with `env` / `envDefault` tags:
//
//	type Config struct {
//	    Port  int    `env:"REVIEW_HTTP_PORT" envDefault:"8012"`
//	    Store string `env:"REVIEW_STORE" envDefault:"postgres"`
//	}
//
// Slice fields are split on commas unless an `envSeparator` tag says otherwise.
func Load(cfg any) error {
	if err := env.ParseWithOptions(cfg, env.Options{}); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}
