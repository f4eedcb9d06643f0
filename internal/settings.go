// Package internal holds process-level settings shared by the commands.
package internal

import (
	"github.com/caarlos0/env/v11"
	"github.com/pkg/errors"
)

// Settings is the environment-derived configuration. Command-line flags
// override individual fields after parsing.
type Settings struct {
	Host     string `env:"TYPESPEED_HOST" envDefault:""`
	Port     uint16 `env:"TYPESPEED_PORT" envDefault:"6969"`
	LogLevel string `env:"TYPESPEED_LOG_LEVEL" envDefault:"info"`
}

// LoadSettings parses Settings from the current environment.
func LoadSettings() (Settings, error) {
	var settings Settings
	if err := env.Parse(&settings); err != nil {
		return Settings{}, errors.Wrap(err, "parse environment failed")
	}
	return settings, nil
}
