package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Settings are CLI defaults read from the environment. Flags override them.
type Settings struct {
	Format        string `env:"TANDA_FORMAT" envDefault:"console"`
	Debug         bool   `env:"TANDA_DEBUG" envDefault:"false"`
	HorizonMonths int    `env:"TANDA_HORIZON_MONTHS" envDefault:"0"` // 0 keeps the file value
}

// LoadSettings parses Settings from the process environment
func LoadSettings() (Settings, error) {
	var s Settings
	if err := env.Parse(&s); err != nil {
		return Settings{}, fmt.Errorf("parse env: %w", err)
	}
	if s.HorizonMonths < 0 {
		return Settings{}, fmt.Errorf("TANDA_HORIZON_MONTHS cannot be negative: %d", s.HorizonMonths)
	}
	return s, nil
}

// Horizon returns the override when set, otherwise the file value
func (s Settings) Horizon(fileMonths int) int {
	if s.HorizonMonths > 0 {
		return s.HorizonMonths
	}
	return fileMonths
}
