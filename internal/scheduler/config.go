// Package scheduler drives a board from a clock: it feeds the current time
// on every tick, reloads from storage periodically and folds pushed change
// events in between.
package scheduler

import (
	"fmt"
	"time"
)

// Config defines the scheduler configuration.
type Config struct {
	// TickInterval is how often the current time is fed to the board.
	TickInterval time.Duration `yaml:"tick_interval"`
	// RefreshInterval is how often the board is fully reloaded from storage.
	// Zero disables periodic reloads.
	RefreshInterval time.Duration `yaml:"refresh_interval"`
}

// DefaultConfig returns the default scheduler configuration.
func DefaultConfig() *Config {
	return &Config{
		TickInterval:    time.Second,
		RefreshInterval: 30 * time.Second,
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.TickInterval <= 0 {
		return fmt.Errorf("tick_interval must be positive, got %s", c.TickInterval)
	}
	if c.RefreshInterval < 0 {
		return fmt.Errorf("refresh_interval must not be negative, got %s", c.RefreshInterval)
	}
	return nil
}
