// Package config loads and saves the recur configuration file.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/fentz26/recur/internal/scheduler"
	"github.com/fentz26/recur/internal/tasks"
)

// DirName is the directory under the user's home holding recur's files.
const DirName = ".recur"

// Config holds recur configuration.
type Config struct {
	// Listen is the daemon's HTTP listen address.
	Listen string `yaml:"listen"`
	// DB is the SQLite database path.
	DB string `yaml:"db"`
	// Order names the task ordering: recurring or simple.
	Order string `yaml:"order"`

	Scheduler scheduler.Config `yaml:",inline"`
}

// DefaultConfig returns the default configuration, with files under home.
func DefaultConfig() *Config {
	dir := DirName
	if home, err := os.UserHomeDir(); err == nil {
		dir = filepath.Join(home, DirName)
	}
	return &Config{
		Listen:    "127.0.0.1:7466",
		DB:        filepath.Join(dir, "recur.db"),
		Order:     tasks.OrderRecurring,
		Scheduler: *scheduler.DefaultConfig(),
	}
}

// Validate checks that every field holds a usable value.
func (c *Config) Validate() error {
	if c.Listen == "" {
		return fmt.Errorf("listen address is required")
	}
	if c.DB == "" {
		return fmt.Errorf("db path is required")
	}
	if _, err := tasks.OrderByName(c.Order); err != nil {
		return err
	}
	return c.Scheduler.Validate()
}

// Path returns the default config file location, ~/.recur/config.yaml.
func Path() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home dir: %w", err)
	}
	return filepath.Join(home, DirName, "config.yaml"), nil
}

// Load loads configuration from a YAML file. A missing file yields the
// defaults; fields absent from the file keep their default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// LoadFromHome loads configuration from ~/.recur/config.yaml.
func LoadFromHome() (*Config, error) {
	path, err := Path()
	if err != nil {
		return DefaultConfig(), nil
	}
	return Load(path)
}

// Save writes configuration to a YAML file, creating parent directories if needed.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config cannot be nil")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
