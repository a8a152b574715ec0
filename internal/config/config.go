// Package config loads the client configuration: a YAML file, then
// environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"novaclient/internal/game"
)

type Config struct {
	GameFolder string          `yaml:"game_folder" env:"NOVA_GAME_FOLDER"`
	Components string          `yaml:"components" env:"NOVA_COMPONENTS"`
	Extensions game.Extensions `yaml:"extensions"`

	// IndexDB is the sqlite file intel history is recorded in. Empty disables it.
	IndexDB string `yaml:"index_db" env:"NOVA_INDEX_DB"`
	// Journal enables the per-day turn journal under <game_folder>/journal.
	Journal bool `yaml:"journal" env:"NOVA_JOURNAL"`
	// Archive enables copying every turn file under <game_folder>/archives.
	Archive bool `yaml:"archive" env:"NOVA_ARCHIVE"`
}

func defaults() Config {
	return Config{
		Components: "./configs/components.json",
		Extensions: game.DefaultExtensions(),
	}
}

// Load reads path (optional) and applies environment overrides.
func Load(path string) (Config, error) {
	cfg := defaults()
	if strings.TrimSpace(path) != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
	}
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) Normalize() {
	c.GameFolder = strings.TrimSpace(c.GameFolder)
	c.Components = strings.TrimSpace(c.Components)
	c.IndexDB = strings.TrimSpace(c.IndexDB)
	c.Extensions = c.Extensions.Normalize()
}

// Validate checks the settings that do not depend on the launch flags. The
// game folder may still come from the command line.
func (c Config) Validate() error {
	if c.Components == "" {
		return errors.New("components path is empty")
	}
	ext := c.Extensions
	seen := map[string]string{}
	for name, v := range map[string]string{"intel": ext.Intel, "state": ext.State, "orders": ext.Orders, "race": ext.Race} {
		if strings.ContainsAny(v, `/\`) {
			return fmt.Errorf("extensions.%s: %q is not a file extension", name, v)
		}
		if other, dup := seen[v]; dup {
			return fmt.Errorf("extensions.%s and extensions.%s are both %q", name, other, v)
		}
		seen[v] = name
	}
	return nil
}
