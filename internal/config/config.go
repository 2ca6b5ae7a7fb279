// Package config loads the user configuration file.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/goplus/recipe/internal/env"
)

// Config holds recipe configuration.
type Config struct {
	PackagesDir    string `yaml:"packages_dir,omitempty"`
	DefaultProfile string `yaml:"default_profile,omitempty"`
	CMakeGenerator string `yaml:"cmake_generator,omitempty"`
	KeepBuildDir   bool   `yaml:"keep_build_dir,omitempty"`
	Verbose        bool   `yaml:"verbose,omitempty"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		DefaultProfile: "default",
	}
}

// Load loads configuration from path. An empty path means env.ConfigFile.
// A missing file yields the default configuration.
func Load(path string) (*Config, error) {
	if path == "" {
		var err error
		if path, err = env.ConfigFile(); err != nil {
			return Default(), nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// Save writes cfg to path. An empty path means env.ConfigFile.
func Save(cfg *Config, path string) error {
	if path == "" {
		var err error
		if path, err = env.ConfigFile(); err != nil {
			return err
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// ResolvePackagesDir returns the configured package cache, or the default
// one under the work directory.
func (c *Config) ResolvePackagesDir() (string, error) {
	if c.PackagesDir == "" {
		return env.PackagesDir()
	}
	dir, err := filepath.Abs(c.PackagesDir)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", err
	}
	return dir, nil
}
