package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tristendillon/pypack/core/logger"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Archive        bool     `yaml:"archive"`
	DataExtensions []string `yaml:"data_extensions"`
	Watch          Watch    `yaml:"watch"`
}

type Watch struct {
	Exclude    []string `yaml:"exclude"`
	DebounceMs int      `yaml:"debounce_ms"`
}

func Default() *Config {
	return &Config{
		DataExtensions: []string{".txt", ".yaml", ".yml", ".json"},
		Watch: Watch{
			Exclude: []string{
				".git", "__pycache__", ".venv", "venv",
				"node_modules", ".mypy_cache", ".pytest_cache",
			},
			DebounceMs: 300,
		},
	}
}

func Load() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("cannot determine working dir: %w", err)
	}

	paths := []string{
		filepath.Join(wd, "pypack.yaml"),
		filepath.Join(wd, "pypack.yml"),
	}

	var filePath string
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			filePath = p
			break
		}
	}

	if filePath == "" {
		logger.Debug("No config file found, using default config")
		return Default(), nil
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", filePath, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse yaml: %w", err)
	}
	cfg.normalize()
	logger.Debug("Config file found: %s", filePath)
	logger.Debug("Config: %+v", cfg)

	return cfg, nil
}

// normalize lowercases data extensions and makes sure each carries its
// leading dot, so "YAML" and ".yaml" in a config file mean the same thing.
func (c *Config) normalize() {
	exts := c.DataExtensions[:0]
	for _, ext := range c.DataExtensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		exts = append(exts, ext)
	}
	c.DataExtensions = exts
	if c.Watch.DebounceMs <= 0 {
		c.Watch.DebounceMs = 300
	}
}
