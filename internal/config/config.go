// Package config loads the engine's configuration from a YAML file,
// standing in for nushell's config.nu now that no parser exists to read
// one. It implements engine.Config.
package config

import (
	"os"

	"github.com/goccy/go-yaml"

	"github.com/cwbudde/quill/internal/engine"
)

// File is the on-disk shape of a configuration file.
type File struct {
	HistoryFileFormat string            `yaml:"history_file_format"`
	Paths             map[string]string `yaml:"paths"`
}

// Config adapts a loaded File to engine.Config.
type Config struct {
	file File
}

// Default returns a Config with nushell's own defaults: plaintext history,
// no path overrides.
func Default() *Config {
	return &Config{file: File{HistoryFileFormat: "plaintext"}}
}

// Load reads and parses a YAML config file from path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	return &Config{file: f}, nil
}

func (c *Config) HistoryFileFormat() engine.HistoryFormat {
	if c.file.HistoryFileFormat == "sqlite" {
		return engine.HistorySQLite
	}
	return engine.HistoryPlaintext
}

func (c *Config) ConfigPath(key string) (string, bool) {
	if c.file.Paths == nil {
		return "", false
	}
	v, ok := c.file.Paths[key]
	return v, ok
}

var _ engine.Config = (*Config)(nil)
