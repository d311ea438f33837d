package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Addr          string `yaml:"addr"`
	PostTableName string `yaml:"post_table_name"`

	ReadTimeoutSeconds     int `yaml:"read_timeout_seconds"`
	WriteTimeoutSeconds    int `yaml:"write_timeout_seconds"`
	IdleTimeoutSeconds     int `yaml:"idle_timeout_seconds"`
	ShutdownTimeoutSeconds int `yaml:"shutdown_timeout_seconds"`

	SeedEnabled bool `yaml:"seed_enabled"`
	DebugSQL    bool `yaml:"debug_sql"`
	MCPEnabled  bool `yaml:"mcp_enabled"`
}

func Defaults() Config {
	return Config{
		Addr:                   ":5002",
		PostTableName:          "posts",
		ReadTimeoutSeconds:     5,
		WriteTimeoutSeconds:    10,
		IdleTimeoutSeconds:     60,
		ShutdownTimeoutSeconds: 5,
		SeedEnabled:            true,
		MCPEnabled:             true,
	}
}

func Load(path string) (Config, error) {
	c := Defaults()

	raw, err := os.ReadFile(path)
	if err != nil {
		return c, err
	}

	if err := yaml.Unmarshal(raw, &c); err != nil {
		return c, fmt.Errorf("config.yaml: %w", err)
	}

	return c, nil
}
