// Package config defines the configuration structure for docvault.
//
// Configuration is organized into sections (Server, Vault) plus logging
// settings, with defaults applied through creasty/defaults struct tags and
// values loaded through viper in the CLI layer.
package config

import (
	"fmt"

	"github.com/creasty/defaults"
)

// Server holds HTTP server settings.
type Server struct {
	// Mode is "dev" or "prod"; prod switches gin to release mode.
	Mode string `mapstructure:"mode" default:"dev"`
	Port int    `mapstructure:"port" default:"8000"`
}

// Vault holds document vault settings.
type Vault struct {
	// WorkbookPath is the container file the vault embeds into.
	WorkbookPath string `mapstructure:"workbook" default:"vault.xlsx"`
	// RequiredTables is the table set a seeded document is expected to carry.
	RequiredTables []string `mapstructure:"required_tables" default:"[\"Pages\",\"Cells\",\"PolygonData\"]"`
}

type Configuration struct {
	Server    Server `mapstructure:"server"`
	Vault     Vault  `mapstructure:"vault"`
	LogLevel  string `mapstructure:"log_level" default:"info"`
	LogFormat string `mapstructure:"log_format" default:"console"`
}

// NewDefault returns a Configuration with every default applied.
func NewDefault() (*Configuration, error) {
	cfg := &Configuration{}
	if err := defaults.Set(cfg); err != nil {
		return nil, fmt.Errorf("apply configuration defaults: %w", err)
	}
	return cfg, nil
}
