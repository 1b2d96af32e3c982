// Package config loads openbooks.yaml plus .env / environment
// overrides for storage settings.
package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// FileName is the project configuration file.
const FileName = "openbooks.yaml"

// Storage driver names.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config represents the top-level openbooks.yaml configuration.
type Config struct {
	Business BusinessConfig `yaml:"business"`
	Storage  StorageConfig  `yaml:"storage"`
	Fiscal   FiscalConfig   `yaml:"fiscal"`
}

// BusinessConfig identifies the business entity.
type BusinessConfig struct {
	Name     string `yaml:"name"`
	Currency string `yaml:"currency"`
}

// StorageConfig selects and configures the persistence backend.
type StorageConfig struct {
	Driver string `yaml:"driver"`          // sqlite, postgres or memory
	Path   string `yaml:"path,omitempty"`  // sqlite database file
	DSN    string `yaml:"dsn,omitempty"`   // postgres connection string
}

// FiscalConfig defines the fiscal year boundaries.
type FiscalConfig struct {
	YearStart string `yaml:"year_start"` // "MM-DD" format, e.g. "01-01"
}

// Load reads an openbooks.yaml file and applies environment
// overrides. A .env file in the working directory is loaded first if
// present (OPENBOOKS_DB_DRIVER, OPENBOOKS_DB_PATH, OPENBOOKS_DSN).
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if v := os.Getenv("OPENBOOKS_DB_DRIVER"); v != "" {
		cfg.Storage.Driver = v
	}
	if v := os.Getenv("OPENBOOKS_DB_PATH"); v != "" {
		cfg.Storage.Path = v
	}
	if v := os.Getenv("OPENBOOKS_DSN"); v != "" {
		cfg.Storage.DSN = v
	}

	if cfg.Storage.Driver == "" {
		cfg.Storage.Driver = DriverSQLite
	}
	return &cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new project.
func Default(businessName string) *Config {
	return &Config{
		Business: BusinessConfig{
			Name:     businessName,
			Currency: "USD",
		},
		Storage: StorageConfig{
			Driver: DriverSQLite,
			Path:   "openbooks.db",
		},
		Fiscal: FiscalConfig{
			YearStart: "01-01",
		},
	}
}
