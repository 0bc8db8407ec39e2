// Package config loads the invoice tool's configuration from a JSON file in
// the store directory, with environment overrides for secrets.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

// EnvAPIKey overrides the api_key config setting when set.
const EnvAPIKey = "CLOCKIFY_API_KEY"

// EnvHome overrides the store directory when set.
const EnvHome = "CLOCKIFY_INVOICE_HOME"

// Company identifies the invoicing party. Rate is the hourly billing rate
// applied to every line item.
type Company struct {
	Name  string  `json:"name"`
	Email string  `json:"email"`
	ABN   string  `json:"abn"`
	Rate  float64 `json:"rate"`
}

// Client identifies the party being billed.
type Client struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Contact string `json:"contact"`
}

// Serve configures the optional HTTP front end.
type Serve struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
}

// Config holds all settings. A missing required setting is a startup-fatal
// error; nothing is silently defaulted except the serve host and port.
type Config struct {
	APIKey  string  `json:"api_key"`
	Company Company `json:"company"`
	Client  Client  `json:"client"`
	Serve   Serve   `json:"serve"`
}

const sampleConfig = `{
    "api_key": "",
    "serve": {
        "host": "0.0.0.0",
        "port": 5000,
        "user": "",
        "password": ""
    },
    "company": {
        "name": "Your Company",
        "email": "your.email@example.com",
        "abn": "123 456 789",
        "rate": 70.0
    },
    "client": {
        "name": "Your Client",
        "email": "client.email@example.com",
        "contact": "Ben Howard"
    }
}
`

// DefaultDirectory resolves the store directory: CLOCKIFY_INVOICE_HOME if
// set, otherwise the XDG data home.
func DefaultDirectory() string {
	if explicit := os.Getenv(EnvHome); explicit != "" {
		return explicit
	}
	dataHome := xdg.DataHome
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join(os.TempDir(), "clockify-invoice")
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "clockify-invoice")
}

// EnsureDirectory creates the store directory if absent and seeds it with a
// sample config file on first run.
func EnsureDirectory(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("config: creating store directory: %w", err)
	}
	path := filepath.Join(dir, "clockify-invoice-config.json")
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := os.WriteFile(path, []byte(sampleConfig), 0o600); err != nil {
			return "", fmt.Errorf("config: writing sample config: %w", err)
		}
	} else if err != nil {
		return "", fmt.Errorf("config: %w", err)
	}
	return path, nil
}

// Load reads and validates the config file at path. The CLOCKIFY_API_KEY
// environment variable takes precedence over the api_key setting.
func Load(path string) (Config, error) {
	var cfg Config
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: reading %s: %w", path, err)
	}
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	if key := os.Getenv(EnvAPIKey); key != "" {
		cfg.APIKey = key
	}
	if cfg.Serve.Host == "" {
		cfg.Serve.Host = "0.0.0.0"
	}
	if cfg.Serve.Port == 0 {
		cfg.Serve.Port = 5000
	}

	var missing []string
	if cfg.Company.Name == "" {
		missing = append(missing, "company.name")
	}
	if cfg.Company.Rate <= 0 {
		missing = append(missing, "company.rate")
	}
	if cfg.Client.Name == "" {
		missing = append(missing, "client.name")
	}
	if len(missing) > 0 {
		return cfg, fmt.Errorf("config: required settings missing in %s: %v", path, missing)
	}
	return cfg, nil
}
