// Package config holds the process wide configuration of the local actor.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is constructed once at startup and passed to every component
// that needs to know who, and where, the local actor is.
type Config struct {
	// Domain is the host name the actor is served from, eg. links.example.com.
	Domain string `yaml:"domain"`
	// Username is the local part of the acct: identifier.
	Username    string `yaml:"username"`
	DisplayName string `yaml:"display_name"`
	Summary     string `yaml:"summary"`
	IconURL     string `yaml:"icon_url"`

	// SiteURL is the base of the human facing link list. Hashtags point
	// at SiteURL?tag=<tag>. Defaults to https://<Domain>/.
	SiteURL string `yaml:"site_url"`

	// DSN is the data source name of the follower database.
	DSN string `yaml:"dsn"`
	// Links is the path to the link repository JSON file.
	Links string `yaml:"links"`

	PageSize       int           `yaml:"page_size"`
	DeliveryDelay  time.Duration `yaml:"delivery_delay"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	LogRetention   int           `yaml:"log_retention"`

	// VerifySignatures rejects inbound activities whose HTTP signature
	// cannot be verified. When false failures are logged only.
	VerifySignatures bool `yaml:"verify_signatures"`
}

const (
	DefaultPageSize       = 20
	DefaultDeliveryDelay  = time.Second
	DefaultRequestTimeout = 10 * time.Second
	DefaultLogRetention   = 1000
	DefaultLinks          = "links.json"
)

// Load reads a YAML configuration file. A missing file is not an error,
// the caller is expected to supply the required fields via flags.
func Load(path string) (*Config, error) {
	var cfg Config
	if path != "" {
		buf, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
			// use defaults
		case err != nil:
			return nil, fmt.Errorf("config: %w", err)
		default:
			if err := yaml.Unmarshal(buf, &cfg); err != nil {
				return nil, fmt.Errorf("config: %s: %w", path, err)
			}
		}
	}
	return &cfg, nil
}

// SetDefaults fills any zero valued tunables.
func (c *Config) SetDefaults() {
	if c.PageSize <= 0 {
		c.PageSize = DefaultPageSize
	}
	// a negative delay disables the pause between deliveries.
	if c.DeliveryDelay == 0 {
		c.DeliveryDelay = DefaultDeliveryDelay
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = DefaultRequestTimeout
	}
	if c.LogRetention <= 0 {
		c.LogRetention = DefaultLogRetention
	}
	if c.Links == "" {
		c.Links = DefaultLinks
	}
	if c.DisplayName == "" {
		c.DisplayName = c.Username
	}
	if c.SiteURL == "" && c.Domain != "" {
		c.SiteURL = "https://" + c.Domain + "/"
	}
}

// Validate reports whether the configuration can identify an actor.
func (c *Config) Validate() error {
	if c.Domain == "" {
		return errors.New("config: domain is required")
	}
	if c.Username == "" {
		return errors.New("config: username is required")
	}
	return nil
}
