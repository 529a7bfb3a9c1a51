// Package config manages application configuration.
package config

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Config represents the application configuration.
type Config struct {
	Site    SiteConfig    `yaml:"site"`
	Space   SpaceConfig   `yaml:"space"`
	HTTP    HTTPConfig    `yaml:"http"`
	Logging LoggingConfig `yaml:"logging"`
}

// SiteConfig identifies the Confluence site and the credentials used
// against it.
type SiteConfig struct {
	Domain   string `yaml:"domain"`
	Email    string `yaml:"email"`
	APIToken string `yaml:"api_token"`
}

// SpaceConfig holds the default space documents are published to.
type SpaceConfig struct {
	ID  string `yaml:"id,omitempty"`
	Key string `yaml:"key,omitempty"`
}

// HTTPConfig contains request tuning options.
type HTTPConfig struct {
	TimeoutSeconds int `yaml:"timeout_seconds"`
	MaxRetries     int `yaml:"max_retries"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // console, json or pretty
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Site: SiteConfig{
			Domain:   "${CONFLUENCE_DOMAIN}",
			Email:    "${CONFLUENCE_EMAIL}",
			APIToken: "${CONFLUENCE_API_TOKEN}",
		},
		HTTP: HTTPConfig{
			TimeoutSeconds: 30,
			MaxRetries:     3,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Validate checks that the configuration can produce a working site
// connection. Space defaults are optional; commands that need one
// check for it themselves.
func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Site),
		validation.Field(&c.HTTP),
		validation.Field(&c.Logging),
	)
}

// Validate checks the site connection settings.
func (s SiteConfig) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Domain, validation.Required),
		validation.Field(&s.Email, validation.Required),
		validation.Field(&s.APIToken, validation.Required),
	)
}

// Validate checks the request tuning options.
func (h HTTPConfig) Validate() error {
	return validation.ValidateStruct(&h,
		validation.Field(&h.TimeoutSeconds, validation.Min(0)),
		validation.Field(&h.MaxRetries, validation.Min(0)),
	)
}

// Validate checks the logging options.
func (l LoggingConfig) Validate() error {
	return validation.ValidateStruct(&l,
		validation.Field(&l.Level, validation.In("trace", "debug", "info", "warn", "error", "")),
		validation.Field(&l.Format, validation.In("console", "json", "pretty", "")),
	)
}
