package config

import (
	"fmt"
	"strings"
)

// Config holds all configuration for the application
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Database    DatabaseConfig    `yaml:"database"`
	Fingerprint FingerprintConfig `yaml:"fingerprint"`
	Serial      SerialConfig      `yaml:"serial"`
	Pattern     PatternConfig     `yaml:"pattern"`
	Admin       AdminConfig       `yaml:"admin"`
	Logging     LoggingConfig     `yaml:"logging"`
	RateLimit   RateLimitConfig   `yaml:"rate_limit"`
}

// ServerConfig contains server configuration
type ServerConfig struct {
	ListenAddr string `yaml:"listen_addr"`
	// PublicBaseURL is the externally reachable base URL embedded in
	// verification QR codes, e.g. https://certs.example.org
	PublicBaseURL string `yaml:"public_base_url"`
}

// DatabaseConfig contains database configuration
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// FingerprintConfig contains fingerprint derivation configuration.
// The secret stays server-side: it is mixed into every canonical
// identity string and must never be shipped to any client.
type FingerprintConfig struct {
	Secret string `yaml:"secret"`
}

// SerialConfig contains sequential number allocation configuration
type SerialConfig struct {
	Prefix string `yaml:"prefix"`
}

// PatternConfig contains the default security pattern configuration
// applied when an issuance draft does not choose its own
type PatternConfig struct {
	Family       string  `yaml:"family"`
	PrimaryColor string  `yaml:"primary_color"`
	Opacity      float64 `yaml:"opacity"`
}

// AdminConfig contains admin configuration
type AdminConfig struct {
	Token string `yaml:"token"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// RateLimitConfig contains rate limiting configuration for the public
// verification endpoints
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requests_per_minute"`
}

var validPatternFamilies = map[string]bool{
	"diamonds":  true,
	"geometric": true,
	"islamic":   true,
	"waves":     true,
	"dots":      true,
	"lines":     true,
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	// Server validation
	if c.Server.ListenAddr == "" {
		return fmt.Errorf("server.listen_addr is required")
	}
	if c.Server.PublicBaseURL == "" {
		return fmt.Errorf("server.public_base_url is required")
	}

	// Database validation
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}

	// Fingerprint validation
	if c.Fingerprint.Secret == "" {
		return fmt.Errorf("fingerprint.secret is required")
	}

	// Serial validation
	if c.Serial.Prefix == "" {
		return fmt.Errorf("serial.prefix is required")
	}
	if c.Serial.Prefix != strings.ToUpper(c.Serial.Prefix) || strings.Contains(c.Serial.Prefix, "-") {
		return fmt.Errorf("serial.prefix must be uppercase and contain no hyphen")
	}

	// Pattern validation
	if !validPatternFamilies[c.Pattern.Family] {
		return fmt.Errorf("pattern.family must be one of: diamonds, geometric, islamic, waves, dots, lines")
	}
	if c.Pattern.PrimaryColor == "" {
		return fmt.Errorf("pattern.primary_color is required")
	}
	if c.Pattern.Opacity < 0 || c.Pattern.Opacity > 1 {
		return fmt.Errorf("pattern.opacity must be between 0 and 1")
	}

	// Admin validation
	if c.Admin.Token == "" {
		return fmt.Errorf("admin.token is required")
	}

	// Logging validation
	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}
	if c.Logging.Format != "json" && c.Logging.Format != "text" {
		return fmt.Errorf("logging.format must be 'json' or 'text'")
	}

	// Rate limit validation
	if c.RateLimit.Enabled && c.RateLimit.RequestsPerMinute <= 0 {
		return fmt.Errorf("rate_limit.requests_per_minute must be positive when enabled")
	}

	return nil
}
