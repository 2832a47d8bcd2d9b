package config

import (
	"os"

	"go.uber.org/zap"
)

const (
	// The bar host treats an empty line as "suppress this module", so the
	// placeholder must never be empty.
	defaultPlaceholder = "♪"
	defaultSeparator   = " - "
)

// AppConfig holds application configuration
type AppConfig struct {
	logger      *zap.Logger
	placeholder string
	separator   string
}

// NewAppConfig creates a new application configuration instance
func NewAppConfig(logger *zap.Logger) *AppConfig {
	// Read from environment variables or use defaults
	placeholder := os.Getenv("TRACKLINE_PLACEHOLDER")
	if placeholder == "" {
		placeholder = defaultPlaceholder
	}

	separator := os.Getenv("TRACKLINE_SEPARATOR")
	if separator == "" {
		separator = defaultSeparator
	}

	logger.Info("Configuration loaded",
		zap.String("placeholder", placeholder),
		zap.String("separator", separator))

	return &AppConfig{
		logger:      logger,
		placeholder: placeholder,
		separator:   separator,
	}
}

// GetPlaceholder returns the caption shown when no player is active
func (c *AppConfig) GetPlaceholder() string {
	return c.placeholder
}

// GetSeparator returns the string joining the artist and title segments
func (c *AppConfig) GetSeparator() string {
	return c.separator
}
