package config

import (
	"fmt"
	"strings"

	"grimm.is/fwtranslate/internal/logging"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// HasErrors returns true if there are any validation errors.
func (e ValidationErrors) HasErrors() bool {
	return len(e) > 0
}

// Validate checks the configuration. Missing blocks are not errors.
func (c *Config) Validate() ValidationErrors {
	var errs ValidationErrors

	if c.Log != nil && c.Log.Level != "" {
		if _, err := logging.ParseLevel(c.Log.Level); err != nil {
			errs = append(errs, ValidationError{Field: "log.level", Message: err.Error()})
		}
	}

	if c.Output != nil && c.Output.Format != "" {
		switch c.Output.Format {
		case FormatYAML, FormatJSON:
		default:
			errs = append(errs, ValidationError{
				Field:   "output.format",
				Message: fmt.Sprintf("unknown format %q (use %s or %s)", c.Output.Format, FormatYAML, FormatJSON),
			})
		}
	}

	if c.Metrics != nil && strings.HasSuffix(c.Metrics.Textfile, "/") {
		errs = append(errs, ValidationError{Field: "metrics.textfile", Message: "must be a file, not a directory"})
	}

	return errs
}

// LoggingConfig converts the log block for logging.New.
func (c *Config) LoggingConfig() logging.Config {
	lc := logging.DefaultConfig()
	if c.Log == nil {
		return lc
	}
	if level, err := logging.ParseLevel(c.Log.Level); err == nil {
		lc.Level = level
	}
	lc.JSON = c.Log.JSON
	return lc
}
