package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateDDR(); err != nil {
		return err
	}
	if err := c.validateProject(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateDDR() error {
	parsed, err := url.Parse(c.DDR.BaseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("ddr.base_url must be an absolute URL, got %q", c.DDR.BaseURL)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("ddr.base_url scheme must be http or https, got %q", parsed.Scheme)
	}
	if c.DDR.RequestTimeout <= 0 {
		return errors.New("ddr.request_timeout must be positive")
	}
	return nil
}

func (c *Config) validateProject() error {
	for field, path := range map[string]string{
		"project.english_path": c.Project.EnglishPath,
		"project.french_path":  c.Project.FrenchPath,
	} {
		if path == "" {
			continue
		}
		if !strings.HasSuffix(strings.ToLower(path), ".qgs") {
			return fmt.Errorf("%s must point to a .qgs project file, got %q", field, path)
		}
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}
