package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeDDR(); err != nil {
		return err
	}
	if err := c.normalizeProject(); err != nil {
		return err
	}
	c.normalizePublish()
	c.normalizeCleanup()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.WorkDir, err = expandPath(c.Paths.WorkDir); err != nil {
		return fmt.Errorf("paths.work_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeDDR() error {
	c.DDR.BaseURL = strings.TrimRight(strings.TrimSpace(c.DDR.BaseURL), "/")
	if c.DDR.BaseURL == "" {
		if value, ok := os.LookupEnv("DDR_BASE_URL"); ok {
			c.DDR.BaseURL = strings.TrimRight(strings.TrimSpace(value), "/")
		}
	}
	if c.DDR.BaseURL == "" {
		c.DDR.BaseURL = defaultDDRBaseURL
	}
	if c.DDR.RequestTimeout <= 0 {
		c.DDR.RequestTimeout = defaultDDRRequestTimeout
	}
	if strings.TrimSpace(c.DDR.TokenPath) == "" {
		c.DDR.TokenPath = defaultTokenPath
	}
	var err error
	if c.DDR.TokenPath, err = expandPath(c.DDR.TokenPath); err != nil {
		return fmt.Errorf("ddr.token_path: %w", err)
	}
	return nil
}

func (c *Config) normalizeProject() error {
	var err error
	if c.Project.EnglishPath, err = expandPath(strings.TrimSpace(c.Project.EnglishPath)); err != nil {
		return fmt.Errorf("project.english_path: %w", err)
	}
	if c.Project.FrenchPath, err = expandPath(strings.TrimSpace(c.Project.FrenchPath)); err != nil {
		return fmt.Errorf("project.french_path: %w", err)
	}
	return nil
}

func (c *Config) normalizePublish() {
	c.Publish.Department = strings.TrimSpace(c.Publish.Department)
	c.Publish.DownloadInfoID = strings.TrimSpace(c.Publish.DownloadInfoID)
	c.Publish.QGISServerID = strings.TrimSpace(c.Publish.QGISServerID)
	c.Publish.ServiceSchemaName = strings.TrimSpace(c.Publish.ServiceSchemaName)
	c.Publish.Email = strings.TrimSpace(c.Publish.Email)
	if c.Publish.DownloadInfoID == "" {
		c.Publish.DownloadInfoID = defaultDownloadInfoID
	}
	if c.Publish.QGISServerID == "" {
		c.Publish.QGISServerID = defaultQGISServerID
	}
}

func (c *Config) normalizeCleanup() {
	if c.Cleanup.MaxRetries <= 0 {
		c.Cleanup.MaxRetries = defaultCleanupMaxRetries
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}
