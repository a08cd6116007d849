package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	WorkDir string `toml:"work_dir"`
	LogDir  string `toml:"log_dir"`
}

// DDR contains connection settings for the DDR publication service.
type DDR struct {
	BaseURL            string `toml:"base_url"`
	RequestTimeout     int    `toml:"request_timeout"`
	InsecureSkipVerify bool   `toml:"insecure_skip_verify"`
	TokenPath          string `toml:"token_path"`
}

// Project contains the per-locale QGIS project file inputs.
type Project struct {
	EnglishPath string `toml:"english_path"`
	FrenchPath  string `toml:"french_path"`
}

// Publish contains default values for the publication control record.
type Publish struct {
	Department          string `toml:"department"`
	DownloadInfoID      string `toml:"download_info_id"`
	QGISServerID        string `toml:"qgis_server_id"`
	ServiceSchemaName   string `toml:"service_schema_name"`
	CoreSubjectTerm     string `toml:"core_subject_term"`
	DownloadPackageName string `toml:"download_package_name"`
	Email               string `toml:"email"`
}

// Cleanup contains configuration for working-directory removal.
type Cleanup struct {
	KeepFiles  bool `toml:"keep_files"`
	MaxRetries int  `toml:"max_retries"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for ddrpub.
//
// Configuration sections by subsystem:
//   - Paths: working and log directories
//   - DDR: publication service connection and token persistence
//   - Project: English/French QGIS project file locations
//   - Publish: control record defaults (department, server id, schema, ...)
//   - Cleanup: temp directory retention and deletion retry policy
//   - Logging: log format and level
type Config struct {
	Paths   Paths   `toml:"paths"`
	DDR     DDR     `toml:"ddr"`
	Project Project `toml:"project"`
	Publish Publish `toml:"publish"`
	Cleanup Cleanup `toml:"cleanup"`
	Logging Logging `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration
// file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/ddrpub/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized. The boolean reports
// whether a config file was found on disk.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("ddrpub.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}
	return defaultPath, false, nil
}

// EnsureDirectories creates the directories the tool writes into.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.WorkDir, c.Paths.LogDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

// WriteSample writes the embedded sample configuration to the given path.
// It refuses to overwrite an existing file.
func WriteSample(path string) error {
	expanded, err := expandPath(path)
	if err != nil {
		return err
	}
	if _, err := os.Stat(expanded); err == nil {
		return fmt.Errorf("config file already exists: %s", expanded)
	}
	if err := os.MkdirAll(filepath.Dir(expanded), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(expanded, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
