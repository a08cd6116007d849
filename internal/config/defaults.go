package config

const (
	defaultLogDir            = "~/.local/share/ddrpub/logs"
	defaultTokenPath         = "~/.local/share/ddrpub/ddr_auth.json"
	defaultDDRBaseURL        = "https://qgis.ddr-stage.services.geo.ca"
	defaultDDRRequestTimeout = 60
	defaultDownloadInfoID    = "DDR_DOWNLOAD1"
	defaultQGISServerID      = "DDR_QGS1"
	defaultCleanupMaxRetries = 5
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LogDir: defaultLogDir,
		},
		DDR: DDR{
			BaseURL:        defaultDDRBaseURL,
			RequestTimeout: defaultDDRRequestTimeout,
			TokenPath:      defaultTokenPath,
		},
		Publish: Publish{
			DownloadInfoID: defaultDownloadInfoID,
			QGISServerID:   defaultQGISServerID,
		},
		Cleanup: Cleanup{
			MaxRetries: defaultCleanupMaxRetries,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
