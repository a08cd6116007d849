package testsupport

import (
	"testing"

	"ddrpub/internal/config"
)

// NewConfig returns a validated config rooted in per-test temp directories.
func NewConfig(t *testing.T) *config.Config {
	t.Helper()

	cfg := config.Default()
	cfg.Paths.WorkDir = t.TempDir()
	cfg.Paths.LogDir = t.TempDir()
	cfg.DDR.TokenPath = t.TempDir() + "/ddr_auth.json"
	cfg.Logging.Format = "json"
	cfg.Logging.Level = "debug"
	return &cfg
}
