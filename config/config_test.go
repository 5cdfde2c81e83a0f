package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sie "kastelo.dev/sieio"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), *cfg)
	assert.Equal(t, sie.DefaultThresholds(), cfg.Thresholds())
}

func TestLoadFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sie.yaml")
	require.NoError(t, os.WriteFile(path, []byte("company_name: Kastelo AB\nyear_range: 3\ndb_driver: sqlite\nreserved_to: 9800\n"), 0o644))

	t.Setenv("SIE_DB_DRIVER", "postgres")
	t.Setenv("SIE_DB_DSN", "postgres://localhost/sie")
	t.Setenv("SIE_LOG_LEVEL", "debug")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Kastelo AB", cfg.CompanyName)
	assert.Equal(t, 3, cfg.YearRange)
	assert.Equal(t, "postgres", cfg.DBDriver, "environment overrides file")
	assert.Equal(t, "postgres://localhost/sie", cfg.DBDSN)
	assert.Equal(t, 9800, cfg.Thresholds().ReservedTo)
	assert.Equal(t, 9000, cfg.Thresholds().ReservedFrom)
	assert.Equal(t, "A", cfg.Series)
}

func TestLoadInvalid(t *testing.T) {
	cases := map[string]string{
		"SIE_DB_DRIVER":  "mysql",
		"SIE_LOG_LEVEL":  "loud",
		"SIE_LOG_FORMAT": "xml",
	}
	for key, val := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, val)
			_, err := Load("")
			assert.Error(t, err)
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLogger(t *testing.T) {
	cfg := Default()
	cfg.LogFormat = "json"
	cfg.LogLevel = "warn"

	var buf bytes.Buffer
	l := cfg.Logger(&buf)
	l.Info("hidden")
	l.Warn("shown", "account", "1930")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"account":"1930"`)
}
