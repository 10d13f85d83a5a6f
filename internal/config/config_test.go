package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newViper(t *testing.T, yaml string) *viper.Viper {
	t.Helper()
	v := viper.New()
	v.SetEnvPrefix("MINISCAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if yaml != "" {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))
		v.SetConfigFile(path)
		require.NoError(t, v.ReadInConfig())
	}
	return v
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(newViper(t, ""))
	require.NoError(t, err)

	def := Default()
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.Equal(t, def.Scan.Cluster, cfg.Scan.Cluster)
	assert.Equal(t, def.Washes.Universal, cfg.Washes.Universal)
	assert.True(t, strings.HasSuffix(cfg.Catalog.Path, "paints.db"))
}

func TestLoadFile(t *testing.T) {
	cfg, err := Load(newViper(t, `
logging:
  level: debug
  format: json
catalog:
  path: /tmp/paints.json
brands: [Citadel, Vallejo]
skip_stand: true
workers: 2
analysis:
  width: 200
cluster:
  backend: go
  min_confidence: 0.3
match:
  alternatives: 5
washes:
  universal: [Nuln Oil]
`))
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "/tmp/paints.json", cfg.Catalog.Path)
	assert.Equal(t, []string{"Citadel", "Vallejo"}, cfg.Scan.Brands)
	assert.True(t, cfg.Scan.SkipStand)
	assert.Equal(t, 2, cfg.Scan.Workers)
	assert.Equal(t, 200, cfg.Scan.Prepare.Width)

	// Partial sections keep their other defaults.
	def := Default()
	assert.Equal(t, def.Scan.Prepare.AlphaThreshold, cfg.Scan.Prepare.AlphaThreshold)
	assert.Equal(t, "go", cfg.Scan.Cluster.Backend)
	assert.InDelta(t, 0.3, cfg.Scan.Cluster.MinConfidence, 1e-9)
	assert.Equal(t, def.Scan.Cluster.MinPixels, cfg.Scan.Cluster.MinPixels)
	assert.Equal(t, 5, cfg.Scan.Match.Alternatives)
	assert.Equal(t, def.Scan.Match.CandidatePool, cfg.Scan.Match.CandidatePool)
	assert.Equal(t, []string{"Nuln Oil"}, cfg.Washes.Universal)
	assert.Equal(t, def.Washes.Families, cfg.Washes.Families)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("MINISCAN_CATALOG_PATH", "/data/paints.db")
	t.Setenv("MINISCAN_LOGGING_LEVEL", "warn")

	cfg, err := Load(newViper(t, "logging:\n  level: debug\n"))
	require.NoError(t, err)
	assert.Equal(t, "/data/paints.db", cfg.Catalog.Path)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{name: "log level", yaml: "logging:\n  level: loud\n"},
		{name: "log format", yaml: "logging:\n  format: xml\n"},
		{name: "min pixels", yaml: "cluster:\n  min_pixels: 0\n"},
		{name: "anchor skip", yaml: "anchor_skip_bottom: 1.5\n"},
		{name: "bad type", yaml: "analysis:\n  width: wide\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(newViper(t, tt.yaml))
			require.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	t.Setenv("MINISCAN_TEST_DIR", "/srv/paint")

	assert.Equal(t, "", ExpandPath(""))
	assert.Equal(t, home, ExpandPath("~"))
	assert.Equal(t, filepath.Join(home, "a", "b.db"), ExpandPath("~/a/b.db"))
	assert.Equal(t, "/srv/paint/x.json", ExpandPath("$MINISCAN_TEST_DIR/x.json"))
	assert.Equal(t, "/abs/path", ExpandPath("/abs/path"))
}
