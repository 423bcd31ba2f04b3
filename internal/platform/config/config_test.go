package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg, err := Load(New(), "")
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 100.0, cfg.Dosing.UnitsPerMl)
	assert.Equal(t, 30.0, cfg.Dosing.ThresholdMgPerMl)
	assert.Equal(t, 3.0, cfg.Dosing.MaxVialVolumeMl)
	assert.Equal(t, "https://rickroll.it/rickroll.mp4", cfg.Label.DefaultURL)
	assert.Equal(t, 3, cfg.Label.ScreenScale)
	assert.Equal(t, 9, cfg.Label.PrintScale)
	assert.Equal(t, "local", cfg.Barcode.Source)
	assert.Equal(t, 5*time.Second, cfg.Barcode.Timeout)
	assert.Empty(t, cfg.Shortener.Endpoint)
	assert.Empty(t, cfg.Shortener.Params)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("PEPLABEL_PORT", ":9090")
	t.Setenv("PEPLABEL_LABEL_DEFAULT_URL", "https://clinic.test")
	t.Setenv("PEPLABEL_DOSING_THRESHOLD_MG_PER_ML", "25")
	t.Setenv("PEPLABEL_BARCODE_SOURCE", "REMOTE")
	t.Setenv("PEPLABEL_SHORTENER_PARAMS", "format=simple&logstats=0")

	cfg, err := Load(New(), "")
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "https://clinic.test", cfg.Label.DefaultURL)
	assert.Equal(t, 25.0, cfg.Dosing.ThresholdMgPerMl)
	assert.Equal(t, "remote", cfg.Barcode.Source)
	assert.Equal(t, map[string]string{"format": "simple", "logstats": "0"}, cfg.Shortener.Params)
}

func TestYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "peplabel.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
label:
  height_mm: 12
  print_scale: 6
shortener:
  endpoint: https://is.gd/create.php
  format: json
  timeout: 2s
`), 0o600))

	cfg, err := Load(New(), path)
	require.NoError(t, err)
	assert.Equal(t, 12.0, cfg.Label.HeightMm)
	assert.Equal(t, 6, cfg.Label.PrintScale)
	assert.Equal(t, "https://is.gd/create.php", cfg.Shortener.Endpoint)
	assert.Equal(t, "json", cfg.Shortener.Format)
	assert.Equal(t, 2*time.Second, cfg.Shortener.Timeout)

	_, err = Load(New(), filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	v := New()
	v.Set("barcode.source", "fax")
	v.Set("label.print_scale", 0)

	_, err := FromViper(v)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidConfig))
	assert.Contains(t, err.Error(), "barcode.source")
	assert.Contains(t, err.Error(), "scales")
}
