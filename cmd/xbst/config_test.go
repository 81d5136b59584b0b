package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

func newTestFlags(t *testing.T, args ...string) *pflag.FlagSet {
	flags := pflag.NewFlagSet("xbst", pflag.ContinueOnError)
	bindFlags(flags)
	require.NoError(t, flags.Parse(args))
	return flags
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := loadConfig(viper.New(), newTestFlags(t))
	require.NoError(t, err)
	require.Equal(t, &appConfig{
		Type:            "integer",
		Width:           800,
		Height:          600,
		Highlight:       time.Second,
		LogLevel:        "INFO",
		LogEncoder:      "text",
		Metrics:         metricsNone,
		MetricsAddr:     ":9464",
		MetricsInterval: 10 * time.Second,
	}, cfg)
}

func TestLoadConfig_Precedence(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "xbst.yaml")
	require.NoError(t, os.WriteFile(file, []byte("type: float\nwidth: 1024\nheight: 768\nhighlight: 250ms\n"), 0o600))
	t.Setenv("XBST_HEIGHT", "900")
	t.Setenv("XBST_LOG_LEVEL", "debug")

	cfg, err := loadConfig(viper.New(), newTestFlags(t, "--config", file, "--width", "640", "--desc"))
	require.NoError(t, err)
	require.Equal(t, "float", cfg.Type)
	require.Equal(t, 640, cfg.Width)
	require.Equal(t, 900, cfg.Height)
	require.Equal(t, 250*time.Millisecond, cfg.Highlight)
	require.Equal(t, "debug", cfg.LogLevel)
	require.True(t, cfg.Desc)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := loadConfig(viper.New(), newTestFlags(t, "--config", filepath.Join(t.TempDir(), "nope.yaml")))
	require.Error(t, err)
}

func TestAppConfig_Validate(t *testing.T) {
	cfg := &appConfig{
		Type:       "double",
		Width:      0,
		Height:     600,
		Highlight:  time.Microsecond,
		LogLevel:   "trace",
		LogEncoder: "yaml",
		Metrics:    "statsd",
	}
	err := cfg.Validate()
	require.Error(t, err)
	require.Len(t, multierr.Errors(err), 6)

	cfg = &appConfig{
		Type:      "int",
		Width:     1,
		Height:    1,
		Highlight: time.Millisecond,
		Metrics:   metricsPrometheus,
	}
	err = cfg.Validate()
	require.Len(t, multierr.Errors(err), 1)

	cfg.MetricsAddr = ":0"
	require.NoError(t, cfg.Validate())
}
