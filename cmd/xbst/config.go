package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/multierr"

	"github.com/benz9527/xbst/session"
	"github.com/benz9527/xbst/xlog"
)

const envPrefix = "XBST"

const (
	metricsNone       = "none"
	metricsStdout     = "stdout"
	metricsPrometheus = "prometheus"
)

type appConfig struct {
	Type            string        `mapstructure:"type"`
	Width           int           `mapstructure:"width"`
	Height          int           `mapstructure:"height"`
	Highlight       time.Duration `mapstructure:"highlight"`
	Desc            bool          `mapstructure:"desc"`
	LogLevel        string        `mapstructure:"log-level"`
	LogEncoder      string        `mapstructure:"log-encoder"`
	Metrics         string        `mapstructure:"metrics"`
	MetricsAddr     string        `mapstructure:"metrics-addr"`
	MetricsInterval time.Duration `mapstructure:"metrics-interval"`
}

func bindFlags(flags *pflag.FlagSet) {
	flags.String("config", "", "config file (yaml, json or toml)")
	flags.String("type", "integer", "element type: integer, float or string")
	flags.Int("width", 800, "display area width")
	flags.Int("height", 600, "display area height")
	flags.Duration("highlight", time.Second, "how long a found node stays highlighted")
	flags.Bool("desc", false, "order the keys from the greatest to the smallest")
	flags.String("log-level", "INFO", "DEBUG, INFO, WARN or ERROR")
	flags.String("log-encoder", "text", "json or text")
	flags.String("metrics", metricsNone, "metrics exporter: none, stdout or prometheus")
	flags.String("metrics-addr", ":9464", "prometheus /metrics listen address")
	flags.Duration("metrics-interval", 10*time.Second, "stdout exporter interval")
}

// loadConfig resolves flags, XBST_ prefixed environment variables and the
// optional config file, in this order of precedence.
func loadConfig(v *viper.Viper, flags *pflag.FlagSet) (*appConfig, error) {
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(flags); err != nil {
		return nil, fmt.Errorf("failed to bind flags: %w", err)
	}
	if cfgFile := v.GetString("config"); len(cfgFile) > 0 {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", cfgFile, err)
		}
	}

	cfg := &appConfig{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (cfg *appConfig) Validate() (err error) {
	if _, e := session.ParseElementType(cfg.Type); e != nil {
		err = multierr.Append(err, fmt.Errorf("type %q: %w", cfg.Type, e))
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		err = multierr.Append(err, fmt.Errorf("display area %dx%d must be positive", cfg.Width, cfg.Height))
	}
	if cfg.Highlight < time.Millisecond {
		err = multierr.Append(err, fmt.Errorf("highlight %s is shorter than 1ms", cfg.Highlight))
	}
	if _, e := xlog.ParseLogLevel(cfg.LogLevel); e != nil {
		err = multierr.Append(err, e)
	}
	if _, e := xlog.ParseLogEncoder(cfg.LogEncoder); e != nil {
		err = multierr.Append(err, e)
	}
	switch cfg.Metrics {
	case metricsNone, metricsStdout:
	case metricsPrometheus:
		if len(strings.TrimSpace(cfg.MetricsAddr)) == 0 {
			err = multierr.Append(err, errors.New("metrics-addr is required by the prometheus exporter"))
		}
	default:
		err = multierr.Append(err, fmt.Errorf("unknown metrics exporter %q", cfg.Metrics))
	}
	if cfg.Metrics == metricsStdout && cfg.MetricsInterval <= 0 {
		err = multierr.Append(err, fmt.Errorf("metrics-interval %s must be positive", cfg.MetricsInterval))
	}
	return err
}
