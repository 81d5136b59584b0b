package session

import (
	"time"

	"github.com/benz9527/xbst/observability"
	"github.com/benz9527/xbst/xlog"
)

const (
	defaultWidth  = 800
	defaultHeight = 600
)

type options struct {
	width, height int
	highlight     time.Duration
	redraw        func()
	logger        xlog.XLogger
	desc          bool
	statsEnabled  bool
	statsName     string
	statsOpts     []observability.TreeStatsOption
}

func (opt *options) getLogger() xlog.XLogger {
	if opt.logger == nil {
		return xlog.NewNopXLogger()
	}
	return opt.logger
}

type Option func(opt *options)

// WithDisplayArea sets the initial drawing area, 800x600 by default.
func WithDisplayArea(width, height int) Option {
	return func(opt *options) {
		opt.width, opt.height = width, height
	}
}

func WithHighlightDuration(d time.Duration) Option {
	return func(opt *options) {
		opt.highlight = d
	}
}

// WithRedraw is invoked from a highlight worker once a highlight expired.
func WithRedraw(redraw func()) Option {
	return func(opt *options) {
		opt.redraw = redraw
	}
}

func WithLogger(logger xlog.XLogger) Option {
	return func(opt *options) {
		opt.logger = logger
	}
}

// WithDescending orders the keys from the greatest to the smallest.
func WithDescending() Option {
	return func(opt *options) {
		opt.desc = true
	}
}

func WithStats(name string, opts ...observability.TreeStatsOption) Option {
	return func(opt *options) {
		opt.statsEnabled = true
		opt.statsName = name
		opt.statsOpts = opts
	}
}
