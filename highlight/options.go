package highlight

import (
	"fmt"
	"time"

	"github.com/benz9527/xbst/observability"
	"github.com/benz9527/xbst/xlog"
)

const (
	defaultDuration       = time.Second
	defaultWorkerPoolSize = 64
	defaultMinDuration    = time.Millisecond
)

type highlighterOption struct {
	duration     time.Duration
	workPoolSize int
	redraw       func()
	logger       xlog.XLogger
	stats        *observability.TreeStats
}

func (opt *highlighterOption) getDuration() time.Duration {
	if opt.duration <= 0 {
		return defaultDuration
	}
	return opt.duration
}

func (opt *highlighterOption) getWorkerPoolSize() int {
	if opt.workPoolSize <= 0 {
		return defaultWorkerPoolSize
	}
	return opt.workPoolSize
}

func (opt *highlighterOption) getLogger() xlog.XLogger {
	if opt.logger == nil {
		return xlog.NewNopXLogger()
	}
	return opt.logger
}

func (opt *highlighterOption) Validate() error {
	if opt.duration != 0 && opt.duration < defaultMinDuration {
		return fmt.Errorf("[highlight] duration must be greater than or equals to %s", defaultMinDuration)
	}
	if opt.workPoolSize < 0 {
		return fmt.Errorf("[highlight] worker pool size %d is negative", opt.workPoolSize)
	}
	return nil
}

type HighlighterOption func(opt *highlighterOption)

// WithHighlightDuration sets how long a node stays active.
func WithHighlightDuration(d time.Duration) HighlighterOption {
	return func(opt *highlighterOption) {
		opt.duration = d
	}
}

// WithHighlightWorkerPoolSize bounds the number of concurrently pending highlights.
func WithHighlightWorkerPoolSize(size int) HighlighterOption {
	return func(opt *highlighterOption) {
		opt.workPoolSize = size
	}
}

// WithHighlightRedraw is called after a flag has been cleared by expiry,
// never while the highlighter holds its lock.
func WithHighlightRedraw(redraw func()) HighlighterOption {
	return func(opt *highlighterOption) {
		opt.redraw = redraw
	}
}

func WithHighlightLogger(logger xlog.XLogger) HighlighterOption {
	return func(opt *highlighterOption) {
		opt.logger = logger
	}
}

func WithHighlightStats(stats *observability.TreeStats) HighlighterOption {
	return func(opt *highlighterOption) {
		opt.stats = stats
	}
}
