package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.uber.org/automaxprocs/maxprocs"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/benz9527/xbst/observability"
	"github.com/benz9527/xbst/session"
	"github.com/benz9527/xbst/xlog"
)

// console serializes the writes of the command loop and of the
// highlight redraw notices.
type console struct {
	lock sync.Mutex
	in   io.Reader
	out  io.Writer
}

func (c *console) printf(format string, args ...any) {
	c.lock.Lock()
	defer c.lock.Unlock()
	_, _ = fmt.Fprintf(c.out, format, args...)
}

func (c *console) write(fn func(w io.Writer)) {
	c.lock.Lock()
	defer c.lock.Unlock()
	fn(c.out)
}

func newLogger(lc fx.Lifecycle, cfg *appConfig) (xlog.XLogger, error) {
	lvl, err := xlog.ParseLogLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	enc, err := xlog.ParseLogEncoder(cfg.LogEncoder)
	if err != nil {
		return nil, err
	}
	// Stdout belongs to the command output.
	logger := xlog.NewXLogger(
		xlog.WithXLoggerStdErrWriter(),
		xlog.WithXLoggerLevel(lvl),
		xlog.WithXLoggerEncoder(enc),
		xlog.WithXLoggerLevelEncoder(zapcore.CapitalLevelEncoder),
		xlog.WithXLoggerTimeEncoder(zapcore.ISO8601TimeEncoder),
		xlog.WithXLoggerContextFieldExtract("seq", xlog.ContextKeyMapToOmitempty),
	)
	lc.Append(fx.StopHook(func() {
		_ = logger.Sync()
	}))
	return logger, nil
}

func setMaxProcs(lc fx.Lifecycle, logger xlog.XLogger) error {
	undo, err := maxprocs.Set(maxprocs.Logger(func(format string, args ...any) {
		logger.Logf(zapcore.DebugLevel, format, args...)
	}))
	if err != nil {
		return err
	}
	lc.Append(fx.StopHook(undo))
	return nil
}

type metrics struct {
	enabled  bool
	server   *http.Server
	shutdown func(ctx context.Context) error
}

func newMetrics(lc fx.Lifecycle, cfg *appConfig, logger xlog.XLogger) (*metrics, error) {
	m := &metrics{}
	var err error
	switch cfg.Metrics {
	case metricsStdout:
		m.shutdown, err = observability.NewConsoleMetricsExporter(
			cfg.MetricsInterval,
			5*time.Second,
			stdoutmetric.WithWriter(os.Stderr),
		)
	case metricsPrometheus:
		m.shutdown, err = observability.NewPrometheusMetricsExporter()
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		m.server = &http.Server{
			Addr:              cfg.MetricsAddr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
	default:
		return m, nil
	}
	if err != nil {
		return nil, err
	}
	if err = observability.InitAppStats("xbst"); err != nil {
		logger.Error(err, "runtime metrics disabled")
	}
	m.enabled = true

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if m.server == nil {
				return nil
			}
			ln, err := net.Listen("tcp", m.server.Addr)
			if err != nil {
				return err
			}
			go func() {
				if err := m.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error(err, "metrics server stopped")
				}
			}()
			logger.Info("metrics served", zap.String("addr", ln.Addr().String()))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			var err error
			if m.server != nil {
				err = multierr.Append(err, m.server.Shutdown(ctx))
			}
			return multierr.Append(err, m.shutdown(ctx))
		},
	})
	return m, nil
}

func newSession(lc fx.Lifecycle, cfg *appConfig, logger xlog.XLogger, m *metrics, con *console) (session.Session, error) {
	typ, err := session.ParseElementType(cfg.Type)
	if err != nil {
		return nil, err
	}

	var sess session.Session
	opts := []session.Option{
		session.WithDisplayArea(cfg.Width, cfg.Height),
		session.WithHighlightDuration(cfg.Highlight),
		session.WithLogger(logger),
		session.WithRedraw(func() {
			con.printf("~ highlight cleared, %d nodes\n", sess.Len())
		}),
	}
	if cfg.Desc {
		opts = append(opts, session.WithDescending())
	}
	if m.enabled {
		opts = append(opts, session.WithStats("xbst"))
	}
	if sess, err = session.New(typ, opts...); err != nil {
		return nil, err
	}
	lc.Append(fx.StopHook(sess.Close))
	return sess, nil
}

func runREPL(lc fx.Lifecycle, r *repl, sd fx.Shutdowner) {
	lc.Append(fx.StartHook(func() {
		go func() {
			r.loop(context.Background())
			_ = sd.Shutdown()
		}()
	}))
}

func appOptions(cfg *appConfig, con *console) []fx.Option {
	return []fx.Option{
		fx.Supply(cfg, con),
		fx.Provide(
			newLogger,
			newMetrics,
			newSession,
			newREPL,
		),
		fx.WithLogger(func(logger xlog.XLogger) fxevent.Logger {
			return xlog.NewFxXLogger(logger)
		}),
		fx.Invoke(setMaxProcs, runREPL),
	}
}

func newApp(cfg *appConfig, in io.Reader, out io.Writer) *fx.App {
	return fx.New(appOptions(cfg, &console{in: in, out: out})...)
}
