package observability

import (
	"context"

	"github.com/samber/lo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const treeStatsMeterName = "xbst/tree"

// TreeSizer is read by the gauge callbacks on the collector goroutine.
// Implementations must not walk the tree, they return cached values.
type TreeSizer interface {
	Len() int64
	Height() int
}

type treeStatsCfg struct {
	mp metric.MeterProvider
}

type TreeStatsOption func(*treeStatsCfg)

func WithTreeStatsMeterProvider(mp metric.MeterProvider) TreeStatsOption {
	return func(cfg *treeStatsCfg) {
		if mp != nil {
			cfg.mp = mp
		}
	}
}

// TreeStats counts the tree operations and observes the tree shape.
// A nil *TreeStats records nothing.
type TreeStats struct {
	ops        metric.Int64Counter
	failures   metric.Int64Counter
	highlights metric.Int64UpDownCounter
	nodes      metric.Int64ObservableGauge
	height     metric.Int64ObservableGauge
}

func NewTreeStats(name string, sizer TreeSizer, opts ...TreeStatsOption) *TreeStats {
	cfg := &treeStatsCfg{}
	for _, o := range opts {
		if o != nil {
			o(cfg)
		}
	}
	if cfg.mp == nil {
		cfg.mp = otel.GetMeterProvider()
	}
	meter := cfg.mp.Meter(treeStatsMeterName + "/" + lo.Ternary(name == "", "default", name))

	return &TreeStats{
		ops: lo.Must[metric.Int64Counter](meter.Int64Counter(
			"xbst.tree.ops",
			metric.WithDescription("Tree operations by kind."),
		)),
		failures: lo.Must[metric.Int64Counter](meter.Int64Counter(
			"xbst.tree.op.failures",
			metric.WithDescription("Tree operations rejected or not found, by kind."),
		)),
		highlights: lo.Must[metric.Int64UpDownCounter](meter.Int64UpDownCounter(
			"xbst.highlight.active",
			metric.WithDescription("Highlighted nodes waiting to be cleared."),
		)),
		nodes: lo.Must[metric.Int64ObservableGauge](meter.Int64ObservableGauge(
			"xbst.tree.nodes",
			metric.WithDescription("Nodes in the tree."),
			metric.WithInt64Callback(func(_ context.Context, ob metric.Int64Observer) error {
				if sizer != nil {
					ob.Observe(sizer.Len())
				}
				return nil
			}),
		)),
		height: lo.Must[metric.Int64ObservableGauge](meter.Int64ObservableGauge(
			"xbst.tree.height",
			metric.WithDescription("Edges on the longest root to leaf path, -1 when empty."),
			metric.WithInt64Callback(func(_ context.Context, ob metric.Int64Observer) error {
				if sizer != nil {
					ob.Observe(int64(sizer.Height()))
				}
				return nil
			}),
		)),
	}
}

func (s *TreeStats) RecordOp(ctx context.Context, op string, err error) {
	if s == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("op", op))
	s.ops.Add(ctx, 1, attrs)
	if err != nil {
		s.failures.Add(ctx, 1, attrs)
	}
}

func (s *TreeStats) HighlightStarted(ctx context.Context) {
	if s == nil {
		return
	}
	s.highlights.Add(ctx, 1)
}

func (s *TreeStats) HighlightFinished(ctx context.Context) {
	if s == nil {
		return
	}
	s.highlights.Add(ctx, -1)
}
