package session

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/samber/lo"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/benz9527/xbst/highlight"
	"github.com/benz9527/xbst/lib/infra"
	"github.com/benz9527/xbst/lib/tree"
	"github.com/benz9527/xbst/observability"
	"github.com/benz9527/xbst/xlog"
)

type keyCodec[K infra.OrderedKey] struct {
	parse  func(text string) (K, error)
	format func(key K) string
}

var (
	integerCodec = keyCodec[int64]{
		parse: func(text string) (int64, error) {
			return strconv.ParseInt(text, 10, 64)
		},
		format: func(key int64) string {
			return strconv.FormatInt(key, 10)
		},
	}
	floatCodec = keyCodec[float64]{
		parse: func(text string) (float64, error) {
			f, err := strconv.ParseFloat(text, 64)
			if err != nil {
				return 0, err
			}
			// NaN is unordered, it would break the search descent.
			if math.IsNaN(f) {
				return 0, errors.New("NaN is not ordered")
			}
			return f, nil
		},
		format: func(key float64) string {
			return strconv.FormatFloat(key, 'g', -1, 64)
		},
	}
	stringCodec = keyCodec[string]{
		parse: func(text string) (string, error) {
			return text, nil
		},
		format: func(key string) string {
			return key
		},
	}
)

// New creates a session whose keys are parsed as typ.
func New(typ ElementType, opts ...Option) (Session, error) {
	opt := &options{
		width:  defaultWidth,
		height: defaultHeight,
	}
	for _, o := range opts {
		if o != nil {
			o(opt)
		}
	}

	switch typ {
	case Integer:
		return newSession[int64](typ, integerCodec, opt)
	case Float:
		return newSession[float64](typ, floatCodec, opt)
	case String:
		return newSession[string](typ, stringCodec, opt)
	default:
	}
	return nil, ErrUnknownElementType
}

var _ observability.TreeSizer = (*session[int64])(nil)

type session[K infra.OrderedKey] struct {
	lock        sync.Mutex
	typ         ElementType
	codec       keyCodec[K]
	cmp         infra.OrderedKeyComparator[K]
	tree        tree.BSTree[K]
	highlighter highlight.Highlighter
	logger      xlog.XLogger
	stats       *observability.TreeStats
	// Shape cache for the metric callbacks, refreshed after each mutation.
	count  atomic.Int64
	height atomic.Int64
	closed bool
}

func newSession[K infra.OrderedKey](typ ElementType, codec keyCodec[K], opt *options) (*session[K], error) {
	s := &session[K]{
		typ:    typ,
		codec:  codec,
		cmp:    lo.Ternary(opt.desc, infra.DescOrderedKeyComparator[K](), infra.AscOrderedKeyComparator[K]()),
		logger: opt.getLogger().Named("session"),
	}
	s.tree = tree.NewBST[K](opt.width, opt.height, tree.WithBSTComparator[K](s.cmp))
	if opt.statsEnabled {
		s.stats = observability.NewTreeStats(opt.statsName, s, opt.statsOpts...)
	}
	hl, err := highlight.NewHighlighter(
		highlight.WithHighlightDuration(opt.highlight),
		highlight.WithHighlightRedraw(opt.redraw),
		highlight.WithHighlightLogger(s.logger.Named("highlight")),
		highlight.WithHighlightStats(s.stats),
	)
	if err != nil {
		return nil, err
	}
	s.highlighter = hl
	s.refreshShape()
	s.logger.Debug("session created",
		zap.String("type", typ.String()),
		zap.Int("width", opt.width),
		zap.Int("height", opt.height),
		zap.Bool("desc", opt.desc),
	)
	return s, nil
}

func (s *session[K]) ElementType() ElementType {
	return s.typ
}

func (s *session[K]) Len() int64 {
	return s.count.Load()
}

func (s *session[K]) Height() int {
	return int(s.height.Load())
}

func (s *session[K]) refreshShape() {
	s.count.Store(s.tree.Len())
	s.height.Store(int64(s.tree.Height()))
}

func (s *session[K]) parse(text string) (K, error) {
	var zero K
	text = strings.TrimSpace(text)
	if len(text) == 0 {
		return zero, ErrEmptyInput
	}
	key, err := s.codec.parse(text)
	if err != nil {
		return zero, fmt.Errorf("%w, %s expected, got %q: %w", ErrInvalidInput, s.typ, text, err)
	}
	return key, nil
}

func (s *session[K]) done(op string, key string, err error) error {
	s.stats.RecordOp(context.Background(), op, err)
	if err != nil {
		s.logger.Warn(op+" failed", zap.String("input", key), zap.String("error", err.Error()))
		return err
	}
	s.logger.Debug(op, zap.String("key", key), zap.Int64("len", s.Len()), zap.Int("height", s.Height()))
	return nil
}

func (s *session[K]) Insert(text string) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.closed {
		return ErrSessionClosed
	}

	key, err := s.parse(text)
	if err != nil {
		return s.done("insert", text, err)
	}
	s.highlighter.CancelAll()
	s.tree.Insert(key)
	s.refreshShape()
	return s.done("insert", s.codec.format(key), nil)
}

func (s *session[K]) Search(text string) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.closed {
		return ErrSessionClosed
	}

	key, err := s.parse(text)
	if err != nil {
		return s.done("search", text, err)
	}
	node, err := s.tree.Search(key)
	if err != nil {
		return s.done("search", s.codec.format(key), err)
	}
	if err = s.highlighter.Highlight(node); err != nil {
		// The key was found, only its highlight is lost.
		s.logger.Error(err, "highlight failed", zap.String("key", s.codec.format(key)))
	}
	return s.done("search", s.codec.format(key), nil)
}

func (s *session[K]) Remove(text string) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.closed {
		return ErrSessionClosed
	}

	key, err := s.parse(text)
	if err != nil {
		return s.done("remove", text, err)
	}
	if _, err = s.tree.Search(key); err != nil {
		return s.done("remove", s.codec.format(key), err)
	}
	s.highlighter.CancelAll()
	err = s.tree.Remove(key)
	s.refreshShape()
	return s.done("remove", s.codec.format(key), err)
}

func (s *session[K]) Resize(width, height int) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w %dx%d", ErrInvalidDisplayArea, width, height)
	}
	s.tree.SetDisplayArea(width, height)
	s.logger.Debug("resize", zap.Int("width", width), zap.Int("height", height))
	return nil
}

// layout runs both coordinate passes, the lock must be held.
func (s *session[K]) layout() error {
	if err := s.tree.AssignRowCoordinates(); err != nil {
		return err
	}
	s.tree.AssignColumnCoordinates()
	return nil
}

func (s *session[K]) Layout() (Snapshot, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	width, height := s.tree.DisplayArea()
	snapshot := Snapshot{
		Type:       s.typ.String(),
		Width:      width,
		Height:     height,
		TreeHeight: s.tree.Height(),
		Count:      s.tree.Len(),
		Nodes:      []NodeView{},
	}
	if err := s.layout(); err != nil {
		if errors.Is(err, tree.ErrBSTNoElements) {
			// Nothing to draw.
			return snapshot, nil
		}
		return Snapshot{}, err
	}

	nodes := make([]tree.BSTNode[K], 0, snapshot.Count)
	depths := make([]int, 0, snapshot.Count)
	s.tree.Walk(func(depth int, node tree.BSTNode[K]) bool {
		nodes = append(nodes, node)
		depths = append(depths, depth)
		return true
	})
	indexes := make(map[tree.BSTNode[K]]int, len(nodes))
	for i, node := range nodes {
		indexes[node] = i
	}
	indexOf := func(node tree.BSTNode[K]) int {
		if node == nil {
			return -1
		}
		return indexes[node]
	}
	snapshot.Nodes = lo.Map(nodes, func(node tree.BSTNode[K], i int) NodeView {
		return NodeView{
			Key:    s.codec.format(node.Key()),
			X:      node.X(),
			Y:      node.Y(),
			Depth:  depths[i],
			Active: node.IsActive(),
			Left:   indexOf(node.Left()),
			Right:  indexOf(node.Right()),
		}
	})
	return snapshot, nil
}

func (s *session[K]) Verify() error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.tree.Len() == 0 {
		return nil
	}
	if err := s.layout(); err != nil {
		return err
	}
	return multierr.Combine(
		tree.BSTOrderViolationValidate[K](s.tree, s.cmp),
		tree.RowSpacingValidate[K](s.tree),
		tree.ColumnOverlapValidate[K](s.tree),
	)
}

func (s *session[K]) Close() error {
	s.lock.Lock()
	if s.closed {
		s.lock.Unlock()
		return nil
	}
	s.closed = true
	s.lock.Unlock()

	// Outside the lock, a pending redraw may still be waiting for it.
	s.highlighter.Shutdown()

	s.lock.Lock()
	defer s.lock.Unlock()
	s.tree.Release()
	s.refreshShape()
	s.logger.Debug("session closed")
	return nil
}
