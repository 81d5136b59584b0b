package highlight

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/benz9527/xbst/observability"
	"github.com/benz9527/xbst/xlog"
)

type HighlightErr string

func (err HighlightErr) Error() string {
	return string(err)
}

const (
	ErrHighlighterClosed   HighlightErr = "[highlight] highlighter closed"
	ErrHighlighterOverload HighlightErr = "[highlight] too many pending highlights"
)

// Flag is the presentation state toggled by a highlight. Tree nodes
// implement it with an atomic bool so a renderer may read it while a
// highlight task clears it.
type Flag interface {
	IsActive() bool
	SetActive(active bool)
}

// Highlighter marks a flag active for a fixed duration, then clears it
// and asks for a redraw.
type Highlighter interface {
	// Highlight sets the flag active and schedules its clearing.
	// Highlighting a pending flag again restarts its timer.
	Highlight(target Flag) error
	// CancelAll clears every pending flag before returning. No redraw
	// is requested for cancelled highlights.
	CancelAll()
	Pending() int
	// Shutdown cancels the pending highlights and waits for the workers.
	// It must not be called while holding a lock the redraw callback takes.
	Shutdown()
}

var _ Highlighter = (*highlighter)(nil)

type highlightTask struct {
	cancel context.CancelFunc
}

type highlighter struct {
	lock     sync.Mutex
	wg       sync.WaitGroup
	pool     *ants.Pool
	tasks    map[Flag]*highlightTask
	duration time.Duration
	redraw   func()
	logger   xlog.XLogger
	stats    *observability.TreeStats
	closed   bool
}

func NewHighlighter(opts ...HighlighterOption) (Highlighter, error) {
	opt := &highlighterOption{}
	for _, o := range opts {
		if o != nil {
			o(opt)
		}
	}
	if err := opt.Validate(); err != nil {
		return nil, err
	}

	h := &highlighter{
		tasks:    make(map[Flag]*highlightTask, 8),
		duration: opt.getDuration(),
		redraw:   opt.redraw,
		logger:   opt.getLogger(),
		stats:    opt.stats,
	}
	p, err := ants.NewPool(
		opt.getWorkerPoolSize(),
		ants.WithNonblocking(true),
		ants.WithLogger(xlog.NewAntsXLogger(h.logger)),
	)
	if err != nil {
		return nil, err
	}
	h.pool = p
	return h, nil
}

func (h *highlighter) Highlight(target Flag) error {
	if target == nil {
		return nil
	}

	h.lock.Lock()
	defer h.lock.Unlock()
	if h.closed {
		return ErrHighlighterClosed
	}

	prev, restarted := h.tasks[target]
	if restarted {
		prev.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	task := &highlightTask{cancel: cancel}
	h.tasks[target] = task
	target.SetActive(true)

	h.wg.Add(1)
	if err := h.pool.Submit(func() {
		defer h.wg.Done()
		h.expire(ctx, target, task)
	}); err != nil {
		h.wg.Done()
		cancel()
		delete(h.tasks, target)
		target.SetActive(false)
		if restarted {
			h.stats.HighlightFinished(context.Background())
		}
		h.logger.Error(err, "highlight task rejected", zap.Int("pending", len(h.tasks)))
		if errors.Is(err, ants.ErrPoolClosed) {
			return ErrHighlighterClosed
		}
		return ErrHighlighterOverload
	}
	if !restarted {
		h.stats.HighlightStarted(context.Background())
	}
	return nil
}

func (h *highlighter) expire(ctx context.Context, target Flag, task *highlightTask) {
	timer := time.NewTimer(h.duration)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return
	case <-timer.C:
	}

	h.lock.Lock()
	if cur, ok := h.tasks[target]; !ok || cur != task {
		// Restarted or cancelled after the timer fired.
		h.lock.Unlock()
		return
	}
	delete(h.tasks, target)
	task.cancel()
	target.SetActive(false)
	h.lock.Unlock()

	h.stats.HighlightFinished(context.Background())
	if h.redraw != nil {
		h.redraw()
	}
}

func (h *highlighter) CancelAll() {
	h.lock.Lock()
	defer h.lock.Unlock()
	h.cancelAllLocked()
}

func (h *highlighter) cancelAllLocked() {
	for target, task := range h.tasks {
		task.cancel()
		target.SetActive(false)
		delete(h.tasks, target)
		h.stats.HighlightFinished(context.Background())
	}
}

func (h *highlighter) Pending() int {
	h.lock.Lock()
	defer h.lock.Unlock()
	return len(h.tasks)
}

func (h *highlighter) Shutdown() {
	h.lock.Lock()
	if h.closed {
		h.lock.Unlock()
		return
	}
	h.closed = true
	h.cancelAllLocked()
	h.lock.Unlock()

	h.wg.Wait()
	h.pool.Release()
	h.logger.Debug("highlighter shutdown")
}
