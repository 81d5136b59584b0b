package xlog

import (
	"testing"
	"time"

	antsv2 "github.com/panjf2000/ants/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAntsXLogger_Printf(t *testing.T) {
	var logger *AntsXLogger
	logger.Printf("test %d", 123)

	parent, w := newTestXLogger(t, WithXLoggerLevel(LogLevelDebug))
	logger = NewAntsXLogger(parent)
	logger.Printf("worker exits from panic: %s", "boom")
	require.NoError(t, parent.Sync())

	lines := w.lines(t)
	require.Len(t, lines, 1)
	assert.Equal(t, "ERROR", lines[0]["lvl"])
	assert.Equal(t, "Ants", lines[0]["component"])
	assert.Equal(t, "worker exits from panic: boom", lines[0]["msg"])
	assert.NotContains(t, lines[0], "callAt")
}

func TestAntsXLogger_PoolPanic(t *testing.T) {
	parent, w := newTestXLogger(t, WithXLoggerLevel(LogLevelDebug))
	p, err := antsv2.NewPool(2, antsv2.WithLogger(NewAntsXLogger(parent)))
	require.NoError(t, err)
	defer p.Release()

	require.NoError(t, p.Submit(func() {
		panic("xlogger panic in ants pool")
	}))
	require.Eventually(t, func() bool {
		return len(w.lines(t)) > 0
	}, time.Second, 10*time.Millisecond)
}
