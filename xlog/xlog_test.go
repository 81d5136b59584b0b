package xlog

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type memWriter struct {
	lock sync.Mutex
	buf  bytes.Buffer
}

func (w *memWriter) Write(p []byte) (int, error) {
	w.lock.Lock()
	defer w.lock.Unlock()
	return w.buf.Write(p)
}

func (w *memWriter) lines(t *testing.T) []map[string]any {
	w.lock.Lock()
	defer w.lock.Unlock()
	res := make([]map[string]any, 0, 8)
	sc := bufio.NewScanner(bytes.NewReader(w.buf.Bytes()))
	for sc.Scan() {
		if len(sc.Bytes()) == 0 {
			continue
		}
		m := map[string]any{}
		require.NoError(t, json.Unmarshal(sc.Bytes(), &m))
		res = append(res, m)
	}
	return res
}

func withMemWriter() XLoggerOption {
	return func(cfg *loggerCfg) error {
		w := testMemAsOut
		cfg.writerType = &w
		return nil
	}
}

func newTestXLogger(t *testing.T, opts ...XLoggerOption) (XLogger, *memWriter) {
	w := &memWriter{}
	setOutWriterByType(testMemAsOut, zapcore.AddSync(w))
	opts = append([]XLoggerOption{
		withMemWriter(),
		WithXLoggerEncoder(JSON),
		WithXLoggerLevelEncoder(zapcore.CapitalLevelEncoder),
	}, opts...)
	return NewXLogger(opts...), w
}

func TestXLogger_DynamicLevel(t *testing.T) {
	logger, w := newTestXLogger(t, WithXLoggerLevel(LogLevelInfo))
	logger.Debug("dropped")
	logger.Info("kept", zap.Int("n", 1))
	logger.IncreaseLogLevel(zapcore.DebugLevel)
	logger.Debug("kept too")
	logger.Error(errors.New("boom"), "failed")
	require.NoError(t, logger.Sync())

	lines := w.lines(t)
	require.Len(t, lines, 3)
	assert.Equal(t, "kept", lines[0]["msg"])
	assert.Equal(t, "INFO", lines[0]["lvl"])
	assert.Equal(t, float64(1), lines[0]["n"])
	assert.Equal(t, "kept too", lines[1]["msg"])
	assert.Equal(t, "DEBUG", lines[1]["lvl"])
	assert.Equal(t, "boom", lines[2]["error"])
	assert.Equal(t, "debug", logger.Level())
}

func TestXLogger_NamedSharesLevel(t *testing.T) {
	logger, w := newTestXLogger(t, WithXLoggerLevel(LogLevelDebug))
	child := logger.Named("session")
	logger.IncreaseLogLevel(zapcore.WarnLevel)
	child.Info("dropped")
	child.Warn("kept")
	require.NoError(t, logger.Sync())

	lines := w.lines(t)
	require.Len(t, lines, 1)
	assert.Equal(t, "session", lines[0]["component"])
	assert.Contains(t, lines[0], "callAt")
}

func TestXLogger_ContextFields(t *testing.T) {
	logger, w := newTestXLogger(t,
		WithXLoggerLevel(LogLevelDebug),
		WithXLoggerContextFieldExtract("seq", "sequence"),
		WithXLoggerContextFieldExtract("cmd"),
		WithXLoggerContextFieldExtract("sid", ContextKeyMapToOmitempty),
	)
	ctx := ContextWithField(context.Background(), "seq", 7)
	logger.InfoContext(ctx, "first")
	ctx = ContextWithField(ctx, "sid", "abc")
	logger.ErrorContext(ctx, errors.New("bad"), "second")
	require.NoError(t, logger.Sync())

	lines := w.lines(t)
	require.Len(t, lines, 2)
	assert.Equal(t, float64(7), lines[0]["sequence"])
	assert.Equal(t, "nil", lines[0]["cmd"])
	assert.NotContains(t, lines[0], "sid")
	assert.Equal(t, "abc", lines[1]["sid"])
	assert.Equal(t, "bad", lines[1]["error"])
}

func TestParseLogLevel(t *testing.T) {
	testcases := []struct {
		in       string
		expected logLevel
		wantErr  bool
	}{
		{"", LogLevelDebug, false},
		{"debug", LogLevelDebug, false},
		{" Info ", LogLevelInfo, false},
		{"WARN", LogLevelWarn, false},
		{"error", LogLevelError, false},
		{"trace", LogLevelDebug, true},
	}
	for _, tc := range testcases {
		t.Run(tc.in, func(tt *testing.T) {
			lvl, err := ParseLogLevel(tc.in)
			if tc.wantErr {
				require.Error(tt, err)
				return
			}
			require.NoError(tt, err)
			require.Equal(tt, tc.expected, lvl)
		})
	}
	require.Equal(t, zapcore.DebugLevel, getLogLevelOrDefault("nope"))
	require.Equal(t, zapcore.WarnLevel, getLogLevelOrDefault("warn"))
}

func TestParseLogEncoder(t *testing.T) {
	enc, err := ParseLogEncoder("")
	require.NoError(t, err)
	require.Equal(t, JSON, enc)
	enc, err = ParseLogEncoder("Text")
	require.NoError(t, err)
	require.Equal(t, PlainText, enc)
	_, err = ParseLogEncoder("yaml")
	require.Error(t, err)
}

func TestNewXLogger_BadOption(t *testing.T) {
	require.Panics(t, func() {
		NewXLogger(WithXLoggerEncoder(_encMax))
	})
}

func TestNopXLogger(t *testing.T) {
	logger := NewNopXLogger()
	require.NotPanics(t, func() {
		logger.Info("x")
		logger.Error(errors.New("x"), "x")
		logger.Named("y").Logf(zapcore.ErrorLevel, "%d", 1)
		NewAntsXLogger(logger).Printf("%s", "x")
	})
}

func TestWrapCore(t *testing.T) {
	_, err := WrapCore(nil, componentCoreEncoderCfg)
	require.Error(t, err)

	core := newConsoleCore(zap.NewAtomicLevelAt(zapcore.InfoLevel), JSON, StdErr, nil, nil)
	_, err = WrapCore(core, nil)
	require.Error(t, err)

	wrapped, err := WrapCore(core, componentCoreEncoderCfg)
	require.NoError(t, err)
	require.False(t, wrapped.Enabled(zapcore.DebugLevel))
	require.True(t, wrapped.Enabled(zapcore.ErrorLevel))

	require.Nil(t, newConsoleCore(zap.NewAtomicLevel(), JSON, _writerMax, nil, nil))
}
