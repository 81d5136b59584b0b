package xlog

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// AntsXLogger adapts the XLogger to the ants pool logger.
// ants only prints through it on worker panics and internal failures.
type AntsXLogger struct {
	logger XLogger
}

func (l *AntsXLogger) Printf(format string, args ...any) {
	if l == nil || l.logger == nil {
		return
	}
	l.logger.Logf(zapcore.ErrorLevel, format, args...)
}

func NewAntsXLogger(logger XLogger) *AntsXLogger {
	if logger == nil {
		return &AntsXLogger{}
	}
	base, ok := logger.(*xLogger)
	if !ok {
		return &AntsXLogger{logger: logger.Named("Ants")}
	}

	l := &xLogger{
		ctxFields:           base.ctxFields,
		dynamicLevelEnabler: base.dynamicLevelEnabler,
		writer:              base.writer,
		encoder:             base.encoder,
	}
	l.logger.Store(base.
		zap().
		Named("Ants").
		WithOptions(zap.WrapCore(func(core zapcore.Core) zapcore.Core {
			cc, ok := core.(xLogCore)
			if !ok {
				// Tee of several cores or the nop core, keep it as is.
				return core
			}
			wrapped, err := WrapCore(cc, componentCoreEncoderCfg)
			if err != nil {
				panic(err)
			}
			return wrapped
		})),
	)
	return &AntsXLogger{
		logger: l,
	}
}
