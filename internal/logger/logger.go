package logger

import (
	"github.com/flexprice/notebilling/internal/config"
	"github.com/flexprice/notebilling/internal/types"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the structured logger handed to every component through fx
type Logger struct {
	*zap.SugaredLogger
}

var levels = map[types.LogLevel]zapcore.Level{
	types.LogLevelDebug: zapcore.DebugLevel,
	types.LogLevelInfo:  zapcore.InfoLevel,
	types.LogLevelWarn:  zapcore.WarnLevel,
	types.LogLevelError: zapcore.ErrorLevel,
}

// NewLogger builds a JSON logger at the configured level; unknown levels log at info
func NewLogger(cfg *config.Configuration) (*Logger, error) {
	zc := zap.NewProductionConfig()
	zc.EncoderConfig.TimeKey = "timestamp"
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	level := zapcore.InfoLevel
	if cfg != nil {
		if l, ok := levels[cfg.Logging.Level]; ok {
			level = l
		}
	}
	zc.Level = zap.NewAtomicLevelAt(level)

	z, err := zc.Build()
	if err != nil {
		return nil, err
	}
	return &Logger{SugaredLogger: z.Sugar()}, nil
}

func NewNopLogger() *Logger {
	return &Logger{SugaredLogger: zap.NewNop().Sugar()}
}

// With returns a child logger that adds the given key value pairs to every entry
func (l *Logger) With(args ...interface{}) *Logger {
	return &Logger{SugaredLogger: l.SugaredLogger.With(args...)}
}
