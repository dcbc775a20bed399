// Package log provides structured logging for the command line tools.
//
// Two logger variants are available:
//   - Logger: non-sugared zap.Logger for progress reporting, with typed fields.
//   - SugaredLogger: printf-style logging for CLI messages.
package log

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	vidgen "github.com/Crazy-Fox-2/TI-Calc-Video-Generator"
)

// Format selects the encoder of a Logger.
type Format string

const (
	FormatJSON    Format = "json"
	FormatConsole Format = "console"
)

type Logger struct {
	zap    *zap.Logger
	level  zapcore.Level
	format Format
}

type SugaredLogger struct {
	sugar *zap.SugaredLogger
}

// NewLogger creates a logger writing to os.Stderr. `level` is a zap level name
// such as "debug" or "warn".
func NewLogger(level string, format Format) (*Logger, error) {
	parsed, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, vidgen.ErrInvalidArgument.WithMessage("bad log level").Wrap(err)
	}
	return newLoggerWithWriter(parsed, format, os.Stderr), nil
}

// NewNop returns a logger that discards everything.
func NewNop() *Logger {
	return &Logger{zap: zap.NewNop(), level: zapcore.InfoLevel, format: FormatConsole}
}

// WithOutput returns a new logger with a different output writer.
func (l *Logger) WithOutput(w io.Writer) *Logger {
	return newLoggerWithWriter(l.level, l.format, w)
}

func newLoggerWithWriter(level zapcore.Level, format Format, w io.Writer) *Logger {
	encoderConfig := zapcore.EncoderConfig{
		TimeKey:     "timestamp",
		LevelKey:    "level",
		MessageKey:  "message",
		EncodeTime:  zapcore.RFC3339NanoTimeEncoder,
		EncodeLevel: zapcore.LowercaseLevelEncoder,
	}

	var encoder zapcore.Encoder
	if format == FormatJSON {
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	} else {
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(w), level)
	return &Logger{zap: zap.New(core), level: level, format: format}
}

func (l *Logger) Debug(message string, fields ...zap.Field) {
	l.zap.Debug(message, fields...)
}

func (l *Logger) Info(message string, fields ...zap.Field) {
	l.zap.Info(message, fields...)
}

func (l *Logger) Warn(message string, fields ...zap.Field) {
	l.zap.Warn(message, fields...)
}

func (l *Logger) Error(message string, fields ...zap.Field) {
	l.zap.Error(message, fields...)
}

// Sync flushes buffered entries.
func (l *Logger) Sync() error {
	return l.zap.Sync()
}

// Sugar returns a SugaredLogger for printf-style logging.
func (l *Logger) Sugar() *SugaredLogger {
	return &SugaredLogger{sugar: l.zap.Sugar()}
}

func (s *SugaredLogger) Debugf(template string, args ...any) {
	s.sugar.Debugf(template, args...)
}

func (s *SugaredLogger) Infof(template string, args ...any) {
	s.sugar.Infof(template, args...)
}

func (s *SugaredLogger) Warnf(template string, args ...any) {
	s.sugar.Warnf(template, args...)
}

func (s *SugaredLogger) Errorf(template string, args ...any) {
	s.sugar.Errorf(template, args...)
}

// With returns a SugaredLogger with additional context fields.
func (s *SugaredLogger) With(args ...any) *SugaredLogger {
	return &SugaredLogger{sugar: s.sugar.With(args...)}
}
