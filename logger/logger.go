// Package logger provides zerolog-based logging setup with rotating file
// output, a debug-mode file redirect, and a named-logger registry that can
// force selected component loggers to WARN or ERROR.
package logger

import (
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// FieldComponent is the structured field naming the emitting component.
const FieldComponent = "component"

// Logger wraps zerolog.Logger with component context.
type Logger struct {
	logger zerolog.Logger
}

// Setup builds the root logger from config and installs it as the global
// logger. File output rotates at MaxSizeMB keeping MaxBackups files; when
// Debug is set the file lands under "<filename>.debug/" instead of LogPath.
func Setup(cfg Config) (*Logger, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}

	logPath := cfg.LogPath
	if cfg.Debug {
		logPath = cfg.Filename + ".debug"
	}
	if err := os.MkdirAll(logPath, 0o755); err != nil {
		return nil, err
	}

	writers := []io.Writer{&lumberjack.Logger{
		Filename:   filepath.Join(logPath, cfg.Filename),
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
	}}
	if cfg.Console {
		writers = append(writers, zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: "2006-01-02 15:04:05",
			NoColor:    cfg.NoColor,
		})
	}

	zl := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(level).
		With().Timestamp().Caller().Logger()

	l := &Logger{logger: zl}
	SetGlobalLogger(l)

	for _, name := range cfg.WarnLoggers {
		SetMinLevel(name, zerolog.WarnLevel)
	}
	for _, name := range cfg.ErrorLoggers {
		SetMinLevel(name, zerolog.ErrorLevel)
	}

	return l, nil
}

// NewDefault creates a console-only logger at info level.
func NewDefault() *Logger {
	zl := zerolog.New(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: "2006-01-02 15:04:05",
	}).Level(zerolog.InfoLevel).With().Timestamp().Logger()
	return &Logger{logger: zl}
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{logger: zerolog.Nop()}
}

// WithComponent returns a logger tagged with a component name, honoring any
// level override registered for that name.
func (l *Logger) WithComponent(name string) *Logger {
	zl := l.logger.With().Str(FieldComponent, name).Logger()
	if lvl, ok := minLevelFor(name); ok {
		zl = zl.Level(lvl)
	}
	return &Logger{logger: zl}
}

// WithFields returns a logger with additional fields.
func (l *Logger) WithFields(fields map[string]any) *Logger {
	zc := l.logger.With()
	for k, v := range fields {
		zc = zc.Interface(k, v)
	}
	return &Logger{logger: zc.Logger()}
}

// WithError returns a logger with an error field.
func (l *Logger) WithError(err error) *Logger {
	return &Logger{logger: l.logger.With().Err(err).Logger()}
}

// GetLogger returns the underlying zerolog.Logger.
func (l *Logger) GetLogger() zerolog.Logger {
	return l.logger
}

// Debug logs a debug message.
func (l *Logger) Debug(msg string, fields ...map[string]any) {
	event := l.logger.Debug()
	addFields(event, fields...)
	event.Msg(msg)
}

// Info logs an info message.
func (l *Logger) Info(msg string, fields ...map[string]any) {
	event := l.logger.Info()
	addFields(event, fields...)
	event.Msg(msg)
}

// Warn logs a warning message.
func (l *Logger) Warn(msg string, fields ...map[string]any) {
	event := l.logger.Warn()
	addFields(event, fields...)
	event.Msg(msg)
}

// Error logs an error message.
func (l *Logger) Error(msg string, fields ...map[string]any) {
	event := l.logger.Error()
	addFields(event, fields...)
	event.Msg(msg)
}

// Fatal logs a fatal message and exits.
func (l *Logger) Fatal(msg string, fields ...map[string]any) {
	event := l.logger.Fatal()
	addFields(event, fields...)
	event.Msg(msg)
}

func addFields(event *zerolog.Event, fields ...map[string]any) {
	for _, fm := range fields {
		for k, v := range fm {
			event.Interface(k, v)
		}
	}
}
