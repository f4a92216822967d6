package logger

import (
	"sync"

	"github.com/rs/zerolog"
)

// registry is the global named-logger registry.
var registry = &loggerRegistry{
	loggers:   make(map[string]*Logger),
	minLevels: make(map[string]zerolog.Level),
}

type loggerRegistry struct {
	mu        sync.RWMutex
	loggers   map[string]*Logger
	minLevels map[string]zerolog.Level
}

var (
	globalMu     sync.RWMutex
	globalLogger *Logger
)

// SetGlobalLogger installs the global logger instance.
func SetGlobalLogger(l *Logger) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalLogger = l
}

// GetGlobalLogger returns the global logger, creating a default one if needed.
func GetGlobalLogger() *Logger {
	globalMu.RLock()
	l := globalLogger
	globalMu.RUnlock()
	if l != nil {
		return l
	}
	globalMu.Lock()
	defer globalMu.Unlock()
	if globalLogger == nil {
		globalLogger = NewDefault()
	}
	return globalLogger
}

// Register stores a named logger in the registry. A registered level
// override for the name is applied immediately.
func Register(name string, l *Logger) {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	if lvl, ok := registry.minLevels[name]; ok {
		l = &Logger{logger: l.logger.Level(lvl)}
	}
	registry.loggers[name] = l
}

// Get retrieves a named logger. Unregistered names return the global logger
// tagged with the requested component name (overrides still apply).
func Get(name string) *Logger {
	registry.mu.RLock()
	l, ok := registry.loggers[name]
	registry.mu.RUnlock()
	if ok {
		return l
	}
	return GetGlobalLogger().WithComponent(name)
}

// SetMinLevel forces the named logger to emit at lvl or above, regardless of
// the global level. Third-party or chatty components are the usual targets.
func SetMinLevel(name string, lvl zerolog.Level) {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	registry.minLevels[name] = lvl
	if l, ok := registry.loggers[name]; ok {
		registry.loggers[name] = &Logger{logger: l.logger.Level(lvl)}
	}
}

func minLevelFor(name string) (zerolog.Level, bool) {
	registry.mu.RLock()
	defer registry.mu.RUnlock()
	lvl, ok := registry.minLevels[name]
	return lvl, ok
}
