// Package logging provides config-driven categorized logging for storyline.
// Logs are written through zap to .storyline/logs/ (the interactive shell owns
// stdout) or to stderr for one-shot CLI commands.
// When debug mode is off and stderr output is not requested, every logger is a no-op.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Category represents a log category/system
type Category string

const (
	CategoryBoot      Category = "boot"      // Startup, config load
	CategorySession   Category = "session"   // Session store reads and writes
	CategoryStore     Category = "store"     // SQLite client state
	CategoryAPI       Category = "api"       // Remote Story API calls
	CategoryRouting   Category = "routing"   // Route resolution, navigation gating
	CategoryShell     Category = "shell"     // Render cycle, generations, menu
	CategoryPages     Category = "pages"     // Page lifecycle
	CategoryPresenter Category = "presenter" // Presenter verbs
	CategoryConfig    Category = "config"    // Config reload, watcher
	CategoryCLI       Category = "cli"       // Non-interactive commands
)

// Options mirrors the relevant parts of config.LoggingConfig
// to avoid circular imports.
type Options struct {
	DebugMode  bool
	Level      string          // debug, info, warn, error
	Format     string          // json, text
	Categories map[string]bool // nil = all enabled
	Dir        string          // log directory when writing to file
	Stderr     bool            // write to stderr instead of a file
}

// Logger is a category-scoped printf-style logger.
type Logger struct {
	category Category
	sugar    *zap.SugaredLogger
}

var (
	mu      sync.RWMutex
	base    = zap.NewNop()
	opts    Options
	loggers = make(map[Category]*Logger)
)

// Initialize builds the zap backend from opts. Safe to call again on config reload.
func Initialize(o Options) error {
	l, err := build(o)
	if err != nil {
		return err
	}

	UseLogger(l, o)

	Get(CategoryBoot).Debug("logging initialized: level=%s format=%s dir=%s stderr=%v", o.Level, o.Format, o.Dir, o.Stderr)
	return nil
}

func build(o Options) (*zap.Logger, error) {
	if !o.DebugMode && !o.Stderr {
		return zap.NewNop(), nil
	}

	level := zapcore.InfoLevel
	if o.Level != "" {
		parsed, err := zapcore.ParseLevel(o.Level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", o.Level, err)
		}
		level = parsed
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.Sampling = nil
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if o.Format != "json" {
		cfg.Encoding = "console"
	}

	if o.Stderr {
		cfg.OutputPaths = []string{"stderr"}
	} else {
		if o.Dir == "" {
			return nil, fmt.Errorf("log directory required when debug mode is enabled")
		}
		if err := os.MkdirAll(o.Dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create logs directory: %w", err)
		}
		date := time.Now().Format("2006-01-02")
		cfg.OutputPaths = []string{filepath.Join(o.Dir, date+"_storyline.log")}
	}
	cfg.ErrorOutputPaths = []string{"stderr"}

	return cfg.Build()
}

// UseLogger swaps in an already built zap logger and flushes the previous
// one. Category filtering still applies.
func UseLogger(l *zap.Logger, o Options) {
	mu.Lock()
	old := base
	base = l
	opts = o
	loggers = make(map[Category]*Logger)
	mu.Unlock()

	_ = old.Sync()
}

// IsCategoryEnabled returns whether a specific category is enabled
func IsCategoryEnabled(category Category) bool {
	mu.RLock()
	defer mu.RUnlock()
	return categoryEnabled(category)
}

func categoryEnabled(category Category) bool {
	if !opts.DebugMode && !opts.Stderr {
		return false
	}
	if opts.Categories == nil {
		return true
	}
	enabled, exists := opts.Categories[string(category)]
	if !exists {
		return true
	}
	return enabled
}

// Get returns (or creates) a logger for the given category.
// Returns a no-op logger if the category is disabled.
func Get(category Category) *Logger {
	mu.RLock()
	if l, ok := loggers[category]; ok {
		mu.RUnlock()
		return l
	}
	mu.RUnlock()

	mu.Lock()
	defer mu.Unlock()

	if l, ok := loggers[category]; ok {
		return l
	}

	l := &Logger{category: category}
	if categoryEnabled(category) {
		l.sugar = base.Named(string(category)).Sugar()
	} else {
		l.sugar = zap.NewNop().Sugar()
	}
	loggers[category] = l
	return l
}

// With returns a child logger carrying the given key/value pairs.
func (l *Logger) With(keysAndValues ...interface{}) *Logger {
	return &Logger{category: l.category, sugar: l.sugar.With(keysAndValues...)}
}

func (l *Logger) Debug(format string, args ...interface{}) { l.sugar.Debugf(format, args...) }
func (l *Logger) Info(format string, args ...interface{})  { l.sugar.Infof(format, args...) }
func (l *Logger) Warn(format string, args ...interface{})  { l.sugar.Warnf(format, args...) }
func (l *Logger) Error(format string, args ...interface{}) { l.sugar.Errorf(format, args...) }

// Sync flushes buffered entries (call at shutdown)
func Sync() {
	mu.RLock()
	defer mu.RUnlock()
	_ = base.Sync()
}

// WithRequestID creates a request-scoped logger for correlating a remote call.
func WithRequestID(category Category, requestID string) *Logger {
	return Get(category).With("req", requestID)
}

// =============================================================================
// CONVENIENCE FUNCTIONS - Quick logging without getting a logger first
// =============================================================================

func Boot(format string, args ...interface{})      { Get(CategoryBoot).Info(format, args...) }
func BootWarn(format string, args ...interface{})  { Get(CategoryBoot).Warn(format, args...) }
func Session(format string, args ...interface{})   { Get(CategorySession).Info(format, args...) }
func SessionDebug(format string, args ...interface{}) {
	Get(CategorySession).Debug(format, args...)
}
func SessionError(format string, args ...interface{}) {
	Get(CategorySession).Error(format, args...)
}
func Store(format string, args ...interface{})      { Get(CategoryStore).Info(format, args...) }
func StoreDebug(format string, args ...interface{}) { Get(CategoryStore).Debug(format, args...) }
func StoreError(format string, args ...interface{}) { Get(CategoryStore).Error(format, args...) }
func API(format string, args ...interface{})      { Get(CategoryAPI).Info(format, args...) }
func APIDebug(format string, args ...interface{}) { Get(CategoryAPI).Debug(format, args...) }
func APIWarn(format string, args ...interface{})  { Get(CategoryAPI).Warn(format, args...) }
func Routing(format string, args ...interface{})  { Get(CategoryRouting).Info(format, args...) }
func RoutingDebug(format string, args ...interface{}) {
	Get(CategoryRouting).Debug(format, args...)
}
func Shell(format string, args ...interface{})      { Get(CategoryShell).Info(format, args...) }
func ShellDebug(format string, args ...interface{}) { Get(CategoryShell).Debug(format, args...) }
func Pages(format string, args ...interface{})      { Get(CategoryPages).Info(format, args...) }
func PagesDebug(format string, args ...interface{}) { Get(CategoryPages).Debug(format, args...) }
func PresenterDebug(format string, args ...interface{}) {
	Get(CategoryPresenter).Debug(format, args...)
}
func Config(format string, args ...interface{})     { Get(CategoryConfig).Info(format, args...) }
func ConfigWarn(format string, args ...interface{}) { Get(CategoryConfig).Warn(format, args...) }
func CLI(format string, args ...interface{})        { Get(CategoryCLI).Info(format, args...) }

// =============================================================================
// TIMING HELPERS
// =============================================================================

// Timer helps measure operation duration
type Timer struct {
	category Category
	op       string
	start    time.Time
}

// StartTimer begins timing an operation
func StartTimer(category Category, operation string) *Timer {
	return &Timer{category: category, op: operation, start: time.Now()}
}

// Stop ends the timer and logs the duration
func (t *Timer) Stop() time.Duration {
	elapsed := time.Since(t.start)
	Get(t.category).Debug("%s completed in %v", t.op, elapsed)
	return elapsed
}

// StopWithThreshold logs a warning if duration exceeds threshold
func (t *Timer) StopWithThreshold(threshold time.Duration) time.Duration {
	elapsed := time.Since(t.start)
	if elapsed > threshold {
		Get(t.category).Warn("%s took %v (threshold: %v)", t.op, elapsed, threshold)
	} else {
		Get(t.category).Debug("%s completed in %v", t.op, elapsed)
	}
	return elapsed
}
