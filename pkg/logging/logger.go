// Package logging builds the structured loggers used by onboard.
//
// Every logger created during one process shares a run id and, unless file
// logging is disabled, a rotating JSON log file. Console output is optional and
// colored by level.
package logging

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Defaults for file logging.
const (
	DefaultFile       = "wallet_logs.log"
	DefaultMaxSizeMB  = 1
	DefaultMaxAgeDays = 10
)

// ANSI colors for console levels.
const (
	colorRed    = "\x1b[31m"
	colorGreen  = "\x1b[32m"
	colorYellow = "\x1b[33m"
	colorCyan   = "\x1b[36m"
	colorReset  = "\x1b[0m"
)

// Options configures NewLogger.
type Options struct {
	// Level is one of debug, info, warn, error. Empty means info.
	Level string

	// Dir holds the log file. Empty disables file logging.
	Dir string

	// File is the log file name inside Dir.
	File string

	// Console adds a colored console core writing to ConsoleWriter.
	Console       bool
	ConsoleWriter io.Writer

	MaxSizeMB  int
	MaxAgeDays int
	MaxBackups int
}

// Logger is a component logger. It embeds the sugared logger so it can be
// passed wherever Debugw/Infow/Warnw/Errorw are expected.
type Logger struct {
	*zap.SugaredLogger

	runID     string
	logPath   string
	file      *lumberjack.Logger
	closeOnce sync.Once
}

var (
	runID     string
	runIDOnce sync.Once
)

func getRunID() string {
	runIDOnce.Do(func() {
		runID = uuid.New().String()
	})
	return runID
}

// NewLogger creates a logger for component.
//
// If the log directory cannot be created, it returns a fallback logger that
// writes to stderr along with the error. Callers can check the error to detect
// fallback mode.
func NewLogger(component string, opts Options) (*Logger, error) {
	level := zap.NewAtomicLevel()
	if opts.Level != "" {
		if err := level.UnmarshalText([]byte(strings.ToLower(opts.Level))); err != nil {
			return newFallbackLogger(component, zapcore.InfoLevel, fmt.Errorf("invalid log level %q: %w", opts.Level, err)), err
		}
	}

	var cores []zapcore.Core
	l := &Logger{runID: getRunID()}

	if opts.Dir != "" {
		if err := os.MkdirAll(opts.Dir, 0750); err != nil {
			err = fmt.Errorf("failed to create log directory: %w", err)
			return newFallbackLogger(component, level.Level(), err), err
		}

		name := opts.File
		if name == "" {
			name = DefaultFile
		}
		l.logPath = filepath.Join(opts.Dir, name)
		l.file = &lumberjack.Logger{
			Filename:   l.logPath,
			MaxSize:    orDefault(opts.MaxSizeMB, DefaultMaxSizeMB),
			MaxAge:     orDefault(opts.MaxAgeDays, DefaultMaxAgeDays),
			MaxBackups: opts.MaxBackups,
		}
		cores = append(cores, zapcore.NewCore(jsonEncoder(), zapcore.AddSync(l.file), level))
	}

	if opts.Console {
		w := opts.ConsoleWriter
		if w == nil {
			w = os.Stderr
		}
		cores = append(cores, zapcore.NewCore(consoleEncoder(), zapcore.Lock(zapcore.AddSync(w)), level))
	}

	if len(cores) == 0 {
		l.SugaredLogger = zap.NewNop().Sugar()
		return l, nil
	}

	base := zap.New(zapcore.NewTee(cores...), zap.AddStacktrace(zap.DPanicLevel)).
		Named(component).
		With(zap.String("run_id", l.runID))
	l.SugaredLogger = base.Sugar()
	return l, nil
}

// newFallbackLogger writes to stderr when file logging cannot be set up.
func newFallbackLogger(component string, level zapcore.Level, err error) *Logger {
	core := zapcore.NewCore(consoleEncoder(), zapcore.Lock(os.Stderr), level)
	sugar := zap.New(core).Named(component).Sugar()
	sugar.Warnw("failed to initialize file logging, falling back to stderr", "error", err)

	return &Logger{
		SugaredLogger: sugar,
		runID:         getRunID(),
	}
}

func jsonEncoder() zapcore.Encoder {
	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02T15:04:05.000Z07:00")
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	return zapcore.NewJSONEncoder(cfg)
}

func consoleEncoder() zapcore.Encoder {
	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05.000")
	cfg.EncodeLevel = colorLevelEncoder
	cfg.EncodeName = func(name string, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString(name + ".")
	}
	return zapcore.NewConsoleEncoder(cfg)
}

func colorLevelEncoder(level zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	var color string
	switch level {
	case zapcore.DebugLevel:
		color = colorCyan
	case zapcore.InfoLevel:
		color = colorGreen
	case zapcore.WarnLevel:
		color = colorYellow
	default:
		color = colorRed
	}
	enc.AppendString(color + level.CapitalString() + colorReset)
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

// RunID returns the id shared by every logger of this process.
func (l *Logger) RunID() string {
	return l.runID
}

// LogPath returns the path to the log file, empty when not logging to a file.
func (l *Logger) LogPath() string {
	return l.logPath
}

// Close flushes buffered entries and closes the log file. Safe to call
// multiple times.
func (l *Logger) Close() error {
	var err error
	l.closeOnce.Do(func() {
		if syncErr := l.Sync(); syncErr != nil && !ignorableSyncError(syncErr) {
			err = syncErr
		}
		if l.file != nil {
			err = errors.Join(err, l.file.Close())
		}
	})
	return err
}

// ignorableSyncError filters the errors fsync returns on terminals and pipes.
func ignorableSyncError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "/dev/std") ||
		strings.Contains(msg, "invalid argument") ||
		strings.Contains(msg, "inappropriate ioctl") ||
		strings.Contains(msg, "operation not supported")
}
