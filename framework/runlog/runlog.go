// Package runlog configures process-wide logging for a harness run: one
// timestamped log file per run plus console output, with a verbosity level
// taken from the LOG_LEVEL environment variable.
//
// Initialization happens exactly once, in main. Components never see the
// file or the level; they receive only the append-only framework.Logger
// capability. There is no teardown: the log file simply remains on disk.
package runlog

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Level is a log verbosity threshold.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "INFO"
	}
}

// ParseLevel interprets a LOG_LEVEL value. Unrecognized or empty input
// falls back to INFO.
func ParseLevel(s string) Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return LevelDebug
	case "WARN", "WARNING":
		return LevelWarn
	case "ERROR":
		return LevelError
	default:
		return LevelInfo
	}
}

// EnvVarLogLevel is the environment variable controlling initial verbosity.
const EnvVarLogLevel = "LOG_LEVEL"

const fileTimestampFormat = "20060102_150405"
const lineTimestampFormat = "2006-01-02 15:04:05"

// Logger writes leveled, timestamped lines to every configured sink. It also
// satisfies framework.Logger, with Printf/Println writing at INFO.
type Logger struct {
	shared    *sharedState
	component string
}

type sharedState struct {
	level Level
	sinks []io.Writer
	lock  sync.Mutex
}

// Options configures Init. The zero value is usable.
type Options struct {
	// Dir is the directory for run log files; "logs" if empty.
	Dir string
	// Console is the console sink; os.Stderr if nil.
	Console io.Writer
	// Level overrides the LOG_LEVEL environment variable if non-nil.
	Level *Level
}

// Init creates the log directory if needed, opens a new timestamped log file
// for this run, and returns the root Logger along with the file path.
func Init(opts Options) (*Logger, string, error) {
	dir := opts.Dir
	if dir == "" {
		dir = "logs"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, "", fmt.Errorf("cannot create log directory %s: %w", dir, err)
	}
	path := filepath.Join(dir, fmt.Sprintf("test_run_%s.log", time.Now().Format(fileTimestampFormat)))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, "", fmt.Errorf("cannot open log file %s: %w", path, err)
	}

	level := ParseLevel(os.Getenv(EnvVarLogLevel))
	if opts.Level != nil {
		level = *opts.Level
	}
	console := opts.Console
	if console == nil {
		console = io.Writer(os.Stderr)
	}

	logger := &Logger{
		shared:    &sharedState{level: level, sinks: []io.Writer{f, console}},
		component: "harness",
	}
	return logger, path, nil
}

// NewForTesting returns a Logger that writes only to the given sink, for use
// in unit tests that want to observe output without touching the filesystem.
func NewForTesting(sink io.Writer, level Level) *Logger {
	return &Logger{
		shared:    &sharedState{level: level, sinks: []io.Writer{sink}},
		component: "harness",
	}
}

// WithComponent returns a Logger that shares this one's sinks and level but
// stamps lines with a different component name.
func (l *Logger) WithComponent(name string) *Logger {
	return &Logger{shared: l.shared, component: name}
}

func (l *Logger) write(level Level, message string) {
	s := l.shared
	if level < s.level {
		return
	}
	line := fmt.Sprintf("%s - %s - %s - %s\n",
		time.Now().Format(lineTimestampFormat), l.component, level, message)
	s.lock.Lock()
	defer s.lock.Unlock()
	for _, sink := range s.sinks {
		_, _ = io.WriteString(sink, line)
	}
}

func (l *Logger) Debugf(format string, args ...interface{}) {
	l.write(LevelDebug, fmt.Sprintf(format, args...))
}

func (l *Logger) Infof(format string, args ...interface{}) {
	l.write(LevelInfo, fmt.Sprintf(format, args...))
}

func (l *Logger) Warnf(format string, args ...interface{}) {
	l.write(LevelWarn, fmt.Sprintf(format, args...))
}

func (l *Logger) Errorf(format string, args ...interface{}) {
	l.write(LevelError, fmt.Sprintf(format, args...))
}

// Printf writes at INFO level; part of the framework.Logger interface.
func (l *Logger) Printf(message string, args ...interface{}) {
	l.Infof(message, args...)
}

// Println writes at INFO level; part of the framework.Logger interface.
func (l *Logger) Println(args ...interface{}) {
	l.write(LevelInfo, strings.TrimRight(fmt.Sprintln(args...), "\r\n"))
}

// Banner emits a highlighted section marker of the kind that brackets a
// test session in the run log.
func (l *Logger) Banner(format string, args ...interface{}) {
	rule := strings.Repeat("=", 80)
	l.Infof("%s", rule)
	l.Infof(format, args...)
	l.Infof("%s", rule)
}
