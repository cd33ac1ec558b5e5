// Package logging provides the leveled logger shared by the storage, cell
// set and command packages. Output goes either to a standard library
// log.Logger or to glog.
package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync/atomic"

	"github.com/golang/glog"
)

// Logger is the sink a LevelLogger writes to. depth is the number of
// stack frames to skip when reporting the caller.
type Logger interface {
	Output(depth int, s string) error
	OutputErr(depth int, s string) error
	OutputWarning(depth int, s string) error
}

const (
	LevelError int32 = iota
	LevelWarn
	LevelInfo
	LevelDebug
	LevelDetail
)

var levelNames = []string{"error", "warn", "info", "debug", "detail"}

// ParseLevel converts a level name such as "info" to its value.
func ParseLevel(s string) (int32, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range levelNames {
		if name == s {
			return int32(i), nil
		}
	}
	return 0, fmt.Errorf("unknown log level %q", s)
}

type defaultLogger struct {
	logger *log.Logger
}

// NewDefaultLogger writes to stderr with the module name as prefix.
func NewDefaultLogger(module string) Logger {
	return NewWriterLogger(os.Stderr, module)
}

// NewWriterLogger writes to w with the module name as prefix.
func NewWriterLogger(w io.Writer, module string) Logger {
	if module != "" && !strings.HasSuffix(module, " ") {
		module += " "
	}
	return &defaultLogger{
		logger: log.New(w, module, log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
	}
}

func (l *defaultLogger) Output(depth int, s string) error {
	return l.logger.Output(depth+1, s)
}

func (l *defaultLogger) OutputErr(depth int, s string) error {
	return l.logger.Output(depth+1, "ERR: "+s)
}

func (l *defaultLogger) OutputWarning(depth int, s string) error {
	return l.logger.Output(depth+1, "WARN: "+s)
}

// GLogger sends output to glog.
type GLogger struct{}

func (GLogger) Output(depth int, s string) error {
	glog.InfoDepth(depth, s)
	return nil
}

func (GLogger) OutputErr(depth int, s string) error {
	glog.ErrorDepth(depth, s)
	return nil
}

func (GLogger) OutputWarning(depth int, s string) error {
	glog.WarningDepth(depth, s)
	return nil
}

// LevelLogger filters messages below its level. A nil Logger discards
// everything.
type LevelLogger struct {
	Logger Logger
	level  atomic.Int32
}

func NewLevelLogger(level int32, l Logger) *LevelLogger {
	ll := &LevelLogger{Logger: l}
	ll.level.Store(level)
	return ll
}

func (l *LevelLogger) SetLevel(level int32) {
	l.level.Store(level)
}

func (l *LevelLogger) Level() int32 {
	return l.level.Load()
}

func (l *LevelLogger) enabled(level int32) bool {
	return l.Logger != nil && l.Level() >= level
}

func (l *LevelLogger) Infof(f string, args ...interface{}) {
	if l.enabled(LevelInfo) {
		l.Logger.Output(2, fmt.Sprintf(f, args...))
	}
}

func (l *LevelLogger) Debugf(f string, args ...interface{}) {
	if l.enabled(LevelDebug) {
		l.Logger.Output(2, fmt.Sprintf(f, args...))
	}
}

func (l *LevelLogger) Detailf(f string, args ...interface{}) {
	if l.enabled(LevelDetail) {
		l.Logger.Output(2, fmt.Sprintf(f, args...))
	}
}

func (l *LevelLogger) Warningf(f string, args ...interface{}) {
	if l.enabled(LevelWarn) {
		l.Logger.OutputWarning(2, fmt.Sprintf(f, args...))
	}
}

func (l *LevelLogger) Errorf(f string, args ...interface{}) {
	if l.Logger != nil {
		l.Logger.OutputErr(2, fmt.Sprintf(f, args...))
	}
}

// UseGlog routes glog to stderr, or to files under dir when dir is set.
// verbosity becomes glog's -v.
// glog registers its settings on the standard flag set, so they are
// configured here rather than exposed as command line flags.
func UseGlog(dir string, verbosity int) error {
	settings := map[string]string{
		"logtostderr": "true",
		"v":           fmt.Sprint(verbosity),
	}
	if dir != "" {
		settings["logtostderr"] = "false"
		settings["log_dir"] = dir
	}
	for name, value := range settings {
		if err := flagSet(name, value); err != nil {
			return fmt.Errorf("failed to configure glog %s: %w", name, err)
		}
	}
	return nil
}

// Flush writes any buffered glog output.
func Flush() {
	glog.Flush()
}
