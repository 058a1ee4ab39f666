package framework

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

const timestampFormat = "2006-01-02 15:04:05.000"

// Logger is the minimal append-only logging capability that harness components
// receive. Implementations decide where the output goes; callers can only write.
type Logger interface {
	Println(args ...interface{})
	Printf(message string, args ...interface{})
}

type nullLogger struct{}

func (n nullLogger) Println(args ...interface{})                {}
func (n nullLogger) Printf(message string, args ...interface{}) {}

// NullLogger returns a Logger that discards all output.
func NullLogger() Logger { return nullLogger{} }

type prefixedLogger struct {
	base   Logger
	prefix string
}

// LoggerWithPrefix decorates a Logger so that every line starts with the
// given prefix.
func LoggerWithPrefix(baseLogger Logger, prefix string) Logger {
	return prefixedLogger{baseLogger, prefix}
}

func (p prefixedLogger) Println(args ...interface{}) {
	p.base.Println(append([]interface{}{p.prefix}, args...)...)
}

func (p prefixedLogger) Printf(message string, args ...interface{}) {
	p.base.Printf(p.prefix+message, args...)
}

// CapturedMessage is one timestamped line of captured test output.
type CapturedMessage struct {
	Time    time.Time
	Message string
}

// CapturedOutput is the accumulated output of one test scope.
type CapturedOutput []CapturedMessage

func (output CapturedOutput) ToString(prefix string) string {
	lines := make([]string, 0, len(output))
	for _, m := range output {
		lines = append(lines, fmt.Sprintf("%s[%s] %s", prefix, m.Time.Format(timestampFormat), m.Message))
	}
	return strings.Join(lines, "\n")
}

// CapturingLogger records all output written within a test scope so the runner
// can attach it to the test's result. While a child scope is active, output
// sent to the parent is routed to the children instead, so that messages from
// a shared resource show up in whichever subtest was running at the time.
type CapturingLogger struct {
	output   []CapturedMessage
	children []*CapturingLogger
	lock     sync.Mutex
}

func (l *CapturingLogger) Println(args ...interface{}) {
	// Sprintln appends a newline that we don't want in a captured message
	text := strings.TrimRight(fmt.Sprintln(args...), "\r\n")
	l.append(CapturedMessage{Time: time.Now(), Message: text})
}

func (l *CapturingLogger) Printf(message string, args ...interface{}) {
	l.append(CapturedMessage{Time: time.Now(), Message: fmt.Sprintf(message, args...)})
}

func (l *CapturingLogger) append(m CapturedMessage) {
	l.lock.Lock()
	if len(l.children) == 0 {
		l.output = append(l.output, m)
		l.lock.Unlock()
		return
	}
	children := append([]*CapturingLogger(nil), l.children...)
	l.lock.Unlock()
	for _, c := range children {
		c.append(m)
	}
}

// Output returns a copy of everything captured so far.
func (l *CapturingLogger) Output() CapturedOutput {
	l.lock.Lock()
	defer l.lock.Unlock()
	return append(CapturedOutput(nil), l.output...)
}

// AddChildLogger attaches a child scope's logger. The child starts out with a
// copy of whatever the parent has captured so far.
func (l *CapturingLogger) AddChildLogger(child *CapturingLogger) {
	l.lock.Lock()
	l.children = append(l.children, child)
	inherited := append([]CapturedMessage(nil), l.output...)
	l.lock.Unlock()
	child.lock.Lock()
	child.output = append(inherited, child.output...)
	child.lock.Unlock()
}

// RemoveChildLogger detaches a child scope's logger when its scope ends.
func (l *CapturingLogger) RemoveChildLogger(child *CapturingLogger) {
	l.lock.Lock()
	defer l.lock.Unlock()
	for i, c := range l.children {
		if c == child {
			l.children = append(l.children[:i], l.children[i+1:]...)
			return
		}
	}
}
