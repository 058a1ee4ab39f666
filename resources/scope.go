package resources

// Scope describes how long a provisioned resource handle lives and who may
// see it.
type Scope int

const (
	// ScopeProcess means the handle lives until the process exits. The
	// harness runs exactly one test session per process, so in practice this
	// behaves like ScopeSession; the distinction is kept for callers that
	// want to state their intent.
	ScopeProcess Scope = iota

	// ScopeSession means the handle is created once, on first acquisition,
	// and shared by every test in the run. It is released when the root
	// scope unwinds and is never recreated mid-run.
	ScopeSession

	// ScopeFunction means a fresh handle per test, released as soon as the
	// acquiring test's scope unwinds. A function-scoped handle is never
	// visible to any other test.
	ScopeFunction
)

func (s Scope) String() string {
	switch s {
	case ScopeProcess:
		return "process"
	case ScopeSession:
		return "session"
	case ScopeFunction:
		return "function"
	default:
		return "unknown"
	}
}
