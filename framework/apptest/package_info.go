// Package apptest implements the test runner used by the harness: a tree of
// test scopes with deterministic cleanup, regex-based test selection, and
// pluggable result logging.
//
// The central guarantee is the one resource provisioners rely on: a cleanup
// function registered with (*T).Defer runs exactly once when its scope exits,
// in reverse registration order, whether the scope ended normally, by
// failure, or by panic. A handle acquired for a single test therefore never
// outlives that test, and a handle acquired at the root scope lives for the
// whole session.
package apptest
