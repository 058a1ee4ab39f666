// Package resources provisions the external resources that tests consume -
// browser sessions, HTTP sessions, database handles - and guarantees their
// release.
//
// Every acquisition goes through a Manager, which binds the handle's release
// to a test scope at acquisition time: the acquiring test's scope for
// function-scoped handles, the root scope for session-scoped ones. Releases
// run in reverse-acquisition order when the owning scope unwinds, normally or
// not. Teardown failures are logged and swallowed; a close error must never
// mask the result of the test that used the resource.
package resources
