package apptest

import (
	"fmt"
	"regexp"
	"strings"
)

// Filter is a function that can determine whether to run a specific test or not.
type Filter func(TestID) bool

// RegexFilters is the include/exclude pair built from the -run and -skip
// command-line options.
type RegexFilters struct {
	MustMatch    TestIDPatternList
	MustNotMatch TestIDPatternList
}

// Match implements the selection rule: a test runs if it matches at least one
// include pattern (or none were given) and matches no exclude pattern.
func (r RegexFilters) Match(id TestID) bool {
	return (!r.MustMatch.IsDefined() || r.MustMatch.AnyMatch(id, true)) &&
		!r.MustNotMatch.AnyMatch(id, false)
}

// TestIDPattern is a slash-delimited list of regexes, each matched against
// the corresponding component of a test ID.
type TestIDPattern []*regexp.Regexp

// Match tests the pattern against an ID. If includeParents is true, a pattern
// with more components than the ID can still match the ID's prefix, so that
// selecting a subtest also selects the parent scopes it lives inside.
func (p TestIDPattern) Match(id TestID, includeParents bool) bool {
	n := len(p)
	if n > len(id) {
		if !includeParents {
			return false
		}
		n = len(id)
	}
	for i := 0; i < n; i++ {
		if !p[i].MatchString(id[i]) {
			return false
		}
	}
	return true
}

func (p TestIDPattern) String() string {
	ss := make([]string, 0, len(p))
	for _, c := range p {
		ss = append(ss, c.String())
	}
	return strings.Join(ss, "/")
}

// ParseTestIDPattern compiles a slash-delimited pattern string.
func ParseTestIDPattern(s string) (TestIDPattern, error) {
	parts := strings.Split(s, "/")
	ret := make(TestIDPattern, 0, len(parts))
	for _, part := range parts {
		rx, err := regexp.Compile(part)
		if err != nil {
			return nil, fmt.Errorf("invalid regex: %w", err)
		}
		ret = append(ret, rx)
	}
	return ret, nil
}

// TestIDPatternList accumulates patterns from a repeatable command-line flag.
type TestIDPatternList []TestIDPattern

func (l TestIDPatternList) String() string {
	ss := make([]string, 0, len(l))
	for _, p := range l {
		ss = append(ss, `"`+p.String()+`"`)
	}
	return strings.Join(ss, " or ")
}

// Set is called by the command-line parser.
func (l *TestIDPatternList) Set(value string) error {
	p, err := ParseTestIDPattern(value)
	if err != nil {
		return err
	}
	*l = append(*l, p)
	return nil
}

func (l TestIDPatternList) IsDefined() bool {
	return len(l) != 0
}

func (l TestIDPatternList) AnyMatch(id TestID, includeParents bool) bool {
	for _, p := range l {
		if p.Match(id, includeParents) {
			return true
		}
	}
	return false
}

// PrintFilterDescription announces any active filter criteria at the start of
// a run so a reader of the console output knows why tests were skipped.
func PrintFilterDescription(filters RegexFilters) {
	if !filters.MustMatch.IsDefined() && !filters.MustNotMatch.IsDefined() {
		return
	}
	fmt.Println("Some tests will be skipped based on the filter criteria for this test run:")
	if filters.MustMatch.IsDefined() {
		fmt.Printf("  skip any not matching %s\n", filters.MustMatch)
	}
	if filters.MustNotMatch.IsDefined() {
		fmt.Printf("  skip any matching %s\n", filters.MustNotMatch)
	}
	fmt.Println()
}
