package apptest

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripTestifyTraceLeavesPlainErrorsAlone(t *testing.T) {
	err := errors.New("plain failure")
	assert.Equal(t, err, stripTestifyTrace(err))
}

func TestStripTestifyTraceRemovesTraceBlock(t *testing.T) {
	err := errors.New("\n\tError Trace:\tfoo.go:123\n\t            \tbar.go:456\n\tError:      \tvalues differ\n\tMessages:   \tcontext")
	stripped := stripTestifyTrace(err)
	assert.NotContains(t, stripped.Error(), "Error Trace:")
	assert.Contains(t, stripped.Error(), "values differ")
}
