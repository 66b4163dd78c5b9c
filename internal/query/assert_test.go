package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDevAssertElidedWithoutDebugTag(t *testing.T) {
	if debugAsserts {
		t.Skip("compiled with viewquerydebug")
	}
	assert.NotPanics(t, func() {
		devAssert(false, "never fires in release builds")
	})
}
