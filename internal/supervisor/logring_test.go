package supervisor

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogRing(t *testing.T) {
	r := newLogRing(3)
	assert.Empty(t, r.snapshot())

	for i := 1; i <= 5; i++ {
		r.add(LogEntry{Line: fmt.Sprintf("l%d", i)})
	}

	snap := r.snapshot()
	assert.Len(t, snap, 3)
	assert.Equal(t, "l3", snap[0].Line)
	assert.Equal(t, "l5", snap[2].Line)
}

func TestLineSplitter(t *testing.T) {
	var s lineSplitter

	assert.Equal(t, []string{"one"}, s.feed("one\ntw"))
	assert.Equal(t, []string{"two", "three"}, s.feed("o\r\nthree\n\n"))
	assert.Empty(t, s.feed("four"))
	assert.Equal(t, "four", s.flush())
	assert.Equal(t, "", s.flush())
}
