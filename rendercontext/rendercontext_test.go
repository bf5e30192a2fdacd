package rendercontext

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type holder struct{ cleared int }

func (h *holder) ClearTempRenderData() { h.cleared++ }

func TestStoreClearsUnusedAfterFrame(t *testing.T) {
	s := NewStore()
	a, b := &holder{}, &holder{}

	s.Use(a)
	s.Use(b)
	s.Swap()
	assert.Zero(t, a.cleared)
	assert.Equal(t, 2, s.Len())

	// only a rendered this frame, b is released right away
	s.Use(a)
	s.Swap()
	assert.Zero(t, a.cleared)
	assert.Equal(t, 1, b.cleared)
	assert.Equal(t, 1, s.Len())

	// a skipped one frame
	s.Swap()
	assert.Equal(t, 1, a.cleared)
	assert.Equal(t, 1, b.cleared, "cleared holder is dropped")
	assert.Zero(t, s.Len())

	s.Swap()
	assert.Equal(t, 1, a.cleared)
}

func TestStoreForget(t *testing.T) {
	s := NewStore()
	h := &holder{}
	s.Use(h)
	s.Swap()
	s.Forget(h)
	s.Swap()
	s.Swap()
	assert.Zero(t, h.cleared)
	assert.Zero(t, s.Len())
}
