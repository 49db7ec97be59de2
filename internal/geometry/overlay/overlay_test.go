package overlay

import (
	"testing"

	"github.com/kkkatsube/picc/internal/geometry"
	"github.com/stretchr/testify/assert"
)

func intp(v int) *int           { return &v }
func floatp(v float64) *float64 { return &v }

func TestViewMergesPendingOverCanonical(t *testing.T) {
	o := New()
	canonical := geometry.Placement{X: 10, Y: 20, Width: 100, Height: 100, Size: 1}

	o.Put(1, geometry.Update{X: intp(150), Y: intp(250), Size: floatp(0.5)})

	got := o.View(1, canonical)
	assert.Equal(t, 150.0, got.X)
	assert.Equal(t, 250.0, got.Y)
	assert.Equal(t, 0.5, got.Size)
	// untouched fields come from canonical
	assert.Equal(t, 100.0, got.Width)

	// other ids are unaffected
	assert.Equal(t, canonical, o.View(2, canonical))
}

func TestPutMergesFieldWise(t *testing.T) {
	o := New()
	o.Put(1, geometry.Update{X: intp(5)})
	o.Put(1, geometry.Update{Left: intp(30), X: intp(7)})

	got := o.View(1, geometry.Placement{Width: 100, Height: 100, Size: 1})
	assert.Equal(t, 7.0, got.X)
	assert.Equal(t, 30.0, got.Left)
}

func TestAckClearsOverride(t *testing.T) {
	o := New()
	canonical := geometry.Placement{X: 1}

	o.Put(1, geometry.Update{X: intp(99)})
	assert.True(t, o.Pending(1))

	o.Ack(1)
	assert.False(t, o.Pending(1))
	assert.Equal(t, canonical, o.View(1, canonical))
}

func TestFailRollsBackToCanonical(t *testing.T) {
	o := New()
	canonical := geometry.Placement{X: 1, Size: 1}

	o.Put(1, geometry.Update{Size: floatp(3)})
	o.Fail(1)

	assert.False(t, o.Pending(1))
	assert.Equal(t, canonical, o.View(1, canonical))
}
