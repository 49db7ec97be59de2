package ordering

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNext(t *testing.T) {
	assert.Equal(t, 0, Next(nil))

	max := 0
	assert.Equal(t, 1, Next(&max))

	max = 6
	assert.Equal(t, 7, Next(&max))
}

func TestNewPlan(t *testing.T) {
	p := NewPlan([]int64{30, 10, 20})

	assert.Equal(t, []Step{{30, -1}, {10, -2}, {20, -3}}, p.Temp)
	assert.Equal(t, []Step{{30, 0}, {10, 1}, {20, 2}}, p.Final)
}

func TestNewPlanEmpty(t *testing.T) {
	p := NewPlan(nil)
	assert.Empty(t, p.Temp)
	assert.Empty(t, p.Final)
}

// Temp orders must never land on a value a not-yet-moved row could hold:
// stored orders are >= 0, temp orders all < 0, and within the pass they are
// pairwise distinct.
func TestTempOrdersCannotCollide(t *testing.T) {
	ids := make([]int64, 50)
	for i := range ids {
		ids[i] = int64(i * 3)
	}

	p := NewPlan(ids)
	seen := map[int]bool{}
	for _, s := range p.Temp {
		assert.Negative(t, s.Order)
		assert.False(t, seen[s.Order], "duplicate temp order %d", s.Order)
		seen[s.Order] = true
	}
	for _, s := range p.Final {
		assert.GreaterOrEqual(t, s.Order, 0)
	}
}

func TestHasDuplicates(t *testing.T) {
	assert.False(t, HasDuplicates([]int64{1, 2, 3}))
	assert.False(t, HasDuplicates(nil))
	assert.True(t, HasDuplicates([]int64{1, 2, 1}))
}
