// Package ordering implements the position protocol shared by favorites
// carousels (scoped to a user) and favorites images (scoped to a carousel):
// a dense 0..n-1 integer sequence with a unique (scope, order) constraint.
package ordering

// Next returns the order to assign to a newly appended member. maxOrder is
// the current maximum within the scope, or nil when the scope is empty.
func Next(maxOrder *int) int {
	if maxOrder == nil {
		return 0
	}
	return *maxOrder + 1
}

// Step is a single order write within a reorder pass.
type Step struct {
	ID    int64
	Order int
}

// Plan is the two-pass renumbering for a submitted final ordering. Stored
// orders are always >= 0, so the negated temp values of pass one can never
// collide with an existing row while pass two walks the list.
type Plan struct {
	Temp  []Step
	Final []Step
}

// NewPlan builds the reorder plan for ids in their desired final order
// (index 0 -> order 0, index 1 -> order 1, ...). Both passes must run inside
// one transaction; the plan itself writes nothing.
func NewPlan(ids []int64) Plan {
	p := Plan{
		Temp:  make([]Step, len(ids)),
		Final: make([]Step, len(ids)),
	}
	for i, id := range ids {
		p.Temp[i] = Step{ID: id, Order: -(i + 1)}
		p.Final[i] = Step{ID: id, Order: i}
	}
	return p
}

// HasDuplicates reports whether the submitted ordering names any id twice.
func HasDuplicates(ids []int64) bool {
	seen := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			return true
		}
		seen[id] = struct{}{}
	}
	return false
}
