// Package overlay is the pending-write shadow map an editor keeps between
// issuing a partial update and the authoritative refetch that follows it.
// Rendering merges the overlay over canonical state, so the UI shows the
// just-committed value instead of flashing back to the stale server copy.
package overlay

import "github.com/kkkatsube/picc/internal/geometry"

// Overlay holds at most one pending partial update per image id.
// Consecutive commits against the same image merge field-wise: the later
// gesture wins per field, earlier still-pending fields survive.
type Overlay struct {
	pending map[int64]geometry.Update
}

func New() *Overlay {
	return &Overlay{pending: make(map[int64]geometry.Update)}
}

// Put records a committed-but-unconfirmed update for id.
func (o *Overlay) Put(id int64, u geometry.Update) {
	p := o.pending[id]
	if u.X != nil {
		p.X = u.X
	}
	if u.Y != nil {
		p.Y = u.Y
	}
	if u.Size != nil {
		p.Size = u.Size
	}
	if u.Left != nil {
		p.Left = u.Left
	}
	if u.Right != nil {
		p.Right = u.Right
	}
	if u.Top != nil {
		p.Top = u.Top
	}
	if u.Bottom != nil {
		p.Bottom = u.Bottom
	}
	o.pending[id] = p
}

// View merges the pending update for id, if any, over the canonical
// placement.
func (o *Overlay) View(id int64, canonical geometry.Placement) geometry.Placement {
	u, ok := o.pending[id]
	if !ok {
		return canonical
	}
	if u.X != nil {
		canonical.X = float64(*u.X)
	}
	if u.Y != nil {
		canonical.Y = float64(*u.Y)
	}
	if u.Size != nil {
		canonical.Size = *u.Size
	}
	if u.Left != nil {
		canonical.Left = float64(*u.Left)
	}
	if u.Right != nil {
		canonical.Right = float64(*u.Right)
	}
	if u.Top != nil {
		canonical.Top = float64(*u.Top)
	}
	if u.Bottom != nil {
		canonical.Bottom = float64(*u.Bottom)
	}
	return canonical
}

// Ack clears the override after the mutation succeeded and the refetch
// delivered the authoritative row.
func (o *Overlay) Ack(id int64) {
	delete(o.pending, id)
}

// Fail rolls the override back after a failed mutation: the override is
// dropped and rendering falls back to the last canonical state. Retaining
// the optimistic value would show the user a write that never happened.
func (o *Overlay) Fail(id int64) {
	delete(o.pending, id)
}

// Pending reports whether id has an unconfirmed update.
func (o *Overlay) Pending(id int64) bool {
	_, ok := o.pending[id]
	return ok
}
