package geometry

import "errors"

var (
	// ErrGestureActive is returned when a pointer-down arrives while
	// another gesture is still in flight. Gestures are modal: at most one
	// per editor.
	ErrGestureActive = errors.New("another gesture is active")

	// ErrUnknownImage is returned when a gesture targets an id the editor
	// does not hold.
	ErrUnknownImage = errors.New("unknown image id")
)

// Corner identifies the handle being dragged during a resize. The opposite
// corner is the anchor and stays visually fixed.
type Corner string

const (
	CornerNW Corner = "nw"
	CornerNE Corner = "ne"
	CornerSW Corner = "sw"
	CornerSE Corner = "se"
)

// Edge identifies the handle being dragged during a crop.
type Edge string

const (
	EdgeLeft   Edge = "left"
	EdgeRight  Edge = "right"
	EdgeTop    Edge = "top"
	EdgeBottom Edge = "bottom"
)

type state int

const (
	idle state = iota
	dragging
	resizing
	cropping
)

// Update carries the fields a finished gesture commits. Nil fields are left
// untouched by the partial update. A crop commit resends all four insets so
// a concurrent refetch cannot clobber the unchanged ones.
type Update struct {
	X      *int
	Y      *int
	Size   *float64
	Left   *int
	Right  *int
	Top    *int
	Bottom *int
}

// Commit is the partial update produced by pointer-up.
type Commit struct {
	ID     int64
	Fields Update
}

// Editor is the gesture state machine for one canvas: Idle, Dragging(id),
// Resizing(id, corner, anchor) or Cropping(id, edge). Pointer-down starts a
// gesture only from Idle, pointer-move updates the live placement of the
// active image, pointer-up commits and returns to Idle. It is not safe for
// concurrent use; a canvas editor is single-threaded by nature.
type Editor struct {
	placements map[int64]Placement

	st   state
	id   int64
	base Placement // placement at gesture start
	live Placement

	corner  Corner
	anchorX float64
	anchorY float64
	edge    Edge
}

func NewEditor() *Editor {
	return &Editor{placements: make(map[int64]Placement)}
}

// Load replaces the canonical placement of an image, typically after a
// refetch. A load during a gesture on the same image does not disturb the
// live value: local optimistic state stays authoritative until pointer-up.
func (e *Editor) Load(id int64, p Placement) {
	e.placements[id] = p
}

func (e *Editor) Remove(id int64) {
	delete(e.placements, id)
}

// Placement returns the value to render: the live in-flight placement while
// a gesture is active on id, the canonical one otherwise.
func (e *Editor) Placement(id int64) (Placement, bool) {
	if e.st != idle && e.id == id {
		return e.live, true
	}
	p, ok := e.placements[id]
	return p, ok
}

// Active reports whether any gesture is in flight.
func (e *Editor) Active() bool {
	return e.st != idle
}

func (e *Editor) start(id int64) error {
	if e.st != idle {
		return ErrGestureActive
	}
	p, ok := e.placements[id]
	if !ok {
		return ErrUnknownImage
	}
	e.id = id
	e.base = p
	e.live = p
	return nil
}

// StartDrag begins a move gesture on id.
func (e *Editor) StartDrag(id int64) error {
	if err := e.start(id); err != nil {
		return err
	}
	e.st = dragging
	return nil
}

// StartResize begins an aspect-locked resize on id, dragging the given
// corner. The opposite corner becomes the fixed anchor.
func (e *Editor) StartResize(id int64, corner Corner) error {
	if err := e.start(id); err != nil {
		return err
	}
	e.st = resizing
	e.corner = corner

	d := Display(e.base)
	switch corner {
	case CornerSE:
		e.anchorX, e.anchorY = d.X, d.Y
	case CornerNW:
		e.anchorX, e.anchorY = d.X+d.Width, d.Y+d.Height
	case CornerNE:
		e.anchorX, e.anchorY = d.X, d.Y+d.Height
	case CornerSW:
		e.anchorX, e.anchorY = d.X+d.Width, d.Y
	}
	return nil
}

// StartCrop begins a single-edge crop on id.
func (e *Editor) StartCrop(id int64, edge Edge) error {
	if err := e.start(id); err != nil {
		return err
	}
	e.st = cropping
	e.edge = edge
	return nil
}

// Move updates the live placement with the cumulative pointer delta since
// gesture start, in canvas units (the caller divides screen pixels by the
// viewport scale). Input with no active gesture is ignored.
func (e *Editor) Move(dx, dy float64) {
	switch e.st {
	case dragging:
		e.live.X = e.base.X + dx
		e.live.Y = e.base.Y + dy
	case resizing:
		e.moveResize(dx, dy)
	case cropping:
		e.moveCrop(dx, dy)
	}
}

// moveResize recomputes scale from the pointer's distance to the anchor.
// The width- and height-implied ratios are averaged so the scale does not
// jitter when the pointer strays off the diagonal.
func (e *Editor) moveResize(dx, dy float64) {
	if e.base.Width <= 0 || e.base.Height <= 0 {
		return
	}

	var dw, dh float64
	switch e.corner {
	case CornerSE:
		dw, dh = dx, dy
	case CornerNW:
		dw, dh = -dx, -dy
	case CornerNE:
		dw, dh = dx, -dy
	case CornerSW:
		dw, dh = -dx, dy
	}

	// Clamp before deriving x/y: the anchor must stay fixed for the scale
	// that actually takes effect, not the one the pointer implies.
	scale := ClampScale(e.base.Size + (dw/e.base.Width+dh/e.base.Height)/2)
	e.live.Size = scale

	// Re-derive the top-left from the fixed anchor and the new extent.
	w := e.base.Width * scale
	h := e.base.Height * scale
	switch e.corner {
	case CornerSE:
		e.live.X, e.live.Y = e.anchorX, e.anchorY
	case CornerNW:
		e.live.X, e.live.Y = e.anchorX-w, e.anchorY-h
	case CornerNE:
		e.live.X, e.live.Y = e.anchorX, e.anchorY-h
	case CornerSW:
		e.live.X, e.live.Y = e.anchorX-w, e.anchorY
	}
}

// moveCrop converts the on-canvas delta into source-pixel inset units by
// dividing by the current scale (insets are stored unscaled).
func (e *Editor) moveCrop(dx, dy float64) {
	size := e.base.Size
	if size <= 0 {
		return
	}

	clamp := func(v float64) float64 {
		if v < 0 {
			return 0
		}
		return v
	}

	switch e.edge {
	case EdgeLeft:
		e.live.Left = clamp(e.base.Left + dx/size)
	case EdgeRight:
		e.live.Right = clamp(e.base.Right - dx/size)
	case EdgeTop:
		e.live.Top = clamp(e.base.Top + dy/size)
	case EdgeBottom:
		e.live.Bottom = clamp(e.base.Bottom - dy/size)
	}
}

// End finishes the active gesture: the live placement becomes canonical and
// the partial update to send is returned. ok is false when no gesture was
// active.
func (e *Editor) End() (Commit, bool) {
	if e.st == idle {
		return Commit{}, false
	}

	c := Commit{ID: e.id}
	switch e.st {
	case dragging:
		x, y := round(e.live.X), round(e.live.Y)
		e.live.X, e.live.Y = float64(x), float64(y)
		c.Fields.X = &x
		c.Fields.Y = &y
	case resizing:
		size := ClampScale(e.live.Size)
		e.live.Size = size
		x, y := round(e.live.X), round(e.live.Y)
		e.live.X, e.live.Y = float64(x), float64(y)
		c.Fields.Size = &size
		c.Fields.X = &x
		c.Fields.Y = &y
	case cropping:
		l, r := round(e.live.Left), round(e.live.Right)
		t, b := round(e.live.Top), round(e.live.Bottom)
		e.live.Left, e.live.Right = float64(l), float64(r)
		e.live.Top, e.live.Bottom = float64(t), float64(b)
		c.Fields.Left = &l
		c.Fields.Right = &r
		c.Fields.Top = &t
		c.Fields.Bottom = &b
	}

	e.placements[e.id] = e.live
	e.st = idle
	return c, true
}

// Cancel abandons the active gesture without committing.
func (e *Editor) Cancel() {
	e.st = idle
}
