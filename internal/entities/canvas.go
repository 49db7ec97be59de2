package entities

import "time"

type Canvas struct {
	ID               int64     `json:"id"`
	UserID           int64     `json:"user_id"`
	Name             *string   `json:"name"`
	Memo             *string   `json:"memo"`
	Width            *int      `json:"width"`
	Height           *int      `json:"height"`
	CreatedTimestamp time.Time `json:"created_at"`
	UpdatedTimestamp time.Time `json:"updated_at"`
}

// CanvasImage is the stored rectangle of one image placed on a canvas.
// x/y are canvas-pixel units and may be negative or exceed the canvas
// bounds; width/height are the unscaled source dimensions; the four crop
// insets are in source-pixel units, not yet multiplied by size.
type CanvasImage struct {
	ID               int64     `json:"id"`
	CanvasID         int64     `json:"canvas_id"`
	URI              string    `json:"uri"`
	X                *int      `json:"x"`
	Y                *int      `json:"y"`
	Width            *int      `json:"width"`
	Height           *int      `json:"height"`
	Left             *int      `json:"left"`
	Right            *int      `json:"right"`
	Top              *int      `json:"top"`
	Bottom           *int      `json:"bottom"`
	Size             *float64  `json:"size"`
	CreatedTimestamp time.Time `json:"created_at"`
	UpdatedTimestamp time.Time `json:"updated_at"`
}
