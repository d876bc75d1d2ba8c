package models

import (
	"time"
)

// Viewport captures the editor camera at save time so reopening a flow
// restores the same canvas position and zoom level.
type Viewport struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Zoom float64 `json:"zoom"`
}

// Version is one immutable snapshot of a flow definition. Versions are
// append only: once written they are never updated or deleted, and each
// carries a sequence number one higher than the previous snapshot.
type Version struct {
	ID         string      `json:"id"`
	Sequence   int64       `json:"sequence" validate:"min=1"`
	Definition *Definition `json:"definition" validate:"required"`
	Viewport   *Viewport   `json:"viewport,omitempty"`
	CreatedAt  time.Time   `json:"created_at"`
}
