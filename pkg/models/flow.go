// Package models defines the core domain models for IVR call flows.
package models

import (
	"time"
)

// FlowStatus represents the lifecycle state of a call flow.
type FlowStatus string

const (
	FlowStatusDraft    FlowStatus = "draft"
	FlowStatusActive   FlowStatus = "active"
	FlowStatusArchived FlowStatus = "archived"
)

// Flow is a named call flow together with its version history.
// Versions are ordered newest first; the latest version is the one
// with the highest sequence number, not the one at index zero.
type Flow struct {
	ID          string     `json:"id"`
	Name        string     `json:"name" validate:"required,min=3"`
	Description string     `json:"description,omitempty"`
	Status      FlowStatus `json:"status" validate:"required,oneof=draft active archived"`
	Versions    []*Version `json:"versions"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// LatestVersion returns the version with the highest sequence number,
// or nil when the flow has no versions yet. It scans rather than
// trusting slice order so callers get the right answer even for flows
// loaded from stores with weaker ordering guarantees.
func (f *Flow) LatestVersion() *Version {
	var latest *Version

	for _, v := range f.Versions {
		if latest == nil || v.Sequence > latest.Sequence {
			latest = v
		}
	}

	return latest
}

// VersionBySequence returns the version with the given sequence number,
// or nil when no such version exists.
func (f *Flow) VersionBySequence(sequence int64) *Version {
	for _, v := range f.Versions {
		if v.Sequence == sequence {
			return v
		}
	}

	return nil
}

// NextSequence returns the sequence number the next saved version will
// receive. Sequences start at 1 and grow monotonically.
func (f *Flow) NextSequence() int64 {
	latest := f.LatestVersion()
	if latest == nil {
		return 1
	}

	return latest.Sequence + 1
}
