// Package events defines event types and structures for flow lifecycle notifications.
package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/dialvox/ivrflow/pkg/models"
)

type EventType string

// Topic carries every flow lifecycle event. The dialer and other consumers
// filter on the event_type metadata key.
const Topic = "ivrflow.flows"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	FlowCreatedEvent         EventType = "flow.created"
	FlowMetadataUpdatedEvent EventType = "flow.metadata.updated"
	FlowDeletedEvent         EventType = "flow.deleted"
	FlowVersionCreatedEvent  EventType = "flow.version.created"
)

type BaseEvent struct {
	ID        string         `json:"id"`
	Type      EventType      `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	FlowID    string         `json:"flow_id"`
	ActorRole string         `json:"actor_role,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

type FlowCreated struct {
	BaseEvent

	Name   string            `json:"name"`
	Status models.FlowStatus `json:"status"`
}

func (f FlowCreated) GetType() EventType {
	return FlowCreatedEvent
}

type FlowMetadataUpdated struct {
	BaseEvent

	Name   string            `json:"name"`
	Status models.FlowStatus `json:"status"`
}

func (f FlowMetadataUpdated) GetType() EventType {
	return FlowMetadataUpdatedEvent
}

type FlowDeleted struct {
	BaseEvent
}

func (f FlowDeleted) GetType() EventType {
	return FlowDeletedEvent
}

// FlowVersionCreated announces a new immutable version. Consumers holding a
// definition snapshot (the outbound dialer above all) refetch on this event.
type FlowVersionCreated struct {
	BaseEvent

	VersionID string `json:"version_id"`
	Sequence  int64  `json:"sequence"`
	NodeCount int    `json:"node_count"`
	EdgeCount int    `json:"edge_count"`
}

func (f FlowVersionCreated) GetType() EventType {
	return FlowVersionCreatedEvent
}

func NewBaseEvent(eventType EventType, flowID string) BaseEvent {
	return BaseEvent{
		ID:        uuid.New().String(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		FlowID:    flowID,
		Metadata:  make(map[string]any),
	}
}
