package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	MaterialCreated EventType = "material.created"
	MaterialUpdated EventType = "material.updated"
	MaterialDeleted EventType = "material.deleted"
)

const (
	eventSource  = "learning-content-service"
	eventVersion = "1.0"
)

// Event is the envelope published for every domain change
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Source    string      `json:"source"`
	Version   string      `json:"version"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// MaterialEventData is the payload of material events
type MaterialEventData struct {
	MaterialID uint   `json:"material_id"`
	Title      string `json:"title,omitempty"`
	CategoryID *uint  `json:"category_id,omitempty"`
	ActorID    uint   `json:"actor_id"`
}

func NewEvent(eventType EventType, data interface{}) *Event {
	return &Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Source:    eventSource,
		Version:   eventVersion,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
}

// EventPublisher publishes domain events to a broker
type EventPublisher interface {
	Publish(ctx context.Context, event *Event) error
	Close() error
}
