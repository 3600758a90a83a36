package entity

import (
	"time"

	"todos/pkg/eventbus"
)

const (
	NotificationTypeTodoCreated = "todo.created"
	SeverityInfo                = "info"
)

// Notification is the durable copy of a published event.
type Notification struct {
	ID         string                 `json:"id"`
	UserID     string                 `json:"user_id"`
	Title      string                 `json:"title"`
	Body       string                 `json:"body"`
	NavigateTo *string                `json:"navigate_to,omitempty"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
	Severity   *string                `json:"severity,omitempty"`
	Type       *string                `json:"type,omitempty"`
	ReadAt     *time.Time             `json:"read_at,omitempty"`
	CreatedAt  time.Time              `json:"created_at"`
}

func NotificationFromEvent(ev eventbus.Event) *Notification {
	return &Notification{
		ID:         ev.ID,
		UserID:     ev.UserID,
		Title:      ev.Title,
		Body:       ev.Body,
		NavigateTo: ev.NavigateTo,
		Metadata:   ev.Metadata,
		Severity:   ev.Severity,
		Type:       ev.Type,
		CreatedAt:  ev.CreatedAt,
	}
}

// SubscribeInput narrows a live subscription. An empty UserID receives every
// event. LastEventID is accepted for client compatibility; missed events are
// not replayed.
type SubscribeInput struct {
	UserID      string
	LastEventID string
}

// Tracked is one streamed event tagged with its resume cursor.
type Tracked struct {
	ID   string         `json:"id"`
	Data eventbus.Event `json:"data"`
}
