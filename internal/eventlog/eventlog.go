// Package eventlog records domain events after financial mutations commit.
//
// Dispatch is best-effort: notification and audit concerns must never roll
// back a settled financial state, so events are queued on a buffered channel
// and dropped with a warning when the buffer is full.
package eventlog

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Event types emitted by the services.
const (
	TypeContributionMarked    = "contribution.marked_paid"
	TypeContributionConfirmed = "contribution.confirmed"
	TypeContributionRejected  = "contribution.rejected"
	TypeGroupCreated          = "group.created"
	TypeGroupAutoClosed       = "group.auto_closed"
	TypeMemberJoined          = "group.member_joined"
	TypeReportFiled           = "report.filed"
	TypeWithdrawal            = "wallet.withdrawal"
)

// Event is one domain event.
type Event struct {
	ID        string            `json:"id,omitempty"`
	Type      string            `json:"event_type,omitempty"`
	Data      map[string]string `json:"event_data,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

// EventOption configures an event under construction.
type EventOption func(*Event)

// WithType sets the event type.
func WithType(eventType string) EventOption {
	return func(e *Event) {
		e.Type = eventType
	}
}

// WithData sets the event payload.
func WithData(data map[string]string) EventOption {
	return func(e *Event) {
		e.Data = data
	}
}

// NewEvent builds an event with a fresh id and timestamp.
func NewEvent(opts ...EventOption) Event {
	e := Event{
		ID:        uuid.New().String(),
		CreatedAt: time.Now().UTC(),
	}
	for _, opt := range opts {
		opt(&e)
	}
	return e
}

// Sink persists events.
type Sink interface {
	Save(ctx context.Context, e Event) error
	GetByType(ctx context.Context, eventType string) ([]Event, error)
}
