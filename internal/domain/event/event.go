package event

import (
	"context"
	"time"
)

type Type string

const (
	QuoteIssued     Type = "quote.issued"
	QuoteDeclined   Type = "quote.declined"
	NeedsListSeeded Type = "needs_list.seeded"
	StatusChanged   Type = "status.changed"
)

// Event is handed to downstream collaborators (CRM sync, term-sheet
// rendering) as plain data after a decision has been committed.
type Event struct {
	Type       Type      `json:"type"`
	LoanID     string    `json:"loan_id"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    any       `json:"payload,omitempty"`
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Nop discards events.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
