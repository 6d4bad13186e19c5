// Package events доставляет события жизненного цикла споров и отзывов
// внешним потребителям (сервис уведомлений, WebSocket).
package events

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Типы событий.
const (
	DisputeCreated            = "dispute.created"
	DisputeResponded          = "dispute.responded"
	DisputeEvidenceAdded      = "dispute.evidence_added"
	DisputeEvidenceVerified   = "dispute.evidence_verified"
	DisputeEscalated          = "dispute.escalated"
	DisputeResolved           = "dispute.resolved"
	DisputeResolutionAccepted = "dispute.resolution_accepted"
	DisputeClosed             = "dispute.closed"

	ReviewSubmitted = "review.submitted"
	ReviewFlagged   = "review.flagged"
	ReviewModerated = "review.moderated"
	ReviewResponded = "review.responded"

	MediationScheduled = "mediation.scheduled"
	MediationUpdated   = "mediation.updated"
)

// Event событие о зафиксированном изменении записи.
type Event struct {
	Type       string    `json:"type"`
	RecordID   uuid.UUID `json:"record_id"`
	Actor      string    `json:"actor,omitempty"`
	Recipients []string  `json:"recipients,omitempty"`
	// Roles роли, всем подключённым носителям которых событие тоже адресовано.
	Roles      []string  `json:"roles,omitempty"`
	Data       any       `json:"data,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Publisher доставляет события. Реализации не должны долго блокироваться.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Nop игнорирует события.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }

// Multi рассылает событие всем издателям и собирает ошибки.
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, e Event) error {
	var errs []error
	for _, p := range m {
		if p == nil {
			continue
		}
		if err := p.Publish(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
