package models

import (
	"time"

	"github.com/google/uuid"
)

// MediationSession сессия медиации по эскалированному спору.
type MediationSession struct {
	ID           uuid.UUID      `json:"id"`
	DisputeID    uuid.UUID      `json:"dispute_id"`
	MediatorID   string         `json:"mediator_id"`
	MediatorName string         `json:"mediator_name"`
	ScheduledAt  time.Time      `json:"scheduled_at"`
	Duration     *int           `json:"duration_minutes,omitempty"`
	Channel      SessionChannel `json:"channel"`
	Status       SessionStatus  `json:"status"`
	Participants []string       `json:"participants"`
	Transcript   *string        `json:"transcript,omitempty"`
	Outcome      *string        `json:"outcome,omitempty"`
	NextSteps    []string       `json:"next_steps"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// Clone возвращает глубокую копию сессии.
func (s *MediationSession) Clone() *MediationSession {
	if s == nil {
		return nil
	}
	c := *s
	if s.Duration != nil {
		d := *s.Duration
		c.Duration = &d
	}
	c.Transcript = cloneString(s.Transcript)
	c.Outcome = cloneString(s.Outcome)
	c.Participants = cloneSlice(s.Participants)
	c.NextSteps = cloneSlice(s.NextSteps)
	return &c
}
