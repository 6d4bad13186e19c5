package models

import (
	"time"

	"github.com/google/uuid"
)

// Party участник спора.
type Party struct {
	ID   string    `json:"id"`
	Role PartyRole `json:"role"`
}

// Evidence доказательство, приложенное к спору.
type Evidence struct {
	ID          uuid.UUID    `json:"id"`
	Type        EvidenceType `json:"type"`
	URL         string       `json:"url"`
	Description string       `json:"description"`
	UploadedBy  string       `json:"uploaded_by"`
	UploadedAt  time.Time    `json:"uploaded_at"`
	Verified    bool         `json:"verified"`
	Checksum    string       `json:"checksum,omitempty"`
}

// TimelineEvent неизменяемая запись журнала спора.
type TimelineEvent struct {
	ID          uuid.UUID         `json:"id"`
	Kind        TimelineEventKind `json:"kind"`
	Description string            `json:"description"`
	Actor       string            `json:"actor"`
	Timestamp   time.Time         `json:"timestamp"`
}

// Resolution решение по спору.
type Resolution struct {
	Kind             ResolutionKind `json:"kind"`
	Decision         string         `json:"decision"`
	RefundAmount     *float64       `json:"refund_amount,omitempty"`
	RefundPercentage *float64       `json:"refund_percentage,omitempty"`
	ClientAgreed     bool           `json:"client_agreed"`
	FreelancerAgreed bool           `json:"freelancer_agreed"`
	ImplementedAt    *time.Time     `json:"implemented_at,omitempty"`
}

type Dispute struct {
	ID          uuid.UUID       `json:"id"`
	Kind        DisputeKind     `json:"kind"`
	Status      DisputeStatus   `json:"status"`
	Priority    DisputePriority `json:"priority"`
	Initiator   Party           `json:"initiator"`
	Respondent  Party           `json:"respondent"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Amount      *float64        `json:"amount,omitempty"`
	Category    string          `json:"category"`
	OrderID     *string         `json:"order_id,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	Deadline    *time.Time      `json:"deadline,omitempty"`
	MediatorID  *string         `json:"mediator_id,omitempty"`
	Resolution  *Resolution     `json:"resolution,omitempty"`
	Evidence    []Evidence      `json:"evidence"`
	Timeline    []TimelineEvent `json:"timeline"`
}

// IsParticipant проверяет, является ли пользователь стороной спора.
func (d *Dispute) IsParticipant(userID string) bool {
	return d.Initiator.ID == userID || d.Respondent.ID == userID
}

// PartyRoleOf возвращает роль пользователя в споре.
func (d *Dispute) PartyRoleOf(userID string) (PartyRole, bool) {
	switch userID {
	case d.Initiator.ID:
		return d.Initiator.Role, true
	case d.Respondent.ID:
		return d.Respondent.Role, true
	}
	return "", false
}

// LastEvent возвращает последнее событие указанного типа.
func (d *Dispute) LastEvent(kind TimelineEventKind) (TimelineEvent, bool) {
	for i := len(d.Timeline) - 1; i >= 0; i-- {
		if d.Timeline[i].Kind == kind {
			return d.Timeline[i], true
		}
	}
	return TimelineEvent{}, false
}

// Clone возвращает глубокую копию спора.
func (d *Dispute) Clone() *Dispute {
	if d == nil {
		return nil
	}
	c := *d
	c.Amount = cloneFloat(d.Amount)
	c.OrderID = cloneString(d.OrderID)
	c.Deadline = cloneTime(d.Deadline)
	c.MediatorID = cloneString(d.MediatorID)
	if d.Resolution != nil {
		r := *d.Resolution
		r.RefundAmount = cloneFloat(d.Resolution.RefundAmount)
		r.RefundPercentage = cloneFloat(d.Resolution.RefundPercentage)
		r.ImplementedAt = cloneTime(d.Resolution.ImplementedAt)
		c.Resolution = &r
	}
	c.Evidence = cloneSlice(d.Evidence)
	c.Timeline = cloneSlice(d.Timeline)
	return &c
}

func cloneFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	x := *v
	return &x
}

func cloneString(v *string) *string {
	if v == nil {
		return nil
	}
	x := *v
	return &x
}

func cloneTime(v *time.Time) *time.Time {
	if v == nil {
		return nil
	}
	x := *v
	return &x
}

// cloneSlice копирует срез, сохраняя различие между nil и пустым.
func cloneSlice[T any](v []T) []T {
	if v == nil {
		return nil
	}
	out := make([]T, len(v))
	copy(out, v)
	return out
}
