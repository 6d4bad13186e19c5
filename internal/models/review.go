package models

import (
	"time"

	"github.com/google/uuid"
)

// ReviewFlag жалоба на отзыв.
type ReviewFlag struct {
	ID        uuid.UUID `json:"id"`
	Kind      FlagKind  `json:"kind"`
	FlaggedBy string    `json:"flagged_by"`
	Reason    string    `json:"reason"`
	CreatedAt time.Time `json:"created_at"`
	Reviewed  bool      `json:"reviewed"`
	Action    *string   `json:"action,omitempty"`
}

// ModerationStatus состояние модерации отзыва.
type ModerationStatus struct {
	Status      ModerationState `json:"status"`
	Reason      *string         `json:"reason,omitempty"`
	ModeratorID *string         `json:"moderator_id,omitempty"`
	ModeratedAt *time.Time      `json:"moderated_at,omitempty"`
	Flags       []ReviewFlag    `json:"flags"`
	AIScore     *float64        `json:"ai_score,omitempty"`
	AIFlags     []string        `json:"ai_flags"`
}

// ReviewResponse ответ на отзыв.
type ReviewResponse struct {
	ResponderID   string    `json:"responder_id"`
	ResponderName string    `json:"responder_name"`
	Content       string    `json:"content"`
	CreatedAt     time.Time `json:"created_at"`
	HelpfulCount  int       `json:"helpful_count"`
}

type Review struct {
	ID               uuid.UUID         `json:"id"`
	TargetType       ReviewTargetType  `json:"target_type"`
	TargetID         string            `json:"target_id"`
	ReviewerID       string            `json:"reviewer_id"`
	ReviewerName     string            `json:"reviewer_name"`
	ReviewerRole     PartyRole         `json:"reviewer_role"`
	Rating           int               `json:"rating"`
	Title            string            `json:"title"`
	Content          string            `json:"content"`
	Pros             []string          `json:"pros"`
	Cons             []string          `json:"cons"`
	Recommend        bool              `json:"recommend"`
	VerifiedPurchase bool              `json:"verified_purchase"`
	HelpfulCount     int               `json:"helpful_count"`
	NotHelpfulCount  int               `json:"not_helpful_count"`
	Status           ReviewStatus      `json:"status"`
	OrderID          *string           `json:"order_id,omitempty"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
	Moderation       *ModerationStatus `json:"moderation_status,omitempty"`
	Response         *ReviewResponse   `json:"response,omitempty"`
}

// NeedsAttention сообщает, должен ли отзыв попасть в очередь модерации.
func (r *Review) NeedsAttention() bool {
	if r.Status == ReviewStatusPending || r.Status == ReviewStatusFlagged {
		return true
	}
	return r.Moderation != nil && r.Moderation.Status == ModerationReviewing
}

// UnresolvedFlags возвращает количество нерассмотренных жалоб.
func (r *Review) UnresolvedFlags() int {
	if r.Moderation == nil {
		return 0
	}
	n := 0
	for _, f := range r.Moderation.Flags {
		if !f.Reviewed {
			n++
		}
	}
	return n
}

// Clone возвращает глубокую копию отзыва.
func (r *Review) Clone() *Review {
	if r == nil {
		return nil
	}
	c := *r
	c.Pros = cloneSlice(r.Pros)
	c.Cons = cloneSlice(r.Cons)
	c.OrderID = cloneString(r.OrderID)
	if r.Moderation != nil {
		m := *r.Moderation
		m.Reason = cloneString(r.Moderation.Reason)
		m.ModeratorID = cloneString(r.Moderation.ModeratorID)
		m.ModeratedAt = cloneTime(r.Moderation.ModeratedAt)
		m.AIScore = cloneFloat(r.Moderation.AIScore)
		m.AIFlags = cloneSlice(r.Moderation.AIFlags)
		m.Flags = cloneSlice(r.Moderation.Flags)
		for i := range m.Flags {
			m.Flags[i].Action = cloneString(m.Flags[i].Action)
		}
		c.Moderation = &m
	}
	if r.Response != nil {
		resp := *r.Response
		c.Response = &resp
	}
	return &c
}
