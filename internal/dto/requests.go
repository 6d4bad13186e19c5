package dto

import (
	"github.com/google/uuid"
)

// PartyRequest represents the other side of a dispute
type PartyRequest struct {
	ID   string `json:"id" binding:"required"`
	Role string `json:"role" binding:"required"`
}

// CreateDisputeRequest represents the request to open a dispute.
// The initiator is always the authenticated user.
type CreateDisputeRequest struct {
	Kind          string       `json:"kind" binding:"required"`
	InitiatorRole string       `json:"initiator_role" binding:"required"`
	Respondent    PartyRequest `json:"respondent" binding:"required"`
	Title         string       `json:"title" binding:"required"`
	Description   string       `json:"description" binding:"required"`
	Amount        *float64     `json:"amount"`
	Category      string       `json:"category"`
	OrderID       *string      `json:"order_id"`
}

// RespondDisputeRequest represents a party's answer in a dispute
type RespondDisputeRequest struct {
	Text string `json:"text" binding:"required"`
}

// AddEvidenceRequest represents evidence attached by link
type AddEvidenceRequest struct {
	Type        string `json:"type" binding:"required"`
	URL         string `json:"url" binding:"required"`
	Description string `json:"description"`
}

// EscalateDisputeRequest represents the request to hand a dispute to a mediator
type EscalateDisputeRequest struct {
	Reason string `json:"reason"`
}

// ResolveDisputeRequest represents a decision on a dispute
type ResolveDisputeRequest struct {
	Kind             string   `json:"kind" binding:"required"`
	Decision         string   `json:"decision" binding:"required"`
	RefundAmount     *float64 `json:"refund_amount"`
	RefundPercentage *float64 `json:"refund_percentage"`
}

// SubmitReviewRequest represents the request to leave a review
type SubmitReviewRequest struct {
	TargetType       string   `json:"target_type" binding:"required"`
	TargetID         string   `json:"target_id" binding:"required"`
	ReviewerName     string   `json:"reviewer_name"`
	ReviewerRole     string   `json:"reviewer_role" binding:"required"`
	Rating           int      `json:"rating" binding:"required"`
	Title            string   `json:"title" binding:"required"`
	Content          string   `json:"content" binding:"required"`
	Pros             []string `json:"pros"`
	Cons             []string `json:"cons"`
	Recommend        bool     `json:"recommend"`
	VerifiedPurchase bool     `json:"verified_purchase"`
	OrderID          *string  `json:"order_id"`
}

// FlagReviewRequest represents a complaint about a review
type FlagReviewRequest struct {
	Kind   string `json:"kind" binding:"required"`
	Reason string `json:"reason"`
}

// ModerateReviewRequest represents a moderator decision
type ModerateReviewRequest struct {
	Action string `json:"action" binding:"required"`
	Reason string `json:"reason"`
}

// RespondReviewRequest represents an answer to a review
type RespondReviewRequest struct {
	ResponderName string `json:"responder_name"`
	Content       string `json:"content" binding:"required"`
}

// HelpfulVoteRequest represents a helpful/not helpful vote
type HelpfulVoteRequest struct {
	Helpful *bool `json:"helpful" binding:"required"`
}

// ScheduleSessionRequest represents the request to schedule a mediation session
type ScheduleSessionRequest struct {
	DisputeID uuid.UUID `json:"dispute_id" binding:"required"`
}

// CompleteSessionRequest represents mediation session results
type CompleteSessionRequest struct {
	Outcome    string   `json:"outcome" binding:"required"`
	Transcript *string  `json:"transcript"`
	NextSteps  []string `json:"next_steps"`
	Duration   *int     `json:"duration_minutes"`
}
