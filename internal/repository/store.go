package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/ignatzorin/freelance-arbitration/internal/models"
)

var (
	ErrDisputeNotFound = errors.New("dispute not found")
	ErrReviewNotFound  = errors.New("review not found")
	ErrSessionNotFound = errors.New("mediation session not found")
	ErrAlreadyExists   = errors.New("record already exists")
)

// DisputeFilter вторичные атрибуты для выборки споров.
type DisputeFilter struct {
	ParticipantID string
	Role          models.PartyRole
	Status        models.DisputeStatus
}

// Match проверяет спор на соответствие фильтру.
func (f DisputeFilter) Match(d *models.Dispute) bool {
	if f.Status != "" && d.Status != f.Status {
		return false
	}
	if f.ParticipantID == "" && f.Role == "" {
		return true
	}
	return partyMatches(d.Initiator, f) || partyMatches(d.Respondent, f)
}

func partyMatches(p models.Party, f DisputeFilter) bool {
	if f.ParticipantID != "" && p.ID != f.ParticipantID {
		return false
	}
	return f.Role == "" || p.Role == f.Role
}

// ReviewFilter вторичные атрибуты для выборки отзывов.
type ReviewFilter struct {
	TargetType     models.ReviewTargetType
	TargetID       string
	ReviewerID     string
	Status         models.ReviewStatus
	NeedsAttention bool
}

// Match проверяет отзыв на соответствие фильтру.
func (f ReviewFilter) Match(r *models.Review) bool {
	if f.TargetType != "" && r.TargetType != f.TargetType {
		return false
	}
	if f.TargetID != "" && r.TargetID != f.TargetID {
		return false
	}
	if f.ReviewerID != "" && r.ReviewerID != f.ReviewerID {
		return false
	}
	if f.Status != "" && r.Status != f.Status {
		return false
	}
	return !f.NeedsAttention || r.NeedsAttention()
}

// SessionFilter выборка сессий медиации.
type SessionFilter struct {
	DisputeID uuid.UUID
	Status    models.SessionStatus
}

// Match проверяет сессию на соответствие фильтру.
func (f SessionFilter) Match(s *models.MediationSession) bool {
	if f.DisputeID != uuid.Nil && s.DisputeID != f.DisputeID {
		return false
	}
	return f.Status == "" || s.Status == f.Status
}

// DisputeStore хранит споры вместе с доказательствами, журналом и решением.
type DisputeStore interface {
	CreateDispute(ctx context.Context, d *models.Dispute) error
	GetDispute(ctx context.Context, id uuid.UUID) (*models.Dispute, error)
	UpdateDispute(ctx context.Context, d *models.Dispute) error
	ListDisputes(ctx context.Context, filter DisputeFilter) ([]models.Dispute, error)
}

// ReviewStore хранит отзывы со статусом модерации, жалобами и ответом.
type ReviewStore interface {
	CreateReview(ctx context.Context, r *models.Review) error
	GetReview(ctx context.Context, id uuid.UUID) (*models.Review, error)
	UpdateReview(ctx context.Context, r *models.Review) error
	ListReviews(ctx context.Context, filter ReviewFilter) ([]models.Review, error)
}

// SessionStore хранит сессии медиации.
type SessionStore interface {
	CreateSession(ctx context.Context, s *models.MediationSession) error
	GetSession(ctx context.Context, id uuid.UUID) (*models.MediationSession, error)
	UpdateSession(ctx context.Context, s *models.MediationSession) error
	ListSessions(ctx context.Context, filter SessionFilter) ([]models.MediationSession, error)
}

// RecordStore объединяет все хранилища. Бизнес-правил не содержит,
// выборки возвращаются в порядке создания.
type RecordStore interface {
	DisputeStore
	ReviewStore
	SessionStore
	Close(ctx context.Context) error
}
