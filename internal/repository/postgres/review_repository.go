package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/freelance-arbitration/internal/models"
	"github.com/ignatzorin/freelance-arbitration/internal/repository"
	"github.com/ignatzorin/freelance-arbitration/internal/repository/common"
)

type reviewRow struct {
	ID               uuid.UUID                           `db:"id"`
	TargetType       string                              `db:"target_type"`
	TargetID         string                              `db:"target_id"`
	ReviewerID       string                              `db:"reviewer_id"`
	ReviewerName     string                              `db:"reviewer_name"`
	ReviewerRole     string                              `db:"reviewer_role"`
	Rating           int                                 `db:"rating"`
	Title            string                              `db:"title"`
	Content          string                              `db:"content"`
	Pros             jsonColumn[[]string]                `db:"pros"`
	Cons             jsonColumn[[]string]                `db:"cons"`
	Recommend        bool                                `db:"recommend"`
	VerifiedPurchase bool                                `db:"verified_purchase"`
	HelpfulCount     int                                 `db:"helpful_count"`
	NotHelpfulCount  int                                 `db:"not_helpful_count"`
	Status           string                              `db:"status"`
	OrderID          *string                             `db:"order_id"`
	CreatedAt        time.Time                           `db:"created_at"`
	UpdatedAt        time.Time                           `db:"updated_at"`
	ModerationStatus *string                             `db:"moderation_status"`
	Moderation       jsonColumn[*models.ModerationStatus] `db:"moderation"`
	Response         jsonColumn[*models.ReviewResponse]   `db:"response"`
}

func toReviewRow(r *models.Review) reviewRow {
	row := reviewRow{
		ID:               r.ID,
		TargetType:       string(r.TargetType),
		TargetID:         r.TargetID,
		ReviewerID:       r.ReviewerID,
		ReviewerName:     r.ReviewerName,
		ReviewerRole:     string(r.ReviewerRole),
		Rating:           r.Rating,
		Title:            r.Title,
		Content:          r.Content,
		Pros:             jsonColumn[[]string]{V: r.Pros},
		Cons:             jsonColumn[[]string]{V: r.Cons},
		Recommend:        r.Recommend,
		VerifiedPurchase: r.VerifiedPurchase,
		HelpfulCount:     r.HelpfulCount,
		NotHelpfulCount:  r.NotHelpfulCount,
		Status:           string(r.Status),
		OrderID:          r.OrderID,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
		Moderation:       jsonColumn[*models.ModerationStatus]{V: r.Moderation},
		Response:         jsonColumn[*models.ReviewResponse]{V: r.Response},
	}
	// Статус модерации дублируется в отдельной колонке для индекса очереди.
	if r.Moderation != nil {
		status := string(r.Moderation.Status)
		row.ModerationStatus = &status
	}
	return row
}

func (r reviewRow) model() *models.Review {
	return &models.Review{
		ID:               r.ID,
		TargetType:       models.ReviewTargetType(r.TargetType),
		TargetID:         r.TargetID,
		ReviewerID:       r.ReviewerID,
		ReviewerName:     r.ReviewerName,
		ReviewerRole:     models.PartyRole(r.ReviewerRole),
		Rating:           r.Rating,
		Title:            r.Title,
		Content:          r.Content,
		Pros:             r.Pros.V,
		Cons:             r.Cons.V,
		Recommend:        r.Recommend,
		VerifiedPurchase: r.VerifiedPurchase,
		HelpfulCount:     r.HelpfulCount,
		NotHelpfulCount:  r.NotHelpfulCount,
		Status:           models.ReviewStatus(r.Status),
		OrderID:          r.OrderID,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
		Moderation:       r.Moderation.V,
		Response:         r.Response.V,
	}
}

// CreateReview создаёт отзыв.
func (s *Store) CreateReview(ctx context.Context, r *models.Review) error {
	query := `
		INSERT INTO reviews (id, target_type, target_id, reviewer_id, reviewer_name, reviewer_role, rating, title,
			content, pros, cons, recommend, verified_purchase, helpful_count, not_helpful_count, status, order_id,
			created_at, updated_at, moderation_status, moderation, response)
		VALUES (:id, :target_type, :target_id, :reviewer_id, :reviewer_name, :reviewer_role, :rating, :title,
			:content, :pros, :cons, :recommend, :verified_purchase, :helpful_count, :not_helpful_count, :status, :order_id,
			:created_at, :updated_at, :moderation_status, :moderation, :response)
	`
	if _, err := s.db.NamedExecContext(ctx, query, toReviewRow(r)); err != nil {
		return fmt.Errorf("review repository: create %w", translateInsertError(err))
	}
	return nil
}

// GetReview возвращает отзыв по ID.
func (s *Store) GetReview(ctx context.Context, id uuid.UUID) (*models.Review, error) {
	row, err := common.GetByID[reviewRow](ctx, s.db, tableReviews, id, repository.ErrReviewNotFound)
	if err != nil {
		return nil, err
	}
	return row.model(), nil
}

// UpdateReview перезаписывает отзыв целиком.
func (s *Store) UpdateReview(ctx context.Context, r *models.Review) error {
	query := `
		UPDATE reviews SET rating = :rating, title = :title, content = :content, pros = :pros, cons = :cons,
			recommend = :recommend, helpful_count = :helpful_count, not_helpful_count = :not_helpful_count,
			status = :status, updated_at = :updated_at, moderation_status = :moderation_status,
			moderation = :moderation, response = :response
		WHERE id = :id
	`
	res, err := s.db.NamedExecContext(ctx, query, toReviewRow(r))
	if err != nil {
		return fmt.Errorf("review repository: update %w", err)
	}
	return common.ExpectAffected(res, repository.ErrReviewNotFound)
}

// ListReviews возвращает отзывы по объекту, автору и статусу.
func (s *Store) ListReviews(ctx context.Context, filter repository.ReviewFilter) ([]models.Review, error) {
	w := &common.Where{}
	if filter.TargetType != "" {
		w.Add("target_type = $%d", string(filter.TargetType))
	}
	if filter.TargetID != "" {
		w.Add("target_id = $%d", filter.TargetID)
	}
	if filter.ReviewerID != "" {
		w.Add("reviewer_id = $%d", filter.ReviewerID)
	}
	if filter.Status != "" {
		w.Add("status = $%d", string(filter.Status))
	}
	if filter.NeedsAttention {
		w.Raw(`(status IN ('pending', 'flagged') OR moderation_status = 'reviewing')`)
	}

	rows, err := common.SelectOrdered[reviewRow](ctx, s.db, tableReviews, w)
	if err != nil {
		return nil, fmt.Errorf("review repository: list %w", err)
	}

	reviews := make([]models.Review, 0, len(rows))
	for _, row := range rows {
		reviews = append(reviews, *row.model())
	}
	return reviews, nil
}
