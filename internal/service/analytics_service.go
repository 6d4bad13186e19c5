package service

import (
	"context"
	"math"
	"time"

	"github.com/ignatzorin/freelance-arbitration/internal/models"
	"github.com/ignatzorin/freelance-arbitration/internal/repository"
)

const day = 24 * time.Hour

// AnalyticsService пересчитывает статистику по текущему состоянию хранилища.
// Счётчики нигде не кэшируются.
type AnalyticsService struct {
	disputes repository.DisputeStore
	reviews  repository.ReviewStore
}

func NewAnalyticsService(disputes repository.DisputeStore, reviews repository.ReviewStore) *AnalyticsService {
	return &AnalyticsService{disputes: disputes, reviews: reviews}
}

// DisputeAnalytics считает статистику по всем спорам.
func (s *AnalyticsService) DisputeAnalytics(ctx context.Context) (models.DisputeAnalytics, error) {
	disputes, err := s.disputes.ListDisputes(ctx, repository.DisputeFilter{})
	if err != nil {
		return models.DisputeAnalytics{}, storeErr(err)
	}
	return ComputeDisputeAnalytics(disputes), nil
}

// ReviewAnalytics считает статистику по всем отзывам.
func (s *AnalyticsService) ReviewAnalytics(ctx context.Context) (models.ReviewAnalytics, error) {
	reviews, err := s.reviews.ListReviews(ctx, repository.ReviewFilter{})
	if err != nil {
		return models.ReviewAnalytics{}, storeErr(err)
	}
	return ComputeReviewAnalytics(reviews), nil
}

// ComputeDisputeAnalytics среднее время решения считается только по спорам
// в статусе resolved: от открытия до записи resolved в журнале.
func ComputeDisputeAnalytics(disputes []models.Dispute) models.DisputeAnalytics {
	out := models.DisputeAnalytics{
		Total:    len(disputes),
		ByStatus: make(map[models.DisputeStatus]int, len(models.AllDisputeStatuses)),
		ByKind:   make(map[models.DisputeKind]int, len(models.ValidDisputeKinds)),
	}
	for _, st := range models.AllDisputeStatuses {
		out.ByStatus[st] = 0
	}
	for kind := range models.ValidDisputeKinds {
		out.ByKind[kind] = 0
	}

	var (
		resolvedDays float64
		resolvedN    int
	)
	for i := range disputes {
		d := &disputes[i]
		out.ByStatus[d.Status]++
		out.ByKind[d.Kind]++

		if d.Status != models.DisputeStatusResolved {
			continue
		}
		resolvedAt := d.UpdatedAt
		if ev, ok := d.LastEvent(models.EventResolved); ok {
			resolvedAt = ev.Timestamp
		}
		resolvedDays += max(0, resolvedAt.Sub(d.CreatedAt).Hours()/day.Hours())
		resolvedN++
	}

	if resolvedN > 0 {
		out.AverageResolutionDays = round2(resolvedDays / float64(resolvedN))
	}
	if out.Total > 0 {
		done := out.ByStatus[models.DisputeStatusResolved] + out.ByStatus[models.DisputeStatusClosed]
		out.ResolutionRate = float64(done) / float64(out.Total)
	}
	return out
}

// ComputeReviewAnalytics гистограмма оценок всегда содержит все пять корзин.
func ComputeReviewAnalytics(reviews []models.Review) models.ReviewAnalytics {
	out := models.ReviewAnalytics{
		Total:              len(reviews),
		RatingDistribution: map[int]int{1: 0, 2: 0, 3: 0, 4: 0, 5: 0},
		ByStatus: map[models.ReviewStatus]int{
			models.ReviewStatusPending:  0,
			models.ReviewStatusApproved: 0,
			models.ReviewStatusFlagged:  0,
			models.ReviewStatusRemoved:  0,
		},
	}
	if out.Total == 0 {
		return out
	}

	ratingSum := 0
	for i := range reviews {
		r := &reviews[i]
		rating := ClampRating(r.Rating)
		ratingSum += rating
		out.RatingDistribution[rating]++
		out.ByStatus[r.Status]++
	}

	out.FlaggedCount = out.ByStatus[models.ReviewStatusFlagged]
	out.PendingCount = out.ByStatus[models.ReviewStatusPending]
	out.AverageRating = round2(float64(ratingSum) / float64(out.Total))
	out.ApprovalRate = float64(out.ByStatus[models.ReviewStatusApproved]) / float64(out.Total)
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
