package service

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/freelance-arbitration/internal/models"
	"github.com/ignatzorin/freelance-arbitration/internal/repository/memory"
)

func TestAnalyticsService_EmptyStore(t *testing.T) {
	store := memory.NewStore()
	svc := NewAnalyticsService(store, store)

	da, err := svc.DisputeAnalytics(context.Background())
	require.NoError(t, err)
	assert.Zero(t, da.Total)
	assert.Zero(t, da.ResolutionRate)
	assert.Zero(t, da.AverageResolutionDays)
	assert.False(t, math.IsNaN(da.ResolutionRate))
	assert.Len(t, da.ByStatus, len(models.AllDisputeStatuses))

	ra, err := svc.ReviewAnalytics(context.Background())
	require.NoError(t, err)
	assert.Zero(t, ra.Total)
	assert.Zero(t, ra.AverageRating)
	assert.Zero(t, ra.ApprovalRate)
	assert.Equal(t, map[int]int{1: 0, 2: 0, 3: 0, 4: 0, 5: 0}, ra.RatingDistribution)
}

func disputeIn(status models.DisputeStatus, kind models.DisputeKind, created time.Time, resolvedAfter time.Duration) models.Dispute {
	d := models.Dispute{
		ID:        uuid.New(),
		Kind:      kind,
		Status:    status,
		CreatedAt: created,
		UpdatedAt: created,
		Timeline:  []models.TimelineEvent{{ID: uuid.New(), Kind: models.EventCreated, Timestamp: created}},
	}
	if resolvedAfter > 0 {
		at := created.Add(resolvedAfter)
		d.Timeline = append(d.Timeline, models.TimelineEvent{ID: uuid.New(), Kind: models.EventResolved, Timestamp: at})
		// Поздние изменения не должны влиять на время решения.
		d.UpdatedAt = at.Add(10 * 24 * time.Hour)
	}
	return d
}

func TestComputeDisputeAnalytics(t *testing.T) {
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	disputes := []models.Dispute{
		disputeIn(models.DisputeStatusOpen, models.DisputeKindOrder, created, 0),
		disputeIn(models.DisputeStatusUnderReview, models.DisputeKindPayment, created, 0),
		disputeIn(models.DisputeStatusEscalated, models.DisputeKindQuality, created, 0),
		disputeIn(models.DisputeStatusResolved, models.DisputeKindQuality, created, 2*24*time.Hour),
		disputeIn(models.DisputeStatusResolved, models.DisputeKindOrder, created, 4*24*time.Hour),
		disputeIn(models.DisputeStatusClosed, models.DisputeKindOrder, created, 30*24*time.Hour),
	}

	got := ComputeDisputeAnalytics(disputes)

	assert.Equal(t, 6, got.Total)
	assert.Equal(t, 1, got.ByStatus[models.DisputeStatusOpen])
	assert.Equal(t, 2, got.ByStatus[models.DisputeStatusResolved])
	assert.Equal(t, 1, got.ByStatus[models.DisputeStatusClosed])
	assert.Equal(t, 3, got.ByKind[models.DisputeKindOrder])
	assert.Equal(t, 0, got.ByKind[models.DisputeKindOther])
	assert.Equal(t, float64(3)/float64(6), got.ResolutionRate)
	// Закрытые споры в среднее время не входят.
	assert.Equal(t, 3.0, got.AverageResolutionDays)
}

func TestComputeReviewAnalytics(t *testing.T) {
	reviews := []models.Review{
		{Rating: 5, Status: models.ReviewStatusApproved},
		{Rating: 4, Status: models.ReviewStatusApproved},
		{Rating: 1, Status: models.ReviewStatusFlagged},
		{Rating: 3, Status: models.ReviewStatusPending},
	}

	got := ComputeReviewAnalytics(reviews)

	assert.Equal(t, 4, got.Total)
	assert.Equal(t, 3.25, got.AverageRating)
	assert.Equal(t, 1, got.FlaggedCount)
	assert.Equal(t, 1, got.PendingCount)
	assert.Equal(t, 0.5, got.ApprovalRate)
	assert.Equal(t, map[int]int{1: 1, 2: 0, 3: 1, 4: 1, 5: 1}, got.RatingDistribution)
}

func TestAnalyticsService_FromLiveRecords(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.createDispute(t)
	d := env.underReview(t)
	_, err := env.disputes.ResolveDispute(ctx, d.ID, moderator, ResolutionInput{Kind: models.ResolutionRefund, Decision: "Вернуть"})
	require.NoError(t, err)

	svc := NewAnalyticsService(env.store, env.store)
	got, err := svc.DisputeAnalytics(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Total)
	assert.Equal(t, 0.5, got.ResolutionRate)
	assert.GreaterOrEqual(t, got.AverageResolutionDays, 0.0)
}
