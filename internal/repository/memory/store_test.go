package memory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/freelance-arbitration/internal/models"
	"github.com/ignatzorin/freelance-arbitration/internal/repository"
)

func newDispute(initiator string, created time.Time) *models.Dispute {
	return &models.Dispute{
		ID:         uuid.New(),
		Status:     models.DisputeStatusOpen,
		Initiator:  models.Party{ID: initiator, Role: models.RoleClient},
		Respondent: models.Party{ID: "f1", Role: models.RoleFreelancer},
		CreatedAt:  created,
		Timeline:   []models.TimelineEvent{{ID: uuid.New(), Kind: models.EventCreated}},
	}
}

func TestStore_DisputeCRUD(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	d := newDispute("c1", time.Now())

	require.NoError(t, s.CreateDispute(ctx, d))
	assert.ErrorIs(t, s.CreateDispute(ctx, d), repository.ErrAlreadyExists)

	got, err := s.GetDispute(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, d.ID, got.ID)

	got.Status = models.DisputeStatusUnderReview
	require.NoError(t, s.UpdateDispute(ctx, got))

	again, err := s.GetDispute(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, models.DisputeStatusUnderReview, again.Status)

	_, err = s.GetDispute(ctx, uuid.New())
	assert.ErrorIs(t, err, repository.ErrDisputeNotFound)
	assert.ErrorIs(t, s.UpdateDispute(ctx, newDispute("c2", time.Now())), repository.ErrDisputeNotFound)
}

func TestStore_ReturnsIsolatedCopies(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	d := newDispute("c1", time.Now())
	require.NoError(t, s.CreateDispute(ctx, d))

	// Изменение исходного объекта и полученной копии не должно влиять на хранилище.
	d.Timeline = append(d.Timeline, models.TimelineEvent{Kind: models.EventResponded})
	got, err := s.GetDispute(ctx, d.ID)
	require.NoError(t, err)
	got.Timeline[0].Kind = models.EventClosed

	stored, err := s.GetDispute(ctx, d.ID)
	require.NoError(t, err)
	require.Len(t, stored.Timeline, 1)
	assert.Equal(t, models.EventCreated, stored.Timeline[0].Kind)
}

func TestStore_ListDisputesOrderedAndFiltered(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	now := time.Now()
	later := newDispute("c1", now.Add(time.Minute))
	earlier := newDispute("c1", now)
	other := newDispute("c2", now)
	for _, d := range []*models.Dispute{later, earlier, other} {
		require.NoError(t, s.CreateDispute(ctx, d))
	}

	list, err := s.ListDisputes(ctx, repository.DisputeFilter{ParticipantID: "c1"})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, earlier.ID, list[0].ID)
	assert.Equal(t, later.ID, list[1].ID)
}

func TestStore_ReviewQueueFilter(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	pending := &models.Review{ID: uuid.New(), Status: models.ReviewStatusPending,
		Moderation: &models.ModerationStatus{Status: models.ModerationPending}}
	approved := &models.Review{ID: uuid.New(), Status: models.ReviewStatusApproved,
		Moderation: &models.ModerationStatus{Status: models.ModerationApproved}}
	require.NoError(t, s.CreateReview(ctx, pending))
	require.NoError(t, s.CreateReview(ctx, approved))

	queue, err := s.ListReviews(ctx, repository.ReviewFilter{NeedsAttention: true})
	require.NoError(t, err)
	require.Len(t, queue, 1)
	assert.Equal(t, pending.ID, queue[0].ID)
}

func TestStore_Sessions(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	disputeID := uuid.New()
	m := &models.MediationSession{ID: uuid.New(), DisputeID: disputeID, Status: models.SessionScheduled}
	require.NoError(t, s.CreateSession(ctx, m))

	m.Status = models.SessionCancelled
	require.NoError(t, s.UpdateSession(ctx, m))

	list, err := s.ListSessions(ctx, repository.SessionFilter{DisputeID: disputeID})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, models.SessionCancelled, list[0].Status)

	_, err = s.GetSession(ctx, uuid.New())
	assert.ErrorIs(t, err, repository.ErrSessionNotFound)
}
