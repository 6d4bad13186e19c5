package postgres

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/freelance-arbitration/internal/models"
)

func TestJSONColumn_ScanNilResetsValue(t *testing.T) {
	col := jsonColumn[[]string]{V: []string{"stale"}}
	require.NoError(t, col.Scan(nil))
	assert.Nil(t, col.V)
}

func TestJSONColumn_ScanBytesAndString(t *testing.T) {
	var col jsonColumn[[]models.Evidence]
	require.NoError(t, col.Scan([]byte(`[{"type":"image","url":"a.png","verified":true}]`)))
	require.Len(t, col.V, 1)
	assert.Equal(t, models.EvidenceImage, col.V[0].Type)
	assert.True(t, col.V[0].Verified)

	var res jsonColumn[*models.Resolution]
	require.NoError(t, res.Scan(`null`))
	assert.Nil(t, res.V)
}

func TestJSONColumn_ScanRejectsUnknownType(t *testing.T) {
	var col jsonColumn[[]string]
	assert.Error(t, col.Scan(42))
}

func TestJSONColumn_Value(t *testing.T) {
	v, err := jsonColumn[[]string]{V: []string{"a", "b"}}.Value()
	require.NoError(t, err)
	assert.Equal(t, []byte(`["a","b"]`), v)
}

func TestDisputeRow_RoundTrip(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	amount := 1500.0
	mediator := "mediator-1"
	d := &models.Dispute{
		ID:          uuid.New(),
		Kind:        models.DisputeKindQuality,
		Status:      models.DisputeStatusEscalated,
		Priority:    models.PriorityCritical,
		Initiator:   models.Party{ID: "client-1", Role: models.RoleClient},
		Respondent:  models.Party{ID: "free-1", Role: models.RoleFreelancer},
		Title:       "Плохое качество",
		Description: "Макет не соответствует ТЗ",
		Amount:      &amount,
		Category:    "design",
		CreatedAt:   now,
		UpdatedAt:   now,
		MediatorID:  &mediator,
		Evidence:    []models.Evidence{{ID: uuid.New(), Type: models.EvidenceLink, URL: "https://x", UploadedAt: now}},
		Timeline:    []models.TimelineEvent{{ID: uuid.New(), Kind: models.EventCreated, Actor: "client-1", Timestamp: now}},
	}

	got := toDisputeRow(d).model()
	assert.Equal(t, d, got)
}

func TestReviewRow_DenormalizesModerationStatus(t *testing.T) {
	r := &models.Review{
		ID:         uuid.New(),
		Status:     models.ReviewStatusFlagged,
		Moderation: &models.ModerationStatus{Status: models.ModerationReviewing},
	}
	row := toReviewRow(r)
	require.NotNil(t, row.ModerationStatus)
	assert.Equal(t, "reviewing", *row.ModerationStatus)

	row = toReviewRow(&models.Review{ID: uuid.New()})
	assert.Nil(t, row.ModerationStatus)
}

func TestSessionRow_RoundTrip(t *testing.T) {
	now := time.Date(2026, 3, 3, 12, 0, 0, 0, time.UTC)
	duration := 60
	s := &models.MediationSession{
		ID:           uuid.New(),
		DisputeID:    uuid.New(),
		MediatorID:   "mediator-1",
		MediatorName: "Support Mediator",
		ScheduledAt:  now,
		Duration:     &duration,
		Channel:      models.ChannelVideo,
		Status:       models.SessionScheduled,
		Participants: []string{"client-1", "free-1"},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	assert.Equal(t, s, toSessionRow(s).model())
}
