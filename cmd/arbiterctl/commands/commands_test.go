package commands

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/freelance-arbitration/internal/models"
	"github.com/ignatzorin/freelance-arbitration/internal/service"
)

func TestPrintQueue(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, printQueue(&out, nil))
	assert.Contains(t, out.String(), "пуста")

	score := 0.42
	out.Reset()
	require.NoError(t, printQueue(&out, []models.Review{{
		ID:     uuid.New(),
		Status: models.ReviewStatusFlagged,
		Rating: 2,
		Title:  "Плохая коммуникация",
		Moderation: &models.ModerationStatus{
			Status:  models.ModerationReviewing,
			AIScore: &score,
			Flags:   []models.ReviewFlag{{Kind: models.FlagSpam}},
		},
	}}))
	assert.Contains(t, out.String(), "flagged")
	assert.Contains(t, out.String(), "0.42")
	assert.Contains(t, out.String(), "Плохая коммуникация")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "коротко", truncate("коротко", 10))
	assert.Equal(t, "длин…", truncate("длинный заголовок", 5))
}

func TestPrintAnalytics(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, printAnalytics(&out, analyticsReport{
		Disputes: models.DisputeAnalytics{
			Total:    2,
			ByStatus: map[models.DisputeStatus]int{models.DisputeStatusResolved: 1, models.DisputeStatusOpen: 1},
		},
		Reviews: models.ReviewAnalytics{Total: 1, AverageRating: 4, RatingDistribution: map[int]int{4: 1}},
	}))
	assert.Contains(t, out.String(), "СПОРЫ")
	assert.Contains(t, out.String(), "ОТЗЫВЫ")
	assert.Contains(t, out.String(), "4.00")
}

func TestTokenCmd(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("JWT_SECRET", "cli-test-secret")
	t.Setenv("STORE_DRIVER", "memory")

	var out bytes.Buffer
	TokenCmd.SetOut(&out)
	TokenCmd.SetArgs([]string{"moderator-7", "--role", "moderator", "--ttl", "1h"})
	require.NoError(t, TokenCmd.Execute())

	userID, role, err := service.NewTokenManager("cli-test-secret", time.Hour).ParseAccess(strings.TrimSpace(out.String()))
	require.NoError(t, err)
	assert.Equal(t, "moderator-7", userID)
	assert.Equal(t, service.RoleModerator, role)
}
