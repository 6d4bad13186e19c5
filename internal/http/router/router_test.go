package router

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/freelance-arbitration/internal/config"
	"github.com/ignatzorin/freelance-arbitration/internal/events"
	"github.com/ignatzorin/freelance-arbitration/internal/http/handlers"
	"github.com/ignatzorin/freelance-arbitration/internal/http/middleware"
	"github.com/ignatzorin/freelance-arbitration/internal/logger"
	"github.com/ignatzorin/freelance-arbitration/internal/models"
	"github.com/ignatzorin/freelance-arbitration/internal/repository/memory"
	"github.com/ignatzorin/freelance-arbitration/internal/scoring"
	"github.com/ignatzorin/freelance-arbitration/internal/service"
	"github.com/ignatzorin/freelance-arbitration/internal/storage"
	"github.com/ignatzorin/freelance-arbitration/internal/ws"
)

func init() {
	gin.SetMode(gin.TestMode)
	logger.Discard()
}

type testServer struct {
	t      *testing.T
	engine *gin.Engine
	tokens *service.TokenManager
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	cfg := &config.Config{
		Env:             "test",
		AllowedOrigins:  []string{"http://localhost:3000"},
		RateLimitLimit:  1000,
		RateLimitPeriod: time.Minute,
	}
	store := memory.NewStore()
	tokens := service.NewTokenManager("router-test-secret", time.Hour)

	mediation := service.NewMediationService(store, store, events.Nop{}, service.MediationConfig{
		LeadTime:  48 * time.Hour,
		Mediators: []config.Mediator{{ID: "mediator-1", Name: "Anna"}},
	})
	disputes := service.NewDisputeService(store, mediation, events.Nop{}, 7*24*time.Hour)
	// Низкая оценка оставляет отзыв в очереди модерации
	reviews := service.NewReviewService(store, scoring.Func(func(context.Context, string) (scoring.Assessment, error) {
		return scoring.Assessment{Score: 0.3}, nil
	}), events.Nop{}, service.ReviewConfig{
		ScoringTimeout:       time.Second,
		AutoApproveThreshold: 0.8,
		AutoApproveDelay:     time.Hour,
	})
	t.Cleanup(reviews.Close)

	evidence, err := storage.NewLocalStorage(t.TempDir(), 1)
	require.NoError(t, err)
	rateStore, err := middleware.NewRateLimitStore(nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	hub := ws.NewHub(ctx)

	engine := SetupRouter(cfg, tokens, rateStore,
		handlers.NewHealthHandler(map[string]handlers.HealthCheck{
			"store": func(context.Context) error { return nil },
		}),
		handlers.NewWSHandler(hub, tokens, cfg.AllowedOrigins),
		handlers.NewDisputeHandler(disputes, evidence),
		handlers.NewReviewHandler(reviews),
		handlers.NewMediationHandler(mediation, disputes),
		handlers.NewAnalyticsHandler(service.NewAnalyticsService(store, store)),
	)
	return &testServer{t: t, engine: engine, tokens: tokens}
}

func (s *testServer) token(userID, role string) string {
	token, err := s.tokens.Issue(userID, role)
	require.NoError(s.t, err)
	return token
}

func (s *testServer) do(method, path, token string, body any) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	w := s.do(http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decode[handlers.HealthResponse](t, w)
	assert.Equal(t, "healthy", body.Status)
	assert.Equal(t, "healthy", body.Checks["store"])
}

func TestDisputeLifecycleOverHTTP(t *testing.T) {
	s := newTestServer(t)
	client := s.token("client-1", service.RoleClient)
	freelancer := s.token("freelancer-1", service.RoleFreelancer)
	outsider := s.token("stranger", service.RoleClient)
	moderator := s.token("moderator-1", service.RoleModerator)

	w := s.do(http.MethodPost, "/api/disputes", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodPost, "/api/disputes", client, map[string]any{
		"kind":           "quality",
		"initiator_role": "client",
		"respondent":     map[string]string{"id": "freelancer-1", "role": "freelancer"},
		"title":          "Качество работы",
		"description":    "Сайт не соответствует ТЗ",
		"amount":         1500,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	dispute := decode[models.Dispute](t, w)
	assert.Equal(t, models.DisputeStatusOpen, dispute.Status)
	assert.Equal(t, models.PriorityHigh, dispute.Priority)
	base := "/api/disputes/" + dispute.ID.String()

	w = s.do(http.MethodGet, base, outsider, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(http.MethodPost, base+"/responses", freelancer, map[string]string{"text": "Всё сделано по ТЗ"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, models.DisputeStatusUnderReview, decode[models.Dispute](t, w).Status)

	resolution := map[string]any{"kind": "partial-refund", "decision": "Вернуть половину", "refund_percentage": 50}
	w = s.do(http.MethodPost, base+"/resolve", client, resolution)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(http.MethodPost, base+"/resolve", moderator, resolution)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(http.MethodPost, base+"/escalate", client, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "INVALID_STATE", decode[map[string]string](t, w)["code"])

	for _, token := range []string{client, freelancer} {
		w = s.do(http.MethodPost, base+"/accept", token, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}
	accepted := decode[models.Dispute](t, w)
	require.NotNil(t, accepted.Resolution)
	assert.NotNil(t, accepted.Resolution.ImplementedAt)

	w = s.do(http.MethodPost, base+"/close", client, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.DisputeStatusClosed, decode[models.Dispute](t, w).Status)

	w = s.do(http.MethodGet, "/api/disputes", outsider, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(0), decode[map[string]any](t, w)["pagination"].(map[string]any)["total"])

	w = s.do(http.MethodGet, "/api/disputes?status=closed", moderator, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), decode[map[string]any](t, w)["pagination"].(map[string]any)["total"])
}

func TestCreateDispute_ValidationError(t *testing.T) {
	s := newTestServer(t)
	w := s.do(http.MethodPost, "/api/disputes", s.token("client-1", service.RoleClient), map[string]any{
		"kind":           "unknown",
		"initiator_role": "client",
		"respondent":     map[string]string{"id": "freelancer-1", "role": "freelancer"},
		"title":          "Заголовок",
		"description":    "Описание",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", decode[map[string]string](t, w)["code"])
}

func TestInvalidUUIDParam(t *testing.T) {
	s := newTestServer(t)
	w := s.do(http.MethodGet, "/api/disputes/not-a-uuid", s.token("client-1", service.RoleClient), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEscalationSchedulesVisibleSession(t *testing.T) {
	s := newTestServer(t)
	client := s.token("client-1", service.RoleClient)
	outsider := s.token("stranger", service.RoleClient)

	w := s.do(http.MethodPost, "/api/disputes", client, map[string]any{
		"kind":           "payment",
		"initiator_role": "client",
		"respondent":     map[string]string{"id": "freelancer-1", "role": "freelancer"},
		"title":          "Оплата не прошла",
		"description":    "Деньги списаны, заказ не оплачен",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	dispute := decode[models.Dispute](t, w)

	w = s.do(http.MethodPost, "/api/disputes/"+dispute.ID.String()+"/escalate", client, map[string]string{"reason": "Нет ответа"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, models.DisputeStatusEscalated, decode[models.Dispute](t, w).Status)

	path := "/api/mediation/sessions?dispute_id=" + dispute.ID.String()
	require.Eventually(t, func() bool {
		w := s.do(http.MethodGet, path, client, nil)
		var page struct {
			Pagination struct {
				Total int `json:"total"`
			} `json:"pagination"`
		}
		return w.Code == http.StatusOK && json.Unmarshal(w.Body.Bytes(), &page) == nil && page.Pagination.Total == 1
	}, time.Second, 10*time.Millisecond)

	w = s.do(http.MethodGet, path, outsider, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(http.MethodGet, "/api/mediation/sessions", client, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPost, "/api/mediation/sessions", client, map[string]string{"dispute_id": dispute.ID.String()})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestUploadEvidence(t *testing.T) {
	s := newTestServer(t)
	client := s.token("client-1", service.RoleClient)

	w := s.do(http.MethodPost, "/api/disputes", client, map[string]any{
		"kind":           "order",
		"initiator_role": "client",
		"respondent":     map[string]string{"id": "freelancer-1", "role": "freelancer"},
		"title":          "Заказ не выполнен",
		"description":    "Нет результата",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	dispute := decode[models.Dispute](t, w)

	upload := func(content []byte) *httptest.ResponseRecorder {
		var body bytes.Buffer
		form := multipart.NewWriter(&body)
		part, err := form.CreateFormFile("file", "screen.png")
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
		require.NoError(t, form.WriteField("description", "Скриншот переписки"))
		require.NoError(t, form.Close())

		req := httptest.NewRequest(http.MethodPost, "/api/disputes/"+dispute.ID.String()+"/uploads", &body)
		req.Header.Set("Content-Type", form.FormDataContentType())
		req.Header.Set("Authorization", "Bearer "+client)
		w := httptest.NewRecorder()
		s.engine.ServeHTTP(w, req)
		return w
	}

	png := append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 64)...)
	w = upload(png)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		Evidence models.Evidence `json:"evidence"`
		Size     int64           `json:"size"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, models.EvidenceImage, resp.Evidence.Type)
	assert.Equal(t, int64(len(png)), resp.Size)
	assert.Contains(t, resp.Evidence.Checksum, "blake2b-256:")

	w = upload([]byte("just some plain text"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReviewModerationOverHTTP(t *testing.T) {
	s := newTestServer(t)
	client := s.token("client-1", service.RoleClient)
	freelancer := s.token("freelancer-1", service.RoleFreelancer)
	moderator := s.token("moderator-1", service.RoleModerator)

	w := s.do(http.MethodPost, "/api/reviews", client, map[string]any{
		"target_type":   "freelancer",
		"target_id":     "freelancer-1",
		"reviewer_role": "client",
		"rating":        9,
		"title":         "Нормально",
		"content":       "Сделано, но с задержкой",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	review := decode[models.Review](t, w)
	assert.Equal(t, 5, review.Rating)
	assert.Equal(t, models.ReviewStatusPending, review.Status)
	base := "/api/reviews/" + review.ID.String()

	// Неопубликованный отзыв не виден посторонним
	w = s.do(http.MethodGet, base, freelancer, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(http.MethodGet, "/api/moderation/queue", client, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(http.MethodGet, "/api/moderation/queue", moderator, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), decode[map[string]any](t, w)["pagination"].(map[string]any)["total"])

	w = s.do(http.MethodPost, base+"/moderate", moderator, map[string]string{"action": "approve"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, models.ReviewStatusApproved, decode[models.Review](t, w).Status)

	w = s.do(http.MethodPost, base+"/response", freelancer, map[string]string{"content": "Спасибо за отзыв"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotNil(t, decode[models.Review](t, w).Response)

	w = s.do(http.MethodPost, base+"/helpful", freelancer, map[string]bool{"helpful": true})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, decode[models.Review](t, w).HelpfulCount)

	w = s.do(http.MethodGet, "/api/reviews?target_id=freelancer-1", freelancer, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), decode[map[string]any](t, w)["pagination"].(map[string]any)["total"])

	w = s.do(http.MethodGet, "/api/analytics/reviews", moderator, nil)
	require.Equal(t, http.StatusOK, w.Code)
	stats := decode[models.ReviewAnalytics](t, w)
	assert.Equal(t, 1, stats.Total)
	assert.Equal(t, 1.0, stats.ApprovalRate)

	w = s.do(http.MethodGet, "/api/analytics/disputes", client, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
