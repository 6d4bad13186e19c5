package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/freelance-arbitration/internal/logger"
	"github.com/ignatzorin/freelance-arbitration/internal/pkg/apperror"
	"github.com/ignatzorin/freelance-arbitration/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
	logger.Discard()
}

func perform(r *gin.Engine, method, path string, header http.Header) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(method, path, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	tokens := service.NewTokenManager("secret", time.Hour)
	r := gin.New()
	r.GET("/me", AuthMiddleware(tokens), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"id": c.GetString(ContextUserIDKey), "role": c.GetString(ContextRoleKey)})
	})

	w := perform(r, http.MethodGet, "/me", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = perform(r, http.MethodGet, "/me", http.Header{"Authorization": {"Bearer garbage"}})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	token, err := tokens.Issue("moderator-1", service.RoleModerator)
	require.NoError(t, err)
	w = perform(r, http.MethodGet, "/me", http.Header{"Authorization": {"Bearer " + token}})
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "moderator-1", body["id"])
	assert.Equal(t, service.RoleModerator, body["role"])
}

func TestRequireRoles(t *testing.T) {
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(ContextRoleKey, c.GetHeader("X-Role"))
		c.Next()
	})
	r.GET("/staff", RequireRoles(service.RoleModerator, service.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	assert.Equal(t, http.StatusForbidden, perform(r, http.MethodGet, "/staff", http.Header{"X-Role": {"client"}}).Code)
	assert.Equal(t, http.StatusOK, perform(r, http.MethodGet, "/staff", http.Header{"X-Role": {"admin"}}).Code)
}

func TestErrorHandler(t *testing.T) {
	r := gin.New()
	r.Use(ErrorHandler())
	r.GET("/missing", func(c *gin.Context) { _ = c.Error(apperror.ErrDisputeNotFound) })
	r.GET("/state", func(c *gin.Context) { _ = c.Error(apperror.New(apperror.ErrCodeInvalidState, "нельзя")) })
	r.GET("/boom", func(c *gin.Context) { _ = c.Error(errors.New("pq: connection refused")) })
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := perform(r, http.MethodGet, "/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "NOT_FOUND")

	w = perform(r, http.MethodGet, "/state", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "нельзя")

	w = perform(r, http.MethodGet, "/boom", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "pq:")

	assert.Equal(t, http.StatusNoContent, perform(r, http.MethodGet, "/ok", nil).Code)
}

func TestUUIDValidator(t *testing.T) {
	r := gin.New()
	r.GET("/d/:id/e/:evidenceId", UUIDValidator("id", "evidenceId"), func(c *gin.Context) { c.Status(http.StatusOK) })

	good := uuid.NewString()
	assert.Equal(t, http.StatusOK, perform(r, http.MethodGet, "/d/"+good+"/e/"+good, nil).Code)
	assert.Equal(t, http.StatusBadRequest, perform(r, http.MethodGet, "/d/"+good+"/e/nope", nil).Code)
	assert.Equal(t, http.StatusBadRequest, perform(r, http.MethodGet, "/d/nope/e/"+good, nil).Code)
}

func TestRateLimitMiddleware(t *testing.T) {
	store, err := NewRateLimitStore(nil)
	require.NoError(t, err)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		if id := c.GetHeader("X-User"); id != "" {
			c.Set(ContextUserIDKey, id)
		}
		c.Next()
	})
	r.POST("/write", RateLimitMiddleware(store, 2, time.Minute), func(c *gin.Context) { c.Status(http.StatusOK) })

	alice := http.Header{"X-User": {"alice"}}
	assert.Equal(t, http.StatusOK, perform(r, http.MethodPost, "/write", alice).Code)
	w := perform(r, http.MethodPost, "/write", alice)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
	assert.Equal(t, http.StatusTooManyRequests, perform(r, http.MethodPost, "/write", alice).Code)

	// У другого пользователя свой счётчик.
	assert.Equal(t, http.StatusOK, perform(r, http.MethodPost, "/write", http.Header{"X-User": {"bob"}}).Code)
}

func TestCORSMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(CORSMiddleware([]string{"http://localhost:3000"}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := perform(r, http.MethodOptions, "/x", http.Header{"Origin": {"http://localhost:3000"}})
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))

	w = perform(r, http.MethodGet, "/x", http.Header{"Origin": {"http://evil.example"}})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
