package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/freelance-arbitration/internal/http/handlers/common"
	"github.com/ignatzorin/freelance-arbitration/internal/service"
)

// AnalyticsHandler отдаёт сводную статистику по спорам и отзывам.
type AnalyticsHandler struct {
	svc *service.AnalyticsService
}

func NewAnalyticsHandler(s *service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{svc: s}
}

// Disputes GET /analytics/disputes
func (h *AnalyticsHandler) Disputes(c *gin.Context) {
	stats, err := h.svc.DisputeAnalytics(c.Request.Context())
	if err != nil {
		common.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// Reviews GET /analytics/reviews
func (h *AnalyticsHandler) Reviews(c *gin.Context) {
	stats, err := h.svc.ReviewAnalytics(c.Request.Context())
	if err != nil {
		common.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
