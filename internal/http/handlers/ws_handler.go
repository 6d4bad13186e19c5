package handlers

import (
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/ignatzorin/freelance-arbitration/internal/logger"
	"github.com/ignatzorin/freelance-arbitration/internal/service"
	"github.com/ignatzorin/freelance-arbitration/internal/ws"
)

// WSHandler отвечает за установку WebSocket соединений.
type WSHandler struct {
	hub          *ws.Hub
	tokenManager *service.TokenManager
	upgrader     websocket.Upgrader
}

// NewWSHandler создаёт новый хэндлер. Пустой allowedOrigins разрешает любой Origin.
func NewWSHandler(hub *ws.Hub, tokens *service.TokenManager, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		hub:          hub,
		tokenManager: tokens,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || len(allowedOrigins) == 0 || slices.Contains(allowedOrigins, origin)
			},
		},
	}
}

// Handle обслуживает GET /api/ws?token=...
// Браузер не умеет передавать заголовок Authorization при открытии сокета, поэтому токен в query.
func (h *WSHandler) Handle(c *gin.Context) {
	rawToken := c.Query("token")
	if rawToken == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "access токен обязателен"})
		return
	}

	userID, role, err := h.tokenManager.ParseAccess(rawToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "невалидный access токен"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade уже записал ответ клиенту
		logger.L().WithError(err).Warn("ws: не удалось установить соединение")
		return
	}

	client := ws.NewClient(conn, h.hub, userID, role)
	h.hub.Register(client)

	client.Run(c.Request.Context())
}
