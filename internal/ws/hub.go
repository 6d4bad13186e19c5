package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/ignatzorin/freelance-arbitration/internal/events"
	"github.com/ignatzorin/freelance-arbitration/internal/goroutine"
	"github.com/ignatzorin/freelance-arbitration/internal/logger"
)

// Hub управляет всеми WebSocket клиентами и реализует events.Publisher.
type Hub struct {
	mu         sync.RWMutex
	clients    map[string]map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	broadcast  chan message
	ctx        context.Context
}

var _ events.Publisher = (*Hub)(nil)

type message struct {
	userIDs []string
	roles   []string
	payload []byte
}

// NewHub создаёт новый хаб.
func NewHub(ctx context.Context) *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan message, 64),
		ctx:        ctx,
	}
}

// Run запускает главный цикл хаба до отмены контекста.
func (h *Hub) Run() {
	for {
		select {
		case <-h.ctx.Done():
			return
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case msg := <-h.broadcast:
			h.send(msg)
		}
	}
}

// Register добавляет клиента.
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.ctx.Done():
	}
}

// Unregister удаляет клиента.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.ctx.Done():
	}
}

// Publish ставит событие в очередь отправки адресатам и ролям.
// Если очередь переполнена, событие отбрасывается.
func (h *Hub) Publish(_ context.Context, e events.Event) error {
	// Сообщение для клиента: "type" содержит имя события, "data" содержит само событие.
	raw, err := json.Marshal(map[string]any{"type": e.Type, "data": e})
	if err != nil {
		return fmt.Errorf("ws: не удалось сериализовать сообщение: %w", err)
	}

	select {
	case h.broadcast <- message{userIDs: e.Recipients, roles: e.Roles, payload: raw}:
		return nil
	default:
		return fmt.Errorf("ws: очередь отправки переполнена, событие %s отброшено", e.Type)
	}
}

// Connected возвращает количество подключений пользователя.
func (h *Hub) Connected(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client.userID]; !ok {
		h.clients[client.userID] = make(map[*Client]struct{})
	}
	h.clients[client.userID][client] = struct{}{}
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if clients, ok := h.clients[client.userID]; ok {
		delete(clients, client)
		if len(clients) == 0 {
			delete(h.clients, client.userID)
		}
	}
}

// targets собирает получателей без повторов.
func (h *Hub) targets(msg message) map[*Client]struct{} {
	out := make(map[*Client]struct{})
	for _, id := range msg.userIDs {
		for c := range h.clients[id] {
			out[c] = struct{}{}
		}
	}
	if len(msg.roles) == 0 {
		return out
	}
	roles := make(map[string]struct{}, len(msg.roles))
	for _, r := range msg.roles {
		roles[r] = struct{}{}
	}
	for _, clients := range h.clients {
		for c := range clients {
			if _, ok := roles[c.role]; ok {
				out[c] = struct{}{}
			}
		}
	}
	return out
}

func (h *Hub) send(msg message) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.targets(msg) {
		select {
		case client.send <- msg.payload:
		default:
			// Медленный клиент: закрываем асинхронно, чтобы не держать хаб.
			logger.With(map[string]interface{}{"user_id": client.userID}).Warn("ws: буфер клиента переполнен, соединение закрывается")
			c := client
			goroutine.SafeGo(c.Close)
		}
	}
}
