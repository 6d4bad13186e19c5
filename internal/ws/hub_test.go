package ws

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/freelance-arbitration/internal/events"
)

func newTestClient(h *Hub, userID, role string) *Client {
	return &Client{hub: h, userID: userID, role: role, send: make(chan []byte, 4)}
}

func receive(t *testing.T, c *Client) map[string]any {
	t.Helper()
	select {
	case raw := <-c.send:
		var msg map[string]any
		require.NoError(t, json.Unmarshal(raw, &msg))
		return msg
	case <-time.After(time.Second):
		t.Fatalf("клиент %s не получил сообщение", c.userID)
		return nil
	}
}

func TestHub_DeliversToRecipientsAndRoles(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := NewHub(ctx)
	go h.Run()

	client := newTestClient(h, "client-1", "client")
	moderator := newTestClient(h, "mod-1", "moderator")
	stranger := newTestClient(h, "other", "freelancer")
	h.Register(client)
	h.Register(moderator)
	h.Register(stranger)

	require.Eventually(t, func() bool { return h.Connected("mod-1") == 1 }, time.Second, 10*time.Millisecond)

	err := h.Publish(ctx, events.Event{
		Type:       events.ReviewFlagged,
		RecordID:   uuid.New(),
		Recipients: []string{"client-1"},
		Roles:      []string{"moderator"},
	})
	require.NoError(t, err)

	assert.Equal(t, events.ReviewFlagged, receive(t, client)["type"])
	assert.Equal(t, events.ReviewFlagged, receive(t, moderator)["type"])

	select {
	case <-stranger.send:
		t.Fatal("сообщение не должно доставляться посторонним")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHub_Unregister(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := NewHub(ctx)
	go h.Run()

	c := newTestClient(h, "u1", "client")
	h.Register(c)
	require.Eventually(t, func() bool { return h.Connected("u1") == 1 }, time.Second, 10*time.Millisecond)

	h.Unregister(c)
	require.Eventually(t, func() bool { return h.Connected("u1") == 0 }, time.Second, 10*time.Millisecond)
}

func TestHub_PublishDoesNotBlockWhenQueueFull(t *testing.T) {
	h := NewHub(context.Background())

	var err error
	for i := 0; i < cap(h.broadcast)+1; i++ {
		err = h.Publish(context.Background(), events.Event{Type: events.DisputeCreated})
	}
	assert.Error(t, err)
}
