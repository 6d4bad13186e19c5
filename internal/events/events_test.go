package events

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu     sync.Mutex
	events []Event
	err    error
}

func (r *recorder) Publish(_ context.Context, e Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return r.err
}

func TestMulti_FansOutAndJoinsErrors(t *testing.T) {
	ok := &recorder{}
	failing := &recorder{err: errors.New("down")}

	e := Event{Type: DisputeCreated, RecordID: uuid.New()}
	err := Multi{ok, nil, failing}.Publish(context.Background(), e)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "down")
	assert.Equal(t, []Event{e}, ok.events)
	assert.Equal(t, []Event{e}, failing.events)
}

func TestMulti_Empty(t *testing.T) {
	assert.NoError(t, Multi{}.Publish(context.Background(), Event{}))
	assert.NoError(t, Nop{}.Publish(context.Background(), Event{}))
}
