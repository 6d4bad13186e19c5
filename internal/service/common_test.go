package service

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyedLocker_SerializesSameKey(t *testing.T) {
	l := newKeyedLocker()
	id := uuid.New()

	var inside, maxInside atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := l.Lock(id)
			defer unlock()
			n := inside.Add(1)
			if n > maxInside.Load() {
				maxInside.Store(n)
			}
			time.Sleep(time.Millisecond)
			inside.Add(-1)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxInside.Load())
	assert.Empty(t, l.locks)
}

func TestKeyedLocker_IndependentKeys(t *testing.T) {
	l := newKeyedLocker()
	unlockA := l.Lock(uuid.New())
	defer unlockA()

	done := make(chan struct{})
	go func() {
		unlock := l.Lock(uuid.New())
		unlock()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("блокировка другой записи не должна ждать")
	}
}

func TestApprovalScheduler(t *testing.T) {
	t.Run("срабатывает после задержки", func(t *testing.T) {
		s := newApprovalScheduler(10 * time.Millisecond)
		defer s.Stop()
		id := uuid.New()

		var fired atomic.Bool
		s.Schedule(id, func() { fired.Store(true) })
		assert.True(t, s.Pending(id))

		require.Eventually(t, fired.Load, time.Second, 2*time.Millisecond)
		assert.False(t, s.Pending(id))
	})

	t.Run("отмена", func(t *testing.T) {
		s := newApprovalScheduler(20 * time.Millisecond)
		defer s.Stop()
		id := uuid.New()

		var fired atomic.Bool
		s.Schedule(id, func() { fired.Store(true) })
		assert.True(t, s.Cancel(id))
		assert.False(t, s.Cancel(id))

		time.Sleep(50 * time.Millisecond)
		assert.False(t, fired.Load())
	})

	t.Run("замена задачи", func(t *testing.T) {
		s := newApprovalScheduler(10 * time.Millisecond)
		defer s.Stop()
		id := uuid.New()

		var calls atomic.Int32
		var second atomic.Bool
		s.Schedule(id, func() { calls.Add(1) })
		s.Schedule(id, func() { calls.Add(1); second.Store(true) })

		require.Eventually(t, second.Load, time.Second, 2*time.Millisecond)
		time.Sleep(20 * time.Millisecond)
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("после остановки задачи не принимаются", func(t *testing.T) {
		s := newApprovalScheduler(time.Millisecond)
		s.Stop()
		id := uuid.New()
		s.Schedule(id, func() {})
		assert.False(t, s.Pending(id))
	})
}
