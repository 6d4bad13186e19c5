package service

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/freelance-arbitration/internal/goroutine"
)

// approvalScheduler хранит отложенные автоодобрения по ID отзыва.
// Задачу можно отменить до срабатывания; сама задача обязана
// перепроверить состояние отзыва перед изменением.
type approvalScheduler struct {
	mu     sync.Mutex
	delay  time.Duration
	timers map[uuid.UUID]*time.Timer
	closed bool
}

func newApprovalScheduler(delay time.Duration) *approvalScheduler {
	return &approvalScheduler{delay: delay, timers: make(map[uuid.UUID]*time.Timer)}
}

// Schedule планирует fn через delay, заменяя ранее запланированную задачу.
func (s *approvalScheduler) Schedule(id uuid.UUID, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if prev, ok := s.timers[id]; ok {
		prev.Stop()
	}

	var t *time.Timer
	t = time.AfterFunc(s.delay, func() {
		s.mu.Lock()
		// Задачу могли заменить или отменить, пока таймер срабатывал.
		if s.timers[id] != t {
			s.mu.Unlock()
			return
		}
		delete(s.timers, id)
		s.mu.Unlock()

		goroutine.Run(fn)
	})
	s.timers[id] = t
}

// Cancel отменяет задачу. Возвращает true, если задача ещё ожидала запуска.
func (s *approvalScheduler) Cancel(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.timers[id]
	if !ok {
		return false
	}
	delete(s.timers, id)
	t.Stop()
	return true
}

// Pending сообщает, ожидает ли задача запуска.
func (s *approvalScheduler) Pending(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.timers[id]
	return ok
}

// Stop отменяет все задачи и запрещает новые.
func (s *approvalScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	for id, t := range s.timers {
		t.Stop()
		delete(s.timers, id)
	}
}
