package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/freelance-arbitration/internal/events"
	"github.com/ignatzorin/freelance-arbitration/internal/goroutine"
	"github.com/ignatzorin/freelance-arbitration/internal/logger"
	"github.com/ignatzorin/freelance-arbitration/internal/pkg/apperror"
	"github.com/ignatzorin/freelance-arbitration/internal/repository"
)

// Роли пользователей, которые выдаёт внешний сервис авторизации.
const (
	RoleClient     = "client"
	RoleFreelancer = "freelancer"
	RoleModerator  = "moderator"
	RoleMediator   = "mediator"
	RoleAdmin      = "admin"
)

// SystemActor автор автоматических действий.
const SystemActor = "system"

const publishTimeout = 5 * time.Second

// Actor пользователь, от имени которого выполняется операция.
type Actor struct {
	ID   string
	Role string
}

// IsStaff сообщает, может ли пользователь принимать решения по спорам и отзывам.
func (a Actor) IsStaff() bool {
	switch a.Role {
	case RoleModerator, RoleMediator, RoleAdmin:
		return true
	}
	return false
}

// keyedLocker сериализует изменения одной записи, не блокируя остальные.
type keyedLocker struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*keyedLock
}

type keyedLock struct {
	mu   sync.Mutex
	refs int
}

func newKeyedLocker() *keyedLocker {
	return &keyedLocker{locks: make(map[uuid.UUID]*keyedLock)}
}

// Lock захватывает блокировку записи и возвращает функцию освобождения.
func (l *keyedLocker) Lock(id uuid.UUID) func() {
	l.mu.Lock()
	lk, ok := l.locks[id]
	if !ok {
		lk = &keyedLock{}
		l.locks[id] = lk
	}
	lk.refs++
	l.mu.Unlock()

	lk.mu.Lock()
	return func() {
		lk.mu.Unlock()
		l.mu.Lock()
		lk.refs--
		if lk.refs == 0 {
			delete(l.locks, id)
		}
		l.mu.Unlock()
	}
}

// storeErr переводит ошибки хранилища в ошибки приложения.
func storeErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrDisputeNotFound):
		return apperror.ErrDisputeNotFound
	case errors.Is(err, repository.ErrReviewNotFound):
		return apperror.ErrReviewNotFound
	case errors.Is(err, repository.ErrSessionNotFound):
		return apperror.ErrSessionNotFound
	default:
		return apperror.Wrap(err, apperror.ErrCodeInternal, "ошибка хранилища")
	}
}

func validationErr(err error) error {
	return apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
}

// publish отправляет событие в фоне: доставка не должна задерживать операцию.
func publish(p events.Publisher, e events.Event) {
	if p == nil {
		return
	}
	goroutine.SafeGo(func() {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()
		if err := p.Publish(ctx, e); err != nil {
			logger.With(logrus.Fields{"event": e.Type, "record_id": e.RecordID}).
				WithError(err).Warn("не удалось доставить событие")
		}
	})
}

func ptr[T any](v T) *T {
	return &v
}

func systemClock() time.Time {
	return time.Now().UTC()
}
