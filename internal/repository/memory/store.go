// Package memory реализует хранилище записей в памяти процесса.
// Используется в тестах и при STORE_DRIVER=memory.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/ignatzorin/freelance-arbitration/internal/models"
	"github.com/ignatzorin/freelance-arbitration/internal/repository"
)

// Store хранит копии записей, поэтому вызывающий код никогда не видит
// частично изменённые данные.
type Store struct {
	mu       sync.RWMutex
	disputes map[uuid.UUID]*models.Dispute
	reviews  map[uuid.UUID]*models.Review
	sessions map[uuid.UUID]*models.MediationSession
}

var _ repository.RecordStore = (*Store)(nil)

// NewStore создаёт пустое хранилище.
func NewStore() *Store {
	return &Store{
		disputes: make(map[uuid.UUID]*models.Dispute),
		reviews:  make(map[uuid.UUID]*models.Review),
		sessions: make(map[uuid.UUID]*models.MediationSession),
	}
}

func (s *Store) CreateDispute(ctx context.Context, d *models.Dispute) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.disputes[d.ID]; ok {
		return repository.ErrAlreadyExists
	}
	s.disputes[d.ID] = d.Clone()
	return nil
}

func (s *Store) GetDispute(ctx context.Context, id uuid.UUID) (*models.Dispute, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.disputes[id]
	if !ok {
		return nil, repository.ErrDisputeNotFound
	}
	return d.Clone(), nil
}

func (s *Store) UpdateDispute(ctx context.Context, d *models.Dispute) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.disputes[d.ID]; !ok {
		return repository.ErrDisputeNotFound
	}
	s.disputes[d.ID] = d.Clone()
	return nil
}

func (s *Store) ListDisputes(ctx context.Context, filter repository.DisputeFilter) ([]models.Dispute, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Dispute, 0, len(s.disputes))
	for _, d := range s.disputes {
		if filter.Match(d) {
			out = append(out, *d.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) CreateReview(ctx context.Context, r *models.Review) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.reviews[r.ID]; ok {
		return repository.ErrAlreadyExists
	}
	s.reviews[r.ID] = r.Clone()
	return nil
}

func (s *Store) GetReview(ctx context.Context, id uuid.UUID) (*models.Review, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.reviews[id]
	if !ok {
		return nil, repository.ErrReviewNotFound
	}
	return r.Clone(), nil
}

func (s *Store) UpdateReview(ctx context.Context, r *models.Review) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.reviews[r.ID]; !ok {
		return repository.ErrReviewNotFound
	}
	s.reviews[r.ID] = r.Clone()
	return nil
}

func (s *Store) ListReviews(ctx context.Context, filter repository.ReviewFilter) ([]models.Review, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Review, 0, len(s.reviews))
	for _, r := range s.reviews {
		if filter.Match(r) {
			out = append(out, *r.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) CreateSession(ctx context.Context, m *models.MediationSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[m.ID]; ok {
		return repository.ErrAlreadyExists
	}
	s.sessions[m.ID] = m.Clone()
	return nil
}

func (s *Store) GetSession(ctx context.Context, id uuid.UUID) (*models.MediationSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.sessions[id]
	if !ok {
		return nil, repository.ErrSessionNotFound
	}
	return m.Clone(), nil
}

func (s *Store) UpdateSession(ctx context.Context, m *models.MediationSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[m.ID]; !ok {
		return repository.ErrSessionNotFound
	}
	s.sessions[m.ID] = m.Clone()
	return nil
}

func (s *Store) ListSessions(ctx context.Context, filter repository.SessionFilter) ([]models.MediationSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.MediationSession, 0)
	for _, m := range s.sessions {
		if filter.Match(m) {
			out = append(out, *m.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// Close ничего не делает: ресурсов нет.
func (s *Store) Close(ctx context.Context) error {
	return nil
}
