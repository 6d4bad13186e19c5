// Package postgres реализует хранилище записей поверх PostgreSQL (sqlx + lib/pq).
// Вложенные списки (доказательства, журнал, жалобы) хранятся в колонках JSONB.
package postgres

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/freelance-arbitration/internal/repository"
	"github.com/ignatzorin/freelance-arbitration/internal/repository/common"
)

const (
	tableDisputes = "disputes"
	tableReviews  = "reviews"
	tableSessions = "mediation_sessions"
)

// Store реализует repository.RecordStore.
type Store struct {
	db *sqlx.DB
}

var _ repository.RecordStore = (*Store)(nil)

func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// Close закрывает пул соединений.
func (s *Store) Close(ctx context.Context) error {
	return s.db.Close()
}

func translateInsertError(err error) error {
	if common.IsUniqueViolation(err) {
		return repository.ErrAlreadyExists
	}
	return err
}
