package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/freelance-arbitration/internal/models"
	"github.com/ignatzorin/freelance-arbitration/internal/repository"
	"github.com/ignatzorin/freelance-arbitration/internal/repository/common"
)

type sessionRow struct {
	ID           uuid.UUID            `db:"id"`
	DisputeID    uuid.UUID            `db:"dispute_id"`
	MediatorID   string               `db:"mediator_id"`
	MediatorName string               `db:"mediator_name"`
	ScheduledAt  time.Time            `db:"scheduled_at"`
	Duration     *int                 `db:"duration_minutes"`
	Channel      string               `db:"channel"`
	Status       string               `db:"status"`
	Participants jsonColumn[[]string] `db:"participants"`
	Transcript   *string              `db:"transcript"`
	Outcome      *string              `db:"outcome"`
	NextSteps    jsonColumn[[]string] `db:"next_steps"`
	CreatedAt    time.Time            `db:"created_at"`
	UpdatedAt    time.Time            `db:"updated_at"`
}

func toSessionRow(m *models.MediationSession) sessionRow {
	return sessionRow{
		ID:           m.ID,
		DisputeID:    m.DisputeID,
		MediatorID:   m.MediatorID,
		MediatorName: m.MediatorName,
		ScheduledAt:  m.ScheduledAt,
		Duration:     m.Duration,
		Channel:      string(m.Channel),
		Status:       string(m.Status),
		Participants: jsonColumn[[]string]{V: m.Participants},
		Transcript:   m.Transcript,
		Outcome:      m.Outcome,
		NextSteps:    jsonColumn[[]string]{V: m.NextSteps},
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func (r sessionRow) model() *models.MediationSession {
	return &models.MediationSession{
		ID:           r.ID,
		DisputeID:    r.DisputeID,
		MediatorID:   r.MediatorID,
		MediatorName: r.MediatorName,
		ScheduledAt:  r.ScheduledAt,
		Duration:     r.Duration,
		Channel:      models.SessionChannel(r.Channel),
		Status:       models.SessionStatus(r.Status),
		Participants: r.Participants.V,
		Transcript:   r.Transcript,
		Outcome:      r.Outcome,
		NextSteps:    r.NextSteps.V,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

// CreateSession создаёт сессию медиации.
func (s *Store) CreateSession(ctx context.Context, m *models.MediationSession) error {
	query := `
		INSERT INTO mediation_sessions (id, dispute_id, mediator_id, mediator_name, scheduled_at, duration_minutes,
			channel, status, participants, transcript, outcome, next_steps, created_at, updated_at)
		VALUES (:id, :dispute_id, :mediator_id, :mediator_name, :scheduled_at, :duration_minutes,
			:channel, :status, :participants, :transcript, :outcome, :next_steps, :created_at, :updated_at)
	`
	if _, err := s.db.NamedExecContext(ctx, query, toSessionRow(m)); err != nil {
		return fmt.Errorf("mediation repository: create %w", translateInsertError(err))
	}
	return nil
}

// GetSession возвращает сессию по ID.
func (s *Store) GetSession(ctx context.Context, id uuid.UUID) (*models.MediationSession, error) {
	row, err := common.GetByID[sessionRow](ctx, s.db, tableSessions, id, repository.ErrSessionNotFound)
	if err != nil {
		return nil, err
	}
	return row.model(), nil
}

// UpdateSession обновляет статус и итоги сессии.
func (s *Store) UpdateSession(ctx context.Context, m *models.MediationSession) error {
	query := `
		UPDATE mediation_sessions SET mediator_id = :mediator_id, mediator_name = :mediator_name,
			scheduled_at = :scheduled_at, duration_minutes = :duration_minutes, channel = :channel, status = :status,
			participants = :participants, transcript = :transcript, outcome = :outcome, next_steps = :next_steps,
			updated_at = :updated_at
		WHERE id = :id
	`
	res, err := s.db.NamedExecContext(ctx, query, toSessionRow(m))
	if err != nil {
		return fmt.Errorf("mediation repository: update %w", err)
	}
	return common.ExpectAffected(res, repository.ErrSessionNotFound)
}

// ListSessions возвращает сессии по спору и статусу.
func (s *Store) ListSessions(ctx context.Context, filter repository.SessionFilter) ([]models.MediationSession, error) {
	w := &common.Where{}
	if filter.DisputeID != uuid.Nil {
		w.Add("dispute_id = $%d", filter.DisputeID)
	}
	if filter.Status != "" {
		w.Add("status = $%d", string(filter.Status))
	}

	rows, err := common.SelectOrdered[sessionRow](ctx, s.db, tableSessions, w)
	if err != nil {
		return nil, fmt.Errorf("mediation repository: list %w", err)
	}

	sessions := make([]models.MediationSession, 0, len(rows))
	for _, row := range rows {
		sessions = append(sessions, *row.model())
	}
	return sessions, nil
}
