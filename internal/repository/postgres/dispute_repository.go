package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/freelance-arbitration/internal/models"
	"github.com/ignatzorin/freelance-arbitration/internal/repository"
	"github.com/ignatzorin/freelance-arbitration/internal/repository/common"
)

type disputeRow struct {
	ID             uuid.UUID                          `db:"id"`
	Kind           string                             `db:"kind"`
	Status         string                             `db:"status"`
	Priority       string                             `db:"priority"`
	InitiatorID    string                             `db:"initiator_id"`
	InitiatorRole  string                             `db:"initiator_role"`
	RespondentID   string                             `db:"respondent_id"`
	RespondentRole string                             `db:"respondent_role"`
	Title          string                             `db:"title"`
	Description    string                             `db:"description"`
	Amount         *float64                           `db:"amount"`
	Category       string                             `db:"category"`
	OrderID        *string                            `db:"order_id"`
	CreatedAt      time.Time                          `db:"created_at"`
	UpdatedAt      time.Time                          `db:"updated_at"`
	Deadline       *time.Time                         `db:"deadline"`
	MediatorID     *string                            `db:"mediator_id"`
	Resolution     jsonColumn[*models.Resolution]     `db:"resolution"`
	Evidence       jsonColumn[[]models.Evidence]      `db:"evidence"`
	Timeline       jsonColumn[[]models.TimelineEvent] `db:"timeline"`
}

func toDisputeRow(d *models.Dispute) disputeRow {
	return disputeRow{
		ID:             d.ID,
		Kind:           string(d.Kind),
		Status:         string(d.Status),
		Priority:       string(d.Priority),
		InitiatorID:    d.Initiator.ID,
		InitiatorRole:  string(d.Initiator.Role),
		RespondentID:   d.Respondent.ID,
		RespondentRole: string(d.Respondent.Role),
		Title:          d.Title,
		Description:    d.Description,
		Amount:         d.Amount,
		Category:       d.Category,
		OrderID:        d.OrderID,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
		Deadline:       d.Deadline,
		MediatorID:     d.MediatorID,
		Resolution:     jsonColumn[*models.Resolution]{V: d.Resolution},
		Evidence:       jsonColumn[[]models.Evidence]{V: d.Evidence},
		Timeline:       jsonColumn[[]models.TimelineEvent]{V: d.Timeline},
	}
}

func (r disputeRow) model() *models.Dispute {
	return &models.Dispute{
		ID:          r.ID,
		Kind:        models.DisputeKind(r.Kind),
		Status:      models.DisputeStatus(r.Status),
		Priority:    models.DisputePriority(r.Priority),
		Initiator:   models.Party{ID: r.InitiatorID, Role: models.PartyRole(r.InitiatorRole)},
		Respondent:  models.Party{ID: r.RespondentID, Role: models.PartyRole(r.RespondentRole)},
		Title:       r.Title,
		Description: r.Description,
		Amount:      r.Amount,
		Category:    r.Category,
		OrderID:     r.OrderID,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
		Deadline:    r.Deadline,
		MediatorID:  r.MediatorID,
		Resolution:  r.Resolution.V,
		Evidence:    r.Evidence.V,
		Timeline:    r.Timeline.V,
	}
}

// CreateDispute создаёт спор.
func (s *Store) CreateDispute(ctx context.Context, d *models.Dispute) error {
	query := `
		INSERT INTO disputes (id, kind, status, priority, initiator_id, initiator_role, respondent_id, respondent_role,
			title, description, amount, category, order_id, created_at, updated_at, deadline, mediator_id,
			resolution, evidence, timeline)
		VALUES (:id, :kind, :status, :priority, :initiator_id, :initiator_role, :respondent_id, :respondent_role,
			:title, :description, :amount, :category, :order_id, :created_at, :updated_at, :deadline, :mediator_id,
			:resolution, :evidence, :timeline)
	`
	if _, err := s.db.NamedExecContext(ctx, query, toDisputeRow(d)); err != nil {
		return fmt.Errorf("dispute repository: create %w", translateInsertError(err))
	}
	return nil
}

// GetDispute возвращает спор по ID.
func (s *Store) GetDispute(ctx context.Context, id uuid.UUID) (*models.Dispute, error) {
	row, err := common.GetByID[disputeRow](ctx, s.db, tableDisputes, id, repository.ErrDisputeNotFound)
	if err != nil {
		return nil, err
	}
	return row.model(), nil
}

// UpdateDispute перезаписывает изменяемые поля спора. Тип и сумма неизменны.
func (s *Store) UpdateDispute(ctx context.Context, d *models.Dispute) error {
	query := `
		UPDATE disputes SET status = :status, priority = :priority, title = :title, description = :description,
			category = :category, updated_at = :updated_at, deadline = :deadline, mediator_id = :mediator_id,
			resolution = :resolution, evidence = :evidence, timeline = :timeline
		WHERE id = :id
	`
	res, err := s.db.NamedExecContext(ctx, query, toDisputeRow(d))
	if err != nil {
		return fmt.Errorf("dispute repository: update %w", err)
	}
	return common.ExpectAffected(res, repository.ErrDisputeNotFound)
}

// ListDisputes возвращает споры по участнику, роли и статусу.
func (s *Store) ListDisputes(ctx context.Context, filter repository.DisputeFilter) ([]models.Dispute, error) {
	w := &common.Where{}
	if filter.Status != "" {
		w.Add("status = $%d", string(filter.Status))
	}
	if filter.ParticipantID != "" || filter.Role != "" {
		// Параметры общие для обеих сторон спора.
		var id, role string
		if filter.ParticipantID != "" {
			id = w.Param(filter.ParticipantID)
		}
		if filter.Role != "" {
			role = w.Param(string(filter.Role))
		}
		side := func(prefix string) string {
			conds := []string{}
			if id != "" {
				conds = append(conds, prefix+"_id = "+id)
			}
			if role != "" {
				conds = append(conds, prefix+"_role = "+role)
			}
			return "(" + strings.Join(conds, " AND ") + ")"
		}
		w.Raw("(" + side("initiator") + " OR " + side("respondent") + ")")
	}

	rows, err := common.SelectOrdered[disputeRow](ctx, s.db, tableDisputes, w)
	if err != nil {
		return nil, fmt.Errorf("dispute repository: list %w", err)
	}

	disputes := make([]models.Dispute, 0, len(rows))
	for _, row := range rows {
		disputes = append(disputes, *row.model())
	}
	return disputes, nil
}
