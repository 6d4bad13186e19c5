package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/freelance-arbitration/internal/events"
	"github.com/ignatzorin/freelance-arbitration/internal/goroutine"
	"github.com/ignatzorin/freelance-arbitration/internal/logger"
	"github.com/ignatzorin/freelance-arbitration/internal/models"
	"github.com/ignatzorin/freelance-arbitration/internal/pkg/apperror"
	"github.com/ignatzorin/freelance-arbitration/internal/repository"
	"github.com/ignatzorin/freelance-arbitration/internal/validation"
)

// highAmountThreshold сумма, начиная с которой спор получает высокий приоритет.
const highAmountThreshold = 1000

const scheduleTimeout = 30 * time.Second

// CreateDisputeInput данные для открытия спора.
type CreateDisputeInput struct {
	Kind        models.DisputeKind
	Initiator   models.Party
	Respondent  models.Party
	Title       string
	Description string
	Amount      *float64
	Category    string
	OrderID     *string
}

// EvidenceInput доказательство, приложенное к спору.
type EvidenceInput struct {
	Type        models.EvidenceType
	URL         string
	Description string
	Checksum    string
}

// ResolutionInput решение по спору.
type ResolutionInput struct {
	Kind             models.ResolutionKind
	Decision         string
	RefundAmount     *float64
	RefundPercentage *float64
}

// DisputeService ведёт жизненный цикл споров.
type DisputeService struct {
	store     repository.DisputeStore
	mediation *MediationService
	events    events.Publisher
	deadline  time.Duration
	locks     *keyedLocker
	now       func() time.Time
}

func NewDisputeService(store repository.DisputeStore, mediation *MediationService, publisher events.Publisher, deadline time.Duration) *DisputeService {
	return &DisputeService{
		store:     store,
		mediation: mediation,
		events:    publisher,
		deadline:  deadline,
		locks:     newKeyedLocker(),
		now:       systemClock,
	}
}

// ComputePriority определяет начальный приоритет спора.
func ComputePriority(kind models.DisputeKind, amount *float64) models.DisputePriority {
	switch {
	case amount != nil && *amount > highAmountThreshold:
		return models.PriorityHigh
	case kind == models.DisputeKindPayment:
		return models.PriorityHigh
	case kind == models.DisputeKindQuality:
		return models.PriorityMedium
	default:
		return models.PriorityLow
	}
}

func validateCreate(in CreateDisputeInput) error {
	if err := validation.ValidatePartyID("инициатор", in.Initiator.ID); err != nil {
		return err
	}
	if err := validation.ValidatePartyID("ответчик", in.Respondent.ID); err != nil {
		return err
	}
	if in.Initiator.ID == in.Respondent.ID {
		return fmt.Errorf("нельзя открыть спор с самим собой")
	}
	if _, ok := models.ValidPartyRoles[in.Initiator.Role]; !ok {
		return fmt.Errorf("некорректная роль инициатора: %s", in.Initiator.Role)
	}
	if _, ok := models.ValidPartyRoles[in.Respondent.Role]; !ok {
		return fmt.Errorf("некорректная роль ответчика: %s", in.Respondent.Role)
	}
	if in.Initiator.Role == in.Respondent.Role {
		return fmt.Errorf("стороны спора должны иметь разные роли")
	}
	if _, ok := models.ValidDisputeKinds[in.Kind]; !ok {
		return fmt.Errorf("некорректный тип спора: %s", in.Kind)
	}
	if err := validation.ValidateDisputeTitle(in.Title); err != nil {
		return err
	}
	if err := validation.ValidateDisputeDescription(in.Description); err != nil {
		return err
	}
	if err := validation.ValidateCategory(in.Category); err != nil {
		return err
	}
	return validation.ValidateAmount(in.Amount)
}

// CreateDispute открывает спор в статусе open.
func (s *DisputeService) CreateDispute(ctx context.Context, in CreateDisputeInput) (*models.Dispute, error) {
	if err := validateCreate(in); err != nil {
		return nil, validationErr(err)
	}

	now := s.now()
	d := &models.Dispute{
		ID:          uuid.New(),
		Kind:        in.Kind,
		Status:      models.DisputeStatusOpen,
		Priority:    ComputePriority(in.Kind, in.Amount),
		Initiator:   in.Initiator,
		Respondent:  in.Respondent,
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		Amount:      in.Amount,
		Category:    strings.TrimSpace(in.Category),
		OrderID:     in.OrderID,
		CreatedAt:   now,
		Deadline:    ptr(now.Add(s.deadline)),
		Evidence:    []models.Evidence{},
		Timeline:    []models.TimelineEvent{},
	}
	appendEvent(d, models.EventCreated, "Спор открыт", in.Initiator.ID, now)

	if err := s.store.CreateDispute(ctx, d); err != nil {
		return nil, storeErr(err)
	}

	s.log(d, in.Initiator.ID).Info("спор открыт")
	s.notify(events.DisputeCreated, d, in.Initiator.ID)
	return d, nil
}

// GetDispute возвращает спор по ID.
func (s *DisputeService) GetDispute(ctx context.Context, id uuid.UUID) (*models.Dispute, error) {
	d, err := s.store.GetDispute(ctx, id)
	return d, storeErr(err)
}

// ListDisputes возвращает споры участника. Пустые поля фильтра не ограничивают выборку.
func (s *DisputeService) ListDisputes(ctx context.Context, filter repository.DisputeFilter) ([]models.Dispute, error) {
	disputes, err := s.store.ListDisputes(ctx, filter)
	return disputes, storeErr(err)
}

// RespondToDispute добавляет ответ стороны. Открытый спор переходит на рассмотрение.
func (s *DisputeService) RespondToDispute(ctx context.Context, id uuid.UUID, actor Actor, text string) (*models.Dispute, error) {
	if err := validation.ValidateMessageContent(text); err != nil {
		return nil, validationErr(err)
	}

	return s.mutate(ctx, id, events.DisputeResponded, actor, func(d *models.Dispute, now time.Time) (bool, error) {
		if err := requireParticipantOrStaff(d, actor); err != nil {
			return false, err
		}
		if d.Status != models.DisputeStatusOpen && d.Status != models.DisputeStatusUnderReview {
			return false, invalidDisputeState(d.Status, "ответить на спор")
		}
		d.Status = models.DisputeStatusUnderReview
		appendEvent(d, models.EventResponded, strings.TrimSpace(text), actor.ID, now)
		return true, nil
	})
}

// AddEvidence прикладывает доказательство к незавершённому спору.
func (s *DisputeService) AddEvidence(ctx context.Context, id uuid.UUID, actor Actor, in EvidenceInput) (*models.Dispute, error) {
	if _, ok := models.ValidEvidenceTypes[in.Type]; !ok {
		return nil, validationErr(fmt.Errorf("некорректный тип доказательства: %s", in.Type))
	}
	if err := validation.ValidateEvidenceURL(in.URL); err != nil {
		return nil, validationErr(err)
	}
	if err := validation.ValidateLength("описание доказательства", in.Description, 0, validation.MaxEvidenceDescriptionLen); err != nil {
		return nil, validationErr(err)
	}

	return s.mutate(ctx, id, events.DisputeEvidenceAdded, actor, func(d *models.Dispute, now time.Time) (bool, error) {
		if err := requireParticipantOrStaff(d, actor); err != nil {
			return false, err
		}
		if isTerminal(d.Status) {
			return false, invalidDisputeState(d.Status, "добавить доказательство")
		}
		d.Evidence = append(d.Evidence, models.Evidence{
			ID:          uuid.New(),
			Type:        in.Type,
			URL:         strings.TrimSpace(in.URL),
			Description: strings.TrimSpace(in.Description),
			UploadedBy:  actor.ID,
			UploadedAt:  now,
			Checksum:    in.Checksum,
		})
		appendEvent(d, models.EventEvidenceAdded, fmt.Sprintf("Добавлено доказательство (%s)", in.Type), actor.ID, now)
		return true, nil
	})
}

// VerifyEvidence отмечает доказательство проверенным.
func (s *DisputeService) VerifyEvidence(ctx context.Context, id, evidenceID uuid.UUID, actor Actor) (*models.Dispute, error) {
	if !actor.IsStaff() {
		return nil, apperror.ErrForbidden
	}

	return s.mutate(ctx, id, events.DisputeEvidenceVerified, actor, func(d *models.Dispute, now time.Time) (bool, error) {
		if d.Status == models.DisputeStatusClosed {
			return false, invalidDisputeState(d.Status, "проверить доказательство")
		}
		for i := range d.Evidence {
			if d.Evidence[i].ID != evidenceID {
				continue
			}
			if d.Evidence[i].Verified {
				return false, nil
			}
			d.Evidence[i].Verified = true
			appendEvent(d, models.EventEvidenceVerified, "Доказательство проверено", actor.ID, now)
			return true, nil
		}
		return false, apperror.ErrEvidenceNotFound
	})
}

// EscalateDispute передаёт спор медиатору и планирует сессию медиации.
// Повторная эскалация ничего не меняет и не считается ошибкой.
func (s *DisputeService) EscalateDispute(ctx context.Context, id uuid.UUID, actor Actor, reason string) (*models.Dispute, error) {
	if err := validation.ValidateReason(reason); err != nil {
		return nil, validationErr(err)
	}

	escalated := false
	d, err := s.mutate(ctx, id, events.DisputeEscalated, actor, func(d *models.Dispute, now time.Time) (bool, error) {
		if err := requireParticipantOrStaff(d, actor); err != nil {
			return false, err
		}
		switch d.Status {
		case models.DisputeStatusEscalated:
			return false, nil
		case models.DisputeStatusOpen, models.DisputeStatusUnderReview:
		default:
			return false, invalidDisputeState(d.Status, "эскалировать спор")
		}

		d.Status = models.DisputeStatusEscalated
		d.Priority = models.PriorityCritical
		if d.MediatorID == nil && s.mediation != nil {
			if m, ok := s.mediation.NextMediator(); ok {
				d.MediatorID = ptr(m.ID)
			}
		}
		description := "Спор передан медиатору"
		if r := strings.TrimSpace(reason); r != "" {
			description += ": " + r
		}
		appendEvent(d, models.EventEscalated, description, actor.ID, now)
		escalated = true
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	if escalated && s.mediation != nil {
		s.scheduleMediation(ctx, d.Clone())
	}
	return d, nil
}

// scheduleMediation создаёт сессию в фоне, не задерживая эскалацию.
func (s *DisputeService) scheduleMediation(ctx context.Context, d *models.Dispute) {
	goroutine.SafeGoWithContext(context.WithoutCancel(ctx), func(ctx context.Context) {
		ctx, cancel := context.WithTimeout(ctx, scheduleTimeout)
		defer cancel()
		if _, err := s.mediation.schedule(ctx, d); err != nil {
			s.log(d, SystemActor).WithError(err).Error("не удалось запланировать медиацию")
		}
	})
}

// ResolveDispute принимает решение по спору на рассмотрении или эскалированному.
func (s *DisputeService) ResolveDispute(ctx context.Context, id uuid.UUID, actor Actor, in ResolutionInput) (*models.Dispute, error) {
	if !actor.IsStaff() {
		return nil, apperror.ErrForbidden
	}
	if _, ok := models.ValidResolutionKinds[in.Kind]; !ok {
		return nil, validationErr(fmt.Errorf("некорректный тип решения: %s", in.Kind))
	}
	if err := validation.ValidateMessageContent(in.Decision); err != nil {
		return nil, validationErr(err)
	}
	if err := validation.ValidateRefund(in.RefundAmount, in.RefundPercentage); err != nil {
		return nil, validationErr(err)
	}

	return s.mutate(ctx, id, events.DisputeResolved, actor, func(d *models.Dispute, now time.Time) (bool, error) {
		if d.Status != models.DisputeStatusUnderReview && d.Status != models.DisputeStatusEscalated {
			return false, invalidDisputeState(d.Status, "вынести решение")
		}
		d.Status = models.DisputeStatusResolved
		d.Resolution = &models.Resolution{
			Kind:             in.Kind,
			Decision:         strings.TrimSpace(in.Decision),
			RefundAmount:     in.RefundAmount,
			RefundPercentage: in.RefundPercentage,
		}
		appendEvent(d, models.EventResolved, fmt.Sprintf("Вынесено решение: %s", in.Kind), actor.ID, now)
		return true, nil
	})
}

// AcceptResolution фиксирует согласие стороны с решением. Когда согласны
// обе стороны, решение считается исполненным.
func (s *DisputeService) AcceptResolution(ctx context.Context, id uuid.UUID, actor Actor) (*models.Dispute, error) {
	return s.mutate(ctx, id, events.DisputeResolutionAccepted, actor, func(d *models.Dispute, now time.Time) (bool, error) {
		role, ok := d.PartyRoleOf(actor.ID)
		if !ok {
			return false, apperror.ErrForbidden
		}
		if d.Status != models.DisputeStatusResolved || d.Resolution == nil {
			return false, invalidDisputeState(d.Status, "принять решение")
		}

		r := d.Resolution
		switch role {
		case models.RoleClient:
			if r.ClientAgreed {
				return false, nil
			}
			r.ClientAgreed = true
		case models.RoleFreelancer:
			if r.FreelancerAgreed {
				return false, nil
			}
			r.FreelancerAgreed = true
		}
		if r.ClientAgreed && r.FreelancerAgreed {
			r.ImplementedAt = ptr(now)
		}
		appendEvent(d, models.EventResolutionAccepted, fmt.Sprintf("Решение принято стороной %s", role), actor.ID, now)
		return true, nil
	})
}

// CloseDispute закрывает спор после решения. Закрытие терминально.
func (s *DisputeService) CloseDispute(ctx context.Context, id uuid.UUID, actor Actor) (*models.Dispute, error) {
	return s.mutate(ctx, id, events.DisputeClosed, actor, func(d *models.Dispute, now time.Time) (bool, error) {
		if err := requireParticipantOrStaff(d, actor); err != nil {
			return false, err
		}
		if d.Status != models.DisputeStatusResolved {
			return false, invalidDisputeState(d.Status, "закрыть спор")
		}
		d.Status = models.DisputeStatusClosed
		appendEvent(d, models.EventClosed, "Спор закрыт", actor.ID, now)
		return true, nil
	})
}

// mutate применяет fn к свежему снимку спора под блокировкой записи.
// Если fn вернула changed=false, спор не сохраняется и событие не публикуется.
func (s *DisputeService) mutate(
	ctx context.Context,
	id uuid.UUID,
	eventType string,
	actor Actor,
	fn func(d *models.Dispute, now time.Time) (changed bool, err error),
) (*models.Dispute, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	d, err := s.store.GetDispute(ctx, id)
	if err != nil {
		return nil, storeErr(err)
	}

	changed, err := fn(d, s.now())
	if err != nil {
		return nil, err
	}
	if !changed {
		return d, nil
	}

	if err := s.store.UpdateDispute(ctx, d); err != nil {
		return nil, storeErr(err)
	}

	s.log(d, actor.ID).WithField("event", eventType).Info("спор обновлён")
	s.notify(eventType, d, actor.ID)
	return d, nil
}

func (s *DisputeService) notify(eventType string, d *models.Dispute, actorID string) {
	recipients := []string{d.Initiator.ID, d.Respondent.ID}
	if d.MediatorID != nil {
		recipients = append(recipients, *d.MediatorID)
	}
	publish(s.events, events.Event{
		Type:       eventType,
		RecordID:   d.ID,
		Actor:      actorID,
		Recipients: recipients,
		Data:       d.Clone(),
		OccurredAt: d.UpdatedAt,
	})
}

func (s *DisputeService) log(d *models.Dispute, actorID string) *logrus.Entry {
	return logger.With(logrus.Fields{"dispute_id": d.ID, "status": d.Status, "actor": actorID})
}

// appendEvent добавляет запись в журнал и обновляет время изменения.
func appendEvent(d *models.Dispute, kind models.TimelineEventKind, description, actor string, now time.Time) {
	d.Timeline = append(d.Timeline, models.TimelineEvent{
		ID:          uuid.New(),
		Kind:        kind,
		Description: description,
		Actor:       actor,
		Timestamp:   now,
	})
	d.UpdatedAt = now
}

func isTerminal(status models.DisputeStatus) bool {
	return status == models.DisputeStatusResolved || status == models.DisputeStatusClosed
}

func requireParticipantOrStaff(d *models.Dispute, actor Actor) error {
	if actor.IsStaff() || d.IsParticipant(actor.ID) {
		return nil
	}
	return apperror.ErrForbidden
}

func invalidDisputeState(status models.DisputeStatus, action string) error {
	return apperror.Newf(apperror.ErrCodeInvalidState, "нельзя %s в статусе %s", action, status)
}
