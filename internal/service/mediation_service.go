package service

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/freelance-arbitration/internal/config"
	"github.com/ignatzorin/freelance-arbitration/internal/events"
	"github.com/ignatzorin/freelance-arbitration/internal/logger"
	"github.com/ignatzorin/freelance-arbitration/internal/models"
	"github.com/ignatzorin/freelance-arbitration/internal/pkg/apperror"
	"github.com/ignatzorin/freelance-arbitration/internal/repository"
	"github.com/ignatzorin/freelance-arbitration/internal/validation"
)

const defaultSessionMinutes = 60

// MediationConfig параметры планировщика медиаций.
type MediationConfig struct {
	LeadTime  time.Duration
	Mediators []config.Mediator
}

// CompleteSessionInput итоги проведённой сессии.
type CompleteSessionInput struct {
	Outcome    string
	Transcript *string
	NextSteps  []string
	Duration   *int
}

// MediationService создаёт и ведёт сессии медиации по эскалированным спорам.
type MediationService struct {
	sessions repository.SessionStore
	disputes repository.DisputeStore
	events   events.Publisher
	cfg      MediationConfig
	locks    *keyedLocker
	next     atomic.Uint64
	now      func() time.Time
}

func NewMediationService(sessions repository.SessionStore, disputes repository.DisputeStore, publisher events.Publisher, cfg MediationConfig) *MediationService {
	return &MediationService{
		sessions: sessions,
		disputes: disputes,
		events:   publisher,
		cfg:      cfg,
		locks:    newKeyedLocker(),
		now:      systemClock,
	}
}

// NextMediator выбирает медиатора из пула по кругу.
func (s *MediationService) NextMediator() (config.Mediator, bool) {
	if len(s.cfg.Mediators) == 0 {
		return config.Mediator{}, false
	}
	n := s.next.Add(1) - 1
	return s.cfg.Mediators[n%uint64(len(s.cfg.Mediators))], true
}

func (s *MediationService) mediatorByID(id string) config.Mediator {
	for _, m := range s.cfg.Mediators {
		if m.ID == id {
			return m
		}
	}
	return config.Mediator{ID: id}
}

// ScheduleSession создаёт сессию по эскалированному спору.
func (s *MediationService) ScheduleSession(ctx context.Context, disputeID uuid.UUID) (*models.MediationSession, error) {
	d, err := s.disputes.GetDispute(ctx, disputeID)
	if err != nil {
		return nil, storeErr(err)
	}
	if d.Status != models.DisputeStatusEscalated {
		return nil, apperror.Newf(apperror.ErrCodeInvalidState, "медиация доступна только для эскалированных споров, текущий статус %s", d.Status)
	}
	return s.schedule(ctx, d)
}

// schedule создаёт сессию по снимку спора без проверки статуса.
func (s *MediationService) schedule(ctx context.Context, d *models.Dispute) (*models.MediationSession, error) {
	var mediator config.Mediator
	if d.MediatorID != nil {
		mediator = s.mediatorByID(*d.MediatorID)
	} else if m, ok := s.NextMediator(); ok {
		mediator = m
	}

	now := s.now()
	session := &models.MediationSession{
		ID:           uuid.New(),
		DisputeID:    d.ID,
		MediatorID:   mediator.ID,
		MediatorName: mediator.Name,
		ScheduledAt:  now.Add(s.cfg.LeadTime),
		Duration:     ptr(defaultSessionMinutes),
		Channel:      models.ChannelVideo,
		Status:       models.SessionScheduled,
		// Участники добавляются после рассылки приглашений.
		Participants: []string{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.sessions.CreateSession(ctx, session); err != nil {
		return nil, storeErr(err)
	}

	logger.With(logrus.Fields{"dispute_id": d.ID, "session_id": session.ID, "mediator_id": mediator.ID}).
		Info("сессия медиации запланирована")
	publish(s.events, events.Event{
		Type:       events.MediationScheduled,
		RecordID:   session.ID,
		Actor:      SystemActor,
		Recipients: sessionRecipients(d, mediator.ID),
		Data:       session.Clone(),
		OccurredAt: now,
	})
	return session, nil
}

func sessionRecipients(d *models.Dispute, mediatorID string) []string {
	out := []string{d.Initiator.ID, d.Respondent.ID}
	if mediatorID != "" {
		out = append(out, mediatorID)
	}
	return out
}

// GetSession возвращает сессию по ID.
func (s *MediationService) GetSession(ctx context.Context, id uuid.UUID) (*models.MediationSession, error) {
	session, err := s.sessions.GetSession(ctx, id)
	return session, storeErr(err)
}

// ListSessions возвращает сессии спора в порядке создания. uuid.Nil выбирает все.
func (s *MediationService) ListSessions(ctx context.Context, disputeID uuid.UUID) ([]models.MediationSession, error) {
	sessions, err := s.sessions.ListSessions(ctx, repository.SessionFilter{DisputeID: disputeID})
	return sessions, storeErr(err)
}

// StartSession переводит сессию в статус in-progress.
func (s *MediationService) StartSession(ctx context.Context, id uuid.UUID, actor Actor) (*models.MediationSession, error) {
	return s.transition(ctx, id, actor, func(m *models.MediationSession) error {
		if m.Status != models.SessionScheduled {
			return invalidSessionState(m.Status, "начать")
		}
		m.Status = models.SessionInProgress
		return nil
	})
}

// CompleteSession завершает сессию и сохраняет итоги.
func (s *MediationService) CompleteSession(ctx context.Context, id uuid.UUID, actor Actor, in CompleteSessionInput) (*models.MediationSession, error) {
	if err := validation.ValidateMessageContent(in.Outcome); err != nil {
		return nil, validationErr(err)
	}
	if err := validation.ValidateProsCons("следующие шаги", in.NextSteps); err != nil {
		return nil, validationErr(err)
	}

	return s.transition(ctx, id, actor, func(m *models.MediationSession) error {
		if m.Status != models.SessionScheduled && m.Status != models.SessionInProgress {
			return invalidSessionState(m.Status, "завершить")
		}
		m.Status = models.SessionCompleted
		m.Outcome = ptr(in.Outcome)
		m.Transcript = in.Transcript
		m.NextSteps = in.NextSteps
		if in.Duration != nil {
			m.Duration = in.Duration
		}
		return nil
	})
}

// CancelSession отменяет сессию. Запись сохраняется.
func (s *MediationService) CancelSession(ctx context.Context, id uuid.UUID, actor Actor) (*models.MediationSession, error) {
	return s.transition(ctx, id, actor, func(m *models.MediationSession) error {
		if m.Status != models.SessionScheduled && m.Status != models.SessionInProgress {
			return invalidSessionState(m.Status, "отменить")
		}
		m.Status = models.SessionCancelled
		return nil
	})
}

func (s *MediationService) transition(ctx context.Context, id uuid.UUID, actor Actor, fn func(m *models.MediationSession) error) (*models.MediationSession, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	m, err := s.sessions.GetSession(ctx, id)
	if err != nil {
		return nil, storeErr(err)
	}
	if !actor.IsStaff() && actor.ID != m.MediatorID {
		return nil, apperror.ErrForbidden
	}
	if err := fn(m); err != nil {
		return nil, err
	}
	m.UpdatedAt = s.now()

	if err := s.sessions.UpdateSession(ctx, m); err != nil {
		return nil, storeErr(err)
	}

	recipients := []string{m.MediatorID}
	if d, err := s.disputes.GetDispute(ctx, m.DisputeID); err == nil {
		recipients = sessionRecipients(d, m.MediatorID)
	}
	publish(s.events, events.Event{
		Type:       events.MediationUpdated,
		RecordID:   m.ID,
		Actor:      actor.ID,
		Recipients: recipients,
		Data:       m.Clone(),
		OccurredAt: m.UpdatedAt,
	})
	return m, nil
}

func invalidSessionState(status models.SessionStatus, verb string) error {
	return apperror.Newf(apperror.ErrCodeInvalidState, "нельзя %s сессию в статусе %s", verb, status)
}
