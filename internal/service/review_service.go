package service

import (
	"context"
	"errors"
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
	"github.com/ignatzorin/freelance-arbitration/internal/scoring"
	"github.com/ignatzorin/freelance-arbitration/internal/validation"
)

// AutoApproveReason причина, с которой отзыв одобряется автоматически.
const AutoApproveReason = "Auto-approved"

const autoApproveTimeout = 10 * time.Second

// ReviewConfig параметры модерации отзывов.
type ReviewConfig struct {
	ScoringTimeout       time.Duration
	AutoApproveThreshold float64
	AutoApproveDelay     time.Duration
}

// SubmitReviewInput данные нового отзыва.
type SubmitReviewInput struct {
	TargetType       models.ReviewTargetType
	TargetID         string
	ReviewerName     string
	ReviewerRole     models.PartyRole
	Rating           int
	Title            string
	Content          string
	Pros             []string
	Cons             []string
	Recommend        bool
	VerifiedPurchase bool
	OrderID          *string
}

// FlagInput жалоба на отзыв.
type FlagInput struct {
	Kind   models.FlagKind
	Reason string
}

// ReviewResponseInput ответ на отзыв.
type ReviewResponseInput struct {
	ResponderName string
	Content       string
}

// ReviewService ведёт модерацию отзывов.
type ReviewService struct {
	store     repository.ReviewStore
	scorer    scoring.Scorer
	events    events.Publisher
	cfg       ReviewConfig
	locks     *keyedLocker
	approvals *approvalScheduler
	now       func() time.Time
}

func NewReviewService(store repository.ReviewStore, scorer scoring.Scorer, publisher events.Publisher, cfg ReviewConfig) *ReviewService {
	return &ReviewService{
		store:     store,
		scorer:    scorer,
		events:    publisher,
		cfg:       cfg,
		locks:     newKeyedLocker(),
		approvals: newApprovalScheduler(cfg.AutoApproveDelay),
		now:       systemClock,
	}
}

// Close отменяет все ожидающие автоодобрения.
func (s *ReviewService) Close() {
	s.approvals.Stop()
}

// ClampRating приводит оценку к диапазону 1..5.
func ClampRating(rating int) int {
	return max(1, min(5, rating))
}

func validateSubmit(actor Actor, in SubmitReviewInput) error {
	if err := validation.ValidatePartyID("автор отзыва", actor.ID); err != nil {
		return err
	}
	if _, ok := models.ValidReviewTargets[in.TargetType]; !ok {
		return fmt.Errorf("некорректный объект отзыва: %s", in.TargetType)
	}
	if err := validation.ValidatePartyID("объект отзыва", in.TargetID); err != nil {
		return err
	}
	if _, ok := models.ValidPartyRoles[in.ReviewerRole]; !ok {
		return fmt.Errorf("некорректная роль автора: %s", in.ReviewerRole)
	}
	if err := validation.ValidateReviewTitle(in.Title); err != nil {
		return err
	}
	if err := validation.ValidateReviewContent(in.Content); err != nil {
		return err
	}
	if err := validation.ValidateProsCons("достоинства", in.Pros); err != nil {
		return err
	}
	return validation.ValidateProsCons("недостатки", in.Cons)
}

// SubmitReview создаёт отзыв в статусе pending и сразу оценивает текст.
// Отзыв с оценкой не ниже порога одобряется автоматически после задержки,
// остальные ждут модератора в очереди.
func (s *ReviewService) SubmitReview(ctx context.Context, actor Actor, in SubmitReviewInput) (*models.Review, error) {
	if err := validateSubmit(actor, in); err != nil {
		return nil, validationErr(err)
	}

	assessment, scored := s.assess(ctx, in.Content)

	now := s.now()
	r := &models.Review{
		ID:               uuid.New(),
		TargetType:       in.TargetType,
		TargetID:         in.TargetID,
		ReviewerID:       actor.ID,
		ReviewerName:     strings.TrimSpace(in.ReviewerName),
		ReviewerRole:     in.ReviewerRole,
		Rating:           ClampRating(in.Rating),
		Title:            strings.TrimSpace(in.Title),
		Content:          strings.TrimSpace(in.Content),
		Pros:             in.Pros,
		Cons:             in.Cons,
		Recommend:        in.Recommend,
		VerifiedPurchase: in.VerifiedPurchase,
		Status:           models.ReviewStatusPending,
		OrderID:          in.OrderID,
		CreatedAt:        now,
		UpdatedAt:        now,
		Moderation: &models.ModerationStatus{
			Status:  models.ModerationPending,
			Flags:   []models.ReviewFlag{},
			AIScore: ptr(assessment.Score),
			AIFlags: assessment.Flags,
		},
	}

	if err := s.store.CreateReview(ctx, r); err != nil {
		return nil, storeErr(err)
	}

	entry := s.log(r, actor.ID).WithField("ai_score", assessment.Score)
	if scored && assessment.Score >= s.cfg.AutoApproveThreshold {
		id := r.ID
		s.approvals.Schedule(id, func() { s.autoApprove(id) })
		entry.Info("отзыв принят, запланировано автоодобрение")
	} else {
		entry.Info("отзыв принят, ожидает модерации")
	}

	s.notify(events.ReviewSubmitted, r, actor.ID)
	return r, nil
}

// assess вызывает оценщик с ограничением по времени. Если оценщик не ответил,
// вернул ошибку или некорректную оценку, возвращается нейтральная оценка и scored=false.
func (s *ReviewService) assess(ctx context.Context, text string) (scoring.Assessment, bool) {
	neutral := scoring.Assessment{Score: scoring.Neutral}
	if s.scorer == nil {
		return neutral, false
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.ScoringTimeout)
	defer cancel()

	type result struct {
		assessment scoring.Assessment
		err        error
	}
	done := make(chan result, 1)
	goroutine.SafeGo(func() {
		a, err := s.scorer.Score(ctx, text)
		done <- result{assessment: a, err: err}
	})

	select {
	case res := <-done:
		if res.err == nil {
			if !res.assessment.Valid() {
				logger.L().WithField("score", fmt.Sprint(res.assessment.Score)).
					Warn("оценщик вернул оценку вне диапазона [0, 1], отзыв уйдёт на ручную модерацию")
				return neutral, false
			}
			return res.assessment, true
		}
		if !errors.Is(res.err, context.DeadlineExceeded) {
			logger.L().WithError(res.err).Warn("оценщик вернул ошибку, отзыв уйдёт на ручную модерацию")
			return neutral, false
		}
	case <-ctx.Done():
	}

	logger.L().WithError(apperror.ErrScoringTimeout).
		WithField("timeout", s.cfg.ScoringTimeout.String()).
		Warn("оценщик не ответил вовремя, отзыв уйдёт на ручную модерацию")
	return neutral, false
}

// autoApprove одобряет отзыв, если его ещё никто не трогал.
func (s *ReviewService) autoApprove(id uuid.UUID) {
	ctx, cancel := context.WithTimeout(context.Background(), autoApproveTimeout)
	defer cancel()

	system := Actor{ID: SystemActor, Role: RoleModerator}
	_, err := s.mutate(ctx, id, events.ReviewModerated, system, func(r *models.Review, now time.Time) (bool, error) {
		if r.Moderation == nil {
			return false, s.moderationMissing(r)
		}
		if r.Status != models.ReviewStatusPending || r.Moderation.Status != models.ModerationPending {
			return false, nil
		}
		applyModeration(r, models.ActionApprove, system.ID, AutoApproveReason, now)
		return true, nil
	})
	if err != nil {
		logger.With(logrus.Fields{"review_id": id}).WithError(err).Error("автоодобрение не выполнено")
	}
}

// GetReview возвращает отзыв по ID.
func (s *ReviewService) GetReview(ctx context.Context, id uuid.UUID) (*models.Review, error) {
	r, err := s.store.GetReview(ctx, id)
	return r, storeErr(err)
}

// ListReviews возвращает отзывы по фильтру в порядке создания.
func (s *ReviewService) ListReviews(ctx context.Context, filter repository.ReviewFilter) ([]models.Review, error) {
	reviews, err := s.store.ListReviews(ctx, filter)
	return reviews, storeErr(err)
}

// ModerationQueue возвращает отзывы, ожидающие решения модератора.
func (s *ReviewService) ModerationQueue(ctx context.Context) ([]models.Review, error) {
	return s.ListReviews(ctx, repository.ReviewFilter{NeedsAttention: true})
}

// FlagReview добавляет жалобу и возвращает отзыв на повторную модерацию.
func (s *ReviewService) FlagReview(ctx context.Context, id uuid.UUID, actor Actor, in FlagInput) (*models.Review, error) {
	if _, ok := models.ValidFlagKinds[in.Kind]; !ok {
		return nil, validationErr(fmt.Errorf("некорректная причина жалобы: %s", in.Kind))
	}
	if err := validation.ValidateReason(in.Reason); err != nil {
		return nil, validationErr(err)
	}
	if err := validation.ValidatePartyID("автор жалобы", actor.ID); err != nil {
		return nil, validationErr(err)
	}

	r, err := s.mutate(ctx, id, events.ReviewFlagged, actor, func(r *models.Review, now time.Time) (bool, error) {
		if r.Status == models.ReviewStatusRemoved {
			return false, apperror.New(apperror.ErrCodeInvalidState, "нельзя пожаловаться на удалённый отзыв")
		}
		if r.Moderation == nil {
			return false, s.moderationMissing(r)
		}

		r.Moderation.Flags = append(r.Moderation.Flags, models.ReviewFlag{
			ID:        uuid.New(),
			Kind:      in.Kind,
			FlaggedBy: actor.ID,
			Reason:    strings.TrimSpace(in.Reason),
			CreatedAt: now,
		})
		r.Moderation.Status = models.ModerationReviewing
		r.Status = models.ReviewStatusFlagged
		r.UpdatedAt = now
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	s.approvals.Cancel(r.ID)
	return r, nil
}

// ModerateReview применяет решение модератора. Отменяет ожидающее автоодобрение.
func (s *ReviewService) ModerateReview(ctx context.Context, id uuid.UUID, actor Actor, action models.ModerationAction, reason string) (*models.Review, error) {
	if !actor.IsStaff() {
		return nil, apperror.ErrForbidden
	}
	if _, ok := models.ValidModerationActions[action]; !ok {
		return nil, validationErr(fmt.Errorf("некорректное решение модератора: %s", action))
	}
	if err := validation.ValidateReason(reason); err != nil {
		return nil, validationErr(err)
	}

	r, err := s.mutate(ctx, id, events.ReviewModerated, actor, func(r *models.Review, now time.Time) (bool, error) {
		if r.Moderation == nil {
			return false, s.moderationMissing(r)
		}
		applyModeration(r, action, actor.ID, reason, now)
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	// Отменяем только после записи: при ошибке хранилища автоодобрение остаётся в силе.
	s.approvals.Cancel(r.ID)
	return r, nil
}

// applyModeration переводит отзыв и статус модерации согласованно и
// закрывает все рассмотренные жалобы.
func applyModeration(r *models.Review, action models.ModerationAction, moderatorID, reason string, now time.Time) {
	switch action {
	case models.ActionApprove:
		r.Status, r.Moderation.Status = models.ReviewStatusApproved, models.ModerationApproved
	case models.ActionReject:
		r.Status, r.Moderation.Status = models.ReviewStatusRemoved, models.ModerationRejected
	case models.ActionEdit:
		r.Status, r.Moderation.Status = models.ReviewStatusApproved, models.ModerationEdited
	}

	r.Moderation.ModeratorID = ptr(moderatorID)
	r.Moderation.ModeratedAt = ptr(now)
	r.Moderation.Reason = nil
	if reason = strings.TrimSpace(reason); reason != "" {
		r.Moderation.Reason = ptr(reason)
	}
	for i := range r.Moderation.Flags {
		if !r.Moderation.Flags[i].Reviewed {
			r.Moderation.Flags[i].Reviewed = true
			r.Moderation.Flags[i].Action = ptr(string(action))
		}
	}
	r.UpdatedAt = now
}

// RespondToReview сохраняет ответ на отзыв. Повторный ответ заменяет прежний.
func (s *ReviewService) RespondToReview(ctx context.Context, id uuid.UUID, actor Actor, in ReviewResponseInput) (*models.Review, error) {
	if err := validation.ValidateMessageContent(in.Content); err != nil {
		return nil, validationErr(err)
	}

	return s.mutate(ctx, id, events.ReviewResponded, actor, func(r *models.Review, now time.Time) (bool, error) {
		if r.ReviewerID == actor.ID {
			return false, apperror.New(apperror.ErrCodeForbidden, "нельзя отвечать на собственный отзыв")
		}
		r.Response = &models.ReviewResponse{
			ResponderID:   actor.ID,
			ResponderName: strings.TrimSpace(in.ResponderName),
			Content:       strings.TrimSpace(in.Content),
			CreatedAt:     now,
		}
		r.UpdatedAt = now
		return true, nil
	})
}

// MarkHelpful учитывает голос «полезно» или «бесполезно».
func (s *ReviewService) MarkHelpful(ctx context.Context, id uuid.UUID, actor Actor, helpful bool) (*models.Review, error) {
	return s.mutate(ctx, id, "", actor, func(r *models.Review, now time.Time) (bool, error) {
		if r.ReviewerID == actor.ID {
			return false, apperror.New(apperror.ErrCodeForbidden, "нельзя голосовать за собственный отзыв")
		}
		if r.Status == models.ReviewStatusRemoved {
			return false, apperror.New(apperror.ErrCodeInvalidState, "нельзя голосовать за удалённый отзыв")
		}
		if helpful {
			r.HelpfulCount++
		} else {
			r.NotHelpfulCount++
		}
		return true, nil
	})
}

// mutate применяет fn к свежему снимку отзыва под блокировкой записи.
// Пустой eventType означает изменение без публикации события.
func (s *ReviewService) mutate(
	ctx context.Context,
	id uuid.UUID,
	eventType string,
	actor Actor,
	fn func(r *models.Review, now time.Time) (changed bool, err error),
) (*models.Review, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	r, err := s.store.GetReview(ctx, id)
	if err != nil {
		return nil, storeErr(err)
	}

	changed, err := fn(r, s.now())
	if err != nil {
		return nil, err
	}
	if !changed {
		return r, nil
	}

	if err := s.store.UpdateReview(ctx, r); err != nil {
		return nil, storeErr(err)
	}

	if eventType != "" {
		s.log(r, actor.ID).WithField("event", eventType).Info("отзыв обновлён")
		s.notify(eventType, r, actor.ID)
	}
	return r, nil
}

// moderationMissing сообщает о нарушении инварианта: у каждого принятого
// отзыва есть статус модерации.
func (s *ReviewService) moderationMissing(r *models.Review) error {
	s.log(r, SystemActor).Error("нарушен инвариант: у отзыва нет статуса модерации")
	return apperror.ErrModerationMissing
}

func (s *ReviewService) notify(eventType string, r *models.Review, actorID string) {
	publish(s.events, events.Event{
		Type:       eventType,
		RecordID:   r.ID,
		Actor:      actorID,
		Recipients: []string{r.ReviewerID, r.TargetID},
		Roles:      []string{RoleModerator},
		Data:       r.Clone(),
		OccurredAt: r.UpdatedAt,
	})
}

func (s *ReviewService) log(r *models.Review, actorID string) *logrus.Entry {
	return logger.With(logrus.Fields{"review_id": r.ID, "status": r.Status, "actor": actorID})
}
