package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/freelance-arbitration/internal/dto"
	"github.com/ignatzorin/freelance-arbitration/internal/http/handlers/common"
	"github.com/ignatzorin/freelance-arbitration/internal/models"
	"github.com/ignatzorin/freelance-arbitration/internal/pkg/apperror"
	"github.com/ignatzorin/freelance-arbitration/internal/service"
)

// MediationHandler обслуживает сессии медиации.
// Стороны спора видят его сессии, сотрудники видят все.
type MediationHandler struct {
	svc      *service.MediationService
	disputes *service.DisputeService
}

func NewMediationHandler(s *service.MediationService, disputes *service.DisputeService) *MediationHandler {
	return &MediationHandler{svc: s, disputes: disputes}
}

// ScheduleSession POST /mediation/sessions
func (h *MediationHandler) ScheduleSession(c *gin.Context) {
	var req dto.ScheduleSessionRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.Fail(c, err)
		return
	}

	session, err := h.svc.ScheduleSession(c.Request.Context(), req.DisputeID)
	if err != nil {
		common.Fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, session)
}

// ListSessions GET /mediation/sessions?dispute_id=
func (h *MediationHandler) ListSessions(c *gin.Context) {
	actor, err := common.CurrentActor(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}
	disputeID, err := common.ParseUUIDQuery(c, "dispute_id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	if !actor.IsStaff() {
		if disputeID == uuid.Nil {
			common.RespondBadRequest(c, "параметр dispute_id обязателен")
			return
		}
		if err := h.checkParticipant(c.Request.Context(), actor, disputeID); err != nil {
			common.Fail(c, err)
			return
		}
	}

	sessions, err := h.svc.ListSessions(c.Request.Context(), disputeID)
	if err != nil {
		common.Fail(c, err)
		return
	}
	common.RespondPage(c, sessions)
}

// GetSession GET /mediation/sessions/:id
func (h *MediationHandler) GetSession(c *gin.Context) {
	actor, err := common.CurrentActor(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	session, err := h.svc.GetSession(c.Request.Context(), id)
	if err != nil {
		common.Fail(c, err)
		return
	}
	if !actor.IsStaff() && actor.ID != session.MediatorID {
		if err := h.checkParticipant(c.Request.Context(), actor, session.DisputeID); err != nil {
			common.Fail(c, err)
			return
		}
	}
	c.JSON(http.StatusOK, session)
}

// StartSession POST /mediation/sessions/:id/start
func (h *MediationHandler) StartSession(c *gin.Context) {
	h.transition(c, func(ctx context.Context, actor service.Actor, id uuid.UUID) (*models.MediationSession, error) {
		return h.svc.StartSession(ctx, id, actor)
	})
}

// CompleteSession POST /mediation/sessions/:id/complete
func (h *MediationHandler) CompleteSession(c *gin.Context) {
	var req dto.CompleteSessionRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.Fail(c, err)
		return
	}
	h.transition(c, func(ctx context.Context, actor service.Actor, id uuid.UUID) (*models.MediationSession, error) {
		return h.svc.CompleteSession(ctx, id, actor, service.CompleteSessionInput{
			Outcome:    req.Outcome,
			Transcript: req.Transcript,
			NextSteps:  req.NextSteps,
			Duration:   req.Duration,
		})
	})
}

// CancelSession POST /mediation/sessions/:id/cancel
func (h *MediationHandler) CancelSession(c *gin.Context) {
	h.transition(c, func(ctx context.Context, actor service.Actor, id uuid.UUID) (*models.MediationSession, error) {
		return h.svc.CancelSession(ctx, id, actor)
	})
}

func (h *MediationHandler) transition(
	c *gin.Context,
	op func(ctx context.Context, actor service.Actor, id uuid.UUID) (*models.MediationSession, error),
) {
	actor, err := common.CurrentActor(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	session, err := op(c.Request.Context(), actor, id)
	if err != nil {
		common.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

func (h *MediationHandler) checkParticipant(ctx context.Context, actor service.Actor, disputeID uuid.UUID) error {
	d, err := h.disputes.GetDispute(ctx, disputeID)
	if err != nil {
		return err
	}
	if !d.IsParticipant(actor.ID) {
		return apperror.ErrForbidden
	}
	return nil
}
