package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/freelance-arbitration/internal/dto"
	"github.com/ignatzorin/freelance-arbitration/internal/http/handlers/common"
	"github.com/ignatzorin/freelance-arbitration/internal/logger"
	"github.com/ignatzorin/freelance-arbitration/internal/models"
	"github.com/ignatzorin/freelance-arbitration/internal/pkg/apperror"
	"github.com/ignatzorin/freelance-arbitration/internal/repository"
	"github.com/ignatzorin/freelance-arbitration/internal/service"
	"github.com/ignatzorin/freelance-arbitration/internal/storage"
)

// DisputeHandler обслуживает жизненный цикл споров.
type DisputeHandler struct {
	svc     *service.DisputeService
	storage storage.EvidenceStorage
}

func NewDisputeHandler(s *service.DisputeService, evidence storage.EvidenceStorage) *DisputeHandler {
	return &DisputeHandler{svc: s, storage: evidence}
}

// CreateDispute POST /disputes
func (h *DisputeHandler) CreateDispute(c *gin.Context) {
	actor, err := common.CurrentActor(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	var req dto.CreateDisputeRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.Fail(c, err)
		return
	}

	dispute, err := h.svc.CreateDispute(c.Request.Context(), service.CreateDisputeInput{
		Kind:        models.DisputeKind(req.Kind),
		Initiator:   models.Party{ID: actor.ID, Role: models.PartyRole(req.InitiatorRole)},
		Respondent:  models.Party{ID: req.Respondent.ID, Role: models.PartyRole(req.Respondent.Role)},
		Title:       req.Title,
		Description: req.Description,
		Amount:      req.Amount,
		Category:    req.Category,
		OrderID:     req.OrderID,
	})
	if err != nil {
		common.Fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, dispute)
}

// GetDispute GET /disputes/:id
func (h *DisputeHandler) GetDispute(c *gin.Context) {
	dispute, ok := h.loadVisible(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, dispute)
}

// ListDisputes GET /disputes?participant_id=&role=&status=
// Сотрудники видят все споры, стороны только свои.
func (h *DisputeHandler) ListDisputes(c *gin.Context) {
	actor, err := common.CurrentActor(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	filter := repository.DisputeFilter{
		ParticipantID: c.Query("participant_id"),
		Role:          models.PartyRole(c.Query("role")),
		Status:        models.DisputeStatus(c.Query("status")),
	}
	if !actor.IsStaff() {
		filter.ParticipantID = actor.ID
	}

	disputes, err := h.svc.ListDisputes(c.Request.Context(), filter)
	if err != nil {
		common.Fail(c, err)
		return
	}
	common.RespondPage(c, disputes)
}

// RespondToDispute POST /disputes/:id/responses
func (h *DisputeHandler) RespondToDispute(c *gin.Context) {
	var req dto.RespondDisputeRequest
	h.mutate(c, &req, func(ctx context.Context, actor service.Actor, id uuid.UUID) (*models.Dispute, error) {
		return h.svc.RespondToDispute(ctx, id, actor, req.Text)
	})
}

// AddEvidence POST /disputes/:id/evidence
func (h *DisputeHandler) AddEvidence(c *gin.Context) {
	var req dto.AddEvidenceRequest
	h.mutate(c, &req, func(ctx context.Context, actor service.Actor, id uuid.UUID) (*models.Dispute, error) {
		return h.svc.AddEvidence(ctx, id, actor, service.EvidenceInput{
			Type:        models.EvidenceType(req.Type),
			URL:         req.URL,
			Description: req.Description,
		})
	})
}

// UploadEvidence POST /disputes/:id/uploads (multipart: file, type?, description?)
func (h *DisputeHandler) UploadEvidence(c *gin.Context) {
	actor, err := common.CurrentActor(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}
	dispute, ok := h.loadVisible(c)
	if !ok {
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		common.RespondBadRequest(c, "поле file обязательно")
		return
	}
	if file.Size == 0 {
		common.RespondBadRequest(c, "файл не может быть пустым")
		return
	}

	src, err := file.Open()
	if err != nil {
		common.Fail(c, err)
		return
	}
	defer src.Close()

	// Читаем первые байты для проверки магических байтов
	buffer := make([]byte, storage.SniffLen)
	n, err := io.ReadFull(src, buffer)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		common.RespondBadRequest(c, "не удалось прочитать файл")
		return
	}
	evidenceType, contentType, err := storage.DetectEvidenceType(buffer[:n])
	if err != nil {
		common.RespondBadRequest(c, "неподдерживаемый тип файла. Разрешены изображения, видео и документы")
		return
	}
	// Сторона может уточнить тип, например скриншот вместо изображения.
	if declared := models.EvidenceType(c.PostForm("type")); declared != "" {
		evidenceType = declared
	}

	if _, err := src.Seek(0, io.SeekStart); err != nil {
		common.Fail(c, err)
		return
	}

	ctx := c.Request.Context()
	obj, err := h.storage.Save(ctx, dispute.ID, file.Filename, contentType, src)
	if errors.Is(err, storage.ErrTooLarge) {
		common.RespondError(c, http.StatusRequestEntityTooLarge, "размер файла превышает лимит")
		return
	}
	if err != nil {
		common.Fail(c, err)
		return
	}

	updated, err := h.svc.AddEvidence(ctx, dispute.ID, actor, service.EvidenceInput{
		Type:        evidenceType,
		URL:         obj.Key,
		Description: c.PostForm("description"),
		Checksum:    obj.Checksum,
	})
	if err != nil {
		if delErr := h.storage.Delete(ctx, obj.Key); delErr != nil {
			logger.With(logrus.Fields{"dispute_id": dispute.ID, "key": obj.Key}).
				WithError(delErr).Warn("не удалось удалить файл отклонённого доказательства")
		}
		common.Fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.EvidenceUploadResponse{
		Dispute:  updated,
		Evidence: updated.Evidence[len(updated.Evidence)-1],
		Size:     obj.Size,
	})
}

// VerifyEvidence POST /disputes/:id/evidence/:evidenceId/verify
func (h *DisputeHandler) VerifyEvidence(c *gin.Context) {
	evidenceID, err := common.ParseUUIDParam(c, "evidenceId")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}
	h.mutate(c, nil, func(ctx context.Context, actor service.Actor, id uuid.UUID) (*models.Dispute, error) {
		return h.svc.VerifyEvidence(ctx, id, evidenceID, actor)
	})
}

// EscalateDispute POST /disputes/:id/escalate
func (h *DisputeHandler) EscalateDispute(c *gin.Context) {
	var req dto.EscalateDisputeRequest
	h.mutate(c, &req, func(ctx context.Context, actor service.Actor, id uuid.UUID) (*models.Dispute, error) {
		return h.svc.EscalateDispute(ctx, id, actor, req.Reason)
	})
}

// ResolveDispute POST /disputes/:id/resolve
func (h *DisputeHandler) ResolveDispute(c *gin.Context) {
	var req dto.ResolveDisputeRequest
	h.mutate(c, &req, func(ctx context.Context, actor service.Actor, id uuid.UUID) (*models.Dispute, error) {
		return h.svc.ResolveDispute(ctx, id, actor, service.ResolutionInput{
			Kind:             models.ResolutionKind(req.Kind),
			Decision:         req.Decision,
			RefundAmount:     req.RefundAmount,
			RefundPercentage: req.RefundPercentage,
		})
	})
}

// AcceptResolution POST /disputes/:id/accept
func (h *DisputeHandler) AcceptResolution(c *gin.Context) {
	h.mutate(c, nil, func(ctx context.Context, actor service.Actor, id uuid.UUID) (*models.Dispute, error) {
		return h.svc.AcceptResolution(ctx, id, actor)
	})
}

// CloseDispute POST /disputes/:id/close
func (h *DisputeHandler) CloseDispute(c *gin.Context) {
	h.mutate(c, nil, func(ctx context.Context, actor service.Actor, id uuid.UUID) (*models.Dispute, error) {
		return h.svc.CloseDispute(ctx, id, actor)
	})
}

// loadVisible загружает спор из :id и проверяет, что пользователь его видит.
func (h *DisputeHandler) loadVisible(c *gin.Context) (*models.Dispute, bool) {
	actor, err := common.CurrentActor(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return nil, false
	}
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return nil, false
	}

	dispute, err := h.svc.GetDispute(c.Request.Context(), id)
	if err != nil {
		common.Fail(c, err)
		return nil, false
	}
	if !actor.IsStaff() && !dispute.IsParticipant(actor.ID) {
		common.Fail(c, apperror.ErrForbidden)
		return nil, false
	}
	return dispute, true
}

// mutate разбирает тело запроса (если req не nil) и применяет операцию к спору из :id.
func (h *DisputeHandler) mutate(
	c *gin.Context,
	req any,
	op func(ctx context.Context, actor service.Actor, id uuid.UUID) (*models.Dispute, error),
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
	if req != nil && c.Request.ContentLength != 0 {
		if err := common.BindAndValidate(c, req); err != nil {
			common.Fail(c, err)
			return
		}
	}

	dispute, err := op(c.Request.Context(), actor, id)
	if err != nil {
		common.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dispute)
}
