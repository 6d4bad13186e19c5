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
	"github.com/ignatzorin/freelance-arbitration/internal/repository"
	"github.com/ignatzorin/freelance-arbitration/internal/service"
)

// ReviewHandler обслуживает отзывы и их модерацию.
type ReviewHandler struct {
	reviews *service.ReviewService
}

func NewReviewHandler(reviews *service.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviews: reviews}
}

// SubmitReview POST /reviews
func (h *ReviewHandler) SubmitReview(c *gin.Context) {
	actor, err := common.CurrentActor(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	var req dto.SubmitReviewRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.Fail(c, err)
		return
	}

	review, err := h.reviews.SubmitReview(c.Request.Context(), actor, service.SubmitReviewInput{
		TargetType:       models.ReviewTargetType(req.TargetType),
		TargetID:         req.TargetID,
		ReviewerName:     req.ReviewerName,
		ReviewerRole:     models.PartyRole(req.ReviewerRole),
		Rating:           req.Rating,
		Title:            req.Title,
		Content:          req.Content,
		Pros:             req.Pros,
		Cons:             req.Cons,
		Recommend:        req.Recommend,
		VerifiedPurchase: req.VerifiedPurchase,
		OrderID:          req.OrderID,
	})
	if err != nil {
		common.Fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, review)
}

// GetReview GET /reviews/:id
// Неопубликованный отзыв видят только автор и сотрудники.
func (h *ReviewHandler) GetReview(c *gin.Context) {
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

	review, err := h.reviews.GetReview(c.Request.Context(), id)
	if err != nil {
		common.Fail(c, err)
		return
	}
	if review.Status != models.ReviewStatusApproved && !actor.IsStaff() && review.ReviewerID != actor.ID {
		common.Fail(c, apperror.ErrReviewNotFound)
		return
	}
	c.JSON(http.StatusOK, review)
}

// ListReviews GET /reviews?target_type=&target_id=&reviewer_id=&status=
func (h *ReviewHandler) ListReviews(c *gin.Context) {
	actor, err := common.CurrentActor(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	filter := repository.ReviewFilter{
		TargetType: models.ReviewTargetType(c.Query("target_type")),
		TargetID:   c.Query("target_id"),
		ReviewerID: c.Query("reviewer_id"),
		Status:     models.ReviewStatus(c.Query("status")),
	}
	// Чужие отзывы вне модерации доступны только опубликованными
	if !actor.IsStaff() && filter.ReviewerID != actor.ID {
		filter.Status = models.ReviewStatusApproved
	}

	reviews, err := h.reviews.ListReviews(c.Request.Context(), filter)
	if err != nil {
		common.Fail(c, err)
		return
	}
	common.RespondPage(c, reviews)
}

// ModerationQueue GET /moderation/queue
func (h *ReviewHandler) ModerationQueue(c *gin.Context) {
	reviews, err := h.reviews.ModerationQueue(c.Request.Context())
	if err != nil {
		common.Fail(c, err)
		return
	}
	common.RespondPage(c, reviews)
}

// FlagReview POST /reviews/:id/flags
func (h *ReviewHandler) FlagReview(c *gin.Context) {
	var req dto.FlagReviewRequest
	h.mutate(c, &req, func(ctx context.Context, actor service.Actor, id uuid.UUID) (*models.Review, error) {
		return h.reviews.FlagReview(ctx, id, actor, service.FlagInput{
			Kind:   models.FlagKind(req.Kind),
			Reason: req.Reason,
		})
	})
}

// ModerateReview POST /reviews/:id/moderate
func (h *ReviewHandler) ModerateReview(c *gin.Context) {
	var req dto.ModerateReviewRequest
	h.mutate(c, &req, func(ctx context.Context, actor service.Actor, id uuid.UUID) (*models.Review, error) {
		return h.reviews.ModerateReview(ctx, id, actor, models.ModerationAction(req.Action), req.Reason)
	})
}

// RespondToReview POST /reviews/:id/response
func (h *ReviewHandler) RespondToReview(c *gin.Context) {
	var req dto.RespondReviewRequest
	h.mutate(c, &req, func(ctx context.Context, actor service.Actor, id uuid.UUID) (*models.Review, error) {
		return h.reviews.RespondToReview(ctx, id, actor, service.ReviewResponseInput{
			ResponderName: req.ResponderName,
			Content:       req.Content,
		})
	})
}

// MarkHelpful POST /reviews/:id/helpful
func (h *ReviewHandler) MarkHelpful(c *gin.Context) {
	var req dto.HelpfulVoteRequest
	h.mutate(c, &req, func(ctx context.Context, actor service.Actor, id uuid.UUID) (*models.Review, error) {
		return h.reviews.MarkHelpful(ctx, id, actor, *req.Helpful)
	})
}

func (h *ReviewHandler) mutate(
	c *gin.Context,
	req any,
	op func(ctx context.Context, actor service.Actor, id uuid.UUID) (*models.Review, error),
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
	if err := common.BindAndValidate(c, req); err != nil {
		common.Fail(c, err)
		return
	}

	review, err := op(c.Request.Context(), actor, id)
	if err != nil {
		common.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, review)
}
