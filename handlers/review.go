package handlers

import (
	"net/http"

	"fixerhub/middleware"
	"fixerhub/models"
	"fixerhub/services/review"
	"fixerhub/utils"

	"github.com/gin-gonic/gin"
)

type ReviewHandler struct {
	ReviewService review.ReviewService
}

func NewReviewHandler(svc review.ReviewService) *ReviewHandler {
	return &ReviewHandler{ReviewService: svc}
}

// CreateHandler handles POST /api/reviews.
func (h *ReviewHandler) CreateHandler(c *gin.Context) {
	var req models.NewReviewRequest
	if !bindJSON(c, &req) {
		return
	}
	r, err := h.ReviewService.Create(c.Request.Context(), middleware.ActorFrom(c).ID, req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, r)
}

func (h *ReviewHandler) RespondHandler(c *gin.Context) {
	var req struct {
		Comment string `json:"comment" binding:"required"`
	}
	if !bindJSON(c, &req) {
		return
	}
	r, err := h.ReviewService.Respond(c.Request.Context(), middleware.ActorFrom(c).ID, c.Param("id"), req.Comment)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

// ListForProviderHandler handles GET /api/providers/:id/reviews.
func (h *ReviewHandler) ListForProviderHandler(c *gin.Context) {
	limit, skip := page(c)
	reviews, err := h.ReviewService.ListByProvider(c.Request.Context(), c.Param("id"), limit, skip)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reviews": reviews})
}
