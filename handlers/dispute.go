package handlers

import (
	"net/http"

	"fixerhub/middleware"
	"fixerhub/models"
	"fixerhub/services/dispute"
	"fixerhub/services/storage"
	"fixerhub/utils"

	"github.com/gin-gonic/gin"
)

type DisputeHandler struct {
	DisputeService dispute.DisputeService
}

func NewDisputeHandler(svc dispute.DisputeService) *DisputeHandler {
	return &DisputeHandler{DisputeService: svc}
}

// CreateHandler handles POST /api/disputes.
func (h *DisputeHandler) CreateHandler(c *gin.Context) {
	var req models.NewDisputeRequest
	if !bindJSON(c, &req) {
		return
	}
	d, err := h.DisputeService.Create(c.Request.Context(), middleware.ActorFrom(c), req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, d)
}

// ListHandler handles GET /api/disputes?status=&assigned=.
func (h *DisputeHandler) ListHandler(c *gin.Context) {
	limit, skip := page(c)
	disputes, err := h.DisputeService.List(c.Request.Context(), middleware.ActorFrom(c), models.DisputeFilter{
		Status:   models.DisputeStatus(c.Query("status")),
		Assigned: c.Query("assigned"),
		Limit:    limit,
		Skip:     skip,
	})
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"disputes": disputes})
}

func (h *DisputeHandler) GetHandler(c *gin.Context) {
	d, err := h.DisputeService.Get(c.Request.Context(), middleware.ActorFrom(c), c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

func (h *DisputeHandler) AddMessageHandler(c *gin.Context) {
	var req struct {
		Message string `json:"message" binding:"required"`
	}
	if !bindJSON(c, &req) {
		return
	}
	d, err := h.DisputeService.AddMessage(c.Request.Context(), middleware.ActorFrom(c), c.Param("id"), req.Message)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

// AddEvidenceHandler handles POST /api/disputes/:id/evidence (multipart field "file").
func (h *DisputeHandler) AddEvidenceHandler(c *gin.Context) {
	file, ok := formFile(c, "file", storage.DocumentTypes)
	if !ok {
		return
	}
	defer file.Close()
	d, err := h.DisputeService.AddEvidence(c.Request.Context(), middleware.ActorFrom(c), c.Param("id"), file)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

func (h *DisputeHandler) AddNoteHandler(c *gin.Context) {
	var req struct {
		Note string `json:"note" binding:"required"`
	}
	if !bindJSON(c, &req) {
		return
	}
	d, err := h.DisputeService.AddAdminNote(c.Request.Context(), middleware.ActorFrom(c).ID, c.Param("id"), req.Note)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

// AssignHandler assigns the dispute to adminId, or to the caller when the body omits it.
func (h *DisputeHandler) AssignHandler(c *gin.Context) {
	var req struct {
		AdminID string `json:"adminId"`
	}
	_ = c.ShouldBindJSON(&req)
	if req.AdminID == "" {
		req.AdminID = middleware.ActorFrom(c).ID
	}
	d, err := h.DisputeService.Assign(c.Request.Context(), c.Param("id"), req.AdminID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

func (h *DisputeHandler) UpdateStatusHandler(c *gin.Context) {
	var req struct {
		Status models.DisputeStatus `json:"status" binding:"required"`
	}
	if !bindJSON(c, &req) {
		return
	}
	d, err := h.DisputeService.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

func (h *DisputeHandler) ResolveHandler(c *gin.Context) {
	var req models.ResolveDisputeRequest
	if !bindJSON(c, &req) {
		return
	}
	d, err := h.DisputeService.Resolve(c.Request.Context(), middleware.ActorFrom(c).ID, c.Param("id"), req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}
