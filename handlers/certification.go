package handlers

import (
	"net/http"

	"fixerhub/middleware"
	"fixerhub/models"
	"fixerhub/services/certification"
	"fixerhub/services/storage"
	"fixerhub/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type CertificationHandler struct {
	CertificationService certification.CertificationService
}

func NewCertificationHandler(svc certification.CertificationService) *CertificationHandler {
	return &CertificationHandler{CertificationService: svc}
}

// UploadHandler handles POST /api/certifications (multipart: metadata fields plus "document").
func (h *CertificationHandler) UploadHandler(c *gin.Context) {
	var form models.CertificationUpload
	if err := c.ShouldBind(&form); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid certification form", err.Error())
		return
	}
	file, ok := formFile(c, "document", storage.DocumentTypes)
	if !ok {
		return
	}
	defer file.Close()

	providerID := middleware.ActorFrom(c).ID
	cert, err := h.CertificationService.Upload(c.Request.Context(), providerID, form, file)
	if err != nil {
		utils.GetLogger().Error("certification upload failed", zap.String("provider", providerID), zap.Error(err))
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, cert)
}

// ListMineHandler handles GET /api/certifications/mine?status=.
func (h *CertificationHandler) ListMineHandler(c *gin.Context) {
	certs, err := h.CertificationService.ListMine(c.Request.Context(), middleware.ActorFrom(c).ID, models.CertificationStatus(c.Query("status")))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"certifications": certs})
}

func (h *CertificationHandler) GetHandler(c *gin.Context) {
	cert, err := h.CertificationService.Get(c.Request.Context(), middleware.ActorFrom(c), c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cert)
}

func (h *CertificationHandler) DeleteHandler(c *gin.Context) {
	if err := h.CertificationService.Delete(c.Request.Context(), middleware.ActorFrom(c), c.Param("id")); err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Certification deleted"})
}

// ListPendingHandler handles GET /api/admin/certifications/pending.
func (h *CertificationHandler) ListPendingHandler(c *gin.Context) {
	limit, skip := page(c)
	certs, err := h.CertificationService.ListPending(c.Request.Context(), limit, skip)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"certifications": certs})
}

func (h *CertificationHandler) ApproveHandler(c *gin.Context) {
	cert, err := h.CertificationService.Approve(c.Request.Context(), middleware.ActorFrom(c).ID, c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cert)
}

func (h *CertificationHandler) RejectHandler(c *gin.Context) {
	var req struct {
		Reason string `json:"reason" binding:"required"`
	}
	if !bindJSON(c, &req) {
		return
	}
	cert, err := h.CertificationService.Reject(c.Request.Context(), middleware.ActorFrom(c).ID, c.Param("id"), req.Reason)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cert)
}
