package handlers

import (
	"net/http"

	"fixerhub/middleware"
	"fixerhub/models"
	"fixerhub/services/admin"
	"fixerhub/services/user"
	"fixerhub/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AdminHandler encapsulates elevated admin-level operations.
type AdminHandler struct {
	UserService  user.UserService
	AdminService admin.AdminService
}

func NewAdminHandler(us user.UserService, as admin.AdminService) *AdminHandler {
	return &AdminHandler{UserService: us, AdminService: as}
}

// ListUsersHandler handles GET /api/admin/users?role=.
func (ah *AdminHandler) ListUsersHandler(c *gin.Context) {
	limit, skip := page(c)
	users, err := ah.UserService.ListUsers(c.Request.Context(), models.Role(c.Query("role")), limit, skip)
	if err != nil {
		utils.GetLogger().Error("Failed to list users", zap.Error(err))
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

func (ah *AdminHandler) PromoteHandler(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required,email"`
	}
	if !bindJSON(c, &req) {
		return
	}
	u, err := ah.UserService.PromoteToAdmin(c.Request.Context(), req.Email)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.GetLogger().Info("user promoted to admin", zap.String("userId", u.ID), zap.String("by", middleware.ActorFrom(c).ID))
	c.JSON(http.StatusOK, u)
}

func (ah *AdminHandler) StatsHandler(c *gin.Context) {
	stats, err := ah.AdminService.Stats(c.Request.Context())
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// ReconcileHandler queues a certification score reconciliation.
func (ah *AdminHandler) ReconcileHandler(c *gin.Context) {
	taskID, err := ah.AdminService.TriggerReconcile(c.Request.Context())
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"taskId": taskID})
}

// LegalHandler handles GET /api/legal?role=.
func (ah *AdminHandler) LegalHandler(c *gin.Context) {
	role := models.Role(c.Query("role"))
	if role == "" {
		c.JSON(http.StatusOK, ah.AdminService.GetLegalSections())
		return
	}
	c.JSON(http.StatusOK, ah.AdminService.GetLegalSectionsFor(role))
}
