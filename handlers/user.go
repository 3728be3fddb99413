package handlers

import (
	"net/http"
	"strconv"

	"fixerhub/middleware"
	"fixerhub/models"
	"fixerhub/services/certification"
	"fixerhub/services/review"
	"fixerhub/services/storage"
	"fixerhub/services/user"
	"fixerhub/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type UserHandler struct {
	UserService          user.UserService
	CertificationService certification.CertificationService
	ReviewService        review.ReviewService
}

func NewUserHandler(users user.UserService, certs certification.CertificationService, reviews review.ReviewService) *UserHandler {
	return &UserHandler{UserService: users, CertificationService: certs, ReviewService: reviews}
}

// MeHandler handles GET /api/users/me.
func (h *UserHandler) MeHandler(c *gin.Context) {
	u, err := h.UserService.GetUserByID(c.Request.Context(), middleware.ActorFrom(c).ID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

// UpdateMeHandler handles PATCH /api/users/me.
func (h *UserHandler) UpdateMeHandler(c *gin.Context) {
	var req models.ProfileUpdate
	if !bindJSON(c, &req) {
		return
	}
	u, err := h.UserService.UpdateProfile(c.Request.Context(), middleware.ActorFrom(c).ID, req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

// UploadPictureHandler handles PUT /api/users/me/picture (multipart field "picture").
func (h *UserHandler) UploadPictureHandler(c *gin.Context) {
	file, ok := formFile(c, "picture", storage.ImageTypes)
	if !ok {
		return
	}
	defer file.Close()

	userID := middleware.ActorFrom(c).ID
	u, err := h.UserService.UploadProfilePicture(c.Request.Context(), userID, file)
	if err != nil {
		utils.GetLogger().Error("profile picture upload failed", zap.String("userId", userID), zap.Error(err))
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

func (h *UserHandler) RemovePictureHandler(c *gin.Context) {
	u, err := h.UserService.RemoveProfilePicture(c.Request.Context(), middleware.ActorFrom(c).ID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

// SearchProvidersHandler handles GET /api/providers?category=&location=&minLevel=&minRating=.
func (h *UserHandler) SearchProvidersHandler(c *gin.Context) {
	limit, skip := page(c)
	minRating, _ := strconv.ParseFloat(c.DefaultQuery("minRating", "0"), 64)
	providers, err := h.UserService.SearchProviders(c.Request.Context(), models.ProviderSearchCriteria{
		Category:  c.Query("category"),
		Location:  c.Query("location"),
		MinLevel:  models.Level(c.Query("minLevel")),
		MinRating: minRating,
		Limit:     limit,
		Skip:      skip,
	})
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	out := make([]models.User, 0, len(providers))
	for _, p := range providers {
		out = append(out, p.Public())
	}
	c.JSON(http.StatusOK, gin.H{"providers": out})
}

// GetProviderHandler handles GET /api/providers/:id with active certifications and recent reviews.
func (h *UserHandler) GetProviderHandler(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")
	p, err := h.UserService.GetProvider(ctx, id)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	certs, err := h.CertificationService.ListActive(ctx, id)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	reviews, err := h.ReviewService.ListByProvider(ctx, id, 10, 0)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"provider":       p.Public(),
		"certifications": certs,
		"reviews":        reviews,
	})
}
