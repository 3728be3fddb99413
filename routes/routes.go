package routes

import (
	"net/http"
	"time"

	"fixerhub/config"
	"fixerhub/handlers"
	"fixerhub/middleware"
	"fixerhub/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterAuthRoutes registers sign-up, sign-in and password endpoints.
func RegisterAuthRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/auth")
	{
		api.POST("/register", hb.Auth.RegisterHandler)
		api.POST("/login", hb.Auth.LoginHandler)
		api.POST("/google", hb.Auth.GoogleSignInHandler)
		api.POST("/verify-email", hb.Auth.VerifyEmailHandler)
		api.POST("/forgot-password", hb.Auth.ForgotPasswordHandler)
		api.POST("/reset-password", hb.Auth.ResetPasswordHandler)

		protected := api.Group("", middleware.JWTAuthMiddleware())
		protected.POST("/resend-verification", hb.Auth.ResendVerificationHandler)
		protected.PUT("/password", hb.Auth.ChangePasswordHandler)
	}
}

// RegisterUserRoutes registers the current user's profile endpoints.
func RegisterUserRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/users/me", middleware.JWTAuthMiddleware())
	{
		api.GET("", hb.Users.MeHandler)
		api.PATCH("", hb.Users.UpdateMeHandler)
		api.PUT("/picture", hb.Users.UploadPictureHandler)
		api.DELETE("/picture", hb.Users.RemovePictureHandler)
	}
}

// RegisterProviderRoutes registers public provider discovery.
func RegisterProviderRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/providers")
	{
		api.GET("", hb.Users.SearchProvidersHandler)
		api.GET("/:id", hb.Users.GetProviderHandler)
		api.GET("/:id/reviews", hb.Reviews.ListForProviderHandler)
	}
}

// RegisterCertificationRoutes registers provider certification endpoints.
func RegisterCertificationRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/certifications", middleware.JWTAuthMiddleware())
	{
		api.POST("", middleware.ProviderOnly(), hb.Certifications.UploadHandler)
		api.GET("/mine", middleware.ProviderOnly(), hb.Certifications.ListMineHandler)
		api.GET("/:id", hb.Certifications.GetHandler)
		api.DELETE("/:id", hb.Certifications.DeleteHandler)
	}
}

// RegisterDisputeRoutes registers dispute endpoints for booking parties and admins.
func RegisterDisputeRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/disputes", middleware.JWTAuthMiddleware())
	{
		api.POST("", hb.Disputes.CreateHandler)
		api.GET("", hb.Disputes.ListHandler)
		api.GET("/:id", hb.Disputes.GetHandler)
		api.POST("/:id/messages", hb.Disputes.AddMessageHandler)
		api.POST("/:id/evidence", hb.Disputes.AddEvidenceHandler)
	}
}

// RegisterReviewRoutes registers review endpoints.
func RegisterReviewRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/reviews", middleware.JWTAuthMiddleware())
	{
		api.POST("", middleware.SeekerOnly(), hb.Reviews.CreateHandler)
		api.POST("/:id/response", middleware.ProviderOnly(), hb.Reviews.RespondHandler)
	}
}

// RegisterChatRoutes registers the chatbot endpoint.
func RegisterChatRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.POST("/api/chat", middleware.OptionalAuthMiddleware(), hb.Chat.ReplyHandler)
}

// RegisterAdminRoutes sets up endpoints for admin operations.
func RegisterAdminRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	adminGroup := r.Group("/api/admin", middleware.JWTAuthMiddleware(), middleware.AdminOnly())
	{
		adminGroup.GET("/users", hb.Admin.ListUsersHandler)
		adminGroup.POST("/users/promote", hb.Admin.PromoteHandler)
		adminGroup.GET("/stats", hb.Admin.StatsHandler)
		adminGroup.POST("/reconcile", hb.Admin.ReconcileHandler)

		adminGroup.GET("/certifications/pending", hb.Certifications.ListPendingHandler)
		adminGroup.POST("/certifications/:id/approve", hb.Certifications.ApproveHandler)
		adminGroup.POST("/certifications/:id/reject", hb.Certifications.RejectHandler)

		adminGroup.POST("/disputes/:id/notes", hb.Disputes.AddNoteHandler)
		adminGroup.POST("/disputes/:id/assign", hb.Disputes.AssignHandler)
		adminGroup.PUT("/disputes/:id/status", hb.Disputes.UpdateStatusHandler)
		adminGroup.POST("/disputes/:id/resolve", hb.Disputes.ResolveHandler)

		adminGroup.POST("/bookings/:id/refund", hb.Payments.RefundHandler)
	}
	r.GET("/api/legal", hb.Admin.LegalHandler)
}

// RegisterHealthRoute reports the last dependency probe.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		status := utils.GetHealthStatus()
		code := http.StatusOK
		if !status.Healthy() {
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{"status": status, "message": "Hi, I'm FixerHub"})
	})
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{config.AppConfig.FrontendURL},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type", "Stripe-Signature"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	RegisterAuthRoutes(r, hb)
	RegisterUserRoutes(r, hb)
	RegisterProviderRoutes(r, hb)
	RegisterBookingRoutes(r, hb)
	RegisterCertificationRoutes(r, hb)
	RegisterDisputeRoutes(r, hb)
	RegisterReviewRoutes(r, hb)
	RegisterChatRoutes(r, hb)
	RegisterAdminRoutes(r, hb)
	RegisterHealthRoute(r)
}
