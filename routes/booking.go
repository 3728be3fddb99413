package routes

import (
	"fixerhub/handlers"
	"fixerhub/middleware"
	"fixerhub/models"

	"github.com/gin-gonic/gin"
)

// RegisterBookingRoutes sets up the booking workflow and its payment endpoints.
func RegisterBookingRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	bookings := r.Group("/api/bookings")
	bookings.Use(middleware.JWTAuthMiddleware())
	{
		bookings.POST("", middleware.SeekerOnly(), hb.Bookings.CreateBookingHandler)
		bookings.GET("", hb.Bookings.ListBookingsHandler)
		bookings.GET("/:id", hb.Bookings.GetBookingHandler)

		// Seeker actions.
		seeker := bookings.Group("/:id", middleware.RequireRole(models.RoleSeeker, models.RoleAdmin))
		seeker.POST("/request-quote", hb.Bookings.RequestQuoteHandler())
		seeker.POST("/accept-quote", hb.Bookings.AcceptQuoteHandler())
		seeker.POST("/decline-quote", hb.Bookings.DeclineQuoteHandler())
		seeker.POST("/payments/stripe", hb.Payments.CreateIntentHandler)
		seeker.POST("/payments/bank-transfer", hb.Payments.SubmitBankTransferHandler)

		// Provider actions.
		provider := bookings.Group("/:id", middleware.RequireRole(models.RoleProvider, models.RoleAdmin))
		provider.POST("/quote", hb.Bookings.SendQuoteHandler)
		provider.POST("/accept", hb.Bookings.AcceptHandler())
		provider.POST("/decline", hb.Bookings.DeclineHandler())
		provider.POST("/complete", hb.Bookings.CompleteHandler())
		provider.POST("/payments/bank-transfer/confirm", hb.Payments.ConfirmBankTransferHandler)
		provider.POST("/payments/bank-transfer/reject", hb.Payments.RejectBankTransferHandler)
		provider.POST("/payments/cash/confirm", hb.Payments.ConfirmCashHandler)

		// Either party.
		bookings.POST("/:id/cancel", hb.Bookings.CancelHandler)
		bookings.GET("/:id/payments", hb.Payments.ListPaymentsHandler)
	}

	// Stripe calls this without a user token; the signature is checked instead.
	r.POST("/api/payments/stripe/webhook", hb.Payments.StripeWebhookHandler)
}
