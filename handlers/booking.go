package handlers

import (
	"context"
	"net/http"

	"fixerhub/middleware"
	"fixerhub/models"
	"fixerhub/services/booking"
	"fixerhub/utils"

	"github.com/gin-gonic/gin"
)

type BookingHandler struct {
	BookingService booking.BookingService
}

func NewBookingHandler(svc booking.BookingService) *BookingHandler {
	return &BookingHandler{BookingService: svc}
}

// CreateBookingHandler handles POST /api/bookings.
func (h *BookingHandler) CreateBookingHandler(c *gin.Context) {
	var req models.NewBookingRequest
	if !bindJSON(c, &req) {
		return
	}
	b, err := h.BookingService.Create(c.Request.Context(), middleware.ActorFrom(c).ID, req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, b)
}

// ListBookingsHandler handles GET /api/bookings?status=&paymentStatus=.
func (h *BookingHandler) ListBookingsHandler(c *gin.Context) {
	limit, skip := page(c)
	filter := models.BookingFilter{
		Status:        models.BookingStatus(c.Query("status")),
		PaymentStatus: models.PaymentStatus(c.Query("paymentStatus")),
		Seeker:        c.Query("seeker"),
		Provider:      c.Query("provider"),
		Limit:         limit,
		Skip:          skip,
	}
	bookings, err := h.BookingService.List(c.Request.Context(), middleware.ActorFrom(c), filter)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": bookings})
}

func (h *BookingHandler) GetBookingHandler(c *gin.Context) {
	b, err := h.BookingService.Get(c.Request.Context(), middleware.ActorFrom(c), c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

type bookingAction func(ctx context.Context, actor models.Actor, id string) (*models.Booking, error)

// transition wraps a body-less status change.
func (h *BookingHandler) transition(action bookingAction) gin.HandlerFunc {
	return func(c *gin.Context) {
		b, err := action(c.Request.Context(), middleware.ActorFrom(c), c.Param("id"))
		if err != nil {
			utils.RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, b)
	}
}

func (h *BookingHandler) RequestQuoteHandler() gin.HandlerFunc {
	return h.transition(h.BookingService.RequestQuote)
}

func (h *BookingHandler) AcceptQuoteHandler() gin.HandlerFunc {
	return h.transition(h.BookingService.AcceptQuote)
}

func (h *BookingHandler) DeclineQuoteHandler() gin.HandlerFunc {
	return h.transition(h.BookingService.DeclineQuote)
}

func (h *BookingHandler) AcceptHandler() gin.HandlerFunc {
	return h.transition(h.BookingService.Accept)
}

func (h *BookingHandler) DeclineHandler() gin.HandlerFunc {
	return h.transition(h.BookingService.Decline)
}

func (h *BookingHandler) CompleteHandler() gin.HandlerFunc {
	return h.transition(h.BookingService.Complete)
}

// SendQuoteHandler handles POST /api/bookings/:id/quote.
func (h *BookingHandler) SendQuoteHandler(c *gin.Context) {
	var req booking.QuoteRequest
	if !bindJSON(c, &req) {
		return
	}
	b, err := h.BookingService.SendQuote(c.Request.Context(), middleware.ActorFrom(c), c.Param("id"), req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h *BookingHandler) CancelHandler(c *gin.Context) {
	var req struct {
		Reason string `json:"reason"`
	}
	// The reason is optional; an empty body is fine.
	_ = c.ShouldBindJSON(&req)
	b, err := h.BookingService.Cancel(c.Request.Context(), middleware.ActorFrom(c), c.Param("id"), req.Reason)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}
