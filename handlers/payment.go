package handlers

import (
	"io"
	"net/http"

	"fixerhub/apperrors"
	"fixerhub/middleware"
	"fixerhub/models"
	"fixerhub/services/payment"
	"fixerhub/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const maxWebhookBytes = 65536

type PaymentHandler struct {
	PaymentService payment.PaymentService
}

func NewPaymentHandler(svc payment.PaymentService) *PaymentHandler {
	return &PaymentHandler{PaymentService: svc}
}

// CreateIntentHandler handles POST /api/bookings/:id/payments/stripe.
func (h *PaymentHandler) CreateIntentHandler(c *gin.Context) {
	p, err := h.PaymentService.CreateStripeIntent(c.Request.Context(), middleware.ActorFrom(c), c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

// StripeWebhookHandler handles POST /api/payments/stripe/webhook.
func (h *PaymentHandler) StripeWebhookHandler(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBytes))
	if err != nil {
		utils.RespondError(c, apperrors.Validation("could not read webhook body"))
		return
	}
	if err := h.PaymentService.HandleStripeWebhook(c.Request.Context(), payload, c.GetHeader("Stripe-Signature")); err != nil {
		utils.GetLogger().Warn("stripe webhook rejected", zap.Error(err))
		utils.RespondError(c, err)
		return
	}
	c.Status(http.StatusOK)
}

// SubmitBankTransferHandler handles POST /api/bookings/:id/payments/bank-transfer.
func (h *PaymentHandler) SubmitBankTransferHandler(c *gin.Context) {
	var req models.BankTransferSubmission
	if !bindJSON(c, &req) {
		return
	}
	p, err := h.PaymentService.SubmitBankTransfer(c.Request.Context(), middleware.ActorFrom(c), c.Param("id"), req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *PaymentHandler) ConfirmBankTransferHandler(c *gin.Context) {
	b, err := h.PaymentService.ConfirmBankTransfer(c.Request.Context(), middleware.ActorFrom(c), c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h *PaymentHandler) RejectBankTransferHandler(c *gin.Context) {
	var req struct {
		Reason string `json:"reason"`
	}
	_ = c.ShouldBindJSON(&req)
	p, err := h.PaymentService.RejectBankTransfer(c.Request.Context(), middleware.ActorFrom(c), c.Param("id"), req.Reason)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *PaymentHandler) ConfirmCashHandler(c *gin.Context) {
	b, err := h.PaymentService.ConfirmCash(c.Request.Context(), middleware.ActorFrom(c), c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// RefundHandler handles POST /api/admin/bookings/:id/refund.
func (h *PaymentHandler) RefundHandler(c *gin.Context) {
	var req models.RefundRequest
	if !bindJSON(c, &req) {
		return
	}
	p, err := h.PaymentService.Refund(c.Request.Context(), middleware.ActorFrom(c), c.Param("id"), req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *PaymentHandler) ListPaymentsHandler(c *gin.Context) {
	payments, err := h.PaymentService.ListForBooking(c.Request.Context(), middleware.ActorFrom(c), c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payments": payments})
}
