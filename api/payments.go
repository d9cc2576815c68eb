package api

import (
	"io"
	"net/http"

	"github.com/Domenick1991/flightbot/internal/service/payments"
	"github.com/gin-gonic/gin"
)

const maxWebhookBody = 64 << 10

type PaymentHandler struct {
	service payments.PaymentUseCase
}

type createIntentRequest struct {
	Amount           float64 `json:"amount" binding:"required,gt=0"`
	Currency         string  `json:"currency"`
	BookingReference string  `json:"bookingReference" binding:"required"`
}

type refundRequest struct {
	Amount *float64 `json:"amount"`
}

func NewPaymentHandler(service payments.PaymentUseCase) *PaymentHandler {
	return &PaymentHandler{service: service}
}

func (h *PaymentHandler) Register(router *gin.RouterGroup) {
	router.POST("/create-intent", h.createIntent)
	router.POST("/confirm/:paymentIntentId", h.confirm)
	router.POST("/refund/:paymentIntentId", h.refund)
	router.POST("/webhook", h.webhook)
}

func (h *PaymentHandler) createIntent(c *gin.Context) {
	var req createIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	intent, err := h.service.CreateIntent(c.Request.Context(), req.Amount, req.Currency, req.BookingReference)
	if err != nil {
		abort(c, err, "Failed to create payment intent")
		return
	}
	c.JSON(http.StatusOK, intent)
}

func (h *PaymentHandler) confirm(c *gin.Context) {
	intent, err := h.service.Confirm(c.Request.Context(), c.Param("paymentIntentId"))
	if err != nil {
		abort(c, err, "Failed to confirm payment")
		return
	}

	message := "Payment failed"
	if intent.Succeeded() {
		message = "Payment completed successfully"
	}
	c.JSON(http.StatusOK, gin.H{
		"success": intent.Succeeded(),
		"status":  intent.Status,
		"message": message,
	})
}

func (h *PaymentHandler) refund(c *gin.Context) {
	var req refundRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	refund, err := h.service.Refund(c.Request.Context(), c.Param("paymentIntentId"), req.Amount)
	if err != nil {
		abort(c, err, "Failed to refund payment")
		return
	}
	c.JSON(http.StatusOK, refund)
}

// webhook needs the raw body for signature verification.
func (h *PaymentHandler) webhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.service.HandleWebhook(c.Request.Context(), payload, c.GetHeader("Stripe-Signature")); err != nil {
		abort(c, err, "Failed to process webhook")
		return
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}
