package api

import (
	"net/http"

	"github.com/Domenick1991/flightbot/internal/domain"
	"github.com/Domenick1991/flightbot/internal/service/booking"
	"github.com/gin-gonic/gin"
)

type BookingHandler struct {
	service booking.BookingUseCase
}

type createBookingRequest struct {
	UserID           string                  `json:"userId" binding:"required"`
	FlightData       domain.FlightData       `json:"flightData"`
	PassengerDetails passengerDetailsRequest `json:"passengerDetails"`
	TotalAmount      float64                 `json:"totalAmount"`
	Currency         string                  `json:"currency"`
}

type passengerDetailsRequest struct {
	Passengers []domain.Passenger `json:"passengers"`
	Email      string             `json:"email" binding:"omitempty,email"`
	Phone      string             `json:"phone"`
}

type updatePaymentRequest struct {
	PaymentStatus domain.PaymentStatus `json:"paymentStatus" binding:"required"`
	PaymentID     string               `json:"paymentId"`
}

func NewBookingHandler(service booking.BookingUseCase) *BookingHandler {
	return &BookingHandler{service: service}
}

func (h *BookingHandler) Register(router *gin.RouterGroup) {
	router.POST("", h.create)
	router.GET("/user/:userId", h.listByUser)
	router.GET("/:bookingReference", h.get)
	router.PATCH("/:bookingReference/payment", h.updatePayment)
}

func (h *BookingHandler) create(c *gin.Context) {
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	created, err := h.service.CreateBooking(c.Request.Context(), domain.BookingDraft{
		UserID:     req.UserID,
		Offer:      req.FlightData.Offer,
		Passengers: req.PassengerDetails.Passengers,
		Email:      req.PassengerDetails.Email,
		Phone:      req.PassengerDetails.Phone,
		Amount:     req.TotalAmount,
		Currency:   req.Currency,
	})
	if err != nil {
		abort(c, err, "Failed to create booking")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":          true,
		"bookingReference": created.Reference,
		"message":          "Booking created successfully",
	})
}

func (h *BookingHandler) listByUser(c *gin.Context) {
	bookings, err := h.service.ListUserBookings(c.Request.Context(), c.Param("userId"))
	if err != nil {
		abort(c, err, "Failed to retrieve bookings")
		return
	}
	if bookings == nil {
		bookings = []domain.Booking{}
	}
	c.JSON(http.StatusOK, bookings)
}

func (h *BookingHandler) get(c *gin.Context) {
	found, err := h.service.GetBooking(c.Request.Context(), c.Param("bookingReference"))
	if err != nil {
		abort(c, err, "Failed to retrieve booking")
		return
	}
	c.JSON(http.StatusOK, found)
}

func (h *BookingHandler) updatePayment(c *gin.Context) {
	var req updatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	_, err := h.service.UpdatePaymentStatus(c.Request.Context(), c.Param("bookingReference"), req.PaymentStatus, req.PaymentID)
	if err != nil {
		abort(c, err, "Failed to update payment status")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Payment status updated successfully"})
}
