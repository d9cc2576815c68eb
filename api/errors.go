package api

import (
	"errors"
	"net/http"

	"github.com/Domenick1991/flightbot/internal/cache"
	"github.com/Domenick1991/flightbot/internal/chat"
	"github.com/Domenick1991/flightbot/internal/domain"
	"github.com/Domenick1991/flightbot/internal/service/flights"
	"github.com/Domenick1991/flightbot/internal/service/payments"
	"github.com/Domenick1991/flightbot/internal/service/users"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrBookingNotFound),
		errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrTransactionNotFound),
		errors.Is(err, domain.ErrAirportNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrBookingRejected),
		errors.Is(err, flights.ErrInvalidCriteria),
		errors.Is(err, users.ErrInvalidUser),
		errors.Is(err, chat.ErrInvalidMessage),
		errors.Is(err, payments.ErrInvalidWebhook),
		errors.Is(err, payments.ErrAmountMismatch):
		return http.StatusBadRequest
	case errors.Is(err, cache.ErrConversationBusy),
		errors.Is(err, payments.ErrBookingNotPayable):
		return http.StatusConflict
	case errors.Is(err, domain.ErrSearchUnavailable),
		errors.Is(err, domain.ErrPaymentFailed):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// abort answers with the status matching err. Server-side failures hide the
// cause behind message and are logged instead.
func abort(c *gin.Context, err error, message string) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		zap.L().Error(message, zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(status, gin.H{"error": message})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
