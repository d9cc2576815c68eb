package dialog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Domenick1991/flightbot/internal/domain"
)

const (
	choicePayNow    = "Yes, pay now"
	choicePayCancel = "No, cancel"
)

func (c *Controller) onPaymentReference(ctx context.Context, s Session, a answer) (Session, Turn) {
	reference := strings.ToUpper(strings.TrimSpace(a.Text))

	booking, err := c.bookings.GetBooking(ctx, reference)
	switch {
	case errors.Is(err, domain.ErrBookingNotFound):
		return c.backToMenu(s, text("Booking not found. Please check your reference number."))
	case err != nil:
		return c.fail(s, err, "Error retrieving booking details. Please try again.")
	}

	switch booking.PaymentStatus {
	case domain.PaymentStatusPaid:
		return c.backToMenu(s, text("This booking has already been paid for."))
	case domain.PaymentStatusExpired:
		return c.backToMenu(s, text("This booking has expired. Please search and book your flight again."))
	case domain.PaymentStatusRefunded:
		return c.backToMenu(s, text("This booking has been refunded and can no longer be paid."))
	}

	s.Payment = PaymentState{Reference: reference, Booking: booking}
	summary := fmt.Sprintf("**Payment Details**\nBooking: %s\nRoute: %s → %s\nAmount: %s",
		booking.Reference, booking.Flight.Origin, booking.Flight.Destination, money(booking.Currency, booking.TotalAmount))
	return c.ask(s, FlowPayment, StepPaymentConfirm,
		choicePrompt("Would you like to proceed with payment?", choicePayNow, choicePayCancel), TurnPrompt, text(summary))
}

func (c *Controller) onPaymentConfirm(ctx context.Context, s Session, a answer) (Session, Turn) {
	booking := s.Payment.Booking
	if a.Text != choicePayNow || booking == nil {
		return c.backToMenu(s, text("Payment cancelled."))
	}

	intent, err := c.payments.CreateIntent(ctx, booking.TotalAmount, booking.Currency, booking.Reference)
	if err != nil {
		return c.fail(s, err, "Error processing payment. Please try again later.")
	}

	link := c.paymentLink(intent.ClientSecret)
	return c.finish(s,
		Result{BookingReference: booking.Reference, PaymentIntent: intent, PaymentLink: link},
		Message{
			Text:  "Click the 'Pay Now' button above to complete your payment securely.",
			Cards: []Card{paymentCard("Booking "+booking.Reference, money(booking.Currency, booking.TotalAmount), "Secure payment via Stripe", link)},
		},
	)
}
