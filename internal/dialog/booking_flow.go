package dialog

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/Domenick1991/flightbot/internal/domain"
	"github.com/Domenick1991/flightbot/internal/offers"
	"go.uber.org/zap"
)

const (
	bookingCancelledText = "Booking cancelled."
	bookingErrText       = "Sorry, there was an error creating your booking. Please try again."
)

// beginBooking starts collecting passenger details for offer, one name per
// traveler the offer was priced for.
func (c *Controller) beginBooking(s Session, offer domain.FlightOffer) (Session, Turn) {
	return c.startPassengers(s, offer, TurnDelegate)
}

func (c *Controller) startPassengers(s Session, offer domain.FlightOffer, kind TurnKind) (Session, Turn) {
	s.Booking = BookingState{Offer: &offer, Expected: offer.TravelerCount()}
	return c.askPassengerName(s, kind)
}

func (c *Controller) askPassengerName(s Session, kind TurnKind) (Session, Turn) {
	label := fmt.Sprintf("Please enter details for passenger %d of %d:\n\nFull Name:",
		len(s.Booking.Passengers)+1, s.Booking.Expected)
	return c.ask(s, FlowBooking, StepPassengerName, textPrompt(label), kind)
}

func (c *Controller) onFlightSelect(s Session, a answer) (Session, Turn) {
	n := int(a.Number)
	if n < 1 || n > len(s.Results) {
		return c.retry(s, "Please select a flight by typing the flight number or 'cancel' to go back.")
	}
	return c.startPassengers(s, s.Results[n-1], TurnPrompt)
}

func (c *Controller) onPassengerName(s Session, a answer) (Session, Turn) {
	s.Booking.Passengers = append(slices.Clone(s.Booking.Passengers), domain.Passenger{
		Name:            a.Text,
		PassengerNumber: len(s.Booking.Passengers) + 1,
	})
	if len(s.Booking.Passengers) < s.Booking.Expected {
		return c.askPassengerName(s, TurnPrompt)
	}
	return c.ask(s, FlowBooking, StepContactEmail,
		textPrompt("Please enter your email address for booking confirmation:"), TurnPrompt)
}

func (c *Controller) onContactEmail(s Session, a answer) (Session, Turn) {
	email := strings.TrimSpace(a.Text)
	if !domain.ValidEmail(email) {
		return c.retry(s, "Please enter a valid email address.")
	}
	s.Booking.Email = email
	return c.ask(s, FlowBooking, StepContactPhone, textPrompt("Please enter your phone number:"), TurnPrompt)
}

func (c *Controller) onContactPhone(s Session, a answer) (Session, Turn) {
	s.Booking.Phone = a.Text
	return c.ask(s, FlowBooking, StepBookingConfirm,
		confirmPrompt("Do you want to proceed with this booking?"), TurnPrompt, text(bookingSummary(s.Booking)))
}

func bookingSummary(b BookingState) string {
	var o domain.FlightOffer
	if b.Offer != nil {
		o = *b.Offer
	}
	names := make([]string, 0, len(b.Passengers))
	for _, p := range b.Passengers {
		names = append(names, p.Name)
	}

	var departure string
	if seg := o.FirstSegment(); seg != nil {
		departure = seg.Departure.At
	}

	var sb strings.Builder
	sb.WriteString("**Booking Summary**\n")
	fmt.Fprintf(&sb, "Flight: %s %s\n", airline(o), route(o))
	fmt.Fprintf(&sb, "Departure: %s\n", localTime(departure))
	fmt.Fprintf(&sb, "Passengers: %s\n", strings.Join(names, ", "))
	fmt.Fprintf(&sb, "Email: %s\n", b.Email)
	fmt.Fprintf(&sb, "Phone: %s\n", b.Phone)
	fmt.Fprintf(&sb, "Total: %s", offerPrice(o))
	return sb.String()
}

func (c *Controller) onBookingConfirm(ctx context.Context, s Session, a answer) (Session, Turn) {
	if !a.Yes || s.Booking.Offer == nil {
		return c.backToMenu(s, text(bookingCancelledText))
	}

	offer := *s.Booking.Offer
	amount, _ := offers.PriceTotal(offer)
	draft := domain.BookingDraft{
		UserID:     s.UserID,
		Offer:      offer,
		Passengers: slices.Clone(s.Booking.Passengers),
		Email:      s.Booking.Email,
		Phone:      s.Booking.Phone,
		Amount:     amount,
		Currency:   offers.Currency(offer),
	}

	booking, err := c.bookings.CreateBooking(ctx, draft)
	if err != nil {
		return c.fail(s, err, bookingErrText)
	}
	c.logger.Info("booking created",
		zap.String("reference", booking.Reference),
		zap.String("user", s.UserID),
	)

	intent, err := c.payments.CreateIntent(ctx, booking.TotalAmount, booking.Currency, booking.Reference)
	if err != nil {
		return c.fail(s, err, fmt.Sprintf(
			"Your booking %s was created, but we couldn't start the payment. Choose 'Make Payment' and enter that reference to try again.",
			booking.Reference))
	}

	link := c.paymentLink(intent.ClientSecret)
	amountText := money(booking.Currency, booking.TotalAmount)
	return c.finish(s,
		Result{BookingReference: booking.Reference, PaymentIntent: intent, PaymentLink: link},
		Message{
			Text: fmt.Sprintf("Your booking has been created with reference: **%s**\n\nPlease complete the payment to confirm your booking.",
				booking.Reference),
			Cards: []Card{paymentCard("Booking "+booking.Reference, amountText, "Secure payment via Stripe", link)},
		},
	)
}
