// Package dialog is the conversation state machine: every user reply moves
// exactly one step forward through the menu, search, filter, booking and
// payment flows. It talks to the outside world only through the small
// interfaces declared here.
package dialog

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/Domenick1991/flightbot/internal/domain"
	"go.uber.org/zap"
)

type FlightSearcher interface {
	Search(ctx context.Context, criteria domain.SearchCriteria) ([]domain.FlightOffer, error)
}

type BookingStore interface {
	CreateBooking(ctx context.Context, draft domain.BookingDraft) (*domain.Booking, error)
	GetBooking(ctx context.Context, reference string) (*domain.Booking, error)
	ListUserBookings(ctx context.Context, userID string) ([]domain.Booking, error)
}

type PaymentInitiator interface {
	CreateIntent(ctx context.Context, amount float64, currency, reference string) (*domain.PaymentIntent, error)
}

type LanguagePreferences interface {
	SetLanguage(ctx context.Context, userID, language string) error
}

type Controller struct {
	searcher  FlightSearcher
	bookings  BookingStore
	payments  PaymentInitiator
	languages LanguagePreferences
	baseURL   string
	now       func() time.Time
	logger    *zap.Logger
}

type Option func(*Controller)

func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		c.now = now
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

func WithLanguagePreferences(p LanguagePreferences) Option {
	return func(c *Controller) {
		c.languages = p
	}
}

// NewController wires the collaborators. baseURL is the public address used
// for payment and booking links.
func NewController(searcher FlightSearcher, bookings BookingStore, payments PaymentInitiator, baseURL string, opts ...Option) *Controller {
	c := &Controller{
		searcher: searcher,
		bookings: bookings,
		payments: payments,
		baseURL:  strings.TrimRight(baseURL, "/"),
		now:      time.Now,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

const (
	welcomeText     = "Welcome to Flight Booking Bot! I can help you search and book flights. Type 'search flights' to get started."
	menuIntroLabel  = "What would you like to do today? I can help you search flights, view bookings, or make payments."
	menuReturnLabel = "What else can I help you with?"
	menuRetryLabel  = "Sorry, I didn't understand that. Please choose from the available options."
	cancelledText   = "Cancelled."
)

const (
	choiceSearch   = "Search Flights"
	choiceBookings = "View My Bookings"
	choicePayment  = "Make Payment"
	choiceHelp     = "Help"
	choiceLanguage = "Change Language"
)

var bookCommand = regexp.MustCompile(`(?i)^book flight (\d+)$`)

// Start greets a new conversation and shows the main menu.
func (c *Controller) Start(s Session) (Session, Turn) {
	return c.ask(s, FlowMain, StepMenu, menuPrompt(menuIntroLabel), TurnPrompt, text(welcomeText))
}

// Handle consumes one reply and returns the updated session together with
// what to show the user. Collaborator failures never escape: they are logged
// and turned into an apology followed by the menu.
func (c *Controller) Handle(ctx context.Context, s Session, reply string) (Session, Turn) {
	s.UpdatedAt = c.now()
	if s.Pending == nil || s.Step == "" {
		return c.Start(s)
	}

	reply = strings.TrimSpace(reply)
	if s.Flow != FlowMain && strings.EqualFold(reply, "cancel") {
		return c.backToMenu(s, text(cancelledText))
	}

	if s.Step == StepMenu || s.Step == StepResults {
		if m := bookCommand.FindStringSubmatch(reply); m != nil {
			n, _ := strconv.Atoi(m[1])
			return c.bookByIndex(s, n)
		}
	}

	a, ok := s.Pending.parse(reply, c.now())
	if !ok {
		return c.retry(s, s.Pending.RetryLabel)
	}
	return c.dispatch(ctx, s, a)
}

func (c *Controller) dispatch(ctx context.Context, s Session, a answer) (Session, Turn) {
	switch s.Step {
	case StepMenu:
		return c.onMenu(ctx, s, a)
	case StepLanguage:
		return c.onLanguage(ctx, s, a)

	case StepOrigin:
		return c.onOrigin(s, a)
	case StepDestination:
		return c.onDestination(s, a)
	case StepDepartureDate:
		return c.onDepartureDate(s, a)
	case StepRoundTrip:
		return c.onRoundTrip(s, a)
	case StepReturnDate:
		return c.onReturnDate(s, a)
	case StepPassengers:
		return c.onPassengers(s, a)
	case StepTravelClass:
		return c.onTravelClass(ctx, s, a)
	case StepResults:
		return c.onResults(s, a)

	case StepFilterChoice:
		return c.onFilterChoice(s, a)
	case StepPriceRange, StepAirline, StepMaxDuration, StepLayovers, StepDepartureWindow:
		return c.onFilterValue(s, a)

	case StepFlightSelect:
		return c.onFlightSelect(s, a)
	case StepPassengerName:
		return c.onPassengerName(s, a)
	case StepContactEmail:
		return c.onContactEmail(s, a)
	case StepContactPhone:
		return c.onContactPhone(s, a)
	case StepBookingConfirm:
		return c.onBookingConfirm(ctx, s, a)

	case StepPaymentReference:
		return c.onPaymentReference(ctx, s, a)
	case StepPaymentConfirm:
		return c.onPaymentConfirm(ctx, s, a)
	}

	c.logger.Warn("unknown dialog step, restarting", zap.String("step", string(s.Step)))
	return c.backToMenu(s)
}

func menuPrompt(label string) Prompt {
	p := choicePrompt(label, choiceSearch, choiceBookings, choicePayment, choiceHelp, choiceLanguage)
	p.RetryLabel = menuRetryLabel
	return p
}

// ask moves the session to step and waits for the reply to p.
func (c *Controller) ask(s Session, flow Flow, step Step, p Prompt, kind TurnKind, msgs ...Message) (Session, Turn) {
	s.Flow = flow
	s.Step = step
	s.Pending = &p
	return s, Turn{
		Kind:     kind,
		Flow:     flow,
		Messages: append([]Message{}, msgs...),
		Prompt:   &p,
	}
}

// retry keeps the session where it is and repeats the pending prompt.
func (c *Controller) retry(s Session, msg string) (Session, Turn) {
	p := *s.Pending
	return s, Turn{
		Kind:     TurnPrompt,
		Flow:     s.Flow,
		Messages: []Message{text(msg)},
		Prompt:   &p,
	}
}

// backToMenu drops whatever sub-flow was running and shows the menu again.
// Search results survive so "book flight N" keeps working from the menu.
func (c *Controller) backToMenu(s Session, msgs ...Message) (Session, Turn) {
	s.Search = SearchDraft{}
	s.Filter = FilterDraft{}
	s.Booking = BookingState{}
	s.Payment = PaymentState{}
	return c.ask(s, FlowMain, StepMenu, menuPrompt(menuReturnLabel), TurnPrompt, msgs...)
}

func (c *Controller) finish(s Session, res Result, msgs ...Message) (Session, Turn) {
	s, t := c.backToMenu(s, msgs...)
	t.Kind = TurnResult
	t.Result = &res
	return s, t
}

func (c *Controller) fail(s Session, err error, apology string) (Session, Turn) {
	c.logger.Error("dialog step failed",
		zap.String("conversation", s.ConversationID),
		zap.String("flow", string(s.Flow)),
		zap.String("step", string(s.Step)),
		zap.Error(err),
	)
	return c.backToMenu(s, text(apology))
}

func (c *Controller) bookByIndex(s Session, n int) (Session, Turn) {
	if n < 1 || n > len(s.Results) {
		return c.retry(s, fmt.Sprintf("There is no flight %d in the current results.", n))
	}
	return c.beginBooking(s, s.Results[n-1])
}
