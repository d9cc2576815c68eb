package dialog

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/Domenick1991/flightbot/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockFlightSearcher struct {
	mock.Mock
}

func (m *MockFlightSearcher) Search(ctx context.Context, criteria domain.SearchCriteria) ([]domain.FlightOffer, error) {
	args := m.Called(ctx, criteria)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.FlightOffer), args.Error(1)
}

type MockBookingStore struct {
	mock.Mock
}

func (m *MockBookingStore) CreateBooking(ctx context.Context, draft domain.BookingDraft) (*domain.Booking, error) {
	args := m.Called(ctx, draft)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingStore) GetBooking(ctx context.Context, reference string) (*domain.Booking, error) {
	args := m.Called(ctx, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingStore) ListUserBookings(ctx context.Context, userID string) ([]domain.Booking, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Booking), args.Error(1)
}

type MockPaymentInitiator struct {
	mock.Mock
}

func (m *MockPaymentInitiator) CreateIntent(ctx context.Context, amount float64, currency, reference string) (*domain.PaymentIntent, error) {
	args := m.Called(ctx, amount, currency, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PaymentIntent), args.Error(1)
}

type MockLanguagePreferences struct {
	mock.Mock
}

func (m *MockLanguagePreferences) SetLanguage(ctx context.Context, userID, language string) error {
	args := m.Called(ctx, userID, language)
	return args.Error(0)
}

var testNow = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

type fixture struct {
	c         *Controller
	searcher  *MockFlightSearcher
	bookings  *MockBookingStore
	payments  *MockPaymentInitiator
	languages *MockLanguagePreferences
}

func newFixture() fixture {
	f := fixture{
		searcher:  new(MockFlightSearcher),
		bookings:  new(MockBookingStore),
		payments:  new(MockPaymentInitiator),
		languages: new(MockLanguagePreferences),
	}
	f.c = NewController(f.searcher, f.bookings, f.payments, "https://bot.example.com/",
		WithClock(func() time.Time { return testNow }),
		WithLanguagePreferences(f.languages),
	)
	return f
}

func (f fixture) start() Session {
	s, _ := f.c.Start(NewSession("conv-1", "user-1", ""))
	return s
}

// say feeds replies one by one and returns the last turn.
func (f fixture) say(s Session, replies ...string) (Session, Turn) {
	var t Turn
	for _, r := range replies {
		s, t = f.c.Handle(context.Background(), s, r)
	}
	return s, t
}

// withResults puts the session on the results step as if a search just returned flights.
func (f fixture) withResults(flights ...domain.FlightOffer) Session {
	s := f.start()
	s.Results = flights
	s.AllResults = flights
	s, _ = f.c.presentResults(s)
	return s
}

func flight(id, total, duration string, stops int) domain.FlightOffer {
	segments := make([]domain.Segment, stops+1)
	for i := range segments {
		segments[i] = domain.Segment{CarrierCode: "AA"}
	}
	segments[0].Departure = domain.FlightEndPoint{IATACode: "JFK", At: "2025-03-11T08:30:00"}
	segments[len(segments)-1].Arrival = domain.FlightEndPoint{IATACode: "LHR", At: "2025-03-11T20:30:00"}
	return domain.FlightOffer{
		ID:          id,
		Itineraries: []domain.Itinerary{{Duration: duration, Segments: segments}},
		Price:       &domain.Price{Currency: "USD", Total: total},
	}
}

func texts(t Turn) string {
	var parts []string
	for _, m := range t.Messages {
		if m.Text != "" {
			parts = append(parts, m.Text)
		}
	}
	return strings.Join(parts, "\n")
}

func cardCount(t Turn) int {
	n := 0
	for _, m := range t.Messages {
		n += len(m.Cards)
	}
	return n
}

func TestStart_WelcomesAndShowsMenu(t *testing.T) {
	f := newFixture()

	s, turn := f.c.Start(NewSession("conv-1", "user-1", ""))

	assert.Equal(t, FlowMain, s.Flow)
	assert.Equal(t, StepMenu, s.Step)
	assert.Equal(t, "en", s.Language)
	assert.Equal(t, TurnPrompt, turn.Kind)
	assert.Contains(t, texts(turn), "Welcome to Flight Booking Bot!")
	require.NotNil(t, turn.Prompt)
	assert.Equal(t, []string{"Search Flights", "View My Bookings", "Make Payment", "Help", "Change Language"}, turn.Prompt.Choices)
}

func TestHandle_FreshSessionStarts(t *testing.T) {
	f := newFixture()

	s, turn := f.c.Handle(context.Background(), NewSession("conv-1", "user-1", "fr"), "hello")

	assert.Equal(t, StepMenu, s.Step)
	assert.Equal(t, "fr", s.Language)
	assert.Contains(t, texts(turn), "Welcome")
}

func TestMenu_UnrecognizedInputRetries(t *testing.T) {
	f := newFixture()

	s, turn := f.say(f.start(), "order a pizza")

	assert.Equal(t, StepMenu, s.Step)
	assert.Equal(t, TurnPrompt, turn.Kind)
	assert.Equal(t, "Sorry, I didn't understand that. Please choose from the available options.", texts(turn))
}

func TestMenu_ChoiceByNumber(t *testing.T) {
	f := newFixture()

	s, turn := f.say(f.start(), "1")

	assert.Equal(t, FlowSearch, s.Flow)
	assert.Equal(t, StepOrigin, s.Step)
	assert.Equal(t, TurnDelegate, turn.Kind)
}

func TestMenu_Help(t *testing.T) {
	f := newFixture()

	s, turn := f.say(f.start(), "help")

	assert.Equal(t, StepMenu, s.Step)
	assert.Contains(t, texts(turn), "Flight Booking Bot Help")
}

func TestSearchFlow_OneWay(t *testing.T) {
	f := newFixture()
	flights := []domain.FlightOffer{flight("1", "300.00", "PT15H", 1), flight("2", "500.00", "PT8H", 0)}
	f.searcher.On("Search", mock.Anything, domain.SearchCriteria{
		Origin:        "New York",
		Destination:   "London",
		DepartureDate: time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC),
		Passengers:    2,
		TravelClass:   domain.TravelClassBusiness,
	}).Return(flights, nil)

	s, turn := f.say(f.start(), "Search Flights", "New York", "London", "tomorrow", "No (One way)")
	assert.Equal(t, StepPassengers, s.Step)
	assert.Contains(t, turn.Prompt.Label, "How many passengers?")

	s, turn = f.say(s, "2", "Business")

	assert.Equal(t, StepResults, s.Step)
	assert.Equal(t, TurnPrompt, turn.Kind)
	assert.Contains(t, texts(turn), searchingText)
	assert.Contains(t, texts(turn), "Found 2 flights. Here are the top options:")
	assert.Equal(t, 2, cardCount(turn))
	assert.Len(t, s.AllResults, 2)
	f.searcher.AssertExpectations(t)
}

func TestSearchFlow_RoundTripAsksForReturnDate(t *testing.T) {
	f := newFixture()

	s, turn := f.say(f.start(), "Search Flights", "JFK", "LHR", "2025-03-15", "Yes")
	assert.Equal(t, StepReturnDate, s.Step)
	assert.Equal(t, "When would you like to return?", turn.Prompt.Label)

	s, turn = f.say(s, "2025-03-12")
	assert.Equal(t, StepReturnDate, s.Step)
	assert.Contains(t, texts(turn), "return date must be on or after")

	s, _ = f.say(s, "2025-03-20")
	assert.Equal(t, StepPassengers, s.Step)
	require.NotNil(t, s.Search.ReturnDate)
	assert.Equal(t, time.Date(2025, 3, 20, 0, 0, 0, 0, time.UTC), *s.Search.ReturnDate)
}

func TestSearchFlow_RejectsPastDateAndBadPassengerCount(t *testing.T) {
	f := newFixture()

	s, turn := f.say(f.start(), "Search Flights", "JFK", "LHR", "2020-01-01")
	assert.Equal(t, StepDepartureDate, s.Step)
	assert.Contains(t, texts(turn), "valid future date")

	s, turn = f.say(s, "tomorrow", "No (One way)", "10")
	assert.Equal(t, StepPassengers, s.Step)
	assert.Equal(t, "Please enter a number between 1 and 9.", texts(turn))

	s, _ = f.say(s, "1.5")
	assert.Equal(t, StepPassengers, s.Step)
}

func TestSearchFlow_AirportNotFound(t *testing.T) {
	f := newFixture()
	f.searcher.On("Search", mock.Anything, mock.Anything).
		Return(nil, &domain.AirportNotFoundError{Location: "Atlantis"})

	s, turn := f.say(f.start(), "Search Flights", "Atlantis", "LHR", "tomorrow", "No (One way)", "1", "Economy")

	assert.Equal(t, FlowMain, s.Flow)
	assert.Equal(t, StepMenu, s.Step)
	assert.Contains(t, texts(turn), `couldn't find an airport for "Atlantis"`)
}

func TestSearchFlow_FailureApologises(t *testing.T) {
	f := newFixture()
	f.searcher.On("Search", mock.Anything, mock.Anything).Return(nil, errors.New("vendor down"))

	s, turn := f.say(f.start(), "Search Flights", "JFK", "LHR", "tomorrow", "No (One way)", "1", "First")

	assert.Equal(t, StepMenu, s.Step)
	assert.Contains(t, texts(turn), searchErrText)
	assert.Equal(t, "What else can I help you with?", turn.Prompt.Label)
}

func TestSearchFlow_NoResults(t *testing.T) {
	f := newFixture()
	f.searcher.On("Search", mock.Anything, mock.Anything).Return([]domain.FlightOffer{}, nil)

	s, turn := f.say(f.start(), "Search Flights", "JFK", "LHR", "tomorrow", "No (One way)", "1", "Premium Economy")

	assert.Equal(t, StepMenu, s.Step)
	assert.Contains(t, texts(turn), noFlightsText)
	f.searcher.AssertCalled(t, "Search", mock.Anything, mock.MatchedBy(func(c domain.SearchCriteria) bool {
		return c.TravelClass == domain.TravelClassPremiumEconomy
	}))
}

func TestResults_Compare(t *testing.T) {
	f := newFixture()
	s := f.withResults(flight("1", "300.00", "PT15H", 1), flight("2", "500.00", "PT8H", 0))

	s, turn := f.say(s, "Compare options")

	assert.Equal(t, StepResults, s.Step)
	assert.Contains(t, texts(turn), "Cheapest")
	assert.Contains(t, texts(turn), "Fastest")
}

func TestResults_NotNowReturnsToMenuKeepingResults(t *testing.T) {
	f := newFixture()
	s := f.withResults(flight("1", "300.00", "PT15H", 1))

	s, _ = f.say(s, "Not now")

	assert.Equal(t, StepMenu, s.Step)
	assert.Len(t, s.Results, 1)
}

func TestFilterFlow_MaxDuration(t *testing.T) {
	f := newFixture()
	s := f.withResults(flight("1", "300.00", "PT15H", 1), flight("2", "500.00", "PT8H", 0))

	s, turn := f.say(s, "Filter results")
	assert.Equal(t, FlowFilter, s.Flow)
	assert.Equal(t, TurnDelegate, turn.Kind)

	s, turn = f.say(s, "Maximum Duration")
	assert.Equal(t, StepMaxDuration, s.Step)

	s, turn = f.say(s, "abc")
	assert.Equal(t, "Please enter a valid number of hours.", texts(turn))

	s, turn = f.say(s, "10")
	assert.Equal(t, StepResults, s.Step)
	require.Len(t, s.Results, 1)
	assert.Equal(t, "2", s.Results[0].ID)
	assert.Len(t, s.AllResults, 2)
	assert.Contains(t, texts(turn), "Applied filters. Found 1 flights matching your criteria.")
}

func TestFilterFlow_NoMatchShowsAllResults(t *testing.T) {
	f := newFixture()
	s := f.withResults(flight("1", "300.00", "PT15H", 1), flight("2", "500.00", "PT8H", 0))

	s, turn := f.say(s, "Filter results", "Price Range", "10-20 USD")

	assert.Equal(t, StepResults, s.Step)
	assert.Len(t, s.Results, 2)
	assert.Contains(t, texts(turn), "Found 0 flights")
	assert.Contains(t, texts(turn), "here are all the results again")
}

func TestFilterFlow_AllFiltersAsksEveryQuestion(t *testing.T) {
	f := newFixture()
	s := f.withResults(flight("1", "300.00", "PT15H", 1), flight("2", "500.00", "PT8H", 0))

	s, _ = f.say(s, "Filter results", "All Filters")
	assert.Equal(t, StepPriceRange, s.Step)
	s, _ = f.say(s, "200-600")
	assert.Equal(t, StepAirline, s.Step)
	s, _ = f.say(s, "Any Airline")
	assert.Equal(t, StepMaxDuration, s.Step)
	s, _ = f.say(s, "20")
	assert.Equal(t, StepLayovers, s.Step)
	s, _ = f.say(s, "Direct flights only")
	assert.Equal(t, StepDepartureWindow, s.Step)
	s, _ = f.say(s, "Morning (5am-12pm)")

	assert.Equal(t, StepResults, s.Step)
	require.Len(t, s.Results, 1)
	assert.Equal(t, "2", s.Results[0].ID)
}

func TestFilterFlow_RefilterStartsFromAllResults(t *testing.T) {
	f := newFixture()
	s := f.withResults(flight("1", "300.00", "PT15H", 1), flight("2", "500.00", "PT8H", 0))

	s, _ = f.say(s, "Filter results", "Number of Layovers", "Direct flights only")
	require.Len(t, s.Results, 1)

	s, _ = f.say(s, "Filter results", "Price Range", "100-400")
	require.Len(t, s.Results, 1)
	assert.Equal(t, "1", s.Results[0].ID)
}

func TestFilterFlow_Skip(t *testing.T) {
	f := newFixture()
	s := f.withResults(flight("1", "300.00", "PT15H", 1))

	s, turn := f.say(s, "Filter results", "Skip Filters")

	assert.Equal(t, StepResults, s.Step)
	assert.Equal(t, 1, cardCount(turn))
}

func TestBookingFlow_CollectsEveryPassenger(t *testing.T) {
	f := newFixture()
	three := flight("1", "300.00", "PT15H", 1)
	three.TravelerPricings = []domain.TravelerPricing{{TravelerID: "1"}, {TravelerID: "2"}, {TravelerID: "3"}}
	s := f.withResults(three, flight("2", "500.00", "PT8H", 0))

	booking := &domain.Booking{Reference: "FB1234ABCD", TotalAmount: 300, Currency: "USD"}
	f.bookings.On("CreateBooking", mock.Anything, mock.MatchedBy(func(d domain.BookingDraft) bool {
		return d.UserID == "user-1" && len(d.Passengers) == 3 && d.Passengers[2].PassengerNumber == 3 &&
			d.Amount == 300 && d.Currency == "USD" && d.Email == "ann@example.com"
	})).Return(booking, nil)
	f.payments.On("CreateIntent", mock.Anything, 300.0, "USD", "FB1234ABCD").
		Return(&domain.PaymentIntent{ClientSecret: "pi_1_secret_2", PaymentIntentID: "pi_1", Amount: 30000, Currency: "usd"}, nil)

	s, turn := f.say(s, "book flight 1")
	assert.Equal(t, FlowBooking, s.Flow)
	assert.Equal(t, TurnDelegate, turn.Kind)
	assert.Equal(t, "Please enter details for passenger 1 of 3:\n\nFull Name:", turn.Prompt.Label)

	s, turn = f.say(s, "Ann Lee")
	assert.Contains(t, turn.Prompt.Label, "passenger 2 of 3")
	s, turn = f.say(s, "Bob Lee")
	assert.Contains(t, turn.Prompt.Label, "passenger 3 of 3")
	s, turn = f.say(s, "Cid Lee")
	assert.Equal(t, StepContactEmail, s.Step)

	s, turn = f.say(s, "not-an-email")
	assert.Equal(t, StepContactEmail, s.Step)
	assert.Equal(t, "Please enter a valid email address.", texts(turn))

	s, turn = f.say(s, "Ann Lee <ann@example.com>")
	assert.Equal(t, StepContactEmail, s.Step)
	assert.Equal(t, "Please enter a valid email address.", texts(turn))

	s, turn = f.say(s, "ann@example.com", "+1 555 0100")
	assert.Equal(t, StepBookingConfirm, s.Step)
	assert.Contains(t, texts(turn), "Passengers: Ann Lee, Bob Lee, Cid Lee")
	assert.Contains(t, texts(turn), "Total: USD 300.00")

	s, turn = f.say(s, "yes")
	assert.Equal(t, StepMenu, s.Step)
	assert.Equal(t, TurnResult, turn.Kind)
	require.NotNil(t, turn.Result)
	assert.Equal(t, "FB1234ABCD", turn.Result.BookingReference)
	assert.Equal(t, "https://bot.example.com/payment.html?payment_intent_client_secret=pi_1_secret_2&return_url=https%3A%2F%2Fbot.example.com",
		turn.Result.PaymentLink)
	assert.Contains(t, texts(turn), "reference: **FB1234ABCD**")
	assert.Equal(t, 1, cardCount(turn))
	assert.Empty(t, s.Booking.Passengers)
	f.bookings.AssertExpectations(t)
	f.payments.AssertExpectations(t)
}

func TestBookingFlow_SelectByNumber(t *testing.T) {
	f := newFixture()
	s := f.withResults(flight("1", "300.00", "PT15H", 1), flight("2", "500.00", "PT8H", 0))

	s, turn := f.say(s, "Yes, book now")
	assert.Equal(t, StepFlightSelect, s.Step)
	assert.Equal(t, TurnDelegate, turn.Kind)

	s, turn = f.say(s, "3")
	assert.Equal(t, StepFlightSelect, s.Step)

	s, turn = f.say(s, "2")
	assert.Equal(t, StepPassengerName, s.Step)
	require.NotNil(t, s.Booking.Offer)
	assert.Equal(t, "2", s.Booking.Offer.ID)
	assert.Contains(t, turn.Prompt.Label, "passenger 1 of 1")
}

func TestBookingFlow_DeclineCancels(t *testing.T) {
	f := newFixture()
	s := f.withResults(flight("1", "300.00", "PT15H", 1))

	s, turn := f.say(s, "book flight 1", "Ann Lee", "ann@example.com", "555", "no")

	assert.Equal(t, StepMenu, s.Step)
	assert.Contains(t, texts(turn), "Booking cancelled.")
	f.bookings.AssertNotCalled(t, "CreateBooking", mock.Anything, mock.Anything)
}

func TestBookingFlow_CreateFailure(t *testing.T) {
	f := newFixture()
	s := f.withResults(flight("1", "300.00", "PT15H", 1))
	f.bookings.On("CreateBooking", mock.Anything, mock.Anything).Return(nil, errors.New("db down"))

	s, turn := f.say(s, "book flight 1", "Ann Lee", "ann@example.com", "555", "yes")

	assert.Equal(t, StepMenu, s.Step)
	assert.Equal(t, TurnPrompt, turn.Kind)
	assert.Contains(t, texts(turn), bookingErrText)
	f.payments.AssertNotCalled(t, "CreateIntent", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestBookingFlow_PaymentFailureKeepsReference(t *testing.T) {
	f := newFixture()
	s := f.withResults(flight("1", "300.00", "PT15H", 1))
	f.bookings.On("CreateBooking", mock.Anything, mock.Anything).
		Return(&domain.Booking{Reference: "FBAAAA1111", TotalAmount: 300, Currency: "USD"}, nil)
	f.payments.On("CreateIntent", mock.Anything, 300.0, "USD", "FBAAAA1111").
		Return(nil, domain.ErrPaymentFailed)

	s, turn := f.say(s, "book flight 1", "Ann Lee", "ann@example.com", "555", "yes")

	assert.Equal(t, StepMenu, s.Step)
	assert.Contains(t, texts(turn), "FBAAAA1111")
	assert.Nil(t, turn.Result)
}

func TestBookCommand_OutOfRange(t *testing.T) {
	f := newFixture()
	s := f.withResults(flight("1", "300.00", "PT15H", 1))

	s, turn := f.say(s, "book flight 4")

	assert.Equal(t, StepResults, s.Step)
	assert.Equal(t, "There is no flight 4 in the current results.", texts(turn))
}

func TestBookCommand_FromMenuAfterSearch(t *testing.T) {
	f := newFixture()
	s := f.withResults(flight("1", "300.00", "PT15H", 1))
	s, _ = f.say(s, "Not now")

	s, turn := f.say(s, "Book Flight 1")

	assert.Equal(t, StepPassengerName, s.Step)
	assert.Equal(t, TurnDelegate, turn.Kind)
}

func TestCancel_ReturnsToMenu(t *testing.T) {
	f := newFixture()

	s, _ := f.say(f.start(), "Search Flights", "JFK")
	s, turn := f.say(s, "Cancel")

	assert.Equal(t, FlowMain, s.Flow)
	assert.Equal(t, StepMenu, s.Step)
	assert.Equal(t, "Cancelled.", texts(turn))
	assert.Empty(t, s.Search.Origin)
}

func TestCancel_AtMenuIsNotACommand(t *testing.T) {
	f := newFixture()

	s, turn := f.say(f.start(), "cancel")

	assert.Equal(t, StepMenu, s.Step)
	assert.Equal(t, menuRetryLabel, texts(turn))
}

func TestPaymentFlow_PaysPendingBooking(t *testing.T) {
	f := newFixture()
	booking := &domain.Booking{
		Reference:     "FB1234ABCD",
		Flight:        domain.FlightData{Origin: "JFK", Destination: "LHR"},
		TotalAmount:   1250.5,
		Currency:      "USD",
		PaymentStatus: domain.PaymentStatusPending,
	}
	f.bookings.On("GetBooking", mock.Anything, "FB1234ABCD").Return(booking, nil)
	f.payments.On("CreateIntent", mock.Anything, 1250.5, "USD", "FB1234ABCD").
		Return(&domain.PaymentIntent{ClientSecret: "secret", PaymentIntentID: "pi_9"}, nil)

	s, turn := f.say(f.start(), "Make Payment")
	assert.Equal(t, FlowPayment, s.Flow)
	assert.Equal(t, TurnDelegate, turn.Kind)

	s, turn = f.say(s, "fb1234abcd")
	assert.Equal(t, StepPaymentConfirm, s.Step)
	assert.Contains(t, texts(turn), "USD 1,250.50")

	s, turn = f.say(s, "Yes, pay now")
	assert.Equal(t, TurnResult, turn.Kind)
	assert.Equal(t, "pi_9", turn.Result.PaymentIntent.PaymentIntentID)
	assert.Contains(t, texts(turn), "Pay Now")
	assert.Equal(t, StepMenu, s.Step)
}

func TestPaymentFlow_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		booking *domain.Booking
		err     error
		want    string
	}{
		{name: "not found", err: domain.ErrBookingNotFound, want: "Booking not found. Please check your reference number."},
		{name: "lookup error", err: errors.New("timeout"), want: "Error retrieving booking details. Please try again."},
		{name: "already paid", booking: &domain.Booking{Reference: "FB1", PaymentStatus: domain.PaymentStatusPaid}, want: "already been paid"},
		{name: "expired", booking: &domain.Booking{Reference: "FB1", PaymentStatus: domain.PaymentStatusExpired}, want: "expired"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			if tt.booking != nil {
				f.bookings.On("GetBooking", mock.Anything, "FB1").Return(tt.booking, nil)
			} else {
				f.bookings.On("GetBooking", mock.Anything, "FB1").Return(nil, tt.err)
			}

			s, turn := f.say(f.start(), "Make Payment", "FB1")

			assert.Equal(t, StepMenu, s.Step)
			assert.Contains(t, texts(turn), tt.want)
		})
	}
}

func TestPaymentFlow_DeclineAndGatewayError(t *testing.T) {
	f := newFixture()
	f.bookings.On("GetBooking", mock.Anything, "FB1").
		Return(&domain.Booking{Reference: "FB1", TotalAmount: 10, Currency: "EUR", PaymentStatus: domain.PaymentStatusPending}, nil)
	f.payments.On("CreateIntent", mock.Anything, 10.0, "EUR", "FB1").Return(nil, domain.ErrPaymentFailed)

	_, turn := f.say(f.start(), "Make Payment", "FB1", "No, cancel")
	assert.Contains(t, texts(turn), "Payment cancelled.")

	_, turn = f.say(f.start(), "Make Payment", "FB1", "1")
	assert.Contains(t, texts(turn), "Error processing payment. Please try again later.")
}

func TestViewBookings(t *testing.T) {
	f := newFixture()
	f.bookings.On("ListUserBookings", mock.Anything, "user-1").Return([]domain.Booking{
		{Reference: "FB1", Flight: domain.FlightData{Origin: "JFK", Destination: "LHR"}, TotalAmount: 300, Currency: "USD", PaymentStatus: domain.PaymentStatusPaid},
		{Reference: "FB2", TotalAmount: 100, Currency: "USD", PaymentStatus: domain.PaymentStatusPending},
	}, nil).Once()
	f.bookings.On("ListUserBookings", mock.Anything, "user-1").Return([]domain.Booking{}, nil).Once()
	f.bookings.On("ListUserBookings", mock.Anything, "user-1").Return(nil, errors.New("db down")).Once()

	_, turn := f.say(f.start(), "View My Bookings")
	require.Equal(t, 2, cardCount(turn))
	card := turn.Messages[0].Cards[0]
	assert.Equal(t, "Booking FB1", card.Title)
	assert.Equal(t, "https://bot.example.com/booking/FB1", card.Action.Value)

	_, turn = f.say(f.start(), "View My Bookings")
	assert.Contains(t, texts(turn), "You have no bookings yet.")

	_, turn = f.say(f.start(), "View My Bookings")
	assert.Contains(t, texts(turn), "couldn't retrieve your bookings")
}

func TestChangeLanguage(t *testing.T) {
	f := newFixture()
	f.languages.On("SetLanguage", mock.Anything, "user-1", "es").Return(errors.New("ignored"))

	s, turn := f.say(f.start(), "Change Language", "Spanish")

	assert.Equal(t, "es", s.Language)
	assert.Equal(t, StepMenu, s.Step)
	assert.Contains(t, texts(turn), "Language set to Spanish.")
	f.languages.AssertExpectations(t)
}
