package dialog

import (
	"time"

	"github.com/Domenick1991/flightbot/internal/domain"
	"github.com/Domenick1991/flightbot/internal/offers"
)

type Flow string

const (
	FlowMain    Flow = "main"
	FlowSearch  Flow = "search"
	FlowFilter  Flow = "filter"
	FlowBooking Flow = "booking"
	FlowPayment Flow = "payment"
)

type Step string

const (
	StepMenu     Step = "menu"
	StepLanguage Step = "language"

	StepOrigin        Step = "origin"
	StepDestination   Step = "destination"
	StepDepartureDate Step = "departure-date"
	StepRoundTrip     Step = "round-trip"
	StepReturnDate    Step = "return-date"
	StepPassengers    Step = "passengers"
	StepTravelClass   Step = "travel-class"
	StepResults       Step = "results"

	StepFilterChoice    Step = "filter-choice"
	StepPriceRange      Step = "price-range"
	StepAirline         Step = "airline"
	StepMaxDuration     Step = "max-duration"
	StepLayovers        Step = "layovers"
	StepDepartureWindow Step = "departure-window"

	StepFlightSelect   Step = "flight-select"
	StepPassengerName  Step = "passenger-name"
	StepContactEmail   Step = "contact-email"
	StepContactPhone   Step = "contact-phone"
	StepBookingConfirm Step = "booking-confirm"

	StepPaymentReference Step = "payment-reference"
	StepPaymentConfirm   Step = "payment-confirm"
)

// Session is everything one conversation has accumulated. It is passed and
// returned by value; handlers never write through to the caller's copy.
type Session struct {
	ConversationID string  `json:"conversationId"`
	UserID         string  `json:"userId"`
	Language       string  `json:"language"`
	Flow           Flow    `json:"flow"`
	Step           Step    `json:"step"`
	Pending        *Prompt `json:"pending,omitempty"`

	Search  SearchDraft  `json:"search"`
	Filter  FilterDraft  `json:"filter"`
	Booking BookingState `json:"booking"`
	Payment PaymentState `json:"payment"`

	// Results is the list the user is looking at; AllResults is the
	// unfiltered outcome of the last search.
	Results    []domain.FlightOffer `json:"results,omitempty"`
	AllResults []domain.FlightOffer `json:"allResults,omitempty"`

	UpdatedAt time.Time `json:"updatedAt"`
}

type SearchDraft struct {
	Origin        string             `json:"origin,omitempty"`
	Destination   string             `json:"destination,omitempty"`
	DepartureDate time.Time          `json:"departureDate,omitempty"`
	RoundTrip     bool               `json:"roundTrip,omitempty"`
	ReturnDate    *time.Time         `json:"returnDate,omitempty"`
	Passengers    int                `json:"passengers,omitempty"`
	TravelClass   domain.TravelClass `json:"travelClass,omitempty"`
}

func (d SearchDraft) Criteria() domain.SearchCriteria {
	return domain.SearchCriteria{
		Origin:        d.Origin,
		Destination:   d.Destination,
		DepartureDate: d.DepartureDate,
		ReturnDate:    d.ReturnDate,
		Passengers:    d.Passengers,
		TravelClass:   d.TravelClass,
	}
}

type FilterDraft struct {
	Choice string            `json:"choice,omitempty"`
	Spec   offers.FilterSpec `json:"spec"`
}

type BookingState struct {
	Offer      *domain.FlightOffer `json:"offer,omitempty"`
	Expected   int                 `json:"expected,omitempty"`
	Passengers []domain.Passenger  `json:"passengers,omitempty"`
	Email      string              `json:"email,omitempty"`
	Phone      string              `json:"phone,omitempty"`
}

type PaymentState struct {
	Reference string          `json:"reference,omitempty"`
	Booking   *domain.Booking `json:"booking,omitempty"`
}

func NewSession(conversationID, userID, language string) Session {
	if language == "" {
		language = domain.DefaultLanguage
	}
	return Session{
		ConversationID: conversationID,
		UserID:         userID,
		Language:       language,
		Flow:           FlowMain,
	}
}
