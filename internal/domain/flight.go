package domain

import "time"

type TravelClass string

const (
	TravelClassEconomy        TravelClass = "ECONOMY"
	TravelClassPremiumEconomy TravelClass = "PREMIUM_ECONOMY"
	TravelClassBusiness       TravelClass = "BUSINESS"
	TravelClassFirst          TravelClass = "FIRST"
)

// FlightOffer mirrors the vendor's flight-offer document. Only the fields the
// bot reads are declared; everything is optional on the wire.
type FlightOffer struct {
	ID                    string            `json:"id,omitempty"`
	Source                string            `json:"source,omitempty"`
	NumberOfBookableSeats int               `json:"numberOfBookableSeats,omitempty"`
	Itineraries           []Itinerary       `json:"itineraries,omitempty"`
	Price                 *Price            `json:"price,omitempty"`
	TravelerPricings      []TravelerPricing `json:"travelerPricings,omitempty"`
	ValidatingAirlines    []string          `json:"validatingAirlineCodes,omitempty"`
}

type Price struct {
	Currency   string `json:"currency,omitempty"`
	Total      string `json:"total,omitempty"`
	Base       string `json:"base,omitempty"`
	GrandTotal string `json:"grandTotal,omitempty"`
}

type Itinerary struct {
	Duration string    `json:"duration,omitempty"`
	Segments []Segment `json:"segments,omitempty"`
}

type Segment struct {
	CarrierCode   string         `json:"carrierCode,omitempty"`
	Number        string         `json:"number,omitempty"`
	Departure     FlightEndPoint `json:"departure"`
	Arrival       FlightEndPoint `json:"arrival"`
	Duration      string         `json:"duration,omitempty"`
	NumberOfStops int            `json:"numberOfStops,omitempty"`
}

type FlightEndPoint struct {
	IATACode string `json:"iataCode,omitempty"`
	Terminal string `json:"terminal,omitempty"`
	At       string `json:"at,omitempty"`
}

type TravelerPricing struct {
	TravelerID   string `json:"travelerId,omitempty"`
	FareOption   string `json:"fareOption,omitempty"`
	TravelerType string `json:"travelerType,omitempty"`
	Price        *Price `json:"price,omitempty"`
}

// FirstItinerary returns the outbound itinerary, or nil when the vendor sent none.
func (o FlightOffer) FirstItinerary() *Itinerary {
	if len(o.Itineraries) == 0 {
		return nil
	}
	return &o.Itineraries[0]
}

func (o FlightOffer) FirstSegment() *Segment {
	it := o.FirstItinerary()
	if it == nil || len(it.Segments) == 0 {
		return nil
	}
	return &it.Segments[0]
}

func (o FlightOffer) LastSegment() *Segment {
	it := o.FirstItinerary()
	if it == nil || len(it.Segments) == 0 {
		return nil
	}
	return &it.Segments[len(it.Segments)-1]
}

// TravelerCount is the number of passengers the offer was priced for, 1 if unknown.
func (o FlightOffer) TravelerCount() int {
	if n := len(o.TravelerPricings); n > 0 {
		return n
	}
	return 1
}

type SearchCriteria struct {
	Origin        string      `json:"origin"`
	Destination   string      `json:"destination"`
	DepartureDate time.Time   `json:"departureDate"`
	ReturnDate    *time.Time  `json:"returnDate,omitempty"`
	Passengers    int         `json:"passengers"`
	TravelClass   TravelClass `json:"travelClass,omitempty"`
}

type Location struct {
	Name     string `json:"name"`
	IATACode string `json:"iataCode"`
	SubType  string `json:"subType,omitempty"`
}
