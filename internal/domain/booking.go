package domain

import "time"

type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusFailed   PaymentStatus = "failed"
	PaymentStatusRefunded PaymentStatus = "refunded"
	PaymentStatusExpired  PaymentStatus = "expired"
)

type Booking struct {
	ID            int64            `json:"id"`
	Reference     string           `json:"bookingReference"`
	UserID        string           `json:"userId"`
	Flight        FlightData       `json:"flightData"`
	Passengers    PassengerDetails `json:"passengerDetails"`
	TotalAmount   float64          `json:"totalAmount"`
	Currency      string           `json:"currency"`
	PaymentStatus PaymentStatus    `json:"paymentStatus"`
	PaymentID     string           `json:"paymentId,omitempty"`
	CreatedAt     time.Time        `json:"createdAt"`
	UpdatedAt     time.Time        `json:"updatedAt"`
}

type FlightData struct {
	Offer         FlightOffer `json:"flightOffer"`
	Origin        string      `json:"origin"`
	Destination   string      `json:"destination"`
	DepartureDate string      `json:"departureDate"`
}

type PassengerDetails struct {
	Passengers []Passenger `json:"passengers"`
	Email      string      `json:"email"`
	Phone      string      `json:"phone"`
}

type Passenger struct {
	Name            string `json:"name"`
	PassengerNumber int    `json:"passengerNumber"`
}

// BookingDraft is what the conversation hands over once all answers are in.
type BookingDraft struct {
	UserID     string      `json:"userId"`
	Offer      FlightOffer `json:"flightOffer"`
	Passengers []Passenger `json:"passengers"`
	Email      string      `json:"email"`
	Phone      string      `json:"phone"`
	Amount     float64     `json:"totalAmount"`
	Currency   string      `json:"currency"`
}

// FlightData projects the selected offer into the summary stored with a booking.
func (d BookingDraft) FlightData() FlightData {
	data := FlightData{Offer: d.Offer}
	if first := d.Offer.FirstSegment(); first != nil {
		data.Origin = first.Departure.IATACode
		data.DepartureDate = first.Departure.At
	}
	if last := d.Offer.LastSegment(); last != nil {
		data.Destination = last.Arrival.IATACode
	}
	return data
}
