package dialog

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/Domenick1991/flightbot/internal/domain"
	"github.com/Domenick1991/flightbot/internal/offers"
	"github.com/dustin/go-humanize"
)

const (
	resultCards    = 5
	cardTimeFmt    = "Mon, Jan 2 2006 15:04"
	unknownAirline = "Unknown"
)

func money(currency string, amount float64) string {
	return fmt.Sprintf("%s %s", currency, humanize.FormatFloat("#,###.##", amount))
}

func offerPrice(o domain.FlightOffer) string {
	if total, ok := offers.PriceTotal(o); ok {
		return money(offers.Currency(o), total)
	}
	return offers.Currency(o) + " N/A"
}

func route(o domain.FlightOffer) string {
	from, to := "?", "?"
	if seg := o.FirstSegment(); seg != nil && seg.Departure.IATACode != "" {
		from = seg.Departure.IATACode
	}
	if seg := o.LastSegment(); seg != nil && seg.Arrival.IATACode != "" {
		to = seg.Arrival.IATACode
	}
	return from + " → " + to
}

func airline(o domain.FlightOffer) string {
	if code := offers.Carrier(o); code != "" {
		return code
	}
	return unknownAirline
}

// localTime renders a vendor timestamp; unparsable values are shown as sent.
func localTime(at string) string {
	for _, layout := range []string{"2006-01-02T15:04:05", "2006-01-02T15:04", time.RFC3339} {
		if t, err := time.Parse(layout, at); err == nil {
			return t.Format(cardTimeFmt)
		}
	}
	if at == "" {
		return "N/A"
	}
	return at
}

func flightCard(o domain.FlightOffer, n int) Card {
	var departure, arrival string
	if seg := o.FirstSegment(); seg != nil {
		departure = seg.Departure.At
	}
	if seg := o.LastSegment(); seg != nil {
		arrival = seg.Arrival.At
	}
	duration := "N/A"
	if it := o.FirstItinerary(); it != nil && it.Duration != "" {
		duration = it.Duration
	}

	return Card{
		Title:    fmt.Sprintf("%d. %s - %s", n, airline(o), offerPrice(o)),
		Subtitle: route(o),
		Lines: []string{
			"Departure: " + localTime(departure),
			"Arrival: " + localTime(arrival),
			"Duration: " + duration,
			fmt.Sprintf("Stops: %d", offers.Layovers(o)),
		},
		Action: &CardAction{Type: ActionIMBack, Title: "Book This Flight", Value: fmt.Sprintf("book flight %d", n)},
	}
}

func flightCards(flights []domain.FlightOffer) []Card {
	n := len(flights)
	if n > resultCards {
		n = resultCards
	}
	cards := make([]Card, 0, n)
	for i := 0; i < n; i++ {
		cards = append(cards, flightCard(flights[i], i+1))
	}
	return cards
}

func (c *Controller) bookingCard(b domain.Booking) Card {
	return Card{
		Title:    "Booking " + b.Reference,
		Subtitle: fmt.Sprintf("%s → %s", b.Flight.Origin, b.Flight.Destination),
		Lines: []string{
			"Departure: " + localTime(b.Flight.DepartureDate),
			"Amount: " + money(b.Currency, b.TotalAmount),
			"Status: " + string(b.PaymentStatus),
		},
		Action: &CardAction{Type: ActionOpenURL, Title: "View Details", Value: c.baseURL + "/booking/" + b.Reference},
	}
}

func (c *Controller) paymentLink(clientSecret string) string {
	return fmt.Sprintf("%s/payment.html?payment_intent_client_secret=%s&return_url=%s",
		c.baseURL, url.QueryEscape(clientSecret), url.QueryEscape(c.baseURL))
}

func paymentCard(subtitle, amount, note, link string) Card {
	return Card{
		Title:    "Complete Your Payment",
		Subtitle: subtitle,
		Lines:    []string{"Amount: " + amount, note},
		Action:   &CardAction{Type: ActionOpenURL, Title: "Pay Now", Value: link},
	}
}

func comparisonText(cmp offers.Comparison) string {
	var b strings.Builder
	b.WriteString("**Flight Comparison:**\n")
	if cmp.Cheapest != nil {
		fmt.Fprintf(&b, "💰 Cheapest: %s %s (%s)\n", airline(*cmp.Cheapest), offerPrice(*cmp.Cheapest), route(*cmp.Cheapest))
	}
	if cmp.Fastest != nil {
		fmt.Fprintf(&b, "⚡ Fastest: %s %.1fh (%s)\n", airline(*cmp.Fastest), offers.DurationHours(*cmp.Fastest), offerPrice(*cmp.Fastest))
	}
	if cmp.MostDirect != nil {
		fmt.Fprintf(&b, "🛫 Fewest stops: %s, %d stop(s) (%s)\n", airline(*cmp.MostDirect), offers.Layovers(*cmp.MostDirect), offerPrice(*cmp.MostDirect))
	}
	if cmp.BestValue != nil {
		fmt.Fprintf(&b, "⭐ Best value: %s %s (score %.2f)\n", airline(cmp.BestValue.Offer), offerPrice(cmp.BestValue.Offer), cmp.BestValue.ValueScore)
	}
	for i, row := range cmp.Table {
		fmt.Fprintf(&b, "\n%d. %s | %s %s | %s | %d stop(s)", i+1, row.Airline, row.Currency, row.Price, row.Duration, row.Layovers)
	}
	return b.String()
}
