// Package offers ranks and filters vendor flight offers. Nothing in here talks
// to the network; malformed offers are scored with defaults instead of failing.
package offers

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/Domenick1991/flightbot/internal/domain"
)

var durationPattern = regexp.MustCompile(`^PT(\d+)H(?:(\d+)M)?`)

// ParseDuration converts a vendor duration such as "PT8H30M" into hours.
// Anything that does not start with PT{h}H yields 0.
func ParseDuration(duration string) float64 {
	match := durationPattern.FindStringSubmatch(duration)
	if match == nil {
		return 0
	}
	hours, _ := strconv.Atoi(match[1])
	minutes, _ := strconv.Atoi(match[2])
	return float64(hours) + float64(minutes)/60
}

// DurationHours is the parsed duration of the outbound itinerary.
func DurationHours(offer domain.FlightOffer) float64 {
	it := offer.FirstItinerary()
	if it == nil {
		return 0
	}
	return ParseDuration(it.Duration)
}

// Layovers counts intermediate stops on the outbound itinerary. An offer
// without segments is treated as direct.
func Layovers(offer domain.FlightOffer) int {
	it := offer.FirstItinerary()
	if it == nil || len(it.Segments) == 0 {
		return 0
	}
	return len(it.Segments) - 1
}

// Carrier is the marketing carrier of the first segment, "" if unknown.
func Carrier(offer domain.FlightOffer) string {
	if seg := offer.FirstSegment(); seg != nil {
		return seg.CarrierCode
	}
	return ""
}

// PriceTotal parses the offer total. ok is false when the price is absent or
// not a number.
func PriceTotal(offer domain.FlightOffer) (float64, bool) {
	if offer.Price == nil {
		return 0, false
	}
	total, err := strconv.ParseFloat(strings.TrimSpace(offer.Price.Total), 64)
	if err != nil || math.IsNaN(total) {
		return 0, false
	}
	return total, true
}

// Currency of the offer, USD when the vendor omitted it.
func Currency(offer domain.FlightOffer) string {
	if offer.Price == nil || offer.Price.Currency == "" {
		return "USD"
	}
	return offer.Price.Currency
}
