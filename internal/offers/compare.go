package offers

import (
	"math"
	"sort"

	"github.com/Domenick1991/flightbot/internal/domain"
)

const (
	comparisonTableSize = 5
	priceNormalization  = 100
	layoverPenalty      = 2
	notAvailable        = "N/A"
)

// ScoredOffer annotates an offer with its best-value score; lower is better.
type ScoredOffer struct {
	Offer      domain.FlightOffer `json:"offer"`
	ValueScore float64            `json:"valueScore"`
}

type ComparisonRow struct {
	Airline   string `json:"airline" csv:"airline"`
	Price     string `json:"price" csv:"price"`
	Currency  string `json:"currency" csv:"currency"`
	Duration  string `json:"duration" csv:"duration"`
	Layovers  int    `json:"layovers" csv:"layovers"`
	Departure string `json:"departure" csv:"departure"`
	Arrival   string `json:"arrival" csv:"arrival"`
}

type Comparison struct {
	Cheapest   *domain.FlightOffer `json:"cheapest"`
	Fastest    *domain.FlightOffer `json:"fastest"`
	MostDirect *domain.FlightOffer `json:"mostDirect"`
	BestValue  *ScoredOffer        `json:"bestValue"`
	Table      []ComparisonRow     `json:"comparison"`
}

// Compare runs every ranking over the same list. An empty list gives a
// comparison with nil picks and an empty table.
func Compare(flights []domain.FlightOffer) Comparison {
	return Comparison{
		Cheapest:   FindCheapest(flights),
		Fastest:    FindFastest(flights),
		MostDirect: FindMostDirect(flights),
		BestValue:  CalculateBestValue(flights),
		Table:      CreateComparisonTable(flights),
	}
}

func FindCheapest(flights []domain.FlightOffer) *domain.FlightOffer {
	return minBy(flights, func(o domain.FlightOffer) float64 {
		if total, ok := PriceTotal(o); ok {
			return total
		}
		return math.Inf(1)
	})
}

func FindFastest(flights []domain.FlightOffer) *domain.FlightOffer {
	return minBy(flights, DurationHours)
}

func FindMostDirect(flights []domain.FlightOffer) *domain.FlightOffer {
	return minBy(flights, func(o domain.FlightOffer) float64 {
		return float64(Layovers(o))
	})
}

// ValueScore weighs price (per hundred), hours and layovers (x2) equally.
func ValueScore(offer domain.FlightOffer) float64 {
	price, _ := PriceTotal(offer)
	return price/priceNormalization + DurationHours(offer) + float64(layoverPenalty*Layovers(offer))
}

func CalculateBestValue(flights []domain.FlightOffer) *ScoredOffer {
	if len(flights) == 0 {
		return nil
	}
	scored := make([]ScoredOffer, len(flights))
	for i, f := range flights {
		scored[i] = ScoredOffer{Offer: f, ValueScore: ValueScore(f)}
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].ValueScore < scored[j].ValueScore
	})
	return &scored[0]
}

func CreateComparisonTable(flights []domain.FlightOffer) []ComparisonRow {
	n := len(flights)
	if n > comparisonTableSize {
		n = comparisonTableSize
	}
	rows := make([]ComparisonRow, 0, n)
	for _, f := range flights[:n] {
		row := ComparisonRow{
			Airline:   orNA(Carrier(f)),
			Price:     notAvailable,
			Currency:  notAvailable,
			Duration:  notAvailable,
			Layovers:  Layovers(f),
			Departure: notAvailable,
			Arrival:   notAvailable,
		}
		if f.Price != nil {
			row.Price = orNA(f.Price.Total)
			row.Currency = orNA(f.Price.Currency)
		}
		if it := f.FirstItinerary(); it != nil {
			row.Duration = orNA(it.Duration)
		}
		if seg := f.FirstSegment(); seg != nil {
			row.Departure = orNA(seg.Departure.At)
		}
		if seg := f.LastSegment(); seg != nil {
			row.Arrival = orNA(seg.Arrival.At)
		}
		rows = append(rows, row)
	}
	return rows
}

// minBy keeps the first element on ties: a later offer replaces the current
// pick only when strictly smaller.
func minBy(flights []domain.FlightOffer, key func(domain.FlightOffer) float64) *domain.FlightOffer {
	if len(flights) == 0 {
		return nil
	}
	best := 0
	bestKey := key(flights[0])
	for i := 1; i < len(flights); i++ {
		if k := key(flights[i]); k < bestKey {
			best, bestKey = i, k
		}
	}
	picked := flights[best]
	return &picked
}

func orNA(s string) string {
	if s == "" {
		return notAvailable
	}
	return s
}
