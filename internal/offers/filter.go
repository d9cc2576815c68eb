package offers

import (
	"regexp"
	"strconv"
	"time"

	"github.com/Domenick1991/flightbot/internal/domain"
)

type LayoverPolicy string

const (
	LayoversDirectOnly LayoverPolicy = "DIRECT_ONLY"
	LayoversMaxOne     LayoverPolicy = "MAX_ONE"
	LayoversMaxTwo     LayoverPolicy = "MAX_TWO"
	LayoversAny        LayoverPolicy = "ANY"
)

type DepartureWindow string

const (
	DepartMorning   DepartureWindow = "MORNING"
	DepartAfternoon DepartureWindow = "AFTERNOON"
	DepartEvening   DepartureWindow = "EVENING"
	DepartNight     DepartureWindow = "NIGHT"
)

// AnyAirline disables the airline filter.
const AnyAirline = "Any Airline"

const (
	defaultMinPrice = 0
	defaultMaxPrice = 999999
)

var airlineCodes = map[string]string{
	"American Airlines": "AA",
	"Delta":             "DL",
	"United":            "UA",
	"Southwest":         "WN",
	"JetBlue":           "B6",
	"Alaska Airlines":   "AS",
}

// AirlineNames lists the display names the bot offers, in menu order.
var AirlineNames = []string{"American Airlines", "Delta", "United", "Southwest", "JetBlue", "Alaska Airlines", AnyAirline}

var priceRangePattern = regexp.MustCompile(`(\d+)-(\d+)`)

type PriceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// FilterSpec holds optional constraints; a nil or empty field leaves that
// dimension unconstrained.
type FilterSpec struct {
	PriceRange      *PriceRange     `json:"priceRange,omitempty"`
	Airline         string          `json:"airline,omitempty"`
	MaxDuration     *float64        `json:"maxDuration,omitempty"`
	Layovers        LayoverPolicy   `json:"layovers,omitempty"`
	DepartureWindow DepartureWindow `json:"departureWindow,omitempty"`
}

// ParsePriceRange reads "{min}-{max}" anywhere in the text ("200-500 USD").
// Unparsable text yields the open range.
func ParsePriceRange(text string) PriceRange {
	match := priceRangePattern.FindStringSubmatch(text)
	if match == nil {
		return PriceRange{Min: defaultMinPrice, Max: defaultMaxPrice}
	}
	lo, errLo := strconv.Atoi(match[1])
	hi, errHi := strconv.Atoi(match[2])
	if errLo != nil || errHi != nil {
		return PriceRange{Min: defaultMinPrice, Max: defaultMaxPrice}
	}
	return PriceRange{Min: float64(lo), Max: float64(hi)}
}

// AirlineCode maps a display name to its IATA code; unknown names pass through.
func AirlineCode(name string) string {
	if code, ok := airlineCodes[name]; ok {
		return code
	}
	return name
}

// ApplyFilters returns the offers that satisfy every present constraint,
// keeping their relative order. The input slice is not modified.
func ApplyFilters(flights []domain.FlightOffer, spec FilterSpec) []domain.FlightOffer {
	predicates := spec.predicates()
	filtered := make([]domain.FlightOffer, 0, len(flights))
	for _, f := range flights {
		if matchesAll(f, predicates) {
			filtered = append(filtered, f)
		}
	}
	return filtered
}

// IsEmpty reports whether no filter is set.
func (s FilterSpec) IsEmpty() bool {
	return len(s.predicates()) == 0
}

type predicate func(domain.FlightOffer) bool

func (s FilterSpec) predicates() []predicate {
	var ps []predicate
	if s.PriceRange != nil {
		r := *s.PriceRange
		ps = append(ps, func(f domain.FlightOffer) bool {
			price, _ := PriceTotal(f)
			return price >= r.Min && price <= r.Max
		})
	}
	if s.Airline != "" && s.Airline != AnyAirline {
		code := AirlineCode(s.Airline)
		ps = append(ps, func(f domain.FlightOffer) bool {
			return Carrier(f) == code
		})
	}
	if s.MaxDuration != nil {
		limit := *s.MaxDuration
		ps = append(ps, func(f domain.FlightOffer) bool {
			return DurationHours(f) <= limit
		})
	}
	if limit, ok := maxLayovers(s.Layovers); ok {
		ps = append(ps, func(f domain.FlightOffer) bool {
			return Layovers(f) <= limit
		})
	}
	if s.DepartureWindow != "" {
		window := s.DepartureWindow
		ps = append(ps, func(f domain.FlightOffer) bool {
			return departsWithin(f, window)
		})
	}
	return ps
}

func matchesAll(f domain.FlightOffer, ps []predicate) bool {
	for _, p := range ps {
		if !p(f) {
			return false
		}
	}
	return true
}

func maxLayovers(policy LayoverPolicy) (int, bool) {
	switch policy {
	case LayoversDirectOnly:
		return 0, true
	case LayoversMaxOne:
		return 1, true
	case LayoversMaxTwo:
		return 2, true
	default:
		return 0, false
	}
}

// vendor timestamps are local airport time without an offset
var departureLayouts = []string{"2006-01-02T15:04:05", "2006-01-02T15:04", time.RFC3339}

func departsWithin(f domain.FlightOffer, window DepartureWindow) bool {
	seg := f.FirstSegment()
	if seg == nil {
		return false
	}
	var at time.Time
	var err error
	for _, layout := range departureLayouts {
		if at, err = time.Parse(layout, seg.Departure.At); err == nil {
			break
		}
	}
	if err != nil {
		return false
	}
	hour := at.Hour()
	switch window {
	case DepartMorning:
		return hour >= 5 && hour < 12
	case DepartAfternoon:
		return hour >= 12 && hour < 17
	case DepartEvening:
		return hour >= 17 && hour < 21
	case DepartNight:
		return hour >= 21 || hour < 5
	default:
		return true
	}
}
