package dialog

import (
	"fmt"

	"github.com/Domenick1991/flightbot/internal/offers"
)

const (
	filterPrice     = "Price Range"
	filterAirline   = "Specific Airlines"
	filterDuration  = "Maximum Duration"
	filterLayovers  = "Number of Layovers"
	filterDeparture = "Departure Time"
	filterAll       = "All Filters"
	filterSkip      = "Skip Filters"
)

// filterOrder is the fixed order in which filter questions are asked.
var filterOrder = []Step{StepPriceRange, StepAirline, StepMaxDuration, StepLayovers, StepDepartureWindow}

var filterStepFor = map[string]Step{
	filterPrice:     StepPriceRange,
	filterAirline:   StepAirline,
	filterDuration:  StepMaxDuration,
	filterLayovers:  StepLayovers,
	filterDeparture: StepDepartureWindow,
}

var layoverChoices = []struct {
	label  string
	policy offers.LayoverPolicy
}{
	{"Direct flights only", offers.LayoversDirectOnly},
	{"1 layover max", offers.LayoversMaxOne},
	{"2 layovers max", offers.LayoversMaxTwo},
	{"Any number of layovers", offers.LayoversAny},
}

var windowChoices = []struct {
	label  string
	window offers.DepartureWindow
}{
	{"Morning (5am-12pm)", offers.DepartMorning},
	{"Afternoon (12pm-5pm)", offers.DepartAfternoon},
	{"Evening (5pm-9pm)", offers.DepartEvening},
	{"Night (9pm-5am)", offers.DepartNight},
	{"Any time", ""},
}

func filterChoicePrompt() Prompt {
	return choicePrompt("What filters would you like to apply?",
		filterPrice, filterAirline, filterDuration, filterLayovers, filterDeparture, filterAll, filterSkip)
}

func filterPrompt(step Step) Prompt {
	switch step {
	case StepPriceRange:
		return textPrompt("Enter your budget range (e.g., '200-500 USD'):")
	case StepAirline:
		return choicePrompt("Which airline do you prefer?", offers.AirlineNames...)
	case StepMaxDuration:
		return numberPrompt("Maximum flight duration in hours (e.g., 8):", "Please enter a valid number of hours.", 1, 72, false)
	case StepLayovers:
		labels := make([]string, 0, len(layoverChoices))
		for _, lc := range layoverChoices {
			labels = append(labels, lc.label)
		}
		return choicePrompt("How many layovers are acceptable?", labels...)
	default:
		labels := make([]string, 0, len(windowChoices))
		for _, wc := range windowChoices {
			labels = append(labels, wc.label)
		}
		return choicePrompt("What time of day would you like to depart?", labels...)
	}
}

func (c *Controller) onFilterChoice(s Session, a answer) (Session, Turn) {
	if a.Text == filterSkip {
		return c.presentResults(s)
	}
	s.Filter = FilterDraft{Choice: a.Text}
	return c.nextFilter(s, "")
}

func (c *Controller) onFilterValue(s Session, a answer) (Session, Turn) {
	spec := s.Filter.Spec
	switch s.Step {
	case StepPriceRange:
		r := offers.ParsePriceRange(a.Text)
		spec.PriceRange = &r
	case StepAirline:
		spec.Airline = a.Text
	case StepMaxDuration:
		hours := a.Number
		spec.MaxDuration = &hours
	case StepLayovers:
		for _, lc := range layoverChoices {
			if lc.label == a.Text {
				spec.Layovers = lc.policy
			}
		}
	case StepDepartureWindow:
		for _, wc := range windowChoices {
			if wc.label == a.Text {
				spec.DepartureWindow = wc.window
			}
		}
	}
	s.Filter.Spec = spec
	return c.nextFilter(s, s.Step)
}

// nextFilter asks the first question after `after` that the chosen option
// covers, or applies the filters once there are none left.
func (c *Controller) nextFilter(s Session, after Step) (Session, Turn) {
	passed := after == ""
	for _, step := range filterOrder {
		if !passed {
			passed = step == after
			continue
		}
		if s.Filter.Choice == filterAll || filterStepFor[s.Filter.Choice] == step {
			return c.ask(s, FlowFilter, step, filterPrompt(step), TurnPrompt)
		}
	}
	return c.applyFilters(s)
}

func (c *Controller) applyFilters(s Session) (Session, Turn) {
	base := s.AllResults
	if len(base) == 0 {
		base = s.Results
	}
	filtered := offers.ApplyFilters(base, s.Filter.Spec)

	msgs := []Message{text(fmt.Sprintf("Applied filters. Found %d flights matching your criteria.", len(filtered)))}
	if len(filtered) == 0 {
		msgs = append(msgs, text("No flights match those filters, so here are all the results again."))
		s.Results = base
	} else {
		s.Results = filtered
	}
	return c.presentResults(s, msgs...)
}
