package dialog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Domenick1991/flightbot/internal/domain"
	"github.com/Domenick1991/flightbot/internal/offers"
	"go.uber.org/zap"
)

const (
	choiceRoundTrip = "Yes"
	choiceOneWay    = "No (One way)"

	choiceBookNow     = "Yes, book now"
	choiceCompare     = "Compare options"
	choiceFilter      = "Filter results"
	choiceSearchAgain = "Search again"
	choiceNotNow      = "Not now"

	searchingText = "🔍 Searching for flights... Please wait."
	searchErrText = "Sorry, there was an error searching for flights. Please try again later."
	noFlightsText = "Sorry, no flights found for your search criteria. Please try different dates or destinations."
)

func (c *Controller) beginSearch(s Session) (Session, Turn) {
	s.Search = SearchDraft{}
	s.Filter = FilterDraft{}
	return c.ask(s, FlowSearch, StepOrigin,
		textPrompt("Where would you like to fly from? (Enter city or airport code)"), TurnDelegate)
}

func (c *Controller) onOrigin(s Session, a answer) (Session, Turn) {
	s.Search.Origin = a.Text
	return c.ask(s, FlowSearch, StepDestination,
		textPrompt("Where would you like to fly to? (Enter city or airport code)"), TurnPrompt)
}

func (c *Controller) onDestination(s Session, a answer) (Session, Turn) {
	s.Search.Destination = a.Text
	return c.ask(s, FlowSearch, StepDepartureDate,
		datePrompt(`When would you like to depart? (e.g., "tomorrow", "Dec 25", "2024-01-15")`), TurnPrompt)
}

func (c *Controller) onDepartureDate(s Session, a answer) (Session, Turn) {
	s.Search.DepartureDate = a.Date
	return c.ask(s, FlowSearch, StepRoundTrip,
		choicePrompt("Is this a round trip?", choiceRoundTrip, choiceOneWay), TurnPrompt)
}

func (c *Controller) onRoundTrip(s Session, a answer) (Session, Turn) {
	s.Search.RoundTrip = a.Text == choiceRoundTrip
	if s.Search.RoundTrip {
		return c.ask(s, FlowSearch, StepReturnDate, datePrompt("When would you like to return?"), TurnPrompt)
	}
	s.Search.ReturnDate = nil
	return c.askPassengers(s)
}

func (c *Controller) onReturnDate(s Session, a answer) (Session, Turn) {
	if a.Date.Before(s.Search.DepartureDate) {
		return c.retry(s, "Your return date must be on or after the departure date.")
	}
	ret := a.Date
	s.Search.ReturnDate = &ret
	return c.askPassengers(s)
}

func (c *Controller) askPassengers(s Session) (Session, Turn) {
	return c.ask(s, FlowSearch, StepPassengers,
		numberPrompt("How many passengers? (1-9)", "Please enter a number between 1 and 9.", 1, 9, true), TurnPrompt)
}

func (c *Controller) onPassengers(s Session, a answer) (Session, Turn) {
	s.Search.Passengers = int(a.Number)
	return c.ask(s, FlowSearch, StepTravelClass,
		choicePrompt("Which class would you prefer?", "Economy", "Premium Economy", "Business", "First"), TurnPrompt)
}

func (c *Controller) onTravelClass(ctx context.Context, s Session, a answer) (Session, Turn) {
	s.Search.TravelClass = domain.TravelClass(strings.ToUpper(strings.ReplaceAll(a.Text, " ", "_")))
	return c.runSearch(ctx, s)
}

func (c *Controller) runSearch(ctx context.Context, s Session) (Session, Turn) {
	searching := text(searchingText)

	flights, err := c.searcher.Search(ctx, s.Search.Criteria())
	if err != nil {
		var notFound *domain.AirportNotFoundError
		if errors.As(err, &notFound) {
			c.logger.Info("airport not resolved", zap.String("location", notFound.Location))
			return c.backToMenu(s, searching, text(fmt.Sprintf(
				"Sorry, I couldn't find an airport for \"%s\". Please use a city name or a 3-letter airport code.",
				notFound.Location)))
		}
		s, t := c.fail(s, err, searchErrText)
		t.Messages = append([]Message{searching}, t.Messages...)
		return s, t
	}
	if len(flights) == 0 {
		return c.backToMenu(s, searching, text(noFlightsText))
	}

	s.AllResults = flights
	s.Results = flights
	return c.presentResults(s, searching)
}

func resultsPrompt() Prompt {
	return choicePrompt("Would you like to book one of these flights?",
		choiceBookNow, choiceCompare, choiceFilter, choiceSearchAgain, choiceNotNow)
}

func (c *Controller) presentResults(s Session, msgs ...Message) (Session, Turn) {
	msgs = append(msgs, Message{
		Text:  fmt.Sprintf("Found %d flights. Here are the top options:", len(s.Results)),
		Cards: flightCards(s.Results),
	})
	return c.ask(s, FlowSearch, StepResults, resultsPrompt(), TurnPrompt, msgs...)
}

func (c *Controller) onResults(s Session, a answer) (Session, Turn) {
	switch a.Text {
	case choiceBookNow:
		n := len(s.Results)
		if n > resultCards {
			n = resultCards
		}
		return c.ask(s, FlowBooking, StepFlightSelect, numberPrompt(
			fmt.Sprintf("Please select a flight by typing the flight number (1-%d) or 'cancel' to go back.", n),
			fmt.Sprintf("Please enter a number between 1 and %d.", n),
			1, float64(n), true), TurnDelegate)
	case choiceCompare:
		return c.ask(s, FlowSearch, StepResults, resultsPrompt(), TurnPrompt, text(comparisonText(offers.Compare(s.Results))))
	case choiceFilter:
		s.Filter = FilterDraft{}
		return c.ask(s, FlowFilter, StepFilterChoice, filterChoicePrompt(), TurnDelegate)
	case choiceSearchAgain:
		return c.beginSearch(s)
	}
	return c.backToMenu(s)
}
