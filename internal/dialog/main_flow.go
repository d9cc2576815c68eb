package dialog

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

const helpText = `**Flight Booking Bot Help**

I can help you with:
• **Search Flights** - Find and compare flight options
• **Book Flights** - Complete your flight booking with payment
• **View Bookings** - See your existing bookings
• **Make Payment** - Complete pending payments

**Commands you can use:**
• "search flights"
• "view my bookings"
• "book flight 2" after a search
• "cancel" to leave the current step
• "help"
• "change language"

Just type what you need, and I'll guide you through the process!`

var languageCodes = map[string]string{
	"English": "en",
	"Spanish": "es",
	"French":  "fr",
	"German":  "de",
	"Italian": "it",
}

func (c *Controller) onMenu(ctx context.Context, s Session, a answer) (Session, Turn) {
	switch a.Text {
	case choiceSearch:
		return c.beginSearch(s)
	case choiceBookings:
		return c.showBookings(ctx, s)
	case choicePayment:
		return c.ask(s, FlowPayment, StepPaymentReference,
			textPrompt("Please enter your booking reference number:"), TurnDelegate)
	case choiceHelp:
		return c.backToMenu(s, text(helpText))
	case choiceLanguage:
		return c.ask(s, FlowMain, StepLanguage,
			choicePrompt("Which language would you prefer?", "English", "Spanish", "French", "German", "Italian"), TurnPrompt)
	}
	return c.retry(s, menuRetryLabel)
}

func (c *Controller) onLanguage(ctx context.Context, s Session, a answer) (Session, Turn) {
	code := languageCodes[a.Text]
	s.Language = code
	if c.languages != nil && s.UserID != "" {
		if err := c.languages.SetLanguage(ctx, s.UserID, code); err != nil {
			c.logger.Warn("store language preference", zap.String("user", s.UserID), zap.Error(err))
		}
	}
	return c.backToMenu(s, text(fmt.Sprintf("Language set to %s.", a.Text)))
}

func (c *Controller) showBookings(ctx context.Context, s Session) (Session, Turn) {
	bookings, err := c.bookings.ListUserBookings(ctx, s.UserID)
	if err != nil {
		return c.fail(s, err, "Sorry, I couldn't retrieve your bookings right now.")
	}
	if len(bookings) == 0 {
		return c.backToMenu(s, text("You have no bookings yet."))
	}

	cards := make([]Card, 0, len(bookings))
	for _, b := range bookings {
		cards = append(cards, c.bookingCard(b))
	}
	return c.backToMenu(s, Message{Cards: cards})
}
