package dialog

import (
	"strconv"
	"strings"
	"time"
)

type PromptKind string

const (
	PromptText    PromptKind = "text"
	PromptChoice  PromptKind = "choice"
	PromptNumber  PromptKind = "number"
	PromptDate    PromptKind = "date"
	PromptConfirm PromptKind = "confirm"
)

// Prompt describes what the bot is waiting for and how a reply is checked.
type Prompt struct {
	Kind       PromptKind `json:"kind"`
	Label      string     `json:"label"`
	Choices    []string   `json:"choices,omitempty"`
	Min        *float64   `json:"min,omitempty"`
	Max        *float64   `json:"max,omitempty"`
	Integer    bool       `json:"integer,omitempty"`
	RetryLabel string     `json:"retryLabel,omitempty"`
}

// answer is a reply that passed validation for its prompt kind.
type answer struct {
	Text   string
	Number float64
	Date   time.Time
	Yes    bool
}

func textPrompt(label string) Prompt {
	return Prompt{Kind: PromptText, Label: label, RetryLabel: "Please enter a response."}
}

func choicePrompt(label string, choices ...string) Prompt {
	return Prompt{
		Kind:       PromptChoice,
		Label:      label,
		Choices:    choices,
		RetryLabel: "Please choose one of the options.",
	}
}

func numberPrompt(label, retry string, min, max float64, integer bool) Prompt {
	return Prompt{Kind: PromptNumber, Label: label, Min: &min, Max: &max, Integer: integer, RetryLabel: retry}
}

func datePrompt(label string) Prompt {
	return Prompt{
		Kind:       PromptDate,
		Label:      label,
		RetryLabel: `Please enter a valid future date (e.g., "tomorrow", "Dec 25", "2024-01-15").`,
	}
}

func confirmPrompt(label string) Prompt {
	return Prompt{
		Kind:       PromptConfirm,
		Label:      label,
		Choices:    []string{"Yes", "No"},
		RetryLabel: "Please answer yes or no.",
	}
}

// parse validates reply against the prompt. ok is false when the same prompt
// has to be asked again.
func (p Prompt) parse(reply string, now time.Time) (answer, bool) {
	reply = strings.TrimSpace(reply)
	if reply == "" {
		return answer{}, false
	}

	switch p.Kind {
	case PromptText:
		return answer{Text: reply}, true
	case PromptChoice:
		choice, ok := matchChoice(p.Choices, reply)
		return answer{Text: choice}, ok
	case PromptNumber:
		n, err := strconv.ParseFloat(reply, 64)
		if err != nil {
			return answer{}, false
		}
		if p.Integer && n != float64(int(n)) {
			return answer{}, false
		}
		if (p.Min != nil && n < *p.Min) || (p.Max != nil && n > *p.Max) {
			return answer{}, false
		}
		return answer{Text: reply, Number: n}, true
	case PromptDate:
		d, ok := parseDate(reply, now)
		return answer{Text: reply, Date: d}, ok
	case PromptConfirm:
		switch strings.ToLower(reply) {
		case "yes", "y", "yeah", "ok", "sure", "1":
			return answer{Text: "Yes", Yes: true}, true
		case "no", "n", "nope", "2":
			return answer{Text: "No"}, true
		}
		return answer{}, false
	}
	return answer{}, false
}

// matchChoice accepts the choice text in any case or its 1-based position.
func matchChoice(choices []string, reply string) (string, bool) {
	for _, c := range choices {
		if strings.EqualFold(c, reply) {
			return c, true
		}
	}
	if n, err := strconv.Atoi(reply); err == nil && n >= 1 && n <= len(choices) {
		return choices[n-1], true
	}
	return "", false
}

var (
	datedLayouts   = []string{"2006-01-02", "01/02/2006", "Jan 2, 2006", "January 2, 2006", "2 Jan 2006", "2 January 2006"}
	undatedLayouts = []string{"Jan 2", "January 2", "2 Jan", "2 January", "01/02"}
)

// parseDate understands "today", "tomorrow" and a handful of calendar
// layouts. Dates without a year roll over to next year once passed. Past
// dates are rejected.
func parseDate(text string, now time.Time) (time.Time, bool) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	switch strings.ToLower(text) {
	case "today":
		return today, true
	case "tomorrow":
		return today.AddDate(0, 0, 1), true
	}

	for _, layout := range datedLayouts {
		if d, err := time.Parse(layout, text); err == nil {
			return d, !d.Before(today)
		}
	}
	for _, layout := range undatedLayouts {
		if d, err := time.Parse(layout, text); err == nil {
			year := today.Year()
			if time.Date(year, d.Month(), d.Day(), 0, 0, 0, 0, time.UTC).Before(today) {
				year++
			}
			date := time.Date(year, d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
			// Feb 29 normalizes to Mar 1 outside leap years.
			if date.Day() != d.Day() {
				return time.Time{}, false
			}
			return date, true
		}
	}
	return time.Time{}, false
}
