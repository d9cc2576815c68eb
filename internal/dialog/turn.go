package dialog

import "github.com/Domenick1991/flightbot/internal/domain"

type TurnKind string

const (
	// TurnPrompt: the active flow is waiting for the next reply.
	TurnPrompt TurnKind = "prompt"
	// TurnResult: a sub-flow finished with a value.
	TurnResult TurnKind = "result"
	// TurnDelegate: control moved into a sub-flow.
	TurnDelegate TurnKind = "delegate"
)

const (
	ActionIMBack  = "imBack"
	ActionOpenURL = "openUrl"
)

type CardAction struct {
	Type  string `json:"type"`
	Title string `json:"title"`
	Value string `json:"value"`
}

type Card struct {
	Title    string      `json:"title"`
	Subtitle string      `json:"subtitle,omitempty"`
	Lines    []string    `json:"lines,omitempty"`
	Action   *CardAction `json:"action,omitempty"`
}

// Message is one outgoing chat bubble: plain text, a carousel of cards, or both.
type Message struct {
	Text  string `json:"text,omitempty"`
	Cards []Card `json:"cards,omitempty"`
}

type Result struct {
	BookingReference string                `json:"bookingReference,omitempty"`
	PaymentIntent    *domain.PaymentIntent `json:"paymentIntent,omitempty"`
	PaymentLink      string                `json:"paymentLink,omitempty"`
}

// Turn is the controller's answer to one reply.
type Turn struct {
	Kind     TurnKind  `json:"kind"`
	Flow     Flow      `json:"flow"`
	Messages []Message `json:"messages"`
	Prompt   *Prompt   `json:"prompt,omitempty"`
	Result   *Result   `json:"result,omitempty"`
}

func text(s string) Message {
	return Message{Text: s}
}
