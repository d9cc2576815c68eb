package stripeclient

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/Domenick1991/flightbot/config"
	"github.com/Domenick1991/flightbot/internal/domain"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"
)

const referenceMetadataKey = "bookingReference"

type Gateway struct {
	api           *client.API
	webhookSecret string
}

func New(cfg config.StripeConfig) *Gateway {
	return newWithBackends(cfg, nil)
}

func newWithBackends(cfg config.StripeConfig, backends *stripe.Backends) *Gateway {
	return &Gateway{
		api:           client.New(cfg.SecretKey, backends),
		webhookSecret: cfg.WebhookSecret,
	}
}

// CreateIntent opens a card payment for amount (major units) tagged with the
// booking reference.
func (g *Gateway) CreateIntent(ctx context.Context, amount float64, currency, reference string) (*domain.PaymentIntent, error) {
	if currency == "" {
		currency = "usd"
	}
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(toMinorUnits(amount)),
		Currency: stripe.String(strings.ToLower(currency)),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.AddMetadata(referenceMetadataKey, reference)
	params.Context = ctx

	pi, err := g.api.PaymentIntents.New(params)
	if err != nil {
		return nil, fmt.Errorf("create payment intent: %v: %w", err, domain.ErrPaymentFailed)
	}
	return toIntent(pi), nil
}

func (g *Gateway) Retrieve(ctx context.Context, paymentIntentID string) (*domain.PaymentIntent, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	pi, err := g.api.PaymentIntents.Get(paymentIntentID, params)
	if err != nil {
		return nil, fmt.Errorf("retrieve payment intent: %v: %w", err, domain.ErrPaymentFailed)
	}
	return toIntent(pi), nil
}

// Refund returns the whole charge when amount is nil.
func (g *Gateway) Refund(ctx context.Context, paymentIntentID string, amount *float64) (*domain.Refund, error) {
	params := &stripe.RefundParams{PaymentIntent: stripe.String(paymentIntentID)}
	if amount != nil {
		params.Amount = stripe.Int64(toMinorUnits(*amount))
	}
	params.Context = ctx

	r, err := g.api.Refunds.New(params)
	if err != nil {
		return nil, fmt.Errorf("refund payment: %v: %w", err, domain.ErrPaymentFailed)
	}
	return &domain.Refund{
		RefundID: r.ID,
		Status:   string(r.Status),
		Amount:   r.Amount,
		Currency: string(r.Currency),
	}, nil
}

// ParseWebhook verifies the Stripe-Signature header and extracts the payment
// intent the event is about.
func (g *Gateway) ParseWebhook(payload []byte, signature string) (domain.PaymentEvent, error) {
	event, err := webhook.ConstructEventWithOptions(payload, signature, g.webhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return domain.PaymentEvent{}, fmt.Errorf("verify webhook: %w", err)
	}

	out := domain.PaymentEvent{ID: event.ID, Type: domain.PaymentEventType(event.Type)}
	if event.Data != nil && strings.HasPrefix(string(event.Type), "payment_intent.") {
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
			return domain.PaymentEvent{}, fmt.Errorf("decode webhook object: %w", err)
		}
		out.PaymentIntentID = pi.ID
	}
	return out, nil
}

func toMinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

func toIntent(pi *stripe.PaymentIntent) *domain.PaymentIntent {
	return &domain.PaymentIntent{
		ClientSecret:    pi.ClientSecret,
		PaymentIntentID: pi.ID,
		Amount:          pi.Amount,
		Currency:        string(pi.Currency),
		Status:          string(pi.Status),
	}
}
