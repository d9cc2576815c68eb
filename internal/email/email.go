package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"github.com/Domenick1991/flightbot/config"
	"github.com/Domenick1991/flightbot/internal/kafka"
	"github.com/dustin/go-humanize"
	"github.com/mailgun/mailgun-go/v4"
	"go.uber.org/zap"
)

type notice struct {
	subject string
	body    string
}

var notices = map[string]notice{
	kafka.EventBookingCreated: {
		subject: "Booking {{.Reference}} received",
		body: `<p>Thank you for booking with us.</p>
<p>Your booking reference is <b>{{.Reference}}</b>. Total due: {{.Total}}.</p>
<p>Please complete the payment to confirm your seats.</p>`,
	},
	kafka.EventBookingPaid: {
		subject: "Booking {{.Reference}} confirmed",
		body:    `<p>We received your payment of {{.Total}}. Booking <b>{{.Reference}}</b> is confirmed.</p>`,
	},
	kafka.EventPaymentFailed: {
		subject: "Payment for booking {{.Reference}} failed",
		body:    `<p>Your payment for booking <b>{{.Reference}}</b> did not go through. You can try again from the chat with "Make Payment".</p>`,
	},
	kafka.EventBookingExpired: {
		subject: "Booking {{.Reference}} expired",
		body:    `<p>Booking <b>{{.Reference}}</b> was not paid in time and has been released.</p>`,
	},
	kafka.EventBookingRefunded: {
		subject: "Booking {{.Reference}} refunded",
		body:    `<p>A refund of {{.Total}} for booking <b>{{.Reference}}</b> is on its way.</p>`,
	},
}

type messageData struct {
	kafka.BookingEvent
	Total string
}

// BuildMessage renders body as an HTML template. A nil data returns body as is.
func BuildMessage(body string, data interface{}) (string, error) {
	if data == nil {
		return body, nil
	}

	tpl, err := template.New("email body").Parse(body)
	if err != nil {
		return "", err
	}

	buf := new(bytes.Buffer)
	if err := tpl.Execute(buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

type Sender struct {
	mg     *mailgun.MailgunImpl
	from   string
	logger *zap.Logger
}

func NewSender(cfg config.MailgunConfig, logger *zap.Logger) *Sender {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sender{
		mg:     mailgun.NewMailgun(cfg.Domain, cfg.APIKey),
		from:   cfg.Sender,
		logger: logger,
	}
}

// Send mails the customer about event. Events without an address or without
// a matching notice are skipped.
func (s *Sender) Send(ctx context.Context, event kafka.BookingEvent) error {
	n, ok := notices[event.Type]
	if !ok || event.Email == "" {
		s.logger.Debug("no notification for event", zap.String("type", event.Type), zap.String("reference", event.Reference))
		return nil
	}

	data := messageData{
		BookingEvent: event,
		Total:        fmt.Sprintf("%s %s", event.Currency, humanize.FormatFloat("#,###.##", event.Amount)),
	}
	subject, err := BuildMessage(n.subject, data)
	if err != nil {
		return fmt.Errorf("render subject: %w", err)
	}
	html, err := BuildMessage(n.body, data)
	if err != nil {
		return fmt.Errorf("render body: %w", err)
	}

	msg := s.mg.NewMessage(s.from, subject, "", event.Email)
	msg.SetHtml(html)

	_, id, err := s.mg.Send(ctx, msg)
	if err != nil {
		return fmt.Errorf("send email for %s: %w", event.Reference, err)
	}
	s.logger.Info("notification sent",
		zap.String("type", event.Type),
		zap.String("reference", event.Reference),
		zap.String("message_id", id),
	)
	return nil
}
