package email

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/Domenick1991/flightbot/config"
	"github.com/Domenick1991/flightbot/internal/kafka"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sentMail struct {
	path    string
	to      string
	from    string
	subject string
	html    string
}

func fakeMailgun(t *testing.T, status int) (*httptest.Server, *[]sentMail) {
	t.Helper()
	var (
		mu   sync.Mutex
		sent []sentMail
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		sent = append(sent, sentMail{
			path:    r.URL.Path,
			to:      r.FormValue("to"),
			from:    r.FormValue("from"),
			subject: r.FormValue("subject"),
			html:    r.FormValue("html"),
		})
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{"id":"<20250310.1@mg.example.com>","message":"Queued. Thank you."}`))
	}))
	t.Cleanup(srv.Close)
	return srv, &sent
}

func newTestSender(baseURL string) *Sender {
	s := NewSender(config.MailgunConfig{Domain: "mg.example.com", APIKey: "key-test", Sender: "bot@example.com"}, nil)
	s.mg.SetAPIBase(baseURL + "/v3")
	return s
}

func TestBuildMessage(t *testing.T) {
	out, err := BuildMessage("<b>{{.Name}}</b>", map[string]string{"Name": "<Ann>"})
	require.NoError(t, err)
	assert.Equal(t, "<b>&lt;Ann&gt;</b>", out)

	out, err = BuildMessage("plain", nil)
	require.NoError(t, err)
	assert.Equal(t, "plain", out)

	_, err = BuildMessage("{{.Broken", struct{}{})
	assert.Error(t, err)
}

func TestSend_BookingPaid(t *testing.T) {
	srv, sent := fakeMailgun(t, http.StatusOK)
	s := newTestSender(srv.URL)

	err := s.Send(context.Background(), kafka.BookingEvent{
		Type:      kafka.EventBookingPaid,
		Reference: "FB1234ABCD",
		Email:     "ann@example.com",
		Amount:    1250.5,
		Currency:  "USD",
	})

	require.NoError(t, err)
	require.Len(t, *sent, 1)
	mail := (*sent)[0]
	assert.Equal(t, "/v3/mg.example.com/messages", mail.path)
	assert.Equal(t, "ann@example.com", mail.to)
	assert.Equal(t, "bot@example.com", mail.from)
	assert.Equal(t, "Booking FB1234ABCD confirmed", mail.subject)
	assert.Contains(t, mail.html, "USD 1,250.50")
}

func TestSend_SkipsUnknownEventsAndMissingAddress(t *testing.T) {
	srv, sent := fakeMailgun(t, http.StatusOK)
	s := newTestSender(srv.URL)

	require.NoError(t, s.Send(context.Background(), kafka.BookingEvent{Type: "booking.viewed", Email: "ann@example.com"}))
	require.NoError(t, s.Send(context.Background(), kafka.BookingEvent{Type: kafka.EventBookingCreated}))

	assert.Empty(t, *sent)
}

func TestSend_GatewayError(t *testing.T) {
	srv, _ := fakeMailgun(t, http.StatusUnauthorized)
	s := newTestSender(srv.URL)

	err := s.Send(context.Background(), kafka.BookingEvent{Type: kafka.EventBookingExpired, Reference: "FB1", Email: "ann@example.com"})

	assert.ErrorContains(t, err, "send email for FB1")
}

func TestNoticesRender(t *testing.T) {
	for eventType, n := range notices {
		data := messageData{BookingEvent: kafka.BookingEvent{Type: eventType, Reference: "FB1"}, Total: "USD 1.00"}
		subject, err := BuildMessage(n.subject, data)
		require.NoError(t, err, eventType)
		assert.Contains(t, subject, "FB1")
		_, err = BuildMessage(n.body, data)
		require.NoError(t, err, eventType)
	}
}
