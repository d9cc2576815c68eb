package booking

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Domenick1991/flightbot/internal/domain"
	"github.com/Domenick1991/flightbot/internal/kafka"
	"github.com/Domenick1991/flightbot/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type BookingUseCase interface {
	CreateBooking(ctx context.Context, draft domain.BookingDraft) (*domain.Booking, error)
	GetBooking(ctx context.Context, reference string) (*domain.Booking, error)
	GetBookingByID(ctx context.Context, id int64) (*domain.Booking, error)
	ListUserBookings(ctx context.Context, userID string) ([]domain.Booking, error)
	UpdatePaymentStatus(ctx context.Context, reference string, status domain.PaymentStatus, paymentID string) (*domain.Booking, error)
	ExpireUnpaidBookings(ctx context.Context) ([]domain.Booking, error)
}

type Producer interface {
	PublishWithRetry(ctx context.Context, topic, key string, value interface{}, maxRetries int) error
}

type BookingService struct {
	bookings           repository.BookingRepository
	producer           Producer
	bookingTopic       string
	notificationsTopic string
	paymentTTL         time.Duration
	publishRetries     int
	now                func() time.Time
	logger             *zap.Logger
}

type BookingServiceOption func(*BookingService)

func WithNotificationsTopic(topic string) BookingServiceOption {
	return func(s *BookingService) {
		s.notificationsTopic = topic
	}
}

// WithPublishRetries makes event publishing retry with backoff. The default
// is a single attempt.
func WithPublishRetries(n int) BookingServiceOption {
	return func(s *BookingService) {
		s.publishRetries = n
	}
}

func WithLogger(logger *zap.Logger) BookingServiceOption {
	return func(s *BookingService) {
		s.logger = logger
	}
}

func WithClock(now func() time.Time) BookingServiceOption {
	return func(s *BookingService) {
		s.now = now
	}
}

func NewBookingService(
	bookings repository.BookingRepository,
	producer Producer,
	bookingTopic string,
	paymentTTL time.Duration,
	opts ...BookingServiceOption,
) *BookingService {
	service := &BookingService{
		bookings:     bookings,
		producer:     producer,
		bookingTopic: bookingTopic,
		paymentTTL:   paymentTTL,
		now:          time.Now,
		logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// NewReference returns "FB" followed by the first 8 characters of a random
// UUID, upper-cased.
func NewReference() string {
	return "FB" + strings.ToUpper(uuid.NewString()[:8])
}

func (s *BookingService) CreateBooking(ctx context.Context, draft domain.BookingDraft) (*domain.Booking, error) {
	if len(draft.Passengers) == 0 {
		return nil, fmt.Errorf("%w: at least one passenger is required", domain.ErrBookingRejected)
	}
	for _, p := range draft.Passengers {
		if strings.TrimSpace(p.Name) == "" {
			return nil, fmt.Errorf("%w: passenger %d has no name", domain.ErrBookingRejected, p.PassengerNumber)
		}
	}
	if strings.TrimSpace(draft.Email) == "" {
		return nil, fmt.Errorf("%w: email is required", domain.ErrBookingRejected)
	}
	if !domain.ValidEmail(draft.Email) {
		return nil, fmt.Errorf("%w: invalid email %q", domain.ErrBookingRejected, draft.Email)
	}
	if draft.Amount < 0 {
		return nil, fmt.Errorf("%w: amount must not be negative", domain.ErrBookingRejected)
	}

	booking := &domain.Booking{
		Reference: NewReference(),
		UserID:    draft.UserID,
		Flight:    draft.FlightData(),
		Passengers: domain.PassengerDetails{
			Passengers: draft.Passengers,
			Email:      strings.TrimSpace(draft.Email),
			Phone:      draft.Phone,
		},
		TotalAmount:   draft.Amount,
		Currency:      strings.ToUpper(draft.Currency),
		PaymentStatus: domain.PaymentStatusPending,
	}
	if booking.Currency == "" {
		booking.Currency = "USD"
	}

	if err := s.bookings.Create(ctx, booking); err != nil {
		s.logger.Error("create booking", zap.String("user", draft.UserID), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", domain.ErrBookingRejected, err)
	}

	s.publish(ctx, kafka.EventBookingCreated, booking)
	return booking, nil
}

func (s *BookingService) GetBooking(ctx context.Context, reference string) (*domain.Booking, error) {
	return s.bookings.GetByReference(ctx, strings.ToUpper(strings.TrimSpace(reference)))
}

func (s *BookingService) GetBookingByID(ctx context.Context, id int64) (*domain.Booking, error) {
	return s.bookings.GetByID(ctx, id)
}

func (s *BookingService) ListUserBookings(ctx context.Context, userID string) ([]domain.Booking, error) {
	return s.bookings.ListByUser(ctx, userID)
}

var statusEvents = map[domain.PaymentStatus]string{
	domain.PaymentStatusPaid:     kafka.EventBookingPaid,
	domain.PaymentStatusFailed:   kafka.EventPaymentFailed,
	domain.PaymentStatusRefunded: kafka.EventBookingRefunded,
	domain.PaymentStatusExpired:  kafka.EventBookingExpired,
}

func (s *BookingService) UpdatePaymentStatus(ctx context.Context, reference string, status domain.PaymentStatus, paymentID string) (*domain.Booking, error) {
	if _, ok := statusEvents[status]; !ok && status != domain.PaymentStatusPending {
		return nil, fmt.Errorf("%w: unknown payment status %q", domain.ErrBookingRejected, status)
	}

	updated, err := s.bookings.UpdatePaymentStatus(ctx, strings.ToUpper(reference), status, paymentID)
	if err != nil {
		return nil, err
	}
	if eventType, ok := statusEvents[status]; ok {
		s.publish(ctx, eventType, updated)
	}
	return updated, nil
}

// ExpireUnpaidBookings marks pending bookings older than the payment TTL as
// expired.
func (s *BookingService) ExpireUnpaidBookings(ctx context.Context) ([]domain.Booking, error) {
	deadline := s.now().Add(-s.paymentTTL)
	expired, err := s.bookings.ExpirePendingBefore(ctx, deadline)
	if err != nil {
		return nil, err
	}
	for i := range expired {
		s.publish(ctx, kafka.EventBookingExpired, &expired[i])
	}
	if len(expired) > 0 {
		s.logger.Info("expired unpaid bookings", zap.Int("count", len(expired)))
	}
	return expired, nil
}

// publish is best effort; a broker outage must not fail the booking.
func (s *BookingService) publish(ctx context.Context, eventType string, booking *domain.Booking) {
	if s.producer == nil || s.bookingTopic == "" {
		return
	}
	event := kafka.BookingEvent{
		Type:            eventType,
		Reference:       booking.Reference,
		UserID:          booking.UserID,
		Email:           booking.Passengers.Email,
		Amount:          booking.TotalAmount,
		Currency:        booking.Currency,
		Status:          string(booking.PaymentStatus),
		PaymentIntentID: booking.PaymentID,
		OccurredAt:      s.now(),
	}

	topics := []string{s.bookingTopic}
	if s.notificationsTopic != "" {
		topics = append(topics, s.notificationsTopic)
	}
	for _, topic := range topics {
		if err := s.producer.PublishWithRetry(ctx, topic, booking.Reference, event, s.publishRetries); err != nil {
			s.logger.Warn("publish booking event",
				zap.String("type", eventType),
				zap.String("topic", topic),
				zap.String("reference", booking.Reference),
				zap.Error(err),
			)
		}
	}
}

var _ BookingUseCase = (*BookingService)(nil)
