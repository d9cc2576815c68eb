package payments

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/Domenick1991/flightbot/internal/domain"
	"github.com/Domenick1991/flightbot/internal/repository"
	"go.uber.org/zap"
)

// ErrInvalidWebhook is returned when a gateway notification fails signature
// verification.
var ErrInvalidWebhook = errors.New("invalid webhook signature")

var (
	ErrBookingNotPayable = errors.New("booking cannot be paid")
	ErrAmountMismatch    = errors.New("payment does not match booking total")
)

type PaymentUseCase interface {
	CreateIntent(ctx context.Context, amount float64, currency, reference string) (*domain.PaymentIntent, error)
	Confirm(ctx context.Context, paymentIntentID string) (*domain.PaymentIntent, error)
	Refund(ctx context.Context, paymentIntentID string, amount *float64) (*domain.Refund, error)
	HandleWebhook(ctx context.Context, payload []byte, signature string) error
}

type Gateway interface {
	CreateIntent(ctx context.Context, amount float64, currency, reference string) (*domain.PaymentIntent, error)
	Retrieve(ctx context.Context, paymentIntentID string) (*domain.PaymentIntent, error)
	Refund(ctx context.Context, paymentIntentID string, amount *float64) (*domain.Refund, error)
	ParseWebhook(payload []byte, signature string) (domain.PaymentEvent, error)
}

type Bookings interface {
	GetBooking(ctx context.Context, reference string) (*domain.Booking, error)
	GetBookingByID(ctx context.Context, id int64) (*domain.Booking, error)
	UpdatePaymentStatus(ctx context.Context, reference string, status domain.PaymentStatus, paymentID string) (*domain.Booking, error)
}

type PaymentService struct {
	gateway      Gateway
	bookings     Bookings
	transactions repository.TransactionRepository
	logger       *zap.Logger
}

func NewPaymentService(gateway Gateway, bookings Bookings, transactions repository.TransactionRepository, logger *zap.Logger) *PaymentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PaymentService{
		gateway:      gateway,
		bookings:     bookings,
		transactions: transactions,
		logger:       logger,
	}
}

// CreateIntent opens a gateway payment for the booking and records it as a
// pending transaction. The charge is always the booking's own total; amount
// and currency must agree with it, an empty currency meaning the booking's.
func (s *PaymentService) CreateIntent(ctx context.Context, amount float64, currency, reference string) (*domain.PaymentIntent, error) {
	booking, err := s.bookings.GetBooking(ctx, reference)
	if err != nil {
		return nil, err
	}
	if err := checkPayable(booking, amount, currency); err != nil {
		return nil, err
	}

	intent, err := s.gateway.CreateIntent(ctx, booking.TotalAmount, booking.Currency, booking.Reference)
	if err != nil {
		return nil, err
	}

	tx := &domain.PaymentTransaction{
		BookingID:     booking.ID,
		Gateway:       domain.PaymentGatewayStripe,
		TransactionID: intent.PaymentIntentID,
		Amount:        booking.TotalAmount,
		Currency:      booking.Currency,
		Status:        domain.TransactionStatusPending,
	}
	if err := s.transactions.Create(ctx, tx); err != nil {
		return nil, fmt.Errorf("record payment transaction: %w", err)
	}

	if _, err := s.bookings.UpdatePaymentStatus(ctx, booking.Reference, domain.PaymentStatusPending, intent.PaymentIntentID); err != nil {
		return nil, fmt.Errorf("attach payment to booking: %w", err)
	}

	s.logger.Info("payment intent created",
		zap.String("reference", booking.Reference),
		zap.String("payment_intent", intent.PaymentIntentID),
	)
	return intent, nil
}

// checkPayable accepts bookings still awaiting money: pending, or failed and
// being retried.
func checkPayable(booking *domain.Booking, amount float64, currency string) error {
	switch booking.PaymentStatus {
	case domain.PaymentStatusPending, domain.PaymentStatusFailed, "":
	default:
		return fmt.Errorf("%w: booking %s is %s", ErrBookingNotPayable, booking.Reference, booking.PaymentStatus)
	}
	if math.Abs(amount-booking.TotalAmount) >= 0.005 {
		return fmt.Errorf("%w: got %.2f, booking total is %.2f", ErrAmountMismatch, amount, booking.TotalAmount)
	}
	if currency != "" && !strings.EqualFold(currency, booking.Currency) {
		return fmt.Errorf("%w: got %s, booking currency is %s", ErrAmountMismatch, strings.ToUpper(currency), booking.Currency)
	}
	return nil
}

// Confirm re-reads the intent from the gateway and settles the transaction
// and booking when it succeeded.
func (s *PaymentService) Confirm(ctx context.Context, paymentIntentID string) (*domain.PaymentIntent, error) {
	intent, err := s.gateway.Retrieve(ctx, paymentIntentID)
	if err != nil {
		return nil, err
	}
	if intent.Succeeded() {
		if err := s.settle(ctx, paymentIntentID, domain.TransactionStatusCompleted, domain.PaymentStatusPaid); err != nil {
			return nil, err
		}
	}
	return intent, nil
}

func (s *PaymentService) Refund(ctx context.Context, paymentIntentID string, amount *float64) (*domain.Refund, error) {
	refund, err := s.gateway.Refund(ctx, paymentIntentID, amount)
	if err != nil {
		return nil, err
	}
	if err := s.settle(ctx, paymentIntentID, domain.TransactionStatusRefunded, domain.PaymentStatusRefunded); err != nil {
		return nil, err
	}
	return refund, nil
}

// HandleWebhook applies a verified gateway event. Events for payments this
// service never recorded are ignored.
func (s *PaymentService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	event, err := s.gateway.ParseWebhook(payload, signature)
	if err != nil {
		s.logger.Warn("rejected webhook", zap.Error(err))
		return fmt.Errorf("%w: %v", ErrInvalidWebhook, err)
	}

	switch event.Type {
	case domain.PaymentEventSucceeded:
		err = s.settle(ctx, event.PaymentIntentID, domain.TransactionStatusCompleted, domain.PaymentStatusPaid)
	case domain.PaymentEventFailed:
		err = s.settle(ctx, event.PaymentIntentID, domain.TransactionStatusFailed, domain.PaymentStatusFailed)
	default:
		s.logger.Debug("unhandled webhook event", zap.String("type", string(event.Type)))
		return nil
	}

	if errors.Is(err, domain.ErrTransactionNotFound) {
		s.logger.Info("webhook for unknown payment", zap.String("payment_intent", event.PaymentIntentID))
		return nil
	}
	return err
}

func (s *PaymentService) settle(ctx context.Context, paymentIntentID string, txStatus domain.TransactionStatus, bookingStatus domain.PaymentStatus) error {
	tx, err := s.transactions.UpdateStatus(ctx, paymentIntentID, txStatus)
	if err != nil {
		return err
	}
	booking, err := s.bookings.GetBookingByID(ctx, tx.BookingID)
	if err != nil {
		return err
	}
	if _, err := s.bookings.UpdatePaymentStatus(ctx, booking.Reference, bookingStatus, paymentIntentID); err != nil {
		return err
	}

	s.logger.Info("payment settled",
		zap.String("reference", booking.Reference),
		zap.String("status", string(bookingStatus)),
	)
	return nil
}

var _ PaymentUseCase = (*PaymentService)(nil)
