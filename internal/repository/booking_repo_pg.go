package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/flightbot/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) error
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	GetByReference(ctx context.Context, reference string) (*domain.Booking, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Booking, error)
	UpdatePaymentStatus(ctx context.Context, reference string, status domain.PaymentStatus, paymentID string) (*domain.Booking, error)
	ExpirePendingBefore(ctx context.Context, deadline time.Time) ([]domain.Booking, error)
}

type PGBookingRepository struct {
	db *pgxpool.Pool
}

func NewBookingRepository(db *pgxpool.Pool) BookingRepository {
	return &PGBookingRepository{db: db}
}

const bookingColumns = `id, booking_reference, user_id, flight_data, passenger_details, total_amount::float8, currency, payment_status, payment_id, created_at, updated_at`

func (r *PGBookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	flight, err := json.Marshal(booking.Flight)
	if err != nil {
		return fmt.Errorf("encode flight data: %w", err)
	}
	passengers, err := json.Marshal(booking.Passengers)
	if err != nil {
		return fmt.Errorf("encode passenger details: %w", err)
	}

	if booking.PaymentStatus == "" {
		booking.PaymentStatus = domain.PaymentStatusPending
	}
	return r.db.QueryRow(ctx, `INSERT INTO bookings (booking_reference, user_id, flight_data, passenger_details, total_amount, currency, payment_status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`,
		booking.Reference, booking.UserID, flight, passengers, booking.TotalAmount, booking.Currency, booking.PaymentStatus).
		Scan(&booking.ID, &booking.CreatedAt, &booking.UpdatedAt)
}

func (r *PGBookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	b, err := scanBooking(r.db.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id=$1`, id))
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *PGBookingRepository) GetByReference(ctx context.Context, reference string) (*domain.Booking, error) {
	b, err := scanBooking(r.db.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE booking_reference=$1`, reference))
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *PGBookingRepository) ListByUser(ctx context.Context, userID string) ([]domain.Booking, error) {
	rows, err := r.db.Query(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE user_id=$1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	return collectBookings(rows)
}

func (r *PGBookingRepository) UpdatePaymentStatus(ctx context.Context, reference string, status domain.PaymentStatus, paymentID string) (*domain.Booking, error) {
	b, err := scanBooking(r.db.QueryRow(ctx, `UPDATE bookings
		SET payment_status=$1, payment_id=COALESCE(NULLIF($2, ''), payment_id), updated_at=now()
		WHERE booking_reference=$3
		RETURNING `+bookingColumns, status, paymentID, reference))
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *PGBookingRepository) ExpirePendingBefore(ctx context.Context, deadline time.Time) ([]domain.Booking, error) {
	rows, err := r.db.Query(ctx, `UPDATE bookings SET payment_status=$1, updated_at=now()
		WHERE payment_status=$2 AND created_at <= $3
		RETURNING `+bookingColumns, domain.PaymentStatusExpired, domain.PaymentStatusPending, deadline)
	if err != nil {
		return nil, err
	}
	return collectBookings(rows)
}

func collectBookings(rows pgx.Rows) ([]domain.Booking, error) {
	defer rows.Close()

	bookings := make([]domain.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

func scanBooking(row pgx.Row) (domain.Booking, error) {
	var (
		b                  domain.Booking
		flight, passengers []byte
	)
	err := row.Scan(&b.ID, &b.Reference, &b.UserID, &flight, &passengers, &b.TotalAmount, &b.Currency,
		&b.PaymentStatus, &b.PaymentID, &b.CreatedAt, &b.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Booking{}, domain.ErrBookingNotFound
	}
	if err != nil {
		return domain.Booking{}, err
	}

	if err := decodeBookingJSON(&b, flight, passengers); err != nil {
		return domain.Booking{}, err
	}
	return b, nil
}

func decodeBookingJSON(b *domain.Booking, flight, passengers []byte) error {
	if err := json.Unmarshal(flight, &b.Flight); err != nil {
		return fmt.Errorf("decode flight data of %s: %w", b.Reference, err)
	}
	if err := json.Unmarshal(passengers, &b.Passengers); err != nil {
		return fmt.Errorf("decode passenger details of %s: %w", b.Reference, err)
	}
	return nil
}

var _ BookingRepository = (*PGBookingRepository)(nil)
