package repository

import (
	"context"
	"errors"

	"github.com/Domenick1991/flightbot/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type TransactionRepository interface {
	Create(ctx context.Context, tx *domain.PaymentTransaction) error
	UpdateStatus(ctx context.Context, transactionID string, status domain.TransactionStatus) (*domain.PaymentTransaction, error)
}

type PGTransactionRepository struct {
	db *pgxpool.Pool
}

func NewTransactionRepository(db *pgxpool.Pool) TransactionRepository {
	return &PGTransactionRepository{db: db}
}

func (r *PGTransactionRepository) Create(ctx context.Context, tx *domain.PaymentTransaction) error {
	if tx.Status == "" {
		tx.Status = domain.TransactionStatusPending
	}
	return r.db.QueryRow(ctx, `INSERT INTO payment_transactions (booking_id, payment_gateway, transaction_id, amount, currency, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`,
		tx.BookingID, tx.Gateway, tx.TransactionID, tx.Amount, tx.Currency, tx.Status).
		Scan(&tx.ID, &tx.CreatedAt, &tx.UpdatedAt)
}

func (r *PGTransactionRepository) UpdateStatus(ctx context.Context, transactionID string, status domain.TransactionStatus) (*domain.PaymentTransaction, error) {
	row := r.db.QueryRow(ctx, `UPDATE payment_transactions SET status=$1, updated_at=now() WHERE transaction_id=$2
		RETURNING id, booking_id, payment_gateway, transaction_id, amount::float8, currency, status, created_at, updated_at`, status, transactionID)

	var tx domain.PaymentTransaction
	err := row.Scan(&tx.ID, &tx.BookingID, &tx.Gateway, &tx.TransactionID, &tx.Amount, &tx.Currency, &tx.Status, &tx.CreatedAt, &tx.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrTransactionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &tx, nil
}

var _ TransactionRepository = (*PGTransactionRepository)(nil)
