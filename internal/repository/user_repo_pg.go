package repository

import (
	"context"
	"errors"

	"github.com/Domenick1991/flightbot/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UserRepository interface {
	Upsert(ctx context.Context, user *domain.User) error
	Get(ctx context.Context, userID string) (*domain.User, error)
	SetLanguage(ctx context.Context, userID, language string) error
}

type PGUserRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) UserRepository {
	return &PGUserRepository{db: db}
}

// Upsert creates the user or fills in the non-empty fields of an existing one.
func (r *PGUserRepository) Upsert(ctx context.Context, user *domain.User) error {
	return r.db.QueryRow(ctx, `INSERT INTO users (user_id, name, email, phone, preferred_language)
		VALUES ($1, $2, $3, $4, COALESCE(NULLIF($5, ''), 'en'))
		ON CONFLICT (user_id) DO UPDATE SET
			name = COALESCE(NULLIF(EXCLUDED.name, ''), users.name),
			email = COALESCE(NULLIF(EXCLUDED.email, ''), users.email),
			phone = COALESCE(NULLIF(EXCLUDED.phone, ''), users.phone),
			preferred_language = COALESCE(NULLIF($5, ''), users.preferred_language),
			updated_at = now()
		RETURNING name, email, phone, preferred_language, created_at, updated_at`,
		user.UserID, user.Name, user.Email, user.Phone, user.PreferredLanguage).
		Scan(&user.Name, &user.Email, &user.Phone, &user.PreferredLanguage, &user.CreatedAt, &user.UpdatedAt)
}

func (r *PGUserRepository) Get(ctx context.Context, userID string) (*domain.User, error) {
	var u domain.User
	err := r.db.QueryRow(ctx, `SELECT user_id, name, email, phone, preferred_language, created_at, updated_at FROM users WHERE user_id=$1`, userID).
		Scan(&u.UserID, &u.Name, &u.Email, &u.Phone, &u.PreferredLanguage, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// SetLanguage stores the preference, creating a bare user record if needed.
func (r *PGUserRepository) SetLanguage(ctx context.Context, userID, language string) error {
	_, err := r.db.Exec(ctx, `INSERT INTO users (user_id, preferred_language) VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET preferred_language = EXCLUDED.preferred_language, updated_at = now()`,
		userID, language)
	return err
}

var _ UserRepository = (*PGUserRepository)(nil)
