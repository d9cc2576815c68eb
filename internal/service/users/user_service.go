package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Domenick1991/flightbot/internal/domain"
	"github.com/Domenick1991/flightbot/internal/repository"
	"go.uber.org/zap"
)

var ErrInvalidUser = errors.New("invalid user")

type UserUseCase interface {
	Upsert(ctx context.Context, user domain.User) (*domain.User, error)
	Get(ctx context.Context, userID string) (*domain.User, error)
	SetLanguage(ctx context.Context, userID, language string) error
	Language(ctx context.Context, userID string) string
}

type UserService struct {
	users  repository.UserRepository
	logger *zap.Logger
}

func NewUserService(users repository.UserRepository, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{users: users, logger: logger}
}

func (s *UserService) Upsert(ctx context.Context, user domain.User) (*domain.User, error) {
	if strings.TrimSpace(user.UserID) == "" {
		return nil, fmt.Errorf("%w: userId is required", ErrInvalidUser)
	}
	if user.Email != "" && !domain.ValidEmail(user.Email) {
		return nil, fmt.Errorf("%w: invalid email %q", ErrInvalidUser, user.Email)
	}
	user.PreferredLanguage = strings.ToLower(user.PreferredLanguage)
	if err := s.users.Upsert(ctx, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *UserService) Get(ctx context.Context, userID string) (*domain.User, error) {
	return s.users.Get(ctx, userID)
}

func (s *UserService) SetLanguage(ctx context.Context, userID, language string) error {
	language = strings.ToLower(strings.TrimSpace(language))
	if userID == "" || language == "" {
		return fmt.Errorf("%w: userId and language are required", ErrInvalidUser)
	}
	return s.users.SetLanguage(ctx, userID, language)
}

// Language returns the user's preferred language, falling back to English
// for unknown users or lookup failures.
func (s *UserService) Language(ctx context.Context, userID string) string {
	user, err := s.users.Get(ctx, userID)
	if err != nil {
		if !errors.Is(err, domain.ErrUserNotFound) {
			s.logger.Warn("load user language", zap.String("user", userID), zap.Error(err))
		}
		return domain.DefaultLanguage
	}
	if user.PreferredLanguage == "" {
		return domain.DefaultLanguage
	}
	return user.PreferredLanguage
}

var _ UserUseCase = (*UserService)(nil)
