// Package chat adapts the dialog controller to a request/response transport:
// it serializes turns per conversation, persists sessions and translates
// between the user's language and English.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Domenick1991/flightbot/internal/dialog"
	"github.com/Domenick1991/flightbot/internal/domain"
	"go.uber.org/zap"
)

var ErrInvalidMessage = errors.New("invalid chat message")

type Dialog interface {
	Handle(ctx context.Context, s dialog.Session, reply string) (dialog.Session, dialog.Turn)
}

type SessionStore interface {
	Load(ctx context.Context, conversationID string) (dialog.Session, bool, error)
	Save(ctx context.Context, session dialog.Session) error
	Lock(ctx context.Context, conversationID string) (func(context.Context) error, error)
}

type Translator interface {
	Translate(ctx context.Context, text, from, to string) string
}

type LanguageSource interface {
	Language(ctx context.Context, userID string) string
}

type Message struct {
	ConversationID string `json:"conversationId" binding:"required"`
	UserID         string `json:"userId" binding:"required"`
	Text           string `json:"text"`
}

type Service struct {
	dialog     Dialog
	sessions   SessionStore
	translator Translator
	languages  LanguageSource
	logger     *zap.Logger
}

func NewService(d Dialog, sessions SessionStore, translator Translator, languages LanguageSource, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		dialog:     d,
		sessions:   sessions,
		translator: translator,
		languages:  languages,
		logger:     logger,
	}
}

// Send runs one turn of the conversation. A second message arriving while a
// turn is still running fails with cache.ErrConversationBusy.
func (s *Service) Send(ctx context.Context, msg Message) (dialog.Turn, error) {
	if strings.TrimSpace(msg.ConversationID) == "" || strings.TrimSpace(msg.UserID) == "" {
		return dialog.Turn{}, fmt.Errorf("%w: conversationId and userId are required", ErrInvalidMessage)
	}

	unlock, err := s.sessions.Lock(ctx, msg.ConversationID)
	if err != nil {
		return dialog.Turn{}, err
	}
	defer func() {
		if err := unlock(context.WithoutCancel(ctx)); err != nil {
			s.logger.Warn("release conversation lock", zap.String("conversation", msg.ConversationID), zap.Error(err))
		}
	}()

	session, found, err := s.sessions.Load(ctx, msg.ConversationID)
	if err != nil {
		return dialog.Turn{}, fmt.Errorf("load session: %w", err)
	}
	if !found {
		session = dialog.NewSession(msg.ConversationID, msg.UserID, s.language(ctx, msg.UserID))
	}

	lang := session.Language
	reply := msg.Text
	if lang != domain.DefaultLanguage {
		reply = s.translate(ctx, reply, lang, domain.DefaultLanguage)
	}

	session, turn := s.dialog.Handle(ctx, session, reply)

	if err := s.sessions.Save(ctx, session); err != nil {
		return dialog.Turn{}, fmt.Errorf("save session: %w", err)
	}

	// A language change applies to the confirmation already.
	if session.Language != domain.DefaultLanguage {
		turn = s.localize(ctx, turn, session.Language)
	}
	return turn, nil
}

func (s *Service) language(ctx context.Context, userID string) string {
	if s.languages == nil {
		return domain.DefaultLanguage
	}
	return s.languages.Language(ctx, userID)
}

func (s *Service) translate(ctx context.Context, text, from, to string) string {
	if s.translator == nil || text == "" {
		return text
	}
	return s.translator.Translate(ctx, text, from, to)
}

func (s *Service) localize(ctx context.Context, turn dialog.Turn, lang string) dialog.Turn {
	msgs := make([]dialog.Message, len(turn.Messages))
	for i, m := range turn.Messages {
		m.Text = s.translate(ctx, m.Text, domain.DefaultLanguage, lang)
		msgs[i] = m
	}
	turn.Messages = msgs

	if turn.Prompt != nil {
		p := *turn.Prompt
		p.Label = s.translate(ctx, p.Label, domain.DefaultLanguage, lang)
		p.RetryLabel = s.translate(ctx, p.RetryLabel, domain.DefaultLanguage, lang)
		turn.Prompt = &p
	}
	return turn
}
