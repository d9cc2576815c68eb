package chat

import (
	"context"
	"errors"
	"testing"

	"github.com/Domenick1991/flightbot/internal/cache"
	"github.com/Domenick1991/flightbot/internal/dialog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockDialog struct {
	mock.Mock
}

func (m *MockDialog) Handle(ctx context.Context, s dialog.Session, reply string) (dialog.Session, dialog.Turn) {
	args := m.Called(ctx, s, reply)
	return args.Get(0).(dialog.Session), args.Get(1).(dialog.Turn)
}

type MockSessionStore struct {
	mock.Mock
	unlocked int
}

func (m *MockSessionStore) Load(ctx context.Context, conversationID string) (dialog.Session, bool, error) {
	args := m.Called(ctx, conversationID)
	return args.Get(0).(dialog.Session), args.Bool(1), args.Error(2)
}

func (m *MockSessionStore) Save(ctx context.Context, session dialog.Session) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockSessionStore) Lock(ctx context.Context, conversationID string) (func(context.Context) error, error) {
	args := m.Called(ctx, conversationID)
	if err := args.Error(0); err != nil {
		return nil, err
	}
	return func(context.Context) error {
		m.unlocked++
		return nil
	}, nil
}

type MockTranslator struct {
	mock.Mock
}

func (m *MockTranslator) Translate(ctx context.Context, text, from, to string) string {
	args := m.Called(ctx, text, from, to)
	return args.String(0)
}

type MockLanguages struct {
	mock.Mock
}

func (m *MockLanguages) Language(ctx context.Context, userID string) string {
	args := m.Called(ctx, userID)
	return args.String(0)
}

func TestService_Send_NewConversation(t *testing.T) {
	d := &MockDialog{}
	store := &MockSessionStore{}
	languages := &MockLanguages{}
	svc := NewService(d, store, &MockTranslator{}, languages, nil)
	ctx := context.Background()

	fresh := dialog.NewSession("c1", "u1", "en")
	started := fresh
	started.Step = dialog.StepMenu
	turn := dialog.Turn{Kind: dialog.TurnPrompt, Messages: []dialog.Message{{Text: "Welcome"}}}

	store.On("Lock", ctx, "c1").Return(nil).Once()
	store.On("Load", ctx, "c1").Return(dialog.Session{}, false, nil).Once()
	languages.On("Language", ctx, "u1").Return("en").Once()
	d.On("Handle", ctx, fresh, "hi").Return(started, turn).Once()
	store.On("Save", ctx, started).Return(nil).Once()

	got, err := svc.Send(ctx, Message{ConversationID: "c1", UserID: "u1", Text: "hi"})

	require.NoError(t, err)
	assert.Equal(t, turn, got)
	assert.Equal(t, 1, store.unlocked)
	d.AssertExpectations(t)
	store.AssertExpectations(t)
}

func TestService_Send_TranslatesBothWays(t *testing.T) {
	d := &MockDialog{}
	store := &MockSessionStore{}
	translator := &MockTranslator{}
	svc := NewService(d, store, translator, nil, nil)
	ctx := context.Background()

	session := dialog.NewSession("c1", "u1", "es")
	session.Step = dialog.StepOrigin
	label := "Where are you departing from?"
	turn := dialog.Turn{
		Kind:     dialog.TurnPrompt,
		Messages: []dialog.Message{{Text: "Got it."}},
		Prompt:   &dialog.Prompt{Kind: dialog.PromptText, Label: label, RetryLabel: "Please enter a response."},
	}

	store.On("Lock", ctx, "c1").Return(nil).Once()
	store.On("Load", ctx, "c1").Return(session, true, nil).Once()
	translator.On("Translate", ctx, "buscar vuelos", "es", "en").Return("search flights").Once()
	d.On("Handle", ctx, session, "search flights").Return(session, turn).Once()
	store.On("Save", ctx, session).Return(nil).Once()
	translator.On("Translate", ctx, "Got it.", "en", "es").Return("Entendido.").Once()
	translator.On("Translate", ctx, label, "en", "es").Return("¿Desde dónde sale?").Once()
	translator.On("Translate", ctx, "Please enter a response.", "en", "es").Return("Por favor responda.").Once()

	got, err := svc.Send(ctx, Message{ConversationID: "c1", UserID: "u1", Text: "buscar vuelos"})

	require.NoError(t, err)
	assert.Equal(t, "Entendido.", got.Messages[0].Text)
	assert.Equal(t, "¿Desde dónde sale?", got.Prompt.Label)
	assert.Equal(t, label, turn.Prompt.Label)
	translator.AssertExpectations(t)
}

func TestService_Send_Busy(t *testing.T) {
	d := &MockDialog{}
	store := &MockSessionStore{}
	svc := NewService(d, store, nil, nil, nil)
	ctx := context.Background()

	store.On("Lock", ctx, "c1").Return(cache.ErrConversationBusy).Once()

	_, err := svc.Send(ctx, Message{ConversationID: "c1", UserID: "u1", Text: "hi"})

	assert.ErrorIs(t, err, cache.ErrConversationBusy)
	d.AssertNotCalled(t, "Handle", mock.Anything, mock.Anything, mock.Anything)
}

func TestService_Send_Invalid(t *testing.T) {
	svc := NewService(&MockDialog{}, &MockSessionStore{}, nil, nil, nil)

	_, err := svc.Send(context.Background(), Message{UserID: "u1", Text: "hi"})

	assert.ErrorIs(t, err, ErrInvalidMessage)
}

func TestService_Send_LoadError(t *testing.T) {
	store := &MockSessionStore{}
	svc := NewService(&MockDialog{}, store, nil, nil, nil)
	ctx := context.Background()

	store.On("Lock", ctx, "c1").Return(nil).Once()
	store.On("Load", ctx, "c1").Return(dialog.Session{}, false, errors.New("redis down")).Once()

	_, err := svc.Send(ctx, Message{ConversationID: "c1", UserID: "u1", Text: "hi"})

	assert.ErrorContains(t, err, "load session")
	assert.Equal(t, 1, store.unlocked)
}
