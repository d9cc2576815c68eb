package translation

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockBackend struct {
	mock.Mock
}

func (m *MockBackend) Translate(ctx context.Context, text, from, to string) (string, error) {
	args := m.Called(ctx, text, from, to)
	return args.String(0), args.Error(1)
}

func (m *MockBackend) Detect(ctx context.Context, text string) (string, error) {
	args := m.Called(ctx, text)
	return args.String(0), args.Error(1)
}

func TestTranslationService_Translate(t *testing.T) {
	backend := &MockBackend{}
	service := NewTranslationService(backend, nil)
	ctx := context.Background()

	backend.On("Translate", ctx, "hola", "es", "en").Return("hello", nil).Once()
	backend.On("Translate", ctx, "adios", "es", "en").Return("", errors.New("quota exceeded")).Once()

	assert.Equal(t, "hello", service.Translate(ctx, "hola", "es", "en"))
	assert.Equal(t, "adios", service.Translate(ctx, "adios", "es", "en"))
	assert.Equal(t, "hello", service.Translate(ctx, "hello", "en", "EN"))
	assert.Equal(t, " ", service.Translate(ctx, " ", "es", "en"))
	backend.AssertExpectations(t)
}

func TestTranslationService_Detect(t *testing.T) {
	backend := &MockBackend{}
	service := NewTranslationService(backend, nil)
	ctx := context.Background()

	backend.On("Detect", ctx, "bonjour").Return("fr", nil).Once()
	backend.On("Detect", ctx, "???").Return("und", nil).Once()
	backend.On("Detect", ctx, "boom").Return("", errors.New("network")).Once()

	assert.Equal(t, "fr", service.Detect(ctx, "bonjour"))
	assert.Equal(t, "en", service.Detect(ctx, "???"))
	assert.Equal(t, "en", service.Detect(ctx, "boom"))
}

func TestTranslationService_NoBackend(t *testing.T) {
	service := NewTranslationService(nil, nil)

	assert.Equal(t, "hola", service.Translate(context.Background(), "hola", "es", "en"))
	assert.Equal(t, "en", service.Detect(context.Background(), "hola"))
}
