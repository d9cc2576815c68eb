package translation

import (
	"context"
	"strings"

	"github.com/Domenick1991/flightbot/internal/domain"
	"go.uber.org/zap"
)

// Backend is the remote translation API.
type Backend interface {
	Translate(ctx context.Context, text, from, to string) (string, error)
	Detect(ctx context.Context, text string) (string, error)
}

type TranslationUseCase interface {
	Translate(ctx context.Context, text, from, to string) string
	Detect(ctx context.Context, text string) string
}

// TranslationService never fails: on any backend error the caller gets the
// input text back, or English for detection.
type TranslationService struct {
	backend Backend
	logger  *zap.Logger
}

func NewTranslationService(backend Backend, logger *zap.Logger) *TranslationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TranslationService{backend: backend, logger: logger}
}

func (s *TranslationService) Translate(ctx context.Context, text, from, to string) string {
	if s.backend == nil || strings.TrimSpace(text) == "" || to == "" || strings.EqualFold(from, to) {
		return text
	}
	out, err := s.backend.Translate(ctx, text, from, to)
	if err != nil {
		s.logger.Warn("translate", zap.String("from", from), zap.String("to", to), zap.Error(err))
		return text
	}
	return out
}

func (s *TranslationService) Detect(ctx context.Context, text string) string {
	if s.backend == nil || strings.TrimSpace(text) == "" {
		return domain.DefaultLanguage
	}
	lang, err := s.backend.Detect(ctx, text)
	if err != nil || lang == "" || lang == "und" {
		if err != nil {
			s.logger.Warn("detect language", zap.Error(err))
		}
		return domain.DefaultLanguage
	}
	return lang
}

var _ TranslationUseCase = (*TranslationService)(nil)
