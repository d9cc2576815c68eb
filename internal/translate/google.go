package translate

import (
	"context"
	"errors"
	"fmt"
	"html"

	"google.golang.org/api/option"
	gtranslate "google.golang.org/api/translate/v2"
)

// SupportedLanguages maps the codes the bot accepts to display names.
var SupportedLanguages = map[string]string{
	"en": "English",
	"es": "Spanish",
	"fr": "French",
	"de": "German",
	"it": "Italian",
	"pt": "Portuguese",
	"ru": "Russian",
	"ja": "Japanese",
	"ko": "Korean",
	"zh": "Chinese",
}

var errEmptyResponse = errors.New("translate: empty response")

type Google struct {
	svc *gtranslate.Service
}

func NewGoogle(ctx context.Context, apiKey string, opts ...option.ClientOption) (*Google, error) {
	opts = append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	svc, err := gtranslate.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create translate service: %w", err)
	}
	return &Google{svc: svc}, nil
}

func (g *Google) Translate(ctx context.Context, text, from, to string) (string, error) {
	call := g.svc.Translations.List([]string{text}, to).Format("text").Context(ctx)
	if from != "" {
		call = call.Source(from)
	}
	resp, err := call.Do()
	if err != nil {
		return "", fmt.Errorf("translate text: %w", err)
	}
	if len(resp.Translations) == 0 {
		return "", errEmptyResponse
	}
	return html.UnescapeString(resp.Translations[0].TranslatedText), nil
}

func (g *Google) Detect(ctx context.Context, text string) (string, error) {
	resp, err := g.svc.Detections.List([]string{text}).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("detect language: %w", err)
	}
	if len(resp.Detections) == 0 || len(resp.Detections[0]) == 0 {
		return "", errEmptyResponse
	}
	return resp.Detections[0][0].Language, nil
}
