package translate

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
)

func newTestGoogle(t *testing.T, handler http.HandlerFunc) *Google {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	g, err := NewGoogle(context.Background(), "test-key",
		option.WithEndpoint(srv.URL+"/"),
		option.WithHTTPClient(srv.Client()),
	)
	require.NoError(t, err)
	return g
}

func TestGoogle_Translate(t *testing.T) {
	g := newTestGoogle(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "es", r.Form.Get("target"))
		assert.Equal(t, "en", r.Form.Get("source"))
		assert.Equal(t, "Where to?", r.Form.Get("q"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"translations":[{"translatedText":"&iquest;A d&oacute;nde?"}]}}`))
	})

	out, err := g.Translate(context.Background(), "Where to?", "en", "es")

	require.NoError(t, err)
	assert.Equal(t, "¿A dónde?", out)
}

func TestGoogle_TranslateError(t *testing.T) {
	g := newTestGoogle(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})

	_, err := g.Translate(context.Background(), "hello", "en", "fr")

	assert.Error(t, err)
}

func TestGoogle_Detect(t *testing.T) {
	g := newTestGoogle(t, func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/detect"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"detections":[[{"language":"fr","confidence":0.98}]]}}`))
	})

	lang, err := g.Detect(context.Background(), "bonjour")

	require.NoError(t, err)
	assert.Equal(t, "fr", lang)
}

func TestSupportedLanguages(t *testing.T) {
	assert.Len(t, SupportedLanguages, 10)
	assert.Equal(t, "German", SupportedLanguages["de"])
}
