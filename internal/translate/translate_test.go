package translate

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unibrain/backend/internal/models"
	"github.com/unibrain/backend/internal/testutil"
)

type recordingTranslator struct {
	calls  int
	input  string
	target models.Language
	err    error
}

func (r *recordingTranslator) Translate(ctx context.Context, text string, target models.Language) (string, error) {
	r.calls++
	r.input = text
	r.target = target
	if r.err != nil {
		return "", r.err
	}
	return "translated:" + text, nil
}

func TestService_TruncatesInput(t *testing.T) {
	backend := &recordingTranslator{}
	svc := NewService(backend, 2000, nil)

	long := strings.Repeat("a", 2500)
	out, lang, err := svc.Translate(context.Background(), long, "ar")
	require.NoError(t, err)

	assert.Equal(t, models.LanguageArabic, lang)
	assert.Len(t, backend.input, 2000)
	assert.Equal(t, "translated:"+long[:2000], out)
}

func TestService_ShortInputUntouched(t *testing.T) {
	backend := &recordingTranslator{}
	svc := NewService(backend, 2000, nil)

	_, _, err := svc.Translate(context.Background(), "مرحبا بالعالم", " EN ")
	require.NoError(t, err)
	assert.Equal(t, "مرحبا بالعالم", backend.input)
	assert.Equal(t, models.LanguageEnglish, backend.target)
}

func TestService_UnsupportedLanguage(t *testing.T) {
	backend := &recordingTranslator{}
	svc := NewService(backend, 2000, nil)

	for _, target := range []string{"fr", "", "arabic"} {
		_, _, err := svc.Translate(context.Background(), "text", target)
		assert.ErrorIs(t, err, ErrUnsupportedLanguage, target)
	}
	assert.Zero(t, backend.calls)
}

func TestService_BlankInput(t *testing.T) {
	backend := &recordingTranslator{}
	out, _, err := NewService(backend, 2000, nil).Translate(context.Background(), "  \n ", "en")
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Zero(t, backend.calls)
}

func TestService_BackendFailure(t *testing.T) {
	cause := NewRateLimitError("libretranslate", errors.New("slow down"), 30)
	svc := NewService(&recordingTranslator{err: cause}, 2000, nil)

	_, _, err := svc.Translate(context.Background(), "text", "ar")
	require.ErrorIs(t, err, ErrUnavailable)

	var rl *RateLimitError
	require.ErrorAs(t, err, &rl)
	assert.Equal(t, 30*time.Second, rl.RetryAfter)
	assert.Contains(t, TransientMessage(err), "30 seconds")
}

func TestTransientMessage(t *testing.T) {
	assert.Contains(t, TransientMessage(context.DeadlineExceeded), "too long")
	assert.Contains(t, TransientMessage(errors.New("dial tcp: refused")), "unavailable")
}

func TestParseRetryAfterHeader(t *testing.T) {
	assert.Equal(t, 0, ParseRetryAfterHeader(""))
	assert.Equal(t, 0, ParseRetryAfterHeader("soon"))
	assert.Equal(t, 12, ParseRetryAfterHeader("12"))
	assert.Equal(t, 60*time.Second, NewRateLimitError("x", nil, 0).RetryAfter)
}

func TestLibreTranslator(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		var got libreRequest
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/translate", r.URL.Path)
			assert.Equal(t, http.MethodPost, r.Method)
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"translatedText":"مرحبا"}`))
		}))
		defer srv.Close()

		l := NewLibreTranslator(srv.URL+"/", "key-123", time.Second)
		out, err := l.Translate(context.Background(), "hello", models.LanguageArabic)
		require.NoError(t, err)
		assert.Equal(t, "مرحبا", out)
		assert.Equal(t, "hello", got.Q)
		assert.Equal(t, "ar", got.Target)
		assert.Equal(t, "auto", got.Source)
		assert.Equal(t, "key-123", got.APIKey)
	})

	t.Run("rate limited", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Retry-After", "7")
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":"Slowdown"}`))
		}))
		defer srv.Close()

		_, err := NewLibreTranslator(srv.URL, "", time.Second).Translate(context.Background(), "hello", models.LanguageArabic)
		var rl *RateLimitError
		require.ErrorAs(t, err, &rl)
		assert.Equal(t, 7*time.Second, rl.RetryAfter)
	})

	t.Run("server error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"ar is not supported"}`))
		}))
		defer srv.Close()

		_, err := NewLibreTranslator(srv.URL, "", time.Second).Translate(context.Background(), "hello", models.LanguageArabic)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "ar is not supported")
	})

	t.Run("timeout", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(200 * time.Millisecond)
		}))
		defer srv.Close()

		_, err := NewLibreTranslator(srv.URL, "", 20*time.Millisecond).Translate(context.Background(), "hello", models.LanguageEnglish)
		assert.Error(t, err)
	})
}

func TestLLMTranslator(t *testing.T) {
	model := &testutil.FakeModel{Answer: "Hello world"}
	tr := NewLLMTranslator(model, 0)

	out, err := tr.Translate(context.Background(), "مرحبا بالعالم", models.LanguageEnglish)
	require.NoError(t, err)
	assert.Equal(t, "Hello world", out)
	require.Len(t, model.Prompts, 1)
	assert.Contains(t, model.Prompts[0], "into English")
	assert.Contains(t, model.Prompts[0], "مرحبا بالعالم")

	_, err = tr.Translate(context.Background(), "x", models.Language("fr"))
	assert.ErrorIs(t, err, ErrUnsupportedLanguage)
}
