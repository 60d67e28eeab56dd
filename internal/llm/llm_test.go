package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unibrain/backend/internal/config"
	"github.com/unibrain/backend/internal/testutil"
)

func TestComplete(t *testing.T) {
	ctx := context.Background()

	m := &testutil.FakeModel{Answer: "  a short answer \n"}
	out, err := Complete(ctx, m, "question", 64, 0.3)
	require.NoError(t, err)
	assert.Equal(t, "a short answer", out)
	assert.Equal(t, []string{"question"}, m.Prompts)
	assert.Equal(t, 64, m.Options.MaxTokens)
	assert.InDelta(t, 0.3, m.Options.Temperature, 1e-9)

	_, err = Complete(ctx, &testutil.FakeModel{Answer: "   "}, "q", 0, 0)
	assert.ErrorIs(t, err, ErrEmptyCompletion)

	boom := errors.New("connection refused")
	_, err = Complete(ctx, &testutil.FakeModel{Err: boom}, "q", 0, 0)
	assert.ErrorIs(t, err, boom)
}

func TestNew(t *testing.T) {
	m, err := New(config.LLMConfig{Provider: "ollama", Model: "llama3.1", ServerURL: "http://localhost:11434"})
	require.NoError(t, err)
	assert.NotNil(t, m)

	m, err = New(config.LLMConfig{Provider: "openai", Model: "gpt-4o-mini", Token: "test-token", ServerURL: "http://localhost:8080/v1"})
	require.NoError(t, err)
	assert.NotNil(t, m)

	_, err = New(config.LLMConfig{Provider: "bard"})
	assert.Error(t, err)
}
