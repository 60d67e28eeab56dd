package testutil

import (
	"context"
	"sync"

	"github.com/tmc/langchaingo/llms"
)

// FakeModel is an llms.Model that returns a canned answer and records the
// prompts it receives.
type FakeModel struct {
	mu      sync.Mutex
	Answer  string
	Err     error
	Prompts []string
	Options llms.CallOptions
}

func (m *FakeModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, msg := range messages {
		for _, part := range msg.Parts {
			if tc, ok := part.(llms.TextContent); ok {
				m.Prompts = append(m.Prompts, tc.Text)
			}
		}
	}
	for _, o := range options {
		o(&m.Options)
	}
	if m.Err != nil {
		return nil, m.Err
	}
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: m.Answer}}}, nil
}

func (m *FakeModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, m, prompt, options...)
}

// Calls returns the number of prompts received.
func (m *FakeModel) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Prompts)
}

var _ llms.Model = (*FakeModel)(nil)
