package summarize

import (
	"context"
	"strings"
	"unicode/utf8"
)

const (
	heuristicMinFragment  = 5
	heuristicMaxSentences = 5
)

// HeuristicSummarizer keeps the first few sentences of the text. It needs no
// model and ignores the bounds.
type HeuristicSummarizer struct{}

// NewHeuristicSummarizer creates the sentence-picking fallback.
func NewHeuristicSummarizer() *HeuristicSummarizer {
	return &HeuristicSummarizer{}
}

// Summarize splits on periods, drops fragments shorter than five characters
// and joins at most five of the rest.
func (h *HeuristicSummarizer) Summarize(ctx context.Context, text string, _ Bounds) (string, error) {
	var sentences []string
	for _, frag := range strings.Split(text, ".") {
		frag = strings.Join(strings.Fields(frag), " ")
		if utf8.RuneCountInString(frag) < heuristicMinFragment {
			continue
		}
		sentences = append(sentences, frag)
		if len(sentences) == heuristicMaxSentences {
			break
		}
	}
	if len(sentences) == 0 {
		return "", nil
	}
	return strings.Join(sentences, ". ") + ".", nil
}
