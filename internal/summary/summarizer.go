// Package summary condenses merged review text. Abstractive
// summarization runs on hosted models; an extractive pre-pass keeps
// long inputs under the model token limit and doubles as the fallback
// when the remote service degrades to empty output.
package summary

import (
	"context"
	"strings"
)

// Abstractive is the remote summarization capability. Empty return
// values mean "service unavailable".
type Abstractive interface {
	Summarize(ctx context.Context, text string) string
	ExtremeSummarize(ctx context.Context, text string) string
}

type Summarizer struct {
	remote     Abstractive
	tokenLimit int
}

func New(remote Abstractive, tokenLimit int) *Summarizer {
	if tokenLimit == 0 {
		tokenLimit = 800
	}
	return &Summarizer{remote: remote, tokenLimit: tokenLimit}
}

// Summarize produces an abstractive summary of text. Inputs over the
// token limit are extractively reduced first; an empty abstractive
// result triggers the same reduction chain once more.
func (s *Summarizer) Summarize(ctx context.Context, text string, numSentences int) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}

	if wordCount(text) > s.tokenLimit {
		return s.extractiveThenAbstractive(ctx, text, numSentences)
	}

	out := cleanSummary(s.remote.Summarize(ctx, text))
	if out == "" {
		return s.extractiveThenAbstractive(ctx, text, numSentences)
	}
	return out
}

// ExtremeSummarize produces a one-line digest (used for record titles).
func (s *Summarizer) ExtremeSummarize(ctx context.Context, text string, numSentences int) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}

	if wordCount(text) > s.tokenLimit {
		text = extractiveSummary(text, numSentences)
	}
	return cleanSummary(s.remote.ExtremeSummarize(ctx, text))
}

func (s *Summarizer) extractiveThenAbstractive(ctx context.Context, text string, numSentences int) string {
	reduced := extractiveSummary(text, numSentences)
	out := cleanSummary(s.remote.Summarize(ctx, reduced))
	if out == "" {
		// Remote summarizer is down; the extractive reduction is the
		// best available answer.
		return reduced
	}
	return out
}

func cleanSummary(text string) string {
	text = strings.ReplaceAll(text, " . ", ". ")
	return strings.TrimSpace(text)
}

func wordCount(text string) int {
	return len(strings.Fields(text))
}
