package summary

import (
	"sort"
	"strings"

	"github.com/jdkato/prose/v2"
)

var stopWords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {}, "be": {},
	"but": {}, "by": {}, "for": {}, "from": {}, "had": {}, "has": {},
	"have": {}, "he": {}, "her": {}, "his": {}, "i": {}, "if": {}, "in": {},
	"is": {}, "it": {}, "its": {}, "my": {}, "not": {}, "of": {}, "on": {},
	"or": {}, "our": {}, "she": {}, "so": {}, "that": {}, "the": {},
	"their": {}, "them": {}, "there": {}, "they": {}, "this": {}, "to": {},
	"was": {}, "we": {}, "were": {}, "will": {}, "with": {}, "you": {},
	"your": {},
}

// extractiveSummary picks the numSentences highest-scoring sentences by
// content-word frequency, preserving document order. It is the local
// pre-pass that squeezes long review blobs under the abstractive
// model's token limit.
func extractiveSummary(text string, numSentences int) string {
	doc, err := prose.NewDocument(text, prose.WithExtraction(false))
	if err != nil {
		return text
	}

	sentences := doc.Sentences()
	if len(sentences) <= numSentences {
		return strings.TrimSpace(text)
	}

	freq := make(map[string]int)
	for _, tok := range doc.Tokens() {
		word := strings.ToLower(tok.Text)
		if len(word) < 3 {
			continue
		}
		if _, stop := stopWords[word]; stop {
			continue
		}
		freq[word]++
	}

	type scored struct {
		index int
		score float64
	}

	ranked := make([]scored, 0, len(sentences))
	for i, sent := range sentences {
		words := strings.Fields(strings.ToLower(sent.Text))
		if len(words) == 0 {
			continue
		}
		total := 0
		for _, w := range words {
			total += freq[strings.Trim(w, ".,!?;:'\"")]
		}
		ranked = append(ranked, scored{index: i, score: float64(total) / float64(len(words))})
	}

	sort.Slice(ranked, func(a, b int) bool { return ranked[a].score > ranked[b].score })

	keep := make(map[int]struct{}, numSentences)
	for i := 0; i < numSentences && i < len(ranked); i++ {
		keep[ranked[i].index] = struct{}{}
	}

	var out []string
	for i, sent := range sentences {
		if _, ok := keep[i]; ok {
			out = append(out, strings.TrimSpace(sent.Text))
		}
	}
	return strings.Join(out, " ")
}
