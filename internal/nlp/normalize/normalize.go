// Package normalize reduces raw aspect/opinion strings to content-bearing
// lemmas, discarding everything else.
package normalize

import (
	"strings"

	"github.com/jdkato/prose/v2"
)

// Penn tag -> coarse part-of-speech buckets admissible for each side of
// a pair.
var aspectTags = map[string]string{
	"NN": "NOUN", "NNS": "NOUN",
	"NNP": "PROPN", "NNPS": "PROPN",
	"VB": "VERB", "VBD": "VERB", "VBG": "VERB", "VBN": "VERB", "VBP": "VERB", "VBZ": "VERB",
	"SYM": "SYM", "$": "SYM", "#": "SYM",
}

var opinionTags = map[string]string{
	"JJ": "ADJ", "JJR": "ADJ", "JJS": "ADJ",
	"NN": "NOUN", "NNS": "NOUN",
	"VB": "VERB", "VBD": "VERB", "VBG": "VERB", "VBN": "VERB", "VBP": "VERB", "VBZ": "VERB",
}

// Comparatives ripped out of their phrase tag as adverbs ("better"
// alone tags RBR, not JJR). Only admissible behind a negation prefix,
// where the surrounding phrase vouches for the opinion reading.
var negatedOpinionTags = map[string]string{
	"RBR": "ADV", "RBS": "ADV",
}

var negationWords = map[string]struct{}{
	"not":   {},
	"no":    {},
	"n't":   {},
	"never": {},
}

type Normalizer struct{}

func New() *Normalizer {
	return &Normalizer{}
}

// Aspect normalizes an aspect string. Currency amounts canonicalize to
// the literal "money". The second return value is false when the string
// carries no admissible content; callers drop the pair.
func (n *Normalizer) Aspect(raw string) (string, bool) {
	tok, ok := firstToken(raw)
	if !ok {
		return "", false
	}

	if isCurrency(tok) {
		return "money", true
	}

	if _, admissible := aspectTags[tok.Tag]; !admissible {
		return "", false
	}
	return lemma(tok), true
}

// Opinion normalizes an opinion string. A leading negation word is
// preserved as a "not " prefix on the normalized remainder so that
// "not better" survives as a negative opinion rather than being thrown
// away for its particle.
func (n *Normalizer) Opinion(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	prefix := ""

	fields := strings.Fields(raw)
	if len(fields) > 1 {
		if _, neg := negationWords[strings.ToLower(fields[0])]; neg {
			prefix = "not "
			raw = strings.Join(fields[1:], " ")
		}
	}

	tok, ok := firstToken(raw)
	if !ok {
		return "", false
	}

	if _, admissible := opinionTags[tok.Tag]; !admissible {
		if prefix == "" {
			return "", false
		}
		if _, negAdmissible := negatedOpinionTags[tok.Tag]; !negAdmissible {
			return "", false
		}
	}
	return prefix + lemma(tok), true
}

func firstToken(raw string) (prose.Token, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return prose.Token{}, false
	}

	doc, err := prose.NewDocument(raw,
		prose.WithExtraction(false),
		prose.WithSegmentation(false),
	)
	if err != nil {
		return prose.Token{}, false
	}

	tokens := doc.Tokens()
	if len(tokens) == 0 {
		return prose.Token{}, false
	}
	return tokens[0], true
}

func isCurrency(tok prose.Token) bool {
	if tok.Tag == "$" {
		return true
	}
	switch tok.Text {
	case "$", "€", "£", "¥":
		return true
	}
	return false
}
