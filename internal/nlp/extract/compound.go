package extract

import (
	"strings"

	"github.com/procon-engine/backend/internal/nlp/parse"
)

// CompoundPairs recovers (compound-noun, modifier) pairs the rule set
// misses: multi-token nouns joined by "compound" edges ("battery life"),
// paired with the first right-sibling adjective of the governing verb
// when the noun is a subject, or with the nearest verb ancestor when it
// is a direct object. Pairs carry rule id 1, matching the adjectival
// modifier family they stand in for.
func CompoundPairs(sentences []parse.Sentence) []Pair {
	var pairs []Pair
	for _, s := range sentences {
		pairs = append(pairs, compoundPairsInSentence(s)...)
	}
	return pairs
}

func compoundPairsInSentence(s parse.Sentence) []Pair {
	var pairs []Pair
	for i, tok := range s.Tokens {
		if tok.Dep != parse.DepCompound {
			continue
		}
		// Only the first link of a compound chain starts a span.
		if i > 0 && s.Tokens[i-1].Dep == parse.DepCompound {
			continue
		}

		root := tok.Head
		if root < i {
			continue
		}
		noun := spanText(s, i, root)

		var opinion string
		switch s.Tokens[root].Dep {
		case parse.DepNsubj:
			governor := s.Tokens[root].Head
			for _, r := range s.Rights(governor) {
				if s.Tokens[r].POS == parse.POSAdj {
					opinion = s.Tokens[r].Text
					break
				}
			}
		case parse.DepDobj:
			for _, a := range s.Ancestors(root) {
				if s.Tokens[a].POS == parse.POSVerb {
					opinion = s.Tokens[a].Text
					break
				}
			}
		}

		if noun != "" && opinion != "" {
			pairs = append(pairs, Pair{Aspect: noun, Opinion: opinion, Rule: 1})
		}
	}
	return pairs
}

func spanText(s parse.Sentence, from, to int) string {
	parts := make([]string, 0, to-from+1)
	for i := from; i <= to; i++ {
		parts = append(parts, s.Tokens[i].Text)
	}
	return strings.Join(parts, " ")
}
