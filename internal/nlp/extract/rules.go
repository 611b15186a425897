// Package extract pulls (aspect, opinion) pairs out of dependency-parsed
// review sentences. Seven ordered rules run independently over every
// token; their outputs are concatenated and deduplicated downstream.
package extract

import (
	"strings"

	"github.com/procon-engine/backend/internal/nlp/parse"
)

// Pair is one extracted aspect/opinion candidate. Aspect and Opinion
// hold raw token text; lemmatization happens in the normalizer.
type Pair struct {
	Aspect  string
	Opinion string
	Rule    int
}

// Aspects that are generic pronouns get rewritten to "product" so that
// "it is great" and "this is great" vote for the same thing.
var productPronouns = map[string]struct{}{
	"it":    {},
	"this":  {},
	"they":  {},
	"these": {},
}

type rule func(s parse.Sentence, i int) (Pair, bool)

var rules = []rule{
	ruleAdjectivalModifier,
	ruleDirectObjectAdjective,
	ruleAdjectivalComplement,
	ruleAdverbialModifier,
	ruleCopularComplement,
	ruleInterjection,
	ruleAttributeComplement,
}

// Apply runs all extraction rules over every sentence, in rule order.
// A token may fire more than one rule; duplicates are expected.
func Apply(sentences []parse.Sentence) []Pair {
	var pairs []Pair
	for ruleIdx, r := range rules {
		for _, s := range sentences {
			for i := range s.Tokens {
				pair, ok := r(s, i)
				if !ok {
					continue
				}
				pair.Rule = ruleIdx + 1
				pairs = append(pairs, pair)
			}
		}
	}

	for i, pair := range pairs {
		if _, ok := productPronouns[strings.ToLower(pair.Aspect)]; ok {
			pairs[i].Aspect = "product"
		}
	}

	return pairs
}

// Rule 1: adjectival modifier. The amod token is the opinion, its head
// the aspect ("comfortable shoes" -> (shoes, comfortable)). An advmod
// child of the adjective is prepended ("most comfortable"), and a "no"
// determiner on the head negates ("no interesting characters").
func ruleAdjectivalModifier(s parse.Sentence, i int) (Pair, bool) {
	tok := s.Tokens[i]
	if tok.Dep != parse.DepAmod || tok.IsStop {
		return Pair{}, false
	}

	opinion := tok.Text
	aspect := s.Tokens[tok.Head].Text

	for _, c := range s.Children(i) {
		if s.Tokens[c].Dep == parse.DepAdvmod {
			opinion = s.Tokens[c].Text + " " + opinion
			break
		}
	}

	for _, c := range s.Children(tok.Head) {
		if s.Tokens[c].Dep == parse.DepDet && s.Tokens[c].Text == "no" {
			opinion = "not " + opinion
			break
		}
	}

	return Pair{Aspect: aspect, Opinion: opinion}, true
}

// Rule 2: direct object adjective. The token's nsubj child is the
// aspect, a dobj child tagged adjective is the opinion.
func ruleDirectObjectAdjective(s parse.Sentence, i int) (Pair, bool) {
	var aspect, opinion, negPrefix string
	for _, c := range s.Children(i) {
		child := s.Tokens[c]
		switch {
		case child.Dep == parse.DepNsubj && !child.IsStop:
			aspect = child.Text
		case child.Dep == parse.DepDobj && child.POS == parse.POSAdj && !child.IsStop:
			opinion = child.Text
		case child.Dep == parse.DepNeg:
			negPrefix = child.Text
		}
	}

	if aspect == "" || opinion == "" {
		return Pair{}, false
	}
	if negPrefix != "" {
		opinion = negPrefix + " " + opinion
	}
	return Pair{Aspect: aspect, Opinion: opinion}, true
}

// Rule 3: adjectival complement. nsubj child is the aspect, acomp child
// the opinion. A modal auxiliary hedges the praise and forces negation:
// "the sound could be better" -> (sound, not better).
func ruleAdjectivalComplement(s parse.Sentence, i int) (Pair, bool) {
	var aspect, opinion, negPrefix string
	for _, c := range s.Children(i) {
		child := s.Tokens[c]
		switch {
		case child.Dep == parse.DepNsubj && !child.IsStop:
			aspect = child.Text
		case child.Dep == parse.DepAcomp && !child.IsStop:
			opinion = child.Text
		case child.Dep == parse.DepAux && child.Tag == parse.TagModal:
			negPrefix = "not"
		case child.Dep == parse.DepNeg:
			negPrefix = child.Text
		}
	}

	if aspect == "" || opinion == "" {
		return Pair{}, false
	}
	if negPrefix != "" {
		opinion = negPrefix + " " + opinion
	}
	return Pair{Aspect: aspect, Opinion: opinion}, true
}

// Rule 4: adverbial modifier on a (possibly passive) verb. nsubjpass or
// nsubj child is the aspect, advmod child the opinion, itself augmented
// by its own advmod child ("works really well").
func ruleAdverbialModifier(s parse.Sentence, i int) (Pair, bool) {
	var aspect, opinion, negPrefix string
	for _, c := range s.Children(i) {
		child := s.Tokens[c]
		switch {
		case (child.Dep == parse.DepNsubjPass || child.Dep == parse.DepNsubj) && !child.IsStop:
			aspect = child.Text
		case child.Dep == parse.DepAdvmod && !child.IsStop:
			opinion = child.Text
			for _, cc := range s.Children(c) {
				if s.Tokens[cc].Dep == parse.DepAdvmod {
					opinion = s.Tokens[cc].Text + " " + child.Text
					break
				}
			}
		case child.Dep == parse.DepNeg:
			negPrefix = child.Text
		}
	}

	if aspect == "" || opinion == "" {
		return Pair{}, false
	}
	if negPrefix != "" {
		opinion = negPrefix + " " + opinion
	}
	return Pair{Aspect: aspect, Opinion: opinion}, true
}

// Rule 5: copular complement. When a token has both an nsubj child and
// a copula child, the token itself is the opinion: "this is great" ->
// (this, great).
func ruleCopularComplement(s parse.Sentence, i int) (Pair, bool) {
	var aspect string
	hasCopula := false
	for _, c := range s.Children(i) {
		child := s.Tokens[c]
		if child.Dep == parse.DepNsubj && !child.IsStop {
			aspect = child.Text
		}
		if child.Dep == parse.DepCop && !child.IsStop {
			hasCopula = true
		}
	}

	if aspect == "" || !hasCopula {
		return Pair{}, false
	}
	return Pair{Aspect: aspect, Opinion: s.Tokens[i].Text}, true
}

// Rule 6: interjection with a subject ("it ok" where "ok" parses as
// INTJ).
func ruleInterjection(s parse.Sentence, i int) (Pair, bool) {
	tok := s.Tokens[i]
	if tok.POS != parse.POSIntj || tok.IsStop {
		return Pair{}, false
	}

	for _, c := range s.Children(i) {
		child := s.Tokens[c]
		if child.Dep == parse.DepNsubj && !child.IsStop {
			return Pair{Aspect: child.Text, Opinion: tok.Text}, true
		}
	}
	return Pair{}, false
}

// Rule 7: attribute complement of be/seem/appear: "this is garbage" ->
// (this, garbage).
func ruleAttributeComplement(s parse.Sentence, i int) (Pair, bool) {
	var aspect, opinion, negPrefix string
	for _, c := range s.Children(i) {
		child := s.Tokens[c]
		switch {
		case child.Dep == parse.DepNsubj && !child.IsStop:
			aspect = child.Text
		case child.Dep == parse.DepAttr && !child.IsStop:
			opinion = child.Text
		case child.Dep == parse.DepNeg:
			negPrefix = child.Text
		}
	}

	if aspect == "" || opinion == "" {
		return Pair{}, false
	}
	if negPrefix != "" {
		opinion = negPrefix + " " + opinion
	}
	return Pair{Aspect: aspect, Opinion: opinion}, true
}
