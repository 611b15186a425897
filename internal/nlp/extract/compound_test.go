package extract_test

import (
	"reflect"
	"testing"

	"github.com/procon-engine/backend/internal/nlp/extract"
	"github.com/procon-engine/backend/internal/nlp/parse"
)

func TestCompoundSubjectPair(t *testing.T) {
	// "battery life is great"
	s := sentence(
		tok("battery", parse.POSNoun, "NN", parse.DepCompound, 1),
		tok("life", parse.POSNoun, "NN", parse.DepNsubj, 2),
		tok("is", "AUX", "VBZ", "ROOT", 2),
		tok("great", parse.POSAdj, "JJ", parse.DepAcomp, 2),
	)

	pairs := extract.CompoundPairs([]parse.Sentence{s})
	want := []extract.Pair{{Aspect: "battery life", Opinion: "great", Rule: 1}}
	if !reflect.DeepEqual(pairs, want) {
		t.Errorf("CompoundPairs = %+v, want %+v", pairs, want)
	}
}

func TestCompoundObjectPair(t *testing.T) {
	// "I love battery life"
	s := sentence(
		parse.Token{Text: "I", POS: "PRON", Tag: "PRP", Dep: parse.DepNsubj, Head: 1, IsStop: true},
		tok("love", parse.POSVerb, "VBP", "ROOT", 1),
		tok("battery", parse.POSNoun, "NN", parse.DepCompound, 3),
		tok("life", parse.POSNoun, "NN", parse.DepDobj, 1),
	)

	pairs := extract.CompoundPairs([]parse.Sentence{s})
	want := []extract.Pair{{Aspect: "battery life", Opinion: "love", Rule: 1}}
	if !reflect.DeepEqual(pairs, want) {
		t.Errorf("CompoundPairs = %+v, want %+v", pairs, want)
	}
}

func TestCompoundChainSpansAllLinks(t *testing.T) {
	// "lithium battery life lasts" with both compounds heading "life"
	s := sentence(
		tok("lithium", parse.POSNoun, "NN", parse.DepCompound, 2),
		tok("battery", parse.POSNoun, "NN", parse.DepCompound, 2),
		tok("life", parse.POSNoun, "NN", parse.DepNsubj, 3),
		tok("lasts", parse.POSVerb, "VBZ", "ROOT", 3),
	)

	pairs := extract.CompoundPairs([]parse.Sentence{s})
	if len(pairs) != 0 {
		// No right-sibling adjective of the governor, so nothing fires,
		// but the chain must collapse to a single candidate span.
		t.Fatalf("CompoundPairs = %+v, want none without an opinion token", pairs)
	}

	s.Tokens = append(s.Tokens, tok("forever", parse.POSAdj, "JJ", parse.DepAdvmod, 3))
	pairs = extract.CompoundPairs([]parse.Sentence{s})
	want := []extract.Pair{{Aspect: "lithium battery life", Opinion: "forever", Rule: 1}}
	if !reflect.DeepEqual(pairs, want) {
		t.Errorf("CompoundPairs = %+v, want %+v", pairs, want)
	}
}

func TestCompoundIgnoresBackwardHeads(t *testing.T) {
	// A compound pointing left cannot form a span.
	s := sentence(
		tok("life", parse.POSNoun, "NN", parse.DepNsubj, 2),
		tok("battery", parse.POSNoun, "NN", parse.DepCompound, 0),
		tok("is", "AUX", "VBZ", "ROOT", 2),
		tok("great", parse.POSAdj, "JJ", parse.DepAcomp, 2),
	)

	if pairs := extract.CompoundPairs([]parse.Sentence{s}); len(pairs) != 0 {
		t.Errorf("CompoundPairs = %+v, want none", pairs)
	}
}
