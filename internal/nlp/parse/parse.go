// Package parse defines the dependency-parse representation the
// extraction rules run over. The representation is parser-agnostic:
// production parses come from an HTTP sidecar, tests build sentences by
// hand.
package parse

// Dependency labels and part-of-speech tags used by the extraction
// rules. The vocabulary follows the Universal Dependencies / Penn
// conventions emitted by common English parsers.
const (
	DepAmod      = "amod"
	DepAdvmod    = "advmod"
	DepDet       = "det"
	DepNsubj     = "nsubj"
	DepNsubjPass = "nsubjpass"
	DepDobj      = "dobj"
	DepNeg       = "neg"
	DepAcomp     = "acomp"
	DepAux       = "aux"
	DepCop       = "cop"
	DepAttr      = "attr"
	DepCompound  = "compound"

	POSAdj    = "ADJ"
	POSNoun   = "NOUN"
	POSVerb   = "VERB"
	POSPropN  = "PROPN"
	POSSym    = "SYM"
	POSIntj   = "INTJ"
	TagModal  = "MD"
)

// Token is one word of a parsed sentence. Head is the index of the
// syntactic head within the sentence; the root token points at itself.
type Token struct {
	Text   string `json:"text"`
	Lemma  string `json:"lemma"`
	POS    string `json:"pos"`
	Tag    string `json:"tag"`
	Dep    string `json:"dep"`
	Head   int    `json:"head"`
	IsStop bool   `json:"is_stop"`
}

// Sentence is a dependency-parsed sentence.
type Sentence struct {
	Tokens []Token `json:"tokens"`
}

// Children returns the indices of the tokens whose head is i, in
// sentence order.
func (s Sentence) Children(i int) []int {
	var children []int
	for j, tok := range s.Tokens {
		if tok.Head == i && j != i {
			children = append(children, j)
		}
	}
	return children
}

// Rights returns the indices of the children of i that appear to its
// right.
func (s Sentence) Rights(i int) []int {
	var rights []int
	for _, j := range s.Children(i) {
		if j > i {
			rights = append(rights, j)
		}
	}
	return rights
}

// Ancestors walks the head chain from i upward, excluding i itself.
// The walk stops at the root or after a full sentence length, whichever
// comes first (malformed head cycles must not hang the extractor).
func (s Sentence) Ancestors(i int) []int {
	var ancestors []int
	current := i
	for range s.Tokens {
		head := s.Tokens[current].Head
		if head == current {
			break
		}
		ancestors = append(ancestors, head)
		current = head
	}
	return ancestors
}
