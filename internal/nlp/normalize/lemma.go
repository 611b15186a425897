package normalize

import (
	"strings"

	"github.com/jdkato/prose/v2"
)

// Irregular forms the suffix rules would butcher.
var irregularLemmas = map[string]string{
	"children": "child",
	"feet":     "foot",
	"teeth":    "tooth",
	"men":      "man",
	"women":    "woman",
	"people":   "person",
	"mice":     "mouse",
	"was":      "be",
	"were":     "be",
	"is":       "be",
	"are":      "be",
	"been":     "be",
	"had":      "have",
	"has":      "have",
}

// Words ending in s that are not plurals.
var sFinalLemmas = map[string]struct{}{
	"lens":    {},
	"news":    {},
	"series":  {},
	"species": {},
	"pants":   {},
	"jeans":   {},
	"shorts":  {},
	"plus":    {},
}

// lemma lowercases and strips inflection. The function is idempotent:
// its output always maps to itself.
func lemma(tok prose.Token) string {
	word := strings.ToLower(tok.Text)

	if l, ok := irregularLemmas[word]; ok {
		return l
	}

	switch tok.Tag {
	case "NNS", "NNPS", "VBZ":
		return singularize(word)
	default:
		return word
	}
}

func singularize(word string) string {
	if _, keep := sFinalLemmas[word]; keep {
		return word
	}

	switch {
	case len(word) > 4 && strings.HasSuffix(word, "ies"):
		return word[:len(word)-3] + "y"
	case len(word) > 4 && (strings.HasSuffix(word, "sses") ||
		strings.HasSuffix(word, "shes") ||
		strings.HasSuffix(word, "ches") ||
		strings.HasSuffix(word, "xes") ||
		strings.HasSuffix(word, "zes")):
		return word[:len(word)-2]
	case len(word) > 3 && strings.HasSuffix(word, "s") &&
		!strings.HasSuffix(word, "ss") &&
		!strings.HasSuffix(word, "us") &&
		!strings.HasSuffix(word, "is"):
		return word[:len(word)-1]
	default:
		return word
	}
}
