package llm_test

import (
	"reflect"
	"testing"

	"github.com/procon-engine/backend/internal/llm"
)

func TestParseProConLines(t *testing.T) {
	completion := `
1 - long battery life
2 - heavy to carry

3 - bright screen
`

	got := llm.ParseProConLines(completion)
	want := []string{"long battery life", "heavy to carry", "bright screen"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ParseProConLines = %v, want %v", got, want)
	}
}

func TestParseProConLinesSkipsMalformed(t *testing.T) {
	completion := "1 - solid sound\nnot a numbered line\n2-missing spaces\n3 - "

	got := llm.ParseProConLines(completion)
	want := []string{"solid sound"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ParseProConLines = %v, want %v", got, want)
	}
}

func TestParseProConLinesEmpty(t *testing.T) {
	if got := llm.ParseProConLines(""); got != nil {
		t.Errorf("ParseProConLines(\"\") = %v, want nil", got)
	}
}

func TestParseProConLinesKeepsDashesInPhrase(t *testing.T) {
	got := llm.ParseProConLines("1 - easy - to - use interface")
	want := []string{"easy - to - use interface"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ParseProConLines = %v, want %v", got, want)
	}
}
