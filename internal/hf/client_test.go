package hf_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/procon-engine/backend/internal/hf"
)

func testConfig(baseURL string) hf.Config {
	return hf.Config{
		APIToken:        "token",
		BaseURL:         baseURL,
		SummarizerModel: "summarizer",
		ExtremeSumModel: "extreme",
		SentimentModel:  "sentiment",
		ZeroShotModel:   "zeroshot",
		MaxAttempts:     1,
	}
}

func TestSummarize(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/summarizer") {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer token" {
			t.Error("missing bearer token")
		}
		w.Write([]byte(`[{"summary_text": "a short digest"}]`))
	}))
	defer srv.Close()

	client := hf.NewClient(testConfig(srv.URL))
	if got := client.Summarize(context.Background(), "long text"); got != "a short digest" {
		t.Errorf("Summarize = %q, want %q", got, "a short digest")
	}
}

func TestSummarizeDegradesToEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := hf.NewClient(testConfig(srv.URL))
	if got := client.Summarize(context.Background(), "long text"); got != "" {
		t.Errorf("Summarize = %q, want empty on outage", got)
	}
}

func TestClassifySentiment(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`[[{"label": "5 stars", "score": 0.81}, {"label": "4 stars", "score": 0.12}]]`))
	}))
	defer srv.Close()

	client := hf.NewClient(testConfig(srv.URL))
	got := client.ClassifySentiment(context.Background(), "great battery")
	if len(got) != 2 {
		t.Fatalf("got %d entries, want 2", len(got))
	}
	if got[0].Label != "5 stars" || got[0].Score != 0.81 {
		t.Errorf("top entry = %+v", got[0])
	}
}

func TestClassifySentimentDegradesToNil(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := hf.NewClient(testConfig(srv.URL))
	if got := client.ClassifySentiment(context.Background(), "anything"); got != nil {
		t.Errorf("ClassifySentiment = %v, want nil on outage", got)
	}
}

func TestClassifyZeroShot(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"sequence": "great battery", "labels": ["quality", "price"], "scores": [0.8, 0.1]}`))
	}))
	defer srv.Close()

	client := hf.NewClient(testConfig(srv.URL))
	got := client.ClassifyZeroShot(context.Background(), "great battery", []string{"quality", "price"})
	if len(got.Labels) != 2 || got.Labels[0] != "quality" {
		t.Errorf("Labels = %v", got.Labels)
	}
	if got.Scores[0] != 0.8 {
		t.Errorf("Scores = %v", got.Scores)
	}
}
