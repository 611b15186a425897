package handlers_test

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/procon-engine/backend/internal/analysis"
	"github.com/procon-engine/backend/internal/api/handlers"
	"github.com/procon-engine/backend/internal/nlp/extract"
	"github.com/procon-engine/backend/internal/nlp/parse"
	"github.com/procon-engine/backend/internal/pipeline"
	"github.com/procon-engine/backend/internal/storage"
	"github.com/procon-engine/backend/internal/storage/models"
)

// ---- fakes ----

type fakeStore struct {
	records map[string]*models.SubjectRecord
}

func (f *fakeStore) FindRecord(key string) (*models.SubjectRecord, error) {
	if rec, ok := f.records[key]; ok {
		return rec, nil
	}
	return nil, storage.ErrNotFound
}

func (f *fakeStore) InsertRecord(record *models.SubjectRecord) (*models.SubjectRecord, error) {
	return record, nil
}

func (f *fakeStore) FindRestaurant(_, _ string) (*models.RestaurantInfo, error) {
	return nil, storage.ErrNotFound
}

type fakeSource struct{}

func (fakeSource) ScrapeProduct(_ context.Context, _ string) (*models.ProductInfo, error) {
	return &models.ProductInfo{}, nil
}

type fakeParser struct{}

func (fakeParser) Parse(_ context.Context, _ string) ([]parse.Sentence, error) { return nil, nil }

type fakeSummarizer struct{}

func (fakeSummarizer) Summarize(_ context.Context, text string, _ int) string        { return text }
func (fakeSummarizer) ExtremeSummarize(_ context.Context, text string, _ int) string { return text }

type fakeGenerative struct{}

func (fakeGenerative) ExtractProductProCons(_ context.Context, _ string) []string    { return nil }
func (fakeGenerative) ExtractRestaurantProCons(_ context.Context, _ string) []string { return nil }

type fakeAnalyzer struct{}

func (fakeAnalyzer) BuildProConMap(_ []extract.Pair) analysis.ProConMap {
	return analysis.ProConMap{}
}

func (fakeAnalyzer) Analyze(_ context.Context, _ analysis.ProConMap, labels []string) (map[string]*models.CategoryVote, models.ProConBuckets) {
	return map[string]*models.CategoryVote{}, models.ProConBuckets{}
}

func (fakeAnalyzer) AnalyzeGenerated(_ context.Context, _ []string) models.GenProCon {
	return models.GenProCon{}
}

func (fakeAnalyzer) SentimentMap(_ context.Context, _, _ string) map[string][]float64 {
	return map[string][]float64{}
}

func testApp(store *fakeStore) *fiber.App {
	orch := pipeline.New(
		store, nil, fakeSource{}, fakeParser{}, fakeSummarizer{}, fakeGenerative{}, fakeAnalyzer{},
		pipeline.Config{},
	)
	h := handlers.NewProConHandler(orch, []string{"test_key"})

	app := fiber.New()
	app.Post("/api/v1/procon", h.HandleProduct)
	app.Post("/api/v1/procon/restaurant", h.HandleRestaurant)
	return app
}

func TestHandleProductReturnsStoredRecord(t *testing.T) {
	store := &fakeStore{records: map[string]*models.SubjectRecord{
		"Trail-Sneaker": {
			Key:     "Trail-Sneaker",
			Kind:    models.KindProduct,
			Title:   "A running shoe",
			Product: "Trail-Sneaker",
		},
	}}
	app := testApp(store)

	body := `{"url": "https://shop.example/Trail-Sneaker/dp/B001"}`
	req := httptest.NewRequest("POST", "/api/v1/procon?key=test_key", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var got map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if got["title"] != "A running shoe" {
		t.Errorf("title = %v", got["title"])
	}
	if got["prod"] != "Trail-Sneaker" {
		t.Errorf("prod = %v", got["prod"])
	}
}

func TestHandleProductRejectsBadServiceKey(t *testing.T) {
	app := testApp(&fakeStore{records: map[string]*models.SubjectRecord{}})

	body := `{"url": "https://shop.example/X/dp/B001"}`
	req := httptest.NewRequest("POST", "/api/v1/procon?key=wrong", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestHandleProductRejectsMissingURL(t *testing.T) {
	app := testApp(&fakeStore{records: map[string]*models.SubjectRecord{}})

	req := httptest.NewRequest("POST", "/api/v1/procon?key=test_key", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestHandleProductBadSubjectURL(t *testing.T) {
	app := testApp(&fakeStore{records: map[string]*models.SubjectRecord{}})

	body := `{"url": "https://shop.example/"}`
	req := httptest.NewRequest("POST", "/api/v1/procon?key=test_key", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestHandleRestaurantNotFound(t *testing.T) {
	app := testApp(&fakeStore{records: map[string]*models.SubjectRecord{}})

	body := `{"restaurant_name": "Nowhere", "city": "Gone", "max_num_reviews": 5}`
	req := httptest.NewRequest("POST", "/api/v1/procon/restaurant?key=test_key", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestHandleRestaurantRequiresFields(t *testing.T) {
	app := testApp(&fakeStore{records: map[string]*models.SubjectRecord{}})

	body := `{"restaurant_name": "Luigi's"}`
	req := httptest.NewRequest("POST", "/api/v1/procon/restaurant?key=test_key", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}
