package pipeline_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/procon-engine/backend/internal/analysis"
	"github.com/procon-engine/backend/internal/nlp/extract"
	"github.com/procon-engine/backend/internal/nlp/parse"
	"github.com/procon-engine/backend/internal/pipeline"
	"github.com/procon-engine/backend/internal/storage"
	"github.com/procon-engine/backend/internal/storage/models"
)

// ---- fakes ----

type fakeStore struct {
	records     map[string]*models.SubjectRecord
	restaurants map[string]*models.RestaurantInfo
	inserts     int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		records:     map[string]*models.SubjectRecord{},
		restaurants: map[string]*models.RestaurantInfo{},
	}
}

func (f *fakeStore) FindRecord(key string) (*models.SubjectRecord, error) {
	if rec, ok := f.records[key]; ok {
		return rec, nil
	}
	return nil, storage.ErrNotFound
}

func (f *fakeStore) InsertRecord(record *models.SubjectRecord) (*models.SubjectRecord, error) {
	f.inserts++
	if existing, ok := f.records[record.Key]; ok {
		return existing, nil
	}
	f.records[record.Key] = record
	return record, nil
}

func (f *fakeStore) FindRestaurant(name, city string) (*models.RestaurantInfo, error) {
	if info, ok := f.restaurants[name+"::"+city]; ok {
		return info, nil
	}
	return nil, storage.ErrNotFound
}

type fakeCache struct {
	records map[string]*models.SubjectRecord
}

func newFakeCache() *fakeCache {
	return &fakeCache{records: map[string]*models.SubjectRecord{}}
}

func (f *fakeCache) GetRecord(_ context.Context, key string) (*models.SubjectRecord, bool, error) {
	rec, ok := f.records[key]
	return rec, ok, nil
}

func (f *fakeCache) SetRecord(_ context.Context, record *models.SubjectRecord) error {
	f.records[record.Key] = record
	return nil
}

type fakeSource struct {
	info  *models.ProductInfo
	err   error
	calls int
}

func (f *fakeSource) ScrapeProduct(_ context.Context, _ string) (*models.ProductInfo, error) {
	f.calls++
	return f.info, f.err
}

type fakeParser struct {
	sentences []parse.Sentence
	err       error
	texts     []string
}

func (f *fakeParser) Parse(_ context.Context, text string) ([]parse.Sentence, error) {
	f.texts = append(f.texts, text)
	return f.sentences, f.err
}

type fakeSummarizer struct{}

func (fakeSummarizer) Summarize(_ context.Context, text string, _ int) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}
	return "sum(" + strings.TrimSpace(text) + ")"
}

func (fakeSummarizer) ExtremeSummarize(_ context.Context, text string, _ int) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}
	return "xsum(" + strings.TrimSpace(text) + ")"
}

type fakeGenerative struct {
	perText []string
	calls   int
}

func (f *fakeGenerative) ExtractProductProCons(_ context.Context, _ string) []string {
	f.calls++
	return f.perText
}

func (f *fakeGenerative) ExtractRestaurantProCons(_ context.Context, _ string) []string {
	f.calls++
	return f.perText
}

type fakeAnalyzer struct {
	pairs      []extract.Pair
	genPhrases []string
}

func (f *fakeAnalyzer) BuildProConMap(pairs []extract.Pair) analysis.ProConMap {
	f.pairs = append(f.pairs, pairs...)
	return analysis.ProConMap{}
}

func (f *fakeAnalyzer) Analyze(_ context.Context, _ analysis.ProConMap, labels []string) (map[string]*models.CategoryVote, models.ProConBuckets) {
	votes := make(map[string]*models.CategoryVote, len(labels))
	for _, label := range labels {
		votes[label] = &models.CategoryVote{}
	}
	return votes, models.ProConBuckets{
		Pos: map[string][]models.OpinionEntry{},
		Neg: map[string][]models.OpinionEntry{},
	}
}

func (f *fakeAnalyzer) AnalyzeGenerated(_ context.Context, phrases []string) models.GenProCon {
	f.genPhrases = append(f.genPhrases, phrases...)
	return models.GenProCon{Pos: []string{}, Neg: []string{}}
}

func (f *fakeAnalyzer) SentimentMap(_ context.Context, _, _ string) map[string][]float64 {
	return map[string][]float64{}
}

func testOrchestrator(store *fakeStore, cache *fakeCache, source *fakeSource, gen *fakeGenerative) (*pipeline.Orchestrator, *fakeAnalyzer) {
	an := &fakeAnalyzer{}
	var hot pipeline.HotCache
	if cache != nil {
		hot = cache
	}
	return pipeline.New(
		store, hot, source, &fakeParser{}, fakeSummarizer{}, gen, an,
		pipeline.Config{MaxRestaurantReviews: 10, ReviewsForProCon: 5},
	), an
}

func productInfo() *models.ProductInfo {
	return &models.ProductInfo{
		Meta: models.ProductMeta{Title: "Trail Sneaker", Price: "$59.99"},
		Reviews: []models.Review{
			{Title: "Great shoes", Body: "Very comfortable", Rating: 5.0},
			{Title: "Fell apart", Body: "Sole split", Rating: 1.0},
			{Title: "Decent", Body: "Fine for the price", Rating: 3.0},
		},
	}
}

// ---- product pipeline ----

func TestProductProConComputesAndPersists(t *testing.T) {
	store := newFakeStore()
	cache := newFakeCache()
	source := &fakeSource{info: productInfo()}
	gen := &fakeGenerative{perText: []string{"long lasting"}}
	orch, _ := testOrchestrator(store, cache, source, gen)

	record, err := orch.ProductProCon(context.Background(), "https://shop.example/Trail-Sneaker/dp/B001")
	if err != nil {
		t.Fatalf("ProductProCon returned error: %v", err)
	}

	if record.Key != "Trail-Sneaker" || record.Kind != models.KindProduct {
		t.Errorf("record identity = %q/%q", record.Key, record.Kind)
	}
	if record.Product != "Trail-Sneaker" {
		t.Errorf("Product = %q", record.Product)
	}
	if len(record.AllTitles) != 3 {
		t.Errorf("AllTitles = %v, want 3 terminated titles", record.AllTitles)
	}
	if record.AllTitles[0] != "Great shoes." {
		t.Errorf("AllTitles[0] = %q, want punctuation appended", record.AllTitles[0])
	}
	if record.BestReview.Rating != 5.0 || record.BestReview.Text != "Great shoes" {
		t.Errorf("BestReview = %+v", record.BestReview)
	}
	if record.WorstReview.Rating != 1.0 || record.WorstReview.Text != "Fell apart" {
		t.Errorf("WorstReview = %+v", record.WorstReview)
	}
	if record.ProductMeta == nil || record.ProductMeta.Title != "Trail Sneaker" {
		t.Errorf("ProductMeta = %+v", record.ProductMeta)
	}
	if record.TitleSummary == "" || record.Title == "" || record.Summary == "" {
		t.Error("summaries missing from record")
	}

	if store.inserts != 1 {
		t.Errorf("store inserts = %d, want 1", store.inserts)
	}
	if _, ok := cache.records["Trail-Sneaker"]; !ok {
		t.Error("computed record not written to hot cache")
	}
	// One generative call per review title.
	if gen.calls != 3 {
		t.Errorf("generative calls = %d, want 3", gen.calls)
	}
}

func TestProductProConServedFromHotCache(t *testing.T) {
	store := newFakeStore()
	cache := newFakeCache()
	cached := &models.SubjectRecord{Key: "Trail-Sneaker", Kind: models.KindProduct}
	cache.records["Trail-Sneaker"] = cached
	source := &fakeSource{info: productInfo()}
	orch, _ := testOrchestrator(store, cache, source, &fakeGenerative{})

	record, err := orch.ProductProCon(context.Background(), "https://shop.example/Trail-Sneaker/dp/B001")
	if err != nil {
		t.Fatalf("ProductProCon returned error: %v", err)
	}
	if record != cached {
		t.Error("cache hit did not short-circuit")
	}
	if source.calls != 0 {
		t.Errorf("scraper called %d times on a cache hit", source.calls)
	}
}

func TestProductProConServedFromStore(t *testing.T) {
	store := newFakeStore()
	stored := &models.SubjectRecord{Key: "Trail-Sneaker", Kind: models.KindProduct}
	store.records["Trail-Sneaker"] = stored
	cache := newFakeCache()
	source := &fakeSource{info: productInfo()}
	orch, _ := testOrchestrator(store, cache, source, &fakeGenerative{})

	record, err := orch.ProductProCon(context.Background(), "https://shop.example/Trail-Sneaker/dp/B001")
	if err != nil {
		t.Fatalf("ProductProCon returned error: %v", err)
	}
	if record != stored {
		t.Error("store hit did not short-circuit computation")
	}
	if source.calls != 0 {
		t.Errorf("scraper called %d times on a store hit", source.calls)
	}
	if _, ok := cache.records["Trail-Sneaker"]; !ok {
		t.Error("store hit did not backfill the hot cache")
	}
}

func TestProductProConWithoutCache(t *testing.T) {
	store := newFakeStore()
	source := &fakeSource{info: productInfo()}
	orch, _ := testOrchestrator(store, nil, source, &fakeGenerative{})

	if _, err := orch.ProductProCon(context.Background(), "https://shop.example/Trail-Sneaker/dp/B001"); err != nil {
		t.Fatalf("ProductProCon without cache returned error: %v", err)
	}
}

func TestProductProConBadURL(t *testing.T) {
	orch, _ := testOrchestrator(newFakeStore(), nil, &fakeSource{}, &fakeGenerative{})

	_, err := orch.ProductProCon(context.Background(), "https://shop.example/")
	if !errors.Is(err, pipeline.ErrBadSubject) {
		t.Fatalf("err = %v, want ErrBadSubject", err)
	}
}

func TestProductProConScrapeFailure(t *testing.T) {
	source := &fakeSource{err: errors.New("proxy down")}
	orch, _ := testOrchestrator(newFakeStore(), nil, source, &fakeGenerative{})

	if _, err := orch.ProductProCon(context.Background(), "https://shop.example/X/dp/B001"); err == nil {
		t.Fatal("ProductProCon succeeded with the scraper down")
	}
}

// ---- restaurant pipeline ----

func restaurantInfo() *models.RestaurantInfo {
	return &models.RestaurantInfo{
		Name: "Luigi's",
		City: "Boston",
		Meta: models.RestaurantMeta{Address: "1 Main St", Rating: 4.2},
		Reviews: []models.RestaurantReview{
			{Description: "Amazing pasta", Rating: 5.0},
			{Description: "Slow service", Rating: 2.0},
		},
	}
}

func TestRestaurantProConComputesRecord(t *testing.T) {
	store := newFakeStore()
	store.restaurants["Luigi's::Boston"] = restaurantInfo()
	cache := newFakeCache()
	gen := &fakeGenerative{perText: []string{"fresh pasta"}}
	orch, _ := testOrchestrator(store, cache, &fakeSource{}, gen)

	record, err := orch.RestaurantProCon(context.Background(), "Luigi's", "Boston", 0)
	if err != nil {
		t.Fatalf("RestaurantProCon returned error: %v", err)
	}

	if record.Kind != models.KindRestaurant {
		t.Errorf("Kind = %q", record.Kind)
	}
	if record.Name != "Luigi's" || record.City != "Boston" {
		t.Errorf("identity = %q/%q", record.Name, record.City)
	}
	if len(record.ReviewSums) != 2 {
		t.Errorf("ReviewSums = %v, want one per review", record.ReviewSums)
	}
	if len(record.Reviews) != 0 {
		t.Error("full review bodies must not be persisted on the record")
	}
	if record.BestReview.Rating != 5.0 || record.WorstReview.Rating != 2.0 {
		t.Errorf("best/worst = %+v / %+v", record.BestReview, record.WorstReview)
	}
	if record.RestaurantMeta == nil || record.RestaurantMeta.Address != "1 Main St" {
		t.Errorf("RestaurantMeta = %+v", record.RestaurantMeta)
	}
	if store.inserts != 1 {
		t.Errorf("store inserts = %d, want 1", store.inserts)
	}
}

func TestRestaurantProConNotFound(t *testing.T) {
	orch, _ := testOrchestrator(newFakeStore(), nil, &fakeSource{}, &fakeGenerative{})

	_, err := orch.RestaurantProCon(context.Background(), "Nowhere", "Gone", 0)
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("err = %v, want storage.ErrNotFound", err)
	}
}

func TestRestaurantProConRequiresNameAndCity(t *testing.T) {
	orch, _ := testOrchestrator(newFakeStore(), nil, &fakeSource{}, &fakeGenerative{})

	if _, err := orch.RestaurantProCon(context.Background(), "", "Boston", 0); !errors.Is(err, pipeline.ErrBadSubject) {
		t.Fatalf("err = %v, want ErrBadSubject for missing name", err)
	}
	if _, err := orch.RestaurantProCon(context.Background(), "Luigi's", "  ", 0); !errors.Is(err, pipeline.ErrBadSubject) {
		t.Fatalf("err = %v, want ErrBadSubject for missing city", err)
	}
}

func TestRestaurantProConCapsReviews(t *testing.T) {
	store := newFakeStore()
	info := restaurantInfo()
	info.Reviews = append(info.Reviews,
		models.RestaurantReview{Description: "Third", Rating: 3.0},
		models.RestaurantReview{Description: "Fourth", Rating: 4.0},
	)
	store.restaurants["Luigi's::Boston"] = info
	orch, _ := testOrchestrator(store, nil, &fakeSource{}, &fakeGenerative{})

	record, err := orch.RestaurantProCon(context.Background(), "Luigi's", "Boston", 2)
	if err != nil {
		t.Fatalf("RestaurantProCon returned error: %v", err)
	}
	if len(record.ReviewSums) != 2 {
		t.Errorf("ReviewSums = %d entries, want the requested cap of 2", len(record.ReviewSums))
	}
}

func TestParserFailureDegrades(t *testing.T) {
	store := newFakeStore()
	source := &fakeSource{info: productInfo()}
	an := &fakeAnalyzer{}
	orch := pipeline.New(
		store, nil, source,
		&fakeParser{err: errors.New("sidecar down")},
		fakeSummarizer{}, &fakeGenerative{}, an,
		pipeline.Config{},
	)

	record, err := orch.ProductProCon(context.Background(), "https://shop.example/Trail-Sneaker/dp/B001")
	if err != nil {
		t.Fatalf("ProductProCon failed on parser outage: %v", err)
	}
	if record == nil || len(an.pairs) != 0 {
		t.Error("expected an empty pair set when every parse fails")
	}
}
