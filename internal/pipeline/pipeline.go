// Package pipeline orchestrates the fetch-or-create flow: hot cache,
// canonical store, and from-scratch computation of subject records.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/procon-engine/backend/internal/analysis"
	"github.com/procon-engine/backend/internal/metrics"
	"github.com/procon-engine/backend/internal/nlp/extract"
	"github.com/procon-engine/backend/internal/nlp/parse"
	"github.com/procon-engine/backend/internal/storage"
	"github.com/procon-engine/backend/internal/storage/models"
	"github.com/procon-engine/backend/pkg/logger"
)

// ErrBadSubject is returned when no subject key can be derived from the
// request parameters.
var ErrBadSubject = errors.New("cannot derive subject key")

// Store is the canonical record store.
type Store interface {
	FindRecord(key string) (*models.SubjectRecord, error)
	InsertRecord(record *models.SubjectRecord) (*models.SubjectRecord, error)
	FindRestaurant(name, city string) (*models.RestaurantInfo, error)
}

// HotCache fronts the store with a fast lookup. The pipeline degrades
// to store-only operation when it is absent.
type HotCache interface {
	GetRecord(ctx context.Context, key string) (*models.SubjectRecord, bool, error)
	SetRecord(ctx context.Context, record *models.SubjectRecord) error
}

// ProductSource fetches reviews and metadata for a product page.
type ProductSource interface {
	ScrapeProduct(ctx context.Context, url string) (*models.ProductInfo, error)
}

// Summarizer condenses review text.
type Summarizer interface {
	Summarize(ctx context.Context, text string, numSentences int) string
	ExtremeSummarize(ctx context.Context, text string, numSentences int) string
}

// Generative extracts pro/con phrases with a completion model.
type Generative interface {
	ExtractProductProCons(ctx context.Context, text string) []string
	ExtractRestaurantProCons(ctx context.Context, text string) []string
}

// Analyzer classifies and aggregates extracted pairs.
type Analyzer interface {
	BuildProConMap(pairs []extract.Pair) analysis.ProConMap
	Analyze(ctx context.Context, proCon analysis.ProConMap, labels []string) (map[string]*models.CategoryVote, models.ProConBuckets)
	AnalyzeGenerated(ctx context.Context, phrases []string) models.GenProCon
	SentimentMap(ctx context.Context, titleSummary, reviewSummary string) map[string][]float64
}

type Config struct {
	MaxRestaurantReviews int
	ReviewsForProCon     int
}

// Orchestrator runs the product and restaurant pipelines.
type Orchestrator struct {
	store      Store
	cache      HotCache
	source     ProductSource
	parser     parse.Parser
	summarizer Summarizer
	generative Generative
	analyzer   Analyzer
	cfg        Config

	flight singleflight.Group
}

func New(store Store, cache HotCache, source ProductSource, parser parse.Parser, summarizer Summarizer, generative Generative, analyzer Analyzer, cfg Config) *Orchestrator {
	if cfg.MaxRestaurantReviews <= 0 {
		cfg.MaxRestaurantReviews = 10
	}
	if cfg.ReviewsForProCon <= 0 {
		cfg.ReviewsForProCon = 5
	}
	return &Orchestrator{
		store:      store,
		cache:      cache,
		source:     source,
		parser:     parser,
		summarizer: summarizer,
		generative: generative,
		analyzer:   analyzer,
		cfg:        cfg,
	}
}

// fetchOrCreate resolves a subject record: hot cache first, then the
// canonical store, then a singleflight-guarded computation. Concurrent
// requests for the same key share one computation; a concurrent writer
// in another process is absorbed by the store's unique-key insert.
func (o *Orchestrator) fetchOrCreate(ctx context.Context, key string, compute func(context.Context) (*models.SubjectRecord, error)) (*models.SubjectRecord, error) {
	if o.cache != nil {
		record, hit, err := o.cache.GetRecord(ctx, key)
		if err != nil {
			logger.Warn("Hot cache lookup failed",
				zap.String("subject_key", key),
				zap.Error(err),
			)
		} else if hit {
			metrics.CacheHits.WithLabelValues("redis").Inc()
			return record, nil
		}
	}
	metrics.CacheMisses.WithLabelValues("redis").Inc()

	record, err := o.store.FindRecord(key)
	if err == nil {
		metrics.CacheHits.WithLabelValues("sqlite").Inc()
		o.cacheRecord(ctx, record)
		return record, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("record lookup: %w", err)
	}
	metrics.CacheMisses.WithLabelValues("sqlite").Inc()

	v, err, shared := o.flight.Do(key, func() (interface{}, error) {
		computed, err := compute(ctx)
		if err != nil {
			return nil, err
		}
		persisted, err := o.store.InsertRecord(computed)
		if err != nil {
			return nil, fmt.Errorf("persist record: %w", err)
		}
		metrics.RecordsComputed.WithLabelValues(persisted.Kind).Inc()
		o.cacheRecord(ctx, persisted)
		return persisted, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		logger.Debug("Joined in-flight computation", zap.String("subject_key", key))
	}
	return v.(*models.SubjectRecord), nil
}

func (o *Orchestrator) cacheRecord(ctx context.Context, record *models.SubjectRecord) {
	if o.cache == nil {
		return
	}
	if err := o.cache.SetRecord(ctx, record); err != nil {
		logger.Warn("Failed to populate hot cache",
			zap.String("subject_key", record.Key),
			zap.Error(err),
		)
	}
}

// rulePairs runs the syntactic extractors over each text. A parse
// failure skips that text; the pipeline still produces a record from
// the remaining signals.
func (o *Orchestrator) rulePairs(ctx context.Context, texts ...string) []extract.Pair {
	var pairs []extract.Pair
	for _, text := range texts {
		if strings.TrimSpace(text) == "" {
			continue
		}
		sentences, err := o.parser.Parse(ctx, text)
		if err != nil {
			logger.Warn("Dependency parse failed, skipping text", zap.Error(err))
			continue
		}
		pairs = append(pairs, extract.Apply(sentences)...)
		pairs = append(pairs, extract.CompoundPairs(sentences)...)
	}
	metrics.PairsExtracted.WithLabelValues("syntactic").Add(float64(len(pairs)))
	return pairs
}
