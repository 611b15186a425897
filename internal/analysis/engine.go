// Package analysis merges extracted aspect/opinion pairs, classifies
// them by topic and sentiment, and aggregates per-category sentiment
// scores.
package analysis

import (
	"context"

	"go.uber.org/zap"

	"github.com/procon-engine/backend/internal/hf"
	"github.com/procon-engine/backend/internal/nlp/extract"
	"github.com/procon-engine/backend/internal/nlp/normalize"
	"github.com/procon-engine/backend/internal/storage/models"
	"github.com/procon-engine/backend/pkg/logger"
	"github.com/procon-engine/backend/pkg/utils"
)

// SentimentClassifier scores a short text on the 1-5 ordinal scale.
// An empty result means the service is unavailable.
type SentimentClassifier interface {
	ClassifySentiment(ctx context.Context, text string) []hf.LabelScore
}

// CategoryClassifier ranks candidate topic labels for a short text.
type CategoryClassifier interface {
	ClassifyZeroShot(ctx context.Context, text string, labels []string) hf.ZeroShotResult
}

// ProConMap maps each aspect lemma to its set of distinct opinion
// lemmas. Every entry passed normalization.
type ProConMap map[string]map[string]struct{}

type Engine struct {
	sentiment  SentimentClassifier
	category   CategoryClassifier
	normalizer *normalize.Normalizer
}

func NewEngine(sentiment SentimentClassifier, category CategoryClassifier) *Engine {
	return &Engine{
		sentiment:  sentiment,
		category:   category,
		normalizer: normalize.New(),
	}
}

// BuildProConMap normalizes raw extraction pairs into the deduplicated
// aspect -> opinions map. Pairs whose aspect or opinion fails
// normalization are silently dropped.
func (e *Engine) BuildProConMap(pairs []extract.Pair) ProConMap {
	proCon := make(ProConMap)
	for _, pair := range pairs {
		aspect, ok := e.normalizer.Aspect(pair.Aspect)
		if !ok {
			continue
		}
		if _, exists := proCon[aspect]; !exists {
			proCon[aspect] = make(map[string]struct{})
		}

		opinion, ok := e.normalizer.Opinion(pair.Opinion)
		if !ok {
			continue
		}
		proCon[aspect][opinion] = struct{}{}
	}
	return proCon
}

// Analyze classifies every (aspect, opinion) entry by topic and
// sentiment, accumulates per-category votes, and buckets non-neutral
// pairs as pros or cons.
func (e *Engine) Analyze(ctx context.Context, proCon ProConMap, labels []string) (map[string]*models.CategoryVote, models.ProConBuckets) {
	votes := make(map[string]*models.CategoryVote, len(labels))
	for _, label := range labels {
		votes[label] = &models.CategoryVote{}
	}

	buckets := models.ProConBuckets{
		Pos: make(map[string][]models.OpinionEntry),
		Neg: make(map[string][]models.OpinionEntry),
	}

	for aspect, opinions := range proCon {
		for opinion := range opinions {
			phrase := opinion + " " + aspect

			ranked := e.category.ClassifyZeroShot(ctx, phrase, labels)
			if len(ranked.Labels) == 0 {
				logger.Warn("Category classification unavailable, pair skipped",
					zap.String("phrase", phrase),
				)
				continue
			}

			categories := []string{ranked.Labels[0]}
			if len(ranked.Labels) > 1 && len(ranked.Scores) > 1 &&
				ranked.Scores[0]-ranked.Scores[1] < 0.1 {
				categories = append(categories, ranked.Labels[1])
			}

			value, score := e.classifyOrdinal(ctx, phrase)
			if value == 0 {
				logger.Warn("Sentiment classification unavailable, pair skipped",
					zap.String("phrase", phrase),
				)
				continue
			}

			if isPriceCorrected(aspect, opinion) {
				value = InvertOrdinal(value)
			}

			for _, category := range categories {
				vote, known := votes[category]
				if !known {
					continue
				}
				vote.Sum += value
				vote.Entries++
			}

			if value != 3 {
				entry := models.OpinionEntry{Opinion: opinion, Score: score}
				if value > 3 {
					buckets.Pos[aspect] = append(buckets.Pos[aspect], entry)
				} else {
					buckets.Neg[aspect] = append(buckets.Neg[aspect], entry)
				}
			}
		}
	}

	for _, vote := range votes {
		vote.Percent = VotePercent(vote.Sum, vote.Entries)
	}

	return votes, buckets
}

// AnalyzeGenerated classifies free-form generated phrases purely by
// polarity, bypassing category voting. Neutral phrases are dropped.
func (e *Engine) AnalyzeGenerated(ctx context.Context, phrases []string) models.GenProCon {
	result := models.GenProCon{
		Pos: []string{},
		Neg: []string{},
	}

	for _, phrase := range phrases {
		value, _ := e.classifyOrdinal(ctx, phrase)
		switch {
		case value == 0 || value == 3:
			continue
		case value > 3:
			result.Pos = append(result.Pos, phrase)
		default:
			result.Neg = append(result.Neg, phrase)
		}
	}

	return result
}

// SentimentMap classifies the title and review summaries and keeps
// every label scoring above the noise floor.
func (e *Engine) SentimentMap(ctx context.Context, titleSummary, reviewSummary string) map[string][]float64 {
	sentimentMap := make(map[string][]float64)

	for _, text := range []string{titleSummary, reviewSummary} {
		if text == "" {
			continue
		}
		for _, entry := range e.sentiment.ClassifySentiment(ctx, text) {
			if entry.Score > 0.1 {
				sentimentMap[entry.Label] = append(sentimentMap[entry.Label], entry.Score)
			}
		}
	}

	return sentimentMap
}

// classifyOrdinal returns the highest-scoring ordinal label for a
// phrase, with its confidence. Zero value means unavailable.
func (e *Engine) classifyOrdinal(ctx context.Context, phrase string) (int, float64) {
	ranked := e.sentiment.ClassifySentiment(ctx, phrase)
	if len(ranked) == 0 {
		return 0, 0
	}

	best := ranked[0]
	for _, entry := range ranked[1:] {
		if entry.Score > best.Score {
			best = entry
		}
	}

	return utils.OrdinalFromLabel(best.Label), best.Score
}

// VotePercent maps accumulated ordinal votes onto [0,100]. A category
// with no contributing pairs reports 0.
func VotePercent(sum, entries int) float64 {
	if entries == 0 {
		return 0
	}

	scaled := float64(sum - entries)
	span := float64(4 * entries)
	return scaled / span * 100.0
}
