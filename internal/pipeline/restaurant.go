package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/procon-engine/backend/internal/analysis"
	"github.com/procon-engine/backend/internal/metrics"
	"github.com/procon-engine/backend/internal/storage/models"
)

// RestaurantProCon resolves the pro/con record for a restaurant,
// computing it from the stored review corpus on first request.
// maxReviews caps how many reviews feed the analysis; zero or negative
// falls back to the configured default.
func (o *Orchestrator) RestaurantProCon(ctx context.Context, name, city string, maxReviews int) (*models.SubjectRecord, error) {
	name = strings.TrimSpace(name)
	city = strings.TrimSpace(city)
	if name == "" || city == "" {
		return nil, ErrBadSubject
	}
	if maxReviews <= 0 {
		maxReviews = o.cfg.MaxRestaurantReviews
	}
	key := name + "::" + city
	return o.fetchOrCreate(ctx, key, func(ctx context.Context) (*models.SubjectRecord, error) {
		return o.computeRestaurant(ctx, key, name, city, maxReviews)
	})
}

func (o *Orchestrator) computeRestaurant(ctx context.Context, key, name, city string, maxReviews int) (*models.SubjectRecord, error) {
	info, err := o.store.FindRestaurant(name, city)
	if err != nil {
		return nil, fmt.Errorf("restaurant lookup: %w", err)
	}

	reviews := info.Reviews
	if len(reviews) > maxReviews {
		reviews = reviews[:maxReviews]
	}
	digest := o.digestRestaurantReviews(ctx, reviews)

	reviewSummary := o.summarizer.Summarize(ctx, digest.merged, 20)

	// Pro/con extraction reads the per-review summaries rather than the
	// full bodies; a handful of condensed reviews carries the signal at
	// a fraction of the inference cost.
	n := o.cfg.ReviewsForProCon
	if n > len(digest.summaries) {
		n = len(digest.summaries)
	}
	pairs := o.rulePairs(ctx, strings.Join(digest.summaries[:n], ". "))
	proConMap := o.analyzer.BuildProConMap(pairs)

	var genPhrases []string
	for _, summary := range digest.summaries[:n] {
		genPhrases = append(genPhrases, o.generative.ExtractRestaurantProCons(ctx, summary)...)
	}
	metrics.PairsExtracted.WithLabelValues("generative").Add(float64(len(genPhrases)))

	votes, buckets := o.analyzer.Analyze(ctx, proConMap, analysis.RestaurantCategories)
	countVotes(models.KindRestaurant, votes)

	// Full review bodies stay in the restaurant store; the record only
	// carries the summaries.
	record := &models.SubjectRecord{
		Key:  key,
		Kind: models.KindRestaurant,

		Summary:     reviewSummary,
		ReviewSums:  digest.summaries,
		BestReview:  digest.best,
		WorstReview: digest.worst,

		SentimentMap: o.analyzer.SentimentMap(ctx, "", reviewSummary),
		CategoryMap:  votes,
		ProConMap:    buckets,
		GenProConMap: o.analyzer.AnalyzeGenerated(ctx, genPhrases),

		RestaurantMeta: &info.Meta,
		Name:           info.Name,
		City:           info.City,
	}
	return record, nil
}

type restaurantDigest struct {
	merged    string
	summaries []string
	best      models.RatedReview
	worst     models.RatedReview
}

func (o *Orchestrator) digestRestaurantReviews(ctx context.Context, reviews []models.RestaurantReview) restaurantDigest {
	d := restaurantDigest{
		best:  models.RatedReview{Rating: 0.0},
		worst: models.RatedReview{Rating: 5.0},
	}
	for _, review := range reviews {
		text := strings.TrimSpace(review.Description)

		if review.Rating >= d.best.Rating {
			d.best = models.RatedReview{Rating: review.Rating, Text: text}
		}
		if review.Rating <= d.worst.Rating {
			d.worst = models.RatedReview{Rating: review.Rating, Text: text}
		}

		if text != "" {
			text = ensureTerminated(text)
			d.merged += text + " "
			d.summaries = append(d.summaries, o.summarizer.Summarize(ctx, text, 5))
		}
	}
	return d
}
