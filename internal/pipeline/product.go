package pipeline

import (
	"context"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/procon-engine/backend/internal/analysis"
	"github.com/procon-engine/backend/internal/metrics"
	"github.com/procon-engine/backend/internal/storage/models"
	"github.com/procon-engine/backend/pkg/utils"
)

// ProductProCon resolves the pro/con record for a product page URL,
// computing it from scraped reviews on first request.
func (o *Orchestrator) ProductProCon(ctx context.Context, url string) (*models.SubjectRecord, error) {
	key := utils.ProductNameFromURL(url)
	if key == "" {
		return nil, ErrBadSubject
	}
	return o.fetchOrCreate(ctx, key, func(ctx context.Context) (*models.SubjectRecord, error) {
		return o.computeProduct(ctx, url, key)
	})
}

func (o *Orchestrator) computeProduct(ctx context.Context, url, key string) (*models.SubjectRecord, error) {
	info, err := o.source.ScrapeProduct(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("scrape product: %w", err)
	}
	metrics.ReviewsScraped.Add(float64(len(info.Reviews)))

	digest := digestProductReviews(info.Reviews)

	titleSummary := o.summarizer.Summarize(ctx, digest.mergedTitles, 10)
	title := o.summarizer.ExtremeSummarize(ctx, titleSummary, 10)
	reviewSummary := o.summarizer.Summarize(ctx, digest.mergedReviews, 20)

	// Titles carry the densest opinion signal, so the syntactic rules
	// run over the title summary and the raw titles rather than the
	// review bodies.
	pairs := o.rulePairs(ctx, titleSummary, strings.Join(digest.titles, " "))
	proConMap := o.analyzer.BuildProConMap(pairs)

	var genPhrases []string
	for _, t := range digest.titles {
		genPhrases = append(genPhrases, o.generative.ExtractProductProCons(ctx, t)...)
	}
	metrics.PairsExtracted.WithLabelValues("generative").Add(float64(len(genPhrases)))

	votes, buckets := o.analyzer.Analyze(ctx, proConMap, analysis.ProductCategories)
	countVotes(models.KindProduct, votes)

	record := &models.SubjectRecord{
		Key:  key,
		Kind: models.KindProduct,

		Title:        title,
		TitleSummary: titleSummary,
		AllTitles:    digest.titles,
		Summary:      reviewSummary,
		Reviews:      digest.reviews,
		BestReview:   digest.best,
		WorstReview:  digest.worst,

		SentimentMap: o.analyzer.SentimentMap(ctx, titleSummary, reviewSummary),
		CategoryMap:  votes,
		ProConMap:    buckets,
		GenProConMap: o.analyzer.AnalyzeGenerated(ctx, genPhrases),

		ProductMeta: &info.Meta,
		URL:         url,
		Product:     key,
	}
	return record, nil
}

type productDigest struct {
	mergedTitles  string
	titles        []string
	mergedReviews string
	reviews       []string
	best          models.RatedReview
	worst         models.RatedReview
}

// digestProductReviews merges titles and bodies for summarization and
// tracks the best and worst rated reviews. Ties keep the most recent
// review.
func digestProductReviews(reviews []models.Review) productDigest {
	d := productDigest{
		best:  models.RatedReview{Rating: 0.0},
		worst: models.RatedReview{Rating: 5.0},
	}
	for _, review := range reviews {
		titleText := strings.TrimSpace(review.Title)
		reviewText := strings.TrimSpace(review.Body)

		if review.Rating >= d.best.Rating {
			d.best = models.RatedReview{Rating: review.Rating, Text: titleText}
		}
		if review.Rating <= d.worst.Rating {
			d.worst = models.RatedReview{Rating: review.Rating, Text: titleText}
		}

		if titleText != "" {
			titleText = ensureTerminated(titleText)
			d.mergedTitles += titleText + " "
			d.titles = append(d.titles, titleText)
		}
		if reviewText != "" {
			reviewText = ensureTerminated(reviewText)
			d.mergedReviews += reviewText + " "
			d.reviews = append(d.reviews, reviewText)
		}
	}
	return d
}

// ensureTerminated appends a period when the text does not already end
// in punctuation. Keeps sentence boundaries intact once texts are
// merged for summarization.
func ensureTerminated(text string) string {
	last, _ := utf8.DecodeLastRuneInString(text)
	if unicode.IsPunct(last) || unicode.IsSymbol(last) {
		return text
	}
	return text + "."
}

func countVotes(kind string, votes map[string]*models.CategoryVote) {
	total := 0
	for _, vote := range votes {
		total += vote.Entries
	}
	metrics.VotesCast.WithLabelValues(kind).Add(float64(total))
}
