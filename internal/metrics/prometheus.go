package metrics

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	PipelineDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "procon_pipeline_duration_seconds",
			Help:    "End-to-end pro/con pipeline duration in seconds",
			Buckets: []float64{0.01, 0.1, 0.5, 1, 5, 15, 30, 60, 120},
		},
		[]string{"kind"},
	)

	PipelineTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "procon_pipeline_total",
			Help: "Total number of pro/con requests processed",
		},
		[]string{"kind", "status"},
	)

	CacheHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "procon_cache_hits_total",
			Help: "Total cache hits",
		},
		[]string{"cache_type"},
	)

	CacheMisses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "procon_cache_misses_total",
			Help: "Total cache misses",
		},
		[]string{"cache_type"},
	)

	RecordsComputed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "procon_records_computed_total",
			Help: "Total subject records computed from scratch",
		},
		[]string{"kind"},
	)

	PairsExtracted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "procon_pairs_extracted_total",
			Help: "Total aspect-opinion pairs extracted",
		},
		[]string{"strategy"},
	)

	ReviewsScraped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "procon_reviews_scraped_total",
			Help: "Total product reviews scraped",
		},
	)

	InferenceCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "procon_inference_calls_total",
			Help: "Total remote inference calls",
		},
		[]string{"provider", "status"},
	)

	VotesCast = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "procon_category_votes_total",
			Help: "Total sentiment votes cast across categories",
		},
		[]string{"kind"},
	)
)

func Init() {
	prometheus.MustRegister(PipelineDuration)
	prometheus.MustRegister(PipelineTotal)
	prometheus.MustRegister(CacheHits)
	prometheus.MustRegister(CacheMisses)
	prometheus.MustRegister(RecordsComputed)
	prometheus.MustRegister(PairsExtracted)
	prometheus.MustRegister(ReviewsScraped)
	prometheus.MustRegister(InferenceCalls)
	prometheus.MustRegister(VotesCast)
}

func MetricsHandler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
