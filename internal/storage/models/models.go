package models

import "time"

// Review is one scraped product review. Ephemeral: consumed once per
// pipeline run.
type Review struct {
	Title  string  `json:"title"`
	Body   string  `json:"review"`
	Rating float64 `json:"rating"`
}

// ProductMeta is the product-page metadata captured alongside reviews.
type ProductMeta struct {
	Title        string  `json:"title"`
	Price        string  `json:"price"`
	Image        string  `json:"image"`
	GlobalRating float64 `json:"glb_rating"`
	NumRatings   string  `json:"glb_num_ratings"`
}

// ProductInfo is the scraper's output for one product.
type ProductInfo struct {
	Meta    ProductMeta `json:"meta"`
	Reviews []Review    `json:"reviews"`
}

// RestaurantReview is one review from the restaurant review source.
type RestaurantReview struct {
	Description string  `json:"description"`
	Rating      float64 `json:"rating"`
}

// RestaurantMeta is the subset of restaurant metadata persisted with a
// computed record.
type RestaurantMeta struct {
	Address    string   `json:"address,omitempty"`
	Categories []string `json:"categories,omitempty"`
	NumReviews int      `json:"num_reviews,omitempty"`
	Price      string   `json:"price,omitempty"`
	Rating     float64  `json:"rating,omitempty"`
	State      string   `json:"state,omitempty"`
	URL        string   `json:"url,omitempty"`
	Website    string   `json:"website,omitempty"`
	ZipCode    string   `json:"zip_code,omitempty"`
}

// RestaurantInfo is the review source's output for one restaurant.
type RestaurantInfo struct {
	Name    string             `json:"name"`
	City    string             `json:"city"`
	Meta    RestaurantMeta     `json:"meta"`
	Reviews []RestaurantReview `json:"reviews"`
}

// RatedReview pairs a rating with the review text it came from.
type RatedReview struct {
	Rating float64 `json:"rating"`
	Text   string  `json:"text"`
}

// CategoryVote accumulates ordinal sentiment values for one topical
// category. Percent maps the [1,5] ordinal range onto [0,100]; zero
// entries report 0.
type CategoryVote struct {
	Sum     int     `json:"ctr"`
	Entries int     `json:"num_entries"`
	Percent float64 `json:"perc"`
}

// OpinionEntry is one classified opinion about an aspect, with the
// classifier's confidence.
type OpinionEntry struct {
	Opinion string  `json:"opinion"`
	Score   float64 `json:"score"`
}

// ProConBuckets holds the non-neutral classified pairs keyed by aspect.
type ProConBuckets struct {
	Pos map[string][]OpinionEntry `json:"pos"`
	Neg map[string][]OpinionEntry `json:"neg"`
}

// GenProCon holds generative-model phrases classified purely by
// polarity.
type GenProCon struct {
	Pos []string `json:"pos"`
	Neg []string `json:"neg"`
}

// SubjectRecord is the full persisted artifact for one subject (product
// or restaurant). Created once per subject key and never mutated.
// The storage identifier never serializes back to clients.
type SubjectRecord struct {
	ID        int64     `json:"-"`
	Key       string    `json:"-"`
	Kind      string    `json:"-"`
	CreatedAt time.Time `json:"-"`

	Title        string   `json:"title,omitempty"`
	TitleSummary string   `json:"title_sum,omitempty"`
	AllTitles    []string `json:"all_titles,omitempty"`
	Summary      string   `json:"summary"`
	Reviews      []string `json:"reviews,omitempty"`
	ReviewSums   []string `json:"reviews_sum,omitempty"`

	BestReview  RatedReview `json:"best_review"`
	WorstReview RatedReview `json:"worst_review"`

	SentimentMap map[string][]float64     `json:"sentiment_map"`
	CategoryMap  map[string]*CategoryVote `json:"category_map"`
	ProConMap    ProConBuckets            `json:"pro_con_map"`
	GenProConMap GenProCon                `json:"gen_pro_con_map"`

	// Product-only fields.
	ProductMeta *ProductMeta `json:"meta,omitempty"`
	URL         string       `json:"url,omitempty"`
	Product     string       `json:"prod,omitempty"`

	// Restaurant-only fields.
	RestaurantMeta *RestaurantMeta `json:"restaurant_meta,omitempty"`
	Name           string          `json:"name,omitempty"`
	City           string          `json:"city,omitempty"`
}

// Record kinds.
const (
	KindProduct    = "product"
	KindRestaurant = "restaurant"
)
