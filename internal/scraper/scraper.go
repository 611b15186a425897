// Package scraper fetches Amazon product pages through a scraping proxy
// and extracts product metadata and customer reviews.
package scraper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/procon-engine/backend/internal/storage/models"
	"github.com/procon-engine/backend/pkg/logger"
	"github.com/procon-engine/backend/pkg/utils"
)

type Config struct {
	ProxyURL       string
	ProxyAPIKey    string
	BaseURL        string
	NumReviewPages int
	Timeout        time.Duration
}

type Scraper struct {
	cfg        Config
	httpClient *http.Client
}

func New(cfg Config) *Scraper {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://www.amazon.com"
	}
	if cfg.NumReviewPages == 0 {
		cfg.NumReviewPages = 1
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}

	return &Scraper{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

// ScrapeProduct fetches a product page and its review pages.
func (s *Scraper) ScrapeProduct(ctx context.Context, productURL string) (*models.ProductInfo, error) {
	logger.Info("Scraping product",
		zap.String("product", utils.ProductNameFromURL(productURL)),
	)

	page, err := s.fetch(ctx, productURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch product page: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("failed to parse product page: %w", err)
	}

	info := &models.ProductInfo{
		Meta: extractProductMeta(doc),
	}

	reviewLinks := extractReviewLinks(doc)
	if len(reviewLinks) > 0 {
		reviews, err := s.scrapeReviewPages(ctx, reviewLinks[0], s.cfg.NumReviewPages)
		if err != nil {
			logger.Warn("Review scraping failed", zap.Error(err))
		}
		info.Reviews = reviews
	}

	logger.Info("Product scraped",
		zap.String("title", info.Meta.Title),
		zap.Int("reviews", len(info.Reviews)),
	)

	return info, nil
}

// fetch requests a page through the scraping proxy.
func (s *Scraper) fetch(ctx context.Context, target string) (string, error) {
	proxyURL, err := url.Parse(s.cfg.ProxyURL)
	if err != nil {
		return "", fmt.Errorf("invalid proxy url: %w", err)
	}

	q := proxyURL.Query()
	q.Set("api_key", s.cfg.ProxyAPIKey)
	q.Set("url", target)
	proxyURL.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, proxyURL.String(), nil)
	if err != nil {
		return "", fmt.Errorf("failed to build fetch request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, resp.Body)
		return "", fmt.Errorf("fetch returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read page body: %w", err)
	}

	return string(body), nil
}

// scrapeReviewPages follows the review-page chain. Each page links to
// the next one; pagesLeft bounds the walk.
func (s *Scraper) scrapeReviewPages(ctx context.Context, reviewPath string, pagesLeft int) ([]models.Review, error) {
	page, err := s.fetch(ctx, s.cfg.BaseURL+reviewPath)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("failed to parse review page: %w", err)
	}

	reviews := extractReviews(doc)

	pagesLeft--
	if pagesLeft > 0 {
		if next := extractNextReviewPath(doc); next != "" {
			more, err := s.scrapeReviewPages(ctx, next, pagesLeft)
			if err != nil {
				logger.Warn("Next review page failed", zap.Error(err))
			}
			reviews = append(reviews, more...)
		}
	}

	return reviews, nil
}

func extractProductMeta(doc *goquery.Document) models.ProductMeta {
	meta := models.ProductMeta{}

	meta.Title = strings.TrimSpace(doc.Find("span#productTitle").First().Text())

	if ratingTitle, ok := doc.Find("span.reviewCountTextLinkedHistogram").First().Attr("title"); ok {
		meta.GlobalRating = utils.RatingFromString(strings.TrimSpace(ratingTitle))
	}

	numRatings := strings.TrimSpace(doc.Find("span#acrCustomerReviewText").First().Text())
	if fields := strings.Fields(numRatings); len(fields) > 0 {
		meta.NumRatings = fields[0]
	}

	meta.Price = strings.TrimSpace(doc.Find("span#newBuyBoxPrice").First().Text())
	if meta.Price == "" {
		meta.Price = strings.TrimSpace(doc.Find("span.a-offscreen").First().Text())
	}

	if src, ok := doc.Find("div.imgTagWrapper img").First().Attr("src"); ok {
		meta.Image = src
	}
	if meta.Image == "" {
		if src, ok := doc.Find("div#mainImageContainer img").First().Attr("src"); ok {
			meta.Image = src
		}
	}

	return meta
}

func extractReviewLinks(doc *goquery.Document) []string {
	seen := make(map[string]struct{})
	var links []string

	doc.Find("a.a-link-emphasis.a-text-bold").Each(func(_ int, sel *goquery.Selection) {
		if strings.TrimSpace(sel.Text()) != "See all reviews" {
			return
		}
		href, ok := sel.Attr("href")
		if !ok {
			return
		}
		href = strings.TrimSpace(href)
		if _, dup := seen[href]; dup {
			return
		}
		seen[href] = struct{}{}
		links = append(links, href)
	})

	return links
}

func extractReviews(doc *goquery.Document) []models.Review {
	var reviews []models.Review

	doc.Find("div.a-section.review.aok-relative").Each(func(_ int, card *goquery.Selection) {
		review := models.Review{}

		review.Title = strings.TrimSpace(card.Find("a.review-title span").First().Text())

		rating := strings.TrimSpace(card.Find("span.a-icon-alt").First().Text())
		review.Rating = utils.RatingFromString(rating)

		body := card.Find("span.review-text-content span").First().Text()
		body = strings.ReplaceAll(body, "\n", " ")
		body = strings.Join(strings.Fields(body), " ")
		review.Body = body

		reviews = append(reviews, review)
	})

	return reviews
}

func extractNextReviewPath(doc *goquery.Document) string {
	next := ""
	doc.Find("a[href]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		href, _ := sel.Attr("href")
		if strings.Contains(href, "reviewerType=all_reviews") && strings.Contains(href, "pageNumber") {
			next = href
			return false
		}
		return true
	})
	return next
}
