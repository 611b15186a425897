package validation

import (
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type Config struct {
	MaxURLLength     int
	MaxNameLength    int
	MaxReviewsPerReq int
	Logger           *zap.Logger
}

// Middleware validates request bodies on the pro/con endpoints before
// they reach the pipeline. Invalid requests are rejected early; the
// pipeline only ever sees well-formed subjects.
func Middleware(cfg Config) fiber.Handler {
	if cfg.MaxURLLength == 0 {
		cfg.MaxURLLength = 2048
	}
	if cfg.MaxNameLength == 0 {
		cfg.MaxNameLength = 256
	}
	if cfg.MaxReviewsPerReq == 0 {
		cfg.MaxReviewsPerReq = 50
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return func(c *fiber.Ctx) error {
		if c.Method() == fiber.MethodPost {
			contentType := c.Get("Content-Type")
			if contentType != "" && !strings.Contains(contentType, "application/json") {
				return c.Status(fiber.StatusUnsupportedMediaType).JSON(fiber.Map{
					"error": "Unsupported content type",
				})
			}
		}

		path := c.Path()

		if strings.HasSuffix(path, "/procon") {
			var req struct {
				URL string `json:"url"`
			}
			if err := c.BodyParser(&req); err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "Invalid JSON format",
				})
			}
			if req.URL == "" {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "url is required",
				})
			}
			if len(req.URL) > cfg.MaxURLLength {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "url exceeds maximum length",
				})
			}
			if !isValidURL(req.URL) {
				cfg.Logger.Warn("Rejected malformed product URL",
					zap.String("ip", c.IP()),
				)
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "Invalid URL format",
				})
			}
		}

		if strings.HasSuffix(path, "/procon/restaurant") {
			var req struct {
				RestaurantName string `json:"restaurant_name"`
				City           string `json:"city"`
				MaxNumReviews  int    `json:"max_num_reviews"`
			}
			if err := c.BodyParser(&req); err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "Invalid JSON format",
				})
			}
			if req.RestaurantName == "" || req.City == "" {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "restaurant_name and city are required",
				})
			}
			if len(req.RestaurantName) > cfg.MaxNameLength || len(req.City) > cfg.MaxNameLength {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "restaurant_name or city exceeds maximum length",
				})
			}
			if req.MaxNumReviews > cfg.MaxReviewsPerReq {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "max_num_reviews exceeds limit",
				})
			}
		}

		return c.Next()
	}
}

func isValidURL(urlStr string) bool {
	u, err := url.Parse(urlStr)
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	return u.Host != ""
}
