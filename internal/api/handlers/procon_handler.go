package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/procon-engine/backend/internal/metrics"
	"github.com/procon-engine/backend/internal/middleware/requestid"
	"github.com/procon-engine/backend/internal/pipeline"
	"github.com/procon-engine/backend/internal/storage"
	"github.com/procon-engine/backend/pkg/logger"
)

type ProConHandler struct {
	orchestrator *pipeline.Orchestrator
	serviceKeys  map[string]struct{}
}

func NewProConHandler(orchestrator *pipeline.Orchestrator, serviceKeys []string) *ProConHandler {
	keys := make(map[string]struct{}, len(serviceKeys))
	for _, key := range serviceKeys {
		keys[key] = struct{}{}
	}
	return &ProConHandler{
		orchestrator: orchestrator,
		serviceKeys:  keys,
	}
}

// HandleProduct serves POST /api/v1/procon. The caller authenticates
// with a service key passed as the "key" query argument.
func (h *ProConHandler) HandleProduct(c *fiber.Ctx) error {
	if !h.validKey(c) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid service key",
		})
	}

	var req struct {
		URL string `json:"url"`
	}
	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse request body", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if req.URL == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "url is required",
		})
	}

	start := time.Now()
	record, err := h.orchestrator.ProductProCon(c.Context(), req.URL)
	metrics.PipelineDuration.WithLabelValues("product").Observe(time.Since(start).Seconds())
	if err != nil {
		return h.replyError(c, "product", req.URL, err)
	}

	metrics.PipelineTotal.WithLabelValues("product", "success").Inc()
	return c.JSON(record)
}

// HandleRestaurant serves POST /api/v1/procon/restaurant.
func (h *ProConHandler) HandleRestaurant(c *fiber.Ctx) error {
	if !h.validKey(c) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid service key",
		})
	}

	var req struct {
		RestaurantName string `json:"restaurant_name"`
		City           string `json:"city"`
		MaxNumReviews  int    `json:"max_num_reviews"`
	}
	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse request body", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if req.RestaurantName == "" || req.City == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "restaurant_name and city are required",
		})
	}

	start := time.Now()
	record, err := h.orchestrator.RestaurantProCon(c.Context(), req.RestaurantName, req.City, req.MaxNumReviews)
	metrics.PipelineDuration.WithLabelValues("restaurant").Observe(time.Since(start).Seconds())
	if err != nil {
		return h.replyError(c, "restaurant", req.RestaurantName, err)
	}

	metrics.PipelineTotal.WithLabelValues("restaurant", "success").Inc()
	return c.JSON(record)
}

func (h *ProConHandler) validKey(c *fiber.Ctx) bool {
	_, ok := h.serviceKeys[c.Query("key")]
	return ok
}

func (h *ProConHandler) replyError(c *fiber.Ctx, kind, subject string, err error) error {
	switch {
	case errors.Is(err, pipeline.ErrBadSubject):
		metrics.PipelineTotal.WithLabelValues(kind, "bad_request").Inc()
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot derive subject from request",
		})
	case errors.Is(err, storage.ErrNotFound):
		metrics.PipelineTotal.WithLabelValues(kind, "not_found").Inc()
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Subject not found",
		})
	default:
		logger.Error("Pipeline failed",
			zap.String("request_id", requestid.FromCtx(c)),
			zap.String("kind", kind),
			zap.String("subject", subject),
			zap.Error(err),
		)
		metrics.PipelineTotal.WithLabelValues(kind, "error").Inc()
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to compute pro/con analysis",
		})
	}
}
