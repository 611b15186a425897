// Package hf calls hosted summarization and classification models
// through the HuggingFace inference API. Every call is wrapped in a
// fixed-backoff retry and a circuit breaker; when the budget is
// exhausted the client returns an empty result instead of an error, and
// callers degrade.
package hf

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/procon-engine/backend/internal/metrics"
	"github.com/procon-engine/backend/pkg/circuitbreaker"
	"github.com/procon-engine/backend/pkg/logger"
	"github.com/procon-engine/backend/pkg/retry"
)

type Config struct {
	APIToken        string
	BaseURL         string
	SummarizerModel string
	ExtremeSumModel string
	SentimentModel  string
	ZeroShotModel   string
	MaxAttempts     int
	Backoff         time.Duration
	Timeout         time.Duration
}

type Client struct {
	cfg         Config
	httpClient  *http.Client
	cb          *circuitbreaker.CircuitBreaker
	retryConfig retry.Config
}

func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api-inference.huggingface.co/models"
	}
	if cfg.MaxAttempts == 0 {
		cfg.MaxAttempts = 4
	}
	if cfg.Backoff == 0 {
		cfg.Backoff = 45 * time.Second
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}

	cb := circuitbreaker.New("huggingface", circuitbreaker.Config{
		MaxRequests:      5,
		Interval:         time.Minute,
		Timeout:          30 * time.Second,
		FailureThreshold: 5,
		SuccessThreshold: 2,
		Logger:           logger.GetLogger(),
	})

	return &Client{
		cfg:         cfg,
		httpClient:  &http.Client{Timeout: cfg.Timeout},
		cb:          cb,
		retryConfig: retry.Fixed(cfg.MaxAttempts, cfg.Backoff, logger.GetLogger()),
	}
}

// Summarize runs the abstractive summarizer. Empty string means the
// service was unavailable; callers fall back to extractive output.
func (c *Client) Summarize(ctx context.Context, text string) string {
	var out summaryResponse
	if !c.query(ctx, c.cfg.SummarizerModel, inferenceRequest{Inputs: text}, &out) {
		return ""
	}
	if len(out) == 0 {
		return ""
	}
	return out[0].SummaryText
}

// ExtremeSummarize runs the one-line summarizer.
func (c *Client) ExtremeSummarize(ctx context.Context, text string) string {
	var out summaryResponse
	if !c.query(ctx, c.cfg.ExtremeSumModel, inferenceRequest{Inputs: text}, &out) {
		return ""
	}
	if len(out) == 0 {
		return ""
	}
	return out[0].SummaryText
}

// ClassifySentiment scores text on the 1-5 star ordinal scale and
// returns all labels with their scores. Nil means unavailable.
func (c *Client) ClassifySentiment(ctx context.Context, text string) []LabelScore {
	var out sentimentResponse
	if !c.query(ctx, c.cfg.SentimentModel, inferenceRequest{Inputs: text}, &out) {
		return nil
	}
	if len(out) == 0 {
		return nil
	}
	return out[0]
}

// ClassifyZeroShot ranks the candidate labels for the text.
func (c *Client) ClassifyZeroShot(ctx context.Context, text string, labels []string) ZeroShotResult {
	var out ZeroShotResult
	req := inferenceRequest{
		Inputs: text,
		Parameters: &inferenceParameters{
			CandidateLabels: labels,
			MultiLabel:      true,
		},
	}
	if !c.query(ctx, c.cfg.ZeroShotModel, req, &out) {
		return ZeroShotResult{}
	}
	return out
}

// PinModels asks the inference API to keep all four models warm. Called
// once at startup; failure is logged and tolerated since the retry
// budget absorbs cold starts.
func (c *Client) PinModels(ctx context.Context) error {
	body, err := json.Marshal(pinnedModelsRequest{
		PinnedModels: []pinnedModel{
			{ModelID: c.cfg.SummarizerModel, ComputeType: "cpu"},
			{ModelID: c.cfg.ExtremeSumModel, ComputeType: "cpu"},
			{ModelID: c.cfg.SentimentModel, ComputeType: "cpu"},
			{ModelID: c.cfg.ZeroShotModel, ComputeType: "cpu"},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to marshal pinned models: %w", err)
	}

	url := "https://api-inference.huggingface.co/usage/pinned_models"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build pin request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("pin request failed: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("pin request returned status %d", resp.StatusCode)
	}

	logger.Info("HuggingFace models pinned")
	return nil
}

// query runs one model call under the breaker and the retry budget.
// Returns false when the result should be treated as empty.
func (c *Client) query(ctx context.Context, model string, payload inferenceRequest, out interface{}) bool {
	err := c.cb.Execute(ctx, func() error {
		return retry.Do(ctx, c.retryConfig, func() error {
			return c.post(ctx, model, payload, out)
		})
	})

	if err != nil {
		metrics.InferenceCalls.WithLabelValues("huggingface", "error").Inc()
		logger.Warn("HuggingFace call exhausted, degrading to empty result",
			zap.String("model", model),
			zap.Error(err),
		)
		return false
	}

	metrics.InferenceCalls.WithLabelValues("huggingface", "success").Inc()
	return true
}

func (c *Client) post(ctx context.Context, model string, payload inferenceRequest, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal inference request: %w", err)
	}

	url := c.cfg.BaseURL + "/" + model
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build inference request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("inference request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("model %s returned status %d", model, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode inference response: %w", err)
	}

	return nil
}
