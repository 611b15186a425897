// Package llm extracts pro/con phrases from review text with a
// generative model. This is the second extraction strategy, running in
// parallel with the rule-based dependency-parse extractor.
package llm

import (
	"context"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/procon-engine/backend/internal/metrics"
	"github.com/procon-engine/backend/pkg/logger"
	"github.com/procon-engine/backend/pkg/retry"
)

type Config struct {
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float32
	Timeout     time.Duration
}

type Client struct {
	client      *openai.Client
	cfg         Config
	retryConfig retry.Config
}

func NewClient(cfg Config) *Client {
	if cfg.Model == "" {
		cfg.Model = "gpt-3.5-turbo-instruct"
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 30
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	return &Client{
		client: openai.NewClient(cfg.APIKey),
		cfg:    cfg,
		retryConfig: retry.Config{
			MaxAttempts:    3,
			InitialDelay:   500 * time.Millisecond,
			MaxDelay:       5 * time.Second,
			Multiplier:     2.0,
			JitterFraction: 0.1,
			Logger:         logger.GetLogger(),
		},
	}
}

// ExtractProductProCons pulls pro/con phrases out of one product review
// text. Nil on total model failure; callers treat that as "no generated
// phrases" and keep going.
func (c *Client) ExtractProductProCons(ctx context.Context, text string) []string {
	return c.extract(ctx, productPrompt+text+promptSuffix)
}

// ExtractRestaurantProCons is the restaurant-tuned variant.
func (c *Client) ExtractRestaurantProCons(ctx context.Context, text string) []string {
	return c.extract(ctx, restaurantPrompt+text+promptSuffix)
}

func (c *Client) extract(ctx context.Context, prompt string) []string {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	completion, err := retry.DoWithResult(ctx, c.retryConfig, func() (string, error) {
		resp, err := c.client.CreateCompletion(ctx, openai.CompletionRequest{
			Model:       c.cfg.Model,
			Prompt:      prompt,
			Temperature: c.cfg.Temperature,
			MaxTokens:   c.cfg.MaxTokens,
			TopP:        1,
			Stop:        []string{"Review"},
		})
		if err != nil {
			return "", err
		}
		if len(resp.Choices) == 0 {
			return "", nil
		}
		return resp.Choices[0].Text, nil
	})

	if err != nil {
		metrics.InferenceCalls.WithLabelValues("openai", "error").Inc()
		logger.Warn("Generative extraction unavailable", zap.Error(err))
		return nil
	}

	metrics.InferenceCalls.WithLabelValues("openai", "success").Inc()
	phrases := ParseProConLines(completion)
	logger.Debug("Generative pro/cons extracted", zap.Int("count", len(phrases)))
	return phrases
}

// ParseProConLines reads "N - phrase" lines out of a completion,
// skipping anything that does not match.
func ParseProConLines(completion string) []string {
	var phrases []string
	for _, line := range strings.Split(strings.TrimSpace(completion), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		parts := strings.SplitN(line, " - ", 2)
		if len(parts) != 2 {
			continue
		}

		phrase := strings.TrimSpace(parts[1])
		if phrase != "" {
			phrases = append(phrases, phrase)
		}
	}
	return phrases
}
