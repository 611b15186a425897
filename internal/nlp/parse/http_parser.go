package parse

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/procon-engine/backend/pkg/logger"
)

// Parser produces dependency parses for free text.
type Parser interface {
	Parse(ctx context.Context, text string) ([]Sentence, error)
}

// HTTPParser talks to a dependency-parse sidecar (a spaCy-style server
// exposing a single POST endpoint).
type HTTPParser struct {
	endpoint   string
	httpClient *http.Client
}

func NewHTTPParser(endpoint string, timeout time.Duration) *HTTPParser {
	return &HTTPParser{
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type parseRequest struct {
	Text string `json:"text"`
}

type parseResponse struct {
	Sentences []Sentence `json:"sentences"`
}

func (p *HTTPParser) Parse(ctx context.Context, text string) ([]Sentence, error) {
	body, err := json.Marshal(parseRequest{Text: text})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal parse request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build parse request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("parse request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("parser returned status %d", resp.StatusCode)
	}

	var parsed parseResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode parse response: %w", err)
	}

	logger.Debug("Text parsed",
		zap.Int("sentences", len(parsed.Sentences)),
		zap.Int("chars", len(text)),
	)

	return parsed.Sentences, nil
}
