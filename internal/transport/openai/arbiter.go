package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/ThiagoLira/bookgraph-revisited-sub000/internal/domain"
	"github.com/ThiagoLira/bookgraph-revisited-sub000/internal/metrics"
)

// Arbiter selects the best candidate for a citation using an
// OpenAI-compatible chat completions API.
type Arbiter struct {
	client      *openai.Client
	model       string
	temperature float32
	logger      *zap.Logger
}

// Config holds the arbiter provider settings.
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
	Logger      *zap.Logger
}

// NewArbiter creates an OpenAI-compatible arbiter.
func NewArbiter(cfg *Config) *Arbiter {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Arbiter{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		logger:      logger,
	}
}

const systemPrompt = `You are a bibliographic matching assistant. You are given a citation and a numbered list of candidate records. Pick the single candidate that refers to the same work or person as the citation, or report that none match.

Respond with a JSON object only, no prose:
{"selected_index": <zero-based index or -1 if none match>, "reasoning": "<one sentence>"}`

// verdict is the shape the model is asked to produce.
type verdict struct {
	SelectedIndex *int   `json:"selected_index"`
	Reasoning     string `json:"reasoning"`
}

// Choose implements resolution.Arbiter. It returns the zero-based index of
// the selected candidate, or -1 when the model declines every candidate.
func (a *Arbiter) Choose(ctx context.Context, citation domain.Citation, candidates []domain.Candidate) (int, string, error) {
	prompt, err := buildPrompt(citation, candidates)
	if err != nil {
		return -1, "", fmt.Errorf("build arbiter prompt: %w", domain.ErrArbiterFailure)
	}

	req := openai.ChatCompletionRequest{
		Model:       a.model,
		Temperature: a.temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	}

	start := time.Now()

	resp, err := a.client.CreateChatCompletion(ctx, req)

	duration := time.Since(start)

	if err != nil {
		metrics.ArbiterRequestsTotal.WithLabelValues(a.model, "error").Inc()
		return -1, "", parseAPIError(err)
	}

	if len(resp.Choices) == 0 {
		metrics.ArbiterRequestsTotal.WithLabelValues(a.model, "error").Inc()
		return -1, "", fmt.Errorf("empty arbiter response: %w", domain.ErrArbiterFailure)
	}

	metrics.ArbiterRequestsTotal.WithLabelValues(a.model, "success").Inc()
	metrics.ArbiterRequestDuration.WithLabelValues(a.model).Observe(duration.Seconds())

	content := resp.Choices[0].Message.Content
	idx, reasoning, ok := decodeVerdict(content)
	if !ok {
		a.logger.Warn("unparseable arbiter reply", zap.String("content", content))
		return -1, "arbiter reply could not be parsed", nil
	}
	if idx < 0 || idx >= len(candidates) {
		return -1, reasoning, nil
	}
	return idx, reasoning, nil
}

// HealthCheck verifies API availability via ListModels (free endpoint).
func (a *Arbiter) HealthCheck(ctx context.Context) error {
	if _, err := a.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}

// buildPrompt renders the citation and the numbered candidate records as JSON.
func buildPrompt(citation domain.Citation, candidates []domain.Candidate) (string, error) {
	type numbered struct {
		Index  int            `json:"index"`
		Kind   string         `json:"kind"`
		Record map[string]any `json:"record"`
	}

	payload := struct {
		Citation   domain.Citation `json:"citation"`
		Candidates []numbered      `json:"candidates"`
	}{
		Citation:   citation,
		Candidates: make([]numbered, 0, len(candidates)),
	}
	for i, c := range candidates {
		payload.Candidates = append(payload.Candidates, numbered{
			Index:  i,
			Kind:   string(c.Kind()),
			Record: c.Record(),
		})
	}

	body, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", err
	}
	return string(body), nil
}

var jsonObjectRe = regexp.MustCompile(`(?s)\{.*\}`)

// decodeVerdict parses the model reply, tolerating prose or markdown fences
// around the JSON object.
func decodeVerdict(content string) (int, string, bool) {
	raw := strings.TrimSpace(content)

	var v verdict
	if json.Unmarshal([]byte(raw), &v) == nil && v.SelectedIndex != nil {
		return *v.SelectedIndex, v.Reasoning, true
	}

	match := jsonObjectRe.FindString(raw)
	if match == "" {
		return -1, "", false
	}
	if json.Unmarshal([]byte(match), &v) != nil || v.SelectedIndex == nil {
		return -1, "", false
	}
	return *v.SelectedIndex, v.Reasoning, true
}

// parseAPIError extracts a human-readable error from the API response.
// All errors are wrapped with domain.ErrArbiterFailure.
func parseAPIError(err error) error {
	wrap := domain.ErrArbiterFailure

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		detail := extractDetail(reqErr.Body)
		if detail != "" {
			return fmt.Errorf("arbiter API error %d: %s: %w",
				reqErr.HTTPStatusCode, detail, wrap)
		}
		return fmt.Errorf("arbiter API error %d: %s: %w",
			reqErr.HTTPStatusCode, string(reqErr.Body), wrap)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("arbiter API error %d: %s: %w",
			apiErr.HTTPStatusCode, apiErr.Message, wrap)
	}

	return fmt.Errorf("arbiter request failed: %w", wrap)
}

// extractDetail extracts the "detail" field from a JSON error body.
func extractDetail(body []byte) string {
	var parsed struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &parsed) == nil && parsed.Detail != "" {
		return parsed.Detail
	}
	return ""
}
