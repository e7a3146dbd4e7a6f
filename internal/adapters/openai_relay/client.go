package openai_relay

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"text/template"
	"time"

	"matjib-service/internal/contextkeys"
	"matjib-service/internal/contracts"
	"matjib-service/internal/core/domain"
	"matjib-service/internal/core/port"
	"matjib-service/pkg/circuitbreaker"

	gobreaker "github.com/sony/gobreaker/v2"
)

// ErrNotConfigured - ключ API не задан, запрос в модель не отправляется
var ErrNotConfigured = errors.New("openai api key is not configured")

//go:embed prompt.tmpl
var promptSource string

var promptTemplate = template.Must(template.New("prompt").Parse(promptSource))

type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// Client - адаптер RecommendationRelayPort поверх OpenAI chat completions
type Client struct {
	cfg        Config
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[[]domain.Recommendation]
}

func NewClient(cfg Config, logger port.LoggerPort) *Client {
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	breakerLogger := logger.WithFields(port.Fields{"component": "OpenAIRelayClient"})

	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		breaker: circuitbreaker.New[[]domain.Recommendation](circuitbreaker.Config{
			Name:             "openai",
			FailureThreshold: 3,
			OpenTimeout:      time.Minute,
			OnStateChange: func(name, from, to string) {
				breakerLogger.Warn("Circuit breaker state changed", port.Fields{"breaker": name, "from": from, "to": to})
			},
		}),
	}
}

func (c *Client) Recommend(ctx context.Context, req domain.RecommendationRequest) ([]domain.Recommendation, error) {
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component": "OpenAIRelayClient",
		"model":     c.cfg.Model,
	})
	if c.cfg.APIKey == "" {
		return nil, ErrNotConfigured
	}

	prompt, err := renderPrompt(req)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	recs, err := c.breaker.Execute(func() ([]domain.Recommendation, error) {
		return c.complete(ctx, prompt)
	})
	if err != nil {
		if circuitbreaker.IsOpen(err) {
			logger.Warn("Relay skipped, circuit breaker is open", nil)
		}
		return nil, err
	}

	logger.Info("Recommendations received", port.Fields{
		"candidates":      len(req.TopCandidates),
		"recommendations": len(recs),
		"duration_ms":     time.Since(start).Milliseconds(),
	})
	return recs, nil
}

func renderPrompt(req domain.RecommendationRequest) (string, error) {
	user := toUserRequirements(req.UserReq)
	profiles := req.RegionProfiles
	if profiles == nil {
		profiles = map[string]map[string]any{}
	}

	data := map[string]string{}
	for name, v := range map[string]any{
		"UserReq":         user,
		"Candidates":      toCandidates(req.TopCandidates),
		"RegionProfiles":  profiles,
		"ActiveLifestyle": user.ActiveLifestyle,
	} {
		raw, err := json.Marshal(v)
		if err != nil {
			return "", fmt.Errorf("marshal %s for prompt: %w", name, err)
		}
		data[name] = string(raw)
	}

	var b strings.Builder
	if err := promptTemplate.Execute(&b, data); err != nil {
		return "", fmt.Errorf("render prompt: %w", err)
	}
	return b.String(), nil
}

func (c *Client) complete(ctx context.Context, prompt string) ([]domain.Recommendation, error) {
	body, err := json.Marshal(chatCompletionRequest{
		Model:          c.cfg.Model,
		Messages:       []chatMessage{{Role: "user", Content: prompt}},
		ResponseFormat: responseFormat{Type: "json_object"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal chat request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	if traceID := contextkeys.TraceIDFromContext(ctx); traceID != "" {
		httpReq.Header.Set("X-Trace-ID", traceID)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("openai request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read openai response: %w", err)
	}

	var parsed chatCompletionResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("openai returned status %d with undecodable body: %w", resp.StatusCode, err)
	}
	if parsed.Error != nil {
		return nil, fmt.Errorf("openai error (status %d): %s", resp.StatusCode, parsed.Error.Message)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("openai returned non-success status code %d", resp.StatusCode)
	}
	if len(parsed.Choices) == 0 {
		return nil, errors.New("openai response has no choices")
	}

	return parseContent(parsed.Choices[0].Message.Content)
}

// parseContent проверяет ответ модели по контракту и переводит его в доменные рекомендации
func parseContent(content string) ([]domain.Recommendation, error) {
	content = stripCodeFence(content)

	if err := contracts.Validate(contracts.RecommendationsResponseV1, []byte(content)); err != nil {
		return nil, fmt.Errorf("model output violates contract: %w", err)
	}

	var out recommendationsContent
	if err := json.Unmarshal([]byte(content), &out); err != nil {
		return nil, fmt.Errorf("failed to decode model output: %w", err)
	}
	if out.Error != nil {
		return nil, fmt.Errorf("model output carries error field: %v", out.Error)
	}

	recs := make([]domain.Recommendation, 0, len(out.Recommendations))
	for _, r := range out.Recommendations {
		keyword := strings.TrimSpace(r.Keyword)
		if keyword == "" {
			continue
		}
		recs = append(recs, domain.Recommendation{Keyword: keyword, Reason: strings.TrimSpace(r.Reason)})
	}
	return recs, nil
}

// модель иногда оборачивает JSON в ```json ... ```
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "```"))
}
