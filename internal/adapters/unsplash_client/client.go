package unsplash_client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"matjib-service/internal/contextkeys"
	"matjib-service/internal/core/domain"
	"matjib-service/internal/core/port"
	"matjib-service/pkg/circuitbreaker"

	gobreaker "github.com/sony/gobreaker/v2"
)

const (
	searchQuery = "apartment interior living room bedroom home"
	perPage     = 50
)

var ErrNotConfigured = errors.New("unsplash access key is not configured")

type Config struct {
	AccessKey string
	BaseURL   string
	Timeout   time.Duration
	// выдача запроса не зависит от объявления, поэтому ее можно держать в памяти; 0 - без кэша
	CacheTTL time.Duration
}

type photoDTO struct {
	URLs struct {
		Small string `json:"small"`
	} `json:"urls"`
	Description    *string `json:"description"`
	AltDescription *string `json:"alt_description"`
	Tags           []struct {
		Title string `json:"title"`
	} `json:"tags"`
}

type searchResponse struct {
	Results []photoDTO `json:"results"`
}

// Client ищет стоковые фото интерьеров
type Client struct {
	cfg        Config
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[[]domain.Photo]

	mu       sync.Mutex
	cached   []domain.Photo
	cachedAt time.Time
	now      func() time.Time
}

func NewClient(cfg Config, logger port.LoggerPort) *Client {
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	breakerLogger := logger.WithFields(port.Fields{"component": "UnsplashClient"})

	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		breaker: circuitbreaker.New[[]domain.Photo](circuitbreaker.Config{
			Name: "unsplash",
			OnStateChange: func(name, from, to string) {
				breakerLogger.Warn("Circuit breaker state changed", port.Fields{"breaker": name, "from": from, "to": to})
			},
		}),
		now: time.Now,
	}
}

// SearchPhotos возвращает сырую выдачу; фильтрация по словам делается в ядре
func (c *Client) SearchPhotos(ctx context.Context) ([]domain.Photo, error) {
	if c.cfg.AccessKey == "" {
		return nil, ErrNotConfigured
	}
	if photos, ok := c.fromCache(); ok {
		return photos, nil
	}

	photos, err := c.breaker.Execute(func() ([]domain.Photo, error) {
		return c.search(ctx)
	})
	if err != nil {
		return nil, err
	}

	c.store(photos)
	return photos, nil
}

func (c *Client) fromCache() ([]domain.Photo, bool) {
	if c.cfg.CacheTTL <= 0 {
		return nil, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cached == nil || c.now().Sub(c.cachedAt) > c.cfg.CacheTTL {
		return nil, false
	}
	return c.cached, true
}

func (c *Client) store(photos []domain.Photo) {
	if c.cfg.CacheTTL <= 0 {
		return
	}
	c.mu.Lock()
	c.cached = photos
	c.cachedAt = c.now()
	c.mu.Unlock()
}

func (c *Client) search(ctx context.Context) ([]domain.Photo, error) {
	clientLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component": "UnsplashClient",
		"method":    "SearchPhotos",
	})

	q := url.Values{}
	q.Set("query", searchQuery)
	q.Set("per_page", fmt.Sprint(perPage))
	q.Set("page", "1")
	q.Set("orientation", "landscape")
	q.Set("content_filter", "high")
	q.Set("order_by", "relevant")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"/search/photos?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Client-ID "+c.cfg.AccessKey)
	req.Header.Set("Accept-Version", "v1")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		clientLogger.Error("Failed to perform request to unsplash", err, nil)
		return nil, fmt.Errorf("unsplash request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("unsplash returned non-success status code %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var parsed searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode unsplash response: %w", err)
	}

	photos := make([]domain.Photo, len(parsed.Results))
	for i, r := range parsed.Results {
		p := domain.Photo{SmallURL: r.URLs.Small}
		if r.Description != nil {
			p.Description = *r.Description
		}
		if r.AltDescription != nil {
			p.AltDescription = *r.AltDescription
		}
		for _, t := range r.Tags {
			p.Tags = append(p.Tags, t.Title)
		}
		photos[i] = p
	}

	clientLogger.Debug("Unsplash search finished", port.Fields{"results": len(photos)})
	return photos, nil
}
