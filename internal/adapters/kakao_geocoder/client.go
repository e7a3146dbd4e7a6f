package kakao_geocoder

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"matjib-service/internal/contextkeys"
	"matjib-service/internal/core/domain"
	"matjib-service/internal/core/port"
	"matjib-service/pkg/circuitbreaker"

	gobreaker "github.com/sony/gobreaker/v2"
)

var ErrNotConfigured = errors.New("kakao rest api key is not configured")

type Config struct {
	RESTAPIKey string
	BaseURL    string
	Timeout    time.Duration
}

type keywordSearchResponse struct {
	Documents []struct {
		PlaceName   string `json:"place_name"`
		AddressName string `json:"address_name"`
		X           string `json:"x"`
		Y           string `json:"y"`
	} `json:"documents"`
}

// Client переводит название места в координаты через поиск по ключевому слову Kakao Local
type Client struct {
	cfg        Config
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[*domain.CommuteAnchor]
}

func NewClient(cfg Config, logger port.LoggerPort) *Client {
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	breakerLogger := logger.WithFields(port.Fields{"component": "KakaoGeocoder"})

	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		breaker: circuitbreaker.New[*domain.CommuteAnchor](circuitbreaker.Config{
			Name: "kakao-local",
			OnStateChange: func(name, from, to string) {
				breakerLogger.Warn("Circuit breaker state changed", port.Fields{"breaker": name, "from": from, "to": to})
			},
		}),
	}
}

// Resolve берет первый найденный документ: x - долгота, y - широта
func (c *Client) Resolve(ctx context.Context, name string) (*domain.CommuteAnchor, error) {
	if c.cfg.RESTAPIKey == "" {
		return nil, ErrNotConfigured
	}

	anchor, err := c.breaker.Execute(func() (*domain.CommuteAnchor, error) {
		a, err := c.search(ctx, name)
		// "не найдено" - нормальный ответ сервиса, breaker его не считает
		if errors.Is(err, domain.ErrPlaceNotFound) {
			return nil, nil
		}
		return a, err
	})
	if err != nil {
		return nil, err
	}
	if anchor == nil {
		return nil, fmt.Errorf("%q: %w", name, domain.ErrPlaceNotFound)
	}
	return anchor, nil
}

func (c *Client) search(ctx context.Context, name string) (*domain.CommuteAnchor, error) {
	clientLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component": "KakaoGeocoder",
		"query":     name,
	})

	endpoint := c.cfg.BaseURL + "/v2/local/search/keyword.json?" + url.Values{"query": {name}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "KakaoAK "+c.cfg.RESTAPIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		clientLogger.Error("Failed to perform request to kakao local", err, nil)
		return nil, fmt.Errorf("kakao request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("kakao returned non-success status code %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var parsed keywordSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode kakao response: %w", err)
	}
	if len(parsed.Documents) == 0 {
		clientLogger.Debug("Place not found", nil)
		return nil, domain.ErrPlaceNotFound
	}

	doc := parsed.Documents[0]
	lng, errX := strconv.ParseFloat(doc.X, 64)
	lat, errY := strconv.ParseFloat(doc.Y, 64)
	if errX != nil || errY != nil {
		return nil, fmt.Errorf("kakao returned invalid coordinates x=%q y=%q", doc.X, doc.Y)
	}

	clientLogger.Debug("Place resolved", port.Fields{"place_name": doc.PlaceName, "lat": lat, "lng": lng})
	return &domain.CommuteAnchor{Name: name, Lat: lat, Lng: lng}, nil
}
