package services

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker"

	"github.com/marketpulse/core/internal/config"
	"github.com/marketpulse/core/pkg/logger"
)

// FetchClient retrieves JSON payloads from the upstream market-data
// source. Calls go through a circuit breaker so a flapping upstream
// trips fast instead of tying up job runs with timeouts.
type FetchClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker
	log     *logger.Logger
}

func NewFetchClient(cfg *config.Config, log *logger.Logger) *FetchClient {
	if log == nil {
		log = logger.New("fetch-client")
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "market-data-source",
		Timeout: 60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().
				Str("action", "breaker_state_change").
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Circuit breaker state changed")
		},
	})

	return &FetchClient{
		baseURL: cfg.External.BaseURL,
		apiKey:  cfg.External.APIKey,
		client: &http.Client{
			Timeout: time.Duration(cfg.External.Timeout) * time.Second,
		},
		breaker: breaker,
		log:     log,
	}
}

// FetchData retrieves the raw payload at url.
func (c *FetchClient) FetchData(url string) ([]byte, error) {
	body, err := c.breaker.Execute(func() (any, error) {
		return c.doFetch(url)
	})
	if err != nil {
		return nil, err
	}
	return body.([]byte), nil
}

// FetchJSON retrieves url and decodes the payload into out.
func (c *FetchClient) FetchJSON(url string, out any) error {
	data, err := c.FetchData(url)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// PagedURL builds the request URL for one page of a paginated dataset.
func (c *FetchClient) PagedURL(path string, page, pageSize int) string {
	return fmt.Sprintf("%s%s?page=%d&page_size=%d", c.baseURL, path, page, pageSize)
}

func (c *FetchClient) doFetch(url string) ([]byte, error) {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("upstream returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	c.log.Debug().
		Str("action", "fetch").
		Str("url", url).
		Int("status_code", resp.StatusCode).
		Int("bytes", len(body)).
		Dur("duration", time.Since(start)).
		Msg("Fetched upstream data")

	return body, nil
}
