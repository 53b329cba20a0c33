package deezer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sydlexius/tracklink/internal/catalog"
)

const (
	defaultBaseURL = "https://api.deezer.com"
	searchLimit    = 10

	// Deezer reports quota exhaustion as error code 4 inside an HTTP 200
	// response.
	quotaExceededCode = 4
)

// Adapter implements catalog.Searcher for Deezer's public API. No
// authentication is required, which makes it the convenient catalog for
// keyless deployments.
type Adapter struct {
	client  *http.Client
	limiter *catalog.RateLimiterMap
	logger  *slog.Logger
	baseURL string
}

// New creates a Deezer adapter with the default base URL.
func New(limiter *catalog.RateLimiterMap, logger *slog.Logger) *Adapter {
	return NewWithBaseURL(limiter, logger, defaultBaseURL)
}

// NewWithBaseURL creates a Deezer adapter with a custom base URL (for testing).
func NewWithBaseURL(limiter *catalog.RateLimiterMap, logger *slog.Logger, baseURL string) *Adapter {
	return &Adapter{
		client:  &http.Client{Timeout: 10 * time.Second},
		limiter: limiter,
		logger:  logger.With(slog.String("catalog", "deezer")),
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// Name returns the catalog identifier.
func (a *Adapter) Name() catalog.Name { return catalog.NameDeezer }

// Search queries Deezer's track search. Quoted field filters are used when an
// artist is known; a bare title search otherwise.
func (a *Adapter) Search(ctx context.Context, artist, title string) ([]catalog.Entry, error) {
	if title == "" {
		return nil, nil
	}

	if err := a.limiter.Wait(ctx, catalog.NameDeezer); err != nil {
		return nil, &catalog.ErrUnavailable{
			Catalog: catalog.NameDeezer,
			Cause:   fmt.Errorf("rate limiter: %w", err),
		}
	}

	q := title
	if artist != "" {
		q = fmt.Sprintf("artist:%q track:%q", artist, title)
	}
	params := url.Values{
		"q":     {q},
		"limit": {strconv.Itoa(searchLimit)},
	}
	reqURL := a.baseURL + "/search/track?" + params.Encode()

	body, err := a.doRequest(ctx, reqURL)
	if err != nil {
		return nil, err
	}

	var resp searchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &catalog.ErrUnavailable{
			Catalog: catalog.NameDeezer,
			Cause:   fmt.Errorf("parsing search response: %w", err),
		}
	}

	if resp.Error != nil {
		if resp.Error.Code == quotaExceededCode {
			return nil, &catalog.ErrRateLimited{Catalog: catalog.NameDeezer}
		}
		return nil, &catalog.ErrUnavailable{
			Catalog: catalog.NameDeezer,
			Cause:   fmt.Errorf("api error %d: %s", resp.Error.Code, resp.Error.Message),
		}
	}

	entries := make([]catalog.Entry, 0, len(resp.Data))
	for _, r := range resp.Data {
		entries = append(entries, catalog.Entry{
			ID:         strconv.Itoa(r.ID),
			Artist:     r.Artist.Name,
			Title:      r.Title,
			URL:        r.Link,
			Popularity: r.Rank,
			Duration:   time.Duration(r.Duration) * time.Second,
		})
	}

	a.logger.Debug("track search completed",
		slog.String("query", q),
		slog.Int("results", len(entries)))

	return entries, nil
}

// doRequest executes a GET request and returns the response body.
func (a *Adapter) doRequest(ctx context.Context, reqURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, &catalog.ErrUnavailable{Catalog: catalog.NameDeezer, Cause: err}
	}
	defer resp.Body.Close() //nolint:errcheck

	switch resp.StatusCode {
	case http.StatusOK:
		// continue
	case http.StatusTooManyRequests:
		return nil, &catalog.ErrRateLimited{Catalog: catalog.NameDeezer}
	default:
		return nil, &catalog.ErrUnavailable{
			Catalog: catalog.NameDeezer,
			Cause:   fmt.Errorf("unexpected status %d", resp.StatusCode),
		}
	}

	return io.ReadAll(io.LimitReader(resp.Body, 1*1024*1024))
}
