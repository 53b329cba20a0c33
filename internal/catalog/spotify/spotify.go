package spotify

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

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/sydlexius/tracklink/internal/catalog"
)

const (
	defaultBaseURL  = "https://api.spotify.com"
	defaultTokenURL = "https://accounts.spotify.com/api/token"
	searchLimit     = 10
)

// Adapter implements catalog.Searcher for the Spotify Web API. Authentication
// uses the client-credentials flow; the token source caches the bearer token
// and refreshes it ahead of expiry.
type Adapter struct {
	client  *http.Client
	tokens  oauth2.TokenSource
	limiter *catalog.RateLimiterMap
	logger  *slog.Logger
	baseURL string
}

// New creates a Spotify adapter with the default endpoints.
func New(clientID, clientSecret string, limiter *catalog.RateLimiterMap, logger *slog.Logger) *Adapter {
	return NewWithURLs(clientID, clientSecret, limiter, logger, defaultBaseURL, defaultTokenURL)
}

// NewWithURLs creates a Spotify adapter with custom API and token endpoints
// (for testing).
func NewWithURLs(clientID, clientSecret string, limiter *catalog.RateLimiterMap, logger *slog.Logger, baseURL, tokenURL string) *Adapter {
	cc := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     tokenURL,
		AuthStyle:    oauth2.AuthStyleInHeader,
	}
	tokenCtx := context.WithValue(context.Background(), oauth2.HTTPClient,
		&http.Client{Timeout: 10 * time.Second})

	return &Adapter{
		client:  &http.Client{Timeout: 10 * time.Second},
		tokens:  cc.TokenSource(tokenCtx),
		limiter: limiter,
		logger:  logger.With(slog.String("catalog", "spotify")),
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// Name returns the catalog identifier.
func (a *Adapter) Name() catalog.Name { return catalog.NameSpotify }

// Search queries Spotify's track search. Field filters are used when an
// artist is known; a bare title search otherwise.
func (a *Adapter) Search(ctx context.Context, artist, title string) ([]catalog.Entry, error) {
	if title == "" {
		return nil, nil
	}

	if err := a.limiter.Wait(ctx, catalog.NameSpotify); err != nil {
		return nil, &catalog.ErrUnavailable{
			Catalog: catalog.NameSpotify,
			Cause:   fmt.Errorf("rate limiter: %w", err),
		}
	}

	q := title
	if artist != "" {
		q = fmt.Sprintf("track:%q artist:%q", title, artist)
	}
	params := url.Values{
		"q":     {q},
		"type":  {"track"},
		"limit": {strconv.Itoa(searchLimit)},
	}
	reqURL := a.baseURL + "/v1/search?" + params.Encode()

	body, err := a.doRequest(ctx, reqURL)
	if err != nil {
		return nil, err
	}

	var resp searchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &catalog.ErrUnavailable{
			Catalog: catalog.NameSpotify,
			Cause:   fmt.Errorf("parsing search response: %w", err),
		}
	}

	entries := make([]catalog.Entry, 0, len(resp.Tracks.Items))
	for _, item := range resp.Tracks.Items {
		entries = append(entries, catalog.Entry{
			ID:         item.ID,
			Artist:     joinArtists(item.Artists),
			Title:      item.Name,
			URL:        trackURL(item),
			Popularity: item.Popularity,
			Duration:   time.Duration(item.DurationMS) * time.Millisecond,
		})
	}

	a.logger.Debug("track search completed",
		slog.String("query", q),
		slog.Int("results", len(entries)))

	return entries, nil
}

// doRequest executes an authenticated GET request and returns the response body.
func (a *Adapter) doRequest(ctx context.Context, reqURL string) ([]byte, error) {
	tok, err := a.tokens.Token()
	if err != nil {
		return nil, &catalog.ErrUnavailable{
			Catalog: catalog.NameSpotify,
			Cause:   fmt.Errorf("fetching token: %w", err),
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	tok.SetAuthHeader(req)

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, &catalog.ErrUnavailable{Catalog: catalog.NameSpotify, Cause: err}
	}
	defer resp.Body.Close() //nolint:errcheck

	switch resp.StatusCode {
	case http.StatusOK:
		// continue
	case http.StatusTooManyRequests:
		return nil, &catalog.ErrRateLimited{
			Catalog:    catalog.NameSpotify,
			RetryAfter: retryAfter(resp),
		}
	default:
		return nil, &catalog.ErrUnavailable{
			Catalog: catalog.NameSpotify,
			Cause:   fmt.Errorf("unexpected status %d", resp.StatusCode),
		}
	}

	return io.ReadAll(io.LimitReader(resp.Body, 1*1024*1024))
}

// retryAfter parses the Retry-After header as seconds, zero when absent or
// malformed.
func retryAfter(resp *http.Response) time.Duration {
	v := resp.Header.Get("Retry-After")
	if v == "" {
		return 0
	}
	secs, err := strconv.Atoi(v)
	if err != nil || secs < 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

// joinArtists renders the artist list the way Spotify displays it.
func joinArtists(artists []artistItem) string {
	names := make([]string, 0, len(artists))
	for _, a := range artists {
		if a.Name != "" {
			names = append(names, a.Name)
		}
	}
	return strings.Join(names, ", ")
}

// trackURL prefers the canonical external URL, falling back to one built from
// the track ID. Empty when the track carries neither.
func trackURL(t trackItem) string {
	if t.ExternalURLs.Spotify != "" {
		return t.ExternalURLs.Spotify
	}
	if t.ID != "" {
		return "https://open.spotify.com/track/" + t.ID
	}
	return ""
}
