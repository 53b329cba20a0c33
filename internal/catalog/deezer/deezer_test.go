package deezer

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/sydlexius/tracklink/internal/catalog"
)

const searchPayload = `{
  "data": [
    {
      "id": 3135556,
      "title": "One More Time",
      "link": "https://www.deezer.com/track/3135556",
      "duration": 320,
      "rank": 956167,
      "artist": {"id": 27, "name": "Daft Punk"},
      "album": {"id": 302127, "title": "Discovery"},
      "type": "track"
    },
    {
      "id": 414038132,
      "title": "One More Time (Live)",
      "link": "https://www.deezer.com/track/414038132",
      "duration": 305,
      "rank": 340911,
      "artist": {"id": 27, "name": "Daft Punk"},
      "album": {"id": 49948752, "title": "Alive 2007"},
      "type": "track"
    }
  ],
  "total": 2
}`

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search/track" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")

		switch r.URL.Query().Get("q") {
		case "no-results-query":
			_, _ = w.Write([]byte(`{"data":[],"total":0}`))
		case "quota-query":
			_, _ = w.Write([]byte(`{"error":{"type":"Exception","message":"Quota limit exceeded","code":4}}`))
		case "error-query":
			_, _ = w.Write([]byte(`{"error":{"type":"DataException","message":"no data","code":800}}`))
		default:
			_, _ = w.Write([]byte(searchPayload))
		}
	}))
}

func newTestAdapter(t *testing.T, baseURL string) *Adapter {
	t.Helper()
	limiter := catalog.NewRateLimiterMap()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	return NewWithBaseURL(limiter, logger, baseURL)
}

func TestName(t *testing.T) {
	a := newTestAdapter(t, "http://localhost")
	if a.Name() != catalog.NameDeezer {
		t.Errorf("expected %q, got %q", catalog.NameDeezer, a.Name())
	}
}

func TestSearch(t *testing.T) {
	srv := newTestServer(t)
	defer srv.Close()
	a := newTestAdapter(t, srv.URL)

	entries, err := a.Search(context.Background(), "Daft Punk", "One More Time")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}

	first := entries[0]
	if first.ID != "3135556" {
		t.Errorf("expected track ID 3135556, got %q", first.ID)
	}
	if first.Artist != "Daft Punk" {
		t.Errorf("expected artist Daft Punk, got %q", first.Artist)
	}
	if first.Title != "One More Time" {
		t.Errorf("expected title One More Time, got %q", first.Title)
	}
	if first.URL != "https://www.deezer.com/track/3135556" {
		t.Errorf("unexpected URL %q", first.URL)
	}
	if first.Popularity != 956167 {
		t.Errorf("expected popularity 956167, got %d", first.Popularity)
	}
	if first.Duration != 320*time.Second {
		t.Errorf("unexpected duration %s", first.Duration)
	}
}

func TestSearchNoResults(t *testing.T) {
	srv := newTestServer(t)
	defer srv.Close()
	a := newTestAdapter(t, srv.URL)

	entries, err := a.Search(context.Background(), "", "no-results-query")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected 0 entries, got %d", len(entries))
	}
}

func TestSearchEmptyTitle(t *testing.T) {
	srv := newTestServer(t)
	defer srv.Close()
	a := newTestAdapter(t, srv.URL)

	entries, err := a.Search(context.Background(), "Daft Punk", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entries != nil {
		t.Errorf("expected nil entries for empty title")
	}
}

func TestSearchQuotaExceeded(t *testing.T) {
	srv := newTestServer(t)
	defer srv.Close()
	a := newTestAdapter(t, srv.URL)

	_, err := a.Search(context.Background(), "", "quota-query")
	if err == nil {
		t.Fatal("expected error for quota response")
	}

	var rateLimited *catalog.ErrRateLimited
	if !errors.As(err, &rateLimited) {
		t.Errorf("expected ErrRateLimited, got %T: %v", err, err)
	}
}

func TestSearchAPIError(t *testing.T) {
	srv := newTestServer(t)
	defer srv.Close()
	a := newTestAdapter(t, srv.URL)

	_, err := a.Search(context.Background(), "", "error-query")
	if err == nil {
		t.Fatal("expected error for api error response")
	}

	var unavailable *catalog.ErrUnavailable
	if !errors.As(err, &unavailable) {
		t.Errorf("expected ErrUnavailable, got %T: %v", err, err)
	}
}

func TestSearchServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()
	a := newTestAdapter(t, srv.URL)

	_, err := a.Search(context.Background(), "", "one more time")
	if err == nil {
		t.Fatal("expected error for 500 response")
	}

	var unavailable *catalog.ErrUnavailable
	if !errors.As(err, &unavailable) {
		t.Errorf("expected ErrUnavailable, got %T: %v", err, err)
	}
}

func TestSearchRateLimitedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()
	a := newTestAdapter(t, srv.URL)

	_, err := a.Search(context.Background(), "", "one more time")
	if err == nil {
		t.Fatal("expected error for 429 response")
	}

	var rateLimited *catalog.ErrRateLimited
	if !errors.As(err, &rateLimited) {
		t.Errorf("expected ErrRateLimited, got %T: %v", err, err)
	}
}
