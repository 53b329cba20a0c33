// Package catalog defines the music catalog search capability shared by all
// catalog adapters.
package catalog

import (
	"context"
	"fmt"
	"time"
)

// Name uniquely identifies a catalog backend.
type Name string

// Known catalog names.
const (
	NameSpotify Name = "spotify"
	NameDeezer  Name = "deezer"
)

// AllNames returns all known catalog names in display order.
func AllNames() []Name {
	return []Name{NameSpotify, NameDeezer}
}

// DisplayName returns a human-readable name for the catalog.
func (n Name) DisplayName() string {
	switch n {
	case NameSpotify:
		return "Spotify"
	case NameDeezer:
		return "Deezer"
	default:
		return string(n)
	}
}

// Entry is a single track returned by a catalog search. Owned transiently per
// query; nothing persists it.
type Entry struct {
	ID         string
	Artist     string
	Title      string
	URL        string
	Popularity int
	Duration   time.Duration
}

// Searcher is the capability a catalog adapter provides: querying tracks by
// an optional artist and a required title.
type Searcher interface {
	// Name returns the unique catalog identifier.
	Name() Name

	// Search queries the catalog. artist may be empty. Result order is
	// meaningful: earlier entries win remaining ties during match selection.
	Search(ctx context.Context, artist, title string) ([]Entry, error)
}

// ErrUnavailable indicates the catalog could not serve this request (auth
// failure, server error, malformed response, network failure). Permanent for
// this request.
type ErrUnavailable struct {
	Catalog Name
	Cause   error
}

func (e *ErrUnavailable) Error() string {
	return fmt.Sprintf("catalog %s unavailable: %v", e.Catalog, e.Cause)
}

func (e *ErrUnavailable) Unwrap() error { return e.Cause }

// ErrRateLimited indicates the catalog throttled this request. Transient: the
// caller decides whether and when to retry.
type ErrRateLimited struct {
	Catalog    Name
	RetryAfter time.Duration
}

func (e *ErrRateLimited) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("catalog %s rate limited, retry after %s", e.Catalog, e.RetryAfter)
	}
	return fmt.Sprintf("catalog %s rate limited", e.Catalog)
}
