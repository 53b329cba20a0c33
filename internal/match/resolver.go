// Package match selects the best catalog entry for an extracted track
// candidate. Scoring is case-insensitive and punctuation-normalized, so
// "don't stop me now" and "Don't Stop Me Now!" compare as equals.
package match

import (
	"context"
	"log/slog"

	"github.com/sydlexius/tracklink/internal/catalog"
	"github.com/sydlexius/tracklink/internal/track"
)

// DefaultConfidenceThreshold is the minimum similarity a catalog entry needs
// to be accepted as a match.
const DefaultConfidenceThreshold = 0.6

// Config holds match selection settings.
type Config struct {
	// ConfidenceThreshold is the minimum acceptable similarity in (0, 1].
	// Entries scoring below it are rejected even when they are the best
	// available.
	ConfidenceThreshold float64
}

// DefaultConfig returns the matching configuration used when none is given.
func DefaultConfig() Config {
	return Config{ConfidenceThreshold: DefaultConfidenceThreshold}
}

// Result is a selected catalog entry together with the confidence that drove
// the selection and the candidate that produced it.
type Result struct {
	Entry      catalog.Entry
	Confidence float64
	Candidate  track.Candidate
}

// Resolver scores catalog search results against candidates and selects the
// single best match. A nil *Result with a nil error from Resolve means no
// entry qualified.
type Resolver struct {
	search catalog.Searcher
	config Config
	logger *slog.Logger
}

// NewResolver creates a resolver around the given search capability.
func NewResolver(search catalog.Searcher, config Config, logger *slog.Logger) *Resolver {
	if config.ConfidenceThreshold <= 0 {
		config.ConfidenceThreshold = DefaultConfidenceThreshold
	}
	return &Resolver{
		search: search,
		config: config,
		logger: logger.With(slog.String("component", "resolver")),
	}
}

// Resolve queries the search capability for the candidate and picks the
// highest-scoring entry. Ties break toward higher popularity, then toward the
// earlier entry in the result order, so selection is deterministic for a
// given candidate and result sequence. Search errors propagate unchanged;
// retry policy belongs to the caller.
func (r *Resolver) Resolve(ctx context.Context, c track.Candidate) (*Result, error) {
	entries, err := r.search.Search(ctx, c.Artist, c.Title)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		r.logger.Debug("no catalog entries for candidate",
			slog.String("title", c.Title),
			slog.String("artist", c.Artist))
		return nil, nil
	}

	best := 0
	bestScore := Similarity(c, entries[0])
	for i, e := range entries[1:] {
		score := Similarity(c, e)
		if score > bestScore || (score == bestScore && e.Popularity > entries[best].Popularity) {
			best = i + 1
			bestScore = score
		}
	}

	if bestScore < r.config.ConfidenceThreshold {
		r.logger.Info("best catalog entry below confidence threshold",
			slog.String("title", c.Title),
			slog.String("artist", c.Artist),
			slog.String("rejected", entries[best].Title),
			slog.Float64("score", bestScore),
			slog.Float64("threshold", r.config.ConfidenceThreshold))
		return nil, nil
	}

	return &Result{Entry: entries[best], Confidence: bestScore, Candidate: c}, nil
}
