package match

import (
	"math"
	"testing"

	"github.com/sydlexius/tracklink/internal/catalog"
	"github.com/sydlexius/tracklink/internal/track"
)

func TestSimilarity(t *testing.T) {
	tests := []struct {
		name      string
		candidate track.Candidate
		entry     catalog.Entry
		want      float64
	}{
		{
			name:      "exact match with artist",
			candidate: track.Candidate{Artist: "Daft Punk", Title: "One More Time"},
			entry:     catalog.Entry{Artist: "Daft Punk", Title: "One More Time"},
			want:      1.0,
		},
		{
			name:      "case and punctuation differences score equal",
			candidate: track.Candidate{Title: "dont stop me now"},
			entry:     catalog.Entry{Artist: "Queen", Title: "Don't Stop Me Now!"},
			want:      1.0,
		},
		{
			name:      "missing artist scores title alone",
			candidate: track.Candidate{Title: "One More Time"},
			entry:     catalog.Entry{Artist: "Somebody Else", Title: "One More Time"},
			want:      1.0,
		},
		{
			name:      "disjoint titles score zero",
			candidate: track.Candidate{Title: "abc"},
			entry:     catalog.Entry{Title: "xyz"},
			want:      0.0,
		},
		{
			name:      "cyrillic title matches case-insensitively",
			candidate: track.Candidate{Artist: "Молчат Дома", Title: "Судно"},
			entry:     catalog.Entry{Artist: "Молчат Дома", Title: "СУДНО"},
			want:      1.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Similarity(tt.candidate, tt.entry)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Similarity() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSimilarityOrdersVariantsByCloseness(t *testing.T) {
	candidate := track.Candidate{Artist: "Daft Punk", Title: "One More Time"}

	exact := Similarity(candidate, catalog.Entry{Artist: "Daft Punk", Title: "One More Time"})
	live := Similarity(candidate, catalog.Entry{Artist: "Daft Punk", Title: "One More Time (Live)"})
	other := Similarity(candidate, catalog.Entry{Artist: "Daft Punk", Title: "Around the World"})

	if !(exact > live) {
		t.Errorf("exact score %v not above live variant score %v", exact, live)
	}
	if !(live > other) {
		t.Errorf("live variant score %v not above unrelated title score %v", live, other)
	}
	if live <= 0 || live >= 1 {
		t.Errorf("live variant score %v outside (0, 1)", live)
	}
}

func TestSimilarityArtistMismatchLowersScore(t *testing.T) {
	candidate := track.Candidate{Artist: "Daft Punk", Title: "One More Time"}
	entry := catalog.Entry{Artist: "Completely Unrelated", Title: "One More Time"}

	got := Similarity(candidate, entry)
	if got >= 1.0 {
		t.Errorf("Similarity() = %v, want below 1.0 for mismatched artist", got)
	}
	if got < titleWeight {
		t.Errorf("Similarity() = %v, want at least %v when the title matches exactly", got, titleWeight)
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Don't Stop Me Now!", "dont stop me now"},
		{"  ONE   MORE\tTIME ", "one more time"},
		{"(Live) - 2007", "live 2007"},
		{"AC/DC", "acdc"},
		{"🎵🎵", ""},
		{"", ""},
	}

	for _, tt := range tests {
		if got := normalize(tt.in); got != tt.want {
			t.Errorf("normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
