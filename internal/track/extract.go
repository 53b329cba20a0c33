// Package track extracts normalized track candidates from chat message text.
package track

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultMaxCandidates bounds how many candidates a single message may yield,
// which in turn bounds downstream catalog queries.
const DefaultMaxCandidates = 3

// Candidate is a normalized artist/title guess derived from one span of
// message text. Title is never empty; Artist may be. Raw preserves the span
// the candidate came from.
type Candidate struct {
	Artist string
	Title  string
	Raw    string
}

// dashes are the runes accepted as "artist - title" delimiters: hyphen-minus,
// en dash, em dash.
const dashes = "-–—"

var (
	byMarker   = regexp.MustCompile(`(?i)\s+by\s+`)
	featMarker = regexp.MustCompile(`(?i)\s(?:ft\.?|feat\.?|featuring)\s`)
)

// Extract parses message text into an ordered sequence of track candidates.
// Each non-empty line yields at most one candidate: "artist - title" around
// the first dash, "title by artist" around the last "by" marker, or the whole
// line as a bare title. At most max candidates are returned; a non-positive
// max falls back to DefaultMaxCandidates. Empty or whitespace-only text
// yields none. Pure function: no I/O, deterministic.
func Extract(text string, max int) []Candidate {
	if max <= 0 {
		max = DefaultMaxCandidates
	}

	var candidates []Candidate
	for _, line := range strings.Split(text, "\n") {
		span := strings.TrimSpace(line)
		if span == "" {
			continue
		}

		artist, title := splitArtistTitle(span)
		if title == "" {
			continue
		}

		candidates = append(candidates, Candidate{
			Artist: trimFeatured(artist),
			Title:  title,
			Raw:    span,
		})
		if len(candidates) == max {
			break
		}
	}
	return candidates
}

// splitArtistTitle splits one span into an optional artist and a title, both
// cleaned. A delimiter only counts when it leaves non-empty text on both
// sides; otherwise the whole span becomes the title. Only the first dash
// splits, so any later dashes stay inside the title.
func splitArtistTitle(span string) (artist, title string) {
	if i := strings.IndexAny(span, dashes); i >= 0 {
		_, size := utf8.DecodeRuneInString(span[i:])
		left, right := clean(span[:i]), clean(span[i+size:])
		if left != "" && right != "" {
			return left, right
		}
	}

	// "title by artist": the last marker splits, so titles that themselves
	// contain "by" survive intact.
	if locs := byMarker.FindAllStringIndex(span, -1); len(locs) > 0 {
		last := locs[len(locs)-1]
		left, right := clean(span[:last[0]]), clean(span[last[1]:])
		if left != "" && right != "" {
			return right, left
		}
	}

	return "", clean(span)
}

// trimFeatured cuts a featuring clause from the artist segment so catalog
// queries carry the primary artist only.
func trimFeatured(artist string) string {
	if loc := featMarker.FindStringIndex(artist); loc != nil {
		return clean(artist[:loc[0]])
	}
	return artist
}

// clean collapses interior whitespace and strips surrounding whitespace,
// punctuation, and symbol runes. Interior punctuation survives, so titles
// like "Don't Stop Me Now" keep their apostrophes.
func clean(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	return strings.TrimFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsPunct(r) || unicode.IsSymbol(r)
	})
}
