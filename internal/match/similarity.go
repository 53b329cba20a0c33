package match

import (
	"strings"
	"unicode"

	"github.com/agnivade/levenshtein"

	"github.com/sydlexius/tracklink/internal/catalog"
	"github.com/sydlexius/tracklink/internal/track"
)

// Weights applied when a candidate carries an artist. Title similarity
// dominates; artist similarity refines.
const (
	titleWeight  = 0.6
	artistWeight = 0.4
)

// Similarity scores how well a catalog entry matches a candidate, in [0, 1].
// Identical normalized strings score 1.0, fully disjoint strings 0.0.
// Candidates without an artist are scored on title alone.
func Similarity(c track.Candidate, e catalog.Entry) float64 {
	title := stringSimilarity(c.Title, e.Title)
	if c.Artist == "" {
		return title
	}
	artist := stringSimilarity(c.Artist, e.Artist)
	return titleWeight*title + artistWeight*artist
}

// stringSimilarity is Levenshtein similarity over normalized text, scaled by
// the longer string's length.
func stringSimilarity(a, b string) float64 {
	na, nb := normalize(a), normalize(b)
	if na == nb {
		return 1.0
	}
	if na == "" || nb == "" {
		return 0.0
	}

	dist := levenshtein.ComputeDistance(na, nb)
	longest := max(len([]rune(na)), len([]rune(nb)))
	return 1.0 - float64(dist)/float64(longest)
}

// normalize lowercases, drops punctuation and symbol runes, and collapses
// whitespace so cosmetic differences do not depress scores.
func normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	pendingSpace := false
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsSpace(r):
			pendingSpace = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			// dropped
		default:
			if pendingSpace && b.Len() > 0 {
				b.WriteByte(' ')
			}
			pendingSpace = false
			b.WriteRune(r)
		}
	}
	return b.String()
}
