package spotify

// searchResponse is the JSON response from the Spotify track search endpoint.
type searchResponse struct {
	Tracks trackPage `json:"tracks"`
}

// trackPage is the paging object wrapping track search hits.
type trackPage struct {
	Items []trackItem `json:"items"`
	Total int         `json:"total"`
}

// trackItem is a single track object from the Spotify Web API.
type trackItem struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Artists      []artistItem `json:"artists"`
	Popularity   int          `json:"popularity"`
	DurationMS   int          `json:"duration_ms"`
	ExternalURLs externalURLs `json:"external_urls"`
}

// artistItem is the simplified artist object embedded in a track.
type artistItem struct {
	Name string `json:"name"`
}

// externalURLs carries the canonical open.spotify.com link.
type externalURLs struct {
	Spotify string `json:"spotify"`
}
