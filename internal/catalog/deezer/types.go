package deezer

// searchResponse is the JSON response from the Deezer track search endpoint.
type searchResponse struct {
	Data  []trackResult `json:"data"`
	Total int           `json:"total"`
	Next  string        `json:"next,omitempty"`
	Error *errorInfo    `json:"error,omitempty"`
}

// trackResult is a single track entry from a Deezer search.
type trackResult struct {
	ID       int          `json:"id"`
	Title    string       `json:"title"`
	Link     string       `json:"link"`
	Duration int          `json:"duration"`
	Rank     int          `json:"rank"`
	Artist   artistResult `json:"artist"`
	Album    albumResult  `json:"album"`
	Type     string       `json:"type"`
}

// artistResult is the artist object embedded in a track result.
type artistResult struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// albumResult is the album object embedded in a track result.
type albumResult struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
}

// errorInfo is Deezer's error envelope, which arrives with HTTP 200.
type errorInfo struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}
