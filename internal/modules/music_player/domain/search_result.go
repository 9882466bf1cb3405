package domain

// SearchResultType represents what a load request produced.
type SearchResultType int

const (
	SearchResultTrack SearchResultType = iota
	SearchResultPlaylist
	SearchResultSearch
	SearchResultEmpty
	SearchResultError
)

// SearchResult is the outcome of resolving a SearchQuery.
type SearchResult struct {
	Type         SearchResultType
	PlaylistName string
	Tracks       []*Track
}

// IsEmpty returns true if the result holds no tracks.
func (r *SearchResult) IsEmpty() bool {
	return r == nil || len(r.Tracks) == 0
}

// Selection returns the tracks that resolving this result should enqueue:
// every track of a playlist, otherwise only the first one.
func (r *SearchResult) Selection() []*Track {
	if r.IsEmpty() {
		return nil
	}
	if r.Type == SearchResultPlaylist {
		return r.Tracks
	}
	return r.Tracks[:1]
}
