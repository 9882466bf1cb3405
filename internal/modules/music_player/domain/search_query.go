package domain

import (
	"fmt"
	"strings"
)

// SearchSource selects where a query is resolved. A direct query carries a URL
// and no search prefix.
type SearchSource string

const (
	SourceYouTube      SearchSource = "ytsearch"
	SourceYouTubeMusic SearchSource = "ytmsearch"
	SourceSoundCloud   SearchSource = "scsearch"
	SourceDirect       SearchSource = ""
)

// ParseSearchSource maps a user-facing source name to a SearchSource.
// An empty name selects YouTube.
func ParseSearchSource(name string) (SearchSource, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "youtube", "yt":
		return SourceYouTube, nil
	case "youtube_music", "youtubemusic", "ytm":
		return SourceYouTubeMusic, nil
	case "soundcloud", "sc":
		return SourceSoundCloud, nil
	case "url", "direct":
		return SourceDirect, nil
	default:
		return SourceYouTube, fmt.Errorf("unknown search source %q", name)
	}
}

// String returns a readable source name.
func (s SearchSource) String() string {
	switch s {
	case SourceYouTube:
		return "YouTube"
	case SourceYouTubeMusic:
		return "YouTube Music"
	case SourceSoundCloud:
		return "SoundCloud"
	default:
		return "URL"
	}
}

// SearchQuery is a normalised query for the track resolver.
type SearchQuery struct {
	Term   string
	Source SearchSource
}

// NewSearchQuery builds a SearchQuery from user input. URLs always resolve
// directly; anything else is searched on source.
func NewSearchQuery(input string, source SearchSource) *SearchQuery {
	input = strings.TrimSpace(input)

	if isURL(input) {
		return &SearchQuery{Term: input, Source: SourceDirect}
	}
	if source == SourceDirect {
		source = SourceYouTube
	}
	return &SearchQuery{Term: input, Source: source}
}

// IsDirect reports whether the query is a URL.
func (q *SearchQuery) IsDirect() bool {
	return q.Source == SourceDirect
}

// IsValid reports whether the query has a term.
func (q *SearchQuery) IsValid() bool {
	return q.Term != ""
}

// Identifier returns the identifier string understood by Lavalink's load endpoint.
func (q *SearchQuery) Identifier() string {
	if q.IsDirect() {
		return q.Term
	}
	return string(q.Source) + ":" + q.Term
}

func isURL(input string) bool {
	return strings.HasPrefix(input, "http://") ||
		strings.HasPrefix(input, "https://") ||
		strings.HasPrefix(input, "www.")
}
