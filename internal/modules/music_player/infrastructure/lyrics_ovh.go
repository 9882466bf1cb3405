package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sglre6355/gabby/internal/modules/music_player/application/ports"
	"github.com/sglre6355/gabby/internal/modules/music_player/domain"
)

// DefaultLyricsAPIURL is the base URL of the lyrics.ovh API.
const DefaultLyricsAPIURL = "https://api.lyrics.ovh/v1"

// OVHLyricsClient fetches lyrics from the lyrics.ovh API.
type OVHLyricsClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewOVHLyricsClient creates a new OVHLyricsClient.
func NewOVHLyricsClient(baseURL string) *OVHLyricsClient {
	if baseURL == "" {
		baseURL = DefaultLyricsAPIURL
	}
	return &OVHLyricsClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

type ovhLyricsResponse struct {
	Lyrics string `json:"lyrics"`
	Error  string `json:"error"`
}

// FetchLyrics returns the lyrics for the track, or "" if the API has none.
func (c *OVHLyricsClient) FetchLyrics(ctx context.Context, track *domain.Track) (string, error) {
	artist, title := lyricsSearchTerms(track)
	if title == "" {
		return "", nil
	}

	endpoint := c.baseURL + "/" + url.PathEscape(artist) + "/" + url.PathEscape(title)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create lyrics request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to request lyrics: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", nil
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("lyrics API returned status %d", resp.StatusCode)
	}

	var body ovhLyricsResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("failed to decode lyrics response: %w", err)
	}

	return strings.TrimSpace(strings.ReplaceAll(body.Lyrics, "\r\n", "\n")), nil
}

// lyricsSearchTerms derives artist and title from the track metadata.
// YouTube titles often carry "Artist - Title", which beats the channel name.
func lyricsSearchTerms(track *domain.Track) (artist, title string) {
	artist = strings.TrimSpace(strings.TrimSuffix(track.Author, " - Topic"))
	title = strings.TrimSpace(track.Title)

	if before, after, ok := strings.Cut(title, " - "); ok {
		artist = strings.TrimSpace(before)
		title = strings.TrimSpace(after)
	}

	// Drop trailing "(Official Video)" style annotations.
	if i := strings.IndexAny(title, "([【"); i > 0 {
		title = strings.TrimSpace(title[:i])
	}

	return artist, title
}

// Ensure OVHLyricsClient implements ports.LyricsProvider.
var _ ports.LyricsProvider = (*OVHLyricsClient)(nil)
