package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sglre6355/gabby/internal/modules/music_player/application/ports"
	"github.com/sglre6355/gabby/internal/modules/music_player/domain"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// DefaultGeniusAPIURL is the base URL of the Genius API.
const DefaultGeniusAPIURL = "https://api.genius.com"

// GeniusLyricsClient finds a track on Genius and reads the lyrics off its
// song page. The API only serves metadata, so the page itself is parsed.
type GeniusLyricsClient struct {
	token      string
	apiURL     string
	httpClient *http.Client
}

// NewGeniusLyricsClient creates a new GeniusLyricsClient authorised by the
// given client access token.
func NewGeniusLyricsClient(token, apiURL string) *GeniusLyricsClient {
	if apiURL == "" {
		apiURL = DefaultGeniusAPIURL
	}
	return &GeniusLyricsClient{
		token:  token,
		apiURL: strings.TrimSuffix(apiURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type geniusSearchResponse struct {
	Response struct {
		Hits []struct {
			Type   string `json:"type"`
			Result struct {
				URL string `json:"url"`
			} `json:"result"`
		} `json:"hits"`
	} `json:"response"`
}

// FetchLyrics returns the lyrics of the best Genius match, or "" if there is none.
func (c *GeniusLyricsClient) FetchLyrics(ctx context.Context, track *domain.Track) (string, error) {
	artist, title := lyricsSearchTerms(track)
	if title == "" {
		return "", nil
	}

	pageURL, err := c.search(ctx, strings.TrimSpace(artist+" "+title))
	if err != nil || pageURL == "" {
		return "", err
	}
	return c.scrape(ctx, pageURL)
}

// search returns the song page URL of the first song hit.
func (c *GeniusLyricsClient) search(ctx context.Context, query string) (string, error) {
	endpoint := c.apiURL + "/search?q=" + url.QueryEscape(query)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create Genius search request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to search Genius: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("lyrics search returned status %d", resp.StatusCode)
	}

	var body geniusSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("failed to decode Genius search response: %w", err)
	}

	for _, hit := range body.Response.Hits {
		if hit.Type == "song" && hit.Result.URL != "" {
			return hit.Result.URL, nil
		}
	}
	return "", nil
}

// scrape downloads the song page and extracts its lyrics.
func (c *GeniusLyricsClient) scrape(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create Genius page request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch Genius page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", nil
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("lyrics page returned status %d", resp.StatusCode)
	}

	return extractGeniusLyrics(resp.Body)
}

// extractGeniusLyrics collects the text of every lyrics container on a song
// page. Line breaks become newlines; annotations excluded from selection are
// dropped.
func extractGeniusLyrics(r io.Reader) (string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return "", fmt.Errorf("failed to parse Genius page: %w", err)
	}

	var sb strings.Builder
	var walk func(n *html.Node, inLyrics bool)
	walk = func(n *html.Node, inLyrics bool) {
		switch n.Type {
		case html.ElementNode:
			if hasAttr(n, "data-exclude-from-selection", "true") {
				return
			}
			if !inLyrics && hasAttr(n, "data-lyrics-container", "true") {
				if sb.Len() > 0 {
					sb.WriteByte('\n')
				}
				inLyrics = true
			}
			if inLyrics && n.DataAtom == atom.Br {
				sb.WriteByte('\n')
			}
		case html.TextNode:
			if inLyrics {
				sb.WriteString(n.Data)
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child, inLyrics)
		}
	}
	walk(doc, false)

	return strings.TrimSpace(sb.String()), nil
}

func hasAttr(n *html.Node, key, value string) bool {
	for _, attr := range n.Attr {
		if attr.Key == key && attr.Val == value {
			return true
		}
	}
	return false
}

// Ensure GeniusLyricsClient implements ports.LyricsProvider.
var _ ports.LyricsProvider = (*GeniusLyricsClient)(nil)
