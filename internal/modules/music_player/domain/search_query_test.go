package domain

import "testing"

func TestNewSearchQuery(t *testing.T) {
	tests := []struct {
		name           string
		input          string
		source         SearchSource
		wantTerm       string
		wantSource     SearchSource
		wantIdentifier string
	}{
		{
			name:           "search term on youtube",
			input:          "never gonna give you up",
			source:         SourceYouTube,
			wantTerm:       "never gonna give you up",
			wantSource:     SourceYouTube,
			wantIdentifier: "ytsearch:never gonna give you up",
		},
		{
			name:           "whitespace is trimmed",
			input:          "  hello world  ",
			source:         SourceSoundCloud,
			wantTerm:       "hello world",
			wantSource:     SourceSoundCloud,
			wantIdentifier: "scsearch:hello world",
		},
		{
			name:           "https URL ignores source",
			input:          "https://youtube.com/watch?v=dQw4w9WgXcQ",
			source:         SourceSoundCloud,
			wantTerm:       "https://youtube.com/watch?v=dQw4w9WgXcQ",
			wantSource:     SourceDirect,
			wantIdentifier: "https://youtube.com/watch?v=dQw4w9WgXcQ",
		},
		{
			name:           "www URL",
			input:          "www.youtube.com/watch?v=abc",
			source:         SourceYouTube,
			wantTerm:       "www.youtube.com/watch?v=abc",
			wantSource:     SourceDirect,
			wantIdentifier: "www.youtube.com/watch?v=abc",
		},
		{
			name:           "direct source without URL falls back to youtube",
			input:          "lofi beats",
			source:         SourceDirect,
			wantTerm:       "lofi beats",
			wantSource:     SourceYouTube,
			wantIdentifier: "ytsearch:lofi beats",
		},
		{
			name:           "youtube music",
			input:          "city pop",
			source:         SourceYouTubeMusic,
			wantTerm:       "city pop",
			wantSource:     SourceYouTubeMusic,
			wantIdentifier: "ytmsearch:city pop",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := NewSearchQuery(tt.input, tt.source)

			if q.Term != tt.wantTerm {
				t.Errorf("Term = %q, expected %q", q.Term, tt.wantTerm)
			}
			if q.Source != tt.wantSource {
				t.Errorf("Source = %q, expected %q", q.Source, tt.wantSource)
			}
			if got := q.Identifier(); got != tt.wantIdentifier {
				t.Errorf("Identifier() = %q, expected %q", got, tt.wantIdentifier)
			}
		})
	}
}

func TestSearchQuery_IsValid(t *testing.T) {
	if NewSearchQuery("   ", SourceYouTube).IsValid() {
		t.Error("expected blank query to be invalid")
	}
	if !NewSearchQuery("song", SourceYouTube).IsValid() {
		t.Error("expected non-empty query to be valid")
	}
}

func TestParseSearchSource(t *testing.T) {
	tests := []struct {
		input   string
		want    SearchSource
		wantErr bool
	}{
		{"", SourceYouTube, false},
		{"youtube", SourceYouTube, false},
		{"YouTube", SourceYouTube, false},
		{"ytm", SourceYouTubeMusic, false},
		{"youtube_music", SourceYouTubeMusic, false},
		{"soundcloud", SourceSoundCloud, false},
		{"url", SourceDirect, false},
		{"spotify", SourceYouTube, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseSearchSource(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseSearchSource(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseSearchSource(%q) = %q, expected %q", tt.input, got, tt.want)
			}
		})
	}
}
