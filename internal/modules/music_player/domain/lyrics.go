package domain

import (
	"iter"
	"strings"
	"unicode/utf8"
)

const (
	// DefaultLyricsMinChunk is the length at which a page is considered full.
	DefaultLyricsMinChunk = 1900
	// DefaultLyricsMaxChunk is the length a page may not reach by adding another line.
	DefaultLyricsMaxChunk = 3900
)

// Paginate splits text into pages of whole lines. Lengths are counted in runes.
//
// A page is emitted as soon as it reaches minChunk, and a line is never added
// to a non-empty page if the page would then reach maxChunk. A single line
// longer than maxChunk becomes its own page. Joining the pages with "\n"
// yields text again.
//
// The returned sequence can be ranged over any number of times.
func Paginate(text string, minChunk, maxChunk int) iter.Seq[string] {
	return func(yield func(string) bool) {
		var page []string
		pageLen := 0

		flush := func() bool {
			chunk := strings.Join(page, "\n")
			page = page[:0]
			pageLen = 0
			return yield(chunk)
		}

		for line := range strings.SplitSeq(text, "\n") {
			lineLen := utf8.RuneCountInString(line)

			if len(page) > 0 && pageLen+1+lineLen >= maxChunk {
				if !flush() {
					return
				}
			}

			if len(page) > 0 {
				pageLen++
			}
			page = append(page, line)
			pageLen += lineLen

			if pageLen >= minChunk {
				if !flush() {
					return
				}
			}
		}

		if len(page) > 0 {
			flush()
		}
	}
}
