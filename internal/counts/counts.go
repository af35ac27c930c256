// Package counts derives word and page counts from page surfaces.
package counts

import "strings"

// Page is anything with rendered plain text
type Page interface {
	PlainText() string
}

// Counts is a snapshot of the manuscript totals for the active chapter
type Counts struct {
	PageCount int
	WordCount int
}

// Words joins the pages' plain text with spaces and counts whitespace
// separated tokens. It is recomputed from scratch on every call.
func Words[P Page](pages []P) int {
	if len(pages) == 0 {
		return 0
	}
	texts := make([]string, len(pages))
	for i, p := range pages {
		texts[i] = p.PlainText()
	}
	return len(strings.Fields(strings.TrimSpace(strings.Join(texts, " "))))
}

// Pages returns the number of surfaces
func Pages[P Page](pages []P) int {
	return len(pages)
}

// Of computes both counts
func Of[P Page](pages []P) Counts {
	return Counts{PageCount: Pages(pages), WordCount: Words(pages)}
}
