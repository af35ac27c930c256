package text

import (
	"strings"
	"unicode"
)

// WidthFunc returns the advance width of s at the shaper's font
type WidthFunc func(s string) float64

// Font represents a font used for line breaking
type Font struct {
	Family     string
	Style      string
	Size       float64
	LineHeight float64
}

// LineAdvance is the vertical distance between baselines
func (f Font) LineAdvance() float64 {
	lh := f.LineHeight
	if lh <= 0 {
		lh = 1.2
	}
	return f.Size * lh
}

// TextShaper breaks text into lines using a width measurement
type TextShaper struct {
	width WidthFunc
}

// NewTextShaper creates a new text shaper. A nil width func falls back to a
// fixed advance of 0.5em per rune, which is only useful in tests.
func NewTextShaper(width WidthFunc, font Font) *TextShaper {
	if width == nil {
		width = func(s string) float64 {
			return float64(len([]rune(s))) * font.Size * 0.5
		}
	}
	return &TextShaper{width: width}
}

// SplitTextToLines greedily fills lines up to maxWidth, breaking at
// whitespace. A single word wider than maxWidth is broken by rune.
func (s *TextShaper) SplitTextToLines(text string, maxWidth float64) []string {
	words := splitIntoWords(text)
	if len(words) == 0 {
		return []string{""}
	}
	if maxWidth <= 0 {
		return []string{strings.Join(words, " ")}
	}

	var lines []string
	currentLine := ""
	for _, word := range words {
		candidate := word
		if currentLine != "" {
			candidate = currentLine + " " + word
		}
		if s.width(candidate) <= maxWidth {
			currentLine = candidate
			continue
		}
		if currentLine != "" {
			lines = append(lines, currentLine)
			currentLine = ""
		}
		if s.width(word) <= maxWidth {
			currentLine = word
			continue
		}
		pieces := s.breakWord(word, maxWidth)
		lines = append(lines, pieces[:len(pieces)-1]...)
		currentLine = pieces[len(pieces)-1]
	}
	if currentLine != "" {
		lines = append(lines, currentLine)
	}
	return lines
}

func (s *TextShaper) breakWord(word string, maxWidth float64) []string {
	var pieces []string
	var cur []rune
	for _, r := range word {
		next := append(cur, r)
		if len(cur) > 0 && s.width(string(next)) > maxWidth {
			pieces = append(pieces, string(cur))
			cur = []rune{r}
			continue
		}
		cur = next
	}
	return append(pieces, string(cur))
}

// splitIntoWords splits text into words
func splitIntoWords(text string) []string {
	return strings.FieldsFunc(text, unicode.IsSpace)
}
