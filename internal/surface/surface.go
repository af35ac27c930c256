// Package surface models one page-sized editable region.
package surface

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/gompdf/manuscript/internal/parser/html"
	"github.com/gompdf/manuscript/internal/settle"
	"golang.org/x/text/unicode/norm"
)

// Metrics measures laid-out content for a page's text block
type Metrics interface {
	// ContentHeight is the unclipped height content needs
	ContentHeight(content string) float64
	// VisibleHeight is the height shown before content is clipped
	VisibleHeight() float64
}

// Surface is one editable page. Its display is clipped to the visible height
// except while it is being measured.
type Surface struct {
	content   string
	metrics   Metrics
	settle    *settle.Debouncer
	parser    *html.Parser
	clipped   bool
	listeners []func(*Surface)
}

// New creates an empty, clipped surface. Mutation notifications go through
// debouncer when one is given and are delivered synchronously otherwise.
func New(metrics Metrics, debouncer *settle.Debouncer) *Surface {
	return &Surface{
		metrics: metrics,
		settle:  debouncer,
		parser:  html.NewParser(),
		clipped: true,
	}
}

// OnSettled registers a listener called after a mutation settles
func (s *Surface) OnSettled(f func(*Surface)) {
	s.listeners = append(s.listeners, f)
}

// Content returns the page's markup
func (s *Surface) Content() string {
	return s.content
}

// PlainText returns the rendered text of the page
func (s *Surface) PlainText() string {
	return s.parser.PlainText(s.content)
}

// Clipped reports whether overflow is currently hidden
func (s *Surface) Clipped() bool {
	return s.clipped
}

// SetContent replaces the page content, as a programmatic load does
func (s *Surface) SetContent(content string) {
	s.content = content
	s.changed()
}

// Load replaces the content without a settle notification. The pagination
// engine uses it while it distributes stored content.
func (s *Surface) Load(content string) {
	s.content = content
}

// Type appends typed text at the end of the page
func (s *Surface) Type(text string) {
	s.content += html.EscapeText(norm.NFC.String(text))
	s.changed()
}

// Paste appends pasted text at the end of the page
func (s *Surface) Paste(text string) {
	if text == "" {
		return
	}
	s.content += html.EscapeText(norm.NFC.String(text))
	s.changed()
}

var trailingCharRef = regexp.MustCompile(`&(?:[a-zA-Z][a-zA-Z0-9]*|#[0-9]+|#[xX][0-9a-fA-F]+);$`)

// Backspace removes the last typed character. A trailing tag or character
// reference is removed whole.
func (s *Surface) Backspace() {
	if s.content == "" {
		return
	}
	c := s.content
	switch {
	case strings.HasSuffix(c, ">"):
		if i := strings.LastIndexByte(c, '<'); i >= 0 {
			c = c[:i]
		} else {
			c = c[:len(c)-1]
		}
	case trailingCharRef.MatchString(c):
		c = c[:strings.LastIndexByte(c, '&')]
	default:
		_, size := utf8.DecodeLastRuneInString(c)
		c = c[:len(c)-size]
	}
	s.content = c
	s.changed()
}

func (s *Surface) changed() {
	if s.settle == nil {
		s.notify()
		return
	}
	s.settle.Trigger(s.notify)
}

func (s *Surface) notify() {
	for _, f := range s.listeners {
		f(s)
	}
}

// Measure lifts clipping, measures the content, and clips again. The surface
// is clipped on return even if the metrics panic.
func (s *Surface) Measure() (contentHeight, visibleHeight float64) {
	s.clipped = false
	defer func() { s.clipped = true }()
	return s.metrics.ContentHeight(s.content), s.metrics.VisibleHeight()
}

// MeasuredContentHeight returns the unclipped content height
func (s *Surface) MeasuredContentHeight() float64 {
	h, _ := s.Measure()
	return h
}

// VisibleHeight returns the height shown before clipping
func (s *Surface) VisibleHeight() float64 {
	return s.metrics.VisibleHeight()
}

// MeasureContent measures arbitrary content in this surface's text block
// without changing the surface
func (s *Surface) MeasureContent(content string) float64 {
	s.clipped = false
	defer func() { s.clipped = true }()
	return s.metrics.ContentHeight(content)
}
