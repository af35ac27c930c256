package layout

import (
	"strings"
	"sync"

	"codeberg.org/go-pdf/fpdf"
	"github.com/gompdf/manuscript/internal/geometry"
	"github.com/gompdf/manuscript/internal/parser/html"
	"github.com/gompdf/manuscript/internal/text"
)

// Singleton PDF instance for text measurement using go-pdf/fpdf metrics
var (
	measureOnce sync.Once
	measurePDF  *fpdf.Fpdf
	measureMu   sync.Mutex
)

func initMeasurePDF() {
	measurePDF = fpdf.New("P", "pt", "", "")
	measurePDF.SetFont("Times", "", 12)
}

// measureTextWidth returns a font-aware width using fpdf core font metrics
func measureTextWidth(s string, font text.Font) float64 {
	if s == "" || font.Size <= 0 {
		return 0
	}
	measureOnce.Do(initMeasurePDF)
	measureMu.Lock()
	defer measureMu.Unlock()
	fam, sty := ResolveFont(font)
	measurePDF.SetFont(fam, sty, font.Size)
	return measurePDF.GetStringWidth(s)
}

// ResolveFont maps a font family name to a core PDF font family and style
func ResolveFont(font text.Font) (string, string) {
	family := "Times"
	first := strings.Split(font.Family, ",")[0]
	first = strings.TrimSpace(strings.Trim(first, "'\""))
	switch strings.ToLower(first) {
	case "arial", "helvetica", "sans-serif":
		family = "Helvetica"
	case "courier", "courier new", "monospace":
		family = "Courier"
	}
	styleStr := ""
	switch strings.ToUpper(font.Style) {
	case "B", "BOLD":
		styleStr = "B"
	case "I", "ITALIC":
		styleStr = "I"
	case "BI", "IB":
		styleStr = "BI"
	}
	return family, styleStr
}

// Options represents options for flow measurement
type Options struct {
	// Text block size in points
	Width  float64
	Height float64
	Font   text.Font
	// Space after each block, in lines
	ParagraphSpacing float64
}

// DefaultFont is a 12pt serif body face
var DefaultFont = text.Font{Family: "Times", Size: 12, LineHeight: 1.4}

// FlowMetrics lays page content out into lines of the text block and reports
// its height. It is the measurement backend for page surfaces.
type FlowMetrics struct {
	options Options
	parser  *html.Parser
	shaper  *text.TextShaper
}

// NewFlowMetrics creates flow metrics measuring with fpdf font metrics
func NewFlowMetrics(options Options) *FlowMetrics {
	if options.Font.Size <= 0 {
		options.Font = DefaultFont
	}
	font := options.Font
	return &FlowMetrics{
		options: options,
		parser:  html.NewParser(),
		shaper: text.NewTextShaper(func(s string) float64 {
			return measureTextWidth(s, font)
		}, font),
	}
}

// Options returns the measurement options
func (m *FlowMetrics) Options() Options {
	return m.options
}

// Lines returns content wrapped to the text block width, one slice per block
func (m *FlowMetrics) Lines(content string) [][]string {
	blocks := m.parser.Blocks(content)
	out := make([][]string, 0, len(blocks))
	for _, b := range blocks {
		out = append(out, m.shaper.SplitTextToLines(b, m.options.Width))
	}
	return out
}

// ContentHeight returns the unclipped height of content in points
func (m *FlowMetrics) ContentHeight(content string) float64 {
	blocks := m.Lines(content)
	if len(blocks) == 0 {
		return 0
	}
	lines := 0
	for _, b := range blocks {
		lines += len(b)
	}
	spacing := m.options.ParagraphSpacing * float64(len(blocks)-1)
	return (float64(lines) + spacing) * m.options.Font.LineAdvance()
}

// VisibleHeight is the height of the text block
func (m *FlowMetrics) VisibleHeight() float64 {
	return m.options.Height
}

// Line is a line of text positioned on a page. X is the left edge and Y the
// baseline, both in points from the top-left corner of the page.
type Line struct {
	X    float64
	Y    float64
	Text string
}

// TextOrigin returns the top-left corner of the text block for the page at
// index. Even indexes are rectos with the binding on the left.
func TextOrigin(geom geometry.PageGeometry, index int) (x, y float64) {
	if index%2 == 0 {
		return geom.Margins.BindingMargin(), geom.Margins.Top
	}
	return geom.Margins.Outer, geom.Margins.Top
}

// Position wraps content and places each line on the page at index
func (m *FlowMetrics) Position(content string, geom geometry.PageGeometry, index int) []Line {
	x, top := TextOrigin(geom, index)
	advance := m.options.Font.LineAdvance()
	ascent := m.options.Font.Size * 0.8
	var out []Line
	y := top
	for i, block := range m.Lines(content) {
		if i > 0 {
			y += m.options.ParagraphSpacing * advance
		}
		for _, l := range block {
			if l != "" {
				out = append(out, Line{X: x, Y: y + ascent, Text: l})
			}
			y += advance
		}
	}
	return out
}
