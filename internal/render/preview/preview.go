// Package preview draws page surfaces to PNG images.
package preview

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/gompdf/manuscript/internal/geometry"
	"github.com/gompdf/manuscript/internal/layout"
)

// DefaultScale renders two pixels per point
const DefaultScale = 2.0

// Previewer renders pages using the same line layout as the PDF export
type Previewer struct {
	Metrics *layout.FlowMetrics
	Scale   float64
	// ShowMargins outlines the text block
	ShowMargins bool

	face font.Face
}

// NewPreviewer creates a previewer. fontData is a TrueType font; nil uses Go Regular.
func NewPreviewer(metrics *layout.FlowMetrics, fontData []byte, scale float64) (*Previewer, error) {
	if scale <= 0 {
		scale = DefaultScale
	}
	if fontData == nil {
		fontData = goregular.TTF
	}
	ttfFont, err := truetype.Parse(fontData)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font: %w", err)
	}
	face := truetype.NewFace(ttfFont, &truetype.Options{
		Size:    metrics.Options().Font.Size * scale,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	return &Previewer{Metrics: metrics, Scale: scale, ShowMargins: true, face: face}, nil
}

// RenderPage draws page content at index
func (p *Previewer) RenderPage(content string, geom geometry.PageGeometry, index int) image.Image {
	return p.draw(content, geom, index).Image()
}

func (p *Previewer) draw(content string, geom geometry.PageGeometry, index int) *gg.Context {
	s := p.Scale
	dc := gg.NewContext(int(geom.Size.Width*s), int(geom.Size.Height*s))
	dc.SetColor(color.White)
	dc.Clear()

	if p.ShowMargins {
		x, y := layout.TextOrigin(geom, index)
		dc.SetColor(color.RGBA{R: 200, G: 200, B: 230, A: 255})
		dc.SetLineWidth(1)
		dc.DrawRectangle(x*s, y*s, geom.ContentWidth()*s, geom.ContentHeight()*s)
		dc.Stroke()
	}

	dc.SetFontFace(p.face)
	dc.SetColor(color.Black)
	for _, line := range p.Metrics.Position(content, geom, index) {
		dc.DrawString(line.Text, line.X*s, line.Y*s)
	}

	folio := strconv.Itoa(index + 1)
	dc.SetColor(color.Gray{Y: 120})
	dc.DrawStringAnchored(folio, geom.Size.Width*s/2, (geom.Size.Height-geom.Margins.Bottom/2)*s, 0.5, 0)
	return dc
}

// WritePNG encodes page content at index as PNG to w
func (p *Previewer) WritePNG(w io.Writer, content string, geom geometry.PageGeometry, index int) error {
	return p.draw(content, geom, index).EncodePNG(w)
}

// SavePages writes page-001.png, page-002.png, ... into dir and returns the paths
func (p *Previewer) SavePages(dir string, pages []string, geom geometry.PageGeometry) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create preview directory: %w", err)
	}
	paths := make([]string, 0, len(pages))
	for i, content := range pages {
		path := filepath.Join(dir, fmt.Sprintf("page-%03d.png", i+1))
		if err := p.draw(content, geom, i).SavePNG(path); err != nil {
			return paths, fmt.Errorf("failed to save %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
