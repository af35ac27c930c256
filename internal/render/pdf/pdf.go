package pdf

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"codeberg.org/go-pdf/fpdf"
	"github.com/gompdf/manuscript/internal/geometry"
	"github.com/gompdf/manuscript/internal/layout"
)

// Renderer writes chapter pages to PDF, one PDF page per surface
type Renderer struct {
	Metrics *layout.FlowMetrics
	// PageNumbers draws a folio at the foot of each page
	PageNumbers bool
	Log         *slog.Logger
}

// RenderOptions contains document metadata
type RenderOptions struct {
	Title    string
	Author   string
	Subject  string
	Keywords string
	Creator  string
	Producer string
	// FirstPageNumber is the folio of the first page; zero means 1
	FirstPageNumber int
}

// NewRenderer creates a new PDF renderer using metrics for line layout
func NewRenderer(metrics *layout.FlowMetrics) *Renderer {
	return &Renderer{
		Metrics:     metrics,
		PageNumbers: true,
		Log:         slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// Render writes pages, given as page contents in order, to w
func (r *Renderer) Render(pages []string, geom geometry.PageGeometry, w io.Writer, options RenderOptions) error {
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           fpdf.SizeType{Wd: geom.Size.Width, Ht: geom.Size.Height},
	})
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetTitle(options.Title, true)
	pdf.SetAuthor(options.Author, true)
	pdf.SetSubject(options.Subject, true)
	pdf.SetKeywords(options.Keywords, true)
	pdf.SetCreator(options.Creator, true)
	pdf.SetProducer(options.Producer, true)

	font := r.Metrics.Options().Font
	family, style := layout.ResolveFont(font)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	first := options.FirstPageNumber
	if first == 0 {
		first = 1
	}

	r.Log.Debug("rendering pdf", "pages", len(pages), "size", geom.Size.Name)
	for i, content := range pages {
		pdf.AddPage()
		pdf.SetFont(family, style, font.Size)
		for _, line := range r.Metrics.Position(content, geom, i) {
			pdf.Text(line.X, line.Y, tr(line.Text))
		}
		if r.PageNumbers {
			folio := strconv.Itoa(first + i)
			pdf.SetFont(family, "", font.Size*0.8)
			x := (geom.Size.Width - pdf.GetStringWidth(folio)) / 2
			pdf.Text(x, geom.Size.Height-geom.Margins.Bottom/2, folio)
		}
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to render PDF: %w", err)
	}
	return nil
}

// RenderFile renders pages to a file, creating its directory if needed
func (r *Renderer) RenderFile(pages []string, geom geometry.PageGeometry, outputPath string, options RenderOptions) error {
	outputDir := filepath.Dir(outputPath)
	if _, err := os.Stat(outputDir); os.IsNotExist(err) {
		if err := os.MkdirAll(outputDir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := r.Render(pages, geom, f, options); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
