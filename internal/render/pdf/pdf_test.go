package pdf

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	pdflib "github.com/ledongthuc/pdf"

	"github.com/gompdf/manuscript/internal/geometry"
	"github.com/gompdf/manuscript/internal/layout"
)

func newTestRenderer(t *testing.T) (*Renderer, geometry.PageGeometry) {
	t.Helper()
	geom, err := geometry.Compute("5x8", 120)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	m := layout.NewFlowMetrics(layout.Options{Width: geom.ContentWidth(), Height: geom.ContentHeight()})
	return NewRenderer(m), geom
}

func TestRender_OnePDFPagePerSurface(t *testing.T) {
	r, geom := newTestRenderer(t)
	pages := []string{"<p>It was a dark and stormy night.</p>", "<p>Suddenly, a shot rang out.</p>", ""}
	var buf bytes.Buffer
	if err := r.Render(pages, geom, &buf, RenderOptions{Title: "Storm"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	reader, err := pdflib.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("failed to read rendered pdf: %v", err)
	}
	if reader.NumPage() != 3 {
		t.Fatalf("expected 3 pages, got %d", reader.NumPage())
	}
	text, err := reader.Page(2).GetPlainText(nil)
	if err != nil {
		t.Fatalf("failed to extract text: %v", err)
	}
	if !strings.Contains(text, "shot") {
		t.Errorf("expected page 2 text, got %q", text)
	}
}

func TestRenderFile_CreatesDirectory(t *testing.T) {
	r, geom := newTestRenderer(t)
	r.PageNumbers = false
	path := filepath.Join(t.TempDir(), "out", "chapter.pdf")
	if err := r.RenderFile([]string{"hello"}, geom, path, RenderOptions{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	f, reader, err := pdflib.Open(path)
	if err != nil {
		t.Fatalf("failed to open rendered pdf: %v", err)
	}
	defer f.Close()
	if reader.NumPage() != 1 {
		t.Errorf("expected 1 page, got %d", reader.NumPage())
	}
}
