// Package importer converts manuscript sources into chapter content markup.
package importer

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/fumiama/go-docx"
	pdflib "github.com/ledongthuc/pdf"
	"github.com/yuin/goldmark"
	xhtml "golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/gompdf/manuscript/internal/parser/html"
	"github.com/gompdf/manuscript/internal/res"
)

// ErrUnsupportedFormat is returned for sources that cannot become a chapter
var ErrUnsupportedFormat = errors.New("unsupported format")

// Importer loads sources through a resource loader
type Importer struct {
	loader *res.Loader
}

// New creates an importer. A nil loader resolves paths from the working directory.
func New(loader *res.Loader) *Importer {
	if loader == nil {
		loader = res.NewLoader("")
	}
	return &Importer{loader: loader}
}

// Import loads ref and converts it to chapter content
func (im *Importer) Import(ref string) (string, error) {
	r, err := im.loader.Load(ref)
	if err != nil {
		return "", fmt.Errorf("failed to load %s: %w", ref, err)
	}
	return Convert(r)
}

// Convert turns a loaded resource into chapter content
func Convert(r *res.Resource) (string, error) {
	switch r.Format {
	case res.FormatText:
		return FromText(r.GetString()), nil
	case res.FormatMarkdown:
		return FromMarkdown(r.Data)
	case res.FormatHTML:
		return FromHTML(r.GetString())
	case res.FormatDOCX:
		return FromDOCX(r.Data)
	case res.FormatPDF:
		return FromPDF(r.Data)
	}
	return "", fmt.Errorf("%w: %s (%s)", ErrUnsupportedFormat, r.URL, r.Format)
}

// FromText makes one paragraph per blank-line separated block
func FromText(src string) string {
	src = strings.ReplaceAll(src, "\r\n", "\n")
	var paras []string
	for _, block := range strings.Split(src, "\n\n") {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		paras = append(paras, "<p>"+html.EscapeText(block)+"</p>")
	}
	return strings.Join(paras, "\n")
}

// FromMarkdown renders Markdown to HTML with goldmark
func FromMarkdown(src []byte) (string, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert(src, &buf); err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return strings.TrimSpace(buf.String()), nil
}

// FromHTML keeps the children of <body>, dropping scripts and styles
func FromHTML(src string) (string, error) {
	doc, err := xhtml.Parse(strings.NewReader(src))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}
	body := findBody(doc)
	if body == nil {
		return "", nil
	}
	var buf bytes.Buffer
	for c := body.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == xhtml.ElementNode && (c.DataAtom == atom.Script || c.DataAtom == atom.Style) {
			continue
		}
		if err := xhtml.Render(&buf, c); err != nil {
			return "", fmt.Errorf("failed to render HTML: %w", err)
		}
	}
	return strings.TrimSpace(buf.String()), nil
}

func findBody(n *xhtml.Node) *xhtml.Node {
	if n.Type == xhtml.ElementNode && n.DataAtom == atom.Body {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBody(c); b != nil {
			return b
		}
	}
	return nil
}

// FromDOCX converts paragraphs to <p>, and heading styles to <h1>..<h6>
func FromDOCX(data []byte) (string, error) {
	doc, err := docx.Parse(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("parse docx: %w", err)
	}
	var out []string
	for _, item := range doc.Document.Body.Items {
		para, ok := item.(*docx.Paragraph)
		if !ok {
			continue
		}
		text := docxParagraphText(para)
		if text == "" {
			continue
		}
		tag := "p"
		if level := docxHeadingLevel(para); level > 0 {
			tag = fmt.Sprintf("h%d", level)
		}
		out = append(out, "<"+tag+">"+html.EscapeText(text)+"</"+tag+">")
	}
	return strings.Join(out, "\n"), nil
}

func docxHeadingLevel(para *docx.Paragraph) int {
	if para.Properties == nil || para.Properties.Style == nil {
		return 0
	}
	style := strings.ToLower(strings.ReplaceAll(para.Properties.Style.Val, " ", ""))
	if !strings.HasPrefix(style, "heading") {
		return 0
	}
	switch strings.TrimPrefix(style, "heading") {
	case "1":
		return 1
	case "2":
		return 2
	case "3":
		return 3
	case "4":
		return 4
	case "5":
		return 5
	case "6":
		return 6
	}
	return 0
}

func docxParagraphText(para *docx.Paragraph) string {
	var buf strings.Builder
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		for _, rc := range run.Children {
			if t, ok := rc.(*docx.Text); ok {
				buf.WriteString(t.Text)
			}
		}
	}
	return strings.TrimSpace(buf.String())
}

// FromPDF extracts the plain text of every page, one paragraph per page
func FromPDF(data []byte) (string, error) {
	reader, err := pdflib.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	var paras []string
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		text = strings.Join(strings.Fields(text), " ")
		if text == "" {
			continue
		}
		paras = append(paras, "<p>"+html.EscapeText(text)+"</p>")
	}
	return strings.Join(paras, "\n"), nil
}
