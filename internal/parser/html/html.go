package html

import (
	"strings"
	"unicode"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Parser reads page content markup. Page content is an HTML fragment as an
// editable region would hold it, possibly unbalanced where pagination cut it.
type Parser struct{}

// NewParser creates a new HTML parser
func NewParser() *Parser {
	return &Parser{}
}

var bodyContext = &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}

// ParseFragment parses content in a <body> context
func (p *Parser) ParseFragment(content string) ([]*html.Node, error) {
	return html.ParseFragment(strings.NewReader(content), bodyContext)
}

// Blocks returns the visual lines of content before wrapping: one entry per
// block element, <br>, or newline in text. Empty content has no blocks.
func (p *Parser) Blocks(content string) []string {
	text := p.flatten(content)
	if text == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(text, "\n"), "\n")
}

// PlainText returns the rendered text of content with block boundaries as newlines
func (p *Parser) PlainText(content string) string {
	return strings.TrimSuffix(p.flatten(content), "\n")
}

func (p *Parser) flatten(content string) string {
	if content == "" {
		return ""
	}
	nodes, err := p.ParseFragment(content)
	if err != nil {
		// x/net/html only fails on reader errors; fall back to the raw text
		return content
	}
	var b strings.Builder
	newline := func() {
		if b.Len() > 0 && !strings.HasSuffix(b.String(), "\n") {
			b.WriteByte('\n')
		}
	}
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			if strings.TrimSpace(n.Data) == "" && (b.Len() == 0 || strings.HasSuffix(b.String(), "\n")) {
				// source formatting between blocks
				return
			}
			b.WriteString(n.Data)
			return
		case html.ElementNode:
			switch {
			case n.DataAtom == atom.Br:
				b.WriteByte('\n')
				return
			case n.DataAtom == atom.Script || n.DataAtom == atom.Style:
				return
			case isBlock(n.DataAtom):
				newline()
				for c := n.FirstChild; c != nil; c = c.NextSibling {
					walk(c)
				}
				newline()
				if n.FirstChild == nil {
					// an empty paragraph still occupies a line
					b.WriteByte('\n')
				}
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range nodes {
		walk(n)
	}
	return b.String()
}

func isBlock(a atom.Atom) bool {
	switch a {
	case atom.P, atom.Div, atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6,
		atom.Li, atom.Ul, atom.Ol, atom.Blockquote, atom.Pre, atom.Section, atom.Article,
		atom.Hr, atom.Table, atom.Tr:
		return true
	}
	return false
}

// SplitPoints returns the byte offsets at which content may be cut between
// pages: the start of each word that follows whitespace outside a tag.
// Offsets 0 and len(content) are never included.
func SplitPoints(content string) []int {
	var points []int
	inTag := false
	var quote rune
	sawSpace, seen := false, false
	for i, r := range content {
		if inTag {
			switch {
			case quote != 0:
				if r == quote {
					quote = 0
				}
			case r == '"' || r == '\'':
				quote = r
			case r == '>':
				inTag = false
			}
			continue
		}
		if unicode.IsSpace(r) {
			sawSpace = true
			continue
		}
		if sawSpace && seen {
			points = append(points, i)
		}
		sawSpace, seen = false, true
		if r == '<' {
			inTag = true
		}
	}
	return points
}

// EscapeText turns typed plain text into content markup
func EscapeText(text string) string {
	escaped := html.EscapeString(text)
	escaped = strings.ReplaceAll(escaped, "\r\n", "\n")
	return strings.ReplaceAll(escaped, "\n", "<br>")
}
