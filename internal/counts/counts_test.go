package counts

import (
	"testing"

	"github.com/gompdf/manuscript/internal/surface"
)

type textPage string

func (p textPage) PlainText() string { return string(p) }

type noMetrics struct{}

func (noMetrics) ContentHeight(string) float64 { return 0 }
func (noMetrics) VisibleHeight() float64       { return 100 }

func TestWords(t *testing.T) {
	tests := []struct {
		name  string
		pages []textPage
		want  int
	}{
		{"no pages", nil, 0},
		{"blank pages", []textPage{"", "   ", "\n\t"}, 0},
		{"single page", []textPage{"hello world"}, 2},
		{"words split across pages stay separate", []textPage{"end", "start"}, 2},
		{"whitespace runs", []textPage{"  a \n\n b\tc  "}, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Words(tt.pages); got != tt.want {
				t.Errorf("expected %d, got %d", tt.want, got)
			}
		})
	}
}

func TestOf_SurfacesWithMarkup(t *testing.T) {
	a := surface.New(noMetrics{}, nil)
	a.Load("<p>hello <b>big</b></p>")
	b := surface.New(noMetrics{}, nil)
	b.Load("<p>world</p>")
	got := Of([]*surface.Surface{a, b})
	if got.PageCount != 2 || got.WordCount != 3 {
		t.Errorf("expected 2 pages and 3 words, got %+v", got)
	}
}

func TestOf_OneEmptySurface(t *testing.T) {
	got := Of([]*surface.Surface{surface.New(noMetrics{}, nil)})
	if got.PageCount != 1 || got.WordCount != 0 {
		t.Errorf("expected 1 page and 0 words, got %+v", got)
	}
}
