package pagination

import (
	"sort"

	"github.com/gompdf/manuscript/internal/parser/html"
	"github.com/gompdf/manuscript/internal/surface"
)

// Rebuild discards every surface and paginates content from scratch: it is
// placed on one fresh surface, and while the tail overflows, everything past
// the last break point that fits is moved onto a new tail. The page contents
// concatenate back to content byte for byte. Focus ends on the last page.
// Returns the number of surfaces.
func (e *Engine) Rebuild(content string) int {
	first := e.newSurface()
	first.Load(content)
	e.surfaces = []*surface.Surface{first}

	for e.Overflowing(e.Last()) {
		last := e.Last()
		cut, ok := e.fitPrefix(last)
		if !ok {
			// a single unbreakable run; leave it overflowing
			break
		}
		full := last.Content()
		last.Load(full[:cut])
		next := e.newSurface()
		next.Load(full[cut:])
		e.surfaces = append(e.surfaces, next)
	}

	e.focus = len(e.surfaces) - 1
	e.structureChanged()
	return len(e.surfaces)
}

// fitPrefix finds the longest prefix of s's content, ending at a split point,
// that does not overflow. When even the first word overflows the first split
// point is used so that every page takes at least one word.
func (e *Engine) fitPrefix(s *surface.Surface) (int, bool) {
	content := s.Content()
	points := html.SplitPoints(content)
	if len(points) == 0 {
		return 0, false
	}
	visible := s.VisibleHeight()
	// index of the first split point whose prefix overflows
	n := sort.Search(len(points), func(i int) bool {
		return e.exceeds(s.MeasureContent(content[:points[i]]), visible)
	})
	if n == 0 {
		return points[0], true
	}
	return points[n-1], true
}
