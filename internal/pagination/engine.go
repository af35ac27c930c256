package pagination

import (
	"strings"

	"github.com/gompdf/manuscript/internal/settle"
	"github.com/gompdf/manuscript/internal/surface"
)

// DefaultTolerance absorbs sub-point rounding in measured heights
const DefaultTolerance = 2.0

// Options represents options for the pagination engine
type Options struct {
	// Tolerance is how far, in points, content may exceed the visible height
	// before the page counts as overflowing
	Tolerance float64
}

// Engine owns the ordered page surfaces of the active chapter. It only ever
// appends surfaces; the sequence is replaced wholesale by Rebuild.
type Engine struct {
	options  Options
	metrics  surface.Metrics
	settle   *settle.Debouncer
	surfaces []*surface.Surface
	focus    int

	// OnStructureChanged is called after a surface is appended or the
	// sequence is rebuilt
	OnStructureChanged func()
	// OnSettled is called after a surface mutation settles and the overflow
	// check for it has run
	OnSettled func(*surface.Surface)
}

// NewEngine creates a pagination engine holding one empty surface
func NewEngine(metrics surface.Metrics, debouncer *settle.Debouncer) *Engine {
	e := &Engine{
		options: Options{Tolerance: DefaultTolerance},
		metrics: metrics,
		settle:  debouncer,
	}
	e.surfaces = []*surface.Surface{e.newSurface()}
	return e
}

// SetOptions sets the options for the pagination engine
func (e *Engine) SetOptions(options Options) {
	if options.Tolerance < 0 {
		options.Tolerance = 0
	}
	e.options = options
}

// SetMetrics replaces the measurement backend and re-paginates the current
// content against it
func (e *Engine) SetMetrics(metrics surface.Metrics) {
	content := e.Content()
	e.metrics = metrics
	e.Rebuild(content)
}

func (e *Engine) newSurface() *surface.Surface {
	s := surface.New(e.metrics, e.settle)
	s.OnSettled(e.handleSettled)
	return s
}

// handleSettled checks the tail whichever surface settled. Surfaces share
// one debouncer, so a later edit to an earlier page replaces the tail's
// pending notification.
func (e *Engine) handleSettled(s *surface.Surface) {
	e.CheckOverflow()
	if e.OnSettled != nil {
		e.OnSettled(s)
	}
}

func (e *Engine) structureChanged() {
	if e.OnStructureChanged != nil {
		e.OnStructureChanged()
	}
}

// Surfaces returns the surfaces in page order
func (e *Engine) Surfaces() []*surface.Surface {
	out := make([]*surface.Surface, len(e.surfaces))
	copy(out, e.surfaces)
	return out
}

// Len returns the number of surfaces
func (e *Engine) Len() int {
	return len(e.surfaces)
}

// Surface returns the surface at index i, or nil
func (e *Engine) Surface(i int) *surface.Surface {
	if i < 0 || i >= len(e.surfaces) {
		return nil
	}
	return e.surfaces[i]
}

// Last returns the tail surface
func (e *Engine) Last() *surface.Surface {
	return e.surfaces[len(e.surfaces)-1]
}

// Focus returns the index of the surface receiving input
func (e *Engine) Focus() int {
	return e.focus
}

// Focused returns the surface receiving input
func (e *Engine) Focused() *surface.Surface {
	return e.surfaces[e.focus]
}

// SetFocus moves input focus; out of range indexes are ignored
func (e *Engine) SetFocus(i int) bool {
	if i < 0 || i >= len(e.surfaces) {
		return false
	}
	e.focus = i
	return true
}

// Content serializes the chapter: the page contents concatenated in order
func (e *Engine) Content() string {
	var b strings.Builder
	for _, s := range e.surfaces {
		b.WriteString(s.Content())
	}
	return b.String()
}

// Overflowing reports whether s holds more than its visible height plus the
// tolerance. An empty surface never overflows.
func (e *Engine) Overflowing(s *surface.Surface) bool {
	if s.Content() == "" {
		return false
	}
	content, visible := s.Measure()
	return e.exceeds(content, visible)
}

func (e *Engine) exceeds(content, visible float64) bool {
	return content-visible > e.options.Tolerance
}

// CheckOverflow appends an empty surface after the tail when the tail
// overflows, and moves focus to it. Content stays where it was typed; the
// writer continues on the new page. Returns true if a surface was appended.
func (e *Engine) CheckOverflow() bool {
	if !e.Overflowing(e.Last()) {
		return false
	}
	e.surfaces = append(e.surfaces, e.newSurface())
	e.focus = len(e.surfaces) - 1
	e.structureChanged()
	return true
}
