package geometry

import (
	"errors"
	"fmt"
	"sort"
)

// ErrUnknownSizeKind is returned when a trim size key is not recognised.
var ErrUnknownSizeKind = errors.New("unknown book size")

// Points per inch
const pointsPerInch = 72

// PageSize represents a named trim size in points (1/72 inch)
type PageSize struct {
	Width  float64
	Height float64
	Name   string
}

// Margins represents page margins in points. Inner is the base binding-side
// margin; Gutter is added on top of it and grows with the page count.
type Margins struct {
	Top    float64
	Bottom float64
	Inner  float64
	Outer  float64
	Gutter float64
}

// PageGeometry is the derived page layout for a set of project settings.
type PageGeometry struct {
	Size    PageSize
	Margins Margins
}

// Standard trim sizes
var (
	Trim5x8     = PageSize{Width: 5 * pointsPerInch, Height: 8 * pointsPerInch, Name: "5x8"}
	Trim525x8   = PageSize{Width: 5.25 * pointsPerInch, Height: 8 * pointsPerInch, Name: "5.25x8"}
	Trim55x85   = PageSize{Width: 5.5 * pointsPerInch, Height: 8.5 * pointsPerInch, Name: "5.5x8.5"}
	Trim6x9     = PageSize{Width: 6 * pointsPerInch, Height: 9 * pointsPerInch, Name: "6x9"}
	Trim7x10    = PageSize{Width: 7 * pointsPerInch, Height: 10 * pointsPerInch, Name: "7x10"}
	Trim85x11   = PageSize{Width: 8.5 * pointsPerInch, Height: 11 * pointsPerInch, Name: "8.5x11"}
	DefaultTrim = Trim6x9
)

var trims = map[string]PageSize{
	Trim5x8.Name:   Trim5x8,
	Trim525x8.Name: Trim525x8,
	Trim55x85.Name: Trim55x85,
	Trim6x9.Name:   Trim6x9,
	Trim7x10.Name:  Trim7x10,
	Trim85x11.Name: Trim85x11,
}

// base margins shared by every trim
const (
	marginTop    = 0.75 * pointsPerInch
	marginBottom = 0.75 * pointsPerInch
	marginOuter  = 0.5 * pointsPerInch
	marginInner  = 0.5 * pointsPerInch
)

// gutterSteps maps a minimum page count to the gutter used from that count on.
// The table is sorted by pages and its gutter column never decreases.
var gutterSteps = []struct {
	pages  int
	gutter float64
}{
	{0, 0.125 * pointsPerInch},
	{151, 0.25 * pointsPerInch},
	{301, 0.375 * pointsPerInch},
	{501, 0.5 * pointsPerInch},
	{701, 0.625 * pointsPerInch},
}

// SizeKeys returns the recognised trim size keys in sorted order
func SizeKeys() []string {
	keys := make([]string, 0, len(trims))
	for k := range trims {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Dimensions returns the page size for a trim key
func Dimensions(sizeKey string) (PageSize, error) {
	size, ok := trims[sizeKey]
	if !ok {
		return PageSize{}, fmt.Errorf("%w: %q", ErrUnknownSizeKind, sizeKey)
	}
	return size, nil
}

// ComputeMargins returns the margins for a book of roughly estimatedPageCount
// pages. Negative counts are treated as zero.
func ComputeMargins(estimatedPageCount int) Margins {
	if estimatedPageCount < 0 {
		estimatedPageCount = 0
	}
	gutter := gutterSteps[0].gutter
	for _, step := range gutterSteps {
		if estimatedPageCount >= step.pages {
			gutter = step.gutter
		}
	}
	return Margins{
		Top:    marginTop,
		Bottom: marginBottom,
		Inner:  marginInner,
		Outer:  marginOuter,
		Gutter: gutter,
	}
}

// Compute derives the full page geometry
func Compute(sizeKey string, estimatedPageCount int) (PageGeometry, error) {
	size, err := Dimensions(sizeKey)
	if err != nil {
		return PageGeometry{}, err
	}
	return PageGeometry{Size: size, Margins: ComputeMargins(estimatedPageCount)}, nil
}

// ContentWidth is the width available to text between the margins
func (g PageGeometry) ContentWidth() float64 {
	w := g.Size.Width - g.Margins.Inner - g.Margins.Gutter - g.Margins.Outer
	if w < 0 {
		return 0
	}
	return w
}

// ContentHeight is the visible text height between top and bottom margins
func (g PageGeometry) ContentHeight() float64 {
	h := g.Size.Height - g.Margins.Top - g.Margins.Bottom
	if h < 0 {
		return 0
	}
	return h
}

// BindingMargin is the full margin on the spine side of a page
func (m Margins) BindingMargin() float64 {
	return m.Inner + m.Gutter
}
