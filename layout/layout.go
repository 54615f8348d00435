// Package layout positions pages for display.
//
// A Layout holds an ordered list of pages and the global parameters that
// determine their pixel geometry: zoom factor, device resolution, rotation,
// spacing, margins and the arrangement Engine. After changing any of them,
// call Update to recompute page sizes and positions; a Layout never updates
// itself.
//
//	l := layout.New()
//	l.Pages = pages
//	l.Engine = layout.NewRowEngine()
//	l.Fit(viewport, layout.FitWidth)
//	l.Update()
//
// Thread safety: Layout is NOT thread-safe.
package layout

import (
	"image"
	"math"

	"github.com/gogpu/pageview/page"
)

// Orientation is the direction in which pages follow each other.
type Orientation int

// Orientations.
const (
	Vertical Orientation = iota
	Horizontal
)

// Alignment positions a page inside its grid cell. Horizontal and vertical
// flags are combined with |.
type Alignment int

// Alignment flags.
const (
	AlignLeft Alignment = 1 << iota
	AlignRight
	AlignHCenter
	AlignTop
	AlignBottom
	AlignVCenter

	AlignCenter = AlignHCenter | AlignVCenter
)

// FitMode selects how Fit adapts the layout to a viewport.
type FitMode int

// Fit modes.
const (
	FixedScale FitMode = 0
	FitWidth   FitMode = 1 << 0
	FitHeight  FitMode = 1 << 1
	FitBoth            = FitWidth | FitHeight
)

// Margins are distances in pixels around a rectangle.
type Margins struct {
	Left, Top, Right, Bottom int
}

// Layout defaults.
const (
	DefaultSpacing = 8
	DefaultMargin  = 6
)

// Layout manages the geometry of an ordered list of pages.
type Layout struct {
	// Pages are the pages in display order.
	Pages []*page.Page

	// ZoomFactor scales all pages. Set by Fit for engines that zoom to fit.
	ZoomFactor float64

	// DPIX and DPIY are the device resolution.
	DPIX, DPIY float64

	// Rotation is added to the rotation of every page.
	Rotation page.Rotation

	// Orientation is the direction pages follow each other in; engines may
	// override it.
	Orientation Orientation

	// Alignment positions pages inside their cell.
	Alignment Alignment

	// Spacing is the distance between pages in pixels.
	Spacing int

	// Margins surround the whole layout, PageMargins every page.
	Margins     Margins
	PageMargins Margins

	// Engine arranges the pages. Nil means SingleEngine.
	Engine Engine

	// ContinuousMode displays all pages. When false, only the page set
	// CurrentPageSet is displayed.
	ContinuousMode bool
	CurrentPageSet int

	geometry image.Rectangle
	rects    *pageRects
}

// New returns a layout with default settings and no pages.
func New() *Layout {
	return &Layout{
		ZoomFactor:     1,
		DPIX:           page.DefaultDPI,
		DPIY:           page.DefaultDPI,
		Orientation:    Vertical,
		Alignment:      AlignCenter,
		Spacing:        DefaultSpacing,
		Margins:        Margins{DefaultMargin, DefaultMargin, DefaultMargin, DefaultMargin},
		Engine:         SingleEngine{},
		ContinuousMode: true,
	}
}

func (l *Layout) engine() Engine {
	if l.Engine == nil {
		return SingleEngine{}
	}
	return l.Engine
}

// Count returns the number of pages.
func (l *Layout) Count() int {
	return len(l.Pages)
}

// Empty reports whether the layout has no pages.
func (l *Layout) Empty() bool {
	return len(l.Pages) == 0
}

// Index returns the index of p in the layout, or -1.
func (l *Layout) Index(p *page.Page) int {
	for i, q := range l.Pages {
		if q == p {
			return i
		}
	}
	return -1
}

// Geometry returns the bounding rectangle of the displayed pages including
// the margins, as computed by the last Update.
func (l *Layout) Geometry() image.Rectangle {
	return l.geometry
}

// Size returns the size of Geometry.
func (l *Layout) Size() image.Point {
	return l.geometry.Size()
}

// Update computes the size of every page, positions the pages and computes
// the layout geometry. It reports whether the geometry changed.
func (l *Layout) Update() bool {
	l.rects = nil
	l.clampPageSet()
	l.updatePageSizes()
	if !l.Empty() {
		positionPages(l, l.engine())
	}
	g := l.computeGeometry()
	changed := g != l.geometry
	l.geometry = g
	return changed
}

func (l *Layout) updatePageSizes() {
	zoom := l.ZoomFactor
	if zoom <= 0 {
		zoom = 1
	}
	for _, p := range l.Pages {
		p.ComputedRotation = p.Rotation.Add(l.Rotation)
		p.UpdateSize(l.DPIX, l.DPIY, zoom)
	}
}

func (l *Layout) computeGeometry() image.Rectangle {
	var r image.Rectangle
	for _, p := range l.DisplayPages() {
		r = r.Union(p.Geometry())
	}
	if r.Empty() {
		return image.Rectangle{}
	}
	m, pm := l.Margins, l.PageMargins
	r.Min.X -= m.Left + pm.Left
	r.Min.Y -= m.Top + pm.Top
	r.Max.X += m.Right + pm.Right
	r.Max.Y += m.Bottom + pm.Bottom
	return r
}

// defaultWidth returns the displayed natural width of p in inches.
func (l *Layout) defaultWidth(p *page.Page) float64 {
	w, _ := p.DefaultInches(l.Rotation)
	return w
}

// defaultHeight returns the displayed natural height of p in inches.
func (l *Layout) defaultHeight(p *page.Page) float64 {
	_, h := p.DefaultInches(l.Rotation)
	return h
}

// WidestPage returns the page with the largest natural width under the
// layout rotation, or nil if the layout is empty.
func (l *Layout) WidestPage() *page.Page {
	return l.largest(l.defaultWidth)
}

// HighestPage returns the page with the largest natural height under the
// layout rotation, or nil if the layout is empty.
func (l *Layout) HighestPage() *page.Page {
	return l.largest(l.defaultHeight)
}

func (l *Layout) largest(size func(*page.Page) float64) *page.Page {
	var best *page.Page
	var bestSize float64
	for _, p := range l.Pages {
		if s := size(p); best == nil || s > bestSize {
			best, bestSize = p, s
		}
	}
	return best
}

// Fit adapts the layout to a viewport of the given size. Engines that zoom
// to fit set ZoomFactor; the raster engine instead chooses its grid. Fit
// on an empty layout changes nothing. Call Update afterwards.
func (l *Layout) Fit(size image.Point, mode FitMode) {
	l.engine().fit(l, size, mode)
}

// ZoomsToFit reports whether Fit changes the zoom factor.
func (l *Layout) ZoomsToFit() bool {
	return l.engine().ZoomsToFit()
}

// Offset is a position relative to a page, stable across zoom changes.
type Offset struct {
	// Index is the page index, or -1 for the layout itself.
	Index int

	// X and Y are fractions of the page (or layout) size.
	X, Y float64
}

// Pos2Offset returns the offset of pt relative to the page at pt, or the
// nearest page if pt is not on a page.
func (l *Layout) Pos2Offset(pt image.Point) Offset {
	p := l.PageAt(pt)
	if p == nil {
		p = l.NearestPageAt(pt)
	}
	var w, h, i int
	if p != nil {
		pt = pt.Sub(p.Pos())
		w, h, i = p.Width, p.Height, l.Index(p)
	} else {
		w, h, i = l.geometry.Dx(), l.geometry.Dy(), -1
	}
	return Offset{Index: i, X: float64(pt.X) / float64(max(w, 1)), Y: float64(pt.Y) / float64(max(h, 1))}
}

// Offset2Pos returns the position in the layout of off.
func (l *Layout) Offset2Pos(off Offset) image.Point {
	var pos image.Point
	var w, h int
	if off.Index < 0 || off.Index >= len(l.Pages) {
		w, h = l.geometry.Dx(), l.geometry.Dy()
	} else {
		p := l.Pages[off.Index]
		pos, w, h = p.Pos(), p.Width, p.Height
	}
	return pos.Add(image.Pt(
		int(math.Round(off.X*float64(max(w, 1)))),
		int(math.Round(off.Y*float64(max(h, 1)))),
	))
}

// align returns the position of a w x h rectangle aligned in an ow x oh
// cell. A coordinate is -1 if the rectangle is larger than the cell in that
// direction.
func align(w, h, ow, oh int, a Alignment) (x, y int) {
	switch {
	case w > ow:
		x = -1
	case a&AlignHCenter != 0:
		x = (ow - w) / 2
	case a&AlignRight != 0:
		x = ow - w
	}
	switch {
	case h > oh:
		y = -1
	case a&AlignVCenter != 0:
		y = (oh - h) / 2
	case a&AlignBottom != 0:
		y = oh - h
	}
	return x, y
}
