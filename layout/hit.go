package layout

import (
	"image"
	"math"
	"slices"
	"sort"

	"github.com/gogpu/pageview/page"
)

// pageRects finds displayed pages by position. Pages are kept sorted on
// their top edge so that searches only visit pages starting above the
// point or rectangle.
type pageRects struct {
	pages []*page.Page // sorted by top, then layout order
	index map[*page.Page]int
}

func newPageRects(l *Layout) *pageRects {
	r := &pageRects{
		pages: slices.Clone(l.DisplayPages()),
		index: make(map[*page.Page]int, len(l.Pages)),
	}
	for i, p := range l.Pages {
		r.index[p] = i
	}
	slices.SortStableFunc(r.pages, func(a, b *page.Page) int {
		return a.Y - b.Y
	})
	return r
}

// above returns the pages whose top edge is above y.
func (r *pageRects) above(y int) []*page.Page {
	n := sort.Search(len(r.pages), func(i int) bool {
		return r.pages[i].Y >= y
	})
	return r.pages[:n]
}

// inOrder sorts pages in layout order.
func (r *pageRects) inOrder(pages []*page.Page) []*page.Page {
	slices.SortFunc(pages, func(a, b *page.Page) int {
		return r.index[a] - r.index[b]
	})
	return pages
}

func (l *Layout) pageRects() *pageRects {
	if l.rects == nil {
		l.rects = newPageRects(l)
	}
	return l.rects
}

// PageAt returns the displayed page containing pt, or nil.
func (l *Layout) PageAt(pt image.Point) *page.Page {
	r := l.pageRects()
	var found *page.Page
	for _, p := range r.above(pt.Y + 1) {
		if pt.In(p.Geometry()) && (found == nil || r.index[p] < r.index[found]) {
			found = p
		}
	}
	return found
}

// PagesAt returns the displayed pages overlapping rect, in layout order.
func (l *Layout) PagesAt(rect image.Rectangle) []*page.Page {
	if rect.Empty() {
		return nil
	}
	r := l.pageRects()
	var result []*page.Page
	for _, p := range r.above(rect.Max.Y) {
		if p.Geometry().Overlaps(rect) {
			result = append(result, p)
		}
	}
	return r.inOrder(result)
}

// NearestPageAt returns the displayed page closest to pt, or nil if there
// are no displayed pages. Distances are measured to the page edges.
func (l *Layout) NearestPageAt(pt image.Point) *page.Page {
	r := l.pageRects()
	var best *page.Page
	bestDist := math.Inf(1)
	for _, p := range r.pages {
		d := distance(pt, p.Geometry())
		if d < bestDist || d == bestDist && r.index[p] < r.index[best] {
			best, bestDist = p, d
		}
	}
	return best
}

// distance returns the Euclidean distance from pt to rect, 0 inside.
func distance(pt image.Point, rect image.Rectangle) float64 {
	dx := max(rect.Min.X-pt.X, 0, pt.X-(rect.Max.X-1))
	dy := max(rect.Min.Y-pt.Y, 0, pt.Y-(rect.Max.Y-1))
	return math.Hypot(float64(dx), float64(dy))
}
