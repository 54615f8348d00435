package layout

import (
	"image"
	"math"

	"github.com/gogpu/pageview/page"
)

// Engine arranges the pages of a layout in a grid. The set of engines is
// closed: SingleEngine, *RowEngine and *RasterEngine.
type Engine interface {
	// ZoomsToFit reports whether Fit changes the zoom factor.
	ZoomsToFit() bool

	// grid returns the grid for the layout's pages. Not called on an empty
	// layout.
	grid(l *Layout) grid

	// orientation returns the cell traversal order.
	orientation(l *Layout) Orientation

	// even reports whether all columns and rows get the same size.
	even() (widths, heights bool)

	fit(l *Layout, size image.Point, mode FitMode)
	pageSets(count int) []PageSet
}

// grid is a grid of ncols x nrows cells of which the first prepend stay
// empty.
type grid struct {
	ncols, nrows, prepend int
}

// SingleEngine puts all pages in one column, or one row if the layout
// orientation is Horizontal.
type SingleEngine struct {
	// EvenWidths and EvenHeights give all columns, respectively rows, the
	// size of the largest.
	EvenWidths  bool
	EvenHeights bool
}

// ZoomsToFit returns true.
func (SingleEngine) ZoomsToFit() bool { return true }

func (SingleEngine) grid(l *Layout) grid {
	if l.Orientation == Vertical {
		return grid{ncols: 1, nrows: l.Count()}
	}
	return grid{ncols: l.Count(), nrows: 1}
}

func (SingleEngine) orientation(l *Layout) Orientation { return l.Orientation }

func (e SingleEngine) even() (bool, bool) { return e.EvenWidths, e.EvenHeights }

func (e SingleEngine) fit(l *Layout, size image.Point, mode FitMode) {
	fitZoom(l, size, mode, zoomFitWidth)
}

func (SingleEngine) pageSets(count int) []PageSet {
	return singlePageSets(count)
}

// RowEngine puts pages in rows of PagesPerRow pages, with PagesFirstRow
// pages in the first row; the first row is padded with empty cells on the
// left. The layout orientation is ignored.
//
// In non-continuous mode a page set is one row.
type RowEngine struct {
	PagesPerRow   int
	PagesFirstRow int

	// FitAllColumns makes FitWidth fit all columns instead of one page.
	FitAllColumns bool

	EvenWidths  bool
	EvenHeights bool
}

// NewRowEngine returns a row engine showing two pages per row with a single
// page in the first row, like an opened book.
func NewRowEngine() *RowEngine {
	return &RowEngine{PagesPerRow: 2, PagesFirstRow: 1, FitAllColumns: true}
}

// ZoomsToFit returns true.
func (*RowEngine) ZoomsToFit() bool { return true }

func (e *RowEngine) perRow() int {
	return max(e.PagesPerRow, 1)
}

// LeadingBlanks returns the number of empty cells before the first page
// when the layout has more than one row.
func (e *RowEngine) LeadingBlanks() int {
	ppr := e.perRow()
	return ((ppr-e.PagesFirstRow)%ppr + ppr) % ppr
}

func (e *RowEngine) grid(l *Layout) grid {
	count := l.Count()
	if count == 0 {
		return grid{}
	}
	g := grid{ncols: e.perRow()}
	if count > g.ncols {
		g.prepend = e.LeadingBlanks()
	} else {
		g.ncols = count
	}
	g.nrows = (count + g.prepend + g.ncols - 1) / g.ncols
	return g
}

func (*RowEngine) orientation(*Layout) Orientation { return Horizontal }

func (e *RowEngine) even() (bool, bool) { return e.EvenWidths, e.EvenHeights }

func (e *RowEngine) fit(l *Layout, size image.Point, mode FitMode) {
	fitZoom(l, size, mode, e.zoomFitWidth)
}

// zoomFitWidth gives every column a share of the width proportional to the
// natural width of its widest page.
func (e *RowEngine) zoomFitWidth(l *Layout, width int) float64 {
	if !e.FitAllColumns || e.perRow() == 1 || l.Count() < 2 {
		return zoomFitWidth(l, width)
	}
	g := e.grid(l)
	m, pm := l.Margins, l.PageMargins
	width -= m.Left + m.Right + (pm.Left+pm.Right)*g.ncols
	width -= l.Spacing * (g.ncols - 1)
	if e.EvenWidths {
		return zoomFitWidth(l, width/g.ncols)
	}

	widest := make([]*page.Page, g.ncols)
	eachCell(l, e, g, func(p *page.Page, col, _ int) {
		if widest[col] == nil || l.defaultWidth(p) > l.defaultWidth(widest[col]) {
			widest[col] = p
		}
	})
	var total float64
	for _, p := range widest {
		if p != nil {
			total += l.defaultWidth(p)
		}
	}
	zoom := math.Inf(1)
	for _, p := range widest {
		if p == nil {
			continue
		}
		share := int(math.Floor(float64(width) * l.defaultWidth(p) / total))
		zoom = min(zoom, p.ZoomForWidth(share, l.Rotation, l.DPIX))
	}
	return zoom
}

func (e *RowEngine) pageSets(count int) []PageSet {
	var result []PageSet
	left := count
	if left == 0 {
		return nil
	}
	ppr := e.perRow()
	if e.PagesFirstRow > 0 && e.PagesFirstRow != ppr {
		n := min(left, e.PagesFirstRow)
		result = append(result, PageSet{Count: 1, Length: n})
		left -= n
	}
	if left > 0 {
		full := left / ppr
		left %= ppr
		if full > 0 {
			result = append(result, PageSet{Count: full, Length: ppr})
		}
		if left > 0 {
			if n := len(result); n > 0 && result[n-1].Length == left {
				result[n-1].Count++
			} else {
				result = append(result, PageSet{Count: 1, Length: left})
			}
		}
	}
	return result
}

// RasterEngine arranges pages in a grid whose number of columns and rows
// follows from the viewport size given to Fit. It never changes the zoom
// factor. FitBoth is handled like FitWidth.
type RasterEngine struct {
	EvenWidths  bool
	EvenHeights bool

	size image.Point
	mode FitMode
}

// ZoomsToFit returns false.
func (*RasterEngine) ZoomsToFit() bool { return false }

func (e *RasterEngine) fit(_ *Layout, size image.Point, mode FitMode) {
	e.size = size
	e.mode = mode
}

func (*RasterEngine) orientation(l *Layout) Orientation { return l.Orientation }

func (e *RasterEngine) even() (bool, bool) { return e.EvenWidths, e.EvenHeights }

func (*RasterEngine) pageSets(count int) []PageSet {
	return singlePageSets(count)
}

// grid searches the largest number of columns (FitWidth) or rows
// (FitHeight) whose total size still fits the viewport. Without a fit mode
// the grid is roughly square.
func (e *RasterEngine) grid(l *Layout) grid {
	count := l.Count()
	m, pm := l.Margins, l.PageMargins
	width := e.size.X - m.Left - m.Right
	height := e.size.Y - m.Top - m.Bottom
	pmh := pm.Left + pm.Right
	pmv := pm.Top + pm.Bottom

	switch {
	case e.mode&FitWidth != 0:
		w := l.WidestPage().Width + pmh
		ncols := (width + l.Spacing) / max(w+l.Spacing, 1)
		if ncols > 0 {
			ncols = e.searchCols(l, width, pmh, ncols)
		} else {
			ncols = 1
		}
		return grid{ncols: ncols, nrows: ceilDiv(count, ncols)}

	case e.mode&FitHeight != 0:
		h := l.HighestPage().Height + pmv
		nrows := (height + l.Spacing) / max(h+l.Spacing, 1)
		if nrows > 0 {
			nrows = e.searchRows(l, height, pmv, nrows)
		} else {
			nrows = 1
		}
		return grid{ncols: ceilDiv(count, nrows), nrows: nrows}

	default:
		ncols := int(math.Ceil(math.Sqrt(float64(count))))
		return grid{ncols: ncols, nrows: ceilDiv(count, ncols)}
	}
}

// searchCols tries more columns than the widest page suggests until the
// grid is as wide as the viewport.
func (e *RasterEngine) searchCols(l *Layout, width, pmh, ncols int) int {
	count := l.Count()
	for try := ncols + 1; try <= count; try++ {
		cw, _ := dimensions(l, e, grid{ncols: try, nrows: ceilDiv(count, try)})
		if sum(cw)+l.Spacing*(try-1)+pmh*try >= width {
			return try - 1
		}
	}
	return count
}

// searchRows is searchCols for rows.
func (e *RasterEngine) searchRows(l *Layout, height, pmv, nrows int) int {
	count := l.Count()
	for try := nrows + 1; try <= count; try++ {
		_, rh := dimensions(l, e, grid{ncols: ceilDiv(count, try), nrows: try})
		if sum(rh)+l.Spacing*(try-1)+pmv*try >= height {
			return try - 1
		}
	}
	return count
}

// eachCell calls fn for every page with its cell, in page order. Cells are
// traversed column by column for vertical orientation, row by row
// otherwise, skipping the first g.prepend cells.
func eachCell(l *Layout, e Engine, g grid, fn func(p *page.Page, col, row int)) {
	vertical := e.orientation(l) == Vertical
	for i, p := range l.Pages {
		cell := i + g.prepend
		var col, row int
		if vertical {
			col, row = cell/max(g.nrows, 1), cell%max(g.nrows, 1)
		} else {
			row, col = cell/max(g.ncols, 1), cell%max(g.ncols, 1)
		}
		if col >= g.ncols || row >= g.nrows {
			return
		}
		fn(p, col, row)
	}
}

// dimensions returns the column widths and row heights of the grid, the
// size of the largest page in each.
func dimensions(l *Layout, e Engine, g grid) (colWidths, rowHeights []int) {
	colWidths = make([]int, g.ncols)
	rowHeights = make([]int, g.nrows)
	eachCell(l, e, g, func(p *page.Page, col, row int) {
		colWidths[col] = max(colWidths[col], p.Width)
		rowHeights[row] = max(rowHeights[row], p.Height)
	})
	evenW, evenH := e.even()
	if evenW {
		fill(colWidths, maxOf(colWidths))
	}
	if evenH {
		fill(rowHeights, maxOf(rowHeights))
	}
	return colWidths, rowHeights
}

// positionPages sets the position of every page.
func positionPages(l *Layout, e Engine) {
	g := e.grid(l)
	colWidths, rowHeights := dimensions(l, e, g)

	m, pm := l.Margins, l.PageMargins
	pmh := pm.Left + pm.Right
	pmv := pm.Top + pm.Bottom

	xoff := make([]int, g.ncols)
	yoff := make([]int, g.nrows)
	for i := range xoff {
		if i == 0 {
			xoff[i] = m.Left + pm.Left
		} else {
			xoff[i] = xoff[i-1] + colWidths[i-1] + l.Spacing + pmh
		}
	}
	for i := range yoff {
		if i == 0 {
			yoff[i] = m.Top + pm.Top
		} else {
			yoff[i] = yoff[i-1] + rowHeights[i-1] + l.Spacing + pmv
		}
	}

	eachCell(l, e, g, func(p *page.Page, col, row int) {
		x, y := align(p.Width, p.Height, colWidths[col], rowHeights[row], l.Alignment)
		p.X = xoff[col] + x
		p.Y = yoff[row] + y
	})
}

// fitZoom sets the zoom factor so that the widest and/or highest page fit.
func fitZoom(l *Layout, size image.Point, mode FitMode, fitWidth func(*Layout, int) float64) {
	if mode == FixedScale || l.Empty() {
		return
	}
	zoom := math.Inf(1)
	if mode&FitWidth != 0 {
		zoom = min(zoom, fitWidth(l, size.X))
	}
	if mode&FitHeight != 0 {
		zoom = min(zoom, zoomFitHeight(l, size.Y))
	}
	if !math.IsInf(zoom, 1) {
		l.ZoomFactor = zoom
	}
}

// zoomFitWidth returns the zoom factor at which the widest page fits width.
func zoomFitWidth(l *Layout, width int) float64 {
	m, pm := l.Margins, l.PageMargins
	width -= m.Left + m.Right + pm.Left + pm.Right
	return l.WidestPage().ZoomForWidth(width, l.Rotation, l.DPIX)
}

// zoomFitHeight returns the zoom factor at which the highest page fits
// height.
func zoomFitHeight(l *Layout, height int) float64 {
	m, pm := l.Margins, l.PageMargins
	height -= m.Top + m.Bottom + pm.Top + pm.Bottom
	return l.HighestPage().ZoomForHeight(height, l.Rotation, l.DPIY)
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}

func sum(s []int) int {
	n := 0
	for _, v := range s {
		n += v
	}
	return n
}

func maxOf(s []int) int {
	m := 0
	for _, v := range s {
		m = max(m, v)
	}
	return m
}

func fill(s []int, v int) {
	for i := range s {
		s[i] = v
	}
}
