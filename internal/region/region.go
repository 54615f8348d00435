// Package region tracks an area of the plane as a set of disjoint
// rectangles.
//
// It is used by the paint path to know exactly which part of a target
// rectangle has already been covered by tile images, so that lower quality
// images only fill what is still missing.
//
// Thread safety: Region is NOT thread-safe.
package region

import "image"

// Region is a union of pairwise disjoint, non-empty rectangles.
// The zero value is an empty region.
type Region struct {
	rects []image.Rectangle
}

// Rects returns the disjoint rectangles making up the region.
// The returned slice should not be modified.
func (g *Region) Rects() []image.Rectangle {
	return g.rects
}

// Empty reports whether the region covers no pixels.
func (g *Region) Empty() bool {
	return len(g.rects) == 0
}

// Add adds r to the region. Only the part of r not yet covered is stored.
func (g *Region) Add(r image.Rectangle) {
	g.rects = append(g.rects, g.Uncovered(r)...)
}

// Uncovered returns the part of r not covered by the region, as disjoint
// rectangles. Returns nil if r is fully covered or empty.
func (g *Region) Uncovered(r image.Rectangle) []image.Rectangle {
	if r.Empty() {
		return nil
	}
	pieces := []image.Rectangle{r}
	for _, c := range g.rects {
		if !c.Overlaps(r) {
			continue
		}
		next := pieces[:0:0]
		for _, p := range pieces {
			next = append(next, Subtract(p, c)...)
		}
		pieces = next
		if len(pieces) == 0 {
			return nil
		}
	}
	return pieces
}

// Covers reports whether r lies entirely inside the region.
func (g *Region) Covers(r image.Rectangle) bool {
	return len(g.Uncovered(r)) == 0
}

// Area returns the number of pixels covered.
func (g *Region) Area() int {
	a := 0
	for _, r := range g.rects {
		a += r.Dx() * r.Dy()
	}
	return a
}

// Subtract returns r minus s as up to four disjoint rectangles.
func Subtract(r, s image.Rectangle) []image.Rectangle {
	is := r.Intersect(s)
	if is.Empty() {
		if r.Empty() {
			return nil
		}
		return []image.Rectangle{r}
	}
	out := make([]image.Rectangle, 0, 4)
	// full-width bands above and below the intersection
	if is.Min.Y > r.Min.Y {
		out = append(out, image.Rect(r.Min.X, r.Min.Y, r.Max.X, is.Min.Y))
	}
	if is.Max.Y < r.Max.Y {
		out = append(out, image.Rect(r.Min.X, is.Max.Y, r.Max.X, r.Max.Y))
	}
	// left and right of the intersection within its rows
	if is.Min.X > r.Min.X {
		out = append(out, image.Rect(r.Min.X, is.Min.Y, is.Min.X, is.Max.Y))
	}
	if is.Max.X < r.Max.X {
		out = append(out, image.Rect(is.Max.X, is.Min.Y, r.Max.X, is.Max.Y))
	}
	return out
}
