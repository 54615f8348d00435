// Package tile splits rendered page images into bounded rectangular pieces
// and defines the identity of one render request.
//
// A page rendered at W x H device pixels is covered by a grid of tiles that
// exactly partitions the rectangle (0,0)-(W,H). Every tile but the last in a
// row or column is at most MaxWidth x MaxHeight; the last row and column
// absorb the remainder so that a page slightly larger than one tile yields
// roughly equal pieces instead of one huge and one tiny tile.
package tile

import "image"

// Tile size limits in device pixels.
const (
	// MaxWidth is the nominal maximum width of a tile.
	MaxWidth = 2400

	// MaxHeight is the nominal maximum height of a tile.
	MaxHeight = 1600
)

// Tile is a rectangular region of a page's full rendered image.
// Coordinates are device pixels relative to the image's top-left corner.
type Tile struct {
	X, Y int
	W, H int
}

// Rect returns the tile as an image.Rectangle.
func (t Tile) Rect() image.Rectangle {
	return image.Rect(t.X, t.Y, t.X+t.W, t.Y+t.H)
}

// Empty reports whether the tile covers no pixels.
func (t Tile) Empty() bool {
	return t.W <= 0 || t.H <= 0
}

// Split returns the tiles covering a width x height image, in row-major
// order, for the given nominal maximum tile size.
//
// The number of columns is width/maxW + 1, each width/(cols) wide with the
// last column absorbing the remainder; rows likewise.
// Returns nil if width or height is not positive.
func Split(width, height, maxW, maxH int) []Tile {
	if width <= 0 || height <= 0 {
		return nil
	}
	if maxW <= 0 {
		maxW = MaxWidth
	}
	if maxH <= 0 {
		maxH = MaxHeight
	}

	cols := spans(width, width/maxW)
	rows := spans(height, height/maxH)

	tiles := make([]Tile, 0, len(cols)*len(rows))
	y := 0
	for _, h := range rows {
		x := 0
		for _, w := range cols {
			tiles = append(tiles, Tile{X: x, Y: y, W: w, H: h})
			x += w
		}
		y += h
	}
	return tiles
}

// Tiles returns Split(width, height, MaxWidth, MaxHeight).
func Tiles(width, height int) []Tile {
	return Split(width, height, MaxWidth, MaxHeight)
}

// spans divides size into count+1 equal spans, the last absorbing the
// remainder.
func spans(size, count int) []int {
	n := count + 1
	each, extra := size/n, size%n
	s := make([]int, n)
	for i := range s {
		s[i] = each
	}
	s[n-1] += extra
	return s
}

// Intersecting returns the tiles that overlap r.
// The returned slice is newly allocated.
func Intersecting(tiles []Tile, r image.Rectangle) []Tile {
	if r.Empty() {
		return nil
	}
	result := make([]Tile, 0, len(tiles))
	for _, t := range tiles {
		if t.Rect().Overlaps(r) {
			result = append(result, t)
		}
	}
	return result
}
