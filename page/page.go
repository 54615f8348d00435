// Package page defines the page model shared by the layout engine and the
// tile renderer.
//
// A Page has a natural size (PageWidth x PageHeight at DPI), user-set scale
// and rotation, and a pixel geometry (X, Y, Width, Height) that is computed
// by the layout. The pixel geometry is derived state: it is recomputed by
// UpdateSize whenever zoom, resolution or rotation change.
package page

import (
	"image"
	"image/color"
	"math"
)

// Rotation is a multiple of 90 degrees clockwise.
type Rotation int

// Rotation values.
const (
	Rotate0 Rotation = iota
	Rotate90
	Rotate180
	Rotate270
)

// Add composes two rotations.
func (r Rotation) Add(o Rotation) Rotation {
	return (r + o) & 3
}

// Transposed reports whether width and height swap under this rotation.
func (r Rotation) Transposed() bool {
	return r&1 == 1
}

// Degrees returns the rotation angle in degrees.
func (r Rotation) Degrees() int {
	return int(r&3) * 90
}

// Default natural page properties (A4 in points).
const (
	DefaultDPI        = 72.0
	DefaultPageWidth  = 595.28
	DefaultPageHeight = 841.89
)

// Page is one page positioned in a layout.
type Page struct {
	// PageWidth and PageHeight are the natural, unrotated size in units of
	// 1/DPI inch.
	PageWidth  float64
	PageHeight float64

	// DPI is the resolution of the natural size unit.
	DPI float64

	// ScaleX and ScaleY scale the natural size.
	ScaleX float64
	ScaleY float64

	// Rotation is the user-set rotation of this page.
	Rotation Rotation

	// ComputedRotation is Rotation composed with the layout rotation.
	// Set by the layout.
	ComputedRotation Rotation

	// X, Y, Width and Height are the pixel geometry, set by the layout.
	X, Y          int
	Width, Height int

	// PaperColor overrides the renderer's background color when non-nil.
	PaperColor color.Color

	// Group is the shared content source. Ident identifies the page
	// within its group.
	Group *Group
	Ident int

	// Resource is the resource-exclusion token: pages returning an equal,
	// non-nil token are never rendered at the same time. Tokens of types
	// that are not comparable are ignored.
	Resource any

	// Source is backend-specific data used by the drawer.
	Source any
}

// New returns a page with the given natural size at DefaultDPI.
func New(g *Group, ident int, width, height float64) *Page {
	return &Page{
		PageWidth:  width,
		PageHeight: height,
		DPI:        DefaultDPI,
		ScaleX:     1,
		ScaleY:     1,
		Group:      g,
		Ident:      ident,
	}
}

// Copy returns a distinct page with the same attributes. The copy is
// cache-equivalent to p.
func (p *Page) Copy() *Page {
	c := *p
	return &c
}

// SameContent reports whether p and o show the same content.
func (p *Page) SameContent(o *Page) bool {
	return p.Group == o.Group && p.Ident == o.Ident
}

func (p *Page) dpi() float64 {
	if p.DPI <= 0 {
		return DefaultDPI
	}
	return p.DPI
}

func (p *Page) scale() (sx, sy float64) {
	sx, sy = p.ScaleX, p.ScaleY
	if sx == 0 {
		sx = 1
	}
	if sy == 0 {
		sy = 1
	}
	return sx, sy
}

// DefaultSize returns the natural size scaled and transposed according to
// ComputedRotation.
func (p *Page) DefaultSize() (w, h float64) {
	sx, sy := p.scale()
	w, h = p.PageWidth*sx, p.PageHeight*sy
	if p.ComputedRotation.Transposed() {
		w, h = h, w
	}
	return w, h
}

// DefaultInches returns the scaled natural size in inches as displayed
// under the layout rotation. It does not depend on ComputedRotation, so it
// can be used before the layout has been updated.
func (p *Page) DefaultInches(rotation Rotation) (w, h float64) {
	sx, sy := p.scale()
	w, h = p.PageWidth*sx/p.dpi(), p.PageHeight*sy/p.dpi()
	if p.Rotation.Add(rotation).Transposed() {
		w, h = h, w
	}
	return w, h
}

// UpdateSize sets Width and Height for the given device resolution and zoom.
func (p *Page) UpdateSize(dpiX, dpiY, zoom float64) {
	w, h := p.DefaultSize()
	p.Width = int(math.Round(w * dpiX / p.dpi() * zoom))
	p.Height = int(math.Round(h * dpiY / p.dpi() * zoom))
}

// ZoomForWidth returns the zoom factor needed to display the page at the
// given pixel width under the layout rotation.
func (p *Page) ZoomForWidth(width int, rotation Rotation, dpiX float64) float64 {
	width = max(width, 1)
	sx, sy := p.scale()
	w := p.PageWidth * sx
	if p.Rotation.Add(rotation).Transposed() {
		w = p.PageHeight * sy
	}
	return float64(width) * p.dpi() / dpiX / w
}

// ZoomForHeight returns the zoom factor needed to display the page at the
// given pixel height under the layout rotation.
func (p *Page) ZoomForHeight(height int, rotation Rotation, dpiY float64) float64 {
	height = max(height, 1)
	sx, sy := p.scale()
	h := p.PageHeight * sy
	if p.Rotation.Add(rotation).Transposed() {
		h = p.PageWidth * sx
	}
	return float64(height) * p.dpi() / dpiY / h
}

// Pos returns the top-left position of the page.
func (p *Page) Pos() image.Point {
	return image.Pt(p.X, p.Y)
}

// Rect returns the page rectangle relative to its own origin.
func (p *Page) Rect() image.Rectangle {
	return image.Rect(0, 0, p.Width, p.Height)
}

// Geometry returns the page rectangle in layout coordinates.
func (p *Page) Geometry() image.Rectangle {
	return image.Rect(p.X, p.Y, p.X+p.Width, p.Y+p.Height)
}
