// Package solid provides a drawer that fills pages with a flat color.
//
// It is used for blank pages, for placeholders of content that is not
// available, and in tests. A page whose Source is a color.Color is filled
// with that color; other pages get the drawer's color, or only the paper
// color if the drawer has none.
package solid

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/gogpu/pageview/backend"
	"github.com/gogpu/pageview/page"
	"github.com/gogpu/pageview/render"
	"github.com/gogpu/pageview/tile"
)

func init() {
	backend.Register(backend.Solid, func() render.Drawer { return New(nil) })
}

// Drawer fills tiles with a color.
type Drawer struct {
	color color.Color
}

// New returns a drawer filling pages with c. A nil c leaves pages blank.
func New(c color.Color) *Drawer {
	return &Drawer{color: c}
}

// Kind returns render.KindSolid.
func (d *Drawer) Kind() render.Kind {
	return render.KindSolid
}

// Draw fills dst with the page's color.
func (d *Drawer) Draw(dst draw.Image, p *page.Page, _ tile.Key, _ tile.Tile) error {
	c := d.color
	if pc, ok := p.Source.(color.Color); ok {
		c = pc
	}
	if c == nil {
		return nil
	}
	draw.Draw(dst, dst.Bounds(), image.NewUniform(c), image.Point{}, draw.Over)
	return nil
}

// NewPage returns a blank page of the given size in points, filled with c
// when drawn. Each page gets its own group.
func NewPage(name string, width, height float64, c color.Color) *page.Page {
	p := page.New(page.NewGroup(name), 0, width, height)
	if c != nil {
		p.Source = c
	}
	return p
}
