package tile

import (
	"fmt"

	"github.com/gogpu/pageview/page"
)

// Key identifies one rendering of a page's content at a pixel size and
// rotation. Two pages with the same Group and Ident produce equal keys at
// equal size and rotation, even when they are distinct Page values.
type Key struct {
	Group    *page.Group
	Ident    int
	Rotation page.Rotation
	Width    int
	Height   int
}

// NewKey returns the key for p rendered at the given device pixel ratio.
// Width and height are the page's pixel size multiplied by ratio.
func NewKey(p *page.Page, ratio float64) Key {
	return Key{
		Group:    p.Group,
		Ident:    p.Ident,
		Rotation: p.ComputedRotation,
		Width:    int(float64(p.Width) * ratio),
		Height:   int(float64(p.Height) * ratio),
	}
}

// Size returns the rotation/size part of the key.
func (k Key) Size() Size {
	return Size{Rotation: k.Rotation, Width: k.Width, Height: k.Height}
}

// Content reports whether k refers to the content of p.
func (k Key) Content(p *page.Page) bool {
	return k.Group == p.Group && k.Ident == p.Ident
}

func (k Key) String() string {
	return fmt.Sprintf("%v/%d@%dx%d r%d", k.Group, k.Ident, k.Width, k.Height, k.Rotation)
}

// Size is a rendering size and rotation, the part of a Key below the
// (group, ident) identity.
type Size struct {
	Rotation page.Rotation
	Width    int
	Height   int
}
