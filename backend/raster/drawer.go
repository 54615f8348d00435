package raster

import (
	"fmt"
	"image"
	"image/draw"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/math/f64"

	"github.com/gogpu/pageview"
	"github.com/gogpu/pageview/backend"
	"github.com/gogpu/pageview/internal/cache"
	"github.com/gogpu/pageview/page"
	"github.com/gogpu/pageview/render"
	"github.com/gogpu/pageview/tile"
)

// DefaultCacheBytes is the default budget for decoded images.
const DefaultCacheBytes = 256 << 20

func init() {
	backend.Register(backend.Raster, func() render.Drawer { return New() })
}

// Drawer renders raster pages.
//
// Thread safety: Drawer is safe for concurrent use.
type Drawer struct {
	images *cache.Cache[*Source, image.Image]
	scaler xdraw.Interpolator
}

// Option configures a Drawer.
type Option func(*Drawer)

// WithCacheBytes sets the budget for decoded images. 0 means unlimited.
func WithCacheBytes(n int) Option {
	return func(d *Drawer) {
		d.images = cache.New[*Source, image.Image](n)
	}
}

// WithInterpolator sets the resampling filter. The default is
// draw.BiLinear from golang.org/x/image/draw.
func WithInterpolator(i xdraw.Interpolator) Option {
	return func(d *Drawer) {
		if i != nil {
			d.scaler = i
		}
	}
}

// New returns a raster drawer.
func New(opts ...Option) *Drawer {
	d := &Drawer{
		images: cache.New[*Source, image.Image](DefaultCacheBytes),
		scaler: xdraw.BiLinear,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Kind returns render.KindRaster.
func (d *Drawer) Kind() render.Kind {
	return render.KindRaster
}

// Forget drops the decoded image of p's source from the cache.
func (d *Drawer) Forget(p *page.Page) {
	if src, ok := p.Source.(*Source); ok {
		d.images.Delete(src)
	}
}

// Draw draws tile t of the image of p, scaled to key's size and rotated by
// key's rotation.
func (d *Drawer) Draw(dst draw.Image, p *page.Page, key tile.Key, t tile.Tile) error {
	src, ok := p.Source.(*Source)
	if !ok {
		return fmt.Errorf("raster: page %d has no raster source", p.Ident)
	}
	img, err := d.image(src)
	if err != nil {
		return err
	}
	sr := img.Bounds()
	if sr.Empty() || key.Width <= 0 || key.Height <= 0 {
		return nil
	}

	s2d := transform(sr, key, t)
	d.scaler.Transform(dst, s2d, img, sr, xdraw.Over, nil)
	return nil
}

func (d *Drawer) image(src *Source) (image.Image, error) {
	if src.img != nil {
		return src.img, nil
	}
	return d.images.GetOrLoad(src, func() (image.Image, int, error) {
		img, err := src.decode()
		if err != nil {
			return nil, 0, err
		}
		b := img.Bounds()
		pageview.Logger().Debug("raster: decoded", "path", src.path, "format", src.format,
			"width", b.Dx(), "height", b.Dy())
		return img, b.Dx() * b.Dy() * 4, nil
	})
}

// transform returns the matrix mapping source pixels of sr onto tile t of
// the image scaled to key's size and rotated clockwise by key's rotation.
func transform(sr image.Rectangle, key tile.Key, t tile.Tile) f64.Aff3 {
	// Unrotated target size.
	uw, uh := float64(key.Width), float64(key.Height)
	if key.Rotation.Transposed() {
		uw, uh = uh, uw
	}
	a := uw / float64(sr.Dx())
	b := uh / float64(sr.Dy())
	mx, my := float64(sr.Min.X), float64(sr.Min.Y)
	tx, ty := float64(t.X), float64(t.Y)

	switch key.Rotation & 3 {
	case page.Rotate90:
		return f64.Aff3{
			0, -b, uh + b*my - tx,
			a, 0, -a*mx - ty,
		}
	case page.Rotate180:
		return f64.Aff3{
			-a, 0, uw + a*mx - tx,
			0, -b, uh + b*my - ty,
		}
	case page.Rotate270:
		return f64.Aff3{
			0, b, -b*my - tx,
			-a, 0, uw + a*mx - ty,
		}
	default:
		return f64.Aff3{
			a, 0, -a*mx - tx,
			0, b, -b*my - ty,
		}
	}
}
