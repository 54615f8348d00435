// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"

	xdraw "golang.org/x/image/draw"

	"github.com/gogpu/pageview"
	"github.com/gogpu/pageview/internal/region"
	"github.com/gogpu/pageview/page"
	"github.com/gogpu/pageview/tile"
)

// Renderer paints pages of one Drawer kind from the tile cache of a
// Service, scheduling missing tiles in the background.
//
// Thread safety: Renderer is safe for concurrent use. Its configuration is
// fixed at creation.
type Renderer struct {
	svc    *Service
	drawer Drawer
	paper  color.Color
	maxW   int
	maxH   int
	report func(err *Error)
}

// NewRenderer creates a renderer drawing with d and caching in svc.
func NewRenderer(svc *Service, d Drawer, opts ...Option) *Renderer {
	r := &Renderer{
		svc:    svc,
		drawer: d,
		paper:  color.White,
		maxW:   tile.MaxWidth,
		maxH:   tile.MaxHeight,
		report: logError,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func logError(err *Error) {
	pageview.Logger().Warn("render: tile failed",
		"key", err.Key.String(),
		"tile", err.Tile.Rect().String(),
		"err", err.Err)
}

// Kind returns the kind of the renderer's drawer.
func (r *Renderer) Kind() Kind {
	return r.drawer.Kind()
}

// Service returns the service the renderer uses.
func (r *Renderer) Service() *Service {
	return r.svc
}

// PaperColor returns the background color for p.
func (r *Renderer) PaperColor(p *page.Page) color.Color {
	if p.PaperColor != nil {
		return p.PaperColor
	}
	return r.paper
}

// Tiles returns the tiles covering an image of the given size.
func (r *Renderer) Tiles(width, height int) []tile.Tile {
	return tile.Split(width, height, r.maxW, r.maxH)
}

// TileImage is a cached image of one tile.
type TileImage struct {
	Tile  tile.Tile
	Image image.Image
}

// Info describes the cache state of a page area.
type Info struct {
	// Images are the cached tiles intersecting Target.
	Images []TileImage

	// Missing are the tiles intersecting Target that are not cached.
	Missing []tile.Tile

	// Key is the render key of the page at Ratio.
	Key tile.Key

	// Target is the area in device pixels, relative to the page origin and
	// clipped to the page.
	Target image.Rectangle

	// Ratio is the device pixel ratio.
	Ratio float64

	since int64 // cache tick before the lookup
}

// Info returns the cache state of rect of p, where rect is relative to the
// page origin in layout pixels and ratio is the device pixel ratio.
func (r *Renderer) Info(p *page.Page, rect image.Rectangle, ratio float64) Info {
	if ratio <= 0 {
		ratio = 1
	}
	key := tile.NewKey(p, ratio)
	info := Info{
		Key:    key,
		Target: scaleRect(rect, ratio).Intersect(image.Rect(0, 0, key.Width, key.Height)),
		Ratio:  ratio,
	}
	if info.Target.Empty() {
		return info
	}

	info.since = r.svc.cache.Tick()
	tiles := tile.Intersecting(r.Tiles(key.Width, key.Height), info.Target)
	cached := r.svc.cache.Use(key, tiles)
	for _, t := range tiles {
		if img, ok := cached[t]; ok {
			info.Images = append(info.Images, TileImage{Tile: t, Image: img})
		} else {
			info.Missing = append(info.Missing, t)
		}
	}
	return info
}

// Update reports whether rect of p is completely cached. If not, the
// missing tiles are scheduled and cb is called when each is ready.
func (r *Renderer) Update(p *page.Page, rect image.Rectangle, ratio float64, cb *Callback) bool {
	info := r.Info(p, rect, ratio)
	if len(info.Missing) == 0 {
		return true
	}
	r.scheduleMissing(p, info, cb)
	return false
}

// Schedule requests background rendering of tiles of p at key. Tiles that
// are already cached are skipped and cb is not called for them.
func (r *Renderer) Schedule(p *page.Page, key tile.Key, tiles []tile.Tile, cb *Callback) {
	r.svc.schedule(r, p, key, tiles, cb, r.svc.cache.Tick())
}

// scheduleMissing schedules the tiles info found missing. A tile stored
// since the lookup still calls cb.
func (r *Renderer) scheduleMissing(p *page.Page, info Info, cb *Callback) {
	r.svc.schedule(r, p, info.Key, info.Missing, cb, info.since)
}

// Unschedule removes cb from all jobs rendering the content of pages.
// Jobs that have not started and have no callback left are dropped.
func (r *Renderer) Unschedule(pages []*page.Page, cb *Callback) {
	r.svc.unschedule(pages, cb)
}

// Invalidate removes all cached tiles of the content of pages, e.g. after
// a setting affecting their look changed.
func (r *Renderer) Invalidate(pages []*page.Page) {
	for _, p := range pages {
		r.svc.cache.Invalidate(p)
	}
}

// Paint draws rect of p into dst, with the page origin at the device pixel
// position at. Missing tiles are scheduled with cb.
//
// Paint never blocks on rendering. Parts without an exact tile show a
// cached rendering at another size, scaled; parts without any rendering are
// filled with the paper color.
func (r *Renderer) Paint(dst draw.Image, at image.Point, p *page.Page, rect image.Rectangle, ratio float64, cb *Callback) {
	info := r.Info(p, rect, ratio)
	if info.Target.Empty() {
		return
	}
	if len(info.Missing) > 0 {
		r.scheduleMissing(p, info, cb)
	}

	var covered region.Region
	for _, ti := range info.Images {
		covered.Add(ti.Tile.Rect().Intersect(info.Target))
	}

	// Approximations, best first. Each only fills what better ones left.
	type approx struct {
		img    image.Image
		dr     image.Rectangle // scaled tile rect in key pixels
		pieces []image.Rectangle
	}
	var approxes []approx
	if !covered.Covers(info.Target) {
	candidates:
		for _, c := range r.svc.cache.Closest(info.Key) {
			sx := float64(info.Key.Width) / float64(c.Width)
			sy := float64(info.Key.Height) / float64(c.Height)
			for t, img := range c.Tiles {
				dr := image.Rect(
					int(math.Floor(float64(t.X)*sx)),
					int(math.Floor(float64(t.Y)*sy)),
					int(math.Ceil(float64(t.X+t.W)*sx)),
					int(math.Ceil(float64(t.Y+t.H)*sy)),
				)
				pieces := covered.Uncovered(dr.Intersect(info.Target))
				if len(pieces) == 0 {
					continue
				}
				for _, pc := range pieces {
					covered.Add(pc)
				}
				approxes = append(approxes, approx{img: img, dr: dr, pieces: pieces})
				if covered.Covers(info.Target) {
					break candidates
				}
			}
		}
	}

	target := info.Target.Add(at)
	draw.Draw(dst, target, image.NewUniform(r.PaperColor(p)), image.Point{}, draw.Src)

	for i := len(approxes) - 1; i >= 0; i-- {
		a := approxes[i]
		for _, pc := range a.pieces {
			xdraw.ApproxBiLinear.Scale(clip(dst, pc.Add(at)), a.dr.Add(at), a.img, a.img.Bounds(), xdraw.Over, nil)
		}
	}

	for _, ti := range info.Images {
		tr := ti.Tile.Rect().Add(at)
		dr := tr.Intersect(target)
		sp := ti.Image.Bounds().Min.Add(dr.Min.Sub(tr.Min))
		draw.Draw(dst, dr, ti.Image, sp, draw.Over)
	}
}

// Image renders rect of p at ratio synchronously, bypassing the cache and
// the worker pool. rect is relative to the page origin in layout pixels.
func (r *Renderer) Image(p *page.Page, rect image.Rectangle, ratio float64) (*image.RGBA, error) {
	if ratio <= 0 {
		ratio = 1
	}
	key := tile.NewKey(p, ratio)
	target := scaleRect(rect, ratio).Intersect(image.Rect(0, 0, key.Width, key.Height))
	if target.Empty() {
		return nil, fmt.Errorf("render: %v: empty area %v", key, rect)
	}
	t := tile.Tile{X: target.Min.X, Y: target.Min.Y, W: target.Dx(), H: target.Dy()}
	img, err := r.render(p, key, t)
	if err != nil {
		return nil, err
	}
	return img, nil
}

// render draws one tile into a new image filled with the paper color.
// Drawer panics are returned as errors.
func (r *Renderer) render(p *page.Page, key tile.Key, t tile.Tile) (img *image.RGBA, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			img, err = nil, fmt.Errorf("%s drawer panic: %v", r.drawer.Kind(), rec)
		}
	}()

	img = image.NewRGBA(image.Rect(0, 0, t.W, t.H))
	draw.Draw(img, img.Bounds(), image.NewUniform(r.PaperColor(p)), image.Point{}, draw.Src)
	if err := r.drawer.Draw(img, p, key, t); err != nil {
		return nil, fmt.Errorf("%s drawer: %w", r.drawer.Kind(), err)
	}
	return img, nil
}

// scaleRect scales r by ratio, rounding outwards.
func scaleRect(r image.Rectangle, ratio float64) image.Rectangle {
	if ratio == 1 {
		return r
	}
	return image.Rect(
		int(math.Floor(float64(r.Min.X)*ratio)),
		int(math.Floor(float64(r.Min.Y)*ratio)),
		int(math.Ceil(float64(r.Max.X)*ratio)),
		int(math.Ceil(float64(r.Max.Y)*ratio)),
	)
}

// clip returns the part of dst inside r, or dst itself if it cannot be
// clipped.
func clip(dst draw.Image, r image.Rectangle) draw.Image {
	type subImager interface {
		SubImage(image.Rectangle) image.Image
	}
	if s, ok := dst.(subImager); ok {
		if sub, ok := s.SubImage(r).(draw.Image); ok {
			return sub
		}
	}
	return dst
}
