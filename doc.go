// Package pageview displays paginated documents at arbitrary zoom and
// rotation without blocking the caller while pages are rasterized.
//
// # Overview
//
// The module is organized around three cooperating parts:
//
//   - [github.com/gogpu/pageview/layout] positions pages under pluggable
//     arrangement engines and solves fit-to-viewport problems.
//   - [github.com/gogpu/pageview/cache] keeps rendered tiles in a bounded,
//     process-wide store with global recency eviction.
//   - [github.com/gogpu/pageview/render] schedules background tile renders,
//     deduplicates them and paints gap-free frames from whatever is cached.
//
// # Quick Start
//
//	svc := render.NewService()
//	defer svc.Close()
//
//	r := render.NewRenderer(svc, raster.New())
//	l := layout.New()
//	l.Pages = pages
//	l.Fit(image.Pt(1024, 768), layout.FitWidth)
//	l.Update()
//
//	cb := render.NewCallback(func(p *page.Page) { repaint(p) })
//	for _, p := range l.PagesAt(viewport) {
//	    at := p.Pos().Sub(viewport.Min)
//	    r.Paint(dst, at, p, viewport.Sub(p.Pos()).Intersect(p.Rect()), 1.0, cb)
//	}
//
// # Coordinate System
//
// Layout coordinates are logical pixels with the origin at the top-left.
// Render keys and tiles are in device pixels: logical size multiplied by the
// device pixel ratio passed to the renderer.
//
// # Logging
//
// pageview is silent by default. Call [SetLogger] to enable diagnostics.
package pageview

// Version information
const (
	// Version is the current version of the library
	Version = "0.1.0"

	// VersionMajor is the major version
	VersionMajor = 0

	// VersionMinor is the minor version
	VersionMinor = 1

	// VersionPatch is the patch version
	VersionPatch = 0
)
