// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package render draws pages as tiles, caches the tiles and renders missing
// tiles in the background.
//
// # Core Types
//
//   - Service: the process-wide tile cache, job registry and worker pool
//   - Renderer: paints pages of one Drawer kind using a Service
//   - Drawer: turns one tile of a page into pixels (backend/raster, backend/solid)
//   - Callback: a comparable handle notified when a scheduled tile is ready
//
// # Usage
//
// Create one Service at startup and share it between all renderers:
//
//	svc := render.NewService()
//	defer svc.Close()
//
//	r := render.NewRenderer(svc, raster.New())
//	repaint := render.NewCallback(func(p *page.Page) { view.Update(p) })
//
//	// in the paint handler, never blocks
//	r.Paint(frame, p.Pos(), p, visible, 1.0, repaint)
//
//	// when the page scrolls out of view
//	r.Unschedule([]*page.Page{p}, repaint)
//
// # Paint
//
// Paint draws the tiles that are cached at the exact size, schedules the
// missing ones, and covers the rest with cached renderings of the page at
// other sizes, scaled to fit. What remains is filled with the paper color,
// so a painted frame never has a gap.
//
// # Scheduling
//
// A tile requested several times shares one job; every callback added to
// it is called once when it completes. At most MaxJobs jobs run at the same
// time, the most recently requested first. Pages with an equal non-nil
// Resource token are never rendered concurrently.
//
// Drawer errors and panics never leave a job: the tile is cached as a
// transparent placeholder and the error is passed to the ErrorHandler.
package render
