// Package backend selects page drawers by name.
//
// A drawer turns page content into pixels for the render package. Backend
// packages register a factory under their name from an init function, so a
// program chooses the content types it supports by importing them:
//
//	import (
//		_ "github.com/gogpu/pageview/backend/raster"
//		_ "github.com/gogpu/pageview/backend/solid"
//	)
//
// # Backend Selection
//
// Use Get to request a specific drawer, or Default for the preferred one
// that is registered:
//
//	d, err := backend.Get(backend.Raster)
//	if err != nil {
//		log.Fatal(err)
//	}
//	r := render.NewRenderer(svc, d)
//
// # Available Backends
//
//   - raster: bitmap images (PNG, JPEG, GIF, BMP, TIFF, WebP) read from files
//   - solid: flat color pages, for blank pages and placeholders
package backend
