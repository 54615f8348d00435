// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"image/color"

	"github.com/gogpu/pageview/cache"
)

// DefaultMaxJobs is the default number of tiles rendered concurrently.
const DefaultMaxJobs = 4

// ServiceOption configures a Service during creation.
type ServiceOption func(*serviceOptions)

type serviceOptions struct {
	maxJobs   int
	cacheSize int
}

func defaultServiceOptions() serviceOptions {
	return serviceOptions{
		maxJobs:   DefaultMaxJobs,
		cacheSize: cache.DefaultMaxBytes,
	}
}

// WithMaxJobs sets the maximum number of jobs running at the same time.
// Values below 1 are ignored.
func WithMaxJobs(n int) ServiceOption {
	return func(o *serviceOptions) {
		if n > 0 {
			o.maxJobs = n
		}
	}
}

// WithCacheSize sets the tile cache budget in bytes.
func WithCacheSize(bytes int) ServiceOption {
	return func(o *serviceOptions) {
		o.cacheSize = bytes
	}
}

// Option configures a Renderer during creation.
//
// Example:
//
//	r := render.NewRenderer(svc, solid.New(),
//	    render.WithPaperColor(color.Gray{Y: 0xf0}),
//	    render.WithTileSize(512, 512))
type Option func(*Renderer)

// WithPaperColor sets the background color used for pages that have no
// PaperColor of their own. The default is white.
func WithPaperColor(c color.Color) Option {
	return func(r *Renderer) {
		r.paper = c
	}
}

// WithTileSize sets the nominal maximum tile size in device pixels.
// Non-positive values keep the default of tile.MaxWidth x tile.MaxHeight.
func WithTileSize(width, height int) Option {
	return func(r *Renderer) {
		if width > 0 {
			r.maxW = width
		}
		if height > 0 {
			r.maxH = height
		}
	}
}

// WithErrorHandler sets the function receiving render failures. It is
// called from the worker goroutine that ran the job. The default logs a
// warning with pageview.Logger.
func WithErrorHandler(fn func(err *Error)) Option {
	return func(r *Renderer) {
		if fn != nil {
			r.report = fn
		}
	}
}
