// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"image/draw"

	"github.com/gogpu/pageview/page"
	"github.com/gogpu/pageview/tile"
)

// Kind identifies a Drawer implementation.
type Kind int

// Drawer kinds.
const (
	// KindSolid fills pages with a flat color.
	KindSolid Kind = iota

	// KindRaster draws bitmap images.
	KindRaster
)

// String returns the name of the kind.
func (k Kind) String() string {
	switch k {
	case KindSolid:
		return "solid"
	case KindRaster:
		return "raster"
	default:
		return "unknown"
	}
}

// Drawer renders page content. Implementations live in the backend
// packages; new kinds are added there and to the Kind constants.
type Drawer interface {
	// Kind returns the kind of this drawer.
	Kind() Kind

	// Draw draws tile t of p rendered at key's size and rotation into dst.
	// dst has the size of t with its origin at (0, 0) and is already filled
	// with the paper color.
	//
	// Draw is called from worker goroutines. Calls for pages with an equal
	// non-nil Resource token never overlap.
	Draw(dst draw.Image, p *page.Page, key tile.Key, t tile.Tile) error
}

// Callback is notified with the page when a scheduled tile has been
// rendered. Callbacks are compared by identity: create one with NewCallback
// and pass the same value to Schedule and Unschedule.
//
// A nil *Callback is valid and never called.
type Callback struct {
	fn func(*page.Page)
}

// NewCallback returns a callback calling fn.
func NewCallback(fn func(*page.Page)) *Callback {
	return &Callback{fn: fn}
}

func (c *Callback) call(p *page.Page) {
	if c != nil && c.fn != nil {
		c.fn(p)
	}
}
