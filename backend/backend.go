package backend

import (
	"errors"

	"github.com/gogpu/pageview/render"
)

// Backend names.
const (
	Raster = "raster"
	Solid  = "solid"
)

// ErrNotAvailable is returned when a requested backend is not registered.
var ErrNotAvailable = errors.New("backend: not available")

// Factory creates a drawer.
type Factory func() render.Drawer
