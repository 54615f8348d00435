package backend

import (
	"errors"
	"image/draw"
	"slices"
	"testing"

	"github.com/gogpu/pageview/page"
	"github.com/gogpu/pageview/render"
	"github.com/gogpu/pageview/tile"
)

type fakeDrawer struct {
	kind render.Kind
}

func (d fakeDrawer) Kind() render.Kind { return d.kind }

func (fakeDrawer) Draw(draw.Image, *page.Page, tile.Key, tile.Tile) error { return nil }

// withRegistry runs fn with an empty registry and restores it afterwards.
func withRegistry(t *testing.T, fn func()) {
	t.Helper()
	registryMu.Lock()
	saved := backends
	backends = make(map[string]Factory)
	registryMu.Unlock()

	defer func() {
		registryMu.Lock()
		backends = saved
		registryMu.Unlock()
	}()
	fn()
}

func TestRegistryRegisterAndGet(t *testing.T) {
	withRegistry(t, func() {
		Register(Solid, func() render.Drawer { return fakeDrawer{render.KindSolid} })

		if !IsRegistered(Solid) {
			t.Fatal("solid backend should be registered")
		}
		d, err := Get(Solid)
		if err != nil {
			t.Fatalf("Get(solid) error = %v", err)
		}
		if d.Kind() != render.KindSolid {
			t.Errorf("Get(solid).Kind() = %v, want solid", d.Kind())
		}
	})
}

func TestRegistryGetUnregistered(t *testing.T) {
	withRegistry(t, func() {
		d, err := Get("nonexistent")
		if d != nil {
			t.Error("Get(nonexistent) should return nil")
		}
		if !errors.Is(err, ErrNotAvailable) {
			t.Errorf("Get(nonexistent) error = %v, want ErrNotAvailable", err)
		}
	})
}

func TestRegistryAvailable(t *testing.T) {
	withRegistry(t, func() {
		Register("zeta", func() render.Drawer { return fakeDrawer{} })
		Register(Raster, func() render.Drawer { return fakeDrawer{render.KindRaster} })

		if got, want := Available(), []string{Raster, "zeta"}; !slices.Equal(got, want) {
			t.Errorf("Available() = %v, want %v", got, want)
		}
	})
}

func TestRegistryDefault(t *testing.T) {
	withRegistry(t, func() {
		if Default() != nil {
			t.Error("Default() with empty registry should be nil")
		}

		Register("custom", func() render.Drawer { return fakeDrawer{render.KindSolid} })
		if Default() == nil {
			t.Fatal("Default() should fall back to any registered backend")
		}

		Register(Solid, func() render.Drawer { return fakeDrawer{render.KindSolid} })
		Register(Raster, func() render.Drawer { return fakeDrawer{render.KindRaster} })
		if d := Default(); d.Kind() != render.KindRaster {
			t.Errorf("Default().Kind() = %v, want raster", d.Kind())
		}
	})
}

func TestRegistryMustDefault(t *testing.T) {
	withRegistry(t, func() {
		defer func() {
			if r := recover(); r == nil {
				t.Error("MustDefault() with empty registry should panic")
			}
		}()
		MustDefault()
	})
}

func TestRegistryUnregister(t *testing.T) {
	withRegistry(t, func() {
		Register("test-backend", func() render.Drawer { return fakeDrawer{} })
		if !IsRegistered("test-backend") {
			t.Error("test-backend should be registered")
		}

		Unregister("test-backend")
		if IsRegistered("test-backend") {
			t.Error("test-backend should be unregistered")
		}
	})
}
