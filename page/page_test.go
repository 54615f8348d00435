package page

import (
	"math"
	"strings"
	"testing"
)

func TestRotationAdd(t *testing.T) {
	tests := []struct {
		a, b, want Rotation
	}{
		{Rotate0, Rotate0, Rotate0},
		{Rotate90, Rotate90, Rotate180},
		{Rotate270, Rotate180, Rotate90},
		{Rotate270, Rotate90, Rotate0},
	}
	for _, tt := range tests {
		if got := tt.a.Add(tt.b); got != tt.want {
			t.Errorf("%d.Add(%d) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
	if !Rotate90.Transposed() || Rotate180.Transposed() {
		t.Error("Transposed() wrong for 90/180")
	}
	if Rotate270.Degrees() != 270 {
		t.Errorf("Degrees() = %d, want 270", Rotate270.Degrees())
	}
}

func TestUpdateSize(t *testing.T) {
	p := New(NewGroup("doc"), 0, 100, 200)

	p.UpdateSize(72, 72, 1)
	if p.Width != 100 || p.Height != 200 {
		t.Errorf("size = %dx%d, want 100x200", p.Width, p.Height)
	}

	p.UpdateSize(144, 144, 0.5)
	if p.Width != 100 || p.Height != 200 {
		t.Errorf("size at 144dpi zoom 0.5 = %dx%d, want 100x200", p.Width, p.Height)
	}

	p.ComputedRotation = Rotate90
	p.UpdateSize(72, 72, 2)
	if p.Width != 400 || p.Height != 200 {
		t.Errorf("rotated size = %dx%d, want 400x200", p.Width, p.Height)
	}
}

func TestZoomForWidthRoundTrip(t *testing.T) {
	p := New(nil, 0, 595.28, 841.89)
	p.ScaleX = 1.5

	for _, rot := range []Rotation{Rotate0, Rotate90} {
		p.ComputedRotation = p.Rotation.Add(rot)
		z := p.ZoomForWidth(800, rot, 96)
		p.UpdateSize(96, 96, z)
		if p.Width != 800 {
			t.Errorf("rotation %d: width after ZoomForWidth = %d, want 800", rot, p.Width)
		}
		z = p.ZoomForHeight(600, rot, 96)
		p.UpdateSize(96, 96, z)
		if p.Height != 600 {
			t.Errorf("rotation %d: height after ZoomForHeight = %d, want 600", rot, p.Height)
		}
	}
}

func TestZoomForWidthClampsToOne(t *testing.T) {
	p := New(nil, 0, 72, 72)
	z := p.ZoomForWidth(-20, Rotate0, 72)
	if math.Abs(z-1.0/72) > 1e-12 {
		t.Errorf("ZoomForWidth(-20) = %v, want %v", z, 1.0/72)
	}
}

func TestCopySameContent(t *testing.T) {
	g := NewGroup("score")
	p := New(g, 3, 10, 10)
	c := p.Copy()
	if c == p {
		t.Fatal("Copy() returned the same pointer")
	}
	if !p.SameContent(c) {
		t.Error("copy should be cache-equivalent")
	}
	if p.SameContent(New(g, 4, 10, 10)) {
		t.Error("different ident should not be the same content")
	}
	if p.SameContent(New(NewGroup("score"), 3, 10, 10)) {
		t.Error("different group should not be the same content")
	}
}

func TestGroupString(t *testing.T) {
	g := NewGroup("score")
	if !strings.HasPrefix(g.String(), "score#") {
		t.Errorf("String() = %q, want prefix score#", g.String())
	}
	if NewGroup("").ID() == g.ID() {
		t.Error("groups should have distinct identities")
	}
	var nilGroup *Group
	if nilGroup.String() != "<nil>" {
		t.Errorf("nil String() = %q", nilGroup.String())
	}
}

func TestGeometry(t *testing.T) {
	p := New(nil, 0, 10, 10)
	p.X, p.Y, p.Width, p.Height = 5, 7, 20, 30
	if g := p.Geometry(); g.Min.X != 5 || g.Min.Y != 7 || g.Dx() != 20 || g.Dy() != 30 {
		t.Errorf("Geometry() = %v", g)
	}
	if r := p.Rect(); r.Min.X != 0 || r.Dx() != 20 {
		t.Errorf("Rect() = %v", r)
	}
}

func TestDefaultInches(t *testing.T) {
	p := New(NewGroup("doc"), 0, 144, 72)
	p.ScaleX = 2

	w, h := p.DefaultInches(Rotate0)
	if w != 4 || h != 1 {
		t.Errorf("DefaultInches(Rotate0) = %v, %v; want 4, 1", w, h)
	}

	p.Rotation = Rotate90
	w, h = p.DefaultInches(Rotate180)
	if w != 1 || h != 4 {
		t.Errorf("DefaultInches(Rotate180) with page Rotate90 = %v, %v; want 1, 4", w, h)
	}
}
