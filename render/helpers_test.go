// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"context"
	"image"
	"image/color"
	"image/draw"
	"sync"
	"testing"
	"time"

	"github.com/gogpu/pageview/page"
	"github.com/gogpu/pageview/tile"
)

var red = color.RGBA{R: 0xff, A: 0xff}

// testDrawer fills tiles with a color and records concurrency.
// If gate is non-nil, Draw blocks until it is closed.
type testDrawer struct {
	color color.Color
	gate  chan struct{}
	err   error
	panic string

	mu          sync.Mutex
	calls       int
	active      int
	maxActive   int
	perToken    map[any]int
	maxPerToken int
	order       []int // idents in start order
}

func newTestDrawer() *testDrawer {
	return &testDrawer{color: red, perToken: make(map[any]int)}
}

func (d *testDrawer) Kind() Kind { return KindSolid }

func (d *testDrawer) Draw(dst draw.Image, p *page.Page, _ tile.Key, _ tile.Tile) error {
	d.mu.Lock()
	d.calls++
	d.active++
	d.maxActive = max(d.maxActive, d.active)
	d.order = append(d.order, p.Ident)
	if p.Resource != nil {
		d.perToken[p.Resource]++
		d.maxPerToken = max(d.maxPerToken, d.perToken[p.Resource])
	}
	d.mu.Unlock()

	defer func() {
		d.mu.Lock()
		d.active--
		if p.Resource != nil {
			d.perToken[p.Resource]--
		}
		d.mu.Unlock()
	}()

	if d.gate != nil {
		<-d.gate
	}
	if d.panic != "" {
		panic(d.panic)
	}
	if d.err != nil {
		return d.err
	}
	draw.Draw(dst, dst.Bounds(), image.NewUniform(d.color), image.Point{}, draw.Src)
	return nil
}

func (d *testDrawer) stats() (calls, maxActive, maxPerToken int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.calls, d.maxActive, d.maxPerToken
}

// counter is a callback counting its calls.
type counter struct {
	mu sync.Mutex
	n  int
	cb *Callback
}

func newCounter() *counter {
	c := &counter{}
	c.cb = NewCallback(func(*page.Page) {
		c.mu.Lock()
		c.n++
		c.mu.Unlock()
	})
	return c
}

func (c *counter) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.n
}

// testPage returns a 100x100 pixel page.
func testPage(g *page.Group, ident int) *page.Page {
	p := page.New(g, ident, 100, 100)
	p.UpdateSize(72, 72, 1)
	return p
}

func wait(t *testing.T, svc *Service) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := svc.Wait(ctx); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
}

func newTestService(t *testing.T, opts ...ServiceOption) *Service {
	t.Helper()
	svc := NewService(opts...)
	t.Cleanup(func() { _ = svc.Close() })
	return svc
}

// jobFor returns the job for key and t, and whether it is
// registered.
func (s *Service) jobFor(key tile.Key, t tile.Tile) (*job, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[jobKey{key: key, tile: t}]
	return j, ok
}
