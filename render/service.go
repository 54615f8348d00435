// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"context"
	"errors"
	"image"
	"slices"
	"sync"

	"github.com/gogpu/pageview"
	"github.com/gogpu/pageview/cache"
	"github.com/gogpu/pageview/internal/parallel"
	"github.com/gogpu/pageview/page"
	"github.com/gogpu/pageview/tile"
)

// ErrServiceClosed is returned by Close when the service was already closed.
var ErrServiceClosed = errors.New("render: service closed")

// Service owns the tile cache, the job registry and the worker pool shared
// by all renderers of a process.
//
// Thread safety: Service is safe for concurrent use.
type Service struct {
	cache   *cache.TileCache
	pool    *parallel.WorkerPool
	maxJobs int

	mu        sync.Mutex
	jobs      map[jobKey]*job
	running   int
	finishing int   // completed jobs whose callbacks are still being called
	tick      int64 // request counter ordering admission
	closed    bool
	changed   chan struct{}
}

// NewService creates a service with its own tile cache and worker pool.
func NewService(opts ...ServiceOption) *Service {
	o := defaultServiceOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Service{
		cache:   cache.New(o.cacheSize),
		pool:    parallel.NewWorkerPool(o.maxJobs),
		maxJobs: o.maxJobs,
		jobs:    make(map[jobKey]*job),
		changed: make(chan struct{}),
	}
}

// Cache returns the tile cache of the service.
func (s *Service) Cache() *cache.TileCache {
	return s.cache
}

// MaxJobs returns the concurrency cap.
func (s *Service) MaxJobs() int {
	return s.maxJobs
}

// Jobs returns the number of jobs in the registry, queued or running.
func (s *Service) Jobs() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

// Running returns the number of running jobs.
func (s *Service) Running() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Workers returns the number of goroutines rendering tiles.
func (s *Service) Workers() int {
	return s.pool.Workers()
}

// Busy returns the number of renders and callbacks executing on the
// workers and the number waiting for a free worker.
func (s *Service) Busy() (active, queued int) {
	return s.pool.ActiveWork(), s.pool.QueuedWork()
}

// Wait blocks until no job is queued or running and all callbacks of
// completed jobs have returned, or until ctx is done.
//
// Wait is meant for batch tools and tests; interactive code reacts to
// callbacks instead.
func (s *Service) Wait(ctx context.Context) error {
	for {
		s.mu.Lock()
		if len(s.jobs) == 0 && s.finishing == 0 {
			s.mu.Unlock()
			return nil
		}
		ch := s.changed
		s.mu.Unlock()

		select {
		case <-ch:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Close cancels all queued jobs and waits for running jobs to finish.
// Scheduling on a closed service does nothing.
func (s *Service) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrServiceClosed
	}
	s.closed = true
	for jk, j := range s.jobs {
		if j.state == stateQueued {
			j.state = stateCancelled
			delete(s.jobs, jk)
		}
	}
	s.notify()
	s.mu.Unlock()

	s.pool.Close()
	return nil
}

// notify wakes Wait callers. Caller must hold s.mu.
func (s *Service) notify() {
	close(s.changed)
	s.changed = make(chan struct{})
}

// schedule registers interest of cb in the given tiles of key and starts
// what may start. Tiles cached after tick since are reported to cb; older
// cached tiles are skipped silently.
func (s *Service) schedule(r *Renderer, p *page.Page, key tile.Key, tiles []tile.Tile, cb *Callback, since int64) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		pageview.Logger().Debug("render: schedule on closed service", "key", key.String())
		return
	}
	late := false
	for _, t := range tiles {
		if added, ok := s.cache.Added(key, t); ok {
			late = late || added > since
			continue
		}
		jk := jobKey{key: key, tile: t}
		j, ok := s.jobs[jk]
		if !ok {
			j = &job{
				key:      key,
				tile:     t,
				page:     p,
				renderer: r,
				token:    resourceToken(p),
			}
			s.jobs[jk] = j
		}
		s.tick++
		j.requested = s.tick
		j.addCallback(cb)
	}
	started := s.admit()
	notifyLate := late && cb != nil
	if notifyLate {
		s.finishing++
	}
	s.mu.Unlock()

	s.start(started)

	// A tile completed between the caller's cache lookup and this call.
	if notifyLate && !s.pool.Submit(func() { s.callback(cb, p) }) {
		s.callback(cb, p)
	}
}

// callback calls cb outside of any job and wakes Wait callers.
func (s *Service) callback(cb *Callback, p *page.Page) {
	cb.call(p)

	s.mu.Lock()
	s.finishing--
	s.notify()
	s.mu.Unlock()
}

// unschedule removes cb from every job showing the content of pages.
// Queued jobs left without callbacks are cancelled; running jobs finish.
func (s *Service) unschedule(pages []*page.Page, cb *Callback) {
	s.mu.Lock()
	defer s.mu.Unlock()

	type content struct {
		group *page.Group
		ident int
	}
	idents := make(map[content]bool, len(pages))
	for _, p := range pages {
		idents[content{p.Group, p.Ident}] = true
	}

	cancelled := 0
	for jk, j := range s.jobs {
		if !idents[content{j.key.Group, j.key.Ident}] {
			continue
		}
		j.removeCallback(cb)
		if len(j.callbacks) == 0 && j.state == stateQueued {
			j.state = stateCancelled
			delete(s.jobs, jk)
			cancelled++
		}
	}
	if cancelled > 0 {
		pageview.Logger().Debug("render: jobs cancelled", "count", cancelled)
		s.notify()
	}
}

// admit marks the queued jobs that may start as running and returns them.
// The most recently requested jobs come first; a job whose non-nil token
// equals that of a running job is skipped.
// Caller must hold s.mu and pass the result to start after unlocking.
func (s *Service) admit() []*job {
	if s.closed || s.running >= s.maxJobs {
		return nil
	}

	var waiting []*job
	var tokens []any
	for _, j := range s.jobs {
		switch {
		case j.state != stateRunning:
			waiting = append(waiting, j)
		case j.token != nil:
			tokens = append(tokens, j.token)
		}
	}
	slices.SortFunc(waiting, func(a, b *job) int {
		switch {
		case a.requested > b.requested:
			return -1
		case a.requested < b.requested:
			return 1
		}
		return 0
	})

	var started []*job
	for _, j := range waiting {
		if s.running >= s.maxJobs {
			break
		}
		if j.token != nil && slices.Contains(tokens, j.token) {
			continue
		}
		j.state = stateRunning
		s.running++
		if j.token != nil {
			tokens = append(tokens, j.token)
		}
		started = append(started, j)
	}
	return started
}

// start hands admitted jobs to the worker pool.
func (s *Service) start(jobs []*job) {
	for _, j := range jobs {
		if !s.pool.Submit(func() { s.run(j) }) {
			s.abandon(j)
		}
	}
}

// run renders one job and completes it. Drawer failures are reported and
// replaced with a transparent placeholder.
func (s *Service) run(j *job) {
	img, err := j.renderer.render(j.page, j.key, j.tile)
	if err != nil {
		j.renderer.report(&Error{Key: j.key, Tile: j.tile, Page: j.page, Err: err})
		img = placeholder(j.tile)
	}
	s.complete(j, img)
}

// complete caches the image, removes the job, starts what may start and
// calls the job's callbacks once each.
func (s *Service) complete(j *job, img image.Image) {
	s.cache.Put(j.key, j.tile, img)

	s.mu.Lock()
	delete(s.jobs, jobKey{key: j.key, tile: j.tile})
	j.state = stateCompleted
	s.running--
	s.finishing++
	callbacks := slices.Clone(j.callbacks)
	started := s.admit()
	s.mu.Unlock()

	s.start(started)

	for _, cb := range callbacks {
		cb.call(j.page)
	}

	s.mu.Lock()
	s.finishing--
	s.notify()
	s.mu.Unlock()
}

// abandon drops a running job that could not be submitted.
func (s *Service) abandon(j *job) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.jobs, jobKey{key: j.key, tile: j.tile})
	j.state = stateCancelled
	s.running--
	s.notify()
}

// placeholder returns the image cached for a tile that failed to render.
func placeholder(t tile.Tile) *image.RGBA {
	return image.NewRGBA(image.Rect(0, 0, t.W, t.H))
}
