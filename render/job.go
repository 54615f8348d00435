// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"fmt"
	"reflect"
	"slices"

	"github.com/gogpu/pageview"
	"github.com/gogpu/pageview/page"
	"github.com/gogpu/pageview/tile"
)

// jobKey identifies a job in the registry.
type jobKey struct {
	key  tile.Key
	tile tile.Tile
}

// jobState is the lifecycle state of a job.
//
// Transitions: queued -> running -> completed, or queued -> cancelled.
type jobState int

const (
	stateQueued jobState = iota
	stateRunning
	stateCompleted
	stateCancelled
)

func (s jobState) String() string {
	switch s {
	case stateQueued:
		return "queued"
	case stateRunning:
		return "running"
	case stateCompleted:
		return "completed"
	case stateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// job is one pending render of one tile. All fields but the immutable ones
// set on creation are guarded by Service.mu.
type job struct {
	key      tile.Key
	tile     tile.Tile
	page     *page.Page
	renderer *Renderer
	token    any

	requested int64
	state     jobState
	callbacks []*Callback
}

func (j *job) addCallback(cb *Callback) {
	if cb != nil && !slices.Contains(j.callbacks, cb) {
		j.callbacks = append(j.callbacks, cb)
	}
}

func (j *job) removeCallback(cb *Callback) {
	if i := slices.Index(j.callbacks, cb); i >= 0 {
		j.callbacks = slices.Delete(j.callbacks, i, i+1)
	}
}

// Error describes a failed tile render.
type Error struct {
	Key  tile.Key
	Tile tile.Tile
	Page *page.Page
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("render: %v tile %d,%d %dx%d: %v", e.Key, e.Tile.X, e.Tile.Y, e.Tile.W, e.Tile.H, e.Err)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// resourceToken returns the exclusion token of p. A token of a type that
// cannot be compared excludes nothing.
func resourceToken(p *page.Page) any {
	tok := p.Resource
	if tok != nil && !reflect.TypeOf(tok).Comparable() {
		pageview.Logger().Warn("render: resource token is not comparable, ignored",
			"type", fmt.Sprintf("%T", tok))
		return nil
	}
	return tok
}
