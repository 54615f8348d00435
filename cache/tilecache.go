package cache

import (
	"image"
	"runtime"
	"slices"
	"sync"
	"sync/atomic"
	"weak"

	"github.com/gogpu/pageview"
	"github.com/gogpu/pageview/page"
	"github.com/gogpu/pageview/tile"
)

// DefaultMaxBytes is the default tile cache budget (200 MiB).
const DefaultMaxBytes = 200 << 20

// groupRef is the weak handle under which a group's tiles are stored.
type groupRef = weak.Pointer[page.Group]

type tileset map[tile.Tile]*entry

type identEntry map[tile.Size]tileset

// groupEntry holds all tiles of one content group.
type groupEntry struct {
	idents map[int]identEntry
}

// entry is one cached tile image.
type entry struct {
	image image.Image
	bytes int
	added int64        // store tick
	atime atomic.Int64 // access tick
}

// TileCache is a byte-bounded cache of rendered tiles with global recency
// eviction. See the package documentation for details.
type TileCache struct {
	mu      sync.RWMutex
	groups  map[groupRef]*groupEntry
	cleanup map[groupRef]struct{} // groups with a registered cleanup
	size    int
	maxSize int

	tick atomic.Int64 // monotonic access counter

	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64
}

// New creates a tile cache with the given budget in bytes.
// If maxBytes <= 0, DefaultMaxBytes is used.
func New(maxBytes int) *TileCache {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &TileCache{
		groups:  make(map[groupRef]*groupEntry),
		cleanup: make(map[groupRef]struct{}),
		maxSize: maxBytes,
	}
}

// ImageBytes returns the number of bytes accounted for an image (RGBA).
func ImageBytes(img image.Image) int {
	if img == nil {
		return 0
	}
	b := img.Bounds()
	return b.Dx() * b.Dy() * 4
}

// lookup returns the tileset for key, or nil. Caller must hold c.mu.
func (c *TileCache) lookup(key tile.Key) tileset {
	ge, ok := c.groups[weak.Make(key.Group)]
	if !ok {
		return nil
	}
	return ge.idents[key.Ident][key.Size()]
}

// Get returns the cached image for one tile of key and marks it as used.
func (c *TileCache) Get(key tile.Key, t tile.Tile) (image.Image, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.lookup(key)[t]
	if !ok {
		c.misses.Add(1)
		return nil, false
	}
	e.atime.Store(c.tick.Add(1))
	c.hits.Add(1)
	return e.image, true
}

// Contains reports whether a tile of key is cached, without marking it used.
func (c *TileCache) Contains(key tile.Key, t tile.Tile) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	_, ok := c.lookup(key)[t]
	return ok
}

// Tileset returns the cached tiles for key. The map is a copy and is
// empty if nothing is cached.
func (c *TileCache) Tileset(key tile.Key) map[tile.Tile]image.Image {
	c.mu.RLock()
	defer c.mu.RUnlock()

	ts := c.lookup(key)
	result := make(map[tile.Tile]image.Image, len(ts))
	for t, e := range ts {
		result[t] = e.image
	}
	return result
}

// Use returns the cached images among tiles of key and marks them as used.
// Every found tile counts as a hit, every other one as a miss.
func (c *TileCache) Use(key tile.Key, tiles []tile.Tile) map[tile.Tile]image.Image {
	c.mu.RLock()
	defer c.mu.RUnlock()

	ts := c.lookup(key)
	result := make(map[tile.Tile]image.Image, len(tiles))
	for _, t := range tiles {
		e, ok := ts[t]
		if !ok {
			c.misses.Add(1)
			continue
		}
		e.atime.Store(c.tick.Add(1))
		c.hits.Add(1)
		result[t] = e.image
	}
	return result
}

// Tick returns the current access tick. Tiles stored afterwards report a
// larger tick from Added.
func (c *TileCache) Tick() int64 {
	return c.tick.Load()
}

// Added returns the tick at which a tile of key was stored, and false if
// it is not cached.
func (c *TileCache) Added(key tile.Key, t tile.Tile) (int64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.lookup(key)[t]
	if !ok {
		return 0, false
	}
	return e.added, true
}

// Put stores the image for one tile of key. If the total size exceeds the
// budget afterwards, the least recently used tiles are purged.
func (c *TileCache) Put(key tile.Key, t tile.Tile, img image.Image) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ge := c.group(key.Group)
	ie, ok := ge.idents[key.Ident]
	if !ok {
		ie = make(identEntry)
		ge.idents[key.Ident] = ie
	}
	ts, ok := ie[key.Size()]
	if !ok {
		ts = make(tileset)
		ie[key.Size()] = ts
	}
	if old, ok := ts[t]; ok {
		c.size -= old.bytes
	}

	e := &entry{image: img, bytes: ImageBytes(img), added: c.tick.Add(1)}
	e.atime.Store(e.added)
	ts[t] = e
	c.size += e.bytes

	if c.size > c.maxSize {
		c.purge()
	}
}

// group returns the entry for g, creating it if needed. The first time g
// is seen a cleanup is registered that drops its tiles once g is
// unreachable. Caller must hold c.mu for writing.
func (c *TileCache) group(g *page.Group) *groupEntry {
	ref := weak.Make(g)
	if ge, ok := c.groups[ref]; ok {
		return ge
	}
	ge := &groupEntry{idents: make(map[int]identEntry)}
	c.groups[ref] = ge
	if _, ok := c.cleanup[ref]; !ok && g != nil {
		c.cleanup[ref] = struct{}{}
		runtime.AddCleanup(g, c.dropGroup, ref)
	}
	return ge
}

// dropGroup removes all tiles of a collected group.
func (c *TileCache) dropGroup(ref groupRef) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.cleanup, ref)
	ge, ok := c.groups[ref]
	if !ok {
		return
	}
	c.size -= ge.bytes()
	delete(c.groups, ref)
	pageview.Logger().Debug("cache: released collected group", "size", c.size)
}

func (ge *groupEntry) bytes() int {
	n := 0
	for _, ie := range ge.idents {
		for _, ts := range ie {
			for _, e := range ts {
				n += e.bytes
			}
		}
	}
	return n
}

// location addresses one cached tile during a purge.
type location struct {
	atime int64
	bytes int
	group groupRef
	ident int
	size  tile.Size
	tile  tile.Tile
}

// purge keeps the newest tiles whose cumulative size fits the budget and
// deletes every older one, in all groups. Caller must hold c.mu.
func (c *TileCache) purge() {
	var all []location
	for ref, ge := range c.groups {
		if ref != (groupRef{}) && ref.Value() == nil {
			// collected, cleanup not run yet
			delete(c.groups, ref)
			continue
		}
		for ident, ie := range ge.idents {
			for sz, ts := range ie {
				for t, e := range ts {
					all = append(all, location{
						atime: e.atime.Load(),
						bytes: e.bytes,
						group: ref,
						ident: ident,
						size:  sz,
						tile:  t,
					})
				}
			}
		}
	}

	// newest first; larger first among equal ticks
	slices.SortFunc(all, func(a, b location) int {
		if a.atime != b.atime {
			if a.atime > b.atime {
				return -1
			}
			return 1
		}
		return b.bytes - a.bytes
	})

	kept := 0
	cut := len(all)
	for i, l := range all {
		if kept+l.bytes > c.maxSize {
			cut = i
			break
		}
		kept += l.bytes
	}
	c.size = kept

	for _, l := range all[cut:] {
		ge := c.groups[l.group]
		ie := ge.idents[l.ident]
		ts := ie[l.size]
		delete(ts, l.tile)
		if len(ts) == 0 {
			delete(ie, l.size)
			if len(ie) == 0 {
				delete(ge.idents, l.ident)
				if len(ge.idents) == 0 {
					delete(c.groups, l.group)
				}
			}
		}
	}
	c.evictions.Add(uint64(len(all) - cut))

	pageview.Logger().Debug("cache: purged",
		"evicted", len(all)-cut, "kept", cut, "size", c.size, "max", c.maxSize)
}

// Candidate is a cached rendering of the same page at another size.
type Candidate struct {
	Width, Height int
	Tiles         map[tile.Tile]image.Image
}

// Closest returns cached renderings of key's content at the same rotation
// but a different width, best match first (width ratio closest to 1).
// Renderings narrower than min(100, key.Width/2) are not returned.
func (c *TileCache) Closest(key tile.Key) []Candidate {
	c.mu.RLock()
	defer c.mu.RUnlock()

	ge, ok := c.groups[weak.Make(key.Group)]
	if !ok || key.Width <= 0 {
		return nil
	}
	minWidth := min(100, float64(key.Width)/2)

	var result []Candidate
	for sz, ts := range ge.idents[key.Ident] {
		if sz.Rotation != key.Rotation || sz.Width == key.Width || float64(sz.Width) <= minWidth {
			continue
		}
		tiles := make(map[tile.Tile]image.Image, len(ts))
		for t, e := range ts {
			tiles[t] = e.image
		}
		result = append(result, Candidate{Width: sz.Width, Height: sz.Height, Tiles: tiles})
	}

	dist := func(w int) float64 {
		d := 1 - float64(w)/float64(key.Width)
		if d < 0 {
			return -d
		}
		return d
	}
	slices.SortStableFunc(result, func(a, b Candidate) int {
		da, db := dist(a.Width), dist(b.Width)
		switch {
		case da < db:
			return -1
		case da > db:
			return 1
		}
		return a.Width - b.Width
	})
	return result
}

// Invalidate removes all cached tiles of p's content.
func (c *TileCache) Invalidate(p *page.Page) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ref := weak.Make(p.Group)
	ge, ok := c.groups[ref]
	if !ok {
		return
	}
	for _, ts := range ge.idents[p.Ident] {
		for _, e := range ts {
			c.size -= e.bytes
		}
	}
	delete(ge.idents, p.Ident)
	if len(ge.idents) == 0 {
		delete(c.groups, ref)
	}
}

// Clear removes all cached tiles.
func (c *TileCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.groups = make(map[groupRef]*groupEntry)
	c.size = 0
}

// Size returns the total size of all cached tiles in bytes.
func (c *TileCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.size
}

// MaxSize returns the budget in bytes.
func (c *TileCache) MaxSize() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.maxSize
}

// SetMaxSize changes the budget, purging immediately if needed.
func (c *TileCache) SetMaxSize(n int) {
	if n <= 0 {
		n = DefaultMaxBytes
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.maxSize = n
	if c.size > c.maxSize {
		c.purge()
	}
}

// Len returns the number of cached tiles.
func (c *TileCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	n := 0
	for _, ge := range c.groups {
		for _, ie := range ge.idents {
			for _, ts := range ie {
				n += len(ts)
			}
		}
	}
	return n
}

// Groups returns the number of content groups with cached tiles.
func (c *TileCache) Groups() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.groups)
}

// Stats contains cache statistics.
type Stats struct {
	// Len is the number of cached tiles.
	Len int
	// Groups is the number of content groups with cached tiles.
	Groups int
	// Size is the total size in bytes.
	Size int
	// MaxSize is the budget in bytes.
	MaxSize int
	// Hits and Misses count Get results.
	Hits   uint64
	Misses uint64
	// HitRate is Hits / (Hits + Misses), 0.0 to 1.0.
	HitRate float64
	// Evictions is the number of tiles removed by purges.
	Evictions uint64
}

// Stats returns current cache statistics.
func (c *TileCache) Stats() Stats {
	hits := c.hits.Load()
	misses := c.misses.Load()

	var hitRate float64
	if total := hits + misses; total > 0 {
		hitRate = float64(hits) / float64(total)
	}

	return Stats{
		Len:       c.Len(),
		Groups:    c.Groups(),
		Size:      c.Size(),
		MaxSize:   c.MaxSize(),
		Hits:      hits,
		Misses:    misses,
		HitRate:   hitRate,
		Evictions: c.evictions.Load(),
	}
}
