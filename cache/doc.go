// Package cache provides the bounded tile store shared by all renderers of
// a process.
//
// # TileCache
//
// TileCache keeps rendered tile images under the nested identity
// group → ident → (rotation, width, height) → tile, with a running byte
// total and a fixed budget:
//
//	c := cache.New(200 << 20)
//	c.Put(key, t, img)
//	img, ok := c.Get(key, t)
//
// Get and Use mark the tiles they return as used; Contains, Tileset and
// Closest do not. Painting goes through Use, so tiles on screen stay young.
//
// When a Put pushes the total over budget, the cache keeps the most recently
// used tiles that fit and drops every older one, across all groups. A tile
// of one document can therefore evict tiles of another document; there is no
// per-group quota.
//
// # Weak ownership
//
// Content groups are referenced through weak pointers only. The cache is
// never the reason a document stays in memory: once a [page.Group] becomes
// unreachable its subtree is dropped automatically.
//
// # Thread Safety
//
// TileCache is safe for concurrent use. Structural changes happen under a
// single write lock, so readers never observe a half-evicted cache.
// A TileCache must not be copied after creation.
package cache
