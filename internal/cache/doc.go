// Package cache provides a small cost-bounded cache for decoded source data.
//
// Backends use it to keep decoded source images around between tile renders
// of the same page, so that rendering the tiles of one page decodes the
// source file once:
//
//	c := cache.New[string, image.Image](64 << 20)
//	img, err := c.GetOrLoad(path, func() (image.Image, int, error) {
//	    img, err := decode(path)
//	    return img, bytesOf(img), err
//	})
//
// The limit is soft: when the total cost exceeds it, the least recently used
// entries are removed until the total is at most 3/4 of the limit.
//
// # Thread Safety
//
// Cache is safe for concurrent use and must not be copied after creation.
package cache
