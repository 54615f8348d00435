// Package raster provides a drawer for bitmap images.
//
// Images are read lazily: Load only reads the image header to learn the
// size, and the pixels are decoded on the first render of the page. Decoded
// images are kept in a cost-bounded cache shared by all pages of a Drawer.
//
// Supported formats are PNG, JPEG, GIF, BMP, TIFF and WebP. The format is
// detected from the file content, not the file name.
//
//	pages, err := raster.LoadAll(ctx, paths)
//	if err != nil {
//		return err
//	}
//	r := render.NewRenderer(svc, raster.New())
//
// Every image is its own page group. The decoder of one image is never run
// concurrently: a page's Resource token is its Source.
package raster
