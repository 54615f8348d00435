package raster

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"runtime"

	// Register decoders with the image package.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/sync/errgroup"

	"github.com/gogpu/pageview/page"
)

// DPI is the resolution assumed for image pixels.
const DPI = 96

// ErrUnsupportedFormat is returned for files that are not a supported
// image format.
var ErrUnsupportedFormat = errors.New("raster: unsupported format")

// supported maps detected MIME types to format names.
var supported = map[string]string{
	"image/png":  "png",
	"image/jpeg": "jpeg",
	"image/gif":  "gif",
	"image/bmp":  "bmp",
	"image/tiff": "tiff",
	"image/webp": "webp",
}

// Source is the content of a raster page: an image file or an image held
// in memory. It is shared by all copies of the page.
type Source struct {
	path   string
	format string
	width  int
	height int
	img    image.Image // set for in-memory images
}

// Path returns the file name, or "" for in-memory images.
func (s *Source) Path() string {
	return s.path
}

// Format returns the detected image format name.
func (s *Source) Format() string {
	return s.format
}

// Size returns the image size in pixels.
func (s *Source) Size() (width, height int) {
	return s.width, s.height
}

// Load reads the header of the image file at path and returns a page
// showing it. The pixels are not decoded until the page is rendered.
func Load(path string) (*page.Page, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("raster: %w", err)
	}
	defer f.Close()

	mt, err := mimetype.DetectReader(f)
	if err != nil {
		return nil, fmt.Errorf("raster: detect %s: %w", path, err)
	}
	format, ok := supported[mt.String()]
	if !ok {
		return nil, fmt.Errorf("%w: %s is %s", ErrUnsupportedFormat, path, mt.String())
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("raster: %w", err)
	}
	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return nil, fmt.Errorf("raster: read %s header: %w", path, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("raster: %s: empty image", path)
	}

	src := &Source{path: path, format: format, width: cfg.Width, height: cfg.Height}
	return newPage(filepath.Base(path), src), nil
}

// LoadAll loads the images at paths concurrently and returns their pages
// in the order of paths. It fails on the first file that cannot be loaded.
func LoadAll(ctx context.Context, paths []string) ([]*page.Page, error) {
	pages := make([]*page.Page, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			p, err := Load(path)
			if err != nil {
				return err
			}
			pages[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return pages, nil
}

// FromImage returns a page showing img, which is kept in memory.
func FromImage(name string, img image.Image) *page.Page {
	b := img.Bounds()
	src := &Source{format: "memory", width: b.Dx(), height: b.Dy(), img: img}
	return newPage(name, src)
}

func newPage(name string, src *Source) *page.Page {
	p := page.New(page.NewGroup(name), 0, float64(src.width), float64(src.height))
	p.DPI = DPI
	p.Source = src
	p.Resource = src
	return p
}

// decode reads and decodes the whole image file.
func (s *Source) decode() (image.Image, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("raster: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("raster: decode %s: %w", s.path, err)
	}
	return img, nil
}
