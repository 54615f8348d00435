// Command pageview lays out image files as pages and paints them into a
// single PNG frame through the tiled render cache.
//
// Usage:
//
//	pageview [flags] image...
//
// Settings come from a YAML file given with -config; flags override it.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"log"
	"log/slog"
	"os"
	"sync/atomic"
	"time"

	"github.com/gogpu/pageview"
	"github.com/gogpu/pageview/backend"
	"github.com/gogpu/pageview/backend/raster"
	_ "github.com/gogpu/pageview/backend/solid"
	"github.com/gogpu/pageview/layout"
	"github.com/gogpu/pageview/page"
	"github.com/gogpu/pageview/render"
)

func main() {
	var (
		config   = flag.String("config", "", "YAML configuration file")
		output   = flag.String("o", "", "output PNG file")
		engine   = flag.String("engine", "", "layout engine: single, row or raster")
		fit      = flag.String("fit", "", "fit mode: none, width, height or both")
		zoom     = flag.Float64("zoom", 0, "zoom factor")
		rotation = flag.Int("rotate", 0, "layout rotation in degrees")
		width    = flag.Int("width", 0, "viewport width for fitting")
		height   = flag.Int("height", 0, "viewport height for fitting")
		ratio    = flag.Float64("ratio", 0, "device pixel ratio")
		drawer   = flag.String("backend", "", "drawer backend")
		pageNum  = flag.Int("page", 0, "export only this page (1-based), rendered synchronously")
		timeout  = flag.Duration("timeout", time.Minute, "maximum time to wait for rendering")
		verbose  = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	cfg := DefaultConfig()
	if *config != "" {
		var err error
		if cfg, err = LoadConfig(*config); err != nil {
			log.Fatal(err)
		}
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "o":
			cfg.Output = *output
		case "engine":
			cfg.Engine = *engine
		case "fit":
			cfg.Fit = *fit
		case "zoom":
			cfg.Zoom = *zoom
		case "rotate":
			cfg.Rotation = *rotation
		case "width":
			cfg.Width = *width
		case "height":
			cfg.Height = *height
		case "ratio":
			cfg.Ratio = *ratio
		case "backend":
			cfg.Backend = *drawer
		case "v":
			cfg.Verbose = *verbose
		}
	})
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}
	if flag.NArg() == 0 {
		log.Fatal("no images given")
	}

	if cfg.Verbose {
		pageview.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()
	if err := run(ctx, cfg, flag.Args(), *pageNum); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, cfg *Config, paths []string, pageNum int) error {
	pages, err := raster.LoadAll(ctx, paths)
	if err != nil {
		return err
	}
	l := cfg.Layout(pages)

	d, err := backend.Get(cfg.Backend)
	if err != nil {
		return err
	}
	paper, _ := parseColor(cfg.Paper)

	svc := render.NewService(render.WithMaxJobs(cfg.MaxJobs), render.WithCacheSize(cfg.CacheSize))
	defer svc.Close()
	r := render.NewRenderer(svc, d, render.WithPaperColor(paper))

	var frame *image.RGBA
	if pageNum > 0 {
		if pageNum > len(pages) {
			return fmt.Errorf("page %d out of range (1-%d)", pageNum, len(pages))
		}
		p := pages[pageNum-1]
		if frame, err = r.Image(p, p.Rect(), cfg.Ratio); err != nil {
			return err
		}
	} else {
		if frame, err = paintFrame(ctx, cfg, l, r); err != nil {
			return err
		}
	}

	if err := writePNG(cfg.Output, frame); err != nil {
		return err
	}
	report(os.Stdout, cfg, l, svc, frame)
	return nil
}

// paintFrame paints every displayed page, waits for the scheduled tiles and
// paints again with the finished tiles.
func paintFrame(ctx context.Context, cfg *Config, l *layout.Layout, r *render.Renderer) (*image.RGBA, error) {
	bg, _ := parseColor(cfg.Background)
	geom := l.Geometry()
	frame := image.NewRGBA(image.Rect(0, 0, scale(geom.Dx(), cfg.Ratio), scale(geom.Dy(), cfg.Ratio)))

	var tiles atomic.Int64
	cb := render.NewCallback(func(*page.Page) { tiles.Add(1) })

	paint := func() {
		draw.Draw(frame, frame.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)
		for _, p := range l.DisplayPages() {
			pos := p.Pos().Sub(geom.Min)
			at := image.Pt(scale(pos.X, cfg.Ratio), scale(pos.Y, cfg.Ratio))
			r.Paint(frame, at, p, p.Rect(), cfg.Ratio, cb)
		}
	}

	paint()
	if err := r.Service().Wait(ctx); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("rendering did not finish: %w", err)
		}
		return nil, err
	}
	pageview.Logger().Debug("pageview: tiles rendered", "count", tiles.Load())
	paint()
	return frame, nil
}

func scale(v int, ratio float64) int {
	return int(float64(v) * ratio)
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating output: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	return f.Close()
}
