package main

import (
	"image"
	"io"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/gogpu/pageview/layout"
	"github.com/gogpu/pageview/render"
)

// report prints a summary of the rendered frame and the tile cache.
func report(w io.Writer, cfg *Config, l *layout.Layout, svc *render.Service, frame image.Image) {
	p := message.NewPrinter(language.English)
	s := svc.Cache().Stats()
	b := frame.Bounds()

	p.Fprintf(w, "%s: %dx%d pixels, %d pages in %d page sets\n",
		cfg.Output, b.Dx(), b.Dy(), l.Count(), l.PageSetCount())
	p.Fprintf(w, "tiles: %d cached, %d bytes of %d, hit rate %.1f%%, %d evicted\n",
		s.Len, s.Size, s.MaxSize, s.HitRate*100, s.Evictions)
	active, queued := svc.Busy()
	p.Fprintf(w, "workers: %d, %d busy, %d waiting\n", svc.Workers(), active, queued)
}
