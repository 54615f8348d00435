package main

import (
	"fmt"
	"image"
	"image/color"
	"os"
	"strings"

	"gopkg.in/yaml.v2"

	"github.com/gogpu/pageview/backend"
	"github.com/gogpu/pageview/cache"
	"github.com/gogpu/pageview/layout"
	"github.com/gogpu/pageview/page"
	"github.com/gogpu/pageview/render"
)

// Config describes the view to render.
type Config struct {
	// Engine is "single", "row" or "raster".
	Engine        string `yaml:"engine"`
	PagesPerRow   int    `yaml:"pagesPerRow"`
	PagesFirstRow int    `yaml:"pagesFirstRow"`
	Orientation   string `yaml:"orientation"`

	// Fit is "none", "width", "height" or "both". Width and Height are the
	// viewport size used for fitting.
	Fit    string  `yaml:"fit"`
	Width  int     `yaml:"width"`
	Height int     `yaml:"height"`
	Zoom   float64 `yaml:"zoom"`

	Rotation int     `yaml:"rotation"`
	Spacing  int     `yaml:"spacing"`
	Margin   int     `yaml:"margin"`
	DPI      float64 `yaml:"dpi"`
	Ratio    float64 `yaml:"ratio"`

	Paper      string `yaml:"paper"`
	Background string `yaml:"background"`

	Backend   string `yaml:"backend"`
	CacheSize int    `yaml:"cacheSize"`
	MaxJobs   int    `yaml:"maxJobs"`

	Output  string `yaml:"output"`
	Verbose bool   `yaml:"verbose"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		Engine:        "single",
		PagesPerRow:   2,
		PagesFirstRow: 1,
		Orientation:   "vertical",
		Fit:           "none",
		Width:         1200,
		Height:        900,
		Zoom:          1,
		Spacing:       layout.DefaultSpacing,
		Margin:        layout.DefaultMargin,
		DPI:           96,
		Ratio:         1,
		Paper:         "#ffffff",
		Background:    "#808080",
		Backend:       backend.Raster,
		CacheSize:     cache.DefaultMaxBytes,
		MaxJobs:       render.DefaultMaxJobs,
		Output:        "pageview.png",
	}
}

// LoadConfig reads a YAML file on top of the defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig parses YAML on top of the defaults and validates the result.
func ParseConfig(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.UnmarshalStrict(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that cannot be corrected silently.
func (c *Config) Validate() error {
	if _, err := c.engine(); err != nil {
		return err
	}
	if _, err := c.fitMode(); err != nil {
		return err
	}
	if _, err := c.orientation(); err != nil {
		return err
	}
	if _, err := c.rotation(); err != nil {
		return err
	}
	if _, err := parseColor(c.Paper); err != nil {
		return fmt.Errorf("paper: %w", err)
	}
	if _, err := parseColor(c.Background); err != nil {
		return fmt.Errorf("background: %w", err)
	}
	if c.Zoom <= 0 || c.DPI <= 0 || c.Ratio <= 0 {
		return fmt.Errorf("zoom, dpi and ratio must be positive")
	}
	if c.Output == "" {
		return fmt.Errorf("no output file")
	}
	return nil
}

func (c *Config) engine() (layout.Engine, error) {
	switch strings.ToLower(c.Engine) {
	case "", "single":
		return layout.SingleEngine{}, nil
	case "row":
		e := layout.NewRowEngine()
		if c.PagesPerRow > 0 {
			e.PagesPerRow = c.PagesPerRow
		}
		if c.PagesFirstRow > 0 {
			e.PagesFirstRow = c.PagesFirstRow
		}
		return e, nil
	case "raster":
		return &layout.RasterEngine{}, nil
	}
	return nil, fmt.Errorf("unknown engine %q", c.Engine)
}

func (c *Config) fitMode() (layout.FitMode, error) {
	switch strings.ToLower(c.Fit) {
	case "", "none":
		return layout.FixedScale, nil
	case "width":
		return layout.FitWidth, nil
	case "height":
		return layout.FitHeight, nil
	case "both":
		return layout.FitBoth, nil
	}
	return 0, fmt.Errorf("unknown fit mode %q", c.Fit)
}

func (c *Config) orientation() (layout.Orientation, error) {
	switch strings.ToLower(c.Orientation) {
	case "", "vertical":
		return layout.Vertical, nil
	case "horizontal":
		return layout.Horizontal, nil
	}
	return 0, fmt.Errorf("unknown orientation %q", c.Orientation)
}

func (c *Config) rotation() (page.Rotation, error) {
	if c.Rotation%90 != 0 {
		return 0, fmt.Errorf("rotation %d is not a multiple of 90", c.Rotation)
	}
	deg := ((c.Rotation % 360) + 360) % 360
	return page.Rotation(deg / 90), nil
}

// Layout builds a fitted and updated layout of pages. The configuration
// must be valid.
func (c *Config) Layout(pages []*page.Page) *layout.Layout {
	e, _ := c.engine()
	mode, _ := c.fitMode()
	o, _ := c.orientation()
	rot, _ := c.rotation()

	l := layout.New()
	l.Pages = pages
	l.Engine = e
	l.Orientation = o
	l.Rotation = rot
	l.ZoomFactor = c.Zoom
	l.DPIX, l.DPIY = c.DPI, c.DPI
	l.Spacing = c.Spacing
	l.Margins = layout.Margins{Left: c.Margin, Top: c.Margin, Right: c.Margin, Bottom: c.Margin}
	l.Fit(image.Pt(c.Width, c.Height), mode)
	l.Update()
	return l
}

// parseColor parses "#rgb" or "#rrggbb".
func parseColor(s string) (color.RGBA, error) {
	s = strings.TrimPrefix(s, "#")
	var r, g, b uint8
	switch len(s) {
	case 3:
		if _, err := fmt.Sscanf(s, "%1x%1x%1x", &r, &g, &b); err != nil {
			return color.RGBA{}, fmt.Errorf("invalid color %q", s)
		}
		r, g, b = r*17, g*17, b*17
	case 6:
		if _, err := fmt.Sscanf(s, "%2x%2x%2x", &r, &g, &b); err != nil {
			return color.RGBA{}, fmt.Errorf("invalid color %q", s)
		}
	default:
		return color.RGBA{}, fmt.Errorf("invalid color %q", s)
	}
	return color.RGBA{R: r, G: g, B: b, A: 0xff}, nil
}
