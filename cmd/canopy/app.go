package main

import (
	"log/slog"

	"github.com/vango-dev/canopy/internal/config"
	"github.com/vango-dev/canopy/internal/demo"
	"github.com/vango-dev/canopy/pkg/dom/memdom"
	"github.com/vango-dev/canopy/pkg/render"
)

// mountDemo mounts a fresh demo app into doc and drains it.
func mountDemo(doc *memdom.Document, cfg *config.Config, logger *slog.Logger, extra ...render.Option) (*render.Renderer, error) {
	app := demo.New()
	opts := append(app.RenderOptions(), cfg.RenderOptions()...)
	opts = append(opts, render.WithLogger(logger))
	opts = append(opts, extra...)
	r := render.New(doc, app.Root, opts...)
	if err := r.Mount(); err != nil {
		return nil, err
	}
	r.Flush()
	return r, nil
}
