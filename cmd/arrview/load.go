package main

import (
	"fmt"
	"image"
	"os"
	"slices"

	"github.com/soypat/arrview/ndarray"
	"github.com/soypat/arrview/view"
	"golang.org/x/image/tiff"
)

// dataset is a loaded array with everything derived from it.
type dataset struct {
	desc   *ndarray.Description
	arr    *ndarray.Array
	stats  []ndarray.Statistics
	params view.Params
}

func loadDataset(path string, cfg config) (*dataset, error) {
	desc, err := ndarray.LoadDescription(path)
	if err != nil {
		return nil, err
	}
	arr, err := desc.Load()
	if err != nil {
		return nil, err
	}
	stats, err := ndarray.AllStatistics(ndarray.Computer{}, arr)
	if err != nil {
		return nil, err
	}
	params, err := view.New(arr.Header, stats)
	if err != nil {
		return nil, err
	}
	if err := applyConfig(&params, cfg); err != nil {
		return nil, err
	}
	return &dataset{desc: desc, arr: arr, stats: stats, params: params}, nil
}

// applyConfig applies command line display settings to p.
func applyConfig(p *view.Params, cfg config) error {
	if cfg.component >= 0 {
		if cfg.component >= len(p.Components) {
			return fmt.Errorf("component %d out of range, array has %d", cfg.component, len(p.Components))
		}
		p.Global.Component = cfg.component
	}
	for i := range p.Components {
		c := &p.Components[i]
		if cfg.gradient != "" {
			g, err := view.ParseGradient(cfg.gradient)
			if err != nil {
				return err
			}
			c.SetGradient(g)
			c.ColorMap = true
		}
		if cfg.colorMap {
			c.ColorMap = true
		}
	}
	return nil
}

// sameShape reports whether b can replace a keeping the current view parameters.
func sameShape(a, b ndarray.Header) bool {
	return a.Type == b.Type && a.Components == b.Components && slices.Equal(a.Dims, b.Dims)
}

// cycleComponent selects the next component, including the color composite when available.
func cycleComponent(p *view.Params) {
	n := len(p.Components)
	if p.Global.ColorSpace != view.ColorSpaceNone {
		n++
	}
	p.Global.Component = (p.Global.Component + 1) % n
}

// cycleGradient advances the gradient of the displayed component and enables its color map.
func cycleGradient(p *view.Params) {
	if p.ShowsColor() {
		return
	}
	c := &p.Components[p.Global.Component]
	next := c.Gradient + 1
	if !next.IsValid() {
		next = 0
	}
	c.SetGradient(next)
	c.ColorMap = true
}

// toggleColorMap flips the color map of the displayed component.
func toggleColorMap(p *view.Params) {
	if !p.ShowsColor() {
		c := &p.Components[p.Global.Component]
		c.ColorMap = !c.ColorMap
	}
}

func writeTIFF(path string, img image.Image) error {
	fp, err := os.Create(path)
	if err != nil {
		return err
	}
	defer fp.Close()
	err = tiff.Encode(fp, img, &tiff.Options{Compression: tiff.Deflate, Predictor: true})
	if err != nil {
		return err
	}
	return fp.Sync()
}
