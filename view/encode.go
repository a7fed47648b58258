package view

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// Fixed size part of an encoded component.
type componentRecord struct {
	RangeMin, RangeMax     float32
	DefaultMin, DefaultMax float32
	Gamma                  float32
	Quantization           int32
	Flags                  uint8
	Gradient               uint8
	TableLen               uint16
}

type globalRecord struct {
	Mode            uint8
	ColorSpace      uint8
	Component       int32
	ArrayAspect     float32
	SampleAspect    float32
	ColorComponents [3]int32
	AlphaComponent  int32
	ZComponent      int32
	NumComponents   uint32
}

const (
	flagGamma uint8 = 1 << iota
	flagQuantize
	flagColorMap
)

const maxComponents = 1 << 16

// WriteTo encodes p in a little-endian binary format.
func (p *Params) WriteTo(w io.Writer) (int64, error) {
	var buf bytes.Buffer
	g := p.Global
	gr := globalRecord{
		Mode:           uint8(p.Mode),
		ColorSpace:     uint8(g.ColorSpace),
		Component:      int32(g.Component),
		ArrayAspect:    g.ArrayAspect,
		SampleAspect:   g.SampleAspect,
		AlphaComponent: int32(g.AlphaComponent),
		ZComponent:     int32(g.ZComponent),
		NumComponents:  uint32(len(p.Components)),
	}
	for i, c := range g.ColorComponents {
		gr.ColorComponents[i] = int32(c)
	}
	binary.Write(&buf, binary.LittleEndian, &gr)
	for i := range p.Components {
		c := &p.Components[i]
		if len(c.GradientTable) > 0xffff {
			return 0, fmt.Errorf("component %d gradient table too long", i)
		}
		cr := componentRecord{
			RangeMin:     c.RangeMin,
			RangeMax:     c.RangeMax,
			DefaultMin:   c.DefaultMin,
			DefaultMax:   c.DefaultMax,
			Gamma:        c.Gamma,
			Quantization: int32(c.Quantization),
			Gradient:     uint8(c.Gradient),
			TableLen:     uint16(len(c.GradientTable)),
		}
		if c.GammaEnabled {
			cr.Flags |= flagGamma
		}
		if c.QuantizeEnabled {
			cr.Flags |= flagQuantize
		}
		if c.ColorMap {
			cr.Flags |= flagColorMap
		}
		binary.Write(&buf, binary.LittleEndian, &cr)
		buf.Write(c.GradientTable)
	}
	return buf.WriteTo(w)
}

// ReadFrom decodes params written by [Params.WriteTo], replacing p.
func (p *Params) ReadFrom(r io.Reader) (int64, error) {
	cr := &countReader{r: r}
	var gr globalRecord
	if err := binary.Read(cr, binary.LittleEndian, &gr); err != nil {
		return cr.n, fmt.Errorf("reading view params: %w", err)
	}
	if gr.NumComponents > maxComponents {
		return cr.n, errors.New("view params component count out of range")
	}
	np := Params{
		Mode: Mode(gr.Mode),
		Global: Global{
			Component:      int(gr.Component),
			ArrayAspect:    gr.ArrayAspect,
			SampleAspect:   gr.SampleAspect,
			ColorSpace:     ColorSpace(gr.ColorSpace),
			AlphaComponent: int(gr.AlphaComponent),
			ZComponent:     int(gr.ZComponent),
		},
	}
	for i, c := range gr.ColorComponents {
		np.Global.ColorComponents[i] = int(c)
	}
	if gr.NumComponents > 0 {
		np.Components = make([]Component, gr.NumComponents)
	}
	for i := range np.Components {
		var rec componentRecord
		if err := binary.Read(cr, binary.LittleEndian, &rec); err != nil {
			return cr.n, fmt.Errorf("reading component %d params: %w", i, err)
		}
		c := Component{
			RangeMin:        rec.RangeMin,
			RangeMax:        rec.RangeMax,
			DefaultMin:      rec.DefaultMin,
			DefaultMax:      rec.DefaultMax,
			GammaEnabled:    rec.Flags&flagGamma != 0,
			Gamma:           rec.Gamma,
			QuantizeEnabled: rec.Flags&flagQuantize != 0,
			Quantization:    int(rec.Quantization),
			ColorMap:        rec.Flags&flagColorMap != 0,
			Gradient:        Gradient(rec.Gradient),
		}
		if rec.TableLen > 0 {
			c.GradientTable = make([]byte, rec.TableLen)
			if _, err := io.ReadFull(cr, c.GradientTable); err != nil {
				return cr.n, fmt.Errorf("reading component %d gradient: %w", i, err)
			}
		}
		np.Components[i] = c
	}
	*p = np
	return cr.n, nil
}

type countReader struct {
	r io.Reader
	n int64
}

func (cr *countReader) Read(b []byte) (int, error) {
	n, err := cr.r.Read(b)
	cr.n += int64(n)
	return n, err
}
