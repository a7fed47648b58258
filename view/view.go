// Package view holds the view parameters: the complete description of how the
// loaded array is colorized, ranged and displayed, independent of the GPU
// resources that realize it.
package view

import (
	"errors"
	"fmt"
	"strconv"

	math "github.com/chewxy/math32"
	"github.com/soypat/arrview/ndarray"
)

// ErrUnsupported is returned for arrays the viewer cannot display.
var ErrUnsupported = errors.New("unsupported array")

// Mode selects how the array is displayed.
type Mode uint8

const (
	// ModeNone means there is no usable display mode for the data.
	ModeNone Mode = iota
	Mode2D
)

func (m Mode) String() string {
	switch m {
	case ModeNone:
		return "none"
	case Mode2D:
		return "2d"
	}
	return "Mode(" + strconv.Itoa(int(m)) + ")"
}

// ColorSpace is the color space detected from component interpretation tags.
type ColorSpace uint8

const (
	ColorSpaceNone ColorSpace = iota
	ColorSpaceLinearGray
	ColorSpaceLinearRGB
	ColorSpaceSRGB
)

func (c ColorSpace) String() string {
	switch c {
	case ColorSpaceNone:
		return "none"
	case ColorSpaceLinearGray:
		return "linear-gray"
	case ColorSpaceLinearRGB:
		return "linear-rgb"
	case ColorSpaceSRGB:
		return "srgb"
	}
	return "ColorSpace(" + strconv.Itoa(int(c)) + ")"
}

// Global holds settings that apply to the whole array.
type Global struct {
	// Component is the displayed component index. The value equal to the number of
	// components selects the color composite, available when ColorSpace is not none.
	Component int
	// ArrayAspect is width over height in samples.
	ArrayAspect float32
	// SampleAspect is horizontal over vertical physical sample distance.
	SampleAspect float32
	ColorSpace   ColorSpace
	// ColorComponents are the components making up the color composite. Unused
	// entries are -1; gray uses only the first.
	ColorComponents [3]int
	AlphaComponent  int
	// ZComponent is a component holding height or depth information, or -1.
	ZComponent int
}

// Component holds display settings of one component.
type Component struct {
	// RangeMin and RangeMax map data values to the [0,1] display range.
	RangeMin, RangeMax float32
	// DefaultMin and DefaultMax are the initial range, restored by ResetRange.
	DefaultMin, DefaultMax float32
	GammaEnabled           bool
	Gamma                  float32
	QuantizeEnabled        bool
	// Quantization is the number of display levels when quantization is enabled.
	Quantization  int
	ColorMap      bool
	Gradient      Gradient
	GradientTable []byte
}

// SetGradient selects a preset and regenerates the gradient table.
func (c *Component) SetGradient(g Gradient) {
	c.Gradient = g
	c.GradientTable = g.Table()
}

// ResetRange restores the default range.
func (c *Component) ResetRange() {
	c.RangeMin, c.RangeMax = c.DefaultMin, c.DefaultMax
}

// Params is the complete set of view parameters.
type Params struct {
	Mode       Mode
	Global     Global
	Components []Component
}

// Limits bounds the arrays [Limits.New] accepts.
type Limits struct {
	// MaxTextureSize is the largest width or height in samples.
	MaxTextureSize int
	// MaxDataSize is the largest raw buffer in bytes.
	MaxDataSize int
}

// DefaultLimits are used by [New].
var DefaultLimits = Limits{
	MaxTextureSize: 16384,
	MaxDataSize:    2 << 30,
}

// New computes initial view parameters for an array from its header and the
// statistics of each of its components. Arrays that cannot be displayed return
// params with Mode == ModeNone and an error wrapping [ErrUnsupported].
func New(h ndarray.Header, stats []ndarray.Statistics) (Params, error) {
	return DefaultLimits.New(h, stats)
}

// New is [New] with custom limits.
func (l Limits) New(h ndarray.Header, stats []ndarray.Statistics) (Params, error) {
	if err := l.Check(h); err != nil {
		return Params{}, err
	}
	if len(stats) != h.Components {
		return Params{}, fmt.Errorf("got statistics for %d of %d components", len(stats), h.Components)
	}
	p := Params{Mode: Mode2D, Components: make([]Component, h.Components)}
	g := &p.Global
	g.ArrayAspect = float32(h.Dims[0]) / float32(h.Dims[1])
	g.SampleAspect = sampleAspect(h)
	detectColor(h, g)
	if g.ColorSpace != ColorSpaceNone {
		g.Component = h.Components
	}
	for i := range p.Components {
		c := &p.Components[i]
		c.DefaultMin, c.DefaultMax = defaultRange(h, i, stats[i])
		c.ResetRange()
		c.Gamma = 1
		c.Quantization = 8
		c.SetGradient(GradientGray)
	}
	return p, nil
}

// Check reports why an array with header h cannot be displayed, or nil.
// Errors wrap [ErrUnsupported].
func (l Limits) Check(h ndarray.Header) error {
	if err := h.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnsupported, err)
	}
	if len(h.Dims) < 2 {
		return fmt.Errorf("%w: %d-dimensional data", ErrUnsupported, len(h.Dims))
	}
	for i, d := range h.Dims[2:] {
		if d != 1 {
			return fmt.Errorf("%w: dimension %d has size %d, only 2D data is displayed", ErrUnsupported, i+2, d)
		}
	}
	if h.Dims[0] > l.MaxTextureSize || h.Dims[1] > l.MaxTextureSize {
		return fmt.Errorf("%w: %dx%d exceeds maximum texture size %d", ErrUnsupported, h.Dims[0], h.Dims[1], l.MaxTextureSize)
	}
	if h.DataSize() > l.MaxDataSize {
		return fmt.Errorf("%w: data size %d exceeds %d bytes", ErrUnsupported, h.DataSize(), l.MaxDataSize)
	}
	return nil
}

func sampleAspect(h ndarray.Header) float32 {
	dx, err0 := strconv.ParseFloat(h.DimensionTag(0, ndarray.TagSampleDistance), 32)
	dy, err1 := strconv.ParseFloat(h.DimensionTag(1, ndarray.TagSampleDistance), 32)
	if err0 != nil || err1 != nil || dx <= 0 || dy <= 0 {
		return 1
	}
	return float32(dx / dy)
}

func detectColor(h ndarray.Header, g *Global) {
	g.ColorComponents = [3]int{-1, -1, -1}
	g.AlphaComponent = -1
	g.ZComponent = -1
	gray := -1
	for i := 0; i < h.Components; i++ {
		switch h.ComponentTag(i, ndarray.TagInterpretation) {
		case ndarray.InterpretationRed:
			g.ColorComponents[0] = i
		case ndarray.InterpretationGreen:
			g.ColorComponents[1] = i
		case ndarray.InterpretationBlue:
			g.ColorComponents[2] = i
		case ndarray.InterpretationGray:
			gray = i
		case ndarray.InterpretationAlpha:
			g.AlphaComponent = i
		case ndarray.InterpretationZ, ndarray.InterpretationHeight:
			g.ZComponent = i
		}
	}
	rgb := g.ColorComponents[0] >= 0 && g.ColorComponents[1] >= 0 && g.ColorComponents[2] >= 0
	switch {
	case rgb && h.Tags[ndarray.TagInterpretation] == ndarray.InterpretationSRGB:
		g.ColorSpace = ColorSpaceSRGB
	case rgb:
		g.ColorSpace = ColorSpaceLinearRGB
	case gray >= 0:
		g.ColorSpace = ColorSpaceLinearGray
		g.ColorComponents = [3]int{gray, -1, -1}
	default:
		g.ColorComponents = [3]int{-1, -1, -1}
	}
}

// defaultRange returns the initial display range of component i. Color channels
// of 8 and 16 bit unsigned data use the full type range, everything else uses
// the value range from statistics widened to be non-empty.
func defaultRange(h ndarray.Header, i int, st ndarray.Statistics) (lo, hi float32) {
	switch h.ComponentTag(i, ndarray.TagInterpretation) {
	case ndarray.InterpretationRed, ndarray.InterpretationGreen, ndarray.InterpretationBlue,
		ndarray.InterpretationGray, ndarray.InterpretationAlpha:
		switch h.Type {
		case ndarray.Uint8:
			return 0, 255
		case ndarray.Uint16:
			return 0, 65535
		}
	}
	lo, hi = float32(st.Min), float32(st.Max)
	if !(hi > lo) || math.IsInf(hi-lo, 0) {
		hi = lo + 1
	}
	return lo, hi
}

// Valid reports whether p describes a displayable configuration. Invalid params
// draw nothing.
func (p *Params) Valid() bool {
	if p.Mode != Mode2D || len(p.Components) == 0 {
		return false
	}
	g := p.Global
	maxComponent := len(p.Components) - 1
	if g.ColorSpace != ColorSpaceNone {
		maxComponent++
	}
	if g.Component < 0 || g.Component > maxComponent || !(g.ArrayAspect > 0) || !(g.SampleAspect > 0) {
		return false
	}
	for _, c := range p.Components {
		if !c.valid() {
			return false
		}
	}
	return true
}

func (c *Component) valid() bool {
	finite := !math.IsNaN(c.RangeMin) && !math.IsNaN(c.RangeMax) &&
		!math.IsInf(c.RangeMin, 0) && !math.IsInf(c.RangeMax, 0)
	return finite && c.RangeMin < c.RangeMax &&
		(!c.GammaEnabled || c.Gamma > 0) &&
		(!c.QuantizeEnabled || c.Quantization >= 2) &&
		len(c.GradientTable) == 3*GradientSize
}

// ShowsColor reports whether the color composite is displayed instead of a single component.
func (p *Params) ShowsColor() bool {
	return p.Global.ColorSpace != ColorSpaceNone && p.Global.Component == len(p.Components)
}

// Clone returns a deep copy of p.
func (p Params) Clone() Params {
	c := p
	if p.Components == nil {
		return c
	}
	c.Components = make([]Component, len(p.Components))
	for i, comp := range p.Components {
		comp.GradientTable = append([]byte(nil), comp.GradientTable...)
		c.Components[i] = comp
	}
	return c
}
