package view

import (
	"fmt"
	"image/color"

	math "github.com/chewxy/math32"
	"github.com/soypat/glgl/math/ms1"
)

// HSV interpolation helpers follow Esme Lamb's (@dedelala) color work presented
// at Gophercon AU 2024. https://github.com/dedelala/disco/tree/main/color

// GradientSize is the number of RGB entries in a gradient table.
const GradientSize = 256

// Gradient names a color map preset.
type Gradient uint8

const (
	GradientGray Gradient = iota
	GradientHeat
	GradientRainbow
	GradientDiverging
	GradientTerrain
	gradientCount
)

// gradientStops are 24 bit RGB colors equally spaced along each gradient.
var gradientStops = [gradientCount][]uint32{
	GradientGray:      {0x000000, 0xffffff},
	GradientHeat:      {0x000000, 0xc00000, 0xffa000, 0xffffff},
	GradientRainbow:   {0x0000ff, 0x00ffff, 0x00ff00, 0xffff00, 0xff0000},
	GradientDiverging: {0x3040c0, 0xf0f0f0, 0xc03020},
	GradientTerrain:   {0x203080, 0x3090d0, 0x40a040, 0xe0d080, 0x806040, 0xffffff},
}

var gradientNames = [gradientCount]string{
	GradientGray:      "gray",
	GradientHeat:      "heat",
	GradientRainbow:   "rainbow",
	GradientDiverging: "diverging",
	GradientTerrain:   "terrain",
}

func (g Gradient) String() string {
	if g < gradientCount {
		return gradientNames[g]
	}
	return fmt.Sprintf("Gradient(%d)", uint8(g))
}

// ParseGradient returns the gradient named s.
func ParseGradient(s string) (Gradient, error) {
	for g, name := range gradientNames {
		if name == s {
			return Gradient(g), nil
		}
	}
	return 0, fmt.Errorf("unknown gradient %q", s)
}

// IsValid reports whether g is a known preset.
func (g Gradient) IsValid() bool { return g < gradientCount }

// Table returns GradientSize packed RGB triples sampled from the gradient.
// Unknown gradients return a gray ramp.
func (g Gradient) Table() []byte {
	if !g.IsValid() {
		g = GradientGray
	}
	stops := gradientStops[g]
	tbl := make([]byte, 3*GradientSize)
	segments := float32(len(stops) - 1)
	for i := 0; i < GradientSize; i++ {
		t := float32(i) / (GradientSize - 1) * segments
		seg := min(int(t), len(stops)-2)
		c := cInterp(stops[seg], stops[seg+1], t-float32(seg))
		tbl[3*i] = uint8(c >> 16)
		tbl[3*i+1] = uint8(c >> 8)
		tbl[3*i+2] = uint8(c)
	}
	return tbl
}

// TableColor returns entry i of a gradient table as an opaque color.
func TableColor(tbl []byte, i int) color.RGBA {
	return color.RGBA{R: tbl[3*i], G: tbl[3*i+1], B: tbl[3*i+2], A: 255}
}

// cInterp interpolates two 24 bit RGB colors in HSV space.
func cInterp(c0, c1 uint32, t float32) uint32 {
	if t <= 0 {
		return c0
	} else if t >= 1 {
		return c1
	}
	h0, s0, v0 := rgbToHSV(cToRGB(c0))
	h1, s1, v1 := rgbToHSV(cToRGB(c1))
	return rgbToC(hsvToRGB(interpHSV(h0, s0, v0, h1, s1, v1, t)))
}

func interpHSV(h0, s0, v0, h1, s1, v1, t float32) (h, s, v float32) {
	// Achromatic endpoints take the hue of the other end so black to red stays red.
	if s0 == 0 {
		h0 = h1
	} else if s1 == 0 {
		h1 = h0
	}
	switch {
	case h1-h0 > 0.5:
		h0 += 1.0
	case h1-h0 < -0.5:
		h1 += 1.0
	}
	h = ms1.Interp(h0, h1, t)
	s = ms1.Interp(s0, s1, t)
	v = ms1.Interp(v0, v1, t)
	return h, s, v
}

// cToRGB converts a 24 bit RGB value stored in the least significant bits.
func cToRGB(c uint32) (r, g, b float32) {
	r = float32(uint8(c>>16)) / math.MaxUint8
	g = float32(uint8(c>>8)) / math.MaxUint8
	b = float32(uint8(c)) / math.MaxUint8
	return r, g, b
}

// rgbToC converts r, g and b on the range 0 to 1 into a 24 bit RGB value.
// Inputs are clamped.
func rgbToC(r, g, b float32) (c uint32) {
	return uint32(ms1.Clamp(r, 0, 1)*math.MaxUint8+0.5)<<16 |
		uint32(ms1.Clamp(g, 0, 1)*math.MaxUint8+0.5)<<8 |
		uint32(ms1.Clamp(b, 0, 1)*math.MaxUint8+0.5)
}

// hsvToRGB converts hue, saturation and value to RGB. Hue wraps around 1.
func hsvToRGB(h, s, v float32) (r, g, b float32) {
	h -= math.Floor(h)
	var (
		c = s * v
		x = c * (1 - math.Abs(math.Mod(h*6, 2)-1))
		m = v - c
	)
	switch {
	case h <= 1.0/6:
		r, g, b = c, x, 0
	case h <= 2.0/6:
		r, g, b = x, c, 0
	case h <= 3.0/6:
		r, g, b = 0, c, x
	case h <= 4.0/6:
		r, g, b = 0, x, c
	case h <= 5.0/6:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}
	return r + m, g + m, b + m
}

func rgbToHSV(r, g, b float32) (h, s, v float32) {
	var (
		xmax = max(r, g, b)
		xmin = min(r, g, b)
		c    = xmax - xmin
	)
	v = xmax
	switch {
	case c == 0:
		h = 0
	case v == r:
		h = (g - b) / (c * 6)
	case v == g:
		h = 1.0/3 + (b-r)/(c*6)
	case v == b:
		h = 2.0/3 + (r-g)/(c*6)
	}
	if h < 0 {
		h += 1
	}
	if xmax > 0 {
		s = c / xmax
	}
	return h, s, v
}
