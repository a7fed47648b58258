package viewer

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/soypat/arrview/ndarray"
)

// TextureFormat is a single channel GPU texture format, plus RGB8 for gradients.
type TextureFormat uint8

const (
	FormatInvalid TextureFormat = iota
	// FormatR8 is unsigned normalized 8 bit.
	FormatR8
	// FormatR8SNorm is signed normalized 8 bit. -128 and -127 both map to -1 so
	// the most negative value does not round trip.
	FormatR8SNorm
	FormatR16
	// FormatR16SNorm is signed normalized 16 bit; -32768 does not round trip.
	FormatR16SNorm
	FormatR32F
	// FormatRGB8 holds gradient lookup tables.
	FormatRGB8
)

func (f TextureFormat) String() string {
	switch f {
	case FormatR8:
		return "R8"
	case FormatR8SNorm:
		return "R8_SNORM"
	case FormatR16:
		return "R16"
	case FormatR16SNorm:
		return "R16_SNORM"
	case FormatR32F:
		return "R32F"
	case FormatRGB8:
		return "RGB8"
	}
	return fmt.Sprintf("TextureFormat(%d)", uint8(f))
}

// PixelSize returns the size of one texel in bytes.
func (f TextureFormat) PixelSize() int {
	switch f {
	case FormatR8, FormatR8SNorm:
		return 1
	case FormatR16, FormatR16SNorm:
		return 2
	case FormatR32F:
		return 4
	case FormatRGB8:
		return 3
	}
	return 0
}

// ValueScale returns the factor that converts a sampled normalized value back to
// the source data value.
func (f TextureFormat) ValueScale() float32 {
	switch f {
	case FormatR8:
		return math.MaxUint8
	case FormatR8SNorm:
		return math.MaxInt8
	case FormatR16:
		return math.MaxUint16
	case FormatR16SNorm:
		return math.MaxInt16
	}
	return 1
}

// TextureFormatFor returns the texture format used for element type t. Lossy
// reports whether the conversion may lose precision or special values: 32 and
// 64 bit integers and float64 are stored as float32.
func TextureFormatFor(t ndarray.Type) (f TextureFormat, lossy bool) {
	switch t {
	case ndarray.Uint8:
		return FormatR8, false
	case ndarray.Int8:
		return FormatR8SNorm, false
	case ndarray.Uint16:
		return FormatR16, false
	case ndarray.Int16:
		return FormatR16SNorm, false
	case ndarray.Float32:
		return FormatR32F, false
	case ndarray.Int32, ndarray.Uint32, ndarray.Int64, ndarray.Uint64, ndarray.Float64:
		return FormatR32F, true
	}
	return FormatInvalid, false
}

// stageComponent extracts component comp of a into dst as tightly packed texels
// of format f, growing dst as needed. Elements keep the array's row order with
// the first dimension varying fastest.
func stageComponent(dst []byte, a *ndarray.Array, comp int, f TextureFormat) []byte {
	n := a.Header.ElementCount()
	size := n * f.PixelSize()
	if cap(dst) < size {
		dst = make([]byte, size)
	}
	dst = dst[:size]
	typeSize := a.Header.Type.Size()
	stride := a.Header.ElementSize()
	native := f != FormatR32F || a.Header.Type == ndarray.Float32
	if native {
		if a.Header.Components == 1 {
			copy(dst, a.Data)
			return dst
		}
		for i := 0; i < n; i++ {
			src := i*stride + comp*typeSize
			copy(dst[i*typeSize:(i+1)*typeSize], a.Data[src:src+typeSize])
		}
		return dst
	}
	for i := 0; i < n; i++ {
		v := float32(a.Float64At(i, comp))
		binary.LittleEndian.PutUint32(dst[4*i:], math.Float32bits(v))
	}
	return dst
}
