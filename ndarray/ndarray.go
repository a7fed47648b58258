// Package ndarray describes the multidimensional array data consumed by the viewer:
// a header with dimensions, element type and tags, a raw contiguous buffer, and
// per-component statistics.
package ndarray

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"strings"
)

// Type is the scalar element type of every component of an array.
type Type uint8

const (
	TypeInvalid Type = iota
	Int8
	Uint8
	Int16
	Uint16
	Int32
	Uint32
	Int64
	Uint64
	Float32
	Float64
)

var typeNames = [...]string{
	TypeInvalid: "invalid",
	Int8:        "int8",
	Uint8:       "uint8",
	Int16:       "int16",
	Uint16:      "uint16",
	Int32:       "int32",
	Uint32:      "uint32",
	Int64:       "int64",
	Uint64:      "uint64",
	Float32:     "float32",
	Float64:     "float64",
}

func (t Type) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return "Type(" + fmt.Sprint(uint8(t)) + ")"
}

// ParseType returns the type named s, as returned by [Type.String].
func ParseType(s string) (Type, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for t, name := range typeNames {
		if name == s && Type(t) != TypeInvalid {
			return Type(t), nil
		}
	}
	return TypeInvalid, fmt.Errorf("unknown element type %q", s)
}

// Size returns the size of the type in bytes.
func (t Type) Size() int {
	switch t {
	case Int8, Uint8:
		return 1
	case Int16, Uint16:
		return 2
	case Int32, Uint32, Float32:
		return 4
	case Int64, Uint64, Float64:
		return 8
	}
	return 0
}

func (t Type) IsValid() bool   { return t > TypeInvalid && t <= Float64 }
func (t Type) IsFloat() bool   { return t == Float32 || t == Float64 }
func (t Type) IsInteger() bool { return t.IsValid() && !t.IsFloat() }
func (t Type) IsSigned() bool {
	return t == Int8 || t == Int16 || t == Int32 || t == Int64 || t.IsFloat()
}

// Well known tag names and values.
const (
	// TagInterpretation is a component tag naming the semantic meaning of the component.
	TagInterpretation = "INTERPRETATION"
	// TagSampleDistance is a dimension tag holding the physical spacing of samples.
	TagSampleDistance = "SAMPLE_DISTANCE"
	// TagUnit is a dimension or component tag holding the physical unit.
	TagUnit = "UNIT"

	InterpretationRed    = "RED"
	InterpretationGreen  = "GREEN"
	InterpretationBlue   = "BLUE"
	InterpretationAlpha  = "ALPHA"
	InterpretationGray   = "GRAY"
	InterpretationSRGB   = "SRGB"
	InterpretationZ      = "Z"
	InterpretationHeight = "HEIGHT"
)

// Header describes the layout of an array. Elements are stored with the first
// dimension varying fastest and all components of an element stored contiguously.
type Header struct {
	Dims       []int
	Components int
	Type       Type
	// Tags are global key/value annotations.
	Tags map[string]string
	// DimensionTags has one tag map per dimension. It may be shorter than Dims.
	DimensionTags []map[string]string
	// ComponentTags has one tag map per component. It may be shorter than Components.
	ComponentTags []map[string]string
}

var (
	errNoDims       = errors.New("array has no dimensions")
	errNoComponents = errors.New("array has no components")
)

// Validate checks the header describes a non-empty array of a known type.
func (h Header) Validate() error {
	if len(h.Dims) == 0 {
		return errNoDims
	}
	for i, d := range h.Dims {
		if d <= 0 {
			return fmt.Errorf("dimension %d has non-positive size %d", i, d)
		}
	}
	if h.Components <= 0 {
		return errNoComponents
	}
	if !h.Type.IsValid() {
		return fmt.Errorf("invalid element type %v", h.Type)
	}
	if len(h.DimensionTags) > len(h.Dims) {
		return errors.New("more dimension tag sets than dimensions")
	}
	if len(h.ComponentTags) > h.Components {
		return errors.New("more component tag sets than components")
	}
	return nil
}

// ElementCount returns the number of elements (product of dimensions).
func (h Header) ElementCount() int {
	if len(h.Dims) == 0 {
		return 0
	}
	n := 1
	for _, d := range h.Dims {
		n *= d
	}
	return n
}

// ElementSize returns the size in bytes of one element with all its components.
func (h Header) ElementSize() int { return h.Components * h.Type.Size() }

// DataSize returns the size in bytes of the raw buffer.
func (h Header) DataSize() int { return h.ElementCount() * h.ElementSize() }

// ComponentTag returns the tag key of component i or the empty string.
func (h Header) ComponentTag(i int, key string) string {
	if i < 0 || i >= len(h.ComponentTags) {
		return ""
	}
	return h.ComponentTags[i][key]
}

// DimensionTag returns the tag key of dimension i or the empty string.
func (h Header) DimensionTag(i int, key string) string {
	if i < 0 || i >= len(h.DimensionTags) {
		return ""
	}
	return h.DimensionTags[i][key]
}

// Clone returns a deep copy of h.
func (h Header) Clone() Header {
	c := h
	c.Dims = append([]int(nil), h.Dims...)
	c.Tags = cloneTags(h.Tags)
	c.DimensionTags = cloneTagList(h.DimensionTags)
	c.ComponentTags = cloneTagList(h.ComponentTags)
	return c
}

func cloneTags(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	c := make(map[string]string, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}

func cloneTagList(l []map[string]string) []map[string]string {
	if l == nil {
		return nil
	}
	c := make([]map[string]string, len(l))
	for i := range l {
		c[i] = cloneTags(l[i])
	}
	return c
}

// Array is a header plus its raw little-endian data buffer.
type Array struct {
	Header Header
	Data   []byte
}

// NewArray allocates a zeroed array for h.
func NewArray(h Header) (*Array, error) {
	if err := h.Validate(); err != nil {
		return nil, err
	}
	return &Array{Header: h, Data: make([]byte, h.DataSize())}, nil
}

// Validate checks the header and that the buffer matches its size.
func (a *Array) Validate() error {
	if err := a.Header.Validate(); err != nil {
		return err
	}
	if len(a.Data) != a.Header.DataSize() {
		return fmt.Errorf("data size %d does not match header size %d", len(a.Data), a.Header.DataSize())
	}
	return nil
}

// offset returns the byte offset of component comp of element elem.
func (a *Array) offset(elem, comp int) int {
	return elem*a.Header.ElementSize() + comp*a.Header.Type.Size()
}

// Float64At returns component comp of element elem converted to float64.
func (a *Array) Float64At(elem, comp int) float64 {
	b := a.Data[a.offset(elem, comp):]
	le := binary.LittleEndian
	switch a.Header.Type {
	case Int8:
		return float64(int8(b[0]))
	case Uint8:
		return float64(b[0])
	case Int16:
		return float64(int16(le.Uint16(b)))
	case Uint16:
		return float64(le.Uint16(b))
	case Int32:
		return float64(int32(le.Uint32(b)))
	case Uint32:
		return float64(le.Uint32(b))
	case Int64:
		return float64(int64(le.Uint64(b)))
	case Uint64:
		return float64(le.Uint64(b))
	case Float32:
		return float64(math.Float32frombits(le.Uint32(b)))
	case Float64:
		return math.Float64frombits(le.Uint64(b))
	}
	panic("invalid element type " + a.Header.Type.String())
}

// SetFloat64At stores v into component comp of element elem, converting to the element type.
// Integer conversion truncates toward zero; out of range values are not saturated.
func (a *Array) SetFloat64At(elem, comp int, v float64) {
	b := a.Data[a.offset(elem, comp):]
	le := binary.LittleEndian
	switch a.Header.Type {
	case Int8:
		b[0] = byte(int8(v))
	case Uint8:
		b[0] = byte(v)
	case Int16:
		le.PutUint16(b, uint16(int16(v)))
	case Uint16:
		le.PutUint16(b, uint16(v))
	case Int32:
		le.PutUint32(b, uint32(int32(v)))
	case Uint32:
		le.PutUint32(b, uint32(v))
	case Int64:
		le.PutUint64(b, uint64(int64(v)))
	case Uint64:
		le.PutUint64(b, uint64(v))
	case Float32:
		le.PutUint32(b, math.Float32bits(float32(v)))
	case Float64:
		le.PutUint64(b, math.Float64bits(v))
	default:
		panic("invalid element type " + a.Header.Type.String())
	}
}

// Clone returns a deep copy of a.
func (a *Array) Clone() *Array {
	return &Array{Header: a.Header.Clone(), Data: append([]byte(nil), a.Data...)}
}
