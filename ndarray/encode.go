package ndarray

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"sort"
)

// Binary encoding of headers, arrays and statistics. Used to move in-memory renderer
// state between processes; there is no compatibility guarantee across versions.

var le = binary.LittleEndian

// maxEncodedLen bounds lengths read back from a stream so corrupt input fails early.
const maxEncodedLen = 1 << 40

// WriteHeader encodes h to w.
func WriteHeader(w io.Writer, h Header) error {
	ew := errWriter{w: w}
	ew.u64(uint64(len(h.Dims)))
	for _, d := range h.Dims {
		ew.u64(uint64(d))
	}
	ew.u64(uint64(h.Components))
	ew.u8(uint8(h.Type))
	ew.tags(h.Tags)
	ew.tagList(h.DimensionTags)
	ew.tagList(h.ComponentTags)
	return ew.err
}

// ReadHeader decodes a header written by [WriteHeader].
func ReadHeader(r io.Reader) (Header, error) {
	er := errReader{r: r}
	var h Header
	ndims := er.length()
	for i := 0; i < ndims && er.err == nil; i++ {
		h.Dims = append(h.Dims, er.length())
	}
	h.Components = er.length()
	h.Type = Type(er.u8())
	h.Tags = er.tags()
	h.DimensionTags = er.tagList()
	h.ComponentTags = er.tagList()
	if er.err != nil {
		return Header{}, fmt.Errorf("reading header: %w", er.err)
	}
	return h, h.Validate()
}

// WriteArray encodes the header and data of a to w.
func WriteArray(w io.Writer, a *Array) error {
	if err := WriteHeader(w, a.Header); err != nil {
		return err
	}
	ew := errWriter{w: w}
	ew.bytes(a.Data)
	return ew.err
}

// ReadArray decodes an array written by [WriteArray].
func ReadArray(r io.Reader) (*Array, error) {
	h, err := ReadHeader(r)
	if err != nil {
		return nil, err
	}
	er := errReader{r: r}
	data := er.bytes()
	if er.err != nil {
		return nil, fmt.Errorf("reading array data: %w", er.err)
	}
	a := &Array{Header: h, Data: data}
	return a, a.Validate()
}

// WriteStatistics encodes a statistics list to w.
func WriteStatistics(w io.Writer, stats []Statistics) error {
	ew := errWriter{w: w}
	ew.u64(uint64(len(stats)))
	for _, st := range stats {
		ew.put(st.Min)
		ew.put(st.Max)
		ew.u64(uint64(st.Finite))
		ew.u64(st.HistogramMax)
		ew.u64(uint64(len(st.Histogram)))
		ew.put(st.Histogram)
	}
	return ew.err
}

// ReadStatistics decodes a statistics list written by [WriteStatistics].
func ReadStatistics(r io.Reader) ([]Statistics, error) {
	er := errReader{r: r}
	n := er.length()
	stats := make([]Statistics, 0, min(n, 1024))
	for i := 0; i < n && er.err == nil; i++ {
		var st Statistics
		er.get(&st.Min)
		er.get(&st.Max)
		st.Finite = er.length()
		st.HistogramMax = er.u64()
		st.Histogram = make([]uint64, er.length())
		er.get(st.Histogram)
		stats = append(stats, st)
	}
	if er.err != nil {
		return nil, fmt.Errorf("reading statistics: %w", er.err)
	}
	return stats, nil
}

// errWriter and errReader keep the first error so sequences of writes need a single check.

type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) put(v any) {
	if ew.err == nil {
		ew.err = binary.Write(ew.w, le, v)
	}
}

func (ew *errWriter) u8(v uint8)   { ew.put(v) }
func (ew *errWriter) u64(v uint64) { ew.put(v) }

func (ew *errWriter) bytes(b []byte) {
	ew.u64(uint64(len(b)))
	if ew.err == nil {
		_, ew.err = ew.w.Write(b)
	}
}

func (ew *errWriter) str(s string) { ew.bytes([]byte(s)) }

func (ew *errWriter) tags(m map[string]string) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	ew.u64(uint64(len(keys)))
	for _, k := range keys {
		ew.str(k)
		ew.str(m[k])
	}
}

func (ew *errWriter) tagList(l []map[string]string) {
	ew.u64(uint64(len(l)))
	for _, m := range l {
		ew.tags(m)
	}
}

type errReader struct {
	r   io.Reader
	err error
}

var errLength = errors.New("encoded length out of range")

func (er *errReader) get(v any) {
	if er.err == nil {
		er.err = binary.Read(er.r, le, v)
	}
}

func (er *errReader) u8() (v uint8) {
	er.get(&v)
	return v
}

func (er *errReader) u64() (v uint64) {
	er.get(&v)
	return v
}

func (er *errReader) length() int {
	v := er.u64()
	if er.err == nil && v > maxEncodedLen {
		er.err = errLength
	}
	if er.err != nil {
		return 0
	}
	return int(v)
}

func (er *errReader) bytes() []byte {
	n := er.length()
	if er.err != nil {
		return nil
	}
	b := make([]byte, n)
	_, er.err = io.ReadFull(er.r, b)
	return b
}

func (er *errReader) str() string { return string(er.bytes()) }

func (er *errReader) tags() map[string]string {
	n := er.length()
	if n == 0 || er.err != nil {
		return nil
	}
	m := make(map[string]string, min(n, 1024))
	for i := 0; i < n && er.err == nil; i++ {
		k := er.str()
		m[k] = er.str()
	}
	return m
}

func (er *errReader) tagList() []map[string]string {
	n := er.length()
	if n == 0 || er.err != nil {
		return nil
	}
	l := make([]map[string]string, 0, min(n, 1024))
	for i := 0; i < n && er.err == nil; i++ {
		l = append(l, er.tags())
	}
	return l
}
