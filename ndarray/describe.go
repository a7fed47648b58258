package ndarray

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Description is a sidecar file describing a headerless raw array file.
//
//	file = "ct.raw"
//	dims = [512, 512]
//	components = 1
//	type = "int16"
//	[component_tags.0]
//	INTERPRETATION = "GRAY"
type Description struct {
	// File is the raw data path, relative to the description file.
	File       string `toml:"file" yaml:"file"`
	Dims       []int  `toml:"dims" yaml:"dims"`
	Components int    `toml:"components" yaml:"components"`
	Type       string `toml:"type" yaml:"type"`
	// Offset is the number of leading bytes to skip in File.
	Offset        int64                        `toml:"offset" yaml:"offset"`
	Tags          map[string]string            `toml:"tags" yaml:"tags"`
	DimensionTags map[string]map[string]string `toml:"dimension_tags" yaml:"dimension_tags"`
	ComponentTags map[string]map[string]string `toml:"component_tags" yaml:"component_tags"`

	dir string
}

// LoadDescription reads a description from a .toml, .yaml or .yml file.
func LoadDescription(path string) (*Description, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	d, err := DecodeDescription(bytes.NewReader(b), filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	d.dir = filepath.Dir(path)
	return d, nil
}

// DecodeDescription decodes a description in the format named by ext (".toml", ".yaml" or ".yml").
func DecodeDescription(r io.Reader, ext string) (*Description, error) {
	var d Description
	var err error
	switch strings.ToLower(ext) {
	case ".toml":
		err = toml.NewDecoder(r).DisallowUnknownFields().Decode(&d)
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		err = dec.Decode(&d)
	default:
		return nil, fmt.Errorf("unsupported description format %q", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("decoding description: %w", err)
	}
	return &d, nil
}

// Header builds the array header described by d.
func (d *Description) Header() (Header, error) {
	typ, err := ParseType(d.Type)
	if err != nil {
		return Header{}, err
	}
	h := Header{
		Dims:       append([]int(nil), d.Dims...),
		Components: d.Components,
		Type:       typ,
		Tags:       cloneTags(d.Tags),
	}
	if h.Components == 0 {
		h.Components = 1
	}
	h.DimensionTags, err = indexedTags(d.DimensionTags, len(h.Dims))
	if err != nil {
		return Header{}, fmt.Errorf("dimension_tags: %w", err)
	}
	h.ComponentTags, err = indexedTags(d.ComponentTags, h.Components)
	if err != nil {
		return Header{}, fmt.Errorf("component_tags: %w", err)
	}
	return h, h.Validate()
}

// Path returns the raw data file path resolved against the description's directory.
func (d *Description) Path() string {
	if filepath.IsAbs(d.File) || d.dir == "" {
		return d.File
	}
	return filepath.Join(d.dir, d.File)
}

// Load reads the raw data file and returns the described array.
func (d *Description) Load() (*Array, error) {
	h, err := d.Header()
	if err != nil {
		return nil, err
	}
	fp, err := os.Open(d.Path())
	if err != nil {
		return nil, err
	}
	defer fp.Close()
	if d.Offset > 0 {
		if _, err = fp.Seek(d.Offset, io.SeekStart); err != nil {
			return nil, err
		}
	}
	a := &Array{Header: h, Data: make([]byte, h.DataSize())}
	_, err = io.ReadFull(fp, a.Data)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", d.Path(), err)
	}
	return a, nil
}

// indexedTags converts tag tables keyed by decimal index into a slice of length n.
func indexedTags(m map[string]map[string]string, n int) ([]map[string]string, error) {
	if len(m) == 0 {
		return nil, nil
	}
	l := make([]map[string]string, n)
	for k, tags := range m {
		i, err := strconv.Atoi(k)
		if err != nil || i < 0 || i >= n {
			return nil, fmt.Errorf("invalid index %q", k)
		}
		l[i] = cloneTags(tags)
	}
	return l, nil
}
