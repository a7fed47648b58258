package main

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/soypat/arrview/ndarray"
	"github.com/soypat/arrview/view"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/tiff"
)

func writeDataset(t *testing.T, dir, desc string, data []byte) string {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.raw"), data, 0o644))
	path := filepath.Join(dir, "a.toml")
	require.NoError(t, os.WriteFile(path, []byte(desc), 0o644))
	return path
}

const grayDesc = `
file = "a.raw"
dims = [4, 2]
type = "uint8"
`

const rgbDesc = `
file = "a.raw"
dims = [2, 2]
components = 3
type = "uint8"
[component_tags.0]
INTERPRETATION = "RED"
[component_tags.1]
INTERPRETATION = "GREEN"
[component_tags.2]
INTERPRETATION = "BLUE"
`

func TestConfigValidate(t *testing.T) {
	ok := config{width: 10, height: 10, windows: 1, nodes: 1}
	assert.NoError(t, ok.validate())
	bad := []func(*config){
		func(c *config) { c.width = 0 },
		func(c *config) { c.windows = 0 },
		func(c *config) { c.nodes = 0 },
		func(c *config) { c.nodes, c.screenshot = 2, "x.tiff" },
	}
	for i, mod := range bad {
		c := ok
		mod(&c)
		assert.Error(t, c.validate(), "case %d", i)
	}
}

func TestLoadDataset(t *testing.T) {
	path := writeDataset(t, t.TempDir(), grayDesc, []byte{0, 1, 2, 3, 4, 5, 6, 7})
	d, err := loadDataset(path, config{component: -1})
	require.NoError(t, err)
	assert.Equal(t, []int{4, 2}, d.arr.Header.Dims)
	require.Len(t, d.stats, 1)
	assert.Equal(t, 0.0, d.stats[0].Min)
	assert.Equal(t, 7.0, d.stats[0].Max)
	assert.Equal(t, view.Mode2D, d.params.Mode)
	assert.Equal(t, float32(2), d.params.Global.ArrayAspect)
	assert.Equal(t, float32(0), d.params.Components[0].RangeMin)
	assert.Equal(t, float32(7), d.params.Components[0].RangeMax)
	assert.False(t, d.params.Components[0].ColorMap)

	d, err = loadDataset(path, config{component: -1, gradient: "heat"})
	require.NoError(t, err)
	assert.Equal(t, view.GradientHeat, d.params.Components[0].Gradient)
	assert.True(t, d.params.Components[0].ColorMap)

	_, err = loadDataset(path, config{component: 3})
	assert.Error(t, err)
	_, err = loadDataset(path, config{component: -1, gradient: "plaid"})
	assert.Error(t, err)

	// Short data file.
	path = writeDataset(t, t.TempDir(), grayDesc, []byte{0, 1, 2})
	_, err = loadDataset(path, config{component: -1})
	assert.Error(t, err)
}

func TestComponentAndGradientCycling(t *testing.T) {
	path := writeDataset(t, t.TempDir(), rgbDesc, make([]byte, 12))
	d, err := loadDataset(path, config{component: -1})
	require.NoError(t, err)
	p := d.params
	require.Equal(t, view.ColorSpaceLinearRGB, p.Global.ColorSpace)
	assert.True(t, p.ShowsColor())

	// Composite has no gradient to cycle.
	cycleGradient(&p)
	toggleColorMap(&p)
	for _, c := range p.Components {
		assert.False(t, c.ColorMap)
	}

	var seen []int
	for i := 0; i < 4; i++ {
		cycleComponent(&p)
		seen = append(seen, p.Global.Component)
	}
	assert.Equal(t, []int{0, 1, 2, 3}, seen)

	cycleComponent(&p)
	require.Equal(t, 0, p.Global.Component)
	cycleGradient(&p)
	assert.Equal(t, view.GradientGray+1, p.Components[0].Gradient)
	assert.True(t, p.Components[0].ColorMap)
	toggleColorMap(&p)
	assert.False(t, p.Components[0].ColorMap)

	p.Components[0].SetGradient(view.GradientTerrain)
	cycleGradient(&p)
	assert.Equal(t, view.GradientGray, p.Components[0].Gradient)
}

func TestSameShape(t *testing.T) {
	a := ndarray.Header{Dims: []int{4, 2}, Components: 1, Type: ndarray.Uint8}
	b := a
	b.Tags = map[string]string{"x": "y"}
	assert.True(t, sameShape(a, b))
	b.Dims = []int{2, 4}
	assert.False(t, sameShape(a, b))
	b = a
	b.Type = ndarray.Int8
	assert.False(t, sameShape(a, b))
}

func TestWriteTIFF(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 3, 2))
	for i := range img.Pix {
		img.Pix[i] = 255
	}
	img.SetRGBA(1, 1, color.RGBA{R: 10, G: 20, B: 30, A: 255})
	path := filepath.Join(t.TempDir(), "shot.tiff")
	require.NoError(t, writeTIFF(path, img))

	fp, err := os.Open(path)
	require.NoError(t, err)
	defer fp.Close()
	got, err := tiff.Decode(fp)
	require.NoError(t, err)
	assert.Equal(t, img.Bounds(), got.Bounds())
	r, g, b, a := got.At(1, 1).RGBA()
	assert.Equal(t, [4]uint32{10 * 0x101, 20 * 0x101, 30 * 0x101, 0xffff}, [4]uint32{r, g, b, a})
}

func TestReloader(t *testing.T) {
	dir := t.TempDir()
	path := writeDataset(t, dir, grayDesc, make([]byte, 8))
	other := filepath.Join(dir, "other.txt")

	r, err := newReloader(time.Hour, path)
	require.NoError(t, err)
	defer r.Close()
	base := time.Now()
	assert.False(t, r.poll(base))

	// Unwatched files in the same directory are ignored.
	require.NoError(t, os.WriteFile(other, []byte("x"), 0o644))
	time.Sleep(50 * time.Millisecond)
	assert.False(t, r.poll(base))
	assert.True(t, r.changed.IsZero())

	require.NoError(t, os.WriteFile(path, []byte(grayDesc+"\n"), 0o644))
	require.Eventually(t, func() bool {
		r.poll(base)
		return !r.changed.IsZero()
	}, 2*time.Second, 10*time.Millisecond)
	assert.False(t, r.poll(base.Add(time.Minute)), "still settling")
	assert.True(t, r.poll(base.Add(2*time.Hour)))
	assert.False(t, r.poll(base.Add(3*time.Hour)), "reported once")
}
