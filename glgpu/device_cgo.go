//go:build !tinygo && cgo

package glgpu

import (
	"errors"
	"fmt"
	"image"
	"unsafe"

	"github.com/go-gl/gl/v4.6-core/gl"
	"github.com/soypat/arrview/glm"
	"github.com/soypat/arrview/render"
	"github.com/soypat/arrview/viewer"
	"github.com/soypat/glgl/v4.6-core/glgl"
)

var _ viewer.Device = (*Device)(nil)

// Device draws through the OpenGL context current on the calling thread. Objects
// it creates are visible to every context sharing with the one current at creation.
type Device struct {
	programs map[viewer.Program]*program
	// pbo is the pixel unpack buffer used to stage texture uploads.
	pbo     uint32
	pboSize int
}

type program struct {
	prog      glgl.Program
	uniforms  map[string]int32
	posAttrib uint32
}

// New returns a device. gl.Init must have been called with a context current.
// Driver debug messages of that context are written to [render.Logger].
func New() (*Device, error) {
	glgl.EnableDebugOutput(render.Logger())
	return &Device{programs: make(map[viewer.Program]*program)}, nil
}

// CompileProgram implements [viewer.Device].
func (d *Device) CompileProgram(vertex, fragment string) (viewer.Program, error) {
	prog, err := glgl.CompileProgram(glgl.ShaderSource{Vertex: vertex, Fragment: fragment})
	if err != nil {
		return 0, fmt.Errorf("compiling program: %w", err)
	}
	if prog.ID() == 0 {
		return 0, glErrOrMessage("compiled program has zero id")
	}
	pos, err := prog.AttribLocation("aPos\x00")
	if err != nil {
		prog.Delete()
		return 0, err
	}
	p := &program{prog: prog, uniforms: make(map[string]int32), posAttrib: pos}
	id := viewer.Program(prog.ID())
	d.programs[id] = p
	return id, nil
}

// DeleteProgram implements [viewer.Device].
func (d *Device) DeleteProgram(id viewer.Program) {
	if p, ok := d.programs[id]; ok {
		p.prog.Delete()
		delete(d.programs, id)
	}
}

// uniform returns the cached location of a uniform, -1 when the program lacks it.
func (p *program) uniform(name string) int32 {
	loc, ok := p.uniforms[name]
	if !ok {
		var err error
		loc, err = p.prog.UniformLocation(name + "\x00")
		if err != nil {
			loc = -1
		}
		p.uniforms[name] = loc
	}
	return loc
}

type glFormat struct {
	internal int32
	format   uint32
	xtype    uint32
	filter   int32
}

func formatOf(f viewer.TextureFormat) (glFormat, error) {
	switch f {
	case viewer.FormatR8:
		return glFormat{gl.R8, gl.RED, gl.UNSIGNED_BYTE, gl.NEAREST}, nil
	case viewer.FormatR8SNorm:
		return glFormat{gl.R8_SNORM, gl.RED, gl.BYTE, gl.NEAREST}, nil
	case viewer.FormatR16:
		return glFormat{gl.R16, gl.RED, gl.UNSIGNED_SHORT, gl.NEAREST}, nil
	case viewer.FormatR16SNorm:
		return glFormat{gl.R16_SNORM, gl.RED, gl.SHORT, gl.NEAREST}, nil
	case viewer.FormatR32F:
		return glFormat{gl.R32F, gl.RED, gl.FLOAT, gl.NEAREST}, nil
	case viewer.FormatRGB8:
		return glFormat{gl.RGB8, gl.RGB, gl.UNSIGNED_BYTE, gl.LINEAR}, nil
	}
	return glFormat{}, fmt.Errorf("unsupported texture format %v", f)
}

// CreateTexture implements [viewer.Device].
func (d *Device) CreateTexture(f viewer.TextureFormat, width, height int) (viewer.Texture, error) {
	gf, err := formatOf(f)
	if err != nil {
		return 0, err
	}
	var tex uint32
	gl.GenTextures(1, &tex)
	if tex == 0 {
		return 0, glErrOrMessage("generating texture got zero id")
	}
	gl.BindTexture(gl.TEXTURE_2D, tex)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gf.filter)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gf.filter)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gf.internal, int32(width), int32(height), 0, gf.format, gf.xtype, nil)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	if err := glgl.Err(); err != nil {
		gl.DeleteTextures(1, &tex)
		return 0, fmt.Errorf("allocating %dx%d %v texture: %w", width, height, f, err)
	}
	return viewer.Texture(tex), nil
}

// UploadTexture implements [viewer.Device]. Data is staged through a pixel
// unpack buffer that grows to the largest upload seen.
func (d *Device) UploadTexture(t viewer.Texture, f viewer.TextureFormat, width, height int, data []byte) error {
	gf, err := formatOf(f)
	if err != nil {
		return err
	}
	size := width * height * f.PixelSize()
	if len(data) < size {
		return fmt.Errorf("texture data has %d bytes, need %d", len(data), size)
	} else if size == 0 {
		return errors.New("empty texture upload")
	}
	if d.pbo == 0 {
		gl.GenBuffers(1, &d.pbo)
		if d.pbo == 0 {
			return glErrOrMessage("generating pixel unpack buffer got zero id")
		}
	}
	gl.BindBuffer(gl.PIXEL_UNPACK_BUFFER, d.pbo)
	defer gl.BindBuffer(gl.PIXEL_UNPACK_BUFFER, 0)
	if size > d.pboSize {
		gl.BufferData(gl.PIXEL_UNPACK_BUFFER, size, nil, gl.STREAM_DRAW)
		d.pboSize = size
	}
	ptr := gl.MapBufferRange(gl.PIXEL_UNPACK_BUFFER, 0, size, gl.MAP_WRITE_BIT|gl.MAP_INVALIDATE_BUFFER_BIT)
	if ptr == nil {
		return glErrOrMessage("failed to map pixel unpack buffer")
	}
	copy(unsafe.Slice((*byte)(ptr), size), data[:size])
	if !gl.UnmapBuffer(gl.PIXEL_UNPACK_BUFFER) {
		return glErrOrMessage("pixel unpack buffer contents lost")
	}
	gl.BindTexture(gl.TEXTURE_2D, uint32(t))
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.TexSubImage2D(gl.TEXTURE_2D, 0, 0, 0, int32(width), int32(height), gf.format, gf.xtype, gl.PtrOffset(0))
	gl.BindTexture(gl.TEXTURE_2D, 0)
	return glgl.Err()
}

// DeleteTexture implements [viewer.Device].
func (d *Device) DeleteTexture(t viewer.Texture) {
	tex := uint32(t)
	gl.DeleteTextures(1, &tex)
}

// CreateQuad implements [viewer.Device].
func (d *Device) CreateQuad() (viewer.Buffer, error) {
	vertices := []float32{
		-1.0, -1.0,
		1.0, -1.0,
		-1.0, 1.0,
		-1.0, 1.0,
		1.0, -1.0,
		1.0, 1.0,
	}
	var vbo uint32
	gl.GenBuffers(1, &vbo)
	if vbo == 0 {
		return 0, glErrOrMessage("generating quad buffer got zero id")
	}
	gl.BindBuffer(gl.ARRAY_BUFFER, vbo)
	gl.BufferData(gl.ARRAY_BUFFER, 4*len(vertices), gl.Ptr(vertices), gl.STATIC_DRAW)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	return viewer.Buffer(vbo), glgl.Err()
}

// DeleteBuffer implements [viewer.Device].
func (d *Device) DeleteBuffer(b viewer.Buffer) {
	buf := uint32(b)
	gl.DeleteBuffers(1, &buf)
}

// CreateVertexArray implements [viewer.Device]. Vertex arrays are not shared
// between contexts so one is created per window.
func (d *Device) CreateVertexArray(quad viewer.Buffer, id viewer.Program) (viewer.VertexArray, error) {
	p, ok := d.programs[id]
	if !ok {
		return 0, errors.New("vertex array for unknown program")
	}
	var vao uint32
	gl.GenVertexArrays(1, &vao)
	if vao == 0 {
		return 0, glErrOrMessage("generating vertex array got zero id")
	}
	gl.BindVertexArray(vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, uint32(quad))
	gl.EnableVertexAttribArray(p.posAttrib)
	gl.VertexAttribPointer(p.posAttrib, 2, gl.FLOAT, false, 0, gl.PtrOffset(0))
	gl.BindVertexArray(0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	return viewer.VertexArray(vao), glgl.Err()
}

// DeleteVertexArray implements [viewer.Device].
func (d *Device) DeleteVertexArray(va viewer.VertexArray) {
	id := uint32(va)
	gl.DeleteVertexArrays(1, &id)
}

// Clear implements [viewer.Device]. Only the viewport region is cleared.
func (d *Device) Clear(vp glm.Viewport, r, g, b, a float32) {
	gl.Viewport(int32(vp.X), int32(vp.Y), int32(vp.W), int32(vp.H))
	gl.Enable(gl.SCISSOR_TEST)
	gl.Scissor(int32(vp.X), int32(vp.Y), int32(vp.W), int32(vp.H))
	gl.ClearColor(r, g, b, a)
	gl.Clear(gl.COLOR_BUFFER_BIT)
	gl.Disable(gl.SCISSOR_TEST)
}

// Draw implements [viewer.Device].
func (d *Device) Draw(dc *viewer.DrawCall) error {
	p, ok := d.programs[dc.Program]
	if !ok {
		return errors.New("draw with unknown program")
	}
	vp := dc.Viewport
	gl.Viewport(int32(vp.X), int32(vp.Y), int32(vp.W), int32(vp.H))
	p.prog.Bind()
	defer p.prog.Unbind()

	u := &dc.Uniforms
	gl.UniformMatrix4fv(p.uniform("uMVP"), 1, false, &u.MVP[0])
	gl.Uniform1i(p.uniform("uNumChannels"), u.NumChannels)
	gl.Uniform1i(p.uniform("uComposite"), boolInt(u.Composite))
	gl.Uniform1i(p.uniform("uColorMap"), boolInt(u.ColorMap))
	gl.Uniform1i(p.uniform("uSRGB"), boolInt(u.SRGB))
	gl.Uniform3fv(p.uniform("uValueScale"), 1, &u.ValueScale[0])
	gl.Uniform3fv(p.uniform("uRangeMin"), 1, &u.RangeMin[0])
	gl.Uniform3fv(p.uniform("uRangeMax"), 1, &u.RangeMax[0])
	gl.Uniform3fv(p.uniform("uGamma"), 1, &u.Gamma[0])
	gl.Uniform3fv(p.uniform("uQuantization"), 1, &u.Quantization[0])

	samplers := [4]string{"uChannel0", "uChannel1", "uChannel2", "uGradient"}
	textures := [4]viewer.Texture{dc.Channels[0], dc.Channels[1], dc.Channels[2], dc.Gradient}
	for unit, tex := range textures {
		gl.ActiveTexture(gl.TEXTURE0 + uint32(unit))
		gl.BindTexture(gl.TEXTURE_2D, uint32(tex))
		gl.Uniform1i(p.uniform(samplers[unit]), int32(unit))
	}
	gl.BindVertexArray(uint32(dc.VertexArray))
	gl.DrawArrays(gl.TRIANGLES, 0, 6)
	gl.BindVertexArray(0)
	for unit := range textures {
		gl.ActiveTexture(gl.TEXTURE0 + uint32(unit))
		gl.BindTexture(gl.TEXTURE_2D, 0)
	}
	gl.ActiveTexture(gl.TEXTURE0)
	if err := glgl.Err(); err != nil {
		return fmt.Errorf("drawing array: %w", err)
	}
	return nil
}

// ReadPixels implements [viewer.Device]. Rows are flipped so the image origin is top left.
func (d *Device) ReadPixels(vp glm.Viewport) (*image.RGBA, error) {
	if vp.Empty() {
		return nil, errors.New("empty viewport")
	}
	img := image.NewRGBA(image.Rect(0, 0, vp.W, vp.H))
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(int32(vp.X), int32(vp.Y), int32(vp.W), int32(vp.H), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(img.Pix))
	if err := glgl.Err(); err != nil {
		return nil, fmt.Errorf("reading pixels: %w", err)
	}
	stride := img.Stride
	row := make([]byte, stride)
	for y := 0; y < vp.H/2; y++ {
		top := img.Pix[y*stride : (y+1)*stride]
		bot := img.Pix[(vp.H-1-y)*stride : (vp.H-y)*stride]
		copy(row, top)
		copy(top, bot)
		copy(bot, row)
	}
	return img, nil
}

// Err implements [viewer.Device].
func (d *Device) Err() error { return glgl.Err() }

// Delete releases the staging buffer. Programs still alive are deleted too.
func (d *Device) Delete() {
	for id := range d.programs {
		d.DeleteProgram(id)
	}
	if d.pbo != 0 {
		gl.DeleteBuffers(1, &d.pbo)
		d.pbo, d.pboSize = 0, 0
	}
	render.Logger().Debug("GL device deleted")
}

func boolInt(b bool) int32 {
	if b {
		return 1
	}
	return 0
}

func glErrOrMessage(defaultMsg string) (err error) {
	err = glgl.Err()
	if err == nil {
		err = errors.New(defaultMsg)
	} else {
		err = fmt.Errorf("%s: %w", defaultMsg, err)
	}
	return err
}
