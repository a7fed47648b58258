package viewer

import (
	"image"

	"github.com/soypat/arrview/glm"
)

// Handles to GPU objects. The zero value means absent.
type (
	Program     uint32
	Texture     uint32
	Buffer      uint32
	VertexArray uint32
)

// Device is the GPU API used by [Renderer]. Programs, textures and buffers are
// shared between all windows of a context; vertex arrays are local to the
// window current when they are created.
type Device interface {
	// CompileProgram compiles and links a program. Failures return the driver log.
	CompileProgram(vertex, fragment string) (Program, error)
	DeleteProgram(p Program)

	// CreateTexture allocates a 2D texture of the given format and size.
	CreateTexture(format TextureFormat, width, height int) (Texture, error)
	// UploadTexture replaces the whole texture contents with tightly packed
	// data in the texture's format.
	UploadTexture(t Texture, format TextureFormat, width, height int, data []byte) error
	DeleteTexture(t Texture)

	// CreateQuad creates a vertex buffer holding a [-1,1] square as two triangles.
	CreateQuad() (Buffer, error)
	DeleteBuffer(b Buffer)
	// CreateVertexArray binds the quad buffer to the position attribute of p.
	CreateVertexArray(quad Buffer, p Program) (VertexArray, error)
	DeleteVertexArray(va VertexArray)

	Clear(vp glm.Viewport, r, g, b, a float32)
	Draw(dc *DrawCall) error
	// ReadPixels reads back the current framebuffer region vp.
	ReadPixels(vp glm.Viewport) (*image.RGBA, error)
	// Err returns and clears pending GPU errors.
	Err() error
}

// DrawCall draws the quad with the array shader.
type DrawCall struct {
	Program     Program
	VertexArray VertexArray
	Viewport    glm.Viewport
	// Channels are the component textures sampled; unused entries are zero.
	Channels [3]Texture
	// Gradient is the lookup texture used when ColorMap is set.
	Gradient Texture
	Uniforms Uniforms
}

// Uniforms are the shader parameters of a [DrawCall].
type Uniforms struct {
	MVP glm.Mat4
	// Composite selects color composite display of all three channels
	// instead of a single channel shown as gray or through the gradient.
	Composite bool
	// NumChannels is the number of valid channels, 1 or 3.
	NumChannels int32
	// ValueScale converts normalized texture samples back to data values.
	ValueScale [3]float32
	RangeMin   [3]float32
	RangeMax   [3]float32
	// Gamma of each channel, zero when disabled.
	Gamma [3]float32
	// Quantization levels of each channel, zero when disabled.
	Quantization [3]float32
	ColorMap     bool
	// SRGB marks composite data already in sRGB, skipping the linear to sRGB conversion.
	SRGB bool
}
