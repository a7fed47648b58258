// Package viewer implements the array renderer and the windows that display it.
//
// A [Renderer] is created per shared context through [NewFactory] and owns
// every GPU object of that context. [Window] routes input events to a
// navigator and draws the renderer's current state.
package viewer

import (
	"errors"
	"fmt"
	"time"

	"github.com/soypat/arrview/glm"
	"github.com/soypat/arrview/ndarray"
	"github.com/soypat/arrview/render"
	"github.com/soypat/arrview/view"
)

// State is the shared lifecycle state of a [Renderer].
type State uint8

const (
	StateUninitialized State = iota
	StateSharedReady
)

func (s State) String() string {
	if s == StateSharedReady {
		return "shared-ready"
	}
	return "uninitialized"
}

var errNoProgram = errors.New("array shader program unavailable")

// Frame is the per window input to [Renderer.RenderFrame].
type Frame struct {
	Viewport glm.Viewport
	MVP      glm.Mat4
}

// Renderer draws an array through one shared context. It implements
// [render.Renderer]. All methods run on the context's thread.
type Renderer struct {
	dev   Device
	state State
	now   func() time.Time

	prog     Program
	quad     Buffer
	vaos     map[render.Window]VertexArray
	textures []Texture
	texFmt   TextureFormat
	texW     int
	texH     int
	lut      []Texture
	staging  []byte

	arr    *ndarray.Array
	stats  []ndarray.Statistics
	params view.Params

	// dataDirty and paramsDirty track changes since the last snapshot.
	dataDirty   bool
	paramsDirty bool
	// reupload and viewChanged track changes not yet realized on the GPU.
	reupload       bool
	viewChanged    bool
	needsRendering bool
	lastUpdate     time.Time
}

// NewRenderer returns an uninitialized renderer drawing through dev.
func NewRenderer(dev Device) *Renderer {
	return &Renderer{dev: dev, now: time.Now, vaos: make(map[render.Window]VertexArray)}
}

// NewFactory returns a factory creating renderers on the device returned by newDevice.
func NewFactory(newDevice func(ctx *render.Context) Device) render.RendererFactory {
	return render.RendererFactoryFunc(func(ctx *render.Context) render.Renderer {
		return NewRenderer(newDevice(ctx))
	})
}

// State returns the shared lifecycle state.
func (r *Renderer) State() State { return r.state }

// WindowReady reports whether window local resources exist for w.
func (r *Renderer) WindowReady(w render.Window) bool {
	_, ok := r.vaos[w]
	return ok
}

// SetData replaces the displayed array and its statistics. The renderer keeps
// references to both; callers must not modify them afterwards.
func (r *Renderer) SetData(a *ndarray.Array, stats []ndarray.Statistics) {
	r.arr = a
	r.stats = stats
	r.dataDirty = true
	r.reupload = true
	r.needsRendering = true
	r.lastUpdate = r.now()
}

// SetViewParams replaces the view parameters with a copy of p.
func (r *Renderer) SetViewParams(p view.Params) {
	r.params = p.Clone()
	r.paramsDirty = true
	r.viewChanged = true
	r.needsRendering = true
	r.lastUpdate = r.now()
}

// Data returns the current array and statistics.
func (r *Renderer) Data() (*ndarray.Array, []ndarray.Statistics) { return r.arr, r.stats }

// ViewParams returns a copy of the current view parameters.
func (r *Renderer) ViewParams() view.Params { return r.params.Clone() }

// LastUpdate returns when data or view parameters last changed.
func (r *Renderer) LastUpdate() time.Time { return r.lastUpdate }

// ContentAspect is the displayed width over height of the array, or 1 without data.
func (r *Renderer) ContentAspect() float32 {
	g := r.params.Global
	if r.params.Mode != view.Mode2D || !(g.ArrayAspect > 0) || !(g.SampleAspect > 0) {
		return 1
	}
	return g.ArrayAspect * g.SampleAspect
}

// NeedsRendering implements [render.Renderer].
func (r *Renderer) NeedsRendering() bool { return r.needsRendering }

// InitShared compiles the array shader and creates the quad. A shader failure is
// fatal to the context.
func (r *Renderer) InitShared() error {
	if r.state == StateSharedReady {
		return nil
	}
	prog, err := r.dev.CompileProgram(VertexShader, FragmentShader)
	if err != nil || prog == 0 {
		render.Logger().Error("compiling array shader", "err", err)
		return fmt.Errorf("%w: %v", errNoProgram, err)
	}
	quad, err := r.dev.CreateQuad()
	if err != nil {
		r.dev.DeleteProgram(prog)
		return fmt.Errorf("creating quad: %w", err)
	}
	r.prog, r.quad = prog, quad
	r.state = StateSharedReady
	// Fresh GPU state: realize whatever data and parameters are cached.
	r.reupload = r.arr != nil
	r.viewChanged = true
	r.needsRendering = true
	render.Logger().Info("renderer shared state ready")
	return nil
}

// ExitShared deletes every shared GPU object.
func (r *Renderer) ExitShared() {
	if r.state != StateSharedReady {
		return
	}
	r.deleteTextures()
	r.deleteGradients()
	r.dev.DeleteBuffer(r.quad)
	r.dev.DeleteProgram(r.prog)
	r.quad, r.prog = 0, 0
	r.state = StateUninitialized
}

// InitWindow creates the vertex array of w.
func (r *Renderer) InitWindow(w render.Window) error {
	if r.state != StateSharedReady {
		return errors.New("window initialized before shared state")
	}
	va, err := r.dev.CreateVertexArray(r.quad, r.prog)
	if err != nil {
		return fmt.Errorf("creating vertex array: %w", err)
	}
	r.vaos[w] = va
	return nil
}

// ExitWindow deletes the vertex array of w.
func (r *Renderer) ExitWindow(w render.Window) {
	if va, ok := r.vaos[w]; ok {
		r.dev.DeleteVertexArray(va)
		delete(r.vaos, w)
	}
}

// PreRenderShared realizes pending data uploads and gradient changes.
func (r *Renderer) PreRenderShared() {
	if r.state != StateSharedReady {
		return
	}
	if r.reupload {
		r.upload()
		r.reupload = false
	}
	if r.viewChanged {
		r.rebuildGradients()
		r.viewChanged = false
	}
}

func (r *Renderer) PostRenderShared()            {}
func (r *Renderer) PreRenderWindow(render.Window) {}

// PostRenderWindow logs GPU errors raised while drawing; rendering continues.
func (r *Renderer) PostRenderWindow(render.Window) {
	if err := r.dev.Err(); err != nil {
		render.Logger().Warn("GL error after frame", "err", err)
	}
}

// Update implements [render.Renderer]. Nothing in the array view animates.
func (r *Renderer) Update() {}

// RenderFrame draws the array into the window's viewport and clears the needs
// rendering flag. Invalid view parameters or missing textures draw nothing.
func (r *Renderer) RenderFrame(w render.Window, f Frame) {
	defer func() { r.needsRendering = false }()
	if f.Viewport.Empty() {
		return
	}
	r.dev.Clear(f.Viewport, 0, 0, 0, 1)
	va, ok := r.vaos[w]
	if !ok || r.state != StateSharedReady || !r.params.Valid() || len(r.textures) == 0 {
		return
	}
	dc, ok := r.drawCall(f)
	if !ok {
		return
	}
	dc.VertexArray = va
	if err := r.dev.Draw(&dc); err != nil {
		render.Logger().Warn("drawing array", "err", err)
	}
}

// drawCall assembles the textures and uniforms for the current view parameters.
func (r *Renderer) drawCall(f Frame) (DrawCall, bool) {
	p := &r.params
	dc := DrawCall{Program: r.prog, Viewport: f.Viewport}
	u := &dc.Uniforms
	u.MVP = f.MVP
	channels := []int{p.Global.Component}
	if p.ShowsColor() {
		u.Composite = true
		u.SRGB = p.Global.ColorSpace == view.ColorSpaceSRGB
		channels = channels[:0]
		for _, c := range p.Global.ColorComponents {
			if c >= 0 {
				channels = append(channels, c)
			}
		}
	} else if c := p.Global.Component; c < len(r.lut) {
		u.ColorMap = p.Components[c].ColorMap
		dc.Gradient = r.lut[c]
	}
	if len(channels) != 1 && len(channels) != 3 {
		return dc, false
	}
	u.NumChannels = int32(len(channels))
	for i, c := range channels {
		if c >= len(r.textures) || r.textures[c] == 0 {
			return dc, false
		}
		comp := &p.Components[c]
		dc.Channels[i] = r.textures[c]
		u.ValueScale[i] = r.texFmt.ValueScale()
		u.RangeMin[i] = comp.RangeMin
		u.RangeMax[i] = comp.RangeMax
		if comp.GammaEnabled {
			u.Gamma[i] = comp.Gamma
		}
		if comp.QuantizeEnabled {
			u.Quantization[i] = float32(comp.Quantization)
		}
	}
	if u.ColorMap && dc.Gradient == 0 {
		u.ColorMap = false
	}
	return dc, true
}

// upload recreates one texture per component and uploads the data through the
// staging buffer. Textures that fail are left absent, as are all textures of
// arrays outside [view.DefaultLimits].
func (r *Renderer) upload() {
	a := r.arr
	if a == nil {
		r.deleteTextures()
		return
	}
	if err := view.DefaultLimits.Check(a.Header); err != nil {
		render.Logger().Warn("array not uploaded", "err", err)
		r.deleteTextures()
		return
	}
	format, lossy := TextureFormatFor(a.Header.Type)
	if format == FormatInvalid {
		render.Logger().Error("no texture format for array", "type", a.Header.Type)
		r.deleteTextures()
		return
	}
	if lossy {
		render.Logger().Warn("array converted to float32 textures, precision or special values may be lost", "type", a.Header.Type)
	}
	w, h := a.Header.Dims[0], a.Header.Dims[1]
	if len(r.textures) != a.Header.Components || r.texFmt != format || r.texW != w || r.texH != h {
		r.deleteTextures()
		r.textures = make([]Texture, a.Header.Components)
		r.texFmt, r.texW, r.texH = format, w, h
	}
	for i := range r.textures {
		if r.textures[i] == 0 {
			t, err := r.dev.CreateTexture(format, w, h)
			if err != nil {
				render.Logger().Error("creating component texture", "component", i, "err", err)
				continue
			}
			r.textures[i] = t
		}
		r.staging = stageComponent(r.staging, a, i, format)
		if err := r.dev.UploadTexture(r.textures[i], format, w, h, r.staging); err != nil {
			render.Logger().Error("uploading component texture", "component", i, "err", err)
			r.dev.DeleteTexture(r.textures[i])
			r.textures[i] = 0
		}
	}
	render.Logger().Debug("uploaded array", "components", len(r.textures), "format", format, "width", w, "height", h)
}

// rebuildGradients regenerates the lookup texture of every component.
func (r *Renderer) rebuildGradients() {
	comps := r.params.Components
	if len(r.lut) > len(comps) {
		for _, t := range r.lut[len(comps):] {
			if t != 0 {
				r.dev.DeleteTexture(t)
			}
		}
		r.lut = r.lut[:len(comps)]
	}
	for len(r.lut) < len(comps) {
		r.lut = append(r.lut, 0)
	}
	for i := range comps {
		tbl := comps[i].GradientTable
		if len(tbl) != 3*view.GradientSize {
			continue
		}
		if r.lut[i] == 0 {
			t, err := r.dev.CreateTexture(FormatRGB8, view.GradientSize, 1)
			if err != nil {
				render.Logger().Error("creating gradient texture", "component", i, "err", err)
				continue
			}
			r.lut[i] = t
		}
		if err := r.dev.UploadTexture(r.lut[i], FormatRGB8, view.GradientSize, 1, tbl); err != nil {
			render.Logger().Error("uploading gradient texture", "component", i, "err", err)
			r.dev.DeleteTexture(r.lut[i])
			r.lut[i] = 0
		}
	}
}

func (r *Renderer) deleteTextures() {
	for _, t := range r.textures {
		if t != 0 {
			r.dev.DeleteTexture(t)
		}
	}
	r.textures = nil
	r.texFmt, r.texW, r.texH = FormatInvalid, 0, 0
}

func (r *Renderer) deleteGradients() {
	for _, t := range r.lut {
		if t != 0 {
			r.dev.DeleteTexture(t)
		}
	}
	r.lut = nil
}
