package viewer

import (
	"image"

	"github.com/soypat/arrview/glm"
	"github.com/soypat/arrview/navigator"
	"github.com/soypat/arrview/render"
	"github.com/soypat/geometry/ms3"
)

// Surface is the platform window a [Window] draws to.
type Surface interface {
	// MakeCurrent binds the surface and its context to the calling thread.
	MakeCurrent()
	SwapBuffers()
}

// Navigation selects how pointer input moves the view.
type Navigation uint8

const (
	// Navigation2D pans and zooms the array in the image plane.
	Navigation2D Navigation = iota
	// Navigation3D orbits, shifts and dollies a camera around the array plane.
	Navigation3D
)

// Button is a pointer button.
type Button uint8

const (
	ButtonLeft Button = iota
	ButtonRight
	ButtonMiddle
)

// Window displays the array drawn by its context's [Renderer] and translates
// pointer events into navigation. It implements [render.Window].
type Window struct {
	ctx     *render.Context
	surface Surface
	nav     *navigator.Navigator
	mode    Navigation
	pressed bool
	button  Button
	needs   bool
	// aspect is the content aspect the 3D scene was last fitted to.
	aspect float32
}

var _ render.Window = (*Window)(nil)

// NewWindow returns a window on ctx drawing to s. The context's renderer must be a [*Renderer].
func NewWindow(ctx *render.Context, s Surface, width, height int) *Window {
	w := &Window{ctx: ctx, surface: s, nav: navigator.New(), needs: true}
	w.Resize(width, height)
	return w
}

func (w *Window) Context() *render.Context { return w.ctx }
func (w *Window) MakeCurrent()             { w.surface.MakeCurrent() }
func (w *Window) SwapBuffers()             { w.surface.SwapBuffers() }
func (w *Window) NeedsRendering() bool     { return w.needs }

// Navigator returns the window's navigator.
func (w *Window) Navigator() *navigator.Navigator { return w.nav }

// Viewport returns the current viewport.
func (w *Window) Viewport() glm.Viewport { return w.nav.Viewport() }

// Navigation returns the current navigation mode.
func (w *Window) Navigation() Navigation { return w.mode }

// SetNavigation switches between 2D and 3D navigation and resets the view.
func (w *Window) SetNavigation(m Navigation) {
	w.mode = m
	w.aspect = 0
	w.nav.Reset()
	w.needs = true
}

// ResetView restores the default view.
func (w *Window) ResetView() {
	w.nav.Reset()
	w.needs = true
}

// RequestRender marks the window for redraw.
func (w *Window) RequestRender() { w.needs = true }

func (w *Window) renderer() *Renderer { return w.ctx.Renderer().(*Renderer) }

// Render implements [render.Window].
func (w *Window) Render() {
	r := w.renderer()
	w.needs = false
	r.RenderFrame(w, Frame{Viewport: w.nav.Viewport(), MVP: w.mvp(r.ContentAspect())})
}

// mvp returns the clip space transform of the [-1,1] quad.
func (w *Window) mvp(aspect float32) glm.Mat4 {
	if w.mode == Navigation2D {
		return w.nav.Transform2D(aspect)
	}
	half := contentHalfSize(aspect)
	if w.aspect != aspect {
		w.aspect = aspect
		w.nav.SetScene(navigator.SceneFromBox(ms3.Box{
			Min: ms3.Vec{X: -half.X, Y: -half.Y},
			Max: ms3.Vec{X: half.X, Y: half.Y},
		}))
	}
	vp := w.nav.Viewport()
	model := glm.Scaling(glm.Vec3{X: half.X, Y: half.Y, Z: 1})
	proj := w.nav.Frustum(vp.Aspect()).Mat4()
	return proj.Mul(w.nav.ViewMatrix()).Mul(model)
}

// contentHalfSize returns the half extents of the array plane, height one.
func contentHalfSize(aspect float32) glm.Vec2 {
	return glm.Vec2{X: aspect, Y: 1}
}

// Resize sets the viewport to the new framebuffer size.
func (w *Window) Resize(width, height int) {
	w.nav.SetViewport(glm.Viewport{W: width, H: height})
	w.needs = true
}

// Press starts a navigation interaction at pixel position p.
func (w *Window) Press(b Button, p image.Point) {
	w.pressed, w.button = true, b
	switch {
	case w.mode == Navigation2D && b == ButtonLeft:
		w.nav.StartShift2D(p)
	case w.mode == Navigation2D:
		w.nav.StartZoom2D(p)
	case b == ButtonLeft:
		w.nav.StartRot(p)
	case b == ButtonRight:
		w.nav.StartShift(p)
	default:
		w.nav.StartZoom(p)
	}
}

// Move continues the current interaction. Moves without a pressed button are ignored.
func (w *Window) Move(p image.Point) {
	if !w.pressed {
		return
	}
	switch w.nav.Mode() {
	case navigator.Rot:
		w.nav.Rot(p)
	case navigator.Shift:
		w.nav.Shift(p)
	case navigator.Zoom:
		w.nav.Zoom(p)
	case navigator.Shift2D:
		w.nav.Shift2D(p)
	case navigator.Zoom2D:
		w.nav.Zoom2D(p)
	default:
		return
	}
	w.needs = true
}

// Release ends the interaction started with button b.
func (w *Window) Release(b Button) {
	if w.pressed && w.button == b {
		w.pressed = false
	}
}

// Wheel zooms by a wheel rotation angle in radians.
func (w *Window) Wheel(angle float32) {
	if w.mode == Navigation2D {
		w.nav.ZoomWheel2D(angle)
	} else {
		w.nav.ZoomWheel(angle)
	}
	w.needs = true
}

// Screenshot draws the window into its back buffer and reads it back. Pending
// data uploads are realized first. Other windows still redraw on the next frame.
func (w *Window) Screenshot() (*image.RGBA, error) {
	r := w.renderer()
	pending := r.needsRendering
	w.MakeCurrent()
	r.PreRenderShared()
	w.Render()
	r.needsRendering = pending
	return r.dev.ReadPixels(w.nav.Viewport())
}
