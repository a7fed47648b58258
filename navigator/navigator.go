// Package navigator converts pointer and wheel input into camera transforms.
//
// A [Navigator] is a small state machine: a StartX call switches it into mode X and
// records the pointer position, subsequent X calls apply incremental updates while the
// navigator remains in that mode. There is no end call; callers simply stop calling
// the continuation once the pointer is released. Continuation calls made while in a
// different mode are ignored, which tolerates stray events after a mode switch.
package navigator

import (
	"image"

	math "github.com/chewxy/math32"
	"github.com/soypat/arrview/glm"
	"github.com/soypat/geometry/ms3"
)

// Mode is the interaction mode of a [Navigator].
type Mode uint8

const (
	Inactive Mode = iota
	Rot
	Shift
	Zoom
	Shift2D
	Zoom2D
)

func (m Mode) String() string {
	switch m {
	case Inactive:
		return "inactive"
	case Rot:
		return "rot"
	case Shift:
		return "shift"
	case Zoom:
		return "zoom"
	case Shift2D:
		return "shift2d"
	case Zoom2D:
		return "zoom2d"
	}
	return "unknown"
}

const (
	// DefaultFOV is the default vertical field of view in radians.
	DefaultFOV = 50 * math.Pi / 180
	// Cross products of ballmap points shorter than this are not turned into rotations.
	minRotationAxis = 0.001
	// Pixel to world factors are divided by this so a unit radius scene moves comfortably.
	speedDivisor = 20
	// Degrees of wheel rotation that move the camera across the whole gap to the scene surface.
	wheelDegreesPerGap = 150
	// Largest fraction of the gap to the scene surface a single forward wheel step covers.
	maxWheelGapStep = 0.5
	// Degrees of wheel rotation per 10% 2D scale change.
	wheelDegreesPerStep2D = 15
	// Relative 2D scale change per pixel of vertical drag.
	zoom2DPerPixel = 0.01

	MinScale2D = 1e-5
	MaxScale2D = 1e5
	// maxRelScaleStep limits a single 2D zoom step to a ±50% relative scale change.
	maxRelScaleStep = 0.5
)

// Scene is the object being looked at, described by a bounding sphere and a bias
// rotation that maps the scene's preferred viewing direction onto the canonical frame
// where the camera looks down -Z with +Y up.
type Scene struct {
	Center glm.Vec3
	Radius float32
	Bias   glm.Quat
}

// DefaultScene is a unit sphere at the origin without bias.
func DefaultScene() Scene {
	return Scene{Radius: 1, Bias: glm.QuatIdentity()}
}

// SceneFromBox returns the scene bounding the box bb.
func SceneFromBox(bb ms3.Box) Scene {
	c := bb.Center()
	r := bb.Diagonal() / 2
	if r <= 0 {
		r = 1
	}
	return Scene{Center: glm.Vec3{X: c.X, Y: c.Y, Z: c.Z}, Radius: r, Bias: glm.QuatIdentity()}
}

// BiasFromEyeUp returns the bias rotation that maps a default eye position (relative to the
// scene center) onto the canonical +Z axis and the up vector onto +Y.
func BiasFromEyeUp(eye, up glm.Vec3) glm.Quat {
	toZ := glm.QuatFromTwoVectors(eye, glm.Vec3{Z: 1})
	u := toZ.Rotate(up)
	u.Z = 0
	if u.Length() < minRotationAxis {
		return toZ
	}
	roll := glm.QuatFromTwoVectors(u, glm.Vec3{Y: 1})
	return roll.Mul(toZ)
}

// Navigator holds the camera state for one view. The zero value is not usable; call [New].
type Navigator struct {
	viewport glm.Viewport
	scene    Scene
	fovy     float32

	// 3D state. pos is relative to the scene center in the biased frame.
	pos glm.Vec3
	rot glm.Quat
	// 2D state.
	trans2D glm.Vec2
	scale2D float32

	mode Mode
	// Only the fields belonging to the active mode are meaningful.
	lastPos  image.Point
	lastBall glm.Vec3
	lastDist float32
}

// New returns a navigator looking at the default scene.
func New() *Navigator {
	n := &Navigator{scene: DefaultScene(), fovy: DefaultFOV}
	n.Reset()
	return n
}

// Reset restores the default view of the current scene and sets mode to [Inactive].
func (n *Navigator) Reset() {
	n.pos = glm.Vec3{Z: n.defaultDistance()}
	n.rot = glm.QuatIdentity()
	n.trans2D = glm.Vec2{}
	n.scale2D = 1
	n.mode = Inactive
}

// defaultDistance is the distance at which the scene's bounding sphere fits the field of view.
func (n *Navigator) defaultDistance() float32 {
	return n.scene.Radius / math.Sin(n.fovy/2)
}

// SetScene replaces the scene and resets the view.
func (n *Navigator) SetScene(s Scene) {
	if s.Radius <= 0 {
		s.Radius = 1
	}
	if s.Bias == (glm.Quat{}) {
		s.Bias = glm.QuatIdentity()
	}
	n.scene = s
	n.Reset()
}

// SetFOV sets the vertical field of view in radians.
func (n *Navigator) SetFOV(fovy float32) { n.fovy = fovy }

// SetViewport stores the viewport pointer positions are relative to.
func (n *Navigator) SetViewport(vp glm.Viewport) { n.viewport = vp }

func (n *Navigator) Viewport() glm.Viewport  { return n.viewport }
func (n *Navigator) Scene() Scene            { return n.scene }
func (n *Navigator) Mode() Mode              { return n.mode }
func (n *Navigator) Position() glm.Vec3      { return n.pos }
func (n *Navigator) Rotation() glm.Quat      { return n.rot }
func (n *Navigator) Translation2D() glm.Vec2 { return n.trans2D }
func (n *Navigator) Scale2D() float32        { return n.scale2D }

// Ballmap projects pointer position p onto the unit hemisphere facing the viewer.
// Positions outside the viewport's inscribed circle map to the equator (z=0).
func (n *Navigator) Ballmap(p image.Point) glm.Vec3 {
	vp := n.viewport
	if vp.Empty() {
		return glm.Vec3{Z: 1}
	}
	v := glm.Vec2{
		X: 2*float32(p.X-vp.X)/float32(vp.W) - 1,
		Y: 1 - 2*float32(p.Y-vp.Y)/float32(vp.H),
	}
	l := v.LengthSq()
	if l > 1 {
		return v.Normalize().Vec3(0)
	}
	return v.Vec3(math.Sqrt(1 - l))
}

// StartRot begins an arcball rotation at p.
func (n *Navigator) StartRot(p image.Point) {
	n.mode = Rot
	n.lastPos = p
	n.lastBall = n.Ballmap(p)
}

// Rot continues an arcball rotation. The camera orbits the scene center; rotation speed
// grows with the distance from the scene so that close views give finer control.
func (n *Navigator) Rot(p image.Point) {
	if n.mode != Rot || !n.viewport.Contains(p.X, p.Y) {
		return
	}
	ball := n.Ballmap(p)
	axis := n.lastBall.Cross(ball)
	if axis.Length() < minRotationAxis {
		// Too close to parallel for a stable axis. Keep the old reference point so
		// slow drags still accumulate into a rotation.
		return
	}
	r := n.scene.Radius
	angle := -math.Acos(glm.Clamp1(n.lastBall.Dot(ball), -1, 1)) * (n.pos.Length() - r) / r
	q := glm.QuatFromAxisAngle(n.rot.Rotate(axis.Normalize()), angle)
	n.rot = q.Mul(n.rot).Normalize()
	n.pos = q.Rotate(n.pos)
	n.lastPos = p
	n.lastBall = ball
}

// StartShift begins moving the camera parallel to the view plane.
func (n *Navigator) StartShift(p image.Point) {
	n.mode = Shift
	n.lastPos = p
	n.lastDist = n.pos.Length()
}

// Shift moves the camera along its local left and up axes.
func (n *Navigator) Shift(p image.Point) {
	if n.mode != Shift {
		return
	}
	sx, sy := n.pixelScale()
	dx := float32(p.X-n.lastPos.X) * sx
	dy := float32(p.Y-n.lastPos.Y) * sy
	left := n.rot.Rotate(glm.Vec3{X: -1})
	up := n.rot.Rotate(glm.Vec3{Y: 1})
	n.pos = n.pos.Add(left.Scale(dx)).Add(up.Scale(dy))
	n.lastPos = p
}

// StartZoom begins moving the camera along its viewing direction.
func (n *Navigator) StartZoom(p image.Point) {
	n.mode = Zoom
	n.lastPos = p
	n.lastDist = n.pos.Length()
}

// Zoom moves the camera forward when dragging up and backward when dragging down.
func (n *Navigator) Zoom(p image.Point) {
	if n.mode != Zoom {
		return
	}
	_, sy := n.pixelScale()
	dz := -float32(p.Y-n.lastPos.Y) * sy
	n.pos = n.pos.Add(n.forward().Scale(dz))
	n.lastPos = p
}

// ZoomWheel moves the camera along its viewing direction by wheel rotation angle in
// radians. Positive angles move toward the scene. The change per degree is proportional
// to the gap between camera and scene surface. A forward step covers at most
// half the gap so the camera approaches the surface asymptotically.
func (n *Navigator) ZoomWheel(angle float32) {
	degrees := glm.Degrees1(angle)
	r := n.scene.Radius
	gap := math.Max(n.pos.Length()-r, 0)
	dz := degrees * (0.1*r + gap) / wheelDegreesPerGap
	dz = math.Min(dz, maxWheelGapStep*gap)
	n.pos = n.pos.Add(n.forward().Scale(dz))
}

// StartShift2D begins panning the 2D view.
func (n *Navigator) StartShift2D(p image.Point) {
	n.mode = Shift2D
	n.lastPos = p
}

// Shift2D pans the 2D view so the content follows the pointer.
func (n *Navigator) Shift2D(p image.Point) {
	if n.mode != Shift2D || n.viewport.Empty() {
		return
	}
	d := glm.Vec2{
		X: 2 * float32(p.X-n.lastPos.X) / float32(n.viewport.W),
		Y: -2 * float32(p.Y-n.lastPos.Y) / float32(n.viewport.H),
	}
	n.trans2D = n.trans2D.Add(d)
	n.lastPos = p
}

// StartZoom2D begins scaling the 2D view with vertical pointer motion.
func (n *Navigator) StartZoom2D(p image.Point) {
	n.mode = Zoom2D
	n.lastPos = p
}

// Zoom2D scales the 2D view; dragging up enlarges.
func (n *Navigator) Zoom2D(p image.Point) {
	if n.mode != Zoom2D {
		return
	}
	n.scaleBy(1 - float32(p.Y-n.lastPos.Y)*zoom2DPerPixel)
	n.lastPos = p
}

// ZoomWheel2D scales the 2D view by wheel rotation angle in radians. Positive angles enlarge.
func (n *Navigator) ZoomWheel2D(angle float32) {
	n.scaleBy(1 + 0.1*glm.Degrees1(angle)/wheelDegreesPerStep2D)
}

// scaleBy multiplies the 2D scale by factor about the viewport center. The factor is
// limited to a ±50% change and the result to [MinScale2D, MaxScale2D].
func (n *Navigator) scaleBy(factor float32) {
	factor = glm.Clamp1(factor, 1-maxRelScaleStep, 1+maxRelScaleStep)
	newScale := glm.Clamp1(n.scale2D*factor, MinScale2D, MaxScale2D)
	actual := newScale / n.scale2D
	n.scale2D = newScale
	n.trans2D = n.trans2D.Scale(actual)
}

// pixelScale returns world units per pixel along x and y for shift and zoom.
func (n *Navigator) pixelScale() (sx, sy float32) {
	w := float32(max(n.viewport.W, 1))
	h := float32(max(n.viewport.H, 1))
	return (0.1 + n.lastDist/w) / speedDivisor, (0.1 + n.lastDist/h) / speedDivisor
}

func (n *Navigator) forward() glm.Vec3 {
	return n.rot.Rotate(glm.Vec3{Z: -1})
}

// Frustum returns the perspective frustum for the current camera distance. The near and
// far planes tightly enclose the scene's bounding sphere.
func (n *Navigator) Frustum(aspect float32) glm.Frustum {
	r := n.scene.Radius
	d := n.pos.Length()
	near := math.Max(d-r, 0.01*r)
	far := d + r
	return glm.Perspective(n.fovy, aspect, near, far)
}

// ViewMatrix returns the world to eye transform.
func (n *Navigator) ViewMatrix() glm.Mat4 {
	camera := n.rot.Inverse().Mat4().Mul(glm.Translation(n.pos.Neg()))
	scene := n.scene.Bias.Mat4().Mul(glm.Translation(n.scene.Center.Neg()))
	return camera.Mul(scene)
}

// Transform2D returns the clip space transform for the 2D view of content whose
// aspect ratio (width/height) is contentAspect, fitted inside the viewport.
func (n *Navigator) Transform2D(contentAspect float32) glm.Mat4 {
	fit := glm.Vec3{X: 1, Y: 1, Z: 1}
	vpAspect := n.viewport.Aspect()
	if contentAspect > vpAspect {
		fit.Y = vpAspect / contentAspect
	} else {
		fit.X = contentAspect / vpAspect
	}
	s := n.scale2D
	return glm.Translation(n.trans2D.Vec3(0)).Mul(glm.Scaling(glm.Vec3{X: s, Y: s, Z: 1})).Mul(glm.Scaling(fit))
}
