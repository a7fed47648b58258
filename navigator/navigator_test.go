package navigator

import (
	"image"
	"math/rand"
	"testing"

	math "github.com/chewxy/math32"
	"github.com/soypat/arrview/glm"
	"github.com/soypat/geometry/ms3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tol = 1e-4

func newTestNavigator() *Navigator {
	n := New()
	n.SetViewport(glm.Viewport{X: 0, Y: 0, W: 800, H: 600})
	return n
}

func TestBallmapCenter(t *testing.T) {
	n := newTestNavigator()
	assert.Equal(t, glm.Vec3{Z: 1}, n.Ballmap(image.Pt(400, 300)))

	n.SetViewport(glm.Viewport{X: 100, Y: 50, W: 200, H: 100})
	assert.Equal(t, glm.Vec3{Z: 1}, n.Ballmap(image.Pt(200, 100)))
}

func TestBallmapOutsideCircle(t *testing.T) {
	n := newTestNavigator()
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 500; i++ {
		p := image.Pt(rng.Intn(1600)-400, rng.Intn(1200)-300)
		v := glm.Vec2{X: float32(p.X-400) / 400, Y: float32(300-p.Y) / 300}
		b := n.Ballmap(p)
		if v.LengthSq() > 1 {
			require.Equal(t, float32(0), b.Z, "point %v outside inscribed circle", p)
			require.InDelta(t, 1, b.Length(), tol)
		} else {
			require.InDelta(t, 1, b.Length(), tol, "ballmap of %v should lie on the unit sphere", p)
			require.GreaterOrEqual(t, b.Z, float32(0))
		}
	}
	// Y is flipped: pointer at the top maps to +Y.
	assert.Greater(t, n.Ballmap(image.Pt(400, 10)).Y, float32(0))
	assert.Greater(t, n.Ballmap(image.Pt(790, 300)).X, float32(0))
}

func TestModeIsolation(t *testing.T) {
	n := newTestNavigator()
	n.StartRot(image.Pt(400, 300))
	n.Rot(image.Pt(450, 320))
	pos, rot := n.Position(), n.Rotation()
	require.Equal(t, Rot, n.Mode())

	n.Shift(image.Pt(600, 500))
	n.Zoom(image.Pt(600, 100))
	n.Shift2D(image.Pt(10, 10))
	n.Zoom2D(image.Pt(10, 500))
	assert.Equal(t, pos, n.Position())
	assert.Equal(t, rot, n.Rotation())
	assert.Equal(t, glm.Vec2{}, n.Translation2D())
	assert.Equal(t, float32(1), n.Scale2D())

	// Starting another interaction replaces the mode without an end call.
	n.StartShift(image.Pt(0, 0))
	assert.Equal(t, Shift, n.Mode())
	n.Rot(image.Pt(500, 300))
	assert.Equal(t, rot, n.Rotation())
}

func TestRotOrbitsCenter(t *testing.T) {
	n := newTestNavigator()
	dist := n.Position().Length()
	n.StartRot(image.Pt(400, 300))
	for x := 410; x < 600; x += 10 {
		n.Rot(image.Pt(x, 300))
	}
	assert.InDelta(t, dist, n.Position().Length(), 1e-3, "rotation must keep distance to center")
	assert.NotEqual(t, glm.QuatIdentity(), n.Rotation())
	// The camera must keep looking at the scene center.
	toCenter := n.Position().Neg().Normalize()
	assert.True(t, glm.EqualTol(toCenter, n.forward(), 1e-3), "forward %v, to center %v", n.forward(), toCenter)
	// Dragging right moves the camera to the left of the scene.
	assert.Less(t, n.Position().X, float32(0))
}

func TestRotDegenerate(t *testing.T) {
	n := newTestNavigator()
	n.StartRot(image.Pt(400, 300))
	pos, rot := n.Position(), n.Rotation()
	n.Rot(image.Pt(400, 300)) // Zero length cross product.
	assert.Equal(t, pos, n.Position())
	assert.Equal(t, rot, n.Rotation())
	// Out of viewport positions are ignored but keep the mode.
	n.Rot(image.Pt(-10, 300))
	n.Rot(image.Pt(900, 300))
	assert.Equal(t, pos, n.Position())
	assert.Equal(t, Rot, n.Mode())
}

func TestShiftZoom(t *testing.T) {
	n := newTestNavigator()
	start := n.Position()
	n.StartShift(image.Pt(100, 100))
	n.Shift(image.Pt(200, 100))
	p := n.Position()
	assert.Less(t, p.X, start.X, "dragging right moves camera left")
	assert.InDelta(t, start.Y, p.Y, tol)
	assert.InDelta(t, start.Z, p.Z, tol)

	n.StartZoom(image.Pt(100, 300))
	n.Zoom(image.Pt(100, 200)) // Drag up moves forward.
	assert.Less(t, n.Position().Z, p.Z)

	before := n.Position().Length()
	n.ZoomWheel(glm.Radians1(15))
	assert.Less(t, n.Position().Length(), before)
	n.ZoomWheel(-glm.Radians1(15))
	n.ZoomWheel(-glm.Radians1(15))
	assert.Greater(t, n.Position().Length(), before)
}

func TestZoomWheelStaysOutside(t *testing.T) {
	n := newTestNavigator()
	r := n.Scene().Radius
	gap := n.Position().Length() - r
	require.Greater(t, gap, float32(0))
	for i := 0; i < 10; i++ {
		n.ZoomWheel(glm.Radians1(170))
		next := n.Position().Length() - r
		require.Greater(t, next, float32(0), "step %d crossed the scene surface", i)
		require.Less(t, next, gap, "step %d did not approach", i)
		require.GreaterOrEqual(t, next, gap/2-tol, "step %d covered more than half the gap", i)
		gap = next
	}
	far := n.Position()
	n.ZoomWheel(-glm.Radians1(170))
	assert.Greater(t, n.Position().Length(), far.Length(), "backward steps are not limited")
}

func TestZoom2DClamp(t *testing.T) {
	n := newTestNavigator()
	for _, angle := range []float32{1000, -1000, 50, -3, 1e6, -1e6} {
		for i := 0; i < 100; i++ {
			prev := n.Scale2D()
			n.ZoomWheel2D(angle)
			s := n.Scale2D()
			require.GreaterOrEqual(t, s, float32(MinScale2D))
			require.LessOrEqual(t, s, float32(MaxScale2D))
			rel := math.Abs(s-prev) / prev
			require.LessOrEqual(t, rel, float32(0.5)+tol, "step from %v to %v", prev, s)
		}
	}
	n.Reset()
	n.StartZoom2D(image.Pt(0, 0))
	for y := -100000; y <= 100000; y += 5000 {
		prev := n.Scale2D()
		n.Zoom2D(image.Pt(0, y))
		s := n.Scale2D()
		require.GreaterOrEqual(t, s, float32(MinScale2D))
		require.LessOrEqual(t, s, float32(MaxScale2D))
		require.LessOrEqual(t, math.Abs(s-prev)/prev, float32(0.5)+tol)
	}
}

func TestShift2D(t *testing.T) {
	n := newTestNavigator()
	n.StartShift2D(image.Pt(400, 300))
	n.Shift2D(image.Pt(600, 150))
	assert.True(t, glm.EqualTol(glm.Vec2{X: 0.5, Y: 0.5}, n.Translation2D(), tol), "got %v", n.Translation2D())
	// Zooming keeps the content at the viewport center fixed.
	center := n.Transform2D(1).Inverse().MulPoint(glm.Vec3{})
	n.ZoomWheel2D(glm.Radians1(15))
	after := n.Transform2D(1).Inverse().MulPoint(glm.Vec3{})
	assert.True(t, glm.EqualTol(center, after, tol), "%v != %v", center, after)
}

func TestFrustumAndView(t *testing.T) {
	n := newTestNavigator()
	n.SetScene(SceneFromBox(ms3.Box{Min: ms3.Vec{X: -1, Y: -1, Z: -1}, Max: ms3.Vec{X: 3, Y: 1, Z: 1}}))
	sc := n.Scene()
	assert.True(t, glm.EqualTol(glm.Vec3{X: 1}, sc.Center, tol))
	assert.InDelta(t, math.Sqrt(24)/2, sc.Radius, tol)

	f := n.Frustum(n.Viewport().Aspect())
	d := n.Position().Length()
	assert.InDelta(t, d-sc.Radius, f.N, tol)
	assert.InDelta(t, d+sc.Radius, f.F, tol)
	assert.InDelta(t, f.T*4/3, f.R, tol)

	// The scene center is straight ahead in eye space at the camera distance.
	eye := n.ViewMatrix().MulPoint(sc.Center)
	assert.True(t, glm.EqualTol(glm.Vec3{Z: -d}, eye, 1e-3), "eye space center %v", eye)
	clip := f.Mat4().Mul(n.ViewMatrix()).MulVec(sc.Center.Vec4(1))
	ndc := clip.Homogenize()
	assert.InDelta(t, 0, ndc.X, tol)
	assert.InDelta(t, 0, ndc.Y, tol)
}

func TestBias(t *testing.T) {
	eye := glm.Vec3{X: 1, Y: 0, Z: 0}
	up := glm.Vec3{Z: 1}
	q := BiasFromEyeUp(eye, up)
	assert.True(t, glm.EqualTol(glm.Vec3{Z: 1}, q.Rotate(eye), tol))
	assert.True(t, glm.EqualTol(glm.Vec3{Y: 1}, q.Rotate(up), tol))
}

func TestReset(t *testing.T) {
	n := newTestNavigator()
	n.StartRot(image.Pt(400, 300))
	n.Rot(image.Pt(500, 200))
	n.StartShift2D(image.Pt(0, 0))
	n.Shift2D(image.Pt(10, 10))
	n.ZoomWheel2D(1)
	n.Reset()
	assert.Equal(t, Inactive, n.Mode())
	assert.Equal(t, glm.QuatIdentity(), n.Rotation())
	assert.Equal(t, glm.Vec2{}, n.Translation2D())
	assert.Equal(t, float32(1), n.Scale2D())
	assert.Equal(t, "zoom2d", Zoom2D.String())
}
