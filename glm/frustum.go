package glm

import (
	math "github.com/chewxy/math32"
)

// Frustum describes a perspective viewing volume by the left, right, bottom and
// top coordinates of its near plane and the distances to the near and far planes.
type Frustum struct {
	L, R, B, T, N, F float32
}

// Perspective returns the symmetric frustum for a vertical field of view fovy
// in radians and an aspect ratio width/height.
func Perspective(fovy, aspect, near, far float32) Frustum {
	t := near * math.Tan(fovy/2)
	r := t * aspect
	return Frustum{L: -r, R: r, B: -t, T: t, N: near, F: far}
}

// AdjustNear moves the near plane to near while keeping the viewing angles,
// rescaling the left, right, bottom and top coordinates accordingly.
func (f Frustum) AdjustNear(near float32) Frustum {
	s := near / f.N
	f.L *= s
	f.R *= s
	f.B *= s
	f.T *= s
	f.N = near
	return f
}

// Mat4 returns the projection matrix of the frustum, like glFrustum.
func (f Frustum) Mat4() Mat4 {
	var m Mat4
	m.Set(0, 0, 2*f.N/(f.R-f.L))
	m.Set(0, 2, (f.R+f.L)/(f.R-f.L))
	m.Set(1, 1, 2*f.N/(f.T-f.B))
	m.Set(1, 2, (f.T+f.B)/(f.T-f.B))
	m.Set(2, 2, -(f.F+f.N)/(f.F-f.N))
	m.Set(2, 3, -2*f.F*f.N/(f.F-f.N))
	m.Set(3, 2, -1)
	return m
}

// Viewport is a rectangle in window pixel coordinates.
type Viewport struct {
	X, Y, W, H int
}

// Aspect returns the width to height ratio of the viewport, or 1 for empty viewports.
func (vp Viewport) Aspect() float32 {
	if vp.W <= 0 || vp.H <= 0 {
		return 1
	}
	return float32(vp.W) / float32(vp.H)
}

// Contains reports whether pixel (x,y) lies inside the viewport.
func (vp Viewport) Contains(x, y int) bool {
	return x >= vp.X && x < vp.X+vp.W && y >= vp.Y && y < vp.Y+vp.H
}

// Empty reports whether the viewport has no area.
func (vp Viewport) Empty() bool { return vp.W <= 0 || vp.H <= 0 }
