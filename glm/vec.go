// Package glm is a float32 vector, matrix, quaternion and frustum package
// with GLSL semantics. All functions are pure and operate on value types.
//
// Matrices are stored in column-major order so they can be handed to OpenGL
// without transposition.
package glm

import (
	math "github.com/chewxy/math32"
	"github.com/soypat/geometry/ms3"
)

// Vec2 is a 2 component vector.
type Vec2 struct {
	X, Y float32
}

// Vec3 is a 3 component vector.
type Vec3 struct {
	X, Y, Z float32
}

// Vec4 is a 4 component vector. Color-like access is provided through [Vec4.RGB] and [Vec4.RGBA].
type Vec4 struct {
	X, Y, Z, W float32
}

// Vec2 methods.

func (a Vec2) Add(b Vec2) Vec2         { return Vec2{a.X + b.X, a.Y + b.Y} }
func (a Vec2) Sub(b Vec2) Vec2         { return Vec2{a.X - b.X, a.Y - b.Y} }
func (a Vec2) Mul(b Vec2) Vec2         { return Vec2{a.X * b.X, a.Y * b.Y} }
func (a Vec2) Div(b Vec2) Vec2         { return Vec2{a.X / b.X, a.Y / b.Y} }
func (a Vec2) Scale(s float32) Vec2    { return Vec2{a.X * s, a.Y * s} }
func (a Vec2) Neg() Vec2               { return Vec2{-a.X, -a.Y} }
func (a Vec2) Dot(b Vec2) float32      { return a.X*b.X + a.Y*b.Y }
func (a Vec2) LengthSq() float32       { return a.Dot(a) }
func (a Vec2) Length() float32         { return math.Sqrt(a.Dot(a)) }
func (a Vec2) Distance(b Vec2) float32 { return a.Sub(b).Length() }
func (a Vec2) Elems() []float32        { return []float32{a.X, a.Y} }
func (a Vec2) Vec3(z float32) Vec3     { return Vec3{a.X, a.Y, z} }
func (a Vec2) Vec4(z, w float32) Vec4  { return Vec4{a.X, a.Y, z, w} }
func (a Vec2) YX() Vec2                { return Vec2{a.Y, a.X} }

func (a Vec2) Map(f func(float32) float32) Vec2 { return Vec2{f(a.X), f(a.Y)} }

func (a Vec2) Map2(b Vec2, f func(a, b float32) float32) Vec2 {
	return Vec2{f(a.X, b.X), f(a.Y, b.Y)}
}

// Normalize returns a unit length vector in the direction of a. The zero vector is returned unchanged.
func (a Vec2) Normalize() Vec2 {
	l := a.Length()
	if l == 0 {
		return a
	}
	return a.Scale(1 / l)
}

// Vec3 methods.

func (a Vec3) Add(b Vec3) Vec3         { return vec3FromMS3(ms3.Add(a.toMS3(), b.toMS3())) }
func (a Vec3) Sub(b Vec3) Vec3         { return vec3FromMS3(ms3.Sub(a.toMS3(), b.toMS3())) }
func (a Vec3) Mul(b Vec3) Vec3         { return vec3FromMS3(ms3.MulElem(a.toMS3(), b.toMS3())) }
func (a Vec3) Div(b Vec3) Vec3         { return vec3FromMS3(ms3.DivElem(a.toMS3(), b.toMS3())) }
func (a Vec3) Scale(s float32) Vec3    { return vec3FromMS3(ms3.Scale(s, a.toMS3())) }
func (a Vec3) Neg() Vec3               { return Vec3{-a.X, -a.Y, -a.Z} }
func (a Vec3) Dot(b Vec3) float32      { return ms3.Dot(a.toMS3(), b.toMS3()) }
func (a Vec3) LengthSq() float32       { return ms3.Norm2(a.toMS3()) }
func (a Vec3) Length() float32         { return ms3.Norm(a.toMS3()) }
func (a Vec3) Distance(b Vec3) float32 { return a.Sub(b).Length() }
func (a Vec3) Elems() []float32        { return []float32{a.X, a.Y, a.Z} }
func (a Vec3) XY() Vec2                { return Vec2{a.X, a.Y} }
func (a Vec3) Vec4(w float32) Vec4     { return Vec4{a.X, a.Y, a.Z, w} }
func (a Vec3) ZYX() Vec3               { return Vec3{a.Z, a.Y, a.X} }

func (a Vec3) Map(f func(float32) float32) Vec3 { return Vec3{f(a.X), f(a.Y), f(a.Z)} }

func (a Vec3) Map2(b Vec3, f func(a, b float32) float32) Vec3 {
	return Vec3{f(a.X, b.X), f(a.Y, b.Y), f(a.Z, b.Z)}
}

// Cross returns the cross product a×b.
func (a Vec3) Cross(b Vec3) Vec3 { return vec3FromMS3(ms3.Cross(a.toMS3(), b.toMS3())) }

// Normalize returns a unit length vector in the direction of a. The zero vector is returned unchanged.
func (a Vec3) Normalize() Vec3 {
	if a == (Vec3{}) {
		return a
	}
	return vec3FromMS3(ms3.Unit(a.toMS3()))
}

// Vec4 methods.

func (a Vec4) Add(b Vec4) Vec4         { return Vec4{a.X + b.X, a.Y + b.Y, a.Z + b.Z, a.W + b.W} }
func (a Vec4) Sub(b Vec4) Vec4         { return Vec4{a.X - b.X, a.Y - b.Y, a.Z - b.Z, a.W - b.W} }
func (a Vec4) Mul(b Vec4) Vec4         { return Vec4{a.X * b.X, a.Y * b.Y, a.Z * b.Z, a.W * b.W} }
func (a Vec4) Div(b Vec4) Vec4         { return Vec4{a.X / b.X, a.Y / b.Y, a.Z / b.Z, a.W / b.W} }
func (a Vec4) Scale(s float32) Vec4    { return Vec4{a.X * s, a.Y * s, a.Z * s, a.W * s} }
func (a Vec4) Neg() Vec4               { return Vec4{-a.X, -a.Y, -a.Z, -a.W} }
func (a Vec4) Dot(b Vec4) float32      { return a.X*b.X + a.Y*b.Y + a.Z*b.Z + a.W*b.W }
func (a Vec4) LengthSq() float32       { return a.Dot(a) }
func (a Vec4) Length() float32         { return math.Sqrt(a.Dot(a)) }
func (a Vec4) Distance(b Vec4) float32 { return a.Sub(b).Length() }
func (a Vec4) Elems() []float32        { return []float32{a.X, a.Y, a.Z, a.W} }
func (a Vec4) XY() Vec2                { return Vec2{a.X, a.Y} }
func (a Vec4) XYZ() Vec3               { return Vec3{a.X, a.Y, a.Z} }
func (a Vec4) RGB() Vec3               { return a.XYZ() }
func (a Vec4) RGBA() [4]float32        { return [4]float32{a.X, a.Y, a.Z, a.W} }

func (a Vec4) Map(f func(float32) float32) Vec4 { return Vec4{f(a.X), f(a.Y), f(a.Z), f(a.W)} }

func (a Vec4) Map2(b Vec4, f func(a, b float32) float32) Vec4 {
	return Vec4{f(a.X, b.X), f(a.Y, b.Y), f(a.Z, b.Z), f(a.W, b.W)}
}

// Normalize returns a unit length vector in the direction of a. The zero vector is returned unchanged.
func (a Vec4) Normalize() Vec4 {
	l := a.Length()
	if l == 0 {
		return a
	}
	return a.Scale(1 / l)
}

// Homogenize divides the first three components by W.
func (a Vec4) Homogenize() Vec3 {
	return Vec3{a.X / a.W, a.Y / a.W, a.Z / a.W}
}
