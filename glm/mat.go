package glm

import (
	math "github.com/chewxy/math32"
	"github.com/soypat/geometry/ms3"
)

// Mat2 is a 2x2 matrix in column-major order.
type Mat2 [4]float32

// Mat3 is a 3x3 matrix in column-major order.
type Mat3 [9]float32

// Mat4 is a 4x4 matrix in column-major order.
type Mat4 [16]float32

// singularTol is the relative determinant magnitude below which a matrix is
// considered not invertible in float32 precision.
const singularTol = 1e-6

func Identity2() Mat2 { return Mat2{1, 0, 0, 1} }
func Identity3() Mat3 { return Mat3{1, 0, 0, 0, 1, 0, 0, 0, 1} }
func Identity4() Mat4 { return Mat4{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1} }

// Mat2FromCols builds a matrix from its columns.
func Mat2FromCols(c0, c1 Vec2) Mat2 { return Mat2{c0.X, c0.Y, c1.X, c1.Y} }

// Mat3FromCols builds a matrix from its columns.
func Mat3FromCols(c0, c1, c2 Vec3) Mat3 {
	return Mat3{c0.X, c0.Y, c0.Z, c1.X, c1.Y, c1.Z, c2.X, c2.Y, c2.Z}
}

// Mat4FromCols builds a matrix from its columns.
func Mat4FromCols(c0, c1, c2, c3 Vec4) Mat4 {
	return Mat4{c0.X, c0.Y, c0.Z, c0.W, c1.X, c1.Y, c1.Z, c1.W, c2.X, c2.Y, c2.Z, c2.W, c3.X, c3.Y, c3.Z, c3.W}
}

//
// Mat2.
//

func (m Mat2) At(row, col int) float32      { return m[col*2+row] }
func (m *Mat2) Set(row, col int, v float32) { m[col*2+row] = v }
func (m Mat2) Col(col int) Vec2             { return Vec2{m[col*2], m[col*2+1]} }
func (m Mat2) Row(row int) Vec2             { return Vec2{m[row], m[2+row]} }

func (m Mat2) Add(b Mat2) (r Mat2) {
	addElems(r[:], m[:], b[:], 1)
	return r
}

func (m Mat2) Sub(b Mat2) (r Mat2) {
	addElems(r[:], m[:], b[:], -1)
	return r
}

func (m Mat2) Scale(s float32) (r Mat2) {
	for i := range m {
		r[i] = m[i] * s
	}
	return r
}

func (m Mat2) MulVec(v Vec2) Vec2 {
	return Vec2{m[0]*v.X + m[2]*v.Y, m[1]*v.X + m[3]*v.Y}
}

func (m Mat2) Mul(b Mat2) (r Mat2) {
	for c := 0; c < 2; c++ {
		col := m.MulVec(b.Col(c))
		r[c*2], r[c*2+1] = col.X, col.Y
	}
	return r
}

func (m Mat2) Transpose() Mat2 { return Mat2{m[0], m[2], m[1], m[3]} }
func (m Mat2) Det() float32    { return m[0]*m[3] - m[2]*m[1] }

// Invertible reports whether the determinant of m is large enough relative to the
// magnitude of its elements for [Mat2.Inverse] to be trusted.
func (m Mat2) Invertible() bool { return invertible(m.Det(), m[:], 2) }

// Inverse returns the inverse of m. The result is meaningless if m is not [Mat2.Invertible].
func (m Mat2) Inverse() Mat2 {
	inv := 1 / m.Det()
	return Mat2{m[3] * inv, -m[1] * inv, -m[2] * inv, m[0] * inv}
}

//
// Mat3.
//

func (m Mat3) At(row, col int) float32      { return m[col*3+row] }
func (m *Mat3) Set(row, col int, v float32) { m[col*3+row] = v }
func (m Mat3) Col(col int) Vec3             { return Vec3{m[col*3], m[col*3+1], m[col*3+2]} }
func (m Mat3) Row(row int) Vec3             { return Vec3{m[row], m[3+row], m[6+row]} }

func (m Mat3) Add(b Mat3) (r Mat3) {
	addElems(r[:], m[:], b[:], 1)
	return r
}

func (m Mat3) Sub(b Mat3) (r Mat3) {
	addElems(r[:], m[:], b[:], -1)
	return r
}

func (m Mat3) Scale(s float32) (r Mat3) {
	for i := range m {
		r[i] = m[i] * s
	}
	return r
}

func (m Mat3) MulVec(v Vec3) Vec3 {
	return Vec3{
		X: m[0]*v.X + m[3]*v.Y + m[6]*v.Z,
		Y: m[1]*v.X + m[4]*v.Y + m[7]*v.Z,
		Z: m[2]*v.X + m[5]*v.Y + m[8]*v.Z,
	}
}

func (m Mat3) Mul(b Mat3) (r Mat3) {
	for c := 0; c < 3; c++ {
		col := m.MulVec(b.Col(c))
		r[c*3], r[c*3+1], r[c*3+2] = col.X, col.Y, col.Z
	}
	return r
}

func (m Mat3) Transpose() Mat3 { return mat3FromMS3(m.toMS3().Transpose()) }
func (m Mat3) Det() float32    { return m.toMS3().Determinant() }

// Invertible reports whether the determinant of m is large enough relative to the
// magnitude of its elements for [Mat3.Inverse] to be trusted.
func (m Mat3) Invertible() bool { return invertible(m.Det(), m[:], 3) }

// Inverse returns the inverse of m. The result is meaningless if m is not [Mat3.Invertible].
func (m Mat3) Inverse() Mat3 { return mat3FromMS3(m.toMS3().Inverse()) }

// Mat4 returns m in the upper left corner of an identity 4x4 matrix.
func (m Mat3) Mat4() Mat4 {
	return Mat4{
		m[0], m[1], m[2], 0,
		m[3], m[4], m[5], 0,
		m[6], m[7], m[8], 0,
		0, 0, 0, 1,
	}
}

//
// Mat4.
//

func (m Mat4) At(row, col int) float32      { return m[col*4+row] }
func (m *Mat4) Set(row, col int, v float32) { m[col*4+row] = v }
func (m Mat4) Col(col int) Vec4             { return Vec4{m[col*4], m[col*4+1], m[col*4+2], m[col*4+3]} }
func (m Mat4) Row(row int) Vec4             { return Vec4{m[row], m[4+row], m[8+row], m[12+row]} }

func (m Mat4) Add(b Mat4) (r Mat4) {
	addElems(r[:], m[:], b[:], 1)
	return r
}

func (m Mat4) Sub(b Mat4) (r Mat4) {
	addElems(r[:], m[:], b[:], -1)
	return r
}

func (m Mat4) Scale(s float32) (r Mat4) {
	for i := range m {
		r[i] = m[i] * s
	}
	return r
}

func (m Mat4) MulVec(v Vec4) Vec4 {
	return Vec4{
		X: m[0]*v.X + m[4]*v.Y + m[8]*v.Z + m[12]*v.W,
		Y: m[1]*v.X + m[5]*v.Y + m[9]*v.Z + m[13]*v.W,
		Z: m[2]*v.X + m[6]*v.Y + m[10]*v.Z + m[14]*v.W,
		W: m[3]*v.X + m[7]*v.Y + m[11]*v.Z + m[15]*v.W,
	}
}

// MulPoint transforms the point p (w=1) and performs the perspective division.
func (m Mat4) MulPoint(p Vec3) Vec3 { return m.MulVec(p.Vec4(1)).Homogenize() }

// MulDir transforms the direction d (w=0), ignoring translation.
func (m Mat4) MulDir(d Vec3) Vec3 { return m.MulVec(d.Vec4(0)).XYZ() }

func (m Mat4) Mul(b Mat4) (r Mat4) {
	for c := 0; c < 4; c++ {
		col := m.MulVec(b.Col(c))
		r[c*4], r[c*4+1], r[c*4+2], r[c*4+3] = col.X, col.Y, col.Z, col.W
	}
	return r
}

func (m Mat4) Transpose() Mat4 { return mat4FromMS3(m.toMS3().Transpose()) }

// Mat3 returns the upper left 3x3 corner of m.
func (m Mat4) Mat3() Mat3 {
	return Mat3{m[0], m[1], m[2], m[4], m[5], m[6], m[8], m[9], m[10]}
}

func (m Mat4) Det() float32 { return m.toMS3().Determinant() }

// Invertible reports whether the determinant of m is large enough relative to the
// magnitude of its elements for [Mat4.Inverse] to be trusted.
func (m Mat4) Invertible() bool { return invertible(m.Det(), m[:], 4) }

// Inverse returns the inverse of m. The result is meaningless if m is not [Mat4.Invertible].
func (m Mat4) Inverse() Mat4 { return mat4FromMS3(m.toMS3().Inverse()) }

// Translation returns a matrix translating by t.
func Translation(t Vec3) Mat4 { return mat4FromMS3(ms3.TranslatingMat4(t.toMS3())) }

// Scaling returns a matrix scaling each axis by the components of s.
func Scaling(s Vec3) Mat4 { return mat4FromMS3(ms3.ScalingMat4(s.toMS3())) }

// Rotation returns a matrix rotating by angle radians about axis.
func Rotation(angle float32, axis Vec3) Mat4 {
	return QuatFromAxisAngle(axis, angle).Mat4()
}

// LookAt returns a view matrix for a viewer at eye looking at center with the given up direction.
func LookAt(eye, center, up Vec3) Mat4 {
	f := center.Sub(eye).Normalize()
	s := f.Cross(up).Normalize()
	u := s.Cross(f)
	m := Identity4()
	m.Set(0, 0, s.X)
	m.Set(0, 1, s.Y)
	m.Set(0, 2, s.Z)
	m.Set(1, 0, u.X)
	m.Set(1, 1, u.Y)
	m.Set(1, 2, u.Z)
	m.Set(2, 0, -f.X)
	m.Set(2, 1, -f.Y)
	m.Set(2, 2, -f.Z)
	m.Set(0, 3, -s.Dot(eye))
	m.Set(1, 3, -u.Dot(eye))
	m.Set(2, 3, f.Dot(eye))
	return m
}

// Ortho returns an orthographic projection matrix, like glOrtho.
func Ortho(l, r, b, t, n, f float32) Mat4 {
	m := Identity4()
	m.Set(0, 0, 2/(r-l))
	m.Set(1, 1, 2/(t-b))
	m.Set(2, 2, -2/(f-n))
	m.Set(0, 3, -(r+l)/(r-l))
	m.Set(1, 3, -(t+b)/(t-b))
	m.Set(2, 3, -(f+n)/(f-n))
	return m
}

func addElems(dst, a, b []float32, sign float32) {
	for i := range a {
		dst[i] = a[i] + sign*b[i]
	}
}

func invertible(det float32, elems []float32, n int) bool {
	var maxAbs float32
	for _, e := range elems {
		maxAbs = math.Max(maxAbs, math.Abs(e))
	}
	if maxAbs == 0 || math.IsNaN(det) || math.IsInf(det, 0) {
		return false
	}
	scale := math.Pow(maxAbs, float32(n))
	return math.Abs(det) > singularTol*scale
}
