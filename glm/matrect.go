package glm

// Mat3x4 is a matrix with 3 columns and 4 rows in column-major order, following GLSL naming.
type Mat3x4 [12]float32

// Mat4x3 is a matrix with 4 columns and 3 rows in column-major order, following GLSL naming.
// It is the natural storage for affine transforms where the last row is implicitly (0,0,0,1).
type Mat4x3 [12]float32

func (m Mat3x4) At(row, col int) float32      { return m[col*4+row] }
func (m *Mat3x4) Set(row, col int, v float32) { m[col*4+row] = v }
func (m Mat4x3) At(row, col int) float32      { return m[col*3+row] }
func (m *Mat4x3) Set(row, col int, v float32) { m[col*3+row] = v }

// MulVec multiplies the 4x3 matrix (4 rows) by a 3 component column vector.
func (m Mat3x4) MulVec(v Vec3) Vec4 {
	return Vec4{
		X: m[0]*v.X + m[4]*v.Y + m[8]*v.Z,
		Y: m[1]*v.X + m[5]*v.Y + m[9]*v.Z,
		Z: m[2]*v.X + m[6]*v.Y + m[10]*v.Z,
		W: m[3]*v.X + m[7]*v.Y + m[11]*v.Z,
	}
}

// MulVec multiplies the 3x4 matrix (3 rows) by a 4 component column vector.
func (m Mat4x3) MulVec(v Vec4) Vec3 {
	return Vec3{
		X: m[0]*v.X + m[3]*v.Y + m[6]*v.Z + m[9]*v.W,
		Y: m[1]*v.X + m[4]*v.Y + m[7]*v.Z + m[10]*v.W,
		Z: m[2]*v.X + m[5]*v.Y + m[8]*v.Z + m[11]*v.W,
	}
}

func (m Mat3x4) Transpose() (r Mat4x3) {
	for c := 0; c < 3; c++ {
		for row := 0; row < 4; row++ {
			r.Set(c, row, m.At(row, c))
		}
	}
	return r
}

func (m Mat4x3) Transpose() (r Mat3x4) {
	for c := 0; c < 4; c++ {
		for row := 0; row < 3; row++ {
			r.Set(c, row, m.At(row, c))
		}
	}
	return r
}

// Mul returns the 3 row, 4 column product m*b.
func (m Mat4x3) Mul(b Mat4) (r Mat4x3) {
	for c := 0; c < 4; c++ {
		col := m.MulVec(b.Col(c))
		r[c*3], r[c*3+1], r[c*3+2] = col.X, col.Y, col.Z
	}
	return r
}

// Mat4 completes the affine transform m with a (0,0,0,1) last row.
func (m Mat4x3) Mat4() Mat4 {
	return Mat4{
		m[0], m[1], m[2], 0,
		m[3], m[4], m[5], 0,
		m[6], m[7], m[8], 0,
		m[9], m[10], m[11], 1,
	}
}

// Mat4x3 drops the last row of m.
func (m Mat4) Mat4x3() Mat4x3 {
	return Mat4x3{m[0], m[1], m[2], m[4], m[5], m[6], m[8], m[9], m[10], m[12], m[13], m[14]}
}
