package glm

import (
	math "github.com/chewxy/math32"
	"github.com/soypat/geometry/ms3"
)

// Quat is a quaternion X*i + Y*j + Z*k + W. Rotation quaternions are unit length.
type Quat struct {
	X, Y, Z, W float32
}

// QuatIdentity returns the quaternion representing no rotation.
func QuatIdentity() Quat { return Quat{W: 1} }

func (q Quat) Vec() Vec3            { return Vec3{q.X, q.Y, q.Z} }
func (q Quat) Vec4() Vec4           { return Vec4{q.X, q.Y, q.Z, q.W} }
func (q Quat) Dot(p Quat) float32   { return q.toMS3().Dot(p.toMS3()) }
func (q Quat) Length() float32      { return q.toMS3().Norm() }
func (q Quat) Conjugate() Quat      { return quatFromMS3(q.toMS3().Conjugate()) }
func (q Quat) Scale(s float32) Quat { return quatFromMS3(q.toMS3().Scale(s)) }
func (q Quat) Add(p Quat) Quat      { return quatFromMS3(q.toMS3().Add(p.toMS3())) }
func (q Quat) Neg() Quat            { return Quat{-q.X, -q.Y, -q.Z, -q.W} }
func (q Quat) EqualTol(p Quat, tol float32) bool {
	return EqualTol(q.Vec4(), p.Vec4(), tol)
}

// Normalize returns q scaled to unit length. The zero quaternion maps to the identity.
func (q Quat) Normalize() Quat { return quatFromMS3(q.toMS3().Unit()) }

// Inverse returns the multiplicative inverse of q.
func (q Quat) Inverse() Quat { return quatFromMS3(q.toMS3().Inverse()) }

// Mul returns the Hamilton product q*p. The resulting rotation applies p first, then q.
func (q Quat) Mul(p Quat) Quat { return quatFromMS3(q.toMS3().Mul(p.toMS3())) }

// Rotate applies the rotation of unit quaternion q to v.
func (q Quat) Rotate(v Vec3) Vec3 { return vec3FromMS3(q.toMS3().Rotate(v.toMS3())) }

// QuatFromAxisAngle returns the rotation of angle radians about axis.
// A zero axis or zero angle yields the identity.
func QuatFromAxisAngle(axis Vec3, angle float32) Quat {
	l := axis.Length()
	if l == 0 || angle == 0 {
		return QuatIdentity()
	}
	return quatFromMS3(ms3.Rotation(angle, axis.Scale(1/l).toMS3()))
}

// AxisAngle returns the rotation axis and angle in radians of q. The angle is extracted
// as 2*acos(w) and the axis as the vector part divided by sqrt(1-w²).
// For (near) identity rotations the axis is undefined and (1,0,0) is returned with a zero angle.
func (q Quat) AxisAngle() (axis Vec3, angle float32) {
	q = q.Normalize()
	q.W = Clamp1(q.W, -1, 1)
	if math.Sqrt(1-q.W*q.W) < 1e-6 {
		return Vec3{X: 1}, 0
	}
	angle, a := q.toMS3().Rotation()
	return vec3FromMS3(a), angle
}

// QuatFromTwoVectors returns the shortest-arc rotation that takes direction from onto direction to.
func QuatFromTwoVectors(from, to Vec3) Quat {
	const tol = 1e-6
	f := from.Normalize()
	t := to.Normalize()
	d := f.Dot(t)
	switch {
	case d >= 1-tol:
		return QuatIdentity()
	case d > -1+1e-3:
		return quatFromMS3(ms3.RotationBetweenVecs(f.toMS3(), t.toMS3()))
	case d <= -1+tol:
		// Antiparallel: rotate half a turn about any axis orthogonal to from.
		axis := Vec3{X: 1}.Cross(f)
		if axis.LengthSq() < tol {
			axis = Vec3{Y: 1}.Cross(f)
		}
		return QuatFromAxisAngle(axis, math.Pi)
	}
	// Nearly antiparallel. RotationBetweenVecs snaps this range to a half turn.
	c := f.Cross(t)
	return Quat{c.X, c.Y, c.Z, 1 + d}.Normalize()
}

// QuatFromEuler returns the rotation for Tait-Bryan angles in radians: e.X about the X axis
// (roll), e.Y about the Y axis (pitch) and e.Z about the Z axis (yaw), applied in that order.
func QuatFromEuler(e Vec3) Quat {
	sr, cr := math.Sincos(e.X / 2)
	sp, cp := math.Sincos(e.Y / 2)
	sy, cy := math.Sincos(e.Z / 2)
	return Quat{
		W: cr*cp*cy + sr*sp*sy,
		X: sr*cp*cy - cr*sp*sy,
		Y: cr*sp*cy + sr*cp*sy,
		Z: cr*cp*sy - sr*sp*cy,
	}
}

// Euler returns the Tait-Bryan angles of q in the convention of [QuatFromEuler].
// At gimbal lock (pitch of ±90°) the pitch is clamped and roll/yaw share the remaining rotation.
func (q Quat) Euler() Vec3 {
	q = q.Normalize()
	var e Vec3
	e.X = math.Atan2(2*(q.W*q.X+q.Y*q.Z), 1-2*(q.X*q.X+q.Y*q.Y))
	sinp := 2 * (q.W*q.Y - q.Z*q.X)
	if math.Abs(sinp) >= 1 {
		e.Y = math.Copysign(math.Pi/2, sinp)
	} else {
		e.Y = math.Asin(sinp)
	}
	e.Z = math.Atan2(2*(q.W*q.Z+q.X*q.Y), 1-2*(q.Y*q.Y+q.Z*q.Z))
	return e
}

// Mat3 returns the rotation matrix of unit quaternion q.
func (q Quat) Mat3() Mat3 { return mat3FromMS3(q.toMS3().RotationMat3()) }

// Mat4 returns the homogeneous rotation matrix of unit quaternion q.
func (q Quat) Mat4() Mat4 { return q.Mat3().Mat4() }

// QuatFromMat3 extracts the rotation of an orthonormal matrix. The branch is chosen
// on the largest of the trace and diagonal elements to avoid dividing by small numbers.
func QuatFromMat3(m Mat3) Quat {
	m00, m11, m22 := m.At(0, 0), m.At(1, 1), m.At(2, 2)
	tr := m00 + m11 + m22
	var q Quat
	switch {
	case tr > 0:
		s := math.Sqrt(tr+1) * 2
		q.W = s / 4
		q.X = (m.At(2, 1) - m.At(1, 2)) / s
		q.Y = (m.At(0, 2) - m.At(2, 0)) / s
		q.Z = (m.At(1, 0) - m.At(0, 1)) / s
	case m00 > m11 && m00 > m22:
		s := math.Sqrt(1+m00-m11-m22) * 2
		q.W = (m.At(2, 1) - m.At(1, 2)) / s
		q.X = s / 4
		q.Y = (m.At(0, 1) + m.At(1, 0)) / s
		q.Z = (m.At(0, 2) + m.At(2, 0)) / s
	case m11 > m22:
		s := math.Sqrt(1+m11-m00-m22) * 2
		q.W = (m.At(0, 2) - m.At(2, 0)) / s
		q.X = (m.At(0, 1) + m.At(1, 0)) / s
		q.Y = s / 4
		q.Z = (m.At(1, 2) + m.At(2, 1)) / s
	default:
		s := math.Sqrt(1+m22-m00-m11) * 2
		q.W = (m.At(1, 0) - m.At(0, 1)) / s
		q.X = (m.At(0, 2) + m.At(2, 0)) / s
		q.Y = (m.At(1, 2) + m.At(2, 1)) / s
		q.Z = s / 4
	}
	return q.Normalize()
}

// Slerp spherically interpolates between unit quaternions q and p along the shortest arc.
func (q Quat) Slerp(p Quat, t float32) Quat {
	if q.Dot(p) < 0 {
		p = p.Neg()
	}
	return quatFromMS3(ms3.QuatSlerp(q.toMS3(), p.toMS3(), t))
}
