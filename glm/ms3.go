package glm

import "github.com/soypat/geometry/ms3"

// Conversions to and from ms3. ms3 matrices are row-major while glm stores
// columns first, so the element arrays are read and written transposed.

func (a Vec3) toMS3() ms3.Vec    { return ms3.Vec{X: a.X, Y: a.Y, Z: a.Z} }
func vec3FromMS3(v ms3.Vec) Vec3 { return Vec3{X: v.X, Y: v.Y, Z: v.Z} }

func (q Quat) toMS3() ms3.Quat    { return ms3.Quat{I: q.X, J: q.Y, K: q.Z, W: q.W} }
func quatFromMS3(q ms3.Quat) Quat { return Quat{X: q.I, Y: q.J, Z: q.K, W: q.W} }

func (m Mat3) toMS3() ms3.Mat3    { return ms3.NewMat3(m[:]).Transpose() }
func mat3FromMS3(a ms3.Mat3) Mat3 { return Mat3(a.Transpose().Array()) }

func (m Mat4) toMS3() ms3.Mat4    { return ms3.NewMat4(m[:]).Transpose() }
func mat4FromMS3(a ms3.Mat4) Mat4 { return Mat4(a.Transpose().Array()) }
