package glm

import (
	"math/rand"
	"testing"

	math "github.com/chewxy/math32"
)

const tol = 1e-4

func randVec3(rng *rand.Rand) Vec3 {
	return Vec3{X: rng.Float32()*2 - 1, Y: rng.Float32()*2 - 1, Z: rng.Float32()*2 - 1}
}

func matEqualTol(a, b []float32, tol float32) bool {
	for i := range a {
		if math.Abs(a[i]-b[i]) > tol {
			return false
		}
	}
	return true
}

func TestAxisAngleRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 1000; i++ {
		axis := randVec3(rng)
		if axis.Length() < 1e-3 {
			continue
		}
		angle := (rng.Float32()*2 - 1) * math.Pi
		q := QuatFromAxisAngle(axis, angle)
		gotAxis, gotAngle := q.AxisAngle()
		q2 := QuatFromAxisAngle(gotAxis, gotAngle)
		v := randVec3(rng)
		want := q.Rotate(v)
		got := q2.Rotate(v)
		if !EqualTol(want, got, tol) {
			t.Fatalf("round trip axis=%v angle=%v: got axis=%v angle=%v; rotated %v != %v", axis, angle, gotAxis, gotAngle, got, want)
		}
		// The matrix form must agree with the quaternion form.
		if got := q.Mat3().MulVec(v); !EqualTol(want, got, tol) {
			t.Fatalf("matrix rotation %v != quaternion rotation %v", got, want)
		}
	}
}

func TestAxisAngleDegenerate(t *testing.T) {
	for _, q := range []Quat{
		QuatFromAxisAngle(Vec3{}, 1),
		QuatFromAxisAngle(Vec3{X: 1}, 0),
		QuatFromAxisAngle(Vec3{}, 0),
	} {
		if q != QuatIdentity() {
			t.Errorf("degenerate axis-angle should map to identity, got %v", q)
		}
		axis, angle := q.AxisAngle()
		if angle != 0 {
			t.Errorf("expected zero angle, got %v (axis %v)", angle, axis)
		}
		v := Vec3{X: 1, Y: 2, Z: 3}
		if got := QuatFromAxisAngle(axis, angle).Rotate(v); got != v {
			t.Errorf("identity rotation changed vector: %v", got)
		}
	}
}

func TestQuatMat3RoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	cases := []Quat{
		QuatIdentity(),
		QuatFromAxisAngle(Vec3{X: 1}, math.Pi),            // largest diagonal X.
		QuatFromAxisAngle(Vec3{Y: 1}, math.Pi),            // largest diagonal Y.
		QuatFromAxisAngle(Vec3{Z: 1}, math.Pi),            // largest diagonal Z.
		QuatFromAxisAngle(Vec3{X: 1, Y: 1}, 0.99*math.Pi), // negative trace.
	}
	for i := 0; i < 200; i++ {
		cases = append(cases, QuatFromAxisAngle(randVec3(rng), rng.Float32()*2*math.Pi))
	}
	for _, q := range cases {
		got := QuatFromMat3(q.Mat3())
		if !got.EqualTol(q, tol) && !got.EqualTol(q.Neg(), tol) {
			t.Errorf("QuatFromMat3 round trip: want %v (or negated), got %v", q, got)
		}
	}
}

func TestEulerRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 500; i++ {
		e := Vec3{
			X: (rng.Float32()*2 - 1) * math.Pi * 0.99,
			Y: (rng.Float32()*2 - 1) * math.Pi / 2 * 0.98,
			Z: (rng.Float32()*2 - 1) * math.Pi * 0.99,
		}
		q := QuatFromEuler(e)
		got := q.Euler()
		if !EqualTol(got, e, 1e-3) {
			t.Fatalf("euler round trip: want %v, got %v", e, got)
		}
	}
	// Euler angle order: roll, then pitch, then yaw.
	e := Vec3{X: 0.3, Y: -0.2, Z: 1.1}
	composed := QuatFromAxisAngle(Vec3{Z: 1}, e.Z).Mul(QuatFromAxisAngle(Vec3{Y: 1}, e.Y)).Mul(QuatFromAxisAngle(Vec3{X: 1}, e.X))
	if q := QuatFromEuler(e); !q.EqualTol(composed, tol) {
		t.Errorf("QuatFromEuler(%v) = %v, want %v", e, q, composed)
	}
}

func TestQuatFromTwoVectors(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	for i := 0; i < 300; i++ {
		from, to := randVec3(rng), randVec3(rng)
		q := QuatFromTwoVectors(from, to)
		got := q.Rotate(from.Normalize())
		if !EqualTol(got, to.Normalize(), tol) {
			t.Fatalf("rotating %v got %v, want %v", from, got, to.Normalize())
		}
	}
	// Antiparallel vectors must still produce a half turn.
	from := Vec3{X: 1}
	got := QuatFromTwoVectors(from, from.Neg()).Rotate(from)
	if !EqualTol(got, from.Neg(), tol) {
		t.Errorf("antiparallel rotation got %v", got)
	}
	if q := QuatFromTwoVectors(from, from.Scale(3)); q != QuatIdentity() {
		t.Errorf("parallel vectors should give identity, got %v", q)
	}
}

func TestQuatAlgebra(t *testing.T) {
	a := QuatFromAxisAngle(Vec3{X: 1, Y: 2, Z: -1}, 0.7)
	b := QuatFromAxisAngle(Vec3{X: -3, Y: 1, Z: 0.5}, -1.9)
	v := Vec3{X: 0.4, Y: -2, Z: 5}
	// Composition applies b first.
	if got, want := a.Mul(b).Rotate(v), a.Rotate(b.Rotate(v)); !EqualTol(got, want, tol) {
		t.Errorf("composition: %v != %v", got, want)
	}
	if got := a.Mul(a.Inverse()); !got.EqualTol(QuatIdentity(), tol) {
		t.Errorf("q*q⁻¹ = %v", got)
	}
	if got := a.Inverse(); !got.EqualTol(a.Conjugate(), tol) {
		t.Errorf("unit quaternion inverse %v should equal conjugate %v", got, a.Conjugate())
	}
	if l := a.Scale(3).Normalize().Length(); math.Abs(l-1) > tol {
		t.Errorf("normalized length %v", l)
	}
	if got := a.Slerp(b, 0); !got.EqualTol(a, tol) {
		t.Errorf("slerp at 0 = %v", got)
	}
	if got := a.Slerp(b, 1); !got.EqualTol(b, tol) && !got.EqualTol(b.Neg(), tol) {
		t.Errorf("slerp at 1 = %v", got)
	}
}

func TestMat4Inverse(t *testing.T) {
	m := Translation(Vec3{X: 1, Y: -2, Z: 3}).Mul(Rotation(0.8, Vec3{X: 1, Y: 1, Z: 0}))
	if !m.Invertible() {
		t.Fatal("rigid transform should be invertible")
	}
	id := Identity4()
	if got := m.Inverse().Mul(m); !matEqualTol(got[:], id[:], tol) {
		t.Errorf("inverse(m)*m = %v", got)
	}
	if got := m.Mul(m.Inverse()); !matEqualTol(got[:], id[:], tol) {
		t.Errorf("m*inverse(m) = %v", got)
	}
	if det := m.Det(); math.Abs(det-1) > tol {
		t.Errorf("rigid transform determinant %v", det)
	}
	p := Vec3{X: 3, Y: 4, Z: 5}
	if got := m.Inverse().MulPoint(m.MulPoint(p)); !EqualTol(got, p, tol) {
		t.Errorf("point round trip %v", got)
	}

	singular := Mat4FromCols(
		Vec4{X: 1, Y: 1, Z: 3, W: 0},
		Vec4{X: 2, Y: 2, Z: 1, W: 1},
		Vec4{X: 3, Y: 3, Z: 0, W: 2},
		Vec4{X: 4, Y: 4, Z: 2, W: 5},
	) // Rows 0 and 1 are identical.
	if singular.Invertible() {
		t.Errorf("matrix with identical rows reported invertible, det=%v", singular.Det())
	}
	if Scaling(Vec3{X: 0.01, Y: 0.01, Z: 0.01}).Invertible() == false {
		t.Error("small uniform scaling should be invertible")
	}
}

func TestColumnMajorLayout(t *testing.T) {
	tr := Translation(Vec3{X: 1, Y: 2, Z: 3})
	if tr[12] != 1 || tr[13] != 2 || tr[14] != 3 || tr[3] != 0 {
		t.Fatalf("translation not stored in the last column: %v", tr)
	}
	if got := tr.MulPoint(Vec3{X: 1}); got != (Vec3{X: 2, Y: 2, Z: 3}) {
		t.Errorf("translated point = %v", got)
	}
	sc := Scaling(Vec3{X: 2, Y: 3, Z: 4})
	if sc[0] != 2 || sc[5] != 3 || sc[10] != 4 || sc[15] != 1 {
		t.Errorf("scaling diagonal = %v", sc)
	}

	// A quarter turn about Z takes X to Y. A transposed rotation would take X to -Y.
	rot := QuatFromAxisAngle(Vec3{Z: 1}, math.Pi/2).Mat3()
	if got := rot.MulVec(Vec3{X: 1}); !EqualTol(got, Vec3{Y: 1}, tol) {
		t.Errorf("quarter turn of X = %v", got)
	}
	if got := rot.Col(0); !EqualTol(got, Vec3{Y: 1}, tol) {
		t.Errorf("first column of quarter turn = %v", got)
	}

	m := Mat4FromCols(
		Vec4{X: 2, Y: 0, Z: 1, W: 0},
		Vec4{X: 1, Y: 3, Z: 0, W: 0},
		Vec4{X: 0, Y: 1, Z: 4, W: 0},
		Vec4{X: 5, Y: 6, Z: 7, W: 1},
	)
	mt := m.Transpose()
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			if mt.At(r, c) != m.At(c, r) {
				t.Fatalf("transpose (%d,%d) = %v, want %v", r, c, mt.At(r, c), m.At(c, r))
			}
		}
	}
	// Inverse of an affine transform has the inverse linear part in the upper left corner.
	inv3 := m.Mat3().Inverse()
	inv4 := m.Inverse().Mat3()
	if !matEqualTol(inv3[:], inv4[:], tol) {
		t.Errorf("affine inverse corner %v, want %v", inv4, inv3)
	}
	if det := m.Det(); math.Abs(det-m.Mat3().Det()) > tol {
		t.Errorf("affine determinant %v, want %v", det, m.Mat3().Det())
	}
}

func TestQuatFromNearlyOpposite(t *testing.T) {
	from := Vec3{X: 1}
	for _, eps := range []float32{5e-3, 2e-2, 0.1} {
		to := Vec3{X: -1, Y: eps}.Normalize()
		got := QuatFromTwoVectors(from, to).Rotate(from)
		if !EqualTol(got, to, tol) {
			t.Errorf("eps=%v: rotated %v, want %v", eps, got, to)
		}
	}
}

func TestMat3Mat2Inverse(t *testing.T) {
	m3 := QuatFromAxisAngle(Vec3{X: 1, Y: -1, Z: 2}, 1.2).Mat3().Mul(Mat3{2, 0, 0, 0, 3, 0, 0, 0, 0.5})
	id3 := Identity3()
	if got := m3.Inverse().Mul(m3); !matEqualTol(got[:], id3[:], tol) {
		t.Errorf("mat3 inverse(m)*m = %v", got)
	}
	if math.Abs(m3.Det()-3) > tol {
		t.Errorf("mat3 det = %v, want 3", m3.Det())
	}
	if (Mat3{1, 1, 1, 2, 2, 2, 3, 4, 5}).Invertible() {
		t.Error("mat3 with identical rows reported invertible")
	}
	m2 := Mat2{4, 2, 7, 6}
	id2 := Identity2()
	if got := m2.Inverse().Mul(m2); !matEqualTol(got[:], id2[:], tol) {
		t.Errorf("mat2 inverse(m)*m = %v", got)
	}
	if (Mat2{1, 1, 2, 2}).Invertible() {
		t.Error("singular mat2 reported invertible")
	}
	if got := m2.Transpose().Transpose(); got != m2 {
		t.Errorf("double transpose %v", got)
	}
}

func TestRectangularMatrices(t *testing.T) {
	affine := Translation(Vec3{X: 1, Y: 2, Z: 3}).Mul(Rotation(0.3, Vec3{Z: 1}))
	m43 := affine.Mat4x3()
	if got := m43.Mat4(); got != affine {
		t.Errorf("affine round trip %v", got)
	}
	v := Vec4{X: 1, Y: -1, Z: 2, W: 1}
	if got, want := m43.MulVec(v), affine.MulVec(v).XYZ(); !EqualTol(got, want, tol) {
		t.Errorf("Mat4x3.MulVec = %v, want %v", got, want)
	}
	if got := m43.Transpose().Transpose(); got != m43 {
		t.Errorf("double transpose %v", got)
	}
	tr := m43.Transpose()
	for r := 0; r < 3; r++ {
		for c := 0; c < 4; c++ {
			if tr.At(c, r) != m43.At(r, c) {
				t.Fatalf("transpose mismatch at %d,%d", r, c)
			}
		}
	}
	if got, want := m43.Mul(Identity4()), m43; got != want {
		t.Errorf("multiplying by identity changed matrix: %v", got)
	}
}

func TestFrustum(t *testing.T) {
	f := Perspective(Radians1(90), 2, 1, 10)
	if math.Abs(f.T-1) > tol || math.Abs(f.R-2) > tol {
		t.Errorf("unexpected frustum %+v", f)
	}
	adj := f.AdjustNear(0.5)
	if math.Abs(adj.T-0.5) > tol || math.Abs(adj.L+1) > tol || adj.F != f.F {
		t.Errorf("unexpected adjusted frustum %+v", adj)
	}
	m := f.Mat4()
	// Points on the near plane corners map to NDC corners.
	if got := m.MulPoint(Vec3{X: f.R, Y: f.T, Z: -f.N}); !EqualTol(got, Vec3{X: 1, Y: 1, Z: -1}, tol) {
		t.Errorf("near top right maps to %v", got)
	}
	farCorner := Vec3{X: f.L * f.F / f.N, Y: f.B * f.F / f.N, Z: -f.F}
	if got := m.MulPoint(farCorner); !EqualTol(got, Vec3{X: -1, Y: -1, Z: 1}, tol) {
		t.Errorf("far bottom left maps to %v", got)
	}
}

func TestGLSLFunctions(t *testing.T) {
	v := Vec3{X: -1.5, Y: 0, Z: 2.25}
	if got := Abs(v); got != (Vec3{X: 1.5, Y: 0, Z: 2.25}) {
		t.Errorf("Abs = %v", got)
	}
	if got := Sign(v); got != (Vec3{X: -1, Y: 0, Z: 1}) {
		t.Errorf("Sign = %v", got)
	}
	if got := Mod(Vec2{X: -1, Y: 5}, Vec2{X: 3, Y: 3}); got != (Vec2{X: 2, Y: 2}) {
		t.Errorf("Mod = %v, want GLSL semantics (2,2)", got)
	}
	if got := Fract(Vec2{X: -0.25, Y: 1.75}); got != (Vec2{X: 0.75, Y: 0.75}) {
		t.Errorf("Fract = %v", got)
	}
	if got := Clamp(v, -1, 1); got != (Vec3{X: -1, Y: 0, Z: 1}) {
		t.Errorf("Clamp = %v", got)
	}
	if got := Mix(Vec2{}, Vec2{X: 2, Y: 4}, 0.25); got != (Vec2{X: 0.5, Y: 1}) {
		t.Errorf("Mix = %v", got)
	}
	if got := MixElem(Vec2{}, Vec2{X: 2, Y: 4}, Vec2{X: 0.5, Y: 1}); got != (Vec2{X: 1, Y: 4}) {
		t.Errorf("MixElem = %v", got)
	}
	if got := Step(0.5, Vec4{X: 0, Y: 0.5, Z: 1, W: -1}); got != (Vec4{X: 0, Y: 1, Z: 1, W: 0}) {
		t.Errorf("Step = %v", got)
	}
	if got := SmoothStep(0, 1, Vec2{X: 0.5, Y: 2}); got != (Vec2{X: 0.5, Y: 1}) {
		t.Errorf("SmoothStep = %v", got)
	}
	if got := Min(Vec2{X: 1, Y: 5}, Vec2{X: 3, Y: 2}); got != (Vec2{X: 1, Y: 2}) {
		t.Errorf("Min = %v", got)
	}
	if !All(LessThan(Vec2{X: 1, Y: 2}, Vec2{X: 2, Y: 3})) || Any(GreaterThan(Vec2{X: 1, Y: 2}, Vec2{X: 2, Y: 3})) {
		t.Error("comparison functions disagree")
	}
	if got := Degrees(Radians(Vec3{X: 90, Y: -45, Z: 180})); !EqualTol(got, Vec3{X: 90, Y: -45, Z: 180}, tol) {
		t.Errorf("Degrees(Radians) = %v", got)
	}

	n := Vec3{Y: 1}
	i := Vec3{X: 1, Y: -1}.Normalize()
	if got := Reflect(i, n); !EqualTol(got, Vec3{X: i.X, Y: -i.Y}, tol) {
		t.Errorf("Reflect = %v", got)
	}
	if got := Refract(i, n, 1); !EqualTol(got, i, tol) {
		t.Errorf("Refract with eta=1 should not bend, got %v", got)
	}
	grazing := Vec3{X: 1, Y: -0.05}.Normalize()
	if got := Refract(grazing, n, 1.5); got != (Vec3{}) {
		t.Errorf("expected total internal reflection, got %v", got)
	}
	if got := FaceForward(n, i, n); got != n {
		t.Errorf("FaceForward = %v", got)
	}
	if got := (Vec3{X: 1}).Cross(Vec3{Y: 1}); got != (Vec3{Z: 1}) {
		t.Errorf("Cross = %v", got)
	}
}

func TestViewport(t *testing.T) {
	vp := Viewport{X: 10, Y: 20, W: 100, H: 50}
	if vp.Aspect() != 2 {
		t.Errorf("aspect %v", vp.Aspect())
	}
	if !vp.Contains(10, 20) || vp.Contains(110, 20) || vp.Contains(50, 70) {
		t.Error("bad Contains")
	}
	if (Viewport{}).Aspect() != 1 || !(Viewport{}).Empty() {
		t.Error("empty viewport")
	}
}
