package glm

import (
	math "github.com/chewxy/math32"
)

// Vector is satisfied by the fixed size vector types of this package. It lets the
// GLSL elementwise functions be written once for all vector sizes.
type Vector[T any] interface {
	Vec2 | Vec3 | Vec4
	Add(T) T
	Sub(T) T
	Scale(float32) T
	Dot(T) float32
	Elems() []float32
	Map(func(float32) float32) T
	Map2(T, func(a, b float32) float32) T
}

// Abs returns |v| elementwise.
func Abs[T Vector[T]](v T) T { return v.Map(math.Abs) }

// Sign returns -1, 0 or 1 elementwise depending on the sign of v.
func Sign[T Vector[T]](v T) T { return v.Map(sign) }

func Floor[T Vector[T]](v T) T { return v.Map(math.Floor) }
func Ceil[T Vector[T]](v T) T  { return v.Map(math.Ceil) }
func Round[T Vector[T]](v T) T { return v.Map(math.Round) }
func Fract[T Vector[T]](v T) T { return v.Map(fract) }

func Sin[T Vector[T]](v T) T  { return v.Map(math.Sin) }
func Cos[T Vector[T]](v T) T  { return v.Map(math.Cos) }
func Tan[T Vector[T]](v T) T  { return v.Map(math.Tan) }
func Asin[T Vector[T]](v T) T { return v.Map(math.Asin) }
func Acos[T Vector[T]](v T) T { return v.Map(math.Acos) }
func Atan[T Vector[T]](v T) T { return v.Map(math.Atan) }

// Atan2 returns atan(y/x) elementwise using the signs of both arguments to pick the quadrant.
func Atan2[T Vector[T]](y, x T) T { return y.Map2(x, math.Atan2) }

func Radians[T Vector[T]](degrees T) T { return degrees.Map(Radians1) }
func Degrees[T Vector[T]](radians T) T { return radians.Map(Degrees1) }

func Exp[T Vector[T]](v T) T         { return v.Map(math.Exp) }
func Exp2[T Vector[T]](v T) T        { return v.Map(math.Exp2) }
func Log[T Vector[T]](v T) T         { return v.Map(math.Log) }
func Log2[T Vector[T]](v T) T        { return v.Map(math.Log2) }
func Sqrt[T Vector[T]](v T) T        { return v.Map(math.Sqrt) }
func InverseSqrt[T Vector[T]](v T) T { return v.Map(func(f float32) float32 { return 1 / math.Sqrt(f) }) }
func Pow[T Vector[T]](v, e T) T      { return v.Map2(e, math.Pow) }

// Min returns the elementwise minimum of a and b.
func Min[T Vector[T]](a, b T) T { return a.Map2(b, math.Min) }

// Max returns the elementwise maximum of a and b.
func Max[T Vector[T]](a, b T) T { return a.Map2(b, math.Max) }

// Mod returns a - b*floor(a/b) elementwise, following GLSL (not C fmod) semantics.
func Mod[T Vector[T]](a, b T) T { return a.Map2(b, Mod1) }

// Clamp constrains every element of v to [lo, hi].
func Clamp[T Vector[T]](v T, lo, hi float32) T {
	return v.Map(func(f float32) float32 { return Clamp1(f, lo, hi) })
}

// ClampElem constrains every element of v to the range given by the matching elements of lo and hi.
func ClampElem[T Vector[T]](v, lo, hi T) T {
	return Min(Max(v, lo), hi)
}

// Mix linearly interpolates between x and y: x*(1-t) + y*t.
func Mix[T Vector[T]](x, y T, t float32) T {
	return x.Scale(1 - t).Add(y.Scale(t))
}

// MixElem is like [Mix] with a per-element interpolation factor.
func MixElem[T Vector[T]](x, y, t T) T {
	return x.Add(mulElem(y.Sub(x), t))
}

// Step returns 0 for elements of v below edge and 1 otherwise.
func Step[T Vector[T]](edge float32, v T) T {
	return v.Map(func(f float32) float32 { return Step1(edge, f) })
}

// SmoothStep performs Hermite interpolation between 0 and 1 for elements of v in [e0, e1].
func SmoothStep[T Vector[T]](e0, e1 float32, v T) T {
	return v.Map(func(f float32) float32 { return SmoothStep1(e0, e1, f) })
}

// Reflect returns the reflection direction of incident vector i about the surface normal n.
// n should be normalized.
func Reflect[T Vector[T]](i, n T) T {
	return i.Sub(n.Scale(2 * n.Dot(i)))
}

// Refract returns the refraction vector of incident vector i through a surface with normal n
// and ratio of indices of refraction eta. The zero vector is returned on total internal reflection.
func Refract[T Vector[T]](i, n T, eta float32) T {
	d := n.Dot(i)
	k := 1 - eta*eta*(1-d*d)
	if k < 0 {
		return Vec0[T]()
	}
	return i.Scale(eta).Sub(n.Scale(eta*d + math.Sqrt(k)))
}

// FaceForward returns n if dot(nref, i) < 0, otherwise -n.
func FaceForward[T Vector[T]](n, i, nref T) T {
	if nref.Dot(i) < 0 {
		return n
	}
	return n.Scale(-1)
}

// Vec0 returns the zero value vector of type T.
func Vec0[T Vector[T]]() T {
	var z T
	return z
}

func LessThan[T Vector[T]](a, b T) []bool {
	return compare(a, b, func(x, y float32) bool { return x < y })
}
func LessThanEqual[T Vector[T]](a, b T) []bool {
	return compare(a, b, func(x, y float32) bool { return x <= y })
}
func GreaterThan[T Vector[T]](a, b T) []bool {
	return compare(a, b, func(x, y float32) bool { return x > y })
}
func GreaterThanEqual[T Vector[T]](a, b T) []bool {
	return compare(a, b, func(x, y float32) bool { return x >= y })
}
func Equal[T Vector[T]](a, b T) []bool {
	return compare(a, b, func(x, y float32) bool { return x == y })
}
func NotEqual[T Vector[T]](a, b T) []bool {
	return compare(a, b, func(x, y float32) bool { return x != y })
}

// EqualTol reports whether every element of a and b differ by at most tol.
func EqualTol[T Vector[T]](a, b T, tol float32) bool {
	return All(compare(a, b, func(x, y float32) bool { return math.Abs(x-y) <= tol }))
}

// All reports whether every element of b is true.
func All(b []bool) bool {
	for _, v := range b {
		if !v {
			return false
		}
	}
	return true
}

// Any reports whether at least one element of b is true.
func Any(b []bool) bool {
	for _, v := range b {
		if v {
			return true
		}
	}
	return false
}

func compare[T Vector[T]](a, b T, f func(x, y float32) bool) []bool {
	ae, be := a.Elems(), b.Elems()
	result := make([]bool, len(ae))
	for i := range ae {
		result[i] = f(ae[i], be[i])
	}
	return result
}

func mulElem[T Vector[T]](a, b T) T {
	return a.Map2(b, func(x, y float32) float32 { return x * y })
}

// Scalar versions of the GLSL functions.

// Radians1 converts degrees to radians.
func Radians1(degrees float32) float32 { return degrees * (math.Pi / 180) }

// Degrees1 converts radians to degrees.
func Degrees1(radians float32) float32 { return radians * (180 / math.Pi) }

// Clamp1 constrains f to [lo, hi].
func Clamp1(f, lo, hi float32) float32 {
	return math.Min(math.Max(f, lo), hi)
}

// Mix1 linearly interpolates between x and y.
func Mix1(x, y, t float32) float32 { return x*(1-t) + y*t }

// Step1 returns 0 if f < edge and 1 otherwise.
func Step1(edge, f float32) float32 {
	if f < edge {
		return 0
	}
	return 1
}

// SmoothStep1 performs Hermite interpolation between 0 and 1 when e0 < f < e1.
func SmoothStep1(e0, e1, f float32) float32 {
	t := Clamp1((f-e0)/(e1-e0), 0, 1)
	return t * t * (3 - 2*t)
}

// Mod1 returns a - b*floor(a/b).
func Mod1(a, b float32) float32 { return a - b*math.Floor(a/b) }

func fract(f float32) float32 { return f - math.Floor(f) }

func sign(f float32) float32 {
	switch {
	case f > 0:
		return 1
	case f < 0:
		return -1
	}
	return 0
}
