package engine

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Matrices are column-major 4x4 (OpenGL layout):
// | m0  m4  m8  m12 |
// | m1  m5  m9  m13 |
// | m2  m6  m10 m14 |
// | m3  m7  m11 m15 |
//
// Multiplication follows the GL convention: a.Mul4(b) applies b first, then a.

// Identity returns the identity matrix.
func Identity() mgl32.Mat4 {
	return mgl32.Ident4()
}

// Translate returns a translation matrix.
func Translate(offset mgl32.Vec3) mgl32.Mat4 {
	return mgl32.Translate3D(offset.X(), offset.Y(), offset.Z())
}

// RotateDegrees returns a rotation of degrees about a single axis.
func RotateDegrees(axis Axis, degrees float32) mgl32.Mat4 {
	rad := mgl32.DegToRad(degrees)
	switch axis {
	case AxisX:
		return mgl32.HomogRotate3DX(rad)
	case AxisY:
		return mgl32.HomogRotate3DY(rad)
	default:
		return mgl32.HomogRotate3DZ(rad)
	}
}

// RotateAngles composes Rx * Ry * Rz, so Z is applied to the geometry first.
func RotateAngles(a Angles) mgl32.Mat4 {
	return RotateDegrees(AxisX, a.X()).
		Mul4(RotateDegrees(AxisY, a.Y())).
		Mul4(RotateDegrees(AxisZ, a.Z()))
}

// LocalTransform returns T(offset) * R(angles), a node's transform relative to its parent.
func LocalTransform(offset mgl32.Vec3, a Angles) mgl32.Mat4 {
	return Translate(offset).Mul4(RotateAngles(a))
}

// TransformPoint applies the matrix to a point.
func TransformPoint(m mgl32.Mat4, p mgl32.Vec3) mgl32.Vec3 {
	return mgl32.TransformCoordinate(p, m)
}

// ToSlice returns the matrix as a float32 slice for JSON serialization.
func ToSlice(m mgl32.Mat4) []float32 {
	out := make([]float32, 16)
	copy(out, m[:])
	return out
}

// FromSlice rebuilds a matrix serialized by ToSlice. Short input yields identity.
func FromSlice(s []float32) mgl32.Mat4 {
	if len(s) < 16 {
		return Identity()
	}
	var m mgl32.Mat4
	copy(m[:], s[:16])
	return m
}

// IsIdentity checks if m is the identity matrix (within epsilon).
func IsIdentity(m mgl32.Mat4) bool {
	return ApproxEqual(m, mgl32.Ident4(), 1e-6)
}

// ApproxEqual compares two matrices element-wise.
func ApproxEqual(a, b mgl32.Mat4, eps float64) bool {
	for i := range a {
		if math.Abs(float64(a[i]-b[i])) > eps {
			return false
		}
	}
	return true
}
