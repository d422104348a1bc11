package engine

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Quaternion is a rotation in four parameters, used for the unconstrained
// view rotation. The zero value is not a rotation; use NewQuaternion.
type Quaternion struct {
	q mgl32.Quat
}

// NewQuaternion returns the identity rotation.
func NewQuaternion() Quaternion {
	return Quaternion{q: mgl32.QuatIdent()}
}

// QuaternionFrom builds a quaternion from raw components (not normalized).
func QuaternionFrom(w, x, y, z float32) Quaternion {
	return Quaternion{q: mgl32.Quat{W: w, V: mgl32.Vec3{x, y, z}}}
}

// AxisAngle builds the rotation of degrees about a unit axis from the
// half-angle sine and cosine.
func AxisAngle(axis mgl32.Vec3, degrees float32) Quaternion {
	half := float64(mgl32.DegToRad(degrees)) / 2
	s := float32(math.Sin(half))
	c := float32(math.Cos(half))
	return QuaternionFrom(c, s*axis.X(), s*axis.Y(), s*axis.Z())
}

// DragAxis returns the screen-space axis perpendicular to a drag of (dx, dy)
// pixels: normalize(dy, dx, 0), or (1, 0, 0) for a zero drag.
func DragAxis(dx, dy int) mgl32.Vec3 {
	magnitude := math.Sqrt(float64(dx*dx + dy*dy))
	if magnitude == 0 {
		return mgl32.Vec3{1, 0, 0}
	}
	return mgl32.Vec3{float32(float64(dy) / magnitude), float32(float64(dx) / magnitude), 0}
}

// DragRotation is the incremental rotation for one drag sample. The drag only
// picks the axis; every sample turns by the same stepDegrees.
func DragRotation(dx, dy int, stepDegrees float32) Quaternion {
	return AxisAngle(DragAxis(dx, dy), stepDegrees)
}

// W returns the scalar part.
func (q Quaternion) W() float32 { return q.q.W }

// X returns the first vector component.
func (q Quaternion) X() float32 { return q.q.V.X() }

// Y returns the second vector component.
func (q Quaternion) Y() float32 { return q.q.V.Y() }

// Z returns the third vector component.
func (q Quaternion) Z() float32 { return q.q.V.Z() }

// Multiply returns the Hamilton product q * other, which applies other first.
func (q Quaternion) Multiply(other Quaternion) Quaternion {
	return Quaternion{q: q.q.Mul(other.q)}
}

// Normalize rescales q to unit length to counter round-off drift.
func (q *Quaternion) Normalize() {
	q.q = q.q.Normalize()
}

// Reset returns q to the identity rotation.
func (q *Quaternion) Reset() {
	q.q = mgl32.QuatIdent()
}

// Len returns the magnitude of q.
func (q Quaternion) Len() float32 {
	return q.q.Len()
}

// IsIdentity reports whether q is the identity rotation (within epsilon).
func (q Quaternion) IsIdentity() bool {
	const eps = 1e-6
	return math.Abs(float64(q.q.W-1)) < eps &&
		math.Abs(float64(q.q.V.X())) < eps &&
		math.Abs(float64(q.q.V.Y())) < eps &&
		math.Abs(float64(q.q.V.Z())) < eps
}

// Matrix returns the column-major 4x4 rotation matrix of q.
func (q Quaternion) Matrix() mgl32.Mat4 {
	return q.q.Mat4()
}

// ViewRotation accumulates drag samples into a single world rotation.
type ViewRotation struct {
	current     Quaternion
	stepDegrees float32
}

// NewViewRotation creates an identity view rotation turning stepDegrees per drag sample.
func NewViewRotation(stepDegrees float32) *ViewRotation {
	return &ViewRotation{current: NewQuaternion(), stepDegrees: stepDegrees}
}

// Drag pre-composes the increment for (dx, dy) onto the current rotation and
// renormalizes.
func (v *ViewRotation) Drag(dx, dy int) {
	v.current = DragRotation(dx, dy, v.stepDegrees).Multiply(v.current)
	v.current.Normalize()
}

// Reset returns the view to the identity rotation.
func (v *ViewRotation) Reset() {
	v.current.Reset()
}

// Set replaces the current rotation with q, normalized.
func (v *ViewRotation) Set(q Quaternion) {
	v.current = q
	v.current.Normalize()
}

// Quaternion returns the current rotation.
func (v *ViewRotation) Quaternion() Quaternion {
	return v.current
}

// Matrix returns the current rotation as the outermost scene transform.
func (v *ViewRotation) Matrix() mgl32.Mat4 {
	return v.current.Matrix()
}
