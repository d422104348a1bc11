package engine

import (
	"fmt"
	"strings"
)

// Axis identifies one of the three local rotation axes of a node.
type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

// Axes lists every axis in rotation order.
var Axes = [3]Axis{AxisX, AxisY, AxisZ}

// String returns the lower-case axis name.
func (a Axis) String() string {
	switch a {
	case AxisX:
		return "x"
	case AxisY:
		return "y"
	case AxisZ:
		return "z"
	}
	return fmt.Sprintf("axis(%d)", int(a))
}

// Valid reports whether a is one of X, Y or Z.
func (a Axis) Valid() bool {
	return a >= AxisX && a <= AxisZ
}

// ParseAxis parses "x", "y" or "z" (case-insensitive).
func ParseAxis(s string) (Axis, error) {
	switch strings.ToLower(s) {
	case "x":
		return AxisX, nil
	case "y":
		return AxisY, nil
	case "z":
		return AxisZ, nil
	}
	return 0, fmt.Errorf("unknown axis %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (a Axis) MarshalText() ([]byte, error) {
	if !a.Valid() {
		return nil, fmt.Errorf("invalid axis %d", int(a))
	}
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Axis) UnmarshalText(text []byte) error {
	parsed, err := ParseAxis(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// Angles is an immutable triple of per-axis rotations in degrees.
type Angles struct {
	v [3]float32
}

// NewAngles creates an angle triple.
func NewAngles(x, y, z float32) Angles {
	return Angles{v: [3]float32{x, y, z}}
}

// X returns the rotation about the X axis.
func (a Angles) X() float32 { return a.v[AxisX] }

// Y returns the rotation about the Y axis.
func (a Angles) Y() float32 { return a.v[AxisY] }

// Z returns the rotation about the Z axis.
func (a Angles) Z() float32 { return a.v[AxisZ] }

// Get returns the rotation about axis.
func (a Angles) Get(axis Axis) float32 {
	return a.v[axis]
}

// With returns a copy of a with axis replaced by v.
func (a Angles) With(axis Axis, v float32) Angles {
	a.v[axis] = v
	return a
}

// Array returns the angles as [x, y, z].
func (a Angles) Array() [3]float32 {
	return a.v
}

func (a Angles) String() string {
	return fmt.Sprintf("(%g, %g, %g)", a.v[0], a.v[1], a.v[2])
}

// Limits holds the legal [min, max] range of a node's rotation on each axis.
// A range of (0, 0) freezes that axis.
type Limits struct {
	Min Angles
	Max Angles
}

// NewLimits builds limits from per-axis ranges.
func NewLimits(xMin, xMax, yMin, yMax, zMin, zMax float32) Limits {
	return Limits{
		Min: NewAngles(xMin, yMin, zMin),
		Max: NewAngles(xMax, yMax, zMax),
	}
}

// Frozen reports whether axis cannot move at all.
func (l Limits) Frozen(axis Axis) bool {
	return l.Min.Get(axis) == l.Max.Get(axis)
}

// Clamp saturates v into the range of axis.
func (l Limits) Clamp(axis Axis, v float32) float32 {
	return min(max(v, l.Min.Get(axis)), l.Max.Get(axis))
}

// Contains reports whether every component of a lies inside its range.
func (l Limits) Contains(a Angles) bool {
	for _, axis := range Axes {
		v := a.Get(axis)
		if v < l.Min.Get(axis) || v > l.Max.Get(axis) {
			return false
		}
	}
	return true
}
