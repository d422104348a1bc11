package engine

import (
	"errors"
	"fmt"
	"slices"
)

var (
	ErrUnknownJoint = errors.New("unknown joint")
	ErrUnknownPose  = errors.New("unknown pose")
)

// Joint identifies a posable joint shared between rig construction and the
// pose library. Several nodes may carry the same joint (one per side).
type Joint int

const (
	JointNone Joint = iota
	JointPinkyProximal
	JointPinkyMiddle
	JointPinkyDistal
	JointRingProximal
	JointRingMiddle
	JointRingDistal
	JointMiddleProximal
	JointMiddleMiddle
	JointMiddleDistal
	JointIndexProximal
	JointIndexMiddle
	JointIndexDistal
	JointClaw
	JointClawMiddle
	jointCount
)

var jointNames = [jointCount]string{
	JointNone:           "none",
	JointPinkyProximal:  "pinky-proximal",
	JointPinkyMiddle:    "pinky-middle",
	JointPinkyDistal:    "pinky-distal",
	JointRingProximal:   "ring-proximal",
	JointRingMiddle:     "ring-middle",
	JointRingDistal:     "ring-distal",
	JointMiddleProximal: "middle-proximal",
	JointMiddleMiddle:   "middle-middle",
	JointMiddleDistal:   "middle-distal",
	JointIndexProximal:  "index-proximal",
	JointIndexMiddle:    "index-middle",
	JointIndexDistal:    "index-distal",
	JointClaw:           "claw",
	JointClawMiddle:     "claw-middle",
}

// Joints lists every posable joint (JointNone excluded).
func Joints() []Joint {
	out := make([]Joint, 0, jointCount-1)
	for j := JointNone + 1; j < jointCount; j++ {
		out = append(out, j)
	}
	return out
}

func (j Joint) String() string {
	if j < 0 || j >= jointCount {
		return fmt.Sprintf("joint(%d)", int(j))
	}
	return jointNames[j]
}

// ParseJoint resolves a joint name. JointNone is not addressable.
func ParseJoint(name string) (Joint, error) {
	for j := JointNone + 1; j < jointCount; j++ {
		if jointNames[j] == name {
			return j, nil
		}
	}
	return JointNone, fmt.Errorf("%w: %q", ErrUnknownJoint, name)
}

// MarshalText implements encoding.TextMarshaler.
func (j Joint) MarshalText() ([]byte, error) {
	return []byte(j.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (j *Joint) UnmarshalText(text []byte) error {
	parsed, err := ParseJoint(string(text))
	if err != nil {
		return err
	}
	*j = parsed
	return nil
}

// Mirror maps a pose authored for one side onto a structurally mirrored node.
type Mirror int

const (
	// MirrorNone stores angles unchanged.
	MirrorNone Mirror = iota
	// MirrorReverse serves limbs turned 180 degrees about Y: (-x, -180-y, z).
	MirrorReverse
	// MirrorClaw serves the claw facing the other way about X: (180-x, y, z).
	MirrorClaw
)

func (m Mirror) String() string {
	switch m {
	case MirrorNone:
		return "none"
	case MirrorReverse:
		return "reverse"
	case MirrorClaw:
		return "claw"
	}
	return fmt.Sprintf("mirror(%d)", int(m))
}

// Apply transforms angles authored for the unmirrored side.
func (m Mirror) Apply(a Angles) Angles {
	switch m {
	case MirrorReverse:
		return NewAngles(-a.X(), -180-a.Y(), a.Z())
	case MirrorClaw:
		return NewAngles(180-a.X(), a.Y(), a.Z())
	}
	return a
}

// Pose is an immutable named snapshot of absolute joint angles.
type Pose struct {
	name   string
	angles map[Joint]Angles
}

// NewPose copies angles into a new snapshot.
func NewPose(name string, angles map[Joint]Angles) Pose {
	cp := make(map[Joint]Angles, len(angles))
	for j, a := range angles {
		cp[j] = a
	}
	return Pose{name: name, angles: cp}
}

// Name returns the snapshot name.
func (p Pose) Name() string { return p.name }

// Len returns the number of joints in the snapshot.
func (p Pose) Len() int { return len(p.angles) }

// Angles returns the angles of j and whether the snapshot sets it.
func (p Pose) Angles(j Joint) (Angles, bool) {
	a, ok := p.angles[j]
	return a, ok
}

// Joints returns the joints present in the snapshot in enumeration order.
func (p Pose) Joints() []Joint {
	out := make([]Joint, 0, len(p.angles))
	for j := range p.angles {
		out = append(out, j)
	}
	slices.Sort(out)
	return out
}

// Cycle steps through a fixed list with wrap-around. The first Next returns
// the first element.
type Cycle[T any] struct {
	items []T
	next  int
}

// NewCycle creates a cycle over a copy of items.
func NewCycle[T any](items ...T) *Cycle[T] {
	return &Cycle[T]{items: slices.Clone(items)}
}

// Len returns the number of items.
func (c *Cycle[T]) Len() int { return len(c.items) }

// Next returns the item after the last one returned. It panics on an empty cycle.
func (c *Cycle[T]) Next() T {
	item := c.items[c.next]
	c.next = (c.next + 1) % len(c.items)
	return item
}

// At returns item i.
func (c *Cycle[T]) At(i int) T { return c.items[i] }

// PoseLibrary is the ordered, fixed set of poses built once at startup. One
// base pose is always addressable regardless of the cycle position.
type PoseLibrary struct {
	cycle  *Cycle[Pose]
	byName map[string]int
	base   Pose
}

// NewPoseLibrary builds a library. The base pose must be one of poses and
// names must be unique.
func NewPoseLibrary(base string, poses ...Pose) (*PoseLibrary, error) {
	if len(poses) == 0 {
		return nil, errors.New("pose library is empty")
	}
	byName := make(map[string]int, len(poses))
	for i, p := range poses {
		if _, dup := byName[p.name]; dup {
			return nil, fmt.Errorf("duplicate pose %q", p.name)
		}
		byName[p.name] = i
	}
	i, ok := byName[base]
	if !ok {
		return nil, fmt.Errorf("base pose %q: %w", base, ErrUnknownPose)
	}
	return &PoseLibrary{
		cycle:  NewCycle(poses...),
		byName: byName,
		base:   poses[i],
	}, nil
}

// Next returns the pose following the last one returned, wrapping around.
func (l *PoseLibrary) Next() Pose {
	return l.cycle.Next()
}

// Stop returns the base pose.
func (l *PoseLibrary) Stop() Pose {
	return l.base
}

// Get returns a pose by name.
func (l *PoseLibrary) Get(name string) (Pose, error) {
	i, ok := l.byName[name]
	if !ok {
		return Pose{}, fmt.Errorf("%w: %q", ErrUnknownPose, name)
	}
	return l.cycle.At(i), nil
}

// Len returns the number of poses.
func (l *PoseLibrary) Len() int {
	return l.cycle.Len()
}

// Names returns the pose names in cycle order.
func (l *PoseLibrary) Names() []string {
	out := make([]string, l.cycle.Len())
	for i := range out {
		out[i] = l.cycle.At(i).name
	}
	return out
}
