package engine

import (
	"fmt"
	"log/slog"
)

// Rig is an assembled body: the scene graph plus the non-owning indexes the
// controller needs to address parts of it.
type Rig struct {
	Graph *SceneGraph

	// Legs holds the left side's legs followed by the right side's.
	Legs        []Leg
	LegsPerSide int

	// Parts are nodes selectable by name (bodies, eyes).
	Parts     map[string]NodeID
	PartOrder []string

	// Eyes follow the pointer on LookAt.
	Eyes []NodeID
}

// Options tunes the controller.
type Options struct {
	RotationStep float32 // degrees per rotate intent
	ViewStep     float32 // degrees per drag sample
	Logger       *slog.Logger
}

// DefaultOptions returns the stock step sizes.
func DefaultOptions() Options {
	return Options{
		RotationStep: 2,
		ViewStep:     1,
	}
}

// Side selects which half of the legs the leg slots address.
type Side int

const (
	SideLeft Side = iota
	SideRight
)

func (s Side) String() string {
	if s == SideRight {
		return "right"
	}
	return "left"
}

// Engine is the single controller that owns the rig, the selection, the
// current rotation axis, the view rotation and the pose library.
// It is not safe for concurrent use: one goroutine drives it.
type Engine struct {
	rig       *Rig
	graph     *SceneGraph
	selection *Selection
	view      *ViewRotation
	poses     *PoseLibrary
	log       *slog.Logger

	axis         Axis
	side         Side
	rotationStep float32
	pose         string

	// Drag state
	dragging     bool
	lastX, lastY int

	// version bumps on every visible change so observers can skip identical frames
	version uint64
}

// NewEngine creates a controller and performs the initial transform update so
// the first Frame never draws stale caches.
func NewEngine(rig *Rig, poses *PoseLibrary, opts Options) *Engine {
	if opts.RotationStep == 0 {
		opts.RotationStep = DefaultOptions().RotationStep
	}
	if opts.ViewStep == 0 {
		opts.ViewStep = DefaultOptions().ViewStep
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	e := &Engine{
		rig:          rig,
		graph:        rig.Graph,
		selection:    NewSelection(),
		view:         NewViewRotation(opts.ViewStep),
		poses:        poses,
		log:          logger,
		axis:         AxisZ,
		rotationStep: opts.RotationStep,
		version:      1,
	}
	e.graph.Update()
	return e
}

// --- Commands ---

// RotateSelection turns every selected node by sign * step on the current axis.
func (e *Engine) RotateSelection(sign int) {
	delta := float32(sign) * e.rotationStep
	for _, id := range e.selection.Nodes() {
		e.graph.Rotate(id, e.axis, delta)
	}
	e.touch()
}

// SetAxis changes the shared rotation axis.
func (e *Engine) SetAxis(axis Axis) error {
	if !axis.Valid() {
		return fmt.Errorf("%w: axis %d", ErrInvalidIntent, int(axis))
	}
	e.axis = axis
	e.touch()
	return nil
}

// ToggleSide flips which side the leg slots address.
func (e *Engine) ToggleSide() {
	if e.side == SideLeft {
		e.side = SideRight
	} else {
		e.side = SideLeft
	}
	e.touch()
}

// ToggleLeg toggles the leg in slot (0-based) on the current side.
func (e *Engine) ToggleLeg(slot int) error {
	if slot < 0 || slot >= e.rig.LegsPerSide {
		return fmt.Errorf("%w: leg slot %d", ErrInvalidIntent, slot)
	}
	i := slot + int(e.side)*e.rig.LegsPerSide
	if i >= len(e.rig.Legs) {
		return fmt.Errorf("%w: leg %d", ErrInvalidIntent, i)
	}
	e.selection.ToggleLeg(e.graph, i, e.rig.Legs[i])
	e.touch()
	return nil
}

// ToggleLegPart toggles one segment in every selected leg.
func (e *Engine) ToggleLegPart(part LegPart) {
	for _, i := range e.selection.Legs() {
		e.selection.ToggleNode(e.graph, e.rig.Legs[i].Part(part))
	}
	e.touch()
}

// TogglePart toggles a named part such as a body segment or an eye.
func (e *Engine) TogglePart(name string) error {
	id, ok := e.rig.Parts[name]
	if !ok {
		return fmt.Errorf("%w: part %q", ErrInvalidIntent, name)
	}
	e.selection.ToggleNode(e.graph, id)
	e.touch()
	return nil
}

// NextPose applies the next pose of the library and returns its name.
func (e *Engine) NextPose() string {
	p := e.poses.Next()
	e.ApplyPose(p)
	return p.Name()
}

// ResetPose applies the base pose.
func (e *Engine) ResetPose() {
	e.ApplyPose(e.poses.Stop())
}

// ApplyPose overwrites every bound joint present in p. Joints absent from p
// keep their angles. Values are not clamped.
func (e *Engine) ApplyPose(p Pose) {
	applied := 0
	e.graph.Walk(func(id NodeID, _ int) {
		n := e.graph.Node(id)
		if n.Joint() == JointNone {
			return
		}
		a, ok := p.Angles(n.Joint())
		if !ok {
			return
		}
		e.graph.SetAngles(id, a)
		applied++
		if stored := e.graph.Node(id).Angles(); !n.Limits().Contains(stored) {
			e.log.Debug("pose outside limits", "pose", p.Name(), "node", n.Name(), "angles", stored.String())
		}
	})
	e.pose = p.Name()
	e.touch()
	e.log.Debug("pose applied", "pose", p.Name(), "joints", applied)
}

// ResetView returns the view rotation to identity.
func (e *Engine) ResetView() {
	e.view.Reset()
	e.touch()
}

// SetView replaces the view rotation, e.g. to render a copy of another view.
func (e *Engine) SetView(q Quaternion) {
	e.view.Set(q)
	e.touch()
}

// BeginDrag starts rotating the view from pointer position (x, y).
func (e *Engine) BeginDrag(x, y int) {
	e.dragging = true
	e.lastX, e.lastY = x, y
}

// DragTo rotates the view by one sample toward (x, y) if a drag is active.
func (e *Engine) DragTo(x, y int) {
	if !e.dragging {
		return
	}
	e.Drag(x-e.lastX, y-e.lastY)
	e.lastX, e.lastY = x, y
}

// EndDrag stops rotating the view.
func (e *Engine) EndDrag() {
	e.dragging = false
}

// Dragging reports whether a view drag is active.
func (e *Engine) Dragging() bool {
	return e.dragging
}

// Drag applies one drag sample of (dx, dy) pixels to the view rotation.
func (e *Engine) Drag(dx, dy int) {
	e.view.Drag(dx, dy)
	e.touch()
}

// LookAt points the eyes at pointer (x, y) in a width x height viewport.
func (e *Engine) LookAt(x, y, width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: viewport %dx%d", ErrInvalidIntent, width, height)
	}
	hw, hh := float32(width)/2, float32(height)/2
	pitch := (float32(y) - hh) / hh * 90
	yaw := (float32(x) - hw) / hw * 90
	for _, id := range e.rig.Eyes {
		l := e.graph.Node(id).Limits()
		e.graph.SetAngles(id, NewAngles(l.Clamp(AxisX, pitch), l.Clamp(AxisY, yaw), 0))
	}
	e.touch()
	return nil
}

// --- Frame ---

// Update recomputes world transforms if anything moved.
func (e *Engine) Update() {
	if e.graph.Dirty() {
		e.graph.Update()
	}
}

// Frame updates if dirty, then draws the rig under the view rotation.
func (e *Engine) Frame(r Renderer) {
	e.Update()
	e.graph.Draw(r, e.view.Matrix())
}

// Compile returns the current frame as draw commands.
func (e *Engine) Compile() []DrawCommand {
	var buf CommandBuffer
	e.Frame(&buf)
	return buf.Commands
}

// --- Queries ---

// JointState describes one node for debugging dumps.
type JointState struct {
	ID       NodeID     `json:"id"`
	Name     string     `json:"name"`
	Depth    int        `json:"depth"`
	Angles   [3]float32 `json:"angles"`
	Selected bool       `json:"selected"`
}

// Joints lists every node top-down with its current angles.
func (e *Engine) Joints() []JointState {
	out := make([]JointState, 0, e.graph.Len())
	e.graph.Walk(func(id NodeID, depth int) {
		n := e.graph.Node(id)
		out = append(out, JointState{
			ID:       id,
			Name:     n.Name(),
			Depth:    depth,
			Angles:   n.Angles().Array(),
			Selected: e.selection.NodeSelected(id),
		})
	})
	return out
}

// State is a summary of the controller for clients and status lines.
type State struct {
	Version  uint64     `json:"version"`
	Axis     Axis       `json:"axis"`
	Side     string     `json:"side"`
	Pose     string     `json:"pose,omitempty"`
	Poses    []string   `json:"poses"`
	Selected []string   `json:"selected"`
	Legs     []int      `json:"legs"`
	View     [4]float32 `json:"view"` // w, x, y, z
}

// State returns a snapshot of the controller state.
func (e *Engine) State() State {
	selected := make([]string, 0)
	for _, id := range e.selection.Nodes() {
		selected = append(selected, e.graph.Node(id).Name())
	}
	legs := append(make([]int, 0), e.selection.Legs()...)
	q := e.view.Quaternion()
	return State{
		Version:  e.version,
		Axis:     e.axis,
		Side:     e.side.String(),
		Pose:     e.pose,
		Poses:    e.poses.Names(),
		Selected: selected,
		Legs:     legs,
		View:     [4]float32{q.W(), q.X(), q.Y(), q.Z()},
	}
}

// Axis returns the current rotation axis.
func (e *Engine) Axis() Axis { return e.axis }

// Side returns the side the leg slots address.
func (e *Engine) Side() Side { return e.side }

// Pose returns the name of the last applied pose.
func (e *Engine) Pose() string { return e.pose }

// View returns the current view rotation.
func (e *Engine) View() Quaternion { return e.view.Quaternion() }

// Graph returns the rig's scene graph.
func (e *Engine) Graph() *SceneGraph { return e.graph }

// Rig returns the assembled rig.
func (e *Engine) Rig() *Rig { return e.rig }

// Selection returns the selection model.
func (e *Engine) Selection() *Selection { return e.selection }

// Poses returns the pose library.
func (e *Engine) Poses() *PoseLibrary { return e.poses }

// Version increases on every change.
func (e *Engine) Version() uint64 { return e.version }

func (e *Engine) touch() {
	e.version++
}
