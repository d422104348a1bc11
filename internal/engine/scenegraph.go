package engine

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// NodeID is a stable handle to a node in a SceneGraph arena.
type NodeID int

// NoNode is the parent of the root and of detached nodes.
const NoNode NodeID = -1

// Primitive is the opaque drawable attached to a node. The engine never looks
// inside it; renderers switch on the concrete type.
type Primitive interface {
	Kind() string
}

// DrawCall is a single primitive emission.
type DrawCall struct {
	Node      NodeID
	Name      string
	Primitive Primitive
	World     mgl32.Mat4
	Color     Color
}

// Renderer receives one DrawCall per drawable node per frame, in child-list order.
type Renderer interface {
	DrawPrimitive(call DrawCall)
}

// RendererFunc adapts a function to the Renderer interface.
type RendererFunc func(call DrawCall)

// DrawPrimitive calls f(call).
func (f RendererFunc) DrawPrimitive(call DrawCall) { f(call) }

// NodeSpec describes a node at construction time.
type NodeSpec struct {
	Name      string
	Offset    mgl32.Vec3
	Primitive Primitive // nil for pure pivots
	Limits    Limits
	Angles    Angles // initial rotation, stored as given
	Joint     Joint  // pose binding, JointNone if unbound
	Mirror    Mirror
}

// Node is a rigid segment of the rig. Its fields are read through accessors;
// every mutation goes through the owning SceneGraph so the dirty flag stays honest.
type Node struct {
	name      string
	offset    mgl32.Vec3
	angles    Angles
	limits    Limits
	world     mgl32.Mat4
	color     Color
	primitive Primitive
	joint     Joint
	mirror    Mirror

	parent   NodeID
	children []NodeID
}

func (n *Node) Name() string         { return n.name }
func (n *Node) Offset() mgl32.Vec3   { return n.offset }
func (n *Node) Angles() Angles       { return n.angles }
func (n *Node) Limits() Limits       { return n.limits }
func (n *Node) World() mgl32.Mat4    { return n.world }
func (n *Node) Color() Color         { return n.color }
func (n *Node) Primitive() Primitive { return n.primitive }
func (n *Node) Joint() Joint         { return n.joint }
func (n *Node) Mirror() Mirror       { return n.mirror }
func (n *Node) Parent() NodeID       { return n.parent }
func (n *Node) Children() []NodeID   { return n.children }

func (n *Node) String() string {
	return fmt.Sprintf("%s %s", n.name, n.angles)
}

// SceneGraph is the retained transform hierarchy. The first node added is the root.
//
// Cached world transforms are only valid after Update. Any rotation change sets
// the dirty flag; Update always recomputes the whole tree from the root since
// an ancestor's pose moves every descendant.
type SceneGraph struct {
	nodes  []Node
	byName map[string]NodeID
	dirty  bool
}

// NewSceneGraph creates a scene graph whose root is built from spec.
func NewSceneGraph(root NodeSpec) *SceneGraph {
	g := &SceneGraph{
		byName: make(map[string]NodeID),
		dirty:  true,
	}
	g.Add(root)
	return g
}

// Add creates a detached node and returns its handle. Names must be unique.
func (g *SceneGraph) Add(spec NodeSpec) NodeID {
	if _, dup := g.byName[spec.Name]; dup {
		panic(fmt.Sprintf("engine: duplicate node name %q", spec.Name))
	}
	id := NodeID(len(g.nodes))
	g.nodes = append(g.nodes, Node{
		name:      spec.Name,
		offset:    spec.Offset,
		angles:    spec.Angles,
		limits:    spec.Limits,
		world:     Identity(),
		color:     InactiveColor,
		primitive: spec.Primitive,
		joint:     spec.Joint,
		mirror:    spec.Mirror,
		parent:    NoNode,
	})
	g.byName[spec.Name] = id
	g.dirty = true
	return id
}

// AddChild attaches child (and its subtree) under parent. A node can be
// attached exactly once and the root can never be a child, which keeps the
// hierarchy acyclic without a cycle check.
func (g *SceneGraph) AddChild(parent, child NodeID) {
	if child == g.Root() {
		panic("engine: root cannot be a child")
	}
	if parent == child {
		panic(fmt.Sprintf("engine: node %q cannot own itself", g.nodes[child].name))
	}
	c := &g.nodes[child]
	if c.parent != NoNode {
		panic(fmt.Sprintf("engine: node %q already owned by %q", c.name, g.nodes[c.parent].name))
	}
	c.parent = parent
	g.nodes[parent].children = append(g.nodes[parent].children, child)
	g.dirty = true
}

// AddChildren attaches children under parent in order.
func (g *SceneGraph) AddChildren(parent NodeID, children ...NodeID) {
	for _, child := range children {
		g.AddChild(parent, child)
	}
}

// Root returns the root handle.
func (g *SceneGraph) Root() NodeID {
	return 0
}

// Len returns the number of nodes.
func (g *SceneGraph) Len() int {
	return len(g.nodes)
}

// Node returns the node for id. The pointer is valid until the next Add.
func (g *SceneGraph) Node(id NodeID) *Node {
	return &g.nodes[id]
}

// Find looks a node up by name.
func (g *SceneGraph) Find(name string) (NodeID, bool) {
	id, ok := g.byName[name]
	return id, ok
}

// Dirty reports whether cached world transforms are stale.
func (g *SceneGraph) Dirty() bool {
	return g.dirty
}

// MarkDirty forces the next Update.
func (g *SceneGraph) MarkDirty() {
	g.dirty = true
}

// Rotate adds delta degrees to the node's rotation on axis and clamps the
// result into the node's limits. Rotating past a limit saturates silently.
func (g *SceneGraph) Rotate(id NodeID, axis Axis, delta float32) {
	if delta == 0 {
		return
	}
	n := &g.nodes[id]
	v := n.limits.Clamp(axis, n.angles.Get(axis)+delta)
	n.angles = n.angles.With(axis, v)
	g.dirty = true
}

// SetAngles overwrites the node's rotation with a, passed through the node's
// mirror. Limits are not re-checked.
func (g *SceneGraph) SetAngles(id NodeID, a Angles) {
	n := &g.nodes[id]
	n.angles = n.mirror.Apply(a)
	g.dirty = true
}

// SetColor changes the display color of a node.
func (g *SceneGraph) SetColor(id NodeID, c Color) {
	n := &g.nodes[id]
	if n.color == c {
		return
	}
	n.color = c
	g.dirty = true
}

// Update recomputes every world transform top-down from the root and clears
// the dirty flag.
func (g *SceneGraph) Update() {
	g.update(g.Root(), Identity())
	g.dirty = false
}

func (g *SceneGraph) update(id NodeID, parentWorld mgl32.Mat4) {
	n := &g.nodes[id]
	n.world = parentWorld.Mul4(LocalTransform(n.offset, n.angles))
	for _, child := range n.children {
		g.update(child, n.world)
	}
}

// Draw emits one DrawCall per node with a primitive, top-down in child-list
// order, using outer * cached world transform. Call Update first.
func (g *SceneGraph) Draw(r Renderer, outer mgl32.Mat4) {
	g.draw(g.Root(), r, outer)
}

func (g *SceneGraph) draw(id NodeID, r Renderer, outer mgl32.Mat4) {
	n := &g.nodes[id]
	if n.primitive != nil {
		r.DrawPrimitive(DrawCall{
			Node:      id,
			Name:      n.name,
			Primitive: n.primitive,
			World:     outer.Mul4(n.world),
			Color:     n.color,
		})
	}
	for _, child := range n.children {
		g.draw(child, r, outer)
	}
}

// Walk visits every attached node top-down in child-list order.
func (g *SceneGraph) Walk(fn func(id NodeID, depth int)) {
	g.walk(g.Root(), 0, fn)
}

func (g *SceneGraph) walk(id NodeID, depth int, fn func(NodeID, int)) {
	fn(id, depth)
	for _, child := range g.nodes[id].children {
		g.walk(child, depth+1, fn)
	}
}
