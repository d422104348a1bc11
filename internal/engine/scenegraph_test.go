package engine

import (
	"math/rand/v2"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

type box struct{}

func (box) Kind() string { return "box" }

// newChain builds root -> body -> arm -> hand, each with a box except the root.
func newChain() (*SceneGraph, []NodeID) {
	g := NewSceneGraph(NodeSpec{Name: "root"})
	body := g.Add(NodeSpec{
		Name:      "body",
		Offset:    mgl32.Vec3{1, 0, 0},
		Primitive: box{},
		Limits:    NewLimits(0, 100, -45, 45, 0, 0),
	})
	arm := g.Add(NodeSpec{
		Name:      "arm",
		Offset:    mgl32.Vec3{0, 0, 2},
		Primitive: box{},
		Limits:    NewLimits(-90, 90, -90, 90, -90, 90),
		Angles:    NewAngles(10, 20, 30),
	})
	hand := g.Add(NodeSpec{
		Name:      "hand",
		Offset:    mgl32.Vec3{0, 0.5, 1},
		Primitive: box{},
		Limits:    NewLimits(-30, 30, 0, 0, 0, 0),
	})
	g.AddChild(g.Root(), body)
	g.AddChild(body, arm)
	g.AddChild(arm, hand)
	return g, []NodeID{body, arm, hand}
}

func TestRotateClampScenario(t *testing.T) {
	g, ids := newChain()
	body := ids[0]

	g.SetAngles(body, NewAngles(95, 0, 0))
	g.Rotate(body, AxisX, 10)
	if got := g.Node(body).Angles().X(); got != 100 {
		t.Errorf("after +10: X = %v, want 100", got)
	}
	g.Rotate(body, AxisX, -200)
	if got := g.Node(body).Angles().X(); got != 0 {
		t.Errorf("after -200: X = %v, want 0", got)
	}
}

func TestRotateStaysWithinLimits(t *testing.T) {
	g, ids := newChain()
	rng := rand.New(rand.NewPCG(1, 2))

	for i := 0; i < 2000; i++ {
		id := ids[rng.IntN(len(ids))]
		axis := Axes[rng.IntN(3)]
		delta := float32(rng.IntN(41) - 20)
		g.Rotate(id, axis, delta)

		n := g.Node(id)
		if !n.Limits().Contains(n.Angles()) {
			t.Fatalf("step %d: %s rotated out of limits: %s", i, n.Name(), n.Angles())
		}
	}
}

func TestRotateInverse(t *testing.T) {
	tests := []struct {
		name  string
		start float32
		delta float32
		want  float32
	}{
		{"inside", 40, 10, 40},
		{"to max", 90, 10, 90},
		{"past max", 95, 10, 90},
		{"past min", 5, -10, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, ids := newChain()
			body := ids[0]
			g.SetAngles(body, NewAngles(tt.start, 0, 0))
			g.Rotate(body, AxisX, tt.delta)
			g.Rotate(body, AxisX, -tt.delta)
			if got := g.Node(body).Angles().X(); got != tt.want {
				t.Errorf("X = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRotateFrozenAxis(t *testing.T) {
	g, ids := newChain()
	g.Rotate(ids[0], AxisZ, 15)
	if got := g.Node(ids[0]).Angles().Z(); got != 0 {
		t.Errorf("frozen Z = %v, want 0", got)
	}
}

func TestDirtyFlag(t *testing.T) {
	g, ids := newChain()
	if !g.Dirty() {
		t.Fatal("new graph should be dirty")
	}
	g.Update()
	if g.Dirty() {
		t.Fatal("Update should clear dirty")
	}

	g.Rotate(ids[1], AxisX, 0)
	if g.Dirty() {
		t.Error("zero rotation marked dirty")
	}
	g.SetColor(ids[1], InactiveColor)
	if g.Dirty() {
		t.Error("unchanged color marked dirty")
	}
	g.Rotate(ids[1], AxisX, 5)
	if !g.Dirty() {
		t.Error("rotation did not mark dirty")
	}
}

func TestUpdateMatchesComposition(t *testing.T) {
	g, ids := newChain()
	g.Rotate(ids[0], AxisX, 30)
	g.Rotate(ids[0], AxisY, -20)
	g.Rotate(ids[2], AxisX, 15)
	g.Update()

	local := func(id NodeID) mgl32.Mat4 {
		n := g.Node(id)
		a := n.Angles()
		return mgl32.Translate3D(n.Offset().X(), n.Offset().Y(), n.Offset().Z()).
			Mul4(mgl32.HomogRotate3DX(mgl32.DegToRad(a.X()))).
			Mul4(mgl32.HomogRotate3DY(mgl32.DegToRad(a.Y()))).
			Mul4(mgl32.HomogRotate3DZ(mgl32.DegToRad(a.Z())))
	}

	want := map[NodeID]mgl32.Mat4{}
	parent := local(g.Root())
	if !IsIdentity(g.Node(g.Root()).World()) {
		t.Errorf("root world = %v, want identity", g.Node(g.Root()).World())
	}
	for _, id := range ids {
		parent = parent.Mul4(local(id))
		want[id] = parent
	}

	var drawn []DrawCall
	g.Draw(RendererFunc(func(c DrawCall) { drawn = append(drawn, c) }), Identity())

	if len(drawn) != len(ids) {
		t.Fatalf("drew %d primitives, want %d", len(drawn), len(ids))
	}
	for _, c := range drawn {
		if !ApproxEqual(c.World, want[c.Node], 1e-5) {
			t.Errorf("%s world\n got %v\nwant %v", c.Name, c.World, want[c.Node])
		}
	}
}

func TestDrawOrderAndOuter(t *testing.T) {
	g := NewSceneGraph(NodeSpec{Name: "root"})
	a := g.Add(NodeSpec{Name: "a", Primitive: box{}})
	b := g.Add(NodeSpec{Name: "b", Primitive: box{}})
	pivot := g.Add(NodeSpec{Name: "pivot", Offset: mgl32.Vec3{0, 1, 0}})
	c := g.Add(NodeSpec{Name: "c", Primitive: box{}})
	g.AddChildren(g.Root(), b, pivot, a)
	g.AddChild(pivot, c)
	g.Update()

	outer := mgl32.HomogRotate3DZ(mgl32.DegToRad(90))
	var names []string
	g.Draw(RendererFunc(func(call DrawCall) {
		names = append(names, call.Name)
		if call.Name == "c" {
			p := TransformPoint(call.World, mgl32.Vec3{})
			if !p.ApproxEqualThreshold(mgl32.Vec3{-1, 0, 0}, 1e-5) {
				t.Errorf("c origin = %v, want (-1, 0, 0)", p)
			}
		}
	}), outer)

	want := []string{"b", "c", "a"}
	if len(names) != len(want) {
		t.Fatalf("drew %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("draw %d = %s, want %s", i, names[i], want[i])
		}
	}
}

func TestAddChildOwnership(t *testing.T) {
	tests := []struct {
		name string
		fn   func(g *SceneGraph, a, b NodeID)
	}{
		{"second parent", func(g *SceneGraph, a, b NodeID) {
			g.AddChild(g.Root(), b)
			g.AddChild(a, b)
		}},
		{"root as child", func(g *SceneGraph, a, _ NodeID) {
			g.AddChild(a, g.Root())
		}},
		{"self", func(g *SceneGraph, a, _ NodeID) {
			g.AddChild(a, a)
		}},
		{"duplicate name", func(g *SceneGraph, _, _ NodeID) {
			g.Add(NodeSpec{Name: "a"})
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewSceneGraph(NodeSpec{Name: "root"})
			a := g.Add(NodeSpec{Name: "a"})
			b := g.Add(NodeSpec{Name: "b"})
			defer func() {
				if recover() == nil {
					t.Error("expected panic")
				}
			}()
			tt.fn(g, a, b)
		})
	}
}

func TestSetAnglesMirror(t *testing.T) {
	g := NewSceneGraph(NodeSpec{Name: "root"})
	plain := g.Add(NodeSpec{Name: "plain", Limits: NewLimits(0, 10, 0, 0, 0, 0)})
	reverse := g.Add(NodeSpec{Name: "reverse", Mirror: MirrorReverse})
	claw := g.Add(NodeSpec{Name: "claw", Mirror: MirrorClaw})

	in := NewAngles(60, 15, 5)
	g.SetAngles(plain, in)
	g.SetAngles(reverse, in)
	g.SetAngles(claw, in)

	tests := []struct {
		id   NodeID
		want [3]float32
	}{
		// absolute sets are stored as given, even outside limits
		{plain, [3]float32{60, 15, 5}},
		{reverse, [3]float32{-60, -195, 5}},
		{claw, [3]float32{120, 15, 5}},
	}
	for _, tt := range tests {
		if got := g.Node(tt.id).Angles().Array(); got != tt.want {
			t.Errorf("%s = %v, want %v", g.Node(tt.id).Name(), got, tt.want)
		}
	}
}

func TestWalkDepth(t *testing.T) {
	g, _ := newChain()
	var depths []int
	g.Walk(func(_ NodeID, depth int) { depths = append(depths, depth) })
	want := []int{0, 1, 2, 3}
	if len(depths) != len(want) {
		t.Fatalf("depths = %v, want %v", depths, want)
	}
	for i := range want {
		if depths[i] != want[i] {
			t.Errorf("depths = %v, want %v", depths, want)
			break
		}
	}
	if id, ok := g.Find("arm"); !ok || g.Node(id).Parent() == NoNode {
		t.Error("Find(arm) failed or arm is detached")
	}
}
