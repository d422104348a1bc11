package engine_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/inamate/spider/internal/document"
	"github.com/inamate/spider/internal/engine"
	"github.com/inamate/spider/internal/spider"
)

func newEngine(t *testing.T) *engine.Engine {
	t.Helper()
	return engine.NewEngine(spider.Build(), document.DefaultLibrary(), engine.DefaultOptions())
}

func node(t *testing.T, e *engine.Engine, name string) (engine.NodeID, *engine.Node) {
	t.Helper()
	id, ok := e.Graph().Find(name)
	if !ok {
		t.Fatalf("node %q not found", name)
	}
	return id, e.Graph().Node(id)
}

func TestNewEngineIsReadyToDraw(t *testing.T) {
	e := newEngine(t)
	if e.Graph().Dirty() {
		t.Fatal("engine left the graph dirty")
	}

	drawn := 0
	e.Frame(engine.RendererFunc(func(engine.DrawCall) { drawn++ }))
	// every node except the top-level pivot has a primitive
	if want := e.Graph().Len() - 1; drawn != want {
		t.Errorf("drew %d primitives, want %d", drawn, want)
	}
}

func TestRotateSelectedSegment(t *testing.T) {
	e := newEngine(t)
	_, middle := node(t, e, "left-index-middle")

	if err := e.ToggleLeg(3); err != nil {
		t.Fatal(err)
	}
	e.ToggleLegPart(engine.PartMiddle)
	if err := e.SetAxis(engine.AxisX); err != nil {
		t.Fatal(err)
	}
	e.RotateSelection(1)
	if got := middle.Angles().X(); got != 52 {
		t.Errorf("X = %v, want 52", got)
	}
	if !e.Graph().Dirty() {
		t.Error("rotation did not mark the graph dirty")
	}

	for i := 0; i < 40; i++ {
		e.RotateSelection(1)
	}
	if got := middle.Angles().X(); got != 100 {
		t.Errorf("X = %v, want clamped at 100", got)
	}
	for i := 0; i < 80; i++ {
		e.RotateSelection(-1)
	}
	if got := middle.Angles().X(); got != 0 {
		t.Errorf("X = %v, want clamped at 0", got)
	}
}

func TestSideSelectsRightLegs(t *testing.T) {
	e := newEngine(t)
	e.ToggleSide()
	if err := e.ToggleLeg(0); err != nil {
		t.Fatal(err)
	}
	if !e.Selection().LegSelected(5) || e.Selection().LegSelected(0) {
		t.Errorf("legs = %v, want [5]", e.Selection().Legs())
	}
	e.ToggleLegPart(engine.PartProximal)

	st := e.State()
	if st.Side != "right" || len(st.Selected) != 1 || st.Selected[0] != "right-pinky-proximal" {
		t.Errorf("state = %+v", st)
	}

	if err := e.ToggleLeg(5); !errors.Is(err, engine.ErrInvalidIntent) {
		t.Errorf("ToggleLeg(5) error = %v", err)
	}
}

func TestLegToggleOffClearsColors(t *testing.T) {
	e := newEngine(t)
	leg := e.Rig().Legs[2]

	if err := e.ToggleLeg(2); err != nil {
		t.Fatal(err)
	}
	e.ToggleLegPart(engine.PartProximal)
	e.ToggleLegPart(engine.PartDistal)
	if err := e.ToggleLeg(2); err != nil {
		t.Fatal(err)
	}

	for _, id := range leg.Joints() {
		n := e.Graph().Node(id)
		if e.Selection().NodeSelected(id) || n.Color() != engine.InactiveColor {
			t.Errorf("%s still active", n.Name())
		}
	}
}

func TestClawThenStopLeavesNoResidue(t *testing.T) {
	e := newEngine(t)
	claw, err := e.Poses().Get("claw")
	if err != nil {
		t.Fatal(err)
	}
	e.ApplyPose(claw)
	e.ResetPose()

	stop := e.Poses().Stop()
	checked := 0
	e.Graph().Walk(func(id engine.NodeID, _ int) {
		n := e.Graph().Node(id)
		if n.Joint() == engine.JointNone {
			return
		}
		want, ok := stop.Angles(n.Joint())
		if !ok {
			return
		}
		if got := n.Angles().Array(); got != n.Mirror().Apply(want).Array() {
			t.Errorf("%s = %v, want %v", n.Name(), got, n.Mirror().Apply(want))
		}
		checked++
	})
	if checked == 0 {
		t.Fatal("no bound joints found")
	}
	if e.Pose() != "stop" {
		t.Errorf("Pose() = %q, want stop", e.Pose())
	}
}

func TestPoseMirrorsRightSide(t *testing.T) {
	e := newEngine(t)
	fist, err := e.Poses().Get("fist")
	if err != nil {
		t.Fatal(err)
	}
	e.ApplyPose(fist)

	tests := []struct {
		name string
		want [3]float32
	}{
		{"left-ring-proximal", [3]float32{60, 0, 0}},
		{"right-ring-proximal", [3]float32{-60, -180, 0}},
		{"right-ring-middle", [3]float32{90, 0, 0}},
		{"left-claw-proximal", [3]float32{94, 0, 0}},
		{"right-claw-proximal", [3]float32{86, 0, 0}},
		{"right-claw-middle", [3]float32{0, 4, 0}},
	}
	for _, tt := range tests {
		_, n := node(t, e, tt.name)
		if got := n.Angles().Array(); got != tt.want {
			t.Errorf("%s = %v, want %v", tt.name, got, tt.want)
		}
	}

	// claw distal segments are not pose-bound
	_, distal := node(t, e, "left-claw-distal")
	if got := distal.Angles().Array(); got != [3]float32{} {
		t.Errorf("left-claw-distal = %v, want untouched", got)
	}
}

func TestNextPoseCycles(t *testing.T) {
	e := newEngine(t)
	names := e.Poses().Names()
	for i, want := range names {
		if got := e.NextPose(); got != want {
			t.Errorf("NextPose %d = %q, want %q", i+1, got, want)
		}
	}
	if got := e.NextPose(); got != names[0] {
		t.Errorf("NextPose wrap = %q, want %q", got, names[0])
	}
}

func TestLookAt(t *testing.T) {
	e := newEngine(t)
	tests := []struct {
		x, y       int
		pitch, yaw float32
	}{
		{200, 100, 0, 0},
		{400, 100, 0, 90},
		{0, 0, -90, -90},
		{1000, 1000, 90, 90},
	}
	for _, tt := range tests {
		if err := e.LookAt(tt.x, tt.y, 400, 200); err != nil {
			t.Fatal(err)
		}
		for _, id := range e.Rig().Eyes {
			a := e.Graph().Node(id).Angles()
			if a.X() != tt.pitch || a.Y() != tt.yaw {
				t.Errorf("LookAt(%d, %d): eye = %s, want (%v, %v, 0)", tt.x, tt.y, a, tt.pitch, tt.yaw)
			}
		}
	}
	if err := e.LookAt(1, 1, 0, 10); !errors.Is(err, engine.ErrInvalidIntent) {
		t.Errorf("empty viewport error = %v", err)
	}
}

func TestDragIntents(t *testing.T) {
	e := newEngine(t)

	// move without a drag is ignored
	e.DragTo(50, 50)
	if !e.View().IsIdentity() {
		t.Fatal("view moved without a drag")
	}

	e.BeginDrag(100, 100)
	e.DragTo(100, 100)
	if e.View().IsIdentity() {
		t.Error("zero drag sample did not turn the view")
	}
	e.EndDrag()
	if e.Dragging() {
		t.Error("still dragging")
	}

	e.ResetView()
	if !e.View().IsIdentity() {
		t.Error("ResetView did not restore identity")
	}
}

func TestApplyIntents(t *testing.T) {
	tests := []struct {
		name    string
		json    string
		wantErr bool
	}{
		{"axis", `{"kind":"axis","axis":"y"}`, false},
		{"leg", `{"kind":"leg","slot":4}`, false},
		{"side", `{"kind":"side"}`, false},
		{"segment", `{"kind":"segment","part":"m"}`, false},
		{"part", `{"kind":"part","part":"left-eye"}`, false},
		{"rotate", `{"kind":"rotate","sign":-1}`, false},
		{"pose", `{"kind":"pose.next"}`, false},
		{"stop", `{"kind":"pose.reset"}`, false},
		{"view", `{"kind":"view.drag","dx":3,"dy":1}`, false},
		{"look", `{"kind":"look","x":1,"y":2,"width":10,"height":10}`, false},
		{"unknown kind", `{"kind":"jump"}`, true},
		{"missing axis", `{"kind":"axis"}`, true},
		{"zero sign", `{"kind":"rotate"}`, true},
		{"bad slot", `{"kind":"leg","slot":7}`, true},
		{"bad segment", `{"kind":"segment","part":"knee"}`, true},
		{"bad part", `{"kind":"part","part":"tail"}`, true},
		{"bad viewport", `{"kind":"look"}`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEngine(t)
			var in engine.Intent
			if err := json.Unmarshal([]byte(tt.json), &in); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			before := e.Version()
			err := e.Apply(in)
			if tt.wantErr {
				if !errors.Is(err, engine.ErrInvalidIntent) {
					t.Errorf("error = %v, want ErrInvalidIntent", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Apply: %v", err)
			}
			if e.Version() <= before {
				t.Error("version did not advance")
			}
		})
	}
}

func TestAxisIntentJSON(t *testing.T) {
	e := newEngine(t)
	if err := e.Apply(engine.Intent{Kind: engine.IntentSetAxis, Axis: ptr(engine.AxisY)}); err != nil {
		t.Fatal(err)
	}
	data, err := json.Marshal(e.State())
	if err != nil {
		t.Fatal(err)
	}
	var st struct {
		Axis string `json:"axis"`
	}
	if err := json.Unmarshal(data, &st); err != nil {
		t.Fatal(err)
	}
	if st.Axis != "y" {
		t.Errorf("state axis = %q, want y", st.Axis)
	}
}

func TestJointsDump(t *testing.T) {
	e := newEngine(t)
	joints := e.Joints()
	if len(joints) != e.Graph().Len() {
		t.Fatalf("dumped %d joints, want %d", len(joints), e.Graph().Len())
	}
	if joints[0].Depth != 0 || joints[1].Name != spider.PartLeftBody {
		t.Errorf("first entries = %+v %+v", joints[0], joints[1])
	}
}

func ptr[T any](v T) *T { return &v }

func TestStateJSONUsesEmptyLists(t *testing.T) {
	data, err := json.Marshal(newEngine(t).State())
	if err != nil {
		t.Fatal(err)
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"legs", "selected"} {
		if got := string(raw[key]); got != "[]" {
			t.Errorf("%s = %s, want []", key, got)
		}
	}
}

func TestCompiledFrameReplaysFromJSON(t *testing.T) {
	e := newEngine(t)
	commands := e.Compile()

	encoded, err := engine.DrawCommandsToJSON(commands)
	if err != nil {
		t.Fatal(err)
	}
	var decoded []engine.DrawCommand
	if err := json.Unmarshal([]byte(encoded), &decoded); err != nil {
		t.Fatalf("decode frame: %v", err)
	}

	var replayed []engine.DrawCall
	engine.Replay(decoded, engine.RendererFunc(func(c engine.DrawCall) {
		replayed = append(replayed, c)
	}))
	if len(replayed) != len(commands) {
		t.Fatalf("replayed %d shapes, want %d", len(replayed), len(commands))
	}
	for i, c := range replayed {
		want := commands[i]
		if c.Primitive != want.Primitive {
			t.Errorf("%s: primitive %#v, want %#v", want.Name, c.Primitive, want.Primitive)
		}
		if c.Name != want.Name || c.Color.Hex() != want.Color.Hex() || !engine.ApproxEqual(c.World, want.World(), 1e-6) {
			t.Errorf("%s: replayed call differs: %+v", want.Name, c)
		}
	}
}
