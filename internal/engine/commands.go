package engine

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/go-gl/mathgl/mgl32"
)

// PrimitiveDecoder builds a primitive from its JSON form.
type PrimitiveDecoder func(data []byte) (Primitive, error)

var (
	decodersMu sync.RWMutex
	decoders   = map[string]PrimitiveDecoder{}
)

// RegisterPrimitive makes recorded commands of kind decodable. Packages that
// define primitives call it from init; a later call for the same kind wins.
func RegisterPrimitive(kind string, decode PrimitiveDecoder) {
	decodersMu.Lock()
	defer decodersMu.Unlock()
	decoders[kind] = decode
}

// RawPrimitive carries a primitive of an unregistered kind through a decode
// and re-encode unchanged.
type RawPrimitive struct {
	kind string
	data json.RawMessage
}

func (p RawPrimitive) Kind() string { return p.kind }

func (p RawPrimitive) MarshalJSON() ([]byte, error) {
	return p.data, nil
}

func decodePrimitive(kind string, data []byte) (Primitive, error) {
	decodersMu.RLock()
	decode, ok := decoders[kind]
	decodersMu.RUnlock()
	if !ok {
		return RawPrimitive{kind: kind, data: append(json.RawMessage(nil), data...)}, nil
	}
	p, err := decode(data)
	if err != nil {
		return nil, fmt.Errorf("decode %s primitive: %w", kind, err)
	}
	return p, nil
}

// DrawCommand is a recorded primitive emission, serializable for remote renderers.
type DrawCommand struct {
	Op        string    `json:"op"`             // "primitive"
	NodeID    NodeID    `json:"nodeId"`         // for hit correlation
	Name      string    `json:"name,omitempty"` // node name
	Kind      string    `json:"kind"`           // primitive kind
	Primitive Primitive `json:"primitive,omitempty"`
	Transform []float32 `json:"transform"` // column-major 4x4
	Color     Color     `json:"color"`
}

// UnmarshalJSON rebuilds the primitive from the command's kind.
func (c *DrawCommand) UnmarshalJSON(data []byte) error {
	type plain DrawCommand
	var raw struct {
		plain
		Primitive json.RawMessage `json:"primitive,omitempty"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*c = DrawCommand(raw.plain)
	if len(raw.Primitive) == 0 || string(raw.Primitive) == "null" {
		return nil
	}
	p, err := decodePrimitive(c.Kind, raw.Primitive)
	if err != nil {
		return err
	}
	c.Primitive = p
	return nil
}

// World returns the command's transform as a matrix.
func (c DrawCommand) World() mgl32.Mat4 {
	return FromSlice(c.Transform)
}

// CommandBuffer is a Renderer that records draw calls in painter's order.
type CommandBuffer struct {
	Commands []DrawCommand
}

// DrawPrimitive implements Renderer.
func (b *CommandBuffer) DrawPrimitive(call DrawCall) {
	b.Commands = append(b.Commands, DrawCommand{
		Op:        "primitive",
		NodeID:    call.Node,
		Name:      call.Name,
		Kind:      call.Primitive.Kind(),
		Primitive: call.Primitive,
		Transform: ToSlice(call.World),
		Color:     call.Color,
	})
}

// Reset empties the buffer, keeping its capacity.
func (b *CommandBuffer) Reset() {
	b.Commands = b.Commands[:0]
}

// CompileDrawCommands generates a draw command buffer from an updated scene graph.
func CompileDrawCommands(g *SceneGraph, outer mgl32.Mat4) []DrawCommand {
	if g == nil {
		return nil
	}
	var buf CommandBuffer
	g.Draw(&buf, outer)
	return buf.Commands
}

// Replay feeds recorded commands to another renderer in order.
func Replay(commands []DrawCommand, r Renderer) {
	for _, c := range commands {
		if c.Primitive == nil {
			continue
		}
		r.DrawPrimitive(DrawCall{
			Node:      c.NodeID,
			Name:      c.Name,
			Primitive: c.Primitive,
			World:     c.World(),
			Color:     c.Color,
		})
	}
}

// DrawCommandsToJSON serializes draw commands to JSON.
func DrawCommandsToJSON(commands []DrawCommand) (string, error) {
	if commands == nil {
		commands = []DrawCommand{}
	}
	data, err := json.Marshal(commands)
	if err != nil {
		return "[]", err
	}
	return string(data), nil
}
