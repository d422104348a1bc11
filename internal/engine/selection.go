package engine

import (
	"fmt"
	"maps"
	"slices"
)

// LegPart names one of the three segments of a leg.
type LegPart int

const (
	PartProximal LegPart = iota
	PartMiddle
	PartDistal
)

func (p LegPart) String() string {
	switch p {
	case PartProximal:
		return "proximal"
	case PartMiddle:
		return "middle"
	case PartDistal:
		return "distal"
	}
	return fmt.Sprintf("part(%d)", int(p))
}

// ParseLegPart parses "proximal", "middle" or "distal".
func ParseLegPart(s string) (LegPart, error) {
	switch s {
	case "proximal", "p":
		return PartProximal, nil
	case "middle", "m":
		return PartMiddle, nil
	case "distal", "d":
		return PartDistal, nil
	}
	return 0, fmt.Errorf("unknown leg part %q", s)
}

// Leg groups three nodes that already live in the tree. It owns none of them.
type Leg struct {
	Proximal NodeID
	Middle   NodeID
	Distal   NodeID
}

// Joints returns the leg's nodes from body outwards.
func (l Leg) Joints() [3]NodeID {
	return [3]NodeID{l.Proximal, l.Middle, l.Distal}
}

// Part returns the node of one segment.
func (l Leg) Part(p LegPart) NodeID {
	return l.Joints()[p]
}

// Selection tracks which nodes receive rotation commands and which legs the
// per-segment toggles act on.
type Selection struct {
	nodes map[NodeID]struct{}
	legs  map[int]struct{}
}

// NewSelection returns an empty selection.
func NewSelection() *Selection {
	return &Selection{
		nodes: make(map[NodeID]struct{}),
		legs:  make(map[int]struct{}),
	}
}

// ToggleNode selects or deselects a single node and recolors it.
func (s *Selection) ToggleNode(g *SceneGraph, id NodeID) {
	if _, ok := s.nodes[id]; ok {
		delete(s.nodes, id)
		g.SetColor(id, InactiveColor)
		return
	}
	s.nodes[id] = struct{}{}
	g.SetColor(id, ActiveColor)
}

// ToggleLeg adds leg index i to the selected legs, or removes it and
// deselects every node of the leg.
func (s *Selection) ToggleLeg(g *SceneGraph, i int, leg Leg) {
	if _, ok := s.legs[i]; !ok {
		s.legs[i] = struct{}{}
		return
	}
	delete(s.legs, i)
	for _, id := range leg.Joints() {
		delete(s.nodes, id)
		g.SetColor(id, InactiveColor)
	}
}

// NodeSelected reports whether id is selected.
func (s *Selection) NodeSelected(id NodeID) bool {
	_, ok := s.nodes[id]
	return ok
}

// LegSelected reports whether leg index i is selected.
func (s *Selection) LegSelected(i int) bool {
	_, ok := s.legs[i]
	return ok
}

// Nodes returns the selected nodes in ascending order.
func (s *Selection) Nodes() []NodeID {
	return slices.Sorted(maps.Keys(s.nodes))
}

// Legs returns the selected leg indexes in ascending order.
func (s *Selection) Legs() []int {
	return slices.Sorted(maps.Keys(s.legs))
}

// Clear deselects everything and restores inactive colors.
func (s *Selection) Clear(g *SceneGraph) {
	for id := range s.nodes {
		g.SetColor(id, InactiveColor)
	}
	clear(s.nodes)
	clear(s.legs)
}
