package engine

import (
	"fmt"
	"image/color"
)

// Color is a display color with float channels in [0, 1].
type Color struct {
	R, G, B float32
}

var (
	// ActiveColor marks nodes selected for rotation.
	ActiveColor = Color{R: 1, G: 0, B: 0}
	// InactiveColor is the resting color of every node.
	InactiveColor = Color{R: 1, G: 0.5, B: 0}
)

// NRGBA converts to an opaque 8-bit color.
func (c Color) NRGBA() color.NRGBA {
	return color.NRGBA{R: channel(c.R), G: channel(c.G), B: channel(c.B), A: 0xff}
}

// Shade scales the color towards black by f in [0, 1].
func (c Color) Shade(f float32) Color {
	f = min(max(f, 0), 1)
	return Color{R: c.R * f, G: c.G * f, B: c.B * f}
}

// Hex returns the color as "#rrggbb".
func (c Color) Hex() string {
	n := c.NRGBA()
	return fmt.Sprintf("#%02x%02x%02x", n.R, n.G, n.B)
}

// MarshalText encodes the color as "#rrggbb".
func (c Color) MarshalText() ([]byte, error) {
	return []byte(c.Hex()), nil
}

// UnmarshalText decodes "#rrggbb".
func (c *Color) UnmarshalText(text []byte) error {
	var r, g, b uint8
	if _, err := fmt.Sscanf(string(text), "#%02x%02x%02x", &r, &g, &b); err != nil {
		return fmt.Errorf("invalid color %q: %w", text, err)
	}
	*c = Color{R: float32(r) / 255, G: float32(g) / 255, B: float32(b) / 255}
	return nil
}

func channel(v float32) uint8 {
	v = min(max(v, 0), 1)
	return uint8(v*255 + 0.5)
}
