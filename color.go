package geodraw

import (
	"fmt"
	"math"
	"strings"
)

// RGBA represents a color with red, green, blue, and alpha components.
// Each component is in the range [0, 1].
type RGBA struct {
	R, G, B, A float64
}

// RGB creates an opaque color from RGB components.
func RGB(r, g, b float64) RGBA {
	return RGBA{R: r, G: g, B: b, A: 1.0}
}

// ParseHex parses a hex color. Supported forms (with or without a
// leading '#'): "RGB", "RGBA", "RRGGBB", "RRGGBBAA".
func ParseHex(hex string) (RGBA, error) {
	s := strings.TrimPrefix(hex, "#")
	var digits [8]uint32
	for i := 0; i < len(s); i++ {
		d, ok := hexDigit(s[i])
		if !ok || i >= len(digits) {
			return RGBA{}, fmt.Errorf("geodraw: invalid hex color %q", hex)
		}
		digits[i] = d
	}

	var r, g, b uint32
	a := uint32(255)
	switch len(s) {
	case 3:
		r, g, b = digits[0]*17, digits[1]*17, digits[2]*17
	case 4:
		r, g, b, a = digits[0]*17, digits[1]*17, digits[2]*17, digits[3]*17
	case 6:
		r, g, b = digits[0]<<4|digits[1], digits[2]<<4|digits[3], digits[4]<<4|digits[5]
	case 8:
		r, g, b = digits[0]<<4|digits[1], digits[2]<<4|digits[3], digits[4]<<4|digits[5]
		a = digits[6]<<4 | digits[7]
	default:
		return RGBA{}, fmt.Errorf("geodraw: invalid hex color %q", hex)
	}

	return RGBA{
		R: float64(r) / 255,
		G: float64(g) / 255,
		B: float64(b) / 255,
		A: float64(a) / 255,
	}, nil
}

func hexDigit(c byte) (uint32, bool) {
	switch {
	case '0' <= c && c <= '9':
		return uint32(c - '0'), true
	case 'a' <= c && c <= 'f':
		return uint32(c-'a') + 10, true
	case 'A' <= c && c <= 'F':
		return uint32(c-'A') + 10, true
	}
	return 0, false
}

// Hex returns the color as "#rrggbb". Alpha is dropped; SVG carries it
// separately as an opacity attribute.
func (c RGBA) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", to255(c.R), to255(c.G), to255(c.B))
}

// Paint returns the color as a Paint value.
func (c RGBA) Paint() Paint {
	return Paint(c.Hex())
}

func to255(x float64) uint8 {
	return uint8(math.Round(math.Max(0, math.Min(1, x)) * 255))
}

// HSL creates a color from HSL values.
// h is hue [0, 360), s is saturation [0, 1], l is lightness [0, 1].
func HSL(h, s, l float64) RGBA {
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}
	h /= 360

	c := (1 - math.Abs(2*l-1)) * s
	x := c * (1 - math.Abs(math.Mod(h*6, 2)-1))
	m := l - c/2

	var r, g, b float64
	switch {
	case h < 1.0/6:
		r, g, b = c, x, 0
	case h < 2.0/6:
		r, g, b = x, c, 0
	case h < 3.0/6:
		r, g, b = 0, c, x
	case h < 4.0/6:
		r, g, b = 0, x, c
	case h < 5.0/6:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}

	return RGB(r+m, g+m, b+m)
}

// Common colors
var (
	Black = RGB(0, 0, 0)
	White = RGB(1, 1, 1)
)

// Paint is an SVG paint value: a color, "none", "currentColor" or a
// reference to a definition such as "url(#hatch)".
type Paint string

// PaintNone disables fill or stroke.
const PaintNone Paint = "none"

// URL returns a paint referencing the definition with the given id.
func URL(id string) Paint {
	return Paint("url(#" + id + ")")
}

// visible reports whether the paint draws anything.
func (p Paint) visible() bool {
	return p != "" && p != PaintNone
}

// Validate checks that the paint is a form the canvas can inline.
func (p Paint) Validate() error {
	s := string(p)
	switch {
	case s == "", p == PaintNone, s == "currentColor":
		return nil
	case strings.HasPrefix(s, "url(#") && strings.HasSuffix(s, ")") && len(s) > len("url(#)"):
		return nil
	case strings.HasPrefix(s, "#"):
		_, err := ParseHex(s)
		return err
	case strings.HasPrefix(s, "rgb(") || strings.HasPrefix(s, "rgba(") || strings.HasPrefix(s, "hsl("):
		if strings.HasSuffix(s, ")") {
			return nil
		}
	case isKeyword(s):
		return nil
	}
	return fmt.Errorf("geodraw: invalid paint %q", s)
}

func isKeyword(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < 'a' || c > 'z') && (c < 'A' || c > 'Z') {
			return false
		}
	}
	return s != ""
}
