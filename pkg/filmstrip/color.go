package filmstrip

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

const maxByte = 255.0

// Color is stored as ARGB (0xAARRGGBB). It implements [image/color.Color].
type Color uint32

// RGBA8 constructs a Color from red, green, blue, alpha bytes (all 0-255).
func RGBA8(r, g, b, a uint8) Color {
	return Color(uint32(a)<<24 | uint32(r)<<16 | uint32(g)<<8 | uint32(b))
}

// RGB constructs an opaque Color from red, green, blue bytes.
func RGB(r, g, b uint8) Color {
	return RGBA8(r, g, b, 0xFF)
}

// RGBA returns alpha-premultiplied 16-bit components.
func (c Color) RGBA() (r, g, b, a uint32) {
	a = uint32(uint8(c >> 24))
	r = uint32(uint8(c>>16)) * a / 0xFF
	g = uint32(uint8(c>>8)) * a / 0xFF
	b = uint32(uint8(c)) * a / 0xFF
	return r * 0x101, g * 0x101, b * 0x101, a * 0x101
}

// RGB8 returns the red, green and blue bytes, ignoring alpha.
func (c Color) RGB8() (r, g, b uint8) {
	return uint8(c >> 16), uint8(c >> 8), uint8(c)
}

// Alpha returns the alpha component as a value from 0.0 (transparent) to 1.0 (opaque).
func (c Color) Alpha() float64 {
	return float64(uint8(c>>24)) / maxByte
}

// WithAlpha returns a copy of the color with the given alpha (0-1).
func (c Color) WithAlpha(a float64) Color {
	return Color(uint32(alpha01ToByte(a))<<24 | uint32(c)&0x00FFFFFF)
}

// String formats the color as #RRGGBB, or #RRGGBBAA when translucent.
func (c Color) String() string {
	if uint8(c>>24) == 0xFF {
		return fmt.Sprintf("#%06X", uint32(c)&0x00FFFFFF)
	}
	return fmt.Sprintf("#%06X%02X", uint32(c)&0x00FFFFFF, uint8(c>>24))
}

// ParseColor parses #RGB, #RRGGBB or #RRGGBBAA. The leading # is optional.
func ParseColor(s string) (Color, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 && len(hex) != 8 {
		return 0, fmt.Errorf("invalid color %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid color %q: %w", s, err)
	}
	if len(hex) == 6 {
		return Color(0xFF000000 | uint32(v)), nil
	}
	return Color(uint32(v)>>8 | uint32(v)<<24), nil
}

// alpha01ToByte converts a 0-1 alpha to 0-255 with proper rounding.
func alpha01ToByte(a float64) uint8 {
	return uint8(math.Round(clamp01(a) * 255))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Common colors.
const (
	ColorTransparent = Color(0x00000000)
	ColorBlack       = Color(0xFF000000)
	ColorWhite       = Color(0xFFFFFFFF)
	// ColorInk is the default background.
	ColorInk = Color(0xFF101820)
	// ColorAccent is the default sprite color.
	ColorAccent = Color(0xFF00ADD8)
)
