package termdesk

import (
	"errors"
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// ColorKind tags the variant held by a Color.
type ColorKind uint8

const (
	// ColorDefault resolves to the palette's default foreground or background.
	ColorDefault ColorKind = iota
	// ColorNamed is one of the eight built-in named colors.
	ColorNamed
	// ColorRGB is an explicit 24-bit color.
	ColorRGB
)

// Name identifies a built-in named color.
type Name uint8

const (
	Black Name = iota
	Red
	Green
	Brown
	Blue
	Magenta
	Cyan
	White
)

var colorNames = [...]string{"black", "red", "green", "brown", "blue", "magenta", "cyan", "white"}

func (n Name) String() string {
	if int(n) < len(colorNames) {
		return colorNames[n]
	}
	return fmt.Sprintf("Name(%d)", uint8(n))
}

// Color is a tagged color value. The zero value is the default color.
// It is resolved to RGBA only when drawn, through a Palette.
type Color struct {
	Kind    ColorKind
	Name    Name
	R, G, B uint8
}

// DefaultColor returns the default color variant.
func DefaultColor() Color { return Color{} }

// NamedColor returns the named color variant.
func NamedColor(n Name) Color { return Color{Kind: ColorNamed, Name: n} }

// RGB returns an explicit color variant.
func RGB(r, g, b uint8) Color { return Color{Kind: ColorRGB, R: r, G: g, B: b} }

// IsDefault reports whether c is the default variant.
func (c Color) IsDefault() bool { return c.Kind == ColorDefault }

// String renders the color the way ParseColor accepts it.
func (c Color) String() string {
	switch c.Kind {
	case ColorNamed:
		return c.Name.String()
	case ColorRGB:
		return fmt.Sprintf("%02x%02x%02x", c.R, c.G, c.B)
	default:
		return "default"
	}
}

// ErrInvalidColor is returned by ParseColor for unrecognized input.
var ErrInvalidColor = errors.New("invalid color")

// ParseColor normalizes a color name. "default", the eight built-in names
// and 6-hex-digit RGB strings (optionally prefixed with '#') are accepted.
func ParseColor(s string) (Color, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || s == "default" {
		return DefaultColor(), nil
	}
	for i, name := range colorNames {
		if s == name {
			return NamedColor(Name(i)), nil
		}
	}

	hex := strings.TrimPrefix(s, "#")
	if len(hex) != 6 {
		return Color{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	return RGB(uint8(v>>16), uint8(v>>8), uint8(v)), nil
}

// Palette resolves Colors to concrete RGBA values.
type Palette struct {
	Foreground color.RGBA
	Background color.RGBA
	Named      [8]color.RGBA
}

// DefaultPalette returns the desktop palette: light text over a transparent
// background, so a terminal composites cleanly above lower layers.
func DefaultPalette() *Palette {
	return &Palette{
		Foreground: color.RGBA{245, 245, 245, 255},
		Background: color.RGBA{0, 0, 0, 0},
		Named: [8]color.RGBA{
			{0, 0, 0, 255},       // black
			{230, 41, 55, 255},   // red
			{0, 228, 48, 255},    // green
			{127, 106, 79, 255},  // brown
			{0, 121, 241, 255},   // blue
			{255, 0, 255, 255},   // magenta
			{0, 255, 255, 255},   // cyan
			{255, 255, 255, 255}, // white
		},
	}
}

// Resolve returns the RGBA value of c. fg selects which default applies.
func (p *Palette) Resolve(c Color, fg bool) color.RGBA {
	switch c.Kind {
	case ColorNamed:
		if int(c.Name) < len(p.Named) {
			return p.Named[c.Name]
		}
	case ColorRGB:
		return color.RGBA{c.R, c.G, c.B, 255}
	}
	if fg {
		return p.Foreground
	}
	return p.Background
}

// ansiPalette is the 256-color xterm palette used for indexed SGR colors
// that have no named equivalent (8-255).
var ansiPalette [256]color.RGBA

func init() {
	base := [16]color.RGBA{
		{0, 0, 0, 255}, {205, 49, 49, 255}, {13, 188, 121, 255}, {229, 229, 16, 255},
		{36, 114, 200, 255}, {188, 63, 188, 255}, {17, 168, 205, 255}, {229, 229, 229, 255},
		{102, 102, 102, 255}, {241, 76, 76, 255}, {35, 209, 139, 255}, {245, 245, 67, 255},
		{59, 142, 234, 255}, {214, 112, 214, 255}, {41, 184, 219, 255}, {255, 255, 255, 255},
	}
	copy(ansiPalette[:], base[:])

	i := 16
	for r := 0; r < 6; r++ {
		for g := 0; g < 6; g++ {
			for b := 0; b < 6; b++ {
				ansiPalette[i] = color.RGBA{uint8(r * 51), uint8(g * 51), uint8(b * 51), 255}
				i++
			}
		}
	}

	for j := 0; j < 24; j++ {
		gray := uint8(8 + j*10)
		ansiPalette[232+j] = color.RGBA{gray, gray, gray, 255}
	}
}

// Indices used by the escape-sequence decoder for semantic named colors.
const (
	namedColorForeground = 256
	namedColorBackground = 257
)

// indexedColor maps an xterm color index to a Color. Indices 0-7 become
// named colors unless the program overrode them with OSC 4.
func indexedColor(index int, overrides map[int]color.RGBA) Color {
	if index < 0 || index > 255 {
		return DefaultColor()
	}
	if c, ok := overrides[index]; ok {
		return RGB(c.R, c.G, c.B)
	}
	if index < 8 {
		return NamedColor(Name(index))
	}
	c := ansiPalette[index]
	return RGB(c.R, c.G, c.B)
}

func toRGBA(c color.Color) color.RGBA {
	if rgba, ok := c.(color.RGBA); ok {
		return rgba
	}
	r, g, b, a := c.RGBA()
	return color.RGBA{uint8(r >> 8), uint8(g >> 8), uint8(b >> 8), uint8(a >> 8)}
}
