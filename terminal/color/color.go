package color

import (
	"fmt"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Count is the total number of palette entries:
//
//	| Indices  | Description       |
//	| -------- | ----------------- |
//	| 0..16    | Named ANSI colors |
//	| 16..232  | 6x6x6 color cube  |
//	| 232..256 | Grayscale ramp    |
//	| 256      | Foreground        |
//	| 257      | Background        |
//	| 258      | Cursor            |
//	| 259..267 | Dim colors        |
//	| 267      | Bright foreground |
//	| 268      | Dim background    |
const Count = 269

// Factor used to derive dim colors when the configuration doesn't
// provide an explicit dim palette.
const DimFactor = 0.66

// RGB is a single 24-bit color.
type RGB struct {
	R, G, B uint8
}

// FromHex parses a "#rrggbb" (or "rrggbb") string into an RGB.
func FromHex(s string) (RGB, error) {
	if len(s) == 6 {
		s = "#" + s
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return RGB{}, fmt.Errorf("invalid hex color %q: %w", s, err)
	}
	r, g, b := c.RGB255()
	return RGB{R: r, G: g, B: b}, nil
}

func (c RGB) String() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Dim returns the color scaled by DimFactor. The scaling is done in
// linear light so dim variants of saturated colors don't shift hue the
// way a naive byte multiply does.
func (c RGB) Dim() RGB {
	return c.Scale(DimFactor)
}

// Scale multiplies the color by factor in linear RGB space.
func (c RGB) Scale(factor float64) RGB {
	lr, lg, lb := colorful.Color{
		R: float64(c.R) / 255.0,
		G: float64(c.G) / 255.0,
		B: float64(c.B) / 255.0,
	}.LinearRgb()
	scaled := colorful.LinearRgb(lr*factor, lg*factor, lb*factor).Clamped()
	r, g, b := scaled.RGB255()
	return RGB{R: r, G: g, B: b}
}

// Name is an index into the palette with a well-known meaning. The first
// sixteen are the standard ANSI colors; the rest address the special
// entries past the 256-color range.
type Name uint16

const (
	Black Name = iota
	Red
	Green
	Yellow
	Blue
	Magenta
	Cyan
	White
	BrightBlack
	BrightRed
	BrightGreen
	BrightYellow
	BrightBlue
	BrightMagenta
	BrightCyan
	BrightWhite
)

const (
	Foreground Name = 256 + iota
	Background
	Cursor
	DimBlack
	DimRed
	DimGreen
	DimYellow
	DimBlue
	DimMagenta
	DimCyan
	DimWhite
	BrightForeground
	DimBackground
)

// DefaultRGB returns the built-in value for a named color. These are the
// values used when the configuration doesn't override the entry.
func (n Name) DefaultRGB() RGB {
	switch n {
	case Black:
		return RGB{0x1D, 0x1F, 0x21}
	case Red:
		return RGB{0xCC, 0x66, 0x66}
	case Green:
		return RGB{0xB5, 0xBD, 0x68}
	case Yellow:
		return RGB{0xF0, 0xC6, 0x74}
	case Blue:
		return RGB{0x81, 0xA2, 0xBE}
	case Magenta:
		return RGB{0xB2, 0x94, 0xC7}
	case Cyan:
		return RGB{0x8C, 0xC3, 0xE9}
	case White:
		return RGB{0xC5, 0xC8, 0xC6}
	case BrightBlack:
		return RGB{0x7C, 0x7C, 0x7C}
	case BrightRed:
		return RGB{0xFF, 0x8F, 0x8F}
	case BrightGreen:
		return RGB{0xB5, 0xBD, 0x68}
	case BrightYellow:
		return RGB{0xF0, 0xC6, 0x74}
	case BrightBlue:
		return RGB{0x81, 0xA2, 0xBE}
	case BrightMagenta:
		return RGB{0xB2, 0x94, 0xC7}
	case BrightCyan:
		return RGB{0x8C, 0xC3, 0xE9}
	case BrightWhite:
		return RGB{0xFF, 0xFF, 0xFF}
	case Foreground, BrightForeground:
		return RGB{0xC5, 0xC8, 0xC6}
	case Background:
		return RGB{0x1D, 0x1F, 0x21}
	case Cursor:
		return RGB{0xC5, 0xC8, 0xC6}
	default:
		return RGB{}
	}
}

// Tag describes which kind of reference a cell color holds.
type Tag uint8

const (
	// TagNamed references a named palette entry, including the special
	// foreground/background/cursor/dim entries.
	TagNamed Tag = iota
	// TagIndexed references one of the 256 indexed palette entries.
	TagIndexed
	// TagRGB is a direct 24-bit color from an SGR 38/48;2 sequence.
	TagRGB
)

// Color is the color reference stored in a cell. It resolves to a
// concrete RGB only against a palette, so palette reloads recolor
// existing content.
type Color struct {
	Tag   Tag
	Name  Name
	Index uint8
	RGB   RGB
}

func NewNamed(n Name) Color    { return Color{Tag: TagNamed, Name: n} }
func NewIndexed(i uint8) Color { return Color{Tag: TagIndexed, Index: i} }
func NewRGB(rgb RGB) Color     { return Color{Tag: TagRGB, RGB: rgb} }

func (c Color) String() string {
	switch c.Tag {
	case TagNamed:
		return fmt.Sprintf("named(%d)", c.Name)
	case TagIndexed:
		return fmt.Sprintf("indexed(%d)", c.Index)
	default:
		return c.RGB.String()
	}
}
