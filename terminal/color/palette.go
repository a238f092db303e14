package color

// Overrides carries the configured palette customizations. Every field
// is optional; nil means "use the computed default". Indexed entries
// below 16 are ignored here since named overrides cover them.
type Overrides struct {
	Foreground       *RGB
	Background       *RGB
	Cursor           *RGB
	BrightForeground *RGB

	// Normal and Bright override the sixteen named ANSI colors.
	Normal [8]*RGB
	Bright [8]*RGB

	// Dim, when non-nil, replaces the derived dim variants entirely.
	Dim *[8]RGB

	// Indexed overrides entries 16..255 of the cube and grayscale ramp.
	Indexed map[uint8]RGB
}

// Palette is the fully derived 269-entry color table. It is built once
// from an Overrides and never mutated afterwards; configuration reloads
// build a fresh palette.
type Palette [Count]RGB

// NewPalette derives the complete palette from the given overrides.
// Precedence per entry: explicit config value, then the computed
// cube/ramp value, then (for dim entries) the base color scaled by
// DimFactor.
func NewPalette(o *Overrides) *Palette {
	if o == nil {
		o = &Overrides{}
	}
	var p Palette

	// Named ANSI colors 0..15.
	for i := range Name(16) {
		p[i] = o.named(i)
	}

	// 6x6x6 color cube, 16..231.
	idx := 16
	for r := range uint8(6) {
		for g := range uint8(6) {
			for b := range uint8(6) {
				p[idx] = RGB{cubeChannel(r), cubeChannel(g), cubeChannel(b)}
				idx++
			}
		}
	}

	// 24-step grayscale ramp, 232..255.
	for i := range uint8(24) {
		v := i*10 + 8
		p[idx] = RGB{v, v, v}
		idx++
	}

	// Indexed config entries win over the computed cube/ramp values.
	for i, rgb := range o.Indexed {
		if i >= 16 {
			p[i] = rgb
		}
	}

	p[Foreground] = override(o.Foreground, Foreground.DefaultRGB())
	p[Background] = override(o.Background, Background.DefaultRGB())
	p[Cursor] = override(o.Cursor, Cursor.DefaultRGB())

	// Dim variants: explicit dim palette if configured, otherwise derived
	// from the (possibly overridden) normal colors.
	for i := range Name(8) {
		if o.Dim != nil {
			p[DimBlack+i] = o.Dim[i]
		} else {
			p[DimBlack+i] = p[Black+i].Dim()
		}
	}

	p[BrightForeground] = override(o.BrightForeground, p[Foreground])
	p[DimBackground] = p[Background].Dim()

	return &p
}

// Resolve maps a cell color reference to a concrete RGB.
func (p *Palette) Resolve(c Color) RGB {
	switch c.Tag {
	case TagNamed:
		return p[c.Name]
	case TagIndexed:
		return p[c.Index]
	default:
		return c.RGB
	}
}

func (o *Overrides) named(n Name) RGB {
	var cfg *RGB
	if n < 8 {
		cfg = o.Normal[n]
	} else {
		cfg = o.Bright[n-8]
	}
	return override(cfg, n.DefaultRGB())
}

func override(cfg *RGB, def RGB) RGB {
	if cfg != nil {
		return *cfg
	}
	return def
}

func cubeChannel(v uint8) uint8 {
	if v == 0 {
		return 0
	}
	return v*40 + 55
}
