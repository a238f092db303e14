package terminal

// Charset is one of the character sets a G-slot can be designated to.
// Only US-ASCII and the DEC Special Graphics (line drawing) set change
// behavior; everything else the designation sequence can name is
// treated as ASCII.
type Charset uint8

const (
	CharsetASCII Charset = iota
	CharsetSpecial
)

// charsetState tracks the four G-slots and which one is active. SO/SI
// switch between G0 and G1, the designation escapes assign sets to
// slots.
type charsetState struct {
	slots  [4]Charset
	active int
}

func defaultCharsetState() charsetState {
	return charsetState{}
}

func (c *charsetState) designate(slot int, charset uint8) {
	if slot < 0 || slot > 3 {
		return
	}
	switch charset {
	case '0':
		c.slots[slot] = CharsetSpecial
	default:
		// 'B' is US-ASCII. 'A' (UK) and the other national sets only
		// differ in a handful of glyphs we don't remap.
		c.slots[slot] = CharsetASCII
	}
}

func (c *charsetState) invoke(slot int) {
	if slot < 0 || slot > 3 {
		return
	}
	c.active = slot
}

func (c *charsetState) mapRune(r rune) rune {
	if c.slots[c.active] != CharsetSpecial {
		return r
	}
	if mapped, ok := decSpecialGraphics[r]; ok {
		return mapped
	}
	return r
}

// DEC Special Graphics, the 0x5F..0x7E range. Everything below that
// passes through unchanged.
var decSpecialGraphics = map[rune]rune{
	'_': ' ',
	'`': '◆',
	'a': '▒',
	'b': '␉',
	'c': '␌',
	'd': '␍',
	'e': '␊',
	'f': '°',
	'g': '±',
	'h': '␤',
	'i': '␋',
	'j': '┘',
	'k': '┐',
	'l': '┌',
	'm': '└',
	'n': '┼',
	'o': '⎺',
	'p': '⎻',
	'q': '─',
	'r': '⎼',
	's': '⎽',
	't': '├',
	'u': '┤',
	'v': '┴',
	'w': '┬',
	'x': '│',
	'y': '≤',
	'z': '≥',
	'{': 'π',
	'|': '≠',
	'}': '£',
	'~': '·',
}
