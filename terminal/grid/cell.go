package grid

import (
	"github.com/gridterm/gridterm/terminal/color"
)

// Flags is the per-cell attribute bitset.
type Flags uint16

const (
	FlagInverse Flags = 1 << iota
	FlagBold
	FlagItalic
	FlagDim
	FlagUnderline
	FlagHidden
	FlagStrikeout

	// FlagWrapline marks the last cell of a row whose line soft-wraps
	// onto the next physical row. Logical-line reconstruction and
	// clipboard extraction follow chains of this flag.
	FlagWrapline

	// FlagWideChar marks the head cell of a double-column character.
	// The cell immediately after it always carries FlagWideCharSpacer.
	FlagWideChar
	FlagWideCharSpacer

	// FlagLeadingWideCharSpacer marks the last column of a row that was
	// skipped because a wide character didn't fit and wrapped instead.
	FlagLeadingWideCharSpacer
)

func (f Flags) Has(flag Flags) bool { return f&flag != 0 }

// Hyperlink is an OSC 8 link attached to a cell.
type Hyperlink struct {
	ID  string
	URI string
}

// CellExtra holds the rare cell payloads. Keeping them behind a pointer
// keeps the common cell small; most cells never allocate one.
type CellExtra struct {
	// Zero-width combining characters attached to the base rune.
	Zerowidth []rune

	Hyperlink *Hyperlink
}

// Cell is a single styled grid position.
type Cell struct {
	Rune  rune
	FG    color.Color
	BG    color.Color
	Flags Flags
	Extra *CellExtra
}

// NewCell returns the default blank cell: a space rendered with the
// terminal foreground on the terminal background.
func NewCell() Cell {
	return Cell{
		Rune: ' ',
		FG:   color.NewNamed(color.Foreground),
		BG:   color.NewNamed(color.Background),
	}
}

// IsEmpty reports whether the cell is indistinguishable from untouched
// background, which lets row resets and trailing-whitespace trimming
// skip it.
func (c Cell) IsEmpty() bool {
	return (c.Rune == ' ' || c.Rune == 0) &&
		c.Extra == nil &&
		c.BG == color.NewNamed(color.Background) &&
		c.FG == color.NewNamed(color.Foreground) &&
		c.Flags&(FlagInverse|FlagUnderline|FlagStrikeout|FlagWrapline|
			FlagWideChar|FlagWideCharSpacer|FlagLeadingWideCharSpacer) == 0
}

// PushZerowidth attaches a zero-width combining character.
func (c *Cell) PushZerowidth(r rune) {
	if c.Extra == nil {
		c.Extra = &CellExtra{}
	}
	c.Extra.Zerowidth = append(c.Extra.Zerowidth, r)
}

// Zerowidth returns the attached combining characters, if any.
func (c Cell) Zerowidth() []rune {
	if c.Extra == nil {
		return nil
	}
	return c.Extra.Zerowidth
}

// SetHyperlink attaches (or clears, with nil) a hyperlink reference.
func (c *Cell) SetHyperlink(link *Hyperlink) {
	if link == nil {
		if c.Extra != nil {
			c.Extra.Hyperlink = nil
			if c.Extra.Zerowidth == nil {
				c.Extra = nil
			}
		}
		return
	}
	if c.Extra == nil {
		c.Extra = &CellExtra{}
	}
	c.Extra.Hyperlink = link
}

// Hyperlink returns the attached hyperlink, if any.
func (c Cell) Hyperlink() *Hyperlink {
	if c.Extra == nil {
		return nil
	}
	return c.Extra.Hyperlink
}

// Width returns the number of columns the cell occupies: 2 for a wide
// head, 1 otherwise.
func (c Cell) Width() int {
	if c.Flags.Has(FlagWideChar) {
		return 2
	}
	return 1
}
