package terminal

import (
	"github.com/gridterm/gridterm/terminal/color"
	"github.com/gridterm/gridterm/terminal/grid"
	"github.com/gridterm/gridterm/terminal/sgr"
)

// SetGraphicsRendition applies a parsed SGR attribute to the pen. The
// pen is copied into every cell written afterwards; nothing already on
// screen changes.
func (t *Terminal) SetGraphicsRendition(attr *sgr.Attribute) {
	switch attr.Type {
	case sgr.AttributeTypeUnset:
		// SGR 0 resets colors and styles but not the active hyperlink,
		// that one only OSC 8 closes.
		link := t.pen.Hyperlink
		t.pen = defaultPen()
		t.pen.Hyperlink = link

	case sgr.AttributeTypeBold:
		t.pen.Flags |= grid.FlagBold
	case sgr.AttributeTypeResetBold:
		// SGR 22 resets both bold and faint.
		t.pen.Flags &^= grid.FlagBold | grid.FlagDim

	case sgr.AttributeTypeFaint:
		t.pen.Flags |= grid.FlagDim
	case sgr.AttributeTypeResetFaint:
		t.pen.Flags &^= grid.FlagDim

	case sgr.AttributeTypeItalic:
		t.pen.Flags |= grid.FlagItalic
	case sgr.AttributeTypeResetItalic:
		t.pen.Flags &^= grid.FlagItalic

	case sgr.AttributeTypeUnderline:
		if attr.Underline == sgr.UnderlineTypeNone {
			t.pen.Flags &^= grid.FlagUnderline
		} else {
			t.pen.Flags |= grid.FlagUnderline
		}
	case sgr.AttributeTypeResetUnderline:
		t.pen.Flags &^= grid.FlagUnderline

	case sgr.AttributeTypeInverse:
		t.pen.Flags |= grid.FlagInverse
	case sgr.AttributeTypeResetInverse:
		t.pen.Flags &^= grid.FlagInverse

	case sgr.AttributeTypeInvisible:
		t.pen.Flags |= grid.FlagHidden
	case sgr.AttributeTypeResetInvisible:
		t.pen.Flags &^= grid.FlagHidden

	case sgr.AttributeTypeStrikethrough:
		t.pen.Flags |= grid.FlagStrikeout
	case sgr.AttributeTypeResetStrikethrough:
		t.pen.Flags &^= grid.FlagStrikeout

	case sgr.AttributeTypeFgNamed:
		t.pen.FG = color.NewNamed(attr.NamedFg)
	case sgr.AttributeTypeBgNamed:
		t.pen.BG = color.NewNamed(attr.NamedBg)

	case sgr.AttributeTypeFg256:
		t.pen.FG = color.NewIndexed(attr.IndexedFg)
	case sgr.AttributeTypeBg256:
		t.pen.BG = color.NewIndexed(attr.IndexedBg)

	case sgr.AttributeTypeDirectColorFg:
		t.pen.FG = color.NewRGB(attr.DirectColorFg)
	case sgr.AttributeTypeDirectColorBg:
		t.pen.BG = color.NewRGB(attr.DirectColorBg)

	case sgr.AttributeTypeResetFg:
		t.pen.FG = color.NewNamed(color.Foreground)
	case sgr.AttributeTypeResetBg:
		t.pen.BG = color.NewNamed(color.Background)

	case sgr.AttributeTypeOverline,
		sgr.AttributeTypeResetOverline,
		sgr.AttributeTypeBlink,
		sgr.AttributeTypeResetBlink,
		sgr.AttributeTypeUnderlineColor,
		sgr.AttributeTypeUnderlineColor256,
		sgr.AttributeTypeResetUnderlineColor:
		// Parsed but not represented in the cell model.
		t.logger.Debug("ignoring unsupported SGR attribute", "type", attr.Type)

	default:
		t.logger.Warn("unknown SGR attribute, ignoring", "attr", attr)
	}
}
