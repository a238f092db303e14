package handler

import (
	"github.com/gridterm/gridterm/terminal/core"
	"github.com/gridterm/gridterm/terminal/sequences/csi"
	"github.com/gridterm/gridterm/terminal/sequences/osc"
	"github.com/gridterm/gridterm/terminal/sgr"
)

type (
	// PrintHandler receives decoded scalar values for display.
	PrintHandler interface {
		Print(cp uint32)
	}

	FormatEffectorHandler interface {
		// NextLine move cursor to the first position of next line, if the
		// cursor is at the bottom of the screen, a scroll up is performed.
		NextLine()
		// Index moves cursor downward one line without changing the
		// column position. If the active position is at the bottom of the
		// screen, a scroll up is performed.
		Index()
		// ReverseIndex moves cursor upward one line without changing the
		// column position. If the active position is at the top of the screen,
		// a scroll down is performed.
		ReverseIndex()
		// TabSet sets one horizontal stop at the active position.
		TabSet()
		// FullReset resets all attributes to their defaults.
		FullReset()
	}

	SGRHandler interface {
		SetGraphicsRendition(sgr *sgr.Attribute)
	}
	VT100Handler interface {
		// SetMode sets the mode to the given value, if the mode is not
		// settable, it skips.
		SetMode(mode core.Mode, value bool)
	}
	// EditorHandler interface includes all cursor movement and content
	// related methods
	EditorHandler interface {
		// DeleteChars deletes char repeated time start at the current cursor
		// position rightward
		DeleteChars(reepeated uint16)
		// DeleteLines deletes line repeated time start at the current cursor
		// position downward
		DeleteLines(repeated uint16)
		// InsertLines inserts line repeated time start at the current cursor
		// position downward
		InsertLines(repeated uint16)
		// InsertBlanks inserts blanks repeated time start at the current
		// cursor position rightward
		InsertBlanks(repeated uint16)
		// EraseInLine erases chars in line with behavior depends on mode
		EraseInLine(mode csi.ELMode)
		// EraseInDisplay erases chars in display with behavior depends on mode
		EraseInDisplay(erase csi.EDMode)
		// LineFeed moves cursor to the first position of next line,
		LineFeed()
		// Backspace moves cursor to the left one character position,
		// unless it is at the left margin, in which case no action occurs.
		Backspace()
		// SetCursorRow moves cursor to rows
		SetCursorRow(row uint16)
		// SetCursorCol moves cursor to cols
		SetCursorCol(col uint16)
		// SetCursorPosition moves cursor to row and col
		SetCursorPosition(row, col uint16)
		// SetCursorUp moves cursor up by offset, carriage controls whether
		// the cursor stays in same col position or movess to col 0
		SetCursorUp(offset uint16, carriage bool)
		// SetCursorDown moves cursor down by offset, carriage controls whether
		// the cursor stays in same col position or movess to col 0
		SetCursorDown(offset uint16, carriage bool)
		// SetCursorLeft moves cursor left by offset, unless it is at
		// the left margin, in which case no actions occurs
		SetCursorLeft(offset uint16)
		// SetCursorRight moves cursor right by offset, unless it is at
		// the right margin, in which case no actions occurs
		SetCursorRight(offset uint16)
		// SetCursorTabRight move cursor to the repeated next tab stop,
		// or to the right margin if no further tab stops are present
		// on the line.
		SetCursorTabRight(repeated uint16)
		// SetCursorTabLeft move cursor to the repeated previous tab stop,
		// or to the left margin if no further tab stops are present
		// on the line.
		SetCursorTabLeft(repeated uint16)
		// CarriageReturn moves cursor to left margin of the current line.
		CarriageReturn()
		// EraseChars replaces repeated chars rightward from the cursor
		// with blanks, without shifting the rest of the line (ECH).
		EraseChars(repeated uint16)
		// RepeatLastChar prints the most recently printed character
		// repeated times (REP).
		RepeatLastChar(repeated uint16)
		// Bell rings the terminal bell.
		Bell()
	}

	// ScrollHandler covers explicit scrolling and margin control.
	ScrollHandler interface {
		// ScrollUp shifts the scroll region content up, blanks appear
		// at the bottom of the region (SU).
		ScrollUp(repeated uint16)
		// ScrollDown shifts the scroll region content down, blanks
		// appear at the top of the region (SD).
		ScrollDown(repeated uint16)
		// SetScrollRegion sets the top/bottom margins (DECSTBM).
		// Both zero means the full screen. The cursor homes afterward.
		SetScrollRegion(top, bottom uint16)
	}

	// CursorStateHandler covers cursor save/restore and appearance.
	CursorStateHandler interface {
		// SaveCursor snapshots position, attributes and charsets
		// (DECSC, CSI s).
		SaveCursor()
		// RestoreCursor restores the last snapshot (DECRC, CSI u).
		RestoreCursor()
		// SetCursorStyle applies a DECSCUSR style parameter.
		SetCursorStyle(style uint16)
	}

	// TabHandler covers tab stop management beyond movement.
	TabHandler interface {
		// TabClear clears the tab stop under the cursor (mode 0) or
		// every tab stop (mode 3).
		TabClear(mode uint16)
	}

	// CharsetHandler designates and invokes the G0-G3 character sets.
	CharsetHandler interface {
		// DesignateCharset assigns a charset to a slot: slot 0-3 from
		// the ESC ( ) * + intermediates, charset is the final byte
		// ('B' ASCII, '0' DEC special graphics, ...).
		DesignateCharset(slot int, charset uint8)
		// InvokeCharset shifts the active GL slot (SI selects G0, SO
		// selects G1).
		InvokeCharset(slot int)
	}

	// ReportHandler covers sequences that require a reply on the wire.
	ReportHandler interface {
		// DeviceStatusReport answers DSR 5 (status) and 6 (cursor
		// position).
		DeviceStatusReport(req uint16)
		// DeviceAttributes answers primary DA (CSI c).
		DeviceAttributes()
	}

	// TitleHandler covers the window title and the xterm title stack.
	TitleHandler interface {
		ChangeWindowTitle(title string)
		// PushTitle/PopTitle implement XTWINOPS 22/23.
		PushTitle()
		PopTitle()
	}

	// OSCHandler covers the string commands that mutate terminal state.
	OSCHandler interface {
		// SetColors applies OSC 4/10/11/12 set and query operations.
		SetColors(ops []osc.ColorOp, terminator osc.Terminator)
		// ResetColors restores palette slots (OSC 104/110/111/112);
		// empty means the full indexed palette.
		ResetColors(indices []uint16)
		// HyperlinkStart begins attaching the link to printed cells.
		HyperlinkStart(id, uri string)
		// HyperlinkEnd stops attaching a link.
		HyperlinkEnd()
		// Clipboard reads or writes a clipboard selection (OSC 52).
		Clipboard(c *osc.Clipboard, terminator osc.Terminator)
	}

	// ScreenHandler covers whole-screen state changes driven by ESC.
	ScreenHandler interface {
		// ScreenAlignmentTest fills the screen with 'E' (DECALN).
		ScreenAlignmentTest()
		// SetKeypadApplicationMode toggles application keypad
		// (ESC = / ESC >).
		SetKeypadApplicationMode(enabled bool)
	}
)
