package osc

import "fmt"

// CommandType identifies the OSC command family after parsing.
type CommandType int

const (
	// CommandChangeWindowTitle sets the terminal window title (OSC 0
	// and OSC 2; OSC 0 also covers the icon name).
	CommandChangeWindowTitle CommandType = iota

	// CommandChangeWindowIcon sets the icon name only (OSC 1).
	CommandChangeWindowIcon

	// CommandColorOps carries one or more palette set/query operations
	// (OSC 4, 10, 11, 12).
	CommandColorOps

	// CommandResetColor restores palette entries to their configured
	// values (OSC 104, 110, 111, 112).
	CommandResetColor

	// CommandHyperlinkStart opens an OSC 8 hyperlink region.
	CommandHyperlinkStart

	// CommandHyperlinkEnd closes the current OSC 8 hyperlink region.
	CommandHyperlinkEnd

	// CommandClipboard reads or writes a clipboard (OSC 52).
	CommandClipboard
)

// Special palette slots addressable by the dynamic-color commands.
// Regular indexed colors use their 0-255 index directly.
const (
	ColorForeground uint16 = 256
	ColorBackground uint16 = 257
	ColorCursor     uint16 = 258
)

// ColorOp is one set-or-query operation against a palette slot.
type ColorOp struct {
	Index uint16

	// Spec is the color specification ("rgb:aa/bb/cc", "#aabbcc" or a
	// named color). Empty Spec with Query false is dropped by the
	// dispatcher.
	Spec string

	// Query is true when the client asked for the current value ("?").
	Query bool
}

// Hyperlink is the payload of an OSC 8 start command.
type Hyperlink struct {
	ID  string
	URI string
}

// Clipboard is the payload of an OSC 52 command.
type Clipboard struct {
	// Which selection to access: 'c' clipboard, 'p' primary, 's'
	// secondary.
	Selection uint8

	// Decoded data to store. Query is true when the client sent "?"
	// asking for the current contents instead.
	Data  string
	Query bool
}

// Command is a fully parsed OSC sequence ready for dispatch.
type Command struct {
	Type CommandType

	// CommandChangeWindowTitle / CommandChangeWindowIcon
	Title string

	// CommandColorOps
	Colors []ColorOp

	// CommandResetColor: the palette slots to reset. Empty means reset
	// every slot the command family covers (bare OSC 104).
	ResetIndices []uint16

	// CommandHyperlinkStart
	Hyperlink *Hyperlink

	// CommandClipboard
	Clipboard *Clipboard

	// Terminator the sequence arrived with. Query responses must echo
	// the same terminator the client used.
	Terminator Terminator
}

func (c *Command) String() string {
	return fmt.Sprintf("OSC %d", c.Type)
}

// Terminator is how the OSC string ended: BEL (0x07) or ST (ESC \).
type Terminator int

const (
	TerminatorST Terminator = iota
	TerminatorBEL
)

// Bytes returns the terminator's wire form for query responses.
func (t Terminator) Bytes() []byte {
	if t == TerminatorBEL {
		return []byte{0x07}
	}
	return []byte{0x1B, '\\'}
}
