package terminal

import (
	"io"
	"maps"
	"strings"

	"github.com/gridterm/gridterm/logger"
	"github.com/gridterm/gridterm/terminal/color"
	"github.com/gridterm/gridterm/terminal/core"
	"github.com/gridterm/gridterm/terminal/grid"
	"github.com/gridterm/gridterm/terminal/selection"
	"github.com/gridterm/gridterm/terminal/sequences/csi"
	"github.com/gridterm/gridterm/terminal/size"
	"github.com/gridterm/gridterm/terminal/tabstops"
	dw "github.com/mattn/go-runewidth"
)

type (
	Options struct {
		Cols int // The number of columns in the terminal
		Rows int // The number of rows in the terminal

		// Maximum number of scrollback lines kept beyond the visible
		// screen. The alternate screen never keeps history.
		MaxHistory int

		// Characters that stop semantic (word) selection expansion.
		// Empty means selection.DefaultEscapeChars.
		SemanticEscapeChars string

		// Optional palette customization. Nil uses the built-in colors.
		Colors *color.Overrides

		// The default mode state. When the terminal gets a reset, it will
		// revert back to this state
		Modes map[core.Mode]bool

		// Where query responses (DSR, DA, OSC color queries) are
		// written. Normally the PTY. Nil drops responses.
		Reply io.Writer

		Logger logger.Logger
	}

	// Pen is the current SGR state applied to every printed cell.
	Pen struct {
		FG, BG    color.Color
		Flags     grid.Flags
		Hyperlink *grid.Hyperlink
	}

	// Cursor is the active cursor position in screen coordinates plus
	// the soft-wrap flag. PendingWrap set means the last print filled
	// the final column and the next one wraps first.
	Cursor struct {
		X, Y        size.CellCountInt
		PendingWrap bool
	}

	// SavedCursor is the state stashed by DECSC and restored by DECRC.
	// Each screen (primary and alternate) keeps its own.
	SavedCursor struct {
		Cursor   Cursor
		Pen      Pen
		Charsets charsetState
		Origin   bool
	}

	// ScrollingRegion is the aera of the screen designated where
	// scrolling occurs, set by DECSTBM. Rows are 0-indexed with
	// top <= bottom. Left/right margins are not supported; the region
	// always spans the full width.
	ScrollingRegion struct {
		top    size.CellCountInt
		bottom size.CellCountInt
	}

	// Terminal is the full emulator state machine: two screens over
	// ring-buffer grids, cursor and pen state, modes, tabstops,
	// charsets, the color palette and the active selection.
	//
	// It implements all the stream handler interfaces, so wiring it to
	// a stream.Stream gives a complete interpreter.
	Terminal struct {
		main *grid.Grid
		alt  *grid.Grid
		// Points at main or alt depending on the screen mode.
		active *grid.Grid
		onAlt  bool

		// The size of the terminal
		rows, cols size.CellCountInt
		maxHistory int

		Modes  *core.ModeState
		cursor Cursor
		pen    Pen

		savedMain *SavedCursor
		savedAlt  *SavedCursor

		// The previous printed character, we need this one for the repeat
		// previous char CSI (ESC [ <n> b).
		previousChar *uint32

		// Where the tabstops are.
		tabstops *tabstops.Tabstops

		// The current scrolling region.
		scrollingRegion ScrollingRegion

		charsets charsetState

		palette        color.Palette
		defaultPalette color.Palette

		title      string
		titleStack []string

		cursorStyle uint16
		keypadApp   bool
		bellCount   int

		sel                 *selection.Selection
		semanticEscapeChars string

		// OSC 52 clipboard/primary contents, keyed by selection byte.
		clipboards map[uint8]string

		reply  io.Writer
		logger logger.Logger
	}
)

func NewTerminal(opts Options) *Terminal {
	cols := size.CellCountInt(opts.Cols)
	rows := size.CellCountInt(opts.Rows)
	history := max(opts.MaxHistory, 0)
	escapeChars := opts.SemanticEscapeChars
	if escapeChars == "" {
		escapeChars = selection.DefaultEscapeChars
	}
	log := opts.Logger
	if log == nil {
		log = logger.DefaultLogger
	}
	palette := *color.NewPalette(opts.Colors)

	// The mode state mutates its value map, so the defaults get their
	// own copy.
	base := opts.Modes
	if base == nil {
		base = core.ModePacked
	}
	values := make(map[core.Mode]bool, len(base))
	defaults := make(map[core.Mode]bool, len(base))
	maps.Copy(values, base)
	maps.Copy(defaults, base)

	t := &Terminal{
		main:       grid.NewGrid(rows, cols, history, grid.NewCell()),
		alt:        grid.NewGrid(rows, cols, 0, grid.NewCell()),
		rows:       rows,
		cols:       cols,
		maxHistory: history,
		Modes:      core.NewModeState(values, defaults),
		pen:        defaultPen(),
		tabstops: tabstops.NewTabstops(
			cols,
			tabstops.TABSTOP_INTERVAL,
		),
		scrollingRegion: ScrollingRegion{
			top:    0,
			bottom: rows - 1,
		},
		charsets:            defaultCharsetState(),
		palette:             palette,
		defaultPalette:      palette,
		semanticEscapeChars: escapeChars,
		clipboards:          map[uint8]string{},
		reply:               opts.Reply,
		logger:              log,
	}
	t.active = t.main
	return t
}

func defaultPen() Pen {
	return Pen{
		FG: color.NewNamed(color.Foreground),
		BG: color.NewNamed(color.Background),
	}
}

// blank returns the erase template for the current pen: background
// color only, per BCE. Flags and foreground do not survive an erase.
func (t *Terminal) blank() grid.Cell {
	c := grid.NewCell()
	c.BG = t.pen.BG
	return c
}

// Accessors used by renderers and the session facade.

func (t *Terminal) Cols() size.CellCountInt { return t.cols }
func (t *Terminal) Rows() size.CellCountInt { return t.rows }

// Grid returns the active screen's grid (alternate when enabled).
func (t *Terminal) Grid() *grid.Grid { return t.active }

func (t *Terminal) Cursor() Cursor       { return t.cursor }
func (t *Terminal) CursorStyle() uint16  { return t.cursorStyle }
func (t *Terminal) IsAltScreen() bool    { return t.onAlt }
func (t *Terminal) Title() string        { return t.title }
func (t *Terminal) KeypadApplication() bool { return t.keypadApp }

// Palette returns the live palette, including any OSC 4/10/11/12
// changes applied since startup.
func (t *Terminal) Palette() *color.Palette { return &t.palette }

// BellCount returns how many BEL characters were processed. Renderers
// diff it between frames to decide whether to flash or ring.
func (t *Terminal) BellCount() int { return t.bellCount }

// ClipboardContent returns what OSC 52 last stored for the given
// selection byte ('c' clipboard, 'p' primary).
func (t *Terminal) ClipboardContent(sel uint8) string { return t.clipboards[sel] }

// Print writes a single codepoint at the cursor, handling charset
// translation, soft wrap, insert mode and wide characters.
func (t *Terminal) Print(cp uint32) {
	r := t.charsets.mapRune(rune(cp))

	// Determine the width of this character so we can handle
	// non-single-width characters properly. We have a fast-path for
	// byte-sized characters since they're so common. We can ignore control
	// characters because they are always filtered prior.
	var width size.CellCountInt
	if cp < 0xA0 {
		width = 1
	} else {
		width = size.CellCountInt(dw.RuneWidth(r))
	}

	// Zero-width characters attach to the previously printed cell.
	if width == 0 {
		t.attachZerowidth(r)
		return
	}
	t.previousChar = &cp

	// If we're soft-wrapping, then handle that first.
	if t.cursor.PendingWrap && t.Modes.Get(core.ModeWraparound) {
		t.printWrap()
	}

	// If we have insert mode enabled, then we need to handle that.
	// We only do insert mode if we are not at the end of the line.
	if t.Modes.Get(core.ModeInsert) && t.cursor.X+width < t.cols {
		t.InsertBlanks(uint16(width))
	}

	switch width {
	case 1:
		t.writeCell(t.cursor.Y, t.cursor.X, r, 0)

	case 2:
		// Degenerate one-column screens get the wide char crammed into a
		// narrow cell. Terminals should never really be this small.
		if t.cols < 2 {
			t.writeCell(t.cursor.Y, t.cursor.X, r, 0)
			break
		}

		// No room for both halves at the end of the line: leave a spacer
		// head behind and wrap first.
		if t.cursor.X == t.cols-1 {
			if !t.Modes.Get(core.ModeWraparound) {
				// Without wraparound the wide char doesn't fit and is
				// dropped entirely. This is how xterm behaves.
				return
			}
			head := t.active.CellMut(t.cursor.Y, t.cursor.X)
			*head = t.blank()
			head.Flags |= grid.FlagLeadingWideCharSpacer
			t.printWrap()
		}

		t.writeCell(t.cursor.Y, t.cursor.X, r, grid.FlagWideChar)
		t.writeCell(t.cursor.Y, t.cursor.X+1, 0, grid.FlagWideCharSpacer)
	}

	// If we are at the end of the line, we need to wrap the next time.
	// In this case, we don't move the cursor.
	if t.cursor.X+width >= t.cols {
		t.cursor.PendingWrap = true
		return
	}
	t.cursor.X += width
}

// writeCell stores a cell with the current pen, clearing the other half
// of any wide character the write splits.
func (t *Terminal) writeCell(y, x size.CellCountInt, r rune, flags grid.Flags) {
	cur := t.active.CellMut(y, x)

	switch {
	case cur.Flags.Has(grid.FlagWideChar) && x+1 < t.cols:
		spacer := t.active.CellMut(y, x+1)
		if spacer.Flags.Has(grid.FlagWideCharSpacer) {
			*spacer = t.blank()
		}
	case cur.Flags.Has(grid.FlagWideCharSpacer) && x > 0:
		wide := t.active.CellMut(y, x-1)
		if wide.Flags.Has(grid.FlagWideChar) {
			*wide = t.blank()
		}
	}

	*cur = grid.Cell{
		Rune:  r,
		FG:    t.pen.FG,
		BG:    t.pen.BG,
		Flags: t.pen.Flags | flags,
	}
	if t.pen.Hyperlink != nil {
		cur.SetHyperlink(t.pen.Hyperlink)
	}
}

func (t *Terminal) attachZerowidth(r rune) {
	x := t.cursor.X
	// Unless a wrap is pending (cursor parked on the last printed cell)
	// the previously printed cell is one to the left.
	if !t.cursor.PendingWrap && x > 0 {
		x--
	}
	cell := t.active.CellMut(t.cursor.Y, x)
	if cell.Flags.Has(grid.FlagWideCharSpacer) && x > 0 {
		cell = t.active.CellMut(t.cursor.Y, x-1)
	}
	cell.PushZerowidth(r)
}

func (t *Terminal) printWrap() {
	t.active.Row(t.cursor.Y).SetWrapped(true)
	t.Index()
	t.cursor.X = 0
}

// RepeatLastChar re-prints the preceding graphic character (CSI b).
func (t *Terminal) RepeatLastChar(repeated uint16) {
	if t.previousChar == nil {
		return
	}
	prev := *t.previousChar
	for range repeated {
		t.Print(prev)
	}
}

func (t *Terminal) Bell() {
	t.bellCount++
}

// Backspace moves the cursor back a column (but not less than 0).
func (t *Terminal) Backspace() {
	t.cursor.PendingWrap = false
	if t.cursor.X > 0 {
		t.cursor.X--
	}
}

// CarriageReturn moves cursor to first column of current line
func (t *Terminal) CarriageReturn() {
	// Always reset pending wrap state
	t.cursor.PendingWrap = false
	t.cursor.X = 0
}

// Linefeed moves the cursor to the next line.
func (t *Terminal) LineFeed() {
	t.Index()
	if t.Modes.Get(core.ModeLineFeed) {
		t.CarriageReturn()
	}
}

// NextLine is Index plus carriage return (NEL).
func (t *Terminal) NextLine() {
	t.Index()
	t.CarriageReturn()
}

// Index moves the cursor to the next line.
//
// If the cursor is outside of the scrolling region: move the cursor one
// line down if it is not on the bottom-most line of the screen.
//
// If the cursor is inside the scrolling region:
//   - If the cursor is on the bottom-most line of the scrolling region,
//     a scroll up is performed with amount=1
//   - Otherwise, move the cursor one line down
//
// This unsets the pending wrap state without wrapping.
func (t *Terminal) Index() {
	t.cursor.PendingWrap = false

	// Outside of the scrolling region we move down until the bottom of
	// the screen.
	if t.cursor.Y < t.scrollingRegion.top ||
		t.cursor.Y > t.scrollingRegion.bottom {
		if t.cursor.Y < t.rows-1 {
			t.cursor.Y++
		}
		return
	}

	if t.cursor.Y == t.scrollingRegion.bottom {
		t.scrollUpRegion(t.scrollingRegion.top, 1)
		return
	}
	t.cursor.Y++
}

// ReverseIndex moves the cursor to the previous line, possibly
// scrolling down at the top of the scrolling region.
func (t *Terminal) ReverseIndex() {
	t.cursor.PendingWrap = false

	if t.cursor.Y != t.scrollingRegion.top {
		if t.cursor.Y > 0 {
			t.cursor.Y--
		}
		return
	}
	t.active.ScrollDown(t.scrollingRegion.top, t.scrollingRegion.bottom, 1, t.blank())
}

// scrollUpRegion scrolls [top, region bottom] up by n, feeding
// scrollback when the region covers the whole screen and keeping the
// selection pinned to its content.
func (t *Terminal) scrollUpRegion(top size.CellCountInt, n size.CellCountInt) {
	evicted := t.active.ScrollUp(top, t.scrollingRegion.bottom, n, t.blank())
	t.rotateSelection(evicted)
}

func (t *Terminal) rotateSelection(evicted int) {
	if t.sel == nil || evicted == 0 {
		return
	}
	if !t.sel.Rotate(-evicted) {
		t.sel = nil
	}
}

// ScrollUp implements CSI S: scroll the region's content up, cursor
// unmoved.
func (t *Terminal) ScrollUp(repeated uint16) {
	if repeated == 0 {
		repeated = 1
	}
	t.scrollUpRegion(t.scrollingRegion.top, size.CellCountInt(repeated))
}

// ScrollDown implements CSI T: scroll the region's content down, cursor
// unmoved. With the region spanning the whole screen this pulls lines
// back out of scrollback, making it the exact inverse of ScrollUp.
func (t *Terminal) ScrollDown(repeated uint16) {
	if repeated == 0 {
		repeated = 1
	}
	t.active.ScrollDown(
		t.scrollingRegion.top,
		t.scrollingRegion.bottom,
		size.CellCountInt(repeated),
		t.blank(),
	)
}

// SetScrollRegion implements DECSTBM. Parameters are 1-based; a zero or
// out-of-range bottom means the last line. Invalid regions (top >=
// bottom) are ignored. The cursor homes afterwards.
func (t *Terminal) SetScrollRegion(top, bottom uint16) {
	tp := max(top, 1)
	bt := bottom
	if bt == 0 || bt > uint16(t.rows) {
		bt = uint16(t.rows)
	}
	if tp >= bt {
		return
	}
	t.scrollingRegion = ScrollingRegion{
		top:    size.CellCountInt(tp - 1),
		bottom: size.CellCountInt(bt - 1),
	}
	t.SetCursorPosition(1, 1)
}

// Move the cursor up offset lines, stopping at the top of the scrolling
// region when inside it. If offset is 0, adjust it to 1.
func (t *Terminal) SetCursorUp(offset uint16, carriage bool) {
	// Always reset pending wrap state
	t.cursor.PendingWrap = false

	// The maximum amount the cursor can move up depends on scrolling
	// regions.
	var maxm size.CellCountInt
	if t.cursor.Y >= t.scrollingRegion.top {
		maxm = t.cursor.Y - t.scrollingRegion.top
	} else {
		maxm = t.cursor.Y
	}
	t.cursor.Y -= min(maxm, max(size.CellCountInt(offset), 1))

	if carriage {
		t.CarriageReturn()
	}
}

// Move the cursor down offset lines, stopping at the bottom of the
// scrolling region when inside it. If offset is 0, adjust it to 1.
func (t *Terminal) SetCursorDown(offset uint16, carriage bool) {
	// Always reset pending wrap state
	t.cursor.PendingWrap = false

	var maxm size.CellCountInt
	if t.cursor.Y <= t.scrollingRegion.bottom {
		maxm = t.scrollingRegion.bottom - t.cursor.Y
	} else {
		maxm = (t.rows - 1) - t.cursor.Y
	}
	t.cursor.Y += min(maxm, max(size.CellCountInt(offset), 1))

	if carriage {
		t.CarriageReturn()
	}
}

// Move the cursor left offset columns (but not past column 0). If
// offset is 0, adjust it to 1.
func (t *Terminal) SetCursorLeft(offset uint16) {
	t.cursor.PendingWrap = false
	count := min(max(size.CellCountInt(offset), 1), t.cursor.X)
	t.cursor.X -= count
}

// Move the cursor right offset columns (but not past the last column).
// If offset is 0, adjust it to 1.
func (t *Terminal) SetCursorRight(offset uint16) {
	t.cursor.PendingWrap = false
	maxm := t.cols - 1 - t.cursor.X
	t.cursor.X += min(max(size.CellCountInt(offset), 1), maxm)
}

// SetCursorCol implements HPA, 1-based.
func (t *Terminal) SetCursorCol(col uint16) {
	t.cursor.PendingWrap = false
	c := max(size.CellCountInt(col), 1)
	t.cursor.X = min(c-1, t.cols-1)
}

// SetCursorRow implements VPA, 1-based. Origin mode makes it relative
// to the scroll region top.
func (t *Terminal) SetCursorRow(row uint16) {
	t.cursor.PendingWrap = false
	r := max(size.CellCountInt(row), 1)
	if t.Modes.Get(core.ModeOrigin) {
		t.cursor.Y = min(t.scrollingRegion.top+r-1, t.scrollingRegion.bottom)
		return
	}
	t.cursor.Y = min(r-1, t.rows-1)
}

// SetCursorPosition moves the cursor to the position indicated by row
// and col (1-indexed). Zero components are adjusted to 1 and
// overflowing ones are clamped. With origin mode set the coordinates
// are relative to (and confined by) the scrolling region.
func (t *Terminal) SetCursorPosition(row, col uint16) {
	t.cursor.PendingWrap = false

	irow := max(size.CellCountInt(row), 1)
	icol := max(size.CellCountInt(col), 1)

	if t.Modes.Get(core.ModeOrigin) {
		t.cursor.Y = min(t.scrollingRegion.top+irow-1, t.scrollingRegion.bottom)
		t.cursor.X = min(icol-1, t.cols-1)
		return
	}
	t.cursor.Y = min(irow-1, t.rows-1)
	t.cursor.X = min(icol-1, t.cols-1)
}

// SetCursorTabRight moves the cursor to the next tabstop, repeated
// times, stopping at the last column.
func (t *Terminal) SetCursorTabRight(repeated uint16) {
	t.cursor.PendingWrap = false
	for range max(repeated, 1) {
		for t.cursor.X < t.cols-1 {
			t.cursor.X++
			if t.tabstops.Get(t.cursor.X) {
				break
			}
		}
	}
}

// SetCursorTabLeft moves the cursor to the previous tabstop, repeated
// times, stopping at column 0.
func (t *Terminal) SetCursorTabLeft(repeated uint16) {
	t.cursor.PendingWrap = false
	for range max(repeated, 1) {
		for t.cursor.X > 0 {
			t.cursor.X--
			if t.tabstops.Get(t.cursor.X) {
				break
			}
		}
	}
}

// TabSet implements HTS.
func (t *Terminal) TabSet() {
	t.tabstops.Set(t.cursor.X)
}

// TabClear implements TBC: 0 clears the tabstop at the cursor, 3 clears
// all of them.
func (t *Terminal) TabClear(mode uint16) {
	switch mode {
	case 0:
		t.tabstops.Unset(t.cursor.X)
	case 3:
		t.tabstops.Reset(0)
	default:
		t.logger.Warn("unimplemented tab clear mode, ignoring", "mode", mode)
	}
}

func (t *Terminal) EraseInDisplay(mode csi.EDMode) {
	blank := t.blank()
	switch mode {
	case csi.EDModeComplete:
		for y := range t.rows {
			row := t.active.Row(y)
			row.Reset(blank)
			row.SetWrapped(false)
		}
		t.cursor.PendingWrap = false

	case csi.EDModeBelow:
		// The cursor line from the cursor right, everything below fully.
		t.EraseInLine(csi.ELModeRight)
		for y := t.cursor.Y + 1; y < t.rows; y++ {
			row := t.active.Row(y)
			row.Reset(blank)
			row.SetWrapped(false)
		}

	case csi.EDModeAbove:
		// The cursor line up to and including the cursor, everything
		// above fully.
		t.EraseInLine(csi.ELModeLeft)
		for y := size.CellCountInt(0); y < t.cursor.Y; y++ {
			row := t.active.Row(y)
			row.Reset(blank)
			row.SetWrapped(false)
		}

	case csi.EDModeScrollback:
		// The only operation that discards scrollback.
		evicted := t.active.ClearHistory()
		t.rotateSelection(evicted)

	default:
		t.logger.Warn("unimplemented erase display, ignoring", "mode", mode)
	}
}

func (t *Terminal) EraseInLine(mode csi.ELMode) {
	row := t.active.Row(t.cursor.Y)

	var start, end size.CellCountInt
	switch mode {
	case csi.ELModeRight:
		start = t.cursor.X
		// Erasing from inside a wide char pair takes the whole pair.
		if start > 0 && row.Cell(start).Flags.Has(grid.FlagWideCharSpacer) {
			start--
		}
		end = t.cols
	case csi.ELModeLeft:
		start = 0
		end = t.cursor.X + 1
		if end < t.cols && row.Cell(end-1).Flags.Has(grid.FlagWideChar) {
			end++
		}
	case csi.ELModeAll:
		start = 0
		end = t.cols
	default:
		t.logger.Warn("unimplemented erase line, ignoring", "mode", mode)
		return
	}

	blank := t.blank()
	cells := row.MutRange(start, end)
	for i := range cells {
		cells[i] = blank
	}
	if end == t.cols {
		// The logical line ends here now.
		row.SetWrapped(false)
	}
	t.cursor.PendingWrap = false
}

// EraseChars implements ECH: blank repeated cells from the cursor to
// the right without shifting anything.
func (t *Terminal) EraseChars(repeated uint16) {
	start := t.cursor.X
	end := min(start+max(size.CellCountInt(repeated), 1), t.cols)

	row := t.active.Row(t.cursor.Y)
	t.splitWideAt(row, start)
	t.splitWideAt(row, end)

	blank := t.blank()
	cells := row.MutRange(start, end)
	for i := range cells {
		cells[i] = blank
	}
	t.cursor.PendingWrap = false
}

// splitWideAt clears a wide character pair straddling the boundary just
// left of column x, so shifting or erasing at x never leaves half a
// glyph behind.
func (t *Terminal) splitWideAt(row *grid.Row, x size.CellCountInt) {
	if x == 0 || x >= t.cols {
		return
	}
	if row.Cell(x).Flags.Has(grid.FlagWideCharSpacer) &&
		row.Cell(x-1).Flags.Has(grid.FlagWideChar) {
		blank := t.blank()
		*row.CellMut(x - 1) = blank
		*row.CellMut(x) = blank
	}
}

// DeleteChars shifts the rest of the line left over the deleted cells
// and blanks the tail. Does not move the cursor.
func (t *Terminal) DeleteChars(repeated uint16) {
	if repeated == 0 {
		return
	}
	if t.cursor.X >= t.cols {
		return
	}

	n := min(size.CellCountInt(repeated), t.cols-t.cursor.X)
	row := t.active.Row(t.cursor.Y)

	t.splitWideAt(row, t.cursor.X)
	t.splitWideAt(row, t.cursor.X+n)

	cells := row.MutRange(t.cursor.X, t.cols)
	copy(cells, cells[n:])

	blank := t.blank()
	for i := len(cells) - int(n); i < len(cells); i++ {
		cells[i] = blank
	}
	t.cursor.PendingWrap = false
}

// InsertBlanks shifts the rest of the line right and writes blanks at
// the cursor. Cells pushed past the right edge are lost. The cursor
// does not move.
func (t *Terminal) InsertBlanks(repeated uint16) {
	t.cursor.PendingWrap = false
	if repeated == 0 {
		return
	}
	if t.cursor.X >= t.cols {
		return
	}

	n := min(size.CellCountInt(repeated), t.cols-t.cursor.X)
	row := t.active.Row(t.cursor.Y)

	t.splitWideAt(row, t.cursor.X)
	// A wide char whose tail would be pushed off the edge is dropped
	// whole.
	t.splitWideAt(row, t.cols-n)

	cells := row.MutRange(t.cursor.X, t.cols)
	copy(cells[n:], cells)

	blank := t.blank()
	for i := range cells[:n] {
		cells[i] = blank
	}
}

// InsertLines shifts the cursor row and everything below it (to the
// region bottom) down, blanking the opened lines. Outside the scrolling
// region this does nothing. The cursor moves to the left margin.
func (t *Terminal) InsertLines(repeated uint16) {
	if repeated == 0 {
		return
	}
	if t.cursor.Y < t.scrollingRegion.top ||
		t.cursor.Y > t.scrollingRegion.bottom {
		return
	}

	n := min(size.CellCountInt(repeated), t.scrollingRegion.bottom-t.cursor.Y+1)
	t.active.ScrollDown(t.cursor.Y, t.scrollingRegion.bottom, n, t.blank())

	t.cursor.PendingWrap = false
	t.cursor.X = 0
}

// DeleteLines removes lines at the cursor, shifting the remainder of
// the region up and blanking the bottom. Outside the scrolling region
// this does nothing. The cursor moves to the left margin.
func (t *Terminal) DeleteLines(repeated uint16) {
	if repeated == 0 {
		return
	}
	if t.cursor.Y < t.scrollingRegion.top ||
		t.cursor.Y > t.scrollingRegion.bottom {
		return
	}

	n := min(size.CellCountInt(repeated), t.scrollingRegion.bottom-t.cursor.Y+1)
	t.scrollUpRegion(t.cursor.Y, n)

	t.cursor.PendingWrap = false
	t.cursor.X = 0
}

// SaveCursor stashes cursor position, pen, charsets and origin mode for
// the current screen (DECSC).
func (t *Terminal) SaveCursor() {
	saved := &SavedCursor{
		Cursor:   t.cursor,
		Pen:      t.pen,
		Charsets: t.charsets,
		Origin:   t.Modes.Get(core.ModeOrigin),
	}
	if t.onAlt {
		t.savedAlt = saved
	} else {
		t.savedMain = saved
	}
}

// RestoreCursor restores what SaveCursor stashed (DECRC). Without a
// prior save this resets the cursor to home with a default pen, which
// is what xterm does.
func (t *Terminal) RestoreCursor() {
	saved := t.savedMain
	if t.onAlt {
		saved = t.savedAlt
	}
	if saved == nil {
		t.cursor = Cursor{}
		t.pen = defaultPen()
		return
	}
	t.cursor = saved.Cursor
	t.cursor.X = min(t.cursor.X, t.cols-1)
	t.cursor.Y = min(t.cursor.Y, t.rows-1)
	t.pen = saved.Pen
	t.charsets = saved.Charsets
	t.Modes.Set(core.ModeOrigin, saved.Origin)
}

func (t *Terminal) SetCursorStyle(style uint16) {
	t.cursorStyle = style
}

func (t *Terminal) DesignateCharset(slot int, charset uint8) {
	t.charsets.designate(slot, charset)
}

func (t *Terminal) InvokeCharset(slot int) {
	t.charsets.invoke(slot)
}

// SetMode routes a mode change. The screen-switching and cursor-saving
// modes have side effects beyond the flag itself.
func (t *Terminal) SetMode(mode core.Mode, enabled bool) {
	switch mode {
	case core.ModeAltScreenLegacy:
		t.Modes.Set(mode, enabled)
		if enabled {
			t.enterAltScreen(false)
		} else {
			t.exitAltScreen()
		}

	case core.ModeAltScreen:
		t.Modes.Set(mode, enabled)
		if enabled {
			t.enterAltScreen(true)
		} else {
			t.exitAltScreen()
		}

	case core.ModeAltScreenSaveCursor:
		// Idempotent: setting 1049 while already on the alternate screen
		// must not re-save (it would clobber the saved primary cursor).
		if enabled == t.onAlt {
			return
		}
		t.Modes.Set(mode, enabled)
		if enabled {
			t.SaveCursor()
			t.enterAltScreen(true)
		} else {
			t.exitAltScreen()
			t.RestoreCursor()
		}

	case core.ModeSaveCursor:
		if enabled {
			t.SaveCursor()
		} else {
			t.RestoreCursor()
		}

	case core.ModeOrigin:
		t.Modes.Set(mode, enabled)
		t.SetCursorPosition(1, 1)

	default:
		t.Modes.Set(mode, enabled)
	}
}

func (t *Terminal) enterAltScreen(clear bool) {
	if t.onAlt {
		return
	}
	t.onAlt = true
	t.active = t.alt
	t.main.ScrollDisplayToBottom()
	if clear {
		blank := t.blank()
		for y := range t.rows {
			row := t.active.Row(y)
			row.Reset(blank)
			row.SetWrapped(false)
		}
	}
	// Selections reference buffer lines of the screen they were made
	// on; they don't carry across.
	t.sel = nil
}

func (t *Terminal) exitAltScreen() {
	if !t.onAlt {
		return
	}
	t.onAlt = false
	t.active = t.main
	t.sel = nil
}

// ScreenAlignmentTest implements DECALN: fill the screen with E's,
// reset the margins and home the cursor.
func (t *Terminal) ScreenAlignmentTest() {
	t.pen = defaultPen()
	fill := grid.NewCell()
	fill.Rune = 'E'
	for y := range t.rows {
		row := t.active.Row(y)
		cells := row.MutRange(0, t.cols)
		for i := range cells {
			cells[i] = fill
		}
		row.SetWrapped(false)
	}
	t.scrollingRegion = ScrollingRegion{top: 0, bottom: t.rows - 1}
	t.cursor = Cursor{}
}

func (t *Terminal) SetKeypadApplicationMode(enabled bool) {
	t.keypadApp = enabled
}

// FullReset implements RIS. Everything resets except scrollback
// history, which only an explicit ED 3 discards.
func (t *Terminal) FullReset() {
	blank := grid.NewCell()
	for y := range t.rows {
		row := t.main.Row(y)
		row.Reset(blank)
		row.SetWrapped(false)
	}
	t.alt.Reset(blank)
	t.onAlt = false
	t.active = t.main
	t.main.ScrollDisplayToBottom()

	t.cursor = Cursor{}
	t.pen = defaultPen()
	t.savedMain = nil
	t.savedAlt = nil
	t.previousChar = nil

	t.Modes.Reset()
	t.tabstops.Reset(tabstops.TABSTOP_INTERVAL)
	t.scrollingRegion = ScrollingRegion{top: 0, bottom: t.rows - 1}
	t.charsets = defaultCharsetState()
	t.palette = t.defaultPalette

	t.title = ""
	t.titleStack = nil
	t.cursorStyle = 0
	t.keypadApp = false
	t.sel = nil
}

// Resize changes the screen dimensions without reflowing text. When
// the primary screen shrinks, only the rows above the cursor that no
// longer fit go to scrollback and the blank region below the cursor is
// dropped; growing pulls scrolled rows back. Columns truncate or pad
// on the right.
func (t *Terminal) Resize(cols, rows size.CellCountInt) {
	if cols == 0 || rows == 0 {
		return
	}
	if t.cols == cols && t.rows == rows {
		return
	}

	blank := grid.NewCell()
	mainCursor, altCursor := t.cursor.Y, t.cursor.Y
	if t.onAlt {
		mainCursor = 0
		if t.savedMain != nil {
			mainCursor = t.savedMain.Cursor.Y
		}
	} else {
		altCursor = 0
		if t.savedAlt != nil {
			altCursor = t.savedAlt.Cursor.Y
		}
	}
	mainShift, evicted := t.main.Resize(rows, cols, mainCursor, blank)
	altShift, _ := t.alt.Resize(rows, cols, altCursor, blank)
	t.rotateSelection(evicted)

	shift := mainShift
	if t.onAlt {
		shift = altShift
	}
	y := int(t.cursor.Y) + shift
	t.cursor.Y = size.CellCountInt(min(max(y, 0), int(rows)-1))
	t.cursor.X = min(t.cursor.X, cols-1)
	t.cursor.PendingWrap = false

	if t.savedMain != nil {
		t.savedMain.Cursor.X = min(t.savedMain.Cursor.X, cols-1)
		t.savedMain.Cursor.Y = min(t.savedMain.Cursor.Y, rows-1)
	}
	if t.savedAlt != nil {
		t.savedAlt.Cursor.X = min(t.savedAlt.Cursor.X, cols-1)
		t.savedAlt.Cursor.Y = min(t.savedAlt.Cursor.Y, rows-1)
	}

	if t.cols != cols {
		t.tabstops.Resize(cols)
	}
	t.cols = cols
	t.rows = rows
	t.scrollingRegion = ScrollingRegion{top: 0, bottom: rows - 1}
}

// ScrollDisplay moves the viewport through history; positive scrolls
// toward older content. The alternate screen has no history so this is
// a no-op there.
func (t *Terminal) ScrollDisplay(lines int) {
	t.active.ScrollDisplay(lines)
}

func (t *Terminal) ScrollDisplayToBottom() {
	t.active.ScrollDisplayToBottom()
}

// StartSelection begins a selection of the given kind at a buffer
// coordinate.
func (t *Terminal) StartSelection(kind selection.Kind, p selection.Point) {
	t.sel = selection.New(kind, p, t.semanticEscapeChars)
}

// UpdateSelection drags the selection extent. No-op without a started
// selection.
func (t *Terminal) UpdateSelection(p selection.Point) {
	if t.sel == nil {
		return
	}
	t.sel.Update(p)
}

func (t *Terminal) ClearSelection() {
	t.sel = nil
}

// Selection returns the active selection, nil when there is none.
func (t *Terminal) Selection() *selection.Selection { return t.sel }

// SelectionText extracts the selected text from the active screen,
// ready for a clipboard.
func (t *Terminal) SelectionText() string {
	if t.sel == nil {
		return ""
	}
	return t.sel.Text(t.active)
}

// PlainString returns the visible screen content with trailing blanks
// trimmed and rows joined by newlines. This omits any formatting such
// as fg/bg.
func (t *Terminal) PlainString() string {
	var sb strings.Builder
	for y := range t.rows {
		if y > 0 {
			sb.WriteByte('\n')
		}
		row := t.active.Row(y)
		length := row.LineLength()
		for x := size.CellCountInt(0); x < length; x++ {
			cell := row.Cell(x)
			if cell.Flags.Has(grid.FlagWideCharSpacer) ||
				cell.Flags.Has(grid.FlagLeadingWideCharSpacer) {
				continue
			}
			r := cell.Rune
			if r == 0 {
				r = ' '
			}
			sb.WriteRune(r)
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}
