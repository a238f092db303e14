package grid

import (
	"github.com/gridterm/gridterm/terminal/size"
	"github.com/gridterm/gridterm/terminal/utils"
)

// Grid is the 2-D screen model: the visible lines plus scrollback,
// backed by Storage, with a display offset for viewport scrolling.
//
// Two coordinate spaces are used throughout:
//   - screen coordinates: y in [0, Lines()), 0 at the top of the active
//     screen; this is what the terminal state machine addresses.
//   - buffer coordinates: an absolute line in [0, Len()), 0 at the
//     oldest stored scrollback line; selections use these so they stay
//     put while the screen scrolls.
type Grid struct {
	storage *Storage

	lines, cols size.CellCountInt

	// Lines the viewport is scrolled up into history. Zero means the
	// viewport shows the live screen.
	displayOffset int
}

// NewGrid creates a grid with the given screen size and scrollback
// limit. An alternate-screen grid simply passes maxHistory 0.
func NewGrid(lines, cols size.CellCountInt, maxHistory int, template Cell) *Grid {
	return &Grid{
		storage: NewStorage(lines, cols, maxHistory, template),
		lines:   lines,
		cols:    cols,
	}
}

func (g *Grid) Lines() size.CellCountInt { return g.lines }
func (g *Grid) Cols() size.CellCountInt  { return g.cols }

// History is the number of stored scrollback lines.
func (g *Grid) History() int { return g.storage.History() }

// Len is the total number of stored lines, scrollback plus screen.
func (g *Grid) Len() int { return g.storage.Len() }

// Row returns the active-screen row at y.
func (g *Grid) Row(y size.CellCountInt) *Row {
	return g.storage.Row(g.VisibleToBuffer(y))
}

// Cell returns a read-only copy of the active-screen cell at (y, x).
func (g *Grid) Cell(y, x size.CellCountInt) Cell {
	return g.Row(y).Cell(x)
}

// CellMut returns a mutable pointer to the active-screen cell at
// (y, x), raising the row's occupancy.
func (g *Grid) CellMut(y, x size.CellCountInt) *Cell {
	return g.Row(y).CellMut(x)
}

// BufferRow returns the row at an absolute buffer line.
func (g *Grid) BufferRow(line int) *Row {
	return g.storage.Row(line)
}

// VisibleToBuffer converts an active-screen line to a buffer line.
func (g *Grid) VisibleToBuffer(y size.CellCountInt) int {
	utils.Assert(y < g.lines)
	return g.History() + int(y)
}

// ViewportRow returns the row at viewport line y, display offset
// applied.
func (g *Grid) ViewportRow(y size.CellCountInt) *Row {
	utils.Assert(y < g.lines)
	return g.storage.Row(g.History() - g.displayOffset + int(y))
}

// ViewportToBuffer converts a viewport line to a buffer line.
func (g *Grid) ViewportToBuffer(y size.CellCountInt) int {
	return g.History() - g.displayOffset + int(y)
}

// ScrollUp shifts lines within the inclusive region [top, bottom] up by
// n, clearing the exposed bottom rows with template. A full-screen
// region feeds the removed top lines into scrollback via ring rotation;
// any sub-region shifts row headers and history is never involved.
// Returns the number of history lines evicted by the push.
func (g *Grid) ScrollUp(top, bottom, n size.CellCountInt, template Cell) (evicted int) {
	utils.Assert(top <= bottom && bottom < g.lines)
	regionLen := int(bottom-top) + 1
	count := min(int(n), regionLen)
	if count == 0 {
		return 0
	}

	if top == 0 && bottom == g.lines-1 {
		evicted = g.storage.ScrollUpFull(count, template)
		// A scrolled-up viewport stays pinned to its content while new
		// output arrives underneath.
		if g.displayOffset != 0 {
			g.displayOffset = min(g.displayOffset+count, g.History())
		}
		return evicted
	}

	hist := g.History()
	for y := int(top); y+count <= int(bottom); y++ {
		g.storage.SwapRows(hist+y, hist+y+count)
	}
	for y := int(bottom) - count + 1; y <= int(bottom); y++ {
		g.storage.resetRow(hist+y, template)
	}
	return 0
}

// ScrollDown shifts lines within the inclusive region [top, bottom]
// down by n. Lines leaving the bottom are discarded, never pushed to
// scrollback; cleared rows appear at the top of the region.
func (g *Grid) ScrollDown(top, bottom, n size.CellCountInt, template Cell) {
	utils.Assert(top <= bottom && bottom < g.lines)
	regionLen := int(bottom-top) + 1
	count := min(int(n), regionLen)
	if count == 0 {
		return
	}

	// A full-screen scroll down is the inverse of a full-screen scroll
	// up: the newest history lines slide back in at the top and the
	// bottom lines fall off. Only when the history runs dry do blank
	// rows appear.
	if top == 0 && bottom == g.lines-1 {
		pulled := g.storage.PopHistory(count)
		count -= pulled
		if g.displayOffset > g.History() {
			g.displayOffset = g.History()
		}
		if count == 0 {
			return
		}
	}

	hist := g.History()
	for y := int(bottom); y-count >= int(top); y-- {
		g.storage.SwapRows(hist+y, hist+y-count)
	}
	for y := int(top); y < int(top)+count; y++ {
		g.storage.resetRow(hist+y, template)
	}
}

// Resize changes the screen dimensions without reflow. Rows are
// truncated from the right or padded with template; when the screen
// grows vertically, lines are pulled back out of history before blank
// rows are added. Shrinking keeps the line cursorLine is on visible:
// only the lines above it that no longer fit scroll into history, the
// leftover height loss drops lines off the bottom. Returns how many
// lines the cursor must shift down (positive) or up (negative) to stay
// on its content, plus the number of history lines evicted.
func (g *Grid) Resize(lines, cols, cursorLine size.CellCountInt, template Cell) (cursorShift, evicted int) {
	utils.Assert(lines > 0 && cols > 0)
	g.displayOffset = 0

	if cols != g.cols {
		g.storage.ResizeCols(cols, template)
		g.cols = cols
	}

	switch {
	case lines > g.lines:
		pulled := g.storage.GrowVisible(lines, template)
		cursorShift = pulled
	case lines < g.lines:
		push := int(cursorLine) + 1 - int(lines)
		pushed, ev := g.storage.ShrinkVisible(lines, push)
		cursorShift = -pushed
		evicted = ev
	}
	g.lines = lines
	return cursorShift, evicted
}

// SetMaxHistory applies a new scrollback limit, evicting overflow.
func (g *Grid) SetMaxHistory(n int) (evicted int) {
	evicted = g.storage.SetMaxHistory(n)
	if g.displayOffset > g.History() {
		g.displayOffset = g.History()
	}
	return evicted
}

// ClearHistory drops all scrollback lines.
func (g *Grid) ClearHistory() (evicted int) {
	g.displayOffset = 0
	return g.storage.ClearHistory()
}

// Reset clears the screen and scrollback back to template cells.
func (g *Grid) Reset(template Cell) {
	g.displayOffset = 0
	g.storage.Reset(template)
}

// ScrollDisplay moves the viewport: positive lines scroll up into
// history, negative back toward the live screen. The offset saturates
// at both ends.
func (g *Grid) ScrollDisplay(lines int) {
	g.displayOffset = max(0, min(g.displayOffset+lines, g.History()))
}

// ScrollDisplayToBottom snaps the viewport back to the live screen.
func (g *Grid) ScrollDisplayToBottom() { g.displayOffset = 0 }

// DisplayOffset reports how many lines the viewport is scrolled up.
func (g *Grid) DisplayOffset() int { return g.displayOffset }

// LogicalLineStart walks backward from a buffer line to the first row
// of its logical (wrap-joined) line.
func (g *Grid) LogicalLineStart(line int) int {
	for line > 0 && g.storage.Row(line-1).IsWrapped() {
		line--
	}
	return line
}

// LogicalLineEnd walks forward from a buffer line to the last row of
// its logical line.
func (g *Grid) LogicalLineEnd(line int) int {
	for line < g.Len()-1 && g.storage.Row(line).IsWrapped() {
		line++
	}
	return line
}
