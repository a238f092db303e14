package grid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridterm/gridterm/terminal/size"
)

// fillLines writes a distinct marker rune into column 0 of every
// visible line.
func fillLines(g *Grid, runes string) {
	for i, r := range runes {
		g.CellMut(size.CellCountInt(i), 0).Rune = r
	}
}

func visibleMarks(g *Grid) string {
	out := make([]rune, g.Lines())
	for y := range g.Lines() {
		out[y] = g.Cell(y, 0).Rune
	}
	return string(out)
}

func TestGridScrollUpFullScreen(t *testing.T) {
	g := NewGrid(4, 8, 10, NewCell())
	fillLines(g, "abcd")

	evicted := g.ScrollUp(0, 3, 2, NewCell())
	assert.Equal(t, 0, evicted)
	assert.Equal(t, "cd  ", visibleMarks(g))
	assert.Equal(t, 2, g.History())
	assert.Equal(t, 'a', g.BufferRow(0).Cell(0).Rune)
	assert.Equal(t, 'b', g.BufferRow(1).Cell(0).Rune)
}

func TestGridScrollRoundTrip(t *testing.T) {
	g := NewGrid(4, 8, 10, NewCell())
	fillLines(g, "abcd")

	g.ScrollUp(0, 3, 3, NewCell())
	require.Equal(t, "d   ", visibleMarks(g))

	g.ScrollDown(0, 3, 3, NewCell())
	assert.Equal(t, "abcd", visibleMarks(g))
	assert.Equal(t, 0, g.History())
}

func TestGridScrollDownPastHistory(t *testing.T) {
	g := NewGrid(4, 8, 10, NewCell())
	fillLines(g, "abcd")
	g.ScrollUp(0, 3, 1, NewCell())
	require.Equal(t, 1, g.History())

	// Only one line of history exists; the rest of the scroll distance
	// becomes blank rows at the top.
	g.ScrollDown(0, 3, 3, NewCell())
	assert.Equal(t, "  ab", visibleMarks(g))
	assert.Equal(t, 0, g.History())
}

func TestGridScrollRegionUp(t *testing.T) {
	g := NewGrid(5, 8, 10, NewCell())
	fillLines(g, "abcde")

	g.ScrollUp(1, 3, 1, NewCell())
	assert.Equal(t, "acd e", visibleMarks(g))
	// Sub-region scrolling never touches scrollback.
	assert.Equal(t, 0, g.History())
}

func TestGridScrollRegionDown(t *testing.T) {
	g := NewGrid(5, 8, 10, NewCell())
	fillLines(g, "abcde")

	g.ScrollDown(1, 3, 2, NewCell())
	assert.Equal(t, "a  be", visibleMarks(g))
	assert.Equal(t, 0, g.History())
}

func TestGridScrollCountClampedToRegion(t *testing.T) {
	g := NewGrid(5, 8, 10, NewCell())
	fillLines(g, "abcde")

	g.ScrollUp(1, 3, 99, NewCell())
	assert.Equal(t, "a   e", visibleMarks(g))
}

func TestGridViewportPinnedDuringScroll(t *testing.T) {
	g := NewGrid(3, 8, 10, NewCell())
	fillLines(g, "abc")
	g.ScrollUp(0, 2, 2, NewCell())
	require.Equal(t, 2, g.History())

	g.ScrollDisplay(2)
	assert.Equal(t, 2, g.DisplayOffset())
	assert.Equal(t, 'a', g.ViewportRow(0).Cell(0).Rune)

	// New output underneath must not move the viewport content.
	g.ScrollUp(0, 2, 1, NewCell())
	assert.Equal(t, 3, g.DisplayOffset())
	assert.Equal(t, 'a', g.ViewportRow(0).Cell(0).Rune)

	g.ScrollDisplayToBottom()
	assert.Equal(t, 0, g.DisplayOffset())
}

func TestGridScrollDisplaySaturates(t *testing.T) {
	g := NewGrid(3, 8, 10, NewCell())
	g.ScrollUp(0, 2, 2, NewCell())

	g.ScrollDisplay(100)
	assert.Equal(t, 2, g.DisplayOffset())
	g.ScrollDisplay(-100)
	assert.Equal(t, 0, g.DisplayOffset())
}

func TestGridResizeGrowPullsHistory(t *testing.T) {
	g := NewGrid(3, 8, 10, NewCell())
	fillLines(g, "abc")
	g.ScrollUp(0, 2, 2, NewCell())
	require.Equal(t, 2, g.History())

	cursorShift, evicted := g.Resize(5, 8, 0, NewCell())
	assert.Equal(t, 2, cursorShift)
	assert.Equal(t, 0, evicted)
	assert.Equal(t, "abc  ", visibleMarks(g))
}

func TestGridResizeShrinkPushesHistory(t *testing.T) {
	g := NewGrid(5, 8, 10, NewCell())
	fillLines(g, "abcde")

	// Cursor on the last line: everything above it that no longer fits
	// scrolls into history.
	cursorShift, evicted := g.Resize(3, 8, 4, NewCell())
	assert.Equal(t, -2, cursorShift)
	assert.Equal(t, 0, evicted)
	assert.Equal(t, "cde", visibleMarks(g))
	assert.Equal(t, 2, g.History())
}

func TestGridResizeShrinkKeepsCursorContent(t *testing.T) {
	g := NewGrid(5, 8, 10, NewCell())
	fillLines(g, "ab")

	// Cursor on line 1: the empty bottom lines absorb the height loss
	// and nothing scrolls out of view.
	cursorShift, evicted := g.Resize(3, 8, 1, NewCell())
	assert.Equal(t, 0, cursorShift)
	assert.Equal(t, 0, evicted)
	assert.Equal(t, "ab ", visibleMarks(g))
	assert.Equal(t, 0, g.History())

	// Shrinking past the cursor line scrolls just one line up.
	cursorShift, _ = g.Resize(1, 8, 1, NewCell())
	assert.Equal(t, -1, cursorShift)
	assert.Equal(t, "b", visibleMarks(g))
	assert.Equal(t, 1, g.History())
}

func TestGridResizeColsTruncates(t *testing.T) {
	g := NewGrid(2, 80, 10, NewCell())
	row := g.Row(0)
	for x := range 60 {
		row.CellMut(size.CellCountInt(x)).Rune = 'q'
	}

	_, _ = g.Resize(2, 40, 0, NewCell())
	assert.EqualValues(t, 40, g.Cols())
	assert.EqualValues(t, 40, g.Row(0).Len())
	assert.Equal(t, 'q', g.Cell(0, 39).Rune)
}

func TestGridAltScreenNoHistory(t *testing.T) {
	// Alternate screens are built with a zero history cap.
	g := NewGrid(3, 8, 0, NewCell())
	fillLines(g, "abc")

	evicted := g.ScrollUp(0, 2, 1, NewCell())
	assert.Equal(t, 1, evicted)
	assert.Equal(t, 0, g.History())
	assert.Equal(t, "bc ", visibleMarks(g))
}

func TestGridLogicalLineWalk(t *testing.T) {
	g := NewGrid(4, 8, 10, NewCell())
	g.Row(0).SetWrapped(true)
	g.Row(1).SetWrapped(true)

	assert.Equal(t, 0, g.LogicalLineStart(2))
	assert.Equal(t, 2, g.LogicalLineEnd(0))
	assert.Equal(t, 3, g.LogicalLineStart(3))
}
