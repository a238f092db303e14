package terminal

import (
	"bytes"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridterm/gridterm/logger"
	"github.com/gridterm/gridterm/terminal/color"
	"github.com/gridterm/gridterm/terminal/grid"
	"github.com/gridterm/gridterm/terminal/selection"
	"github.com/gridterm/gridterm/terminal/size"
	"github.com/gridterm/gridterm/terminal/stream"
)

var termTestLogger = logger.New(logger.Options{
	Buffer: io.Discard,
	Level:  logger.ErrorLevel,
	Type:   logger.TypeText,
})

// newTestTerm wires a terminal to a byte stream so tests can feed raw
// escape sequences the way a PTY would deliver them.
func newTestTerm(cols, rows, history int) (*Terminal, *stream.Stream) {
	term := NewTerminal(Options{
		Cols:       cols,
		Rows:       rows,
		MaxHistory: history,
		Logger:     termTestLogger,
	})
	return term, stream.NewStream(term, termTestLogger)
}

// newReplyTerm is newTestTerm plus a buffer capturing query responses.
func newReplyTerm(cols, rows int) (*Terminal, *stream.Stream, *bytes.Buffer) {
	reply := &bytes.Buffer{}
	term := NewTerminal(Options{
		Cols:   cols,
		Rows:   rows,
		Reply:  reply,
		Logger: termTestLogger,
	})
	return term, stream.NewStream(term, termTestLogger), reply
}

func TestTerminal_PrintAndWrap(t *testing.T) {
	term, s := newTestTerm(5, 3, 0)

	s.NextSlice([]byte("helloworldabc12"))

	assert.Equal(t, "hello\nworld\nabc12", term.PlainString())
	assert.Equal(t, size.CellCountInt(4), term.Cursor().X)
	assert.Equal(t, size.CellCountInt(2), term.Cursor().Y)
	assert.True(t, term.Cursor().PendingWrap)
	assert.True(t, term.Grid().Row(0).IsWrapped())
	assert.True(t, term.Grid().Row(1).IsWrapped())
	assert.False(t, term.Grid().Row(2).IsWrapped())
}

func TestTerminal_ClearHomeColored(t *testing.T) {
	term, s := newTestTerm(80, 24, 0)

	s.NextSlice([]byte("\x1b[2J\x1b[H\x1b[31mHi\x1b[0m"))

	assert.Equal(t, "Hi", term.PlainString())
	assert.Equal(t, size.CellCountInt(2), term.Cursor().X)
	assert.Equal(t, size.CellCountInt(0), term.Cursor().Y)

	h := term.Grid().Cell(0, 0)
	assert.Equal(t, 'H', h.Rune)
	assert.Equal(t, color.NewNamed(color.Red), h.FG)
	i := term.Grid().Cell(0, 1)
	assert.Equal(t, 'i', i.Rune)
	assert.Equal(t, color.NewNamed(color.Red), i.FG)

	// SGR 0 has already run, so new prints use the default pen again.
	s.NextSlice([]byte("!"))
	assert.Equal(t, color.NewNamed(color.Foreground), term.Grid().Cell(0, 2).FG)
}

func TestTerminal_LineFeedScrollsIntoHistory(t *testing.T) {
	term, s := newTestTerm(5, 3, 10)

	s.NextSlice([]byte("a\r\nb\r\nc\r\nd\r\ne"))

	assert.Equal(t, "c\nd\ne", term.PlainString())
	assert.Equal(t, 2, term.Grid().History())
	assert.Equal(t, 'a', term.Grid().BufferRow(0).Cell(0).Rune)
	assert.Equal(t, 'b', term.Grid().BufferRow(1).Cell(0).Rune)
}

func TestTerminal_ScrollUpDownRoundTrip(t *testing.T) {
	term, s := newTestTerm(5, 3, 10)
	s.NextSlice([]byte("a\r\nb\r\nc\r\nd\r\ne"))
	require.Equal(t, "c\nd\ne", term.PlainString())
	require.Equal(t, 2, term.Grid().History())

	// CSI 2 S pushes two lines into history, CSI 2 T pulls the same
	// lines back out.
	s.NextSlice([]byte("\x1b[2S"))
	assert.Equal(t, "e", term.PlainString())
	assert.Equal(t, 4, term.Grid().History())

	s.NextSlice([]byte("\x1b[2T"))
	assert.Equal(t, "c\nd\ne", term.PlainString())
	assert.Equal(t, 2, term.Grid().History())
}

func TestTerminal_ScrollRegionConfined(t *testing.T) {
	term, s := newTestTerm(5, 10, 10)
	for i := range 10 {
		s.NextSlice(fmt.Appendf(nil, "\x1b[%d;1H%c", i+1, 'a'+i))
	}
	require.Equal(t, "a\nb\nc\nd\ne\nf\ng\nh\ni\nj", term.PlainString())

	// A line feed at the bottom margin rotates only rows 5-10. Nothing
	// reaches scrollback.
	s.NextSlice([]byte("\x1b[5;10r\x1b[10;1H\n"))

	assert.Equal(t, "a\nb\nc\nd\nf\ng\nh\ni\nj", term.PlainString())
	assert.Equal(t, 0, term.Grid().History())

	// Reverse index at the top margin scrolls the region back down,
	// discarding the bottom line rather than pulling from history.
	s.NextSlice([]byte("\x1b[5;1H\x1bM"))
	assert.Equal(t, "a\nb\nc\nd\n\nf\ng\nh\ni\nj", term.PlainString())
	assert.Equal(t, 0, term.Grid().History())
}

func TestTerminal_InsertDeleteLines(t *testing.T) {
	term, s := newTestTerm(3, 5, 10)
	s.NextSlice([]byte("a\r\nb\r\nc\r\nd\r\ne"))

	s.NextSlice([]byte("\x1b[2;1H\x1b[2M"))
	assert.Equal(t, "a\nd\ne", term.PlainString())
	assert.Equal(t, 0, term.Grid().History())

	s.NextSlice([]byte("\x1b[2L"))
	assert.Equal(t, "a\n\n\nd\ne", term.PlainString())
}

func TestTerminal_EraseInDisplayAndLine(t *testing.T) {
	term, s := newTestTerm(10, 3, 10)
	s.NextSlice([]byte("aaaa\r\nbbbb\r\ncccc"))

	// EL 0 from the middle of row 2.
	s.NextSlice([]byte("\x1b[2;3H\x1b[K"))
	assert.Equal(t, "aaaa\nbb\ncccc", term.PlainString())

	// ED 0 wipes from the cursor down.
	s.NextSlice([]byte("\x1b[J"))
	assert.Equal(t, "aaaa\nbb", term.PlainString())

	// ED 2 clears the screen but leaves scrollback alone.
	s.NextSlice([]byte("x\r\ny\r\nz\r\nw"))
	require.Equal(t, "y\nz\nw", term.PlainString())
	require.Equal(t, 2, term.Grid().History())
	s.NextSlice([]byte("\x1b[2J"))
	assert.Equal(t, "", term.PlainString())
	assert.Equal(t, 2, term.Grid().History())

	// ED 3 is the only thing that drops history.
	s.NextSlice([]byte("\x1b[3J"))
	assert.Equal(t, 0, term.Grid().History())
}

func TestTerminal_WideChars(t *testing.T) {
	term, s := newTestTerm(4, 2, 0)
	s.NextSlice([]byte("ab日"))

	assert.Equal(t, "ab日", term.PlainString())
	head := term.Grid().Cell(0, 2)
	assert.Equal(t, '日', head.Rune)
	assert.True(t, head.Flags.Has(grid.FlagWideChar))
	spacer := term.Grid().Cell(0, 3)
	assert.True(t, spacer.Flags.Has(grid.FlagWideCharSpacer))
	assert.True(t, term.Cursor().PendingWrap)
}

func TestTerminal_WideCharWrapsAtLastColumn(t *testing.T) {
	term, s := newTestTerm(3, 2, 0)
	s.NextSlice([]byte("ab日"))

	// No room for both halves on row 1: the last column keeps a spacer
	// head and the wide char lands on the next row.
	assert.Equal(t, "ab\n日", term.PlainString())
	assert.True(t, term.Grid().Cell(0, 2).Flags.Has(grid.FlagLeadingWideCharSpacer))
	assert.True(t, term.Grid().Row(0).IsWrapped())
	assert.Equal(t, size.CellCountInt(2), term.Cursor().X)
	assert.Equal(t, size.CellCountInt(1), term.Cursor().Y)
}

func TestTerminal_OverwritingWideCharClearsPair(t *testing.T) {
	term, s := newTestTerm(6, 2, 0)
	s.NextSlice([]byte("日本"))
	require.Equal(t, "日本", term.PlainString())

	// Overwriting the spacer half wipes the head as well.
	s.NextSlice([]byte("\x1b[1;2Hx"))
	assert.Equal(t, " x本", term.PlainString())
	assert.False(t, term.Grid().Cell(0, 0).Flags.Has(grid.FlagWideChar))
}

func TestTerminal_ZerowidthAttaches(t *testing.T) {
	term, s := newTestTerm(10, 2, 0)
	s.NextSlice([]byte("é"))

	cell := term.Grid().Cell(0, 0)
	assert.Equal(t, 'e', cell.Rune)
	assert.Equal(t, []rune{0x301}, cell.Zerowidth())
	assert.Equal(t, size.CellCountInt(1), term.Cursor().X)
}

func TestTerminal_AltScreen(t *testing.T) {
	term, s := newTestTerm(5, 3, 10)
	s.NextSlice([]byte("main"))

	s.NextSlice([]byte("\x1b[?1049h"))
	assert.True(t, term.IsAltScreen())
	assert.Equal(t, "", term.PlainString())

	s.NextSlice([]byte("alt"))
	assert.Equal(t, "alt", term.PlainString())

	// Entering again while already on the alternate screen must not
	// clear it.
	s.NextSlice([]byte("\x1b[?1049h"))
	assert.True(t, term.IsAltScreen())
	assert.Equal(t, "alt", term.PlainString())

	s.NextSlice([]byte("\x1b[?1049l"))
	assert.False(t, term.IsAltScreen())
	assert.Equal(t, "main", term.PlainString())
	assert.Equal(t, size.CellCountInt(4), term.Cursor().X)
	assert.Equal(t, size.CellCountInt(0), term.Cursor().Y)
}

func TestTerminal_AltScreenHasNoHistory(t *testing.T) {
	term, s := newTestTerm(5, 2, 10)
	s.NextSlice([]byte("\x1b[?1049h"))
	s.NextSlice([]byte("a\r\nb\r\nc\r\nd"))

	assert.Equal(t, "c\nd", term.PlainString())
	assert.Equal(t, 0, term.Grid().History())
}

func TestTerminal_SaveRestoreCursor(t *testing.T) {
	term, s := newTestTerm(10, 10, 0)

	s.NextSlice([]byte("\x1b[31m\x1b[5;5H\x1b7\x1b[H\x1b[0m\x1b8X"))

	// DECRC brings back both the position and the red pen.
	cell := term.Grid().Cell(4, 4)
	assert.Equal(t, 'X', cell.Rune)
	assert.Equal(t, color.NewNamed(color.Red), cell.FG)

	// Restore without a prior save homes the cursor.
	term2, s2 := newTestTerm(10, 10, 0)
	s2.NextSlice([]byte("\x1b[5;5H\x1b8Y"))
	assert.Equal(t, 'Y', term2.Grid().Cell(0, 0).Rune)
}

func TestTerminal_OriginMode(t *testing.T) {
	term, s, reply := newReplyTerm(10, 10)

	// Turning origin mode on homes to the region top, and CUP becomes
	// region relative.
	s.NextSlice([]byte("\x1b[5;10r\x1b[?6h"))
	assert.Equal(t, size.CellCountInt(4), term.Cursor().Y)

	s.NextSlice([]byte("\x1b[2;1HX"))
	assert.Equal(t, 'X', term.Grid().Cell(5, 0).Rune)

	// The cursor position report answers in region coordinates too.
	s.NextSlice([]byte("\x1b[6n"))
	assert.Equal(t, "\x1b[2;2R", reply.String())
}

func TestTerminal_CursorMovementClamping(t *testing.T) {
	term, s := newTestTerm(10, 5, 0)

	s.NextSlice([]byte("\x1b[99;99H"))
	assert.Equal(t, size.CellCountInt(9), term.Cursor().X)
	assert.Equal(t, size.CellCountInt(4), term.Cursor().Y)

	s.NextSlice([]byte("\x1b[99A\x1b[99D"))
	assert.Equal(t, size.CellCountInt(0), term.Cursor().X)
	assert.Equal(t, size.CellCountInt(0), term.Cursor().Y)

	// Movement starting inside a scroll region stops at its margins.
	s.NextSlice([]byte("\x1b[2;4r\x1b[3;1H\x1b[99B"))
	assert.Equal(t, size.CellCountInt(3), term.Cursor().Y)
}

func TestTerminal_Tabs(t *testing.T) {
	term, s := newTestTerm(20, 2, 0)

	s.NextSlice([]byte("\tX"))
	assert.Equal(t, 'X', term.Grid().Cell(0, 8).Rune)

	// Clearing every stop sends HT to the right margin.
	s.NextSlice([]byte("\r\x1b[3g\tY"))
	assert.Equal(t, 'Y', term.Grid().Cell(0, 19).Rune)

	// A custom stop set with HTS is honored again.
	s.NextSlice([]byte("\x1b[1;4H\x1bH\r\tZ"))
	assert.Equal(t, 'Z', term.Grid().Cell(0, 3).Rune)
}

func TestTerminal_Charsets(t *testing.T) {
	term, s := newTestTerm(10, 2, 0)

	s.NextSlice([]byte("\x1b(0qq\x1b(Bq"))
	assert.Equal(t, "──q", term.PlainString())
}

func TestTerminal_CharsetShiftInOut(t *testing.T) {
	term, s := newTestTerm(10, 2, 0)

	// SO invokes G1, SI goes back to G0.
	s.NextSlice([]byte("\x1b)0q\x0eq\x0fq"))
	assert.Equal(t, "q─q", term.PlainString())
}

func TestTerminal_ScreenAlignment(t *testing.T) {
	term, s := newTestTerm(3, 2, 0)

	s.NextSlice([]byte("\x1b#8"))
	assert.Equal(t, "EEE\nEEE", term.PlainString())
	assert.Equal(t, size.CellCountInt(0), term.Cursor().X)
	assert.Equal(t, size.CellCountInt(0), term.Cursor().Y)
}

func TestTerminal_RepeatLastChar(t *testing.T) {
	term, s := newTestTerm(10, 2, 0)

	s.NextSlice([]byte("ab\x1b[2b"))
	assert.Equal(t, "abbb", term.PlainString())
}

func TestTerminal_FullResetKeepsHistory(t *testing.T) {
	term, s := newTestTerm(5, 3, 10)
	s.NextSlice([]byte("a\r\nb\r\nc\r\nd\r\ne"))
	s.NextSlice([]byte("\x1b[31m\x1b]0;title\x07\x1b[5;9r"))
	require.Equal(t, 2, term.Grid().History())

	s.NextSlice([]byte("\x1bc"))

	assert.Equal(t, "", term.PlainString())
	assert.Equal(t, 2, term.Grid().History())
	assert.Equal(t, "", term.Title())
	assert.Equal(t, Cursor{}, term.Cursor())

	s.NextSlice([]byte("x"))
	assert.Equal(t, color.NewNamed(color.Foreground), term.Grid().Cell(0, 0).FG)
}

func TestTerminal_ResizeRowsMovesHistory(t *testing.T) {
	term, s := newTestTerm(5, 4, 10)
	s.NextSlice([]byte("a\r\nb\r\nc\r\nd"))
	require.Equal(t, size.CellCountInt(3), term.Cursor().Y)

	term.Resize(5, 2)
	assert.Equal(t, "c\nd", term.PlainString())
	assert.Equal(t, 2, term.Grid().History())
	assert.Equal(t, size.CellCountInt(1), term.Cursor().Y)

	// Growing pulls the lines straight back.
	term.Resize(5, 4)
	assert.Equal(t, "a\nb\nc\nd", term.PlainString())
	assert.Equal(t, 0, term.Grid().History())
	assert.Equal(t, size.CellCountInt(3), term.Cursor().Y)
}

func TestTerminal_CurlyUnderlineAsLastParam(t *testing.T) {
	term, s := newTestTerm(10, 2, 0)

	s.NextSlice([]byte("\x1b[4:3mX"))

	x := term.Grid().Cell(0, 0)
	assert.Equal(t, 'X', x.Rune)
	assert.True(t, x.Flags.Has(grid.FlagUnderline))
}

func TestTerminal_SelectionSurvivesResize(t *testing.T) {
	term, s := newTestTerm(10, 4, 10)
	s.NextSlice([]byte("grab"))
	term.StartSelection(selection.KindSimple, selection.Point{Line: 0, Col: 0})
	term.UpdateSelection(selection.Point{Line: 0, Col: 3})
	require.Equal(t, "grab", term.SelectionText())

	// Selection coordinates are buffer-absolute, so losing empty bottom
	// rows does not disturb them.
	term.Resize(10, 2)
	assert.Equal(t, "grab", term.SelectionText())
}

func TestTerminal_ResizeRowsDropsEmptyBottom(t *testing.T) {
	term, s := newTestTerm(10, 3, 10)
	s.NextSlice([]byte("hello"))

	// The cursor sits on the top line, so shrinking eats the blank
	// bottom rows and nothing scrolls out of view.
	term.Resize(5, 2)
	assert.Equal(t, "hello", term.PlainString())
	assert.Equal(t, 0, term.Grid().History())
	assert.Equal(t, size.CellCountInt(0), term.Cursor().Y)
}

func TestTerminal_ResizeColsTruncates(t *testing.T) {
	term, s := newTestTerm(6, 2, 0)
	s.NextSlice([]byte("abcdef"))

	term.Resize(3, 2)
	assert.Equal(t, "abc", term.PlainString())
	assert.Equal(t, size.CellCountInt(2), term.Cursor().X)
	assert.False(t, term.Cursor().PendingWrap)
}

func TestTerminal_Reports(t *testing.T) {
	_, s, reply := newReplyTerm(10, 5)

	s.NextSlice([]byte("\x1b[5n"))
	assert.Equal(t, "\x1b[0n", reply.String())
	reply.Reset()

	s.NextSlice([]byte("\x1b[3;4H\x1b[6n"))
	assert.Equal(t, "\x1b[3;4R", reply.String())
	reply.Reset()

	s.NextSlice([]byte("\x1b[c"))
	assert.Equal(t, "\x1b[?6c", reply.String())
}

func TestTerminal_AutowrapDisabled(t *testing.T) {
	term, s := newTestTerm(3, 2, 0)

	s.NextSlice([]byte("\x1b[?7labcdef"))

	// Without autowrap the last column keeps being overwritten.
	assert.Equal(t, "abf", term.PlainString())
	assert.Equal(t, size.CellCountInt(0), term.Cursor().Y)
}

func TestTerminal_TitleStack(t *testing.T) {
	term, s := newTestTerm(10, 2, 0)

	s.NextSlice([]byte("\x1b]0;one\x07\x1b[22t\x1b]0;two\x07"))
	assert.Equal(t, "two", term.Title())

	s.NextSlice([]byte("\x1b[23t"))
	assert.Equal(t, "one", term.Title())
}

func TestTerminal_OSCColors(t *testing.T) {
	term, s, reply := newReplyTerm(10, 2)

	s.NextSlice([]byte("\x1b]4;1;rgb:10/20/30\x07"))
	assert.Equal(t, color.RGB{R: 0x10, G: 0x20, B: 0x30}, term.Palette()[1])

	s.NextSlice([]byte("\x1b]4;1;?\x07"))
	assert.Equal(t, "\x1b]4;1;rgb:1010/2020/3030\x07", reply.String())

	s.NextSlice([]byte("\x1b]104;1\x07"))
	assert.Equal(t, color.Red.DefaultRGB(), term.Palette()[1])
}

func TestTerminal_OSCClipboard(t *testing.T) {
	term, s, reply := newReplyTerm(10, 2)

	s.NextSlice([]byte("\x1b]52;c;aGVsbG8=\x07"))
	assert.Equal(t, "hello", term.ClipboardContent('c'))

	s.NextSlice([]byte("\x1b]52;c;?\x07"))
	assert.Equal(t, "\x1b]52;c;aGVsbG8=\x07", reply.String())
}

func TestTerminal_Hyperlinks(t *testing.T) {
	term, s := newTestTerm(10, 2, 0)

	s.NextSlice([]byte("\x1b]8;;https://example.com\x1b\\ab\x1b]8;;\x1b\\c"))

	link := term.Grid().Cell(0, 0).Hyperlink()
	require.NotNil(t, link)
	assert.Equal(t, "https://example.com", link.URI)
	assert.NotNil(t, term.Grid().Cell(0, 1).Hyperlink())
	assert.Nil(t, term.Grid().Cell(0, 2).Hyperlink())
}

func TestTerminal_Bell(t *testing.T) {
	term, s := newTestTerm(5, 2, 0)
	s.NextSlice([]byte("a\ab\a"))

	assert.Equal(t, 2, term.BellCount())
	assert.Equal(t, "ab", term.PlainString())
}

func TestTerminal_SemanticSelection(t *testing.T) {
	term, s := newTestTerm(30, 2, 0)
	s.NextSlice([]byte("visit example.com now"))

	line := term.Grid().VisibleToBuffer(0)
	term.StartSelection(selection.KindSemantic, selection.Point{Line: line, Col: 8})
	term.UpdateSelection(selection.Point{Line: line, Col: 8})

	// The default escape characters do not include '.', so the whole
	// host expands.
	assert.Equal(t, "example.com", term.SelectionText())
}

func TestTerminal_SelectionRotatesWithScrollback(t *testing.T) {
	term, s := newTestTerm(10, 3, 10)
	s.NextSlice([]byte("target\r\nb\r\nc"))

	line := term.Grid().VisibleToBuffer(0)
	term.StartSelection(selection.KindSimple, selection.Point{Line: line, Col: 0})
	term.UpdateSelection(selection.Point{Line: line, Col: 5})
	require.Equal(t, "target", term.SelectionText())

	// Two more lines scroll the target into history. Buffer coordinates
	// keep the selection glued to it.
	s.NextSlice([]byte("\r\nd\r\ne"))
	assert.Equal(t, "target", term.SelectionText())
}

func TestTerminal_SelectionDroppedWhenEvicted(t *testing.T) {
	term, s := newTestTerm(10, 2, 1)
	s.NextSlice([]byte("x\r\ny"))

	line := term.Grid().VisibleToBuffer(0)
	term.StartSelection(selection.KindSimple, selection.Point{Line: line, Col: 0})
	term.UpdateSelection(selection.Point{Line: line, Col: 0})
	require.NotNil(t, term.Selection())

	// Scrolling far enough evicts the selected line from the ring.
	s.NextSlice([]byte("\r\na\r\nb\r\nc"))
	assert.Nil(t, term.Selection())
}

func TestTerminal_SelectionClearedOnAltScreenExit(t *testing.T) {
	term, s := newTestTerm(10, 2, 0)
	s.NextSlice([]byte("\x1b[?1049h"))
	s.NextSlice([]byte("hello"))

	line := term.Grid().VisibleToBuffer(0)
	term.StartSelection(selection.KindSimple, selection.Point{Line: line, Col: 0})
	require.NotNil(t, term.Selection())

	s.NextSlice([]byte("\x1b[?1049l"))
	assert.Nil(t, term.Selection())
}

func TestTerminal_InsertMode(t *testing.T) {
	term, s := newTestTerm(10, 2, 0)

	s.NextSlice([]byte("abc\x1b[1;1H\x1b[4hX"))
	assert.Equal(t, "Xabc", term.PlainString())
}
