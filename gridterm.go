// Package gridterm is a terminal emulator core: it turns a PTY byte
// stream into grid state a renderer can draw. The renderer itself,
// fonts and windowing stay outside.
package gridterm

import (
	"fmt"
	"io"
	"runtime/debug"

	"github.com/gridterm/gridterm/config"
	"github.com/gridterm/gridterm/logger"
	"github.com/gridterm/gridterm/terminal"
	"github.com/gridterm/gridterm/terminal/color"
	"github.com/gridterm/gridterm/terminal/core"
	"github.com/gridterm/gridterm/terminal/grid"
	"github.com/gridterm/gridterm/terminal/selection"
	"github.com/gridterm/gridterm/terminal/size"
	"github.com/gridterm/gridterm/terminal/stream"
	tsync "github.com/gridterm/gridterm/terminal/sync"
)

type Options struct {
	Cols, Rows int

	// Config drives scrollback depth, selection word boundaries and
	// palette overrides. Nil means config.Default().
	Config *config.Config

	// Reply receives terminal query responses (DSR, DA, OSC queries),
	// normally the PTY writer. Nil drops them.
	Reply io.Writer

	Logger logger.Logger
}

// Core owns the parser and terminal state behind a fair mutex. The PTY
// reader hammers ProcessOutput; renderers take snapshots. The fairness
// guarantees a snapshot request gets the state even while output is
// flooding in.
type Core struct {
	mu tsync.FairMutex

	term   *terminal.Terminal
	stream *stream.Stream
	logger logger.Logger
}

func New(opts Options) *Core {
	cfg := opts.Config
	if cfg == nil {
		def := config.Default()
		cfg = &def
	}
	log := opts.Logger
	if log == nil {
		log = logger.DefaultLogger
	}

	term := terminal.NewTerminal(terminal.Options{
		Cols:                opts.Cols,
		Rows:                opts.Rows,
		MaxHistory:          cfg.Scrollback,
		SemanticEscapeChars: cfg.SemanticEscapeChars,
		Colors:              cfg.Overrides(),
		Modes:               core.ModePacked,
		Reply:               opts.Reply,
		Logger:              log,
	})

	return &Core{
		term: term,
		stream: stream.NewStream(&streamHandler{
			Terminal: term,
			logger:   log,
		}, log),
		logger: log,
	}
}

// ProcessOutput feeds a chunk of PTY output through the parser. This is
// the only mutator of terminal state besides Resize and the selection
// calls, and the hot path; it takes the fair lock so snapshotters are
// never starved.
func (c *Core) ProcessOutput(buf []byte) (err error) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("panic while processing output", "panic", r)
			fmt.Println(string(debug.Stack()))
			err = fmt.Errorf("panic while processing output: %v", r)
		}
	}()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.stream.NextSlice(buf)
	return nil
}

// Process feeds a single byte. Byte-at-a-time is much slower than
// ProcessOutput but useful when debugging parser state.
func (c *Core) Process(b byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stream.Next(b)
	return nil
}

// Resize propagates a new screen size.
func (c *Core) Resize(cols, rows int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.term.Resize(size.CellCountInt(cols), size.CellCountInt(rows))
}

// ScrollDisplay moves the viewport through scrollback; positive is
// toward older lines.
func (c *Core) ScrollDisplay(lines int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.term.ScrollDisplay(lines)
}

// StartSelection, UpdateSelection and ClearSelection manage the
// selection under the lock; points are buffer coordinates as produced
// by Frame.BufferPoint.
func (c *Core) StartSelection(kind selection.Kind, p selection.Point) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.term.StartSelection(kind, p)
}

func (c *Core) UpdateSelection(p selection.Point) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.term.UpdateSelection(p)
}

func (c *Core) ClearSelection() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.term.ClearSelection()
}

// SelectionText extracts the selected text, ready for a clipboard.
func (c *Core) SelectionText() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.term.SelectionText()
}

// WithTerminal runs fn with exclusive access to the terminal. For
// operations the wrapper methods do not cover; fn must not retain the
// pointer.
func (c *Core) WithTerminal(fn func(*terminal.Terminal)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn(c.term)
}

// DumpString returns the visible screen as plain text.
func (c *Core) DumpString() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.term.PlainString()
}

// Frame is an immutable copy of everything a renderer needs for one
// draw: viewport cells, cursor, title and the normalized selection.
// Reading it requires no locking.
type Frame struct {
	Cols, Rows int

	// Cells is the viewport, row major, honoring the display offset.
	Cells [][]grid.Cell

	Cursor        terminal.Cursor
	CursorStyle   uint16
	CursorVisible bool

	Title         string
	DisplayOffset int

	// Palette resolves the frame's cell color references. A copy, so
	// later OSC color changes do not affect this frame.
	Palette color.Palette

	// Selection endpoints in viewport coordinates, inclusive, when a
	// non-empty selection intersects the viewport.
	Selection *FrameSelection

	// viewportBase is the buffer line of viewport row 0, for
	// BufferPoint.
	viewportBase int
}

// FrameSelection is a normalized selection span in viewport space.
type FrameSelection struct {
	Kind       selection.Kind
	Start, End selection.Point
}

// Snapshot copies the current state into a Frame. It leases the fair
// mutex first so a hot ProcessOutput loop cannot delay the copy by more
// than one iteration.
func (c *Core) Snapshot() *Frame {
	c.mu.Lease()
	c.mu.LockUnfair()
	defer func() {
		c.mu.Unlock()
		c.mu.Unlease()
	}()

	g := c.term.Grid()
	rows := int(c.term.Rows())
	cols := int(c.term.Cols())

	f := &Frame{
		Cols:          cols,
		Rows:          rows,
		Cells:         make([][]grid.Cell, rows),
		Cursor:        c.term.Cursor(),
		CursorStyle:   c.term.CursorStyle(),
		CursorVisible: c.term.Modes.Get(core.ModeCursorVisible),
		Title:         c.term.Title(),
		DisplayOffset: g.DisplayOffset(),
		Palette:       *c.term.Palette(),
		viewportBase:  g.ViewportToBuffer(0),
	}
	for y := range size.CellCountInt(rows) {
		row := g.ViewportRow(y)
		cells := make([]grid.Cell, cols)
		copy(cells, row.Cells())
		f.Cells[int(y)] = cells
	}

	if sel := c.term.Selection(); sel != nil {
		if start, end, ok := sel.Range(g); ok {
			f.Selection = &FrameSelection{
				Kind: sel.Kind(),
				Start: selection.Point{
					Line: start.Line - f.viewportBase,
					Col:  start.Col,
				},
				End: selection.Point{
					Line: end.Line - f.viewportBase,
					Col:  end.Col,
				},
			}
		}
	}
	return f
}

// Each calls fn for every viewport cell in row-major order.
func (f *Frame) Each(fn func(x, y int, cell grid.Cell)) {
	for y, row := range f.Cells {
		for x := range row {
			fn(x, y, row[x])
		}
	}
}

// BufferPoint translates a viewport position (as rendered from this
// frame) into the buffer coordinates the selection calls expect.
func (f *Frame) BufferPoint(x, y int) selection.Point {
	return selection.Point{
		Line: f.viewportBase + y,
		Col:  size.CellCountInt(x),
	}
}

// Selected reports whether the viewport cell at (x, y) falls inside the
// frame's selection.
func (f *Frame) Selected(x, y int) bool {
	s := f.Selection
	if s == nil {
		return false
	}
	p := selection.Point{Line: y, Col: size.CellCountInt(x)}
	if p.Line < s.Start.Line || p.Line > s.End.Line {
		return false
	}
	if s.Kind == selection.KindBlock {
		return p.Col >= s.Start.Col && p.Col <= s.End.Col
	}
	if p.Line == s.Start.Line && p.Col < s.Start.Col {
		return false
	}
	if p.Line == s.End.Line && p.Col > s.End.Col {
		return false
	}
	return true
}
