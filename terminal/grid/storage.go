package grid

import (
	"github.com/gridterm/gridterm/terminal/size"
	"github.com/gridterm/gridterm/terminal/utils"
)

// Storage owns every allocated row: the visible screen plus scrollback
// history, addressed by a logical line index where 0 is the oldest
// stored line and length-1 is the bottom of the screen.
//
// The rows live in a ring: physical = (zero + logical) % len(inner).
// Scrolling the full screen is a rotation of zero plus clearing of the
// recycled rows, never a copy of cell data. The ring only grows until
// it reaches visible + maxHistory lines; after that the oldest history
// row is evicted (FIFO) and its allocation becomes the new bottom row.
type Storage struct {
	inner []Row

	// Physical index of logical line 0.
	zero int

	// Number of visible screen lines. The visible region is always the
	// logical range [length-visible, length).
	visible int

	// Logical lines currently in use, history included. Slots past
	// length are spare allocations kept for reuse.
	length int

	maxHistory int
	cols       size.CellCountInt
}

// NewStorage allocates storage for the given screen size. Scrollback
// rows are allocated lazily as lines scroll into history.
func NewStorage(lines, cols size.CellCountInt, maxHistory int, template Cell) *Storage {
	utils.Assert(lines > 0 && cols > 0)
	inner := make([]Row, lines)
	for i := range inner {
		inner[i] = NewRow(cols, template)
	}
	return &Storage{
		inner:      inner,
		visible:    int(lines),
		length:     int(lines),
		maxHistory: maxHistory,
		cols:       cols,
	}
}

// Len is the total number of stored lines, history plus visible.
func (s *Storage) Len() int { return s.length }

// History is the number of scrollback lines currently stored.
func (s *Storage) History() int { return s.length - s.visible }

// Visible is the number of screen lines.
func (s *Storage) Visible() int { return s.visible }

// Cols is the current row width.
func (s *Storage) Cols() size.CellCountInt { return s.cols }

func (s *Storage) maxTotal() int { return s.visible + s.maxHistory }

// Row returns the row at the given logical line.
func (s *Storage) Row(logical int) *Row {
	utils.Assert(logical >= 0 && logical < s.length, "logical line out of range")
	return &s.inner[(s.zero+logical)%len(s.inner)]
}

// SwapRows exchanges two logical lines. Only the row headers move.
func (s *Storage) SwapRows(a, b int) {
	pa := (s.zero + a) % len(s.inner)
	pb := (s.zero + b) % len(s.inner)
	s.inner[pa], s.inner[pb] = s.inner[pb], s.inner[pa]
}

// ScrollUpFull scrolls the whole screen up by n lines: the top n
// visible lines become the newest history, and n cleared lines appear
// at the bottom. Returns how many history lines were evicted so callers
// can shift buffer-coordinate state (selection) accordingly.
func (s *Storage) ScrollUpFull(n int, template Cell) (evicted int) {
	for range n {
		if s.length < s.maxTotal() {
			if s.length == len(s.inner) {
				if s.zero != 0 {
					s.linearize()
				}
				s.inner = append(s.inner, NewRow(s.cols, template))
			}
			s.length++
		} else {
			// At the cap: rotate, reusing the oldest row's allocation
			// as the new bottom row.
			s.zero = (s.zero + 1) % len(s.inner)
			evicted++
		}
	}

	for i := s.length - n; i < s.length; i++ {
		s.resetRow(i, template)
	}
	return evicted
}

// PopHistory reclassifies up to n of the newest history lines as the
// top of the visible screen, shrinking the stored length so the bottom
// n visible lines fall off into the spare pool. Returns how many lines
// the history could supply.
func (s *Storage) PopHistory(n int) int {
	pulled := min(n, s.History())
	s.length -= pulled
	return pulled
}

// GrowVisible raises the screen height. Lines are pulled back out of
// history first so prior content reappears; any remainder is blank rows
// at the bottom. Returns the number of lines pulled from history, which
// is how far the cursor must move down to stay on its content.
func (s *Storage) GrowVisible(lines size.CellCountInt, template Cell) (pulled int) {
	utils.Assert(int(lines) >= s.visible)
	delta := int(lines) - s.visible
	pulled = min(delta, s.History())
	s.visible = int(lines)

	for range delta - pulled {
		if s.length == len(s.inner) {
			if s.zero != 0 {
				s.linearize()
			}
			s.inner = append(s.inner, NewRow(s.cols, template))
		} else {
			s.resetRow(s.length, template)
		}
		s.length++
	}
	return pulled
}

// ShrinkVisible lowers the screen height. Up to push top lines scroll
// into history; the rest of the height loss falls off the bottom of the
// screen into the spare pool. Returns how many lines went to history
// and how many history lines the resulting overflow evicted.
func (s *Storage) ShrinkVisible(lines size.CellCountInt, push int) (pushed, evicted int) {
	utils.Assert(lines > 0 && int(lines) <= s.visible)
	delta := s.visible - int(lines)
	pushed = min(max(push, 0), delta)
	s.length -= delta - pushed
	s.visible = int(lines)
	evicted = s.trim()
	return pushed, evicted
}

// SetMaxHistory updates the scrollback limit, evicting the oldest lines
// if the stored history no longer fits.
func (s *Storage) SetMaxHistory(n int) (evicted int) {
	utils.Assert(n >= 0)
	s.maxHistory = n
	return s.trim()
}

// ClearHistory drops all scrollback, keeping the visible screen.
func (s *Storage) ClearHistory() (evicted int) {
	evicted = s.History()
	s.zero = (s.zero + evicted) % len(s.inner)
	s.length = s.visible
	return evicted
}

// Reset clears history and fills every visible row with template.
func (s *Storage) Reset(template Cell) {
	s.ClearHistory()
	for i := range s.length {
		s.resetRow(i, template)
	}
}

// ResizeCols changes the width of every stored line. Wider rows are
// truncated with content loss from the right; narrower rows are padded
// with template. No reflow happens: soft-wrap markers on surviving last
// columns are preserved by Row.Grow and dropped by Row.Shrink.
func (s *Storage) ResizeCols(cols size.CellCountInt, template Cell) {
	utils.Assert(cols > 0)
	s.cols = cols
	for i := range s.length {
		row := s.Row(i)
		if row.Len() > cols {
			row.Shrink(cols)
		} else {
			row.Grow(cols, template)
		}
	}
}

// trim evicts the oldest history lines until the total fits the cap.
func (s *Storage) trim() (evicted int) {
	for s.length > s.maxTotal() {
		s.zero = (s.zero + 1) % len(s.inner)
		s.length--
		evicted++
	}
	return evicted
}

// resetRow resets the row at the logical line, replacing the allocation
// when a spare slot of a stale width is being reused.
func (s *Storage) resetRow(logical int, template Cell) {
	r := &s.inner[(s.zero+logical)%len(s.inner)]
	if r.Len() != s.cols {
		*r = NewRow(s.cols, template)
		return
	}
	r.Reset(template)
}

// linearize reorders the ring so logical 0 sits at physical 0. Only row
// headers move; this runs at most once per ring growth.
func (s *Storage) linearize() {
	next := make([]Row, len(s.inner))
	for i := range s.inner {
		next[i] = s.inner[(s.zero+i)%len(s.inner)]
	}
	s.inner = next
	s.zero = 0
}
