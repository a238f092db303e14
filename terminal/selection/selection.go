package selection

import (
	"strings"

	"github.com/gridterm/gridterm/terminal/grid"
	"github.com/gridterm/gridterm/terminal/size"
)

// DefaultEscapeChars is the set of characters that stop semantic
// expansion when no configuration overrides it.
const DefaultEscapeChars = " ,│`|:\"'()[]{}<>\t"

// Kind selects how the anchor/extent pair is expanded into a region.
type Kind int

const (
	// KindSimple selects the exact cell span between the endpoints.
	KindSimple Kind = iota

	// KindSemantic expands both endpoints to the nearest semantic
	// boundary, crossing soft-wrapped row edges.
	KindSemantic

	// KindLines selects whole logical lines, following wrap chains.
	KindLines

	// KindBlock selects an independent column range on every row.
	KindBlock
)

// Point addresses a cell in buffer coordinates: Line 0 is the oldest
// stored scrollback line. Buffer coordinates keep a selection stable
// while the screen underneath scrolls; only history eviction moves it,
// via Rotate.
type Point struct {
	Line int
	Col  size.CellCountInt
}

// Less orders points top-to-bottom, then left-to-right.
func (p Point) Less(o Point) bool {
	if p.Line != o.Line {
		return p.Line < o.Line
	}
	return p.Col < o.Col
}

// Selection tracks the anchor (where the drag started) and extent
// (where it currently is). Normalization into an ordered range happens
// on every read, never at update time, since the endpoints may arrive
// in either order and rotation changes them between reads.
type Selection struct {
	kind   Kind
	anchor Point
	extent Point

	// Runes that delimit words for semantic expansion.
	escapeChars string
}

// New starts a selection of the given kind with both endpoints on p.
// escapeChars is the semantic word-boundary set; it is only consulted
// by KindSemantic.
func New(kind Kind, p Point, escapeChars string) *Selection {
	return &Selection{
		kind:        kind,
		anchor:      p,
		extent:      p,
		escapeChars: escapeChars,
	}
}

func (s *Selection) Kind() Kind { return s.kind }

// Update moves the extent, leaving the anchor in place.
func (s *Selection) Update(p Point) { s.extent = p }

// Rotate shifts both endpoints by delta lines. Called with a negative
// delta when scrollback eviction removes lines below the selection's
// coordinate origin. Returns false once the whole selection has been
// pushed off the front of the buffer and should be discarded.
func (s *Selection) Rotate(delta int) bool {
	s.anchor.Line += delta
	s.extent.Line += delta
	return s.anchor.Line >= 0 || s.extent.Line >= 0
}

// Range resolves the selection against the grid into an ordered,
// inclusive cell range. ok is false for empty selections (anchor and
// extent on the same point for simple and block kinds) and selections
// entirely outside the stored buffer.
func (s *Selection) Range(g *grid.Grid) (start, end Point, ok bool) {
	start, end = s.anchor, s.extent
	if end.Less(start) {
		start, end = end, start
	}
	if end.Line < 0 || start.Line >= g.Len() {
		return Point{}, Point{}, false
	}

	switch s.kind {
	case KindSimple:
		if s.anchor == s.extent {
			return Point{}, Point{}, false
		}
	case KindSemantic:
		start = s.semanticLeft(g, clampPoint(g, start))
		end = s.semanticRight(g, clampPoint(g, end))
	case KindLines:
		start = Point{Line: g.LogicalLineStart(clampLine(g, start.Line))}
		end = Point{
			Line: g.LogicalLineEnd(clampLine(g, end.Line)),
			Col:  g.Cols() - 1,
		}
	case KindBlock:
		if s.anchor == s.extent {
			return Point{}, Point{}, false
		}
		// Columns normalize independently of which endpoint is lower.
		if start.Col > end.Col {
			start.Col, end.Col = end.Col, start.Col
		}
	}
	return clampPoint(g, start), clampPoint(g, end), true
}

// Contains reports whether the cell at p falls inside the resolved
// selection.
func (s *Selection) Contains(g *grid.Grid, p Point) bool {
	start, end, ok := s.Range(g)
	if !ok {
		return false
	}
	if p.Line < start.Line || p.Line > end.Line {
		return false
	}
	if s.kind == KindBlock {
		return p.Col >= start.Col && p.Col <= end.Col
	}
	if p.Line == start.Line && p.Col < start.Col {
		return false
	}
	if p.Line == end.Line && p.Col > end.Col {
		return false
	}
	return true
}

// Text reconstructs the selected content for the clipboard. Soft-wrap
// joins produce no newline; every extracted line is trimmed of trailing
// background-only cells. Block selections emit one line per row.
func (s *Selection) Text(g *grid.Grid) string {
	start, end, ok := s.Range(g)
	if !ok {
		return ""
	}

	var sb strings.Builder
	for line := start.Line; line <= end.Line; line++ {
		row := g.BufferRow(line)

		from := size.CellCountInt(0)
		to := row.LineLength()
		if s.kind == KindBlock {
			from = start.Col
			to = min(end.Col+1, row.LineLength())
		} else {
			if line == start.Line {
				from = start.Col
			}
			if line == end.Line {
				to = min(end.Col+1, row.LineLength())
			}
		}

		for col := from; col < to; col++ {
			cell := row.Cell(col)
			if cell.Flags.Has(grid.FlagWideCharSpacer) ||
				cell.Flags.Has(grid.FlagLeadingWideCharSpacer) {
				continue
			}
			sb.WriteRune(cell.Rune)
			for _, zw := range cell.Zerowidth() {
				sb.WriteRune(zw)
			}
		}

		if line == end.Line {
			break
		}
		if s.kind == KindBlock || !row.IsWrapped() {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// semanticLeft walks from p toward the start of the buffer until the
// previous cell is a semantic escape char or a hard line break.
func (s *Selection) semanticLeft(g *grid.Grid, p Point) Point {
	for {
		var prev Point
		if p.Col == 0 {
			if p.Line == 0 || !g.BufferRow(p.Line-1).IsWrapped() {
				return p
			}
			prev = Point{Line: p.Line - 1, Col: g.Cols() - 1}
		} else {
			prev = Point{Line: p.Line, Col: p.Col - 1}
		}

		cell := g.BufferRow(prev.Line).Cell(prev.Col)
		if cell.Flags.Has(grid.FlagWideCharSpacer) {
			p = prev
			continue
		}
		// A never-written cell holds rune 0 and bounds a word just like
		// a space would.
		if cell.Rune == 0 || strings.ContainsRune(s.escapeChars, cell.Rune) {
			return p
		}
		p = prev
	}
}

// semanticRight is the mirror walk toward the end of the buffer.
func (s *Selection) semanticRight(g *grid.Grid, p Point) Point {
	for {
		var next Point
		if p.Col == g.Cols()-1 {
			if p.Line == g.Len()-1 || !g.BufferRow(p.Line).IsWrapped() {
				return p
			}
			next = Point{Line: p.Line + 1}
		} else {
			next = Point{Line: p.Line, Col: p.Col + 1}
		}

		cell := g.BufferRow(next.Line).Cell(next.Col)
		if cell.Flags.Has(grid.FlagWideCharSpacer) {
			p = next
			continue
		}
		if cell.Rune == 0 || strings.ContainsRune(s.escapeChars, cell.Rune) {
			return p
		}
		p = next
	}
}

func clampLine(g *grid.Grid, line int) int {
	return max(0, min(line, g.Len()-1))
}

func clampPoint(g *grid.Grid, p Point) Point {
	p.Line = clampLine(g, p.Line)
	if p.Col >= g.Cols() {
		p.Col = g.Cols() - 1
	}
	return p
}
