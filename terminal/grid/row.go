package grid

import (
	"github.com/gridterm/gridterm/terminal/size"
	"github.com/gridterm/gridterm/terminal/utils"
)

// Row is a fixed-capacity sequence of cells plus an occupancy counter.
//
// occ is the exclusive upper bound of cells that may differ from the
// row's background template:
//   - 0 means no cell was ever written
//   - occ == len(cells) means every cell may be occupied
//
// Every mutable access through a column index raises occ, and a reset
// against an empty template only touches the occupied prefix. That
// makes full-screen clears and repeated partial-line edits cheap.
type Row struct {
	cells []Cell
	occ   int
}

// NewRow allocates a row of cols cells filled with template.
func NewRow(cols size.CellCountInt, template Cell) Row {
	cells := make([]Cell, cols)
	for i := range cells {
		cells[i] = template
	}
	return Row{cells: cells}
}

func (r *Row) Len() size.CellCountInt { return size.CellCountInt(len(r.cells)) }

// Occ returns the current occupancy bound.
func (r *Row) Occ() int { return r.occ }

// Cell returns a copy of the cell at col for read-only use.
func (r *Row) Cell(col size.CellCountInt) Cell {
	return r.cells[col]
}

// CellMut returns a mutable pointer to the cell at col and raises occ
// to cover it.
func (r *Row) CellMut(col size.CellCountInt) *Cell {
	if int(col)+1 > r.occ {
		r.occ = int(col) + 1
	}
	return &r.cells[col]
}

// MutRange returns the mutable cells in [start, end) and raises occ to
// cover the range.
func (r *Row) MutRange(start, end size.CellCountInt) []Cell {
	utils.Assert(start <= end)
	if int(end) > r.occ {
		r.occ = int(end)
	}
	return r.cells[start:end]
}

// Cells returns the backing cells for read-only iteration. Callers must
// not mutate through it; use CellMut or MutRange for writes.
func (r *Row) Cells() []Cell { return r.cells }

// Reset fills the row with template. When the template is an empty
// background cell only the occupied prefix is touched, since everything
// past occ is already template-equivalent. A non-empty template (e.g. a
// colored background from BCE-style erases) has to cover the whole row
// and leaves the row fully occupied.
func (r *Row) Reset(template Cell) {
	if template.IsEmpty() {
		for i := range r.cells[:r.occ] {
			r.cells[i] = template
		}
		r.occ = 0
		return
	}
	for i := range r.cells {
		r.cells[i] = template
	}
	r.occ = len(r.cells)
}

// Grow pads the row with template up to cols. No-op if already wide
// enough.
func (r *Row) Grow(cols size.CellCountInt, template Cell) {
	for size.CellCountInt(len(r.cells)) < cols {
		r.cells = append(r.cells, template)
	}
}

// Shrink truncates the row to cols, losing content from the right.
func (r *Row) Shrink(cols size.CellCountInt) {
	if size.CellCountInt(len(r.cells)) <= cols {
		return
	}
	// A wide character split by the truncation loses both halves.
	if cols > 0 && r.cells[cols-1].Flags.Has(FlagWideChar) {
		r.cells[cols-1] = NewCell()
	}
	r.cells = r.cells[:cols]
	if r.occ > int(cols) {
		r.occ = int(cols)
	}
	// Truncation removes any trailing soft-wrap marker; the logical line
	// now ends here.
	r.SetWrapped(false)
}

// IsWrapped reports whether this row soft-wraps onto the next one.
func (r *Row) IsWrapped() bool {
	if len(r.cells) == 0 {
		return false
	}
	return r.cells[len(r.cells)-1].Flags.Has(FlagWrapline)
}

// SetWrapped sets or clears the soft-wrap marker on the last cell.
func (r *Row) SetWrapped(wrapped bool) {
	if len(r.cells) == 0 {
		return
	}
	last := r.CellMut(size.CellCountInt(len(r.cells) - 1))
	if wrapped {
		last.Flags |= FlagWrapline
	} else {
		last.Flags &^= FlagWrapline
	}
}

// LineLength returns the occupied length of the row for text
// extraction: the full width when the row wraps, otherwise one past the
// last non-empty cell.
func (r *Row) LineLength() size.CellCountInt {
	if r.IsWrapped() {
		return r.Len()
	}
	for i := r.occ; i > 0; i-- {
		if c := &r.cells[i-1]; !c.IsEmpty() {
			return size.CellCountInt(i)
		}
	}
	return 0
}
