package size

// CellCountInt is the integer type used to count cells in a single
// dimension of the screen. A terminal dimension is never negative and
// never realistically larger than this, so a dedicated small type keeps
// row and cell structures compact.
type CellCountInt = uint16

// HistoryCountInt is the integer type used to count total stored lines,
// scrollback included. Scrollback can exceed what CellCountInt holds so
// this is a plain int.
type HistoryCountInt = int
