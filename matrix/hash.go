// Package matrix: Hash, the sparse accumulator behind matrix assembly.
package matrix

import "fmt"

// cellKey addresses one cell of a Hash matrix.
type cellKey struct{ r, c int }

// Hash is a sparse mutable matrix keyed by (row, col). It grows its
// shape on demand, which lets the assembler fill the intervention
// matrix while the flow index is still being discovered, and upgrades
// to a Dense once the final shape is known.
//
// A Hash never stores explicit zeros written by Set; Add of zero deltas
// keeps existing cells untouched.
type Hash struct {
	rows, cols int
	cells      map[cellKey]float64
}

// NewHash creates an empty sparse matrix with an initial shape.
// Negative dimensions are clamped to zero; the shape grows with writes.
func NewHash(rows, cols int) *Hash {
	if rows < 0 {
		rows = 0
	}
	if cols < 0 {
		cols = 0
	}
	return &Hash{rows: rows, cols: cols, cells: make(map[cellKey]float64)}
}

// Rows returns the current number of rows. Complexity: O(1).
func (h *Hash) Rows() int { return h.rows }

// Cols returns the current number of columns. Complexity: O(1).
func (h *Hash) Cols() int { return h.cols }

// Len returns the number of stored cells. Complexity: O(1).
func (h *Hash) Len() int { return len(h.cells) }

// grow widens the shape to contain (r,c).
func (h *Hash) grow(r, c int) {
	if r >= h.rows {
		h.rows = r + 1
	}
	if c >= h.cols {
		h.cols = c + 1
	}
}

// Set assigns v at (r,c), growing the shape as needed.
// Negative indices are the only error condition.
func (h *Hash) Set(r, c int, v float64) error {
	if r < 0 || c < 0 {
		return fmt.Errorf("Hash.Set(%d,%d): %w", r, c, ErrOutOfRange)
	}
	h.grow(r, c)
	if v == 0 {
		delete(h.cells, cellKey{r, c})
		return nil
	}
	h.cells[cellKey{r, c}] = v
	return nil
}

// Add accumulates delta into (r,c), growing the shape as needed.
func (h *Hash) Add(r, c int, delta float64) error {
	if r < 0 || c < 0 {
		return fmt.Errorf("Hash.Add(%d,%d): %w", r, c, ErrOutOfRange)
	}
	h.grow(r, c)
	if delta == 0 {
		return nil
	}
	k := cellKey{r, c}
	h.cells[k] += delta
	if h.cells[k] == 0 {
		delete(h.cells, k)
	}
	return nil
}

// At retrieves the value at (r,c); absent cells read as zero.
func (h *Hash) At(r, c int) (float64, error) {
	if r < 0 || r >= h.rows || c < 0 || c >= h.cols {
		return 0, fmt.Errorf("Hash.At(%d,%d): %w", r, c, ErrOutOfRange)
	}
	return h.cells[cellKey{r, c}], nil
}

// Dense materializes the accumulator into a Dense of shape
// max(rows, minRows) × max(cols, minCols). The minimum shape lets the
// assembler force a fixed column count even when trailing columns hold
// no cells. Complexity: O(rows*cols + cells).
func (h *Hash) Dense(minRows, minCols int) (*Dense, error) {
	rows, cols := h.rows, h.cols
	if minRows > rows {
		rows = minRows
	}
	if minCols > cols {
		cols = minCols
	}
	m, err := NewDense(rows, cols)
	if err != nil {
		return nil, fmt.Errorf("Hash.Dense: %w", err)
	}
	for k, v := range h.cells {
		m.data[k.r*cols+k.c] = v
	}
	return m, nil
}
