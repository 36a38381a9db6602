// Package matrix: Dense, the row-major workhorse of the calculation.
package matrix

import (
	"fmt"
	"strings"
)

// Dense is a row-major matrix of float64 values.
// rows and cols are the shape; data holds rows*cols elements so that
// element (r,c) lives at data[r*cols+c].
type Dense struct {
	rows, cols int
	data       []float64
}

// NewDense creates a rows×cols Dense initialized to zeros.
// Stage 1 (Validate): rows and cols must be > 0.
// Stage 2 (Allocate): one flat backing slice.
// Complexity: O(rows*cols) time and memory.
func NewDense(rows, cols int) (*Dense, error) {
	if rows <= 0 || cols <= 0 {
		return nil, ErrBadShape
	}
	return &Dense{rows: rows, cols: cols, data: make([]float64, rows*cols)}, nil
}

// DenseOf builds a Dense from row slices; all rows must share one length.
// Mostly used by tests and fixtures.
func DenseOf(rows [][]float64) (*Dense, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, ErrBadShape
	}
	cols := len(rows[0])
	m, err := NewDense(len(rows), cols)
	if err != nil {
		return nil, err
	}
	for r, row := range rows {
		if len(row) != cols {
			return nil, fmt.Errorf("DenseOf: row %d: %w", r, ErrDimensionMismatch)
		}
		copy(m.data[r*cols:(r+1)*cols], row)
	}
	return m, nil
}

// Identity returns the n×n identity matrix.
func Identity(n int) (*Dense, error) {
	m, err := NewDense(n, n)
	if err != nil {
		return nil, err
	}
	for i := 0; i < n; i++ {
		m.data[i*n+i] = 1
	}
	return m, nil
}

// Rows returns the number of rows. Complexity: O(1).
func (m *Dense) Rows() int { return m.rows }

// Cols returns the number of columns. Complexity: O(1).
func (m *Dense) Cols() int { return m.cols }

// indexOf computes the flat index for (r,c) or returns ErrOutOfRange.
func (m *Dense) indexOf(r, c int) (int, error) {
	if r < 0 || r >= m.rows || c < 0 || c >= m.cols {
		return 0, fmt.Errorf("Dense(%d,%d): %w", r, c, ErrOutOfRange)
	}
	return r*m.cols + c, nil
}

// At retrieves the element at (r,c). Complexity: O(1).
func (m *Dense) At(r, c int) (float64, error) {
	idx, err := m.indexOf(r, c)
	if err != nil {
		return 0, err
	}
	return m.data[idx], nil
}

// Set assigns v at (r,c). Complexity: O(1).
func (m *Dense) Set(r, c int, v float64) error {
	idx, err := m.indexOf(r, c)
	if err != nil {
		return err
	}
	m.data[idx] = v
	return nil
}

// Add accumulates delta into (r,c). Complexity: O(1).
func (m *Dense) Add(r, c int, delta float64) error {
	idx, err := m.indexOf(r, c)
	if err != nil {
		return err
	}
	m.data[idx] += delta
	return nil
}

// Clone returns a deep copy. Complexity: O(rows*cols).
func (m *Dense) Clone() *Dense {
	cp := make([]float64, len(m.data))
	copy(cp, m.data)
	return &Dense{rows: m.rows, cols: m.cols, data: cp}
}

// ColumnCopy returns a fresh copy of column j.
// Callers own the returned slice; the matrix is not aliased.
// Complexity: O(rows).
func (m *Dense) ColumnCopy(j int) ([]float64, error) {
	if j < 0 || j >= m.cols {
		return nil, fmt.Errorf("Dense.ColumnCopy(%d): %w", j, ErrOutOfRange)
	}
	col := make([]float64, m.rows)
	for i := 0; i < m.rows; i++ {
		col[i] = m.data[i*m.cols+j]
	}
	return col, nil
}

// RowCopy returns a fresh copy of row i. Complexity: O(cols).
func (m *Dense) RowCopy(i int) ([]float64, error) {
	if i < 0 || i >= m.rows {
		return nil, fmt.Errorf("Dense.RowCopy(%d): %w", i, ErrOutOfRange)
	}
	row := make([]float64, m.cols)
	copy(row, m.data[i*m.cols:(i+1)*m.cols])
	return row, nil
}

// SetColumn overwrites column j with col; len(col) must equal Rows().
// Complexity: O(rows).
func (m *Dense) SetColumn(j int, col []float64) error {
	if j < 0 || j >= m.cols {
		return fmt.Errorf("Dense.SetColumn(%d): %w", j, ErrOutOfRange)
	}
	if len(col) != m.rows {
		return fmt.Errorf("Dense.SetColumn(%d): %w", j, ErrDimensionMismatch)
	}
	for i := 0; i < m.rows; i++ {
		m.data[i*m.cols+j] = col[i]
	}
	return nil
}

// ScaleColumn multiplies every element of column j by f in place.
// Complexity: O(rows).
func (m *Dense) ScaleColumn(j int, f float64) error {
	if j < 0 || j >= m.cols {
		return fmt.Errorf("Dense.ScaleColumn(%d): %w", j, ErrOutOfRange)
	}
	for i := 0; i < m.rows; i++ {
		m.data[i*m.cols+j] *= f
	}
	return nil
}

// Diag returns a copy of the main diagonal; the matrix must be square.
// Complexity: O(rows).
func (m *Dense) Diag() ([]float64, error) {
	if m.rows != m.cols {
		return nil, fmt.Errorf("Dense.Diag: %w", ErrNonSquare)
	}
	d := make([]float64, m.rows)
	for i := 0; i < m.rows; i++ {
		d[i] = m.data[i*m.cols+i]
	}
	return d, nil
}

// String implements fmt.Stringer for debugging.
func (m *Dense) String() string {
	var b strings.Builder
	for i := 0; i < m.rows; i++ {
		b.WriteByte('[')
		for j := 0; j < m.cols; j++ {
			if j > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%g", m.data[i*m.cols+j])
		}
		b.WriteString("]\n")
	}
	return b.String()
}
