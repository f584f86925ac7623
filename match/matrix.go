// Package match scores and reconciles entities across two models: a
// similarity matrix, the unique-assignment resolver, and the species and
// reaction matchers built on both.
package match

import "math"

// Round5 rounds to 5 decimal places. Every matrix value passes through it so
// scores differing only beyond the 5th decimal compare as ties; the resolver
// relies on this when hunting unique maxima.
func Round5(v float64) float64 {
	return math.Round(v*1e5) / 1e5
}

// Matrix is a dense similarity matrix with named rows and columns. It need
// not be square.
type Matrix struct {
	Rows   []string
	Cols   []string
	Values [][]float64 // [row][col]

	rowIndex map[string]int
	colIndex map[string]int
}

// Build constructs a matrix by applying score to every (row, col) pair. The
// boolean the score function returns marks whether the pair is considered
// found; only the numeric score is stored.
func Build(rows, cols []string, score func(row, col string) (float64, bool)) *Matrix {
	m := newMatrix(rows, cols)
	for i, r := range rows {
		for j, c := range cols {
			v, _ := score(r, c)
			m.Values[i][j] = Round5(v)
		}
	}
	return m
}

func newMatrix(rows, cols []string) *Matrix {
	m := &Matrix{
		Rows:     rows,
		Cols:     cols,
		Values:   make([][]float64, len(rows)),
		rowIndex: make(map[string]int, len(rows)),
		colIndex: make(map[string]int, len(cols)),
	}
	for i := range rows {
		m.Values[i] = make([]float64, len(cols))
		m.rowIndex[rows[i]] = i
	}
	for j := range cols {
		m.colIndex[cols[j]] = j
	}
	return m
}

// Set stores a value, rounded to 5 decimals. Unknown names are ignored.
func (m *Matrix) Set(row, col string, v float64) {
	i, okRow := m.rowIndex[row]
	j, okCol := m.colIndex[col]
	if okRow && okCol {
		m.Values[i][j] = Round5(v)
	}
}

// At returns the value for the named cell, 0 for unknown names.
func (m *Matrix) At(row, col string) float64 {
	i, okRow := m.rowIndex[row]
	j, okCol := m.colIndex[col]
	if !okRow || !okCol {
		return 0
	}
	return m.Values[i][j]
}

// Clone deep-copies the matrix. Resolve consumes its argument, so callers
// needing the original scores keep a clone.
func (m *Matrix) Clone() *Matrix {
	out := newMatrix(m.Rows, m.Cols)
	for i := range m.Values {
		copy(out.Values[i], m.Values[i])
	}
	return out
}

// Transposed returns a new matrix with rows and columns swapped.
func (m *Matrix) Transposed() *Matrix {
	out := newMatrix(m.Cols, m.Rows)
	for i := range m.Values {
		for j := range m.Values[i] {
			out.Values[j][i] = m.Values[i][j]
		}
	}
	return out
}

// nonZero reports whether any cell is nonzero.
func (m *Matrix) nonZero() bool {
	for i := range m.Values {
		for j := range m.Values[i] {
			if m.Values[i][j] != 0 {
				return true
			}
		}
	}
	return false
}

// zeroRowCol clears a full row and a full column, retiring both entities.
func (m *Matrix) zeroRowCol(row, col int) {
	for j := range m.Values[row] {
		m.Values[row][j] = 0
	}
	for i := range m.Values {
		m.Values[i][col] = 0
	}
}
