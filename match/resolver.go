package match

import (
	"go.uber.org/zap"
)

type cell struct{ row, col int }

// Resolve computes a deterministic, at-most-one-to-one assignment between the
// rows and columns of a similarity matrix, returning column id to candidate
// row ids. The matrix is consumed: Resolve zeroes it as it assigns. Three
// phases over the nonzero cells:
//
//  1. While the global maximum is attained by exactly one cell, record it and
//     retire its row and column. Co-equal global maxima are not broken by any
//     secondary key; they fall through to the later phases.
//  2. Per column, a unique maximum row is accepted only when that value
//     strictly exceeds every other value in the row (the row is not a better
//     fit for a different column); each acceptance restarts the scan, since
//     retiring a row and column can create new unique maxima.
//  3. Any column still holding nonzero cells takes the rows attaining its
//     maximum: a single row is assigned outright, tied rows are all returned
//     as candidates so the caller sees the ambiguity instead of a guess.
func Resolve(m *Matrix, logger *zap.Logger) map[string][]string {
	if logger == nil {
		logger = zap.NewNop()
	}
	out := map[string][]string{}

	// Phase 1: global unique maxima.
	for m.nonZero() {
		cells, _ := m.globalMax()
		if len(cells) != 1 {
			break
		}
		c := cells[0]
		out[m.Cols[c.col]] = []string{m.Rows[c.row]}
		m.zeroRowCol(c.row, c.col)
	}

	// Phase 2: per-column unique maxima with row dominance.
	reloop := true
	for reloop && m.nonZero() {
		reloop = false
		for j := range m.Cols {
			rows, max := m.colMax(j)
			if len(rows) != 1 {
				continue
			}
			i := rows[0]
			if best := m.rowMaxExcept(i, j); best >= max {
				logger.Warn("row fits another column at least as well, leaving unresolved",
					zap.String("column", m.Cols[j]),
					zap.String("row", m.Rows[i]),
					zap.Float64("score", max),
					zap.Float64("competing", best))
				continue
			}
			out[m.Cols[j]] = []string{m.Rows[i]}
			m.zeroRowCol(i, j)
			reloop = true
			break
		}
	}

	// Phase 3: residual columns, surfacing genuine ties.
	for j := range m.Cols {
		rows, _ := m.colMax(j)
		if len(rows) == 0 {
			continue
		}
		col := m.Cols[j]
		if len(rows) == 1 {
			if _, taken := out[col]; taken {
				// Phases 1-2 zero assigned columns, so this should not happen.
				logger.Warn("column already assigned in an earlier phase",
					zap.String("column", col))
				continue
			}
			out[col] = []string{m.Rows[rows[0]]}
			continue
		}
		for _, i := range rows {
			out[col] = append(out[col], m.Rows[i])
		}
	}
	return out
}

// globalMax returns every cell attaining the maximum nonzero value.
func (m *Matrix) globalMax() ([]cell, float64) {
	var cells []cell
	max := 0.0
	for i := range m.Values {
		for j := range m.Values[i] {
			v := m.Values[i][j]
			if v == 0 {
				continue
			}
			switch {
			case v > max:
				max = v
				cells = []cell{{i, j}}
			case v == max:
				cells = append(cells, cell{i, j})
			}
		}
	}
	return cells, max
}

// colMax returns the rows attaining the column's maximum nonzero value.
func (m *Matrix) colMax(col int) ([]int, float64) {
	var rows []int
	max := 0.0
	for i := range m.Values {
		v := m.Values[i][col]
		if v == 0 {
			continue
		}
		switch {
		case v > max:
			max = v
			rows = []int{i}
		case v == max:
			rows = append(rows, i)
		}
	}
	return rows, max
}

// rowMaxExcept returns the largest value in a row outside the given column.
func (m *Matrix) rowMaxExcept(row, col int) float64 {
	max := 0.0
	for j := range m.Values[row] {
		if j == col {
			continue
		}
		if m.Values[row][j] > max {
			max = m.Values[row][j]
		}
	}
	return max
}
