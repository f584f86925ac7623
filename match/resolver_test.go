package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func matrixFromValues(rows, cols []string, values map[string]map[string]float64) *Matrix {
	return Build(rows, cols, func(row, col string) (float64, bool) {
		v := values[row][col]
		return v, v > 0
	})
}

func TestResolveTrivialAssignment(t *testing.T) {
	m := matrixFromValues([]string{"A", "B"}, []string{"X", "Y"}, map[string]map[string]float64{
		"A": {"X": 0.9, "Y": 0.1},
		"B": {"X": 0.2, "Y": 0.8},
	})
	got := Resolve(m, nil)
	assert.EqualValues(t, map[string][]string{"X": {"A"}, "Y": {"B"}}, got)
}

func TestResolveSurfacesTies(t *testing.T) {
	m := matrixFromValues([]string{"A", "B"}, []string{"X"}, map[string]map[string]float64{
		"A": {"X": 0.5},
		"B": {"X": 0.5},
	})
	got := Resolve(m, nil)
	assert.EqualValues(t, map[string][]string{"X": {"A", "B"}}, got)
}

func TestResolveRowDominance(t *testing.T) {
	// R1 is C1's only candidate but fits C2 better, so C1 stays unassigned.
	m := matrixFromValues([]string{"R1"}, []string{"C1", "C2"}, map[string]map[string]float64{
		"R1": {"C1": 0.5, "C2": 0.9},
	})
	got := Resolve(m, nil)
	assert.EqualValues(t, map[string][]string{"C2": {"R1"}}, got)
}

func TestResolveOneToOne(t *testing.T) {
	m := matrixFromValues(
		[]string{"A", "B", "C"},
		[]string{"X", "Y", "Z"},
		map[string]map[string]float64{
			"A": {"X": 0.9, "Y": 0.3, "Z": 0.1},
			"B": {"X": 0.4, "Y": 0.8, "Z": 0.2},
			"C": {"X": 0.3, "Y": 0.2, "Z": 0.7},
		})
	got := Resolve(m, nil)
	require.Len(t, got, 3)
	seen := map[string]bool{}
	for col, rows := range got {
		require.Len(t, rows, 1, col)
		assert.False(t, seen[rows[0]], "row %s assigned twice", rows[0])
		seen[rows[0]] = true
	}
	assert.EqualValues(t, []string{"A"}, got["X"])
	assert.EqualValues(t, []string{"B"}, got["Y"])
	assert.EqualValues(t, []string{"C"}, got["Z"])
}

func TestResolveDeterministic(t *testing.T) {
	build := func() *Matrix {
		return matrixFromValues(
			[]string{"A", "B", "C", "D"},
			[]string{"W", "X", "Y", "Z"},
			map[string]map[string]float64{
				"A": {"W": 0.5, "X": 0.5},
				"B": {"W": 0.5, "X": 0.5},
				"C": {"Y": 0.9},
				"D": {"Z": 0.9, "Y": 0.1},
			})
	}
	first := Resolve(build(), nil)
	for i := 0; i < 20; i++ {
		assert.EqualValues(t, first, Resolve(build(), nil))
	}
}

func TestResolveConsumesMatrix(t *testing.T) {
	m := matrixFromValues([]string{"A"}, []string{"X"}, map[string]map[string]float64{
		"A": {"X": 0.9},
	})
	Resolve(m, nil)
	assert.False(t, m.nonZero())
}

func TestResolveEmptyMatrix(t *testing.T) {
	m := Build(nil, nil, func(string, string) (float64, bool) { return 0, false })
	assert.Empty(t, Resolve(m, nil))
}

func TestRound5(t *testing.T) {
	assert.Equal(t, 0.40001, Round5(0.400005001))
	assert.Equal(t, Round5(0.1+0.2), Round5(0.3))
}
