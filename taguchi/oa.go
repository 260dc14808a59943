package taguchi

import "fmt"

// Orthogonal arrays with three levels per factor. Entries are level indices
// 0..2; rows are experiments, columns are factors.
var (
	// OA9 covers up to 4 factors in 9 experiments.
	oa9 = [][]int{
		{0, 0, 0, 0},
		{0, 1, 1, 1},
		{0, 2, 2, 2},
		{1, 0, 1, 2},
		{1, 1, 2, 0},
		{1, 2, 0, 1},
		{2, 0, 2, 1},
		{2, 1, 0, 2},
		{2, 2, 1, 0},
	}

	// OA18 covers up to 7 factors in 18 experiments.
	oa18 = [][]int{
		{0, 0, 0, 0, 0, 0, 0},
		{0, 1, 1, 1, 1, 1, 1},
		{0, 2, 2, 2, 2, 2, 2},
		{1, 0, 0, 1, 1, 2, 2},
		{1, 1, 1, 2, 2, 0, 0},
		{1, 2, 2, 0, 0, 1, 1},
		{2, 0, 1, 0, 2, 1, 2},
		{2, 1, 2, 1, 0, 2, 0},
		{2, 2, 0, 2, 1, 0, 1},
		{0, 0, 2, 2, 1, 1, 0},
		{0, 1, 0, 0, 2, 2, 1},
		{0, 2, 1, 1, 0, 0, 2},
		{1, 0, 1, 2, 0, 1, 2},
		{1, 1, 2, 0, 1, 2, 0},
		{1, 2, 0, 1, 2, 0, 1},
		{2, 0, 2, 1, 2, 0, 1},
		{2, 1, 0, 2, 0, 1, 2},
		{2, 2, 1, 0, 1, 2, 0},
	}
)

// levels per factor in the arrays above.
const numLevels = 3

// selectOA picks the smallest orthogonal array that can hold k factors.
// Returns the array and its experiment count.
func selectOA(k int) ([][]int, int, error) {
	switch {
	case k < 1:
		return nil, 0, fmt.Errorf("no parameters to optimise")
	case k <= 4:
		return oa9, len(oa9), nil
	case k <= 7:
		return oa18, len(oa18), nil
	default:
		return nil, 0, fmt.Errorf("too many parameters to optimise: %d (maximum 7)", k)
	}
}
