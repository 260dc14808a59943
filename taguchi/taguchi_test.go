package taguchi

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSelectOA(t *testing.T) {
	oa, n, err := selectOA(2)
	require.NoError(t, err)
	require.Equal(t, 9, n)
	require.Len(t, oa, 9)

	oa, n, err = selectOA(7)
	require.NoError(t, err)
	require.Equal(t, 18, n)
	require.Len(t, oa, 18)

	_, _, err = selectOA(0)
	require.Error(t, err)
	_, _, err = selectOA(8)
	require.Error(t, err)
}

// Every column of an orthogonal array must use each level equally often.
func TestArraysAreBalanced(t *testing.T) {
	for name, oa := range map[string][][]int{"OA9": oa9, "OA18": oa18} {
		t.Run(name, func(t *testing.T) {
			cols := len(oa[0])
			for c := 0; c < cols; c++ {
				counts := make([]int, numLevels)
				for _, row := range oa {
					require.Len(t, row, cols)
					counts[row[c]]++
				}
				for level, n := range counts {
					require.Equalf(t, len(oa)/numLevels, n,
						"column %d level %d occurs %d times", c, level, n)
				}
			}
		})
	}
}

func writeInput(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "model.in")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestParseBlock(t *testing.T) {
	path := writeInput(t, `
#taguchi:
#parameter: amp 0.25 5
#parameter: depth 0.001 0.1
#fitness_max: myRx Ez
#max_iterations: 4
#stop_threshold: 0.02
#end_taguchi:
#title: model
`)

	cfg, err := ParseBlock(path)
	require.NoError(t, err)

	require.Len(t, cfg.Params, 2)
	require.Equal(t, Param{Name: "amp", Min: 0.25, Max: 5}, cfg.Params[0])
	require.Equal(t, "myRx", cfg.FitnessRx)
	require.Equal(t, "Ez", cfg.FitnessComponent)
	require.Equal(t, 4, cfg.MaxIterations)
	require.InDelta(t, 0.02, cfg.StopThreshold, 1e-12)
}

func TestParseBlockDefaults(t *testing.T) {
	path := writeInput(t, `
#taguchi:
#parameter: amp 0.25 5
#fitness_max: myRx
#end_taguchi:
`)

	cfg, err := ParseBlock(path)
	require.NoError(t, err)
	require.Equal(t, "Ez", cfg.FitnessComponent)
	require.Equal(t, 2, cfg.MaxIterations)
	require.Zero(t, cfg.StopThreshold)
}

func TestParseBlockErrors(t *testing.T) {
	cases := map[string]string{
		"no block":         "#title: model\n",
		"no parameters":    "#taguchi:\n#fitness_max: myRx\n#end_taguchi:\n",
		"no fitness":       "#taguchi:\n#parameter: amp 0.25 5\n#end_taguchi:\n",
		"inverted bounds":  "#taguchi:\n#parameter: amp 5 0.25\n#fitness_max: myRx\n#end_taguchi:\n",
		"unknown directive": "#taguchi:\n#optimize: hard\n#end_taguchi:\n",
	}

	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseBlock(writeInput(t, content))
			require.Error(t, err)
		})
	}
}

func TestClampRange(t *testing.T) {
	require.Equal(t, 1.0, clampRange(0.5, 1, 2))
	require.Equal(t, 2.0, clampRange(3, 1, 2))
	require.Equal(t, 1.5, clampRange(1.5, 1, 2))
}
