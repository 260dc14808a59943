package solver

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/emwave/emwave/grid"
	"github.com/emwave/emwave/material"
	"github.com/emwave/emwave/output"
	"github.com/emwave/emwave/source"
	"github.com/emwave/emwave/waveform"
)

func newFreeSpaceGrid(n int) *grid.Grid {
	g := grid.New()
	g.Messages = false
	g.Nx, g.Ny, g.Nz = n, n, n
	g.Dx, g.Dy, g.Dz = 1e-3, 1e-3, 1e-3
	g.NThreads = 2
	g.CalculateDt(1)

	pec := material.New(0, "pec", 1, 0, 1, 0)
	pec.PEC = true
	free := material.New(1, "free_space", 1, 0, 1, 0)
	g.Materials = append(g.Materials, pec, free)
	for _, m := range g.Materials {
		m.CalculateUpdateCoeffsE(g.Dt, g.Dx, g.Dy, g.Dz)
		m.CalculateUpdateCoeffsH(g.Dt, g.Dx, g.Dy, g.Dz)
	}

	g.InitialiseGeometryArrays()
	g.InitialiseFieldArrays()
	g.InitialiseUpdateCoeffArrays()
	return g
}

func TestParallelRangeCoversAll(t *testing.T) {
	for _, workers := range []int{1, 2, 7} {
		seen := make([]int, 100)
		parallelRange(0, 100, workers, func(start, end int) {
			for i := start; i < end; i++ {
				seen[i]++
			}
		})
		for i, n := range seen {
			if n != 1 {
				t.Fatalf("workers=%d: index %d visited %d times", workers, i, n)
			}
		}
	}
}

func TestUpdateElectricZeroFieldsStayZero(t *testing.T) {
	g := newFreeSpaceGrid(10)

	updateElectric(g)
	updateMagnetic(g)

	if v := g.Ez.At(5, 5, 5); v != 0 {
		t.Errorf("Ez = %g, want 0", v)
	}
	if v := g.Hx.At(5, 5, 5); v != 0 {
		t.Errorf("Hx = %g, want 0", v)
	}
}

func TestHertzianDipoleInjection(t *testing.T) {
	g := newFreeSpaceGrid(10)
	g.Waveforms = append(g.Waveforms, &waveform.Waveform{ID: "w", Type: waveform.TypeImpulse, Amp: 1})
	g.HertzianDipoles = append(g.HertzianDipoles, &source.HertzianDipole{
		Polarisation: source.PolZ, X: 5, Y: 5, Z: 5, WaveformID: "w",
	})

	if err := injectHertzianDipoles(g, 0); err != nil {
		t.Fatalf("inject error: %s", err)
	}
	if g.Ez.At(5, 5, 5) == 0 {
		t.Error("dipole injection left Ez unchanged")
	}
	if g.Ez.At(5, 5, 6) != 0 {
		t.Error("injection leaked to a neighbouring edge")
	}
}

func TestImpulsePropagates(t *testing.T) {
	g := newFreeSpaceGrid(20)
	g.Waveforms = append(g.Waveforms, &waveform.Waveform{ID: "w", Type: waveform.TypeImpulse, Amp: 1})
	g.HertzianDipoles = append(g.HertzianDipoles, &source.HertzianDipole{
		Polarisation: source.PolZ, X: 10, Y: 10, Z: 10, WaveformID: "w",
	})

	absTime := 0.0
	for step := 0; step < 12; step++ {
		updateElectric(g)
		if err := injectHertzianDipoles(g, absTime); err != nil {
			t.Fatal(err)
		}
		absTime += 0.5 * g.Dt
		updateMagnetic(g)
		absTime += 0.5 * g.Dt
	}

	// The disturbance has had time to reach a probe four cells away.
	if g.Ez.At(14, 10, 10) == 0 {
		t.Error("field did not propagate away from the source")
	}

	// Everything stays finite under the CFL timestep.
	for i := 0; i <= g.Nx; i++ {
		v := g.Ez.At(clampIndex(i, g.Ez.NX-1), 10, 10)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("field blew up at i=%d: %g", i, v)
		}
	}
}

func clampIndex(v, max int) int {
	if v > max {
		return max
	}
	return v
}

const solverTestModel = `
#messages: n
#title: smoke
#domain: 0.03 0.03 0.03
#dx_dy_dz: 0.001 0.001 0.001
#time_window: 60
#pml_cells: 5
#waveform: ricker 1 1.5e10 pulse
#hertzian_dipole: z 0.015 0.015 0.015 pulse
#rx: 0.020 0.015 0.015
`

func TestRunModelEndToEnd(t *testing.T) {
	dir := t.TempDir()
	inputFile := filepath.Join(dir, "smoke.in")
	if err := os.WriteFile(inputFile, []byte(strings.TrimSpace(solverTestModel)+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	opts := RunOptions{
		InputFile:       inputFile,
		NumberModelRuns: 1,
		SnapshotCodec:   output.CodecNone,
	}
	result, err := RunModel(opts, 1)
	if err != nil {
		t.Fatalf("RunModel error: %s", err)
	}

	if result.Iterations != 60 {
		t.Errorf("iterations = %d, want 60", result.Iterations)
	}

	trace, err := output.Read(result.OutputFile)
	if err != nil {
		t.Fatalf("failed to read output file: %s", err)
	}
	values, err := trace.RxTrace("rx1", "Ez")
	if err != nil {
		t.Fatal(err)
	}

	peak := 0.0
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatal("trace contains non-finite samples")
		}
		if a := math.Abs(v); a > peak {
			peak = a
		}
	}
	if peak == 0 {
		t.Error("receiver saw no field")
	}
}

func TestRunModelGeometryOnly(t *testing.T) {
	dir := t.TempDir()
	inputFile := filepath.Join(dir, "smoke.in")
	content := strings.TrimSpace(solverTestModel) + "\n#geometry_view: 0 0 0 0.03 0.03 0.03 0.001 0.001 0.001 geom\n"
	if err := os.WriteFile(inputFile, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	opts := RunOptions{
		InputFile:       inputFile,
		NumberModelRuns: 1,
		GeometryOnly:    true,
	}
	result, err := RunModel(opts, 1)
	if err != nil {
		t.Fatalf("RunModel error: %s", err)
	}

	if result.OutputFile != "" {
		t.Error("geometry-only run should produce no output file")
	}
	if _, err := os.Stat(filepath.Join(dir, "geom.geom")); err != nil {
		t.Errorf("geometry file missing: %s", err)
	}
}

func TestRunModelsRejectsUselessFarm(t *testing.T) {
	opts := RunOptions{InputFile: "whatever.in", NumberModelRuns: 1}
	if _, err := RunModels(opts, 4); err == nil {
		t.Error("expected error when farming a single run")
	}
}
