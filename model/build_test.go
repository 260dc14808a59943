package model

import (
	"strings"
	"testing"

	"github.com/emwave/emwave/grid"
	"github.com/emwave/emwave/luamodule"
)

const testModel = `
#messages: n
#title: dipole in half space
#domain: 0.05 0.05 0.05
#dx_dy_dz: 0.001 0.001 0.001
#time_window: 50
#material: 6 0.01 1 0 half_space
#waveform: ricker 1 1.5e9 pulse
#hertzian_dipole: z 0.025 0.025 0.030 pulse
#rx: 0.030 0.025 0.030
#box: 0 0 0 0.05 0.05 0.025 half_space
`

func buildTestModel(t *testing.T, content string) *grid.Grid {
	t.Helper()
	path := writeInputFile(t, content)

	g, _, err := Build(path, &luamodule.Namespace{NumberModelRuns: 1, CurrentModelRun: 1})
	if err != nil {
		t.Fatalf("Build error: %s", err)
	}
	return g
}

func TestBuildModel(t *testing.T) {
	g := buildTestModel(t, testModel)

	if g.Nx != 50 || g.Ny != 50 || g.Nz != 50 {
		t.Errorf("domain = %dx%dx%d cells, want 50x50x50", g.Nx, g.Ny, g.Nz)
	}
	if g.Iterations != 50 {
		t.Errorf("iterations = %d, want 50", g.Iterations)
	}
	if g.Title != "dipole in half space" {
		t.Errorf("title = %q", g.Title)
	}

	// Builtins plus the user material.
	if _, err := g.MaterialByID("pec"); err != nil {
		t.Error("missing builtin pec material")
	}
	if _, err := g.MaterialByID("free_space"); err != nil {
		t.Error("missing builtin free_space material")
	}
	m, err := g.MaterialByID("half_space")
	if err != nil {
		t.Fatal("missing user material half_space")
	}
	if m.Er != 6 || m.Se != 0.01 {
		t.Errorf("half_space er=%g se=%g", m.Er, m.Se)
	}

	if len(g.HertzianDipoles) != 1 {
		t.Fatalf("got %d hertzian dipoles, want 1", len(g.HertzianDipoles))
	}
	h := g.HertzianDipoles[0]
	if h.X != 25 || h.Y != 25 || h.Z != 30 {
		t.Errorf("dipole at %d,%d,%d", h.X, h.Y, h.Z)
	}
	if len(g.Rxs) != 1 || g.Rxs[0].ID != "rx1" {
		t.Errorf("unexpected receivers: %+v", g.Rxs)
	}

	// The box fills the lower half with the user material; edges well inside
	// it carry its update coefficients.
	if got := g.ID.At(grid.CompEx, 25, 25, 10); got != uint32(m.NumID) {
		t.Errorf("edge material inside box = %d, want %d", got, m.NumID)
	}
	if got := g.ID.At(grid.CompEx, 25, 25, 40); got != 1 {
		t.Errorf("edge material above box = %d, want free space", got)
	}

	// Update coefficient tables cover every material.
	if len(g.UpdateCoeffsE) != len(g.Materials) {
		t.Errorf("coefficient table has %d rows for %d materials", len(g.UpdateCoeffsE), len(g.Materials))
	}
	if row := g.UpdateCoeffsE[0]; row[0] != 0 || row[1] != 0 {
		t.Error("pec row should be zero")
	}

	// Field arrays allocated to staggered extents.
	if g.Ez == nil || g.Ez.NX != 51 || g.Ez.NZ != 50 {
		t.Error("field arrays not initialised to staggered extents")
	}
}

func TestBuildVoltageSourceSplitsMaterial(t *testing.T) {
	content := strings.Replace(testModel,
		"#hertzian_dipole: z 0.025 0.025 0.030 pulse",
		"#voltage_source: z 0.025 0.025 0.030 50 pulse", 1)

	g := buildTestModel(t, content)

	if len(g.VoltageSources) != 1 {
		t.Fatalf("got %d voltage sources, want 1", len(g.VoltageSources))
	}
	vs := g.VoltageSources[0]
	if vs.Resistance != 50 {
		t.Errorf("resistance = %g", vs.Resistance)
	}

	// The source edge gets its own derived material with added conductivity.
	numID := g.ID.At(grid.CompEz, vs.X, vs.Y, vs.Z)
	derived := g.Materials[numID]
	if !strings.Contains(derived.ID, "VoltageSource") {
		t.Errorf("source edge material = %s", derived.ID)
	}
	if derived.Se <= 0 {
		t.Error("derived material should carry source conductivity")
	}
	if derived.Average {
		t.Error("derived material must not allow smoothing")
	}
}

func TestBuildRejectsSourceOutsideDomain(t *testing.T) {
	content := strings.Replace(testModel,
		"#hertzian_dipole: z 0.025 0.025 0.030 pulse",
		"#hertzian_dipole: z 0.025 0.025 0.060 pulse", 1)
	path := writeInputFile(t, content)

	_, _, err := Build(path, &luamodule.Namespace{NumberModelRuns: 1, CurrentModelRun: 1})
	if err == nil {
		t.Error("expected error for source outside the domain")
	}
}

func TestBuildRejectsUnknownWaveformReference(t *testing.T) {
	content := strings.Replace(testModel, "pulse\n#rx", "missing\n#rx", 1)
	path := writeInputFile(t, content)

	_, _, err := Build(path, &luamodule.Namespace{NumberModelRuns: 1, CurrentModelRun: 1})
	if err == nil {
		t.Error("expected error for unknown waveform reference")
	}
}

func TestBuildDispersiveModel(t *testing.T) {
	content := testModel + "#add_dispersion_debye: 1 3 1e-9 half_space\n"

	g := buildTestModel(t, content)

	if g.MaxPoles() != 1 {
		t.Fatalf("max poles = %d, want 1", g.MaxPoles())
	}
	if g.Tx == nil || g.UpdateCoeffsDispersive == nil {
		t.Fatal("dispersive arrays not initialised")
	}

	m, _ := g.MaterialByID("half_space")
	row := g.UpdateCoeffsDispersive[m.NumID]
	if len(row) != 3 {
		t.Fatalf("dispersive row has %d entries, want 3", len(row))
	}
	if real(row[0]) <= 0 || real(row[0]) >= 1 {
		t.Errorf("decay factor = %v, want within (0, 1)", row[0])
	}
}
