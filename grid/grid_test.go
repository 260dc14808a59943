package grid

import (
	"math"
	"testing"

	"github.com/emwave/emwave/constants"
	"github.com/emwave/emwave/material"
	"github.com/emwave/emwave/waveform"
	"github.com/stretchr/testify/require"
)

func newTestGrid() *Grid {
	g := New()
	g.Nx, g.Ny, g.Nz = 10, 12, 14
	g.Dx, g.Dy, g.Dz = 1e-3, 1e-3, 1e-3
	return g
}

func TestCalculateDtCFL(t *testing.T) {
	g := newTestGrid()
	g.CalculateDt(1)

	want := 1 / (constants.C * math.Sqrt(3/(1e-3*1e-3)))
	require.InDelta(t, want, g.Dt, want*1e-12)

	g.CalculateDt(0.5)
	require.InDelta(t, want/2, g.Dt, want*1e-12)
}

func TestDiscretise(t *testing.T) {
	g := newTestGrid()

	require.Equal(t, 5, g.DiscretiseX(5e-3))
	require.Equal(t, 5, g.DiscretiseY(5.4e-3))
	require.Equal(t, 6, g.DiscretiseZ(5.5e-3))
}

func TestWithinBounds(t *testing.T) {
	g := newTestGrid()

	require.NoError(t, g.WithinBounds(0, 0, 0))
	require.NoError(t, g.WithinBounds(10, 12, 14))
	require.Error(t, g.WithinBounds(11, 0, 0))
	require.Error(t, g.WithinBounds(0, -1, 0))
	require.Error(t, g.WithinBounds(0, 0, 15))
}

func TestCounts(t *testing.T) {
	g := newTestGrid()

	require.Equal(t, 11*13*15, g.NNodes())
	require.Equal(t, 10*12*14, g.NCells())
}

func TestInitialiseGeometryArrays(t *testing.T) {
	g := newTestGrid()
	g.InitialiseGeometryArrays()

	// Everything starts as free space.
	require.Equal(t, uint32(1), g.Solid.At(0, 0, 0))
	require.Equal(t, uint32(1), g.ID.At(CompEz, 10, 12, 7))
	require.False(t, g.RigidE.At(0, 5, 5, 5))
}

func TestInitialiseFieldArrayDims(t *testing.T) {
	g := newTestGrid()
	g.InitialiseFieldArrays()

	require.Equal(t, [3]int{10, 13, 15}, [3]int{g.Ex.NX, g.Ex.NY, g.Ex.NZ})
	require.Equal(t, [3]int{11, 12, 15}, [3]int{g.Ey.NX, g.Ey.NY, g.Ey.NZ})
	require.Equal(t, [3]int{11, 13, 14}, [3]int{g.Ez.NX, g.Ez.NY, g.Ez.NZ})
	require.Equal(t, [3]int{11, 12, 14}, [3]int{g.Hx.NX, g.Hx.NY, g.Hx.NZ})
}

func TestLookupByID(t *testing.T) {
	g := newTestGrid()
	g.Materials = append(g.Materials, material.New(0, "pec", 1, 0, 1, 0))
	g.Waveforms = append(g.Waveforms, &waveform.Waveform{ID: "pulse", Type: waveform.TypeGaussian, Amp: 1, Freq: 1e9})

	m, err := g.MaterialByID("pec")
	require.NoError(t, err)
	require.Equal(t, 0, m.NumID)

	_, err = g.MaterialByID("gold")
	require.ErrorIs(t, err, ErrUnknownMaterial)

	w, err := g.WaveformByID("pulse")
	require.NoError(t, err)
	require.Equal(t, waveform.TypeGaussian, w.Type)

	_, err = g.WaveformByID("missing")
	require.ErrorIs(t, err, ErrUnknownWaveform)
}

func TestMaxPoles(t *testing.T) {
	g := newTestGrid()
	require.Equal(t, 0, g.MaxPoles())

	soil := material.New(0, "soil", 4, 0, 1, 0)
	soil.AddDebyePole(3, 1e-9)
	soil.AddDebyePole(1, 1e-10)
	g.Materials = append(g.Materials, soil)

	require.Equal(t, 2, g.MaxPoles())
}

func TestDispersionCheck(t *testing.T) {
	g := newTestGrid()
	g.Dt = 1e-12
	g.Iterations = 100

	// No waveforms, no usable bound.
	_, ok := g.DispersionCheck()
	require.False(t, ok)

	g.Waveforms = append(g.Waveforms, &waveform.Waveform{ID: "w", Type: waveform.TypeSine, Amp: 1, Freq: 1e9})
	g.Materials = append(g.Materials, material.New(0, "soil", 9, 0, 1, 0))

	resolution, ok := g.DispersionCheck()
	require.True(t, ok)

	// Smallest wavelength: c/3 over 4 GHz, resolved by ten cells.
	want := constants.C / 3 / 4e9 / ResolvedSteps
	require.InDelta(t, want, resolution, want*1e-9)
}

func TestCurrentCirculation(t *testing.T) {
	g := newTestGrid()
	g.InitialiseFieldArrays()

	// A single Hz loop contributes to Iz through the x and y circulation.
	g.Hx.Set(5, 4, 5, 1)
	g.Hx.Set(5, 5, 5, -1)
	g.Hy.Set(4, 5, 5, -1)
	g.Hy.Set(5, 5, 5, 1)

	want := g.Dx*(1-(-1)) + g.Dy*(1-(-1))
	require.InDelta(t, want, g.CurrentZ(5, 5, 5), 1e-15)

	// Boundary positions carry no current.
	require.Zero(t, g.CurrentZ(0, 5, 5))
	require.Zero(t, g.CurrentX(5, 0, 5))
}
