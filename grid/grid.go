// Package grid holds the Yee grid: model geometry, field arrays, update
// coefficient tables and the parameters shared by model building and
// solving.
package grid

import (
	"errors"
	"fmt"
	"math"

	"github.com/emwave/emwave/constants"
	"github.com/emwave/emwave/material"
	"github.com/emwave/emwave/source"
	"github.com/emwave/emwave/waveform"
)

// Field component indices into the edge ID array.
const (
	CompEx = iota
	CompEy
	CompEz
	CompHx
	CompHy
	CompHz
	NumComponents
)

// Minimum number of cells the smallest wavelength must span before the
// dispersion check warns.
const ResolvedSteps = 10

var (
	ErrUnknownWaveform = errors.New("no waveform with given ID")
	ErrUnknownMaterial = errors.New("no material with given ID")
)

// Step is a per-run source or receiver position offset in cells.
type Step struct {
	X, Y, Z int
}

// Snapshot requests a volume dump of the fields at one timestep.
type Snapshot struct {
	XS, YS, ZS int
	XF, YF, ZF int
	DX, DY, DZ int
	Time       int
	FileName   string
}

// GeometryView requests a dump of per-cell material IDs.
type GeometryView struct {
	XS, YS, ZS int
	XF, YF, ZF int
	DX, DY, DZ int
	FileName   string
}

// Grid holds everything describing one model: discretisation, geometry and
// field arrays, materials and their update coefficient tables, sources and
// receivers. A convenient way of accessing regularly used parameters.
type Grid struct {
	InputFileName  string
	InputDirectory string
	Title          string
	Messages       bool

	Nx, Ny, Nz int
	Dx, Dy, Dz float64
	Dt         float64
	Iterations int
	TimeWindow float64
	NThreads   int

	PMLThickness int

	Materials []*material.Material
	Waveforms []*waveform.Waveform

	HertzianDipoles []*source.HertzianDipole
	MagneticDipoles []*source.MagneticDipole
	VoltageSources  []*source.VoltageSource
	Rxs             []*source.Rx

	SrcStep Step
	RxStep  Step

	Snapshots     []*Snapshot
	GeometryViews []*GeometryView

	// Volumetric material IDs per cell.
	Solid *UintArray3
	// Per-node, per-axis smoothing vetoes for electric edges and magnetic
	// faces. Set by the edge and plate commands to pin their materials
	// against dielectric smoothing.
	RigidE *BoolArray4
	RigidH *BoolArray4
	// Material ID per cell edge, one volume per field component.
	ID *CompArray4

	Ex, Ey, Ez *Array3
	Hx, Hy, Hz *Array3

	// Update coefficient tables, one row per material.
	UpdateCoeffsE [][material.CoeffsPerRow]float64
	UpdateCoeffsH [][material.CoeffsPerRow]float64

	// Dispersive accumulators and coefficient table, present only when a
	// material carries Debye poles.
	Tx, Ty, Tz             *ComplexArray4
	UpdateCoeffsDispersive [][]complex128
}

// New returns a grid with default control parameters.
func New() *Grid {
	return &Grid{
		Messages:     true,
		PMLThickness: 10,
	}
}

// InitialiseGeometryArrays allocates the volumetric material array (solid),
// the smoothing veto arrays (rigid) and the cell edge ID array. Solid and ID
// start as free space (material 1), rigid arrays permit smoothing.
func (g *Grid) InitialiseGeometryArrays() {
	g.Solid = NewUintArray3(g.Nx+1, g.Ny+1, g.Nz+1, 1)
	g.RigidE = NewBoolArray4(3, g.Nx+1, g.Ny+1, g.Nz+1)
	g.RigidH = NewBoolArray4(3, g.Nx+1, g.Ny+1, g.Nz+1)
	g.ID = NewCompArray4(NumComponents, g.Nx+1, g.Ny+1, g.Nz+1, 1)
}

// InitialiseFieldArrays allocates the staggered electric and magnetic field
// component arrays.
func (g *Grid) InitialiseFieldArrays() {
	g.Ex = NewArray3(g.Nx, g.Ny+1, g.Nz+1)
	g.Ey = NewArray3(g.Nx+1, g.Ny, g.Nz+1)
	g.Ez = NewArray3(g.Nx+1, g.Ny+1, g.Nz)
	g.Hx = NewArray3(g.Nx+1, g.Ny, g.Nz)
	g.Hy = NewArray3(g.Nx, g.Ny+1, g.Nz)
	g.Hz = NewArray3(g.Nx, g.Ny, g.Nz+1)
}

// InitialiseUpdateCoeffArrays fills the per-material update coefficient
// tables from the current material list. Materials must have had their
// coefficients calculated.
func (g *Grid) InitialiseUpdateCoeffArrays() {
	g.UpdateCoeffsE = make([][material.CoeffsPerRow]float64, len(g.Materials))
	g.UpdateCoeffsH = make([][material.CoeffsPerRow]float64, len(g.Materials))
	for i, m := range g.Materials {
		g.UpdateCoeffsE[i] = m.ERow()
		g.UpdateCoeffsH[i] = m.HRow()
	}
}

// InitialiseDispersiveArrays allocates the recursive convolution
// accumulators and the per-material dispersive coefficient table.
func (g *Grid) InitialiseDispersiveArrays() {
	poles := g.MaxPoles()
	g.Tx = NewComplexArray4(poles, g.Nx, g.Ny+1, g.Nz+1)
	g.Ty = NewComplexArray4(poles, g.Nx+1, g.Ny, g.Nz+1)
	g.Tz = NewComplexArray4(poles, g.Nx+1, g.Ny+1, g.Nz)

	g.UpdateCoeffsDispersive = make([][]complex128, len(g.Materials))
	for i, m := range g.Materials {
		row := make([]complex128, material.CoeffsPerPole*poles)
		for p := 0; p < m.Poles(); p++ {
			row[material.CoeffsPerPole*p] = m.Ept[p]
			row[material.CoeffsPerPole*p+1] = m.DChi0[p]
			row[material.CoeffsPerPole*p+2] = m.Chi0[p]
		}
		g.UpdateCoeffsDispersive[i] = row
	}
}

// MaxPoles reports the largest Debye pole count over all materials.
func (g *Grid) MaxPoles() int {
	max := 0
	for _, m := range g.Materials {
		if m.Poles() > max {
			max = m.Poles()
		}
	}
	return max
}

// WaveformByID looks a waveform up by its user-assigned ID.
func (g *Grid) WaveformByID(id string) (*waveform.Waveform, error) {
	for _, w := range g.Waveforms {
		if w.ID == id {
			return w, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownWaveform, id)
}

// MaterialByID looks a material up by its user-assigned ID.
func (g *Grid) MaterialByID(id string) (*material.Material, error) {
	for _, m := range g.Materials {
		if m.ID == id {
			return m, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownMaterial, id)
}

// CalculateDt sets the timestep to the 3D CFL limit scaled by factor.
func (g *Grid) CalculateDt(factor float64) {
	inv := math.Sqrt(1/(g.Dx*g.Dx) + 1/(g.Dy*g.Dy) + 1/(g.Dz*g.Dz))
	g.Dt = factor / (constants.C * inv)
}

// NNodes reports the number of grid nodes.
func (g *Grid) NNodes() int {
	return (g.Nx + 1) * (g.Ny + 1) * (g.Nz + 1)
}

// NCells reports the number of Yee cells.
func (g *Grid) NCells() int {
	return g.Nx * g.Ny * g.Nz
}

// NEdges reports the number of cell edges.
func (g *Grid) NEdges() int {
	l, m, n := g.Nx+1, g.Ny+1, g.Nz+1
	return l*m*(n-1) + m*n*(l-1) + l*n*(m-1)
}

// WithinBounds checks a cell coordinate against the grid extent.
func (g *Grid) WithinBounds(i, j, k int) error {
	if i < 0 || i > g.Nx {
		return fmt.Errorf("x coordinate %d outside grid (0..%d)", i, g.Nx)
	}
	if j < 0 || j > g.Ny {
		return fmt.Errorf("y coordinate %d outside grid (0..%d)", j, g.Ny)
	}
	if k < 0 || k > g.Nz {
		return fmt.Errorf("z coordinate %d outside grid (0..%d)", k, g.Nz)
	}
	return nil
}

// RoundValue rounds half away from zero, used when discretising continuous
// coordinates onto the grid.
func RoundValue(v float64) int {
	return int(math.Round(v))
}

// DiscretiseX converts a continuous x coordinate in metres to cells.
func (g *Grid) DiscretiseX(v float64) int { return RoundValue(v / g.Dx) }

// DiscretiseY converts a continuous y coordinate in metres to cells.
func (g *Grid) DiscretiseY(v float64) int { return RoundValue(v / g.Dy) }

// DiscretiseZ converts a continuous z coordinate in metres to cells.
func (g *Grid) DiscretiseZ(v float64) int { return RoundValue(v / g.Dz) }

// DispersionCheck estimates the coarsest spatial step that still resolves
// the smallest wavelength in the model by ResolvedSteps cells. Reports
// (0, false) when no waveform gives a usable frequency bound.
func (g *Grid) DispersionCheck() (float64, bool) {
	maxFreq := 0.0
	for _, w := range g.Waveforms {
		if f, ok := w.MaxFrequency(g.Iterations, g.Dt); ok && f > maxFreq {
			maxFreq = f
		}
	}
	if maxFreq == 0 {
		return 0, false
	}

	maxEr := 1.0
	for _, m := range g.Materials {
		if m.Er > maxEr {
			maxEr = m.Er
		}
	}

	minVelocity := constants.C / math.Sqrt(maxEr)
	minWavelength := minVelocity / maxFreq

	return minWavelength / ResolvedSteps, true
}

// CurrentX calculates the x component of current at a grid position from the
// circulation of the magnetic field.
func (g *Grid) CurrentX(x, y, z int) float64 {
	if y == 0 || z == 0 {
		return 0
	}
	return g.Dy*(g.Hy.At(x, y, z-1)-g.Hy.At(x, y, z)) +
		g.Dz*(g.Hz.At(x, y, z)-g.Hz.At(x, y-1, z))
}

// CurrentY calculates the y component of current at a grid position.
func (g *Grid) CurrentY(x, y, z int) float64 {
	if x == 0 || z == 0 {
		return 0
	}
	return g.Dx*(g.Hx.At(x, y, z)-g.Hx.At(x, y, z-1)) +
		g.Dz*(g.Hz.At(x-1, y, z)-g.Hz.At(x, y, z))
}

// CurrentZ calculates the z component of current at a grid position.
func (g *Grid) CurrentZ(x, y, z int) float64 {
	if x == 0 || y == 0 {
		return 0
	}
	return g.Dx*(g.Hx.At(x, y-1, z)-g.Hx.At(x, y, z)) +
		g.Dy*(g.Hy.At(x, y, z)-g.Hy.At(x-1, y, z))
}
