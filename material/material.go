// Package material models electromagnetic material properties and the FDTD
// update coefficients derived from them.
package material

import (
	"fmt"
	"math"

	"github.com/emwave/emwave/constants"
)

// Number of entries in an electric/magnetic update coefficient row:
// A, Bx, By, Bz, source term, dispersive accumulator term.
const CoeffsPerRow = 6

// Number of complex entries stored per Debye pole in the dispersive
// coefficient table: decay factor, susceptibility difference, susceptibility.
const CoeffsPerPole = 3

// Material holds the properties of a single material and, once
// CalculateUpdateCoeffs* has run, its FDTD update coefficients.
type Material struct {
	// NumID is the index of this material in the grid material list, used
	// by the ID lookup arrays.
	NumID int
	ID    string

	Er float64 // relative permittivity
	Se float64 // electric conductivity (S/m)
	Mr float64 // relative permeability
	Sm float64 // magnetic loss (Ohms/m)

	// Average allows dielectric smoothing at interfaces with this material.
	Average bool

	// PEC marks a perfect electric conductor, its edges never carry field.
	PEC bool

	// Debye pole parameters, one entry per pole.
	DeltaEr []float64
	Tau     []float64

	// Electric field update coefficients.
	CA, CBx, CBy, CBz, Srce, CD float64
	// Magnetic field update coefficients.
	DA, DBx, DBy, DBz, Srcm float64

	// Per-pole recursive convolution terms: exp(-dt/tau), the incremental
	// susceptibility and the zero-lag susceptibility.
	Ept, DChi0, Chi0 []complex128
}

// New returns a material with the given properties. Smoothing is enabled by
// default, matching free space behaviour.
func New(numID int, id string, er, se, mr, sm float64) *Material {
	return &Material{
		NumID:   numID,
		ID:      id,
		Er:      er,
		Se:      se,
		Mr:      mr,
		Sm:      sm,
		Average: true,
	}
}

// Poles reports the number of Debye poles attached to the material.
func (m *Material) Poles() int {
	return len(m.DeltaEr)
}

// AddDebyePole attaches one Debye relaxation pole.
func (m *Material) AddDebyePole(deltaer, tau float64) {
	m.DeltaEr = append(m.DeltaEr, deltaer)
	m.Tau = append(m.Tau, tau)
}

// CalculateUpdateCoeffsE derives the electric field update coefficients.
// Dispersive materials use the recursive convolution formulation for Debye
// media: the zero-lag susceptibility of every pole widens the effective
// permittivity, and the per-pole decay terms feed the accumulator arrays.
func (m *Material) CalculateUpdateCoeffsE(dt, dx, dy, dz float64) {
	if m.PEC {
		m.CA, m.CBx, m.CBy, m.CBz, m.Srce, m.CD = 0, 0, 0, 0, 0, 0
		return
	}

	e0 := constants.E0

	chi0Sum := 0.0
	if m.Poles() > 0 {
		m.Ept = make([]complex128, m.Poles())
		m.DChi0 = make([]complex128, m.Poles())
		m.Chi0 = make([]complex128, m.Poles())
		for p := 0; p < m.Poles(); p++ {
			ept := math.Exp(-dt / m.Tau[p])
			chi0 := m.DeltaEr[p] * (1 - ept)
			m.Ept[p] = complex(ept, 0)
			m.Chi0[p] = complex(chi0, 0)
			m.DChi0[p] = complex(chi0*(1-ept), 0)
			chi0Sum += chi0
		}
	}

	loss := m.Se * dt / (2 * e0)
	denom := m.Er + chi0Sum + loss

	m.CA = (m.Er - loss) / denom
	m.CBx = (dt / (e0 * dx)) / denom
	m.CBy = (dt / (e0 * dy)) / denom
	m.CBz = (dt / (e0 * dz)) / denom
	m.Srce = (dt / e0) / denom
	if m.Poles() > 0 {
		m.CD = 1 / denom
	}
}

// CalculateUpdateCoeffsH derives the magnetic field update coefficients.
func (m *Material) CalculateUpdateCoeffsH(dt, dx, dy, dz float64) {
	mu0 := constants.Mu0

	loss := m.Sm * dt / (2 * mu0 * m.Mr)
	denom := 1 + loss

	m.DA = (1 - loss) / denom
	m.DBx = (dt / (mu0 * m.Mr * dx)) / denom
	m.DBy = (dt / (mu0 * m.Mr * dy)) / denom
	m.DBz = (dt / (mu0 * m.Mr * dz)) / denom
	m.Srcm = (dt / (mu0 * m.Mr)) / denom
}

// ERow returns the electric update coefficient row for the grid table.
func (m *Material) ERow() [CoeffsPerRow]float64 {
	return [CoeffsPerRow]float64{m.CA, m.CBx, m.CBy, m.CBz, m.Srce, m.CD}
}

// HRow returns the magnetic update coefficient row for the grid table.
func (m *Material) HRow() [CoeffsPerRow]float64 {
	return [CoeffsPerRow]float64{m.DA, m.DBx, m.DBy, m.DBz, m.Srcm, 0}
}

func (m *Material) String() string {
	s := fmt.Sprintf("%s: epsr=%.2f, sig=%.3e S/m; mur=%.2f, sig*=%.3e Ohms/m", m.ID, m.Er, m.Se, m.Mr, m.Sm)
	if m.Poles() > 0 {
		s += fmt.Sprintf("; %d Debye pole(s)", m.Poles())
	}
	if m.Average {
		s += "; dielectric smoothing permitted"
	} else {
		s += "; dielectric smoothing not permitted"
	}
	return s
}
