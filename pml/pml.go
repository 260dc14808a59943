// Package pml implements convolutional PML absorbing boundaries on the six
// faces of the grid. The standard field updates run everywhere; the PML adds
// a correction to the tangential components inside each slab from recursive
// accumulators of the normal-direction derivatives.
package pml

import (
	"math"

	"github.com/emwave/emwave/constants"
	"github.com/emwave/emwave/grid"
)

// Polynomial grading order of the conductivity profile.
const gradingOrder = 4.0

// Complex frequency shift applied through the alpha parameter.
const alphaMax = 0.05

// Slab is one PML region attached to a grid face.
type Slab struct {
	Axis      byte // 'x', 'y' or 'z'
	Lo        bool
	Thickness int

	// Recursion coefficients per layer, at integer (E) and half (H) node
	// positions.
	bE, cE []float64
	bH, cH []float64

	// Accumulators for the two tangential E and H components, layer-major.
	psiE1, psiE2 *grid.Array3
	psiH1, psiH2 *grid.Array3
}

// Build creates PML slabs for all six grid faces. A zero thickness disables
// the PML entirely.
func Build(g *grid.Grid) []*Slab {
	d := g.PMLThickness
	if d <= 0 {
		return nil
	}

	slabs := make([]*Slab, 0, 6)
	for _, axis := range []byte{'x', 'y', 'z'} {
		for _, lo := range []bool{true, false} {
			slabs = append(slabs, newSlab(g, axis, lo, d))
		}
	}
	return slabs
}

func newSlab(g *grid.Grid, axis byte, lo bool, d int) *Slab {
	s := &Slab{
		Axis:      axis,
		Lo:        lo,
		Thickness: d,
	}

	var step float64
	switch axis {
	case 'x':
		step = g.Dx
		s.psiE1 = grid.NewArray3(d, g.Ny, g.Nz+1)   // Ey correction
		s.psiE2 = grid.NewArray3(d, g.Ny+1, g.Nz)   // Ez correction
		s.psiH1 = grid.NewArray3(d, g.Ny+1, g.Nz)   // Hy correction
		s.psiH2 = grid.NewArray3(d, g.Ny, g.Nz+1)   // Hz correction
	case 'y':
		step = g.Dy
		s.psiE1 = grid.NewArray3(d, g.Nx, g.Nz+1)   // Ex correction
		s.psiE2 = grid.NewArray3(d, g.Nx+1, g.Nz)   // Ez correction
		s.psiH1 = grid.NewArray3(d, g.Nx+1, g.Nz)   // Hx correction
		s.psiH2 = grid.NewArray3(d, g.Nx, g.Nz+1)   // Hz correction
	case 'z':
		step = g.Dz
		s.psiE1 = grid.NewArray3(d, g.Nx, g.Ny+1)   // Ex correction
		s.psiE2 = grid.NewArray3(d, g.Nx+1, g.Ny)   // Ey correction
		s.psiH1 = grid.NewArray3(d, g.Nx+1, g.Ny)   // Hx correction
		s.psiH2 = grid.NewArray3(d, g.Nx, g.Ny+1)   // Hy correction
	}

	// Optimal peak conductivity for the grading order and cell size.
	sigmaMax := 0.8 * (gradingOrder + 1) / (constants.Z0 * step)

	s.bE = make([]float64, d)
	s.cE = make([]float64, d)
	s.bH = make([]float64, d)
	s.cH = make([]float64, d)
	for l := 0; l < d; l++ {
		fE := (float64(d) - float64(l)) / float64(d)
		fH := (float64(d) - float64(l) - 0.5) / float64(d)
		s.bE[l], s.cE[l] = recursionCoeffs(sigmaMax, fE, g.Dt)
		s.bH[l], s.cH[l] = recursionCoeffs(sigmaMax, fH, g.Dt)
	}

	return s
}

// recursionCoeffs computes the CPML recursion pair for a normalised depth f
// into the slab (1 at the outer wall, 0 at the inner edge).
func recursionCoeffs(sigmaMax, f, dt float64) (b, c float64) {
	if f < 0 {
		f = 0
	}
	sigma := sigmaMax * math.Pow(f, gradingOrder)
	alpha := alphaMax * (1 - f)

	b = math.Exp(-(sigma + alpha) * dt / constants.E0)
	if sigma+alpha > 0 {
		c = sigma * (b - 1) / (sigma + alpha)
	}
	return b, c
}

// layerToE maps a layer index to the E-node grid index along the slab axis.
// Layer 0 sits against the outer wall.
func (s *Slab) layerToE(l, n int) int {
	if s.Lo {
		return l + 1
	}
	return n - 1 - l
}

// layerToH maps a layer index to the H-node grid index along the slab axis.
func (s *Slab) layerToH(l, n int) int {
	if s.Lo {
		return l
	}
	return n - 1 - l
}

// UpdateElectric applies the PML correction to the electric field of every
// slab. Must run after the standard electric update.
func UpdateElectric(g *grid.Grid, slabs []*Slab) {
	for _, s := range slabs {
		s.updateElectric(g)
	}
}

// UpdateMagnetic applies the PML correction to the magnetic field of every
// slab. Must run after the standard magnetic update.
func UpdateMagnetic(g *grid.Grid, slabs []*Slab) {
	for _, s := range slabs {
		s.updateMagnetic(g)
	}
}

func (s *Slab) updateElectric(g *grid.Grid) {
	switch s.Axis {
	case 'x':
		for l := 0; l < s.Thickness; l++ {
			i := s.layerToE(l, g.Nx)
			if i < 1 || i > g.Nx-1 {
				continue
			}
			b, c := s.bE[l], s.cE[l]
			// Ey correction from dHz/dx.
			for j := 0; j < g.Ny; j++ {
				for k := 1; k < g.Nz; k++ {
					dh := (g.Hz.At(i, j, k) - g.Hz.At(i-1, j, k)) / g.Dx
					psi := b*s.psiE1.At(l, j, k) + c*dh
					s.psiE1.Set(l, j, k, psi)
					row := g.UpdateCoeffsE[g.ID.At(grid.CompEy, i, j, k)]
					g.Ey.Add(i, j, k, -row[1]*g.Dx*psi)
				}
			}
			// Ez correction from dHy/dx.
			for j := 1; j < g.Ny; j++ {
				for k := 0; k < g.Nz; k++ {
					dh := (g.Hy.At(i, j, k) - g.Hy.At(i-1, j, k)) / g.Dx
					psi := b*s.psiE2.At(l, j, k) + c*dh
					s.psiE2.Set(l, j, k, psi)
					row := g.UpdateCoeffsE[g.ID.At(grid.CompEz, i, j, k)]
					g.Ez.Add(i, j, k, row[1]*g.Dx*psi)
				}
			}
		}
	case 'y':
		for l := 0; l < s.Thickness; l++ {
			j := s.layerToE(l, g.Ny)
			if j < 1 || j > g.Ny-1 {
				continue
			}
			b, c := s.bE[l], s.cE[l]
			// Ex correction from dHz/dy.
			for i := 0; i < g.Nx; i++ {
				for k := 1; k < g.Nz; k++ {
					dh := (g.Hz.At(i, j, k) - g.Hz.At(i, j-1, k)) / g.Dy
					psi := b*s.psiE1.At(l, i, k) + c*dh
					s.psiE1.Set(l, i, k, psi)
					row := g.UpdateCoeffsE[g.ID.At(grid.CompEx, i, j, k)]
					g.Ex.Add(i, j, k, row[2]*g.Dy*psi)
				}
			}
			// Ez correction from dHx/dy.
			for i := 1; i < g.Nx; i++ {
				for k := 0; k < g.Nz; k++ {
					dh := (g.Hx.At(i, j, k) - g.Hx.At(i, j-1, k)) / g.Dy
					psi := b*s.psiE2.At(l, i, k) + c*dh
					s.psiE2.Set(l, i, k, psi)
					row := g.UpdateCoeffsE[g.ID.At(grid.CompEz, i, j, k)]
					g.Ez.Add(i, j, k, -row[2]*g.Dy*psi)
				}
			}
		}
	case 'z':
		for l := 0; l < s.Thickness; l++ {
			k := s.layerToE(l, g.Nz)
			if k < 1 || k > g.Nz-1 {
				continue
			}
			b, c := s.bE[l], s.cE[l]
			// Ex correction from dHy/dz.
			for i := 0; i < g.Nx; i++ {
				for j := 1; j < g.Ny; j++ {
					dh := (g.Hy.At(i, j, k) - g.Hy.At(i, j, k-1)) / g.Dz
					psi := b*s.psiE1.At(l, i, j) + c*dh
					s.psiE1.Set(l, i, j, psi)
					row := g.UpdateCoeffsE[g.ID.At(grid.CompEx, i, j, k)]
					g.Ex.Add(i, j, k, -row[3]*g.Dz*psi)
				}
			}
			// Ey correction from dHx/dz.
			for i := 1; i < g.Nx; i++ {
				for j := 0; j < g.Ny; j++ {
					dh := (g.Hx.At(i, j, k) - g.Hx.At(i, j, k-1)) / g.Dz
					psi := b*s.psiE2.At(l, i, j) + c*dh
					s.psiE2.Set(l, i, j, psi)
					row := g.UpdateCoeffsE[g.ID.At(grid.CompEy, i, j, k)]
					g.Ey.Add(i, j, k, row[3]*g.Dz*psi)
				}
			}
		}
	}
}

func (s *Slab) updateMagnetic(g *grid.Grid) {
	switch s.Axis {
	case 'x':
		for l := 0; l < s.Thickness; l++ {
			i := s.layerToH(l, g.Nx)
			if i < 0 || i > g.Nx-1 {
				continue
			}
			b, c := s.bH[l], s.cH[l]
			// Hy correction from dEz/dx.
			for j := 1; j < g.Ny; j++ {
				for k := 0; k < g.Nz; k++ {
					de := (g.Ez.At(i+1, j, k) - g.Ez.At(i, j, k)) / g.Dx
					psi := b*s.psiH1.At(l, j, k) + c*de
					s.psiH1.Set(l, j, k, psi)
					row := g.UpdateCoeffsH[g.ID.At(grid.CompHy, i, j, k)]
					g.Hy.Add(i, j, k, row[1]*g.Dx*psi)
				}
			}
			// Hz correction from dEy/dx.
			for j := 0; j < g.Ny; j++ {
				for k := 1; k < g.Nz; k++ {
					de := (g.Ey.At(i+1, j, k) - g.Ey.At(i, j, k)) / g.Dx
					psi := b*s.psiH2.At(l, j, k) + c*de
					s.psiH2.Set(l, j, k, psi)
					row := g.UpdateCoeffsH[g.ID.At(grid.CompHz, i, j, k)]
					g.Hz.Add(i, j, k, -row[1]*g.Dx*psi)
				}
			}
		}
	case 'y':
		for l := 0; l < s.Thickness; l++ {
			j := s.layerToH(l, g.Ny)
			if j < 0 || j > g.Ny-1 {
				continue
			}
			b, c := s.bH[l], s.cH[l]
			// Hx correction from dEz/dy.
			for i := 1; i < g.Nx; i++ {
				for k := 0; k < g.Nz; k++ {
					de := (g.Ez.At(i, j+1, k) - g.Ez.At(i, j, k)) / g.Dy
					psi := b*s.psiH1.At(l, i, k) + c*de
					s.psiH1.Set(l, i, k, psi)
					row := g.UpdateCoeffsH[g.ID.At(grid.CompHx, i, j, k)]
					g.Hx.Add(i, j, k, -row[2]*g.Dy*psi)
				}
			}
			// Hz correction from dEx/dy.
			for i := 0; i < g.Nx; i++ {
				for k := 1; k < g.Nz; k++ {
					de := (g.Ex.At(i, j+1, k) - g.Ex.At(i, j, k)) / g.Dy
					psi := b*s.psiH2.At(l, i, k) + c*de
					s.psiH2.Set(l, i, k, psi)
					row := g.UpdateCoeffsH[g.ID.At(grid.CompHz, i, j, k)]
					g.Hz.Add(i, j, k, row[2]*g.Dy*psi)
				}
			}
		}
	case 'z':
		for l := 0; l < s.Thickness; l++ {
			k := s.layerToH(l, g.Nz)
			if k < 0 || k > g.Nz-1 {
				continue
			}
			b, c := s.bH[l], s.cH[l]
			// Hx correction from dEy/dz.
			for i := 1; i < g.Nx; i++ {
				for j := 0; j < g.Ny; j++ {
					de := (g.Ey.At(i, j, k+1) - g.Ey.At(i, j, k)) / g.Dz
					psi := b*s.psiH1.At(l, i, j) + c*de
					s.psiH1.Set(l, i, j, psi)
					row := g.UpdateCoeffsH[g.ID.At(grid.CompHx, i, j, k)]
					g.Hx.Add(i, j, k, row[3]*g.Dz*psi)
				}
			}
			// Hy correction from dEx/dz.
			for i := 0; i < g.Nx; i++ {
				for j := 1; j < g.Ny; j++ {
					de := (g.Ex.At(i, j, k+1) - g.Ex.At(i, j, k)) / g.Dz
					psi := b*s.psiH2.At(l, i, j) + c*de
					s.psiH2.Set(l, i, j, psi)
					row := g.UpdateCoeffsH[g.ID.At(grid.CompHy, i, j, k)]
					g.Hy.Add(i, j, k, -row[3]*g.Dz*psi)
				}
			}
		}
	}
}
