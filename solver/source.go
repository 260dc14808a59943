package solver

import (
	"github.com/emwave/emwave/grid"
	"github.com/emwave/emwave/source"
)

// injectVoltageSources drives the electric field at every voltage source
// edge. Resistive sources add current through their material's source
// coefficient; a zero resistance forces the field value directly.
func injectVoltageSources(g *grid.Grid, t float64) error {
	for _, vs := range g.VoltageSources {
		w, err := g.WaveformByID(vs.WaveformID)
		if err != nil {
			return err
		}
		value := w.Value(t, g.Dt)

		switch vs.Polarisation {
		case source.PolX:
			if vs.Resistance > 0 {
				row := g.UpdateCoeffsE[g.ID.At(grid.CompEx, vs.X, vs.Y, vs.Z)]
				g.Ex.Add(vs.X, vs.Y, vs.Z, -row[4]*value/(vs.Resistance*g.Dy*g.Dz))
			} else {
				g.Ex.Set(vs.X, vs.Y, vs.Z, -value/g.Dx)
			}
		case source.PolY:
			if vs.Resistance > 0 {
				row := g.UpdateCoeffsE[g.ID.At(grid.CompEy, vs.X, vs.Y, vs.Z)]
				g.Ey.Add(vs.X, vs.Y, vs.Z, -row[4]*value/(vs.Resistance*g.Dx*g.Dz))
			} else {
				g.Ey.Set(vs.X, vs.Y, vs.Z, -value/g.Dy)
			}
		case source.PolZ:
			if vs.Resistance > 0 {
				row := g.UpdateCoeffsE[g.ID.At(grid.CompEz, vs.X, vs.Y, vs.Z)]
				g.Ez.Add(vs.X, vs.Y, vs.Z, -row[4]*value/(vs.Resistance*g.Dx*g.Dy))
			} else {
				g.Ez.Set(vs.X, vs.Y, vs.Z, -value/g.Dz)
			}
		}
	}
	return nil
}

// injectHertzianDipoles adds the dipole current to the electric field.
// Hertzian dipoles update last so they win over coincident sources.
func injectHertzianDipoles(g *grid.Grid, t float64) error {
	cellVolume := g.Dx * g.Dy * g.Dz

	for _, h := range g.HertzianDipoles {
		w, err := g.WaveformByID(h.WaveformID)
		if err != nil {
			return err
		}
		value := w.Value(t, g.Dt)

		switch h.Polarisation {
		case source.PolX:
			row := g.UpdateCoeffsE[g.ID.At(grid.CompEx, h.X, h.Y, h.Z)]
			g.Ex.Add(h.X, h.Y, h.Z, -row[4]*value*g.Dx/cellVolume)
		case source.PolY:
			row := g.UpdateCoeffsE[g.ID.At(grid.CompEy, h.X, h.Y, h.Z)]
			g.Ey.Add(h.X, h.Y, h.Z, -row[4]*value*g.Dy/cellVolume)
		case source.PolZ:
			row := g.UpdateCoeffsE[g.ID.At(grid.CompEz, h.X, h.Y, h.Z)]
			g.Ez.Add(h.X, h.Y, h.Z, -row[4]*value*g.Dz/cellVolume)
		}
	}
	return nil
}

// injectMagneticDipoles adds the dipole current to the magnetic field.
func injectMagneticDipoles(g *grid.Grid, t float64) error {
	cellVolume := g.Dx * g.Dy * g.Dz

	for _, m := range g.MagneticDipoles {
		w, err := g.WaveformByID(m.WaveformID)
		if err != nil {
			return err
		}
		value := w.Value(t, g.Dt)

		switch m.Polarisation {
		case source.PolX:
			row := g.UpdateCoeffsH[g.ID.At(grid.CompHx, m.X, m.Y, m.Z)]
			g.Hx.Add(m.X, m.Y, m.Z, -row[4]*value/cellVolume)
		case source.PolY:
			row := g.UpdateCoeffsH[g.ID.At(grid.CompHy, m.X, m.Y, m.Z)]
			g.Hy.Add(m.X, m.Y, m.Z, -row[4]*value/cellVolume)
		case source.PolZ:
			row := g.UpdateCoeffsH[g.ID.At(grid.CompHz, m.X, m.Y, m.Z)]
			g.Hz.Add(m.X, m.Y, m.Z, -row[4]*value/cellVolume)
		}
	}
	return nil
}
