package model

import (
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/emwave/emwave/grid"
	"github.com/emwave/emwave/luamodule"
	"github.com/emwave/emwave/material"
	"github.com/emwave/emwave/source"
)

// Build processes an input file into a fully built grid, ready for solving:
// script blocks expanded, commands validated and applied, cell edges built,
// update coefficient tables filled. The processed command lines are returned
// alongside so callers can write them out.
func Build(inputFile string, ns *luamodule.Namespace) (*grid.Grid, []string, error) {
	abs, err := filepath.Abs(inputFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to resolve input file path %s: %s", inputFile, err)
	}
	ns.InputDirectory = filepath.Dir(abs)

	lines, err := ProcessInputFile(abs, ns)
	if err != nil {
		return nil, nil, err
	}

	single, multi, geometry, err := CheckCmdNames(lines)
	if err != nil {
		return nil, nil, err
	}

	g := grid.New()
	g.InputFileName = abs
	g.InputDirectory = ns.InputDirectory

	// Builtin materials: a perfect conductor and free space, in the slots
	// the geometry arrays are initialised with.
	pec := material.New(0, "pec", 1, 0, 1, 0)
	pec.PEC = true
	pec.Average = false
	freeSpace := material.New(1, "free_space", 1, 0, 1, 0)
	g.Materials = append(g.Materials, pec, freeSpace)

	if err := ProcessSingleCmds(single, g); err != nil {
		return nil, nil, err
	}
	if err := ProcessMultiCmds(multi, g); err != nil {
		return nil, nil, err
	}

	g.InitialiseGeometryArrays()
	if err := ProcessGeometryCmds(geometry, g); err != nil {
		return nil, nil, err
	}
	BuildCellEdges(g)

	g.InitialiseFieldArrays()

	splitVoltageSourceMaterials(g)

	for _, m := range g.Materials {
		m.CalculateUpdateCoeffsE(g.Dt, g.Dx, g.Dy, g.Dz)
		m.CalculateUpdateCoeffsH(g.Dt, g.Dx, g.Dy, g.Dz)
	}
	g.InitialiseUpdateCoeffArrays()
	if g.MaxPoles() > 0 {
		g.InitialiseDispersiveArrays()
	}

	if g.Messages {
		log.Info("materials:")
		for _, m := range g.Materials {
			log.Infof("  %3d %s", m.NumID, m)
		}
	}

	if resolution, ok := g.DispersionCheck(); ok {
		if g.Dx > resolution || g.Dy > resolution || g.Dz > resolution {
			log.Warnf("potential numerical dispersion: the smallest wavelength needs a spatial step of %.3e m or finer", resolution)
		}
	}

	return g, lines, nil
}

// splitVoltageSourceMaterials gives every resistive voltage source its own
// material at the source edge, with the source conductivity added to the
// underlying parameters and smoothing disabled.
func splitVoltageSourceMaterials(g *grid.Grid) {
	for _, vs := range g.VoltageSources {
		if vs.Resistance == 0 {
			continue
		}

		var comp int
		var extraSe float64
		switch vs.Polarisation {
		case source.PolX:
			comp = grid.CompEx
			extraSe = g.Dx / (vs.Resistance * g.Dy * g.Dz)
		case source.PolY:
			comp = grid.CompEy
			extraSe = g.Dy / (vs.Resistance * g.Dx * g.Dz)
		case source.PolZ:
			comp = grid.CompEz
			extraSe = g.Dz / (vs.Resistance * g.Dx * g.Dy)
		}

		base := g.Materials[g.ID.At(comp, vs.X, vs.Y, vs.Z)]
		derived := material.New(len(g.Materials),
			fmt.Sprintf("%s|VoltageSource_%g", base.ID, vs.Resistance),
			base.Er, base.Se+extraSe, base.Mr, base.Sm)
		derived.Average = false
		derived.DeltaEr = append([]float64(nil), base.DeltaEr...)
		derived.Tau = append([]float64(nil), base.Tau...)

		g.Materials = append(g.Materials, derived)
		g.ID.Set(comp, vs.X, vs.Y, vs.Z, uint32(derived.NumID))
	}
}
