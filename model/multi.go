package model

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/emwave/emwave/common"
	"github.com/emwave/emwave/grid"
	"github.com/emwave/emwave/material"
	"github.com/emwave/emwave/source"
	"github.com/emwave/emwave/waveform"
)

// ProcessMultiCmds applies every multi-use command to the grid: materials
// and their dispersion, waveforms, sources, receivers, snapshot and geometry
// view requests.
func ProcessMultiCmds(multi []Cmd, g *grid.Grid) error {
	for _, cmd := range multi {
		var err error
		switch cmd.Name {
		case "material":
			err = processMaterial(cmd, g)
		case "add_dispersion_debye":
			err = processDispersionDebye(cmd, g)
		case "waveform":
			err = processWaveform(cmd, g)
		case "excitation_file":
			err = processExcitationFile(cmd, g)
		case "hertzian_dipole", "magnetic_dipole":
			err = processDipole(cmd, g)
		case "voltage_source":
			err = processVoltageSource(cmd, g)
		case "rx":
			err = processRx(cmd, g)
		case "snapshot":
			err = processSnapshot(cmd, g)
		case "geometry_view":
			err = processGeometryView(cmd, g)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func processMaterial(cmd Cmd, g *grid.Grid) error {
	fields := cmd.Fields()
	if len(fields) != 5 {
		return cmd.errorf("requires er, se, mr, sm and an ID, got %d parameters", len(fields))
	}

	id := fields[4]
	if _, err := g.MaterialByID(id); err == nil {
		return cmd.errorf("material %s already exists", id)
	}

	values := make([]float64, 4)
	for i := 0; i < 4; i++ {
		v, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return cmd.errorf("invalid number %q", fields[i])
		}
		values[i] = v
	}
	if values[0] < 1 || values[2] < 1 {
		return cmd.errorf("relative permittivity and permeability must be at least one")
	}
	if values[1] < 0 || values[3] < 0 {
		return cmd.errorf("conductivity and magnetic loss cannot be negative")
	}

	m := material.New(len(g.Materials), id, values[0], values[1], values[2], values[3])
	g.Materials = append(g.Materials, m)
	return nil
}

func processDispersionDebye(cmd Cmd, g *grid.Grid) error {
	fields := cmd.Fields()
	if len(fields) < 4 {
		return cmd.errorf("requires a pole count, pole parameters and a material ID")
	}

	poles, err := strconv.Atoi(fields[0])
	if err != nil || poles < 1 {
		return cmd.errorf("invalid pole count %q", fields[0])
	}
	if len(fields) != 2+2*poles {
		return cmd.errorf("requires %d parameters for %d pole(s), got %d", 2+2*poles, poles, len(fields))
	}

	m, err := g.MaterialByID(fields[len(fields)-1])
	if err != nil {
		return cmd.errorf("%s", err)
	}

	for p := 0; p < poles; p++ {
		deltaer, err1 := strconv.ParseFloat(fields[1+2*p], 64)
		tau, err2 := strconv.ParseFloat(fields[2+2*p], 64)
		if err1 != nil || err2 != nil {
			return cmd.errorf("invalid pole parameters %q %q", fields[1+2*p], fields[2+2*p])
		}
		if tau <= 0 {
			return cmd.errorf("relaxation time must be positive")
		}
		m.AddDebyePole(deltaer, tau)
	}
	return nil
}

func processWaveform(cmd Cmd, g *grid.Grid) error {
	fields := cmd.Fields()
	if len(fields) != 4 {
		return cmd.errorf("requires a type, amplitude, frequency and an ID, got %d parameters", len(fields))
	}

	wtype := fields[0]
	if !waveform.IsKnownType(wtype) || wtype == waveform.TypeUser {
		return cmd.errorf("unknown waveform type %q", wtype)
	}

	amp, err1 := strconv.ParseFloat(fields[1], 64)
	freq, err2 := strconv.ParseFloat(fields[2], 64)
	if err1 != nil || err2 != nil {
		return cmd.errorf("invalid amplitude or frequency")
	}
	if freq <= 0 && wtype != waveform.TypeImpulse && wtype != waveform.TypeZero {
		return cmd.errorf("frequency must be positive")
	}

	id := fields[3]
	if _, err := g.WaveformByID(id); err == nil {
		return cmd.errorf("waveform %s already exists", id)
	}

	g.Waveforms = append(g.Waveforms, &waveform.Waveform{
		ID:   id,
		Type: wtype,
		Amp:  amp,
		Freq: freq,
	})
	return nil
}

// processExcitationFile loads a user-defined waveform from a whitespace
// separated sample file, one value per timestep.
func processExcitationFile(cmd Cmd, g *grid.Grid) error {
	fields := cmd.Fields()
	if len(fields) != 2 {
		return cmd.errorf("requires a file path and an ID, got %d parameters", len(fields))
	}

	path := common.ResolveRelativePath(fields[0], g.InputDirectory)
	in, err := os.Open(path)
	if err != nil {
		return cmd.errorf("failed to open excitation file: %s", err)
	}
	defer in.Close()

	var values []float64
	scanner := bufio.NewScanner(in)
	scanner.Split(bufio.ScanWords)
	for scanner.Scan() {
		v, err := strconv.ParseFloat(scanner.Text(), 64)
		if err != nil {
			return cmd.errorf("invalid sample %q in %s", scanner.Text(), path)
		}
		values = append(values, v)
	}
	if err := scanner.Err(); err != nil {
		return cmd.errorf("failed to read excitation file: %s", err)
	}
	if len(values) == 0 {
		return cmd.errorf("excitation file %s contains no samples", path)
	}

	id := fields[1]
	if _, err := g.WaveformByID(id); err == nil {
		return cmd.errorf("waveform %s already exists", id)
	}

	g.Waveforms = append(g.Waveforms, &waveform.Waveform{
		ID:         id,
		Type:       waveform.TypeUser,
		Amp:        1,
		UserValues: values,
	})
	return nil
}

func processDipole(cmd Cmd, g *grid.Grid) error {
	fields := cmd.Fields()
	if len(fields) != 5 {
		return cmd.errorf("requires a polarisation, position and waveform ID, got %d parameters", len(fields))
	}

	pol, err := source.ParsePolarisation(fields[0])
	if err != nil {
		return cmd.errorf("%s", err)
	}

	x, y, z, err := cmdPosition(cmd, g, fields[1:4])
	if err != nil {
		return err
	}

	if cmd.Name == "hertzian_dipole" {
		err = checkSourcePosition(cmd, g, pol, x, y, z)
	} else {
		err = checkMagneticPosition(cmd, g, pol, x, y, z)
	}
	if err != nil {
		return err
	}
	if _, err := g.WaveformByID(fields[4]); err != nil {
		return cmd.errorf("%s", err)
	}

	switch cmd.Name {
	case "hertzian_dipole":
		g.HertzianDipoles = append(g.HertzianDipoles, &source.HertzianDipole{
			Polarisation: pol,
			X:            x,
			Y:            y,
			Z:            z,
			WaveformID:   fields[4],
		})
	case "magnetic_dipole":
		g.MagneticDipoles = append(g.MagneticDipoles, &source.MagneticDipole{
			Polarisation: pol,
			X:            x,
			Y:            y,
			Z:            z,
			WaveformID:   fields[4],
		})
	}
	return nil
}

func processVoltageSource(cmd Cmd, g *grid.Grid) error {
	fields := cmd.Fields()
	if len(fields) != 6 {
		return cmd.errorf("requires a polarisation, position, resistance and waveform ID, got %d parameters", len(fields))
	}

	pol, err := source.ParsePolarisation(fields[0])
	if err != nil {
		return cmd.errorf("%s", err)
	}

	x, y, z, err := cmdPosition(cmd, g, fields[1:4])
	if err != nil {
		return err
	}

	if err := checkSourcePosition(cmd, g, pol, x, y, z); err != nil {
		return err
	}

	resistance, err := strconv.ParseFloat(fields[4], 64)
	if err != nil || resistance < 0 {
		return cmd.errorf("invalid resistance %q", fields[4])
	}

	if _, err := g.WaveformByID(fields[5]); err != nil {
		return cmd.errorf("%s", err)
	}

	g.VoltageSources = append(g.VoltageSources, &source.VoltageSource{
		Polarisation: pol,
		X:            x,
		Y:            y,
		Z:            z,
		Resistance:   resistance,
		WaveformID:   fields[5],
	})
	return nil
}

func processRx(cmd Cmd, g *grid.Grid) error {
	fields := cmd.Fields()
	if len(fields) != 3 && len(fields) != 4 {
		return cmd.errorf("requires a position and an optional ID, got %d parameters", len(fields))
	}

	x, y, z, err := cmdPosition(cmd, g, fields[:3])
	if err != nil {
		return err
	}

	id := fmt.Sprintf("rx%d", len(g.Rxs)+1)
	if len(fields) == 4 {
		id = fields[3]
	}

	g.Rxs = append(g.Rxs, &source.Rx{ID: id, X: x, Y: y, Z: z})
	return nil
}

func processSnapshot(cmd Cmd, g *grid.Grid) error {
	fields := cmd.Fields()
	if len(fields) != 11 {
		return cmd.errorf("requires two corners, sampling steps, a time and a file name, got %d parameters", len(fields))
	}

	values := make([]float64, 10)
	for i := 0; i < 10; i++ {
		v, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return cmd.errorf("invalid number %q", fields[i])
		}
		values[i] = v
	}

	s := &grid.Snapshot{
		XS: g.DiscretiseX(values[0]), YS: g.DiscretiseY(values[1]), ZS: g.DiscretiseZ(values[2]),
		XF: g.DiscretiseX(values[3]), YF: g.DiscretiseY(values[4]), ZF: g.DiscretiseZ(values[5]),
		DX: g.DiscretiseX(values[6]), DY: g.DiscretiseY(values[7]), DZ: g.DiscretiseZ(values[8]),
		FileName: fields[10],
	}

	// The time parameter is either a duration in seconds or a timestep.
	if strings.ContainsAny(fields[9], ".eE") {
		s.Time = grid.RoundValue(values[9]/g.Dt) + 1
	} else {
		s.Time = int(values[9])
	}

	if err := checkVolume(cmd, g, s.XS, s.YS, s.ZS, s.XF, s.YF, s.ZF); err != nil {
		return err
	}
	if s.DX < 1 || s.DY < 1 || s.DZ < 1 {
		return cmd.errorf("sampling steps must be at least one cell")
	}
	if s.Time < 1 || s.Time > g.Iterations {
		return cmd.errorf("snapshot time is outside the time window")
	}

	g.Snapshots = append(g.Snapshots, s)
	return nil
}

func processGeometryView(cmd Cmd, g *grid.Grid) error {
	fields := cmd.Fields()
	if len(fields) != 10 {
		return cmd.errorf("requires two corners, sampling steps and a file name, got %d parameters", len(fields))
	}

	values := make([]float64, 9)
	for i := 0; i < 9; i++ {
		v, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return cmd.errorf("invalid number %q", fields[i])
		}
		values[i] = v
	}

	v := &grid.GeometryView{
		XS: g.DiscretiseX(values[0]), YS: g.DiscretiseY(values[1]), ZS: g.DiscretiseZ(values[2]),
		XF: g.DiscretiseX(values[3]), YF: g.DiscretiseY(values[4]), ZF: g.DiscretiseZ(values[5]),
		DX: g.DiscretiseX(values[6]), DY: g.DiscretiseY(values[7]), DZ: g.DiscretiseZ(values[8]),
		FileName: fields[9],
	}

	if err := checkVolume(cmd, g, v.XS, v.YS, v.ZS, v.XF, v.YF, v.ZF); err != nil {
		return err
	}
	if v.DX < 1 || v.DY < 1 || v.DZ < 1 {
		return cmd.errorf("sampling steps must be at least one cell")
	}

	g.GeometryViews = append(g.GeometryViews, v)
	return nil
}

// checkSourcePosition rejects source positions whose polarised component
// falls off the staggered field array at the far domain boundary.
func checkSourcePosition(cmd Cmd, g *grid.Grid, pol source.Polarisation, x, y, z int) error {
	switch {
	case pol == source.PolX && x >= g.Nx,
		pol == source.PolY && y >= g.Ny,
		pol == source.PolZ && z >= g.Nz:
		return cmd.errorf("source position lies on the far domain boundary along its polarisation")
	}
	return nil
}

// checkMagneticPosition is the magnetic counterpart: the face components
// are staggered on the axes normal to the polarisation.
func checkMagneticPosition(cmd Cmd, g *grid.Grid, pol source.Polarisation, x, y, z int) error {
	switch {
	case pol == source.PolX && (y >= g.Ny || z >= g.Nz),
		pol == source.PolY && (x >= g.Nx || z >= g.Nz),
		pol == source.PolZ && (x >= g.Nx || y >= g.Ny):
		return cmd.errorf("source position lies on the far domain boundary")
	}
	return nil
}

// cmdPosition parses three coordinate fields in metres and discretises them
// onto the grid.
func cmdPosition(cmd Cmd, g *grid.Grid, fields []string) (int, int, int, error) {
	values := make([]float64, 3)
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return 0, 0, 0, cmd.errorf("invalid coordinate %q", f)
		}
		values[i] = v
	}

	x := g.DiscretiseX(values[0])
	y := g.DiscretiseY(values[1])
	z := g.DiscretiseZ(values[2])
	if err := g.WithinBounds(x, y, z); err != nil {
		return 0, 0, 0, cmd.errorf("%s", err)
	}
	return x, y, z, nil
}

func checkVolume(cmd Cmd, g *grid.Grid, xs, ys, zs, xf, yf, zf int) error {
	if err := g.WithinBounds(xs, ys, zs); err != nil {
		return cmd.errorf("%s", err)
	}
	if err := g.WithinBounds(xf, yf, zf); err != nil {
		return cmd.errorf("%s", err)
	}
	if xf < xs || yf < ys || zf < zs {
		return cmd.errorf("the second corner must not precede the first")
	}
	return nil
}
