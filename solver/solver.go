// Package solver runs built models: the main FDTD time loop, source
// injection, PML corrections and output capture, plus the task farm for
// multi-run models.
package solver

import (
	"fmt"
	"path/filepath"
	"runtime"
	"time"

	"github.com/charmbracelet/log"
	"github.com/emwave/emwave/grid"
	"github.com/emwave/emwave/luamodule"
	"github.com/emwave/emwave/model"
	"github.com/emwave/emwave/output"
	"github.com/emwave/emwave/pml"
	"github.com/schollz/progressbar/v3"
)

// RunOptions control one batch of model runs over a single input file.
type RunOptions struct {
	InputFile       string
	NumberModelRuns int
	GeometryOnly    bool
	WriteProcessed  bool
	SnapshotCodec   string

	// Extra script globals, injected by the optimiser.
	Extra map[string]float64
}

// Result describes one completed model run.
type Result struct {
	ModelRun   int
	Title      string
	OutputFile string
	Iterations int
	Dt         float64
	Elapsed    time.Duration
}

// RunModel builds and solves one model run: processes the input file,
// builds the grid and PML, then runs the main FDTD loop.
func RunModel(opts RunOptions, modelRun int) (*Result, error) {
	ns := &luamodule.Namespace{
		NumberModelRuns: opts.NumberModelRuns,
		CurrentModelRun: modelRun,
		Extra:           opts.Extra,
	}

	g, lines, err := model.Build(opts.InputFile, ns)
	if err != nil {
		return nil, err
	}
	if g.Messages {
		log.Infof("script globals available to input blocks: %v", ns.Globals())
	}

	if opts.WriteProcessed {
		path, err := model.WriteProcessed(g.InputFileName, modelRun, opts.NumberModelRuns, lines)
		if err != nil {
			return nil, err
		}
		log.Infof("processed input written to %s", path)
	}

	for _, view := range g.GeometryViews {
		path := filepath.Join(g.InputDirectory,
			output.RunFileName(view.FileName, modelRun, opts.NumberModelRuns, ".geom"))
		start := time.Now()
		if err := output.WriteGeometryView(g, view, path); err != nil {
			return nil, err
		}
		if g.Messages {
			log.Infof("geometry file written to %s in %s", path, time.Since(start).Round(time.Millisecond))
		}
	}

	result := &Result{
		ModelRun:   modelRun,
		Title:      g.Title,
		Iterations: g.Iterations,
		Dt:         g.Dt,
	}

	if opts.GeometryOnly {
		return result, nil
	}

	// Shift sources and receivers for multi-run models.
	offsetPositions(g, modelRun)

	result.OutputFile = output.RunFileName(g.InputFileName, modelRun, opts.NumberModelRuns, ".out")
	log.Infof("output to file: %s", result.OutputFile)

	start := time.Now()
	if err := solve(g, result.OutputFile, opts.SnapshotCodec, modelRun, opts.NumberModelRuns); err != nil {
		return nil, err
	}
	result.Elapsed = time.Since(start)

	if g.Messages {
		var mem runtime.MemStats
		runtime.ReadMemStats(&mem)
		log.Infof("solving took %s, heap in use %d MB",
			result.Elapsed.Round(time.Millisecond), mem.HeapInuse/(1<<20))
	}

	return result, nil
}

func offsetPositions(g *grid.Grid, modelRun int) {
	n := modelRun - 1
	if g.SrcStep != (grid.Step{}) {
		for _, h := range g.HertzianDipoles {
			h.X += n * g.SrcStep.X
			h.Y += n * g.SrcStep.Y
			h.Z += n * g.SrcStep.Z
		}
		for _, m := range g.MagneticDipoles {
			m.X += n * g.SrcStep.X
			m.Y += n * g.SrcStep.Y
			m.Z += n * g.SrcStep.Z
		}
		for _, v := range g.VoltageSources {
			v.X += n * g.SrcStep.X
			v.Y += n * g.SrcStep.Y
			v.Z += n * g.SrcStep.Z
		}
	}
	if g.RxStep != (grid.Step{}) {
		for _, rx := range g.Rxs {
			rx.X += n * g.RxStep.X
			rx.Y += n * g.RxStep.Y
			rx.Z += n * g.RxStep.Z
		}
	}
}

// solve runs the main FDTD calculation loop.
func solve(g *grid.Grid, outputFile, snapshotCodec string, modelRun, totalRuns int) error {
	slabs := pml.Build(g)
	poles := g.MaxPoles()

	f := output.Create(outputFile, g)

	var bar *progressbar.ProgressBar
	if g.Messages {
		bar = progressbar.Default(int64(g.Iterations), fmt.Sprintf("solving run %d of %d", modelRun, totalRuns))
	}

	var stepStart time.Time
	absTime := 0.0

	for timestep := 0; timestep < g.Iterations; timestep++ {
		if timestep == 0 {
			stepStart = time.Now()
		}

		f.WriteIteration(g)

		for _, snap := range g.Snapshots {
			if snap.Time != timestep+1 {
				continue
			}
			path := filepath.Join(g.InputDirectory,
				output.RunFileName(snap.FileName, modelRun, totalRuns, ".snap"))
			if err := output.WriteSnapshot(g, snap, path, snapshotCodec); err != nil {
				return err
			}
			if g.Messages {
				log.Infof("snapshot written to %s", path)
			}
		}

		// Electric field update. Dispersive materials need a two-phase
		// update: phase A requires the present field values, phase B the
		// fully corrected ones.
		if poles > 0 {
			updateElectricDispersiveA(g, poles)
		} else {
			updateElectric(g)
		}
		pml.UpdateElectric(g, slabs)

		if err := injectVoltageSources(g, absTime); err != nil {
			return err
		}
		if err := injectHertzianDipoles(g, absTime); err != nil {
			return err
		}

		if poles > 0 {
			updateElectricDispersiveB(g, poles)
		}

		absTime += 0.5 * g.Dt

		updateMagnetic(g)
		pml.UpdateMagnetic(g, slabs)

		if err := injectMagneticDipoles(g, absTime); err != nil {
			return err
		}

		absTime += 0.5 * g.Dt

		if bar != nil {
			bar.Add(1)
		}
		// Estimate the overall runtime from the first two iterations.
		if timestep == 1 && g.Messages {
			estimate := time.Duration(int64(time.Since(stepStart)) / 2 * int64(g.Iterations))
			log.Infof("estimated runtime: %s", estimate.Round(time.Second))
		}
	}

	if err := f.Close(); err != nil {
		return err
	}
	return nil
}
