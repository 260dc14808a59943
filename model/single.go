package model

import (
	"fmt"
	"math"
	"runtime"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/emwave/emwave/grid"
)

// ProcessSingleCmds applies the single-use commands to the grid. Processing
// order matters: the spatial step must be known before the domain can be
// discretised, and the timestep before the time window can be converted to
// iterations.
func ProcessSingleCmds(single map[string]Cmd, g *grid.Grid) error {
	if cmd, ok := single["messages"]; ok {
		switch cmd.Params {
		case "y":
			g.Messages = true
		case "n":
			g.Messages = false
		default:
			return cmd.errorf("requires y or n, got %q", cmd.Params)
		}
	}

	if cmd, ok := single["title"]; ok {
		g.Title = cmd.Params
		if g.Messages {
			log.Infof("model title: %s", g.Title)
		}
	}

	if cmd, ok := single["num_threads"]; ok {
		n, err := strconv.Atoi(cmd.Params)
		if err != nil || n < 1 {
			return cmd.errorf("requires a positive integer, got %q", cmd.Params)
		}
		g.NThreads = n
	}
	if g.NThreads == 0 {
		g.NThreads = runtime.NumCPU()
	}

	cmd := single["dx_dy_dz"]
	steps, err := cmdFloats(cmd, 3)
	if err != nil {
		return err
	}
	for _, v := range steps {
		if v <= 0 {
			return cmd.errorf("spatial steps must be positive")
		}
	}
	g.Dx, g.Dy, g.Dz = steps[0], steps[1], steps[2]

	cmd = single["domain"]
	size, err := cmdFloats(cmd, 3)
	if err != nil {
		return err
	}
	g.Nx = g.DiscretiseX(size[0])
	g.Ny = g.DiscretiseY(size[1])
	g.Nz = g.DiscretiseZ(size[2])
	if g.Nx < 1 || g.Ny < 1 || g.Nz < 1 {
		return cmd.errorf("domain must span at least one cell in every direction")
	}
	if g.Messages {
		log.Infof("domain: %g x %g x %g m (%d x %d x %d cells)", size[0], size[1], size[2], g.Nx, g.Ny, g.Nz)
	}

	stability := 1.0
	if cmd, ok := single["time_step_stability_factor"]; ok {
		stability, err = strconv.ParseFloat(cmd.Params, 64)
		if err != nil || stability <= 0 || stability > 1 {
			return cmd.errorf("requires a value between zero and one, got %q", cmd.Params)
		}
	}
	g.CalculateDt(stability)

	cmd = single["time_window"]
	if err := processTimeWindow(cmd, g); err != nil {
		return err
	}
	if g.Messages {
		log.Infof("time window: %.3e secs (%d iterations, dt %.3e secs)", g.TimeWindow, g.Iterations, g.Dt)
	}

	if cmd, ok := single["pml_cells"]; ok {
		n, err := strconv.Atoi(cmd.Params)
		if err != nil || n < 0 {
			return cmd.errorf("requires a non-negative integer, got %q", cmd.Params)
		}
		g.PMLThickness = n
	}
	if 2*g.PMLThickness >= g.Nx || 2*g.PMLThickness >= g.Ny || 2*g.PMLThickness >= g.Nz {
		return fmt.Errorf("PML thickness of %d cells leaves no working volume in the domain", g.PMLThickness)
	}

	if cmd, ok := single["src_steps"]; ok {
		step, err := cmdFloats(cmd, 3)
		if err != nil {
			return err
		}
		g.SrcStep = grid.Step{X: g.DiscretiseX(step[0]), Y: g.DiscretiseY(step[1]), Z: g.DiscretiseZ(step[2])}
	}
	if cmd, ok := single["rx_steps"]; ok {
		step, err := cmdFloats(cmd, 3)
		if err != nil {
			return err
		}
		g.RxStep = grid.Step{X: g.DiscretiseX(step[0]), Y: g.DiscretiseY(step[1]), Z: g.DiscretiseZ(step[2])}
	}

	return nil
}

// processTimeWindow accepts either a duration in seconds or a plain
// iteration count.
func processTimeWindow(cmd Cmd, g *grid.Grid) error {
	params := cmd.Params
	if !strings.ContainsAny(params, ".eE") {
		n, err := strconv.Atoi(params)
		if err == nil {
			if n < 1 {
				return cmd.errorf("requires at least one iteration")
			}
			g.Iterations = n
			g.TimeWindow = float64(n-1) * g.Dt
			return nil
		}
	}

	tw, err := strconv.ParseFloat(params, 64)
	if err != nil || tw <= 0 {
		return cmd.errorf("requires a positive duration or iteration count, got %q", params)
	}
	g.TimeWindow = tw
	g.Iterations = int(math.Floor(tw/g.Dt)) + 1
	return nil
}

func cmdFloats(cmd Cmd, n int) ([]float64, error) {
	fields := cmd.Fields()
	if len(fields) != n {
		return nil, cmd.errorf("requires exactly %d parameters, got %d", n, len(fields))
	}

	values := make([]float64, n)
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, cmd.errorf("invalid number %q", f)
		}
		values[i] = v
	}
	return values, nil
}
