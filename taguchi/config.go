// Package taguchi optimises model parameters with the Taguchi method:
// experiments chosen from an orthogonal array, a response table over the
// receiver fitness, and iterative narrowing of the parameter ranges.
package taguchi

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/emwave/emwave/model"
)

// Param is one parameter to optimise, exposed to input script blocks under
// its name and bounded to [Min, Max].
type Param struct {
	Name     string
	Min, Max float64
}

// Config describes one optimisation, read from the input file's taguchi
// block.
type Config struct {
	Params []Param

	// Receiver and field component the fitness maximises.
	FitnessRx        string
	FitnessComponent string

	MaxIterations int

	// Relative improvement of the confirmation fitness below which the
	// optimisation stops early. Zero disables the check.
	StopThreshold float64
}

// ParseBlock reads the taguchi block from an input file.
func ParseBlock(path string) (*Config, error) {
	in, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file %s: %s", path, err)
	}
	defer in.Close()

	cfg := &Config{
		FitnessComponent: "Ez",
		MaxIterations:    2,
	}
	inBlock := false
	found := false
	lineNo := 0

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())

		switch {
		case strings.HasPrefix(line, model.TaguchiBlockStart):
			inBlock = true
			found = true
			continue
		case strings.HasPrefix(line, model.TaguchiBlockEnd):
			inBlock = false
			continue
		case !inBlock || line == "":
			continue
		}

		name, params, ok := strings.Cut(line, ":")
		if !ok {
			return nil, fmt.Errorf("%s:%d: malformed directive %q", path, lineNo, line)
		}
		name = strings.TrimPrefix(name, "#")
		fields := strings.Fields(params)

		switch name {
		case "parameter":
			if len(fields) != 3 {
				return nil, fmt.Errorf("%s:%d: parameter needs a name and two bounds", path, lineNo)
			}
			min, err1 := strconv.ParseFloat(fields[1], 64)
			max, err2 := strconv.ParseFloat(fields[2], 64)
			if err1 != nil || err2 != nil || min >= max {
				return nil, fmt.Errorf("%s:%d: parameter %s needs numeric bounds with min < max", path, lineNo, fields[0])
			}
			cfg.Params = append(cfg.Params, Param{Name: fields[0], Min: min, Max: max})

		case "fitness_max":
			if len(fields) < 1 || len(fields) > 2 {
				return nil, fmt.Errorf("%s:%d: fitness_max needs a receiver ID and an optional component", path, lineNo)
			}
			cfg.FitnessRx = fields[0]
			if len(fields) == 2 {
				cfg.FitnessComponent = fields[1]
			}

		case "max_iterations":
			n, err := strconv.Atoi(strings.TrimSpace(params))
			if err != nil || n < 1 {
				return nil, fmt.Errorf("%s:%d: max_iterations needs a positive integer", path, lineNo)
			}
			cfg.MaxIterations = n

		case "stop_threshold":
			v, err := strconv.ParseFloat(strings.TrimSpace(params), 64)
			if err != nil || v < 0 {
				return nil, fmt.Errorf("%s:%d: stop_threshold needs a non-negative number", path, lineNo)
			}
			cfg.StopThreshold = v

		default:
			return nil, fmt.Errorf("%s:%d: unknown optimisation directive %s", path, lineNo, name)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read input file %s: %s", path, err)
	}

	if !found {
		return nil, fmt.Errorf("input file %s has no %s block", path, model.TaguchiBlockStart)
	}
	if len(cfg.Params) == 0 {
		return nil, fmt.Errorf("input file %s declares no parameters to optimise", path)
	}
	if cfg.FitnessRx == "" {
		return nil, fmt.Errorf("input file %s declares no fitness receiver", path)
	}

	return cfg, nil
}
