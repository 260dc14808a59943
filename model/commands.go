package model

import (
	"fmt"
	"strings"
)

// Commands that may occur at most once in a model.
var singleCmds = map[string]bool{
	"title":                        true,
	"domain":                       true,
	"dx_dy_dz":                     true,
	"time_window":                  true,
	"time_step_stability_factor":   true,
	"num_threads":                  true,
	"pml_cells":                    true,
	"messages":                     true,
	"src_steps":                    true,
	"rx_steps":                     true,
}

// Commands that may occur any number of times.
var multiCmds = map[string]bool{
	"material":             true,
	"add_dispersion_debye": true,
	"waveform":             true,
	"excitation_file":      true,
	"hertzian_dipole":      true,
	"magnetic_dipole":      true,
	"voltage_source":       true,
	"rx":                   true,
	"snapshot":             true,
	"geometry_view":        true,
}

// Geometry commands, processed strictly in input order.
var geometryCmds = map[string]bool{
	"edge":     true,
	"plate":    true,
	"box":      true,
	"sphere":   true,
	"cylinder": true,
}

// Commands that must be present in every model.
var essentialCmds = []string{"domain", "dx_dy_dz", "time_window"}

// Cmd is one parsed input command: its name and raw parameter string.
type Cmd struct {
	Name   string
	Params string
}

func (c Cmd) String() string {
	return "#" + c.Name + ": " + c.Params
}

// Fields splits the parameter string on whitespace.
func (c Cmd) Fields() []string {
	return strings.Fields(c.Params)
}

func (c Cmd) errorf(format string, args ...any) error {
	return fmt.Errorf("#%s: %s", c.Name, fmt.Sprintf(format, args...))
}

// CheckCmdNames validates every command line against the known command sets
// and checks the essential commands are present. Single-use commands are
// returned by name, multi-use and geometry commands in input order.
func CheckCmdNames(lines []string) (single map[string]Cmd, multi []Cmd, geometry []Cmd, err error) {
	single = map[string]Cmd{}

	for _, line := range lines {
		cmd, err := parseLine(line)
		if err != nil {
			return nil, nil, nil, err
		}

		switch {
		case singleCmds[cmd.Name]:
			if _, ok := single[cmd.Name]; ok {
				return nil, nil, nil, cmd.errorf("can only occur once in a model")
			}
			single[cmd.Name] = cmd
		case multiCmds[cmd.Name]:
			multi = append(multi, cmd)
		case geometryCmds[cmd.Name]:
			geometry = append(geometry, cmd)
		default:
			return nil, nil, nil, fmt.Errorf("unknown command #%s", cmd.Name)
		}
	}

	for _, name := range essentialCmds {
		if _, ok := single[name]; !ok {
			return nil, nil, nil, fmt.Errorf("essential command #%s is missing from the model", name)
		}
	}

	return single, multi, geometry, nil
}

func parseLine(line string) (Cmd, error) {
	if !strings.HasPrefix(line, "#") {
		return Cmd{}, fmt.Errorf("not a command line: %s", line)
	}

	name, params, found := strings.Cut(line[1:], ":")
	if !found {
		return Cmd{}, fmt.Errorf("command %s is missing a colon", line)
	}

	return Cmd{
		Name:   strings.TrimSpace(name),
		Params: strings.TrimSpace(params),
	}, nil
}
