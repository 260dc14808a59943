// Package luamodule sets up the Lua environment available to `#lua` blocks
// in model input files.
package luamodule

import (
	"fmt"
	"math"
	"strings"

	"github.com/emwave/emwave/constants"
	lua "github.com/yuin/gopher-lua"
)

// Namespace holds the values exposed to input file scripts as globals.
type Namespace struct {
	NumberModelRuns int
	CurrentModelRun int
	InputDirectory  string

	// Extra parameters, injected by the optimiser.
	Extra map[string]float64
}

// Globals returns the namespace as a plain map, useful for logging what a
// script can access.
func (ns *Namespace) Globals() map[string]any {
	m := map[string]any{
		"c":                 constants.C,
		"e0":                constants.E0,
		"m0":                constants.Mu0,
		"z0":                constants.Z0,
		"number_model_runs": ns.NumberModelRuns,
		"current_model_run": ns.CurrentModelRun,
		"input_directory":   ns.InputDirectory,
	}
	for k, v := range ns.Extra {
		m[k] = v
	}
	return m
}

// RunBlock executes one script block. Every print() call inside the block
// emits one line of input file content; the collected lines are returned.
func RunBlock(code string, ns *Namespace) ([]string, error) {
	L := lua.NewState()
	defer L.Close()

	setupGlobals(L, ns)
	L.PreloadModule("em", Loader)

	var lines []string
	L.SetGlobal("print", L.NewFunction(func(L *lua.LState) int {
		top := L.GetTop()
		parts := make([]string, 0, top)
		for i := 1; i <= top; i++ {
			parts = append(parts, lua.LVAsString(L.ToStringMeta(L.Get(i))))
		}
		lines = append(lines, strings.Join(parts, " "))
		return 0
	}))

	if err := L.DoString(code); err != nil {
		return nil, fmt.Errorf("script block execution error:\n%s", err)
	}

	return lines, nil
}

func setupGlobals(L *lua.LState, ns *Namespace) {
	L.SetGlobal("c", lua.LNumber(constants.C))
	L.SetGlobal("e0", lua.LNumber(constants.E0))
	L.SetGlobal("m0", lua.LNumber(constants.Mu0))
	L.SetGlobal("z0", lua.LNumber(constants.Z0))
	L.SetGlobal("number_model_runs", lua.LNumber(ns.NumberModelRuns))
	L.SetGlobal("current_model_run", lua.LNumber(ns.CurrentModelRun))
	L.SetGlobal("input_directory", lua.LString(ns.InputDirectory))

	for k, v := range ns.Extra {
		L.SetGlobal(k, lua.LNumber(v))
	}
}

// Loader provides the `em` helper module for input scripts.
func Loader(L *lua.LState) int {
	mod := L.SetFuncs(L.NewTable(), exports)

	mod.RawSetString("c", lua.LNumber(constants.C))
	mod.RawSetString("e0", lua.LNumber(constants.E0))
	mod.RawSetString("m0", lua.LNumber(constants.Mu0))
	mod.RawSetString("z0", lua.LNumber(constants.Z0))

	L.Push(mod)

	return 1
}

var exports = map[string]lua.LGFunction{
	"wavelength": wavelength,
	"round":      round,
}

// wavelength(freq, er) returns the wavelength in a medium of relative
// permittivity er (defaults to free space).
func wavelength(L *lua.LState) int {
	freq := float64(L.CheckNumber(1))
	er := 1.0
	if L.GetTop() >= 2 {
		er = float64(L.CheckNumber(2))
	}

	if freq <= 0 || er <= 0 {
		L.ArgError(1, "frequency and permittivity must be positive")
		return 0
	}

	L.Push(lua.LNumber(constants.C / (freq * math.Sqrt(er))))
	return 1
}

// round(v) rounds half away from zero.
func round(L *lua.LState) int {
	v := float64(L.CheckNumber(1))
	L.Push(lua.LNumber(math.Round(v)))
	return 1
}
