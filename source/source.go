// Package source defines the excitation sources and receivers that can be
// placed in a model. Field injection itself happens in the solver.
package source

import "fmt"

// Polarisation of a source, one of the grid axes.
type Polarisation byte

const (
	PolX Polarisation = 'x'
	PolY Polarisation = 'y'
	PolZ Polarisation = 'z'
)

// ParsePolarisation maps a command argument to a Polarisation.
func ParsePolarisation(s string) (Polarisation, error) {
	switch s {
	case "x":
		return PolX, nil
	case "y":
		return PolY, nil
	case "z":
		return PolZ, nil
	}
	return 0, fmt.Errorf("invalid polarisation %q, must be x, y or z", s)
}

func (p Polarisation) String() string {
	return string(byte(p))
}

// HertzianDipole is an additive electric current source on a single cell
// edge.
type HertzianDipole struct {
	Polarisation Polarisation
	X, Y, Z      int
	WaveformID   string
}

// MagneticDipole is an additive magnetic current source.
type MagneticDipole struct {
	Polarisation Polarisation
	X, Y, Z      int
	WaveformID   string
}

// VoltageSource drives an electric field edge. A zero resistance makes it a
// hard source, a positive resistance adds the source conductivity to the
// material at the source location.
type VoltageSource struct {
	Polarisation Polarisation
	X, Y, Z      int
	Resistance   float64
	WaveformID   string
}

// Rx is a receiver storing field component values at one grid position every
// iteration.
type Rx struct {
	ID      string
	X, Y, Z int
}
