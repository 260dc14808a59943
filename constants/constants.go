// Package constants holds physical constants shared by model building and
// field solving.
package constants

import "math"

const (
	// C is the speed of light in vacuum (m/s).
	C = 299792458.0
	// Mu0 is the permeability of free space (H/m).
	Mu0 = 4e-7 * math.Pi
)

// E0 is the permittivity of free space (F/m).
var E0 = 1.0 / (Mu0 * C * C)

// Z0 is the impedance of free space (Ohms).
var Z0 = math.Sqrt(Mu0 / E0)
