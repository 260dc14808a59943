// Package waveform implements the excitation waveforms available to sources,
// and the spectral analysis used by the numerical dispersion check.
package waveform

import (
	"fmt"
	"math"
)

// Known waveform type names, as accepted by the `#waveform` command.
const (
	TypeGaussian              = "gaussian"
	TypeGaussianDot           = "gaussiandot"
	TypeGaussianDotNormalised = "gaussiandotnormalised"
	TypeRicker                = "ricker"
	TypeSine                  = "sine"
	TypeContSine              = "contsine"
	TypeImpulse               = "impulse"
	TypeUser                  = "user"
	TypeZero                  = "zero"
)

// Ramp coefficient for the continuous sine, number of cycles over which the
// amplitude reaches full scale.
const contSineRamp = 0.25

var knownTypes = map[string]bool{
	TypeGaussian:              true,
	TypeGaussianDot:           true,
	TypeGaussianDotNormalised: true,
	TypeRicker:                true,
	TypeSine:                  true,
	TypeContSine:              true,
	TypeImpulse:               true,
	TypeUser:                  true,
	TypeZero:                  true,
}

// IsKnownType reports whether name is a recognised waveform type.
func IsKnownType(name string) bool {
	return knownTypes[name]
}

// Waveform is a named excitation definition referenced by sources through ID.
type Waveform struct {
	ID   string
	Type string
	Amp  float64
	Freq float64

	// Sample values for user-defined waveforms, one per timestep.
	UserValues []float64
}

// Value calculates the waveform amplitude at absolute time t. dt is the
// simulation timestep, needed to index user-defined sample values.
func (w *Waveform) Value(t, dt float64) float64 {
	switch w.Type {
	case TypeGaussian:
		chi := 1 / w.Freq
		zeta := 2 * math.Pi * math.Pi * w.Freq * w.Freq
		delay := t - chi
		return w.Amp * math.Exp(-zeta*delay*delay)

	case TypeGaussianDot:
		chi := 1 / w.Freq
		zeta := 2 * math.Pi * math.Pi * w.Freq * w.Freq
		delay := t - chi
		return w.Amp * -2 * zeta * delay * math.Exp(-zeta*delay*delay)

	case TypeGaussianDotNormalised:
		// Scaled so the peak amplitude is Amp.
		chi := 1 / w.Freq
		zeta := 2 * math.Pi * math.Pi * w.Freq * w.Freq
		delay := t - chi
		norm := math.Sqrt(math.E / (2 * zeta))
		return w.Amp * -2 * zeta * delay * norm * math.Exp(-zeta*delay*delay)

	case TypeRicker:
		chi := math.Sqrt2 / w.Freq
		zeta := math.Pi * math.Pi * w.Freq * w.Freq
		delay := t - chi
		return w.Amp * -(2*zeta*delay*delay - 1) * math.Exp(-zeta*delay*delay)

	case TypeSine:
		// Single cycle.
		if t*w.Freq > 1 {
			return 0
		}
		return w.Amp * math.Sin(2*math.Pi*w.Freq*t)

	case TypeContSine:
		ramp := contSineRamp * t * w.Freq
		if ramp > 1 {
			ramp = 1
		}
		return w.Amp * ramp * math.Sin(2*math.Pi*w.Freq*t)

	case TypeImpulse:
		if t < dt {
			return w.Amp
		}
		return 0

	case TypeUser:
		index := int(t / dt)
		if index < 0 || index >= len(w.UserValues) {
			return 0
		}
		return w.Amp * w.UserValues[index]
	}

	return 0
}

// Samples evaluates the waveform at n consecutive timesteps.
func (w *Waveform) Samples(n int, dt float64) []float64 {
	values := make([]float64, n)
	for i := range values {
		values[i] = w.Value(float64(i)*dt, dt)
	}
	return values
}

func (w *Waveform) String() string {
	return fmt.Sprintf("%s(%s, amp=%g, freq=%g)", w.ID, w.Type, w.Amp, w.Freq)
}
