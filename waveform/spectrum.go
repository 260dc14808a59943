package waveform

import "math"

// Spectral content above maxSpectrumSamples timesteps is estimated from a
// truncated window, keeps the discrete transform affordable for long runs.
const maxSpectrumSamples = 4096

// Threshold below the spectral peak at which a frequency still counts as
// significant, in decibels.
const significantLevelDB = 60

// MaxFrequency estimates the highest significant frequency present in the
// waveform over a run of iterations timesteps.
//
// Sine-like waveforms are bounded analytically at four times their centre
// frequency. Impulse and zero waveforms have no usable bound and report
// (0, false). Everything else is sampled and the highest frequency within
// 60 dB of the spectral peak is returned.
func (w *Waveform) MaxFrequency(iterations int, dt float64) (float64, bool) {
	switch w.Type {
	case TypeSine, TypeContSine:
		return 4 * w.Freq, true
	case TypeImpulse, TypeZero:
		return 0, false
	}

	n := iterations
	if n > maxSpectrumSamples {
		n = maxSpectrumSamples
	}
	if n < 2 {
		return 0, false
	}

	var values []float64
	if w.Type == TypeUser {
		values = w.UserValues
		if len(values) > n {
			values = values[:n]
		}
		n = len(values)
		if n < 2 {
			return 0, false
		}
	} else {
		values = w.Samples(n, dt)
	}

	power := powerSpectrumDB(values)

	// Shift so that the peak sits at zero decibels.
	peak := math.Inf(-1)
	for _, p := range power[1:] {
		if p > peak {
			peak = p
		}
	}
	if math.IsInf(peak, -1) {
		return 0, false
	}

	freqStep := 1 / (float64(n) * dt)
	maxFreq := 0.0
	for k := 1; k < len(power); k++ {
		if peak-power[k] <= significantLevelDB {
			maxFreq = float64(k) * freqStep
		}
	}
	if maxFreq == 0 {
		return 0, false
	}

	return maxFreq, true
}

// powerSpectrumDB computes 20*log10(|X(k)|^2) for the positive half of a
// direct discrete Fourier transform of values.
func powerSpectrumDB(values []float64) []float64 {
	n := len(values)
	half := n/2 + 1
	power := make([]float64, half)

	for k := 0; k < half; k++ {
		var re, im float64
		for i, v := range values {
			angle := -2 * math.Pi * float64(k) * float64(i) / float64(n)
			re += v * math.Cos(angle)
			im += v * math.Sin(angle)
		}
		mag2 := re*re + im*im
		if mag2 == 0 {
			power[k] = math.Inf(-1)
		} else {
			power[k] = 20 * math.Log10(mag2)
		}
	}

	return power
}
