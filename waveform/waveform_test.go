package waveform

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValueGaussianPeak(t *testing.T) {
	w := &Waveform{ID: "w", Type: TypeGaussian, Amp: 2, Freq: 1e9}

	// The pulse peaks one period after t=0.
	require.InDelta(t, 2.0, w.Value(1e-9, 1e-12), 1e-12)

	// Symmetric falloff around the peak.
	require.InDelta(t, w.Value(0.8e-9, 1e-12), w.Value(1.2e-9, 1e-12), 1e-12)
}

func TestValueRickerPeak(t *testing.T) {
	w := &Waveform{ID: "w", Type: TypeRicker, Amp: 3, Freq: 1e9}

	// At the delay the quadratic term vanishes and the envelope is 1.
	peakTime := 1.4142135623730951e-9
	require.InDelta(t, 3.0, w.Value(peakTime, 1e-12), 1e-9)
}

func TestValueSineSingleCycle(t *testing.T) {
	w := &Waveform{ID: "w", Type: TypeSine, Amp: 1, Freq: 1e9}

	require.InDelta(t, 1.0, w.Value(0.25e-9, 1e-12), 1e-9)
	require.InDelta(t, -1.0, w.Value(0.75e-9, 1e-12), 1e-9)

	// Truncated after one full cycle.
	require.Zero(t, w.Value(1.25e-9, 1e-12))
}

func TestValueContSineRampsUp(t *testing.T) {
	w := &Waveform{ID: "w", Type: TypeContSine, Amp: 1, Freq: 1e9}

	// First cycle peak is still attenuated by the ramp.
	early := w.Value(0.25e-9, 1e-12)
	require.Less(t, early, 1.0)
	require.Greater(t, early, 0.0)

	// Beyond the ramp the amplitude reaches full scale and keeps going.
	require.InDelta(t, 1.0, w.Value(8.25e-9, 1e-12), 1e-9)
}

func TestValueImpulse(t *testing.T) {
	w := &Waveform{ID: "w", Type: TypeImpulse, Amp: 5}
	dt := 1e-12

	require.InDelta(t, 5.0, w.Value(0, dt), 1e-12)
	require.Zero(t, w.Value(dt, dt))
	require.Zero(t, w.Value(10*dt, dt))
}

func TestValueUser(t *testing.T) {
	w := &Waveform{ID: "w", Type: TypeUser, Amp: 2, UserValues: []float64{0.5, 1, -1}}
	dt := 1e-12

	require.InDelta(t, 1.0, w.Value(0, dt), 1e-12)
	require.InDelta(t, 2.0, w.Value(dt, dt), 1e-12)
	require.InDelta(t, -2.0, w.Value(2*dt, dt), 1e-12)
	require.Zero(t, w.Value(3*dt, dt))
}

func TestIsKnownType(t *testing.T) {
	require.True(t, IsKnownType(TypeGaussian))
	require.True(t, IsKnownType(TypeZero))
	require.False(t, IsKnownType("triangle"))
}

func TestMaxFrequencySine(t *testing.T) {
	w := &Waveform{ID: "w", Type: TypeSine, Amp: 1, Freq: 2e9}

	f, ok := w.MaxFrequency(1000, 1e-12)
	require.True(t, ok)
	require.InDelta(t, 8e9, f, 1)
}

func TestMaxFrequencyImpulse(t *testing.T) {
	w := &Waveform{ID: "w", Type: TypeImpulse, Amp: 1}

	_, ok := w.MaxFrequency(1000, 1e-12)
	require.False(t, ok)
}

func TestMaxFrequencyGaussian(t *testing.T) {
	w := &Waveform{ID: "w", Type: TypeGaussian, Amp: 1, Freq: 1e9}
	dt := 2e-11
	iterations := 512

	f, ok := w.MaxFrequency(iterations, dt)
	require.True(t, ok)

	// The significant band extends past the centre frequency but stays below
	// the sampling limit.
	require.Greater(t, f, w.Freq)
	require.Less(t, f, 1/(2*dt))
}

func TestSamples(t *testing.T) {
	w := &Waveform{ID: "w", Type: TypeImpulse, Amp: 1}

	values := w.Samples(4, 1e-12)
	require.Equal(t, []float64{1, 0, 0, 0}, values)
}
