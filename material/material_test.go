package material

import (
	"math"
	"testing"

	"github.com/emwave/emwave/constants"
	"github.com/stretchr/testify/require"
)

const (
	testDt = 1e-12
	testD  = 1e-3
)

func TestFreeSpaceCoeffs(t *testing.T) {
	m := New(1, "free_space", 1, 0, 1, 0)
	m.CalculateUpdateCoeffsE(testDt, testD, testD, testD)
	m.CalculateUpdateCoeffsH(testDt, testD, testD, testD)

	require.InDelta(t, 1.0, m.CA, 1e-12)
	require.InDelta(t, testDt/(constants.E0*testD), m.CBx, 1e-9)
	require.InDelta(t, testDt/constants.E0, m.Srce, 1e-9)
	require.Zero(t, m.CD)

	require.InDelta(t, 1.0, m.DA, 1e-12)
	require.InDelta(t, testDt/(constants.Mu0*testD), m.DBx, 1e-9)
}

func TestPECCoeffsAreZero(t *testing.T) {
	m := New(0, "pec", 1, 0, 1, 0)
	m.PEC = true
	m.CalculateUpdateCoeffsE(testDt, testD, testD, testD)

	require.Equal(t, [CoeffsPerRow]float64{}, m.ERow())
}

func TestLossyDielectricCoeffs(t *testing.T) {
	m := New(2, "soil", 4, 0.01, 1, 0)
	m.CalculateUpdateCoeffsE(testDt, testD, testD, testD)

	loss := m.Se * testDt / (2 * constants.E0)
	require.InDelta(t, (4-loss)/(4+loss), m.CA, 1e-12)
	require.Less(t, m.CA, 1.0)

	// Permittivity scales the curl coefficients down against free space.
	free := New(1, "free_space", 1, 0, 1, 0)
	free.CalculateUpdateCoeffsE(testDt, testD, testD, testD)
	require.Less(t, m.CBx, free.CBx)
}

func TestDebyePoleCoeffs(t *testing.T) {
	deltaEr, tau := 3.0, 1e-9

	m := New(2, "wet_soil", 5, 0, 1, 0)
	m.AddDebyePole(deltaEr, tau)
	require.Equal(t, 1, m.Poles())

	m.CalculateUpdateCoeffsE(testDt, testD, testD, testD)

	ept := math.Exp(-testDt / tau)
	chi0 := deltaEr * (1 - ept)

	require.InDelta(t, ept, real(m.Ept[0]), 1e-12)
	require.InDelta(t, chi0, real(m.Chi0[0]), 1e-12)
	require.InDelta(t, chi0*(1-ept), real(m.DChi0[0]), 1e-12)

	// The pole widens the effective permittivity.
	denom := m.Er + chi0
	require.InDelta(t, m.Er/denom, m.CA, 1e-12)
	require.InDelta(t, 1/denom, m.CD, 1e-12)
}

func TestMagneticLossCoeffs(t *testing.T) {
	m := New(2, "ferrite", 1, 0, 2, 10)
	m.CalculateUpdateCoeffsH(testDt, testD, testD, testD)

	loss := m.Sm * testDt / (2 * constants.Mu0 * m.Mr)
	require.InDelta(t, (1-loss)/(1+loss), m.DA, 1e-12)
	require.InDelta(t, testDt/(constants.Mu0*m.Mr*testD)/(1+loss), m.DBx, 1e-9)
}

func TestStringMentionsSmoothing(t *testing.T) {
	m := New(1, "free_space", 1, 0, 1, 0)
	require.Contains(t, m.String(), "smoothing permitted")

	m.Average = false
	require.Contains(t, m.String(), "smoothing not permitted")
}
