package numeric

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestComplexArithmetic(t *testing.T) {
	a := Complex{Re: 3, Im: 4}
	b := Complex{Re: 1, Im: -2}

	require.Equal(t, Complex{Re: 4, Im: 2}, a.Add(b))
	require.Equal(t, Complex{Re: 2, Im: 6}, a.Sub(b))
	require.Equal(t, Complex{Re: 11, Im: -2}, a.Mul(b))
	require.InDelta(t, 5.0, a.Abs(), 1e-12)
	require.Equal(t, Complex{Re: 3, Im: -4}, a.Conjugate())
}

func TestComplexDiv(t *testing.T) {
	a := Complex{Re: 1, Im: 0}
	b := Complex{Re: 0, Im: 2}
	got := a.Div(b)
	require.InDelta(t, 0.0, got.Re, 1e-12)
	require.InDelta(t, -0.5, got.Im, 1e-12)
}

func TestFromPolar(t *testing.T) {
	z := FromPolar(10, 90)
	require.InDelta(t, 0.0, z.Re, 1e-9)
	require.InDelta(t, 10.0, z.Im, 1e-9)
}

func TestAngleDegrees(t *testing.T) {
	z := Complex{Re: 0, Im: 1}
	require.InDelta(t, 90.0, z.AngleDegrees(), 1e-9)
	require.InDelta(t, math.Hypot(0, 1), z.Abs(), 1e-12)
}
