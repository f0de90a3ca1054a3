package numeric

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSolveRealSimple(t *testing.T) {
	// 2x + y = 5 ; x - y = 1  => x=2, y=1
	a := [][]float64{{2, 1}, {1, -1}}
	b := []float64{5, 1}
	x, err := SolveReal(a, b)
	require.NoError(t, err)
	require.InDelta(t, 2.0, x[0], 1e-9)
	require.InDelta(t, 1.0, x[1], 1e-9)

	// caller buffers untouched
	require.Equal(t, [][]float64{{2, 1}, {1, -1}}, a)
	require.Equal(t, []float64{5, 1}, b)
}

func TestSolveRealSingular(t *testing.T) {
	a := [][]float64{{1, 1}, {1, 1}}
	b := []float64{2, 2}
	_, err := SolveReal(a, b)
	require.ErrorIs(t, err, ErrSingularMatrix)
}

func TestSolveComplexSimple(t *testing.T) {
	a := [][]Complex{
		{{Re: 1}, {Re: 0}},
		{{Re: 0}, {Re: 1}},
	}
	b := []Complex{{Re: 3, Im: 1}, {Re: -2, Im: 4}}
	x, err := SolveComplex(a, b)
	require.NoError(t, err)
	require.InDelta(t, 3.0, x[0].Re, 1e-9)
	require.InDelta(t, 1.0, x[0].Im, 1e-9)
	require.InDelta(t, -2.0, x[1].Re, 1e-9)
	require.InDelta(t, 4.0, x[1].Im, 1e-9)
}

func TestSolveComplexSingular(t *testing.T) {
	a := [][]Complex{
		{{Re: 1, Im: 1}, {Re: 2, Im: 2}},
		{{Re: 0.5, Im: 0.5}, {Re: 1, Im: 1}},
	}
	b := []Complex{{Re: 1}, {Re: 1}}
	_, err := SolveComplex(a, b)
	require.ErrorIs(t, err, ErrSingularMatrix)
}
