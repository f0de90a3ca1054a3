package numeric

import (
	"errors"
	"math"
)

// ErrSingularMatrix is returned when the pivot column's maximum magnitude
// drops below the singularity threshold during elimination. Callers must
// treat this as recoverable: the driver shunts floating nodes to ground
// and retries rather than treating it as a hard failure.
var ErrSingularMatrix = errors.New("numeric: singular matrix")

const pivotThreshold = 1e-12

// SolveReal solves Ax=b by partial-pivoted Gaussian elimination. A and b are
// never mutated; the function works on its own copy of the augmented
// matrix.
func SolveReal(a [][]float64, b []float64) ([]float64, error) {
	n := len(a)
	aug := make([][]float64, n)
	for i, row := range a {
		aug[i] = make([]float64, n+1)
		copy(aug[i], row)
		aug[i][n] = b[i]
	}

	for i := 0; i < n; i++ {
		pivotRow := i
		best := math.Abs(aug[i][i])
		for r := i + 1; r < n; r++ {
			if v := math.Abs(aug[r][i]); v > best {
				best = v
				pivotRow = r
			}
		}
		if best < pivotThreshold {
			return nil, ErrSingularMatrix
		}
		aug[i], aug[pivotRow] = aug[pivotRow], aug[i]

		pivot := aug[i][i]
		for j := i; j <= n; j++ {
			aug[i][j] /= pivot
		}

		for k := 0; k < n; k++ {
			if k == i {
				continue
			}
			factor := aug[k][i]
			if factor == 0 {
				continue
			}
			for j := i; j <= n; j++ {
				aug[k][j] -= factor * aug[i][j]
			}
		}
	}

	x := make([]float64, n)
	for i := range x {
		x[i] = aug[i][n]
	}
	return x, nil
}

// SolveComplex is SolveReal's complex-field counterpart, used for the AC
// phasor solve.
func SolveComplex(a [][]Complex, b []Complex) ([]Complex, error) {
	n := len(a)
	aug := make([][]Complex, n)
	for i, row := range a {
		aug[i] = make([]Complex, n+1)
		copy(aug[i], row)
		aug[i][n] = b[i]
	}

	for i := 0; i < n; i++ {
		pivotRow := i
		best := aug[i][i].Abs()
		for r := i + 1; r < n; r++ {
			if v := aug[r][i].Abs(); v > best {
				best = v
				pivotRow = r
			}
		}
		if best < pivotThreshold {
			return nil, ErrSingularMatrix
		}
		aug[i], aug[pivotRow] = aug[pivotRow], aug[i]

		pivot := aug[i][i]
		for j := i; j <= n; j++ {
			aug[i][j] = aug[i][j].Div(pivot)
		}

		for k := 0; k < n; k++ {
			if k == i {
				continue
			}
			factor := aug[k][i]
			if factor.Re == 0 && factor.Im == 0 {
				continue
			}
			for j := i; j <= n; j++ {
				aug[k][j] = aug[k][j].Sub(factor.Mul(aug[i][j]))
			}
		}
	}

	x := make([]Complex, n)
	for i := range x {
		x[i] = aug[i][n]
	}
	return x, nil
}
