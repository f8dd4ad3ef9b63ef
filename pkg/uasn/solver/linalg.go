// Package solver implements the two position-estimation kernels every
// protocol consumes: the closed-form UPS TDOA solver (ups.go) and the
// iterative Gauss-Newton ToA solver (toa.go). Both report failure
// through a Go error instead of aborting.
package solver

import (
	"math"

	"github.com/rfsouza/uasn/pkg/uasn/types"
)

// singularThreshold is how close to zero a pivot can get before a 3x3
// linear system is declared singular rather than merely ill-conditioned.
const singularThreshold = 1e-9

// solve3x3 solves M x = b for a 3x3 system using Gaussian elimination
// with partial pivoting, returning types.ErrSingular if M cannot be
// inverted to the tolerance above.
func solve3x3(m [3][3]float64, b [3]float64) (x [3]float64, err error) {
	// Augment and eliminate on a local copy; m/b are passed by value.
	var a [3][4]float64
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			a[i][j] = m[i][j]
		}
		a[i][3] = b[i]
	}

	for col := 0; col < 3; col++ {
		pivotRow := col
		pivotVal := math.Abs(a[col][col])
		for r := col + 1; r < 3; r++ {
			if v := math.Abs(a[r][col]); v > pivotVal {
				pivotRow, pivotVal = r, v
			}
		}
		if pivotVal < singularThreshold {
			return x, types.ErrSingular
		}
		a[col], a[pivotRow] = a[pivotRow], a[col]

		for r := 0; r < 3; r++ {
			if r == col {
				continue
			}
			factor := a[r][col] / a[col][col]
			for c := col; c < 4; c++ {
				a[r][c] -= factor * a[col][c]
			}
		}
	}

	for i := 0; i < 3; i++ {
		x[i] = a[i][3] / a[i][i]
	}
	return x, nil
}
