package solver

import (
	"github.com/rfsouza/uasn/pkg/uasn/geom"
)

// ToAStatus reports whether a ToA solve converged within its
// iteration budget.
type ToAStatus int

const (
	// ToAOk means the step norm fell below the convergence threshold.
	ToAOk ToAStatus = iota

	// ToANotConverged means the iteration cap was hit first; X still
	// holds the best estimate found, the caller decides whether to use it.
	ToANotConverged
)

// ToA runs Gauss-Newton trilateration from N>=3 anchor
// positions and measured distances, starting at x0. iterMax bounds the
// iteration count; threshold is the step-norm convergence criterion.
func ToA(anchors []geom.Vec3, distances []float64, x0 geom.Vec3, iterMax int, threshold float64) (geom.Vec3, ToAStatus, error) {
	x := x0
	n := len(anchors)

	for iter := 0; iter < iterMax; iter++ {
		var jtj [3][3]float64
		var jtr [3]float64

		for i := 0; i < n; i++ {
			diff := anchors[i].Sub(x)
			dist := diff.Norm()
			if dist == 0 {
				// A coincident anchor has no gradient direction; it
				// contributes nothing this iteration.
				continue
			}
			residual := distances[i] - dist
			grad := diff.Scale(1 / dist) // J_i = (A_i - X) / ||A_i - X||
			g := [3]float64{grad.X, grad.Y, grad.Z}

			for r := 0; r < 3; r++ {
				jtr[r] += g[r] * residual
				for c := 0; c < 3; c++ {
					jtj[r][c] += g[r] * g[c]
				}
			}
		}

		step, err := solve3x3(jtj, jtr)
		if err != nil {
			return geom.Vec3{}, ToANotConverged, err
		}
		stepVec := geom.Vec3{X: step[0], Y: step[1], Z: step[2]}
		x = x.Sub(stepVec)

		if stepVec.Norm() < threshold {
			return x, ToAOk, nil
		}
	}
	return x, ToANotConverged, nil
}
