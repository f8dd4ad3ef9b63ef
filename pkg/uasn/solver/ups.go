package solver

import (
	"math"

	"github.com/rfsouza/uasn/pkg/uasn/geom"
	"github.com/rfsouza/uasn/pkg/uasn/types"
)

// UPS solves the 4-anchor TDOA closed form. anchors must be ordered
// A0..A3 (A0 the master); k holds the three range difference
// coefficients (t0-dt0-ti+dti)*speed for anchors 1..3.
func UPS(anchors [4]geom.Vec3, k [3]float64, simRange float64) (geom.Vec3, error) {
	a0 := anchors[0]

	var m [3][3]float64
	var i3, j3 [3]float64
	for row := 0; row < 3; row++ {
		ai := anchors[row+1]
		diff := a0.Sub(ai).Scale(2)
		m[row] = [3]float64{diff.X, diff.Y, diff.Z}
		i3[row] = -2 * k[row]
		j3[row] = k[row]*k[row] + a0.Dot(a0) - ai.Dot(ai)
	}

	aVec, err := solve3x3(m, i3)
	if err != nil {
		// Surface-buoy deployments put all four anchors at the same
		// depth, which zeroes M's z-column; the system is still
		// solvable with w promoted to the third unknown.
		if sameDepth(anchors) {
			return upsCoplanar(anchors, k, simRange)
		}
		return geom.Vec3{}, err
	}
	bVec, err := solve3x3(m, j3)
	if err != nil {
		return geom.Vec3{}, err
	}

	a := geom.Vec3{X: aVec[0], Y: aVec[1], Z: aVec[2]}
	b := geom.Vec3{X: bVec[0], Y: bVec[1], Z: bVec[2]}

	alpha := a.Dot(a) - 1
	beta := 2 * (a.Dot(b) - a.Dot(a0))
	gamma := b.Dot(b) - 2*b.Dot(a0) + a0.Dot(a0)

	w, err := pickRoot(alpha, beta, gamma)
	if err != nil {
		return geom.Vec3{}, err
	}

	p := a.Scale(w).Add(b)
	return validateRange(p, anchors, simRange)
}

func validateRange(p geom.Vec3, anchors [4]geom.Vec3, simRange float64) (geom.Vec3, error) {
	maxDist := 0.0
	for _, anchor := range anchors {
		if d := geom.Distance(p, anchor); d > maxDist {
			maxDist = d
		}
	}
	if maxDist > simRange*1.1 {
		return geom.Vec3{}, types.ErrOutOfRange
	}
	return p, nil
}

func sameDepth(anchors [4]geom.Vec3) bool {
	for _, a := range anchors[1:] {
		if math.Abs(a.Z-anchors[0].Z) > 1e-9 {
			return false
		}
	}
	return true
}

// upsCoplanar handles the equal-depth anchor layout: the linearized
// system no longer constrains z, so (x, y, w) are solved directly and
// z is recovered from w's definition as a distance. Of the two mirror
// depths z0 +- s, only positions at or below the surface are valid;
// both being valid is a genuine ambiguity.
func upsCoplanar(anchors [4]geom.Vec3, k [3]float64, simRange float64) (geom.Vec3, error) {
	a0 := anchors[0]

	var m [3][3]float64
	var j [3]float64
	for row := 0; row < 3; row++ {
		ai := anchors[row+1]
		m[row] = [3]float64{2 * (a0.X - ai.X), 2 * (a0.Y - ai.Y), 2 * k[row]}
		j[row] = k[row]*k[row] + a0.Dot(a0) - ai.Dot(ai)
	}

	sol, err := solve3x3(m, j)
	if err != nil {
		return geom.Vec3{}, err
	}
	x, y, w := sol[0], sol[1], sol[2]
	if w < 0 {
		return geom.Vec3{}, types.ErrNoSolution
	}

	rho2 := (x-a0.X)*(x-a0.X) + (y-a0.Y)*(y-a0.Y)
	s2 := w*w - rho2
	if s2 < 0 {
		return geom.Vec3{}, types.ErrNoSolution
	}
	s := math.Sqrt(s2)

	zUp, zDown := a0.Z+s, a0.Z-s
	switch {
	case s == 0:
		if zDown > 0 {
			return geom.Vec3{}, types.ErrNoSolution
		}
	case zUp <= 0:
		return geom.Vec3{}, types.ErrAmbiguous
	}
	return validateRange(geom.Vec3{X: x, Y: y, Z: zDown}, anchors, simRange)
}

// pickRoot resolves the alpha*w^2 + beta*w + gamma = 0 quadratic:
// no real/non-negative root is a failure, two non-negative roots is an
// ambiguity, never a guess.
func pickRoot(alpha, beta, gamma float64) (float64, error) {
	if alpha == 0 {
		return 0, types.ErrNoSolution
	}
	delta := beta*beta - 4*alpha*gamma
	if delta < 0 {
		return 0, types.ErrNoSolution
	}
	if delta == 0 {
		w := -beta / (2 * alpha)
		if w < 0 {
			return 0, types.ErrNoSolution
		}
		return w, nil
	}
	sq := math.Sqrt(delta)
	w1 := (-beta - sq) / (2 * alpha)
	w2 := (-beta + sq) / (2 * alpha)
	switch {
	case w1 < 0 && w2 < 0:
		return 0, types.ErrNoSolution
	case w1 >= 0 && w2 >= 0:
		return 0, types.ErrAmbiguous
	case w1 >= 0:
		return w1, nil
	default:
		return w2, nil
	}
}

// UPSWithUncertainty runs UPS on the mean coefficients and separately
// propagates the standard deviations sigmaK by linearizing P(K): a
// finite-difference Jacobian of the closed-form solution with respect
// to each k_i, combined in quadrature. A coefficient whose perturbed
// solve fails contributes no variance rather than failing the whole
// estimate.
func UPSWithUncertainty(anchors [4]geom.Vec3, k, sigmaK [3]float64, simRange float64) (mean, stddev geom.Vec3, err error) {
	mean, err = UPS(anchors, k, simRange)
	if err != nil {
		return geom.Vec3{}, geom.Vec3{}, err
	}

	var varX, varY, varZ float64
	for i := 0; i < 3; i++ {
		if sigmaK[i] == 0 {
			continue
		}
		eps := stepSize(k[i])
		perturbed := k
		perturbed[i] += eps
		p, perr := UPS(anchors, perturbed, simRange)
		if perr != nil {
			continue
		}
		d := p.Sub(mean).Scale(1 / eps)
		varX += (d.X * sigmaK[i]) * (d.X * sigmaK[i])
		varY += (d.Y * sigmaK[i]) * (d.Y * sigmaK[i])
		varZ += (d.Z * sigmaK[i]) * (d.Z * sigmaK[i])
	}
	stddev = geom.Vec3{X: math.Sqrt(varX), Y: math.Sqrt(varY), Z: math.Sqrt(varZ)}
	return mean, stddev, nil
}

func stepSize(k float64) float64 {
	const relative = 1e-6
	const floor = 1e-6
	v := math.Abs(k) * relative
	if v < floor {
		return floor
	}
	return v
}
