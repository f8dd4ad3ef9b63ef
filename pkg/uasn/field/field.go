// Package field implements the 2x2x2 trilinear speed-of-sound field:
// a small tensor of relative deviations that drifts stochastically each
// tick and is interpolated to yield a local speed of sound anywhere in
// the simulation volume.
package field

import (
	"github.com/rfsouza/uasn/pkg/uasn/geom"
	"github.com/rfsouza/uasn/pkg/uasn/randsrc"
)

// relaxationSteps is the "N" in the Ornstein-Uhlenbeck-like relaxation
// below: it sets the time constant of the drift to N*dt.
const relaxationSteps = 10

// Bounds describes the axis-aligned simulation volume: 0<=x<=MaxX,
// 0<=y<=MaxY, MinZ<=z<=0 (z is depth, negative downward).
type Bounds struct {
	MaxX, MaxY, MinZ float64
}

// Field is the 2x2x2 tensor of relative speed-of-sound deviations,
// indexed [xCorner][yCorner][zCorner].
type Field struct {
	delta [2][2][2]float64
}

// New creates a field seeded with a small initial deviation: standard
// normals drawn from src, scaled by tick*sndVar.
func New(tick, sndVar float64, src *randsrc.Source) *Field {
	f := &Field{}
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			for k := 0; k < 2; k++ {
				f.delta[i][j][k] = tick * sndVar * src.Normal()
			}
		}
	}
	return f
}

// Relax applies one step of the mean-reverting drift:
//
//	delta <- (delta*(N-dt) + dt*sndVar*W) / N
//
// where W is a fresh 2x2x2 sample of standard normals drawn from src.
func (f *Field) Relax(dt, sndVar float64, src *randsrc.Source) {
	const n = relaxationSteps
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			for k := 0; k < 2; k++ {
				w := src.Normal()
				f.delta[i][j][k] = (f.delta[i][j][k]*(n-dt) + dt*sndVar*w) / n
			}
		}
	}
}

// SpeedAt returns the local speed of sound at p, trilinearly
// interpolating (1+delta) between the eight corners of bounds and
// scaling by sndSpeed.
func (f *Field) SpeedAt(p geom.Vec3, bounds Bounds, sndSpeed float64) float64 {
	fx := fraction(p.X, 0, bounds.MaxX)
	fy := fraction(p.Y, 0, bounds.MaxY)
	fz := fraction(p.Z, bounds.MinZ, 0)

	var v float64
	for i := 0; i < 2; i++ {
		wx := weight(i, fx)
		for j := 0; j < 2; j++ {
			wy := weight(j, fy)
			for k := 0; k < 2; k++ {
				wz := weight(k, fz)
				v += wx * wy * wz * (1 + f.delta[i][j][k])
			}
		}
	}
	return v * sndSpeed
}

// fraction maps x linearly from [lo,hi] onto [0,1], clamping outside
// the interval so a node fractionally out of bounds does not extrapolate
// past the tensor's corners.
func fraction(x, lo, hi float64) float64 {
	if hi == lo {
		return 0
	}
	t := (x - lo) / (hi - lo)
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}

// weight returns the linear interpolation weight of corner index idx
// (0 or 1) given fractional coordinate t in [0,1].
func weight(idx int, t float64) float64 {
	if idx == 0 {
		return 1 - t
	}
	return t
}
