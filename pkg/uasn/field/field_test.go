package field

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rfsouza/uasn/pkg/uasn/geom"
	"github.com/rfsouza/uasn/pkg/uasn/randsrc"
)

func TestSpeedAtZeroDeviationIsMeanSpeed(t *testing.T) {
	f := &Field{}
	bounds := Bounds{MaxX: 1000, MaxY: 1000, MinZ: -500}
	for _, p := range []geom.Vec3{
		{X: 0, Y: 0, Z: 0},
		{X: 1000, Y: 1000, Z: -500},
		{X: 500, Y: 500, Z: -250},
	} {
		assert.InDelta(t, 1500.0, f.SpeedAt(p, bounds, 1500), 1e-9)
	}
}

func TestSpeedAtInterpolatesCorners(t *testing.T) {
	f := &Field{}
	f.delta[1][0][1] = 0.1 // +x surface corner deviates (z index 1 is z=0)
	bounds := Bounds{MaxX: 1000, MaxY: 1000, MinZ: -500}

	atOrigin := f.SpeedAt(geom.Vec3{X: 0, Y: 0, Z: 0}, bounds, 1500)
	atFarX := f.SpeedAt(geom.Vec3{X: 1000, Y: 0, Z: 0}, bounds, 1500)
	atMid := f.SpeedAt(geom.Vec3{X: 500, Y: 0, Z: 0}, bounds, 1500)

	assert.InDelta(t, 1500.0, atOrigin, 1e-9)
	assert.InDelta(t, 1500.0*1.1, atFarX, 1e-9)
	assert.InDelta(t, (atOrigin+atFarX)/2, atMid, 1e-9)
}

func TestRelaxIsDeterministic(t *testing.T) {
	srcA := randsrc.NewSource(9)
	srcB := randsrc.NewSource(9)
	fa := New(0.1, 0.01, srcA)
	fb := New(0.1, 0.01, srcB)

	for i := 0; i < 20; i++ {
		fa.Relax(0.1, 0.01, srcA)
		fb.Relax(0.1, 0.01, srcB)
	}
	assert.Equal(t, fa.delta, fb.delta)
}

func TestRelaxStaysBounded(t *testing.T) {
	src := randsrc.NewSource(123)
	f := New(0.1, 0.01, src)
	bounds := Bounds{MaxX: 1000, MaxY: 1000, MinZ: -500}
	for i := 0; i < 10000; i++ {
		f.Relax(0.1, 0.01, src)
	}
	speed := f.SpeedAt(geom.Vec3{X: 500, Y: 500, Z: -250}, bounds, 1500)
	assert.InDelta(t, 1500, speed, 200)
}
