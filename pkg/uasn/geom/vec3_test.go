package geom

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVec3Arithmetic(t *testing.T) {
	a := Vec3{1, 2, 3}
	b := Vec3{4, -1, 2}

	assert.Equal(t, Vec3{5, 1, 5}, a.Add(b))
	assert.Equal(t, Vec3{-3, 3, 1}, a.Sub(b))
	assert.Equal(t, Vec3{2, 4, 6}, a.Scale(2))
	assert.InDelta(t, 1*4+2*-1+3*2, a.Dot(b), 1e-12)
}

func TestVec3Cross(t *testing.T) {
	x := Vec3{1, 0, 0}
	y := Vec3{0, 1, 0}
	assert.Equal(t, Vec3{0, 0, 1}, x.Cross(y))
}

func TestVec3Norm(t *testing.T) {
	v := Vec3{3, 4, 0}
	assert.InDelta(t, 5, v.Norm(), 1e-12)
}

func TestDistance(t *testing.T) {
	assert.InDelta(t, 5, Distance(Vec3{0, 0, 0}, Vec3{3, 4, 0}), 1e-12)
	assert.InDelta(t, 0, Distance(Vec3{1, 1, 1}, Vec3{1, 1, 1}), 1e-12)
}

func TestVec3InBounds(t *testing.T) {
	v := Vec3{500, 250, -100}
	assert.True(t, v.InBounds(1000, 1000, -500))
	assert.False(t, v.InBounds(1000, 1000, -50))
	assert.False(t, Vec3{-1, 0, 0}.InBounds(1000, 1000, -500))
}
