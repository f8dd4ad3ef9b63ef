package randsrc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSourceDeterministic(t *testing.T) {
	a := NewSource(42)
	b := NewSource(42)
	for i := 0; i < 50; i++ {
		assert.Equal(t, a.Uniform(0, 1), b.Uniform(0, 1))
		assert.Equal(t, a.Normal(), b.Normal())
	}
}

func TestSourceSubIsOrderSensitive(t *testing.T) {
	parent1 := NewSource(7)
	c1 := parent1.Sub()
	c2 := parent1.Sub()

	parent2 := NewSource(7)
	d1 := parent2.Sub()
	d2 := parent2.Sub()

	assert.Equal(t, c1.Uniform(0, 1), d1.Uniform(0, 1))
	assert.Equal(t, c2.Uniform(0, 1), d2.Uniform(0, 1))
	assert.NotEqual(t, c1.Uniform(0, 1), c2.Uniform(0, 1))
}

func TestUniformRange(t *testing.T) {
	s := NewSource(1)
	for i := 0; i < 1000; i++ {
		v := s.Uniform(-5, 5)
		assert.True(t, v >= -5 && v < 5)
	}
}
