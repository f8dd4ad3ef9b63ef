package node

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseWellFormed(t *testing.T) {
	env, ok := Parse("anchor0 beacon 3 250.5 -100.25 0.001")
	assert.True(t, ok)
	assert.Equal(t, "anchor0", env.Sender)
	assert.Equal(t, "beacon", env.Verb)
	assert.Equal(t, []string{"3", "250.5", "-100.25", "0.001"}, env.Fields)
}

func TestParseRejectsMalformed(t *testing.T) {
	_, ok := Parse("")
	assert.False(t, ok)

	_, ok = Parse("onlysender")
	assert.False(t, ok)
}

func TestFormatParseRoundTrip(t *testing.T) {
	line := Format("sensor3", "position", FormatFloats(250.123456789, -100.5, 0)...)
	env, ok := Parse(line)
	assert.True(t, ok)
	assert.Equal(t, "sensor3", env.Sender)
	assert.Equal(t, "position", env.Verb)

	x, err := ParseFloat(env.Fields[0])
	assert.NoError(t, err)
	assert.Equal(t, 250.123456789, x)
}

func TestFloatRoundTripIsLossless(t *testing.T) {
	values := []float64{0, -0.0001, 1500.0, 3.14159265358979, -999999.999999, 1.0 / 3.0}
	for _, v := range values {
		s := FormatFloat(v)
		got, err := ParseFloat(s)
		assert.NoError(t, err)
		assert.Equal(t, v, got)
	}
}

func TestUnknownVerbParsesButIsCallerIgnored(t *testing.T) {
	env, ok := Parse("node-1 unknownverb 1 2 3")
	assert.True(t, ok)
	assert.Equal(t, "unknownverb", env.Verb)
}
