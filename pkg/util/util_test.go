package util

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoundFloat(t *testing.T) {
	assert.Equal(t, 110.369501, RoundFloat(110.3695012345, 6))
	assert.Equal(t, -7.8, RoundFloat(-7.7956, 1))
	assert.Equal(t, 3.0, RoundFloat(2.5, 0))
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 0.0, Clamp(-0.5, 0, 1))
	assert.Equal(t, 1.0, Clamp(1.5, 0, 1))
	assert.Equal(t, 0.25, Clamp(0.25, 0, 1))
	assert.Equal(t, 22, Clamp(30, 0, 22))
	assert.True(t, math.IsNaN(Clamp(math.NaN(), 0, 1)))
}
