package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLineTotal(t *testing.T) {
	assert.Equal(t, "25.8", LineTotal(12.90, 2).String())
	assert.Equal(t, "41.7", LineTotal(13.90, 3).String())
	assert.Equal(t, "0", LineTotal(14.90, 0).String())
}

func TestToFloat(t *testing.T) {
	sum := LineTotal(0.1, 1).Add(LineTotal(0.2, 1))
	assert.Equal(t, 0.3, ToFloat(sum))
}

func TestSameAmount(t *testing.T) {
	assert.True(t, SameAmount(25.80, 25.8))
	assert.True(t, SameAmount(0.1+0.2, 0.3))
	assert.False(t, SameAmount(25.80, 25.81))
}
