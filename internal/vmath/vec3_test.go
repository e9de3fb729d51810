package vmath

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeProducesUnitLength(t *testing.T) {
	v := New(3, 4, 12).Normalize()
	assert.InDelta(t, 1.0, v.Len(), 1e-12)
	assert.True(t, v.ApproxEqual(New(3.0/13, 4.0/13, 12.0/13), 1e-12))
}

func TestNormalizeZeroVectorStaysZero(t *testing.T) {
	assert.Equal(t, Zero, Zero.Normalize())
	assert.True(t, New(1e-12, 0, 0).Normalize().IsZero())
}

func TestArithmetic(t *testing.T) {
	a := New(1, 2, 3)
	b := New(-2, 0.5, 4)
	assert.Equal(t, New(-1, 2.5, 7), a.Add(b))
	assert.Equal(t, New(3, 1.5, -1), a.Sub(b))
	assert.Equal(t, New(2, 4, 6), a.Scale(2))
	assert.Equal(t, New(-1, -2, -3), a.Neg())
	assert.InDelta(t, 11.0, a.Dot(b), 1e-12)
	assert.InDelta(t, 5.0, New(0, 0, 0).Dist(New(3, 4, 0)), 1e-12)
}

func TestFinite(t *testing.T) {
	assert.True(t, New(1, 2, 3).Finite())
	assert.False(t, New(math.NaN(), 0, 0).Finite())
	assert.False(t, New(0, math.Inf(1), 0).Finite())
}
