package world

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeterministicRNGIsStablePerLabel(t *testing.T) {
	a := NewDeterministicRNG("arena", "terrain")
	b := NewDeterministicRNG("arena", "terrain")
	for i := 0; i < 8; i++ {
		assert.Equal(t, a.Int63(), b.Int63())
	}
	assert.NotEqual(t, DeterministicSeedValue("arena", "terrain"), DeterministicSeedValue("arena", "world"))
	assert.NotEqual(t, DeterministicSeedValue("arena", "terrain"), DeterministicSeedValue("arenat", "errain"))
}

func TestRandomIntStaysInRange(t *testing.T) {
	rng := NewDeterministicRNG("range", "test")
	for i := 0; i < 100; i++ {
		v := RandomInt(rng, -3, 4)
		assert.GreaterOrEqual(t, v, -3)
		assert.LessOrEqual(t, v, 4)
	}
	assert.Equal(t, 5, RandomInt(rng, 5, 5))
	assert.Equal(t, 5, RandomInt(rng, 5, 2))
}
