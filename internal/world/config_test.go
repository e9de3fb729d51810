package world

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNormalizedFillsUnsetValues(t *testing.T) {
	cfg := Config{Seed: "  ", EffectFadeInterval: -time.Second}.Normalized()
	defaults := DefaultConfig()

	assert.Equal(t, DefaultSeed, cfg.Seed)
	assert.Equal(t, DefaultExtent, cfg.Extent)
	assert.Equal(t, defaults.Loadout, cfg.Loadout)
	assert.Equal(t, defaults.ActorRadius, cfg.ActorRadius)
	assert.Equal(t, defaults.EffectFadeInterval, cfg.EffectFadeInterval)
}

func TestNormalizedKeepsZeroableFields(t *testing.T) {
	cfg := Config{Pillars: -3, StartArmor: -1, EyeOffset: 0, DropImpulse: -2}.Normalized()
	assert.Zero(t, cfg.Pillars)
	assert.Zero(t, cfg.StartArmor)
	assert.Zero(t, cfg.EyeOffset)
	assert.Zero(t, cfg.DropImpulse)

	eye := DefaultConfig()
	assert.Equal(t, 0.6, eye.Normalized().EyeOffset)
}
