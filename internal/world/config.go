package world

import (
	"strings"
	"time"
)

const (
	DefaultSeed          = "voxelfront"
	DefaultExtent        = 24
	DefaultPillars       = 12
	DefaultInventorySize = 9
	DefaultMaxHealth     = 5.0
)

// Config tunes arena generation and actor defaults.
type Config struct {
	Seed          string   `json:"seed"`
	Extent        int      `json:"extent"`
	Pillars       int      `json:"pillars"`
	InventorySize int      `json:"inventorySize"`
	MaxHealth     float64  `json:"maxHealth"`
	StartArmor    float64  `json:"startArmor"`
	Loadout       []string `json:"loadout"` // nil selects the default loadout

	ActorRadius float64 `json:"actorRadius"`
	ActorMass   float64 `json:"actorMass"`
	EyeOffset   float64 `json:"eyeOffset"`

	DropImpulse float64 `json:"dropImpulse"`
	DropOffset  float64 `json:"dropOffset"`
	PickupRange float64 `json:"pickupRange"`

	EffectFadeStep     float64       `json:"effectFadeStep"`
	EffectFadeInterval time.Duration `json:"effectFadeInterval"`
	MuzzleFlash        time.Duration `json:"muzzleFlash"`
}

// DefaultConfig returns the arena used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		Seed:               DefaultSeed,
		Extent:             DefaultExtent,
		Pillars:            DefaultPillars,
		InventorySize:      DefaultInventorySize,
		MaxHealth:          DefaultMaxHealth,
		Loadout:            []string{"rifle", "shotgun", "rocket_launcher"},
		ActorRadius:        0.4,
		ActorMass:          80,
		EyeOffset:          0.6,
		DropImpulse:        3,
		DropOffset:         0.8,
		PickupRange:        2.5,
		EffectFadeStep:     0.25,
		EffectFadeInterval: 100 * time.Millisecond,
		MuzzleFlash:        60 * time.Millisecond,
	}
}

func (cfg Config) normalized() Config {
	defaults := DefaultConfig()
	normalized := cfg
	normalized.Seed = strings.TrimSpace(normalized.Seed)
	if normalized.Seed == "" {
		normalized.Seed = defaults.Seed
	}
	if normalized.Extent <= 0 {
		normalized.Extent = defaults.Extent
	}
	if normalized.Pillars < 0 {
		normalized.Pillars = 0
	}
	if normalized.Loadout == nil {
		normalized.Loadout = defaults.Loadout
	}
	if normalized.InventorySize <= 0 {
		normalized.InventorySize = defaults.InventorySize
	}
	if normalized.MaxHealth <= 0 {
		normalized.MaxHealth = defaults.MaxHealth
	}
	if normalized.StartArmor < 0 {
		normalized.StartArmor = 0
	}
	if normalized.ActorRadius <= 0 {
		normalized.ActorRadius = defaults.ActorRadius
	}
	if normalized.ActorMass <= 0 {
		normalized.ActorMass = defaults.ActorMass
	}
	if normalized.EyeOffset < 0 {
		normalized.EyeOffset = 0
	}
	if normalized.DropImpulse < 0 {
		normalized.DropImpulse = 0
	}
	if normalized.DropOffset <= 0 {
		normalized.DropOffset = defaults.DropOffset
	}
	if normalized.PickupRange <= 0 {
		normalized.PickupRange = defaults.PickupRange
	}
	if normalized.EffectFadeStep <= 0 {
		normalized.EffectFadeStep = defaults.EffectFadeStep
	}
	if normalized.EffectFadeInterval <= 0 {
		normalized.EffectFadeInterval = defaults.EffectFadeInterval
	}
	if normalized.MuzzleFlash <= 0 {
		normalized.MuzzleFlash = defaults.MuzzleFlash
	}
	return normalized
}

// Normalized replaces unset sizes and timings with defaults. Pillars,
// StartArmor, EyeOffset and DropImpulse may legitimately be zero and are only
// clamped to be non-negative.
func (cfg Config) Normalized() Config {
	return cfg.normalized()
}
