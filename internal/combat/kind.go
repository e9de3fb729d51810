// Package combat resolves weapon fire, melee swings and explosions against
// terrain and actors.
package combat

// WeaponKind selects how a held item attacks.
type WeaponKind string

const (
	// KindHitscan resolves a single instant ray.
	KindHitscan WeaponKind = "hitscan"
	// KindSpread resolves one ray per pellet offset.
	KindSpread WeaponKind = "spread"
	// KindProjectile launches a travelling projectile that explodes on contact.
	KindProjectile WeaponKind = "projectile"
	// KindMelee resolves a short ray gated by attack rate only.
	KindMelee WeaponKind = "melee"
)

// Valid reports whether k is a known kind.
func (k WeaponKind) Valid() bool {
	switch k {
	case KindHitscan, KindSpread, KindProjectile, KindMelee:
		return true
	default:
		return false
	}
}

// Ranged reports whether k uses ammunition.
func (k WeaponKind) Ranged() bool {
	return k == KindHitscan || k == KindSpread || k == KindProjectile
}
