package world

import (
	"github.com/yohamta/donburi"

	"voxelfront/server/internal/combat"
	"voxelfront/server/internal/inventory"
	"voxelfront/server/internal/items"
	"voxelfront/server/internal/schedule"
	"voxelfront/server/internal/vmath"
)

// ObjectKind tags every entity the world tracks.
type ObjectKind string

const (
	KindActor      ObjectKind = "actor"
	KindProjectile ObjectKind = "projectile"
	KindGroundItem ObjectKind = "ground_item"
	KindEffect     ObjectKind = "effect"
)

// IdentityData names an entity. The id is also its physics body id.
type IdentityData struct {
	ID   string
	Kind ObjectKind
}

// VitalsData holds an actor's health and armor.
type VitalsData struct {
	Health    float64
	MaxHealth float64
	Armor     float64
	Defeated  bool
}

// LoadoutData holds an actor's inventory and the generation guarding its
// muzzle flash cue.
type LoadoutData struct {
	Inventory *inventory.Manager
	Muzzle    *schedule.Generation
	Flashing  bool
}

// ProjectileData is a travelling projectile.
type ProjectileData struct {
	Launch   combat.ProjectileLaunch
	Position vmath.Vec3
	Life     *schedule.Generation
}

// GroundItemData is an item lying in the world. Its position lives on the
// matching physics prop body.
type GroundItemData struct {
	Item     *items.Item
	Reported vmath.Vec3
}

// EffectData is a fading visual effect.
type EffectData struct {
	Kind     string
	Position vmath.Vec3
	Radius   float64
	Opacity  float64
	Life     *schedule.Generation
}

var (
	Identity   = donburi.NewComponentType[IdentityData]()
	Vitals     = donburi.NewComponentType[VitalsData]()
	Loadout    = donburi.NewComponentType[LoadoutData]()
	Projectile = donburi.NewComponentType[ProjectileData]()
	GroundItem = donburi.NewComponentType[GroundItemData]()
	Effect     = donburi.NewComponentType[EffectData]()
)
