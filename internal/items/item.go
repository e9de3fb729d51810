// Package items defines equippable items and builds them from a catalog of
// item definitions.
package items

import (
	"voxelfront/server/internal/combat"
	"voxelfront/server/internal/terrain"
)

// Unlimited marks an item whose quantity is not tracked.
const Unlimited = -1

// Hand names which hand holds an item.
type Hand string

const (
	HandRight Hand = "right"
	HandLeft  Hand = "left"
	HandBoth  Hand = "both"
)

// Pose is the held pose an equipped item puts the actor in.
type Pose string

const (
	PoseStowed Pose = "stowed"
	PoseHeld   Pose = "held"
)

// Item is a single owned object. It lives either in one inventory slot or
// on the ground, never both.
type Item struct {
	ID              string
	Type            string
	Name            string
	Icon            string
	Model           string
	Hand            Hand
	IdleAnimation   string
	AttackAnimation string
	Mass            float64
	Quantity        int
	Kind            combat.WeaponKind
	Material        terrain.MaterialID

	Weapon *combat.Weapon
	Melee  *combat.Melee

	pose      Pose
	animation string
	zoomed    bool
}

// Block reports whether the item is a placeable block stack.
func (i *Item) Block() bool {
	return i.Material != terrain.Air
}

// Stackable reports whether other items of the same kind merge into this one.
func (i *Item) Stackable() bool {
	return i.Block() && i.Quantity != Unlimited
}

// Stacks reports whether other can be merged into i.
func (i *Item) Stacks(other *Item) bool {
	if i == nil || other == nil || !i.Stackable() || !other.Stackable() {
		return false
	}
	return i.Type == other.Type && i.Material == other.Material
}

// AddQuantity grows a tracked stack. Unlimited items are unchanged.
func (i *Item) AddQuantity(n int) {
	if i.Quantity == Unlimited || n <= 0 {
		return
	}
	i.Quantity += n
}

func (i *Item) Pose() Pose {
	if i.pose == "" {
		return PoseStowed
	}
	return i.pose
}

func (i *Item) Animation() string { return i.animation }
func (i *Item) Zoomed() bool      { return i.zoomed }

// Equipped reports whether the item is currently held.
func (i *Item) Equipped() bool {
	return i.pose == PoseHeld
}

// Equip puts the item in hand. Weapons start receiving ammo hooks; calling
// Equip on a held item only refreshes the hooks.
func (i *Item) Equip(hooks combat.WeaponHooks) {
	i.pose = PoseHeld
	i.animation = i.IdleAnimation
	i.zoomed = false
	switch {
	case i.Weapon != nil:
		i.Weapon.Equip(hooks)
	case i.Melee != nil:
		i.Melee.Equip()
	}
}

// Unequip stows the item, resets zoom and cancels any reload in flight.
func (i *Item) Unequip() {
	if i.pose != PoseHeld {
		return
	}
	i.pose = PoseStowed
	i.animation = ""
	i.zoomed = false
	switch {
	case i.Weapon != nil:
		i.Weapon.Unequip()
	case i.Melee != nil:
		i.Melee.Unequip()
	}
}

// PlayAttack switches the held animation to the attack clip.
func (i *Item) PlayAttack() {
	if i.Equipped() && i.AttackAnimation != "" {
		i.animation = i.AttackAnimation
	}
}

// SetZoom toggles aim zoom on a held ranged weapon.
func (i *Item) SetZoom(zoomed bool) bool {
	if !i.Equipped() || i.Weapon == nil {
		return false
	}
	i.zoomed = zoomed
	return true
}
