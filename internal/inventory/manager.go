// Package inventory manages an actor's fixed row of item slots and which of
// them is held.
package inventory

import (
	"voxelfront/server/internal/combat"
	"voxelfront/server/internal/items"
)

// DefaultSize is the slot count used when none is configured.
const DefaultSize = 9

// ToolSlot always holds the default melee tool.
const ToolSlot = 0

// Rejection reasons reported through Hooks.Rejected.
const (
	ReasonToolSlot   = "the default tool cannot be dropped"
	ReasonEmptySlot  = "nothing to drop"
	ReasonFull       = "inventory is full"
	ReasonBadSlot    = "no such slot"
	ReasonNilItem    = "no item"
	ReasonDuplicated = "item is already carried"
)

// Hooks are invoked on inventory transitions. Any may be nil.
type Hooks struct {
	// Changed fires after any slot content changes.
	Changed func()
	// ActiveChanged fires when a different slot becomes active.
	ActiveChanged func(from, to int)
	// Rejected fires with a user-facing reason when an action is refused.
	Rejected func(reason string)
	// WeaponHooks supplies the ammo hooks installed on an item when it is
	// equipped.
	WeaponHooks func(item *items.Item) combat.WeaponHooks
}

// SlotView is a read-only copy of one slot.
type SlotView struct {
	Index    int
	ItemID   string
	Type     string
	Name     string
	Icon     string
	Quantity int
}

// Snapshot is a read-only copy of the whole inventory.
type Snapshot struct {
	Slots   []SlotView
	Active  int
	Version uint64
}

// Manager owns the items in an actor's slots. It is driven from the
// simulation goroutine only.
type Manager struct {
	slots   []*items.Item
	active  int
	version uint64
	hooks   Hooks
}

// NewManager creates an empty inventory with size slots.
func NewManager(size int, hooks Hooks) *Manager {
	if size < 1 {
		size = DefaultSize
	}
	return &Manager{slots: make([]*items.Item, size), hooks: hooks}
}

func (m *Manager) Size() int       { return len(m.slots) }
func (m *Manager) Active() int     { return m.active }
func (m *Manager) Version() uint64 { return m.version }

// Slot returns the item at index, or nil when empty or out of range.
func (m *Manager) Slot(index int) *items.Item {
	if index < 0 || index >= len(m.slots) {
		return nil
	}
	return m.slots[index]
}

// ActiveItem returns the held item, if any.
func (m *Manager) ActiveItem() *items.Item {
	return m.slots[m.active]
}

// Find locates an item by id.
func (m *Manager) Find(itemID string) (int, *items.Item) {
	for i, item := range m.slots {
		if item != nil && item.ID == itemID {
			return i, item
		}
	}
	return -1, nil
}

// FindStack returns the first carried item other can merge into.
func (m *Manager) FindStack(other *items.Item) (int, *items.Item) {
	for i, item := range m.slots {
		if item.Stacks(other) {
			return i, item
		}
	}
	return -1, nil
}

// FindSlotForPickup reports where AddItem would place a new item. A full
// inventory whose active slot is the tool slot has no room.
func (m *Manager) FindSlotForPickup() (int, bool) {
	if m.slots[m.active] == nil {
		return m.active, true
	}
	for i, item := range m.slots {
		if item == nil {
			return i, true
		}
	}
	if m.active == ToolSlot {
		return -1, false
	}
	return m.active, true
}

// AddItem places item in the active slot if it is empty, else the first
// empty slot, else over the active slot. The displaced item is returned for
// the caller to drop into the world.
func (m *Manager) AddItem(item *items.Item) (slot int, evicted *items.Item, ok bool) {
	if item == nil {
		m.reject(ReasonNilItem)
		return -1, nil, false
	}
	if idx, _ := m.Find(item.ID); idx >= 0 {
		m.reject(ReasonDuplicated)
		return -1, nil, false
	}
	slot, ok = m.FindSlotForPickup()
	if !ok {
		m.reject(ReasonFull)
		return -1, nil, false
	}
	if evicted = m.slots[slot]; evicted != nil {
		evicted.Unequip()
	}
	m.slots[slot] = item
	m.changed()
	m.SetActiveSlot(m.active)
	return slot, evicted, true
}

// SetActiveSlot switches the held slot. Selecting the active slot again
// re-equips its item, which is how newly added items get equipped.
func (m *Manager) SetActiveSlot(index int) bool {
	if index < 0 || index >= len(m.slots) {
		m.reject(ReasonBadSlot)
		return false
	}
	previous := m.active
	if index != previous {
		if current := m.slots[previous]; current != nil {
			current.Unequip()
		}
	}
	m.active = index
	if next := m.slots[index]; next != nil {
		next.Equip(m.weaponHooks(next))
	}
	if index != previous && m.hooks.ActiveChanged != nil {
		m.hooks.ActiveChanged(previous, index)
	}
	return true
}

// DropActive detaches the held item. The tool slot can never be emptied.
func (m *Manager) DropActive() (*items.Item, bool) {
	if m.active == ToolSlot {
		m.reject(ReasonToolSlot)
		return nil, false
	}
	item := m.slots[m.active]
	if item == nil {
		m.reject(ReasonEmptySlot)
		return nil, false
	}
	item.Unequip()
	m.slots[m.active] = nil
	m.changed()
	return item, true
}

// Changed records an in-place change to a carried item, such as a stack
// growing.
func (m *Manager) Changed() {
	m.changed()
}

// UnequipAll stows every item. Used when the owner leaves or is defeated.
func (m *Manager) UnequipAll() {
	for _, item := range m.slots {
		if item != nil {
			item.Unequip()
		}
	}
}

// Snapshot copies the slot contents.
func (m *Manager) Snapshot() Snapshot {
	snap := Snapshot{Slots: make([]SlotView, len(m.slots)), Active: m.active, Version: m.version}
	for i, item := range m.slots {
		view := SlotView{Index: i}
		if item != nil {
			view.ItemID = item.ID
			view.Type = item.Type
			view.Name = item.Name
			view.Icon = item.Icon
			view.Quantity = item.Quantity
		}
		snap.Slots[i] = view
	}
	return snap
}

func (m *Manager) weaponHooks(item *items.Item) combat.WeaponHooks {
	if m.hooks.WeaponHooks == nil {
		return combat.WeaponHooks{}
	}
	return m.hooks.WeaponHooks(item)
}

func (m *Manager) changed() {
	m.version++
	if m.hooks.Changed != nil {
		m.hooks.Changed()
	}
}

func (m *Manager) reject(reason string) {
	if m.hooks.Rejected != nil {
		m.hooks.Rejected(reason)
	}
}
