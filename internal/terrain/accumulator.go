package terrain

import "math"

// BreakThreshold is the accumulated damage a block must exceed to break.
const BreakThreshold = 1.0

// Record is the partial damage a single cell has taken.
type Record struct {
	Material MaterialID `json:"material"`
	Damage   float64    `json:"damage"`
}

// Accumulator tracks per-cell partial damage and removes blocks once their
// damage passes BreakThreshold. It owns no terrain; every read and write goes
// through the Store.
type Accumulator struct {
	store   Store
	records map[Cell]*Record
}

// NewAccumulator binds an accumulator to store.
func NewAccumulator(store Store) *Accumulator {
	return &Accumulator{store: store, records: make(map[Cell]*Record)}
}

// Damage adds amount to the cell's accumulated damage and reports whether the
// block broke. Air, liquid and indestructible cells are ignored, as are
// non-positive amounts.
func (a *Accumulator) Damage(c Cell, amount float64) bool {
	if a == nil || a.store == nil || math.IsNaN(amount) || amount <= 0 {
		return false
	}
	material := a.store.MaterialAt(c)
	if !material.Breakable() {
		return false
	}

	record, ok := a.records[c]
	if !ok || record.Material != material.ID {
		record = &Record{Material: material.ID}
		a.records[c] = record
	}
	record.Damage += amount
	if record.Damage <= BreakThreshold {
		return false
	}

	delete(a.records, c)
	a.store.SetCell(c, Air)
	return true
}

// Clear removes the block at c outright, as an explosion does, and discards
// any partial damage. Air and indestructible cells are left alone. Liquids
// are cleared.
func (a *Accumulator) Clear(c Cell) bool {
	if a == nil || a.store == nil {
		return false
	}
	material := a.store.MaterialAt(c)
	if material.Empty() || material.Indestructible {
		return false
	}
	delete(a.records, c)
	a.store.SetCell(c, Air)
	return true
}

// Forget drops any partial damage recorded for c. Callers use it when a cell
// is replaced by something other than the accumulator.
func (a *Accumulator) Forget(c Cell) {
	if a == nil {
		return
	}
	delete(a.records, c)
}

// Record returns a copy of the partial damage tracked for c.
func (a *Accumulator) Record(c Cell) (Record, bool) {
	if a == nil {
		return Record{}, false
	}
	record, ok := a.records[c]
	if !ok {
		return Record{}, false
	}
	return *record, true
}

// Len reports how many cells carry partial damage.
func (a *Accumulator) Len() int {
	if a == nil {
		return 0
	}
	return len(a.records)
}

// MaterialYield returns how many block items breaking a cell of the given
// material awards. Only breakable materials yield.
func (a *Accumulator) MaterialYield(id MaterialID) int {
	if a == nil || a.store == nil {
		return 0
	}
	material, ok := a.store.Lookup(id)
	if !ok || !material.Breakable() {
		return 0
	}
	return 1
}
