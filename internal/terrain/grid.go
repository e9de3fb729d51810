package terrain

import (
	"github.com/samber/oops"
)

// ErrCodeInvalidMaterial tags palette validation failures.
const ErrCodeInvalidMaterial = "INVALID_MATERIAL"

// Change describes a single block replacement.
type Change struct {
	Cell Cell       `json:"cell" msgpack:"cell"`
	From MaterialID `json:"from" msgpack:"from"`
	To   MaterialID `json:"to" msgpack:"to"`
}

// Grid is a sparse in-memory voxel store. Unset cells are air.
type Grid struct {
	palette  map[MaterialID]Material
	cells    map[Cell]MaterialID
	observer func(Change)
}

// NewGrid builds a grid over the given material palette. Air is always
// present and may not be redefined.
func NewGrid(materials []Material) (*Grid, error) {
	palette := map[MaterialID]Material{Air: {ID: Air, Name: "air"}}
	for _, m := range materials {
		if m.ID == Air {
			return nil, oops.Code(ErrCodeInvalidMaterial).
				With("name", m.Name).
				Errorf("material id 0 is reserved for air")
		}
		if _, exists := palette[m.ID]; exists {
			return nil, oops.Code(ErrCodeInvalidMaterial).
				With("id", m.ID).
				Errorf("duplicate material id %d", m.ID)
		}
		palette[m.ID] = m
	}
	return &Grid{palette: palette, cells: make(map[Cell]MaterialID)}, nil
}

// Observe registers fn to receive every block change. A nil fn detaches the
// current observer.
func (g *Grid) Observe(fn func(Change)) {
	if g == nil {
		return
	}
	g.observer = fn
}

// Lookup resolves a material by id.
func (g *Grid) Lookup(id MaterialID) (Material, bool) {
	if g == nil {
		return Material{}, false
	}
	m, ok := g.palette[id]
	return m, ok
}

// MaterialAt returns the material at c.
func (g *Grid) MaterialAt(c Cell) Material {
	if g == nil {
		return Material{}
	}
	id, ok := g.cells[c]
	if !ok {
		return g.palette[Air]
	}
	if m, ok := g.palette[id]; ok {
		return m
	}
	return Material{ID: id}
}

// SetCell replaces the block at c. Indestructible blocks never change and
// writes that would not alter the cell are dropped.
func (g *Grid) SetCell(c Cell, id MaterialID) {
	if g == nil {
		return
	}
	current := g.MaterialAt(c)
	if current.Indestructible || current.ID == id {
		return
	}
	if id == Air {
		delete(g.cells, c)
	} else {
		g.cells[c] = id
	}
	if g.observer != nil {
		g.observer(Change{Cell: c, From: current.ID, To: id})
	}
}

// Fill sets every cell in the inclusive box spanned by min and max.
func (g *Grid) Fill(min, max Cell, id MaterialID) {
	for x := min.X; x <= max.X; x++ {
		for y := min.Y; y <= max.Y; y++ {
			for z := min.Z; z <= max.Z; z++ {
				g.SetCell(Cell{X: x, Y: y, Z: z}, id)
			}
		}
	}
}

// Len reports the number of non-air cells.
func (g *Grid) Len() int {
	if g == nil {
		return 0
	}
	return len(g.cells)
}
