package terrain

// MaterialID identifies a block material. Zero is empty space.
type MaterialID uint16

// Air is the empty material.
const Air MaterialID = 0

// Material describes how a block reacts to damage.
type Material struct {
	ID             MaterialID `json:"id" yaml:"id"`
	Name           string     `json:"name" yaml:"name"`
	Liquid         bool       `json:"liquid,omitempty" yaml:"liquid"`
	Indestructible bool       `json:"indestructible,omitempty" yaml:"indestructible"`
}

// Empty reports whether the material is air.
func (m Material) Empty() bool {
	return m.ID == Air
}

// Breakable reports whether damage can ever remove the block.
func (m Material) Breakable() bool {
	return !m.Empty() && !m.Liquid && !m.Indestructible
}

// Solid reports whether rays and bodies collide with the block.
func (m Material) Solid() bool {
	return !m.Empty() && !m.Liquid
}

// Store is the grid contract the damage accumulator and physics rely on.
type Store interface {
	// MaterialAt returns the material occupying c. Unset cells are air.
	MaterialAt(c Cell) Material
	// Lookup resolves a material by id.
	Lookup(id MaterialID) (Material, bool)
	// SetCell replaces the block at c.
	SetCell(c Cell, id MaterialID)
}
