// Package terrain models the voxel grid and the partial-damage bookkeeping
// that decides when a cell breaks.
package terrain

import (
	"fmt"
	"math"

	"voxelfront/server/internal/vmath"
)

// Cell addresses a single unit voxel by its integer coordinates.
type Cell struct {
	X int `json:"x" msgpack:"x"`
	Y int `json:"y" msgpack:"y"`
	Z int `json:"z" msgpack:"z"`
}

// CellAt returns the cell containing the world-space point p.
func CellAt(p vmath.Vec3) Cell {
	return Cell{
		X: int(math.Floor(p.X)),
		Y: int(math.Floor(p.Y)),
		Z: int(math.Floor(p.Z)),
	}
}

// Offset returns the cell displaced by the given deltas.
func (c Cell) Offset(dx, dy, dz int) Cell {
	return Cell{X: c.X + dx, Y: c.Y + dy, Z: c.Z + dz}
}

// Center returns the world-space midpoint of the cell.
func (c Cell) Center() vmath.Vec3 {
	return vmath.New(float64(c.X)+0.5, float64(c.Y)+0.5, float64(c.Z)+0.5)
}

func (c Cell) String() string {
	return fmt.Sprintf("(%d,%d,%d)", c.X, c.Y, c.Z)
}
