package combat

import "voxelfront/server/internal/vmath"

// PelletOffset perturbs a spread pellet's direction.
type PelletOffset struct {
	DX float64 `json:"dx" yaml:"dx"`
	DY float64 `json:"dy" yaml:"dy"`
}

// DefaultPellets is the seven-pellet pattern used by spread weapons that do
// not configure their own.
var DefaultPellets = []PelletOffset{
	{DX: 0, DY: 0},
	{DX: 0.05, DY: 0.05},
	{DX: -0.05, DY: 0.05},
	{DX: 0.07, DY: 0},
	{DX: -0.07, DY: 0},
	{DX: 0.05, DY: -0.05},
	{DX: -0.05, DY: -0.05},
}

// PelletDirection applies offset to dir as {x + z*dx, y + dy, z - x*dx} and
// renormalizes. This is an additive skew, not a rotation about the aim axis,
// so pellets fired near vertical cluster tighter horizontally.
func PelletDirection(dir vmath.Vec3, offset PelletOffset) vmath.Vec3 {
	return vmath.Vec3{
		X: dir.X + dir.Z*offset.DX,
		Y: dir.Y + offset.DY,
		Z: dir.Z - dir.X*offset.DX,
	}.Normalize()
}
