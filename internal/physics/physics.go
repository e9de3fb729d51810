// Package physics provides the ray queries and rigid-body impulses that
// combat resolution depends on, plus a minimal in-process implementation
// backed by the voxel grid.
package physics

import (
	"voxelfront/server/internal/terrain"
	"voxelfront/server/internal/vmath"
)

// RayHit is the closest thing a ray struck.
type RayHit struct {
	// Body is set when the ray struck an actor body.
	Body     string
	Cell     terrain.Cell
	Material terrain.MaterialID
	Point    vmath.Vec3
	Normal   vmath.Vec3
	Distance float64
}

// Terrain reports whether the ray struck a terrain cell.
func (h RayHit) Terrain() bool {
	return h.Body == ""
}

// Transform is an actor's pose.
type Transform struct {
	Position vmath.Vec3
	Facing   vmath.Vec3
}

// Raycaster answers segment queries against terrain and actor bodies.
type Raycaster interface {
	// Raycast follows direction from origin for at most maxDistance and
	// reports the nearest solid cell or actor body, skipping exclude.
	Raycast(origin, direction vmath.Vec3, maxDistance float64, exclude string) (RayHit, bool)
}

// Bodies exposes the rigid-body state combat reads and nudges.
type Bodies interface {
	Transform(id string) (Transform, bool)
	Mass(id string) float64
	ApplyImpulse(id string, impulse vmath.Vec3)
}

// Physics is the full collaborator surface used by hit resolution.
type Physics interface {
	Raycaster
	Bodies
}
