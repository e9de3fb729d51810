package physics

import (
	"math"

	"voxelfront/server/internal/terrain"
	"voxelfront/server/internal/vmath"
)

const maxRaySteps = 1 << 20

// Raycast implements Raycaster. Liquid cells and prop bodies do not stop the
// ray.
func (s *Space) Raycast(origin, direction vmath.Vec3, maxDistance float64, exclude string) (RayHit, bool) {
	if s == nil || !(maxDistance > 0) || math.IsInf(maxDistance, 1) || !origin.Finite() {
		return RayHit{}, false
	}
	dir := direction.Normalize()
	if dir.IsZero() {
		return RayHit{}, false
	}

	best, found := s.raycastTerrain(origin, dir, maxDistance)
	for _, id := range s.order {
		body := s.bodies[id]
		if body.Kind != BodyActor || id == exclude {
			continue
		}
		t, ok := intersectSphere(origin, dir, body.Position, body.Radius)
		if !ok || t > maxDistance {
			continue
		}
		if found && t >= best.Distance {
			continue
		}
		point := origin.Add(dir.Scale(t))
		normal := point.Sub(body.Position).Normalize()
		if normal.IsZero() {
			normal = dir.Neg()
		}
		best = RayHit{Body: id, Point: point, Normal: normal, Distance: t}
		found = true
	}
	return best, found
}

// raycastTerrain walks the voxel grid cell by cell along dir. A ray within
// maxDistance crosses at most ceil(maxDistance)+1 cells per axis, so the walk
// is capped at that many steps.
func (s *Space) raycastTerrain(origin, dir vmath.Vec3, maxDistance float64) (RayHit, bool) {
	if s.terrain == nil {
		return RayHit{}, false
	}
	cell := terrain.CellAt(origin)
	if m := s.terrain.MaterialAt(cell); m.Solid() {
		return RayHit{Cell: cell, Material: m.ID, Point: origin, Normal: dir.Neg(), Distance: 0}, true
	}

	stepX, tMaxX, tDeltaX := traversalAxis(origin.X, dir.X, cell.X)
	stepY, tMaxY, tDeltaY := traversalAxis(origin.Y, dir.Y, cell.Y)
	stepZ, tMaxZ, tDeltaZ := traversalAxis(origin.Z, dir.Z, cell.Z)

	maxSteps := int(min(math.Ceil(maxDistance)*3+3, maxRaySteps))
	for step := 0; step < maxSteps; step++ {
		var t float64
		var normal vmath.Vec3
		switch {
		case tMaxX <= tMaxY && tMaxX <= tMaxZ:
			t = tMaxX
			cell.X += stepX
			tMaxX += tDeltaX
			normal = vmath.New(float64(-stepX), 0, 0)
		case tMaxY <= tMaxZ:
			t = tMaxY
			cell.Y += stepY
			tMaxY += tDeltaY
			normal = vmath.New(0, float64(-stepY), 0)
		default:
			t = tMaxZ
			cell.Z += stepZ
			tMaxZ += tDeltaZ
			normal = vmath.New(0, 0, float64(-stepZ))
		}
		if t > maxDistance || math.IsInf(t, 1) {
			return RayHit{}, false
		}
		if m := s.terrain.MaterialAt(cell); m.Solid() {
			return RayHit{
				Cell:     cell,
				Material: m.ID,
				Point:    origin.Add(dir.Scale(t)),
				Normal:   normal,
				Distance: t,
			}, true
		}
	}
	return RayHit{}, false
}

func traversalAxis(origin, dir float64, cell int) (step int, tMax, tDelta float64) {
	switch {
	case dir > 0:
		return 1, (float64(cell+1) - origin) / dir, 1 / dir
	case dir < 0:
		return -1, (float64(cell) - origin) / dir, -1 / dir
	default:
		return 0, math.Inf(1), math.Inf(1)
	}
}

// intersectSphere returns the entry distance of a unit-direction ray into a
// sphere. Rays starting inside the sphere hit at distance zero.
func intersectSphere(origin, dir, center vmath.Vec3, radius float64) (float64, bool) {
	if radius <= 0 {
		return 0, false
	}
	m := origin.Sub(center)
	b := m.Dot(dir)
	c := m.LenSq() - radius*radius
	if c > 0 && b > 0 {
		return 0, false
	}
	disc := b*b - c
	if disc < 0 {
		return 0, false
	}
	t := -b - math.Sqrt(disc)
	if t < 0 {
		t = 0
	}
	return t, true
}
