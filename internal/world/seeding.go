package world

import (
	"math"
	"math/rand"

	"voxelfront/server/internal/terrain"
	"voxelfront/server/internal/vmath"
)

const (
	bedrockLayer = 0
	stoneTop     = 3
	dirtLayer    = 4
	grassLayer   = 5
	skyLimit     = 16

	// arenaMargin is how far outside the generated ground a pose may sit.
	arenaMargin = 8
)

// palette resolves the materials arena generation uses by name. Missing
// names resolve to air and their layers are skipped.
type palette map[string]terrain.MaterialID

func newPalette(materials []terrain.Material) palette {
	p := make(palette, len(materials))
	for _, m := range materials {
		p[m.Name] = m.ID
	}
	return p
}

func (p palette) fill(grid *terrain.Grid, name string, min, max terrain.Cell) {
	if id, ok := p[name]; ok {
		grid.Fill(min, max, id)
	}
}

// seedTerrain lays out a square arena of layered ground with a pond and
// scattered wooden pillars. The layout is deterministic for a given rng.
func seedTerrain(grid *terrain.Grid, p palette, extent, pillars int, rng *rand.Rand) {
	lo, hi := -extent, extent-1
	p.fill(grid, "bedrock", terrain.Cell{X: lo, Y: bedrockLayer, Z: lo}, terrain.Cell{X: hi, Y: bedrockLayer, Z: hi})
	p.fill(grid, "stone", terrain.Cell{X: lo, Y: bedrockLayer + 1, Z: lo}, terrain.Cell{X: hi, Y: stoneTop, Z: hi})
	p.fill(grid, "dirt", terrain.Cell{X: lo, Y: dirtLayer, Z: lo}, terrain.Cell{X: hi, Y: dirtLayer, Z: hi})
	p.fill(grid, "grass", terrain.Cell{X: lo, Y: grassLayer, Z: lo}, terrain.Cell{X: hi, Y: grassLayer, Z: hi})

	if extent >= 8 {
		pond := RandomInt(rng, lo+2, hi-5)
		p.fill(grid, "water", terrain.Cell{X: pond, Y: dirtLayer, Z: pond}, terrain.Cell{X: pond + 2, Y: grassLayer, Z: pond + 2})
	}

	for i := 0; i < pillars; i++ {
		x := RandomInt(rng, lo+1, hi-1)
		z := RandomInt(rng, lo+1, hi-1)
		height := RandomInt(rng, 2, 5)
		p.fill(grid, "wood", terrain.Cell{X: x, Y: grassLayer + 1, Z: z}, terrain.Cell{X: x, Y: grassLayer + height, Z: z})
	}
}

// surfaceAt returns the height of the first free cell above solid ground in
// the column at x, z.
func surfaceAt(store terrain.Store, x, z int) float64 {
	for y := skyLimit; y >= bedrockLayer; y-- {
		if store.MaterialAt(terrain.Cell{X: x, Y: y, Z: z}).Solid() {
			return float64(y + 1)
		}
	}
	return float64(grassLayer + 1)
}

// spawnPosition picks a column inside the arena and returns a body centre
// resting on top of it.
func spawnPosition(store terrain.Store, extent int, radius float64, rng *rand.Rand) vmath.Vec3 {
	margin := min(2, extent-1)
	x := RandomInt(rng, -extent+margin, extent-1-margin)
	z := RandomInt(rng, -extent+margin, extent-1-margin)
	return vmath.New(float64(x)+0.5, surfaceAt(store, x, z)+radius, float64(z)+0.5)
}

// inArena reports whether position lies within the generated arena plus
// arenaMargin on every side.
func (w *World) inArena(position vmath.Vec3) bool {
	reach := float64(w.config.Extent + arenaMargin)
	return math.Abs(position.X) <= reach && math.Abs(position.Z) <= reach &&
		position.Y >= bedrockLayer-arenaMargin && position.Y <= skyLimit+arenaMargin
}
