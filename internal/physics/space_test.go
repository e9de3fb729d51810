package physics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voxelfront/server/internal/terrain"
	"voxelfront/server/internal/vmath"
)

const stone terrain.MaterialID = 1

func newSpace(t *testing.T) (*Space, *terrain.Grid) {
	t.Helper()
	grid, err := terrain.NewGrid([]terrain.Material{
		{ID: stone, Name: "stone"},
		{ID: 2, Name: "water", Liquid: true},
	})
	require.NoError(t, err)
	return NewSpace(grid, DefaultSpaceConfig()), grid
}

func TestRaycastHitsFirstSolidCell(t *testing.T) {
	space, grid := newSpace(t)
	grid.SetCell(terrain.Cell{X: 5, Y: 0, Z: 0}, stone)
	grid.SetCell(terrain.Cell{X: 8, Y: 0, Z: 0}, stone)

	hit, ok := space.Raycast(vmath.New(0.5, 0.5, 0.5), vmath.New(1, 0, 0), 20, "")
	require.True(t, ok)
	assert.True(t, hit.Terrain())
	assert.Equal(t, terrain.Cell{X: 5}, hit.Cell)
	assert.Equal(t, stone, hit.Material)
	assert.InDelta(t, 4.5, hit.Distance, 1e-9)
	assert.Equal(t, vmath.New(-1, 0, 0), hit.Normal)
}

func TestRaycastRespectsMaxDistance(t *testing.T) {
	space, grid := newSpace(t)
	grid.SetCell(terrain.Cell{X: 5}, stone)

	_, ok := space.Raycast(vmath.New(0.5, 0.5, 0.5), vmath.New(1, 0, 0), 3, "")
	assert.False(t, ok)
}

func TestRaycastFromFarOutsideGridTerminates(t *testing.T) {
	space, grid := newSpace(t)
	grid.SetCell(terrain.Cell{X: 5}, stone)

	done := make(chan bool, 1)
	go func() {
		_, ok := space.Raycast(vmath.New(1e19, 0, 0), vmath.New(1, 0, 0), 120, "")
		done <- ok
	}()
	select {
	case ok := <-done:
		assert.False(t, ok)
	case <-time.After(3 * time.Second):
		t.Fatal("raycast from a huge origin did not return")
	}
}

func TestRaycastPassesThroughLiquid(t *testing.T) {
	space, grid := newSpace(t)
	grid.SetCell(terrain.Cell{X: 2}, 2)
	grid.SetCell(terrain.Cell{X: 4}, stone)

	hit, ok := space.Raycast(vmath.New(0.5, 0.5, 0.5), vmath.New(1, 0, 0), 10, "")
	require.True(t, ok)
	assert.Equal(t, terrain.Cell{X: 4}, hit.Cell)
}

func TestRaycastPrefersNearerActorAndSkipsExcluded(t *testing.T) {
	space, grid := newSpace(t)
	grid.SetCell(terrain.Cell{X: 10}, stone)
	space.AddBody(Body{ID: "shooter", Position: vmath.New(0.5, 0.5, 0.5), Radius: 0.4, Mass: 80})
	space.AddBody(Body{ID: "target", Position: vmath.New(4.5, 0.5, 0.5), Radius: 0.5, Mass: 80})
	space.AddBody(Body{ID: "crate", Kind: BodyProp, Position: vmath.New(2.5, 0.5, 0.5), Radius: 0.5, Mass: 5})

	hit, ok := space.Raycast(vmath.New(0.5, 0.5, 0.5), vmath.New(1, 0, 0), 20, "shooter")
	require.True(t, ok)
	assert.Equal(t, "target", hit.Body)
	assert.InDelta(t, 3.5, hit.Distance, 1e-9)
	assert.True(t, hit.Normal.ApproxEqual(vmath.New(-1, 0, 0), 1e-9))
}

func TestRaycastDiagonalTraversal(t *testing.T) {
	space, grid := newSpace(t)
	grid.SetCell(terrain.Cell{X: 3, Y: -3, Z: 0}, stone)

	hit, ok := space.Raycast(vmath.New(0.5, 0.5, 0.5), vmath.New(1, -1, 0), 10, "")
	require.True(t, ok)
	assert.Equal(t, terrain.Cell{X: 3, Y: -3, Z: 0}, hit.Cell)
}

func TestApplyImpulseScalesByMass(t *testing.T) {
	space, _ := newSpace(t)
	space.AddBody(Body{ID: "a", Mass: 2})

	space.ApplyImpulse("a", vmath.New(4, 0, 0))
	body, ok := space.Body("a")
	require.True(t, ok)
	assert.Equal(t, vmath.New(2, 0, 0), body.Velocity)

	space.ApplyImpulse("missing", vmath.New(1, 0, 0))
	assert.Equal(t, 0.0, space.Mass("missing"))
}

func TestStepRestsPropsOnSolidGround(t *testing.T) {
	space, grid := newSpace(t)
	grid.Fill(terrain.Cell{X: -2, Y: -1, Z: -2}, terrain.Cell{X: 2, Y: -1, Z: 2}, stone)
	space.AddBody(Body{ID: "drop", Kind: BodyProp, Position: vmath.New(0.5, 0.25, 0.5), Radius: 0.25, Mass: 1})

	for i := 0; i < 30; i++ {
		space.Step(1.0 / 30)
	}
	body, _ := space.Body("drop")
	assert.InDelta(t, 0.25, body.Position.Y, 1e-9)
	assert.Equal(t, vmath.Zero, body.Velocity)
}

func TestRemoveBody(t *testing.T) {
	space, _ := newSpace(t)
	space.AddBody(Body{ID: "a"})
	space.AddBody(Body{ID: "b"})
	space.RemoveBody("a")

	assert.Equal(t, 1, space.Len())
	_, ok := space.Transform("a")
	assert.False(t, ok)
}
