package items

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voxelfront/server/internal/combat"
	"voxelfront/server/internal/terrain"
)

func errorCode(t *testing.T, err error) any {
	t.Helper()
	require.Error(t, err)
	oopsErr, ok := oops.AsOops(err)
	require.True(t, ok, "expected an oops error, got %T", err)
	return oopsErr.Code()
}

func newTestFactory(t *testing.T) *Factory {
	t.Helper()
	catalog, err := DefaultCatalog()
	require.NoError(t, err)
	factory, err := NewFactory(catalog)
	require.NoError(t, err)
	return factory
}

func TestDefaultCatalogBuildsEveryItem(t *testing.T) {
	factory := newTestFactory(t)

	tests := []struct {
		itemType string
		kind     combat.WeaponKind
	}{
		{"pickaxe", combat.KindMelee},
		{"rifle", combat.KindHitscan},
		{"shotgun", combat.KindSpread},
		{"rocket_launcher", combat.KindProjectile},
	}
	for _, tt := range tests {
		t.Run(tt.itemType, func(t *testing.T) {
			item, err := factory.New(tt.itemType)
			require.NoError(t, err)
			assert.Equal(t, tt.kind, item.Kind)
			assert.NotEmpty(t, item.ID)
			assert.NotEmpty(t, item.Model)
			assert.Equal(t, Unlimited, item.Quantity)
			if tt.kind == combat.KindMelee {
				assert.NotNil(t, item.Melee)
				assert.Nil(t, item.Weapon)
				return
			}
			require.NotNil(t, item.Weapon)
			cfg := item.Weapon.Config()
			assert.Equal(t, tt.kind, cfg.Kind)
			assert.Equal(t, min(cfg.Capacity, item.Weapon.Reserve()), item.Weapon.Magazine())
		})
	}
}

func TestFactoryAssignsDistinctIDs(t *testing.T) {
	factory := newTestFactory(t)
	a, err := factory.New("rifle")
	require.NoError(t, err)
	b, err := factory.New("rifle")
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)
	assert.NotSame(t, a.Weapon, b.Weapon)
}

func TestDefaultToolIsMelee(t *testing.T) {
	tool, err := newTestFactory(t).DefaultTool()
	require.NoError(t, err)
	assert.Equal(t, "pickaxe", tool.Type)
	require.NotNil(t, tool.Melee)
	assert.True(t, tool.Melee.Config().MinesTerrain)
}

func TestRocketLauncherCarriesProjectileTuning(t *testing.T) {
	item, err := newTestFactory(t).New("rocket_launcher")
	require.NoError(t, err)
	projectile := item.Weapon.Config().Projectile
	assert.Equal(t, 40.0, projectile.Speed)
	assert.Equal(t, 3.0, projectile.Radius)
	assert.Equal(t, 5*time.Second, projectile.Lifetime)
}

func TestUnknownItemType(t *testing.T) {
	_, err := newTestFactory(t).New("laser")
	assert.Equal(t, CodeUnknownItemType, errorCode(t, err))
}

func TestNewBlock(t *testing.T) {
	factory := newTestFactory(t)

	block, err := factory.NewBlock(1, 3)
	require.NoError(t, err)
	assert.Equal(t, terrain.MaterialID(1), block.Material)
	assert.Equal(t, "stone", block.Name)
	assert.Equal(t, 3, block.Quantity)
	assert.True(t, block.Stackable())

	other, err := factory.NewBlock(1, 1)
	require.NoError(t, err)
	assert.True(t, block.Stacks(other))

	dirt, err := factory.NewBlock(2, 1)
	require.NoError(t, err)
	assert.False(t, block.Stacks(dirt))

	_, err = factory.NewBlock(6, 1)
	assert.Equal(t, CodeInvalidDefinition, errorCode(t, err), "liquids are not carried")
	_, err = factory.NewBlock(7, 1)
	assert.Equal(t, CodeInvalidDefinition, errorCode(t, err), "bedrock is not carried")
	_, err = factory.NewBlock(1, 0)
	assert.Equal(t, CodeInvalidDefinition, errorCode(t, err))
}

const minimalCatalog = `
default_tool: fists
materials:
  - {id: 1, name: stone}
items:
  - type: fists
    model: models/fists.glb
    mass: 1
    kind: melee
    melee: {attack_rate: 2, range: 2, damage: 0.2}
  - type: block
    model: models/block.glb
    mass: 1
    quantity: 1
`

func TestDecodeCatalogErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		code string
	}{
		{
			name: "unknown field",
			yaml: minimalCatalog + "extra: true\n",
			code: CodeCatalogDecode,
		},
		{
			name: "malformed yaml",
			yaml: "items: [",
			code: CodeCatalogDecode,
		},
		{
			name: "missing model",
			yaml: strings.Replace(minimalCatalog, "model: models/fists.glb", "name: Fists", 1),
			code: CodeMissingModel,
		},
		{
			name: "unknown default tool",
			yaml: strings.Replace(minimalCatalog, "default_tool: fists", "default_tool: sword", 1),
			code: CodeUnknownItemType,
		},
		{
			name: "unknown kind",
			yaml: strings.Replace(minimalCatalog, "kind: melee", "kind: laser", 1),
			code: CodeInvalidDefinition,
		},
		{
			name: "duplicate material",
			yaml: strings.Replace(minimalCatalog, "- {id: 1, name: stone}", "- {id: 1, name: stone}\n  - {id: 1, name: dirt}", 1),
			code: CodeInvalidDefinition,
		},
		{
			name: "ranged weapon without weapon section",
			yaml: minimalCatalog + "  - {type: gun, model: m.glb, mass: 1, kind: hitscan}\n",
			code: CodeInvalidDefinition,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeCatalog(strings.NewReader(tt.yaml))
			assert.Equal(t, tt.code, errorCode(t, err))
		})
	}
}

func TestNewGridReportsMaterialsAsInvalidDefinition(t *testing.T) {
	catalog := Catalog{Materials: []terrain.Material{{ID: 1, Name: "stone"}, {ID: 1, Name: "dirt"}}}
	_, err := catalog.NewGrid()
	require.Error(t, err)
	assert.Equal(t, CodeInvalidDefinition, errorCode(t, err))
	assert.Contains(t, err.Error(), "invalid materials")
}

func TestDecodeMinimalCatalog(t *testing.T) {
	catalog, err := DecodeCatalog(strings.NewReader(minimalCatalog))
	require.NoError(t, err)
	grid, err := catalog.NewGrid()
	require.NoError(t, err)
	material, ok := grid.Lookup(1)
	require.True(t, ok)
	assert.Equal(t, "stone", material.Name)
}

func TestEquipLifecycle(t *testing.T) {
	factory := newTestFactory(t)
	rifle, err := factory.New("rifle")
	require.NoError(t, err)

	var ammo []combat.AmmoState
	rifle.Equip(combat.WeaponHooks{AmmoChanged: func(s combat.AmmoState) { ammo = append(ammo, s) }})
	assert.True(t, rifle.Equipped())
	assert.Equal(t, PoseHeld, rifle.Pose())
	assert.Equal(t, "rifle_idle", rifle.Animation())
	assert.True(t, rifle.Weapon.Equipped())
	assert.NotEmpty(t, ammo)

	assert.True(t, rifle.SetZoom(true))
	rifle.PlayAttack()
	assert.Equal(t, "rifle_fire", rifle.Animation())

	rifle.Unequip()
	assert.False(t, rifle.Equipped())
	assert.False(t, rifle.Zoomed())
	assert.False(t, rifle.Weapon.Equipped())
	assert.Equal(t, PoseStowed, rifle.Pose())

	tool, err := factory.DefaultTool()
	require.NoError(t, err)
	assert.False(t, tool.SetZoom(true), "melee tools cannot zoom")
}

func TestSchemaDescribesCatalog(t *testing.T) {
	data, err := SchemaJSON()
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, "Voxelfront Item Catalog", doc["title"])
	assert.Contains(t, string(data), "default_tool")
	assert.Contains(t, string(data), "lifetime_ms")
}
