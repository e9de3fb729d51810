package items

import (
	"bytes"
	_ "embed"
	"errors"
	"io"
	"os"
	"time"

	"github.com/samber/oops"
	"gopkg.in/yaml.v3"

	"voxelfront/server/internal/combat"
	"voxelfront/server/internal/terrain"
)

// Error codes for catalog and factory failures.
const (
	CodeUnknownItemType   = "UNKNOWN_ITEM_TYPE"
	CodeMissingModel      = "MISSING_MODEL"
	CodeInvalidDefinition = "INVALID_DEFINITION"
	CodeCatalogDecode     = "CATALOG_DECODE"
)

//go:embed default_catalog.yaml
var defaultCatalog []byte

// BlockType is the definition every block item is built from.
const BlockType = "block"

// ProjectileDefinition tunes what a projectile weapon launches.
type ProjectileDefinition struct {
	Speed      float64 `json:"speed" yaml:"speed" jsonschema:"exclusiveMinimum=0"`
	Radius     float64 `json:"radius" yaml:"radius" jsonschema:"minimum=0"`
	LifetimeMS int     `json:"lifetime_ms" yaml:"lifetime_ms" jsonschema:"exclusiveMinimum=0"`
}

// WeaponDefinition tunes a ranged weapon.
type WeaponDefinition struct {
	FireRate     float64               `json:"fire_rate" yaml:"fire_rate" jsonschema:"exclusiveMinimum=0"`
	Damage       float64               `json:"damage" yaml:"damage" jsonschema:"minimum=0"`
	Range        float64               `json:"range" yaml:"range" jsonschema:"exclusiveMinimum=0"`
	Capacity     int                   `json:"capacity" yaml:"capacity" jsonschema:"exclusiveMinimum=0"`
	Reserve      int                   `json:"reserve" yaml:"reserve" jsonschema:"minimum=0"`
	ReloadMS     int                   `json:"reload_ms" yaml:"reload_ms" jsonschema:"minimum=0"`
	Knockback    float64               `json:"knockback,omitempty" yaml:"knockback"`
	MinesTerrain bool                  `json:"mines_terrain,omitempty" yaml:"mines_terrain"`
	MuzzleOffset float64               `json:"muzzle_offset,omitempty" yaml:"muzzle_offset"`
	Projectile   *ProjectileDefinition `json:"projectile,omitempty" yaml:"projectile"`
}

// MeleeDefinition tunes a melee tool.
type MeleeDefinition struct {
	AttackRate   float64 `json:"attack_rate" yaml:"attack_rate" jsonschema:"exclusiveMinimum=0"`
	Range        float64 `json:"range" yaml:"range" jsonschema:"exclusiveMinimum=0"`
	Damage       float64 `json:"damage" yaml:"damage" jsonschema:"minimum=0"`
	Knockback    float64 `json:"knockback,omitempty" yaml:"knockback"`
	MinesTerrain bool    `json:"mines_terrain,omitempty" yaml:"mines_terrain"`
}

// Definition is the designer-authored description of an item type.
type Definition struct {
	Type            string            `json:"type" yaml:"type" jsonschema:"minLength=1"`
	Name            string            `json:"name" yaml:"name"`
	Icon            string            `json:"icon,omitempty" yaml:"icon"`
	Model           string            `json:"model" yaml:"model" jsonschema:"minLength=1"`
	Hand            Hand              `json:"hand,omitempty" yaml:"hand" jsonschema:"enum=right,enum=left,enum=both"`
	IdleAnimation   string            `json:"idle_animation,omitempty" yaml:"idle_animation"`
	AttackAnimation string            `json:"attack_animation,omitempty" yaml:"attack_animation"`
	Mass            float64           `json:"mass" yaml:"mass" jsonschema:"exclusiveMinimum=0"`
	Quantity        *int              `json:"quantity,omitempty" yaml:"quantity"`
	Kind            combat.WeaponKind `json:"kind,omitempty" yaml:"kind" jsonschema:"enum=hitscan,enum=spread,enum=projectile,enum=melee"`
	Weapon          *WeaponDefinition `json:"weapon,omitempty" yaml:"weapon"`
	Melee           *MeleeDefinition  `json:"melee,omitempty" yaml:"melee"`
}

// Catalog is the full set of materials and item definitions.
type Catalog struct {
	DefaultTool string             `json:"default_tool" yaml:"default_tool"`
	Materials   []terrain.Material `json:"materials" yaml:"materials"`
	Items       []Definition       `json:"items" yaml:"items"`
}

// DefaultCatalog decodes the catalog compiled into the binary.
func DefaultCatalog() (Catalog, error) {
	return DecodeCatalog(bytes.NewReader(defaultCatalog))
}

// LoadCatalog reads a catalog file, falling back to the built-in catalog
// when path is empty.
func LoadCatalog(path string) (Catalog, error) {
	if path == "" {
		return DefaultCatalog()
	}
	f, err := os.Open(path)
	if err != nil {
		return Catalog{}, oops.Code(CodeCatalogDecode).With("path", path).Wrapf(err, "open catalog")
	}
	defer f.Close()
	catalog, err := DecodeCatalog(f)
	if err != nil {
		return Catalog{}, oops.With("path", path).Wrap(err)
	}
	return catalog, nil
}

// DecodeCatalog parses and validates a YAML catalog. Unknown keys are
// rejected.
func DecodeCatalog(r io.Reader) (Catalog, error) {
	var catalog Catalog
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&catalog); err != nil && !errors.Is(err, io.EOF) {
		return Catalog{}, oops.Code(CodeCatalogDecode).Wrapf(err, "decode catalog")
	}
	if err := catalog.Validate(); err != nil {
		return Catalog{}, err
	}
	return catalog, nil
}

// Validate checks every definition and the default tool reference.
func (c Catalog) Validate() error {
	seen := make(map[string]struct{}, len(c.Items))
	for _, def := range c.Items {
		if err := def.Validate(); err != nil {
			return err
		}
		if _, dup := seen[def.Type]; dup {
			return invalidDefinition(def.Type, "duplicate item type")
		}
		seen[def.Type] = struct{}{}
	}
	if _, ok := seen[BlockType]; !ok {
		return invalidDefinition(BlockType, "catalog has no block definition")
	}
	tool, ok := c.Definition(c.DefaultTool)
	if !ok {
		return oops.Code(CodeUnknownItemType).
			With("type", c.DefaultTool).
			Errorf("default tool %q is not defined", c.DefaultTool)
	}
	if tool.Kind != combat.KindMelee {
		return invalidDefinition(tool.Type, "default tool must be a melee item")
	}
	if _, err := c.NewGrid(); err != nil {
		return err
	}
	return nil
}

// Definition looks up an item definition by type.
func (c Catalog) Definition(itemType string) (Definition, bool) {
	for _, def := range c.Items {
		if def.Type == itemType {
			return def, true
		}
	}
	return Definition{}, false
}

// NewGrid returns an empty terrain grid over the catalog materials.
func (c Catalog) NewGrid() (*terrain.Grid, error) {
	grid, err := terrain.NewGrid(c.Materials)
	if err != nil {
		return nil, oops.Code(CodeInvalidDefinition).
			With("reason", err.Error()).
			Errorf("invalid materials: %v", err)
	}
	return grid, nil
}

// Validate reports the first problem with a definition.
func (d Definition) Validate() error {
	if d.Type == "" {
		return invalidDefinition(d.Type, "type is required")
	}
	if d.Model == "" {
		return oops.Code(CodeMissingModel).
			With("type", d.Type).
			Errorf("item %q has no model", d.Type)
	}
	if d.Mass <= 0 {
		return invalidDefinition(d.Type, "mass must be positive")
	}
	switch d.Hand {
	case "", HandRight, HandLeft, HandBoth:
	default:
		return invalidDefinition(d.Type, "unknown hand "+string(d.Hand))
	}
	if d.Quantity != nil && *d.Quantity < Unlimited {
		return invalidDefinition(d.Type, "quantity must be -1 or non-negative")
	}
	if d.Kind == "" {
		if d.Weapon != nil || d.Melee != nil {
			return invalidDefinition(d.Type, "weapon tuning without a kind")
		}
		return nil
	}
	if !d.Kind.Valid() {
		return invalidDefinition(d.Type, "unknown kind "+string(d.Kind))
	}
	if d.Kind == combat.KindMelee {
		if d.Melee == nil || d.Weapon != nil {
			return invalidDefinition(d.Type, "melee items need a melee section only")
		}
		if d.Melee.AttackRate <= 0 || d.Melee.Range <= 0 {
			return invalidDefinition(d.Type, "melee attack_rate and range must be positive")
		}
		return nil
	}
	if d.Weapon == nil || d.Melee != nil {
		return invalidDefinition(d.Type, "ranged items need a weapon section only")
	}
	w := d.Weapon
	if w.FireRate <= 0 || w.Range <= 0 || w.Capacity <= 0 || w.Reserve < 0 || w.ReloadMS < 0 {
		return invalidDefinition(d.Type, "weapon fire_rate, range and capacity must be positive")
	}
	if d.Kind == combat.KindProjectile {
		if w.Projectile == nil || w.Projectile.Speed <= 0 || w.Projectile.LifetimeMS <= 0 {
			return invalidDefinition(d.Type, "projectile weapons need a speed and lifetime")
		}
	}
	return nil
}

func (d Definition) quantity() int {
	if d.Quantity == nil {
		return Unlimited
	}
	return *d.Quantity
}

func (w WeaponDefinition) config(kind combat.WeaponKind) combat.WeaponConfig {
	cfg := combat.WeaponConfig{
		Kind:         kind,
		FireRate:     w.FireRate,
		Damage:       w.Damage,
		Range:        w.Range,
		Capacity:     w.Capacity,
		Reload:       time.Duration(w.ReloadMS) * time.Millisecond,
		Knockback:    w.Knockback,
		MinesTerrain: w.MinesTerrain,
		MuzzleOffset: w.MuzzleOffset,
	}
	if w.Projectile != nil {
		cfg.Projectile = combat.ProjectileConfig{
			Speed:    w.Projectile.Speed,
			Radius:   w.Projectile.Radius,
			Lifetime: time.Duration(w.Projectile.LifetimeMS) * time.Millisecond,
		}
	}
	return cfg
}

func (m MeleeDefinition) config() combat.MeleeConfig {
	return combat.MeleeConfig{
		AttackRate:   m.AttackRate,
		Range:        m.Range,
		Damage:       m.Damage,
		Knockback:    m.Knockback,
		MinesTerrain: m.MinesTerrain,
	}
}

func invalidDefinition(itemType, reason string) error {
	return oops.Code(CodeInvalidDefinition).
		With("type", itemType).
		With("reason", reason).
		Errorf("invalid item definition %q: %s", itemType, reason)
}
