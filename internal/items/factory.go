package items

import (
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"voxelfront/server/internal/combat"
	"voxelfront/server/internal/terrain"
)

// Factory builds items from a validated catalog.
type Factory struct {
	catalog   Catalog
	materials map[terrain.MaterialID]terrain.Material
	newID     func() string
}

// NewFactory validates catalog and returns a factory for it.
func NewFactory(catalog Catalog) (*Factory, error) {
	if err := catalog.Validate(); err != nil {
		return nil, err
	}
	materials := make(map[terrain.MaterialID]terrain.Material, len(catalog.Materials))
	for _, m := range catalog.Materials {
		materials[m.ID] = m
	}
	return &Factory{
		catalog:   catalog,
		materials: materials,
		newID:     func() string { return ulid.Make().String() },
	}, nil
}

func (f *Factory) Catalog() Catalog { return f.catalog }

// New builds a fresh item of the given type.
func (f *Factory) New(itemType string) (*Item, error) {
	def, ok := f.catalog.Definition(itemType)
	if !ok {
		return nil, oops.Code(CodeUnknownItemType).
			With("type", itemType).
			Errorf("unknown item type %q", itemType)
	}
	return f.build(def)
}

// DefaultTool builds the melee tool every actor keeps in slot 0.
func (f *Factory) DefaultTool() (*Item, error) {
	return f.New(f.catalog.DefaultTool)
}

// NewBlock builds a stack of quantity blocks of a breakable material.
func (f *Factory) NewBlock(material terrain.MaterialID, quantity int) (*Item, error) {
	m, ok := f.materials[material]
	if !ok || !m.Breakable() {
		return nil, oops.Code(CodeInvalidDefinition).
			With("material", material).
			Errorf("material %d cannot be carried as a block", material)
	}
	if quantity <= 0 {
		return nil, oops.Code(CodeInvalidDefinition).
			With("material", material).
			With("quantity", quantity).
			Errorf("block quantity must be positive")
	}
	def, _ := f.catalog.Definition(BlockType)
	item, err := f.build(def)
	if err != nil {
		return nil, err
	}
	item.Name = m.Name
	item.Material = material
	item.Quantity = quantity
	if item.Icon == "" {
		item.Icon = "icons/blocks/" + m.Name + ".png"
	}
	return item, nil
}

func (f *Factory) build(def Definition) (*Item, error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}
	item := &Item{
		ID:              f.newID(),
		Type:            def.Type,
		Name:            def.Name,
		Icon:            def.Icon,
		Model:           def.Model,
		Hand:            def.Hand,
		IdleAnimation:   def.IdleAnimation,
		AttackAnimation: def.AttackAnimation,
		Mass:            def.Mass,
		Quantity:        def.quantity(),
		Kind:            def.Kind,
	}
	if item.Hand == "" {
		item.Hand = HandRight
	}
	switch {
	case def.Kind == combat.KindMelee:
		item.Melee = combat.NewMelee(def.Melee.config())
	case def.Kind.Ranged():
		item.Weapon = combat.NewWeapon(def.Weapon.config(def.Kind), def.Weapon.Reserve)
	}
	return item, nil
}
