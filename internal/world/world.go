// Package world owns the combat simulation state: actors, their
// inventories, terrain, projectiles, ground items and visual effects. Every
// method runs on the simulation goroutine.
package world

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/filter"
	"github.com/yohamta/donburi/query"

	"voxelfront/server/internal/combat"
	"voxelfront/server/internal/items"
	"voxelfront/server/internal/notify"
	"voxelfront/server/internal/physics"
	"voxelfront/server/internal/schedule"
	"voxelfront/server/internal/telemetry"
	"voxelfront/server/internal/terrain"
	"voxelfront/server/logging"
)

// ErrMissingItems indicates New was called without an item factory.
var ErrMissingItems = errors.New("world: item factory is nil")

// Deps bundles runtime dependencies required to construct a World instance.
type Deps struct {
	Items     *items.Factory
	Publisher logging.Publisher
	Notifier  notify.Notifier
	Logger    telemetry.Logger
	RNG       RNGFactory
	Space     physics.SpaceConfig
	Start     time.Time
}

// World owns the deterministic RNG root and every simulated object.
type World struct {
	config Config
	seed   string

	publisher logging.Publisher
	notifier  notify.Notifier
	logger    telemetry.Logger
	factory   *items.Factory
	rng       *rand.Rand

	ecs   donburi.World
	index map[string]donburi.Entity

	grid        *terrain.Grid
	accumulator *terrain.Accumulator
	space       *physics.Space
	scheduler   *schedule.Scheduler
	hits        *combat.HitResolver
	explosions  *combat.ExplosionResolver

	recordShot   func(actorID, item string, kind combat.WeaponKind, result combat.FireResult)
	recordDamage func(combat.DamageReport)

	tick    uint64
	now     time.Time
	started bool
}

var (
	actorQuery      = query.NewQuery(filter.Contains(Identity, Vitals, Loadout))
	projectileQuery = query.NewQuery(filter.Contains(Identity, Projectile))
	groundItemQuery = query.NewQuery(filter.Contains(Identity, GroundItem))
	effectQuery     = query.NewQuery(filter.Contains(Identity, Effect))
)

// New constructs a world with a freshly generated arena.
func New(cfg Config, deps Deps) (*World, error) {
	if deps.Items == nil {
		return nil, ErrMissingItems
	}
	normalized := cfg.normalized()

	factory := deps.RNG
	if factory == nil {
		factory = NewDeterministicRNG
	}
	publisher := deps.Publisher
	if publisher == nil {
		publisher = logging.NopPublisher()
	}
	notifier := deps.Notifier
	if notifier == nil {
		notifier = notify.Nop()
	}
	logger := deps.Logger
	if logger == nil {
		logger = telemetry.NopLogger()
	}
	spaceCfg := deps.Space
	if spaceCfg == (physics.SpaceConfig{}) {
		spaceCfg = physics.DefaultSpaceConfig()
	}
	start := deps.Start
	if start.IsZero() {
		start = time.Now()
	}

	catalog := deps.Items.Catalog()
	grid, err := catalog.NewGrid()
	if err != nil {
		return nil, fmt.Errorf("world: build terrain: %w", err)
	}
	seedTerrain(grid, newPalette(catalog.Materials), normalized.Extent, normalized.Pillars, factory(normalized.Seed, "terrain"))

	w := &World{
		config:      normalized,
		seed:        normalized.Seed,
		publisher:   publisher,
		notifier:    notifier,
		logger:      logger,
		factory:     deps.Items,
		rng:         factory(normalized.Seed, "world"),
		ecs:         donburi.NewWorld(),
		index:       make(map[string]donburi.Entity),
		grid:        grid,
		accumulator: terrain.NewAccumulator(grid),
		space:       physics.NewSpace(grid, spaceCfg),
		scheduler:   schedule.New(start),
		now:         start,
	}
	grid.Observe(w.terrainChanged)

	telemetryCfg := combat.TelemetryConfig{Publisher: publisher, CurrentTick: w.Tick}
	observer := combat.Observers{combat.NewTelemetryObserver(telemetryCfg), w.cueObserver()}
	w.recordShot = combat.NewShotTelemetryRecorder(telemetryCfg)
	w.recordDamage = combat.NewDamageTelemetryRecorder(telemetryCfg)
	w.hits = combat.NewHitResolver(combat.HitResolverConfig{
		Physics:  w.space,
		Terrain:  w.accumulator,
		Actors:   w,
		Yield:    w,
		Observer: observer,
	})
	w.explosions = combat.NewExplosionResolver(combat.ExplosionResolverConfig{
		Terrain:    w.accumulator,
		Bodies:     w.space,
		Population: w,
		Actors:     w,
		Effects:    w,
		Observer:   observer,
	})
	return w, nil
}

// Config returns the normalized configuration captured at construction time.
func (w *World) Config() Config { return w.config }

// Seed reports the deterministic seed applied to the world RNG hierarchy.
func (w *World) Seed() string { return w.seed }

// Tick returns the tick currently being simulated.
func (w *World) Tick() uint64 { return w.tick }

// Now returns the simulation time of the current tick.
func (w *World) Now() time.Time { return w.now }

func (w *World) Grid() *terrain.Grid                   { return w.grid }
func (w *World) Accumulator() *terrain.Accumulator     { return w.accumulator }
func (w *World) Space() *physics.Space                 { return w.space }
func (w *World) Scheduler() *schedule.Scheduler        { return w.scheduler }
func (w *World) Explosions() *combat.ExplosionResolver { return w.explosions }

// Actor returns the façade for a joined actor.
func (w *World) Actor(id string) (*Actor, bool) {
	entry, ok := w.entry(id, KindActor)
	if !ok {
		return nil, false
	}
	return &Actor{w: w, id: id, entity: entry.Entity()}, true
}

// Actors returns every joined actor id, defeated or not, sorted.
func (w *World) Actors() []string {
	var ids []string
	actorQuery.Each(w.ecs, func(entry *donburi.Entry) {
		ids = append(ids, Identity.Get(entry).ID)
	})
	sort.Strings(ids)
	return ids
}

// Count reports how many live entities of kind exist.
func (w *World) Count(kind ObjectKind) int {
	count := 0
	for _, entity := range w.index {
		if entry := w.ecs.Entry(entity); Identity.Get(entry).Kind == kind {
			count++
		}
	}
	return count
}

func (w *World) entry(id string, kind ObjectKind) (*donburi.Entry, bool) {
	entity, ok := w.index[id]
	if !ok || !w.ecs.Valid(entity) {
		return nil, false
	}
	entry := w.ecs.Entry(entity)
	if Identity.Get(entry).Kind != kind {
		return nil, false
	}
	return entry, true
}

func (w *World) create(id string, kind ObjectKind, components ...donburi.IComponentType) *donburi.Entry {
	components = append([]donburi.IComponentType{Identity}, components...)
	entity := w.ecs.Create(components...)
	entry := w.ecs.Entry(entity)
	Identity.SetValue(entry, IdentityData{ID: id, Kind: kind})
	w.index[id] = entity
	telemetry.LiveObjects.WithLabelValues(string(kind)).Inc()
	return entry
}

func (w *World) destroy(id string) {
	entity, ok := w.index[id]
	if !ok {
		return
	}
	delete(w.index, id)
	if !w.ecs.Valid(entity) {
		return
	}
	kind := Identity.Get(w.ecs.Entry(entity)).Kind
	w.ecs.Remove(entity)
	w.space.RemoveBody(id)
	telemetry.LiveObjects.WithLabelValues(string(kind)).Dec()
}

func (w *World) terrainChanged(change terrain.Change) {
	w.accumulator.Forget(change.Cell)
	w.notifier.Broadcast(notify.Message{Type: notify.MessageTerrain, Tick: w.tick, Terrain: &change})
}
