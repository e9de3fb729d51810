package combat

import (
	"context"
	"time"

	"github.com/looplab/fsm"

	"voxelfront/server/internal/schedule"
	"voxelfront/server/internal/vmath"
)

// Weapon states.
const (
	StateIdle      = "idle"
	StateReloading = "reloading"
)

const (
	eventReload = "reload"
	eventFinish = "finish"
	eventCancel = "cancel"
)

// ProjectileConfig describes what a projectile weapon launches.
type ProjectileConfig struct {
	Speed    float64
	Radius   float64
	Lifetime time.Duration
}

// WeaponConfig is the immutable tuning of a ranged weapon.
type WeaponConfig struct {
	Kind         WeaponKind
	FireRate     float64
	Damage       float64
	Range        float64
	Capacity     int
	Reload       time.Duration
	Knockback    float64
	MinesTerrain bool
	MuzzleOffset float64
	Pellets      []PelletOffset
	Projectile   ProjectileConfig
}

// AmmoState is the client-visible magazine state.
type AmmoState struct {
	Magazine  int
	Capacity  int
	Reserve   int
	Reloading bool
}

// WeaponHooks are invoked on ammo and reload transitions. Any may be nil.
type WeaponHooks struct {
	AmmoChanged    func(AmmoState)
	ReloadStarted  func(AmmoState)
	ReloadFinished func(AmmoState)
}

// ProjectileLaunch is a request to spawn a travelling projectile.
type ProjectileLaunch struct {
	Owner     string
	Ability   string
	Origin    vmath.Vec3
	Direction vmath.Vec3
	Speed     float64
	Lifetime  time.Duration
	Damage    float64
	Radius    float64
	Knockback float64
}

// ProjectileLauncher spawns projectiles into the world.
type ProjectileLauncher interface {
	Launch(p ProjectileLaunch) string
}

// Pipeline bundles the collaborators a weapon needs to fire.
type Pipeline struct {
	Hits        *HitResolver
	Projectiles ProjectileLauncher
	Timer       schedule.Timer
}

// FireRequest is one trigger pull.
type FireRequest struct {
	Now       time.Time
	Shooter   string
	Ability   string
	Origin    vmath.Vec3
	Direction vmath.Vec3
}

// FireResult reports what a successful trigger pull produced.
type FireResult struct {
	Muzzle       vmath.Vec3
	Outcomes     []HitOutcome
	ProjectileID string
}

// Weapon is an ammunition-fed ranged weapon. It is driven entirely from the
// simulation goroutine.
type Weapon struct {
	cfg      WeaponConfig
	magazine int
	reserve  int
	gate     RateGate
	machine  *fsm.FSM
	equipped bool
	equip    schedule.Generation
	hooks    WeaponHooks
}

// NewWeapon builds a weapon carrying reserve rounds in total, with the
// magazine loaded from that reserve.
func NewWeapon(cfg WeaponConfig, reserve int) *Weapon {
	if cfg.Capacity < 0 {
		cfg.Capacity = 0
	}
	if reserve < 0 {
		reserve = 0
	}
	if cfg.Kind == KindSpread && len(cfg.Pellets) == 0 {
		cfg.Pellets = DefaultPellets
	}
	return &Weapon{
		cfg:      cfg,
		magazine: min(cfg.Capacity, reserve),
		reserve:  reserve,
		gate:     NewRateGate(cfg.FireRate),
		machine: fsm.NewFSM(
			StateIdle,
			fsm.Events{
				{Name: eventReload, Src: []string{StateIdle}, Dst: StateReloading},
				{Name: eventFinish, Src: []string{StateReloading}, Dst: StateIdle},
				{Name: eventCancel, Src: []string{StateReloading}, Dst: StateIdle},
			},
			fsm.Callbacks{},
		),
	}
}

func (w *Weapon) Config() WeaponConfig { return w.cfg }
func (w *Weapon) Magazine() int        { return w.magazine }
func (w *Weapon) Reserve() int         { return w.reserve }
func (w *Weapon) State() string        { return w.machine.Current() }
func (w *Weapon) Reloading() bool      { return w.machine.Is(StateReloading) }
func (w *Weapon) Equipped() bool       { return w.equipped }

// Ammo snapshots the magazine state.
func (w *Weapon) Ammo() AmmoState {
	return AmmoState{
		Magazine:  w.magazine,
		Capacity:  w.cfg.Capacity,
		Reserve:   w.reserve,
		Reloading: w.Reloading(),
	}
}

// Equip makes the weapon usable and installs hooks. Equipping an already
// equipped weapon only swaps hooks and leaves any reload in flight.
func (w *Weapon) Equip(hooks WeaponHooks) {
	w.hooks = hooks
	if w.equipped {
		w.emitAmmo()
		return
	}
	w.equipped = true
	w.equip.Bump()
	w.emitAmmo()
}

// Unequip invalidates pending reload completions and cancels an in-flight
// reload. The magazine stays empty until the next reload.
func (w *Weapon) Unequip() {
	if !w.equipped {
		return
	}
	w.equipped = false
	w.equip.Bump()
	if w.Reloading() {
		_ = w.machine.Event(context.Background(), eventCancel)
	}
	w.hooks = WeaponHooks{}
}

// AddReserve adds loose rounds to the reserve.
func (w *Weapon) AddReserve(rounds int) {
	if rounds <= 0 {
		return
	}
	w.reserve += rounds
	w.emitAmmo()
}

// Shoot fires once if the weapon is idle, has reserve ammunition and the
// fire rate allows it. An empty magazine starts a reload instead.
func (w *Weapon) Shoot(p Pipeline, req FireRequest) (FireResult, bool) {
	if !w.equipped || w.Reloading() || w.reserve <= 0 || !w.gate.Ready(req.Now) {
		return FireResult{}, false
	}
	if w.magazine <= 0 {
		w.Reload(p.Timer)
		return FireResult{}, false
	}

	w.magazine--
	w.reserve--
	w.gate.Mark(req.Now)
	w.emitAmmo()

	direction := req.Direction.Normalize()
	result := FireResult{Muzzle: req.Origin.Add(direction.Scale(w.cfg.MuzzleOffset))}
	shot := Shot{
		Shooter:      req.Shooter,
		Ability:      req.Ability,
		Origin:       req.Origin,
		Direction:    direction,
		Range:        w.cfg.Range,
		Damage:       w.cfg.Damage,
		Knockback:    w.cfg.Knockback,
		MinesTerrain: w.cfg.MinesTerrain,
	}

	switch w.cfg.Kind {
	case KindSpread:
		result.Outcomes = p.Hits.ResolveSpreadShot(shot, w.cfg.Pellets)
	case KindProjectile:
		if p.Projectiles != nil {
			result.ProjectileID = p.Projectiles.Launch(ProjectileLaunch{
				Owner:     req.Shooter,
				Ability:   req.Ability,
				Origin:    result.Muzzle,
				Direction: direction,
				Speed:     w.cfg.Projectile.Speed,
				Lifetime:  w.cfg.Projectile.Lifetime,
				Damage:    w.cfg.Damage,
				Radius:    w.cfg.Projectile.Radius,
				Knockback: w.cfg.Knockback,
			})
		}
	default:
		result.Outcomes = []HitOutcome{p.Hits.ResolveSingleShot(shot)}
	}
	return result, true
}

// Reload empties the magazine and schedules a refill after the reload
// duration. The refill is dropped if the weapon is unequipped or re-equipped
// in the meantime.
func (w *Weapon) Reload(timer schedule.Timer) bool {
	if !w.equipped || w.reserve <= 0 || !w.machine.Can(eventReload) || timer == nil {
		return false
	}
	if err := w.machine.Event(context.Background(), eventReload); err != nil {
		return false
	}
	w.magazine = 0
	if w.hooks.ReloadStarted != nil {
		w.hooks.ReloadStarted(w.Ammo())
	}
	w.emitAmmo()

	timer.After(w.cfg.Reload, schedule.Guard(w.equip.Lease(), func(time.Time) {
		w.finishReload()
	}))
	return true
}

func (w *Weapon) finishReload() {
	if !w.Reloading() {
		return
	}
	if err := w.machine.Event(context.Background(), eventFinish); err != nil {
		return
	}
	w.magazine = min(w.cfg.Capacity, w.reserve)
	if w.hooks.ReloadFinished != nil {
		w.hooks.ReloadFinished(w.Ammo())
	}
	w.emitAmmo()
}

func (w *Weapon) emitAmmo() {
	if w.hooks.AmmoChanged != nil {
		w.hooks.AmmoChanged(w.Ammo())
	}
}
