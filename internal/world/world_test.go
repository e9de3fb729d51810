package world

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voxelfront/server/internal/combat"
	"voxelfront/server/internal/items"
	"voxelfront/server/internal/notify"
	"voxelfront/server/internal/sim"
	"voxelfront/server/internal/telemetry"
	"voxelfront/server/internal/terrain"
	"voxelfront/server/internal/vmath"
	loggingcombat "voxelfront/server/logging/combat"
	logginglifecycle "voxelfront/server/logging/lifecycle"
	"voxelfront/server/logging/sinks"
)

const testTick = 50 * time.Millisecond

type harness struct {
	t      *testing.T
	world  *World
	notes  *notify.Recorder
	events *sinks.Memory
	start  time.Time
	tick   uint64
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	catalog, err := items.DefaultCatalog()
	require.NoError(t, err)
	factory, err := items.NewFactory(catalog)
	require.NoError(t, err)

	h := &harness{
		t:      t,
		notes:  notify.NewRecorder(),
		events: sinks.NewMemory(),
		start:  time.Unix(1_700_000_000, 0),
	}
	cfg := DefaultConfig()
	cfg.Seed = "test"
	cfg.Extent = 8
	cfg.Pillars = 0
	h.world, err = New(cfg, Deps{
		Items:     factory,
		Publisher: h.events,
		Notifier:  h.notes,
		Start:     h.start,
	})
	require.NoError(t, err)
	return h
}

func (h *harness) context() sim.LoopTickContext {
	return sim.LoopTickContext{
		Tick:  h.tick,
		Now:   h.start.Add(time.Duration(h.tick) * testTick),
		Delta: testTick.Seconds(),
	}
}

// run advances one tick, applying cmds first.
func (h *harness) run(cmds ...sim.Command) error {
	h.tick++
	ctx := h.context()
	err := h.world.Apply(ctx, cmds)
	h.world.Step(ctx)
	return err
}

// idle advances the clock by d with no commands.
func (h *harness) idle(d time.Duration) {
	for elapsed := time.Duration(0); elapsed < d; elapsed += testTick {
		require.NoError(h.t, h.run())
	}
}

func (h *harness) join(id string) *Actor {
	h.t.Helper()
	require.NoError(h.t, h.run(sim.Command{ActorID: id, Type: sim.CommandJoin}))
	actor, ok := h.world.Actor(id)
	require.True(h.t, ok)
	return actor
}

// place moves an actor to a fixed pose high above the arena floor.
func (h *harness) place(actor *Actor, position, facing vmath.Vec3) {
	h.t.Helper()
	require.True(h.t, actor.Aim(position, facing, false))
}

func command(actorID string, typ sim.CommandType) sim.Command {
	return sim.Command{ActorID: actorID, Type: typ}
}

func selectSlot(actorID string, slot int) sim.Command {
	return sim.Command{ActorID: actorID, Type: sim.CommandSelect, Select: &sim.SelectCommand{Slot: slot}}
}

var east = vmath.New(1, 0, 0)

func TestJoinGrantsDefaultToolAndLoadout(t *testing.T) {
	h := newHarness(t)
	actor := h.join("alice")

	inv := actor.Inventory()
	require.NotNil(t, inv)
	assert.Equal(t, DefaultInventorySize, inv.Size())
	assert.Equal(t, 0, inv.Active())
	assert.Equal(t, "pickaxe", inv.Slot(0).Type)
	assert.True(t, inv.Slot(0).Equipped())
	assert.Equal(t, "rifle", inv.Slot(1).Type)
	assert.Equal(t, "shotgun", inv.Slot(2).Type)
	assert.Equal(t, "rocket_launcher", inv.Slot(3).Type)
	assert.Nil(t, inv.Slot(4))

	assert.Equal(t, DefaultMaxHealth, actor.Health())
	_, hasBody := actor.Transform()
	assert.True(t, hasBody)

	_, ok := h.notes.Last("alice", notify.MessageInventory)
	assert.True(t, ok, "joining sends the inventory")
	_, ok = h.notes.Last("alice", notify.MessageHealth)
	assert.True(t, ok, "joining sends health")
	assert.Len(t, h.events.OfType(logginglifecycle.EventActorJoined), 1)
}

func TestJoinAgainWhileAliveKeepsState(t *testing.T) {
	h := newHarness(t)
	first := h.join("alice")
	require.NoError(t, h.run(selectSlot("alice", 2)))

	second := h.join("alice")
	assert.Equal(t, first.ID(), second.ID())
	assert.Equal(t, 2, second.Inventory().Active())
	assert.Len(t, h.events.OfType(logginglifecycle.EventActorJoined), 1)
}

func TestApplyRejectsCommandsForUnknownActors(t *testing.T) {
	h := newHarness(t)
	err := h.run(
		command("ghost", sim.CommandFire),
		command("alice", sim.CommandJoin),
		sim.Command{ActorID: "alice", Type: sim.CommandSelect},
	)
	require.Error(t, err)

	_, joined := h.world.Actor("alice")
	assert.True(t, joined, "a rejected command does not stop the batch")

	var codes []any
	for _, e := range unwrapJoined(err) {
		oopsErr, ok := oops.AsOops(e)
		require.True(t, ok)
		codes = append(codes, oopsErr.Code())
	}
	assert.Equal(t, []any{CodeUnknownActor, CodeMissingPayload}, codes)
}

func unwrapJoined(err error) []error {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		return joined.Unwrap()
	}
	return []error{err}
}

func TestRifleShotDamagesActorInLineOfFire(t *testing.T) {
	h := newHarness(t)
	shooter := h.join("alice")
	target := h.join("bob")
	h.place(shooter, vmath.New(0.5, 12, 0.5), east)
	h.place(target, vmath.New(6.5, 12.6, 0.5), east.Neg())

	require.NoError(t, h.run(selectSlot("alice", 1), command("alice", sim.CommandFire)))

	assert.InDelta(t, DefaultMaxHealth-0.6, target.Health(), 1e-9)
	rifle := shooter.Inventory().ActiveItem()
	assert.Equal(t, 29, rifle.Weapon.Magazine())
	assert.Equal(t, 119, rifle.Weapon.Reserve())
	assert.Equal(t, rifle.AttackAnimation, rifle.Animation())

	ammo, ok := h.notes.Last("alice", notify.MessageAmmo)
	require.True(t, ok)
	assert.Equal(t, 29, ammo.Ammo.Magazine)

	health, ok := h.notes.Last("bob", notify.MessageHealth)
	require.True(t, ok)
	assert.InDelta(t, DefaultMaxHealth-0.6, health.Health.Health, 1e-9)
	assert.Len(t, h.events.OfType(loggingcombat.EventDamage), 1)
}

func TestArmorAbsorbsDamageBeforeHealth(t *testing.T) {
	h := newHarness(t)
	h.world.config.StartArmor = 1
	actor := h.join("alice")

	assert.True(t, h.world.ApplyDamage(combat.Damage{Source: "bob", Target: "alice", Amount: 1.5}))
	assert.InDelta(t, 0, actor.Armor(), 1e-9)
	assert.InDelta(t, DefaultMaxHealth-0.5, actor.Health(), 1e-9)
	assert.False(t, h.world.ApplyDamage(combat.Damage{Target: "alice", Amount: 0}))
	assert.False(t, h.world.ApplyDamage(combat.Damage{Target: "nobody", Amount: 1}))
}

func TestDefeatDisarmsAndRespawnRestores(t *testing.T) {
	h := newHarness(t)
	actor := h.join("alice")
	h.join("bob")
	require.NoError(t, h.run(selectSlot("alice", 1)))

	assert.True(t, h.world.ApplyDamage(combat.Damage{Source: "bob", Target: "alice", Amount: 99}))
	assert.True(t, actor.Defeated())
	assert.Zero(t, actor.Health())
	assert.Equal(t, []string{"bob"}, h.world.LiveActors())
	_, hasBody := actor.Transform()
	assert.False(t, hasBody)
	assert.False(t, actor.Inventory().ActiveItem().Equipped())
	assert.False(t, actor.Fire())
	assert.False(t, h.world.ApplyDamage(combat.Damage{Target: "alice", Amount: 1}), "defeated actors take no damage")

	defeat, ok := h.notes.Last("", notify.MessageDefeat)
	require.True(t, ok)
	assert.Equal(t, "alice", defeat.Defeat.ActorID)
	assert.Equal(t, "bob", defeat.Defeat.SourceID)
	assert.Len(t, h.events.OfType(loggingcombat.EventDefeat), 1)

	h.join("alice")
	assert.False(t, actor.Defeated())
	assert.Equal(t, DefaultMaxHealth, actor.Health())
	assert.True(t, actor.Inventory().ActiveItem().Equipped())
	assert.ElementsMatch(t, []string{"alice", "bob"}, h.world.LiveActors())
}

func TestReloadRefillsOnLaterTick(t *testing.T) {
	h := newHarness(t)
	actor := h.join("alice")
	finished := testutil.ToFloat64(telemetry.Reloads.WithLabelValues("finish"))
	require.NoError(t, h.run(selectSlot("alice", 1), command("alice", sim.CommandReload)))

	rifle := actor.Inventory().ActiveItem()
	assert.True(t, rifle.Weapon.Reloading())
	assert.Zero(t, rifle.Weapon.Magazine())
	assert.NotEmpty(t, cues(h.notes.For("alice", notify.MessageCue), notify.CueReloadStart))

	h.idle(1700 * time.Millisecond)
	assert.True(t, rifle.Weapon.Reloading())

	h.idle(200 * time.Millisecond)
	assert.False(t, rifle.Weapon.Reloading())
	assert.Equal(t, 30, rifle.Weapon.Magazine())
	assert.Equal(t, 120, rifle.Weapon.Reserve())
	assert.NotEmpty(t, cues(h.notes.For("alice", notify.MessageCue), notify.CueReloadEnd))
	assert.Len(t, h.events.OfType(loggingcombat.EventReload), 2)
	assert.Equal(t, finished+1, testutil.ToFloat64(telemetry.Reloads.WithLabelValues("finish")))
}

func TestSwitchingSlotsCancelsReload(t *testing.T) {
	h := newHarness(t)
	actor := h.join("alice")
	require.NoError(t, h.run(selectSlot("alice", 1), command("alice", sim.CommandReload)))
	rifle := actor.Inventory().ActiveItem()

	require.NoError(t, h.run(selectSlot("alice", 2), selectSlot("alice", 1)))
	h.idle(2 * time.Second)

	assert.False(t, rifle.Weapon.Reloading())
	assert.Zero(t, rifle.Weapon.Magazine(), "the refill scheduled before the switch is discarded")
}

func TestPickaxeMinesBlockIntoInventory(t *testing.T) {
	h := newHarness(t)
	actor := h.join("alice")
	stone := terrain.MaterialID(1)
	cell := terrain.Cell{X: 0, Y: 14, Z: 0}
	h.world.Grid().SetCell(cell, stone)
	h.place(actor, vmath.New(0.5, 11.5, 0.5), vmath.Up)

	require.NoError(t, h.run(command("alice", sim.CommandFire)))
	assert.Equal(t, stone, h.world.Grid().MaterialAt(cell).ID, "one swing is not enough")

	h.idle(400 * time.Millisecond)
	require.NoError(t, h.run(command("alice", sim.CommandFire)))
	assert.True(t, h.world.Grid().MaterialAt(cell).Empty())

	block := actor.Inventory().Slot(4)
	require.NotNil(t, block)
	assert.Equal(t, stone, block.Material)
	assert.Equal(t, 1, block.Quantity)
	assert.NotEmpty(t, cues(h.notes.For("", notify.MessageCue), notify.CueBlockBreak))

	h.world.AwardYield("alice", stone, 2)
	assert.Equal(t, 3, actor.Inventory().Slot(4).Quantity, "yield stacks onto the matching block")
	assert.Nil(t, actor.Inventory().Slot(5))
}

func TestYieldIntoFullInventoryKeepsHeldWeapon(t *testing.T) {
	h := newHarness(t)
	actor := h.join("alice")
	h.place(actor, vmath.New(0.5, 12, 0.5), east)
	inv := actor.Inventory()
	for slot := 4; slot < inv.Size(); slot++ {
		filler, err := h.world.factory.New("rifle")
		require.NoError(t, err)
		_, _, ok := inv.AddItem(filler)
		require.True(t, ok)
	}
	require.NoError(t, h.run(selectSlot("alice", 2)))
	shotgun := inv.ActiveItem()
	require.Equal(t, "shotgun", shotgun.Type)

	h.world.AwardYield("alice", terrain.MaterialID(1), 1)
	assert.Same(t, shotgun, inv.Slot(2))
	assert.True(t, shotgun.Equipped())

	dropped := h.world.GroundItems()
	require.Len(t, dropped, 1)
	block, _, ok := h.world.GroundItem(dropped[0])
	require.True(t, ok)
	assert.Equal(t, terrain.MaterialID(1), block.Material)
}

func TestAimOutsideArenaIsRefused(t *testing.T) {
	h := newHarness(t)
	actor := h.join("alice")
	h.place(actor, vmath.New(0.5, 12, 0.5), east)

	far := vmath.New(1e19, 0, 0)
	assert.False(t, actor.Aim(far, east, false))
	assert.False(t, actor.Aim(vmath.New(0.5, 12, 100), east, false))
	assert.False(t, actor.Aim(vmath.New(0.5, -50, 0.5), east, false))

	done := make(chan error, 1)
	go func() {
		done <- h.run(
			sim.Command{ActorID: "alice", Type: sim.CommandAim, Aim: &sim.AimCommand{Position: far, Facing: east}},
			command("alice", sim.CommandFire),
		)
	}()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("tick did not finish")
	}
	position, ok := actor.Transform()
	require.True(t, ok)
	assert.Equal(t, vmath.New(0.5, 12, 0.5), position.Position)
}

func TestDropAndPickupRoundTrip(t *testing.T) {
	h := newHarness(t)
	actor := h.join("alice")
	h.place(actor, vmath.New(0.5, 12, 0.5), east)
	rifle := actor.Inventory().Slot(1)

	require.NoError(t, h.run(selectSlot("alice", 1), command("alice", sim.CommandDrop)))
	assert.Nil(t, actor.Inventory().Slot(1))
	assert.False(t, rifle.Equipped())
	assert.Equal(t, []string{rifle.ID}, h.world.GroundItems())

	item, position, ok := h.world.GroundItem(rifle.ID)
	require.True(t, ok)
	assert.Same(t, rifle, item)
	assert.Greater(t, position.X, 0.5, "items are thrown along the facing")

	require.NoError(t, h.run(sim.Command{ActorID: "alice", Type: sim.CommandPickup, Pickup: &sim.PickupCommand{ItemID: rifle.ID}}))
	assert.Same(t, rifle, actor.Inventory().Slot(1))
	assert.True(t, rifle.Equipped(), "the pickup lands in the empty active slot")
	assert.Empty(t, h.world.GroundItems())

	removed, ok := h.notes.Last("", notify.MessageGroundItem)
	require.True(t, ok)
	assert.True(t, removed.GroundItem.Removed)
}

func TestToolSlotCannotBeDropped(t *testing.T) {
	h := newHarness(t)
	actor := h.join("alice")
	require.NoError(t, h.run(command("alice", sim.CommandDrop)))
	assert.Equal(t, "pickaxe", actor.Inventory().Slot(0).Type)
	assert.Empty(t, h.world.GroundItems())

	notice, ok := h.notes.Last("alice", notify.MessageNotice)
	require.True(t, ok)
	assert.NotEmpty(t, notice.Notice)
}

func TestPickupOutOfRangeIsRefused(t *testing.T) {
	h := newHarness(t)
	actor := h.join("alice")
	h.place(actor, vmath.New(0.5, 12, 0.5), east)
	require.NoError(t, h.run(selectSlot("alice", 1), command("alice", sim.CommandDrop)))
	dropped := h.world.GroundItems()
	require.Len(t, dropped, 1)

	h.place(actor, vmath.New(-6.5, 12, -6.5), east)
	assert.False(t, actor.Pickup(dropped[0]))
	assert.Len(t, h.world.GroundItems(), 1)
}

func TestDroppedItemsFallAndReportPosition(t *testing.T) {
	h := newHarness(t)
	actor := h.join("alice")
	h.place(actor, vmath.New(0.5, 12, 0.5), east)
	require.NoError(t, h.run(selectSlot("alice", 2), command("alice", sim.CommandDrop)))
	id := h.world.GroundItems()[0]
	_, before, _ := h.world.GroundItem(id)
	updates := len(h.notes.For("", notify.MessageGroundItem))

	h.idle(500 * time.Millisecond)
	_, after, _ := h.world.GroundItem(id)
	assert.Less(t, after.Y, before.Y)
	assert.Greater(t, len(h.notes.For("", notify.MessageGroundItem)), updates)
}

func TestRocketDetonatesOnContact(t *testing.T) {
	h := newHarness(t)
	shooter := h.join("alice")
	target := h.join("bob")
	h.place(shooter, vmath.New(0.5, 12, 0.5), east)
	h.place(target, vmath.New(6.5, 12.6, 0.5), east.Neg())

	require.NoError(t, h.run(selectSlot("alice", 3), command("alice", sim.CommandFire)))
	launcher := shooter.Inventory().ActiveItem()
	assert.Zero(t, launcher.Weapon.Magazine())
	assert.Equal(t, 7, launcher.Weapon.Reserve())

	for i := 0; i < 10 && h.world.Count(KindProjectile) > 0; i++ {
		require.NoError(t, h.run())
	}
	assert.Zero(t, h.world.Count(KindProjectile))
	assert.InDelta(t, DefaultMaxHealth-4, target.Health(), 1e-9)
	assert.Equal(t, DefaultMaxHealth, shooter.Health(), "the shooter stood outside the blast")
	assert.Equal(t, 1, h.world.Count(KindEffect))
	assert.NotEmpty(t, cues(h.notes.For("", notify.MessageCue), notify.CueExplosion))
	assert.Len(t, h.events.OfType(loggingcombat.EventExplosion), 1)

	h.idle(600 * time.Millisecond)
	assert.Zero(t, h.world.Count(KindEffect), "explosion effects fade out")
	var opacities []float64
	for _, msg := range h.notes.For("", notify.MessageEffect) {
		if msg.Effect.Kind == EffectExplosion {
			opacities = append(opacities, msg.Effect.Opacity)
		}
	}
	assert.Equal(t, []float64{1, 0.75, 0.5, 0.25, 0}, opacities)
}

func TestProjectileExpiresAfterLifetime(t *testing.T) {
	h := newHarness(t)
	shooter := h.join("alice")
	h.place(shooter, vmath.New(0.5, 12, 0.5), vmath.Up)

	require.NoError(t, h.run(selectSlot("alice", 3), command("alice", sim.CommandFire)))
	assert.Equal(t, 1, h.world.Count(KindProjectile))

	h.idle(5100 * time.Millisecond)
	assert.Zero(t, h.world.Count(KindProjectile))
	assert.Zero(t, h.world.Count(KindEffect), "expiry does not detonate")
}

func TestMuzzleFlashIsExtinguishedAfterDelay(t *testing.T) {
	h := newHarness(t)
	shooter := h.join("alice")
	h.place(shooter, vmath.New(0.5, 12, 0.5), east)
	require.NoError(t, h.run(selectSlot("alice", 1), command("alice", sim.CommandFire)))

	flashes := muzzleFlashes(h.notes)
	require.Len(t, flashes, 1)
	assert.False(t, flashes[0].Removed)

	h.idle(100 * time.Millisecond)
	flashes = muzzleFlashes(h.notes)
	require.Len(t, flashes, 2)
	assert.True(t, flashes[1].Removed)
}

func TestDryFireWithoutAmmo(t *testing.T) {
	h := newHarness(t)
	actor := h.join("alice")
	h.place(actor, vmath.New(0.5, 12, 0.5), vmath.Up)
	require.NoError(t, h.run(selectSlot("alice", 3)))
	launcher := actor.Inventory().ActiveItem()

	for launcher.Weapon.Reserve() > 0 {
		if launcher.Weapon.Magazine() == 0 {
			require.True(t, actor.Reload())
			h.idle(3100 * time.Millisecond)
		}
		h.idle(1300 * time.Millisecond)
		require.True(t, actor.Fire())
	}
	assert.False(t, actor.Fire())
	assert.NotEmpty(t, cues(h.notes.For("alice", notify.MessageCue), notify.CueDryFire))
}

func TestLeaveRemovesActor(t *testing.T) {
	h := newHarness(t)
	actor := h.join("alice")
	require.NoError(t, h.run(sim.Command{ActorID: "alice", Type: sim.CommandLeave, Leave: &sim.LeaveCommand{Reason: "quit"}}))

	_, ok := h.world.Actor("alice")
	assert.False(t, ok)
	assert.Nil(t, actor.Inventory())
	assert.Zero(t, h.world.Count(KindActor))
	left := h.events.OfType(logginglifecycle.EventActorLeft)
	require.Len(t, left, 1)
	assert.Equal(t, logginglifecycle.ActorLeftPayload{Reason: "quit"}, left[0].Payload)

	assert.Error(t, h.run(command("alice", sim.CommandLeave)))
}

func cues(msgs []notify.Message, name string) []notify.Message {
	var out []notify.Message
	for _, msg := range msgs {
		if msg.Cue != nil && msg.Cue.Name == name {
			out = append(out, msg)
		}
	}
	return out
}

func muzzleFlashes(notes *notify.Recorder) []notify.EffectPayload {
	var out []notify.EffectPayload
	for _, msg := range notes.For("", notify.MessageEffect) {
		if msg.Effect.Kind == EffectMuzzleFlash {
			out = append(out, *msg.Effect)
		}
	}
	return out
}
