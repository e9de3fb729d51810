package combat

import "time"

// MeleeConfig is the immutable tuning of a melee tool.
type MeleeConfig struct {
	AttackRate   float64
	Range        float64
	Damage       float64
	Knockback    float64
	MinesTerrain bool
}

// Melee is a swing-gated close range tool. It has no ammunition or reload.
type Melee struct {
	cfg      MeleeConfig
	gate     RateGate
	equipped bool
}

func NewMelee(cfg MeleeConfig) *Melee {
	return &Melee{cfg: cfg, gate: NewRateGate(cfg.AttackRate)}
}

func (m *Melee) Config() MeleeConfig { return m.cfg }
func (m *Melee) Equipped() bool      { return m.equipped }

func (m *Melee) Equip()   { m.equipped = true }
func (m *Melee) Unequip() { m.equipped = false }

// Ready reports whether a swing at now would pass the attack-rate gate.
func (m *Melee) Ready(now time.Time) bool {
	return m.equipped && m.gate.Ready(now)
}

// Attack swings once. It reports false when the tool is not equipped or
// still on cooldown; a swing that connects with nothing still counts.
func (m *Melee) Attack(hits *HitResolver, req FireRequest) (HitOutcome, bool) {
	if !m.equipped || !m.gate.TryAcquire(req.Now) {
		return HitOutcome{}, false
	}
	return hits.ResolveSingleShot(Shot{
		Shooter:      req.Shooter,
		Ability:      req.Ability,
		Origin:       req.Origin,
		Direction:    req.Direction,
		Range:        m.cfg.Range,
		Damage:       m.cfg.Damage,
		Knockback:    m.cfg.Knockback,
		MinesTerrain: m.cfg.MinesTerrain,
	}), true
}
