package physics

import (
	"math"

	"voxelfront/server/internal/terrain"
	"voxelfront/server/internal/vmath"
)

// BodyKind distinguishes bodies that block rays from loose props.
type BodyKind int

const (
	// BodyActor bodies are spheres that rays can strike.
	BodyActor BodyKind = iota
	// BodyProp bodies move under impulses but are invisible to rays.
	BodyProp
)

// Body is a sphere with point-mass dynamics.
type Body struct {
	ID       string
	Kind     BodyKind
	Position vmath.Vec3
	Velocity vmath.Vec3
	Facing   vmath.Vec3
	Radius   float64
	Mass     float64
}

// SpaceConfig tunes the body integrator.
type SpaceConfig struct {
	// Damping is the fraction of velocity retained after one second.
	Damping float64
	// Gravity is applied to props only; actors are kinematic.
	Gravity float64
}

// DefaultSpaceConfig returns the integrator settings used by the server.
func DefaultSpaceConfig() SpaceConfig {
	return SpaceConfig{Damping: 0.1, Gravity: 9.8}
}

// Space stores bodies and answers ray queries against them and a terrain
// store. It is owned by the simulation goroutine.
type Space struct {
	cfg     SpaceConfig
	terrain terrain.Store
	bodies  map[string]*Body
	order   []string
}

// NewSpace binds a space to the given terrain.
func NewSpace(store terrain.Store, cfg SpaceConfig) *Space {
	return &Space{cfg: cfg, terrain: store, bodies: make(map[string]*Body)}
}

// AddBody inserts or replaces a body.
func (s *Space) AddBody(body Body) {
	if s == nil || body.ID == "" {
		return
	}
	if body.Facing.IsZero() {
		body.Facing = vmath.New(0, 0, -1)
	}
	if _, exists := s.bodies[body.ID]; !exists {
		s.order = append(s.order, body.ID)
	}
	copied := body
	s.bodies[body.ID] = &copied
}

// RemoveBody deletes a body if present.
func (s *Space) RemoveBody(id string) {
	if s == nil {
		return
	}
	if _, ok := s.bodies[id]; !ok {
		return
	}
	delete(s.bodies, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// Body returns a copy of the stored body.
func (s *Space) Body(id string) (Body, bool) {
	if s == nil {
		return Body{}, false
	}
	body, ok := s.bodies[id]
	if !ok {
		return Body{}, false
	}
	return *body, true
}

// SetPose overwrites a body's position and facing.
func (s *Space) SetPose(id string, position, facing vmath.Vec3) bool {
	if s == nil {
		return false
	}
	body, ok := s.bodies[id]
	if !ok {
		return false
	}
	body.Position = position
	if !facing.IsZero() {
		body.Facing = facing.Normalize()
	}
	return true
}

// Transform implements Bodies.
func (s *Space) Transform(id string) (Transform, bool) {
	body, ok := s.Body(id)
	if !ok {
		return Transform{}, false
	}
	return Transform{Position: body.Position, Facing: body.Facing}, true
}

// Mass implements Bodies. Unknown bodies have zero mass.
func (s *Space) Mass(id string) float64 {
	body, ok := s.Body(id)
	if !ok {
		return 0
	}
	return body.Mass
}

// ApplyImpulse implements Bodies.
func (s *Space) ApplyImpulse(id string, impulse vmath.Vec3) {
	if s == nil {
		return
	}
	body, ok := s.bodies[id]
	if !ok || body.Mass <= 0 || !impulse.Finite() {
		return
	}
	body.Velocity = body.Velocity.Add(impulse.Scale(1 / body.Mass))
}

// Step integrates body motion over dt seconds. Props fall under gravity and
// come to rest on solid cells.
func (s *Space) Step(dt float64) {
	if s == nil || dt <= 0 {
		return
	}
	retain := math.Pow(s.cfg.Damping, dt)
	for _, id := range s.order {
		body := s.bodies[id]
		if body.Kind == BodyProp {
			body.Velocity.Y -= s.cfg.Gravity * dt
		}
		next := body.Position.Add(body.Velocity.Scale(dt))
		if body.Kind == BodyProp && s.terrain != nil {
			below := terrain.CellAt(next.Sub(vmath.New(0, body.Radius, 0)))
			if s.terrain.MaterialAt(below).Solid() {
				next.Y = float64(below.Y+1) + body.Radius
				body.Velocity = vmath.Zero
			}
		}
		body.Position = next
		if body.Kind == BodyActor {
			body.Velocity = body.Velocity.Scale(retain)
			if body.Velocity.IsZero() {
				body.Velocity = vmath.Zero
			}
		}
	}
}

// Len reports the number of bodies.
func (s *Space) Len() int {
	if s == nil {
		return 0
	}
	return len(s.bodies)
}
