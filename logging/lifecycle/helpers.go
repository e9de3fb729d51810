package lifecycle

import (
	"context"

	"voxelfront/server/logging"
)

const (
	// EventActorJoined is emitted when an actor spawns into the world.
	EventActorJoined logging.EventType = "lifecycle.actor_joined"
	// EventActorLeft is emitted when an actor is removed from the world.
	EventActorLeft logging.EventType = "lifecycle.actor_left"
)

// ActorJoinedPayload captures spawn metadata for a new actor.
type ActorJoinedPayload struct {
	SpawnX float64 `json:"spawnX"`
	SpawnY float64 `json:"spawnY"`
	SpawnZ float64 `json:"spawnZ"`
}

// ActorLeftPayload captures the reason an actor left.
type ActorLeftPayload struct {
	Reason string `json:"reason"`
}

// ActorJoined publishes an actor spawn.
func ActorJoined(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload ActorJoinedPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventActorJoined,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryLifecycle,
		Payload:  payload,
		Extra:    extra,
	})
}

// ActorLeft publishes an actor removal.
func ActorLeft(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload ActorLeftPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventActorLeft,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryLifecycle,
		Payload:  payload,
		Extra:    extra,
	})
}
