package intake

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voxelfront/server/internal/net/proto"
	"voxelfront/server/internal/sim"
)

type fakeEngine struct {
	enqueueOK     bool
	enqueueReason string
	commands      []sim.Command
}

func (f *fakeEngine) Enqueue(cmd sim.Command) (bool, string) {
	f.commands = append(f.commands, cmd)
	if f.enqueueOK {
		return true, ""
	}
	if f.enqueueReason == "" {
		f.enqueueReason = sim.CommandRejectQueueLimit
	}
	return false, f.enqueueReason
}

func newContext(engine Enqueuer, known bool) CommandContext {
	return CommandContext{
		Engine:    engine,
		HasPlayer: func(string) bool { return known },
		Tick:      func() uint64 { return 1 },
		Now:       func() time.Time { return time.Unix(0, 0) },
	}
}

func TestStageClientCommandAcceptsFire(t *testing.T) {
	engine := &fakeEngine{enqueueOK: true}
	issuedAt := time.Unix(100, 0)
	ctx := CommandContext{
		Engine:    engine,
		HasPlayer: func(id string) bool { return id == "actor-1" },
		Tick:      func() uint64 { return 42 },
		Now:       func() time.Time { return issuedAt },
	}

	cmd, ok, reason := StageClientCommand(ctx, "actor-1", proto.ClientMessage{Type: proto.TypeFire})
	require.True(t, ok, reason)
	assert.Equal(t, "actor-1", cmd.ActorID)
	assert.Equal(t, sim.CommandFire, cmd.Type)
	assert.Equal(t, uint64(42), cmd.OriginTick)
	assert.True(t, cmd.IssuedAt.Equal(issuedAt))
	assert.Len(t, engine.commands, 1)
}

func TestStageClientCommandRejections(t *testing.T) {
	tests := []struct {
		name   string
		engine *fakeEngine
		known  bool
		msg    proto.ClientMessage
		reason string
	}{
		{
			name:   "unknown actor",
			engine: &fakeEngine{enqueueOK: true},
			msg:    proto.ClientMessage{Type: proto.TypeFire},
			reason: CommandRejectUnknownActor,
		},
		{
			name:   "malformed select",
			engine: &fakeEngine{enqueueOK: true},
			known:  true,
			msg:    proto.ClientMessage{Type: proto.TypeSelect},
			reason: CommandRejectInvalidMessage,
		},
		{
			name:   "engine throttles",
			engine: &fakeEngine{enqueueReason: sim.CommandRejectQueueLimit},
			known:  true,
			msg:    proto.ClientMessage{Type: proto.TypeReload},
			reason: sim.CommandRejectQueueLimit,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok, reason := StageClientCommand(newContext(tt.engine, tt.known), "actor-1", tt.msg)
			assert.False(t, ok)
			assert.Equal(t, tt.reason, reason)
		})
	}
}

func TestStageClientCommandHandlesNilEngine(t *testing.T) {
	_, ok, reason := StageClientCommand(newContext(nil, true), "actor-1", proto.ClientMessage{Type: proto.TypeFire})
	assert.False(t, ok)
	assert.Equal(t, sim.CommandRejectQueueFull, reason)
}

func TestRetryable(t *testing.T) {
	assert.True(t, Retryable(sim.CommandRejectQueueLimit))
	assert.True(t, Retryable(sim.CommandRejectQueueFull))
	assert.False(t, Retryable(CommandRejectInvalidMessage))
	assert.False(t, Retryable(CommandRejectUnknownActor))
}
