package logging_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"voxelfront/server/logging"
	"voxelfront/server/logging/sinks"
)

func TestRouterDeliversEventsAndDrainsOnClose(t *testing.T) {
	defer goleak.VerifyNone(t)

	fixed := time.Unix(1700000000, 0)
	memory := sinks.NewMemory()
	cfg := logging.DefaultConfig()
	cfg.Fields = map[string]any{"shard": "eu-1"}
	router, err := logging.NewRouter(logging.ClockFunc(func() time.Time { return fixed }), cfg, []logging.NamedSink{{Name: "memory", Sink: memory}})
	require.NoError(t, err)

	router.Publish(context.Background(), logging.Event{Type: "test.info", Tick: 3, Severity: logging.SeverityInfo})
	router.Publish(context.Background(), logging.Event{Type: "test.debug", Severity: logging.SeverityDebug})
	router.Publish(context.Background(), logging.Event{Severity: logging.SeverityError})

	require.NoError(t, router.Close(context.Background()))

	events := memory.Events()
	require.Len(t, events, 1)
	assert.Equal(t, logging.EventType("test.info"), events[0].Type)
	assert.Equal(t, fixed, events[0].Time)
	assert.Equal(t, "eu-1", events[0].Extra["shard"])
	assert.Equal(t, uint64(1), router.Stats().EventsTotal)
	assert.Same(t, memory, router.Sink("memory"))

	router.Publish(context.Background(), logging.Event{Type: "late"})
	assert.Len(t, memory.Events(), 1)
}

func TestWithFieldsDoesNotOverrideEventExtra(t *testing.T) {
	memory := sinks.NewMemory()
	pub := logging.WithFields(memory, map[string]any{"a": 1, "b": 2})

	pub.Publish(context.Background(), logging.Event{Type: "x", Extra: map[string]any{"a": "mine"}})

	events := memory.Events()
	require.Len(t, events, 1)
	assert.Equal(t, "mine", events[0].Extra["a"])
	assert.Equal(t, 2, events[0].Extra["b"])
}

func TestParseSeverity(t *testing.T) {
	assert.Equal(t, logging.SeverityDebug, logging.ParseSeverity("DEBUG"))
	assert.Equal(t, logging.SeverityWarn, logging.ParseSeverity("warning"))
	assert.Equal(t, logging.SeverityError, logging.ParseSeverity(" error "))
	assert.Equal(t, logging.SeverityInfo, logging.ParseSeverity("bogus"))
	assert.Equal(t, "warn", logging.SeverityWarn.String())
}
