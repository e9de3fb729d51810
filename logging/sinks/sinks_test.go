package sinks

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"voxelfront/server/logging"
)

func TestJSONWritesOneObjectPerLine(t *testing.T) {
	var buf bytes.Buffer
	sink := NewJSON(&buf, 0)

	require.NoError(t, sink.Write(logging.Event{
		Type:     "combat.damage",
		Tick:     12,
		Time:     time.Unix(0, 0),
		Severity: logging.SeverityWarn,
		Actor:    logging.ActorRef("a1"),
		Payload:  map[string]any{"amount": 5},
	}))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &decoded))
	assert.Equal(t, "combat.damage", decoded["type"])
	assert.Equal(t, "warn", decoded["severity"])
	assert.Equal(t, float64(12), decoded["tick"])
}

func TestJSONPeriodicFlushStopsOnClose(t *testing.T) {
	defer goleak.VerifyNone(t)

	var buf bytes.Buffer
	sink := NewJSON(&buf, time.Hour)
	require.NoError(t, sink.Write(logging.Event{Type: "x"}))
	assert.Zero(t, buf.Len(), "expected output to stay buffered")

	require.NoError(t, sink.Close(context.Background()))
	assert.Contains(t, buf.String(), `"type":"x"`)
}

func TestConsoleFormatsEntitiesAndPayload(t *testing.T) {
	var buf bytes.Buffer
	sink := NewConsole(&buf)
	require.NoError(t, sink.Write(logging.Event{
		Type:     "inventory.drop",
		Tick:     4,
		Severity: logging.SeverityInfo,
		Actor:    logging.ActorRef("a1"),
		Targets:  []logging.EntityRef{{ID: "i9", Kind: logging.EntityKindItem}},
		Payload:  map[string]string{"item": "rifle"},
	}))

	line := buf.String()
	assert.True(t, strings.Contains(line, "[inventory.drop] tick=4 severity=info actor=actor:a1 targets=item:i9"))
	assert.Contains(t, line, `payload={"item":"rifle"}`)
}

func TestBuildRejectsUnknownSink(t *testing.T) {
	_, err := Build(logging.Config{EnabledSinks: []string{"carrier-pigeon"}}, nil)
	require.Error(t, err)
	oopsErr, ok := oops.AsOops(err)
	require.True(t, ok)
	assert.Equal(t, "LOG_SINK_UNKNOWN", oopsErr.Code())
}

func TestMemoryOfType(t *testing.T) {
	sink := NewMemory()
	sink.Publish(context.Background(), logging.Event{Type: "a"})
	sink.Publish(context.Background(), logging.Event{Type: "b"})
	sink.Publish(context.Background(), logging.Event{Type: "a"})

	assert.Len(t, sink.OfType("a"), 2)
	sink.Reset()
	assert.Empty(t, sink.Events())
}
