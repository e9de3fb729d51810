package app

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voxelfront/server/internal/config"
	"voxelfront/server/internal/net/proto"
	"voxelfront/server/internal/notify"
	"voxelfront/server/internal/telemetry"
)

func testSettings() config.Config {
	settings := config.Default()
	settings.Listen = "127.0.0.1:0"
	settings.World.Extent = 8
	settings.Log.Sinks = []string{"memory"}
	return settings
}

func TestNewRejectsInvalidSettings(t *testing.T) {
	settings := testSettings()
	settings.Sim.TickRate = 0
	_, err := New(Config{Settings: settings, Logger: telemetry.NopLogger(), Stdout: io.Discard})
	assert.ErrorContains(t, err, "invalid config")
}

func TestNewReportsMissingCatalog(t *testing.T) {
	settings := testSettings()
	settings.Catalog = "/nonexistent/catalog.yaml"
	_, err := New(Config{Settings: settings, Logger: telemetry.NopLogger(), Stdout: io.Discard})
	assert.ErrorContains(t, err, "failed to load item catalog")
}

func TestServerRunsAndShutsDown(t *testing.T) {
	server, err := New(Config{Settings: testSettings(), Logger: telemetry.NopLogger(), Stdout: io.Discard})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ready := make(chan string, 1)
	done := make(chan error, 1)
	go func() {
		done <- server.Run(ctx, func(addr string) { ready <- addr })
	}()

	var addr string
	select {
	case addr = <-ready:
	case <-time.After(5 * time.Second):
		t.Fatal("server did not start")
	}

	resp, err := http.Get("http://" + addr + "/health")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, "ok", string(body))

	endpoint := url.URL{Scheme: "ws", Host: addr, Path: "/ws", RawQuery: "actor=alice"}
	conn, wsResp, err := websocket.DefaultDialer.Dial(endpoint.String(), nil)
	require.NoError(t, err)
	if wsResp != nil {
		defer wsResp.Body.Close()
	}
	defer conn.Close()

	readUntil := func(want notify.MessageType) notify.Message {
		t.Helper()
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
		for {
			_, data, err := conn.ReadMessage()
			require.NoError(t, err)
			msg, err := notify.Decode(data)
			require.NoError(t, err)
			if msg.Type == want {
				return msg
			}
		}
	}

	inventory := readUntil(notify.MessageInventory)
	require.NotNil(t, inventory.Inventory)

	frame, err := proto.EncodeClientMessage(proto.ClientMessage{Type: proto.TypeReload, Seq: 1})
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(websocket.BinaryMessage, frame))
	ack := readUntil(notify.MessageCommandAck)
	assert.Equal(t, uint64(1), ack.Ack.Seq)

	resp, err = http.Get("http://" + addr + "/metrics")
	require.NoError(t, err)
	body, err = io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Contains(t, string(body), "voxelfront_")

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("server did not stop")
	}
}
