package ws

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"voxelfront/server/internal/net/proto"
	"voxelfront/server/internal/notify"
	"voxelfront/server/internal/sim"
	"voxelfront/server/logging"
)

type recordingEnqueuer struct {
	mu       sync.Mutex
	commands []sim.Command
	reject   map[sim.CommandType]string
}

func (e *recordingEnqueuer) Enqueue(cmd sim.Command) (bool, string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if reason, ok := e.reject[cmd.Type]; ok {
		return false, reason
	}
	e.commands = append(e.commands, cmd)
	return true, ""
}

func (e *recordingEnqueuer) types() []sim.CommandType {
	e.mu.Lock()
	defer e.mu.Unlock()
	types := make([]sim.CommandType, 0, len(e.commands))
	for _, cmd := range e.commands {
		types = append(types, cmd.Type)
	}
	return types
}

func (e *recordingEnqueuer) last() sim.Command {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.commands[len(e.commands)-1]
}

// scriptedConn replays inbound frames and captures outbound ones.
type scriptedConn struct {
	inbound  chan frame
	outbound chan []byte
	mu       sync.Mutex
	closed   bool
}

type frame struct {
	kind int
	data []byte
}

func newScriptedConn() *scriptedConn {
	return &scriptedConn{inbound: make(chan frame, 16), outbound: make(chan []byte, 16)}
}

func (c *scriptedConn) ReadMessage() (int, []byte, error) {
	f, ok := <-c.inbound
	if !ok {
		return 0, nil, &websocket.CloseError{Code: websocket.CloseNormalClosure}
	}
	return f.kind, f.data, nil
}

func (c *scriptedConn) WriteMessage(_ int, data []byte) error {
	c.outbound <- data
	return nil
}

func (c *scriptedConn) SetWriteDeadline(time.Time) error { return nil }

func (c *scriptedConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *scriptedConn) send(t *testing.T, msg proto.ClientMessage) {
	t.Helper()
	data, err := proto.EncodeClientMessage(msg)
	require.NoError(t, err)
	c.inbound <- frame{kind: websocket.BinaryMessage, data: data}
}

func (c *scriptedConn) receive(t *testing.T) notify.Message {
	t.Helper()
	select {
	case data := <-c.outbound:
		msg, err := notify.Decode(data)
		require.NoError(t, err)
		return msg
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for a frame")
		return notify.Message{}
	}
}

type fixture struct {
	hub      *notify.Hub
	commands *recordingEnqueuer
	handler  *Handler
}

func newFixture() *fixture {
	hub := notify.NewHub(notify.HubConfig{})
	commands := &recordingEnqueuer{reject: make(map[sim.CommandType]string)}
	handler := NewHandler(HandlerConfig{
		Hub:      hub,
		Commands: commands,
		Tick:     func() uint64 { return 7 },
		Clock:    logging.ClockFunc(func() time.Time { return time.UnixMilli(10_000) }),
	})
	return &fixture{hub: hub, commands: commands, handler: handler}
}

func (f *fixture) serve(actorID string, conn Conn) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		f.handler.Serve(actorID, conn, "test")
	}()
	return done
}

func TestServeJoinsAcksAndLeaves(t *testing.T) {
	defer goleak.VerifyNone(t)
	f := newFixture()
	defer f.hub.Close()

	conn := newScriptedConn()
	done := f.serve("alice", conn)

	slot := 1
	conn.send(t, proto.ClientMessage{Type: proto.TypeSelect, Seq: 1, Slot: &slot})
	ack := conn.receive(t)
	require.Equal(t, notify.MessageCommandAck, ack.Type)
	require.NotNil(t, ack.Ack)
	assert.Equal(t, uint64(1), ack.Ack.Seq)
	assert.Equal(t, uint64(7), ack.Ack.Tick)

	// A resent frame is acknowledged again without being staged twice.
	conn.send(t, proto.ClientMessage{Type: proto.TypeSelect, Seq: 1, Slot: &slot})
	dup := conn.receive(t)
	require.Equal(t, notify.MessageCommandAck, dup.Type)
	assert.Equal(t, uint64(1), dup.Ack.Seq)

	close(conn.inbound)
	<-done

	assert.Equal(t, []sim.CommandType{sim.CommandJoin, sim.CommandSelect, sim.CommandLeave}, f.commands.types())
	leave := f.commands.last()
	require.NotNil(t, leave.Leave)
	assert.Equal(t, "closed", leave.Leave.Reason)
	assert.False(t, f.hub.Connected("alice"))
}

func TestServeRejectsThrottledCommands(t *testing.T) {
	defer goleak.VerifyNone(t)
	f := newFixture()
	defer f.hub.Close()
	f.commands.reject[sim.CommandFire] = sim.CommandRejectQueueLimit

	conn := newScriptedConn()
	done := f.serve("alice", conn)

	conn.send(t, proto.ClientMessage{Type: proto.TypeFire, Seq: 3})
	reject := conn.receive(t)
	require.Equal(t, notify.MessageCommandReject, reject.Type)
	require.NotNil(t, reject.Reject)
	assert.Equal(t, uint64(3), reject.Reject.Seq)
	assert.Equal(t, sim.CommandRejectQueueLimit, reject.Reject.Reason)
	assert.True(t, reject.Reject.Retry)

	conn.send(t, proto.ClientMessage{Type: proto.TypeSelect, Seq: 4})
	invalid := conn.receive(t)
	require.Equal(t, notify.MessageCommandReject, invalid.Type)
	assert.False(t, invalid.Reject.Retry)

	close(conn.inbound)
	<-done
}

func TestServeAnswersHeartbeats(t *testing.T) {
	defer goleak.VerifyNone(t)
	f := newFixture()
	defer f.hub.Close()

	conn := newScriptedConn()
	done := f.serve("alice", conn)

	conn.inbound <- frame{kind: websocket.TextMessage, data: []byte("hello")}
	conn.send(t, proto.ClientMessage{Type: proto.TypeHeartbeat, SentAt: 9_960})
	beat := conn.receive(t)
	require.Equal(t, notify.MessageHeartbeat, beat.Type)
	require.NotNil(t, beat.Heartbeat)
	assert.Equal(t, int64(10_000), beat.Heartbeat.ServerTime)
	assert.Equal(t, int64(40), beat.Heartbeat.RTTMillis)

	close(conn.inbound)
	<-done
	assert.Equal(t, []sim.CommandType{sim.CommandJoin, sim.CommandLeave}, f.commands.types())
}

func TestServeKeepsActorWhenReplaced(t *testing.T) {
	defer goleak.VerifyNone(t)
	f := newFixture()
	defer f.hub.Close()

	first := newScriptedConn()
	firstDone := f.serve("alice", first)
	require.Eventually(t, func() bool { return f.hub.Connected("alice") }, time.Second, 5*time.Millisecond)

	second := newScriptedConn()
	secondDone := f.serve("alice", second)
	require.Eventually(t, func() bool { return len(f.commands.types()) == 2 }, time.Second, 5*time.Millisecond)

	close(first.inbound)
	<-firstDone
	assert.True(t, f.hub.Connected("alice"))
	assert.Equal(t, []sim.CommandType{sim.CommandJoin, sim.CommandJoin}, f.commands.types())

	close(second.inbound)
	<-secondDone
	assert.Equal(t, sim.CommandLeave, f.commands.last().Type)
}

func TestServeDropsSessionWhenJoinRejected(t *testing.T) {
	defer goleak.VerifyNone(t)
	f := newFixture()
	defer f.hub.Close()
	f.commands.reject[sim.CommandJoin] = sim.CommandRejectQueueFull

	conn := newScriptedConn()
	<-f.serve("alice", conn)
	assert.False(t, f.hub.Connected("alice"))
	assert.Empty(t, f.commands.types())
}

func TestHandleRequiresActor(t *testing.T) {
	f := newFixture()
	defer f.hub.Close()

	srv := httptest.NewServer(http.HandlerFunc(f.handler.Handle))
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHandleUpgradesConnection(t *testing.T) {
	f := newFixture()
	defer f.hub.Close()

	srv := httptest.NewServer(http.HandlerFunc(f.handler.Handle))
	defer srv.Close()

	conn, resp, err := websocket.DefaultDialer.Dial(websocketURL(t, srv.URL, "bob"), nil)
	require.NoError(t, err)
	if resp != nil {
		defer resp.Body.Close()
	}

	data, err := proto.EncodeClientMessage(proto.ClientMessage{Type: proto.TypeReload, Seq: 1})
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(websocket.BinaryMessage, data))

	messageType, payload, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, websocket.BinaryMessage, messageType)
	ack, err := notify.Decode(payload)
	require.NoError(t, err)
	assert.Equal(t, notify.MessageCommandAck, ack.Type)

	_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	conn.Close()

	require.Eventually(t, func() bool {
		types := f.commands.types()
		return len(types) == 3 && types[2] == sim.CommandLeave
	}, time.Second, 10*time.Millisecond)
}

func websocketURL(t *testing.T, raw, actorID string) string {
	t.Helper()
	parsed, err := url.Parse(raw)
	require.NoError(t, err)
	parsed.Scheme = "ws"
	parsed.RawQuery = url.Values{"actor": []string{actorID}}.Encode()
	return parsed.String()
}
