package ws

import (
	"context"
	"errors"

	"github.com/gorilla/websocket"

	"voxelfront/server/internal/net/intake"
	"voxelfront/server/internal/net/proto"
	"voxelfront/server/internal/notify"
	"voxelfront/server/internal/sim"
	"voxelfront/server/logging"
	loggingnetwork "voxelfront/server/logging/network"
)

// Conn is the subset of *websocket.Conn a session needs.
type Conn interface {
	notify.Conn
	ReadMessage() (messageType int, p []byte, err error)
}

// session tracks the command sequence numbers one connection has seen. It
// is only touched by the connection's read goroutine.
type session struct {
	actorID string
	lastSeq uint64
}

func (s *session) duplicate(seq uint64) bool {
	return seq > 0 && s.lastSeq > 0 && seq <= s.lastSeq
}

func (s *session) accept(seq uint64) {
	if seq > s.lastSeq {
		s.lastSeq = seq
	}
}

// Serve joins actorID, relays its frames until the connection fails and
// then makes the actor leave unless a newer connection took over.
func (h *Handler) Serve(actorID string, conn Conn, remote string) {
	if h == nil || h.cfg.Hub == nil || conn == nil {
		return
	}
	ctx := context.Background()
	hub := h.cfg.Hub

	hub.Subscribe(actorID, conn)
	if ok, reason := h.enqueue(sim.Command{ActorID: actorID, Type: sim.CommandJoin}); !ok {
		h.cfg.Logger.Printf("[ws] join rejected for %s: %s", actorID, reason)
		hub.Unsubscribe(actorID, conn)
		return
	}
	loggingnetwork.SessionOpened(ctx, h.cfg.Publisher, logging.ActorRef(actorID), loggingnetwork.SessionPayload{Remote: remote})

	reason := h.readLoop(&session{actorID: actorID}, conn)

	hub.Unsubscribe(actorID, conn)
	if !hub.Connected(actorID) {
		h.enqueue(sim.Command{ActorID: actorID, Type: sim.CommandLeave, Leave: &sim.LeaveCommand{Reason: reason}})
	}
	loggingnetwork.SessionClosed(ctx, h.cfg.Publisher, logging.ActorRef(actorID), loggingnetwork.SessionPayload{Remote: remote, Reason: reason})
}

func (h *Handler) readLoop(s *session, conn Conn) string {
	commands := intake.CommandContext{
		Engine:    h.cfg.Commands,
		HasPlayer: h.cfg.Hub.Connected,
		Tick:      h.cfg.Tick,
		Now:       h.cfg.Clock.Now,
	}
	for {
		messageType, payload, err := conn.ReadMessage()
		if err != nil {
			return closeReason(err)
		}
		if messageType != websocket.BinaryMessage {
			h.rejectFrame(s.actorID, "expected a binary frame", len(payload))
			continue
		}
		msg, err := proto.DecodeClientMessage(payload)
		if err != nil {
			h.rejectFrame(s.actorID, err.Error(), len(payload))
			continue
		}

		if msg.Type == proto.TypeHeartbeat {
			h.heartbeat(s.actorID, msg)
			continue
		}
		if s.duplicate(msg.Seq) {
			h.ack(s.actorID, msg.Seq, 0)
			continue
		}

		cmd, ok, reason := intake.StageClientCommand(commands, s.actorID, msg)
		if !ok && reason == intake.CommandRejectInvalidMessage {
			h.cfg.Logger.Printf("[ws] invalid %q message from %s", msg.Type, s.actorID)
		}
		if msg.Seq == 0 {
			continue
		}
		if ok {
			s.accept(msg.Seq)
			h.ack(s.actorID, msg.Seq, cmd.OriginTick)
			continue
		}
		h.cfg.Hub.Notify(s.actorID, notify.Message{
			Type:   notify.MessageCommandReject,
			Reject: &notify.CommandRejectPayload{Seq: msg.Seq, Reason: reason, Retry: intake.Retryable(reason)},
		})
	}
}

func (h *Handler) enqueue(cmd sim.Command) (bool, string) {
	if h.cfg.Commands == nil {
		return false, sim.CommandRejectQueueFull
	}
	cmd.IssuedAt = h.cfg.Clock.Now()
	if h.cfg.Tick != nil {
		cmd.OriginTick = h.cfg.Tick()
	}
	return h.cfg.Commands.Enqueue(cmd)
}

func (h *Handler) ack(actorID string, seq, tick uint64) {
	h.cfg.Hub.Notify(actorID, notify.Message{
		Type: notify.MessageCommandAck,
		Ack:  &notify.CommandAckPayload{Seq: seq, Tick: tick},
	})
}

func (h *Handler) heartbeat(actorID string, msg proto.ClientMessage) {
	now := h.cfg.Clock.Now().UnixMilli()
	payload := &notify.HeartbeatPayload{ServerTime: now, ClientTime: msg.SentAt}
	if msg.SentAt > 0 && now >= msg.SentAt {
		payload.RTTMillis = now - msg.SentAt
	}
	h.cfg.Hub.Notify(actorID, notify.Message{Type: notify.MessageHeartbeat, Heartbeat: payload})
}

func (h *Handler) rejectFrame(actorID, reason string, size int) {
	loggingnetwork.MessageRejected(context.Background(), h.cfg.Publisher, logging.ActorRef(actorID), loggingnetwork.MessageRejectedPayload{
		Error: reason,
		Bytes: size,
	})
}

func closeReason(err error) string {
	var closeErr *websocket.CloseError
	if errors.As(err, &closeErr) {
		switch closeErr.Code {
		case websocket.CloseNormalClosure, websocket.CloseGoingAway:
			return "closed"
		}
		return "close_" + closeErr.Text
	}
	return "connection_lost"
}
