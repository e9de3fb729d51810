// Package network publishes websocket session events.
package network

import (
	"context"

	"voxelfront/server/logging"
)

const (
	// EventSessionOpened is emitted when a client websocket is accepted.
	EventSessionOpened logging.EventType = "network.session_opened"
	// EventSessionClosed is emitted when a client websocket ends.
	EventSessionClosed logging.EventType = "network.session_closed"
	// EventMessageRejected is emitted when a client frame cannot be decoded.
	EventMessageRejected logging.EventType = "network.message_rejected"
)

// SessionPayload describes a websocket session transition.
type SessionPayload struct {
	Remote string `json:"remote,omitempty"`
	Reason string `json:"reason,omitempty"`
}

// MessageRejectedPayload captures why a client frame was discarded.
type MessageRejectedPayload struct {
	Error string `json:"error"`
	Bytes int    `json:"bytes"`
}

func publish(ctx context.Context, pub logging.Publisher, event logging.Event) {
	if pub == nil {
		return
	}
	event.Category = logging.CategorySystem
	pub.Publish(ctx, event)
}

// SessionOpened publishes an accepted connection.
func SessionOpened(ctx context.Context, pub logging.Publisher, actor logging.EntityRef, payload SessionPayload) {
	publish(ctx, pub, logging.Event{Type: EventSessionOpened, Actor: actor, Severity: logging.SeverityInfo, Payload: payload})
}

// SessionClosed publishes a finished connection.
func SessionClosed(ctx context.Context, pub logging.Publisher, actor logging.EntityRef, payload SessionPayload) {
	publish(ctx, pub, logging.Event{Type: EventSessionClosed, Actor: actor, Severity: logging.SeverityInfo, Payload: payload})
}

// MessageRejected publishes an undecodable client frame.
func MessageRejected(ctx context.Context, pub logging.Publisher, actor logging.EntityRef, payload MessageRejectedPayload) {
	publish(ctx, pub, logging.Event{Type: EventMessageRejected, Actor: actor, Severity: logging.SeverityWarn, Payload: payload})
}
