package notify

import "sync"

// Notifier delivers messages. Implementations must not block the caller for
// long: the simulation goroutine is the only producer.
type Notifier interface {
	// Notify delivers msg to a single actor.
	Notify(actorID string, msg Message)
	// Broadcast delivers msg to every connected actor.
	Broadcast(msg Message)
}

type nopNotifier struct{}

func (nopNotifier) Notify(string, Message) {}
func (nopNotifier) Broadcast(Message)      {}

// Nop discards every message.
func Nop() Notifier {
	return nopNotifier{}
}

// Envelope pairs a recorded message with its recipient. Broadcasts have an
// empty ActorID.
type Envelope struct {
	ActorID string
	Message Message
}

// Recorder keeps every message in memory.
type Recorder struct {
	mu        sync.Mutex
	envelopes []Envelope
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Notify(actorID string, msg Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.envelopes = append(r.envelopes, Envelope{ActorID: actorID, Message: msg})
}

func (r *Recorder) Broadcast(msg Message) {
	r.Notify("", msg)
}

// Envelopes returns a copy of everything recorded.
func (r *Recorder) Envelopes() []Envelope {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Envelope(nil), r.envelopes...)
}

// For returns the messages of the given type addressed to actorID.
func (r *Recorder) For(actorID string, msgType MessageType) []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Message
	for _, env := range r.envelopes {
		if env.ActorID == actorID && env.Message.Type == msgType {
			out = append(out, env.Message)
		}
	}
	return out
}

// Last returns the most recent message of the given type for actorID.
func (r *Recorder) Last(actorID string, msgType MessageType) (Message, bool) {
	messages := r.For(actorID, msgType)
	if len(messages) == 0 {
		return Message{}, false
	}
	return messages[len(messages)-1], true
}

// Reset discards everything recorded.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.envelopes = nil
}
