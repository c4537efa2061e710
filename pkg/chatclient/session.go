package chatclient

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

// Session is one live realtime-store session. For customers RoomID is the
// caller's own room; admin sessions carry no room of their own and subscribe
// to rooms off the roster. A session can hold several live subscriptions at
// once (an admin dashboard watching multiple rooms), each with its own
// lifecycle.
type Session struct {
	conn   realtimeConn
	roomID string

	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	closed bool
	errFn  func(error)
	subs   map[*Subscription]struct{}
}

func newSession(conn realtimeConn, roomID string) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	return &Session{
		conn:   conn,
		roomID: roomID,
		ctx:    ctx,
		cancel: cancel,
		subs:   make(map[*Subscription]struct{}),
	}
}

// RoomID returns the session's own room, empty for admin sessions.
func (s *Session) RoomID() string {
	return s.roomID
}

// Closed reports whether the session was torn down, either directly or by a
// newly opened session replacing it.
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// OnError installs the handler that receives send and subscription failures.
// Both are non-fatal to the session: the listener stays live after a failed
// send, and a dead subscription stays dead until the caller re-subscribes.
func (s *Session) OnError(fn func(error)) {
	s.mu.Lock()
	s.errFn = fn
	s.mu.Unlock()
}

// Close tears the session down, cancelling every live subscription. Used
// directly when leaving the chat, and by the client when a newly opened
// session replaces this one.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	subs := make([]*Subscription, 0, len(s.subs))
	for sub := range s.subs {
		subs = append(subs, sub)
	}
	s.mu.Unlock()

	for _, sub := range subs {
		sub.Cancel()
	}
	s.cancel()
	s.conn.close()
}

// Subscription is one live room view. Its state machine is scoped to the
// view, not the session: Subscribing on attach, Live once a snapshot lands,
// Disconnected after Cancel, Error when the stream dies.
type Subscription struct {
	session *Session
	cancel  func()

	mu    sync.Mutex
	state State
}

// State reports the room view's current lifecycle state.
func (sub *Subscription) State() State {
	sub.mu.Lock()
	defer sub.mu.Unlock()
	return sub.state
}

// Cancel detaches the listener. After it returns the callback is never
// invoked again, not even for notifications already in flight. Must not be
// called from inside the update callback.
func (sub *Subscription) Cancel() {
	sub.mu.Lock()
	if sub.state == StateDisconnected {
		sub.mu.Unlock()
		return
	}
	sub.state = StateDisconnected
	sub.mu.Unlock()

	sub.cancel()
	sub.session.forget(sub)
}

// Subscribe attaches a live listener to a room's message log. Every change
// delivers the entire current snapshot re-sorted by timestamp ascending; a
// fresh call always replays the full history. Each call returns its own
// Subscription, so an admin session can watch several rooms independently.
func (s *Session) Subscribe(roomID string, onUpdate func([]Message)) (*Subscription, error) {
	sub := &Subscription{session: s, state: StateSubscribing}

	cancel, err := s.conn.listen(s.ctx, roomID, func(msgs []Message) {
		sub.mu.Lock()
		defer sub.mu.Unlock()
		if sub.state == StateDisconnected || sub.state == StateError {
			return
		}
		sub.state = StateLive
		sortMessages(msgs)
		onUpdate(msgs)
	}, func(streamErr error) {
		sub.mu.Lock()
		if sub.state == StateDisconnected {
			sub.mu.Unlock()
			return
		}
		sub.state = StateError
		sub.mu.Unlock()
		s.reportError(streamErr)
	})
	if err != nil {
		return nil, err
	}
	sub.cancel = cancel

	s.mu.Lock()
	s.subs[sub] = struct{}{}
	s.mu.Unlock()

	return sub, nil
}

// Send appends one message with a client-assigned timestamp. Fire-and-forget:
// validation failures return immediately, everything after that happens off
// the caller's path and failures surface on the error handler. There is no
// retry and the content is not handed back on failure.
func (s *Session) Send(roomID, sender, content string) error {
	if strings.TrimSpace(content) == "" {
		return ErrEmptyMessage
	}

	msg := Message{
		Sender:    sender,
		Content:   content,
		Timestamp: time.Now().UTC(),
	}

	go func() {
		ctx, cancel := context.WithTimeout(s.ctx, 15*time.Second)
		defer cancel()
		if err := s.conn.append(ctx, roomID, msg); err != nil {
			s.reportError(err)
		}
	}()

	return nil
}

func (s *Session) forget(sub *Subscription) {
	s.mu.Lock()
	delete(s.subs, sub)
	s.mu.Unlock()
}

func (s *Session) reportError(err error) {
	s.mu.Lock()
	fn := s.errFn
	s.mu.Unlock()
	if fn != nil {
		fn(err)
	}
}

// sortMessages orders a snapshot by the sender-assigned timestamp, child key
// breaking ties. Display order follows these timestamps, not arrival order,
// so skewed sender clocks can diverge from true send order.
func sortMessages(msgs []Message) {
	sort.Slice(msgs, func(i, j int) bool {
		if msgs[i].Timestamp.Equal(msgs[j].Timestamp) {
			return msgs[i].ID < msgs[j].ID
		}
		return msgs[i].Timestamp.Before(msgs[j].Timestamp)
	})
}
