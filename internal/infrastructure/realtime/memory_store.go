package realtime

import (
	"context"
	"fmt"
	"sync"

	"github.com/teikkkkk/store-chat/internal/domain/entity"
	"github.com/teikkkkk/store-chat/pkg/errors"
)

// memorySub gates deliveries on its own liveness. Cancelling takes the same
// lock delivery holds, so once cancel returns no callback is in flight or
// will ever run again. The callback must not call its own cancel.
type memorySub struct {
	mu     sync.Mutex
	fn     func([]*entity.Message)
	active bool
}

func (sub *memorySub) deliver(snap []*entity.Message) {
	sub.mu.Lock()
	defer sub.mu.Unlock()
	if sub.active {
		sub.fn(snap)
	}
}

func (sub *memorySub) stop() {
	sub.mu.Lock()
	sub.active = false
	sub.mu.Unlock()
}

// MemoryStore keeps message logs in process memory with the same subscription
// contract as the RTDB store: full sorted snapshot on attach and after every
// append. Used in tests and when the server runs without Firebase credentials.
type MemoryStore struct {
	mu      sync.Mutex
	rooms   map[string]map[string]*entity.Message
	subs    map[string]map[int]*memorySub
	nextSub int
	nextKey int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		rooms: make(map[string]map[string]*entity.Message),
		subs:  make(map[string]map[int]*memorySub),
	}
}

func (s *MemoryStore) Append(ctx context.Context, roomID string, msg *entity.Message) error {
	if msg.Content == "" {
		return errors.BadRequest("Message content is required", nil)
	}

	s.mu.Lock()
	if msg.ID == "" {
		s.nextKey++
		// zero-padded so key order matches append order, like push keys
		msg.ID = fmt.Sprintf("m%08d", s.nextKey)
	}
	if s.rooms[roomID] == nil {
		s.rooms[roomID] = make(map[string]*entity.Message)
	}
	stored := *msg
	s.rooms[roomID][msg.ID] = &stored

	snap := s.snapshotLocked(roomID)
	subs := make([]*memorySub, 0, len(s.subs[roomID]))
	for _, sub := range s.subs[roomID] {
		subs = append(subs, sub)
	}
	s.mu.Unlock()

	for _, sub := range subs {
		sub.deliver(snap)
	}

	return nil
}

func (s *MemoryStore) Subscribe(ctx context.Context, roomID string, fn func([]*entity.Message)) (func(), error) {
	sub := &memorySub{fn: fn, active: true}

	s.mu.Lock()
	s.nextSub++
	id := s.nextSub
	if s.subs[roomID] == nil {
		s.subs[roomID] = make(map[int]*memorySub)
	}
	s.subs[roomID][id] = sub
	snap := s.snapshotLocked(roomID)
	s.mu.Unlock()

	// initial snapshot replays the full history, empty rooms included
	sub.deliver(snap)

	cancel := func() {
		sub.stop()
		s.mu.Lock()
		delete(s.subs[roomID], id)
		s.mu.Unlock()
	}

	return cancel, nil
}

func (s *MemoryStore) snapshotLocked(roomID string) []*entity.Message {
	out := make([]*entity.Message, 0, len(s.rooms[roomID]))
	for _, msg := range s.rooms[roomID] {
		out = append(out, msg)
	}
	SortMessages(out)
	return out
}
