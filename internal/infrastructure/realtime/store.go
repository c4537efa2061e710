// Package realtime integrates the per-room message logs kept in the realtime
// store. Every room's log lives under chat_rooms/{roomID}/messages; reads are
// live subscriptions that deliver the full current snapshot on any change, and
// writes are append-only under store-generated child keys.
package realtime

import (
	"context"
	"sort"

	"github.com/teikkkkk/store-chat/internal/domain/entity"
)

// Store is the message-log surface the chat feature consumes. Subscribe
// registers a live listener for one room: the callback receives the entire
// current message set, sorted, on the initial attach and again after every
// append. The returned cancel func detaches the listener; after it returns the
// callback is never invoked again.
type Store interface {
	Append(ctx context.Context, roomID string, msg *entity.Message) error
	Subscribe(ctx context.Context, roomID string, fn func([]*entity.Message)) (cancel func(), err error)
}

// MessagesPath returns the realtime-store path of a room's message log.
func MessagesPath(roomID string) string {
	return "chat_rooms/" + roomID + "/messages"
}

// SortMessages orders a snapshot chronologically by the sender-assigned
// timestamp. Clocks are client-owned, so two skewed senders can interleave out
// of true send order; the child key breaks exact ties to keep the order stable.
func SortMessages(msgs []*entity.Message) {
	sort.Slice(msgs, func(i, j int) bool {
		if msgs[i].Timestamp.Equal(msgs[j].Timestamp) {
			return msgs[i].ID < msgs[j].ID
		}
		return msgs[i].Timestamp.Before(msgs[j].Timestamp)
	})
}
