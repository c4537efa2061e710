package entity

import "time"

// Message is one chat entry. The timestamp is assigned by the sender's clock
// at write time and is the sole ordering key; messages are immutable once
// written. Sender is a user ID, or the fixed admin marker for the support side.
type Message struct {
	ID        string    `json:"id,omitempty" firestore:"id,omitempty"`
	Sender    string    `json:"sender" firestore:"sender"`
	Content   string    `json:"content" firestore:"content"`
	Timestamp time.Time `json:"timestamp" firestore:"timestamp"`
}
