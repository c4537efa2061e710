package entity

import "time"

// ChatRoom pairs one customer with the support side. The RoomID is the key the
// realtime store files the room's message log under; the owner fields are
// denormalized so the admin roster renders without extra user lookups.
type ChatRoom struct {
	ID        string    `json:"id" firestore:"id"`
	RoomID    string    `json:"room_id" firestore:"roomId"`
	UserID    string    `json:"user_id" firestore:"userId"`
	Username  string    `json:"username" firestore:"username"`
	Email     string    `json:"email" firestore:"email"`
	CreatedAt time.Time `json:"created_at" firestore:"createdAt"`
}
