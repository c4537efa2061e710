package usecase

import "context"

// RealtimeTokenMinter mints the single-use realtime-store credentials. Backed
// by Firebase custom tokens in production, faked in tests.
type RealtimeTokenMinter interface {
	CustomToken(ctx context.Context, uid string) (string, error)
}
