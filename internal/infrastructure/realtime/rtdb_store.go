package realtime

import (
	"context"
	"net/http"

	"firebase.google.com/go/v4/db"

	"github.com/teikkkkk/store-chat/internal/domain/entity"
	"github.com/teikkkkk/store-chat/pkg/errors"
	"github.com/teikkkkk/store-chat/pkg/logger"
)

// TokenSource yields an auth token valid for streaming reads against the
// database. The server side feeds this from a custom-token exchange; the token
// is fetched per subscription, not cached, since credentials are single-use.
type TokenSource func(ctx context.Context) (string, error)

type rtdbStore struct {
	db          *db.Client
	databaseURL string
	tokens      TokenSource
	httpClient  *http.Client
}

// NewRTDBStore wires the Firebase Realtime Database as the message store.
// Appends go through the Admin SDK; live reads go through the REST streaming
// protocol authorized by tokens from the given source.
func NewRTDBStore(dbClient *db.Client, databaseURL string, tokens TokenSource) Store {
	return &rtdbStore{
		db:          dbClient,
		databaseURL: databaseURL,
		tokens:      tokens,
		httpClient:  http.DefaultClient,
	}
}

func (s *rtdbStore) Append(ctx context.Context, roomID string, msg *entity.Message) error {
	ref := s.db.NewRef(MessagesPath(roomID))

	childRef, err := ref.Push(ctx, msg)
	if err != nil {
		return errors.Internal("Failed to append message", err)
	}
	msg.ID = childRef.Key

	return nil
}

func (s *rtdbStore) Subscribe(ctx context.Context, roomID string, fn func([]*entity.Message)) (func(), error) {
	authToken, err := s.tokens(ctx)
	if err != nil {
		return nil, errors.Internal("Failed to authorize realtime subscription", err)
	}

	cancel, err := ListenMessages(ctx, s.httpClient, s.databaseURL, roomID, authToken, fn, func(streamErr error) {
		logger.Error("Realtime subscription for room %s died: %v", roomID, streamErr)
	})
	if err != nil {
		return nil, errors.Internal("Failed to open realtime subscription", err)
	}

	return cancel, nil
}
