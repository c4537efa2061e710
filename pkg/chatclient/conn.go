package chatclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/teikkkkk/store-chat/internal/domain/entity"
	"github.com/teikkkkk/store-chat/internal/infrastructure/realtime"
)

// realtimeConn is the live realtime-store connection behind a session.
type realtimeConn interface {
	// listen delivers the full sorted snapshot on attach and after every
	// change until cancelled; stream errors go to errFn.
	listen(ctx context.Context, roomID string, fn func([]Message), errFn func(error)) (cancel func(), err error)
	// append writes one message under a store-generated child key.
	append(ctx context.Context, roomID string, msg Message) error
	close()
}

// rtdbConn talks to the Firebase Realtime Database over its REST surface,
// authorized by the ID token obtained from the credential exchange.
type rtdbConn struct {
	databaseURL string
	idToken     string
	httpClient  *http.Client
}

func (c *rtdbConn) listen(ctx context.Context, roomID string, fn func([]Message), errFn func(error)) (func(), error) {
	return realtime.ListenMessages(ctx, c.httpClient, c.databaseURL, roomID, c.idToken, func(msgs []*entity.Message) {
		fn(fromEntities(msgs))
	}, errFn)
}

func (c *rtdbConn) append(ctx context.Context, roomID string, msg Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/%s.json?auth=%s", strings.TrimSuffix(c.databaseURL, "/"), realtime.MessagesPath(roomID), c.idToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("append rejected: %s: %s", resp.Status, string(raw))
	}

	return nil
}

func (c *rtdbConn) close() {}

func fromEntities(msgs []*entity.Message) []Message {
	out := make([]Message, len(msgs))
	for i, m := range msgs {
		out[i] = Message{
			ID:        m.ID,
			Sender:    m.Sender,
			Content:   m.Content,
			Timestamp: m.Timestamp,
		}
	}
	return out
}
