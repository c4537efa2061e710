package realtime

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/teikkkkk/store-chat/internal/domain/entity"
)

// streamEvent is the payload of a put or patch event on the RTDB streaming
// REST protocol: a path relative to the subscribed location plus the data
// written there.
type streamEvent struct {
	Path string          `json:"path"`
	Data json.RawMessage `json:"data"`
}

// ListenMessages attaches a streaming read to one room's message log and
// invokes fn with the full, sorted snapshot after every server event. The
// Admin SDK has no realtime listener, so this speaks the RTDB REST streaming
// protocol directly: a long-lived text/event-stream response carrying put and
// patch events, which are folded into a materialized map of messages keyed by
// child key.
//
// The connection is established before ListenMessages returns, so a stream
// that cannot be opened surfaces as an error here rather than on errFn. The
// first put event replays the room's full history, which is what makes a fresh
// subscription restartable. errFn receives at most one terminal error
// (auth_revoked, cancel, or a broken stream); cancelling stops the listener
// silently.
func ListenMessages(ctx context.Context, client *http.Client, databaseURL, roomID, authToken string, fn func([]*entity.Message), errFn func(error)) (func(), error) {
	if client == nil {
		client = http.DefaultClient
	}

	streamCtx, cancel := context.WithCancel(ctx)

	url := fmt.Sprintf("%s/%s.json?auth=%s", strings.TrimSuffix(databaseURL, "/"), MessagesPath(roomID), authToken)
	req, err := http.NewRequestWithContext(streamCtx, http.MethodGet, url, nil)
	if err != nil {
		cancel()
		return nil, err
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := client.Do(req)
	if err != nil {
		cancel()
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		cancel()
		return nil, fmt.Errorf("realtime stream rejected: %s", resp.Status)
	}

	go func() {
		defer resp.Body.Close()

		messages := make(map[string]*entity.Message)
		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

		var eventName string
		for scanner.Scan() {
			line := scanner.Text()
			switch {
			case strings.HasPrefix(line, "event:"):
				eventName = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
			case strings.HasPrefix(line, "data:"):
				data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
				switch eventName {
				case "put", "patch":
					var ev streamEvent
					if err := json.Unmarshal([]byte(data), &ev); err != nil {
						continue
					}
					if applyEvent(messages, eventName, &ev) {
						fn(snapshot(messages))
					}
				case "cancel", "auth_revoked":
					if errFn != nil {
						errFn(fmt.Errorf("realtime stream closed by server: %s", eventName))
					}
					return
				}
			}
		}

		if err := scanner.Err(); err != nil && streamCtx.Err() == nil && errFn != nil {
			errFn(err)
		}
	}()

	return cancel, nil
}

// applyEvent folds one server event into the materialized message map and
// reports whether the map changed. Messages are immutable, so only top-level
// child writes occur; deeper paths are ignored.
func applyEvent(messages map[string]*entity.Message, eventName string, ev *streamEvent) bool {
	path := strings.Trim(ev.Path, "/")

	if path == "" {
		var children map[string]json.RawMessage
		if string(ev.Data) == "null" || ev.Data == nil {
			if eventName == "patch" {
				return false
			}
			for k := range messages {
				delete(messages, k)
			}
			return true
		}
		if err := json.Unmarshal(ev.Data, &children); err != nil {
			return false
		}
		if eventName == "put" {
			for k := range messages {
				delete(messages, k)
			}
		}
		for key, raw := range children {
			if msg := decodeMessage(key, raw); msg != nil {
				messages[key] = msg
			}
		}
		return true
	}

	if strings.Contains(path, "/") {
		return false
	}

	if string(ev.Data) == "null" {
		delete(messages, path)
		return true
	}
	if msg := decodeMessage(path, ev.Data); msg != nil {
		messages[path] = msg
		return true
	}
	return false
}

func decodeMessage(key string, raw json.RawMessage) *entity.Message {
	var msg entity.Message
	if err := json.Unmarshal(raw, &msg); err != nil {
		return nil
	}
	msg.ID = key
	return &msg
}

func snapshot(messages map[string]*entity.Message) []*entity.Message {
	out := make([]*entity.Message, 0, len(messages))
	for _, msg := range messages {
		out = append(out, msg)
	}
	SortMessages(out)
	return out
}
