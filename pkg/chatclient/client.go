package chatclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/teikkkkk/store-chat/internal/infrastructure/firebase"
)

const defaultAuthEndpoint = "https://identitytoolkit.googleapis.com/v1/accounts:signInWithCustomToken"

type Config struct {
	// BackendURL is the base URL of the store backend, without trailing slash.
	BackendURL string
	// DatabaseURL is the realtime store's base URL.
	DatabaseURL string
	// APIKey authorizes the custom-token exchange.
	APIKey string
	// AuthEndpoint overrides the Identity Toolkit endpoint; empty means the
	// public one.
	AuthEndpoint string
	// HTTPClient defaults to http.DefaultClient.
	HTTPClient *http.Client
}

// Client performs the session bridge: it turns "is authenticated with the
// backend" into "has an open realtime-store session". A client holds at most
// one live session; opening a new one replaces, never stacks.
type Client struct {
	backendURL   string
	databaseURL  string
	apiKey       string
	authEndpoint string
	httpClient   *http.Client

	// dial exchanges a realtime credential for a live connection; replaced
	// in tests
	dial func(ctx context.Context, customToken string) (realtimeConn, error)

	mu      sync.Mutex
	current *Session
}

func New(cfg Config) *Client {
	c := &Client{
		backendURL:   cfg.BackendURL,
		databaseURL:  cfg.DatabaseURL,
		apiKey:       cfg.APIKey,
		authEndpoint: cfg.AuthEndpoint,
		httpClient:   cfg.HTTPClient,
	}
	if c.authEndpoint == "" {
		c.authEndpoint = defaultAuthEndpoint
	}
	if c.httpClient == nil {
		c.httpClient = http.DefaultClient
	}
	c.dial = c.dialRTDB
	return c
}

// OpenSession runs the customer flow: look up the caller's room, creating it
// on first contact, obtain the realtime credential, and sign in. It must
// complete before any subscription is attempted; on failure no session exists
// and the room view belongs in the error state.
func (c *Client) OpenSession(ctx context.Context, primaryToken string) (*Session, error) {
	var room struct {
		RoomID string `json:"room_id"`
	}
	status, err := c.getJSON(ctx, "/v1/chat/get-room", primaryToken, &room)

	var customToken string
	switch {
	case err == nil:
		var tok struct {
			Token string `json:"token"`
		}
		if _, err := c.getJSON(ctx, "/v1/chat/token", primaryToken, &tok); err != nil {
			return nil, err
		}
		customToken = tok.Token

	case status == http.StatusNotFound:
		var created struct {
			RoomID        string `json:"room_id"`
			FirebaseToken string `json:"firebase_token"`
		}
		if _, err := c.postJSON(ctx, "/v1/chat/create-chat", primaryToken, &created); err != nil {
			return nil, err
		}
		room.RoomID = created.RoomID
		customToken = created.FirebaseToken

	default:
		return nil, err
	}

	return c.openWith(ctx, room.RoomID, customToken)
}

// OpenAdminSession opens the admin-scoped session. The credential is not
// re-scoped per room: one admin session subscribes to any room off the
// roster, with room-level access control left to the realtime store's rules.
func (c *Client) OpenAdminSession(ctx context.Context, primaryToken string) (*Session, error) {
	var created struct {
		FirebaseToken string `json:"firebase_token"`
	}
	if _, err := c.postJSON(ctx, "/v1/chat/create-chat", primaryToken, &created); err != nil {
		return nil, err
	}

	return c.openWith(ctx, "", created.FirebaseToken)
}

// ListRooms fetches the admin roster.
func (c *Client) ListRooms(ctx context.Context, primaryToken string) ([]Room, error) {
	var page struct {
		Items []Room `json:"items"`
		Total int64  `json:"total"`
	}
	if _, err := c.getJSON(ctx, "/v1/chat/chat-rooms", primaryToken, &page); err != nil {
		return nil, err
	}
	return page.Items, nil
}

func (c *Client) openWith(ctx context.Context, roomID, customToken string) (*Session, error) {
	if customToken == "" {
		return nil, fmt.Errorf("%w: backend returned no realtime credential", ErrBridgeFailed)
	}

	conn, err := c.dial(ctx, customToken)
	if err != nil {
		return nil, err
	}

	session := newSession(conn, roomID)

	c.mu.Lock()
	previous := c.current
	c.current = session
	c.mu.Unlock()
	if previous != nil {
		previous.Close()
	}

	return session, nil
}

func (c *Client) dialRTDB(ctx context.Context, customToken string) (realtimeConn, error) {
	idToken, err := firebase.ExchangeCustomToken(ctx, c.httpClient, c.authEndpoint, c.apiKey, customToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBridgeFailed, err)
	}

	return &rtdbConn{
		databaseURL: c.databaseURL,
		idToken:     idToken,
		httpClient:  c.httpClient,
	}, nil
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Client) getJSON(ctx context.Context, path, primaryToken string, out interface{}) (int, error) {
	return c.doJSON(ctx, http.MethodGet, path, primaryToken, out)
}

func (c *Client) postJSON(ctx context.Context, path, primaryToken string, out interface{}) (int, error) {
	return c.doJSON(ctx, http.MethodPost, path, primaryToken, out)
}

func (c *Client) doJSON(ctx context.Context, method, path, primaryToken string, out interface{}) (int, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.backendURL+path, nil)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrBridgeFailed, err)
	}
	req.Header.Set("Authorization", "Bearer "+primaryToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrBridgeFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return resp.StatusCode, ErrUnauthorized
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp.StatusCode, fmt.Errorf("%w: %s %s: %s", ErrBridgeFailed, method, path, resp.Status)
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return resp.StatusCode, fmt.Errorf("%w: %v", ErrBridgeFailed, err)
	}
	if out != nil && env.Data != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return resp.StatusCode, fmt.Errorf("%w: %v", ErrBridgeFailed, err)
		}
	}

	return resp.StatusCode, nil
}
