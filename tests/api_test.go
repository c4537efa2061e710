package tests

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teikkkkk/store-chat/internal/adapter/api"
	"github.com/teikkkkk/store-chat/internal/adapter/api/handler"
	"github.com/teikkkkk/store-chat/internal/adapter/api/middleware"
	"github.com/teikkkkk/store-chat/internal/adapter/api/router"
	"github.com/teikkkkk/store-chat/internal/domain/entity"
	"github.com/teikkkkk/store-chat/internal/infrastructure/realtime"
	"github.com/teikkkkk/store-chat/internal/usecase"
	"github.com/teikkkkk/store-chat/pkg/errors"
	"github.com/teikkkkk/store-chat/pkg/token"
)

type memoryRoomRepo struct {
	rooms []*entity.ChatRoom
}

func (r *memoryRoomRepo) Create(ctx context.Context, room *entity.ChatRoom) error {
	if room.ID == "" {
		room.ID = uuid.New().String()
	}
	if room.RoomID == "" {
		room.RoomID = uuid.New().String()
	}
	room.CreatedAt = time.Now()
	r.rooms = append(r.rooms, room)
	return nil
}

func (r *memoryRoomRepo) GetByUserID(ctx context.Context, userID string) (*entity.ChatRoom, error) {
	for _, room := range r.rooms {
		if room.UserID == userID {
			return room, nil
		}
	}
	return nil, errors.NotFound("Chat room", nil)
}

func (r *memoryRoomRepo) GetByRoomID(ctx context.Context, roomID string) (*entity.ChatRoom, error) {
	for _, room := range r.rooms {
		if room.RoomID == roomID {
			return room, nil
		}
	}
	return nil, errors.NotFound("Chat room", nil)
}

func (r *memoryRoomRepo) List(ctx context.Context, limit, offset int) ([]*entity.ChatRoom, int64, error) {
	return r.rooms, int64(len(r.rooms)), nil
}

type memoryUserRepo struct {
	users map[string]*entity.User
}

func (r *memoryUserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, errors.NotFound("User", nil)
	}
	return user, nil
}

type staticMinter struct{}

func (staticMinter) CustomToken(ctx context.Context, uid string) (string, error) {
	return "custom-" + uid, nil
}

// newTestApp assembles the server exactly as cmd/api/main.go does, with the
// in-memory store and repos standing in for Firebase and Firestore.
func newTestApp() *echo.Echo {
	userRepo := &memoryUserRepo{users: map[string]*entity.User{
		"dev-user":  {ID: "dev-user", Username: "devuser", Email: "devuser@example.com", Role: "user"},
		"dev-admin": {ID: "dev-admin", Username: "devadmin", Email: "devadmin@example.com", Role: "admin"},
	}}
	roomRepo := &memoryRoomRepo{}
	store := realtime.NewMemoryStore()
	tokenManager := token.NewManager("test-secret", 3600)

	chatUseCase := usecase.NewChatUseCase(roomRepo, userRepo, staticMinter{}, store, "admin")
	userUseCase := usecase.NewUserUseCase(userRepo)

	e := echo.New()
	e.Validator = api.NewValidator()

	authMiddleware := middleware.NewAuthMiddleware(tokenManager)
	adminMiddleware := middleware.NewAdminMiddleware(userRepo)

	chatHandler := handler.NewChatHandler(chatUseCase)
	userHandler := handler.NewUserHandler(userUseCase)
	devTokenHandler := handler.NewDevTokenHandler(tokenManager)

	router.Setup(e, userHandler, authMiddleware)
	router.SetupChatRouter(e, chatHandler, authMiddleware, adminMiddleware)
	router.SetupDevRouter(e, devTokenHandler, "development")

	return e
}

func do(t *testing.T, e *echo.Echo, method, path, bearer, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	var reader *strings.Reader
	if body != "" {
		reader = strings.NewReader(body)
	} else {
		reader = strings.NewReader("")
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var decoded map[string]interface{}
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded))
	}
	return rec, decoded
}

func devToken(t *testing.T, e *echo.Echo, path string) string {
	t.Helper()
	rec, body := do(t, e, http.MethodGet, path, "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	return body["data"].(map[string]interface{})["token"].(string)
}

func TestHealthCheck(t *testing.T) {
	e := newTestApp()

	rec, body := do(t, e, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", body["status"])
}

func TestChatEndpointsRequireAuth(t *testing.T) {
	e := newTestApp()

	rec, _ := do(t, e, http.MethodGet, "/v1/chat/get-room", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = do(t, e, http.MethodPost, "/v1/chat/create-chat", "garbage", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCustomerChatFlow(t *testing.T) {
	e := newTestApp()
	primary := devToken(t, e, "/_dev/token/user")

	// before first contact there is no room
	rec, body := do(t, e, http.MethodGet, "/v1/chat/get-room", primary, "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", body["error"].(map[string]interface{})["code"])

	// first contact creates the room and hands back the credential
	rec, body = do(t, e, http.MethodPost, "/v1/chat/create-chat", primary, "")
	require.Equal(t, http.StatusCreated, rec.Code)
	created := body["data"].(map[string]interface{})
	roomID := created["room_id"].(string)
	require.NotEmpty(t, roomID)
	assert.Equal(t, "custom-dev-user", created["firebase_token"])

	// the room is now findable and a fresh credential can be minted
	rec, body = do(t, e, http.MethodGet, "/v1/chat/get-room", primary, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, roomID, body["data"].(map[string]interface{})["room_id"])

	rec, body = do(t, e, http.MethodGet, "/v1/chat/token", primary, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "custom-dev-user", body["data"].(map[string]interface{})["token"])

	// messages append through the backend surface
	rec, body = do(t, e, http.MethodPost, "/v1/chat/rooms/"+roomID+"/messages", primary, `{"content":"hello"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	msg := body["data"].(map[string]interface{})
	assert.Equal(t, "dev-user", msg["sender"])
	assert.Equal(t, "hello", msg["content"])

	// the admin sees the room on the roster
	adminPrimary := devToken(t, e, "/_dev/token/admin")
	rec, body = do(t, e, http.MethodGet, "/v1/chat/chat-rooms", adminPrimary, "")
	require.Equal(t, http.StatusOK, rec.Code)
	items := body["data"].(map[string]interface{})["items"].([]interface{})
	require.Len(t, items, 1)
	assert.Equal(t, roomID, items[0].(map[string]interface{})["room_id"])
}

func TestRosterIsAdminOnly(t *testing.T) {
	e := newTestApp()
	primary := devToken(t, e, "/_dev/token/user")

	rec, _ := do(t, e, http.MethodGet, "/v1/chat/chat-rooms", primary, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestUserInfoEndpoint(t *testing.T) {
	e := newTestApp()
	primary := devToken(t, e, "/_dev/token/user")

	rec, body := do(t, e, http.MethodGet, "/v1/user-info", primary, "")
	require.Equal(t, http.StatusOK, rec.Code)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, "dev-user", data["id"])
	assert.Equal(t, "user", data["role"])
}

func TestDevRouterDisabledOutsideDevelopment(t *testing.T) {
	e := echo.New()
	tokenManager := token.NewManager("test-secret", 3600)
	router.SetupDevRouter(e, handler.NewDevTokenHandler(tokenManager), "production")

	req := httptest.NewRequest(http.MethodGet, "/_dev/token/user", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
