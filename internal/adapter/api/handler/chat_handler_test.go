package handler_test

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
	"github.com/teikkkkk/store-chat/internal/domain/entity"
	"github.com/teikkkkk/store-chat/internal/infrastructure/realtime"
	"github.com/teikkkkk/store-chat/internal/usecase"
	"github.com/teikkkkk/store-chat/pkg/errors"
)

type stubRoomRepo struct {
	rooms []*entity.ChatRoom
}

func (r *stubRoomRepo) Create(ctx context.Context, room *entity.ChatRoom) error {
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

func (r *stubRoomRepo) GetByUserID(ctx context.Context, userID string) (*entity.ChatRoom, error) {
	for _, room := range r.rooms {
		if room.UserID == userID {
			return room, nil
		}
	}
	return nil, errors.NotFound("Chat room", nil)
}

func (r *stubRoomRepo) GetByRoomID(ctx context.Context, roomID string) (*entity.ChatRoom, error) {
	for _, room := range r.rooms {
		if room.RoomID == roomID {
			return room, nil
		}
	}
	return nil, errors.NotFound("Chat room", nil)
}

func (r *stubRoomRepo) List(ctx context.Context, limit, offset int) ([]*entity.ChatRoom, int64, error) {
	return r.rooms, int64(len(r.rooms)), nil
}

type stubUserRepo struct {
	users map[string]*entity.User
}

func (r *stubUserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, errors.NotFound("User", nil)
	}
	return user, nil
}

type stubMinter struct{}

func (stubMinter) CustomToken(ctx context.Context, uid string) (string, error) {
	return "custom-" + uid, nil
}

func setupChatHandler() (*handler.ChatHandler, *stubRoomRepo, *echo.Echo) {
	roomRepo := &stubRoomRepo{}
	userRepo := &stubUserRepo{users: map[string]*entity.User{
		"u1": {ID: "u1", Username: "alice", Email: "alice@example.com", Role: "user"},
	}}
	uc := usecase.NewChatUseCase(roomRepo, userRepo, stubMinter{}, realtime.NewMemoryStore(), "admin")

	e := echo.New()
	e.Validator = api.NewValidator()

	return handler.NewChatHandler(uc), roomRepo, e
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestCreateChatReturnsRoomAndCredential(t *testing.T) {
	h, _, e := setupChatHandler()

	req := httptest.NewRequest(http.MethodPost, "/v1/chat/create-chat", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("uid", "u1")

	require.NoError(t, h.CreateChat(c))
	assert.Equal(t, http.StatusCreated, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])
	data := body["data"].(map[string]interface{})
	assert.NotEmpty(t, data["room_id"])
	assert.Equal(t, "custom-u1", data["firebase_token"])
}

func TestGetRoomBeforeFirstContactReturns404(t *testing.T) {
	h, _, e := setupChatHandler()

	req := httptest.NewRequest(http.MethodGet, "/v1/chat/get-room", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("uid", "u1")

	require.NoError(t, h.GetRoom(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, false, body["success"])
	errInfo := body["error"].(map[string]interface{})
	assert.Equal(t, "NOT_FOUND", errInfo["code"])
}

func TestGetRoomAfterCreate(t *testing.T) {
	h, roomRepo, e := setupChatHandler()

	createReq := httptest.NewRequest(http.MethodPost, "/v1/chat/create-chat", nil)
	createRec := httptest.NewRecorder()
	createCtx := e.NewContext(createReq, createRec)
	createCtx.Set("uid", "u1")
	require.NoError(t, h.CreateChat(createCtx))
	require.Len(t, roomRepo.rooms, 1)

	req := httptest.NewRequest(http.MethodGet, "/v1/chat/get-room", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("uid", "u1")

	require.NoError(t, h.GetRoom(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	data := decodeBody(t, rec)["data"].(map[string]interface{})
	assert.Equal(t, roomRepo.rooms[0].RoomID, data["room_id"])
	owner := data["user"].(map[string]interface{})
	assert.Equal(t, "alice", owner["username"])
}

func TestRealtimeTokenEndpoint(t *testing.T) {
	h, _, e := setupChatHandler()

	req := httptest.NewRequest(http.MethodGet, "/v1/chat/token", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("uid", "u1")

	require.NoError(t, h.RealtimeToken(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	data := decodeBody(t, rec)["data"].(map[string]interface{})
	assert.Equal(t, "custom-u1", data["token"])
}

func TestSendMessageRequiresContent(t *testing.T) {
	h, roomRepo, e := setupChatHandler()
	require.NoError(t, roomRepo.Create(context.Background(), &entity.ChatRoom{UserID: "u1", Username: "alice"}))

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/v1/chat/rooms/:roomId/messages")
	c.SetParamNames("roomId")
	c.SetParamValues(roomRepo.rooms[0].RoomID)
	c.Set("uid", "u1")

	require.NoError(t, h.SendMessage(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	errInfo := decodeBody(t, rec)["error"].(map[string]interface{})
	assert.Equal(t, "VALIDATION_ERROR", errInfo["code"])
	assert.Contains(t, errInfo["message"], "content")
}

func TestSendMessageAppendsToRoom(t *testing.T) {
	h, roomRepo, e := setupChatHandler()
	require.NoError(t, roomRepo.Create(context.Background(), &entity.ChatRoom{UserID: "u1", Username: "alice"}))

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"content":"hello"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/v1/chat/rooms/:roomId/messages")
	c.SetParamNames("roomId")
	c.SetParamValues(roomRepo.rooms[0].RoomID)
	c.Set("uid", "u1")

	require.NoError(t, h.SendMessage(c))
	assert.Equal(t, http.StatusCreated, rec.Code)

	data := decodeBody(t, rec)["data"].(map[string]interface{})
	assert.Equal(t, "u1", data["sender"])
	assert.Equal(t, "hello", data["content"])
	assert.NotEmpty(t, data["timestamp"])
}

func TestListRoomsPaginatedEnvelope(t *testing.T) {
	h, roomRepo, e := setupChatHandler()
	require.NoError(t, roomRepo.Create(context.Background(), &entity.ChatRoom{UserID: "u1", Username: "alice", Email: "alice@example.com"}))

	req := httptest.NewRequest(http.MethodGet, "/v1/chat/chat-rooms?limit=20&offset=0", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("uid", "admin1")

	require.NoError(t, h.ListRooms(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	data := decodeBody(t, rec)["data"].(map[string]interface{})
	assert.Equal(t, float64(1), data["total"])
	items := data["items"].([]interface{})
	require.Len(t, items, 1)
	entry := items[0].(map[string]interface{})
	assert.NotEmpty(t, entry["room_id"])
}
