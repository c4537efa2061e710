package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/teikkkkk/store-chat/internal/domain/entity"
	"github.com/teikkkkk/store-chat/internal/domain/repository"
	"github.com/teikkkkk/store-chat/internal/infrastructure/realtime"
	"github.com/teikkkkk/store-chat/pkg/errors"
	"github.com/teikkkkk/store-chat/pkg/logger"
)

type ChatUseCase struct {
	roomRepo      repository.ChatRoomRepository
	userRepo      repository.UserRepository
	tokens        RealtimeTokenMinter
	store         realtime.Store
	adminSenderID string
}

func NewChatUseCase(
	roomRepo repository.ChatRoomRepository,
	userRepo repository.UserRepository,
	tokens RealtimeTokenMinter,
	store realtime.Store,
	adminSenderID string,
) *ChatUseCase {
	return &ChatUseCase{
		roomRepo:      roomRepo,
		userRepo:      userRepo,
		tokens:        tokens,
		store:         store,
		adminSenderID: adminSenderID,
	}
}

type RoomOwner struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type ChatRoomResponse struct {
	ID        string    `json:"id"`
	User      RoomOwner `json:"user"`
	RoomID    string    `json:"room_id"`
	CreatedAt time.Time `json:"created_at"`
}

type CreateChatResult struct {
	RoomID        string `json:"room_id,omitempty"`
	FirebaseToken string `json:"firebase_token"`
}

func roomResponse(room *entity.ChatRoom) *ChatRoomResponse {
	return &ChatRoomResponse{
		ID: room.ID,
		User: RoomOwner{
			ID:       room.UserID,
			Username: room.Username,
			Email:    room.Email,
		},
		RoomID:    room.RoomID,
		CreatedAt: room.CreatedAt,
	}
}

// CreateChat gets or creates the caller's room and mints the realtime-store
// credential in one call. For customers the room is per-user and idempotent;
// admins get the fixed admin-scoped credential and pick a room from the roster
// afterwards, so no room is created for them.
func (uc *ChatUseCase) CreateChat(ctx context.Context, userID string) (*CreateChatResult, error) {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if user.IsAdmin() {
		firebaseToken, err := uc.tokens.CustomToken(ctx, uc.adminSenderID)
		if err != nil {
			logger.Error("Failed to mint admin realtime credential: %v", err)
			return nil, errors.Internal("Failed to mint realtime credential", err)
		}
		return &CreateChatResult{FirebaseToken: firebaseToken}, nil
	}

	room, err := uc.roomRepo.GetByUserID(ctx, userID)
	if err != nil {
		if !errors.Is(err, "NOT_FOUND") {
			return nil, err
		}
		room = &entity.ChatRoom{
			UserID:   user.ID,
			Username: user.Username,
			Email:    user.Email,
		}
		if err := uc.roomRepo.Create(ctx, room); err != nil {
			logger.Error("Failed to create chat room for user %s: %v", userID, err)
			return nil, err
		}
	}

	firebaseToken, err := uc.tokens.CustomToken(ctx, userID)
	if err != nil {
		logger.Error("Failed to mint realtime credential for user %s: %v", userID, err)
		return nil, errors.Internal("Failed to mint realtime credential", err)
	}

	return &CreateChatResult{
		RoomID:        room.RoomID,
		FirebaseToken: firebaseToken,
	}, nil
}

// GetRoom returns the caller's existing room, or NOT_FOUND if they have never
// opened a chat. Admins own no room.
func (uc *ChatUseCase) GetRoom(ctx context.Context, userID string) (*ChatRoomResponse, error) {
	room, err := uc.roomRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return roomResponse(room), nil
}

// RealtimeToken mints a fresh credential for a caller whose room already
// exists. One exchange per room-open; credentials are never cached.
func (uc *ChatUseCase) RealtimeToken(ctx context.Context, userID string) (string, error) {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return "", err
	}

	uid := userID
	if user.IsAdmin() {
		uid = uc.adminSenderID
	}

	firebaseToken, err := uc.tokens.CustomToken(ctx, uid)
	if err != nil {
		logger.Error("Failed to mint realtime credential for %s: %v", uid, err)
		return "", errors.Internal("Failed to mint realtime credential", err)
	}

	return firebaseToken, nil
}

// ListRooms returns the admin roster ordered by creation time.
func (uc *ChatUseCase) ListRooms(ctx context.Context, limit, offset int) ([]*ChatRoomResponse, int64, error) {
	rooms, total, err := uc.roomRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]*ChatRoomResponse, 0, len(rooms))
	for _, room := range rooms {
		responses = append(responses, roomResponse(room))
	}

	return responses, total, nil
}

// Authorize checks that the caller may attach to a room and returns the sender
// identifier their messages carry: the admin marker for admins, the user ID
// for the room's owner.
func (uc *ChatUseCase) Authorize(ctx context.Context, userID, roomID string) (string, error) {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return "", err
	}

	if user.IsAdmin() {
		return uc.adminSenderID, nil
	}

	room, err := uc.roomRepo.GetByRoomID(ctx, roomID)
	if err != nil {
		return "", err
	}
	if room.UserID != userID {
		return "", errors.Forbidden("You do not have access to this chat room", nil)
	}

	return userID, nil
}

// SendMessage appends one entry to a room's log on behalf of the caller. The
// timestamp is assigned here, on the writer's side, matching the client
// write path.
func (uc *ChatUseCase) SendMessage(ctx context.Context, userID, roomID, content string) (*entity.Message, error) {
	if strings.TrimSpace(content) == "" {
		return nil, errors.BadRequest("Message content is required", nil)
	}

	sender, err := uc.Authorize(ctx, userID, roomID)
	if err != nil {
		return nil, err
	}

	msg := &entity.Message{
		Sender:    sender,
		Content:   content,
		Timestamp: time.Now().UTC(),
	}
	if err := uc.store.Append(ctx, roomID, msg); err != nil {
		logger.Error("Failed to append message to room %s: %v", roomID, err)
		return nil, err
	}

	return msg, nil
}

// Subscribe attaches a snapshot listener to a room after checking access.
func (uc *ChatUseCase) Subscribe(ctx context.Context, userID, roomID string, fn func([]*entity.Message)) (func(), error) {
	if _, err := uc.Authorize(ctx, userID, roomID); err != nil {
		return nil, err
	}
	return uc.store.Subscribe(ctx, roomID, fn)
}
