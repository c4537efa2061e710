package repository

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/teikkkkk/store-chat/internal/domain/entity"
	"github.com/teikkkkk/store-chat/internal/domain/repository"
	"github.com/teikkkkk/store-chat/pkg/errors"
	"github.com/teikkkkk/store-chat/pkg/logger"
)

type firestoreChatRoomRepository struct {
	client *firestore.Client
}

func NewFirestoreChatRoomRepository(client *firestore.Client) repository.ChatRoomRepository {
	return &firestoreChatRoomRepository{
		client: client,
	}
}

func (r *firestoreChatRoomRepository) Create(ctx context.Context, room *entity.ChatRoom) error {
	if room.ID == "" {
		room.ID = uuid.New().String()
	}
	if room.RoomID == "" {
		room.RoomID = uuid.New().String()
	}
	room.CreatedAt = time.Now()

	_, err := r.client.Collection("chat_rooms").Doc(room.ID).Set(ctx, room)
	if err != nil {
		return errors.Internal("Failed to create chat room", err)
	}

	return nil
}

func (r *firestoreChatRoomRepository) GetByUserID(ctx context.Context, userID string) (*entity.ChatRoom, error) {
	query := r.client.Collection("chat_rooms").Where("userId", "==", userID).Limit(1)
	iter := query.Documents(ctx)
	doc, err := iter.Next()

	if err != nil {
		if err == iterator.Done {
			return nil, errors.NotFound("Chat room", nil)
		}
		return nil, errors.Internal("Failed to query chat room by user", err)
	}

	var room entity.ChatRoom
	if err := doc.DataTo(&room); err != nil {
		return nil, errors.Internal("Failed to parse chat room data", err)
	}

	return &room, nil
}

func (r *firestoreChatRoomRepository) GetByRoomID(ctx context.Context, roomID string) (*entity.ChatRoom, error) {
	query := r.client.Collection("chat_rooms").Where("roomId", "==", roomID).Limit(1)
	iter := query.Documents(ctx)
	doc, err := iter.Next()

	if err != nil {
		if err == iterator.Done {
			return nil, errors.NotFound("Chat room", nil)
		}
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Chat room", err)
		}
		return nil, errors.Internal("Failed to query chat room", err)
	}

	var room entity.ChatRoom
	if err := doc.DataTo(&room); err != nil {
		return nil, errors.Internal("Failed to parse chat room data", err)
	}

	return &room, nil
}

func (r *firestoreChatRoomRepository) List(ctx context.Context, limit, offset int) ([]*entity.ChatRoom, int64, error) {
	query := r.client.Collection("chat_rooms").OrderBy("createdAt", firestore.Desc)

	allDocs, err := query.Documents(ctx).GetAll()
	if err != nil {
		logger.Error("Firestore error while listing chat rooms: %v", err)
		return nil, 0, errors.Internal("Failed to list chat rooms", err)
	}

	total := int64(len(allDocs))

	start := offset
	end := len(allDocs)
	if limit > 0 {
		end = start + limit
		if end > len(allDocs) {
			end = len(allDocs)
		}
	}
	if start > len(allDocs) {
		start = len(allDocs)
	}

	var rooms []*entity.ChatRoom
	for i := start; i < end; i++ {
		var room entity.ChatRoom
		if err := allDocs[i].DataTo(&room); err != nil {
			logger.Warn("Skipping malformed chat room document: %v", err)
			continue
		}
		rooms = append(rooms, &room)
	}

	return rooms, total, nil
}
