package repository

import (
	"context"

	"github.com/teikkkkk/store-chat/internal/domain/entity"
)

type ChatRoomRepository interface {
	Create(ctx context.Context, room *entity.ChatRoom) error
	GetByUserID(ctx context.Context, userID string) (*entity.ChatRoom, error)
	GetByRoomID(ctx context.Context, roomID string) (*entity.ChatRoom, error)
	List(ctx context.Context, limit, offset int) ([]*entity.ChatRoom, int64, error)
}
