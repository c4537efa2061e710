package repository

import (
	"context"

	"github.com/teikkkkk/store-chat/internal/domain/entity"
)

type UserRepository interface {
	GetByID(ctx context.Context, id string) (*entity.User, error)
}
