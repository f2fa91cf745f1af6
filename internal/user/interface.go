package user

import (
	"context"

	"usersvc/pkg/domain"
)

//go:generate mockgen -package mockuser -source=interface.go -destination=mock/mockuser.go *
type Service interface {
	Create(ctx context.Context, user domain.User) (*domain.User, error)
	List(ctx context.Context, cursor string, limit uint) ([]domain.User, string, error)
	Get(ctx context.Context, id domain.UserID) (*domain.User, error)
}
