package repository

import (
	"context"

	"tripsync-service/internal/domain/entity"
)

// UserRepository reads owner rows maintained by the web application.
type UserRepository interface {
	FindByID(ctx context.Context, id uint) (*entity.User, error)
	// ListScanEnabled returns active users with email scanning turned on.
	ListScanEnabled(ctx context.Context) ([]*entity.User, error)
	// ListCheckinEnabled returns active users with checkin sync turned on.
	ListCheckinEnabled(ctx context.Context) ([]*entity.User, error)
}
