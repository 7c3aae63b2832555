package repository

import (
	"context"
	"time"

	"tripsync-service/internal/domain/entity"
)

// TripRepository defines the trip aggregate operations used by the
// ingestion engine. Display-layer queries live elsewhere.
type TripRepository interface {
	FindByID(ctx context.Context, id uint) (*entity.Trip, error)
	// FindContaining returns the user's trips whose date range contains ts.
	FindContaining(ctx context.Context, userID uint, ts time.Time) ([]*entity.Trip, error)
	// ListActiveByUser returns trips ending at or after cutoff, including
	// future trips.
	ListActiveByUser(ctx context.Context, userID uint, cutoff time.Time) ([]*entity.Trip, error)
	Create(ctx context.Context, trip *entity.Trip) error
}

// TripShareRepository is used by the cleanup job only.
type TripShareRepository interface {
	// DeleteExpired removes shares whose expiry is set and in the past,
	// returning how many were removed.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
