package repository

import (
	"context"
	"time"

	"tripsync-service/internal/domain/entity"
)

// FlightRepository defines flight persistence keyed by natural key.
type FlightRepository interface {
	// FindByNaturalKey returns nil, nil when no flight matches.
	FindByNaturalKey(ctx context.Context, key string) (*entity.Flight, error)
	Create(ctx context.Context, flight *entity.Flight) error
	Update(ctx context.Context, flight *entity.Flight) error
	// ListDepartingBetween returns non-cancelled flights with a departure
	// inside [from, to).
	ListDepartingBetween(ctx context.Context, from, to time.Time) ([]*entity.Flight, error)
}

// AccommodationRepository defines lodging persistence keyed by natural key.
type AccommodationRepository interface {
	FindByNaturalKey(ctx context.Context, key string) (*entity.Accommodation, error)
	Create(ctx context.Context, acc *entity.Accommodation) error
	Update(ctx context.Context, acc *entity.Accommodation) error
}

// CheckInRepository defines checkin persistence keyed by the feed's
// external id.
type CheckInRepository interface {
	FindByExternalID(ctx context.Context, externalID string) (*entity.CheckIn, error)
	Create(ctx context.Context, checkin *entity.CheckIn) error
	Update(ctx context.Context, checkin *entity.CheckIn) error
}
