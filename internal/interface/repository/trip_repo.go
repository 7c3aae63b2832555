package repository

import (
	"context"
	"errors"
	"time"

	"tripsync-service/internal/domain/entity"
	"tripsync-service/internal/domain/repository"

	"gorm.io/gorm"
)

// GormTripRepository implements the TripRepository interface
type GormTripRepository struct {
	db *gorm.DB
}

// NewGormTripRepository creates a new GORM trip repository
func NewGormTripRepository(db *gorm.DB) repository.TripRepository {
	return &GormTripRepository{db: db}
}

// Trips GORM model for database mapping
type Trips struct {
	ID                   uint                  `gorm:"primaryKey"`
	UserID               uint                  `gorm:"column:user_id;index"`
	Title                string                `gorm:"column:title;size:200"`
	Description          string                `gorm:"column:description;type:text"`
	Destination          string                `gorm:"column:destination;size:200"`
	DestinationLatitude  *float64              `gorm:"column:destination_latitude"`
	DestinationLongitude *float64              `gorm:"column:destination_longitude"`
	StartDate            time.Time             `gorm:"column:start_date;index"`
	EndDate              time.Time             `gorm:"column:end_date"`
	Visibility           entity.TripVisibility `gorm:"column:visibility;size:20"`
	ConfirmationNumber   string                `gorm:"column:confirmation_number;size:100"`
	AutoDetected         bool                  `gorm:"column:auto_detected"`
	EmailSource          string                `gorm:"column:email_source;size:200"`
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// TableName overrides the default table name
func (Trips) TableName() string {
	return "trips"
}

func (m *Trips) toEntity() *entity.Trip {
	return &entity.Trip{
		ID:                   m.ID,
		UserID:               m.UserID,
		Title:                m.Title,
		Description:          m.Description,
		Destination:          m.Destination,
		DestinationLatitude:  m.DestinationLatitude,
		DestinationLongitude: m.DestinationLongitude,
		StartDate:            m.StartDate,
		EndDate:              m.EndDate,
		Visibility:           m.Visibility,
		ConfirmationNumber:   m.ConfirmationNumber,
		AutoDetected:         m.AutoDetected,
		EmailSource:          m.EmailSource,
		CreatedAt:            m.CreatedAt,
		UpdatedAt:            m.UpdatedAt,
	}
}

// FindByID finds a trip by id
func (r *GormTripRepository) FindByID(ctx context.Context, id uint) (*entity.Trip, error) {
	var trip Trips
	result := r.db.WithContext(ctx).First(&trip, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return trip.toEntity(), nil
}

// FindContaining returns the user's trips whose range contains ts
func (r *GormTripRepository) FindContaining(ctx context.Context, userID uint, ts time.Time) ([]*entity.Trip, error) {
	var trips []Trips
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND start_date <= ? AND end_date >= ?", userID, ts, ts).
		Order("created_at").
		Find(&trips)
	if result.Error != nil {
		return nil, result.Error
	}

	out := make([]*entity.Trip, 0, len(trips))
	for i := range trips {
		out = append(out, trips[i].toEntity())
	}
	return out, nil
}

// ListActiveByUser returns trips ending at or after cutoff
func (r *GormTripRepository) ListActiveByUser(ctx context.Context, userID uint, cutoff time.Time) ([]*entity.Trip, error) {
	var trips []Trips
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND end_date >= ?", userID, cutoff).
		Order("start_date").
		Find(&trips)
	if result.Error != nil {
		return nil, result.Error
	}

	out := make([]*entity.Trip, 0, len(trips))
	for i := range trips {
		out = append(out, trips[i].toEntity())
	}
	return out, nil
}

// Create persists a new trip and backfills the generated id
func (r *GormTripRepository) Create(ctx context.Context, trip *entity.Trip) error {
	row := Trips{
		UserID:               trip.UserID,
		Title:                trip.Title,
		Description:          trip.Description,
		Destination:          trip.Destination,
		DestinationLatitude:  trip.DestinationLatitude,
		DestinationLongitude: trip.DestinationLongitude,
		StartDate:            trip.StartDate,
		EndDate:              trip.EndDate,
		Visibility:           trip.Visibility,
		ConfirmationNumber:   trip.ConfirmationNumber,
		AutoDetected:         trip.AutoDetected,
		EmailSource:          trip.EmailSource,
	}

	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return err
	}

	trip.ID = row.ID
	trip.CreatedAt = row.CreatedAt
	trip.UpdatedAt = row.UpdatedAt
	return nil
}

// GormTripShareRepository implements the TripShareRepository interface
type GormTripShareRepository struct {
	db *gorm.DB
}

// NewGormTripShareRepository creates a new GORM trip share repository
func NewGormTripShareRepository(db *gorm.DB) repository.TripShareRepository {
	return &GormTripShareRepository{db: db}
}

// TripShares GORM model for database mapping
type TripShares struct {
	ID               uint       `gorm:"primaryKey"`
	TripID           uint       `gorm:"column:trip_id;index"`
	SharedWithUserID *uint      `gorm:"column:shared_with_user_id"`
	ShareToken       string     `gorm:"column:share_token;size:100;uniqueIndex"`
	ExternalEmail    string     `gorm:"column:external_email;size:120"`
	CanEdit          bool       `gorm:"column:can_edit"`
	CreatedAt        time.Time
	ExpiresAt        *time.Time `gorm:"column:expires_at;index"`
}

// TableName overrides the default table name
func (TripShares) TableName() string {
	return "trip_shares"
}

// DeleteExpired removes shares whose expiry has passed
func (r *GormTripShareRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("expires_at IS NOT NULL AND expires_at < ?", now).
		Delete(&TripShares{})
	return result.RowsAffected, result.Error
}
