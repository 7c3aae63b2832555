package repository

import (
	"context"
	"errors"
	"time"

	"tripsync-service/internal/domain/entity"
	"tripsync-service/internal/domain/repository"

	"gorm.io/gorm"
)

// GormCheckInRepository implements the CheckInRepository interface
type GormCheckInRepository struct {
	db *gorm.DB
}

// NewGormCheckInRepository creates a new GORM checkin repository
func NewGormCheckInRepository(db *gorm.DB) repository.CheckInRepository {
	return &GormCheckInRepository{db: db}
}

// CheckIns GORM model for database mapping
type CheckIns struct {
	ID            uint      `gorm:"primaryKey"`
	TripID        uint      `gorm:"column:trip_id;index"`
	UserID        uint      `gorm:"column:user_id;index"`
	ExternalID    string    `gorm:"column:external_id;size:100;uniqueIndex"`
	VenueName     string    `gorm:"column:venue_name;size:255"`
	VenueCategory string    `gorm:"column:venue_category;size:255"`
	VenueAddress  string    `gorm:"column:venue_address;size:500"`
	Latitude      float64   `gorm:"column:latitude"`
	Longitude     float64   `gorm:"column:longitude"`
	CheckinTime   time.Time `gorm:"column:checkin_time;index"`
	Shout         string    `gorm:"column:shout;type:text"`
	PhotoURL      string    `gorm:"column:photo_url;size:500"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// TableName overrides the default table name
func (CheckIns) TableName() string {
	return "checkins"
}

func (m *CheckIns) toEntity() *entity.CheckIn {
	return &entity.CheckIn{
		ID:            m.ID,
		TripID:        m.TripID,
		UserID:        m.UserID,
		ExternalID:    m.ExternalID,
		VenueName:     m.VenueName,
		VenueCategory: m.VenueCategory,
		VenueAddress:  m.VenueAddress,
		Latitude:      m.Latitude,
		Longitude:     m.Longitude,
		CheckinTime:   m.CheckinTime,
		Shout:         m.Shout,
		PhotoURL:      m.PhotoURL,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

func checkinRow(c *entity.CheckIn) CheckIns {
	return CheckIns{
		ID:            c.ID,
		TripID:        c.TripID,
		UserID:        c.UserID,
		ExternalID:    c.ExternalID,
		VenueName:     c.VenueName,
		VenueCategory: c.VenueCategory,
		VenueAddress:  c.VenueAddress,
		Latitude:      c.Latitude,
		Longitude:     c.Longitude,
		CheckinTime:   c.CheckinTime,
		Shout:         c.Shout,
		PhotoURL:      c.PhotoURL,
	}
}

// FindByExternalID finds a checkin by the feed's id, nil when absent
func (r *GormCheckInRepository) FindByExternalID(ctx context.Context, externalID string) (*entity.CheckIn, error) {
	var checkin CheckIns
	result := r.db.WithContext(ctx).Where("external_id = ?", externalID).First(&checkin)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return checkin.toEntity(), nil
}

// Create persists a new checkin and backfills the generated id
func (r *GormCheckInRepository) Create(ctx context.Context, checkin *entity.CheckIn) error {
	row := checkinRow(checkin)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return err
	}
	checkin.ID = row.ID
	return nil
}

// Update saves the full checkin row
func (r *GormCheckInRepository) Update(ctx context.Context, checkin *entity.CheckIn) error {
	row := checkinRow(checkin)
	return r.db.WithContext(ctx).Save(&row).Error
}

// GormAccommodationRepository implements the AccommodationRepository interface
type GormAccommodationRepository struct {
	db *gorm.DB
}

// NewGormAccommodationRepository creates a new GORM accommodation repository
func NewGormAccommodationRepository(db *gorm.DB) repository.AccommodationRepository {
	return &GormAccommodationRepository{db: db}
}

// Accommodations GORM model for database mapping
type Accommodations struct {
	ID                 uint      `gorm:"primaryKey"`
	TripID             uint      `gorm:"column:trip_id;index"`
	NaturalKey         string    `gorm:"column:natural_key;size:200;uniqueIndex"`
	Name               string    `gorm:"column:name;size:200"`
	Address            string    `gorm:"column:address;type:text"`
	CheckIn            time.Time `gorm:"column:check_in"`
	CheckOut           time.Time `gorm:"column:check_out"`
	ConfirmationNumber string    `gorm:"column:confirmation_number;size:100"`
	Phone              string    `gorm:"column:phone;size:50"`
	Latitude           *float64  `gorm:"column:latitude"`
	Longitude          *float64  `gorm:"column:longitude"`
	Notes              string    `gorm:"column:notes;type:text"`
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// TableName overrides the default table name
func (Accommodations) TableName() string {
	return "accommodations"
}

func (m *Accommodations) toEntity() *entity.Accommodation {
	return &entity.Accommodation{
		ID:                 m.ID,
		TripID:             m.TripID,
		NaturalKey:         m.NaturalKey,
		Name:               m.Name,
		Address:            m.Address,
		CheckIn:            m.CheckIn,
		CheckOut:           m.CheckOut,
		ConfirmationNumber: m.ConfirmationNumber,
		Phone:              m.Phone,
		Latitude:           m.Latitude,
		Longitude:          m.Longitude,
		Notes:              m.Notes,
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}
}

func accommodationRow(a *entity.Accommodation) Accommodations {
	return Accommodations{
		ID:                 a.ID,
		TripID:             a.TripID,
		NaturalKey:         a.NaturalKey,
		Name:               a.Name,
		Address:            a.Address,
		CheckIn:            a.CheckIn,
		CheckOut:           a.CheckOut,
		ConfirmationNumber: a.ConfirmationNumber,
		Phone:              a.Phone,
		Latitude:           a.Latitude,
		Longitude:          a.Longitude,
		Notes:              a.Notes,
	}
}

// FindByNaturalKey finds an accommodation by natural key, nil when absent
func (r *GormAccommodationRepository) FindByNaturalKey(ctx context.Context, key string) (*entity.Accommodation, error) {
	var acc Accommodations
	result := r.db.WithContext(ctx).Where("natural_key = ?", key).First(&acc)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return acc.toEntity(), nil
}

// Create persists a new accommodation and backfills the generated id
func (r *GormAccommodationRepository) Create(ctx context.Context, acc *entity.Accommodation) error {
	row := accommodationRow(acc)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return err
	}
	acc.ID = row.ID
	return nil
}

// Update saves the full accommodation row
func (r *GormAccommodationRepository) Update(ctx context.Context, acc *entity.Accommodation) error {
	row := accommodationRow(acc)
	return r.db.WithContext(ctx).Save(&row).Error
}
