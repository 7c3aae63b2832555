package repository

import (
	"context"
	"errors"
	"time"

	"tripsync-service/internal/domain/entity"
	"tripsync-service/internal/domain/repository"

	"gorm.io/gorm"
)

// GormUserRepository implements the UserRepository interface
type GormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates a new GORM user repository
func NewGormUserRepository(db *gorm.DB) repository.UserRepository {
	return &GormUserRepository{db: db}
}

// Users GORM model for database mapping. The table is owned by the web
// application; this service only reads it.
type Users struct {
	ID                 uint      `gorm:"primaryKey"`
	Username           string    `gorm:"column:username;size:80"`
	Email              string    `gorm:"column:email;size:120"`
	EmailScanEnabled   bool      `gorm:"column:email_scan_enabled"`
	CheckinSyncEnabled bool      `gorm:"column:checkin_sync_enabled"`
	IsActive           bool      `gorm:"column:is_active"`
	CreatedAt          time.Time
}

// TableName overrides the default table name
func (Users) TableName() string {
	return "users"
}

func (m *Users) toEntity() *entity.User {
	return &entity.User{
		ID:                 m.ID,
		Username:           m.Username,
		Email:              m.Email,
		EmailScanEnabled:   m.EmailScanEnabled,
		CheckinSyncEnabled: m.CheckinSyncEnabled,
		IsActive:           m.IsActive,
		CreatedAt:          m.CreatedAt,
	}
}

// FindByID finds a user by id, nil when absent
func (r *GormUserRepository) FindByID(ctx context.Context, id uint) (*entity.User, error) {
	var user Users
	result := r.db.WithContext(ctx).First(&user, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return user.toEntity(), nil
}

// ListScanEnabled returns active users with email scanning turned on
func (r *GormUserRepository) ListScanEnabled(ctx context.Context) ([]*entity.User, error) {
	return r.listWhere(ctx, "is_active AND email_scan_enabled")
}

// ListCheckinEnabled returns active users with checkin sync turned on
func (r *GormUserRepository) ListCheckinEnabled(ctx context.Context) ([]*entity.User, error) {
	return r.listWhere(ctx, "is_active AND checkin_sync_enabled")
}

func (r *GormUserRepository) listWhere(ctx context.Context, cond string) ([]*entity.User, error) {
	var users []Users
	result := r.db.WithContext(ctx).Where(cond).Order("id").Find(&users)
	if result.Error != nil {
		return nil, result.Error
	}

	out := make([]*entity.User, 0, len(users))
	for i := range users {
		out = append(out, users[i].toEntity())
	}
	return out, nil
}
