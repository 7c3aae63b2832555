package repository

import (
	"context"
	"errors"
	"time"

	"tripsync-service/internal/domain/entity"
	"tripsync-service/internal/domain/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormCredentialRepository implements the CredentialRepository interface
type GormCredentialRepository struct {
	db *gorm.DB
}

// NewGormCredentialRepository creates a new GORM credential repository
func NewGormCredentialRepository(db *gorm.DB) repository.CredentialRepository {
	return &GormCredentialRepository{db: db}
}

// CredentialBundles GORM model for database mapping
type CredentialBundles struct {
	ID             uint            `gorm:"primaryKey"`
	UserID         uint            `gorm:"column:user_id;uniqueIndex:idx_cred_user_provider"`
	Provider       entity.Provider `gorm:"column:provider;size:20;uniqueIndex:idx_cred_user_provider"`
	EmailAddress   string          `gorm:"column:email_address;size:120"`
	AccessToken    string          `gorm:"column:access_token;type:text"`
	RefreshToken   string          `gorm:"column:refresh_token;type:text"`
	ExpiresAt      time.Time       `gorm:"column:expires_at"`
	NeedsReconnect bool            `gorm:"column:needs_reconnect"`
	LastValidated  time.Time       `gorm:"column:last_validated"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// TableName overrides the default table name
func (CredentialBundles) TableName() string {
	return "credential_bundles"
}

func (m *CredentialBundles) toEntity() *entity.CredentialBundle {
	return &entity.CredentialBundle{
		ID:             m.ID,
		UserID:         m.UserID,
		Provider:       m.Provider,
		EmailAddress:   m.EmailAddress,
		AccessToken:    m.AccessToken,
		RefreshToken:   m.RefreshToken,
		ExpiresAt:      m.ExpiresAt,
		NeedsReconnect: m.NeedsReconnect,
		LastValidated:  m.LastValidated,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

// GetByUserAndProvider finds the bundle for one (user, provider) pair
func (r *GormCredentialRepository) GetByUserAndProvider(ctx context.Context, userID uint, provider entity.Provider) (*entity.CredentialBundle, error) {
	var bundle CredentialBundles
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND provider = ?", userID, provider).
		First(&bundle)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return bundle.toEntity(), nil
}

// ListActive returns every bundle not flagged for reconnect
func (r *GormCredentialRepository) ListActive(ctx context.Context, providers ...entity.Provider) ([]*entity.CredentialBundle, error) {
	var bundles []CredentialBundles
	result := r.db.WithContext(ctx).
		Where("provider IN ? AND needs_reconnect = ?", providers, false).
		Order("user_id").
		Find(&bundles)

	if result.Error != nil {
		return nil, result.Error
	}

	out := make([]*entity.CredentialBundle, 0, len(bundles))
	for i := range bundles {
		out = append(out, bundles[i].toEntity())
	}
	return out, nil
}

// Replace swaps the stored bundle for (user, provider) with the new value
func (r *GormCredentialRepository) Replace(ctx context.Context, bundle *entity.CredentialBundle) error {
	row := CredentialBundles{
		UserID:         bundle.UserID,
		Provider:       bundle.Provider,
		EmailAddress:   bundle.EmailAddress,
		AccessToken:    bundle.AccessToken,
		RefreshToken:   bundle.RefreshToken,
		ExpiresAt:      bundle.ExpiresAt,
		NeedsReconnect: bundle.NeedsReconnect,
		LastValidated:  bundle.LastValidated,
	}

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "provider"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"email_address", "access_token", "refresh_token",
			"expires_at", "needs_reconnect", "last_validated", "updated_at",
		}),
	}).Create(&row).Error
}

// MarkNeedsReconnect flags the bundle so the user is asked to reconnect
func (r *GormCredentialRepository) MarkNeedsReconnect(ctx context.Context, userID uint, provider entity.Provider) error {
	return r.db.WithContext(ctx).
		Model(&CredentialBundles{}).
		Where("user_id = ? AND provider = ?", userID, provider).
		Update("needs_reconnect", true).Error
}

// GormScanCursorRepository implements the ScanCursorRepository interface
type GormScanCursorRepository struct {
	db *gorm.DB
}

// NewGormScanCursorRepository creates a new GORM scan cursor repository
func NewGormScanCursorRepository(db *gorm.DB) repository.ScanCursorRepository {
	return &GormScanCursorRepository{db: db}
}

// ScanCursors GORM model for database mapping
type ScanCursors struct {
	ID            uint            `gorm:"primaryKey"`
	UserID        uint            `gorm:"column:user_id;uniqueIndex:idx_cursor_user_provider"`
	Provider      entity.Provider `gorm:"column:provider;size:20;uniqueIndex:idx_cursor_user_provider"`
	LastProcessed time.Time       `gorm:"column:last_processed"`
	UpdatedAt     time.Time
}

// TableName overrides the default table name
func (ScanCursors) TableName() string {
	return "scan_cursors"
}

// Get returns the cursor, or nil when none has been stored yet
func (r *GormScanCursorRepository) Get(ctx context.Context, userID uint, provider entity.Provider) (*entity.ScanCursor, error) {
	var cursor ScanCursors
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND provider = ?", userID, provider).
		First(&cursor)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}

	return &entity.ScanCursor{
		ID:            cursor.ID,
		UserID:        cursor.UserID,
		Provider:      cursor.Provider,
		LastProcessed: cursor.LastProcessed,
		UpdatedAt:     cursor.UpdatedAt,
	}, nil
}

// Advance moves the cursor forward; it never rewinds an existing cursor
func (r *GormScanCursorRepository) Advance(ctx context.Context, userID uint, provider entity.Provider, ts time.Time) error {
	row := ScanCursors{UserID: userID, Provider: provider, LastProcessed: ts}

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "provider"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"last_processed": gorm.Expr("GREATEST(scan_cursors.last_processed, EXCLUDED.last_processed)"),
		}),
	}).Create(&row).Error
}

// Reset rewinds the cursor on explicit reconnect
func (r *GormScanCursorRepository) Reset(ctx context.Context, userID uint, provider entity.Provider, ts time.Time) error {
	row := ScanCursors{UserID: userID, Provider: provider, LastProcessed: ts}

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "provider"}},
		DoUpdates: clause.AssignmentColumns([]string{"last_processed", "updated_at"}),
	}).Create(&row).Error
}
