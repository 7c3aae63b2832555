package repository

import (
	"context"
	"time"

	"tripsync-service/internal/domain/entity"
)

// CredentialRepository defines storage for per-user provider secrets.
type CredentialRepository interface {
	GetByUserAndProvider(ctx context.Context, userID uint, provider entity.Provider) (*entity.CredentialBundle, error)
	// ListActive returns every non-reconnect bundle for the providers, in
	// user id order.
	ListActive(ctx context.Context, providers ...entity.Provider) ([]*entity.CredentialBundle, error)
	// Replace atomically swaps the stored bundle for (user, provider) with
	// the new value. Last writer wins.
	Replace(ctx context.Context, bundle *entity.CredentialBundle) error
	MarkNeedsReconnect(ctx context.Context, userID uint, provider entity.Provider) error
}

// ScanCursorRepository defines storage for per-(user, provider) scan
// cursors.
type ScanCursorRepository interface {
	// Get returns the cursor, or nil when the unit has never completed a
	// scan.
	Get(ctx context.Context, userID uint, provider entity.Provider) (*entity.ScanCursor, error)
	// Advance moves the cursor forward to ts. A ts at or before the stored
	// position is a no-op; cursors never regress here.
	Advance(ctx context.Context, userID uint, provider entity.Provider, ts time.Time) error
	// Reset rewinds the cursor on explicit reconnect.
	Reset(ctx context.Context, userID uint, provider entity.Provider, ts time.Time) error
}
