package repository

import (
	"context"

	"tripsync-service/internal/domain/entity"
)

// ScanLogRepository defines the append-only audit store. Entries are never
// updated after Append.
type ScanLogRepository interface {
	Append(ctx context.Context, log *entity.ScanLog) error
	// ListRecent returns the newest entries for a job, most recent first.
	// Read by the admin log viewer.
	ListRecent(ctx context.Context, job string, limit int) ([]*entity.ScanLog, error)
}
