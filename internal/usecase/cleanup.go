package usecase

import (
	"context"
	"time"

	"tripsync-service/internal/domain/entity"
	"tripsync-service/internal/domain/repository"
	"tripsync-service/pkg/logger"
	"tripsync-service/pkg/metrics"
)

// Cleanup removes expired trip shares
type Cleanup struct {
	shareRepo   repository.TripShareRepository
	scanLogRepo repository.ScanLogRepository
	metrics     *metrics.Metrics
	logger      logger.Logger
	now         func() time.Time
}

// NewCleanup creates a new cleanup job
func NewCleanup(
	shareRepo repository.TripShareRepository,
	scanLogRepo repository.ScanLogRepository,
	m *metrics.Metrics,
	log logger.Logger,
) *Cleanup {
	return &Cleanup{
		shareRepo:   shareRepo,
		scanLogRepo: scanLogRepo,
		metrics:     m,
		logger:      log,
		now:         time.Now,
	}
}

// Run deletes every share whose expiry has passed
func (c *Cleanup) Run(ctx context.Context) error {
	started := c.now().UTC()
	log := &entity.ScanLog{
		Job:       entity.JobCleanup,
		Target:    "trip_shares",
		StartedAt: started,
	}

	deleted, err := c.shareRepo.DeleteExpired(ctx, started)
	if err != nil {
		log.ErrorKind = string(entity.KindOf(err))
		log.Error = err.Error()
	} else {
		log.Seen = int(deleted)
		if deleted > 0 {
			c.logger.Info("Deleted expired trip shares", "count", deleted)
		}
	}

	c.metrics.UnitsProcessed.WithLabelValues(entity.JobCleanup).Inc()
	log.FinishedAt = c.now().UTC()
	if appendErr := c.scanLogRepo.Append(ctx, log); appendErr != nil {
		c.logger.Error("Failed to append scan log", "error", appendErr)
	}
	return err
}
