package usecase

import (
	"context"
	"fmt"
	"time"

	"tripsync-service/internal/domain/entity"
	"tripsync-service/internal/domain/repository"
	"tripsync-service/internal/interface/checkinfeed"
	"tripsync-service/pkg/logger"
	"tripsync-service/pkg/metrics"
)

// CheckinFeed fetches location checkins inside a window
type CheckinFeed interface {
	FetchWindow(ctx context.Context, accessToken string, from, to time.Time) ([]*checkinfeed.Checkin, error)
}

// CheckinSync imports location checkins into the trips whose date range
// covers them. One trip is one unit.
type CheckinSync struct {
	userRepo    repository.UserRepository
	tripRepo    repository.TripRepository
	scanLogRepo repository.ScanLogRepository
	tokens      TokenSource
	feed        CheckinFeed
	reconciler  FactReconciler
	metrics     *metrics.Metrics
	logger      logger.Logger

	lookback time.Duration
	now      func() time.Time
}

// NewCheckinSync creates a new checkin sync
func NewCheckinSync(
	userRepo repository.UserRepository,
	tripRepo repository.TripRepository,
	scanLogRepo repository.ScanLogRepository,
	tokens TokenSource,
	feed CheckinFeed,
	reconciler FactReconciler,
	m *metrics.Metrics,
	log logger.Logger,
	lookback time.Duration,
) *CheckinSync {
	return &CheckinSync{
		userRepo:    userRepo,
		tripRepo:    tripRepo,
		scanLogRepo: scanLogRepo,
		tokens:      tokens,
		feed:        feed,
		reconciler:  reconciler,
		metrics:     m,
		logger:      log,
		lookback:    lookback,
		now:         time.Now,
	}
}

// Run syncs checkins for every enabled user's recent and ongoing trips
func (s *CheckinSync) Run(ctx context.Context) error {
	users, err := s.userRepo.ListCheckinEnabled(ctx)
	if err != nil {
		return err
	}

	now := s.now().UTC()
	for _, user := range users {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		token, err := s.tokens.GetValidToken(ctx, user.ID, entity.ProviderFoursquare)
		if err != nil {
			if entity.IsKind(err, entity.KindConfig) {
				continue
			}
			s.logger.Warn("Checkin feed token unavailable", "userID", user.ID, "error", err)
			continue
		}

		trips, err := s.tripRepo.ListActiveByUser(ctx, user.ID, now.Add(-s.lookback))
		if err != nil {
			s.logger.Error("Failed to list trips", "userID", user.ID, "error", err)
			continue
		}

		for _, trip := range trips {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.syncTripWindow(ctx, trip, token)
		}
	}
	return nil
}

// SyncTrip imports checkins for one trip on demand. Used by the manual
// trigger endpoint.
func (s *CheckinSync) SyncTrip(ctx context.Context, tripID uint) (*entity.ScanLog, error) {
	trip, err := s.tripRepo.FindByID(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if trip == nil {
		return nil, fmt.Errorf("trip %d not found", tripID)
	}

	token, err := s.tokens.GetValidToken(ctx, trip.UserID, entity.ProviderFoursquare)
	if err != nil {
		return nil, err
	}

	return s.syncTripWindow(ctx, trip, token), nil
}

// syncTripWindow fetches the feed for the part of the trip that has
// already happened and reconciles every checkin in it.
func (s *CheckinSync) syncTripWindow(ctx context.Context, trip *entity.Trip, token string) *entity.ScanLog {
	started := s.now().UTC()

	from := trip.StartDate
	to := trip.EndDate.AddDate(0, 0, 1)
	if to.After(started) {
		to = started
	}

	log := &entity.ScanLog{
		Job:         entity.JobCheckinSync,
		Target:      fmt.Sprintf("trip:%d", trip.ID),
		UserID:      trip.UserID,
		WindowStart: from,
		WindowEnd:   to,
		StartedAt:   started,
	}

	if !to.After(from) {
		// Trip has not started yet
		s.appendLog(ctx, log)
		return log
	}

	checkins, err := s.feed.FetchWindow(ctx, token, from, to)
	if err != nil {
		kind := entity.KindOf(err)
		log.ErrorKind = string(kind)
		log.Error = err.Error()
		s.metrics.ErrorsTotal.WithLabelValues(entity.JobCheckinSync, string(kind)).Inc()
		s.logger.Warn("Checkin fetch failed", "tripID", trip.ID, "kind", kind, "error", err)
		s.appendLog(ctx, log)
		return log
	}

	for _, checkin := range checkins {
		if ctx.Err() != nil {
			break
		}
		log.Seen++

		fact := &entity.TravelFact{
			Kind:          entity.FactCheckin,
			UserID:        trip.UserID,
			TripID:        trip.ID,
			SourceID:      checkin.ExternalID,
			ExternalID:    checkin.ExternalID,
			VenueName:     checkin.VenueName,
			VenueCategory: checkin.VenueCategory,
			VenueAddress:  checkin.VenueAddress,
			Latitude:      checkin.Latitude,
			Longitude:     checkin.Longitude,
			OccurredAt:    checkin.OccurredAt,
			Shout:         checkin.Shout,
			PhotoURL:      checkin.PhotoURL,
		}

		outcome, err := s.reconciler.Reconcile(ctx, fact)
		if err != nil {
			s.logger.Error("Failed to reconcile checkin", "externalID", checkin.ExternalID, "error", err)
			log.Count(entity.OutcomeFailed)
			s.metrics.ErrorsTotal.WithLabelValues(entity.JobCheckinSync, string(entity.KindOf(err))).Inc()
			continue
		}
		log.Count(outcome)
		s.metrics.FactsTotal.WithLabelValues(entity.JobCheckinSync, string(outcome)).Inc()
	}

	s.metrics.UnitsProcessed.WithLabelValues(entity.JobCheckinSync).Inc()
	s.appendLog(ctx, log)
	return log
}

func (s *CheckinSync) appendLog(ctx context.Context, log *entity.ScanLog) {
	log.FinishedAt = s.now().UTC()
	if err := s.scanLogRepo.Append(ctx, log); err != nil {
		s.logger.Error("Failed to append scan log", "error", err)
	}
}
