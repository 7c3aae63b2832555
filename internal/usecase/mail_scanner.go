package usecase

import (
	"context"
	"time"

	"tripsync-service/internal/domain/entity"
	"tripsync-service/internal/domain/repository"
	"tripsync-service/internal/interface/mail"
	"tripsync-service/pkg/logger"
	"tripsync-service/pkg/metrics"
)

// TokenSource hands out usable access tokens for (user, provider) pairs
type TokenSource interface {
	GetValidToken(ctx context.Context, userID uint, provider entity.Provider) (string, error)
}

// FactParser turns one mailbox message into a travel fact
type FactParser interface {
	Parse(from, subject, body, htmlBody string) (*entity.TravelFact, error)
}

// FactReconciler merges one fact into the trip model
type FactReconciler interface {
	Reconcile(ctx context.Context, fact *entity.TravelFact) (entity.Outcome, error)
}

// MailScanner walks every scan-enabled mailbox, parses what it finds and
// feeds the facts to the reconciler. One (user, provider) pair is one
// unit: a failing unit is logged and abandoned, the rest keep going.
type MailScanner struct {
	userRepo    repository.UserRepository
	cursorRepo  repository.ScanCursorRepository
	scanLogRepo repository.ScanLogRepository
	tokens      TokenSource
	adapters    mail.Adapters
	parser      FactParser
	reconciler  FactReconciler
	metrics     *metrics.Metrics
	logger      logger.Logger

	lookback time.Duration
	overlap  time.Duration
	now      func() time.Time
}

// NewMailScanner creates a new mail scanner
func NewMailScanner(
	userRepo repository.UserRepository,
	cursorRepo repository.ScanCursorRepository,
	scanLogRepo repository.ScanLogRepository,
	tokens TokenSource,
	adapters mail.Adapters,
	parser FactParser,
	reconciler FactReconciler,
	m *metrics.Metrics,
	log logger.Logger,
	lookback, overlap time.Duration,
) *MailScanner {
	return &MailScanner{
		userRepo:    userRepo,
		cursorRepo:  cursorRepo,
		scanLogRepo: scanLogRepo,
		tokens:      tokens,
		adapters:    adapters,
		parser:      parser,
		reconciler:  reconciler,
		metrics:     m,
		logger:      log,
		lookback:    lookback,
		overlap:     overlap,
		now:         time.Now,
	}
}

// Run scans every enabled mailbox once
func (s *MailScanner) Run(ctx context.Context) error {
	users, err := s.userRepo.ListScanEnabled(ctx)
	if err != nil {
		return err
	}

	for _, user := range users {
		for _, provider := range entity.MailProviders {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.scanUnit(ctx, user.ID, provider)
		}
	}
	return nil
}

// scanUnit processes one (user, provider) mailbox. Every outcome except
// a config skip leaves a scan log entry behind.
func (s *MailScanner) scanUnit(ctx context.Context, userID uint, provider entity.Provider) {
	adapter := s.adapters.ForProvider(provider)
	if adapter == nil {
		return
	}

	started := s.now().UTC()
	log := &entity.ScanLog{
		Job:       entity.JobMailScan,
		Target:    string(provider),
		UserID:    userID,
		StartedAt: started,
	}

	token, err := s.tokens.GetValidToken(ctx, userID, provider)
	if err != nil {
		if entity.IsKind(err, entity.KindConfig) {
			// Mailbox never connected for this provider
			return
		}
		s.finishUnit(ctx, log, err)
		return
	}

	from, to := s.window(ctx, userID, provider, started)
	log.WindowStart = from
	log.WindowEnd = to

	messages, err := adapter.FetchWindow(ctx, token, from, to)
	if err != nil {
		s.finishUnit(ctx, log, err)
		return
	}

	interrupted := false
	for _, msg := range messages {
		if ctx.Err() != nil {
			interrupted = true
			break
		}
		log.Seen++

		fact, err := s.parser.Parse(msg.From, msg.Subject, msg.Body, msg.HTMLBody)
		if err != nil {
			s.logger.Warn("Failed to parse message", "messageID", msg.ID, "error", err)
			log.Failed++
			s.metrics.ErrorsTotal.WithLabelValues(entity.JobMailScan, string(entity.KindOf(err))).Inc()
			continue
		}
		if fact == nil {
			continue
		}

		fact.UserID = userID
		fact.SourceID = msg.ID

		outcome, err := s.reconciler.Reconcile(ctx, fact)
		if err != nil {
			s.logger.Error("Failed to reconcile fact", "messageID", msg.ID, "error", err)
			log.Count(entity.OutcomeFailed)
			s.metrics.ErrorsTotal.WithLabelValues(entity.JobMailScan, string(entity.KindOf(err))).Inc()
			continue
		}
		log.Count(outcome)
		s.metrics.FactsTotal.WithLabelValues(entity.JobMailScan, string(outcome)).Inc()
	}

	// The cursor only moves when the whole window was actually covered
	if !interrupted {
		if err := s.cursorRepo.Advance(ctx, userID, provider, to); err != nil {
			s.logger.Error("Failed to advance cursor", "userID", userID, "provider", provider, "error", err)
		}
	}

	s.finishUnit(ctx, log, nil)
}

// window derives the half-open fetch window for a unit. A fresh unit
// looks back the full lookback; an established one re-reads a small
// overlap behind its cursor to cover late-arriving mail.
func (s *MailScanner) window(ctx context.Context, userID uint, provider entity.Provider, now time.Time) (time.Time, time.Time) {
	cursor, err := s.cursorRepo.Get(ctx, userID, provider)
	if err != nil || cursor == nil {
		return now.Add(-s.lookback), now
	}
	return cursor.LastProcessed.Add(-s.overlap), now
}

func (s *MailScanner) finishUnit(ctx context.Context, log *entity.ScanLog, unitErr error) {
	log.FinishedAt = s.now().UTC()
	if unitErr != nil {
		kind := entity.KindOf(unitErr)
		log.ErrorKind = string(kind)
		log.Error = unitErr.Error()
		s.metrics.ErrorsTotal.WithLabelValues(entity.JobMailScan, string(kind)).Inc()
		s.logger.Warn("Mail scan unit failed",
			"userID", log.UserID,
			"provider", log.Target,
			"kind", kind,
			"error", unitErr)
	}

	s.metrics.UnitsProcessed.WithLabelValues(entity.JobMailScan).Inc()
	if err := s.scanLogRepo.Append(ctx, log); err != nil {
		s.logger.Error("Failed to append scan log", "error", err)
	}
}
