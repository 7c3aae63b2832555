package usecase

import (
	"context"
	"time"

	"tripsync-service/internal/domain/entity"
	"tripsync-service/internal/domain/repository"
	"tripsync-service/internal/interface/airline"
	"tripsync-service/pkg/logger"
	"tripsync-service/pkg/metrics"
)

// AirlineDirectory resolves a carrier name to its API client
type AirlineDirectory interface {
	ForAirline(name string) airline.Client
}

// StatusPoller refreshes live status for flights departing inside the
// horizon. Each flight is one unit; a carrier error on one flight never
// stops the rest of the pass.
type StatusPoller struct {
	flightRepo  repository.FlightRepository
	scanLogRepo repository.ScanLogRepository
	airlines    AirlineDirectory
	reconciler  FactReconciler
	metrics     *metrics.Metrics
	logger      logger.Logger

	horizon     time.Duration
	callTimeout time.Duration
	now         func() time.Time
}

// NewStatusPoller creates a new status poller
func NewStatusPoller(
	flightRepo repository.FlightRepository,
	scanLogRepo repository.ScanLogRepository,
	airlines AirlineDirectory,
	reconciler FactReconciler,
	m *metrics.Metrics,
	log logger.Logger,
	horizon, callTimeout time.Duration,
) *StatusPoller {
	return &StatusPoller{
		flightRepo:  flightRepo,
		scanLogRepo: scanLogRepo,
		airlines:    airlines,
		reconciler:  reconciler,
		metrics:     m,
		logger:      log,
		horizon:     horizon,
		callTimeout: callTimeout,
		now:         time.Now,
	}
}

// Run polls every upcoming flight once
func (p *StatusPoller) Run(ctx context.Context) error {
	started := p.now().UTC()
	log := &entity.ScanLog{
		Job:         entity.JobStatusPoll,
		Target:      "upcoming",
		WindowStart: started,
		WindowEnd:   started.Add(p.horizon),
		StartedAt:   started,
	}

	flights, err := p.flightRepo.ListDepartingBetween(ctx, started, started.Add(p.horizon))
	if err != nil {
		log.ErrorKind = string(entity.KindOf(err))
		log.Error = err.Error()
		p.appendLog(ctx, log)
		return err
	}

	for _, flight := range flights {
		if ctx.Err() != nil {
			break
		}

		client := p.airlines.ForAirline(flight.Airline)
		if client == nil {
			// No API key for this carrier
			continue
		}
		log.Seen++

		outcome, err := p.pollFlight(ctx, client, flight)
		if err != nil {
			kind := entity.KindOf(err)
			p.logger.Warn("Status poll failed for flight",
				"naturalKey", flight.NaturalKey,
				"airline", flight.Airline,
				"kind", kind,
				"error", err)
			log.Failed++
			p.metrics.ErrorsTotal.WithLabelValues(entity.JobStatusPoll, string(kind)).Inc()
			continue
		}
		log.Count(outcome)
		p.metrics.FactsTotal.WithLabelValues(entity.JobStatusPoll, string(outcome)).Inc()
	}

	p.metrics.UnitsProcessed.WithLabelValues(entity.JobStatusPoll).Inc()
	p.appendLog(ctx, log)
	return nil
}

func (p *StatusPoller) pollFlight(ctx context.Context, client airline.Client, flight *entity.Flight) (entity.Outcome, error) {
	callCtx, cancel := context.WithTimeout(ctx, p.callTimeout)
	defer cancel()

	status, err := client.FlightStatus(callCtx, flight.FlightNumber, flight.DepartureTime)
	if err != nil {
		return entity.OutcomeFailed, err
	}

	fact := &entity.TravelFact{
		Kind:               entity.FactFlight,
		Partial:            true,
		TripID:             flight.TripID,
		Airline:            flight.Airline,
		FlightNumber:       flight.FlightNumber,
		ConfirmationNumber: flight.ConfirmationNumber,
		DepartureTime:      flight.DepartureTime,
		Status:             airline.ClassifyStatus(status.Status),
		DepartureGate:      status.DepartureGate,
		ArrivalGate:        status.ArrivalGate,
		DepartureTerminal:  status.DepartureTerminal,
		ArrivalTerminal:    status.ArrivalTerminal,
		DelayMinutes:       status.DelayMinutes(),
	}

	return p.reconciler.Reconcile(ctx, fact)
}

func (p *StatusPoller) appendLog(ctx context.Context, log *entity.ScanLog) {
	log.FinishedAt = p.now().UTC()
	if err := p.scanLogRepo.Append(ctx, log); err != nil {
		p.logger.Error("Failed to append scan log", "error", err)
	}
}
