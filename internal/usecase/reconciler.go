package usecase

import (
	"context"
	"fmt"
	"time"

	"tripsync-service/internal/domain/entity"
	"tripsync-service/internal/domain/repository"
	"tripsync-service/pkg/logger"
)

// Reconciler merges observed travel facts into the persisted trip model.
// Reconciling the same fact twice is a no-op; the natural key decides
// whether a fact creates, updates or duplicates.
type Reconciler struct {
	tripRepo    repository.TripRepository
	flightRepo  repository.FlightRepository
	accomRepo   repository.AccommodationRepository
	checkinRepo repository.CheckInRepository
	logger      logger.Logger
	now         func() time.Time
}

// NewReconciler creates a new reconciler
func NewReconciler(
	tripRepo repository.TripRepository,
	flightRepo repository.FlightRepository,
	accomRepo repository.AccommodationRepository,
	checkinRepo repository.CheckInRepository,
	log logger.Logger,
) *Reconciler {
	return &Reconciler{
		tripRepo:    tripRepo,
		flightRepo:  flightRepo,
		accomRepo:   accomRepo,
		checkinRepo: checkinRepo,
		logger:      log,
		now:         time.Now,
	}
}

// Reconcile merges one fact and reports what happened to it
func (r *Reconciler) Reconcile(ctx context.Context, fact *entity.TravelFact) (entity.Outcome, error) {
	switch fact.Kind {
	case entity.FactFlight:
		return r.reconcileFlight(ctx, fact)
	case entity.FactLodging:
		return r.reconcileLodging(ctx, fact)
	case entity.FactCheckin:
		return r.reconcileCheckin(ctx, fact)
	}
	return entity.OutcomeFailed, entity.Classifyf(entity.KindParse, "unknown fact kind %q", fact.Kind)
}

func (r *Reconciler) reconcileFlight(ctx context.Context, fact *entity.TravelFact) (entity.Outcome, error) {
	key := fact.NaturalKey()
	existing, err := r.flightRepo.FindByNaturalKey(ctx, key)
	if err != nil {
		return entity.OutcomeFailed, err
	}

	if existing == nil {
		// A status-only observation never creates a booking
		if fact.Partial {
			return entity.OutcomeSkipped, nil
		}

		tripID, err := r.attachTrip(ctx, fact)
		if err != nil {
			return entity.OutcomeFailed, err
		}

		flight := &entity.Flight{
			TripID:             tripID,
			NaturalKey:         key,
			Airline:            fact.Airline,
			FlightNumber:       fact.FlightNumber,
			ConfirmationNumber: fact.ConfirmationNumber,
			PassengerName:      fact.PassengerName,
			DepartureAirport:   fact.Origin,
			ArrivalAirport:     fact.Destination,
			DepartureTime:      fact.DepartureTime,
			ArrivalTime:        fact.ArrivalTime,
			Status:             entity.FlightScheduled,
		}
		if err := r.flightRepo.Create(ctx, flight); err != nil {
			return entity.OutcomeFailed, err
		}

		r.logger.Info("Created flight", "naturalKey", key, "tripID", tripID)
		return entity.OutcomeCreated, nil
	}

	if fact.Partial {
		return r.applyStatus(ctx, existing, fact)
	}

	// Re-observation of the booking itself. Only the parsed booking
	// fields may move; live status fields belong to the poller.
	changed := false
	if fact.PassengerName != "" && fact.PassengerName != existing.PassengerName {
		existing.PassengerName = fact.PassengerName
		changed = true
	}
	if !fact.DepartureTime.IsZero() && !fact.DepartureTime.Equal(existing.DepartureTime) {
		existing.DepartureTime = fact.DepartureTime
		changed = true
	}
	if !fact.ArrivalTime.IsZero() && !fact.ArrivalTime.Equal(existing.ArrivalTime) {
		existing.ArrivalTime = fact.ArrivalTime
		changed = true
	}
	if fact.Origin != "" && fact.Origin != existing.DepartureAirport {
		existing.DepartureAirport = fact.Origin
		changed = true
	}
	if fact.Destination != "" && fact.Destination != existing.ArrivalAirport {
		existing.ArrivalAirport = fact.Destination
		changed = true
	}

	if !changed {
		return entity.OutcomeDuplicate, nil
	}
	if err := r.flightRepo.Update(ctx, existing); err != nil {
		return entity.OutcomeFailed, err
	}
	return entity.OutcomeUpdated, nil
}

// applyStatus merges a status-only fact into a stored flight. Parsed
// booking fields are never touched here.
func (r *Reconciler) applyStatus(ctx context.Context, flight *entity.Flight, fact *entity.TravelFact) (entity.Outcome, error) {
	changed := false

	if fact.Status != "" && fact.Status != flight.Status {
		flight.Status = fact.Status
		changed = true
	}
	if fact.DepartureGate != "" && fact.DepartureGate != flight.DepartureGate {
		flight.DepartureGate = fact.DepartureGate
		changed = true
	}
	if fact.ArrivalGate != "" && fact.ArrivalGate != flight.ArrivalGate {
		flight.ArrivalGate = fact.ArrivalGate
		changed = true
	}
	if fact.DepartureTerminal != "" && fact.DepartureTerminal != flight.DepartureTerminal {
		flight.DepartureTerminal = fact.DepartureTerminal
		changed = true
	}
	if fact.ArrivalTerminal != "" && fact.ArrivalTerminal != flight.ArrivalTerminal {
		flight.ArrivalTerminal = fact.ArrivalTerminal
		changed = true
	}
	if fact.DelayMinutes != flight.DelayMinutes {
		flight.DelayMinutes = fact.DelayMinutes
		changed = true
	}

	if !changed {
		return entity.OutcomeDuplicate, nil
	}

	now := r.now().UTC()
	flight.LastAPIUpdate = &now
	if err := r.flightRepo.Update(ctx, flight); err != nil {
		return entity.OutcomeFailed, err
	}

	r.logger.Info("Updated flight status",
		"naturalKey", flight.NaturalKey,
		"status", flight.Status,
		"delayMinutes", flight.DelayMinutes)
	return entity.OutcomeUpdated, nil
}

func (r *Reconciler) reconcileLodging(ctx context.Context, fact *entity.TravelFact) (entity.Outcome, error) {
	key := fact.NaturalKey()
	existing, err := r.accomRepo.FindByNaturalKey(ctx, key)
	if err != nil {
		return entity.OutcomeFailed, err
	}

	if existing == nil {
		tripID, err := r.attachTrip(ctx, fact)
		if err != nil {
			return entity.OutcomeFailed, err
		}

		acc := &entity.Accommodation{
			TripID:             tripID,
			NaturalKey:         key,
			Name:               fact.LodgingName,
			Address:            fact.LodgingAddress,
			CheckIn:            fact.CheckInTime,
			CheckOut:           fact.CheckOutTime,
			ConfirmationNumber: fact.ConfirmationNumber,
		}
		if err := r.accomRepo.Create(ctx, acc); err != nil {
			return entity.OutcomeFailed, err
		}

		r.logger.Info("Created accommodation", "naturalKey", key, "tripID", tripID)
		return entity.OutcomeCreated, nil
	}

	changed := false
	if fact.LodgingName != "" && fact.LodgingName != existing.Name {
		existing.Name = fact.LodgingName
		changed = true
	}
	if fact.LodgingAddress != "" && fact.LodgingAddress != existing.Address {
		existing.Address = fact.LodgingAddress
		changed = true
	}
	if !fact.CheckOutTime.IsZero() && !fact.CheckOutTime.Equal(existing.CheckOut) {
		existing.CheckOut = fact.CheckOutTime
		changed = true
	}

	if !changed {
		return entity.OutcomeDuplicate, nil
	}
	if err := r.accomRepo.Update(ctx, existing); err != nil {
		return entity.OutcomeFailed, err
	}
	return entity.OutcomeUpdated, nil
}

func (r *Reconciler) reconcileCheckin(ctx context.Context, fact *entity.TravelFact) (entity.Outcome, error) {
	existing, err := r.checkinRepo.FindByExternalID(ctx, fact.ExternalID)
	if err != nil {
		return entity.OutcomeFailed, err
	}

	if existing == nil {
		if fact.TripID == 0 {
			// Checkins are only imported inside a trip window
			return entity.OutcomeSkipped, nil
		}

		checkin := &entity.CheckIn{
			TripID:        fact.TripID,
			UserID:        fact.UserID,
			ExternalID:    fact.ExternalID,
			VenueName:     fact.VenueName,
			VenueCategory: fact.VenueCategory,
			VenueAddress:  fact.VenueAddress,
			Latitude:      fact.Latitude,
			Longitude:     fact.Longitude,
			CheckinTime:   fact.OccurredAt,
			Shout:         fact.Shout,
			PhotoURL:      fact.PhotoURL,
		}
		if err := r.checkinRepo.Create(ctx, checkin); err != nil {
			return entity.OutcomeFailed, err
		}
		return entity.OutcomeCreated, nil
	}

	changed := false
	if fact.Shout != existing.Shout {
		existing.Shout = fact.Shout
		changed = true
	}
	if fact.VenueName != "" && fact.VenueName != existing.VenueName {
		existing.VenueName = fact.VenueName
		changed = true
	}
	if fact.PhotoURL != "" && fact.PhotoURL != existing.PhotoURL {
		existing.PhotoURL = fact.PhotoURL
		changed = true
	}

	if !changed {
		return entity.OutcomeDuplicate, nil
	}
	if err := r.checkinRepo.Update(ctx, existing); err != nil {
		return entity.OutcomeFailed, err
	}
	return entity.OutcomeUpdated, nil
}

// attachTrip finds the trip a fact belongs to, creating one when the
// user has no trip covering the fact's date. Ties between overlapping
// trips break to the tightest date range, then the oldest trip.
func (r *Reconciler) attachTrip(ctx context.Context, fact *entity.TravelFact) (uint, error) {
	if fact.TripID != 0 {
		return fact.TripID, nil
	}

	anchor := fact.Anchor()
	trips, err := r.tripRepo.FindContaining(ctx, fact.UserID, anchor)
	if err != nil {
		return 0, err
	}

	if len(trips) > 0 {
		best := trips[0]
		for _, t := range trips[1:] {
			switch {
			case t.Span() < best.Span():
				best = t
			case t.Span() == best.Span() && t.CreatedAt.Before(best.CreatedAt):
				best = t
			case t.Span() == best.Span() && t.CreatedAt.Equal(best.CreatedAt) && t.ID < best.ID:
				best = t
			}
		}
		return best.ID, nil
	}

	trip := r.tripFromFact(fact, anchor)
	if err := r.tripRepo.Create(ctx, trip); err != nil {
		return 0, err
	}

	r.logger.Info("Auto-created trip", "tripID", trip.ID, "title", trip.Title, "userID", fact.UserID)
	return trip.ID, nil
}

func (r *Reconciler) tripFromFact(fact *entity.TravelFact, anchor time.Time) *entity.Trip {
	trip := &entity.Trip{
		UserID:             fact.UserID,
		StartDate:          anchor,
		Visibility:         entity.VisibilityPrivate,
		ConfirmationNumber: fact.ConfirmationNumber,
		AutoDetected:       true,
		EmailSource:        fact.SourceID,
	}

	switch fact.Kind {
	case entity.FactFlight:
		trip.Title = fmt.Sprintf("%s to %s", fact.Origin, fact.Destination)
		trip.Destination = fact.Destination
		trip.EndDate = fact.ArrivalTime
	case entity.FactLodging:
		trip.Title = fact.LodgingName
		trip.Destination = fact.LodgingAddress
		trip.EndDate = fact.CheckOutTime
	}

	if trip.EndDate.Before(trip.StartDate) || trip.EndDate.IsZero() {
		trip.EndDate = trip.StartDate.AddDate(0, 0, 1)
	}
	return trip
}
