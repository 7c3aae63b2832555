package usecase

import (
	"context"
	"testing"
	"time"

	"tripsync-service/internal/domain/entity"
	"tripsync-service/pkg/logger"
)

func newTestReconciler() (*Reconciler, *fakeTripRepo, *fakeFlightRepo, *fakeAccomRepo, *fakeCheckinRepo) {
	trips := newFakeTripRepo()
	flights := newFakeFlightRepo()
	accoms := newFakeAccomRepo()
	checkins := newFakeCheckinRepo()
	r := NewReconciler(trips, flights, accoms, checkins, logger.NewNop())
	return r, trips, flights, accoms, checkins
}

func flightFact(userID uint) *entity.TravelFact {
	return &entity.TravelFact{
		Kind:               entity.FactFlight,
		UserID:             userID,
		SourceID:           "msg-1",
		Airline:            "UNITED",
		FlightNumber:       "UA100",
		ConfirmationNumber: "ABC123",
		Origin:             "SFO",
		Destination:        "JFK",
		DepartureTime:      time.Date(2026, 9, 15, 8, 0, 0, 0, time.UTC),
		ArrivalTime:        time.Date(2026, 9, 15, 16, 30, 0, 0, time.UTC),
	}
}

func TestReconcileFlightCreatesTripAndFlight(t *testing.T) {
	r, trips, flights, _, _ := newTestReconciler()
	ctx := context.Background()

	outcome, err := r.Reconcile(ctx, flightFact(1))
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if outcome != entity.OutcomeCreated {
		t.Fatalf("outcome = %s, want created", outcome)
	}

	if len(trips.trips) != 1 {
		t.Fatalf("trips = %d, want 1", len(trips.trips))
	}
	trip := trips.trips[0]
	if trip.Title != "SFO to JFK" {
		t.Errorf("trip title = %q", trip.Title)
	}
	if !trip.AutoDetected || trip.Visibility != entity.VisibilityPrivate {
		t.Errorf("auto-created trip should be private and auto_detected")
	}

	flight, _ := flights.FindByNaturalKey(ctx, "UNITED:ABC123:UA100:2026-09-15")
	if flight == nil {
		t.Fatal("flight not stored under natural key")
	}
	if flight.TripID != trip.ID {
		t.Errorf("flight.TripID = %d, want %d", flight.TripID, trip.ID)
	}
	if flight.Status != entity.FlightScheduled {
		t.Errorf("flight.Status = %q, want scheduled", flight.Status)
	}
}

func TestReconcileFlightIdempotent(t *testing.T) {
	r, trips, flights, _, _ := newTestReconciler()
	ctx := context.Background()

	if _, err := r.Reconcile(ctx, flightFact(1)); err != nil {
		t.Fatalf("first Reconcile: %v", err)
	}

	// Same booking observed again, e.g. from the overlap window
	outcome, err := r.Reconcile(ctx, flightFact(1))
	if err != nil {
		t.Fatalf("second Reconcile: %v", err)
	}
	if outcome != entity.OutcomeDuplicate {
		t.Fatalf("outcome = %s, want duplicate", outcome)
	}
	if len(trips.trips) != 1 {
		t.Errorf("rescan created a second trip")
	}
	if len(flights.flights) != 1 {
		t.Errorf("rescan created a second flight")
	}
}

func TestReconcileFlightScheduleChangeUpdates(t *testing.T) {
	r, _, flights, _, _ := newTestReconciler()
	ctx := context.Background()

	if _, err := r.Reconcile(ctx, flightFact(1)); err != nil {
		t.Fatalf("Reconcile: %v", err)
	}

	moved := flightFact(1)
	moved.DepartureTime = moved.DepartureTime.Add(45 * time.Minute)
	outcome, err := r.Reconcile(ctx, moved)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if outcome != entity.OutcomeUpdated {
		t.Fatalf("outcome = %s, want updated", outcome)
	}

	stored, _ := flights.FindByNaturalKey(ctx, moved.NaturalKey())
	if !stored.DepartureTime.Equal(moved.DepartureTime) {
		t.Errorf("departure time not updated")
	}
}

func TestReconcilePartialNeverCreates(t *testing.T) {
	r, trips, flights, _, _ := newTestReconciler()
	ctx := context.Background()

	fact := flightFact(1)
	fact.Partial = true
	fact.Status = entity.FlightDelayed

	outcome, err := r.Reconcile(ctx, fact)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if outcome != entity.OutcomeSkipped {
		t.Fatalf("outcome = %s, want skipped", outcome)
	}
	if len(flights.flights) != 0 || len(trips.trips) != 0 {
		t.Error("partial fact created records")
	}
}

func TestReconcilePartialUpdatesStatusOnly(t *testing.T) {
	r, _, flights, _, _ := newTestReconciler()
	ctx := context.Background()

	if _, err := r.Reconcile(ctx, flightFact(1)); err != nil {
		t.Fatalf("Reconcile: %v", err)
	}

	partial := flightFact(1)
	partial.Partial = true
	partial.Status = entity.FlightDelayed
	partial.DepartureGate = "C12"
	partial.DelayMinutes = 40
	partial.PassengerName = "SHOULD NOT LAND" // booking field on a partial fact

	outcome, err := r.Reconcile(ctx, partial)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if outcome != entity.OutcomeUpdated {
		t.Fatalf("outcome = %s, want updated", outcome)
	}

	stored, _ := flights.FindByNaturalKey(ctx, partial.NaturalKey())
	if stored.Status != entity.FlightDelayed || stored.DepartureGate != "C12" || stored.DelayMinutes != 40 {
		t.Errorf("status fields not applied: %+v", stored)
	}
	if stored.PassengerName != "" {
		t.Errorf("partial fact clobbered a booking field")
	}
	if stored.LastAPIUpdate == nil {
		t.Errorf("LastAPIUpdate not stamped")
	}

	// Same observation again is a duplicate, no write
	outcome, err = r.Reconcile(ctx, partial)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if outcome != entity.OutcomeDuplicate {
		t.Fatalf("outcome = %s, want duplicate", outcome)
	}
}

func TestAttachTripPrefersTightestRange(t *testing.T) {
	r, trips, _, _, _ := newTestReconciler()
	ctx := context.Background()

	wide := &entity.Trip{
		UserID:    1,
		Title:     "Summer",
		StartDate: time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 9, 30, 0, 0, 0, 0, time.UTC),
	}
	tight := &entity.Trip{
		UserID:    1,
		Title:     "NYC weekend",
		StartDate: time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 9, 17, 0, 0, 0, 0, time.UTC),
	}
	trips.Create(ctx, wide)
	trips.Create(ctx, tight)

	fact := flightFact(1)
	outcome, err := r.Reconcile(ctx, fact)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if outcome != entity.OutcomeCreated {
		t.Fatalf("outcome = %s, want created", outcome)
	}
	if len(trips.trips) != 2 {
		t.Fatalf("fact inside existing trips should not create a new one")
	}

	tripID, err := r.attachTrip(ctx, flightFact(1))
	if err != nil {
		t.Fatalf("attachTrip: %v", err)
	}
	if tripID != tight.ID {
		t.Errorf("attached to trip %d, want tightest %d", tripID, tight.ID)
	}
}

func TestReconcileLodging(t *testing.T) {
	r, trips, _, accoms, _ := newTestReconciler()
	ctx := context.Background()

	fact := &entity.TravelFact{
		Kind:               entity.FactLodging,
		UserID:             1,
		SourceID:           "msg-2",
		LodgingName:        "Grand Plaza Hotel",
		ConfirmationNumber: "HTL789",
		CheckInTime:        time.Date(2026, 9, 15, 15, 0, 0, 0, time.UTC),
		CheckOutTime:       time.Date(2026, 9, 18, 11, 0, 0, 0, time.UTC),
	}

	outcome, err := r.Reconcile(ctx, fact)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if outcome != entity.OutcomeCreated {
		t.Fatalf("outcome = %s, want created", outcome)
	}
	if len(trips.trips) != 1 || trips.trips[0].Title != "Grand Plaza Hotel" {
		t.Errorf("lodging trip not created from lodging name")
	}

	stored, _ := accoms.FindByNaturalKey(ctx, "lodging:HTL789:2026-09-15")
	if stored == nil {
		t.Fatal("accommodation not stored under natural key")
	}

	outcome, _ = r.Reconcile(ctx, fact)
	if outcome != entity.OutcomeDuplicate {
		t.Errorf("second reconcile = %s, want duplicate", outcome)
	}
}

func TestReconcileCheckinRequiresTrip(t *testing.T) {
	r, _, _, _, checkins := newTestReconciler()
	ctx := context.Background()

	fact := &entity.TravelFact{
		Kind:       entity.FactCheckin,
		UserID:     1,
		ExternalID: "4sq-1",
		VenueName:  "Blue Bottle",
		OccurredAt: time.Date(2026, 9, 15, 10, 0, 0, 0, time.UTC),
	}

	outcome, err := r.Reconcile(ctx, fact)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if outcome != entity.OutcomeSkipped {
		t.Fatalf("checkin without a trip = %s, want skipped", outcome)
	}

	fact.TripID = 7
	outcome, err = r.Reconcile(ctx, fact)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if outcome != entity.OutcomeCreated {
		t.Fatalf("outcome = %s, want created", outcome)
	}
	if len(checkins.checkins) != 1 {
		t.Fatalf("checkin not stored")
	}

	// Re-sync of the same checkin is a no-op
	outcome, _ = r.Reconcile(ctx, fact)
	if outcome != entity.OutcomeDuplicate {
		t.Errorf("second reconcile = %s, want duplicate", outcome)
	}
	if checkins.updates != 0 {
		t.Errorf("duplicate caused a write")
	}
}
