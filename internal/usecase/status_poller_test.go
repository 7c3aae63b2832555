package usecase

import (
	"context"
	"testing"
	"time"

	"tripsync-service/internal/domain/entity"
	"tripsync-service/internal/interface/airline"
	"tripsync-service/pkg/logger"
	"tripsync-service/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
)

func storedFlight(flights *fakeFlightRepo, airlineName, number string, departure time.Time) *entity.Flight {
	flight := &entity.Flight{
		TripID:             1,
		Airline:            airlineName,
		FlightNumber:       number,
		ConfirmationNumber: "ABC123",
		DepartureAirport:   "SFO",
		ArrivalAirport:     "JFK",
		DepartureTime:      departure,
		ArrivalTime:        departure.Add(5 * time.Hour),
		Status:             entity.FlightScheduled,
	}
	fact := &entity.TravelFact{
		Kind:               entity.FactFlight,
		Airline:            airlineName,
		FlightNumber:       number,
		ConfirmationNumber: "ABC123",
		DepartureTime:      departure,
	}
	flight.NaturalKey = fact.NaturalKey()
	flights.Create(context.Background(), flight)
	return flight
}

func newTestPoller(flights *fakeFlightRepo, dir AirlineDirectory) (*StatusPoller, *fakeScanLogRepo) {
	scanLogs := &fakeScanLogRepo{}
	reconciler := NewReconciler(newFakeTripRepo(), flights, newFakeAccomRepo(), newFakeCheckinRepo(), logger.NewNop())
	m := metrics.NewMetrics("test", prometheus.NewRegistry())
	p := NewStatusPoller(flights, scanLogs, dir, reconciler, m, logger.NewNop(), 48*time.Hour, time.Second)
	return p, scanLogs
}

func TestStatusPollUpdatesUpcomingFlight(t *testing.T) {
	now := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	flights := newFakeFlightRepo()
	inside := storedFlight(flights, "UNITED", "UA100", now.Add(24*time.Hour))
	outside := storedFlight(flights, "UNITED", "UA200", now.Add(72*time.Hour))

	sched := inside.DepartureTime
	actual := sched.Add(40 * time.Minute)
	client := &fakeAirlineClient{status: &airline.StatusTuple{
		Status:             "Delayed",
		DepartureGate:      "C12",
		ScheduledDeparture: &sched,
		ActualDeparture:    &actual,
	}}
	p, scanLogs := newTestPoller(flights, &fakeAirlineDirectory{clients: map[string]airline.Client{"united": client}})
	p.now = func() time.Time { return now }

	if err := p.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if client.calls != 1 {
		t.Fatalf("carrier calls = %d, want 1 (horizon)", client.calls)
	}

	stored, _ := flights.FindByNaturalKey(context.Background(), inside.NaturalKey)
	if stored.Status != entity.FlightDelayed {
		t.Errorf("status = %q, want delayed", stored.Status)
	}
	if stored.DelayMinutes != 40 {
		t.Errorf("delay = %d, want 40", stored.DelayMinutes)
	}
	if stored.DepartureGate != "C12" {
		t.Errorf("gate = %q, want C12", stored.DepartureGate)
	}

	untouched, _ := flights.FindByNaturalKey(context.Background(), outside.NaturalKey)
	if untouched.Status != entity.FlightScheduled {
		t.Errorf("flight outside horizon was polled")
	}

	logs := scanLogs.byJob(entity.JobStatusPoll)
	if len(logs) != 1 || logs[0].Updated != 1 {
		t.Errorf("scan log = %+v, want one entry with updated=1", logs)
	}
}

func TestStatusPollSkipsCarriersWithoutKey(t *testing.T) {
	now := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	flights := newFakeFlightRepo()
	storedFlight(flights, "DELTA", "DL55", now.Add(10*time.Hour))

	// No delta client configured
	p, scanLogs := newTestPoller(flights, &fakeAirlineDirectory{clients: map[string]airline.Client{}})
	p.now = func() time.Time { return now }

	if err := p.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	logs := scanLogs.byJob(entity.JobStatusPoll)
	if len(logs) != 1 {
		t.Fatalf("scan logs = %d, want 1", len(logs))
	}
	if logs[0].Seen != 0 || logs[0].Failed != 0 {
		t.Errorf("unconfigured carrier logged as seen or failed: %+v", logs[0])
	}
}

func TestStatusPollFailureIsolatedPerFlight(t *testing.T) {
	now := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	flights := newFakeFlightRepo()
	storedFlight(flights, "UNITED", "UA100", now.Add(6*time.Hour))
	okFlight := storedFlight(flights, "AMERICAN", "AA30", now.Add(8*time.Hour))

	broken := &fakeAirlineClient{err: entity.Classifyf(entity.KindRateLimit, "quota exceeded")}
	sched := okFlight.DepartureTime
	working := &fakeAirlineClient{status: &airline.StatusTuple{
		Status:             "Boarding",
		ScheduledDeparture: &sched,
	}}
	p, scanLogs := newTestPoller(flights, &fakeAirlineDirectory{clients: map[string]airline.Client{
		"united":   broken,
		"american": working,
	}})
	p.now = func() time.Time { return now }

	if err := p.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	stored, _ := flights.FindByNaturalKey(context.Background(), okFlight.NaturalKey)
	if stored.Status != entity.FlightBoarding {
		t.Errorf("healthy carrier's flight not updated, status = %q", stored.Status)
	}

	logs := scanLogs.byJob(entity.JobStatusPoll)
	if len(logs) != 1 {
		t.Fatalf("scan logs = %d, want 1", len(logs))
	}
	if logs[0].Failed != 1 || logs[0].Updated != 1 {
		t.Errorf("log = %+v, want failed=1 updated=1", logs[0])
	}
}

func TestStatusPollUnchangedIsDuplicate(t *testing.T) {
	now := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	flights := newFakeFlightRepo()
	flight := storedFlight(flights, "UNITED", "UA100", now.Add(6*time.Hour))

	client := &fakeAirlineClient{status: &airline.StatusTuple{Status: "On Time"}}
	p, scanLogs := newTestPoller(flights, &fakeAirlineDirectory{clients: map[string]airline.Client{"united": client}})
	p.now = func() time.Time { return now }

	if err := p.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	logs := scanLogs.byJob(entity.JobStatusPoll)
	if len(logs) != 1 || logs[0].Duplicates != 1 {
		t.Errorf("log = %+v, want duplicates=1", logs)
	}
	if flights.updates != 0 {
		t.Errorf("unchanged status caused %d writes", flights.updates)
	}

	stored, _ := flights.FindByNaturalKey(context.Background(), flight.NaturalKey)
	if stored.LastAPIUpdate != nil {
		t.Errorf("duplicate observation stamped LastAPIUpdate")
	}
}
