package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"tripsync-service/internal/domain/entity"
	"tripsync-service/internal/interface/airline"
	"tripsync-service/internal/interface/checkinfeed"
	"tripsync-service/internal/interface/mail"
)

// In-memory repository fakes shared by the usecase tests.

type fakeTripRepo struct {
	mu     sync.Mutex
	trips  []*entity.Trip
	nextID uint
}

func newFakeTripRepo() *fakeTripRepo {
	return &fakeTripRepo{nextID: 1}
}

func (r *fakeTripRepo) FindByID(_ context.Context, id uint) (*entity.Trip, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.trips {
		if t.ID == id {
			return t, nil
		}
	}
	return nil, nil
}

func (r *fakeTripRepo) FindContaining(_ context.Context, userID uint, ts time.Time) ([]*entity.Trip, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Trip
	for _, t := range r.trips {
		if t.UserID == userID && t.Contains(ts) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *fakeTripRepo) ListActiveByUser(_ context.Context, userID uint, cutoff time.Time) ([]*entity.Trip, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Trip
	for _, t := range r.trips {
		if t.UserID == userID && !t.EndDate.Before(cutoff) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *fakeTripRepo) Create(_ context.Context, trip *entity.Trip) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	trip.ID = r.nextID
	r.nextID++
	if trip.CreatedAt.IsZero() {
		trip.CreatedAt = time.Now()
	}
	r.trips = append(r.trips, trip)
	return nil
}

type fakeFlightRepo struct {
	mu      sync.Mutex
	flights map[string]*entity.Flight
	nextID  uint
	updates int
}

func newFakeFlightRepo() *fakeFlightRepo {
	return &fakeFlightRepo{flights: map[string]*entity.Flight{}, nextID: 1}
}

func (r *fakeFlightRepo) FindByNaturalKey(_ context.Context, key string) (*entity.Flight, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if f, ok := r.flights[key]; ok {
		clone := *f
		return &clone, nil
	}
	return nil, nil
}

func (r *fakeFlightRepo) Create(_ context.Context, flight *entity.Flight) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	flight.ID = r.nextID
	r.nextID++
	clone := *flight
	r.flights[flight.NaturalKey] = &clone
	return nil
}

func (r *fakeFlightRepo) Update(_ context.Context, flight *entity.Flight) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *flight
	r.flights[flight.NaturalKey] = &clone
	r.updates++
	return nil
}

func (r *fakeFlightRepo) ListDepartingBetween(_ context.Context, from, to time.Time) ([]*entity.Flight, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Flight
	for _, f := range r.flights {
		if f.Status == entity.FlightCancelled {
			continue
		}
		if !f.DepartureTime.Before(from) && f.DepartureTime.Before(to) {
			clone := *f
			out = append(out, &clone)
		}
	}
	return out, nil
}

type fakeAccomRepo struct {
	mu     sync.Mutex
	accoms map[string]*entity.Accommodation
	nextID uint
}

func newFakeAccomRepo() *fakeAccomRepo {
	return &fakeAccomRepo{accoms: map[string]*entity.Accommodation{}, nextID: 1}
}

func (r *fakeAccomRepo) FindByNaturalKey(_ context.Context, key string) (*entity.Accommodation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a, ok := r.accoms[key]; ok {
		clone := *a
		return &clone, nil
	}
	return nil, nil
}

func (r *fakeAccomRepo) Create(_ context.Context, acc *entity.Accommodation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	acc.ID = r.nextID
	r.nextID++
	clone := *acc
	r.accoms[acc.NaturalKey] = &clone
	return nil
}

func (r *fakeAccomRepo) Update(_ context.Context, acc *entity.Accommodation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *acc
	r.accoms[acc.NaturalKey] = &clone
	return nil
}

type fakeCheckinRepo struct {
	mu       sync.Mutex
	checkins map[string]*entity.CheckIn
	nextID   uint
	updates  int
}

func newFakeCheckinRepo() *fakeCheckinRepo {
	return &fakeCheckinRepo{checkins: map[string]*entity.CheckIn{}, nextID: 1}
}

func (r *fakeCheckinRepo) FindByExternalID(_ context.Context, externalID string) (*entity.CheckIn, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.checkins[externalID]; ok {
		clone := *c
		return &clone, nil
	}
	return nil, nil
}

func (r *fakeCheckinRepo) Create(_ context.Context, checkin *entity.CheckIn) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	checkin.ID = r.nextID
	r.nextID++
	clone := *checkin
	r.checkins[checkin.ExternalID] = &clone
	return nil
}

func (r *fakeCheckinRepo) Update(_ context.Context, checkin *entity.CheckIn) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *checkin
	r.checkins[checkin.ExternalID] = &clone
	r.updates++
	return nil
}

type fakeUserRepo struct {
	users []*entity.User
}

func (r *fakeUserRepo) FindByID(_ context.Context, id uint) (*entity.User, error) {
	for _, u := range r.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) ListScanEnabled(_ context.Context) ([]*entity.User, error) {
	var out []*entity.User
	for _, u := range r.users {
		if u.IsActive && u.EmailScanEnabled {
			out = append(out, u)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) ListCheckinEnabled(_ context.Context) ([]*entity.User, error) {
	var out []*entity.User
	for _, u := range r.users {
		if u.IsActive && u.CheckinSyncEnabled {
			out = append(out, u)
		}
	}
	return out, nil
}

type fakeCursorRepo struct {
	mu      sync.Mutex
	cursors map[string]time.Time
}

func newFakeCursorRepo() *fakeCursorRepo {
	return &fakeCursorRepo{cursors: map[string]time.Time{}}
}

func cursorKey(userID uint, provider entity.Provider) string {
	return fmt.Sprintf("%d:%s", userID, provider)
}

func (r *fakeCursorRepo) Get(_ context.Context, userID uint, provider entity.Provider) (*entity.ScanCursor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ts, ok := r.cursors[cursorKey(userID, provider)]
	if !ok {
		return nil, nil
	}
	return &entity.ScanCursor{UserID: userID, Provider: provider, LastProcessed: ts}, nil
}

func (r *fakeCursorRepo) Advance(_ context.Context, userID uint, provider entity.Provider, ts time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := cursorKey(userID, provider)
	if stored, ok := r.cursors[key]; ok && !ts.After(stored) {
		return nil
	}
	r.cursors[key] = ts
	return nil
}

func (r *fakeCursorRepo) Reset(_ context.Context, userID uint, provider entity.Provider, ts time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cursors[cursorKey(userID, provider)] = ts
	return nil
}

type fakeScanLogRepo struct {
	mu   sync.Mutex
	logs []*entity.ScanLog
}

func (r *fakeScanLogRepo) Append(_ context.Context, log *entity.ScanLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logs = append(r.logs, log)
	return nil
}

func (r *fakeScanLogRepo) ListRecent(_ context.Context, job string, limit int) ([]*entity.ScanLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.ScanLog
	for i := len(r.logs) - 1; i >= 0 && len(out) < limit; i-- {
		if r.logs[i].Job == job {
			out = append(out, r.logs[i])
		}
	}
	return out, nil
}

func (r *fakeScanLogRepo) byJob(job string) []*entity.ScanLog {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.ScanLog
	for _, l := range r.logs {
		if l.Job == job {
			out = append(out, l)
		}
	}
	return out
}

// fakeTokens maps (user, provider) to a static token; absent pairs act
// like unconfigured credentials.
type fakeTokens struct {
	tokens map[entity.Provider]map[uint]string
}

func (t *fakeTokens) GetValidToken(_ context.Context, userID uint, provider entity.Provider) (string, error) {
	if tok, ok := t.tokens[provider][userID]; ok {
		return tok, nil
	}
	return "", entity.Classifyf(entity.KindConfig, "no %s credential for user %d", provider, userID)
}

type fakeMailAdapter struct {
	messages []*mail.Message
	err      error
	calls    int
}

func (a *fakeMailAdapter) FetchWindow(_ context.Context, _ string, from, to time.Time) ([]*mail.Message, error) {
	a.calls++
	if a.err != nil {
		return nil, a.err
	}
	var out []*mail.Message
	for _, m := range a.messages {
		if !m.ReceivedAt.Before(from) && m.ReceivedAt.Before(to) {
			out = append(out, m)
		}
	}
	return out, nil
}

type fakeFeed struct {
	checkins []*checkinfeed.Checkin
	err      error
	calls    int
}

func (f *fakeFeed) FetchWindow(_ context.Context, _ string, from, to time.Time) ([]*checkinfeed.Checkin, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	var out []*checkinfeed.Checkin
	for _, c := range f.checkins {
		if !c.OccurredAt.Before(from) && c.OccurredAt.Before(to) {
			out = append(out, c)
		}
	}
	return out, nil
}

type fakeAirlineClient struct {
	status *airline.StatusTuple
	err    error
	calls  int
}

func (c *fakeAirlineClient) FlightStatus(_ context.Context, _ string, _ time.Time) (*airline.StatusTuple, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	return c.status, nil
}

func (c *fakeAirlineClient) BookingDetails(_ context.Context, _ string) (*airline.Booking, error) {
	return nil, nil
}

type fakeAirlineDirectory struct {
	clients map[string]airline.Client
}

func (d *fakeAirlineDirectory) ForAirline(name string) airline.Client {
	return d.clients[strings.ToLower(name)]
}
