package airline

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"tripsync-service/internal/domain/entity"
)

// StatusTuple is one live observation of a flight from a carrier API.
// Times are nil when the carrier omitted them.
type StatusTuple struct {
	Status             string
	DepartureGate      string
	ArrivalGate        string
	DepartureTerminal  string
	ArrivalTerminal    string
	ScheduledDeparture *time.Time
	ActualDeparture    *time.Time
	ScheduledArrival   *time.Time
	ActualArrival      *time.Time
}

// DelayMinutes derives the departure delay from the schedule pair, zero
// when either side is missing or the flight is on time.
func (s *StatusTuple) DelayMinutes() int {
	if s.ScheduledDeparture == nil || s.ActualDeparture == nil {
		return 0
	}
	delay := s.ActualDeparture.Sub(*s.ScheduledDeparture)
	if delay <= 0 {
		return 0
	}
	return int(delay / time.Minute)
}

// Booking is a carrier's view of a reservation.
type Booking struct {
	ConfirmationNumber string
	PassengerName      string
	Seats              []string
}

// Client talks to one carrier's API.
type Client interface {
	FlightStatus(ctx context.Context, flightNumber string, date time.Time) (*StatusTuple, error)
	BookingDetails(ctx context.Context, confirmationNumber string) (*Booking, error)
}

// ClassifyStatus maps a carrier status word onto the flight model's
// status set. Unknown words return empty, meaning keep what is stored.
func ClassifyStatus(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "scheduled", "on time", "ontime":
		return entity.FlightScheduled
	case "delayed", "late":
		return entity.FlightDelayed
	case "cancelled", "canceled":
		return entity.FlightCancelled
	case "boarding":
		return entity.FlightBoarding
	case "departed", "in flight", "inflight", "enroute", "en route":
		return entity.FlightDeparted
	case "arrived", "landed":
		return entity.FlightArrived
	}
	return ""
}

// getJSON performs an authorized GET and decodes the carrier's response
func getJSON(ctx context.Context, client *http.Client, apiKey, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return entity.Classify(entity.KindNetwork, err)
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return entity.Classify(entity.KindNetwork, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized, http.StatusForbidden:
		return entity.Classifyf(entity.KindAuth, "carrier returned %d", resp.StatusCode)
	case http.StatusTooManyRequests:
		return entity.Classifyf(entity.KindRateLimit, "carrier returned %d", resp.StatusCode)
	default:
		return entity.Classifyf(entity.KindNetwork, "carrier returned %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return entity.Classify(entity.KindNetwork, err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return entity.Classify(entity.KindParse, err)
	}
	return nil
}

// parseAPITime reads a carrier timestamp, nil when absent or malformed
func parseAPITime(raw string) *time.Time {
	if raw == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05"} {
		if ts, err := time.Parse(layout, raw); err == nil {
			ts = ts.UTC()
			return &ts
		}
	}
	return nil
}
