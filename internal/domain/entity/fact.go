package entity

import (
	"fmt"
	"strings"
	"time"
)

// FactKind tags the shape of a TravelFact.
type FactKind string

const (
	FactFlight  FactKind = "flight"
	FactLodging FactKind = "lodging"
	FactCheckin FactKind = "checkin"
)

// Outcome is the result of reconciling one fact against persisted state.
type Outcome string

const (
	OutcomeCreated   Outcome = "created"
	OutcomeUpdated   Outcome = "updated"
	OutcomeDuplicate Outcome = "duplicate"
	OutcomeSkipped   Outcome = "skipped"
	OutcomeFailed    Outcome = "failed"
)

// TravelFact is a transient, normalized record produced by an adapter or
// the parsing engine. It is never persisted directly; the reconciliation
// engine merges it into the trip model.
type TravelFact struct {
	Kind     FactKind
	UserID   uint
	TripID   uint // preselected owning trip, set by checkin sync
	SourceID string

	// Flight booking fields.
	Airline            string
	FlightNumber       string
	ConfirmationNumber string
	Origin             string
	Destination        string
	DepartureTime      time.Time
	ArrivalTime        time.Time
	PassengerName      string

	// Lodging fields.
	LodgingName    string
	LodgingAddress string
	CheckInTime    time.Time
	CheckOutTime   time.Time

	// Checkin fields.
	ExternalID    string
	VenueName     string
	VenueCategory string
	VenueAddress  string
	Latitude      float64
	Longitude     float64
	OccurredAt    time.Time
	Shout         string
	PhotoURL      string

	// Externally-sourced live fields. Partial marks a status-only fact
	// that must never create a new record.
	Partial           bool
	Status            string
	DepartureGate     string
	ArrivalGate       string
	DepartureTerminal string
	ArrivalTerminal   string
	DelayMinutes      int
}

// NaturalKey computes the provider-defined idempotency key for the fact.
func (f *TravelFact) NaturalKey() string {
	switch f.Kind {
	case FactFlight:
		return fmt.Sprintf("%s:%s:%s:%s",
			strings.ToUpper(f.Airline),
			strings.ToUpper(f.ConfirmationNumber),
			strings.ToUpper(f.FlightNumber),
			f.DepartureTime.UTC().Format("2006-01-02"))
	case FactLodging:
		return fmt.Sprintf("lodging:%s:%s",
			strings.ToUpper(f.ConfirmationNumber),
			f.CheckInTime.UTC().Format("2006-01-02"))
	case FactCheckin:
		return f.ExternalID
	}
	return ""
}

// Anchor is the date the fact is attached to a trip by.
func (f *TravelFact) Anchor() time.Time {
	switch f.Kind {
	case FactLodging:
		return f.CheckInTime
	case FactCheckin:
		return f.OccurredAt
	default:
		return f.DepartureTime
	}
}
