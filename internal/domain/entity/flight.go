package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Flight status values reported by airline feeds.
const (
	FlightScheduled = "scheduled"
	FlightDelayed   = "delayed"
	FlightCancelled = "cancelled"
	FlightBoarding  = "boarding"
	FlightDeparted  = "departed"
	FlightArrived   = "arrived"
)

// Flight is a persisted flight segment. NaturalKey is the provider-defined
// idempotency key; no two rows may share it.
type Flight struct {
	ID                 uint
	TripID             uint
	NaturalKey         string
	Airline            string
	FlightNumber       string
	ConfirmationNumber string
	PassengerName      string
	DepartureAirport   string
	ArrivalAirport     string
	DepartureTime      time.Time
	ArrivalTime        time.Time
	DepartureTerminal  string
	ArrivalTerminal    string
	DepartureGate      string
	ArrivalGate        string
	SeatNumber         string
	Cost               decimal.Decimal
	DelayMinutes       int
	Status             string
	Notes              string
	LastAPIUpdate      *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Accommodation is a persisted lodging booking attached to a trip.
type Accommodation struct {
	ID                 uint
	TripID             uint
	NaturalKey         string
	Name               string
	Address            string
	CheckIn            time.Time
	CheckOut           time.Time
	ConfirmationNumber string
	Phone              string
	Latitude           *float64
	Longitude          *float64
	Notes              string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// CheckIn is a persisted location checkin imported from the checkin feed.
// ExternalID is the feed's checkin id and is unique across the system.
type CheckIn struct {
	ID            uint
	TripID        uint
	UserID        uint
	ExternalID    string
	VenueName     string
	VenueCategory string
	VenueAddress  string
	Latitude      float64
	Longitude     float64
	CheckinTime   time.Time
	Shout         string
	PhotoURL      string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
