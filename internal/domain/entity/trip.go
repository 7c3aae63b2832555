package entity

import (
	"time"
)

// TripVisibility controls who can see a trip.
type TripVisibility string

const (
	VisibilityPrivate TripVisibility = "private"
	VisibilityShared  TripVisibility = "shared"
	VisibilityPublic  TripVisibility = "public"
)

// Trip is the aggregate travel facts are merged into. Many flights,
// accommodations and checkins may map to the same trip.
type Trip struct {
	ID                   uint
	UserID               uint
	Title                string
	Description          string
	Destination          string
	DestinationLatitude  *float64
	DestinationLongitude *float64
	StartDate            time.Time
	EndDate              time.Time
	Visibility           TripVisibility
	ConfirmationNumber   string
	AutoDetected         bool
	EmailSource          string
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// Contains reports whether ts falls inside the trip's date range, inclusive.
func (t *Trip) Contains(ts time.Time) bool {
	return !ts.Before(t.StartDate) && !ts.After(t.EndDate)
}

// Span is the trip's total date range length.
func (t *Trip) Span() time.Duration {
	return t.EndDate.Sub(t.StartDate)
}

// IsPast reports whether the trip ended before now.
func (t *Trip) IsPast(now time.Time) bool {
	return t.EndDate.Before(now)
}

// TripShare grants another party access to a trip, optionally expiring.
type TripShare struct {
	ID               uint
	TripID           uint
	SharedWithUserID *uint
	ShareToken       string
	ExternalEmail    string
	CanEdit          bool
	CreatedAt        time.Time
	ExpiresAt        *time.Time
}

// User is the owner row the ingestion engine reads. Account management
// lives in the web application, not here.
type User struct {
	ID                 uint
	Username           string
	Email              string
	EmailScanEnabled   bool
	CheckinSyncEnabled bool
	IsActive           bool
	CreatedAt          time.Time
}
