package entity

import (
	"time"
)

// Provider identifies an external data source family.
type Provider string

const (
	ProviderGmail      Provider = "gmail"
	ProviderOutlook    Provider = "outlook"
	ProviderFoursquare Provider = "foursquare"
)

// MailProviders is the closed set of mailbox sources the scanner iterates.
var MailProviders = []Provider{ProviderGmail, ProviderOutlook}

// CredentialBundle holds the secret material for one (user, provider) pair.
// Bundles are replaced as a whole on refresh, never mutated field by field.
type CredentialBundle struct {
	ID             uint
	UserID         uint
	Provider       Provider
	EmailAddress   string
	AccessToken    string
	RefreshToken   string
	ExpiresAt      time.Time
	NeedsReconnect bool
	LastValidated  time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Fresh reports whether the stored access token can be used without a
// refresh round trip. A small safety margin avoids handing out a token
// that expires mid-request.
func (b *CredentialBundle) Fresh(now time.Time) bool {
	if b.AccessToken == "" || b.NeedsReconnect {
		return false
	}
	return b.ExpiresAt.After(now.Add(30 * time.Second))
}

// WithToken returns a new bundle carrying the refreshed secret material.
// The refresh token is kept when the provider did not rotate it.
func (b *CredentialBundle) WithToken(accessToken, refreshToken string, expiresAt, now time.Time) *CredentialBundle {
	next := *b
	next.AccessToken = accessToken
	if refreshToken != "" {
		next.RefreshToken = refreshToken
	}
	next.ExpiresAt = expiresAt
	next.NeedsReconnect = false
	next.LastValidated = now
	return &next
}

// ScanCursor records the last successfully processed point in a source's
// timeline for one (user, provider) pair. It never moves backwards except
// on an explicit reconnect.
type ScanCursor struct {
	ID            uint
	UserID        uint
	Provider      Provider
	LastProcessed time.Time
	UpdatedAt     time.Time
}
