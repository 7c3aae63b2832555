package mail

import (
	"context"
	"time"

	"tripsync-service/internal/domain/entity"
)

// Message is one mailbox message in provider-neutral form
type Message struct {
	ID         string
	From       string
	Subject    string
	Body       string
	HTMLBody   string
	ReceivedAt time.Time
}

// Adapter fetches messages received inside a half-open [from, to) window.
// Implementations authenticate with the bearer token they are handed and
// never refresh it themselves.
type Adapter interface {
	FetchWindow(ctx context.Context, accessToken string, from, to time.Time) ([]*Message, error)
}

// Adapters maps mail providers to their adapter
type Adapters map[entity.Provider]Adapter

// ForProvider returns the adapter for a provider, nil when unsupported
func (a Adapters) ForProvider(p entity.Provider) Adapter {
	return a[p]
}
