package oauth

import (
	"context"
	"time"

	"tripsync-service/internal/domain/entity"
	"tripsync-service/internal/domain/repository"
	"tripsync-service/pkg/logger"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"golang.org/x/oauth2/microsoft"
	"google.golang.org/api/gmail/v1"
)

// Manager hands out usable access tokens for (user, provider) pairs. A
// fresh stored bundle is returned without network I/O; a stale one costs
// exactly one refresh round trip.
type Manager struct {
	credRepo repository.CredentialRepository
	configs  map[entity.Provider]*oauth2.Config
	logger   logger.Logger
	now      func() time.Time
}

// GoogleConfig builds the oauth2 config for Gmail access
func GoogleConfig(clientID, clientSecret string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       []string{gmail.GmailReadonlyScope},
	}
}

// MicrosoftConfig builds the oauth2 config for Outlook access
func MicrosoftConfig(clientID, clientSecret string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint:     microsoft.AzureADEndpoint("common"),
		Scopes:       []string{"offline_access", "https://graph.microsoft.com/Mail.Read"},
	}
}

// NewManager creates a new token manager
func NewManager(credRepo repository.CredentialRepository, configs map[entity.Provider]*oauth2.Config, log logger.Logger) *Manager {
	return &Manager{
		credRepo: credRepo,
		configs:  configs,
		logger:   log,
		now:      time.Now,
	}
}

// GetValidToken returns an access token good for at least the safety
// margin. On refresh failure the bundle is flagged for reconnect and an
// auth-kind error is returned.
func (m *Manager) GetValidToken(ctx context.Context, userID uint, provider entity.Provider) (string, error) {
	bundle, err := m.credRepo.GetByUserAndProvider(ctx, userID, provider)
	if err != nil {
		return "", err
	}
	if bundle == nil {
		// Never connected; not an auth failure
		return "", entity.Classifyf(entity.KindConfig, "no %s credential for user %d", provider, userID)
	}
	if bundle.NeedsReconnect {
		return "", entity.Classifyf(entity.KindAuth, "%s credential for user %d needs reconnect", provider, userID)
	}

	// Foursquare tokens do not expire; the stored token is always usable.
	if provider == entity.ProviderFoursquare {
		if bundle.AccessToken == "" {
			return "", entity.Classifyf(entity.KindAuth, "empty foursquare token for user %d", userID)
		}
		return bundle.AccessToken, nil
	}

	now := m.now()
	if bundle.Fresh(now) {
		return bundle.AccessToken, nil
	}

	return m.refresh(ctx, bundle, now)
}

func (m *Manager) refresh(ctx context.Context, bundle *entity.CredentialBundle, now time.Time) (string, error) {
	conf, ok := m.configs[bundle.Provider]
	if !ok {
		return "", entity.Classifyf(entity.KindConfig, "no oauth config for provider %s", bundle.Provider)
	}
	if bundle.RefreshToken == "" {
		if err := m.credRepo.MarkNeedsReconnect(ctx, bundle.UserID, bundle.Provider); err != nil {
			m.logger.Error("Failed to flag credential", "userID", bundle.UserID, "provider", bundle.Provider, "error", err)
		}
		return "", entity.Classifyf(entity.KindAuth, "no refresh token for user %d provider %s", bundle.UserID, bundle.Provider)
	}

	// Expiry in the past forces the token source to hit the endpoint.
	stale := &oauth2.Token{
		RefreshToken: bundle.RefreshToken,
		Expiry:       now.Add(-time.Minute),
	}

	token, err := conf.TokenSource(ctx, stale).Token()
	if err != nil {
		m.logger.Warn("Token refresh failed, flagging for reconnect",
			"userID", bundle.UserID,
			"provider", bundle.Provider,
			"error", err)
		if markErr := m.credRepo.MarkNeedsReconnect(ctx, bundle.UserID, bundle.Provider); markErr != nil {
			m.logger.Error("Failed to flag credential", "userID", bundle.UserID, "provider", bundle.Provider, "error", markErr)
		}
		return "", entity.Classify(entity.KindAuth, err)
	}

	next := bundle.WithToken(token.AccessToken, token.RefreshToken, token.Expiry, now)
	if err := m.credRepo.Replace(ctx, next); err != nil {
		return "", err
	}

	m.logger.Debug("Refreshed access token",
		"userID", bundle.UserID,
		"provider", bundle.Provider,
		"expiresAt", token.Expiry.Format(time.RFC3339))

	return token.AccessToken, nil
}
