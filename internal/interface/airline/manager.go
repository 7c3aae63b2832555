package airline

import (
	"net/http"
	"strings"

	"tripsync-service/pkg/logger"
)

// Manager holds one client per configured carrier. A carrier without an
// API key gets no client, and its flights are skipped by status polling.
type Manager struct {
	clients map[string]Client
	logger  logger.Logger
}

// NewManager builds clients for every carrier with a configured key
func NewManager(apiKeys map[string]string, client *http.Client, log logger.Logger) *Manager {
	clients := make(map[string]Client)

	for airline, key := range apiKeys {
		switch airline {
		case "united":
			clients[airline] = NewUnitedClient(key, client)
		case "american":
			clients[airline] = NewAmericanClient(key, client)
		case "delta":
			clients[airline] = NewDeltaClient(key, client)
		case "southwest":
			clients[airline] = NewSouthwestClient(key, client)
		default:
			log.Warn("Unknown airline in API key config", "airline", airline)
		}
	}

	return &Manager{clients: clients, logger: log}
}

// ForAirline returns the client for a carrier name, nil when unconfigured
func (m *Manager) ForAirline(name string) Client {
	return m.clients[strings.ToLower(name)]
}
