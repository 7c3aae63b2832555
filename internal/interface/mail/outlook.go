package mail

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"tripsync-service/internal/domain/entity"
	"tripsync-service/pkg/logger"
)

const graphBaseURL = "https://graph.microsoft.com/v1.0"

// OutlookAdapter fetches messages through the Microsoft Graph REST API
type OutlookAdapter struct {
	baseURL string
	client  *http.Client
	logger  logger.Logger
}

// NewOutlookAdapter creates a new Outlook adapter
func NewOutlookAdapter(client *http.Client, log logger.Logger) *OutlookAdapter {
	if client == nil {
		client = http.DefaultClient
	}
	return &OutlookAdapter{
		baseURL: graphBaseURL,
		client:  client,
		logger:  log,
	}
}

type graphMessage struct {
	ID               string    `json:"id"`
	Subject          string    `json:"subject"`
	ReceivedDateTime time.Time `json:"receivedDateTime"`
	BodyPreview      string    `json:"bodyPreview"`
	Body             struct {
		ContentType string `json:"contentType"`
		Content     string `json:"content"`
	} `json:"body"`
	From struct {
		EmailAddress struct {
			Name    string `json:"name"`
			Address string `json:"address"`
		} `json:"emailAddress"`
	} `json:"from"`
}

type graphListResponse struct {
	Value    []graphMessage `json:"value"`
	NextLink string         `json:"@odata.nextLink"`
}

// FetchWindow fetches messages received in [from, to)
func (a *OutlookAdapter) FetchWindow(ctx context.Context, accessToken string, from, to time.Time) ([]*Message, error) {
	filter := fmt.Sprintf("receivedDateTime ge %s and receivedDateTime lt %s",
		from.UTC().Format(time.RFC3339),
		to.UTC().Format(time.RFC3339))

	query := url.Values{}
	query.Set("$filter", filter)
	query.Set("$select", "id,subject,from,receivedDateTime,body,bodyPreview")
	query.Set("$top", "50")

	next := a.baseURL + "/me/messages?" + query.Encode()

	var messages []*Message
	for next != "" {
		page, err := a.fetchPage(ctx, accessToken, next)
		if err != nil {
			return nil, err
		}

		for i := range page.Value {
			messages = append(messages, convertGraphMessage(&page.Value[i]))
		}
		next = page.NextLink
	}

	return messages, nil
}

func (a *OutlookAdapter) fetchPage(ctx context.Context, accessToken, pageURL string) (*graphListResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, entity.Classify(entity.KindNetwork, err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, entity.Classify(entity.KindNetwork, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized:
		return nil, entity.Classifyf(entity.KindAuth, "graph returned %d", resp.StatusCode)
	case http.StatusTooManyRequests:
		return nil, entity.Classifyf(entity.KindRateLimit, "graph returned %d", resp.StatusCode)
	default:
		return nil, entity.Classifyf(entity.KindNetwork, "graph returned %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, entity.Classify(entity.KindNetwork, err)
	}

	var page graphListResponse
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, entity.Classify(entity.KindParse, err)
	}
	return &page, nil
}

func convertGraphMessage(m *graphMessage) *Message {
	out := &Message{
		ID:         m.ID,
		From:       m.From.EmailAddress.Address,
		Subject:    m.Subject,
		ReceivedAt: m.ReceivedDateTime.UTC(),
	}

	switch m.Body.ContentType {
	case "html":
		out.HTMLBody = m.Body.Content
		out.Body = m.BodyPreview
	default:
		out.Body = m.Body.Content
	}

	return out
}
