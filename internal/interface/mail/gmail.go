package mail

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"time"

	"tripsync-service/internal/domain/entity"
	"tripsync-service/pkg/logger"

	"golang.org/x/oauth2"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// GmailAdapter fetches messages through the Gmail API
type GmailAdapter struct {
	logger logger.Logger
}

// NewGmailAdapter creates a new Gmail adapter
func NewGmailAdapter(log logger.Logger) *GmailAdapter {
	return &GmailAdapter{logger: log}
}

// FetchWindow fetches messages received in [from, to)
func (a *GmailAdapter) FetchWindow(ctx context.Context, accessToken string, from, to time.Time) ([]*Message, error) {
	source := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken})
	service, err := gmail.NewService(ctx, option.WithTokenSource(source))
	if err != nil {
		return nil, entity.Classify(entity.KindNetwork, err)
	}

	// Gmail's after/before operators accept epoch seconds and are
	// inclusive/exclusive the way the window wants.
	query := fmt.Sprintf("after:%d before:%d", from.Unix(), to.Unix())

	var messages []*Message
	pageToken := ""
	for {
		req := service.Users.Messages.List("me").Q(query).MaxResults(100)
		if pageToken != "" {
			req = req.PageToken(pageToken)
		}
		resp, err := req.Context(ctx).Do()
		if err != nil {
			return nil, classifyGoogleErr(err)
		}

		for _, ref := range resp.Messages {
			fullMsg, err := service.Users.Messages.Get("me", ref.Id).Context(ctx).Do()
			if err != nil {
				a.logger.Warn("Failed to get message", "messageID", ref.Id, "error", err)
				continue
			}

			msg := convertGmailMessage(fullMsg)
			// The query is date-granular; enforce the window exactly.
			if msg.ReceivedAt.Before(from) || !msg.ReceivedAt.Before(to) {
				continue
			}
			messages = append(messages, msg)
		}

		if resp.NextPageToken == "" {
			break
		}
		pageToken = resp.NextPageToken
	}

	return messages, nil
}

func classifyGoogleErr(err error) error {
	if apiErr, ok := err.(*googleapi.Error); ok {
		switch apiErr.Code {
		case http.StatusUnauthorized:
			return entity.Classify(entity.KindAuth, err)
		case http.StatusTooManyRequests:
			return entity.Classify(entity.KindRateLimit, err)
		}
	}
	return entity.Classify(entity.KindNetwork, err)
}

func convertGmailMessage(msg *gmail.Message) *Message {
	out := &Message{
		ID:         msg.Id,
		ReceivedAt: time.Unix(0, msg.InternalDate*int64(time.Millisecond)).UTC(),
	}
	if msg.Payload == nil {
		return out
	}

	for _, header := range msg.Payload.Headers {
		switch header.Name {
		case "From":
			out.From = header.Value
		case "Subject":
			out.Subject = header.Value
		}
	}

	if msg.Payload.Body != nil && msg.Payload.Body.Data != "" {
		if data, err := base64.URLEncoding.DecodeString(msg.Payload.Body.Data); err == nil {
			out.Body = string(data)
		}
	}

	// Multipart messages carry the text in parts
	for _, part := range msg.Payload.Parts {
		if part.Body == nil || part.Body.Data == "" {
			continue
		}
		data, err := base64.URLEncoding.DecodeString(part.Body.Data)
		if err != nil {
			continue
		}
		switch part.MimeType {
		case "text/plain":
			out.Body = string(data)
		case "text/html":
			out.HTMLBody = string(data)
		}
	}

	return out
}
