package checkinfeed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"tripsync-service/internal/domain/entity"
	"tripsync-service/pkg/logger"
)

const (
	foursquareBaseURL = "https://api.foursquare.com/v2"
	apiVersion        = "20230801"
	pageSize          = 250
)

// Checkin is one feed entry in provider-neutral form
type Checkin struct {
	ExternalID    string
	VenueName     string
	VenueCategory string
	VenueAddress  string
	Latitude      float64
	Longitude     float64
	OccurredAt    time.Time
	Shout         string
	PhotoURL      string
}

// FoursquareClient fetches the user's checkin history
type FoursquareClient struct {
	baseURL string
	client  *http.Client
	logger  logger.Logger
}

// NewFoursquareClient creates a new Foursquare client
func NewFoursquareClient(client *http.Client, log logger.Logger) *FoursquareClient {
	if client == nil {
		client = http.DefaultClient
	}
	return &FoursquareClient{
		baseURL: foursquareBaseURL,
		client:  client,
		logger:  log,
	}
}

type foursquareResponse struct {
	Response struct {
		Checkins struct {
			Count int               `json:"count"`
			Items []foursquareEntry `json:"items"`
		} `json:"checkins"`
	} `json:"response"`
}

type foursquareEntry struct {
	ID        string `json:"id"`
	CreatedAt int64  `json:"createdAt"`
	Shout     string `json:"shout"`
	Venue     struct {
		Name     string `json:"name"`
		Location struct {
			Address string  `json:"address"`
			City    string  `json:"city"`
			Lat     float64 `json:"lat"`
			Lng     float64 `json:"lng"`
		} `json:"location"`
		Categories []struct {
			Name string `json:"name"`
		} `json:"categories"`
	} `json:"venue"`
	Photos struct {
		Items []struct {
			Prefix string `json:"prefix"`
			Suffix string `json:"suffix"`
		} `json:"items"`
	} `json:"photos"`
}

// FetchWindow returns the user's checkins occurring in [from, to)
func (c *FoursquareClient) FetchWindow(ctx context.Context, accessToken string, from, to time.Time) ([]*Checkin, error) {
	params := url.Values{}
	params.Set("oauth_token", accessToken)
	params.Set("v", apiVersion)
	params.Set("afterTimestamp", strconv.FormatInt(from.Unix(), 10))
	params.Set("beforeTimestamp", strconv.FormatInt(to.Unix(), 10))
	params.Set("limit", strconv.Itoa(pageSize))

	endpoint := fmt.Sprintf("%s/users/self/checkins?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, entity.Classify(entity.KindNetwork, err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, entity.Classify(entity.KindNetwork, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized:
		return nil, entity.Classifyf(entity.KindAuth, "foursquare returned %d", resp.StatusCode)
	case http.StatusTooManyRequests:
		return nil, entity.Classifyf(entity.KindRateLimit, "foursquare returned %d", resp.StatusCode)
	default:
		return nil, entity.Classifyf(entity.KindNetwork, "foursquare returned %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, entity.Classify(entity.KindNetwork, err)
	}

	var parsed foursquareResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, entity.Classify(entity.KindParse, err)
	}

	checkins := make([]*Checkin, 0, len(parsed.Response.Checkins.Items))
	for i := range parsed.Response.Checkins.Items {
		checkins = append(checkins, convertEntry(&parsed.Response.Checkins.Items[i]))
	}
	return checkins, nil
}

func convertEntry(e *foursquareEntry) *Checkin {
	out := &Checkin{
		ExternalID:   e.ID,
		VenueName:    e.Venue.Name,
		VenueAddress: e.Venue.Location.Address,
		Latitude:     e.Venue.Location.Lat,
		Longitude:    e.Venue.Location.Lng,
		OccurredAt:   time.Unix(e.CreatedAt, 0).UTC(),
		Shout:        e.Shout,
	}
	if len(e.Venue.Categories) > 0 {
		out.VenueCategory = e.Venue.Categories[0].Name
	}
	if len(e.Photos.Items) > 0 {
		p := e.Photos.Items[0]
		out.PhotoURL = p.Prefix + "original" + p.Suffix
	}
	return out
}
