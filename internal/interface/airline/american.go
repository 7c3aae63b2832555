package airline

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const americanBaseURL = "https://api.aa.com/v1"

// AmericanClient talks to the American Airlines API
type AmericanClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewAmericanClient creates a new American client
func NewAmericanClient(apiKey string, client *http.Client) *AmericanClient {
	if client == nil {
		client = http.DefaultClient
	}
	return &AmericanClient{baseURL: americanBaseURL, apiKey: apiKey, client: client}
}

type americanStatusResponse struct {
	Flight struct {
		Status             string `json:"status"`
		DepartureGate      string `json:"departureGate"`
		ArrivalGate        string `json:"arrivalGate"`
		DepartureTerminal  string `json:"departureTerminal"`
		ScheduledDeparture string `json:"scheduledDepartureTime"`
		ActualDeparture    string `json:"actualDepartureTime"`
		ScheduledArrival   string `json:"scheduledArrivalTime"`
		ActualArrival      string `json:"actualArrivalTime"`
	} `json:"flight"`
}

// FlightStatus fetches live status for a flight on a date
func (c *AmericanClient) FlightStatus(ctx context.Context, flightNumber string, date time.Time) (*StatusTuple, error) {
	endpoint := fmt.Sprintf("%s/flights/status/%s?date=%s",
		c.baseURL, flightNumber, url.QueryEscape(date.Format("2006-01-02")))

	var resp americanStatusResponse
	if err := getJSON(ctx, c.client, c.apiKey, endpoint, &resp); err != nil {
		return nil, err
	}

	f := resp.Flight
	return &StatusTuple{
		Status:             f.Status,
		DepartureGate:      f.DepartureGate,
		ArrivalGate:        f.ArrivalGate,
		DepartureTerminal:  f.DepartureTerminal,
		ScheduledDeparture: parseAPITime(f.ScheduledDeparture),
		ActualDeparture:    parseAPITime(f.ActualDeparture),
		ScheduledArrival:   parseAPITime(f.ScheduledArrival),
		ActualArrival:      parseAPITime(f.ActualArrival),
	}, nil
}

type americanBookingResponse struct {
	RecordLocator string `json:"recordLocator"`
	Travelers     []struct {
		Name string `json:"name"`
	} `json:"travelers"`
	Seats []string `json:"seats"`
}

// BookingDetails fetches a reservation by record locator
func (c *AmericanClient) BookingDetails(ctx context.Context, confirmationNumber string) (*Booking, error) {
	endpoint := fmt.Sprintf("%s/reservations/%s", c.baseURL, confirmationNumber)

	var resp americanBookingResponse
	if err := getJSON(ctx, c.client, c.apiKey, endpoint, &resp); err != nil {
		return nil, err
	}

	booking := &Booking{
		ConfirmationNumber: resp.RecordLocator,
		Seats:              resp.Seats,
	}
	if len(resp.Travelers) > 0 {
		booking.PassengerName = resp.Travelers[0].Name
	}
	return booking, nil
}
