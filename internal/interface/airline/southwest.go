package airline

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const southwestBaseURL = "https://api.southwest.com/v1"

// SouthwestClient talks to the Southwest Airlines API
type SouthwestClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewSouthwestClient creates a new Southwest client
func NewSouthwestClient(apiKey string, client *http.Client) *SouthwestClient {
	if client == nil {
		client = http.DefaultClient
	}
	return &SouthwestClient{baseURL: southwestBaseURL, apiKey: apiKey, client: client}
}

type southwestStatusResponse struct {
	FlightStatusResponse struct {
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
	} `json:"flightStatusResponse"`
}

// FlightStatus fetches live status for a flight on a date
func (c *SouthwestClient) FlightStatus(ctx context.Context, flightNumber string, date time.Time) (*StatusTuple, error) {
	params := url.Values{}
	params.Set("flightNumber", flightNumber)
	params.Set("date", date.Format("2006-01-02"))
	endpoint := fmt.Sprintf("%s/flightstatus?%s", c.baseURL, params.Encode())

	var resp southwestStatusResponse
	if err := getJSON(ctx, c.client, c.apiKey, endpoint, &resp); err != nil {
		return nil, err
	}

	f := resp.FlightStatusResponse.Flight
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

type southwestBookingResponse struct {
	Reservation struct {
		ConfirmationNumber string `json:"confirmationNumber"`
		Passengers         []struct {
			Name string `json:"name"`
		} `json:"passengers"`
	} `json:"reservation"`
}

// BookingDetails fetches a reservation by confirmation number.
// Southwest has open seating, so no seat assignments come back.
func (c *SouthwestClient) BookingDetails(ctx context.Context, confirmationNumber string) (*Booking, error) {
	params := url.Values{}
	params.Set("confirmationNumber", confirmationNumber)
	endpoint := fmt.Sprintf("%s/reservations/detail?%s", c.baseURL, params.Encode())

	var resp southwestBookingResponse
	if err := getJSON(ctx, c.client, c.apiKey, endpoint, &resp); err != nil {
		return nil, err
	}

	booking := &Booking{
		ConfirmationNumber: resp.Reservation.ConfirmationNumber,
	}
	if len(resp.Reservation.Passengers) > 0 {
		booking.PassengerName = resp.Reservation.Passengers[0].Name
	}
	return booking, nil
}
