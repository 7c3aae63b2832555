package airline

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

const deltaBaseURL = "https://api.delta.com/v1"

// DeltaClient talks to the Delta Air Lines API
type DeltaClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewDeltaClient creates a new Delta client
func NewDeltaClient(apiKey string, client *http.Client) *DeltaClient {
	if client == nil {
		client = http.DefaultClient
	}
	return &DeltaClient{baseURL: deltaBaseURL, apiKey: apiKey, client: client}
}

type deltaStatusResponse struct {
	OperationalStatus  string `json:"operationalStatus"`
	DepartureGate      string `json:"departureGate"`
	ArrivalGate        string `json:"arrivalGate"`
	DepartureTerminal  string `json:"departureTerminal"`
	ScheduledDeparture string `json:"scheduledDepartureDateTime"`
	EstimatedDeparture string `json:"estimatedDepartureDateTime"`
	ScheduledArrival   string `json:"scheduledArrivalDateTime"`
	EstimatedArrival   string `json:"estimatedArrivalDateTime"`
}

// FlightStatus fetches live status for a flight on a date
func (c *DeltaClient) FlightStatus(ctx context.Context, flightNumber string, date time.Time) (*StatusTuple, error) {
	url := fmt.Sprintf("%s/flightstatus/%s/%s", c.baseURL, flightNumber, date.Format("2006-01-02"))

	var resp deltaStatusResponse
	if err := getJSON(ctx, c.client, c.apiKey, url, &resp); err != nil {
		return nil, err
	}

	return &StatusTuple{
		Status:             resp.OperationalStatus,
		DepartureGate:      resp.DepartureGate,
		ArrivalGate:        resp.ArrivalGate,
		DepartureTerminal:  resp.DepartureTerminal,
		ScheduledDeparture: parseAPITime(resp.ScheduledDeparture),
		ActualDeparture:    parseAPITime(resp.EstimatedDeparture),
		ScheduledArrival:   parseAPITime(resp.ScheduledArrival),
		ActualArrival:      parseAPITime(resp.EstimatedArrival),
	}, nil
}

type deltaBookingResponse struct {
	ConfirmationNumber string `json:"confirmationNumber"`
	Passenger          struct {
		Name string `json:"name"`
	} `json:"passenger"`
	SeatAssignments []string `json:"seatAssignments"`
}

// BookingDetails fetches a reservation by confirmation number
func (c *DeltaClient) BookingDetails(ctx context.Context, confirmationNumber string) (*Booking, error) {
	url := fmt.Sprintf("%s/trips/%s", c.baseURL, confirmationNumber)

	var resp deltaBookingResponse
	if err := getJSON(ctx, c.client, c.apiKey, url, &resp); err != nil {
		return nil, err
	}

	return &Booking{
		ConfirmationNumber: resp.ConfirmationNumber,
		PassengerName:      resp.Passenger.Name,
		Seats:              resp.SeatAssignments,
	}, nil
}
