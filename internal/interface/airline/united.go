package airline

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

const unitedBaseURL = "https://api.united.com/v1"

// UnitedClient talks to the United Airlines API
type UnitedClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewUnitedClient creates a new United client
func NewUnitedClient(apiKey string, client *http.Client) *UnitedClient {
	if client == nil {
		client = http.DefaultClient
	}
	return &UnitedClient{baseURL: unitedBaseURL, apiKey: apiKey, client: client}
}

type unitedStatusResponse struct {
	FlightStatus       string `json:"flightStatus"`
	DepartureGate      string `json:"departureGate"`
	ArrivalGate        string `json:"arrivalGate"`
	DepartureTerminal  string `json:"departureTerminal"`
	ScheduledDeparture string `json:"scheduledDeparture"`
	ActualDeparture    string `json:"actualDeparture"`
	ScheduledArrival   string `json:"scheduledArrival"`
	ActualArrival      string `json:"actualArrival"`
}

// FlightStatus fetches live status for a flight on a date
func (c *UnitedClient) FlightStatus(ctx context.Context, flightNumber string, date time.Time) (*StatusTuple, error) {
	url := fmt.Sprintf("%s/flightstatus/%s/%s", c.baseURL, flightNumber, date.Format("2006-01-02"))

	var resp unitedStatusResponse
	if err := getJSON(ctx, c.client, c.apiKey, url, &resp); err != nil {
		return nil, err
	}

	return &StatusTuple{
		Status:             resp.FlightStatus,
		DepartureGate:      resp.DepartureGate,
		ArrivalGate:        resp.ArrivalGate,
		DepartureTerminal:  resp.DepartureTerminal,
		ScheduledDeparture: parseAPITime(resp.ScheduledDeparture),
		ActualDeparture:    parseAPITime(resp.ActualDeparture),
		ScheduledArrival:   parseAPITime(resp.ScheduledArrival),
		ActualArrival:      parseAPITime(resp.ActualArrival),
	}, nil
}

type unitedBookingResponse struct {
	ConfirmationNumber string   `json:"confirmationNumber"`
	PassengerName      string   `json:"passengerName"`
	SeatAssignments    []string `json:"seatAssignments"`
}

// BookingDetails fetches a reservation by confirmation number
func (c *UnitedClient) BookingDetails(ctx context.Context, confirmationNumber string) (*Booking, error) {
	url := fmt.Sprintf("%s/booking/%s", c.baseURL, confirmationNumber)

	var resp unitedBookingResponse
	if err := getJSON(ctx, c.client, c.apiKey, url, &resp); err != nil {
		return nil, err
	}

	return &Booking{
		ConfirmationNumber: resp.ConfirmationNumber,
		PassengerName:      resp.PassengerName,
		Seats:              resp.SeatAssignments,
	}, nil
}
