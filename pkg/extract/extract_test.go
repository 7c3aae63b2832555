package extract

import (
	"testing"
	"time"

	"tripsync-service/internal/domain/entity"
	"tripsync-service/pkg/logger"
)

func TestParseUnitedConfirmation(t *testing.T) {
	p := NewParser(logger.NewNop())

	fact, err := p.Parse(
		"UnitedAirlines <noreply@united.com>",
		"Your flight confirmation",
		"Confirmation: ABC123, Flight UA100, Dec 15 2025, SFO-JFK",
		"",
	)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if fact == nil {
		t.Fatal("no fact extracted")
	}

	if fact.Kind != entity.FactFlight {
		t.Errorf("kind = %s", fact.Kind)
	}
	if fact.Airline != "UNITED" {
		t.Errorf("airline = %q, want UNITED", fact.Airline)
	}
	if fact.ConfirmationNumber != "ABC123" {
		t.Errorf("confirmation = %q, want ABC123", fact.ConfirmationNumber)
	}
	if fact.FlightNumber != "UA100" {
		t.Errorf("flight number = %q, want UA100", fact.FlightNumber)
	}
	if fact.Origin != "SFO" || fact.Destination != "JFK" {
		t.Errorf("route = %s-%s, want SFO-JFK", fact.Origin, fact.Destination)
	}

	wantDep := time.Date(2025, 12, 15, 0, 0, 0, 0, time.UTC)
	if !fact.DepartureTime.Equal(wantDep) {
		t.Errorf("departure = %s, want %s", fact.DepartureTime, wantDep)
	}
	if !fact.ArrivalTime.Equal(wantDep.Add(2 * time.Hour)) {
		t.Errorf("arrival default = %s, want departure+2h", fact.ArrivalTime)
	}
}

func TestParseDepartureAndArrivalTimes(t *testing.T) {
	p := NewParser(logger.NewNop())

	fact, err := p.Parse(
		"noreply@delta.com",
		"Confirmation",
		"Confirmation: DLT456 Flight DL200 from ATL to LAX departing Dec 15, 2025 8:00 AM arriving Dec 15, 2025 10:30 AM",
		"",
	)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	wantDep := time.Date(2025, 12, 15, 8, 0, 0, 0, time.UTC)
	wantArr := time.Date(2025, 12, 15, 10, 30, 0, 0, time.UTC)
	if !fact.DepartureTime.Equal(wantDep) {
		t.Errorf("departure = %s, want %s", fact.DepartureTime, wantDep)
	}
	if !fact.ArrivalTime.Equal(wantArr) {
		t.Errorf("arrival = %s, want %s", fact.ArrivalTime, wantArr)
	}
}

func TestParseUnrelatedMailIgnored(t *testing.T) {
	p := NewParser(logger.NewNop())

	fact, err := p.Parse(
		"newsletter@example.com",
		"Weekly digest",
		"Nothing travel related in here at all.",
		"",
	)
	if err != nil {
		t.Fatalf("unmatched mail should not error, got %v", err)
	}
	if fact != nil {
		t.Fatalf("unmatched mail produced a fact: %+v", fact)
	}
}

func TestParseClaimedMailMissingFieldsIsParseError(t *testing.T) {
	p := NewParser(logger.NewNop())

	// Airline detector matches but there is nothing to extract
	fact, err := p.Parse(
		"noreply@united.com",
		"Your flight confirmation",
		"Thanks for flying with us!",
		"",
	)
	if fact != nil {
		t.Fatalf("incomplete mail produced a fact: %+v", fact)
	}
	if err == nil {
		t.Fatal("expected a parse error")
	}
	if !entity.IsKind(err, entity.KindParse) {
		t.Errorf("error kind = %s, want parse", entity.KindOf(err))
	}
}

func TestParseHTMLBody(t *testing.T) {
	p := NewParser(logger.NewNop())

	html := `<html><head><style>.x{color:red}</style></head><body>
		<p>Confirmation: XYZ789</p>
		<p>Flight UA 455 departs SFO arrives ORD</p>
		<p>Dec 20, 2025 9:15 AM</p>
	</body></html>`

	fact, err := p.Parse("noreply@united.com", "Itinerary", "", html)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if fact == nil {
		t.Fatal("no fact from HTML body")
	}
	if fact.ConfirmationNumber != "XYZ789" || fact.FlightNumber != "UA455" {
		t.Errorf("parsed %q/%q from HTML", fact.ConfirmationNumber, fact.FlightNumber)
	}
	if fact.Origin != "SFO" || fact.Destination != "ORD" {
		t.Errorf("route = %s-%s, want SFO-ORD", fact.Origin, fact.Destination)
	}
}

func TestParseLodgingConfirmation(t *testing.T) {
	p := NewParser(logger.NewNop())

	fact, err := p.Parse(
		"reservations@grandplaza.example.com",
		"Hotel reservation confirmed",
		"Grand Plaza Hotel. Confirmation: HTL789. Check-in: Dec 15, 2025. Check-out: Dec 18, 2025.",
		"",
	)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if fact == nil {
		t.Fatal("no lodging fact extracted")
	}
	if fact.Kind != entity.FactLodging {
		t.Fatalf("kind = %s, want lodging", fact.Kind)
	}
	if fact.LodgingName != "Grand Plaza Hotel" {
		t.Errorf("lodging name = %q", fact.LodgingName)
	}
	if fact.ConfirmationNumber != "HTL789" {
		t.Errorf("confirmation = %q, want HTL789", fact.ConfirmationNumber)
	}
	wantIn := time.Date(2025, 12, 15, 0, 0, 0, 0, time.UTC)
	wantOut := time.Date(2025, 12, 18, 0, 0, 0, 0, time.UTC)
	if !fact.CheckInTime.Equal(wantIn) || !fact.CheckOutTime.Equal(wantOut) {
		t.Errorf("stay = %s to %s", fact.CheckInTime, fact.CheckOutTime)
	}
}

func TestFindAirportsSkipsStopWords(t *testing.T) {
	dep, arr := findAirports("THE flight AND the DEC departure: LAX then JFK", "")
	if dep != "LAX" || arr != "JFK" {
		t.Errorf("got %s-%s, want LAX-JFK", dep, arr)
	}
}

func TestBareConfirmationNeedsDigit(t *testing.T) {
	// "BOSTON" is six letters; without a digit it cannot be a record locator
	if got := findConfirmation("Flying to BOSTON soon, locator is Q4W8R2", ""); got != "Q4W8R2" {
		t.Errorf("confirmation = %q, want Q4W8R2", got)
	}
	if got := findConfirmation("Flying to BOSTON soon", ""); got != "" {
		t.Errorf("confirmation = %q, want empty", got)
	}
}
