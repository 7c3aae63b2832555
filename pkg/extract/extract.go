package extract

import (
	"regexp"
	"strings"
	"time"

	"tripsync-service/internal/domain/entity"
	"tripsync-service/pkg/logger"

	"golang.org/x/net/html"
)

// Airline detection patterns, checked against sender, subject and body.
// Order matters: the first family to match claims the message.
var airlineDetectors = []struct {
	name     string
	patterns []*regexp.Regexp
}{
	{"united", []*regexp.Regexp{
		regexp.MustCompile(`united\.com`),
		regexp.MustCompile(`confirmation.*united`),
		regexp.MustCompile(`united.*flight.*confirmation`),
	}},
	{"american", []*regexp.Regexp{
		regexp.MustCompile(`aa\.com`),
		regexp.MustCompile(`americanairlines\.com`),
		regexp.MustCompile(`confirmation.*american airlines`),
	}},
	{"delta", []*regexp.Regexp{
		regexp.MustCompile(`delta\.com`),
		regexp.MustCompile(`confirmation.*delta`),
	}},
	{"southwest", []*regexp.Regexp{
		regexp.MustCompile(`southwest\.com`),
		regexp.MustCompile(`confirmation.*southwest`),
	}},
}

var lodgingDetector = regexp.MustCompile(`(?i)(?:hotel|resort|lodging).*(?:reservation|confirmation|booking)|(?:reservation|confirmation).*(?:hotel|resort)`)

var (
	flightNumberRe = regexp.MustCompile(`\b([A-Z]{2})\s*(\d{1,4})\b`)

	// A labeled confirmation wins; the bare fallback needs a digit so
	// ordinary six-letter words don't qualify.
	labeledConfirmationRe = regexp.MustCompile(`(?i)(?:confirmation|record locator|booking reference)[\s#:]*([A-Z0-9]{6})\b`)
	bareConfirmationRe    = regexp.MustCompile(`\b([A-Z0-9]{6})\b`)
	digitRe               = regexp.MustCompile(`\d`)

	airportRe = regexp.MustCompile(`\b([A-Z]{3})\b`)

	checkInLabelRe  = regexp.MustCompile(`(?i)check[\s-]?in[:\s]+([A-Za-z0-9 ,/:-]+)`)
	checkOutLabelRe = regexp.MustCompile(`(?i)check[\s-]?out[:\s]+([A-Za-z0-9 ,/:-]+)`)
	hotelNameRe     = regexp.MustCompile(`(?i)([A-Z][A-Za-z &']+(?:Hotel|Inn|Resort|Suites))`)

	dateCandidateRes = []*regexp.Regexp{
		regexp.MustCompile(`\d{1,2}/\d{1,2}/\d{4}(?:\s+\d{1,2}:\d{2}\s*(?:AM|PM)?)?`),
		regexp.MustCompile(`\d{4}-\d{2}-\d{2}(?:[T ]\d{2}:\d{2})?`),
		regexp.MustCompile(`[A-Z][a-z]+\s+\d{1,2},?\s+\d{4}(?:\s+\d{1,2}:\d{2}\s*(?:AM|PM)?)?`),
	}

	dateLayouts = []string{
		"1/2/2006 3:04 PM",
		"1/2/2006 15:04",
		"1/2/2006",
		"2006-01-02T15:04",
		"2006-01-02 15:04",
		"2006-01-02",
		"January 2, 2006 3:04 PM",
		"January 2, 2006",
		"January 2 2006",
		"Jan 2, 2006 3:04 PM",
		"Jan 2, 2006",
		"Jan 2 2006",
	}
)

// Three-letter words that look like airport codes but are not, month
// abbreviations included since dates are uppercased alongside the rest.
var airportStopWords = map[string]bool{
	"THE": true, "AND": true, "FOR": true, "NOT": true, "ARE": true,
	"YOU": true, "ALL": true, "NEW": true, "GET": true, "OUR": true,
	"JAN": true, "FEB": true, "MAR": true, "APR": true, "MAY": true,
	"JUN": true, "JUL": true, "AUG": true, "SEP": true, "OCT": true,
	"NOV": true, "DEC": true,
}

// Parser turns a mailbox message into a normalized travel fact
type Parser struct {
	logger logger.Logger
}

// NewParser creates a new parser
func NewParser(log logger.Logger) *Parser {
	return &Parser{logger: log}
}

// Parse extracts a travel fact from one message. A message no rule
// family claims returns (nil, nil); a claimed message missing required
// fields returns a parse-kind error.
func (p *Parser) Parse(from, subject, body, htmlBody string) (*entity.TravelFact, error) {
	text := body
	if text == "" && htmlBody != "" {
		text = StripHTML(htmlBody)
	}

	searchable := strings.ToLower(from + " " + subject + " " + text)

	for _, detector := range airlineDetectors {
		for _, pattern := range detector.patterns {
			if pattern.MatchString(searchable) {
				return p.extractFlight(detector.name, text)
			}
		}
	}

	if lodgingDetector.MatchString(searchable) {
		return p.extractLodging(text)
	}

	return nil, nil
}

func (p *Parser) extractFlight(airline, text string) (*entity.TravelFact, error) {
	fact := &entity.TravelFact{
		Kind:    entity.FactFlight,
		Airline: strings.ToUpper(airline),
	}

	if m := flightNumberRe.FindStringSubmatch(text); m != nil {
		fact.FlightNumber = m[1] + m[2]
	}

	fact.ConfirmationNumber = findConfirmation(text, fact.FlightNumber)

	depAirport, arrAirport := findAirports(text, fact.ConfirmationNumber)
	fact.Origin = depAirport
	fact.Destination = arrAirport

	dates := findDates(text)
	if len(dates) > 0 {
		fact.DepartureTime = dates[0]
	}
	if len(dates) > 1 && dates[1].After(dates[0]) {
		fact.ArrivalTime = dates[1]
	} else if !fact.DepartureTime.IsZero() {
		// Segment length is unknown from a booking mail
		fact.ArrivalTime = fact.DepartureTime.Add(2 * time.Hour)
	}

	switch {
	case fact.FlightNumber == "":
		return nil, entity.Classifyf(entity.KindParse, "%s mail matched but no flight number found", airline)
	case fact.ConfirmationNumber == "":
		return nil, entity.Classifyf(entity.KindParse, "%s mail matched but no confirmation number found", airline)
	case fact.Origin == "" || fact.Destination == "":
		return nil, entity.Classifyf(entity.KindParse, "%s mail matched but airports missing", airline)
	case fact.DepartureTime.IsZero():
		return nil, entity.Classifyf(entity.KindParse, "%s mail matched but no departure date found", airline)
	}

	return fact, nil
}

func (p *Parser) extractLodging(text string) (*entity.TravelFact, error) {
	fact := &entity.TravelFact{Kind: entity.FactLodging}

	if m := hotelNameRe.FindStringSubmatch(text); m != nil {
		fact.LodgingName = strings.TrimSpace(m[1])
	}

	fact.ConfirmationNumber = findConfirmation(text, "")

	if m := checkInLabelRe.FindStringSubmatch(text); m != nil {
		if ts, ok := parseDate(strings.TrimSpace(m[1])); ok {
			fact.CheckInTime = ts
		}
	}
	if m := checkOutLabelRe.FindStringSubmatch(text); m != nil {
		if ts, ok := parseDate(strings.TrimSpace(m[1])); ok {
			fact.CheckOutTime = ts
		}
	}

	switch {
	case fact.ConfirmationNumber == "":
		return nil, entity.Classifyf(entity.KindParse, "lodging mail matched but no confirmation number found")
	case fact.CheckInTime.IsZero():
		return nil, entity.Classifyf(entity.KindParse, "lodging mail matched but no check-in date found")
	}

	if fact.CheckOutTime.IsZero() {
		fact.CheckOutTime = fact.CheckInTime.AddDate(0, 0, 1)
	}

	return fact, nil
}

func findConfirmation(text, flightNumber string) string {
	if m := labeledConfirmationRe.FindStringSubmatch(text); m != nil {
		return strings.ToUpper(m[1])
	}

	for _, m := range bareConfirmationRe.FindAllStringSubmatch(text, -1) {
		candidate := m[1]
		if candidate == flightNumber || !digitRe.MatchString(candidate) {
			continue
		}
		return strings.ToUpper(candidate)
	}
	return ""
}

func findAirports(text, confirmation string) (string, string) {
	var codes []string
	seen := map[string]bool{}

	for _, m := range airportRe.FindAllStringSubmatch(text, -1) {
		code := m[1]
		if airportStopWords[code] || seen[code] {
			continue
		}
		if confirmation != "" && strings.Contains(confirmation, code) {
			continue
		}
		seen[code] = true
		codes = append(codes, code)
	}

	if len(codes) < 2 {
		return "", ""
	}
	return codes[0], codes[1]
}

func findDates(text string) []time.Time {
	var dates []time.Time
	for _, re := range dateCandidateRes {
		for _, raw := range re.FindAllString(text, -1) {
			if ts, ok := parseDate(strings.TrimSpace(raw)); ok {
				dates = append(dates, ts)
			}
		}
	}
	return dates
}

func parseDate(raw string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts.UTC(), true
		}
	}
	return time.Time{}, false
}

// StripHTML reduces an HTML body to its visible text
func StripHTML(raw string) string {
	var sb strings.Builder
	tokenizer := html.NewTokenizer(strings.NewReader(raw))
	skipDepth := 0

	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			return sb.String()
		case html.StartTagToken:
			name, _ := tokenizer.TagName()
			if tag := string(name); tag == "script" || tag == "style" {
				skipDepth++
			}
		case html.EndTagToken:
			name, _ := tokenizer.TagName()
			if tag := string(name); (tag == "script" || tag == "style") && skipDepth > 0 {
				skipDepth--
			}
		case html.TextToken:
			if skipDepth == 0 {
				text := strings.TrimSpace(string(tokenizer.Text()))
				if text != "" {
					sb.WriteString(text)
					sb.WriteString(" ")
				}
			}
		}
	}
}
