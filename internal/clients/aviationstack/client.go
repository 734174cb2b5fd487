package aviationstack

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/travelwithsue/travelapi/config"
)

// FlightRecord is the subset of an AviationStack flight the catalog keeps.
type FlightRecord struct {
	FlightNumber     string
	Airline          string
	DepartureAirport string
	ArrivalAirport   string
	DepartureTime    time.Time
	ArrivalTime      time.Time
	Status           string
}

type flightsResponse struct {
	Data []struct {
		FlightStatus string `json:"flight_status"`
		Departure    struct {
			Airport   string `json:"airport"`
			Estimated string `json:"estimated"`
			Scheduled string `json:"scheduled"`
		} `json:"departure"`
		Arrival struct {
			Airport   string `json:"airport"`
			Estimated string `json:"estimated"`
			Scheduled string `json:"scheduled"`
		} `json:"arrival"`
		Airline struct {
			Name string `json:"name"`
		} `json:"airline"`
		Flight struct {
			IATA string `json:"iata"`
		} `json:"flight"`
	} `json:"data"`
}

type Client struct {
	http   *resty.Client
	apiKey string
}

func NewClient(cfg config.AviationStackConfig) *Client {
	return &Client{
		http:   resty.New().SetBaseURL(cfg.BaseURL).SetTimeout(15 * time.Second),
		apiKey: cfg.APIKey,
	}
}

// Flights pulls the live flight feed. Records without an IATA flight number
// are dropped; they cannot be keyed in the catalog.
func (c *Client) Flights(ctx context.Context) ([]FlightRecord, error) {
	var body flightsResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("access_key", c.apiKey).
		SetResult(&body).
		Get("/v1/flights")
	if err != nil {
		return nil, fmt.Errorf("fetch flights: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("fetch flights: provider returned %s", resp.Status())
	}

	records := make([]FlightRecord, 0, len(body.Data))
	for _, f := range body.Data {
		if f.Flight.IATA == "" {
			continue
		}
		records = append(records, FlightRecord{
			FlightNumber:     f.Flight.IATA,
			Airline:          f.Airline.Name,
			DepartureAirport: f.Departure.Airport,
			ArrivalAirport:   f.Arrival.Airport,
			DepartureTime:    parseTime(f.Departure.Estimated, f.Departure.Scheduled),
			ArrivalTime:      parseTime(f.Arrival.Estimated, f.Arrival.Scheduled),
			Status:           f.FlightStatus,
		})
	}
	return records, nil
}

func parseTime(estimated, scheduled string) time.Time {
	for _, raw := range []string{estimated, scheduled} {
		if raw == "" {
			continue
		}
		if t, err := time.Parse("2006-01-02T15:04:05-07:00", raw); err == nil {
			return t
		}
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			return t
		}
	}
	return time.Time{}
}
