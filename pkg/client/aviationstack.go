package client

import (
	"context"
	"fmt"
	"net/url"

	"go.uber.org/zap"
)

type AviationStackClient struct {
	*BaseClient
	apiKey  string
	baseURL string
}

// AviationStackFlight mirrors one element of the provider's "data" array.
// Every field may be missing, so all leaves are pointers.
type AviationStackFlight struct {
	FlightStatus *string `json:"flight_status"`
	Departure    *struct {
		IATA      *string `json:"iata"`
		Estimated *string `json:"estimated"`
	} `json:"departure"`
	Arrival *struct {
		IATA      *string `json:"iata"`
		Estimated *string `json:"estimated"`
	} `json:"arrival"`
	Airline *struct {
		Name *string `json:"name"`
	} `json:"airline"`
	Flight *struct {
		IATA *string `json:"iata"`
	} `json:"flight"`
}

type AviationStackResponse struct {
	Data []AviationStackFlight `json:"data"`
}

func NewAviationStackClient(apiKey, baseURL string, config ClientConfig, logger *zap.Logger) *AviationStackClient {
	baseClient := NewBaseClient("aviationstack", config, logger)
	if baseURL == "" {
		baseURL = "http://api.aviationstack.com/v1"
	}
	return &AviationStackClient{
		BaseClient: baseClient,
		apiKey:     apiKey,
		baseURL:    baseURL,
	}
}

func (c *AviationStackClient) SearchFlights(ctx context.Context, origin, destination, date string) ([]AviationStackFlight, error) {
	q := url.Values{}
	q.Set("access_key", c.apiKey)
	q.Set("dep_iata", origin)
	q.Set("arr_iata", destination)
	q.Set("flight_date", date)
	endpoint := fmt.Sprintf("%s/flights?%s", c.baseURL, q.Encode())

	var response AviationStackResponse
	if err := c.GetJSON(ctx, endpoint, &response); err != nil {
		return nil, fmt.Errorf("failed to fetch flights: %w", err)
	}
	return response.Data, nil
}

func (f AviationStackFlight) Number() string {
	if f.Flight == nil {
		return ""
	}
	return deref(f.Flight.IATA)
}

func (f AviationStackFlight) AirlineName() string {
	if f.Airline == nil {
		return ""
	}
	return deref(f.Airline.Name)
}

func (f AviationStackFlight) DepartureIATA() string {
	if f.Departure == nil {
		return ""
	}
	return deref(f.Departure.IATA)
}

func (f AviationStackFlight) DepartureTime() string {
	if f.Departure == nil {
		return ""
	}
	return deref(f.Departure.Estimated)
}

func (f AviationStackFlight) ArrivalIATA() string {
	if f.Arrival == nil {
		return ""
	}
	return deref(f.Arrival.IATA)
}

func (f AviationStackFlight) ArrivalTime() string {
	if f.Arrival == nil {
		return ""
	}
	return deref(f.Arrival.Estimated)
}

func (f AviationStackFlight) Status() string {
	return deref(f.FlightStatus)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
