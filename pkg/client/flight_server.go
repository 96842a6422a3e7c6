package client

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/bobby-s-dev/flight-concierge/internal/models"
)

// FlightServerClient calls the concierge's own POST /get_flights endpoint.
type FlightServerClient struct {
	*BaseClient
	baseURL string
}

func NewFlightServerClient(baseURL string, config ClientConfig, logger *zap.Logger) *FlightServerClient {
	return &FlightServerClient{
		BaseClient: NewBaseClient("flight-server", config, logger),
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

func (c *FlightServerClient) GetFlights(ctx context.Context, query models.FlightQuery) (models.FlightsResponse, error) {
	var out models.FlightsResponse
	if err := c.PostJSON(ctx, c.baseURL+"/get_flights", nil, query, &out); err != nil {
		return models.FlightsResponse{}, err
	}
	return out, nil
}
