package client

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"go.uber.org/zap"
)

// ErrIncompleteWeather is returned when the provider answers without a
// temperature or a condition description.
var ErrIncompleteWeather = errors.New("incomplete weather response")

type OpenWeatherClient struct {
	*BaseClient
	apiKey  string
	baseURL string
}

type OpenWeatherCurrentResponse struct {
	Weather []struct {
		ID          int    `json:"id"`
		Main        string `json:"main"`
		Description string `json:"description"`
		Icon        string `json:"icon"`
	} `json:"weather"`
	Main struct {
		Temp      *float64 `json:"temp"`
		FeelsLike float64  `json:"feels_like"`
		Humidity  float64  `json:"humidity"`
	} `json:"main"`
	Name string `json:"name"`
}

// CurrentWeather is the part of the provider answer the concierge uses.
type CurrentWeather struct {
	City        string
	Temperature float64
	Description string
}

func NewOpenWeatherClient(apiKey, baseURL string, config ClientConfig, logger *zap.Logger) *OpenWeatherClient {
	baseClient := NewBaseClient("openweather", config, logger)
	if baseURL == "" {
		baseURL = "https://api.openweathermap.org/data/2.5"
	}
	return &OpenWeatherClient{
		BaseClient: baseClient,
		apiKey:     apiKey,
		baseURL:    baseURL,
	}
}

func (c *OpenWeatherClient) GetCurrentWeather(ctx context.Context, city string) (*CurrentWeather, error) {
	q := url.Values{}
	q.Set("q", city)
	q.Set("appid", c.apiKey)
	q.Set("units", "metric")
	endpoint := fmt.Sprintf("%s/weather?%s", c.baseURL, q.Encode())

	var response OpenWeatherCurrentResponse
	if err := c.GetJSON(ctx, endpoint, &response); err != nil {
		return nil, fmt.Errorf("failed to fetch current weather: %w", err)
	}

	if response.Main.Temp == nil || len(response.Weather) == 0 {
		return nil, ErrIncompleteWeather
	}

	return &CurrentWeather{
		City:        response.Name,
		Temperature: *response.Main.Temp,
		Description: response.Weather[0].Description,
	}, nil
}
