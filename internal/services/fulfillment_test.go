package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bobby-s-dev/flight-concierge/internal/config"
	"github.com/bobby-s-dev/flight-concierge/internal/models"
	"github.com/bobby-s-dev/flight-concierge/pkg/client"
)

type fakeFlights struct {
	entries []client.AviationStackFlight
	err     error
	calls   []string
}

func (f *fakeFlights) SearchFlights(ctx context.Context, origin, destination, date string) ([]client.AviationStackFlight, error) {
	f.calls = append(f.calls, origin+" "+destination+" "+date)
	return f.entries, f.err
}

type fakeWeather struct {
	mu      sync.Mutex
	current map[string]*client.CurrentWeather
	err     error
	cities  []string
}

func (f *fakeWeather) GetCurrentWeather(ctx context.Context, city string) (*client.CurrentWeather, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cities = append(f.cities, city)
	if f.err != nil {
		return nil, f.err
	}
	if w, ok := f.current[city]; ok {
		return w, nil
	}
	return nil, client.ErrIncompleteWeather
}

func strPtr(s string) *string { return &s }

func providerFlight(number, airline, dep, arr, status string) client.AviationStackFlight {
	var f client.AviationStackFlight
	f.FlightStatus = strPtr(status)
	f.Flight = &struct {
		IATA *string `json:"iata"`
	}{IATA: strPtr(number)}
	f.Airline = &struct {
		Name *string `json:"name"`
	}{Name: strPtr(airline)}
	f.Departure = &struct {
		IATA      *string `json:"iata"`
		Estimated *string `json:"estimated"`
	}{IATA: strPtr(dep), Estimated: strPtr("2025-12-01T07:00:00")}
	f.Arrival = &struct {
		IATA      *string `json:"iata"`
		Estimated *string `json:"estimated"`
	}{IATA: strPtr(arr), Estimated: strPtr("2025-12-01T09:00:00")}
	return f
}

func TestNormalizeDate(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"01/12/2025", "2025-12-01"},
		{"1/2/2025", "2025-02-01"},
		{"2025-12-01", "2025-12-01"},
		{"2025-1-5", "2025-01-05"},
		{"tomorrow", "tomorrow"},
		{"31/02/2025", "31/02/2025"},
		{"2025-13-45", "2025-13-45"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeDate(tt.in))
		})
	}
}

func TestFulfillCannedWithoutProviders(t *testing.T) {
	f := NewFulfillerWithProviders(nil, nil, nil, zap.NewNop())

	got := f.Fulfill(context.Background(), models.FlightQuery{Origin: "GUA", Destination: "PTY", DepartureDate: "01/12/2025"})
	require.Len(t, got, 2)

	assert.Equal(t, "CM123", got[0].FlightNumber)
	assert.Equal(t, "Copa Airlines", got[0].Airline)
	assert.Equal(t, "GUA", got[0].DepartureAirport)
	assert.Equal(t, "2025-12-01T08:30:00", got[0].DepartureTime)
	assert.Equal(t, "PTY", got[0].ArrivalAirport)
	assert.Equal(t, "2025-12-01T10:00:00", got[0].ArrivalTime)
	assert.Equal(t, "scheduled", got[0].Status)
	assert.Equal(t, models.WeatherInfo{Temperature: 25, Condition: "sunny"}, got[0].Weather)
	require.Len(t, got[0].Activities, 3)
	assert.Equal(t, "Canal de Panamá", got[0].Activities[0].Name)

	assert.Equal(t, "AV456", got[1].FlightNumber)
	assert.Equal(t, "Avianca", got[1].Airline)
	assert.Equal(t, "2025-12-01T12:00:00", got[1].DepartureTime)
	assert.Equal(t, "2025-12-01T13:30:00", got[1].ArrivalTime)
}

func TestFulfillCannedKeepsUnparseableDate(t *testing.T) {
	f := NewFulfillerWithProviders(nil, nil, nil, zap.NewNop())

	got := f.Fulfill(context.Background(), models.FlightQuery{Origin: "XXX", Destination: "YYY", DepartureDate: "mañana"})
	require.Len(t, got, 2)
	assert.Equal(t, "mañanaT08:30:00", got[0].DepartureTime)
	assert.Equal(t, models.WeatherInfo{Temperature: 25, Condition: "unknown city"}, got[0].Weather)
	assert.NotNil(t, got[0].Activities)
	assert.Empty(t, got[0].Activities)
}

func TestFulfillProviderFailureFallsBack(t *testing.T) {
	flights := &fakeFlights{err: errors.New("boom")}
	f := NewFulfillerWithProviders(flights, nil, nil, zap.NewNop())

	got := f.Fulfill(context.Background(), models.FlightQuery{Origin: "GUA", Destination: "NRT", DepartureDate: "2025-12-01"})
	require.Len(t, got, 2)
	assert.Equal(t, "CM123", got[0].FlightNumber)
	assert.Equal(t, []string{"GUA NRT 2025-12-01"}, flights.calls)

	stats := f.GetStats()
	assert.Equal(t, 1, stats["fallback_responses"])
	assert.Equal(t, 1, stats["flight_failures"])
}

func TestFulfillProviderEntries(t *testing.T) {
	flights := &fakeFlights{entries: []client.AviationStackFlight{
		providerFlight("CM391", "Copa Airlines", "GUA", "PAR", "active"),
		{},
	}}
	weather := &fakeWeather{current: map[string]*client.CurrentWeather{
		"Paris": {City: "Paris", Temperature: 12.345, Description: "overcast clouds"},
	}}
	f := NewFulfillerWithProviders(flights, weather, nil, zap.NewNop())

	got := f.Fulfill(context.Background(), models.FlightQuery{Origin: "GUA", Destination: "PTY", DepartureDate: "01/12/2025"})
	require.Len(t, got, 2)
	assert.Equal(t, []string{"GUA PTY 2025-12-01"}, flights.calls)

	// enrichment follows the entry's own arrival, not the query destination
	assert.Equal(t, "PAR", got[0].ArrivalAirport)
	assert.Equal(t, models.WeatherInfo{Temperature: 12.3, Condition: "overcast clouds"}, got[0].Weather)
	require.Len(t, got[0].Activities, 3)
	assert.Equal(t, "Torre Eiffel", got[0].Activities[0].Name)
	assert.Equal(t, "active", got[0].Status)

	// absent fields become empty strings
	assert.Equal(t, models.FlightRecord{
		Weather:    models.WeatherInfo{Temperature: 25, Condition: "unknown city"},
		Activities: []models.ActivityRecord{},
	}, got[1])
}

func TestWeatherNeverUsesDeparture(t *testing.T) {
	weather := &fakeWeather{current: map[string]*client.CurrentWeather{}}
	f := NewFulfillerWithProviders(nil, weather, nil, zap.NewNop())

	f.Fulfill(context.Background(), models.FlightQuery{Origin: "GUA", Destination: "NRT", DepartureDate: "2025-12-01"})
	for _, city := range weather.cities {
		assert.Equal(t, "Tokyo", city)
	}
}

func TestWeatherDefaults(t *testing.T) {
	t.Run("unknown code", func(t *testing.T) {
		weather := &fakeWeather{}
		f := NewFulfillerWithProviders(nil, weather, nil, zap.NewNop())
		assert.Equal(t, models.WeatherInfo{Temperature: 25, Condition: "unknown city"}, f.Weather(context.Background(), "ZZZ"))
		assert.Empty(t, weather.cities)
	})

	t.Run("no provider", func(t *testing.T) {
		f := NewFulfillerWithProviders(nil, nil, nil, zap.NewNop())
		assert.Equal(t, models.WeatherInfo{Temperature: 25, Condition: "sunny"}, f.Weather(context.Background(), "PAR"))
	})

	t.Run("provider error", func(t *testing.T) {
		weather := &fakeWeather{err: errors.New("timeout")}
		f := NewFulfillerWithProviders(nil, weather, nil, zap.NewNop())
		assert.Equal(t, models.WeatherInfo{Temperature: 25, Condition: "sunny"}, f.Weather(context.Background(), "PAR"))
		assert.Equal(t, 1, f.GetStats()["weather_failures"])
	})

	t.Run("incomplete response", func(t *testing.T) {
		weather := &fakeWeather{current: map[string]*client.CurrentWeather{}}
		f := NewFulfillerWithProviders(nil, weather, nil, zap.NewNop())
		assert.Equal(t, models.WeatherInfo{Temperature: 25, Condition: "sunny"}, f.Weather(context.Background(), "PAR"))
	})
}

func TestWeatherCacheStoresProviderResultsOnly(t *testing.T) {
	weather := &fakeWeather{err: errors.New("down")}
	cache := NewWeatherCache(time.Minute, 10, zap.NewNop())
	f := NewFulfillerWithProviders(nil, weather, cache, zap.NewNop())

	f.Weather(context.Background(), "PAR")
	assert.Equal(t, 0, cache.Len())

	weather.err = nil
	weather.current = map[string]*client.CurrentWeather{"Paris": {Temperature: 9.96, Description: "mist"}}
	assert.Equal(t, models.WeatherInfo{Temperature: 10, Condition: "mist"}, f.Weather(context.Background(), "PAR"))
	assert.Equal(t, 1, cache.Len())

	f.Weather(context.Background(), "PAR")
	assert.Len(t, weather.cities, 2, "second success served from cache")
}

func TestActivities(t *testing.T) {
	f := NewFulfillerWithProviders(nil, nil, nil, zap.NewNop())
	assert.Len(t, f.Activities("NYC"), 3)
	assert.Equal(t, []models.ActivityRecord{}, f.Activities("MAD"))
	assert.Equal(t, []models.ActivityRecord{}, f.Activities("???"))
}

func TestWarmWeather(t *testing.T) {
	weather := &fakeWeather{current: map[string]*client.CurrentWeather{
		"Paris": {Temperature: 10, Description: "mist"},
		"Tokyo": {Temperature: 20, Description: "clear sky"},
	}}
	cache := NewWeatherCache(time.Minute, 10, zap.NewNop())
	f := NewFulfillerWithProviders(nil, weather, cache, zap.NewNop())

	warmed := f.WarmWeather(context.Background(), []string{"par", " NRT", "MAD", "ZZZ"})
	assert.Equal(t, 2, warmed)
	assert.Equal(t, 2, cache.Len())
}

func TestNewFulfillerWithoutKeys(t *testing.T) {
	cfg := &config.Config{}
	cfg.SetDefaults()
	f := NewFulfiller(cfg, zap.NewNop())

	stats := f.GetStats()
	assert.Equal(t, false, stats["flight_provider"])
	assert.Equal(t, false, stats["weather_provider"])

	got := f.Fulfill(context.Background(), models.FlightQuery{Origin: "GUA", Destination: "PTY", DepartureDate: "2025-12-01"})
	assert.Len(t, got, 2)
}

// stalledFlights blocks until the caller gives up.
type stalledFlights struct{}

func (stalledFlights) SearchFlights(ctx context.Context, origin, destination, date string) ([]client.AviationStackFlight, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestFulfillDeadlineFallsBackToCanned(t *testing.T) {
	weather := &fakeWeather{current: map[string]*client.CurrentWeather{
		"Panama City": {City: "Panama City", Temperature: 31, Description: "clear sky"},
	}}
	f := NewFulfillerWithProviders(stalledFlights{}, weather, nil, zap.NewNop())
	f.SetTimeout(50 * time.Millisecond)

	start := time.Now()
	got := f.Fulfill(context.Background(), models.FlightQuery{Origin: "GUA", Destination: "PTY", DepartureDate: "2025-12-01"})
	assert.Less(t, time.Since(start), time.Second)

	require.Len(t, got, 2)
	assert.Equal(t, "CM123", got[0].FlightNumber)
	assert.Equal(t, "AV456", got[1].FlightNumber)
	assert.Equal(t, models.WeatherInfo{Temperature: 25, Condition: "sunny"}, got[0].Weather)
	assert.Empty(t, weather.cities, "no weather call once the deadline has passed")

	stats := f.GetStats()
	assert.Equal(t, 1, stats["flight_failures"])
	assert.Equal(t, 1, stats["fallback_responses"])
}

func TestNewFulfillerUsesConfiguredTimeout(t *testing.T) {
	cfg := &config.Config{}
	cfg.SetDefaults()
	cfg.Server.FulfillTimeout = 3 * time.Second

	f := NewFulfiller(cfg, zap.NewNop())
	assert.Equal(t, 3*time.Second, f.timeout)
}
