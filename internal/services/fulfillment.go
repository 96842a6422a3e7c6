package services

import (
	"context"
	"math"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/bobby-s-dev/flight-concierge/internal/catalog"
	"github.com/bobby-s-dev/flight-concierge/internal/config"
	"github.com/bobby-s-dev/flight-concierge/internal/models"
	"github.com/bobby-s-dev/flight-concierge/pkg/client"
)

const (
	defaultTemperature = 25
	defaultCondition   = "sunny"
	unknownCondition   = "unknown city"
)

type FlightProvider interface {
	SearchFlights(ctx context.Context, origin, destination, date string) ([]client.AviationStackFlight, error)
}

type WeatherProvider interface {
	GetCurrentWeather(ctx context.Context, city string) (*client.CurrentWeather, error)
}

// Fulfiller answers flight queries with provider data when available and a
// fixed pair of canned flights otherwise. It never fails.
type Fulfiller struct {
	flights FlightProvider
	weather WeatherProvider
	cache   *WeatherCache
	timeout time.Duration
	logger  *zap.Logger

	mu              sync.RWMutex
	lastRequestTime time.Time
	requestCount    int
	providerCount   int
	fallbackCount   int
	weatherFailures int
	flightFailures  int
	weatherLookups  int
}

// NewFulfiller wires the providers whose credentials are configured. A
// provider without a key is left nil and its defaults are used instead.
func NewFulfiller(cfg *config.Config, logger *zap.Logger) *Fulfiller {
	clientConfig := client.ClientConfig{
		Timeout:        cfg.HTTPClient.Timeout,
		Threshold:      cfg.CircuitBreaker.Threshold,
		BreakerTimeout: cfg.CircuitBreaker.Timeout,
	}

	var flights FlightProvider
	if cfg.Providers.AviationStackAPIKey != "" {
		flights = client.NewAviationStackClient(cfg.Providers.AviationStackAPIKey, cfg.Providers.AviationStackURL, clientConfig, logger)
		logger.Info("AviationStack client initialized")
	} else {
		logger.Warn("AVIATIONSTACK_API_KEY not set, serving canned flights")
	}

	var weather WeatherProvider
	if cfg.Providers.OpenWeatherAPIKey != "" {
		weather = client.NewOpenWeatherClient(cfg.Providers.OpenWeatherAPIKey, cfg.Providers.OpenWeatherURL, clientConfig, logger)
		logger.Info("OpenWeatherMap client initialized")
	} else {
		logger.Warn("OPENWEATHER_API_KEY not set, serving default weather")
	}

	cache := NewWeatherCache(cfg.Cache.Duration, cfg.Cache.MaxSize, logger)
	f := NewFulfillerWithProviders(flights, weather, cache, logger)
	f.SetTimeout(cfg.Server.FulfillTimeout)
	return f
}

func NewFulfillerWithProviders(flights FlightProvider, weather WeatherProvider, cache *WeatherCache, logger *zap.Logger) *Fulfiller {
	if cache == nil {
		cache = NewWeatherCache(0, 0, logger)
	}
	return &Fulfiller{
		flights: flights,
		weather: weather,
		cache:   cache,
		logger:  logger,
	}
}

func (f *Fulfiller) Cache() *WeatherCache {
	return f.cache
}

// SetTimeout bounds each Fulfill call. Lookups still pending at the deadline
// resolve to their defaults. Zero means no bound.
func (f *Fulfiller) SetTimeout(d time.Duration) {
	f.timeout = d
}

func (f *Fulfiller) Fulfill(ctx context.Context, query models.FlightQuery) []models.FlightRecord {
	startTime := time.Now()
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}
	date := NormalizeDate(query.DepartureDate)

	entries := f.searchFlights(ctx, query.Origin, query.Destination, date)

	var records []models.FlightRecord
	if len(entries) > 0 {
		records = make([]models.FlightRecord, 0, len(entries))
		for _, entry := range entries {
			arrival := entry.ArrivalIATA()
			records = append(records, models.FlightRecord{
				FlightNumber:     entry.Number(),
				Airline:          entry.AirlineName(),
				DepartureAirport: entry.DepartureIATA(),
				DepartureTime:    entry.DepartureTime(),
				ArrivalAirport:   arrival,
				ArrivalTime:      entry.ArrivalTime(),
				Status:           entry.Status(),
				Weather:          f.Weather(ctx, arrival),
				Activities:       f.Activities(arrival),
			})
		}
	} else {
		records = f.cannedFlights(ctx, query, date)
	}

	f.mu.Lock()
	f.lastRequestTime = startTime
	f.requestCount++
	if len(entries) > 0 {
		f.providerCount++
	} else {
		f.fallbackCount++
	}
	f.mu.Unlock()

	f.logger.Info("Flight query fulfilled",
		zap.String("origin", query.Origin),
		zap.String("destination", query.Destination),
		zap.String("date", date),
		zap.Int("flights", len(records)),
		zap.Bool("provider", len(entries) > 0),
		zap.Duration("duration", time.Since(startTime)))

	return records
}

func (f *Fulfiller) searchFlights(ctx context.Context, origin, destination, date string) []client.AviationStackFlight {
	if f.flights == nil {
		return nil
	}
	entries, err := f.flights.SearchFlights(ctx, origin, destination, date)
	if err != nil {
		f.logger.Warn("Flight provider unavailable, using canned flights",
			zap.String("origin", origin),
			zap.String("destination", destination),
			zap.Error(err))
		f.mu.Lock()
		f.flightFailures++
		f.mu.Unlock()
		return nil
	}
	return entries
}

func (f *Fulfiller) cannedFlights(ctx context.Context, query models.FlightQuery, date string) []models.FlightRecord {
	weather := f.Weather(ctx, query.Destination)
	canned := []struct {
		number, airline, departs, arrives string
	}{
		{"CM123", "Copa Airlines", "T08:30:00", "T10:00:00"},
		{"AV456", "Avianca", "T12:00:00", "T13:30:00"},
	}

	records := make([]models.FlightRecord, 0, len(canned))
	for _, c := range canned {
		records = append(records, models.FlightRecord{
			FlightNumber:     c.number,
			Airline:          c.airline,
			DepartureAirport: query.Origin,
			DepartureTime:    date + c.departs,
			ArrivalAirport:   query.Destination,
			ArrivalTime:      date + c.arrives,
			Status:           "scheduled",
			Weather:          weather,
			Activities:       f.Activities(query.Destination),
		})
	}
	return records
}

// Weather resolves the current weather at an airport. Provider failures
// degrade to the default reading and are not cached.
func (f *Fulfiller) Weather(ctx context.Context, code string) models.WeatherInfo {
	info, _ := f.lookupWeather(ctx, code)
	return info
}

// lookupWeather reports whether the reading came from the provider or cache.
func (f *Fulfiller) lookupWeather(ctx context.Context, code string) (models.WeatherInfo, bool) {
	city, ok := catalog.CityForCode(code)
	if !ok {
		return models.WeatherInfo{Temperature: defaultTemperature, Condition: unknownCondition}, false
	}
	if f.weather == nil {
		return models.WeatherInfo{Temperature: defaultTemperature, Condition: defaultCondition}, false
	}

	if cached, ok := f.cache.Get(code); ok {
		f.logger.Debug("Cache hit for weather", zap.String("code", code))
		return cached, true
	}

	// Out of time: skip the call so the breaker is not charged for it.
	if ctx.Err() != nil {
		return models.WeatherInfo{Temperature: defaultTemperature, Condition: defaultCondition}, false
	}

	f.mu.Lock()
	f.weatherLookups++
	f.mu.Unlock()

	current, err := f.weather.GetCurrentWeather(ctx, city)
	if err != nil {
		f.logger.Warn("Weather provider unavailable, using default",
			zap.String("code", code),
			zap.String("city", city),
			zap.Error(err))
		f.mu.Lock()
		f.weatherFailures++
		f.mu.Unlock()
		return models.WeatherInfo{Temperature: defaultTemperature, Condition: defaultCondition}, false
	}

	info := models.WeatherInfo{
		Temperature: math.Round(current.Temperature*10) / 10,
		Condition:   current.Description,
	}
	f.cache.Set(code, info)
	return info, true
}

func (f *Fulfiller) Activities(code string) []models.ActivityRecord {
	city, ok := catalog.CityForCode(code)
	if !ok {
		return []models.ActivityRecord{}
	}
	return catalog.ActivitiesForCity(city)
}

// WarmWeather prefetches weather for the given airports concurrently and
// reports how many resolved from the provider.
func (f *Fulfiller) WarmWeather(ctx context.Context, codes []string) int {
	var wg sync.WaitGroup
	var mu sync.Mutex
	warmed := 0

	startTime := time.Now()
	for _, code := range codes {
		wg.Add(1)
		go func(code string) {
			defer wg.Done()
			if _, ok := f.lookupWeather(ctx, code); ok {
				mu.Lock()
				warmed++
				mu.Unlock()
			}
		}(strings.ToUpper(strings.TrimSpace(code)))
	}
	wg.Wait()

	f.logger.Info("Weather warm-up completed",
		zap.Int("airports", len(codes)),
		zap.Int("warmed", warmed),
		zap.Duration("duration", time.Since(startTime)))
	return warmed
}

func (f *Fulfiller) GetStats() map[string]interface{} {
	f.mu.RLock()
	defer f.mu.RUnlock()

	return map[string]interface{}{
		"last_request_time":  f.lastRequestTime,
		"requests":           f.requestCount,
		"provider_responses": f.providerCount,
		"fallback_responses": f.fallbackCount,
		"flight_failures":    f.flightFailures,
		"weather_lookups":    f.weatherLookups,
		"weather_failures":   f.weatherFailures,
		"flight_provider":    f.flights != nil,
		"weather_provider":   f.weather != nil,
		"cache_stats":        f.cache.GetStats(),
	}
}

// NormalizeDate accepts DD/MM/YYYY when the value contains a slash and
// YYYY-MM-DD otherwise. Anything unparseable is returned unchanged.
func NormalizeDate(value string) string {
	layout := "2006-1-2"
	if strings.Contains(value, "/") {
		layout = "2/1/2006"
	}
	t, err := time.Parse(layout, value)
	if err != nil {
		return value
	}
	return t.Format("2006-01-02")
}
