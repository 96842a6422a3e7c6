package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bobby-s-dev/flight-concierge/internal/models"
)

func testConfig() ClientConfig {
	return ClientConfig{Timeout: 2 * time.Second, Threshold: 3, BreakerTimeout: time.Minute}
}

func TestOpenWeatherCurrent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/weather", r.URL.Path)
		assert.Equal(t, "Panama City", r.URL.Query().Get("q"))
		assert.Equal(t, "key", r.URL.Query().Get("appid"))
		assert.Equal(t, "metric", r.URL.Query().Get("units"))
		_, _ = w.Write([]byte(`{"name":"Panama City","main":{"temp":29.46},"weather":[{"description":"light rain"}]}`))
	}))
	defer srv.Close()

	c := NewOpenWeatherClient("key", srv.URL, testConfig(), zap.NewNop())
	got, err := c.GetCurrentWeather(context.Background(), "Panama City")
	require.NoError(t, err)
	assert.Equal(t, 29.46, got.Temperature)
	assert.Equal(t, "light rain", got.Description)
}

func TestOpenWeatherIncomplete(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing temp", `{"main":{},"weather":[{"description":"clear"}]}`},
		{"missing weather", `{"main":{"temp":20}}`},
		{"empty weather", `{"main":{"temp":20},"weather":[]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := NewOpenWeatherClient("key", srv.URL, testConfig(), zap.NewNop())
			_, err := c.GetCurrentWeather(context.Background(), "Paris")
			assert.ErrorIs(t, err, ErrIncompleteWeather)
		})
	}
}

func TestAviationStackSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "/flights", r.URL.Path)
		assert.Equal(t, "key", q.Get("access_key"))
		assert.Equal(t, "GUA", q.Get("dep_iata"))
		assert.Equal(t, "PTY", q.Get("arr_iata"))
		assert.Equal(t, "2025-12-01", q.Get("flight_date"))
		_, _ = w.Write([]byte(`{"data":[
			{"flight_status":"active","departure":{"iata":"GUA","estimated":"2025-12-01T07:00:00"},
			 "arrival":{"iata":"PTY","estimated":"2025-12-01T09:10:00"},
			 "airline":{"name":"Copa Airlines"},"flight":{"iata":"CM391"}},
			{"arrival":{"iata":"PTY"}}
		]}`))
	}))
	defer srv.Close()

	c := NewAviationStackClient("key", srv.URL, testConfig(), zap.NewNop())
	flights, err := c.SearchFlights(context.Background(), "GUA", "PTY", "2025-12-01")
	require.NoError(t, err)
	require.Len(t, flights, 2)

	assert.Equal(t, "CM391", flights[0].Number())
	assert.Equal(t, "Copa Airlines", flights[0].AirlineName())
	assert.Equal(t, "GUA", flights[0].DepartureIATA())
	assert.Equal(t, "2025-12-01T09:10:00", flights[0].ArrivalTime())
	assert.Equal(t, "active", flights[0].Status())

	assert.Equal(t, "", flights[1].Number())
	assert.Equal(t, "", flights[1].AirlineName())
	assert.Equal(t, "", flights[1].DepartureTime())
	assert.Equal(t, "PTY", flights[1].ArrivalIATA())
	assert.Equal(t, "", flights[1].ArrivalTime())
	assert.Equal(t, "", flights[1].Status())
}

func TestNonSuccessStatusIsAnError(t *testing.T) {
	var hit int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hit, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewAviationStackClient("key", srv.URL, testConfig(), zap.NewNop())
	_, err := c.SearchFlights(context.Background(), "GUA", "PTY", "2025-12-01")
	require.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hit), "requests are not retried")
}

func TestCircuitBreakerOpens(t *testing.T) {
	var hit int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hit, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewOpenWeatherClient("key", srv.URL, testConfig(), zap.NewNop())
	for i := 0; i < 5; i++ {
		_, err := c.GetCurrentWeather(context.Background(), "Paris")
		assert.Error(t, err)
	}
	assert.Equal(t, int32(3), atomic.LoadInt32(&hit))
}

func TestChatComplete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-3.5-turbo", req.Model)
		assert.Equal(t, 200, req.MaxTokens)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, chatMessage{Role: "system", Content: "persona"}, req.Messages[0])
		assert.Equal(t, chatMessage{Role: "user", Content: "\nUser: hola\nAssistant: hey\n¿Qué tal?"}, req.Messages[1])

		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"role": "assistant", "content": "Muy bien"}},
			},
		})
	}))
	defer srv.Close()

	c := NewChatClient(ChatOptions{
		APIKey:       "sk-test",
		BaseURL:      srv.URL + "/",
		Model:        "gpt-3.5-turbo",
		MaxTokens:    200,
		SystemPrompt: "persona",
	}, testConfig(), zap.NewNop())

	got, err := c.Complete(context.Background(), "¿Qué tal?", "\nUser: hola\nAssistant: hey")
	require.NoError(t, err)
	assert.Equal(t, "Muy bien", got)
}

func TestChatNoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	c := NewChatClient(ChatOptions{BaseURL: srv.URL}, testConfig(), zap.NewNop())
	_, err := c.Complete(context.Background(), "hola", "")
	assert.Error(t, err)
}

func TestFlightServerGetFlights(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/get_flights", r.URL.Path)
		var q models.FlightQuery
		require.NoError(t, json.NewDecoder(r.Body).Decode(&q))
		assert.Equal(t, models.FlightQuery{Origin: "GUA", Destination: "PTY", DepartureDate: "01/12/2025"}, q)
		_, _ = w.Write([]byte(`{"flights":[{"flight_number":"CM123","airline":"Copa Airlines","status":"scheduled","weather":{"temperature":25,"condition":"sunny"},"activities":[]}]}`))
	}))
	defer srv.Close()

	c := NewFlightServerClient(srv.URL, testConfig(), zap.NewNop())
	got, err := c.GetFlights(context.Background(), models.FlightQuery{Origin: "GUA", Destination: "PTY", DepartureDate: "01/12/2025"})
	require.NoError(t, err)
	require.Len(t, got.Flights, 1)
	assert.Equal(t, "CM123", got.Flights[0].FlightNumber)
	assert.Equal(t, models.WeatherInfo{Temperature: 25, Condition: "sunny"}, got.Flights[0].Weather)
}

func TestFlightServerUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := NewFlightServerClient(url, testConfig(), zap.NewNop())
	_, err := c.GetFlights(context.Background(), models.FlightQuery{Origin: "GUA", Destination: "PTY", DepartureDate: "2025-12-01"})
	assert.Error(t, err)
}
