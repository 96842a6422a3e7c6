package models

import (
	"time"
)

// FlightQuery is a structured flight request. DepartureDate is kept as the
// caller supplied it; normalization happens on fulfillment.
type FlightQuery struct {
	Origin        string `json:"origin"`
	Destination   string `json:"destination"`
	DepartureDate string `json:"departure_date"`
}

type WeatherInfo struct {
	Temperature float64 `json:"temperature"`
	Condition   string  `json:"condition"`
}

type ActivityRecord struct {
	Name   string  `json:"name"`
	Rating float64 `json:"rating"`
}

// FlightRecord is built fresh per request. Weather and Activities always
// describe the arrival airport.
type FlightRecord struct {
	FlightNumber     string           `json:"flight_number"`
	Airline          string           `json:"airline"`
	DepartureAirport string           `json:"departure_airport"`
	DepartureTime    string           `json:"departure_time"`
	ArrivalAirport   string           `json:"arrival_airport"`
	ArrivalTime      string           `json:"arrival_time"`
	Status           string           `json:"status"`
	Weather          WeatherInfo      `json:"weather"`
	Activities       []ActivityRecord `json:"activities"`
}

type FlightsResponse struct {
	Flights []FlightRecord `json:"flights"`
}

type InteractionLogEntry struct {
	Timestamp time.Time   `json:"timestamp"`
	Endpoint  string      `json:"endpoint"`
	Request   interface{} `json:"request"`
	Response  interface{} `json:"response"`
}
