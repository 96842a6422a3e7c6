package catalog

import (
	"github.com/bobby-s-dev/flight-concierge/internal/models"
)

type Airport struct {
	Code string `json:"code"`
	City string `json:"city"`
}

// airports is scanned in this order by the request extractor, so the order
// decides which of two matching cities becomes the origin.
var airports = []Airport{
	// Central America
	{"GUA", "Guatemala City"},
	{"PTY", "Panama City"},
	{"SAL", "San Salvador"},
	{"SAP", "San Pedro Sula"},
	{"TGU", "Tegucigalpa"},
	{"SJO", "San Jose"},
	{"LIR", "Liberia"},
	// North America
	{"MEX", "Mexico City"},
	{"CUN", "Cancun"},
	{"NYC", "New York"},
	{"LAX", "Los Angeles"},
	{"MIA", "Miami"},
	{"ORD", "Chicago"},
	// South America
	{"BOG", "Bogota"},
	{"LIM", "Lima"},
	{"GRU", "Sao Paulo"},
	{"EZE", "Buenos Aires"},
	{"SCL", "Santiago"},
	{"CCS", "Caracas"},
	// Europe
	{"MAD", "Madrid"},
	{"BCN", "Barcelona"},
	{"LON", "London"},
	{"PAR", "Paris"},
	{"FRA", "Frankfurt"},
	{"AMS", "Amsterdam"},
	{"ROM", "Rome"},
	{"BER", "Berlin"},
	{"MXP", "Milan"},
	// Asia
	{"HKG", "Hong Kong"},
	{"NRT", "Tokyo"},
	{"BKK", "Bangkok"},
	{"DEL", "Delhi"},
	{"SIN", "Singapore"},
	{"ICN", "Seoul"},
}

var cityByCode = func() map[string]string {
	m := make(map[string]string, len(airports))
	for _, a := range airports {
		m[a.Code] = a.City
	}
	return m
}()

var activitiesByCity = map[string][]models.ActivityRecord{
	"Guatemala City": {
		{Name: "Museo Nacional de Arqueología", Rating: 4.6},
		{Name: "Parque Central", Rating: 4.4},
		{Name: "Catedral Metropolitana", Rating: 4.5},
	},
	"Panama City": {
		{Name: "Canal de Panamá", Rating: 4.8},
		{Name: "Casco Viejo", Rating: 4.6},
		{Name: "Biomuseo", Rating: 4.5},
	},
	"Paris": {
		{Name: "Torre Eiffel", Rating: 4.9},
		{Name: "Museo del Louvre", Rating: 4.8},
		{Name: "Catedral de Notre Dame", Rating: 4.7},
	},
	"New York": {
		{Name: "Times Square", Rating: 4.7},
		{Name: "Central Park", Rating: 4.8},
		{Name: "Metropolitan Museum of Art", Rating: 4.7},
	},
	"Tokyo": {
		{Name: "Templo Senso-ji", Rating: 4.8},
		{Name: "Shibuya Crossing", Rating: 4.7},
		{Name: "Parque Ueno", Rating: 4.6},
	},
}

// Airports returns the airport table in its fixed order.
func Airports() []Airport {
	out := make([]Airport, len(airports))
	copy(out, airports)
	return out
}

func CityForCode(code string) (string, bool) {
	city, ok := cityByCode[code]
	return city, ok
}

// ActivitiesForCity never returns nil so an unknown city encodes as [].
func ActivitiesForCity(city string) []models.ActivityRecord {
	src := activitiesByCity[city]
	out := make([]models.ActivityRecord, len(src))
	copy(out, src)
	return out
}
