// Package extract turns free-form text into a structured flight query.
package extract

import (
	"regexp"
	"strings"

	"github.com/bobby-s-dev/flight-concierge/internal/catalog"
	"github.com/bobby-s-dev/flight-concierge/internal/models"
)

var datePattern = regexp.MustCompile(`\d{4}-\d{2}-\d{2}|\d{2}-\d{2}-\d{4}`)

// Extract finds a date and two known cities in text. Cities are matched as
// case-insensitive substrings in airport table order, so the table decides
// which city is the origin, not the order they appear in the text.
func Extract(text string) (models.FlightQuery, bool) {
	date, ok := findDate(text)
	if !ok {
		return models.FlightQuery{}, false
	}

	lower := strings.ToLower(text)
	var origin, destination string
	for _, a := range catalog.Airports() {
		name := strings.ToLower(strings.TrimSuffix(a.City, " City"))
		if !strings.Contains(lower, name) {
			continue
		}
		if origin == "" {
			origin = a.Code
			continue
		}
		if a.Code != origin {
			destination = a.Code
			break
		}
	}
	if origin == "" || destination == "" {
		return models.FlightQuery{}, false
	}

	return models.FlightQuery{
		Origin:        origin,
		Destination:   destination,
		DepartureDate: date,
	}, true
}

// findDate returns the first date token, rewritten to YYYY-MM-DD when it was
// written day first. No calendar validation is done.
func findDate(text string) (string, bool) {
	token := datePattern.FindString(text)
	if token == "" {
		return "", false
	}
	parts := strings.Split(token, "-")
	if len(parts[0]) == 2 {
		return parts[2] + "-" + parts[1] + "-" + parts[0], true
	}
	return token, true
}
