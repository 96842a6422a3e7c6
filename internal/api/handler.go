package api

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/bobby-s-dev/flight-concierge/internal/catalog"
	"github.com/bobby-s-dev/flight-concierge/internal/models"
)

var validate = validator.New()

type FlightService interface {
	Fulfill(ctx context.Context, query models.FlightQuery) []models.FlightRecord
	GetStats() map[string]interface{}
}

type StatusReporter interface {
	GetStatus() map[string]interface{}
}

type Handler struct {
	flights   FlightService
	scheduler StatusReporter
	logger    *zap.Logger
}

func NewHandler(flights FlightService, scheduler StatusReporter, logger *zap.Logger) *Handler {
	return &Handler{
		flights:   flights,
		scheduler: scheduler,
		logger:    logger,
	}
}

// flightRequest uses pointers so a missing field is told apart from an
// empty one.
type flightRequest struct {
	Origin        *string `json:"origin" validate:"required"`
	Destination   *string `json:"destination" validate:"required"`
	DepartureDate *string `json:"departure_date" validate:"required"`
}

// GetFlights handles POST /get_flights
func (h *Handler) GetFlights(c *fiber.Ctx) error {
	var req flightRequest
	if err := parseBody(c, &req); err != nil {
		return fiber.NewError(fiber.StatusUnprocessableEntity, "invalid request body: "+err.Error())
	}
	if err := validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
	}

	query := models.FlightQuery{
		Origin:        *req.Origin,
		Destination:   *req.Destination,
		DepartureDate: *req.DepartureDate,
	}

	h.logger.Info("Fetching flights",
		zap.String("origin", query.Origin),
		zap.String("destination", query.Destination),
		zap.String("departure_date", query.DepartureDate))

	flights := h.flights.Fulfill(c.UserContext(), query)
	return c.JSON(models.FlightsResponse{Flights: flights})
}

// parseBody treats a body without Content-Type as JSON.
func parseBody(c *fiber.Ctx, out interface{}) error {
	if len(c.Request().Header.ContentType()) == 0 {
		return json.Unmarshal(c.Body(), out)
	}
	return c.BodyParser(out)
}

// GetHealth handles GET /api/v1/health
func (h *Handler) GetHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":    "healthy",
		"timestamp": time.Now(),
		"uptime":    time.Since(startTime).String(),
		"stats":     h.flights.GetStats(),
	})
}

// GetMetrics handles GET /api/v1/metrics
func (h *Handler) GetMetrics(c *fiber.Ctx) error {
	metrics := fiber.Map{
		"flights":   h.flights.GetStats(),
		"timestamp": time.Now(),
	}
	if h.scheduler != nil {
		metrics["scheduler"] = h.scheduler.GetStatus()
	}
	return c.JSON(metrics)
}

// GetAirports handles GET /api/v1/airports
func (h *Handler) GetAirports(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"airports": catalog.Airports(),
	})
}

// ErrorHandler renders every error as JSON with the fiber status code.
func ErrorHandler(c *fiber.Ctx, err error) error {
	zap.L().Error("HTTP error",
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.Error(err))

	// Default to 500 status code
	code := fiber.StatusInternalServerError

	// Check if it's a Fiber error
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error":   err.Error(),
		"success": false,
	})
}

var startTime = time.Now()
