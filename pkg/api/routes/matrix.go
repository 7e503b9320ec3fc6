package routes

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/puenktlich/puenktlich/pkg/observation"
	"github.com/puenktlich/puenktlich/pkg/stats"
	"github.com/puenktlich/puenktlich/pkg/store"
)

// GetRouteMatrix returns the aggregated punctuality matrix for one route
// over the trailing window ending at ?date= (default: today).
func GetRouteMatrix(c *fiber.Ctx) error {
	route := c.Query("route")
	if route == "" {
		c.SendStatus(fiber.StatusBadRequest)
		return c.JSON(fiber.Map{
			"error": "A route must be supplied",
		})
	}

	endDate, err := queryDate(c, "date")
	if err != nil {
		c.SendStatus(fiber.StatusBadRequest)
		return c.JSON(fiber.Map{
			"error": "date must be formatted YYYY-MM-DD",
		})
	}

	windowDays := c.QueryInt("days", stats.DefaultWindowDays)

	matrix, err := routeMatrixFor(route, endDate, windowDays)
	if err != nil {
		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(matrix)
}

// GetReasonStatistics returns the aggregated delay reasons for one train of
// one route, identified by its train key ("RE17023 | 06:38").
func GetReasonStatistics(c *fiber.Ctx) error {
	route := c.Query("route")
	trainKey := c.Query("train")
	if route == "" || trainKey == "" {
		c.SendStatus(fiber.StatusBadRequest)
		return c.JSON(fiber.Map{
			"error": "A route and train must be supplied",
		})
	}

	events, err := store.TrainEvents(route, "")
	if err != nil {
		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	trainEvents := []observation.TrainEvent{}
	for _, event := range events {
		if event.TrainKey() == trainKey {
			trainEvents = append(trainEvents, event)
		}
	}

	return c.JSON(stats.ReasonStatistics(trainEvents))
}

// GetSystemStatus reports collection health over all configured routes.
func GetSystemStatus(c *fiber.Ctx) error {
	routeLabels, err := store.Routes()
	if err != nil {
		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	allEvents := []observation.TrainEvent{}
	for _, route := range routeLabels {
		events, err := store.TrainEvents(route, "")
		if err != nil {
			c.SendStatus(fiber.StatusInternalServerError)
			return c.JSON(fiber.Map{
				"error": err.Error(),
			})
		}

		allEvents = append(allEvents, events...)
	}

	return c.JSON(stats.BuildSystemStatus(allEvents, time.Now()))
}

func routeMatrixFor(route string, endDate time.Time, windowDays int) (stats.RouteMatrix, error) {
	cacheKey := matrixCacheKey(route, endDate.Format(observation.ServiceDateFormat), windowDays)

	if cached := cachedRouteMatrix(context.Background(), cacheKey); cached != nil {
		return *cached, nil
	}

	sinceDate := endDate.AddDate(0, 0, -(windowDays - 1)).Format(observation.ServiceDateFormat)

	events, err := store.TrainEvents(route, sinceDate)
	if err != nil {
		return stats.RouteMatrix{}, err
	}

	matrix := stats.BuildRouteMatrix(events, route, endDate, windowDays)

	storeRouteMatrix(context.Background(), cacheKey, matrix)

	return matrix, nil
}

func queryDate(c *fiber.Ctx, name string) (time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return time.Now(), nil
	}

	return time.Parse(observation.ServiceDateFormat, raw)
}
