package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/liip/sheriff"

	"github.com/puenktlich/puenktlich/pkg/config"
	"github.com/puenktlich/puenktlich/pkg/store"
)

// ListRoutes returns the configured route labels in dashboard order.
func ListRoutes(c *fiber.Ctx) error {
	windows, err := config.RouteWindows()
	if err != nil {
		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	labels := []string{}
	for _, window := range windows {
		labels = append(labels, window.Label)
	}

	return c.JSON(labels)
}

// ListEvents returns the raw event history of one route, optionally limited
// to dates on or after ?since=YYYY-MM-DD.
func ListEvents(c *fiber.Ctx) error {
	route := c.Query("route")
	if route == "" {
		c.SendStatus(fiber.StatusBadRequest)
		return c.JSON(fiber.Map{
			"error": "A route must be supplied",
		})
	}

	events, err := store.TrainEvents(route, c.Query("since"))
	if err != nil {
		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	groups := []string{"basic"}
	if c.QueryBool("detailed", false) {
		groups = append(groups, "detailed")
	}

	eventsReduced, err := sheriff.Marshal(&sheriff.Options{
		Groups: groups,
	}, events)
	if err != nil {
		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(eventsReduced)
}

// ListCarTravel returns the stored road travel-time samples.
func ListCarTravel(c *fiber.Ctx) error {
	observations, err := store.CarObservations(c.Query("since"))
	if err != nil {
		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(observations)
}
