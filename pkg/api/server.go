package api

import (
	"github.com/gofiber/fiber/v2"

	"github.com/puenktlich/puenktlich/pkg/api/routes"
)

func SetupServer(listen string) error {
	webApp := fiber.New()
	webApp.Use(NewLogger())

	webApp.Get("/", routes.Dashboard)

	group := webApp.Group("/core")

	group.Get("version", routes.APIVersion)

	group.Get("routes", routes.ListRoutes)
	group.Get("events", routes.ListEvents)
	group.Get("matrix", routes.GetRouteMatrix)
	group.Get("reasons", routes.GetReasonStatistics)
	group.Get("status", routes.GetSystemStatus)
	group.Get("car_travel", routes.ListCarTravel)

	return webApp.Listen(listen)
}
