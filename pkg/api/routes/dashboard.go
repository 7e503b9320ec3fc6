package routes

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/puenktlich/puenktlich/pkg/config"
	"github.com/puenktlich/puenktlich/pkg/observation"
	"github.com/puenktlich/puenktlich/pkg/stats"
	"github.com/puenktlich/puenktlich/pkg/store"
)

//go:embed dashboard.html
var dashboardTemplateSource string

var dashboardTemplate = template.Must(template.New("dashboard").Parse(dashboardTemplateSource))

type dashboardCell struct {
	Text  string
	Class string
}

type dashboardRow struct {
	Train string
	Cells []dashboardCell

	MeanDeparture string
	MeanArrival   string
	CancelledDays int
}

type dashboardRouteSection struct {
	Title string
	Days  []string
	Rows  []dashboardRow
}

type dashboardView struct {
	GeneratedAt string
	EndDate     string

	Routes     []dashboardRouteSection
	CarSummary []stats.CarRouteSummary
	Status     stats.SystemStatus
}

// Dashboard renders the two fixed route tables: one row per train, one
// column per calendar day showing start/arrival delay, plus the trailing
// 30 day summary columns.
func Dashboard(c *fiber.Ctx) error {
	endDate, err := queryDate(c, "date")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).SendString("date must be formatted YYYY-MM-DD")
	}

	windows, err := config.RouteWindows()
	if err != nil {
		return err
	}

	view := dashboardView{
		GeneratedAt: time.Now().Format(time.RFC3339),
		EndDate:     endDate.Format(observation.ServiceDateFormat),
	}

	trainRoutes := []string{}
	allEvents := []observation.TrainEvent{}

	for _, window := range windows {
		trainRoutes = append(trainRoutes, window.Label)

		matrix, err := routeMatrixFor(window.Label, endDate, stats.DefaultWindowDays)
		if err != nil {
			return err
		}

		events, err := store.TrainEvents(window.Label, "")
		if err != nil {
			return err
		}
		allEvents = append(allEvents, events...)

		view.Routes = append(view.Routes, buildRouteSection(window, matrix))
	}

	carObservations, err := store.CarObservations("")
	if err != nil {
		return err
	}
	view.CarSummary = stats.BuildCarSummary(carObservations, trainRoutes, endDate)
	view.Status = stats.BuildSystemStatus(allEvents, endDate)

	var rendered bytes.Buffer
	if err := dashboardTemplate.Execute(&rendered, view); err != nil {
		return err
	}

	c.Type("html")
	return c.Send(rendered.Bytes())
}

func buildRouteSection(window config.RouteWindow, matrix stats.RouteMatrix) dashboardRouteSection {
	section := dashboardRouteSection{
		Title: fmt.Sprintf("%s -> %s", window.SourceStation, window.TargetStation),
		Days:  matrix.Days,
	}

	for _, train := range matrix.Trains {
		row := dashboardRow{
			Train:         train.TrainKey,
			MeanDeparture: formatMean(train.MeanDepartureDelayMinutes),
			MeanArrival:   formatMean(train.MeanArrivalDelayMinutes),
			CancelledDays: train.CancelledDays,
		}

		cellsByDay := map[string]stats.DayCell{}
		for _, cell := range train.Days {
			cellsByDay[cell.ServiceDate] = cell
		}

		for _, day := range matrix.Days {
			cell, exists := cellsByDay[day]
			if !exists {
				row.Cells = append(row.Cells, dashboardCell{})
				continue
			}

			row.Cells = append(row.Cells, renderCell(cell))
		}

		section.Rows = append(section.Rows, row)
	}

	return section
}

func renderCell(cell stats.DayCell) dashboardCell {
	if cell.Cancelled {
		return dashboardCell{Text: "Ausfall", Class: "cancelled"}
	}

	departure := 0
	if cell.DepartureDelayMinutes != nil {
		departure = *cell.DepartureDelayMinutes
	}

	level := departure
	arrivalText := "offen"
	if cell.ArrivalObserved && cell.ArrivalDelayMinutes != nil {
		arrivalText = fmt.Sprintf("%d", *cell.ArrivalDelayMinutes)
		if *cell.ArrivalDelayMinutes > level {
			level = *cell.ArrivalDelayMinutes
		}
	} else if cell.ArrivalInfoMissing {
		arrivalText = "k.A."
	}

	return dashboardCell{
		Text:  fmt.Sprintf("S:%d A:%s", departure, arrivalText),
		Class: delayClass(level),
	}
}

// Colour levels of the original dashboard: green under 5 minutes, orange up
// to 15, red beyond.
func delayClass(delayMinutes int) string {
	if delayMinutes < 5 {
		return "ok"
	}
	if delayMinutes <= 15 {
		return "warn"
	}

	return "late"
}

// formatMean renders an undefined mean as a placeholder, never as zero.
func formatMean(mean *int) string {
	if mean == nil {
		return "k.A."
	}

	return fmt.Sprintf("%d", *mean)
}
