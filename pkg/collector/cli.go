package collector

import (
	"time"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/puenktlich/puenktlich/pkg/cartravel"
	"github.com/puenktlich/puenktlich/pkg/config"
	"github.com/puenktlich/puenktlich/pkg/database"
	"github.com/puenktlich/puenktlich/pkg/store"
	"github.com/puenktlich/puenktlich/pkg/timetables"

	_ "time/tzdata"
)

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "collector",
		Usage: "Collect punctuality observations for the monitored routes",
		Subcommands: []*cli.Command{
			{
				Name:  "run",
				Usage: "run one collection pass",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "repeat-every",
						Usage:    "Repeat the collection every X duration",
						Required: false,
					},
				},
				Action: func(c *cli.Context) error {
					if err := database.Connect(); err != nil {
						return err
					}

					settings, err := config.Get()
					if err != nil {
						return err
					}

					repeatEvery := c.String("repeat-every")
					repeat := repeatEvery != ""
					var repeatDuration time.Duration
					if repeat {
						repeatDuration, err = time.ParseDuration(repeatEvery)
						if err != nil {
							return err
						}
					}

					for {
						startTime := time.Now()

						err := runOnce(settings)
						if err != nil {
							return err
						}
						if !repeat {
							break
						}

						executionDuration := time.Since(startTime)
						log.Info().Msgf("Collection took %s", executionDuration.String())

						waitTime := repeatDuration - executionDuration

						if waitTime.Seconds() > 0 {
							time.Sleep(waitTime)
						}
					}

					return nil
				},
			},
		},
	}
}

func runOnce(settings config.Settings) error {
	windows, err := config.RouteWindows()
	if err != nil {
		return err
	}

	client := timetables.NewAPIClient(settings)

	events, err := CollectObservations(client, settings, windows)
	if err != nil {
		return err
	}

	stored, err := store.UpsertTrainEvents(events)
	if err != nil {
		return err
	}
	log.Info().Int("events", stored).Msg("Stored train observations")

	carRoutes, err := config.CarRoutes()
	if err != nil {
		return err
	}

	carObservations, err := cartravel.Collect(settings, carRoutes)
	if err != nil {
		// The car add-on never blocks the train collection
		log.Error().Err(err).Msg("Car travel collection failed")
		return nil
	}

	carStored, err := store.UpsertCarObservations(carObservations)
	if err != nil {
		return err
	}
	log.Info().Int("observations", carStored).Msg("Stored car travel observations")

	return nil
}
