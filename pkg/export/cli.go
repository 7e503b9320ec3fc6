package export

import (
	"os"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/puenktlich/puenktlich/pkg/database"
	"github.com/puenktlich/puenktlich/pkg/store"
)

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export stored observations",
		Subcommands: []*cli.Command{
			{
				Name:  "csv",
				Usage: "export the event history of a route as CSV",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "route",
						Usage:    "Route label to export",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "since",
						Usage: "Only events on or after this date (YYYY-MM-DD)",
					},
					&cli.StringFlag{
						Name:  "output",
						Value: "-",
						Usage: "Output file, - for stdout",
					},
				},
				Action: func(c *cli.Context) error {
					if err := database.Connect(); err != nil {
						return err
					}

					events, err := store.TrainEvents(c.String("route"), c.String("since"))
					if err != nil {
						return err
					}

					output := os.Stdout
					if c.String("output") != "-" {
						output, err = os.Create(c.String("output"))
						if err != nil {
							return err
						}
						defer output.Close()
					}

					if err := WriteCSV(events, output); err != nil {
						return err
					}

					log.Info().Int("events", len(events)).Str("route", c.String("route")).Msg("Exported events")

					return nil
				},
			},
		},
	}
}
