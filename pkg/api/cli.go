package api

import (
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/puenktlich/puenktlich/pkg/api/routes"
	"github.com/puenktlich/puenktlich/pkg/database"
	"github.com/puenktlich/puenktlich/pkg/redis_client"
)

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "web-api",
		Usage: "Provides the dashboard & core web API",
		Subcommands: []*cli.Command{
			{
				Name:  "run",
				Usage: "run web api server",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "listen",
						Value: ":8080",
						Usage: "listen target for the web server",
					},
				},
				Action: func(c *cli.Context) error {
					if err := database.Connect(); err != nil {
						return err
					}

					// The matrix cache is optional - without Redis every
					// dashboard load recomputes from Mongo
					if err := redis_client.Connect(); err != nil {
						log.Warn().Err(err).Msg("Redis unavailable, running without dashboard cache")
					} else {
						routes.CreateMatrixCache()
					}

					return SetupServer(c.String("listen"))
				},
			},
		},
	}
}
