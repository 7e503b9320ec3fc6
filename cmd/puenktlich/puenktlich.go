package main

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/puenktlich/puenktlich/pkg/api"
	"github.com/puenktlich/puenktlich/pkg/collector"
	"github.com/puenktlich/puenktlich/pkg/export"
	"github.com/puenktlich/puenktlich/pkg/literature"

	_ "time/tzdata"
)

func main() {
	godotenv.Load()

	if os.Getenv("PUENKTLICH_LOG_FORMAT") != "JSON" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	}

	if os.Getenv("PUENKTLICH_DEBUG") == "YES" {
		log.Logger = log.Logger.Level(zerolog.DebugLevel)
	} else {
		log.Logger = log.Logger.Level(zerolog.InfoLevel)
	}

	app := &cli.App{
		Name:        "puenktlich",
		Description: "Single binary of truth for puenktlich - commuter train punctuality monitor",

		Commands: []*cli.Command{
			collector.RegisterCLI(),
			api.RegisterCLI(),
			export.RegisterCLI(),
			literature.RegisterCLI(),
		},
	}

	err := app.Run(os.Args)
	if err != nil {
		log.Fatal().Err(err).Send()
	}
}
