package literature

import (
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "literature-report",
		Usage: "Generate the monthly neuro-emergency literature digest",
		Subcommands: []*cli.Command{
			{
				Name:  "generate",
				Usage: "search PubMed, rank the results and write the PDF/JSON report",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "email",
						Usage: "Contact email passed to the NCBI E-utilities",
					},
					&cli.StringFlag{
						Name:  "start-date",
						Usage: "Search window start (YYYY-MM-DD), defaults to the previous month",
					},
					&cli.StringFlag{
						Name:  "end-date",
						Usage: "Search window end (YYYY-MM-DD), defaults to the previous month",
					},
					&cli.IntFlag{
						Name:  "max-candidates",
						Value: 200,
						Usage: "Maximum number of search results to fetch",
					},
					&cli.IntFlag{
						Name:  "top-n",
						Value: 10,
						Usage: "Number of studies in the final report",
					},
					&cli.StringFlag{
						Name:  "output-dir",
						Value: "reports",
						Usage: "Directory the report files are written to",
					},
					&cli.BoolFlag{
						Name:  "demo",
						Usage: "Render the report from built-in sample studies without network access",
					},
				},
				Action: func(c *cli.Context) error {
					if !c.Bool("demo") && c.String("email") == "" {
						return errors.New("--email is required, NCBI asks for a contact address")
					}

					startDate, endDate, err := resolveDateRange(c.String("start-date"), c.String("end-date"))
					if err != nil {
						return err
					}

					config := PipelineConfig{
						Email:         c.String("email"),
						MaxCandidates: c.Int("max-candidates"),
						TopN:          c.Int("top-n"),
						OutputDir:     c.String("output-dir"),
					}

					var written []string
					if c.Bool("demo") {
						written, err = GenerateDemoReport(config, startDate, endDate)
					} else {
						written, err = GenerateReport(NewPubMedClient(config.Email), config, startDate, endDate)
					}
					if err != nil {
						return err
					}

					for _, path := range written {
						log.Info().Str("file", path).Msg("Report written")
					}

					return nil
				},
			},
		},
	}
}

func resolveDateRange(startRaw string, endRaw string) (time.Time, time.Time, error) {
	if startRaw == "" && endRaw == "" {
		startDate, endDate := DefaultDateRange(time.Now())
		return startDate, endDate, nil
	}

	startDate, err := time.Parse("2006-01-02", startRaw)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}

	endDate, err := time.Parse("2006-01-02", endRaw)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}

	if endDate.Before(startDate) {
		return time.Time{}, time.Time{}, errors.New("end-date lies before start-date")
	}

	return startDate, endDate, nil
}
