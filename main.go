package main

import (
	"log"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/anicoll/ev-reimbursement/cmd"
)

//go:generate go tool oapi-codegen --config=./gen/config.yaml ./internal/pkg/server/openapi.yaml

func main() {
	app := &cli.App{
		Name:  "ev-reimbursement",
		Usage: "prices home charging of company cars for reimbursement",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				EnvVars: []string{"LOG_LEVEL"},
				Value:   "INFO",
			},
			&cli.StringFlag{
				Name:    "timezone",
				EnvVars: []string{"TIMEZONE"},
				Value:   "Europe/Oslo",
			},
			&cli.StringFlag{
				Name:    "database-url",
				EnvVars: []string{"DATABASE_URL"},
			},
			&cli.StringFlag{
				Name:    "migrations-folder",
				EnvVars: []string{"MIGRATIONS_FOLDER"},
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the reimbursement API and the spot price jobs",
				Action: cmd.ServeCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "http-addr",
						EnvVars: []string{"HTTP_ADDR"},
						Value:   ":8080",
					},
				},
			},
			{
				Name:   "calculate",
				Usage:  "price a charger usage export and write a monthly report",
				Action: cmd.CalculateCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "usage",
						Usage:    "CSV or XLSX export from the charger",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "tariffs",
						Usage: "YAML file with the grid tariff profiles",
					},
					&cli.StringFlag{
						Name:  "employee-name",
						Value: "",
					},
					&cli.StringFlag{
						Name:  "price-area",
						Value: "NO1",
					},
					&cli.StringFlag{
						Name:  "policy",
						Usage: "norgespris or spot_with_subsidy",
						Value: "spot_with_subsidy",
					},
					&cli.Float64Flag{
						Name:  "flat-rate",
						Usage: "norgespris rate in NOK/kWh incl. VAT",
					},
					&cli.Float64Flag{
						Name:  "subsidy-threshold",
						Usage: "NOK/kWh ex. VAT",
					},
					&cli.Float64Flag{
						Name: "subsidy-share",
					},
					&cli.StringFlag{
						Name:  "month",
						Usage: "YYYY-MM, defaults to the month of the first session",
					},
					&cli.StringFlag{
						Name:  "rfid",
						Usage: "only include sessions started with this tag",
					},
					&cli.StringFlag{
						Name:  "format",
						Usage: "pdf, csv or xlsx",
						Value: "pdf",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
					},
				},
			},
			{
				Name:   "migrate",
				Usage:  "apply the database migrations",
				Action: cmd.MigrateCommand,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
