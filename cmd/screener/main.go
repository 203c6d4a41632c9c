package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/rxtech-lab/argo-screener/internal/version"
	"github.com/rxtech-lab/argo-screener/pkg/marketdata"
	"github.com/urfave/cli/v3"
)

func newCommand() *cli.Command {
	return &cli.Command{
		Name:    "screener",
		Usage:   "Screen market symbols with EMA, RSI, MACD and ATR strategies",
		Version: version.GetVersion(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a YAML config `FILE`",
			},
			&cli.StringFlag{
				Name:  "env-file",
				Usage: "Path to a .env file, ignored when missing",
				Value: ".env",
			},
			&cli.StringFlag{
				Name:  "provider",
				Usage: fmt.Sprintf("Data provider (%s, %s, %s), overrides the config", marketdata.ProviderBinance, marketdata.ProviderPolygon, marketdata.ProviderParquet),
			},
			&cli.IntFlag{
				Name:  "workers",
				Usage: "Symbols screened in parallel, overrides the config",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "debug, info, warn or error",
			},
		},
		Commands: []*cli.Command{
			scanCommand(),
			pullbackCommand(),
			downloadCommand(),
			watchCommand(),
			schemaCommand(),
			providersCommand(),
		},
	}
}

func main() {
	if err := newCommand().Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
