package main

import (
	"context"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/rxtech-lab/argo-screener/internal/config"
	"github.com/rxtech-lab/argo-screener/pkg/marketdata"
	"github.com/urfave/cli/v3"
)

func schemaCommand() *cli.Command {
	return &cli.Command{
		Name:  "schema",
		Usage: "Print the JSON schema of the config file",
		Action: func(_ context.Context, cmd *cli.Command) error {
			schema, err := config.Schema()
			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.Root().Writer, schema)

			return err
		},
	}
}

func providersCommand() *cli.Command {
	return &cli.Command{
		Name:  "providers",
		Usage: "List the supported data providers",
		Action: func(_ context.Context, cmd *cli.Command) error {
			rows := make([][]string, 0)

			for _, name := range marketdata.GetSupportedProviders() {
				info, err := marketdata.GetProviderInfo(name)
				if err != nil {
					return err
				}

				auth := "no"
				if info.RequiresAuth {
					auth = "yes"
				}

				rows = append(rows, []string{info.Name, info.DisplayName, auth, info.Description})
			}

			out := table.New().
				Border(lipgloss.NormalBorder()).
				BorderStyle(BorderStyle).
				Headers("Name", "Provider", "API Key", "Description").
				Rows(rows...).
				StyleFunc(func(row, _ int) lipgloss.Style {
					if row == table.HeaderRow {
						return HeaderStyle
					}

					return CellStyle
				})

			_, err := fmt.Fprintln(cmd.Root().Writer, out.String())

			return err
		},
	}
}
